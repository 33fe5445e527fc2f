package job

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahylith/formagent/internal/domain/model"
	apperrors "github.com/ahylith/formagent/internal/errors"
)

func testRows(n int) []model.Row {
	rows := make([]model.Row, n)
	for i := range rows {
		rows[i] = model.Row{Index: i, Values: map[string]string{"TenantName": "Acme"}}
	}
	return rows
}

func startParams() StartParams {
	return StartParams{
		TargetURL: "https://example.com/form",
		Mapping:   model.DefaultDemoMapping(),
	}
}

func TestCreateAssignsIDAndCreatedStatus(t *testing.T) {
	r := NewRegistry(nil)

	j := r.Create("tenants.xlsx", "", testRows(3))
	assert.NotEmpty(t, j.ID)
	assert.Equal(t, model.JobStatusCreated, j.Status)
	assert.Len(t, j.Rows, 3)
	assert.False(t, r.IsActive(j.ID))
}

func TestStartTransitionsAndMarksActive(t *testing.T) {
	r := NewRegistry(nil)
	j := r.Create("tenants.xlsx", "", testRows(1))

	started, err := r.Start(j.ID, startParams())
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusStarting, started.Status)
	assert.Equal(t, "https://example.com/form", started.TargetURL)
	assert.NotNil(t, started.StartedAt)
	assert.True(t, r.IsActive(j.ID))
}

func TestStartUnknownJobIsNotFound(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.Start("nope", startParams())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDoubleStartIsRejectedWithConflict(t *testing.T) {
	r := NewRegistry(nil)
	j := r.Create("tenants.xlsx", "", testRows(1))

	_, err := r.Start(j.ID, startParams())
	require.NoError(t, err)

	_, err = r.Start(j.ID, startParams())
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestConcurrentStartsAdmitExactlyOne(t *testing.T) {
	r := NewRegistry(nil)
	j := r.Create("tenants.xlsx", "", testRows(1))

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = r.Start(j.ID, startParams())
		}()
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
		} else {
			assert.True(t, apperrors.IsConflict(err))
		}
	}
	assert.Equal(t, 1, accepted)
}

func TestStartKeepsUploadTargetURLWhenNoneGiven(t *testing.T) {
	r := NewRegistry(nil)
	j := r.Create("tenants.xlsx", "https://upload.example/form", testRows(1))

	started, err := r.Start(j.ID, StartParams{Mapping: model.DefaultDemoMapping()})
	require.NoError(t, err)
	assert.Equal(t, "https://upload.example/form", started.TargetURL)
}

func TestCompleteClearsActiveAndStoresSummary(t *testing.T) {
	r := NewRegistry(nil)
	j := r.Create("tenants.xlsx", "", testRows(2))
	_, err := r.Start(j.ID, startParams())
	require.NoError(t, err)

	r.MarkRunning(j.ID)
	r.AppendResult(j.ID, model.FillResult{RowIndex: 0, Status: model.RowStatusSuccess})
	r.AppendResult(j.ID, model.FillResult{
		RowIndex: 1,
		Status:   model.RowStatusSuccess,
		Errors:   []string{"Failed to fill Amount (#amount): timeout"},
	})

	final, err := r.Get(j.ID)
	require.NoError(t, err)
	completed, err := r.Complete(j.ID, model.Summarize(final.Results))
	require.NoError(t, err)

	assert.Equal(t, model.JobStatusCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)
	assert.False(t, r.IsActive(j.ID))
	require.NotNil(t, completed.Summary)
	assert.Equal(t, 2, completed.Summary.TotalRows)
	assert.Contains(t, completed.Errors, "Row 2: Failed to fill Amount (#amount): timeout")
}

func TestFailRecordsReasonAndClearsActive(t *testing.T) {
	r := NewRegistry(nil)
	j := r.Create("tenants.xlsx", "", testRows(1))
	_, err := r.Start(j.ID, startParams())
	require.NoError(t, err)

	failed, err := r.Fail(j.ID, "browser session could not be created")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusError, failed.Status)
	assert.Contains(t, failed.Errors, "browser session could not be created")
	assert.False(t, r.IsActive(j.ID))
}

func TestResetRestoresCreatedFromTerminal(t *testing.T) {
	r := NewRegistry(nil)
	j := r.Create("tenants.xlsx", "", testRows(1))
	_, err := r.Start(j.ID, startParams())
	require.NoError(t, err)
	_, err = r.Fail(j.ID, "boom")
	require.NoError(t, err)

	reset, err := r.Reset(j.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCreated, reset.Status)
	assert.Empty(t, reset.Results)
	assert.Empty(t, reset.Errors)
	assert.Nil(t, reset.Summary)
	assert.Nil(t, reset.StartedAt)
	assert.Nil(t, reset.CompletedAt)

	// The job is startable again.
	_, err = r.Start(j.ID, startParams())
	assert.NoError(t, err)
}

func TestResetOnCreatedIsNoOp(t *testing.T) {
	r := NewRegistry(nil)
	j := r.Create("tenants.xlsx", "", testRows(1))

	reset, err := r.Reset(j.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCreated, reset.Status)
}

func TestResetOnActiveJobIsRejected(t *testing.T) {
	r := NewRegistry(nil)
	j := r.Create("tenants.xlsx", "", testRows(1))
	_, err := r.Start(j.ID, startParams())
	require.NoError(t, err)

	_, err = r.Reset(j.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestSnapshotsDoNotAliasRegistryState(t *testing.T) {
	r := NewRegistry(nil)
	j := r.Create("tenants.xlsx", "", testRows(1))

	snap, err := r.Get(j.ID)
	require.NoError(t, err)
	snap.Errors = append(snap.Errors, "mutated by caller")

	fresh, err := r.Get(j.ID)
	require.NoError(t, err)
	assert.Empty(t, fresh.Errors)
}
