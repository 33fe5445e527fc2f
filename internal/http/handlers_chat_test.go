package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahylith/formagent/config"
	"github.com/ahylith/formagent/internal/chat"
	"github.com/ahylith/formagent/internal/domain/job"
	"github.com/ahylith/formagent/internal/domain/model"
)

func newChatRouter(t *testing.T) (http.Handler, *job.Registry) {
	t.Helper()
	registry := job.NewRegistry(nil)
	responder := chat.NewResponder(registry, func(_, _ string) error { return nil }, nil)

	cfg := config.AppConfig{}
	cfg.Sanitize()

	router := NewRouter(RouterServices{
		Registry: registry,
		Starter:  &fakeStarter{registry: registry},
		Chat:     responder,
		HTTP:     cfg.HTTP,
		Jobs:     cfg.Jobs,
		Browser:  cfg.Browser,
	})
	return router, registry
}

func TestChatRespond(t *testing.T) {
	router, registry := newChatRouter(t)
	j := registry.Create("tenants.csv", "", []model.Row{{Index: 0}})

	body := `{"job_id":"` + j.ID + `","message":"status"}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		JobID   string       `json:"job_id"`
		Message chat.Message `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, j.ID, resp.JobID)
	assert.Equal(t, "assistant", resp.Message.Role)
	assert.Contains(t, resp.Message.Content, "1 rows")
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	router, _ := newChatRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"  "}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "empty_message")
}

func TestChatHistoryRoundTrip(t *testing.T) {
	router, registry := newChatRouter(t)
	j := registry.Create("tenants.csv", "", []model.Row{{Index: 0}})

	body := `{"job_id":"` + j.ID + `","message":"hello"}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	router.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/api/chat/"+j.ID+"/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Messages []chat.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "user", resp.Messages[0].Role)
	assert.Equal(t, "hello", resp.Messages[0].Content)
}
