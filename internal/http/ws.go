package httpx

import (
	"log/slog"
	"reflect"
	"time"

	"golang.org/x/net/websocket"

	"github.com/ahylith/formagent/internal/domain/job"
)

// wsPollInterval is how often the progress stream samples job state.
const wsPollInterval = 500 * time.Millisecond

// ProgressStream pushes job progress frames over a websocket. Frames are sent
// only when the observable state changed; the stream closes itself after the
// terminal frame.
type ProgressStream struct {
	Registry *job.Registry
	Logger   *slog.Logger
}

// Handler returns the websocket handler for GET /ws/{id}.
func (s *ProgressStream) Handler() websocket.Handler {
	return websocket.Handler(s.serve)
}

func (s *ProgressStream) serve(conn *websocket.Conn) {
	defer func() { _ = conn.Close() }()

	r := conn.Request()
	id := r.PathValue("id")

	var last statusResponse
	sent := false

	ticker := time.NewTicker(wsPollInterval)
	defer ticker.Stop()

	for {
		j, err := s.Registry.Get(id)
		if err != nil {
			_ = websocket.JSON.Send(conn, map[string]string{"error": err.Error()})
			return
		}

		frame := statusForJob(j)
		if !sent || !reflect.DeepEqual(frame, last) {
			if err := websocket.JSON.Send(conn, frame); err != nil {
				s.Logger.Debug("progress stream send failed", "job_id", id, "error", err)
				return
			}
			last = frame
			sent = true
		}

		if j.Status.Terminal() {
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
