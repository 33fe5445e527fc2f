package httpx

import (
	"log/slog"
	"net/http"

	"github.com/ahylith/formagent/config"
	"github.com/ahylith/formagent/internal/chat"
	"github.com/ahylith/formagent/internal/domain/job"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Registry *job.Registry
	Starter  JobStarter
	Chat     *chat.Responder
	HTTP     config.HTTPConfig
	Jobs     config.JobsConfig
	Browser  config.BrowserConfig
	Logger   *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	jobHandlers := &JobHandlers{
		Registry: services.Registry,
		Starter:  services.Starter,
		HTTP:     services.HTTP,
		Jobs:     services.Jobs,
		Browser:  services.Browser,
		Logger:   logger,
	}
	registerJobRoutes(mux, jobHandlers)

	if services.Chat != nil {
		registerChatRoutes(mux, &ChatHandlers{Responder: services.Chat})
	}

	stream := &ProgressStream{Registry: services.Registry, Logger: logger}
	mux.Handle("GET /ws/{id}", stream.Handler())

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	return Logging(logger)(Recover(logger)(mux))
}

func registerJobRoutes(mux *http.ServeMux, h *JobHandlers) {
	mux.HandleFunc("POST /api/jobs", h.Upload)
	mux.HandleFunc("POST /api/jobs/{id}/start", h.Start)
	mux.HandleFunc("GET /api/jobs/{id}/status", h.GetStatus)
	mux.HandleFunc("GET /api/jobs/{id}/results", h.GetResults)
	mux.HandleFunc("POST /api/jobs/{id}/reset", h.Reset)
}

func registerChatRoutes(mux *http.ServeMux, h *ChatHandlers) {
	mux.HandleFunc("POST /api/chat", h.Respond)
	mux.HandleFunc("GET /api/chat/{id}/history", h.History)
}
