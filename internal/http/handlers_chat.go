package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ahylith/formagent/internal/chat"
)

// ChatHandlers serves the conversational front end over the job workflow.
type ChatHandlers struct {
	Responder *chat.Responder
}

type chatRequest struct {
	JobID   string `json:"job_id,omitempty"`
	Message string `json:"message"`
}

// Respond handles one chat turn. POST /api/chat.
func (h *ChatHandlers) Respond(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "empty_message",
			Err:     errors.New("message is required"),
		})
		return
	}

	reply := h.Responder.Respond(req.JobID, req.Message)
	WriteJSON(w, http.StatusOK, map[string]any{
		"job_id":  req.JobID,
		"message": reply,
	})
}

// History returns the recorded conversation for a job, oldest first.
// GET /api/chat/{id}/history.
func (h *ChatHandlers) History(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	WriteJSON(w, http.StatusOK, map[string]any{
		"job_id":   id,
		"messages": h.Responder.History(id),
	})
}
