// Package chat implements the keyword-driven assistant that walks an operator
// through the upload, start, status workflow.
package chat

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/ahylith/formagent/internal/domain/model"
	apperrors "github.com/ahylith/formagent/internal/errors"
)

var urlPattern = regexp.MustCompile(`https?://[^\s"'<>]+`)

// Message is one chat turn, either from the operator or the assistant.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// JobView is the subset of job state the responder needs to phrase answers.
type JobView interface {
	Get(id string) (model.Job, error)
}

// StartFunc kicks off the fill run for a job against the given URL. The
// responder calls it when the operator asks to start and a URL is known.
type StartFunc func(jobID, targetURL string) error

// Responder turns operator messages into replies and, for start requests,
// side effects. Conversation history is kept per job.
type Responder struct {
	jobs   JobView
	start  StartFunc
	logger *slog.Logger

	mu      sync.Mutex
	history map[string][]Message
}

// NewResponder builds a Responder bound to job state and a start trigger.
func NewResponder(jobs JobView, start StartFunc, logger *slog.Logger) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{
		jobs:    jobs,
		start:   start,
		logger:  logger,
		history: make(map[string][]Message),
	}
}

// Respond handles one operator message in the context of jobID and returns
// the assistant reply. jobID may be empty before an upload happened.
func (r *Responder) Respond(jobID, content string) Message {
	r.record(jobID, Message{Role: "user", Content: content, Timestamp: time.Now()})

	reply := r.reply(jobID, content)
	msg := Message{Role: "assistant", Content: reply, Timestamp: time.Now()}
	r.record(jobID, msg)
	return msg
}

// History returns the conversation recorded for a job, oldest first.
func (r *Responder) History(jobID string) []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := r.history[jobID]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

func (r *Responder) record(jobID string, msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history[jobID] = append(r.history[jobID], msg)
}

func (r *Responder) reply(jobID, content string) string {
	lower := strings.ToLower(content)

	switch {
	case containsAny(lower, "start", "run", "go ahead", "begin", "fill"):
		return r.handleStart(jobID, content)
	case containsAny(lower, "status", "progress", "how is", "how's"):
		return r.handleStatus(jobID)
	case containsAny(lower, "error", "fail", "wrong", "problem"):
		return r.handleErrors(jobID)
	case containsAny(lower, "upload", "file", "spreadsheet", "csv", "xlsx"):
		return "Upload your spreadsheet (.xlsx or .csv) and I will read the rows. " +
			"Then tell me the website URL and say start when you are ready."
	case containsAny(lower, "hello", "hi ", "hey"):
		return "Hi! Upload a spreadsheet and give me a form URL, and I will fill and submit the form once per row."
	default:
		return "I can help you fill web forms from a spreadsheet. Upload a file, " +
			"then say something like: start filling https://example.com/form"
	}
}

func (r *Responder) handleStart(jobID, content string) string {
	if jobID == "" {
		return "There is no uploaded spreadsheet yet. Upload a file first, then ask me to start."
	}

	j, err := r.jobs.Get(jobID)
	if err != nil {
		return "I could not find that job anymore. Upload the spreadsheet again."
	}

	targetURL := urlPattern.FindString(content)
	if targetURL == "" {
		targetURL = j.TargetURL
	}
	if targetURL == "" {
		return "I need the form URL. Say something like: start filling https://example.com/form"
	}

	if err := r.start(jobID, targetURL); err != nil {
		if apperrors.IsConflict(err) {
			return "That job is already running. Ask for status to follow its progress."
		}
		r.logger.Warn("chat start failed", "job_id", jobID, "error", err)
		return fmt.Sprintf("I could not start the run: %v", err)
	}
	return fmt.Sprintf("Starting the form fill for %d rows against %s. Ask for status anytime.", len(j.Rows), targetURL)
}

func (r *Responder) handleStatus(jobID string) string {
	if jobID == "" {
		return "No job yet. Upload a spreadsheet to get started."
	}
	j, err := r.jobs.Get(jobID)
	if err != nil {
		return "I could not find that job anymore. Upload the spreadsheet again."
	}

	switch j.Status {
	case model.JobStatusCreated:
		return fmt.Sprintf("The spreadsheet is loaded with %d rows. Say start when you are ready.", len(j.Rows))
	case model.JobStatusStarting:
		return "The run is starting up: launching the browser and opening the form."
	case model.JobStatusRunning:
		return fmt.Sprintf("Working on it: %d of %d rows processed so far.", j.CompletedRows(), len(j.Rows))
	case model.JobStatusCompleted:
		if j.Summary != nil {
			return fmt.Sprintf("Done. %d of %d rows succeeded (%.1f%%).",
				j.Summary.SuccessfulRows, j.Summary.TotalRows, j.Summary.SuccessRate)
		}
		return "Done. The run completed."
	case model.JobStatusError:
		return "The run stopped with an error. Ask me about the errors for details."
	default:
		return fmt.Sprintf("The job is in state %s.", j.Status)
	}
}

func (r *Responder) handleErrors(jobID string) string {
	if jobID == "" {
		return "No job yet, so no errors to report."
	}
	j, err := r.jobs.Get(jobID)
	if err != nil {
		return "I could not find that job anymore."
	}
	if len(j.Errors) == 0 {
		return "No errors recorded for this job so far."
	}

	limit := len(j.Errors)
	if limit > 5 {
		limit = 5
	}
	var b strings.Builder
	fmt.Fprintf(&b, "There are %d recorded errors. The first %d:\n", len(j.Errors), limit)
	for _, e := range j.Errors[:limit] {
		b.WriteString("- " + e + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
