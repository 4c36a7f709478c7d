// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	service "github.com/okian/crosswalk/internal/app"
	"github.com/okian/crosswalk/internal/adapters/repository"
	"github.com/okian/crosswalk/internal/domain/model"
)

// RunsHandler handles run submission and status requests.
type RunsHandler struct {
	deps Dependencies
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(deps Dependencies) *RunsHandler {
	return &RunsHandler{deps: deps}
}

// runRequest mirrors the submission schema for POST /runs.
type runRequest struct {
	RequestID    string  `json:"request_id"`
	LeftField    string  `json:"left_field"`
	RightField   string  `json:"right_field"`
	MinThreshold float64 `json:"min_threshold"`
	MaxResults   int     `json:"max_results"`
	TokenDiff    bool    `json:"token_diff"`
	Unfiltered   bool    `json:"unfiltered"`
}

func (r runRequest) validate() error {
	switch {
	case strings.TrimSpace(r.LeftField) == "":
		return errors.New("missing left_field")
	case strings.TrimSpace(r.RightField) == "":
		return errors.New("missing right_field")
	case r.MinThreshold < 0 || r.MinThreshold > 100:
		return errors.New("min_threshold must be in [0, 100]")
	case r.MaxResults < 0:
		return errors.New("max_results must not be negative")
	}
	return nil
}

type runAccepted struct {
	RunID     string `json:"run_id"`
	Duplicate bool   `json:"duplicate"`
}

// runStatus mirrors GET /runs/{id} responses.
type runStatus struct {
	ID         string            `json:"id"`
	Status     repository.Status `json:"status"`
	Progress   int               `json:"progress"`
	Stats      model.SweepStats  `json:"stats"`
	CreatedAt  time.Time         `json:"created_at"`
	StartedAt  time.Time         `json:"started_at,omitzero"`
	FinishedAt time.Time         `json:"finished_at,omitzero"`
}

// HandlePostRun handles POST /runs requests.
func (h *RunsHandler) HandlePostRun(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_run"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	runID, duplicate, err := h.deps.Submit(r.Context(), service.SubmitRequest{
		RequestID: req.RequestID,
		Spec: model.RunSpec{
			LeftField:    req.LeftField,
			RightField:   req.RightField,
			MinThreshold: req.MinThreshold,
			MaxResults:   req.MaxResults,
			TokenDiff:    req.TokenDiff,
			Unfiltered:   req.Unfiltered,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQueueFull):
			writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		case errors.Is(err, service.ErrInvalidSpec):
			writeError(w, http.StatusBadRequest, "bad_request", err)
		case errors.Is(err, service.ErrMissingDataset):
			writeError(w, http.StatusConflict, "missing_dataset", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}

	status := http.StatusAccepted
	if duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, runAccepted{RunID: runID, Duplicate: duplicate})
}

// HandleGetRun handles GET /runs/{id} and GET /runs/{id}/results requests.
func (h *RunsHandler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_run"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/runs/")
	id, rest, _ := strings.Cut(path, "/")
	if id == "" || (rest != "" && rest != "results") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	if rest == "results" {
		h.handleResults(w, r, id)
		return
	}

	run, err := h.deps.Run(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	writeJSON(w, http.StatusOK, runStatus{
		ID:         run.ID,
		Status:     run.Status,
		Progress:   run.Progress,
		Stats:      run.Stats,
		CreatedAt:  run.CreatedAt,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	})
}

func (h *RunsHandler) handleResults(w http.ResponseWriter, r *http.Request, id string) {
	results, err := h.deps.Results(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", err)
		case errors.Is(err, repository.ErrNotReady):
			writeError(w, http.StatusConflict, "not_ready", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}

	if results == nil {
		results = []model.MatchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}
