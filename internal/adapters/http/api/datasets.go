// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/crosswalk/internal/app"
	"github.com/okian/crosswalk/internal/domain/model"
)

// DatasetsHandler handles catalog upload requests.
type DatasetsHandler struct {
	deps Dependencies
}

// NewDatasetsHandler creates a new datasets handler.
func NewDatasetsHandler(deps Dependencies) *DatasetsHandler {
	return &DatasetsHandler{deps: deps}
}

// datasetRequest mirrors the upload schema for PUT /datasets/{side}.
type datasetRequest struct {
	Rows []model.Record `json:"rows"`
}

type datasetResponse struct {
	Side string `json:"side"`
	Rows int    `json:"rows"`
}

// HandlePutDataset handles PUT /datasets/{side} requests.
func (h *DatasetsHandler) HandlePutDataset(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_dataset"
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}

	// Extract path parameter after /datasets/
	side := strings.TrimPrefix(r.URL.Path, "/datasets/")
	if side == "" || strings.Contains(side, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	var req datasetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	n, err := h.deps.SetDataset(r.Context(), side, req.Rows)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownSide):
			writeError(w, http.StatusNotFound, "unknown_side", err)
		case errors.Is(err, service.ErrEmptyDataset):
			writeError(w, http.StatusBadRequest, "empty_dataset", err)
		case errors.Is(err, service.ErrDatasetTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "dataset_too_large", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, datasetResponse{Side: side, Rows: n})
}
