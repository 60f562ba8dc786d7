package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"navarch/core"
	"navarch/storage"
)

// maxBodyBytes caps request bodies; a dense offset grid for a large hull
// fits comfortably within this.
const maxBodyBytes = 8 << 20

func (a *API) respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		a.logger.Errorw("Failed to encode JSON response",
			"error", err,
			"data_type", fmt.Sprintf("%T", data))
		// Response already started, can't send error to client
	}
}

// respondError maps an error onto its HTTP status via the shared taxonomy
// and emits a JSON error body.
func (a *API) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch core.Classify(err) {
	case core.ClassNotFound:
		status = http.StatusNotFound
	case core.ClassInvalidArgument:
		status = http.StatusBadRequest
	case core.ClassIncompleteGeometry, core.ClassNumericDomain:
		status = http.StatusUnprocessableEntity
	}
	if errors.Is(err, storage.ErrDuplicateVessel) || errors.Is(err, storage.ErrDuplicateLoadcase) {
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		a.logger.Errorw("Request failed", "error", err)
		// Do not leak internals to the client.
		a.respondJSON(w, map[string]string{"error": "internal server error"}, status)
		return
	}
	a.respondJSON(w, map[string]string{"error": err.Error()}, status)
}

// decodeJSON decodes a request body into dst and runs struct validation.
func (a *API) decodeJSON(r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return core.NewInvalidArgument("body", err.Error())
	}
	if err := a.validate.Struct(dst); err != nil {
		return core.NewInvalidArgument("body", err.Error())
	}
	return nil
}

// healthCheck godoc
//
//	@Summary		Health check
//	@Description	Reports service health
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
func (a *API) healthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if a.store == nil || a.svc == nil {
		status = "degraded"
	}

	a.respondJSON(w, map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}, http.StatusOK)
}
