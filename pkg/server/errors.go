package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.githedgehog.com/provisioner/pkg/engine"
	"go.githedgehog.com/provisioner/pkg/log"
	"go.githedgehog.com/provisioner/pkg/vmodel"
	"go.githedgehog.com/provisioner/pkg/vmodel/artifacts"
	"go.githedgehog.com/provisioner/pkg/vmodel/metadata"
	"go.uber.org/zap"
)

var (
	badRequest = []error{
		metadata.ErrMissingMetadata,
		metadata.ErrInvalidMetadata,
		vmodel.ErrUnknownNamespace,
		vmodel.ErrNoBoundNode,
		engine.ErrInvalidTemplate,
		engine.ErrInvalidAction,
		engine.ErrNotFound,
		artifacts.ErrInvalidArtifactName,
		errInvalidRequest,
	}
	forbidden = []error{
		engine.ErrCouldNotCreate,
		engine.ErrCouldNotUpdate,
		engine.ErrCouldNotRemove,
		engine.ErrVModelInUse,
	}
)

var errInvalidRequest = errors.New("invalid request")

func invalidRequestError(err error) error {
	return fmt.Errorf("%w: %w", errInvalidRequest, err)
}

func statusFor(err error) int {
	for _, e := range badRequest {
		if errors.Is(err, e) {
			return http.StatusBadRequest
		}
	}
	for _, e := range forbidden {
		if errors.Is(err, e) {
			return http.StatusForbidden
		}
	}
	return http.StatusInternalServerError
}

// writeError maps `err` to a status code. Internal errors are logged and
// answered with an opaque message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.L().Error("request failed",
			zap.String("request", middleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		errorWithJSON(w, r, code, "internal error")
		return
	}
	errorWithJSON(w, r, code, "%s", err)
}

func errorWithJSON(w http.ResponseWriter, r *http.Request, statusCode int, format string, a ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	v := struct {
		ReqID string `json:"request_id,omitempty"`
		Err   string `json:"error"`
	}{
		ReqID: middleware.GetReqID(r.Context()),
		Err:   fmt.Sprintf(format, a...),
	}
	b, err := json.Marshal(&v)
	if err == nil {
		w.Write(b) //nolint: errcheck
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.L().Error("failed to encode JSON response",
			zap.String("request", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
	}
}

func writeText(w http.ResponseWriter, r *http.Request, s string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(s)); err != nil {
		log.L().Error("failed to write response",
			zap.String("request", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
	}
}
