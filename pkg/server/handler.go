package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.githedgehog.com/provisioner/pkg/vmodel/fsm"
)

// CreateRequest is the body of a vmodel create request
type CreateRequest struct {
	Template string         `json:"template"`
	Label    string         `json:"label"`
	Metadata map[string]any `json:"metadata"`
}

// UpdateRequest is the body of a vmodel update request. Absent fields are left untouched.
type UpdateRequest struct {
	Label    *string        `json:"label,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ActionRequest is the body of an administrative action on a vmodel
type ActionRequest struct {
	Action string `json:"action"`
	Node   string `json:"node,omitempty"`
}

type handler struct {
	e Engine
}

// Handler returns the router of all routes
func Handler(e Engine) http.Handler {
	h := &handler{e: e}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(AddResponseRequestID())
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Heartbeat("/healthz"))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/policy", func(r chi.Router) {
		r.Get("/callback/{policyID}/{namespace}/*", h.callback)
		r.Post("/callback/{policyID}/{namespace}/*", h.callback)
		r.Get("/mkcall/{policyID}", h.mkCall)
		r.Get("/bootcall/{policyID}", h.bootCall)
	})

	r.Route("/vmodel", func(r chi.Router) {
		r.Get("/templates", h.listTemplates)
		r.Get("/templates/{name}", h.getTemplate)
		r.Get("/", h.listVModels)
		r.With(middleware.AllowContentType("application/json")).Post("/", h.createVModel)
		r.Route("/{uuid}", func(r chi.Router) {
			r.Get("/", h.getVModel)
			r.Delete("/", h.deleteVModel)
			r.With(middleware.AllowContentType("application/json")).Put("/", h.updateVModel)
			r.With(middleware.AllowContentType("application/json")).Post("/action", h.actVModel)
		})
	})
	return r
}

// AddResponseRequestID sets the Request-ID response header
func AddResponseRequestID() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			reqID := middleware.GetReqID(r.Context())
			if reqID != "" {
				w.Header().Set("Request-ID", reqID)
			}
			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}

// callbackArgs splits the path after the namespace into the action and its arguments
func callbackArgs(r *http.Request) []string {
	var ret []string
	for _, s := range strings.Split(chi.URLParam(r, "*"), "/") {
		if s != "" {
			ret = append(ret, s)
		}
	}
	return ret
}

func (h *handler) callback(w http.ResponseWriter, r *http.Request) {
	ret, err := h.e.Callback(r.Context(), chi.URLParam(r, "policyID"), chi.URLParam(r, "namespace"), callbackArgs(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeText(w, r, ret)
}

func (h *handler) mkCall(w http.ResponseWriter, r *http.Request) {
	ret, err := h.e.MkCall(r.Context(), chi.URLParam(r, "policyID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ret)
}

func (h *handler) bootCall(w http.ResponseWriter, r *http.Request) {
	ret, err := h.e.BootCall(r.Context(), chi.URLParam(r, "policyID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeText(w, r, ret)
}

func (h *handler) listTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.e.Templates())
}

func (h *handler) getTemplate(w http.ResponseWriter, r *http.Request) {
	ret, err := h.e.Template(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ret)
}

func (h *handler) listVModels(w http.ResponseWriter, r *http.Request) {
	ret, err := h.e.ListVModels(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ret)
}

func (h *handler) getVModel(w http.ResponseWriter, r *http.Request) {
	ret, err := h.e.GetVModel(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ret)
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return invalidRequestError(err)
	}
	return nil
}

func (h *handler) createVModel(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ret, err := h.e.CreateVModel(r.Context(), req.Template, req.Label, req.Metadata)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, ret)
}

func (h *handler) updateVModel(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ret, err := h.e.UpdateVModel(r.Context(), chi.URLParam(r, "uuid"), req.Label, req.Metadata)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ret)
}

func (h *handler) deleteVModel(w http.ResponseWriter, r *http.Request) {
	if err := h.e.DeleteVModel(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) actVModel(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ret, err := h.e.Act(r.Context(), chi.URLParam(r, "uuid"), fsm.Action(req.Action), req.Node)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ret)
}
