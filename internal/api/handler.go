// Package api provides HTTP handlers for the ERP REST API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ARahim3/ERP-Voice-Assistant/internal/broadcast"
	"github.com/ARahim3/ERP-Voice-Assistant/internal/domain"
	"github.com/ARahim3/ERP-Voice-Assistant/internal/store"
)

// resources maps URL path segments to entity kinds.
var resources = map[string]domain.Kind{
	"customers": domain.KindCustomer,
	"products":  domain.KindProduct,
	"employees": domain.KindEmployee,
	"orders":    domain.KindOrder,
	"invoices":  domain.KindInvoice,
}

// Handler serves the entity CRUD endpoints plus the dashboard and UI
// command surface used by the front-end.
type Handler struct {
	store    store.Store
	bc       *broadcast.Hub
	voiceURL string
}

func NewHandler(st store.Store, bc *broadcast.Hub, voiceURL string) *Handler {
	return &Handler{store: st, bc: bc, voiceURL: voiceURL}
}

// RegisterRoutes mounts all API routes on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.health)
	r.Route("/api", func(r chi.Router) {
		for segment, kind := range resources {
			kind := kind
			r.Route("/"+segment, func(r chi.Router) {
				r.Get("/", h.list(kind))
				r.Post("/", h.create(kind))
				r.Put("/{id}", h.update(kind))
				r.Delete("/{id}", h.delete(kind))
			})
		}
		r.Get("/dashboard", h.dashboard)
		r.Post("/ui_command", h.uiCommand)
		r.Get("/config", h.clientConfig)
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

func (h *Handler) list(kind domain.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := h.store.List(r.Context(), kind)
		if err != nil {
			slog.Error("list failed", "kind", kind, "error", err)
			Error(w, http.StatusInternalServerError, "failed to list records")
			return
		}
		if records == nil {
			records = []domain.Record{}
		}
		JSON(w, http.StatusOK, records)
	}
}

func (h *Handler) create(kind domain.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec domain.Record
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			Error(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		created, err := h.store.Add(r.Context(), kind, rec)
		if err != nil {
			if errors.Is(err, store.ErrMissingRequired) {
				Error(w, http.StatusBadRequest, err.Error())
				return
			}
			slog.Error("create failed", "kind", kind, "error", err)
			Error(w, http.StatusInternalServerError, "failed to create record")
			return
		}
		JSON(w, http.StatusCreated, created)
	}
}

func (h *Handler) update(kind domain.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var rec domain.Record
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			Error(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		updated, err := h.store.Update(r.Context(), kind, id, rec)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				Error(w, http.StatusNotFound, "record not found")
				return
			}
			slog.Error("update failed", "kind", kind, "id", id, "error", err)
			Error(w, http.StatusInternalServerError, "failed to update record")
			return
		}
		JSON(w, http.StatusOK, updated)
	}
}

func (h *Handler) delete(kind domain.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		deleted, err := h.store.Delete(r.Context(), kind, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				Error(w, http.StatusNotFound, "record not found")
				return
			}
			slog.Error("delete failed", "kind", kind, "id", id, "error", err)
			Error(w, http.StatusInternalServerError, "failed to delete record")
			return
		}
		JSON(w, http.StatusOK, deleted)
	}
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.Counts(r.Context())
	if err != nil {
		slog.Error("dashboard counts failed", "error", err)
		Error(w, http.StatusInternalServerError, "failed to compute dashboard stats")
		return
	}
	JSON(w, http.StatusOK, counts)
}

// uiCommandRequest mirrors the instruction payload the front-end consumes.
type uiCommandRequest struct {
	Action    string `json:"action"`
	TargetApp string `json:"target_app,omitempty"`
	URL       string `json:"url,omitempty"`
	Params    any    `json:"params,omitempty"`
	FieldID   string `json:"field_id,omitempty"`
	Value     string `json:"value,omitempty"`
	FormID    string `json:"form_id,omitempty"`
}

// uiCommand lets non-voice clients (tests, scripts) push a UI instruction
// to connected front-ends. Only the action discriminator is required;
// clients ignore actions they do not recognize, so the set is open here.
func (h *Handler) uiCommand(w http.ResponseWriter, r *http.Request) {
	var req uiCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Action == "" {
		Error(w, http.StatusBadRequest, "action is required")
		return
	}
	inst := domain.Instruction{
		Action:    req.Action,
		TargetApp: req.TargetApp,
		URL:       req.URL,
		Params:    req.Params,
		FieldID:   req.FieldID,
		Value:     req.Value,
		FormID:    req.FormID,
	}
	if err := h.bc.UIInstruction(inst); err != nil && !errors.Is(err, broadcast.ErrNoClients) {
		slog.Error("ui command broadcast failed", "action", req.Action, "error", err)
		Error(w, http.StatusInternalServerError, "failed to broadcast command")
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"message":     "UI instruction sent",
		"instruction": inst,
	})
}

// health is the liveness probe.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// clientConfig tells the browser where the voice channel lives.
func (h *Handler) clientConfig(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"voice_url": h.voiceURL})
}
