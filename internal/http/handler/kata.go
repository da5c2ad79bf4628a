package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jaekwang-park/kata-api/internal/middleware"
	"github.com/jaekwang-park/kata-api/internal/model"
	"github.com/jaekwang-park/kata-api/internal/service"
	"github.com/jaekwang-park/kata-api/internal/view"
)

type KataHandler struct {
	svc                *service.KataService
	logger             *slog.Logger
	notFoundAsInternal bool
}

type KataHandlerOption func(*KataHandler)

// WithNotFoundAsInternal makes unknown ids answer 500 INTERNAL_ERROR instead
// of 404, for clients written against the original API.
func WithNotFoundAsInternal(enabled bool) KataHandlerOption {
	return func(h *KataHandler) {
		h.notFoundAsInternal = enabled
	}
}

func NewKataHandler(svc *service.KataService, logger *slog.Logger, opts ...KataHandlerOption) *KataHandler {
	h := &KataHandler{svc: svc, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the kata endpoints relative to their mount point.
// Static segments such as bulk-delete and stats win over {id}.
func (h *KataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/stats", h.handleStats)
	r.Get("/difficulties", h.handleDifficulties)
	r.Delete("/bulk-delete", h.handleBulkDelete)
	r.Get("/{id}", h.handleGetByID)
	r.Patch("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)

	return r
}

func (h *KataHandler) handleList(w http.ResponseWriter, r *http.Request) {
	filter, err := view.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, CodeInvalidFilter, "filter must be 'all', 'active' or 'completed'")
		return
	}

	katas, err := h.svc.List(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, view.Apply(katas, filter))
}

func (h *KataHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, stats)
}

type difficultiesResponse struct {
	Difficulties []string `json:"difficulties"`
}

func (h *KataHandler) handleDifficulties(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, difficultiesResponse{Difficulties: view.Difficulties})
}

type createKataRequest struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Difficulty *string `json:"difficulty,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

func (h *KataHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createKataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, CodeInvalidJSON, "invalid request body")
		return
	}

	input := service.CreateKataInput{
		Title:      req.Title,
		URL:        req.URL,
		Difficulty: req.Difficulty,
		Notes:      req.Notes,
	}

	kata, err := h.svc.Create(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, kata)
}

func (h *KataHandler) handleGetByID(w http.ResponseWriter, r *http.Request) {
	kata, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, kata)
}

type updateKataRequest struct {
	Title      *string              `json:"title"`
	URL        *string              `json:"url"`
	Difficulty model.OptionalString `json:"difficulty"`
	Completed  *bool                `json:"completed"`
	Notes      model.OptionalString `json:"notes"`
}

func (h *KataHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateKataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, CodeInvalidJSON, "invalid request body")
		return
	}

	input := service.UpdateKataInput{
		Title:      req.Title,
		URL:        req.URL,
		Difficulty: req.Difficulty,
		Completed:  req.Completed,
		Notes:      req.Notes,
	}

	kata, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, kata)
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *KataHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, messageResponse{Message: "Kata deleted"})
}

type bulkDeleteRequest struct {
	IDs any `json:"ids"`
}

type bulkDeleteResponse struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deletedCount"`
}

func (h *KataHandler) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, CodeInvalidJSON, "invalid request body")
		return
	}

	n, err := h.svc.BulkDelete(r.Context(), service.BulkDeleteInput{IDs: req.IDs})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, bulkDeleteResponse{
		Message:      fmt.Sprintf("%d katas deleted successfully", n),
		DeletedCount: n,
	})
}

func (h *KataHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		WriteError(w, http.StatusBadRequest, CodeInvalidInput, ve.Message)
	case errors.Is(err, service.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, CodeInvalidInput, err.Error())
	case errors.Is(err, service.ErrNotFound) && !h.notFoundAsInternal:
		WriteError(w, http.StatusNotFound, CodeNotFound, "kata not found")
	default:
		h.logger.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetRequestID(r),
		)
		writeInternalError(w)
	}
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, CodeNotFound, "resource not found")
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
}
