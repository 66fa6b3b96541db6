package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/scaffold-api/internal/api/shared"
	"github.com/phrazzld/scaffold-api/internal/domain"
	"github.com/phrazzld/scaffold-api/internal/service"
)

// ItemHandler handles item requests on behalf of the current user.
type ItemHandler struct {
	items  service.ItemService
	logger *slog.Logger
}

// NewItemHandler creates an ItemHandler.
func NewItemHandler(items service.ItemService, logger *slog.Logger) *ItemHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ItemHandler{
		items:  items,
		logger: logger.With("component", "item_handler"),
	}
}

// List handles GET /items.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := shared.ParsePage(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	items, err := h.items.List(r.Context(), shared.CurrentUser(r.Context()), page)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, items)
}

// Create handles POST /items.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.ItemCreate
	if !decodeAndValidate(w, r, &req) {
		return
	}

	item, err := h.items.Create(r.Context(), shared.CurrentUser(r.Context()), req)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, item)
}

// Get handles GET /items/{id}.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, id, ok := handleUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	item, err := h.items.Get(r.Context(), user, id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, item)
}

// Update handles PUT /items/{id}.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, id, ok := handleUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	var req domain.ItemUpdate
	if !decodeAndValidate(w, r, &req) {
		return
	}

	item, err := h.items.Update(r.Context(), user, id, req)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, item)
}

// Delete handles DELETE /items/{id} and returns the removed item.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, id, ok := handleUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	item, err := h.items.Delete(r.Context(), user, id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, item)
}
