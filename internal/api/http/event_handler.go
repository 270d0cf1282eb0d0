package http

import (
	"fmt"
	"net/http"

	"acetrack-backend/internal/domain"
	"acetrack-backend/internal/service"
)

type EventHandler struct {
	eventService service.EventService
}

func NewEventHandler(es service.EventService) *EventHandler {
	return &EventHandler{eventService: es}
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var in service.CreateEventInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	event, err := h.eventService.CreateEvent(r.Context(), actor, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	includeDeleted := r.URL.Query().Get("include_deleted") == "true"
	event, err := h.eventService.GetEvent(r.Context(), actorFrom(r), id, includeDeleted)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// List serves both the public event feed and the scoped admin views.
// Anonymous callers only ever see published events.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	orgFilter, err := queryInt32(r, "org_id")
	if err != nil {
		writeError(w, err)
		return
	}
	includeDeleted := r.URL.Query().Get("include_deleted") == "true"

	events, err := h.eventService.ListEvents(r.Context(), actorFrom(r), orgFilter, includeDeleted)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var in service.UpdateEventInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	event, err := h.eventService.UpdateEvent(r.Context(), actor, id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

type transitionRequest struct {
	Status string `json:"status"`
}

func (h *EventHandler) Transition(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	target, ok := domain.ParseEventStatus(req.Status)
	if !ok {
		writeError(w, fmt.Errorf("%w: unknown event status %q", domain.ErrValidation, req.Status))
		return
	}

	event, err := h.eventService.Transition(r.Context(), actor, id, target)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	permanently := r.URL.Query().Get("permanently") == "true"

	if err := h.eventService.DeleteEvent(r.Context(), actor, id, permanently); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *EventHandler) Restore(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	event, err := h.eventService.RestoreEvent(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

type checkInTokenResponse struct {
	Token string `json:"token"`
}

// CheckInToken returns the signed payload the organizer embeds in the
// event's QR code.
func (h *EventHandler) CheckInToken(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := h.eventService.CheckInToken(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, checkInTokenResponse{Token: token})
}
