package http

import (
	"io"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"

	"acetrack-backend/internal/service"
	"acetrack-backend/internal/storage"
)

// BannerHandler handles event banner image upload and download. Upload
// goes through the event service so the usual event modification rules
// apply; download is public.
type BannerHandler struct {
	eventService service.EventService
	store        storage.BannerStore
}

func NewBannerHandler(es service.EventService, store storage.BannerStore) *BannerHandler {
	return &BannerHandler{eventService: es, store: store}
}

var bannerExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

func (h *BannerHandler) Upload(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	eventID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	ext, ok := bannerExtensions[r.Header.Get("Content-Type")]
	if !ok {
		http.Error(w, "Invalid content type", http.StatusBadRequest)
		return
	}

	// Record the URL on the event before touching the filesystem:
	// UpdateEvent enforces who may modify the event, so a denied
	// caller never gets a byte onto disk.
	url := h.store.URL(eventID, ext)
	event, err := h.eventService.UpdateEvent(r.Context(), actor, eventID, service.UpdateEventInput{BannerURL: &url})
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.store.Save(eventID, ext, r.Body); err != nil {
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *BannerHandler) Download(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	file, err := h.store.Open(key)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	contentType := "application/octet-stream"
	switch filepath.Ext(key) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".gif":
		contentType = "image/gif"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	io.Copy(w, file)
}
