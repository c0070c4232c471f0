package presentations

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"slidesync/core"
)

// HandleGet serves the stored snapshot of one presentation. Read-only:
// mutation goes through the event protocol, never through REST.
func HandleGet(store core.PresentationStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Presentation id is required"})
			return
		}

		p, err := store.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, map[string]string{"error": "Presentation not found"})
				return
			}
			logrus.WithFields(logrus.Fields{
				"error":           err,
				"presentation_id": id,
			}).Error("Failed to load presentation")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to load presentation"})
			return
		}

		render.JSON(w, r, p)
	}
}
