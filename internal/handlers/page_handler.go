package handlers

import (
	"net/http"

	"storefront/internal/middleware"
)

// Page answers a guarded view with its name and the signed-in user. The
// real views are rendered client side from this payload.
func Page(view string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := middleware.GetUser(r)
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"view": view,
			"user": user,
		})
	}
}
