package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"unicode"
)

func respondWithError(w http.ResponseWriter, code int, errorCode, message string) {
	respondWithJSON(w, code, map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

// safeReturnPath accepts only same-origin absolute paths without control
// characters.
func safeReturnPath(from string) bool {
	if !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.HasPrefix(from, `/\`) {
		return false
	}
	for _, r := range from {
		if unicode.IsControl(r) {
			return false
		}
	}
	u, err := url.Parse(from)
	return err == nil && u.Scheme == "" && u.Host == ""
}
