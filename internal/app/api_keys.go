package app

import (
	"crypto/subtle"
	"net/http"
)

// RequestHasInvalidAPIKey checks the key query parameter of r.
func (app *Application) RequestHasInvalidAPIKey(r *http.Request) bool {
	return app.IsInvalidAPIKey(r.URL.Query().Get("key"))
}

// IsInvalidAPIKey reports whether key is empty or unknown. Keys are compared in
// constant time.
func (app *Application) IsInvalidAPIKey(key string) bool {
	if key == "" {
		return true
	}
	valid := false
	for _, k := range app.Config.ApiKeys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(k)) == 1 {
			valid = true
		}
	}
	return !valid
}
