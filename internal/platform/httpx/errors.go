package httpx

import "net/http"

// Shared problem responses for the reporting API. Handlers map their own
// domain sentinels onto these so every endpoint speaks the same vocabulary.

// Validation responds 400 for rejected request parameters.
func Validation(w http.ResponseWriter, detail string) {
	Problem(w, http.StatusBadRequest, "Validation Failed", detail)
}

// NotFound responds 404.
func NotFound(w http.ResponseWriter, detail string) {
	Problem(w, http.StatusNotFound, "Not Found", detail)
}

// NotReady responds 503 while reference data is still loading. Clients
// treat it as "try again", never as a failure.
func NotReady(w http.ResponseWriter) {
	Problem(w, http.StatusServiceUnavailable, "Not Ready", "reference data is still loading")
}

// Superseded responds 409 for a refresh whose result was discarded
// because a newer one was issued while it ran.
func Superseded(w http.ResponseWriter) {
	Problem(w, http.StatusConflict, "Superseded", "a newer refresh superseded this request")
}

// Internal responds 500 without leaking the cause; the handler logs it.
func Internal(w http.ResponseWriter) {
	Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
