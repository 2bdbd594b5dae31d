package handlers

import (
	"encoding/json"
	"net/http"

	"lightbooru/internal/library"
	"lightbooru/internal/logging"
	"lightbooru/internal/startup"
)

// Handlers carries the shared state behind every API endpoint.
type Handlers struct {
	lib    *library.Library
	config *startup.Config
}

// New wires the handler set to a library.
func New(lib *library.Library, config *startup.Config) *Handlers {
	return &Handlers{lib: lib, config: config}
}

// writeJSON encodes v as JSON onto the response. Encoding errors are logged;
// there is nothing left to send the client at that point.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		logging.Error("failed to encode JSON error: %v", err)
	}
}

// decodeJSONBody strictly decodes a request body, rejecting unknown fields
// so typos in edit payloads fail loudly instead of silently doing nothing.
func decodeJSONBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}

// snapshot fetches the current snapshot or answers 503 when none exists yet.
func (h *Handlers) snapshot(w http.ResponseWriter) *library.Snapshot {
	snap := h.lib.Current()
	if snap == nil {
		writeJSONError(w, "no snapshot available yet, try again after the first scan", http.StatusServiceUnavailable)
		return nil
	}
	return snap
}

// Health reports liveness plus whether a snapshot has been published.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":      "ok",
		"hasSnapshot": h.lib.Current() != nil,
	}
	if snap := h.lib.Current(); snap != nil {
		status["items"] = snap.Len()
		status["builtAt"] = snap.BuiltAt()
	}
	writeJSON(w, status)
}

// Version returns the build information.
func (h *Handlers) Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, startup.GetBuildInfo())
}
