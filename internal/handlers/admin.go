package handlers

import (
	"net/http"
	"strconv"

	"lightbooru/internal/dupes"
	"lightbooru/internal/library"
	"lightbooru/internal/logging"
)

// Rebuild triggers a full scan and snapshot swap. The request blocks until
// the rebuild finishes so callers see the outcome; concurrent rebuilds
// supersede each other and the losers report a conflict.
func (h *Handlers) Rebuild(w http.ResponseWriter, r *http.Request) {
	snap, err := h.lib.Rebuild(r.Context())
	if err != nil {
		logging.Error("rebuild request failed: %v", err)
		writeJSONError(w, "rebuild failed: "+err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, snap.Report())
}

// Duplicates runs a duplicate scan over the current snapshot.
//
// Query parameters: algorithm (ahash/dhash/phash), threshold (max Hamming
// distance), skipSameDir (true/false). Unset parameters fall back to the
// configured defaults.
func (h *Handlers) Duplicates(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w)
	if snap == nil {
		return
	}

	q := r.URL.Query()
	opts := dupes.Options{
		Threshold:   h.config.HashThreshold,
		SkipSameDir: h.config.SkipSameDir,
	}

	algo, err := dupes.ParseAlgorithm(firstNonEmpty(q.Get("algorithm"), h.config.HashAlgorithm))
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	opts.Algorithm = algo

	if raw := q.Get("threshold"); raw != "" {
		threshold, err := strconv.Atoi(raw)
		if err != nil || threshold < 0 {
			writeJSONError(w, "invalid threshold: "+raw, http.StatusBadRequest)
			return
		}
		opts.Threshold = threshold
	}
	if raw := q.Get("skipSameDir"); raw != "" {
		skip, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSONError(w, "invalid skipSameDir: "+raw, http.StatusBadRequest)
			return
		}
		opts.SkipSameDir = skip
	}

	report, err := dupes.Find(r.Context(), dupeInputs(snap), opts)
	if err != nil {
		writeJSONError(w, "duplicate scan failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, report)
}

func dupeInputs(snap *library.Snapshot) []dupes.Input {
	records := snap.Records()
	inputs := make([]dupes.Input, 0, len(records))
	for _, rec := range records {
		inputs = append(inputs, dupes.Input{ID: rec.ID, Path: rec.FilePath})
	}
	return inputs
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
