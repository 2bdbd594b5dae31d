package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"lightbooru/internal/library"
	"lightbooru/internal/overlay"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// itemListResponse is the shape of GET /api/items.
type itemListResponse struct {
	Items      []library.ViewRecord `json:"items"`
	TotalItems int                  `json:"totalItems"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"pageSize"`
	TotalPages int                  `json:"totalPages"`
}

// ListItems evaluates a query against the current snapshot.
//
// Query parameters: tags (required-all), tagsAny, tagsNone (comma separated),
// sensitive (true/false), platform, author, after, before (RFC 3339 or
// date-only), q (free text), sort (posted_at/score/file_size), order
// (asc/desc), page, pageSize.
func (h *Handlers) ListItems(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w)
	if snap == nil {
		return
	}

	q := r.URL.Query()
	filter := library.Filter{
		TagsAll:  splitTerms(q.Get("tags")),
		TagsAny:  splitTerms(q.Get("tagsAny")),
		TagsNone: splitTerms(q.Get("tagsNone")),
		Platform: q.Get("platform"),
		Author:   q.Get("author"),
		Text:     q.Get("q"),
		Aliases:  h.lib.Aliases(),
	}

	if raw := q.Get("sensitive"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSONError(w, "invalid sensitive value: "+raw, http.StatusBadRequest)
			return
		}
		filter.Sensitive = &value
	}

	var err error
	if filter.PostedAfter, err = parseTimeParam(q.Get("after")); err != nil {
		writeJSONError(w, "invalid after value: "+q.Get("after"), http.StatusBadRequest)
		return
	}
	if filter.PostedBefore, err = parseTimeParam(q.Get("before")); err != nil {
		writeJSONError(w, "invalid before value: "+q.Get("before"), http.StatusBadRequest)
		return
	}

	sortOrder := library.Sort{
		Field: library.SortField(q.Get("sort")),
		Order: library.SortOrder(q.Get("order")),
	}
	switch sortOrder.Field {
	case "", library.SortByPostedAt, library.SortByScore, library.SortByFileSize:
	default:
		writeJSONError(w, "invalid sort field: "+string(sortOrder.Field), http.StatusBadRequest)
		return
	}

	page, pageSize := 1, defaultPageSize
	if raw := q.Get("page"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			page = value
		}
	}
	if raw := q.Get("pageSize"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			pageSize = value
		}
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	items, total := snap.Query(filter, sortOrder, library.Page{
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	})

	totalPages := (total + pageSize - 1) / pageSize
	writeJSON(w, itemListResponse{
		Items:      items,
		TotalItems: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

// GetItem returns one record by ID.
func (h *Handlers) GetItem(w http.ResponseWriter, r *http.Request) {
	rec, err := h.lib.GetItem(mux.Vars(r)["id"])
	switch {
	case errors.Is(err, library.ErrNoSnapshot):
		writeJSONError(w, "no snapshot available yet", http.StatusServiceUnavailable)
	case errors.Is(err, library.ErrNotFound):
		writeJSONError(w, "item not found", http.StatusNotFound)
	case err != nil:
		writeJSONError(w, "lookup failed", http.StatusInternalServerError)
	default:
		writeJSON(w, rec)
	}
}

// editRequest is the body of POST /api/items/{id}/edits.
type editRequest struct {
	AddTags        []string `json:"addTags,omitempty"`
	RemoveTags     []string `json:"removeTags,omitempty"`
	Sensitive      *bool    `json:"sensitive,omitempty"`
	ClearSensitive bool     `json:"clearSensitive,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
}

// EditItem applies an overlay delta to one item and returns the refreshed
// record.
func (h *Handlers) EditItem(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	delta := overlay.Delta{
		AddTags:        req.AddTags,
		RemoveTags:     req.RemoveTags,
		SetSensitive:   req.Sensitive,
		ClearSensitive: req.ClearSensitive,
		Notes:          req.Notes,
	}
	if delta.IsZero() {
		writeJSONError(w, "edit changes nothing", http.StatusBadRequest)
		return
	}

	rec, err := h.lib.ApplyEdit(mux.Vars(r)["id"], delta)
	switch {
	case errors.Is(err, library.ErrNoSnapshot):
		writeJSONError(w, "no snapshot available yet", http.StatusServiceUnavailable)
	case errors.Is(err, library.ErrNotFound):
		writeJSONError(w, "item not found", http.StatusNotFound)
	case err != nil:
		writeJSONError(w, "edit failed: "+err.Error(), http.StatusInternalServerError)
	default:
		writeJSON(w, rec)
	}
}

// Tags returns every distinct tag with its count.
func (h *Handlers) Tags(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w)
	if snap == nil {
		return
	}
	writeJSON(w, snap.Tags())
}

// Platforms returns every distinct source platform with its count.
func (h *Handlers) Platforms(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w)
	if snap == nil {
		return
	}
	writeJSON(w, snap.Platforms())
}

// Report returns the scan report of the current snapshot.
func (h *Handlers) Report(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w)
	if snap == nil {
		return
	}
	writeJSON(w, snap.Report())
}

func splitTerms(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, term := range strings.Split(raw, ",") {
		term = strings.TrimSpace(term)
		if term != "" {
			out = append(out, term)
		}
	}
	return out
}

func parseTimeParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unparseable time")
}
