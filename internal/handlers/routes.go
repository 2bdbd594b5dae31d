package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router builds the API route table. Middleware is layered on by the caller.
func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/items", h.ListItems).Methods(http.MethodGet)
	r.HandleFunc("/api/items/{id}", h.GetItem).Methods(http.MethodGet)
	r.HandleFunc("/api/items/{id}/edits", h.EditItem).Methods(http.MethodPost)
	r.HandleFunc("/api/tags", h.Tags).Methods(http.MethodGet)
	r.HandleFunc("/api/platforms", h.Platforms).Methods(http.MethodGet)
	r.HandleFunc("/api/report", h.Report).Methods(http.MethodGet)
	r.HandleFunc("/api/duplicates", h.Duplicates).Methods(http.MethodGet)
	r.HandleFunc("/api/rebuild", h.Rebuild).Methods(http.MethodPost)
	r.HandleFunc("/api/version", h.Version).Methods(http.MethodGet)

	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}
