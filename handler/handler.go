// Package handler provides the HTTP handlers for the fake server.
package handler

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/stevemurr/fake-server/store"
)

type methodFunc func(r *http.Request, resource, id string) (response, error)

// Handler serves /{resource} and /{resource}/{id} for every resource in the
// store.
type Handler struct {
	store   *store.Store
	logger  *slog.Logger
	methods map[string]methodFunc
	next    http.Handler
}

// New creates a Handler backed by s.
func New(s *store.Store, logger *slog.Logger) *Handler {
	h := &Handler{store: s, logger: logger}
	h.methods = map[string]methodFunc{
		http.MethodGet:    h.get,
		http.MethodPost:   h.post,
		http.MethodPut:    h.put,
		http.MethodDelete: h.delete,
	}
	h.next = logRequests(logger, http.HandlerFunc(h.dispatch))
	return h
}

// ServeHTTP makes Handler an http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.next.ServeHTTP(w, r)
}

// ParsePath splits a URL path into the resource name and optional id.
// Segments after the id are ignored.
func ParsePath(path string) (resource, id string) {
	parts := strings.Split(path, "/")
	if len(parts) > 0 {
		parts = parts[1:]
	}
	if len(parts) > 0 {
		resource = parts[0]
	}
	if len(parts) > 1 {
		id = parts[1]
	}
	return resource, id
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request) {
	setHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	defer func() {
		if v := recover(); v != nil {
			if v == http.ErrAbortHandler {
				panic(v)
			}
			h.writeError(w, r, fmt.Errorf("panic: %v", v))
		}
	}()

	// Ids are matched as sent, so an encoded slash stays part of the id.
	resource, id := ParsePath(r.URL.EscapedPath())
	if !h.store.Has(resource) {
		h.writeError(w, r, errResourceNotFound)
		return
	}
	fn, ok := h.methods[r.Method]
	if !ok {
		h.writeError(w, r, errMethodNotAllowed)
		return
	}
	resp, err := fn(r, resource, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, resp.status, resp.body)
}

// ---------- method handlers ----------

func (h *Handler) get(_ *http.Request, resource, id string) (response, error) {
	if id == "" {
		records, err := h.store.List(resource)
		if err != nil {
			return response{}, err
		}
		return response{http.StatusOK, records}, nil
	}
	rec, err := h.store.Get(resource, id)
	if err != nil {
		return response{}, err
	}
	return response{http.StatusOK, rec}, nil
}

func (h *Handler) post(r *http.Request, resource, _ string) (response, error) {
	rec, err := readRecord(r)
	if err != nil {
		return response{}, err
	}
	created, err := h.store.Create(resource, rec)
	if err != nil {
		return response{}, err
	}
	return response{http.StatusCreated, created}, nil
}

// put replaces the record whose id matches the body's id. The path id is only
// used when the body carries none.
func (h *Handler) put(r *http.Request, resource, id string) (response, error) {
	rec, err := readRecord(r)
	if err != nil {
		return response{}, err
	}
	if _, ok := rec.ID(); !ok && id != "" {
		rec[store.IDKey] = pathID(id)
	}
	updated, err := h.store.Replace(resource, rec)
	if err != nil {
		return response{}, err
	}
	return response{http.StatusOK, updated}, nil
}

func (h *Handler) delete(_ *http.Request, resource, id string) (response, error) {
	if id == "" {
		return response{}, errNoID
	}
	if _, err := h.store.Delete(resource, id); err != nil {
		return response{}, err
	}
	return response{status: http.StatusNoContent}, nil
}

// readRecord reads the request body as a single JSON object.
func readRecord(r *http.Request) (store.Record, error) {
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if len(body) == 0 {
		return nil, errNoBody
	}
	rec, err := store.DecodeRecord(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	return rec, nil
}

// pathID keeps integer ids numeric so they compare and persist like
// server-assigned ones.
func pathID(id string) any {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}
