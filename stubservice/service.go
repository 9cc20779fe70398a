// Package stubservice is a minimal stand-in for the API server under test. It answers the four
// endpoints that the contract tests exercise, so that the harness can check itself without an
// external server.
package stubservice

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/galactic-filament/apiserver-contract-tests/framework"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 1 << 20

type createPostRequest struct {
	Body *string `json:"body"`
}

type createPostResponse struct {
	ID int64 `json:"id"`
}

type postResponse struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// printLogger adapts a framework.Logger to chi's middleware.LoggerInterface.
type printLogger struct {
	target framework.Logger
}

func (p printLogger) Print(v ...interface{}) {
	p.target.Printf("%s", fmt.Sprint(v...))
}

type handler struct {
	store  PostStore
	logger framework.Logger
}

// NewRouter creates a chi router serving the stand-in endpoints.
func NewRouter(store PostStore, logger framework.Logger) chi.Router {
	if logger == nil {
		logger = framework.NullLogger()
	}
	h := &handler{store: store, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  printLogger{logger},
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)

	r.Get("/", h.greeting)
	r.Get("/ping", h.ping)
	r.Post("/reflection", h.reflection)
	r.Post("/posts", h.createPost)
	r.Get("/posts/{id}", h.getPost)
	return r
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, text)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *handler) greeting(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "Hello, world!")
}

func (h *handler) ping(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "Pong")
}

func (h *handler) reflection(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{err.Error()})
		return
	}
	if !json.Valid(data) {
		writeJSON(w, http.StatusBadRequest, errorResponse{"request body is not valid JSON"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *handler) createPost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{"request body is not valid JSON"})
		return
	}
	if req.Body == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{`"body" is required`})
		return
	}

	id, err := h.store.CreatePost(r.Context(), *req.Body)
	if err != nil {
		h.logger.Printf("failed to create post: %s", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{"could not create post"})
		return
	}
	writeJSON(w, http.StatusOK, createPostResponse{ID: id})
}

func (h *handler) getPost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{"post id must be an integer"})
		return
	}
	p, err := h.store.GetPost(r.Context(), id)
	if errors.Is(err, ErrPostNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{err.Error()})
		return
	}
	if err != nil {
		h.logger.Printf("failed to read post %d: %s", id, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{"could not read post"})
		return
	}
	writeJSON(w, http.StatusOK, postResponse{ID: p.ID, Body: p.Body, CreatedAt: p.CreatedAt})
}

// Service is a running stand-in server with an in-memory post store.
type Service struct {
	URL    string
	server *http.Server
	store  *SQLiteStore
}

// Start runs the stand-in on a free port of the loopback interface.
func Start(logger framework.Logger) (*Service, error) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		return nil, err
	}
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("listen: %w", err)
	}

	s := &Service{
		URL:    "http://" + listener.Addr().String(),
		server: &http.Server{Handler: NewRouter(store, logger)},
		store:  store,
	}
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed && logger != nil {
			logger.Printf("stand-in server stopped: %s", err)
		}
	}()
	return s, nil
}

func (s *Service) Close() error {
	err := s.server.Close()
	if storeErr := s.store.Close(); err == nil {
		err = storeErr
	}
	return err
}
