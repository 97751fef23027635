// Package server receives saved sketches and ranks drawings against them.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"MySketchBoard/internal/match"
	"MySketchBoard/internal/middleware"
	"MySketchBoard/internal/state"
)

// DefaultK is the number of results of a search that does not ask for a
// count.
const DefaultK = 5

const maxFormSize = 32 << 20

// Server serves the save, search and live search endpoints over one library.
type Server struct {
	store    *Store
	library  *match.Library
	registry *prometheus.Registry
	saved    prometheus.Counter
	searches *prometheus.CounterVec
	upgrader websocket.Upgrader
	mux      *http.ServeMux
}

// New builds the handlers over store and library. Metrics go to a registry
// of their own.
func New(store *Store, library *match.Library) (*Server, error) {
	s := &Server{
		store:    store,
		library:  library,
		registry: prometheus.NewRegistry(),
		saved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sketchboard",
			Name:      "sketches_saved_total",
			Help:      "Number of sketches saved",
		}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sketchboard",
			Name:      "searches_total",
			Help:      "Number of sketch searches",
		}, []string{"transport"}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The board runs from file:// pages and other hosts.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, c := range []prometheus.Collector{
		s.saved, s.searches,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := s.registry.Register(c); err != nil {
			return nil, fmt.Errorf("server: register metrics: %w", err)
		}
	}
	instrumentation, err := middleware.NewInstrumentation(s.registry)
	if err != nil {
		return nil, fmt.Errorf("server: register metrics: %w", err)
	}

	var common []alice.Constructor
	common = append(common, instrumentation.Middleware)
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		common = append(common, middleware.LogRequest)
	}
	chain := alice.New(common...)
	post := chain.Append(middleware.Allow(http.MethodPost))
	get := chain.Append(middleware.Allow(http.MethodGet))

	s.mux = http.NewServeMux()
	s.mux.Handle("/save", post.ThenFunc(s.handleSave))
	s.mux.Handle("/search", post.ThenFunc(s.handleSearch))
	s.mux.Handle("/ws/search", get.ThenFunc(s.handleLiveSearch))
	s.mux.Handle("/health", get.ThenFunc(s.handleHealth))
	s.mux.Handle("/metrics", get.Then(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Int("sketches", s.library.Len()).Msg("[SERVER] listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info().Msg("[SERVER] shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("bad form: %w", err))
		return
	}
	var strokes []state.EndpointPair
	if raw := r.PostForm.Get("json_string"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &strokes); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("bad json_string: %w", err))
			return
		}
	}

	features := match.Features(strokes)
	id, err := s.store.Save(r.PostForm.Get("imgBase64"), features)
	if err != nil {
		var inErr *inputError
		if errors.As(err, &inErr) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		log.Error().Err(err).Msg("[SAVE] failed")
		writeError(w, http.StatusInternalServerError, errors.New("could not save sketch"))
		return
	}
	s.library.Add(id, features)
	s.saved.Inc()
	log.Info().Str("id", id).Int("strokes", len(strokes)).Msg("[SAVE] sketch stored")
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req match.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormSize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("bad search request: %w", err))
		return
	}
	s.searches.WithLabelValues("http").Inc()
	writeJSON(w, http.StatusOK, s.search(req))
}

func (s *Server) handleLiveSearch(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		log.Debug().Err(err).Msg("[SEARCH] websocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxFormSize)

	for {
		var req match.Request
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Msg("[SEARCH] live search closed")
			}
			return
		}
		s.searches.WithLabelValues("websocket").Inc()
		if err := conn.WriteJSON(s.search(req)); err != nil {
			log.Debug().Err(err).Msg("[SEARCH] live search write failed")
			return
		}
	}
}

func (s *Server) search(req match.Request) match.Response {
	k := req.K
	if k == 0 {
		k = DefaultK
	}
	return match.Response{Results: s.library.Search(req.Strokes, k)}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct{}{})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
