// Package server exposes the scoring session over HTTP: single and batch
// prediction, health and readiness probes, Prometheus metrics, model
// metadata, the persisted default threshold, and a WebSocket score feed.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/sathwikreddyshamakuri/credit-card-fraud-detector/internal/cfg"
	"github.com/sathwikreddyshamakuri/credit-card-fraud-detector/internal/features"
	"github.com/sathwikreddyshamakuri/credit-card-fraud-detector/internal/metrics"
	"github.com/sathwikreddyshamakuri/credit-card-fraud-detector/internal/scoring"
	"github.com/sathwikreddyshamakuri/credit-card-fraud-detector/internal/storage"
)

// Options carries the dependencies the server needs. Store and Gatherer are
// optional; a nil Store disables the audit log and a nil Gatherer falls back
// to the default Prometheus registry.
type Options struct {
	Port          int
	Session       *scoring.Session
	Metrics       *metrics.Metrics
	Store         *storage.Store
	Gatherer      prometheus.Gatherer
	HasModel      bool
	Threshold     float64
	ThresholdPath string
}

// Server is the HTTP front end of the scoring service.
type Server struct {
	session  *scoring.Session
	met      *metrics.Metrics
	store    *storage.Store
	hub      *Hub
	hasModel bool

	mu            sync.RWMutex
	threshold     float64
	thresholdPath string

	httpServer *http.Server
}

// New builds the server and its route table.
func New(opts Options) *Server {
	s := &Server{
		session:       opts.Session,
		met:           opts.Metrics,
		store:         opts.Store,
		hub:           NewHub(opts.Metrics),
		hasModel:      opts.HasModel,
		threshold:     opts.Threshold,
		thresholdPath: opts.ThresholdPath,
	}

	if s.met != nil {
		s.met.ThresholdValue.Set(s.threshold)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/predict", s.handlePredict)
	mux.HandleFunc("/predict/batch", s.handleBatch)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/readyz", s.handleReadyz)
	mux.HandleFunc("/model/info", s.handleModelInfo)
	mux.HandleFunc("/config/threshold", s.handleThreshold)
	mux.Handle("/ws/scores", s.hub)

	if opts.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	} else {
		mux.Handle("/metrics", promhttp.Handler())
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Handler exposes the route table for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("starting scoring server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server and disconnects feed clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) currentThreshold() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.threshold
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	threshold := s.currentThreshold()
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	result, err := s.score(req.Named, req.Positional, threshold)
	if err != nil {
		status := http.StatusInternalServerError
		if isClientError(err) {
			status = http.StatusBadRequest
		} else {
			log.Error().Err(err).Msg("prediction failed")
		}
		writeError(w, status, err.Error())
		return
	}

	s.publish(result, threshold)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if len(req.Records) == 0 {
		writeError(w, http.StatusBadRequest, "records field is required")
		return
	}

	threshold := s.currentThreshold()
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	if s.met != nil {
		s.met.BatchRows.Add(float64(len(req.Records)))
	}

	type batchItem struct {
		Index  int                  `json:"index"`
		Result *scoring.ScoreResult `json:"result,omitempty"`
		Error  string               `json:"error,omitempty"`
	}

	items := make([]batchItem, len(req.Records))
	for i, raw := range req.Records {
		items[i].Index = i

		rec, err := parseBatchRecord(raw)
		if err == nil {
			var result scoring.ScoreResult
			result, err = s.score(rec.Named, rec.Positional, threshold)
			if err == nil {
				items[i].Result = &result
				s.publish(result, threshold)
				continue
			}
		}

		log.Warn().Err(err).Int("record", i).Msg("batch record failed")
		items[i].Error = err.Error()
		if s.met != nil {
			s.met.BatchFailures.Inc()
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": items})
}

// score routes a named or positional payload through the session.
func (s *Server) score(named map[string]any, positional []float64, threshold float64) (scoring.ScoreResult, error) {
	if named != nil {
		rec, err := features.ParseRecord(named, 0)
		if err != nil {
			return scoring.ScoreResult{}, err
		}
		return s.session.ScoreOne(rec, threshold)
	}

	want := s.session.Schema().Len()
	if len(positional) != want {
		return scoring.ScoreResult{}, &vectorLengthError{want: want, got: len(positional)}
	}
	return s.session.ScoreVector(positional, threshold)
}

func (s *Server) publish(result scoring.ScoreResult, threshold float64) {
	s.hub.Broadcast(result)

	if s.store == nil {
		return
	}
	entry := storage.ScoreEntry{
		RequestID:    result.RequestID,
		ModelVersion: result.ModelVersion,
		Probability:  result.Probability,
		Label:        result.Label,
		Threshold:    threshold,
		Ts:           time.Now().UTC(),
	}
	if err := s.store.StoreScore(entry); err != nil {
		log.Warn().Err(err).Str("request_id", result.RequestID).Msg("score audit write failed")
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"version":   s.session.ModelVersion(),
		"has_model": s.hasModel,
	})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.session == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ready": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ready": true})
}

func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	sch := s.session.Schema()

	ranges := make(map[string][2]float64)
	for _, name := range sch.Names() {
		if rng, ok := sch.InputRange(name); ok {
			ranges[name] = [2]float64{rng.Low, rng.High}
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"version":       s.session.ModelVersion(),
		"feature_order": sch.Names(),
		"input_ranges":  ranges,
		"has_model":     s.hasModel,
	})
}

func (s *Server) handleThreshold(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"threshold": s.currentThreshold()})

	case http.MethodPut:
		var body struct {
			Threshold *float64 `json:"threshold"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Threshold == nil {
			writeError(w, http.StatusBadRequest, "body must be {\"threshold\": <number>}")
			return
		}
		t := *body.Threshold
		if math.IsNaN(t) || t < 0 || t > 1 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("threshold must be in [0, 1], got %v", t))
			return
		}

		s.mu.Lock()
		s.threshold = t
		path := s.thresholdPath
		s.mu.Unlock()

		if s.met != nil {
			s.met.ThresholdValue.Set(t)
		}
		if path != "" {
			if err := cfg.SaveThreshold(path, t); err != nil {
				log.Error().Err(err).Msg("persisting threshold failed")
				writeError(w, http.StatusInternalServerError, "threshold updated but not persisted")
				return
			}
		}

		log.Info().Float64("threshold", t).Msg("default threshold updated")
		writeJSON(w, http.StatusOK, map[string]any{"threshold": t})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type vectorLengthError struct {
	want, got int
}

func (e *vectorLengthError) Error() string {
	return fmt.Sprintf("expected %d features, got %d", e.want, e.got)
}

func isClientError(err error) bool {
	var fieldErr *features.FieldError
	var rangeErr *scoring.RangeError
	var lenErr *vectorLengthError
	return errors.As(err, &fieldErr) || errors.As(err, &rangeErr) || errors.As(err, &lenErr)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("response encode failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
