package webhook

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/zeebo/blake3"
	"golang.org/x/time/rate"

	"github.com/mattjoyce/charterhook/internal/event"
	"github.com/mattjoyce/charterhook/internal/pipeline"
	"github.com/mattjoyce/charterhook/internal/signature"
)

// Server represents the webhook HTTP server.
type Server struct {
	config    Config
	verifier  *signature.Verifier
	submitter Submitter
	logger    *slog.Logger
	limiter   *rate.Limiter
	server    *http.Server
}

// New creates a new webhook server instance.
func New(config Config, verifier *signature.Verifier, submitter Submitter, logger *slog.Logger) *Server {
	if config.MaxBodySize <= 0 {
		config.MaxBodySize = DefaultMaxBodySize
	}

	s := &Server{
		config:    config,
		verifier:  verifier,
		submitter: submitter,
		logger:    logger,
	}
	if config.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), max(1, config.RateBurst))
	}
	return s
}

// Start starts the webhook HTTP server (blocking).
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("webhook server starting",
		"listen", s.config.Listen,
		"max_body_size", s.config.MaxBodySize,
		"rate_limit", s.config.RateLimit,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("webhook server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("webhook server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("webhook server error: %w", err)
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleAlive)
	r.With(s.rateLimitMiddleware).Post("/", s.handleEvent)

	// Only GET and POST exist; every other verb looks like a missing route.
	r.MethodNotAllowed(http.NotFound)

	return r
}

// loggingMiddleware logs HTTP requests (excludes sensitive payloads).
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("webhook request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
		)
	})
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			s.logger.Warn("webhook rate limit exceeded", "remote_addr", r.RemoteAddr)
			w.Header().Set("Retry-After", "1")
			s.respondText(w, http.StatusTooManyRequests, bodyTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleAlive(w http.ResponseWriter, _ *http.Request) {
	s.respondText(w, http.StatusOK, bodyAlive)
}

// handleEvent verifies, classifies, and acknowledges one delivery. Message
// events are handed to the pipeline; the response never waits on extraction
// or the sink.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	deliveryID := uuid.NewString()
	logger := s.logger.With("delivery_id", deliveryID)

	// Enforce body size limit
	body, err := io.ReadAll(io.LimitReader(r.Body, s.config.MaxBodySize+1))
	if err != nil {
		logger.Warn("failed to read request body", "error", err)
		s.respondText(w, http.StatusBadRequest, bodyInvalidRequest)
		return
	}
	if int64(len(body)) > s.config.MaxBodySize {
		logger.Warn("request body too large", "limit", s.config.MaxBodySize)
		s.respondText(w, http.StatusRequestEntityTooLarge, bodyPayloadTooLarge)
		return
	}

	logger = logger.With("body_hash", fingerprint(body))

	res := s.verifier.Verify(body,
		r.Header.Get(s.config.TimestampHeader),
		r.Header.Get(s.config.SignatureHeader),
	)
	if !res.Valid {
		logger.Warn("request rejected", "reason", res.Reason)
		s.respondText(w, http.StatusForbidden, bodyInvalidRequest)
		return
	}

	in, err := event.Classify(body)
	if err != nil {
		logger.Warn("verified body is not an event", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	switch in.Kind {
	case event.KindChallenge:
		logger.Info("url verification challenge answered")
		s.respondText(w, http.StatusOK, in.Challenge)

	case event.KindMessage:
		err := s.submitter.Submit(pipeline.Job{
			DeliveryID: deliveryID,
			EventID:    in.EventID,
			Channel:    in.Channel,
			Text:       in.Text,
			AcceptedAt: time.Now(),
		})
		if err != nil {
			// The platform retries non-2xx responses; a dropped event is
			// acknowledged anyway so the outcome stays a plain 200.
			logger.Warn("message event not scheduled", "event_id", in.EventID, "error", err)
		} else {
			logger.Debug("message event scheduled", "event_id", in.EventID, "channel", in.Channel)
		}
		w.WriteHeader(http.StatusOK)

	default:
		logger.Debug("event ignored", "reason", in.Reason, "event_id", in.EventID)
		w.WriteHeader(http.StatusOK)
	}
}

// respondText sends a plain-text response.
func (s *Server) respondText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// fingerprint identifies a body in logs without recording its content.
func fingerprint(body []byte) string {
	sum := blake3.Sum256(body)
	return hex.EncodeToString(sum[:8])
}
