// Package web serves the measurement pipeline over HTTP.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/edaniels/golog"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"go.opencensus.io/trace"
	goutils "go.viam.com/utils"
	"goji.io"
	"goji.io/pat"

	"github.com/UmeshNayak1/DimensiMeasure/measure"
)

// A ResultHook receives every processed result after the response is written,
// e.g. to append it to an audit log or archive it.
type ResultHook func(ctx context.Context, requestID string, res measure.Result) error

// A Server exposes a measurement pipeline over HTTP.
type Server struct {
	pipeline *measure.Pipeline
	logger   golog.Logger
	hooks    []ResultHook
}

// NewServer returns a server around the given pipeline.
func NewServer(pipeline *measure.Pipeline, logger golog.Logger, hooks ...ResultHook) *Server {
	return &Server{pipeline: pipeline, logger: logger, hooks: hooks}
}

// measureRequest is the body of a measurement request.
type measureRequest struct {
	Image string `json:"image"`
}

// errorBody is the reduced shape of boundary rejections, before a request ever
// reaches the pipeline.
type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// healthResponse reports liveness and whether the model backends are wired in.
type healthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// Handler returns the routed handler serving the measurement API.
func (s *Server) Handler() http.Handler {
	mux := goji.NewMux()
	mux.HandleFunc(pat.Post("/measure"), s.measureHandler)
	mux.HandleFunc(pat.Get("/health"), s.healthHandler)
	return cors.AllowAll().Handler(mux)
}

func (s *Server) measureHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := trace.StartSpan(r.Context(), "web::Server::measure")
	defer span.End()

	requestID := uuid.New().String()

	var req measureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Image == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Success: false, Message: "No image data provided"})
		return
	}

	start := time.Now()
	res := s.pipeline.ProcessInput(ctx, req.Image)
	s.logger.Infow("processed measurement request",
		"request_id", requestID,
		"success", res.Success,
		"objects", len(res.Measurements),
		"elapsed", time.Since(start).String(),
	)

	writeJSON(w, http.StatusOK, res)

	for _, hook := range s.hooks {
		if err := hook(ctx, requestID, res); err != nil {
			s.logger.Errorw("result hook failed", "request_id", requestID, "error", err)
		}
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", ModelLoaded: s.pipeline.Ready()})
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	goutils.UncheckedError(json.NewEncoder(w).Encode(payload))
}

// Serve binds the API to the given address and blocks until the context is
// done or the server fails.
func (s *Server) Serve(ctx context.Context, bindAddress string) error {
	listener, err := net.Listen("tcp", bindAddress)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:           listener.Addr().String(),
		ReadTimeout:    10 * time.Second,
		MaxHeaderBytes: 1 << 20,
		Handler:        s.Handler(),
	}

	goutils.PanicCapturingGo(func() {
		<-ctx.Done()
		if err := httpServer.Shutdown(context.Background()); err != nil {
			s.logger.Errorw("error shutting down", "error", err)
		}
	})

	s.logger.Infow("serving", "url", fmt.Sprintf("http://%s", listener.Addr().String()))
	if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
