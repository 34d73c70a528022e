package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"astrod/internal/events"
	"astrod/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ListModels() ([]types.Model, error)
	Download(ctx context.Context, url, filename string) (string, error)
	StartEngine(req types.StartEngineRequest) error
	StopEngine()
	EngineHealth(ctx context.Context) (string, error)
	EngineStatus() types.EngineStatus
	Hardware(gpuFallback bool) (types.HardwareResponse, error)
	Subscribe() (<-chan events.Event, func())
}

type api struct {
	svc Service
}

func NewMux(svc Service) http.Handler {
	a := &api{svc: svc}
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger)
	r.Use(MetricsMiddleware)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(corsHandler())
	}
	// Compression for JSON endpoints; text/event-stream is not in the default set
	r.Use(middleware.Compress(5))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/hardware", a.hardware)
	r.Get("/models", a.listModels)
	r.Post("/models/download", a.download)
	r.Route("/engine", func(r chi.Router) {
		r.Post("/start", a.startEngine)
		r.Post("/stop", a.stopEngine)
		r.Get("/health", a.engineHealth)
		r.Get("/status", a.engineStatus)
	})
	r.Get("/events", a.events)

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	MountSwagger(r)
	return r
}

func corsHandler() func(http.Handler) http.Handler {
	methods := corsAllowedMethods
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	}
	headers := corsAllowedHeaders
	if len(headers) == 0 {
		headers = []string{"Content-Type", "X-Request-Id", "X-Log-Level"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: corsAllowedOrigins,
		AllowedMethods: methods,
		AllowedHeaders: headers,
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		l := logger()
		l.Debug().Err(err).Msg("encode response")
	}
}

// decodeJSON enforces the content type and body limit of JSON endpoints. It
// writes the error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// a body over the limit is reported the same way to avoid leaking size details
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// hardware godoc
// @Summary      Host hardware
// @Description  Total memory, CPU count and the recommended model tier.
// @Tags         system
// @Produce      json
// @Param        gpu_fallback  query     bool  false  "only a software GPU adapter is available"
// @Success      200  {object}  types.HardwareResponse
// @Failure      400  {object}  types.ErrorResponse
// @Failure      501  {object}  types.ErrorResponse
// @Router       /hardware [get]
func (a *api) hardware(w http.ResponseWriter, r *http.Request) {
	var gpuFallback bool
	if v := r.URL.Query().Get("gpu_fallback"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid gpu_fallback: "+v)
			return
		}
		gpuFallback = b
	}
	hw, err := a.svc.Hardware(gpuFallback)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hw)
}

// listModels godoc
// @Summary      Downloaded models
// @Tags         models
// @Produce      json
// @Success      200  {object}  types.ModelsResponse
// @Router       /models [get]
func (a *api) listModels(w http.ResponseWriter, r *http.Request) {
	models, err := a.svc.ListModels()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.ModelsResponse{Models: models})
}

// download godoc
// @Summary      Download a model
// @Description  Streams the artifact into the models directory. Progress is published on /events as download-progress. Returns immediately if the file already exists.
// @Tags         models
// @Accept       json
// @Produce      json
// @Param        request  body      types.DownloadRequest  true  "artifact"
// @Success      200      {object}  types.DownloadResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      502      {object}  types.ErrorResponse
// @Router       /models/download [post]
func (a *api) download(w http.ResponseWriter, r *http.Request) {
	var req types.DownloadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	// Only shutdown stops a transfer; a caller that gives up leaves it running.
	path, err := a.svc.Download(serverBaseCtx, req.URL, req.Filename)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.DownloadResponse{Path: path})
}

// startEngine godoc
// @Summary      Start the engine
// @Description  Replaces any running worker. Returns once the process is spawned, before it serves requests.
// @Tags         engine
// @Accept       json
// @Produce      json
// @Param        request  body      types.StartEngineRequest  true  "launch configuration"
// @Success      202      {object}  types.EngineStatus
// @Failure      400      {object}  types.ErrorResponse
// @Failure      503      {object}  types.ErrorResponse
// @Router       /engine/start [post]
func (a *api) startEngine(w http.ResponseWriter, r *http.Request) {
	var req types.StartEngineRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := a.svc.StartEngine(req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, a.svc.EngineStatus())
}

// stopEngine godoc
// @Summary      Stop the engine
// @Tags         engine
// @Success      204
// @Router       /engine/stop [post]
func (a *api) stopEngine(w http.ResponseWriter, r *http.Request) {
	a.svc.StopEngine()
	w.WriteHeader(http.StatusNoContent)
}

// engineHealth godoc
// @Summary      Worker health
// @Description  Body of the worker's /health endpoint, verbatim.
// @Tags         engine
// @Produce      json
// @Success      200  {object}  types.EngineHealthResponse
// @Failure      503  {object}  types.ErrorResponse
// @Router       /engine/health [get]
func (a *api) engineHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	body, err := a.svc.EngineHealth(ctx)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.EngineHealthResponse{Status: body})
}

// engineStatus godoc
// @Summary      Worker process status
// @Tags         engine
// @Produce      json
// @Success      200  {object}  types.EngineStatus
// @Router       /engine/status [get]
func (a *api) engineStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.svc.EngineStatus())
}
