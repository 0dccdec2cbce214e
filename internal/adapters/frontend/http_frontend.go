package frontend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mikey/scam-detector/internal/config"
	"github.com/mikey/scam-detector/internal/core"
	"github.com/mikey/scam-detector/internal/ports"
	"go.uber.org/zap"
)

const (
	anonymousSubmitter = "anonymous"
	feedbackAck        = "Feedback recebido. Obrigado!"
	shutdownTimeout    = 10 * time.Second
)

// analyzeRequest is the POST /analyze body
type analyzeRequest struct {
	Message    string                 `json:"message"`
	UserID     string                 `json:"user_id"`
	DeviceInfo map[string]interface{} `json:"device_info,omitempty"`
}

// analyzeResponse is the public view of an analysis record
type analyzeResponse struct {
	AnalysisID      string               `json:"analysis_id"`
	IsFraud         bool                 `json:"is_fraud"`
	RiskScore       int                  `json:"risk_score"`
	Confidence      float64              `json:"confidence"`
	Explanation     string               `json:"explanation"`
	Recommendations []string             `json:"recommendations"`
	EducationLinks  []core.ReferenceLink `json:"education_links"`
	EducationalText string               `json:"educational_text"`
	EducationTips   []string             `json:"education_tips"`
}

// HTTPFrontend serves the analysis API
type HTTPFrontend struct {
	detector ports.Detector
	cfg      config.ServerConfig
	logger   *zap.Logger
	server   *http.Server
}

// NewHTTPFrontend creates a new HTTP frontend
func NewHTTPFrontend(detector ports.Detector, cfg config.ServerConfig, logger *zap.Logger) *HTTPFrontend {
	return &HTTPFrontend{
		detector: detector,
		cfg:      cfg,
		logger:   logger,
	}
}

// Handler builds the router with all routes and middleware
func (f *HTTPFrontend) Handler() http.Handler {
	router := chi.NewRouter()

	// Core middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(f.logger))
	router.Use(middleware.Recoverer)

	// CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   f.cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", f.health)
	router.Post("/analyze", f.analyze)
	router.Post("/feedback", f.feedback)

	return router
}

// Start starts listening in the background
func (f *HTTPFrontend) Start() error {
	f.server = &http.Server{
		Addr:         f.cfg.ListenAddress,
		Handler:      f.Handler(),
		ReadTimeout:  f.cfg.ReadTimeout,
		WriteTimeout: f.cfg.WriteTimeout,
	}

	f.logger.Info("HTTP API starting", zap.String("address", f.cfg.ListenAddress))

	go func() {
		if err := f.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			f.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop drains in-flight requests and stops the server
func (f *HTTPFrontend) Stop() error {
	if f.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return f.server.Shutdown(ctx)
}

// ProcessMessage runs the pipeline directly
func (f *HTTPFrontend) ProcessMessage(ctx context.Context, msg core.Message) (*core.AnalysisRecord, error) {
	return f.detector.Analyze(ctx, msg), nil
}

func (f *HTTPFrontend) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (f *HTTPFrontend) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := f.decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg := core.Message{
		Body:        req.Message,
		SubmitterID: req.UserID,
		DeviceInfo:  stringifyDeviceInfo(req.DeviceInfo),
	}
	if msg.SubmitterID == "" {
		msg.SubmitterID = anonymousSubmitter
	}

	f.logger.Info("Analysis requested",
		zap.String("user_id", msg.SubmitterID),
		zap.String("request_id", middleware.GetReqID(r.Context())))

	record := f.detector.Analyze(r.Context(), msg)
	respondJSON(w, http.StatusOK, toResponse(record))
}

func (f *HTTPFrontend) feedback(w http.ResponseWriter, r *http.Request) {
	var fb core.Feedback
	if err := f.decode(w, r, &fb); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if fb.AnalysisID == "" || fb.FeedbackType == "" {
		respondError(w, http.StatusBadRequest, "analysis_id and feedback_type are required")
		return
	}

	f.logger.Info("Feedback received",
		zap.String("analysis_id", fb.AnalysisID),
		zap.String("feedback_type", fb.FeedbackType),
		zap.String("comment", fb.Comment))

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": feedbackAck,
	})
}

func (f *HTTPFrontend) decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if f.cfg.MaxRequestBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, f.cfg.MaxRequestBytes)
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func toResponse(record *core.AnalysisRecord) analyzeResponse {
	return analyzeResponse{
		AnalysisID:      record.ID,
		IsFraud:         record.IsFraud,
		RiskScore:       record.RiskScore,
		Confidence:      record.Confidence,
		Explanation:     record.Explanation,
		Recommendations: nonNil(record.Recommendations),
		EducationLinks:  record.ReferenceLinks,
		EducationalText: record.EducationalText,
		EducationTips:   nonNil(record.Tips),
	}
}

func stringifyDeviceInfo(info map[string]interface{}) map[string]string {
	if len(info) == 0 {
		return nil
	}
	out := make(map[string]string, len(info))
	for k, v := range info {
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"detail": message})
}

// requestLogger logs every request with zap
func requestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				logger.Info("Request completed",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())))
			}()

			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}
