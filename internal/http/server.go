package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sharevault/internal/core"
	"sharevault/internal/flood"
	"sharevault/internal/i18n"
)

const (
	// uploadField is the multipart field carrying the transcript
	uploadField = "file"
	// allowedExtension is the only accepted transcript extension, compared case-insensitively
	allowedExtension = ".txt"
	// multipartMemory is how much of a multipart body is kept in memory before spilling to disk
	multipartMemory = 8 << 20
	// AnalysisIDHeader carries the ID assigned to each accepted upload
	AnalysisIDHeader = "X-Analysis-ID"

	shutdownTimeout = 10 * time.Second
)

// Option form fields accepted by POST /upload.
const (
	FieldExpandSpotify  = "expand_spotify"
	FieldExpandYouTube  = "expand_youtube"
	FieldExpandWeb      = "expand_web"
	FieldUpdatePlaylist = "update_playlist"
)

// Analyser analyses a transcript stored on disk.
type Analyser interface {
	AnalyseFile(ctx context.Context, path string, opts core.Options) ([]core.LinkRecord, error)
	CanUpdatePlaylist() bool
}

type Server struct {
	config    *core.Config
	analyser  Analyser
	gate      *flood.Floodgate
	metrics   *Metrics
	localizer *i18n.Localizer
	logger    *zap.Logger
	server    *http.Server

	// uploads share one fixed path, so save and analysis run one at a time
	uploadMu sync.Mutex
}

type uploadResponse struct {
	FileContents []core.LinkRecord `json:"file_contents"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewServer builds the upload service. gate may be nil to disable rate limiting.
func NewServer(
	config *core.Config,
	analyser Analyser,
	gate *flood.Floodgate,
	metrics *Metrics,
	logger *zap.Logger,
) *Server {
	if metrics == nil {
		metrics = NewMetrics()
	}

	s := &Server{
		config:    config,
		analyser:  analyser,
		gate:      gate,
		metrics:   metrics,
		localizer: i18n.NewLocalizer(config.App.Language),
		logger:    logger,
	}
	s.server = createHTTPServer(&config.Server, s.routes())
	return s
}

func createHTTPServer(config *core.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/upload", s.handleUpload)
	r.Get("/healthz", statusHandler("ok"))
	r.Get("/readyz", statusHandler("ready"))
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	return r
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.gate != nil && !s.gate.Allow(clientKey(r)) {
		s.metrics.RecordUpload(UploadRateLimited)
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: s.localizer.T("error.upload.rate_limited")})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.Server.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.reject(w, r, s.localizer.T("error.upload.too_large", s.config.Server.MaxUploadBytes>>20))
			return
		}
		s.reject(w, r, s.localizer.T("error.upload.no_file_part"))
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			s.logger.Debug("Failed to remove multipart temp files", zap.Error(err))
		}
	}()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		// a part without a filename is parsed as a plain value
		if _, sent := r.MultipartForm.Value[uploadField]; sent {
			s.reject(w, r, s.localizer.T("error.upload.no_selected_file"))
			return
		}
		s.reject(w, r, s.localizer.T("error.upload.no_file_part"))
		return
	}
	defer file.Close()

	if header.Filename == "" {
		s.reject(w, r, s.localizer.T("error.upload.no_selected_file"))
		return
	}
	if !allowedFile(header.Filename) {
		s.reject(w, r, s.localizer.T("error.upload.extension"))
		return
	}

	opts := s.parseOptions(r)
	if opts.UpdateCuratedPlaylist && opts.EnableMusic && !s.analyser.CanUpdatePlaylist() {
		s.reject(w, r, s.localizer.T("error.upload.playlist_unavailable"))
		return
	}
	analysisID := uuid.NewString()
	logger := s.logger.With(
		zap.String("analysis_id", analysisID),
		zap.String("filename", header.Filename))
	w.Header().Set(AnalysisIDHeader, analysisID)

	s.uploadMu.Lock()
	defer s.uploadMu.Unlock()

	path := filepath.Join(s.config.App.UploadDir, s.config.App.UploadFileName)
	if err := saveUpload(path, file); err != nil {
		logger.Error("Failed to store upload", zap.Error(err))
		s.metrics.RecordUpload(UploadFailed)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: s.localizer.T("error.upload.save_failed")})
		return
	}

	started := time.Now()
	records, err := s.analyser.AnalyseFile(r.Context(), path, opts)
	if err != nil {
		logger.Error("Analysis failed", zap.Error(err))
		s.metrics.RecordUpload(UploadFailed)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: s.localizer.T("error.analysis.failed")})
		return
	}
	if records == nil {
		records = []core.LinkRecord{}
	}

	logger.Info("Analysed upload",
		zap.Int("links", len(records)),
		zap.Duration("duration", time.Since(started)),
		zap.Bool("music", opts.EnableMusic),
		zap.Bool("video", opts.EnableVideo),
		zap.Bool("web", opts.EnableWeb),
		zap.Bool("playlist", opts.UpdateCuratedPlaylist))

	s.metrics.RecordUpload(UploadAccepted)
	writeJSON(w, http.StatusOK, uploadResponse{FileContents: records})
}

// reject sends the user back to the index page with a flash message.
func (s *Server) reject(w http.ResponseWriter, r *http.Request, message string) {
	s.logger.Debug("Rejected upload", zap.String("reason", message))
	s.metrics.RecordUpload(UploadRejected)
	http.Redirect(w, r, "/?message="+url.QueryEscape(message), http.StatusSeeOther)
}

func (s *Server) parseOptions(r *http.Request) core.Options {
	defaults := s.config.App.Defaults
	return core.Options{
		EnableMusic:           formBool(r, FieldExpandSpotify, defaults.EnableMusic),
		EnableVideo:           formBool(r, FieldExpandYouTube, defaults.EnableVideo),
		EnableWeb:             formBool(r, FieldExpandWeb, defaults.EnableWeb),
		UpdateCuratedPlaylist: formBool(r, FieldUpdatePlaylist, defaults.UpdateCuratedPlaylist),
	}
}

// formBool reads a boolean form field. The last value wins so that a hidden
// "false" input followed by a checkbox behaves as expected. Missing or
// unparseable values yield def.
func formBool(r *http.Request, name string, def bool) bool {
	values := r.Form[name]
	if len(values) == 0 {
		return def
	}

	raw := strings.TrimSpace(values[len(values)-1])
	if strings.EqualFold(raw, "on") {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func allowedFile(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), allowedExtension)
}

func saveUpload(path string, src io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create upload dir: %w", err)
	}

	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create upload file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("failed to write upload file: %w", err)
	}
	return dst.Close()
}

// clientKey identifies the uploader for rate limiting. RealIP has already
// replaced RemoteAddr when a proxy header was present.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func statusHandler(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  status,
			"service": "sharevault",
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()

			next.ServeHTTP(ww, r)

			logger.Debug("HTTP request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(started)))
		})
	}
}
