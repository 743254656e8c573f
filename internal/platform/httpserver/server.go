// Package httpserver は GraphQL、メトリクス、ヘルスチェックを提供する HTTP サーバーです。
package httpserver

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	pgdb "github.com/ogurasousui/employee-directory/internal/platform/db/postgres"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

const (
	GraphQLPath    = "/graphql"
	PlaygroundPath = "/graphql/playground"
	MetricsPath    = "/metrics"
	HealthPath     = "/healthz"

	requestIDHeader = "X-Request-ID"
	healthTimeout   = 2 * time.Second

	defaultShutdownTimeout = 10 * time.Second
)

// Options は HTTP サーバーの構成です。
type Options struct {
	ListenAddr        string
	AllowedOrigins    []string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration

	GraphQL    http.Handler
	Playground http.Handler
	Gatherer   prometheus.Gatherer
	Database   pgdb.Pinger
	Logger     *logrus.Entry
}

// NewRouter はルーティングとミドルウェアを組み立てます。
// Playground、Gatherer、Database が nil の場合、対応するエンドポイントは登録されません。
func NewRouter(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	r := mux.NewRouter()
	r.Use(withRequestLogging(logger))

	r.Handle(GraphQLPath, opts.GraphQL).Methods(http.MethodGet, http.MethodPost)
	if opts.Playground != nil {
		r.Handle(PlaygroundPath, opts.Playground).Methods(http.MethodGet)
	}
	if opts.Gatherer != nil {
		r.Handle(MetricsPath, promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	r.HandleFunc(HealthPath, healthHandler(opts.Database, logger)).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", requestIDHeader},
	})
	return c.Handler(r)
}

func healthHandler(db pgdb.Pinger, logger *logrus.Entry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		if db != nil {
			if err := pgdb.Check(r.Context(), db, healthTimeout); err != nil {
				logger.WithError(err).Warn("health check failed")
				status = http.StatusServiceUnavailable
				body = map[string]string{"status": "unavailable", "database": "unreachable"}
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func withRequestLogging(logger *logrus.Entry) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, requestID)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			logger.WithFields(logrus.Fields{
				"request-id": requestID,
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     rec.status,
				"duration":   time.Since(start),
			}).Info("request completed")
		})
	}
}

// Server は HTTP サーバーのライフサイクルを管理します。
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	logger          *logrus.Entry
}

// New は Options から Server を構築します。
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	opts.Logger = logger
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              opts.ListenAddr,
			Handler:           NewRouter(opts),
			ReadHeaderTimeout: opts.ReadHeaderTimeout,
		},
		shutdownTimeout: opts.ShutdownTimeout,
		logger:          logger,
	}
}

// Run はサーバーを起動し、コンテキストがキャンセルされると Shutdown します。
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.httpServer.Addr)
	}
	return s.Serve(ctx, lis)
}

// Serve は lis で待ち受けます。
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", lis.Addr().String()).Info("HTTP server listening")
		if err := s.httpServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- errors.Wrap(err, "serve HTTP")
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown HTTP")
	}
	return nil
}
