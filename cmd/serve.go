package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/carebridge/oncorisk/internal/artifact"
	"github.com/carebridge/oncorisk/internal/feature"
	"github.com/carebridge/oncorisk/internal/inference"
	"github.com/carebridge/oncorisk/internal/scoring"
	"github.com/carebridge/oncorisk/internal/transform"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the prediction HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		bundles, err := artifact.LoadDir(cfg.Artifacts.Dir)
		if err != nil {
			return err
		}
		store := artifact.NewStore(bundles)
		svc, err := inference.NewService(store.All(), cfg.Explain.TopN)
		if err != nil {
			return err
		}

		var current atomic.Pointer[inference.Service]
		current.Store(svc)

		// SIGHUP reloads the artifact set. The swap is all-or-nothing: a
		// reload that fails to load or assemble keeps the old set serving.
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		go func() {
			for range hup {
				fresh, err := artifact.LoadDir(cfg.Artifacts.Dir)
				if err != nil {
					zap.L().Error("artifact reload failed, keeping active set", zap.Error(err))
					continue
				}
				next, err := inference.NewService(fresh, cfg.Explain.TopN)
				if err != nil {
					zap.L().Error("artifact reload assembly failed, keeping active set", zap.Error(err))
					continue
				}
				store.Swap(fresh)
				current.Store(next)
				zap.L().Info("artifact set reloaded", zap.Strings("variants", next.Variants()))
			}
		}()

		r := chi.NewRouter()
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
		}))
		r.Use(requestID)
		r.Use(rateLimit(rate.Limit(cfg.Server.RatePerSecond), cfg.Server.RateBurst))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"status":       "ok",
				"model_loaded": true,
				"variants":     current.Load().Variants(),
			})
		})

		r.Get("/model-info/{variant}", func(w http.ResponseWriter, req *http.Request) {
			p, err := current.Load().Predictor(chi.URLParam(req, "variant"))
			if err != nil {
				writeError(w, http.StatusNotFound, "unknown model variant")
				return
			}
			writeJSON(w, http.StatusOK, p.Info)
		})

		r.Post("/predict/{variant}", func(w http.ResponseWriter, req *http.Request) {
			variant := chi.URLParam(req, "variant")
			p, err := current.Load().Predictor(variant)
			if err != nil {
				writeError(w, http.StatusNotFound, "unknown model variant")
				return
			}

			dec := json.NewDecoder(req.Body)
			dec.UseNumber()
			var raw map[string]any
			if err := dec.Decode(&raw); err != nil {
				writeError(w, http.StatusBadRequest, "empty or invalid JSON body")
				return
			}

			result, err := p.Infer(raw)
			if err != nil {
				status, msg := classifyError(variant, err)
				writeError(w, status, msg)
				return
			}
			writeJSON(w, http.StatusOK, result)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.Strings("variants", svc.Variants()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// loadService loads every artifact bundle and assembles the predictors.
// Any failure here is fatal startup failure.
func loadService() (*inference.Service, error) {
	bundles, err := artifact.LoadDir(cfg.Artifacts.Dir)
	if err != nil {
		return nil, err
	}
	return inference.NewService(bundles, cfg.Explain.TopN)
}

// classifyError maps the core error taxonomy onto HTTP semantics: validation
// problems are the caller's (400); schema drift and scoring failures are ours
// (500), logged as defects with full context that never reaches the caller.
func classifyError(variant string, err error) (int, string) {
	var verr *feature.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, verr.Error()
	}

	var serr *transform.SchemaMismatchError
	if errors.As(err, &serr) {
		zap.L().Error("schema drift between artifacts and pipeline",
			zap.String("variant", variant),
			zap.String("stage", serr.Stage),
			zap.String("column", serr.Column),
		)
		return http.StatusInternalServerError, serr.Error()
	}

	var ierr *scoring.InferenceError
	if errors.As(err, &ierr) {
		zap.L().Error("model scoring failed",
			zap.String("variant", variant),
			zap.String("cause", eris.ToString(err, true)),
		)
		return http.StatusInternalServerError, ierr.Error()
	}

	zap.L().Error("prediction failed",
		zap.String("variant", variant),
		zap.String("cause", eris.ToString(err, true)),
	)
	return http.StatusInternalServerError, "internal error"
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requestID tags every request with a UUID for log correlation.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, req)
	})
}

// rateLimit applies a process-wide token bucket; callers over budget get 429.
func rateLimit(limit rate.Limit, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(limit, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
