package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yusufkecer/macro-tracker-backend/internal/config"
	"github.com/yusufkecer/macro-tracker-backend/internal/db"
	"github.com/yusufkecer/macro-tracker-backend/internal/handler"
	"github.com/yusufkecer/macro-tracker-backend/internal/logging"
	"github.com/yusufkecer/macro-tracker-backend/internal/metrics"
	"github.com/yusufkecer/macro-tracker-backend/internal/middleware"
	"github.com/yusufkecer/macro-tracker-backend/internal/recipes"
	"github.com/yusufkecer/macro-tracker-backend/internal/repository"
	"github.com/yusufkecer/macro-tracker-backend/internal/service"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	repo, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return err
	}
	sessionTTL, err := cfg.SessionLifetime()
	if err != nil {
		return err
	}

	macroService := service.NewMacroService(repo, loc, logger)
	recipeService := service.NewRecipeService(cfg.RecipesListURL, cfg.RecipesRemoveURL, &http.Client{Timeout: timeout})

	macroHandler := handler.NewMacroHandler(macroService, logger)
	recipePageHandler := handler.NewRecipePageHandler(recipeService, recipes.NewSessionStore(sessionTTL), logger)

	r := newRouter(cfg, logger, macroHandler, recipePageHandler)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newRouter mounts every route behind the global middleware chain. Requests
// that match no route, or match one with the wrong method, bypass mux
// middleware, so their handlers carry the CORS and security headers
// themselves.
func newRouter(cfg *config.Config, logger *zap.Logger, macroHandler *handler.MacroHandler, recipePageHandler *handler.RecipePageHandler) *mux.Router {
	var allowHeaders []string
	if cfg.JWTSecret != "" {
		allowHeaders = append(allowHeaders, "Authorization")
	}
	if cfg.APIKey != "" {
		allowHeaders = append(allowHeaders, "X-API-Key")
	}
	cors := middleware.CORSMiddleware(cfg.AllowedOrigins, allowHeaders...)

	r := mux.NewRouter()

	// Global middleware: request log → CORS → security headers → MaxBytesReader
	r.Use(middleware.RequestLogger(logger))
	r.Use(cors)
	r.Use(middleware.SecurityHeaders)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
			next.ServeHTTP(w, r)
		})
	})

	r.NotFoundHandler = cors(middleware.SecurityHeaders(http.HandlerFunc(handler.NotFound)))
	r.MethodNotAllowedHandler = cors(middleware.SecurityHeaders(http.HandlerFunc(handler.MethodNotAllowed)))

	r.HandleFunc("/api/v1/health", handler.Health).Methods(http.MethodGet, http.MethodOptions)

	if cfg.MetricsEnabled {
		metrics.Register()
		r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	var update http.Handler = http.HandlerFunc(macroHandler.Update)
	update = middleware.AuthMiddleware(cfg.JWTSecret)(update)
	update = middleware.APIKeyMiddleware(cfg.APIKey)(update)
	if cfg.RateLimit > 0 {
		update = middleware.NewRateLimiter(cfg.RateLimit, time.Minute).Middleware(update)
	}
	r.Handle("/api/v1/macros", update).Methods(http.MethodPost, http.MethodOptions)
	r.Handle("/addMacros", update).Methods(http.MethodPost, http.MethodOptions)

	r.HandleFunc("/recipes", recipePageHandler.Page).Methods(http.MethodGet)
	r.HandleFunc("/recipes/{recipeId:[0-9]+}/delete", recipePageHandler.Delete).Methods(http.MethodPost)

	return r
}

// openStore connects the tally repository selected by STORE_DRIVER and
// returns a func that releases it.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.TallyRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMySQL:
		database, err := db.Connect(ctx, cfg, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("database connection failed: %w", err)
		}
		if err := db.RunMigrations(ctx, database, logger); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("migrations failed: %w", err)
		}
		return repository.NewMySQLTallyRepository(database), func() { database.Close() }, nil

	case config.StoreRedis:
		client, err := db.NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("redis connection established", zap.String("addr", cfg.RedisAddr))
		return repository.NewRedisTallyRepository(client), func() { client.Close() }, nil

	case config.StoreDynamoDB:
		client, err := db.NewDynamoClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("dynamodb client ready", zap.String("table", cfg.DynamoTable), zap.String("region", cfg.DynamoRegion))
		return repository.NewDynamoTallyRepository(client, cfg.DynamoTable), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
