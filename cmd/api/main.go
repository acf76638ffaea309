package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mining-dispatch/internal/api"
	"mining-dispatch/internal/api/handlers"
	"mining-dispatch/internal/config"
	"mining-dispatch/internal/data"
	"mining-dispatch/internal/logger"
	"mining-dispatch/internal/strategy"
)

func main() {
	_ = godotenv.Load()

	cfg, err := loadConfig(os.Getenv("API_CONFIG"))
	if err != nil {
		stdlog.Fatalf("load config: %v", err)
	}
	log, err := logger.New(cfg.Logger)
	if err != nil {
		stdlog.Fatalf("init logger: %v", err)
	}
	defer log.Sync()

	provider, err := newProvider(cfg, log)
	if err != nil {
		log.Fatal("init market data provider", logger.ErrorField(err))
	}
	if provider == nil {
		log.Warn("no data section configured; requests must carry market_data")
	}

	deps := handlers.Deps{
		Registry:          strategy.Default(),
		Provider:          provider,
		Facilities:        handlers.NewFacilityHandler(cfg.API.FacilityDir, log),
		DefaultFacility:   cfg.Facility,
		DefaultStrategies: cfg.Strategies,
		Store:             handlers.NewResultStore(cfg.API.ResultTTL),
		Log:               log,
	}
	router := api.NewRouter(api.RouterConfig{
		AllowedOrigins: cfg.API.AllowedOrigins,
		Release:        cfg.API.Env == "production",
	}, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.API.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("api listening",
			logger.StringField("addr", srv.Addr),
			logger.StringField("env", cfg.API.Env),
			logger.StringField("facility_dir", cfg.API.FacilityDir))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api server", logger.ErrorField(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown", logger.ErrorField(err))
	}
}

// loadConfig reads the optional server config. The API runs without one: the
// period section is per request, so only the facility and strategy sections
// are checked.
func loadConfig(path string) (*config.Config, error) {
	cfg := &config.Config{}
	if path != "" {
		loaded, err := config.LoadUnchecked(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv(os.Getenv)
	cfg.ApplyDefaults()
	if _, err := cfg.BuildStrategies(strategy.Default()); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newProvider(cfg *config.Config, log *logger.Logger) (data.Provider, error) {
	d := cfg.Data
	if d.Snapshot == "" && d.ElectricityCSV == "" {
		return nil, nil
	}
	return cfg.NewProvider(log)
}
