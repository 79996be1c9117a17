package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/blackboxsec/blackbox/config"
	"github.com/blackboxsec/blackbox/internal/api"
	"github.com/blackboxsec/blackbox/internal/core"
	"github.com/blackboxsec/blackbox/internal/data"
	"github.com/blackboxsec/blackbox/internal/domain/model"
	"github.com/blackboxsec/blackbox/internal/modules/hashlookup"
	"github.com/blackboxsec/blackbox/internal/modules/recon"
	"github.com/blackboxsec/blackbox/internal/observability/statsd"
	"github.com/blackboxsec/blackbox/internal/profile"
	"github.com/blackboxsec/blackbox/internal/service"
	"github.com/blackboxsec/blackbox/internal/service/failurenotifier"
	"github.com/blackboxsec/blackbox/internal/worker"
)

// ServiceContainer holds the constructed services and the shared worker
// machinery.
type ServiceContainer struct {
	Jobs     *service.JobService
	Profiles *service.ProfileService

	Store    *worker.Store
	Registry *worker.Registry
	Switcher *profile.Switcher
	Engine   *worker.Engine

	Metrics  *statsd.Client
	Notifier *failurenotifier.Service
}

// ServiceDeps contains the dependencies needed to construct services.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewServices builds repositories, the profile switcher, the module registry
// and the service layer.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil || deps.DB == nil {
		return ServiceContainer{}, errors.New("config and database are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	jobRepo := data.NewJobRepo(deps.DB, data.RepoConfig{Logger: logger})
	runRepo := data.NewRunRepo(deps.DB)
	hashResultRepo := data.NewHashResultRepo(deps.DB)
	profileLogRepo := data.NewProfileLogRepo(deps.DB)

	var cache core.CacheRepository
	if deps.RedisClient != nil {
		cache = data.NewLookupCacheRepo(deps.RedisClient)
	}

	catalog, err := profile.LoadCatalog(cfg.Profiles.CatalogPath)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("load profile catalog: %w", err)
	}

	switcher := profile.NewSwitcher(profile.SwitcherOptions{
		Catalog:        catalog,
		Runner:         &profile.ExecRunner{Timeout: cfg.Profiles.CommandTimeout, Logger: logger},
		Log:            profileLogRepo,
		Logger:         logger,
		InitialProfile: cfg.Profiles.Default,
	})

	registry, err := buildRegistry(cfg, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	metricsClient, notifier, err := buildObservability(cfg, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	jobSvc, err := service.NewJobService(service.JobServiceOptions{
		Jobs:        jobRepo,
		Runs:        runRepo,
		HashResults: hashResultRepo,
		Logger:      logger,
		StaleAfter:  cfg.Worker.StaleAfter,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build job service: %w", err)
	}

	profileSvc, err := service.NewProfileService(service.ProfileServiceOptions{
		Catalog:  catalog,
		Switcher: switcher,
		Jobs:     jobRepo,
		Log:      profileLogRepo,
		Logger:   logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build profile service: %w", err)
	}

	store := &worker.Store{
		Jobs:        jobRepo,
		Runs:        runRepo,
		HashResults: hashResultRepo,
		ProfileLog:  profileLogRepo,
		Cache:       cache,
	}

	engine := worker.NewEngine(worker.Options{
		Store:          store,
		Registry:       registry,
		Switcher:       switcher,
		PollInterval:   cfg.Worker.PollInterval,
		HandlerTimeout: cfg.Worker.HandlerTimeout,
		TypeFilter:     cfg.Worker.TypeFilter(),
		Metrics:        metricsClient,
		Notifier:       notifier,
		Logger:         logger,
	})

	return ServiceContainer{
		Jobs:     jobSvc,
		Profiles: profileSvc,
		Store:    store,
		Registry: registry,
		Switcher: switcher,
		Engine:   engine,
		Metrics:  metricsClient,
		Notifier: notifier,
	}, nil
}

// buildRegistry assembles the job type to handler mapping: command-backed
// recon modules plus the hash lookup module.
func buildRegistry(cfg *config.AppConfig, logger *slog.Logger) (*worker.Registry, error) {
	handlers := recon.Handlers(recon.DefaultCommands(), nil)

	var leakCheck *hashlookup.LeakCheckClient
	if cfg.HashServices.LeakCheck.Enabled {
		client, err := hashlookup.NewLeakCheckClient(hashlookup.LeakCheckConfig{
			BaseURL: cfg.HashServices.LeakCheck.BaseURL,
			Timeout: cfg.HashServices.LeakCheck.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("build leakcheck client: %w", err)
		}
		leakCheck = client
	}

	var onlineHashCrack *hashlookup.OnlineHashCrackClient
	if cfg.HashServices.OnlineHashCrack.Enabled {
		client, err := hashlookup.NewOnlineHashCrackClient(hashlookup.OnlineHashCrackConfig{
			BaseURL: cfg.HashServices.OnlineHashCrack.BaseURL,
			APIKey:  cfg.HashServices.OnlineHashCrack.APIKey,
			Timeout: cfg.HashServices.OnlineHashCrack.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("build onlinehashcrack client: %w", err)
		}
		onlineHashCrack = client
	}

	handlers[model.JobTypeHashLookup] = hashlookup.New(hashlookup.Options{
		LeakCheck:       leakCheck,
		OnlineHashCrack: onlineHashCrack,
		CacheTTL:        cfg.Cache.LookupTTL,
	}).Run

	if logger != nil {
		registry := worker.NewRegistry(handlers)
		logger.Info("module registry built", "types", registry.Types())
		return registry, nil
	}
	return worker.NewRegistry(handlers), nil
}

// RunServicesWithShutdown runs the enabled services until SIGINT/SIGTERM or
// the first service failure.
func RunServicesWithShutdown(cfg *config.AppConfig, services ServiceContainer, logger *slog.Logger) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.IsAPIEnabled() {
		server := &http.Server{
			Addr: cfg.HTTP.Addr,
			Handler: api.NewRouter(api.RouterServices{
				Jobs:     services.Jobs,
				Profiles: services.Profiles,
				Logger:   logger,
			}),
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		}

		g.Go(func() error {
			logger.Info("starting HTTP server", "addr", server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("shutting down HTTP server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	if cfg.IsWorkerEnabled() {
		g.Go(func() error {
			// Resume the profile recorded by the last switch; a fresh
			// install stays on the configured default.
			if err := services.Switcher.LoadActive(gctx); err != nil {
				logger.Warn("could not restore active profile", "error", err)
			}
			if err := services.Engine.Run(gctx); err != nil {
				return fmt.Errorf("worker engine: %w", err)
			}
			return nil
		})
	}

	err := g.Wait()

	if closeErr := services.Metrics.Close(); closeErr != nil {
		logger.Warn("failed to close statsd client", "error", closeErr)
	}

	if err != nil {
		return err
	}
	logger.Info("all services stopped")
	return nil
}
