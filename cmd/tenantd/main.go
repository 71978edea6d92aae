package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/tenantkit/tenantd/modules/tenant"
	"github.com/tenantkit/tenantd/pkg/config"
	"github.com/tenantkit/tenantd/pkg/httpserver"
	"github.com/tenantkit/tenantd/pkg/lockreg"
	"github.com/tenantkit/tenantd/pkg/logger"
	"github.com/tenantkit/tenantd/pkg/pg"
	"github.com/tenantkit/tenantd/pkg/redis"
	"github.com/tenantkit/tenantd/pkg/requestid"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("tenantd exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var logCfg logger.Config
	config.MustLoad(&logCfg)
	log := logger.NewFromConfig(logCfg, "tenantd",
		logger.WithContextExtractors(requestid.LogExtractor))
	slog.SetDefault(log)

	var pgCfg pg.Config
	if err := config.Load(&pgCfg); err != nil {
		return err
	}
	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return err
	}

	var tenantCfg tenant.Config
	if err := config.Load(&tenantCfg); err != nil {
		return err
	}

	cache := tenant.NewMemoryCache(tenantCfg.CacheTTL)
	probes := []func(context.Context) error{pg.Healthcheck(pool)}

	if tenantCfg.RedisCache {
		var redisCfg redis.Config
		if err := config.Load(&redisCfg); err != nil {
			return err
		}
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		cache = tenant.NewTieredCache(cache, tenant.NewRedisCache(client, tenantCfg.CacheTTL))
		probes = append(probes, redis.Healthcheck(client))
	}

	locks := lockreg.New(
		lockreg.WithTimeout(tenantCfg.LockTimeout),
		lockreg.WithLogger(log),
	)
	store := tenant.NewPGStore(pool, log)
	prov := tenant.NewProvisioner(store, locks,
		tenant.WithCache(cache),
		tenant.WithLogger(log),
	)
	handler := tenant.NewHandler(prov,
		tenant.WithContextProvider(tenant.HeaderContext{}),
		tenant.WithDiagnostics(tenantCfg.Diagnostics),
		tenant.WithHandlerLogger(log),
	)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Get("/healthz", httpserver.HealthCheckHandler(log))
	r.Get("/readyz", httpserver.HealthCheckHandler(log, probes...))
	r.Mount("/", tenant.Router(handler))

	var httpCfg httpserver.Config
	if err := config.Load(&httpCfg); err != nil {
		return err
	}
	return httpserver.New(httpCfg, log).Run(ctx, r)
}
