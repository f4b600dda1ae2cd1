// Package bootstrap arma el caso de uso de corridas a partir de la configuración.
// Lo comparten el servidor HTTP y la CLI.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/demo-data-assistant/internal/application/demodata"
	"github.com/jhoicas/demo-data-assistant/internal/application/ports"
	"github.com/jhoicas/demo-data-assistant/internal/application/usecase"
	"github.com/jhoicas/demo-data-assistant/internal/domain/repository"
	"github.com/jhoicas/demo-data-assistant/internal/infrastructure/ai"
	"github.com/jhoicas/demo-data-assistant/internal/infrastructure/memory"
	"github.com/jhoicas/demo-data-assistant/internal/infrastructure/odoo"
	"github.com/jhoicas/demo-data-assistant/internal/infrastructure/postgres"
	"github.com/jhoicas/demo-data-assistant/internal/infrastructure/sandbox"
	"github.com/jhoicas/demo-data-assistant/pkg/config"
)

// Deps piezas construidas. Close libera conexiones (base del sandbox, pool de PostgreSQL).
type Deps struct {
	DemoData *usecase.DemoDataUseCase
	Gateways ports.GatewayFactory
	closers  []func()
}

// Close libera los recursos en orden inverso.
func (d *Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// Build construye gateway, generador, historial y caso de uso. opts se agregan al final
// (p. ej. WithSeed desde la CLI).
func Build(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts ...usecase.DemoDataOption) (*Deps, error) {
	d := &Deps{}

	gateways, err := d.gateways(ctx, cfg, log)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.Gateways = gateways

	completer, err := ai.NewCompleter(cfg.AI.Provider, cfg.AI.APIKey(), cfg.AI.Model(), cfg.AI.OpenAIBaseURL)
	if err != nil {
		d.Close()
		return nil, err
	}
	gen := ai.NewGenerator(completer, log, ai.WithTimeout(cfg.AI.Timeout))

	runs, err := d.runRepository(ctx, cfg, log)
	if err != nil {
		d.Close()
		return nil, err
	}

	all := append([]usecase.DemoDataOption{usecase.WithRunRepository(runs)}, opts...)
	d.DemoData = usecase.NewDemoDataUseCase(gateways, gen, usecase.DemoDataConfig{
		SerialSlot: cfg.Demo.SerialSlot,
		LotSlot:    cfg.Demo.LotSlot,
		Orchestrator: demodata.Config{
			WonStageNames:      cfg.Demo.WonStageNames,
			PerturbationRatio:  cfg.Demo.PerturbationRatio,
			ConfirmLimit:       cfg.Demo.ConfirmLimit,
			ActivityContactCap: cfg.Demo.ActivityContactCap,
		},
	}, log, all...)
	return d, nil
}

func (d *Deps) gateways(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.GatewayFactory, error) {
	switch cfg.Gateway.Kind {
	case "sandbox":
		store, err := sandbox.OpenStore(ctx, cfg.Gateway.SandboxDSN, log.With().Str("component", "sandbox").Logger(), sandbox.Options{})
		if err != nil {
			return nil, fmt.Errorf("abrir sandbox: %w", err)
		}
		d.closers = append(d.closers, func() { _ = store.Close() })
		log.Info().Str("dsn", cfg.Gateway.SandboxDSN).Msg("gateway en proceso (sandbox)")
		return func() ports.ObjectGateway { return store.Session() }, nil
	default:
		client, err := odoo.New(odoo.Config{
			URL:       cfg.Odoo.URL,
			DB:        cfg.Odoo.DB,
			APIKey:    cfg.Odoo.APIKey,
			UserAgent: cfg.App.Name,
			Timeout:   cfg.Odoo.Timeout,
			RateLimit: cfg.Odoo.RateLimit,
			Burst:     cfg.Odoo.Burst,
		}, log)
		if err != nil {
			return nil, err
		}
		log.Info().Str("url", cfg.Odoo.URL).Str("db", cfg.Odoo.DB).Msg("gateway de red (JSON-2)")
		return func() ports.ObjectGateway { return client.Session() }, nil
	}
}

func (d *Deps) runRepository(ctx context.Context, cfg *config.Config, log zerolog.Logger) (repository.RunRepository, error) {
	if !cfg.DB.Enabled() {
		log.Info().Msg("historial de corridas en memoria")
		return memory.NewRunRepository(), nil
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	d.closers = append(d.closers, pool.Close)
	log.Info().Msg("historial de corridas en PostgreSQL")
	return postgres.NewRunRepository(pool), nil
}
