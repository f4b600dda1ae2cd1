// Command demodata lanza una corrida de generación de datos demo contra el ERP
// configurado (o el sandbox en proceso) e imprime el resultado y el reporte de errores.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/demo-data-assistant/internal/application/dto"
	"github.com/jhoicas/demo-data-assistant/internal/application/usecase"
	"github.com/jhoicas/demo-data-assistant/internal/bootstrap"
	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
	"github.com/jhoicas/demo-data-assistant/internal/infrastructure/report"
	"github.com/jhoicas/demo-data-assistant/pkg/config"
	"github.com/jhoicas/demo-data-assistant/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	var req dto.RunRequest
	var modules, reportPath, gateway string
	var seed uint64
	var moves, asJSON bool

	flag.StringVar(&req.Criteria.Industry, "industry", "", "industria de la empresa demo (obligatorio)")
	flag.IntVar(&req.Criteria.NumCompanies, "companies", 3, "empresas cliente")
	flag.IntVar(&req.Criteria.NumDeliveryContacts, "delivery-contacts", 1, "contactos de entrega por empresa")
	flag.IntVar(&req.Criteria.NumInvoiceContacts, "invoice-contacts", 1, "contactos de facturación por empresa")
	flag.IntVar(&req.Criteria.NumOtherContacts, "other-contacts", 0, "otros contactos por empresa")
	flag.IntVar(&req.Criteria.NumServices, "services", 2, "productos de servicio")
	flag.IntVar(&req.Criteria.NumConsumables, "consumables", 2, "productos consumibles")
	flag.IntVar(&req.Criteria.NumStorables, "storables", 3, "productos almacenables")
	flag.BoolVar(&moves, "moves", false, "crear también pedidos borrador base")
	flag.StringVar(&modules, "modules", "{}", `cantidades por módulo en JSON, p. ej. '{"crm":5,"sale":3,"mrp":{"num_products":2}}'`)
	flag.BoolVar(&req.Toggles.UseTracking, "tracking", false, "activar trazabilidad por lote/serie")
	flag.BoolVar(&req.Toggles.LotEnabled, "lot", false, "asignar trazabilidad por lote")
	flag.BoolVar(&req.Toggles.SerialEnabled, "serial", false, "asignar trazabilidad por número de serie")
	flag.BoolVar(&req.Toggles.CreateBankTransactions, "bank", false, "crear extracto bancario con discrepancias")
	flag.BoolVar(&req.Toggles.CreateActivities, "activities", false, "crear actividades programadas")
	flag.StringVar(&gateway, "gateway", "", "odoo | sandbox (por defecto GATEWAY)")
	flag.Uint64Var(&seed, "seed", 0, "semilla para resultados reproducibles (0 = aleatoria)")
	flag.StringVar(&reportPath, "report", "", "exportar el resultado a este archivo .xlsx")
	flag.BoolVar(&asJSON, "json", false, "imprimir el resultado como JSON")
	flag.Parse()

	req.Criteria.Mode = entity.ModeMasterOnly
	if moves {
		req.Criteria.Mode = entity.ModeMasterAndMoves
	}
	if err := json.Unmarshal([]byte(modules), &req.Modules); err != nil {
		fmt.Fprintf(os.Stderr, "Error: -modules: %v\n", err)
		return 2
	}

	if gateway != "" {
		_ = os.Setenv("GATEWAY", gateway)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Out: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []usecase.DemoDataOption
	if seed != 0 {
		opts = append(opts, usecase.WithSeed(seed))
	}
	deps, err := bootstrap.Build(ctx, cfg, log.Zerolog(), opts...)
	if err != nil {
		log.Error().Err(err).Msg("construir dependencias")
		return 1
	}
	defer deps.Close()

	resp, runErr := deps.DemoData.Execute(ctx, req)
	if resp != nil {
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			_ = enc.Encode(resp)
		} else {
			printRun(os.Stdout, resp)
		}
		if reportPath != "" {
			if err := writeReport(reportPath, resp); err != nil {
				log.Error().Err(err).Str("path", reportPath).Msg("exportar reporte")
			} else {
				log.Info().Str("path", reportPath).Msg("reporte exportado")
			}
		}
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		return 1
	}
	return 0
}

func writeReport(path string, resp *dto.RunResponse) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteXLSX(f, resp); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
