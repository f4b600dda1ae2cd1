// Package report exporta el resultado de una corrida a XLSX.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/demo-data-assistant/internal/application/dto"
)

// Nombres de hoja.
const (
	SheetSummary = "Resumen"
	SheetModules = "Modulos"
	SheetErrors  = "Errores"
)

// ContentType MIME del archivo generado.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteXLSX escribe el libro con tres hojas: resumen, registros creados por modelo
// (más etapas omitidas) y el reporte de errores del gateway.
func WriteXLSX(w io.Writer, run *dto.RunResponse) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}
	for _, name := range []string{SheetModules, SheetErrors} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	if err := writeSummary(f, run); err != nil {
		return fmt.Errorf("hoja %s: %w", SheetSummary, err)
	}
	if err := writeModules(f, run); err != nil {
		return fmt.Errorf("hoja %s: %w", SheetModules, err)
	}
	if err := writeErrors(f, run); err != nil {
		return fmt.Errorf("hoja %s: %w", SheetErrors, err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	for _, sheet := range []string{SheetModules, SheetErrors} {
		if err := f.SetRowStyle(sheet, 1, 1, header); err != nil {
			return err
		}
	}
	if err := f.SetColStyle(SheetSummary, "A", header); err != nil {
		return err
	}
	_ = f.SetColWidth(SheetSummary, "A", "A", 22)
	_ = f.SetColWidth(SheetSummary, "B", "B", 40)
	_ = f.SetColWidth(SheetErrors, "A", "A", 48)
	_ = f.SetColWidth(SheetErrors, "D", "E", 60)

	return f.Write(w)
}

func writeSummary(f *excelize.File, run *dto.RunResponse) error {
	finished := ""
	if run.FinishedAt != nil {
		finished = run.FinishedAt.Format(time.RFC3339)
	}
	rows := [][]any{
		{"Corrida", run.ID},
		{"Industria", run.Industry},
		{"Estado", string(run.Status)},
		{"Fallo", run.Failure},
		{"Inicio", run.StartedAt.Format(time.RFC3339)},
		{"Fin", finished},
		{"Productos", len(run.Result.ProductIDs)},
		{"Empresas", len(run.Result.CompanyIDs)},
		{"Pedidos base", len(run.Result.OrderIDs)},
		{"Productos con trazabilidad", len(run.Result.TrackingProducts)},
		{"Errores", len(run.Errors)},
	}
	return setRows(f, SheetSummary, rows)
}

func writeModules(f *excelize.File, run *dto.RunResponse) error {
	rows := [][]any{{"Modelo", "Registros", "IDs"}}
	if run.Modules != nil {
		models := make([]string, 0, len(run.Modules.Created))
		for m := range run.Modules.Created {
			models = append(models, m)
		}
		sort.Strings(models)
		for _, m := range models {
			ids := run.Modules.Created[m]
			rows = append(rows, []any{m, len(ids), joinInts(ids)})
		}
		for _, s := range run.Modules.Skipped {
			rows = append(rows, []any{"omitida", 0, s})
		}
	}
	return setRows(f, SheetModules, rows)
}

func writeErrors(f *excelize.File, run *dto.RunResponse) error {
	rows := [][]any{{"URL", "Método", "Estado HTTP", "Mensaje", "Cuerpo", "Campos"}}
	for _, e := range run.Errors {
		rows = append(rows, []any{e.URL, e.Method, e.StatusCode, e.ErrorMessage, e.ErrorBody, strings.Join(e.PayloadKeys, ", ")})
	}
	return setRows(f, SheetErrors, rows)
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ",")
}
