package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jhoicas/demo-data-assistant/internal/application/dto"
	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

// printRun imprime el resultado y, al final, el reporte completo de errores del gateway.
func printRun(w io.Writer, r *dto.RunResponse) {
	status := okStyle.Render(string(r.Status))
	if r.Status != entity.RunSucceeded {
		status = failStyle.Render(string(r.Status))
	}
	fmt.Fprintf(w, "%s %s (%s)\n", titleStyle.Render("Corrida"), r.ID, status)
	fmt.Fprintf(w, "  industria: %s\n", r.Industry)
	if r.Failure != "" {
		fmt.Fprintf(w, "  fallo: %s\n", r.Failure)
	}

	fmt.Fprintln(w, titleStyle.Render("Datos maestros"))
	fmt.Fprintf(w, "  productos: %d  empresas: %d  pedidos base: %d\n",
		len(r.Result.ProductIDs), len(r.Result.CompanyIDs), len(r.Result.OrderIDs))
	for _, tp := range r.Result.TrackingProducts {
		fmt.Fprintf(w, "  trazabilidad %s: producto %d\n", tp.Kind, tp.ID)
	}

	if r.Modules != nil {
		fmt.Fprintln(w, titleStyle.Render("Módulos"))
		models := make([]string, 0, len(r.Modules.Created))
		for m := range r.Modules.Created {
			models = append(models, m)
		}
		sort.Strings(models)
		for _, m := range models {
			fmt.Fprintf(w, "  %-28s %d\n", m, r.Modules.Count(m))
		}
		for _, s := range r.Modules.Skipped {
			fmt.Fprintf(w, "  %s\n", dimStyle.Render("omitida "+s))
		}
	}

	fmt.Fprintf(w, "%s (%d)\n", titleStyle.Render("Errores"), len(r.Errors))
	for i, e := range r.Errors {
		fmt.Fprintf(w, "  %d. %s %s -> %d\n", i+1, e.Method, e.URL, e.StatusCode)
		if e.ErrorMessage != "" {
			fmt.Fprintf(w, "     %s\n", failStyle.Render(e.ErrorMessage))
		}
		if e.ErrorBody != "" {
			fmt.Fprintf(w, "     %s\n", dimStyle.Render(e.ErrorBody))
		}
		if len(e.PayloadKeys) > 0 {
			fmt.Fprintf(w, "     campos: %s\n", strings.Join(e.PayloadKeys, ", "))
		}
	}
}
