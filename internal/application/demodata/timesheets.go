package demodata

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/demo-data-assistant/internal/application/ports"
	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

// timesheets registra horas pasadas sobre tareas de la corrida o existentes.
func (r *run) timesheets(ctx context.Context) error {
	targets, err := r.timesheetTargets(ctx)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		r.report.Skip(entity.ModuleTimesheet, "sin proyectos")
		return nil
	}
	employees, err := r.timesheetEmployees(ctx)
	if err != nil {
		return err
	}
	if len(employees) == 0 {
		r.report.Skip(entity.ModuleTimesheet, "sin empleados")
		return nil
	}

	for i := 0; i < r.in.Selections.Timesheet; i++ {
		t := pick(r, targets)
		vals := entity.Values{
			"name":        pick(r, timesheetNotes),
			"project_id":  t.project,
			"employee_id": pick(r, employees),
			"unit_amount": float64(r.between(2, 32)) * 0.25,
			"date":        dateStr(r.today().Add(-time.Duration(r.between(0, 30)) * 24 * time.Hour)),
		}
		if t.id > 0 {
			vals["task_id"] = t.id
		}
		if _, _, err := r.create(ctx, "account.analytic.line", vals, "parte de horas"); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) timesheetTargets(ctx context.Context) ([]taskRef, error) {
	if len(r.tasks) > 0 {
		return r.tasks, nil
	}
	tasks, err := r.gw.SearchRead(ctx, "project.task", nil, []string{"name", "project_id"}, 50)
	if err != nil {
		return nil, r.soft(err, "tareas no disponibles")
	}
	var out []taskRef
	for _, t := range tasks {
		if pid, ok := t.Ref("project_id"); ok {
			out = append(out, taskRef{id: t.ID(), project: pid, name: t.Str("name")})
		}
	}
	if len(out) > 0 {
		return out, nil
	}
	projects := r.projectIDs
	if len(projects) == 0 {
		recs, err := r.gw.SearchRead(ctx, "project.project", nil, []string{"name"}, 20)
		if err != nil {
			return nil, r.soft(err, "proyectos no disponibles")
		}
		projects = ports.RecordIDs(recs)
	}
	for _, p := range projects {
		out = append(out, taskRef{project: p})
	}
	return out, nil
}

// timesheetEmployees empleados de la corrida, existentes o uno de respaldo.
func (r *run) timesheetEmployees(ctx context.Context) ([]int, error) {
	if len(r.employeeIDs) > 0 {
		return r.employeeIDs, nil
	}
	recs, err := r.gw.SearchRead(ctx, "hr.employee", nil, []string{"name"}, 20)
	if err != nil {
		if err := r.soft(err, "empleados no disponibles"); err != nil {
			return nil, err
		}
	}
	if ids := ports.RecordIDs(recs); len(ids) > 0 {
		return ids, nil
	}
	id, ok, err := r.create(ctx, "hr.employee", entity.Values{"name": fmt.Sprintf("%s Mitarbeiter", r.in.Industry)}, "empleado de respaldo")
	if err != nil || !ok {
		return nil, err
	}
	r.employeeIDs = append(r.employeeIDs, id)
	return r.employeeIDs, nil
}
