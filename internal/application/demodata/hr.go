package demodata

import (
	"context"

	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

// employees crea empleados en departamentos al azar.
func (r *run) employees(ctx context.Context) error {
	if err := r.ensureDepartments(ctx); err != nil {
		return err
	}
	for i := 0; i < r.in.Selections.HR; i++ {
		vals := entity.Values{
			"name":      r.in.Names.Name(entity.NamesEmployees, i, personName(i)),
			"job_title": pick(r, jobTitles),
		}
		if len(r.departments) > 0 {
			vals["department_id"] = pick(r, r.departments)
		}
		id, ok, err := r.create(ctx, "hr.employee", vals, "empleado")
		if err != nil {
			return err
		}
		if ok {
			r.employeeIDs = append(r.employeeIDs, id)
		}
	}
	return nil
}

// ensureDepartments carga los departamentos existentes o crea los sugeridos.
func (r *run) ensureDepartments(ctx context.Context) error {
	if len(r.departments) > 0 {
		return nil
	}
	recs, err := r.gw.SearchRead(ctx, "hr.department", nil, []string{"name"}, 0)
	if err != nil {
		if err := r.soft(err, "departamentos no disponibles"); err != nil {
			return err
		}
	}
	for _, d := range recs {
		r.departments = append(r.departments, d.ID())
	}
	if len(r.departments) > 0 {
		return nil
	}

	n := len(fallbackDepartments)
	if s := r.in.Names.Len(entity.NamesDepartments); s > 0 {
		n = min(s, 5)
	}
	for i := 0; i < n; i++ {
		name := r.in.Names.Name(entity.NamesDepartments, i, fallbackDepartments[i%len(fallbackDepartments)])
		id, ok, err := r.create(ctx, "hr.department", entity.Values{"name": name}, "departamento")
		if err != nil {
			return err
		}
		if ok {
			r.departments = append(r.departments, id)
		}
	}
	return nil
}
