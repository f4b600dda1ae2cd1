package demodata

import (
	"context"

	"github.com/jhoicas/demo-data-assistant/internal/application/ports"
	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

// activityModels modelos que reciben actividades, en orden de procesamiento.
var activityModels = []string{"crm.lead", "hr.applicant", "project.task", "res.partner"}

type activityTarget struct {
	model string
	id    int
}

func (r *run) wantsActivities() (bool, string) {
	return r.in.Toggles.CreateActivities, ""
}

// activities agrega de 1 a 3 actividades por oportunidad, candidato, tarea y una muestra
// de contactos individuales. Tipos distintos hasta agotarlos; vencimientos de -5 a +10 días.
func (r *run) activities(ctx context.Context) error {
	modelIDs, err := r.activityModelIDs(ctx)
	if err != nil {
		return r.soft(err, "modelos de actividades no disponibles")
	}
	types, err := r.gw.SearchRead(ctx, "mail.activity.type", nil, []string{"name"}, 0)
	if err != nil {
		return r.soft(err, "tipos de actividad no disponibles")
	}
	typeIDs := ports.RecordIDs(types)
	if len(typeIDs) == 0 {
		r.report.Skip("activities", "sin tipos de actividad")
		return nil
	}

	targets, err := r.activityTargets(ctx)
	if err != nil {
		return err
	}
	for _, t := range targets {
		modelID, ok := modelIDs[t.model]
		if !ok {
			continue
		}
		n := r.between(1, 3)
		kinds := sample(r, typeIDs, n)
		for len(kinds) < n {
			kinds = append(kinds, pick(r, typeIDs))
		}
		for _, kind := range kinds {
			deadline := r.today().AddDate(0, 0, r.between(-5, 10))
			vals := entity.Values{
				"res_model_id":     modelID,
				"res_id":           t.id,
				"activity_type_id": kind,
				"summary":          pick(r, activitySummaries[t.model]),
				"date_deadline":    dateStr(deadline),
			}
			if _, _, err := r.create(ctx, "mail.activity", vals, "actividad"); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *run) activityModelIDs(ctx context.Context) (map[string]int, error) {
	recs, err := r.gw.SearchRead(ctx, "ir.model", ports.Where("model", "in", activityModels), []string{"model"}, 0)
	if err != nil {
		return nil, err
	}
	out := map[string]int{}
	for _, m := range recs {
		out[m.Str("model")] = m.ID()
	}
	return out, nil
}

func (r *run) activityTargets(ctx context.Context) ([]activityTarget, error) {
	var out []activityTarget
	for _, id := range r.oppIDs {
		out = append(out, activityTarget{"crm.lead", id})
	}
	for _, id := range r.applicants {
		out = append(out, activityTarget{"hr.applicant", id})
	}
	for _, t := range r.tasks {
		out = append(out, activityTarget{"project.task", t.id})
	}
	if r.cfg.ActivityContactCap == 0 {
		return out, nil
	}
	contacts, err := r.gw.SearchRead(ctx, "res.partner", ports.Where("is_company", "=", false),
		[]string{"name"}, r.cfg.ActivityContactCap)
	if err != nil {
		return out, r.soft(err, "contactos no disponibles")
	}
	for _, id := range ports.RecordIDs(contacts) {
		out = append(out, activityTarget{"res.partner", id})
	}
	return out, nil
}
