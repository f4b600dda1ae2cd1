package demodata

import (
	"context"
	"fmt"

	"github.com/jhoicas/demo-data-assistant/internal/application/enrichment"
	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

// opportunities crea N oportunidades repartidas entre las empresas y les asigna
// una etapa aleatoria distinta de la ganada.
func (r *run) opportunities(ctx context.Context) error {
	if len(r.partners) == 0 {
		r.report.Skip(entity.ModuleCRM, "sin empresas")
		return nil
	}
	stages, err := r.gw.SearchRead(ctx, "crm.stage", nil, []string{"name"}, 0)
	if err != nil {
		if err := r.soft(err, "etapas del CRM no disponibles"); err != nil {
			return err
		}
	}
	var open []int
	for _, s := range stages {
		if !r.isWon(s.Str("name")) {
			open = append(open, s.ID())
		}
	}

	for i := 0; i < r.in.Selections.CRM; i++ {
		partner := r.partners[i%len(r.partners)]
		fallback := fmt.Sprintf("%s %s %d", pick(r, opportunityTitles), r.in.Industry, i+1)
		id, ok, err := r.create(ctx, "crm.lead", entity.Values{
			"name":             r.in.Names.Name(entity.NamesOpportunities, i, fallback),
			"type":             "opportunity",
			"partner_id":       partner,
			"expected_revenue": r.amount(1000, 50000),
			"probability":      r.between(10, 90),
		}, "oportunidad")
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		r.oppIDs = append(r.oppIDs, id)
		r.oppPartner[id] = partner

		if len(open) == 0 {
			continue
		}
		if _, err := r.gw.Write(ctx, "crm.lead", []int{id}, entity.Values{"stage_id": pick(r, open)}); err != nil {
			if err := r.soft(err, "etapa de oportunidad no asignada"); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *run) isWon(stage string) bool {
	for _, w := range r.cfg.WonStageNames {
		if enrichment.FoldEqual(stage, w) {
			return true
		}
	}
	return false
}

// wonStage id de la etapa ganada o 0 si no existe.
func (r *run) wonStage(ctx context.Context) (int, error) {
	stages, err := r.gw.SearchRead(ctx, "crm.stage", nil, []string{"name"}, 0)
	if err != nil {
		return 0, err
	}
	for _, s := range stages {
		if r.isWon(s.Str("name")) {
			return s.ID(), nil
		}
	}
	return 0, nil
}

// markWon mueve a la etapa ganada las oportunidades de pedidos confirmados.
func (r *run) markWon(ctx context.Context, opportunities []int) error {
	if len(opportunities) == 0 {
		return nil
	}
	won, err := r.wonStage(ctx)
	if err != nil {
		return r.soft(err, "etapa ganada no disponible")
	}
	if won == 0 {
		r.log.Info().Strs("names", r.cfg.WonStageNames).Msg("no existe etapa ganada, oportunidades sin cambio")
		return nil
	}
	for _, id := range opportunities {
		if _, err := r.gw.Write(ctx, "crm.lead", []int{id}, entity.Values{"stage_id": won}); err != nil {
			if err := r.soft(err, "oportunidad no marcada como ganada"); err != nil {
				return err
			}
			continue
		}
		r.report.Add("crm.lead.won", id)
	}
	return nil
}
