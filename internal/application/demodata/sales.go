package demodata

import (
	"context"

	"github.com/jhoicas/demo-data-assistant/internal/application/ports"
	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

// confirmedStates estados de pedido que cuentan como confirmados.
var confirmedStates = []string{"sale", "done"}

// sales crea N pedidos, enlaza los primeros con las oportunidades, confirma un lote
// y verifica releyendo el estado. Solo las oportunidades de pedidos verificados pasan a ganadas.
func (r *run) sales(ctx context.Context) error {
	products, err := r.saleProducts(ctx)
	if err != nil {
		return err
	}
	if len(products) == 0 || len(r.partners) == 0 {
		r.report.Skip(entity.ModuleSale, "sin productos o empresas")
		return nil
	}

	var orders []int
	linked := map[int]int{} // pedido -> oportunidad
	for i := 0; i < r.in.Selections.Sale; i++ {
		vals := entity.Values{"partner_id": r.partners[i%len(r.partners)]}
		var opp int
		if i < len(r.oppIDs) {
			opp = r.oppIDs[i]
			vals["opportunity_id"] = opp
			vals["partner_id"] = r.oppPartner[opp]
		}
		var lines []any
		for _, pid := range sample(r, products, r.between(1, 5)) {
			lines = append(lines, []any{0, 0, entity.Values{
				"product_id":      pid,
				"product_uom_qty": r.between(1, 10),
			}})
		}
		vals["order_line"] = lines

		id, ok, err := r.create(ctx, "sale.order", vals, "pedido")
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		orders = append(orders, id)
		if opp > 0 {
			linked[id] = opp
		}
	}

	toConfirm := orders[:min(r.cfg.ConfirmLimit, len(orders))]
	if err := r.callBatch(ctx, "sale.order", "action_confirm", toConfirm); err != nil {
		return err
	}
	verified, err := r.verifyConfirmed(ctx, toConfirm)
	if err != nil {
		return err
	}
	r.confirmedOrders = verified
	r.log.Info().Int("orders", len(orders)).Int("confirmed", len(verified)).Msg("pedidos creados")

	var won []int
	for _, id := range verified {
		if opp, ok := linked[id]; ok {
			won = append(won, opp)
		}
	}
	return r.markWon(ctx, won)
}

// saleProducts productos vendibles; si no hay, todos los productos.
func (r *run) saleProducts(ctx context.Context) ([]int, error) {
	recs, err := r.gw.SearchRead(ctx, "product.product", ports.Where("sale_ok", "=", true), []string{"id"}, 0)
	if err != nil {
		return nil, r.soft(err, "no se pudieron leer productos vendibles")
	}
	if len(recs) > 0 {
		return ports.RecordIDs(recs), nil
	}
	r.log.Warn().Msg("ningún producto vendible, se usan todos los productos")
	recs, err = r.gw.SearchRead(ctx, "product.product", nil, []string{"id"}, 0)
	if err != nil {
		return nil, r.soft(err, "no se pudieron leer productos")
	}
	return ports.RecordIDs(recs), nil
}

// verifyConfirmed relee los pedidos y devuelve los que realmente quedaron confirmados.
func (r *run) verifyConfirmed(ctx context.Context, ids []int) ([]int, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	recs, err := r.gw.SearchRead(ctx, "sale.order",
		ports.Where("id", "in", ids).And("state", "in", confirmedStates), []string{"state"}, 0)
	if err != nil {
		return nil, r.soft(err, "no se pudo verificar la confirmación")
	}
	return ports.RecordIDs(recs), nil
}

// callBatch llama method sobre todos los ids; si el lote falla, reintenta uno por uno.
func (r *run) callBatch(ctx context.Context, model, method string, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.gw.CallMethod(ctx, model, method, ids, nil, nil)
	if err == nil {
		return nil
	}
	if err := r.soft(err, method+" por lote rechazado, reintento individual"); err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := r.gw.CallMethod(ctx, model, method, []int{id}, nil, nil); err != nil {
			if err := r.soft(err, method+" omitido"); err != nil {
				return err
			}
		}
	}
	return nil
}
