package demodata

import (
	"context"
	"time"

	"github.com/jhoicas/demo-data-assistant/internal/application/ports"
	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

// wantsInvoices facturas desde pedidos confirmados o, en exclusiva, desde cero.
func (r *run) wantsInvoices() (bool, string) {
	if !r.in.Installed[entity.ModuleAccount] {
		if r.in.Selections.Requested(entity.ModuleAccount) {
			return false, "módulo no instalado"
		}
		return false, ""
	}
	if r.fromOrders() || r.in.Selections.Requested(entity.ModuleAccount) {
		return true, ""
	}
	return false, ""
}

func (r *run) fromOrders() bool {
	return r.in.Installed[entity.ModuleSale] && len(r.confirmedOrders) > 0
}

func (r *run) invoices(ctx context.Context) error {
	var moves []int
	var err error
	if r.fromOrders() {
		moves, err = r.invoicesFromOrders(ctx)
	} else {
		moves, err = r.invoicesFromScratch(ctx, r.in.Selections.Account.Invoices)
	}
	if err != nil {
		return err
	}
	bills, err := r.vendorBills(ctx, r.in.Selections.Account.VendorBills)
	if err != nil {
		return err
	}
	moves = append(moves, bills...)
	return r.callBatch(ctx, "account.move", "action_post", moves)
}

// invoicesFromOrders una factura por pedido verificado, releyendo sus líneas.
func (r *run) invoicesFromOrders(ctx context.Context) ([]int, error) {
	orders, err := r.gw.SearchRead(ctx, "sale.order", ports.Where("id", "in", r.confirmedOrders),
		[]string{"name", "partner_id"}, 0)
	if err != nil {
		return nil, r.soft(err, "no se pudieron leer los pedidos confirmados")
	}
	var moves []int
	for _, o := range orders {
		partner, ok := o.Ref("partner_id")
		if !ok {
			continue
		}
		lines, err := r.gw.SearchRead(ctx, "sale.order.line", ports.Where("order_id", "=", o.ID()),
			[]string{"product_id", "product_uom_qty", "price_unit"}, 0)
		if err != nil {
			if err := r.soft(err, "líneas de pedido no disponibles"); err != nil {
				return moves, err
			}
			continue
		}
		var invLines []any
		for _, l := range lines {
			pid, ok := l.Ref("product_id")
			if !ok {
				continue
			}
			vals := entity.Values{
				"product_id": pid,
				"quantity":   l.Float("product_uom_qty"),
				"price_unit": l.Float("price_unit"),
			}
			if label := l.Label("product_id"); label != "" {
				vals["name"] = label
			}
			invLines = append(invLines, []any{0, 0, vals})
		}
		if len(invLines) == 0 {
			continue
		}
		id, ok, err := r.create(ctx, "account.move", entity.Values{
			"move_type":        "out_invoice",
			"partner_id":       partner,
			"invoice_origin":   o.Str("name"),
			"invoice_date":     dateStr(r.today()),
			"invoice_line_ids": invLines,
		}, "factura de pedido")
		if err != nil {
			return moves, err
		}
		if ok {
			moves = append(moves, id)
		}
	}
	return moves, nil
}

// invoicesFromScratch facturas con empresas y productos al azar.
func (r *run) invoicesFromScratch(ctx context.Context, n int) ([]int, error) {
	return r.randomMoves(ctx, "out_invoice", n, func(l entity.Values) {})
}

// vendorBills facturas de proveedor sobre productos al azar.
func (r *run) vendorBills(ctx context.Context, n int) ([]int, error) {
	return r.randomMoves(ctx, "in_invoice", n, func(l entity.Values) {
		l["price_unit"] = r.amount(10, 800)
	})
}

func (r *run) randomMoves(ctx context.Context, moveType string, n int, line func(entity.Values)) ([]int, error) {
	if n <= 0 {
		return nil, nil
	}
	products, err := r.saleProducts(ctx)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 || len(r.partners) == 0 {
		r.report.Skip(moveType, "sin productos o empresas")
		return nil, nil
	}
	var moves []int
	for i := 0; i < n; i++ {
		var lines []any
		for _, pid := range sample(r, products, r.between(1, 3)) {
			l := entity.Values{"product_id": pid, "quantity": r.between(1, 5)}
			line(l)
			lines = append(lines, []any{0, 0, l})
		}
		date := r.today().Add(-time.Duration(r.between(0, 30)) * 24 * time.Hour)
		id, ok, err := r.create(ctx, "account.move", entity.Values{
			"move_type":        moveType,
			"partner_id":       pick(r, r.partners),
			"invoice_date":     dateStr(date),
			"invoice_line_ids": lines,
		}, moveType)
		if err != nil {
			return moves, err
		}
		if ok {
			moves = append(moves, id)
		}
	}
	return moves, nil
}
