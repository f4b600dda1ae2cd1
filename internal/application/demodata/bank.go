package demodata

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/demo-data-assistant/internal/application/ports"
	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

// DeviationSuffix marca del concepto en líneas bancarias con discrepancia de texto.
const DeviationSuffix = " (Abweichung)"

func (r *run) wantsBank() (bool, string) {
	if !r.in.Toggles.CreateBankTransactions {
		return false, ""
	}
	if !r.in.Installed[entity.ModuleAccount] {
		return false, "módulo account no instalado"
	}
	return true, ""
}

// statementLine línea de extracto planificada.
type statementLine struct {
	ref       string
	amount    decimal.Decimal
	partner   int
	perturbed bool
}

// bankStatement crea un extracto con una línea por factura publicada (clientes y proveedores).
func (r *run) bankStatement(ctx context.Context) error {
	posted, err := r.gw.SearchRead(ctx, "account.move",
		ports.Where("state", "=", "posted").And("move_type", "in", []string{"out_invoice", "in_invoice"}),
		[]string{"name", "move_type", "amount_total", "partner_id"}, 0)
	if err != nil {
		return r.soft(err, "facturas publicadas no disponibles")
	}
	if len(posted) == 0 {
		r.report.Skip("bank", "sin facturas publicadas")
		return nil
	}

	journal, err := r.bankJournal(ctx)
	if err != nil {
		return r.soft(err, "diario bancario no disponible")
	}
	today := dateStr(r.today())
	stmt, ok, err := r.create(ctx, "account.bank.statement", entity.Values{
		"name":       "Kontoauszug " + today,
		"journal_id": journal,
		"date":       today,
	}, "extracto bancario")
	if err != nil || !ok {
		return err
	}

	lines := planStatementLines(r.rng, posted, r.cfg.PerturbationRatio)
	for _, l := range lines {
		vals := entity.Values{
			"journal_id":   journal,
			"statement_id": stmt,
			"date":         today,
			"payment_ref":  l.ref,
			"amount":       l.amount.InexactFloat64(),
		}
		if l.partner > 0 {
			vals["partner_id"] = l.partner
		}
		if _, _, err := r.create(ctx, "account.bank.statement.line", vals, "línea bancaria"); err != nil {
			return err
		}
	}
	return nil
}

// planStatementLines importes exactos para proveedores (negativos) y una fracción ratio
// de clientes con discrepancia de importe o de texto, nunca ambas. El orden sale mezclado.
func planStatementLines(rng *rand.Rand, moves []ports.Record, ratio float64) []statementLine {
	var customers, lines []statementLine
	for _, m := range moves {
		partner, _ := m.Ref("partner_id")
		l := statementLine{
			ref:     m.Str("name"),
			amount:  decimal.NewFromFloat(m.Float("amount_total")),
			partner: partner,
		}
		if l.ref == "" {
			l.ref = fmt.Sprintf("Zahlung %d", m.ID())
		}
		if m.Str("move_type") == "in_invoice" {
			l.amount = l.amount.Neg()
			lines = append(lines, l)
			continue
		}
		customers = append(customers, l)
	}

	if n := len(customers); n > 0 {
		k := max(1, int(math.Round(ratio*float64(n))))
		for _, i := range rng.Perm(n)[:min(k, n)] {
			c := &customers[i]
			c.perturbed = true
			if rng.IntN(2) == 1 {
				factor := decimal.NewFromFloat(0.7 + rng.Float64()*0.6)
				if scaled := c.amount.Mul(factor).Round(2); !scaled.Equal(c.amount) {
					c.amount = scaled
					continue
				}
			}
			// Importes que no cambian al escalar (0, céntimos) llevan la discrepancia en el texto.
			c.ref += DeviationSuffix
		}
	}
	lines = append(lines, customers...)
	rng.Shuffle(len(lines), func(i, j int) { lines[i], lines[j] = lines[j], lines[i] })
	return lines
}

// bankJournal primer diario de tipo banco o uno nuevo.
func (r *run) bankJournal(ctx context.Context) (int, error) {
	recs, err := r.gw.SearchRead(ctx, "account.journal", ports.Where("type", "=", "bank"), []string{"name"}, 1)
	if err != nil {
		return 0, err
	}
	if len(recs) > 0 {
		return recs[0].ID(), nil
	}
	id, err := r.gw.Create(ctx, "account.journal", entity.Values{"name": "Bank", "type": "bank", "code": "BNK1"})
	if err != nil {
		return 0, err
	}
	r.report.Add("account.journal", id)
	return id, nil
}
