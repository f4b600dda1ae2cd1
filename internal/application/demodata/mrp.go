package demodata

import (
	"context"
	"fmt"

	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

// manufacturing crea productos fabricables, cada uno con una BOM sobre su plantilla.
// Los primeros SubBOMs() componentes reciben una BOM propia de materias primas (un solo nivel).
func (r *run) manufacturing(ctx context.Context) error {
	cfg := r.in.Selections.MRP
	components, subBOMs := cfg.Components(), cfg.SubBOMs()

	for i := 0; i < cfg.NumProducts; i++ {
		name := r.in.Names.Name(entity.NamesManufactured, i, fmt.Sprintf("%s Fertigprodukt %d", r.in.Industry, i+1))
		list := r.amount(200, 2500)
		pid, ok, err := r.newProduct(ctx, entity.Values{
			"name":           name,
			"type":           "consu",
			"is_storable":    true,
			"sale_ok":        true,
			"purchase_ok":    false,
			"tracking":       string(entity.TrackingNone),
			"list_price":     list,
			"standard_price": r.amount(list*0.4, list*0.7),
		}, "producto fabricado")
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		tmpl, err := r.templateOf(ctx, pid)
		if err != nil {
			if err := r.soft(err, "BOM omitida"); err != nil {
				return err
			}
			continue
		}

		var lines []any
		for j, cname := range r.componentNames(ctx, name, components) {
			cid, ok, err := r.material(ctx, cname, 5, 150)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			lines = append(lines, bomLine(cid, r.between(1, 4)))
			if j < subBOMs {
				if err := r.subBOM(ctx, cid, cname); err != nil {
					return err
				}
			}
		}
		if len(lines) == 0 {
			r.log.Warn().Str("product", name).Msg("sin componentes, BOM omitida")
			continue
		}
		if _, _, err := r.create(ctx, "mrp.bom", entity.Values{
			"product_tmpl_id": tmpl,
			"product_qty":     1,
			"type":            "normal",
			"bom_line_ids":    lines,
		}, "BOM"); err != nil {
			return err
		}
	}
	return nil
}

// subBOM segunda BOM del componente con 2 a 4 materias primas nuevas.
func (r *run) subBOM(ctx context.Context, componentID int, component string) error {
	tmpl, err := r.templateOf(ctx, componentID)
	if err != nil {
		return r.soft(err, "sub-BOM omitida")
	}
	var lines []any
	n := r.between(2, 4)
	for k := 1; k <= n; k++ {
		id, ok, err := r.material(ctx, fmt.Sprintf("%s Rohstoff %d", component, k), 0.5, 40)
		if err != nil {
			return err
		}
		if ok {
			lines = append(lines, bomLine(id, r.between(1, 10)))
		}
	}
	if len(lines) == 0 {
		return nil
	}
	_, _, err = r.create(ctx, "mrp.bom", entity.Values{
		"product_tmpl_id": tmpl,
		"product_qty":     1,
		"type":            "normal",
		"bom_line_ids":    lines,
	}, "sub-BOM")
	return err
}

// material componente o materia prima almacenable, comprable y no vendible.
func (r *run) material(ctx context.Context, name string, lo, hi float64) (int, bool, error) {
	cost := r.amount(lo, hi)
	return r.newProduct(ctx, entity.Values{
		"name":           name,
		"type":           "consu",
		"is_storable":    true,
		"sale_ok":        false,
		"purchase_ok":    true,
		"tracking":       string(entity.TrackingNone),
		"list_price":     cost,
		"standard_price": cost,
	}, "componente")
}

// componentNames nombres del generador completados con "{producto} Modul {n}".
func (r *run) componentNames(ctx context.Context, product string, count int) []string {
	names, err := r.gen.FetchBOMComponentNames(ctx, r.in.Industry, product, count, r.in.Language)
	if err != nil {
		r.log.Debug().Err(err).Str("product", product).Msg("nombres de componentes no disponibles")
	}
	out := make([]string, 0, count)
	for _, n := range names {
		if len(out) == count {
			break
		}
		if n != "" {
			out = append(out, n)
		}
	}
	for n := len(out); n < count; n++ {
		out = append(out, fmt.Sprintf("%s Modul %d", product, n+1))
	}
	return out
}

func bomLine(productID, qty int) []any {
	return []any{0, 0, entity.Values{"product_id": productID, "product_qty": qty}}
}
