package demodata

import (
	"context"
	"fmt"

	"github.com/jhoicas/demo-data-assistant/internal/application/ports"
	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

// minAnchorProducts productos vendibles que necesitan ventas y facturación.
const minAnchorProducts = 2

// needsAnchors solo cuando alguna etapa que usa empresas o productos va a ejecutarse.
func (r *run) needsAnchors() (bool, string) {
	if r.active(entity.ModuleCRM) || r.active(entity.ModuleSale) || r.wantsAccounting() {
		return true, ""
	}
	return false, ""
}

func (r *run) wantsAccounting() bool {
	return r.in.Installed[entity.ModuleAccount] && r.in.Selections.Requested(entity.ModuleAccount)
}

// ensureAnchors completa empresas y productos mínimos para las etapas siguientes.
func (r *run) ensureAnchors(ctx context.Context) error {
	if len(r.partners) == 0 {
		ids, err := r.existingCompanies(ctx)
		if err != nil {
			if err := r.soft(err, "no se pudieron leer empresas existentes"); err != nil {
				return err
			}
		}
		r.partners = ids
	}
	if len(r.partners) == 0 {
		id, ok, err := r.create(ctx, "res.partner", entity.Values{
			"name":         fmt.Sprintf("%s Demo Kunde", r.in.Industry),
			"company_type": "company",
		}, "empresa de respaldo")
		if err != nil {
			return err
		}
		if ok {
			r.log.Info().Int("partner_id", id).Msg("empresa de respaldo creada")
			r.partners = append(r.partners, id)
		}
	}

	if !r.active(entity.ModuleSale) && !r.wantsAccounting() {
		return nil
	}
	have := len(r.in.Anchors.ProductIDs)
	if have < minAnchorProducts {
		recs, err := r.gw.SearchRead(ctx, "product.product", ports.Where("sale_ok", "=", true), []string{"id"}, minAnchorProducts)
		if err != nil {
			return r.soft(err, "no se pudieron leer productos vendibles")
		}
		have = max(have, len(recs))
	}
	for n := have; n < minAnchorProducts; n++ {
		name := fmt.Sprintf("%s Demo Produkt %d", r.in.Industry, n+1)
		list := r.amount(20, 400)
		_, ok, err := r.newProduct(ctx, entity.Values{
			"name":           name,
			"type":           "consu",
			"sale_ok":        true,
			"list_price":     list,
			"standard_price": r.amount(list*0.4, list*0.8),
		}, "producto de respaldo")
		if err != nil {
			return err
		}
		if ok {
			r.log.Info().Str("product", name).Msg("producto de respaldo creado")
		}
	}
	return nil
}

// existingCompanies empresas cliente, sin la empresa propia.
func (r *run) existingCompanies(ctx context.Context) ([]int, error) {
	own, err := r.gw.SearchRead(ctx, "res.company", nil, []string{"partner_id"}, 0)
	if err != nil {
		return nil, err
	}
	exclude := []int{}
	for _, c := range own {
		if id, ok := c.Ref("partner_id"); ok {
			exclude = append(exclude, id)
		}
	}
	recs, err := r.gw.SearchRead(ctx, "res.partner",
		ports.Where("is_company", "=", true).And("id", "not in", exclude), []string{"name"}, 0)
	if err != nil {
		return nil, err
	}
	return ports.RecordIDs(recs), nil
}

// newProduct crea un producto con códigos únicos cuando hay registro de códigos.
func (r *run) newProduct(ctx context.Context, vals entity.Values, what string) (int, bool, error) {
	if r.in.Codes != nil {
		name := vals.Str("name")
		vals["barcode"] = r.in.Codes.NextBarcode()
		vals["default_code"] = r.in.Codes.NextDefaultCode(name)
	}
	return r.create(ctx, "product.product", vals, what)
}

// templateOf resuelve la plantilla de una variante recién creada.
func (r *run) templateOf(ctx context.Context, productID int) (int, error) {
	recs, err := r.gw.SearchRead(ctx, "product.product", ports.Where("id", "=", productID), []string{"product_tmpl_id"}, 1)
	if err != nil {
		return 0, err
	}
	if len(recs) == 0 {
		return 0, fmt.Errorf("producto %d sin plantilla", productID)
	}
	id, ok := recs[0].Ref("product_tmpl_id")
	if !ok {
		return 0, fmt.Errorf("producto %d sin plantilla", productID)
	}
	return id, nil
}
