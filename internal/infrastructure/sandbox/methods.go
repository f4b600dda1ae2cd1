package sandbox

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/demo-data-assistant/internal/application/ports"
	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

// applyDefaults valores por defecto del ERP para los modelos simulados.
func applyDefaults(model string, data row) {
	setDefault := func(k string, v any) {
		if _, ok := data[k]; !ok {
			data[k] = v
		}
	}
	switch model {
	case "res.partner":
		setDefault("active", true)
		setDefault("company_type", "person")
		data["is_company"] = data["company_type"] == "company"
	case "product.product", "product.template":
		setDefault("type", "consu")
		setDefault("sale_ok", true)
		setDefault("purchase_ok", true)
		setDefault("is_storable", false)
		setDefault("tracking", string(entity.TrackingNone))
		setDefault("list_price", 1.0)
		setDefault("standard_price", 0.0)
		setDefault("active", true)
	case "sale.order":
		setDefault("state", "draft")
	case "sale.order.line":
		setDefault("product_uom_qty", 1.0)
	case "account.move":
		setDefault("move_type", "entry")
		setDefault("state", "draft")
	case "account.move.line":
		setDefault("quantity", 1.0)
	case "crm.lead":
		setDefault("type", "lead")
	case "mrp.bom":
		setDefault("product_qty", 1.0)
		setDefault("type", "normal")
	case "mrp.bom.line":
		setDefault("product_qty", 1.0)
	case "mail.activity":
		setDefault("state", "planned")
	}
}

// beforeInsert comportamiento del servidor previo a la inserción.
func (s *Store) beforeInsert(ctx context.Context, model string, data row) error {
	switch model {
	case "product.product":
		// Cada variante nueva crea su plantilla.
		if _, ok := ports.AsID(data["product_tmpl_id"]); ok {
			return nil
		}
		tmpl := row{}
		for k, v := range data {
			tmpl[k] = v
		}
		tmplID, err := s.records.insert(ctx, "product.template", tmpl)
		if err != nil {
			return err
		}
		data["product_tmpl_id"] = float64(tmplID)
	case "sale.order.line", "account.move.line":
		if _, ok := data["price_unit"]; ok {
			return nil
		}
		pid, ok := ports.AsID(data["product_id"])
		if !ok {
			return nil
		}
		p, err := s.records.get(ctx, "product.product", pid)
		if err != nil {
			return err
		}
		if p != nil {
			data["price_unit"] = p["list_price"]
		}
	case "mail.activity":
		return s.checkActivityTarget(ctx, data)
	case "crm.lead":
		if _, ok := data["stage_id"]; ok {
			return nil
		}
		stages, err := s.records.all(ctx, "crm.stage")
		if err != nil {
			return err
		}
		if len(stages) > 0 {
			data["stage_id"] = stages[0]["id"]
		}
	}
	return nil
}

// afterInsert completa campos que dependen del id asignado. Devuelve true si cambió data.
func afterInsert(model string, id int, data row) bool {
	if model != "sale.order" {
		return false
	}
	if n, _ := data["name"].(string); n != "" {
		return false
	}
	data["name"] = fmt.Sprintf("S%05d", id)
	return true
}

// checkActivityTarget exige que res_id exista en el modelo indicado por res_model_id.
func (s *Store) checkActivityTarget(ctx context.Context, data row) error {
	modelID, _ := ports.AsID(data["res_model_id"])
	m, err := s.records.get(ctx, "ir.model", modelID)
	if err != nil {
		return err
	}
	if m == nil {
		return invalid("mail.activity: ir.model,%d no existe", modelID)
	}
	target, _ := m["model"].(string)
	resID, ok := ports.AsID(data["res_id"])
	if !ok {
		return invalid("mail.activity: res_id inválido %v", data["res_id"])
	}
	r, err := s.records.get(ctx, target, resID)
	if err != nil {
		return err
	}
	if r == nil {
		return invalid("mail.activity: el registro %s,%d no existe", target, resID)
	}
	data["res_model"] = target
	return nil
}

// call despacha los métodos de negocio simulados. Los lotes son todo o nada.
func (s *Store) call(ctx context.Context, model, method string, ids []int) (any, error) {
	switch {
	case model == "sale.order" && method == "action_confirm":
		return s.batch(ctx, model, ids, func(r row) error {
			if st, _ := r["state"].(string); st != "draft" && st != "sent" {
				return invalid("el pedido %v no está en borrador (estado %s)", r["name"], st)
			}
			if len(idsOf(r["order_line"])) == 0 {
				return invalid("el pedido %v no tiene líneas", r["name"])
			}
			r["state"] = "sale"
			return nil
		})
	case model == "account.move" && method == "action_post":
		return s.batch(ctx, model, ids, func(r row) error {
			if st, _ := r["state"].(string); st != "draft" {
				return invalid("solo se pueden publicar asientos en borrador")
			}
			if len(idsOf(r["invoice_line_ids"])) == 0 {
				return invalid("no se puede publicar una factura sin líneas")
			}
			moveType, _ := r["move_type"].(string)
			if moveType != "entry" && isEmpty(r["partner_id"]) {
				return invalid("la factura requiere un partner")
			}
			r["state"] = "posted"
			id, _ := ports.AsID(r["id"])
			r["name"] = moveName(moveType, id)
			return nil
		})
	}
	return nil, missing("el método %s.%s no existe", model, method)
}

func (s *Store) batch(ctx context.Context, model string, ids []int, apply func(row) error) (any, error) {
	if len(ids) == 0 {
		return nil, invalid("%s: llamada sin ids", model)
	}
	rows := make([]row, 0, len(ids))
	for _, id := range ids {
		r, err := s.records.get(ctx, model, id)
		if err != nil {
			return nil, err
		}
		if r == nil {
			return nil, missing("%s,%d no existe", model, id)
		}
		if err := apply(r); err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	for i, r := range rows {
		s.computeTotals(ctx, model, r)
		if err := s.records.update(ctx, model, ids[i], r); err != nil {
			return nil, err
		}
	}
	return true, nil
}

func moveName(moveType string, id int) string {
	prefix := "MISC"
	switch moveType {
	case "out_invoice":
		prefix = "INV"
	case "in_invoice":
		prefix = "BILL"
	}
	return fmt.Sprintf("%s/%d/%05d", prefix, time.Now().Year(), id)
}
