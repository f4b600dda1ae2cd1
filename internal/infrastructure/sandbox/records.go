package sandbox

import (
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/demo-data-assistant/internal/application/ports"
	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

// x2manyOp comando x2many ya interpretado.
type x2manyOp struct {
	code int
	id   int
	ids  []int
	vals map[string]any
}

func (s *Store) create(ctx context.Context, model string, values entity.Values) (int, error) {
	data, ops, err := s.prepare(ctx, model, values)
	if err != nil {
		return 0, err
	}
	applyDefaults(model, data)
	if err := checkRequired(model, data, ""); err != nil {
		return 0, err
	}
	if err := s.checkChildren(ctx, model, ops); err != nil {
		return 0, err
	}
	if err := s.beforeInsert(ctx, model, data); err != nil {
		return 0, err
	}

	id, err := s.records.insert(ctx, model, data)
	if err != nil {
		return 0, err
	}
	if afterInsert(model, id, data) || len(ops) > 0 || needsCompute(model) {
		if err := s.applyOps(ctx, model, id, data, ops); err != nil {
			return 0, err
		}
	}
	return id, nil
}

func (s *Store) write(ctx context.Context, model string, ids []int, values entity.Values) error {
	if len(ids) == 0 {
		return invalid("write sin ids en %s", model)
	}
	rows := make([]row, 0, len(ids))
	for _, id := range ids {
		r, err := s.records.get(ctx, model, id)
		if err != nil {
			return err
		}
		if r == nil {
			return missing("%s,%d no existe o fue eliminado", model, id)
		}
		rows = append(rows, r)
	}
	data, ops, err := s.prepare(ctx, model, values)
	if err != nil {
		return err
	}
	if err := s.checkChildren(ctx, model, ops); err != nil {
		return err
	}
	for i, r := range rows {
		for k, v := range data {
			r[k] = v
		}
		if err := s.applyOps(ctx, model, ids[i], r, ops); err != nil {
			return err
		}
	}
	return nil
}

// prepare normaliza valores, rechaza campos no admitidos, separa comandos x2many
// y valida que los many2one apunten a registros existentes.
func (s *Store) prepare(ctx context.Context, model string, values entity.Values) (row, map[string][]x2manyOp, error) {
	for _, f := range rejectedFields[model] {
		if _, ok := values[f]; ok {
			return nil, nil, invalid("campo inválido %q en el modelo %s", f, model)
		}
	}
	data := row{}
	ops := map[string][]x2manyOp{}
	for k, v := range values {
		if k == "id" {
			continue
		}
		nv, err := normalize(v)
		if err != nil {
			return nil, nil, invalid("valor de %s.%s no serializable: %v", model, k, err)
		}
		if isX2Many(model, k) {
			parsed, err := parseCommands(nv)
			if err != nil {
				return nil, nil, invalid("%s.%s: %v", model, k, err)
			}
			ops[k] = parsed
			continue
		}
		data[k] = nv
	}
	if err := s.checkRefs(ctx, model, data); err != nil {
		return nil, nil, err
	}
	return data, ops, nil
}

func isX2Many(model, field string) bool {
	if _, ok := oneToMany[model][field]; ok {
		return true
	}
	_, ok := manyToMany[model][field]
	return ok
}

func (s *Store) checkRefs(ctx context.Context, model string, data row) error {
	for field, v := range data {
		target := targetOf(model, field)
		if target == "" || isEmpty(v) {
			continue
		}
		id, ok := ports.AsID(v)
		if !ok {
			return invalid("%s.%s: referencia inválida %v", model, field, v)
		}
		r, err := s.records.get(ctx, target, id)
		if err != nil {
			return err
		}
		if r == nil {
			return invalid("%s.%s: el registro %s,%d no existe", model, field, target, id)
		}
		data[field] = float64(id)
	}
	return nil
}

func checkRequired(model string, data row, skip string) error {
	for _, f := range requiredFields[model] {
		if f == skip {
			continue
		}
		v, ok := data[f]
		if !ok || isEmpty(v) {
			return invalid("falta el campo obligatorio %q en %s", f, model)
		}
		if str, isStr := v.(string); isStr && str == "" {
			return invalid("falta el campo obligatorio %q en %s", f, model)
		}
	}
	return nil
}

// checkChildren valida los valores de los comandos (0,0,vals) antes de insertar al padre.
func (s *Store) checkChildren(ctx context.Context, model string, ops map[string][]x2manyOp) error {
	for field, list := range ops {
		rel, isO2M := oneToMany[model][field]
		for _, op := range list {
			switch op.code {
			case 0:
				if !isO2M {
					return invalid("%s.%s no admite creación de registros", model, field)
				}
				child, _, err := s.prepare(ctx, rel.child, entity.Values(op.vals))
				if err != nil {
					return err
				}
				applyDefaults(rel.child, child)
				if err := checkRequired(rel.child, child, rel.inverse); err != nil {
					return err
				}
			case 4, 6:
				target := manyToMany[model][field]
				if isO2M {
					target = rel.child
				}
				ids := op.ids
				if op.code == 4 {
					ids = []int{op.id}
				}
				for _, id := range ids {
					r, err := s.records.get(ctx, target, id)
					if err != nil {
						return err
					}
					if r == nil {
						return invalid("%s.%s: el registro %s,%d no existe", model, field, target, id)
					}
				}
			}
		}
	}
	return nil
}

// applyOps ejecuta los comandos x2many sobre el registro id, recalcula totales y lo guarda.
func (s *Store) applyOps(ctx context.Context, model string, id int, data row, ops map[string][]x2manyOp) error {
	for field, list := range ops {
		current := idsOf(data[field])
		rel, isO2M := oneToMany[model][field]
		for _, op := range list {
			switch op.code {
			case 0:
				vals := entity.Values(op.vals).Clone()
				vals[rel.inverse] = id
				childID, err := s.create(ctx, rel.child, vals)
				if err != nil {
					return err
				}
				current = append(current, childID)
			case 4:
				if !slices.Contains(current, op.id) {
					current = append(current, op.id)
				}
				if isO2M {
					if err := s.setField(ctx, rel.child, op.id, rel.inverse, id); err != nil {
						return err
					}
				}
			case 5:
				current = nil
			case 6:
				current = slices.Clone(op.ids)
			}
		}
		data[field] = intsToAny(current)
	}
	s.computeTotals(ctx, model, data)
	return s.records.update(ctx, model, id, data)
}

func (s *Store) setField(ctx context.Context, model string, id int, field string, value any) error {
	r, err := s.records.get(ctx, model, id)
	if err != nil {
		return err
	}
	if r == nil {
		return missing("%s,%d no existe", model, id)
	}
	nv, err := normalize(value)
	if err != nil {
		return err
	}
	r[field] = nv
	return s.records.update(ctx, model, id, r)
}

func (s *Store) searchRead(ctx context.Context, model string, dom ports.Domain, fields []string, limit int) ([]ports.Record, error) {
	conds, err := compileDomain(dom)
	if err != nil {
		return nil, invalid("dominio inválido en %s: %v", model, err)
	}
	rows, err := s.records.all(ctx, model)
	if err != nil {
		return nil, err
	}
	labels := map[string]string{}
	out := []ports.Record{}
	for _, r := range rows {
		if !matchAll(r, conds) {
			continue
		}
		rec, err := s.project(ctx, model, r, fields, labels)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// project copia los campos pedidos; los many2one salen como [id, nombre] y los vacíos como false.
func (s *Store) project(ctx context.Context, model string, r row, fields []string, labels map[string]string) (ports.Record, error) {
	if len(fields) == 0 {
		for k := range r {
			fields = append(fields, k)
		}
	}
	rec := ports.Record{"id": r["id"]}
	for _, f := range fields {
		v, ok := r[f]
		if !ok || v == nil {
			rec[f] = false
			continue
		}
		target := targetOf(model, f)
		if target == "" || isEmpty(v) {
			rec[f] = v
			continue
		}
		id, _ := ports.AsID(v)
		key := fmt.Sprintf("%s,%d", target, id)
		label, cached := labels[key]
		if !cached {
			ref, err := s.records.get(ctx, target, id)
			if err != nil {
				return nil, err
			}
			label = displayName(target, id, ref)
			labels[key] = label
		}
		rec[f] = []any{float64(id), label}
	}
	return rec, nil
}

func displayName(model string, id int, r row) string {
	if r != nil {
		if n, ok := r["name"].(string); ok && n != "" {
			return n
		}
	}
	return fmt.Sprintf("%s,%d", model, id)
}

// parseCommands interpreta (0,0,vals), (4,id), (5), (6,0,ids) o una lista simple de ids.
func parseCommands(v any) ([]x2manyOp, error) {
	list, ok := v.([]any)
	if !ok {
		if isEmpty(v) {
			return []x2manyOp{{code: 5}}, nil
		}
		return nil, fmt.Errorf("se esperaba una lista de comandos")
	}
	var plain []int
	var ops []x2manyOp
	for _, item := range list {
		cmd, isCmd := item.([]any)
		if !isCmd {
			id, ok := ports.AsID(item)
			if !ok {
				return nil, fmt.Errorf("id inválido %v", item)
			}
			plain = append(plain, id)
			continue
		}
		if len(cmd) == 0 {
			return nil, fmt.Errorf("comando vacío")
		}
		code, ok := cmd[0].(float64)
		if !ok {
			return nil, fmt.Errorf("código de comando inválido %v", cmd[0])
		}
		switch int(code) {
		case 0:
			if len(cmd) != 3 {
				return nil, fmt.Errorf("comando 0 requiere 3 elementos")
			}
			vals, ok := cmd[2].(map[string]any)
			if !ok {
				return nil, fmt.Errorf("comando 0 sin valores")
			}
			ops = append(ops, x2manyOp{code: 0, vals: vals})
		case 4:
			if len(cmd) < 2 {
				return nil, fmt.Errorf("comando 4 sin id")
			}
			id, ok := ports.AsID(cmd[1])
			if !ok {
				return nil, fmt.Errorf("comando 4 con id inválido")
			}
			ops = append(ops, x2manyOp{code: 4, id: id})
		case 5:
			ops = append(ops, x2manyOp{code: 5})
		case 6:
			if len(cmd) != 3 {
				return nil, fmt.Errorf("comando 6 requiere 3 elementos")
			}
			ops = append(ops, x2manyOp{code: 6, ids: idsOf(cmd[2])})
		default:
			return nil, fmt.Errorf("comando x2many %d no soportado", int(code))
		}
	}
	if plain != nil {
		ops = append(ops, x2manyOp{code: 6, ids: plain})
	}
	return ops, nil
}

func idsOf(v any) []int {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(list))
	for _, item := range list {
		if id, ok := ports.AsID(item); ok {
			out = append(out, id)
		}
	}
	return out
}

func intsToAny(ids []int) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = float64(id)
	}
	return out
}

func needsCompute(model string) bool {
	return model == "sale.order" || model == "account.move"
}

// computeTotals recalcula amount_total de pedidos y facturas a partir de sus líneas.
func (s *Store) computeTotals(ctx context.Context, model string, data row) {
	var field, qtyField string
	switch model {
	case "sale.order":
		field, qtyField = "order_line", "product_uom_qty"
	case "account.move":
		field, qtyField = "invoice_line_ids", "quantity"
	default:
		return
	}
	line := oneToMany[model][field].child
	total := decimal.Zero
	for _, id := range idsOf(data[field]) {
		r, err := s.records.get(ctx, line, id)
		if err != nil || r == nil {
			continue
		}
		qty, _ := r[qtyField].(float64)
		price, _ := r["price_unit"].(float64)
		total = total.Add(decimal.NewFromFloat(qty).Mul(decimal.NewFromFloat(price)))
	}
	data["amount_total"] = total.Round(2).InexactFloat64()
}
