package sandbox

import (
	"context"

	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

// Options configuración del ERP simulado.
type Options struct {
	InstalledModules []string // vacío = todos los módulos soportados
	CompanyName      string
	CompanyLang      string // código del ERP, p. ej. de_DE
}

func (o Options) withDefaults() Options {
	if len(o.InstalledModules) == 0 {
		o.InstalledModules = append([]string{"base", "contacts", "product"}, entity.SupportedModules...)
	}
	if o.CompanyName == "" {
		o.CompanyName = "Demo GmbH"
	}
	if o.CompanyLang == "" {
		o.CompanyLang = "de_DE"
	}
	return o
}

// seed inserta los datos de referencia una sola vez (base vacía).
func (s *Store) seed(ctx context.Context, o Options) error {
	n, err := s.records.count(ctx, "res.company")
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	add := func(model string, rows ...row) error {
		for _, r := range rows {
			if _, err := s.records.insert(ctx, model, r); err != nil {
				return err
			}
		}
		return nil
	}

	for _, c := range []struct{ code, name string }{
		{"DE", "Germany"}, {"AT", "Austria"}, {"CH", "Switzerland"}, {"FR", "France"},
		{"NL", "Netherlands"}, {"ES", "Spain"}, {"CO", "Colombia"}, {"US", "United States"},
	} {
		if err := add("res.country", row{"code": c.code, "name": c.name}); err != nil {
			return err
		}
	}

	partnerID, err := s.records.insert(ctx, "res.partner", row{
		"name": o.CompanyName, "company_type": "company", "is_company": true, "lang": o.CompanyLang, "active": true,
	})
	if err != nil {
		return err
	}
	if err := add("res.company", row{"name": o.CompanyName, "partner_id": float64(partnerID)}); err != nil {
		return err
	}
	if err := add("res.users", row{"name": "Administrator", "login": "admin", "partner_id": float64(partnerID)}); err != nil {
		return err
	}

	if err := add("uom.uom",
		row{"name": "Units"}, row{"name": "Dozens"}, row{"name": "kg"},
		row{"name": "Hours"}, row{"name": "m"}, row{"name": "L"},
	); err != nil {
		return err
	}
	if err := add("product.category", row{"name": "All"}); err != nil {
		return err
	}

	if err := add("crm.stage",
		row{"name": "New", "sequence": 1.0}, row{"name": "Qualified", "sequence": 2.0},
		row{"name": "Proposition", "sequence": 3.0}, row{"name": "Won", "sequence": 70.0, "is_won": true},
	); err != nil {
		return err
	}
	if err := add("hr.recruitment.stage",
		row{"name": "New"}, row{"name": "Initial Qualification"},
		row{"name": "First Interview"}, row{"name": "Contract Proposal"},
	); err != nil {
		return err
	}
	if err := add("mail.activity.type",
		row{"name": "Email"}, row{"name": "Call"}, row{"name": "Meeting"}, row{"name": "To-Do"},
	); err != nil {
		return err
	}
	for _, m := range []string{"crm.lead", "hr.applicant", "project.task", "res.partner", "sale.order"} {
		if err := add("ir.model", row{"model": m, "name": m}); err != nil {
			return err
		}
	}
	for _, m := range o.InstalledModules {
		if err := add("ir.module.module", row{"name": m, "state": "installed"}); err != nil {
			return err
		}
	}
	return nil
}
