package sandbox

// one2many campo x2many cuyos comandos (0,0,vals) crean registros hijos.
type one2many struct {
	child   string // modelo hijo
	inverse string // campo many2one del hijo hacia el padre
}

// oneToMany campos one2many por modelo.
var oneToMany = map[string]map[string]one2many{
	"sale.order":    {"order_line": {"sale.order.line", "order_id"}},
	"account.move":  {"invoice_line_ids": {"account.move.line", "move_id"}},
	"mrp.bom":       {"bom_line_ids": {"mrp.bom.line", "bom_id"}},
	"hr.job":        {"job_skill_ids": {"hr.job.skill", "job_id"}},
	"hr.applicant":  {"applicant_skill_ids": {"hr.applicant.skill", "applicant_id"}},
	"hr.skill.type": {"skill_ids": {"hr.skill", "skill_type_id"}, "skill_level_ids": {"hr.skill.level", "skill_type_id"}},
	"account.bank.statement": {
		"line_ids": {"account.bank.statement.line", "statement_id"},
	},
}

// manyToMany campos que solo guardan listas de ids de otro modelo.
var manyToMany = map[string]map[string]string{
	"project.task.type": {"project_ids": "project.project"},
	"project.task":      {"tag_ids": "project.tags"},
	"hr.employee":       {"category_ids": "hr.employee.category"},
}

// manyToOne destino de los campos many2one. Las entradas por modelo tienen prioridad.
var manyToOne = map[string]string{
	"partner_id":       "res.partner",
	"parent_id":        "", // mismo modelo
	"product_id":       "product.product",
	"product_tmpl_id":  "product.template",
	"categ_id":         "product.category",
	"uom_id":           "uom.uom",
	"country_id":       "res.country",
	"opportunity_id":   "crm.lead",
	"journal_id":       "account.journal",
	"department_id":    "hr.department",
	"job_id":           "hr.job",
	"skill_id":         "hr.skill",
	"skill_level_id":   "hr.skill.level",
	"skill_type_id":    "hr.skill.type",
	"project_id":       "project.project",
	"task_id":          "project.task",
	"employee_id":      "hr.employee",
	"activity_type_id": "mail.activity.type",
	"res_model_id":     "ir.model",
	"order_id":         "sale.order",
	"move_id":          "account.move",
	"statement_id":     "account.bank.statement",
	"bom_id":           "mrp.bom",
	"user_id":          "res.users",
}

var manyToOneByModel = map[string]map[string]string{
	"crm.lead":     {"stage_id": "crm.stage"},
	"hr.applicant": {"stage_id": "hr.recruitment.stage"},
	"project.task": {"stage_id": "project.task.type"},
}

// targetOf devuelve el modelo destino de un many2one o "" si el campo no es relacional.
func targetOf(model, field string) string {
	if m, ok := manyToOneByModel[model]; ok {
		if t, ok := m[field]; ok {
			return t
		}
	}
	t, ok := manyToOne[field]
	if !ok {
		return ""
	}
	if t == "" {
		return model
	}
	return t
}

// requiredFields campos obligatorios por modelo; su ausencia produce un error de validación.
var requiredFields = map[string][]string{
	"res.partner":                 {"name"},
	"product.product":             {"name"},
	"product.template":            {"name"},
	"product.category":            {"name"},
	"sale.order":                  {"partner_id"},
	"sale.order.line":             {"order_id", "product_id"},
	"crm.lead":                    {"name"},
	"account.move":                {"move_type"},
	"account.move.line":           {"move_id"},
	"mrp.bom":                     {"product_tmpl_id"},
	"mrp.bom.line":                {"bom_id", "product_id"},
	"account.journal":             {"name", "type", "code"},
	"account.bank.statement":      {"journal_id"},
	"account.bank.statement.line": {"journal_id", "payment_ref", "amount"},
	"hr.department":               {"name"},
	"hr.job":                      {"name"},
	"hr.applicant":                {"partner_name", "job_id"},
	"hr.skill.type":               {"name"},
	"hr.skill":                    {"name", "skill_type_id"},
	"hr.skill.level":              {"name", "skill_type_id"},
	"hr.job.skill":                {"job_id", "skill_id", "skill_level_id", "skill_type_id"},
	"hr.applicant.skill":          {"applicant_id", "skill_id", "skill_level_id", "skill_type_id"},
	"hr.employee":                 {"name"},
	"project.project":             {"name"},
	"project.task":                {"name", "project_id"},
	"project.task.type":           {"name"},
	"account.analytic.line":       {"name", "project_id", "employee_id", "unit_amount"},
	"mail.activity":               {"res_model_id", "res_id", "activity_type_id", "date_deadline"},
}

// rejectedFields campos que el ERP no acepta en create/write.
var rejectedFields = map[string][]string{
	"product.product":  {"uom", "uom_name", "detailed_type", "vat_id"},
	"product.template": {"uom", "uom_name", "detailed_type", "vat_id"},
	"res.partner":      {"vat_id", "country_code"},
}
