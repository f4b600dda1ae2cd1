package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Códigos de módulo del ERP que entiende el orquestador.
const (
	ModuleCRM         = "crm"
	ModuleSale        = "sale"
	ModuleAccount     = "account"
	ModuleMRP         = "mrp"
	ModuleHR          = "hr"
	ModuleProject     = "project"
	ModuleTimesheet   = "hr_timesheet"
	ModuleRecruitment = "hr_recruitment"
)

// SupportedModules en el orden fijo del pipeline.
var SupportedModules = []string{
	ModuleMRP, ModuleCRM, ModuleSale, ModuleAccount,
	ModuleHR, ModuleProject, ModuleTimesheet, ModuleRecruitment,
}

// AccountConfig facturas creadas desde cero (sin ventas confirmadas) y facturas de proveedor.
type AccountConfig struct {
	Invoices    int `json:"invoices" validate:"gte=0,lte=500"`
	VendorBills int `json:"vendor_bills" validate:"gte=0,lte=500"`
}

// MRPConfig configuración de listas de materiales.
type MRPConfig struct {
	NumProducts       int `json:"num_products" validate:"gte=0,lte=100"`
	ComponentsPerBOM  int `json:"components_per_bom" validate:"gte=0,lte=50"`
	SubBOMsPerProduct int `json:"sub_boms_per_product" validate:"gte=0,lte=50"`
}

// Components número de líneas de la BOM principal: max(componentes, sub-BOMs, 1).
func (c MRPConfig) Components() int {
	return max(c.ComponentsPerBOM, c.SubBOMsPerProduct, 1)
}

// SubBOMs número de componentes que reciben BOM propia, nunca mayor que ComponentsPerBOM.
func (c MRPConfig) SubBOMs() int {
	return max(min(c.SubBOMsPerProduct, c.ComponentsPerBOM), 0)
}

// ProjectConfig proyectos y tareas por proyecto.
type ProjectConfig struct {
	Projects        int `json:"projects" validate:"gte=0,lte=100"`
	TasksPerProject int `json:"tasks_per_project" validate:"gte=0,lte=200"`
}

// RecruitmentConfig puestos y candidatos.
type RecruitmentConfig struct {
	Jobs       int `json:"jobs" validate:"gte=0,lte=100"`
	Candidates int `json:"candidates" validate:"gte=0,lte=1000"`
}

// ModuleSelections cantidades por módulo. Los módulos estructurados aceptan un número
// (atajo) o un objeto de configuración.
type ModuleSelections struct {
	CRM         int               `json:"crm" validate:"gte=0,lte=500"`
	Sale        int               `json:"sale" validate:"gte=0,lte=500"`
	Account     AccountConfig     `json:"account"`
	MRP         MRPConfig         `json:"mrp"`
	HR          int               `json:"hr" validate:"gte=0,lte=500"`
	Project     ProjectConfig     `json:"project"`
	Timesheet   int               `json:"hr_timesheet" validate:"gte=0,lte=1000"`
	Recruitment RecruitmentConfig `json:"hr_recruitment"`
}

// UnmarshalJSON acepta {"mrp": 2} como {"mrp": {"num_products": 2}} y equivalentes.
func (m *ModuleSelections) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, val := range raw {
		var err error
		switch key {
		case ModuleCRM:
			err = json.Unmarshal(val, &m.CRM)
		case ModuleSale:
			err = json.Unmarshal(val, &m.Sale)
		case ModuleHR:
			err = json.Unmarshal(val, &m.HR)
		case ModuleTimesheet:
			err = json.Unmarshal(val, &m.Timesheet)
		case ModuleAccount:
			err = countOrObject(val, &m.Account.Invoices, &m.Account)
		case ModuleMRP:
			err = countOrObject(val, &m.MRP.NumProducts, &m.MRP)
		case ModuleProject:
			err = countOrObject(val, &m.Project.Projects, &m.Project)
		case ModuleRecruitment:
			err = countOrObject(val, &m.Recruitment.Jobs, &m.Recruitment)
		default:
			// módulos desconocidos se ignoran
		}
		if err != nil {
			return fmt.Errorf("módulo %q: %w", key, err)
		}
	}
	return nil
}

func countOrObject(val json.RawMessage, count *int, obj any) error {
	trimmed := bytes.TrimSpace(val)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '{' {
		return json.Unmarshal(trimmed, obj)
	}
	return json.Unmarshal(trimmed, count)
}

// Requested indica si el módulo tiene una cantidad mayor que cero.
func (m ModuleSelections) Requested(module string) bool {
	switch module {
	case ModuleCRM:
		return m.CRM > 0
	case ModuleSale:
		return m.Sale > 0
	case ModuleAccount:
		return m.Account.Invoices > 0 || m.Account.VendorBills > 0
	case ModuleMRP:
		return m.MRP.NumProducts > 0
	case ModuleHR:
		return m.HR > 0
	case ModuleProject:
		return m.Project.Projects > 0
	case ModuleTimesheet:
		return m.Timesheet > 0
	case ModuleRecruitment:
		return m.Recruitment.Jobs > 0
	}
	return false
}

// Toggles interruptores globales de la corrida.
type Toggles struct {
	UseTracking            bool `json:"use_tracking"`
	LotEnabled             bool `json:"lot_enabled"`
	SerialEnabled          bool `json:"serial_enabled"`
	CreateBankTransactions bool `json:"create_bank_transactions"`
	CreateActivities       bool `json:"create_activities"`
}

// Tracking extrae las opciones de trazabilidad.
func (t Toggles) Tracking() TrackingOptions {
	return TrackingOptions{UseTracking: t.UseTracking, LotEnabled: t.LotEnabled, SerialEnabled: t.SerialEnabled}
}
