package entity

// CompanyScenario es una empresa sugerida por el generador con sus subcontactos.
// Cualquier campo puede faltar o venir en null.
type CompanyScenario struct {
	CompanyData Values   `json:"company_data"`
	Contacts    []Values `json:"contacts"`
}

// HasContacts indica si el escenario trae al menos un subcontacto no vacío.
func (s CompanyScenario) HasContacts() bool {
	for _, c := range s.Contacts {
		if len(c) > 0 {
			return true
		}
	}
	return false
}

// ProductBuckets agrupa los candidatos de producto por tipo.
type ProductBuckets struct {
	Services    []Values `json:"services"`
	Consumables []Values `json:"consumables"`
	Storables   []Values `json:"storables"`
}

// For devuelve los candidatos de un bucket.
func (p ProductBuckets) For(b Bucket) []Values {
	switch b {
	case BucketService:
		return p.Services
	case BucketConsumable:
		return p.Consumables
	case BucketStorable:
		return p.Storables
	}
	return nil
}

// CreativeData es la salida del generador para datos maestros. No es confiable.
type CreativeData struct {
	Companies []CompanyScenario `json:"companies"`
	Products  ProductBuckets    `json:"products"`
}

// NameSuggestions son los nombres sugeridos para las etapas del orquestador.
type NameSuggestions struct {
	Employees     []string `json:"employees"`
	Projects      []string `json:"projects"`
	Opportunities []string `json:"opportunities"`
	Tasks         []string `json:"tasks"`
	Manufactured  []string `json:"manufactured"`
	Departments   []string `json:"departments"`
}

// SkillTypeSuggestion es un tipo de habilidad con sus habilidades y niveles.
type SkillTypeSuggestion struct {
	Name   string            `json:"name"`
	Skills []string          `json:"skills"`
	Levels []LevelSuggestion `json:"levels"`
}

// LevelSuggestion nivel de habilidad con su progreso (0-100).
type LevelSuggestion struct {
	Name     string `json:"name"`
	Progress int    `json:"level_progress"`
}

// RecruitingData es la salida del generador para reclutamiento.
type RecruitingData struct {
	Jobs       []string              `json:"jobs"`
	Candidates []string              `json:"candidates"`
	SkillTypes []SkillTypeSuggestion `json:"skill_types"`
}
