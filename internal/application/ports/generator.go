package ports

import (
	"context"

	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

// UOMOption unidad de medida disponible en el ERP, ofrecida al generador para elegir.
type UOMOption struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// EntityGenerator define el puerto de salida hacia el generador de texto.
// Cualquier adaptador (Gemini, OpenAI, mock) debe implementar esta interfaz.
// Todas las operaciones pueden fallar o devolver resultados vacíos; los llamadores
// aplican un fallback determinista y nunca abortan el pipeline por ello, salvo
// FetchCreativeData, sin el cual no hay datos maestros.
type EntityGenerator interface {
	FetchCreativeData(ctx context.Context, criteria entity.Criteria, language string) (*entity.CreativeData, error)
	FetchNameSuggestions(ctx context.Context, criteria entity.Criteria, language string) (*entity.NameSuggestions, error)
	// FetchUOMAssignment devuelve el id elegido entre options, o 0 si no hay certeza.
	FetchUOMAssignment(ctx context.Context, productName string, options []UOMOption, language string) (int, error)
	FetchBOMComponentNames(ctx context.Context, industry, productName string, count int, language string) ([]string, error)
	FetchProjectStageNames(ctx context.Context, industry, projectName string, language string) ([]string, error)
	FetchRecruitingData(ctx context.Context, industry string, jobs, candidates int, language string) (*entity.RecruitingData, error)
	FetchJobSummary(ctx context.Context, industry, jobName, language string) (string, error)
}
