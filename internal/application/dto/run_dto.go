package dto

import (
	"time"

	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

// RunRequest entrada para lanzar una corrida de generación.
type RunRequest struct {
	Criteria entity.Criteria         `json:"criteria"`
	Modules  entity.ModuleSelections `json:"modules"`
	Toggles  entity.Toggles          `json:"toggles"`
}

// RunResponse salida de una corrida (también para el historial).
type RunResponse struct {
	ID         string               `json:"id"`
	Industry   string               `json:"industry"`
	Status     entity.RunStatus     `json:"status"`
	Result     entity.RunResult     `json:"result"`
	Modules    *entity.ModuleReport `json:"modules,omitempty"`
	Errors     []entity.ErrorRecord `json:"errors"`
	Failure    string               `json:"failure,omitempty"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt *time.Time           `json:"finished_at,omitempty"`
}

// RunListResponse página del historial.
type RunListResponse struct {
	Items []RunResponse `json:"items"`
	Page  PageResponse  `json:"page"`
}

// ModuleInfo módulo soportado por el orquestador.
type ModuleInfo struct {
	Name string `json:"name"`
	// Order posición en el pipeline (0 = primero).
	Order int `json:"order"`
}

// ToRunResponse convierte la entidad en su DTO.
func ToRunResponse(r *entity.Run) *RunResponse {
	errs := r.Errors
	if errs == nil {
		errs = []entity.ErrorRecord{}
	}
	return &RunResponse{
		ID:         r.ID,
		Industry:   r.Industry,
		Status:     r.Status,
		Result:     r.Result,
		Modules:    r.Modules,
		Errors:     errs,
		Failure:    r.Failure,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}
