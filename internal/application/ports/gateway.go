package ports

import (
	"context"

	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

// ObjectGateway define el puerto de salida hacia el almacén de objetos del ERP.
// Lo implementan el cliente de red (odoo) y el adaptador en proceso (sandbox).
// Ninguna implementación reintenta más allá del único reintento de autenticación.
type ObjectGateway interface {
	// Create crea un registro y devuelve su id.
	Create(ctx context.Context, model string, values entity.Values) (int, error)
	// Write actualiza los registros ids con values.
	Write(ctx context.Context, model string, ids []int, values entity.Values) (bool, error)
	// SearchRead lee registros. limit=0 significa sin límite.
	SearchRead(ctx context.Context, model string, domain Domain, fields []string, limit int) ([]Record, error)
	// CallMethod invoca un método remoto sobre ids (o a nivel de clase si ids está vacío).
	CallMethod(ctx context.Context, model, method string, ids []int, args []any, kwargs map[string]any) (any, error)
	// Errors devuelve los fallos acumulados durante la vida del gateway. Nunca falla.
	Errors() []entity.ErrorRecord
}

// GatewayFactory abre una sesión de gateway nueva (acumulador de errores propio) por corrida.
type GatewayFactory func() ObjectGateway
