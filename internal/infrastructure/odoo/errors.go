package odoo

import (
	"fmt"
	"net/http"

	"github.com/jhoicas/demo-data-assistant/internal/domain"
)

// RemoteError respuesta HTTP no exitosa del ERP para un intento concreto.
type RemoteError struct {
	Convention string
	URL        string
	StatusCode int
	Body       string
	Cause      error // fallo de red tras el reintento; StatusCode queda en 0
}

func (e *RemoteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v en %s", e.Convention, e.Cause, e.URL)
	}
	return fmt.Sprintf("%s: HTTP %d en %s", e.Convention, e.StatusCode, e.URL)
}

// Unwrap permite errors.Is(err, domain.ErrRemoteWrite).
func (e *RemoteError) Unwrap() error { return domain.ErrRemoteWrite }

// shapeMismatch indica que el servidor no reconoce la forma del endpoint/payload;
// en ese caso se prueba la siguiente convención.
func (e *RemoteError) shapeMismatch() bool {
	switch e.StatusCode {
	case http.StatusNotFound, http.StatusMethodNotAllowed, http.StatusUnprocessableEntity:
		return true
	}
	return false
}

// routeMissing el servidor no encontró la ruta; vale la pena probar la variante con barra final.
func (e *RemoteError) routeMissing() bool {
	return e.StatusCode == http.StatusNotFound || e.StatusCode == http.StatusMethodNotAllowed
}
