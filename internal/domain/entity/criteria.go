package entity

// Mode define si la corrida crea solo datos maestros o también movimientos (pedidos).
type Mode string

const (
	ModeMasterOnly     Mode = "master_only"
	ModeMasterAndMoves Mode = "master_and_moves"
)

// Criteria son los parámetros de dimensionamiento de una corrida. Inmutables durante la ejecución.
type Criteria struct {
	Industry            string `json:"industry" validate:"required"`
	Mode                Mode   `json:"mode" validate:"required,oneof=master_only master_and_moves"`
	NumCompanies        int    `json:"num_companies" validate:"gte=0,lte=200"`
	NumDeliveryContacts int    `json:"num_delivery_contacts" validate:"gte=0,lte=20"`
	NumInvoiceContacts  int    `json:"num_invoice_contacts" validate:"gte=0,lte=20"`
	NumOtherContacts    int    `json:"num_other_contacts" validate:"gte=0,lte=20"`
	NumServices         int    `json:"num_services" validate:"gte=0,lte=500"`
	NumConsumables      int    `json:"num_consumables" validate:"gte=0,lte=500"`
	NumStorables        int    `json:"num_storables" validate:"gte=0,lte=500"`
}

// IncludesMoves indica si la corrida debe crear pedidos borrador base.
func (c Criteria) IncludesMoves() bool {
	return c.Mode == ModeMasterAndMoves
}
