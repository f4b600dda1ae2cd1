package entity

// Bucket clasifica los productos del catálogo maestro.
type Bucket string

const (
	BucketService    Bucket = "service"
	BucketConsumable Bucket = "consumable"
	BucketStorable   Bucket = "storable"
)

// Buckets en el orden en que se crean.
var Buckets = []Bucket{BucketService, BucketConsumable, BucketStorable}

// Tracking política de trazabilidad de inventario de un producto.
type Tracking string

const (
	TrackingNone   Tracking = "none"
	TrackingLot    Tracking = "lot"
	TrackingSerial Tracking = "serial"
)

// TrackedProduct par (tipo, id) de un producto con trazabilidad creado en la corrida.
type TrackedProduct struct {
	Kind Tracking `json:"kind"`
	ID   int      `json:"id"`
}

// TrackingOptions interruptores de trazabilidad de la corrida.
type TrackingOptions struct {
	UseTracking   bool
	LotEnabled    bool
	SerialEnabled bool
}

// Wants indica si la corrida pide productos con el tipo de trazabilidad dado.
func (o TrackingOptions) Wants(kind Tracking) bool {
	if !o.UseTracking {
		return false
	}
	switch kind {
	case TrackingSerial:
		return o.SerialEnabled
	case TrackingLot:
		return o.LotEnabled
	}
	return false
}
