package masterdata

import "github.com/jhoicas/demo-data-assistant/internal/domain/entity"

// trackingAssigner reparte la trazabilidad entre los productos almacenables con nombre:
// el candidato en SerialSlot recibe serial y el de LotSlot recibe lot; el resto none.
// Un tipo solo cuenta como asignado cuando el producto se creó.
type trackingAssigner struct {
	opts       entity.TrackingOptions
	serialSlot int
	lotSlot    int
	seen       int
	created    map[entity.Tracking]bool
}

func newTrackingAssigner(opts entity.TrackingOptions, serialSlot, lotSlot int) *trackingAssigner {
	return &trackingAssigner{opts: opts, serialSlot: serialSlot, lotSlot: lotSlot, created: map[entity.Tracking]bool{}}
}

// next devuelve la trazabilidad del siguiente almacenable.
func (a *trackingAssigner) next() entity.Tracking {
	slot := a.seen
	a.seen++
	switch {
	case slot == a.serialSlot && a.opts.Wants(entity.TrackingSerial):
		return entity.TrackingSerial
	case slot == a.lotSlot && a.opts.Wants(entity.TrackingLot):
		return entity.TrackingLot
	}
	return entity.TrackingNone
}

func (a *trackingAssigner) markCreated(kind entity.Tracking) {
	if kind != entity.TrackingNone {
		a.created[kind] = true
	}
}

// missing tipos pedidos que ningún candidato llegó a crear.
func (a *trackingAssigner) missing() []entity.Tracking {
	var out []entity.Tracking
	for _, kind := range []entity.Tracking{entity.TrackingSerial, entity.TrackingLot} {
		if a.opts.Wants(kind) && !a.created[kind] {
			out = append(out, kind)
		}
	}
	return out
}
