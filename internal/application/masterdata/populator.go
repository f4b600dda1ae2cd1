package masterdata

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/demo-data-assistant/internal/application/enrichment"
	"github.com/jhoicas/demo-data-assistant/internal/application/ports"
	"github.com/jhoicas/demo-data-assistant/internal/domain"
	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

// Options parámetros del populador.
type Options struct {
	Tracking   entity.TrackingOptions
	SerialSlot int    // índice del almacenable que recibe serial
	LotSlot    int    // índice del almacenable que recibe lot
	Language   string // idioma de los prompts
}

// DefaultOptions serial para el primer almacenable y lot para el segundo.
func DefaultOptions() Options {
	return Options{SerialSlot: 0, LotSlot: 1, Language: enrichment.DefaultLanguage}
}

// Populator crea productos, clientes con sus contactos y pedidos borrador base.
type Populator struct {
	gw      ports.ObjectGateway
	gen     ports.EntityGenerator
	lookups *enrichment.Lookups
	codes   *enrichment.CodeRegistry
	log     zerolog.Logger
	rng     *rand.Rand
}

// NewPopulator construye el populador. codes debe venir de un único escaneo previo.
func NewPopulator(gw ports.ObjectGateway, gen ports.EntityGenerator, lookups *enrichment.Lookups,
	codes *enrichment.CodeRegistry, log zerolog.Logger, rng *rand.Rand) *Populator {
	if rng == nil {
		now := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(now, now>>17))
	}
	return &Populator{
		gw:      gw,
		gen:     gen,
		lookups: lookups,
		codes:   codes,
		log:     log.With().Str("stage", "masterdata").Logger(),
		rng:     rng,
	}
}

// Populate ejecuta la carga de datos maestros. Solo devuelve error ante fallos fatales
// (transporte o cancelación); los rechazos por registro se registran y se omiten.
func (p *Populator) Populate(ctx context.Context, data *entity.CreativeData, c entity.Criteria, opts Options) (entity.RunResult, error) {
	res := entity.RunResult{}
	if data == nil {
		p.log.Warn().Msg("sin datos creativos, nada que procesar")
		return res, nil
	}

	categories, err := p.lookups.EnsureCategories(ctx, c.Industry)
	if err != nil {
		if domain.IsFatal(err) {
			return res, err
		}
		p.log.Warn().Err(err).Msg("categorías no disponibles, productos sin categoría")
	}

	if err := p.createProducts(ctx, data.Products, c.Industry, categories, opts, &res); err != nil {
		return res, err
	}
	if err := p.createCompanies(ctx, data.Companies, &res); err != nil {
		return res, err
	}
	if c.IncludesMoves() {
		if err := p.createDraftOrders(ctx, &res); err != nil {
			return res, err
		}
	}

	p.log.Info().
		Int("products", len(res.ProductIDs)).
		Int("companies", len(res.CompanyIDs)).
		Int("orders", len(res.OrderIDs)).
		Int("tracked", len(res.TrackingProducts)).
		Msg("datos maestros creados")
	return res, nil
}

func (p *Populator) createProducts(ctx context.Context, buckets entity.ProductBuckets, industry string,
	categories map[entity.Bucket]int, opts Options, res *entity.RunResult) error {
	assigner := newTrackingAssigner(opts.Tracking, opts.SerialSlot, opts.LotSlot)

	for _, b := range entity.Buckets {
		for _, candidate := range buckets.For(b) {
			vals := MergeProduct(b, candidate)
			if vals == nil {
				continue
			}
			tracking := entity.TrackingNone
			if b == entity.BucketStorable {
				tracking = assigner.next()
			}
			vals["tracking"] = string(tracking)
			backfillPrices(vals, p.rng)
			p.enrich(ctx, vals, b, categories, opts.Language)

			id, err := p.gw.Create(ctx, "product.product", vals)
			if err != nil {
				if domain.IsFatal(err) {
					return err
				}
				p.log.Warn().Err(err).Str("product", vals.Str("name")).Msg("producto omitido")
				continue
			}
			res.ProductIDs = append(res.ProductIDs, id)
			if tracking != entity.TrackingNone {
				assigner.markCreated(tracking)
				res.TrackingProducts = append(res.TrackingProducts, entity.TrackedProduct{Kind: tracking, ID: id})
			}
		}
	}

	for _, kind := range assigner.missing() {
		id, err := p.createTrackedFallback(ctx, industry, kind, categories)
		if err != nil {
			if domain.IsFatal(err) {
				return err
			}
			p.log.Warn().Err(err).Str("tracking", string(kind)).Msg("producto con trazabilidad no creado")
			continue
		}
		res.ProductIDs = append(res.ProductIDs, id)
		res.TrackingProducts = append(res.TrackingProducts, entity.TrackedProduct{Kind: kind, ID: id})
	}
	return nil
}

// enrich completa código de barras, referencia interna, peso, categoría y unidad de medida.
func (p *Populator) enrich(ctx context.Context, vals entity.Values, b entity.Bucket, categories map[entity.Bucket]int, lang string) {
	name := vals.Str("name")
	if !vals.Has("barcode") {
		vals["barcode"] = p.codes.NextBarcode()
	} else if code := vals.Str("barcode"); !enrichment.ValidEAN13(code) || !p.codes.ClaimBarcode(code) {
		vals["barcode"] = p.codes.NextBarcode()
	}
	if !vals.Has("default_code") {
		vals["default_code"] = p.codes.NextDefaultCode(name)
	} else if code := vals.Str("default_code"); !enrichment.ValidDefaultCode(code) || !p.codes.ClaimDefaultCode(code) {
		vals["default_code"] = p.codes.NextDefaultCode(name)
	}
	backfillWeight(vals, b, p.rng)
	if !vals.Has("categ_id") {
		if id := categories[b]; id > 0 {
			vals["categ_id"] = id
		}
	}
	if !vals.Has("uom_id") {
		if id := p.lookups.ResolveUOM(ctx, p.gen, name, lang); id > 0 {
			vals["uom_id"] = id
		}
	}
}

func (p *Populator) createTrackedFallback(ctx context.Context, industry string, kind entity.Tracking, categories map[entity.Bucket]int) (int, error) {
	suffix := "Serienprodukt"
	if kind == entity.TrackingLot {
		suffix = "Losprodukt"
	}
	name := fmt.Sprintf("%s %s", industry, suffix)
	list := randomAmount(p.rng, 50, 300, 2)
	vals := entity.Values{
		"name":           name,
		"type":           "consu",
		"is_storable":    true,
		"tracking":       string(kind),
		"list_price":     list,
		"standard_price": randomAmount(p.rng, list*0.4, list*0.8, 2),
		"barcode":        p.codes.NextBarcode(),
		"default_code":   p.codes.NextDefaultCode(name),
		"weight":         randomAmount(p.rng, 0.5, 10, 3),
	}
	if id := categories[entity.BucketStorable]; id > 0 {
		vals["categ_id"] = id
	}
	if uoms := p.lookups.UOMs(ctx); len(uoms) > 0 {
		vals["uom_id"] = uoms[0].ID
	}
	p.log.Info().Str("product", name).Str("tracking", string(kind)).Msg("creando producto de trazabilidad adicional")
	return p.gw.Create(ctx, "product.product", vals)
}

func (p *Populator) createCompanies(ctx context.Context, scenarios []entity.CompanyScenario, res *entity.RunResult) error {
	for _, sc := range scenarios {
		vals, code, _ := CleanPartner(sc.CompanyData)
		if vals == nil {
			continue
		}
		if id, ok := p.lookups.CountryID(ctx, code); ok {
			vals["country_id"] = id
		}
		vals["company_type"] = "company"

		companyID, err := p.gw.Create(ctx, "res.partner", vals)
		if err != nil {
			if domain.IsFatal(err) {
				return err
			}
			p.log.Warn().Err(err).Str("company", vals.Str("name")).Msg("empresa omitida con sus contactos")
			continue
		}
		res.CompanyIDs = append(res.CompanyIDs, companyID)

		for _, raw := range sc.Contacts {
			contact, code, override := CleanPartner(raw)
			if contact == nil {
				continue
			}
			contact["parent_id"] = companyID
			if override {
				if id, ok := p.lookups.CountryID(ctx, code); ok {
					contact["country_id"] = id
				}
			}
			if _, err := p.gw.Create(ctx, "res.partner", contact); err != nil {
				if domain.IsFatal(err) {
					return err
				}
				p.log.Warn().Err(err).Str("contact", contact.Str("name")).Msg("contacto omitido")
			}
		}
	}
	return nil
}

// createDraftOrders un pedido borrador por empresa con los dos primeros productos.
func (p *Populator) createDraftOrders(ctx context.Context, res *entity.RunResult) error {
	if len(res.CompanyIDs) == 0 || len(res.ProductIDs) == 0 {
		return nil
	}
	products := res.ProductIDs[:min(2, len(res.ProductIDs))]
	for _, companyID := range res.CompanyIDs {
		lines := make([]any, 0, len(products))
		for _, pid := range products {
			lines = append(lines, []any{0, 0, entity.Values{"product_id": pid, "product_uom_qty": 1}})
		}
		id, err := p.gw.Create(ctx, "sale.order", entity.Values{"partner_id": companyID, "order_line": lines})
		if err != nil {
			if domain.IsFatal(err) {
				return err
			}
			p.log.Warn().Err(err).Int("partner_id", companyID).Msg("pedido borrador omitido")
			continue
		}
		res.OrderIDs = append(res.OrderIDs, id)
	}
	return nil
}
