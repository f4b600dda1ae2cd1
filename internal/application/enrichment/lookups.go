package enrichment

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/jhoicas/demo-data-assistant/internal/application/ports"
	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

const (
	// DefaultCountryCode país por defecto de empresas y contactos sin country_code.
	DefaultCountryCode = "DE"
	// DefaultLanguage idioma para el generador cuando la empresa principal no tiene uno.
	DefaultLanguage = "German"
)

// Lookups resuelve datos de referencia del ERP con caché por corrida.
type Lookups struct {
	gw        ports.ObjectGateway
	log       zerolog.Logger
	countries map[string]int
	uoms      []ports.UOMOption
	uomsRead  bool
}

// NewLookups construye el resolvedor.
func NewLookups(gw ports.ObjectGateway, log zerolog.Logger) *Lookups {
	return &Lookups{gw: gw, log: log, countries: map[string]int{}}
}

// CountryID resuelve un código ISO de país. Los fallos se cachean como 0.
func (l *Lookups) CountryID(ctx context.Context, code string) (int, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCountryCode
	}
	if id, ok := l.countries[code]; ok {
		return id, id > 0
	}
	recs, err := l.gw.SearchRead(ctx, "res.country", ports.Where("code", "=", code), []string{"id"}, 1)
	if err != nil {
		l.log.Warn().Err(err).Str("country_code", code).Msg("no se pudo resolver el país")
		return 0, false
	}
	id := 0
	if len(recs) > 0 {
		id = recs[0].ID()
	}
	l.countries[code] = id
	return id, id > 0
}

// UOMs unidades de medida disponibles (leídas una vez).
func (l *Lookups) UOMs(ctx context.Context) []ports.UOMOption {
	if l.uomsRead {
		return l.uoms
	}
	recs, err := l.gw.SearchRead(ctx, "uom.uom", nil, []string{"id", "name"}, 0)
	if err != nil {
		l.log.Warn().Err(err).Msg("no se pudieron leer las unidades de medida")
		return nil
	}
	l.uomsRead = true
	for _, r := range recs {
		if id := r.ID(); id > 0 {
			l.uoms = append(l.uoms, ports.UOMOption{ID: id, Name: r.Str("name")})
		}
	}
	return l.uoms
}

// ResolveUOM pide al generador la unidad más adecuada; si no hay respuesta válida
// usa la primera unidad disponible. Devuelve 0 si el ERP no tiene unidades.
func (l *Lookups) ResolveUOM(ctx context.Context, gen ports.EntityGenerator, productName, lang string) int {
	options := l.UOMs(ctx)
	if len(options) == 0 {
		return 0
	}
	if gen != nil {
		id, err := gen.FetchUOMAssignment(ctx, productName, options, lang)
		if err != nil {
			l.log.Debug().Err(err).Str("product", productName).Msg("asignación de UdM sin respuesta, se usa la primera")
		}
		for _, o := range options {
			if id > 0 && o.ID == id {
				return id
			}
		}
	}
	return options[0].ID
}

// EnsureCategories reutiliza (por nombre exacto) o crea la categoría del sector y una
// subcategoría por bucket.
func (l *Lookups) EnsureCategories(ctx context.Context, industry string) (map[entity.Bucket]int, error) {
	industry = strings.TrimSpace(industry)
	if industry == "" {
		industry = "Demo"
	}
	parent, err := l.findOrCreateCategory(ctx, industry, 0)
	if err != nil {
		return nil, err
	}
	names := map[entity.Bucket]string{
		entity.BucketService:    industry + " / Dienstleistungen",
		entity.BucketConsumable: industry + " / Verbrauchsmaterial",
		entity.BucketStorable:   industry + " / Lagerware",
	}
	out := map[entity.Bucket]int{}
	for _, b := range entity.Buckets {
		id, err := l.findOrCreateCategory(ctx, names[b], parent)
		if err != nil {
			l.log.Warn().Err(err).Str("category", names[b]).Msg("subcategoría no creada, se usa la del sector")
			id = parent
		}
		out[b] = id
	}
	return out, nil
}

func (l *Lookups) findOrCreateCategory(ctx context.Context, name string, parent int) (int, error) {
	recs, err := l.gw.SearchRead(ctx, "product.category", ports.Where("name", "=", name), []string{"id"}, 1)
	if err != nil {
		return 0, fmt.Errorf("buscar categoría %q: %w", name, err)
	}
	if len(recs) > 0 {
		return recs[0].ID(), nil
	}
	vals := entity.Values{"name": name}
	if parent > 0 {
		vals["parent_id"] = parent
	}
	id, err := l.gw.Create(ctx, "product.category", vals)
	if err != nil {
		return 0, fmt.Errorf("crear categoría %q: %w", name, err)
	}
	return id, nil
}

// InstalledModules devuelve los nombres técnicos de los módulos instalados.
func (l *Lookups) InstalledModules(ctx context.Context) (map[string]bool, error) {
	recs, err := l.gw.SearchRead(ctx, "ir.module.module", ports.Where("state", "=", "installed"), []string{"name"}, 0)
	if err != nil {
		return nil, fmt.Errorf("leer módulos instalados: %w", err)
	}
	out := make(map[string]bool, len(recs))
	for _, r := range recs {
		if name := r.Str("name"); name != "" {
			out[name] = true
		}
	}
	return out, nil
}

// MainCompanyLanguage devuelve el nombre (en inglés) del idioma del partner de la
// empresa principal, p. ej. "German". Si no se puede resolver devuelve DefaultLanguage.
func (l *Lookups) MainCompanyLanguage(ctx context.Context) string {
	companies, err := l.gw.SearchRead(ctx, "res.company", nil, []string{"partner_id"}, 1)
	if err != nil || len(companies) == 0 {
		return DefaultLanguage
	}
	partnerID, ok := companies[0].Ref("partner_id")
	if !ok {
		return DefaultLanguage
	}
	partners, err := l.gw.SearchRead(ctx, "res.partner", ports.Where("id", "=", partnerID), []string{"lang"}, 1)
	if err != nil || len(partners) == 0 {
		return DefaultLanguage
	}
	return LanguageName(partners[0].Str("lang"))
}

// LanguageName convierte un código de idioma del ERP (de_DE, en_US, es) en su nombre
// en inglés. Códigos inválidos devuelven DefaultLanguage.
func LanguageName(code string) string {
	code = strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
	if code == "" {
		return DefaultLanguage
	}
	tag, err := language.Parse(code)
	if err != nil {
		return DefaultLanguage
	}
	base, conf := tag.Base()
	if conf == language.No {
		return DefaultLanguage
	}
	name := display.English.Languages().Name(base)
	if name == "" {
		return DefaultLanguage
	}
	return name
}
