package masterdata_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/demo-data-assistant/internal/application/enrichment"
	"github.com/jhoicas/demo-data-assistant/internal/application/masterdata"
	"github.com/jhoicas/demo-data-assistant/internal/application/ports"
	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
	"github.com/jhoicas/demo-data-assistant/internal/infrastructure/sandbox"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// silentGenerator no sugiere nada: todas las etapas usan su fallback.
type silentGenerator struct{}

func (silentGenerator) FetchCreativeData(context.Context, entity.Criteria, string) (*entity.CreativeData, error) {
	return nil, nil
}
func (silentGenerator) FetchNameSuggestions(context.Context, entity.Criteria, string) (*entity.NameSuggestions, error) {
	return nil, nil
}
func (silentGenerator) FetchUOMAssignment(context.Context, string, []ports.UOMOption, string) (int, error) {
	return 0, nil
}
func (silentGenerator) FetchBOMComponentNames(context.Context, string, string, int, string) ([]string, error) {
	return nil, nil
}
func (silentGenerator) FetchProjectStageNames(context.Context, string, string, string) ([]string, error) {
	return nil, nil
}
func (silentGenerator) FetchRecruitingData(context.Context, string, int, int, string) (*entity.RecruitingData, error) {
	return nil, nil
}
func (silentGenerator) FetchJobSummary(context.Context, string, string, string) (string, error) {
	return "", nil
}

type fixture struct {
	gw  *sandbox.Gateway
	pop *masterdata.Populator
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store, err := sandbox.OpenStore(ctx, ":memory:", zerolog.Nop(), sandbox.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	gw := store.Session()
	codes, err := enrichment.ScanCodes(ctx, gw)
	require.NoError(t, err)
	lookups := enrichment.NewLookups(gw, zerolog.Nop())
	pop := masterdata.NewPopulator(gw, silentGenerator{}, lookups, codes, zerolog.Nop(), rand.New(rand.NewPCG(1, 2)))
	return fixture{gw: gw, pop: pop}
}

func named(prefix string, n int) []entity.Values {
	out := make([]entity.Values, n)
	for i := range out {
		out[i] = entity.Values{"name": fmt.Sprintf("%s %d", prefix, i+1)}
	}
	return out
}

func trackingOn() masterdata.Options {
	opts := masterdata.DefaultOptions()
	opts.Tracking = entity.TrackingOptions{UseTracking: true, LotEnabled: true, SerialEnabled: true}
	return opts
}

func countTracking(t *testing.T, gw ports.ObjectGateway, kind entity.Tracking) int {
	t.Helper()
	recs, err := gw.SearchRead(context.Background(), "product.product", ports.Where("tracking", "=", string(kind)), []string{"id"}, 0)
	require.NoError(t, err)
	return len(recs)
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario completo
// ──────────────────────────────────────────────────────────────────────────────

func TestPopulate_EmpresaProductosYPedido(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	criteria := entity.Criteria{
		Industry: "Bäckerei", Mode: entity.ModeMasterAndMoves,
		NumCompanies: 1, NumServices: 1, NumConsumables: 1, NumStorables: 2,
	}
	data := &entity.CreativeData{
		Companies: []entity.CompanyScenario{{CompanyData: entity.Values{"name": "Brot & Co KG", "city": "Köln"}}},
		Products: entity.ProductBuckets{
			Services:    []entity.Values{{"name": "Catering", "list_price": 250.0}},
			Consumables: []entity.Values{{"name": "Mehl Typ 550"}},
			Storables:   []entity.Values{{"name": "Backofen"}, {"name": "Knetmaschine"}},
		},
	}

	res, err := f.pop.Populate(ctx, data, criteria, masterdata.DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, res.CompanyIDs, 1)
	assert.Len(t, res.ProductIDs, 4)
	require.Len(t, res.OrderIDs, 1)
	assert.Empty(t, res.TrackingProducts)

	lines, err := f.gw.SearchRead(ctx, "sale.order.line", ports.Where("order_id", "=", res.OrderIDs[0]), []string{"product_id"}, 0)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	var got []int
	for _, l := range lines {
		id, _ := l.Ref("product_id")
		got = append(got, id)
	}
	assert.ElementsMatch(t, res.ProductIDs[:2], got)

	orders, err := f.gw.SearchRead(ctx, "sale.order", ports.Where("id", "=", res.OrderIDs[0]), []string{"state"}, 1)
	require.NoError(t, err)
	assert.Equal(t, "draft", orders[0].Str("state"))
	assert.Empty(t, f.gw.Errors())
}

func TestPopulate_SoloMaestrosSinPedidos(t *testing.T) {
	f := newFixture(t)
	data := &entity.CreativeData{
		Companies: []entity.CompanyScenario{{CompanyData: entity.Values{"name": "A GmbH"}}},
		Products:  entity.ProductBuckets{Services: named("Beratung", 1)},
	}
	res, err := f.pop.Populate(context.Background(), data,
		entity.Criteria{Industry: "IT", Mode: entity.ModeMasterOnly}, masterdata.DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, res.CompanyIDs, 1)
	assert.Empty(t, res.OrderIDs)
}

func TestPopulate_SinDatosCreativos(t *testing.T) {
	f := newFixture(t)
	res, err := f.pop.Populate(context.Background(), nil, entity.Criteria{Industry: "IT"}, masterdata.DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, res.ProductIDs)
	assert.Empty(t, res.CompanyIDs)
}

// ──────────────────────────────────────────────────────────────────────────────
// Trazabilidad
// ──────────────────────────────────────────────────────────────────────────────

func TestPopulate_TrazabilidadUnicaSinImportarCandidatos(t *testing.T) {
	// candidatos -> productos esperados (incluye los sintéticos)
	cases := map[int]int{0: 2, 1: 2, 50: 50}
	for n, want := range cases {
		t.Run(fmt.Sprintf("%d_almacenables", n), func(t *testing.T) {
			f := newFixture(t)
			data := &entity.CreativeData{Products: entity.ProductBuckets{Storables: named("Lagerteil", n)}}

			res, err := f.pop.Populate(context.Background(), data, entity.Criteria{Industry: "Logistik"}, trackingOn())
			require.NoError(t, err)

			assert.Equal(t, 1, countTracking(t, f.gw, entity.TrackingSerial))
			assert.Equal(t, 1, countTracking(t, f.gw, entity.TrackingLot))
			require.Len(t, res.TrackingProducts, 2)
			assert.Len(t, res.ProductIDs, want)
		})
	}
}

func TestPopulate_ProductoSinteticoDeLote(t *testing.T) {
	f := newFixture(t)
	data := &entity.CreativeData{Products: entity.ProductBuckets{Storables: named("Regal", 1)}}

	res, err := f.pop.Populate(context.Background(), data, entity.Criteria{Industry: "Möbel"}, trackingOn())
	require.NoError(t, err)

	lots, err := f.gw.SearchRead(context.Background(), "product.product",
		ports.Where("tracking", "=", "lot"), []string{"name", "is_storable"}, 0)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, "Möbel Losprodukt", lots[0].Str("name"))
	assert.Equal(t, true, lots[0]["is_storable"])
	assert.Equal(t, entity.TrackingSerial, res.TrackingProducts[0].Kind)
}

func TestPopulate_SinTrazabilidadSiNoSePide(t *testing.T) {
	f := newFixture(t)
	data := &entity.CreativeData{Products: entity.ProductBuckets{Storables: named("Palette", 3)}}
	_, err := f.pop.Populate(context.Background(), data, entity.Criteria{Industry: "X"}, masterdata.DefaultOptions())
	require.NoError(t, err)
	assert.Zero(t, countTracking(t, f.gw, entity.TrackingSerial))
	assert.Zero(t, countTracking(t, f.gw, entity.TrackingLot))
}

// ──────────────────────────────────────────────────────────────────────────────
// Códigos y enriquecimiento
// ──────────────────────────────────────────────────────────────────────────────

func TestPopulate_CodigosUnicosYValidos(t *testing.T) {
	f := newFixture(t)
	data := &entity.CreativeData{Products: entity.ProductBuckets{
		Services:    named("Service", 10),
		Consumables: named("Verbrauch", 10),
		Storables:   named("Lager", 10),
	}}
	res, err := f.pop.Populate(context.Background(), data, entity.Criteria{Industry: "Handel"}, masterdata.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.ProductIDs, 30)

	recs, err := f.gw.SearchRead(context.Background(), "product.product", nil,
		[]string{"barcode", "default_code", "categ_id", "uom_id", "weight", "list_price", "standard_price"}, 0)
	require.NoError(t, err)

	codeRe := regexp.MustCompile(`^[A-Z0-9]{3}-\d{5}$`)
	barcodes, codes := map[string]bool{}, map[string]bool{}
	for _, r := range recs {
		bc, dc := r.Str("barcode"), r.Str("default_code")
		assert.True(t, enrichment.ValidEAN13(bc), bc)
		assert.Regexp(t, codeRe, dc)
		assert.False(t, barcodes[bc], "barcode duplicado %s", bc)
		assert.False(t, codes[dc], "referencia duplicada %s", dc)
		barcodes[bc], codes[dc] = true, true

		_, hasCateg := r.Ref("categ_id")
		_, hasUOM := r.Ref("uom_id")
		assert.True(t, hasCateg)
		assert.True(t, hasUOM)
		assert.Less(t, r.Float("standard_price"), r.Float("list_price"))
	}
}

func TestPopulate_ReferenciaSugeridaConFormatoInvalido(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	data := &entity.CreativeData{Products: entity.ProductBuckets{
		Services: []entity.Values{
			{"name": "Beratung", "default_code": "sku-1"},
			{"name": "Montage", "default_code": "MON-00042"},
		},
	}}
	res, err := f.pop.Populate(ctx, data, entity.Criteria{Industry: "Handel"}, masterdata.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.ProductIDs, 2)

	recs, err := f.gw.SearchRead(ctx, "product.product", nil, []string{"name", "default_code"}, 0)
	require.NoError(t, err)
	byName := map[string]string{}
	for _, r := range recs {
		byName[r.Str("name")] = r.Str("default_code")
	}
	assert.True(t, enrichment.ValidDefaultCode(byName["Beratung"]), byName["Beratung"])
	assert.Equal(t, "BER", byName["Beratung"][:3])
	assert.Equal(t, "MON-00042", byName["Montage"], "una referencia válida y libre se conserva")
}

// ──────────────────────────────────────────────────────────────────────────────
// Empresas y contactos
// ──────────────────────────────────────────────────────────────────────────────

func TestPopulate_EmpresasSinIdentificadorFiscal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	data := &entity.CreativeData{Companies: []entity.CompanyScenario{
		{
			CompanyData: entity.Values{"name": "Alpen AG", "vat_id": "ATU123", "vat": "ATU123", "country_code": "AT", "phone": nil},
			Contacts: []entity.Values{
				{"name": "Lager Wien", "type": "delivery", "country_code": "CH", "vat": "X"},
				{"name": nil, "type": "invoice"},
				{"name": "Buchhaltung", "type": "invoice"},
			},
		},
		{CompanyData: entity.Values{"email": "ohne@name.de"}, Contacts: []entity.Values{{"name": "Waise"}}},
	}}

	res, err := f.pop.Populate(ctx, data, entity.Criteria{Industry: "Tourismus"}, masterdata.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.CompanyIDs, 1, "la empresa sin nombre se omite")
	assert.Empty(t, f.gw.Errors())

	companies, err := f.gw.SearchRead(ctx, "res.partner", ports.Where("id", "=", res.CompanyIDs[0]),
		[]string{"country_id", "company_type", "vat"}, 1)
	require.NoError(t, err)
	assert.Equal(t, "Austria", companies[0].Label("country_id"))
	assert.Equal(t, "company", companies[0].Str("company_type"))
	assert.Empty(t, companies[0].Str("vat"))

	contacts, err := f.gw.SearchRead(ctx, "res.partner", ports.Where("parent_id", "=", res.CompanyIDs[0]),
		[]string{"name", "country_id"}, 0)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	for _, c := range contacts {
		if c.Str("name") == "Lager Wien" {
			assert.Equal(t, "Switzerland", c.Label("country_id"))
		} else {
			_, has := c.Ref("country_id")
			assert.False(t, has, "sin country_code el contacto no recibe país propio")
		}
	}

	orphans, err := f.gw.SearchRead(ctx, "res.partner", ports.Where("name", "=", "Waise"), []string{"id"}, 0)
	require.NoError(t, err)
	assert.Empty(t, orphans)
}
