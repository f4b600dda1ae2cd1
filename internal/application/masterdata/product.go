package masterdata

import (
	"encoding/json"
	"math/rand/v2"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

// disallowedProductFields campos que el generador suele inventar y el ERP rechaza.
var disallowedProductFields = []string{"uom", "uom_name", "vat", "vat_id", "detailed_type"}

// forcedProductFields los decide el populador, nunca el generador.
var forcedProductFields = []string{"type", "is_storable", "tracking"}

// taxIDFields se eliminan siempre de empresas y contactos.
var taxIDFields = []string{"vat", "vat_id"}

// bucketTemplate valores base de cada tipo de producto.
func bucketTemplate(b entity.Bucket) entity.Values {
	switch b {
	case entity.BucketService:
		return entity.Values{"type": "service", "is_storable": false}
	case entity.BucketStorable:
		return entity.Values{"type": "consu", "is_storable": true}
	}
	return entity.Values{"type": "consu", "is_storable": false}
}

// MergeProduct combina la plantilla del bucket con los campos del candidato.
// Descarta nulos y campos no permitidos. type e is_storable siempre salen de la plantilla.
// Devuelve nil si el candidato no tiene nombre.
func MergeProduct(b entity.Bucket, candidate entity.Values) entity.Values {
	name := candidate.Str("name")
	if name == "" {
		return nil
	}
	out := candidate.WithoutNil().Without(disallowedProductFields...).Without(forcedProductFields...)
	for k, v := range bucketTemplate(b) {
		out[k] = v
	}
	out["name"] = name
	out["tracking"] = string(entity.TrackingNone)

	for _, k := range []string{"list_price", "standard_price", "weight"} {
		if !out.Has(k) {
			continue
		}
		if d, ok := toDecimal(out[k]); ok && !d.IsNegative() {
			out[k] = d.Round(2).InexactFloat64()
		} else {
			delete(out, k)
		}
	}
	return out
}

// CleanPartner elimina nulos e identificadores fiscales y separa country_code.
// Devuelve nil si no hay nombre.
func CleanPartner(in entity.Values) (vals entity.Values, countryCode string, hasCountry bool) {
	if in.Str("name") == "" {
		return nil, "", false
	}
	vals = in.WithoutNil().Without(taxIDFields...)
	if raw, ok := vals["country_code"]; ok {
		countryCode, _ = raw.(string)
		countryCode = strings.TrimSpace(countryCode)
		hasCountry = countryCode != ""
		delete(vals, "country_code")
	}
	delete(vals, "contacts")
	return vals, countryCode, hasCountry
}

// backfillPrices completa list_price en [15, 500] y standard_price como 40–80 % del precio de lista.
func backfillPrices(vals entity.Values, rng *rand.Rand) {
	if !vals.Has("list_price") {
		vals["list_price"] = randomAmount(rng, 15, 500, 2)
	}
	if !vals.Has("standard_price") {
		list, _ := toDecimal(vals["list_price"])
		factor := decimal.NewFromFloat(0.4 + rng.Float64()*0.4)
		vals["standard_price"] = list.Mul(factor).Round(2).InexactFloat64()
	}
}

// backfillWeight peso en kg según el tipo de producto.
func backfillWeight(vals entity.Values, b entity.Bucket, rng *rand.Rand) {
	if vals.Has("weight") {
		return
	}
	switch b {
	case entity.BucketService:
		vals["weight"] = 0.0
	case entity.BucketConsumable:
		vals["weight"] = randomAmount(rng, 0.1, 2.0, 3)
	default:
		vals["weight"] = randomAmount(rng, 0.5, 50.0, 3)
	}
}

func randomAmount(rng *rand.Rand, lo, hi float64, places int32) float64 {
	return decimal.NewFromFloat(lo + rng.Float64()*(hi-lo)).Round(places).InexactFloat64()
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(n), ",", "."))
		return d, err == nil
	}
	return decimal.Zero, false
}
