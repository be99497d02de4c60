package corpus

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/recodex/internal/domain/catalog"
)

// Field names accepted for each attribute. The second and later names are the
// ones written by the upstream scraping and vectorizing scripts.
var (
	nameKeys        = []string{"name", "nombre"}
	brandKeys       = []string{"brand", "marca"}
	priceKeys       = []string{"price", "precio"}
	sizeKeys        = []string{"size_inches", "tamano_pulgadas"}
	ratingKeys      = []string{"rating", "calificacion"}
	resolutionKeys  = []string{"resolution", "resolucion"}
	sourcePageKeys  = []string{"source_page", "pagina_fuente"}
	urlKeys         = []string{"url", "url_producto"}
	descriptionKeys = []string{"description", "texto", "text"}
	embeddingKeys   = []string{"embedding"}
)

var (
	errMissingName      = errors.New("missing name")
	errMissingEmbedding = errors.New("missing embedding")
)

var jsonNull = []byte("null")

// record is one raw corpus entry keyed by field name.
type record map[string]json.RawMessage

// lookup returns the first present, non-null value among keys.
func (r record) lookup(keys []string) (string, json.RawMessage, bool) {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || bytes.Equal(bytes.TrimSpace(v), jsonNull) {
			continue
		}
		return k, v, true
	}
	return "", nil, false
}

func (r record) str(keys []string) (*string, error) {
	key, raw, ok := r.lookup(keys)
	if !ok {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("field %q: expected string", key)
	}
	return &s, nil
}

// number accepts a JSON number or a numeric string. A blank string means absent.
func (r record) number(keys []string) (*float64, error) {
	key, raw, ok := r.lookup(keys)
	if !ok {
		return nil, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("field %q: expected number", key)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("field %q: invalid number %q", key, s)
	}
	return &f, nil
}

func (r record) embedding() ([]float32, error) {
	key, raw, ok := r.lookup(embeddingKeys)
	if !ok {
		return nil, errMissingEmbedding
	}
	// pointers tell a null element apart from 0
	var vals []*float64
	if err := json.Unmarshal(raw, &vals); err != nil {
		return nil, fmt.Errorf("field %q: expected array of numbers", key)
	}
	if len(vals) == 0 {
		return nil, errMissingEmbedding
	}
	vec := make([]float32, len(vals))
	for i, v := range vals {
		if v == nil {
			return nil, fmt.Errorf("field %q: element %d is null", key, i)
		}
		vec[i] = float32(*v)
	}
	return vec, nil
}

// attributes maps the raw record onto catalog attributes.
func (r record) attributes() (catalog.Attributes, error) {
	var a catalog.Attributes

	name, err := r.str(nameKeys)
	if err != nil {
		return a, err
	}
	if name == nil || strings.TrimSpace(*name) == "" {
		return a, errMissingName
	}
	a.Name = *name

	if a.Brand, err = r.str(brandKeys); err != nil {
		return a, err
	}
	if a.Price, err = r.number(priceKeys); err != nil {
		return a, err
	}
	if a.SizeInches, err = r.number(sizeKeys); err != nil {
		return a, err
	}
	if a.Rating, err = r.number(ratingKeys); err != nil {
		return a, err
	}
	if a.Resolution, err = r.str(resolutionKeys); err != nil {
		return a, err
	}
	if a.URL, err = r.str(urlKeys); err != nil {
		return a, err
	}
	if a.Description, err = r.str(descriptionKeys); err != nil {
		return a, err
	}
	page, err := r.str(sourcePageKeys)
	if err != nil {
		return a, err
	}
	if page != nil {
		a.SourcePage = *page
	}
	return a, nil
}
