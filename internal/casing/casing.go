package casing

import (
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/mcncl/kyopro/internal/models"
	"github.com/mcncl/kyopro/internal/parser"
)

// Key converts a single snake_case key to camelCase.
func Key(s string) string {
	if strings.IndexByte(s, '_') < 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' && i+1 < len(s) && isLower(s[i+1]) {
			b.WriteByte(s[i+1] - ('a' - 'A'))
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isLower(c byte) bool {
	return c >= 'a' && c <= 'z'
}

// Normalize returns a copy of v with every object key converted by Key.
func Normalize(v models.Value) models.Value {
	return transform(v, Key)
}

// Snake returns a copy of v with every object key converted to snake_case.
// It is used for request payloads going back to the API.
func Snake(v models.Value) models.Value {
	return transform(v, strcase.ToSnake)
}

// NormalizeJSON parses data, normalizes its keys and marshals the result.
func NormalizeJSON(data []byte) ([]byte, error) {
	doc, err := parser.ParseBytes(data)
	if err != nil {
		return nil, err
	}
	return Normalize(doc.Root).MarshalJSON()
}

func transform(v models.Value, rename func(string) string) models.Value {
	switch t := v.(type) {
	case models.Array:
		if t == nil {
			return t
		}
		out := make(models.Array, len(t))
		for i, item := range t {
			out[i] = transform(item, rename)
		}
		return out
	case *models.Object:
		if t == nil {
			return t
		}
		out := models.NewObject(t.Len())
		for _, m := range t.Members() {
			out.Set(rename(m.Key), transform(m.Value, rename))
		}
		return out
	default:
		return v
	}
}
