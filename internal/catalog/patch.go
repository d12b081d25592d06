// patch.go

package catalog

import (
	"github.com/spf13/cast"

	"shop-backend/internal/apperr"
	"shop-backend/internal/models"
)

// ParsePatch coerces a loosely typed update body into a ProductPatch.
// Unknown keys, including id, are ignored. Price and stock accept numbers or
// numeric strings; status accepts anything cast can read as a boolean.
func ParsePatch(raw map[string]any) (models.ProductPatch, error) {
	var patch models.ProductPatch

	for _, key := range []string{"title", "description", "code", "category"} {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			return models.ProductPatch{}, apperr.Invalid(key, "must be a string")
		}
		switch key {
		case "title":
			patch.Title = &s
		case "description":
			patch.Description = &s
		case "code":
			patch.Code = &s
		case "category":
			patch.Category = &s
		}
	}

	if v, ok := raw["price"]; ok && v != nil {
		price, err := cast.ToFloat64E(v)
		if err != nil || price < 0 {
			return models.ProductPatch{}, apperr.Invalid("price", "must be a number >= 0")
		}
		patch.Price = &price
	}
	if v, ok := raw["stock"]; ok && v != nil {
		stock, err := cast.ToIntE(v)
		if err != nil || stock < 0 {
			return models.ProductPatch{}, apperr.Invalid("stock", "must be a number >= 0")
		}
		patch.Stock = &stock
	}
	if v, ok := raw["status"]; ok && v != nil {
		status, err := cast.ToBoolE(v)
		if err != nil {
			return models.ProductPatch{}, apperr.Invalid("status", "must be a boolean")
		}
		patch.Status = &status
	}
	if v, ok := raw["thumbnails"]; ok {
		thumbs := []string{}
		if list, isList := v.([]any); isList {
			thumbs = cast.ToStringSlice(list)
		}
		patch.Thumbnails = &thumbs
	}
	return patch, nil
}
