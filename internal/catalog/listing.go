// listing.go

package catalog

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"shop-backend/internal/models"
	"shop-backend/internal/store"
)

const defaultLimit = 10

var (
	availableWords   = []string{"available", "true", "disponible"}
	unavailableWords = []string{"unavailable", "false", "nodisponible"}
)

// ListQuery holds the raw listing parameters as received on the query string.
type ListQuery struct {
	Limit   string
	Page    string
	Query   string
	Sort    string
	BaseURL string
}

// Page is the paginated listing envelope.
type Page struct {
	Status      string           `json:"status"`
	Payload     []models.Product `json:"payload"`
	TotalPages  int              `json:"totalPages"`
	PrevPage    *int             `json:"prevPage"`
	NextPage    *int             `json:"nextPage"`
	Page        int              `json:"page"`
	HasPrevPage bool             `json:"hasPrevPage"`
	HasNextPage bool             `json:"hasNextPage"`
	PrevLink    *string          `json:"prevLink"`
	NextLink    *string          `json:"nextLink"`
}

// positiveOr parses s as an integer. Unparsable input and zero fall back to
// def; anything below 1 is clamped to 1.
func positiveOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n == 0 {
		n = def
	}
	if n < 1 {
		n = 1
	}
	return n
}

// ParseFilter maps the free-form query to a filter. Availability synonyms
// select on status; any other non-empty value matches the category.
func ParseFilter(query string) store.ProductFilter {
	q := strings.TrimSpace(query)
	if q == "" {
		return store.ProductFilter{}
	}
	lower := strings.ToLower(q)
	for _, w := range availableWords {
		if lower == w {
			return store.ProductFilter{Availability: store.OnlyAvailable}
		}
	}
	for _, w := range unavailableWords {
		if lower == w {
			return store.ProductFilter{Availability: store.OnlyUnavailable}
		}
	}
	return store.ProductFilter{Category: q}
}

func ParseSort(sort string) store.SortOrder {
	switch strings.ToLower(strings.TrimSpace(sort)) {
	case "asc":
		return store.PriceAsc
	case "desc":
		return store.PriceDesc
	default:
		return store.Unsorted
	}
}

func (s *Service) GetPaginated(ctx context.Context, q ListQuery) (Page, error) {
	limit := positiveOr(q.Limit, defaultLimit)
	page := positiveOr(q.Page, 1)
	filter := ParseFilter(q.Query)

	total, err := s.products.Count(ctx, filter)
	if err != nil {
		return Page{}, err
	}
	totalPages := int(total / int64(limit))
	if total%int64(limit) != 0 {
		totalPages++
	}
	if totalPages < 1 {
		totalPages = 1
	}

	// Past the last page (page-1)*limit is at least total, or overflows.
	items := []models.Product{}
	if page <= totalPages {
		items, err = s.products.Find(ctx, filter, (page-1)*limit, limit, ParseSort(q.Sort))
		if err != nil {
			return Page{}, err
		}
		if items == nil {
			items = []models.Product{}
		}
	}

	out := Page{
		Status:      "success",
		Payload:     items,
		TotalPages:  totalPages,
		Page:        page,
		HasPrevPage: page > 1,
		HasNextPage: page < totalPages,
	}
	extra := linkParams(limit, strings.TrimSpace(q.Query), strings.TrimSpace(q.Sort))
	if out.HasPrevPage {
		prev := page - 1
		link := pageLink(q.BaseURL, prev, extra)
		out.PrevPage, out.PrevLink = &prev, &link
	}
	if out.HasNextPage {
		next := page + 1
		link := pageLink(q.BaseURL, next, extra)
		out.NextPage, out.NextLink = &next, &link
	}
	return out, nil
}

func linkParams(limit int, query, sort string) string {
	v := url.Values{}
	if limit != defaultLimit {
		v.Set("limit", strconv.Itoa(limit))
	}
	if query != "" {
		v.Set("query", query)
	}
	if sort != "" {
		v.Set("sort", sort)
	}
	if len(v) == 0 {
		return ""
	}
	return "&" + v.Encode()
}

func pageLink(base string, page int, extra string) string {
	return base + "?page=" + strconv.Itoa(page) + extra
}
