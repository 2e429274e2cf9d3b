package query

import (
	"math"
	"net/url"
	"strconv"
)

// DefaultPerPage is used when a request does not ask for a page size.
const DefaultPerPage = 10

// PageRequest selects one page of a listing.
type PageRequest struct {
	Page    int
	PerPage int
}

// Normalize fills zero values with page 1 and defaultPerPage.
func (p PageRequest) Normalize(defaultPerPage int) PageRequest {
	if defaultPerPage <= 0 {
		defaultPerPage = DefaultPerPage
	}
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = defaultPerPage
	}
	return p
}

// Offset is the number of rows skipped before the page. Pages beyond the
// representable range saturate at math.MaxInt and select no rows.
func (p PageRequest) Offset() int {
	if p.Page <= 1 || p.PerPage <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PerPage {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PerPage
}

// Page is one page of a listing.
type Page[T any] struct {
	Items   []T
	Total   int
	Page    int
	PerPage int
}

// LastPage is the number of the final page, at least 1.
func (p Page[T]) LastPage() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

// Meta describes a page for API clients.
type Meta struct {
	Total        int     `json:"total"`
	Count        int     `json:"count"`
	PerPage      int     `json:"per_page"`
	CurrentPage  int     `json:"current_page"`
	LastPage     int     `json:"last_page"`
	From         *int    `json:"from"`
	To           *int    `json:"to"`
	FirstPageURL string  `json:"first_page_url"`
	NextPageURL  *string `json:"next_page_url"`
	PrevPageURL  *string `json:"prev_page_url"`
	LastPageURL  string  `json:"last_page_url"`
}

// NewMeta computes pagination metadata for p. Page links keep every query
// parameter of base and replace page.
func NewMeta[T any](p Page[T], base *url.URL) Meta {
	last := p.LastPage()
	meta := Meta{
		Total:        p.Total,
		Count:        len(p.Items),
		PerPage:      p.PerPage,
		CurrentPage:  p.Page,
		LastPage:     last,
		FirstPageURL: pageURL(base, 1),
		LastPageURL:  pageURL(base, last),
	}
	if len(p.Items) > 0 {
		from := (p.Page-1)*p.PerPage + 1
		to := from + len(p.Items) - 1
		meta.From, meta.To = &from, &to
	}
	if p.Page < last {
		next := pageURL(base, p.Page+1)
		meta.NextPageURL = &next
	}
	if p.Page > 1 {
		prev := pageURL(base, p.Page-1)
		meta.PrevPageURL = &prev
	}
	return meta
}

func pageURL(base *url.URL, page int) string {
	if base == nil {
		return "?page=" + strconv.Itoa(page)
	}
	u := *base
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}
