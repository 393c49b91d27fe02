package stats

import (
	"net/url"
	"strconv"
)

// pageWindow is how many pages are shown either side of the current one.
const pageWindow = 2

type PageLink struct {
	Number  int // 1-based page number, 0 for a gap
	Start   int
	URL     string
	Current bool
	Gap     bool
}

// Pagination is a page index built from a start offset.
type Pagination struct {
	Start    int
	PerPage  int
	Total    int
	Current  int // 1-based
	NumPages int
	Links    []PageLink
	Prev     *PageLink
	Next     *PageLink
}

// HasPages reports whether the index needs rendering at all.
func (p Pagination) HasPages() bool {
	return p.NumPages > 1
}

// NormalizeStart clamps start to [0, last page] and rounds it down to a page boundary.
func NormalizeStart(start, total, perPage int) int {
	if perPage <= 0 || start <= 0 || total <= 0 {
		return 0
	}
	if start >= total {
		start = total - 1
	}
	return start - start%perPage
}

// PageIndex builds the page links for baseURL, setting its start query parameter.
func PageIndex(baseURL string, start, total, perPage int) Pagination {
	if perPage <= 0 {
		perPage = 25
	}
	start = NormalizeStart(start, total, perPage)

	p := Pagination{
		Start:    start,
		PerPage:  perPage,
		Total:    total,
		Current:  start/perPage + 1,
		NumPages: (total + perPage - 1) / perPage,
	}
	if p.NumPages <= 1 {
		return p
	}

	link := func(page int) PageLink {
		s := (page - 1) * perPage
		return PageLink{Number: page, Start: s, URL: withStart(baseURL, s), Current: page == p.Current}
	}

	lo := max(1, p.Current-pageWindow)
	hi := min(p.NumPages, p.Current+pageWindow)

	if lo > 1 {
		p.Links = append(p.Links, link(1))
		if lo > 2 {
			p.Links = append(p.Links, PageLink{Gap: true})
		}
	}
	for page := lo; page <= hi; page++ {
		p.Links = append(p.Links, link(page))
	}
	if hi < p.NumPages {
		if hi < p.NumPages-1 {
			p.Links = append(p.Links, PageLink{Gap: true})
		}
		p.Links = append(p.Links, link(p.NumPages))
	}

	if p.Current > 1 {
		prev := link(p.Current - 1)
		p.Prev = &prev
	}
	if p.Current < p.NumPages {
		next := link(p.Current + 1)
		p.Next = &next
	}

	return p
}

func withStart(baseURL string, start int) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}
	q := u.Query()
	if start > 0 {
		q.Set("start", strconv.Itoa(start))
	} else {
		q.Del("start")
	}
	u.RawQuery = q.Encode()
	return u.String()
}
