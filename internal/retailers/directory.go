// Package retailers maps retailer domains to catalog site identifiers.
package retailers

import (
	"fmt"
	"strings"

	"media_syncer/internal/errs"
)

// Entry is one supported retailer.
type Entry struct {
	SiteID string
	Name   string
	Domain string
}

// Directory is an immutable domain -> Entry lookup table, built once at
// startup and passed to components by reference.
type Directory struct {
	byDomain map[string]Entry
}

// New builds a Directory from the given entries. Domains are matched
// case-insensitively and without a "www." prefix.
func New(entries []Entry) *Directory {
	byDomain := make(map[string]Entry, len(entries))
	for _, e := range entries {
		d := strings.TrimPrefix(strings.ToLower(e.Domain), "www.")
		byDomain[d] = e
	}
	return &Directory{byDomain: byDomain}
}

// Default returns the directory of built-in retailers.
func Default() *Directory {
	return New(defaultEntries)
}

// Lookup returns the entry for an exact domain match, or errs.ErrNotFound.
func (d *Directory) Lookup(domain string) (Entry, error) {
	e, ok := d.byDomain[strings.ToLower(domain)]
	if !ok {
		return Entry{}, fmt.Errorf("%w: retailer %q", errs.ErrNotFound, domain)
	}
	return e, nil
}

// Len reports how many retailers the directory holds.
func (d *Directory) Len() int {
	return len(d.byDomain)
}

var defaultEntries = []Entry{
	{SiteID: "1021", Name: "Chico's", Domain: "chicos.com"},
	{SiteID: "1034", Name: "Nordstrom", Domain: "nordstrom.com"},
	{SiteID: "1042", Name: "Macy's", Domain: "macys.com"},
	{SiteID: "1057", Name: "Bloomingdale's", Domain: "bloomingdales.com"},
	{SiteID: "1103", Name: "ASOS", Domain: "asos.com"},
	{SiteID: "1118", Name: "Revolve", Domain: "revolve.com"},
	{SiteID: "1126", Name: "Shopbop", Domain: "shopbop.com"},
	{SiteID: "1150", Name: "Urban Outfitters", Domain: "urbanoutfitters.com"},
	{SiteID: "1163", Name: "Zara", Domain: "zara.com"},
	{SiteID: "1177", Name: "H&M", Domain: "hm.com"},
	{SiteID: "1189", Name: "Anthropologie", Domain: "anthropologie.com"},
	{SiteID: "1204", Name: "Free People", Domain: "freepeople.com"},
}
