// Package view derives display sequences from the order collection.
//
// Everything here is a pure projection: inputs are never mutated and no
// state is kept, so the view can be recomputed from the collection on every
// render without drifting from it.
package view

import (
	"sort"
	"strings"
	"time"

	"github.com/vperfumes/tracker/app/models"
)

// All is the sentinel disabling the status or company filter.
const All = "all"

// Filter returns the orders matching the status filter AND the company
// filter AND the free-text query.
//
// The query is empty-matches-all; otherwise it is OR-combined across
// order number, customer name and delivery area (case-insensitive), the
// customer phone (plain substring), and the order date reversed to
// DD-MM-YYYY so users can search dates the way they read them.
func Filter(orders []models.Order, status, company, query string) []models.Order {
	folded := strings.ToLower(query)
	trimmed := strings.TrimSpace(folded)

	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if status != All && o.Status != status {
			continue
		}
		if company != All && o.CompanyName != company {
			continue
		}
		if query != "" && !matchQuery(o, query, folded, trimmed) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func matchQuery(o models.Order, query, folded, trimmed string) bool {
	return strings.Contains(strings.ToLower(o.OrderNumber), folded) ||
		strings.Contains(strings.ToLower(o.CustomerName), folded) ||
		strings.Contains(o.CustomerPhone, query) ||
		strings.Contains(strings.ToLower(o.DeliveryArea), folded) ||
		strings.Contains(ReverseDate(o.OrderDate), trimmed)
}

// ReverseDate turns "YYYY-MM-DD" into "DD-MM-YYYY". Strings without two
// dashes are returned unchanged.
func ReverseDate(date string) string {
	parts := strings.SplitN(date, "-", 3)
	if len(parts) != 3 {
		return date
	}
	return parts[2] + "-" + parts[1] + "-" + parts[0]
}

// SortByDateDesc orders the collection newest-first by order date and
// returns a new slice. The sort is stable, so same-date entries keep the
// sequence the server returned and re-sorting a sorted slice is a no-op.
// Unparseable dates sink to the end.
func SortByDateDesc(orders []models.Order) []models.Order {
	out := make([]models.Order, len(orders))
	copy(out, orders)

	sort.SliceStable(out, func(i, j int) bool {
		ti, iok := parseDate(out[i].OrderDate)
		tj, jok := parseDate(out[j].OrderDate)
		if iok != jok {
			return iok
		}
		if !iok {
			return false
		}
		return ti.After(tj)
	})
	return out
}

func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", s)
	return t, err == nil
}

// Companies returns the distinct company names in first-seen order. It
// feeds the admin dashboard's company filter.
func Companies(orders []models.Order) []string {
	seen := make(map[string]struct{}, len(orders))
	var names []string
	for _, o := range orders {
		if o.CompanyName == "" {
			continue
		}
		if _, ok := seen[o.CompanyName]; ok {
			continue
		}
		seen[o.CompanyName] = struct{}{}
		names = append(names, o.CompanyName)
	}
	return names
}
