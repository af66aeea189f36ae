// Package extract turns positioned text runs into reading-order strings,
// either scoped to a named zone rectangle or for the whole page.
package extract

import (
	"sort"
	"strings"

	"github.com/rachidben91-web/demat-bt-bdsn/internal/pdfsource"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/textnorm"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/zones"
)

// InBBox returns the text of every run whose anchor point falls inside the
// rectangle, bounds included, concatenated in approximate reading order
// (top-to-bottom, left-to-right) and normalized.
func InBBox(items []pdfsource.TextItem, box zones.BBox) string {
	var picked []pdfsource.TextItem
	for _, it := range items {
		if box.Contains(it.X, it.Y) {
			picked = append(picked, it)
		}
	}
	return join(picked)
}

// InZone extracts the text of the named zone. A nil registry or an
// unregistered zone yields an empty string; absence of a zone is a normal
// condition, never an error.
func InZone(items []pdfsource.TextItem, reg *zones.Registry, name string) string {
	box, ok := reg.Lookup(name)
	if !ok {
		return ""
	}
	return InBBox(items, box)
}

// FullPage returns every run on the page in reading order, normalized. Used
// for whole-page document-type classification.
func FullPage(items []pdfsource.TextItem) string {
	picked := make([]pdfsource.TextItem, len(items))
	copy(picked, items)
	return join(picked)
}

func join(picked []pdfsource.TextItem) string {
	sort.SliceStable(picked, func(i, j int) bool {
		if picked[i].Y != picked[j].Y {
			return picked[i].Y > picked[j].Y
		}
		return picked[i].X < picked[j].X
	})

	parts := make([]string, 0, len(picked))
	for _, it := range picked {
		if s := strings.TrimSpace(it.Text); s != "" {
			parts = append(parts, s)
		}
	}
	return textnorm.Clean(strings.Join(parts, " "))
}
