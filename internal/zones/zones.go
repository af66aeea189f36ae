// Package zones holds the static mapping from logical field names to
// rectangular regions on the work-order title page. Coordinates are in the
// PDF's native page space (origin bottom-left, y increasing upward).
package zones

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Canonical zone names on the BT title page.
const (
	ZoneBTNum            = "BT_NUM"
	ZoneObjet            = "OBJET"
	ZoneDatePrevue       = "DATE_PREVUE"
	ZoneDatePrevu        = "DATE_PREVU" // legacy spelling kept by older zone files
	ZoneLocalisation     = "LOCALISATION"
	ZoneClientNom        = "CLIENT_NOM"
	ZoneATNum            = "AT_NUM"
	ZoneRealisation      = "REALISATION"
	ZoneDesignation      = "DESIGNATION"
	ZoneDuree            = "DUREE"
	ZoneAnalyseDesRisque = "ANALYSE_DES_RISQUES"
	ZoneObservations     = "OBSERVATIONS"
)

// BBox is an axis-aligned rectangle in page coordinates.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Contains reports whether the point (x, y) lies inside the box, bounds
// included.
func (b BBox) Contains(x, y float64) bool {
	return x >= b.X0 && x <= b.X1 && y >= b.Y0 && y <= b.Y1
}

// Registry maps zone names to their rectangles. It is loaded once at startup
// and never mutated afterwards. A name missing from the registry is a valid
// state; extraction for that field yields an empty string.
type Registry struct {
	boxes map[string]BBox
}

type zoneFile struct {
	Pages struct {
		BT map[string]struct {
			BBox *BBox `json:"bbox"`
		} `json:"BT"`
	} `json:"pages"`
}

// Load reads a zone configuration file. A missing or unparseable file is an
// error; callers treat it as fatal to extraction since no field can be
// located without zones.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read zones file: %w", err)
	}
	return Parse(data)
}

// Parse builds a Registry from a zone configuration document.
func Parse(data []byte) (*Registry, error) {
	var zf zoneFile
	if err := json.Unmarshal(data, &zf); err != nil {
		return nil, fmt.Errorf("parse zones file: %w", err)
	}

	boxes := make(map[string]BBox, len(zf.Pages.BT))
	for name, z := range zf.Pages.BT {
		if z.BBox == nil {
			continue
		}
		bb := *z.BBox
		if bb.X1 <= bb.X0 || bb.Y1 <= bb.Y0 {
			return nil, fmt.Errorf("zone %q: degenerate bbox [%g %g %g %g]", name, bb.X0, bb.Y0, bb.X1, bb.Y1)
		}
		boxes[name] = bb
	}

	return &Registry{boxes: boxes}, nil
}

// Lookup returns the rectangle registered under name.
func (r *Registry) Lookup(name string) (BBox, bool) {
	if r == nil {
		return BBox{}, false
	}
	bb, ok := r.boxes[name]
	return bb, ok
}

// Names returns the registered zone names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.boxes))
	for name := range r.boxes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered zones.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.boxes)
}
