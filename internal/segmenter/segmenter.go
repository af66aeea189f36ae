// Package segmenter walks a multi-work-order PDF page by page, detects
// title pages and assembles each work order together with the attachment
// pages that follow it.
package segmenter

import (
	"context"
	"errors"

	"github.com/rachidben91-web/demat-bt-bdsn/internal/badges"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/classify"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/doctype"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/extract"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/pdfsource"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/roster"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/workorder"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/zones"
)

// ErrZonesNotLoaded is returned when extraction is attempted without a zone
// registry. Zone coordinates are the only way to find title pages, so there
// is no degraded mode for this one.
var ErrZonesNotLoaded = errors.New("zone registry not loaded")

// Result is one full extraction pass over a source PDF.
type Result struct {
	// Orders holds the assembled work orders in source-page order.
	Orders []*workorder.WorkOrder `json:"workOrders"`
	// CountsByNNI counts work orders per roster-resolved technician.
	CountsByNNI map[string]int `json:"countsByNNI"`
}

// Segmenter runs the page-sequence state machine. The zone registry is
// required; classifier, badge engine and roster are optional collaborators
// that degrade to defaults when nil.
type Segmenter struct {
	reg      *zones.Registry
	dc       *doctype.Classifier
	be       *badges.Engine
	ro       *roster.Roster
	progress func(page, total int)
}

// New assembles a segmenter from its collaborators.
func New(reg *zones.Registry, dc *doctype.Classifier, be *badges.Engine, ro *roster.Roster) *Segmenter {
	if dc == nil {
		dc = doctype.New()
	}
	return &Segmenter{reg: reg, dc: dc, be: be, ro: ro}
}

// SetProgress registers a per-page progress callback.
func (s *Segmenter) SetProgress(fn func(page, total int)) {
	s.progress = fn
}

// Run performs one extraction pass. Pages are visited strictly in order; a
// title page opens a new work order, every following non-title page is
// classified and attached to it, and pages before the first title page are
// dropped. A page whose text cannot be read aborts the whole pass.
func (s *Segmenter) Run(ctx context.Context, src pdfsource.PageSource) (*Result, error) {
	if s.reg == nil || s.reg.Len() == 0 {
		return nil, ErrZonesNotLoaded
	}

	res := &Result{
		Orders:      []*workorder.WorkOrder{},
		CountsByNNI: map[string]int{},
	}

	var current *workorder.WorkOrder
	total := src.NumPages()

	for page := 1; page <= total; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.progress != nil {
			s.progress(page, total)
		}

		items, err := src.TextItems(page)
		if err != nil {
			return nil, err
		}

		if workorder.IsTitleText(extract.InZone(items, s.reg, zones.ZoneBTNum)) {
			current = s.openOrder(page, items, res)
			res.Orders = append(res.Orders, current)
			continue
		}

		if current == nil {
			continue
		}
		current.Docs = append(current.Docs, workorder.DocRef{
			Page: page,
			Type: s.classifyPage(items, src, page),
		})
	}

	return res, nil
}

// openOrder builds a work order from a title page: zone fields, team,
// badges. Badges are computed here and only here; attachment pages never
// feed the badge engine.
func (s *Segmenter) openOrder(page int, items []pdfsource.TextItem, res *Result) *workorder.WorkOrder {
	f := workorder.ParseFields(items, s.reg)
	team := workorder.ParseTeam(f.Realisation)

	for i, m := range team {
		tech, ok := s.ro.ByNNI(m.NNI)
		if !ok {
			continue
		}
		if tech.Name != "" {
			team[i].Name = tech.Name
		}
		res.CountsByNNI[tech.NNI]++
	}

	o := workorder.NewFromFields(page, f, team)
	o.Badges = s.be.Detect(o)

	// Orders without a badge still need a displayable category; the
	// hardcoded fallback classifier never fails.
	if len(o.Badges) == 0 {
		cat := classify.Intervention(o)
		o.Category = &cat
	}
	return o
}

// classifyPage tags one attachment page. An image-count failure only
// disables the photo heuristic.
func (s *Segmenter) classifyPage(items []pdfsource.TextItem, src pdfsource.PageSource, page int) workorder.DocType {
	imageCount, imgErr := src.ImageCount(page)
	return s.dc.Classify(extract.FullPage(items), imageCount, imgErr == nil)
}
