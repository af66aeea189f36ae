// Package doctype classifies attachment pages by document type from their
// full-page text and embedded-image count. Title pages are detected upstream
// and never reach this classifier.
//
// The signatures are deliberately tight: the standard work-order form is full
// of decoy keywords (every title page mentions the execution procedure, work
// authorizations and site plans in its boilerplate), so each rule matches on
// document-title phrases or keyword co-occurrence rather than bare tokens.
package doctype

import (
	"regexp"
	"strings"

	"github.com/rachidben91-web/demat-bt-bdsn/internal/textnorm"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/workorder"
)

// DefaultPhotoTextLimit is the compact text length below which a page with
// at least one embedded image is considered a field photo.
const DefaultPhotoTextLimit = 120

// Rule is one entry of the classification cascade. A page matches when:
// no Exclude keyword is present, at least one Any keyword is present (if
// set), every All keyword is present (if set), at least one Any2 keyword is
// present (if set), and Pattern matches (if set). PhotoHeuristic entries
// instead require a near-empty page carrying at least one image.
type Rule struct {
	Tag            workorder.DocType
	Any            []string
	All            []string
	Any2           []string
	Exclude        []string
	Pattern        *regexp.Regexp
	PhotoHeuristic bool
}

// Classifier evaluates an ordered rule list, first match wins.
type Classifier struct {
	rules          []Rule
	photoTextLimit int
}

// boilerplateRe strips the title-page boilerplate sentence that merely
// mentions the execution procedure, so it cannot trigger a PROC match on
// ordinary continuation pages of the work-order form.
var boilerplateRe = regexp.MustCompile(`(?:SELON |SUIVANT )?LA PROCEDURE D EXECUTION (?:SERA|EST|DOIT|DES TRAVAUX)`)

// New returns a classifier with the standard cascade and the default photo
// text threshold.
func New() *Classifier {
	return NewWithPhotoLimit(DefaultPhotoTextLimit)
}

// NewWithPhotoLimit returns the standard cascade with a custom photo text
// threshold.
func NewWithPhotoLimit(limit int) *Classifier {
	if limit <= 0 {
		limit = DefaultPhotoTextLimit
	}
	return &Classifier{photoTextLimit: limit, rules: defaultRules()}
}

func defaultRules() []Rule {
	return []Rule{
		// Execution procedures carry their own title; the boilerplate
		// sentence is stripped before evaluation.
		{Tag: workorder.DocPROC, Any: []string{"PROCEDURE D EXECUTION", "MODE OPERATOIRE"}},

		{Tag: workorder.DocFOR113, Any: []string{"FOR 113", "FICHE DE PREPARATION ET DE SUIVI"}},

		{Tag: workorder.DocAT, Any: []string{"FICHE AT"}},
		{Tag: workorder.DocAT, Pattern: regexp.MustCompile(`N D AT\s+AT\d{3,}`)},
		{
			Tag:     workorder.DocAT,
			All:     []string{"AUTORISATION DE TRAVAIL"},
			Any2:    []string{"DELIVREE", "DELIVRANCE", "SIGNATAIRE", "RECEVEUR"},
			Exclude: []string{"BON DE TRAVAIL"},
		},

		{Tag: workorder.DocSTREET, Any: []string{"GOOGLE STREET VIEW", "STREET VIEW", "GOOGLE MAPS"}},

		// Cartography pages: co-occurring signatures only, never a bare
		// "PLAN" token, which shows up in unrelated boilerplate tables.
		{Tag: workorder.DocPLAN, All: []string{"FORMAT", "PAYSAGE"}, Any2: []string{"A0", "A1", "A2", "A3", "A4"}},
		{Tag: workorder.DocPLAN, All: []string{"ECHELLE"}, Any2: []string{"GRDF", "GAZ RESEAU"}},
		{Tag: workorder.DocPLAN, All: []string{"LAMBERT", "COMMUNE"}},
		{Tag: workorder.DocPLAN, Any: []string{"RECOLLEMENT", "CARTOGRAPHIE"}},

		{Tag: workorder.DocPHOTO, PhotoHeuristic: true},

		// Looser fallbacks, evaluated only when nothing above matched.
		{Tag: workorder.DocPLAN, Any: []string{"PLAN DE SITUATION", "PLAN DE MASSE", "PLAN D IMPLANTATION", "SCHEMA DE RESEAU"}},
		{Tag: workorder.DocPROC, Any: []string{"ORDONNANCEMENT", "CONSIGNES PARTICULIERES", "INSTRUCTIONS TECHNIQUES"}},
	}
}

// Classify tags one attachment page. fullText is the page's whole text in
// reading order; imageCount is the page's embedded-image count and
// imageCountOK reports whether it could be retrieved — when false the photo
// heuristic is skipped and classification falls through to later rules.
func (c *Classifier) Classify(fullText string, imageCount int, imageCountOK bool) workorder.DocType {
	key := boilerplateRe.ReplaceAllString(textnorm.Key(fullText), " ")
	compact := textnorm.CompactLen(fullText)

	for _, r := range c.rules {
		if r.PhotoHeuristic {
			if imageCountOK && imageCount > 0 && compact < c.photoTextLimit {
				return r.Tag
			}
			continue
		}
		if r.matches(key) {
			return r.Tag
		}
	}
	return workorder.DocDOC
}

func (r Rule) matches(key string) bool {
	has := func(k string) bool { return strings.Contains(key, textnorm.Key(k)) }

	for _, k := range r.Exclude {
		if has(k) {
			return false
		}
	}
	if len(r.Any) > 0 && !anyOf(key, r.Any) {
		return false
	}
	for _, k := range r.All {
		if !has(k) {
			return false
		}
	}
	if len(r.Any2) > 0 && !anyOf(key, r.Any2) {
		return false
	}
	if r.Pattern != nil && !r.Pattern.MatchString(key) {
		return false
	}
	// A rule with no positive condition never matches.
	return len(r.Any) > 0 || len(r.All) > 0 || len(r.Any2) > 0 || r.Pattern != nil
}

func anyOf(key string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(key, textnorm.Key(k)) {
			return true
		}
	}
	return false
}
