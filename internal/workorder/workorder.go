// Package workorder defines the central work-order ("Bon de Travail") record
// produced by extraction, plus the parsers that build it from zone text.
package workorder

import (
	"regexp"
	"strings"
)

// DocType tags a page with the kind of document it carries. Exactly one tag
// per page.
type DocType string

const (
	DocBT     DocType = "BT"     // work-order title page
	DocAT     DocType = "AT"     // work authorization
	DocPROC   DocType = "PROC"   // execution procedure
	DocPLAN   DocType = "PLAN"   // site plan / map
	DocPHOTO  DocType = "PHOTO"  // field photo
	DocSTREET DocType = "STREET" // street-view capture
	DocFOR113 DocType = "FOR113" // preparation-and-tracking form
	DocDOC    DocType = "DOC"    // generic / unclassified
)

// DocTypes lists every tag in display order.
var DocTypes = []DocType{DocBT, DocAT, DocPROC, DocPLAN, DocPHOTO, DocSTREET, DocFOR113, DocDOC}

// DocRef binds one source-PDF page to its document type.
type DocRef struct {
	Page int     `json:"page"`
	Type DocType `json:"type"`
}

// TeamMember is one technician reference parsed from the realization notes.
type TeamMember struct {
	NNI  string `json:"nni"`
	Name string `json:"name"`
}

// Category is a display category with its timeline color and icon. It is
// the fallback shown for orders that matched no badge.
type Category struct {
	ID    string `json:"category"`
	Label string `json:"label"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// WorkOrder is one physical work order and everything bound to it in the
// source PDF. Field names mirror the source form.
type WorkOrder struct {
	ID                string       `json:"id"`
	PageStart         int          `json:"pageStart"`
	Objet             string       `json:"objet"`
	DatePrevue        string       `json:"datePrevue"`
	Client            string       `json:"client"`
	Localisation      string       `json:"localisation"`
	ATNum             string       `json:"atNum"`
	Designation       string       `json:"designation"`
	Duree             string       `json:"duree"`
	AnalyseDesRisques string       `json:"analyseDesRisques"`
	Observations      string       `json:"observations"`
	Team              []TeamMember `json:"team"`
	Docs              []DocRef     `json:"docs"`
	Badges            []string     `json:"badges"`
	Category          *Category    `json:"category,omitempty"`
}

var (
	btNumRe = regexp.MustCompile(`(?i)BT\d{8,14}`)
	atNumRe = regexp.MustCompile(`(?i)AT\d{3,}`)
)

// IsTitleText reports whether the BT_NUM zone text identifies a title page.
func IsTitleText(text string) bool {
	return btNumRe.MatchString(text)
}

// PickBTID extracts the work-order identifier from zone text, uppercased.
// Returns "" when no identifier is present.
func PickBTID(text string) string {
	return strings.ToUpper(btNumRe.FindString(text))
}

// PickATID extracts a linked authorization identifier, uppercased.
func PickATID(text string) string {
	return strings.ToUpper(atNumRe.FindString(text))
}
