package workorder

import (
	"github.com/rachidben91-web/demat-bt-bdsn/internal/extract"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/pdfsource"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/zones"
)

// Fields holds the raw zone text of one title page. Every field is an empty
// string when its zone is absent from the registry or produced no text.
type Fields struct {
	BTNum             string
	Objet             string
	DatePrevue        string
	Client            string
	Localisation      string
	ATNum             string
	Realisation       string
	Designation       string
	Duree             string
	AnalyseDesRisques string
	Observations      string
}

// ParseFields applies the zone registry to the page's text runs. It is a
// record builder with no control flow of its own; absent zones yield empty
// strings, never errors.
func ParseFields(items []pdfsource.TextItem, reg *zones.Registry) Fields {
	f := Fields{
		BTNum:             extract.InZone(items, reg, zones.ZoneBTNum),
		Objet:             extract.InZone(items, reg, zones.ZoneObjet),
		DatePrevue:        extract.InZone(items, reg, zones.ZoneDatePrevue),
		Client:            extract.InZone(items, reg, zones.ZoneClientNom),
		Localisation:      extract.InZone(items, reg, zones.ZoneLocalisation),
		ATNum:             PickATID(extract.InZone(items, reg, zones.ZoneATNum)),
		Realisation:       extract.InZone(items, reg, zones.ZoneRealisation),
		Designation:       extract.InZone(items, reg, zones.ZoneDesignation),
		Duree:             extract.InZone(items, reg, zones.ZoneDuree),
		AnalyseDesRisques: extract.InZone(items, reg, zones.ZoneAnalyseDesRisque),
		Observations:      extract.InZone(items, reg, zones.ZoneObservations),
	}

	// Older zone files spell the scheduled-date zone without the final E.
	if f.DatePrevue == "" {
		f.DatePrevue = extract.InZone(items, reg, zones.ZoneDatePrevu)
	}
	return f
}

// NewFromFields constructs a WorkOrder from a parsed title page. The title
// page itself is always the first docs entry.
func NewFromFields(page int, f Fields, team []TeamMember) *WorkOrder {
	return &WorkOrder{
		ID:                PickBTID(f.BTNum),
		PageStart:         page,
		Objet:             f.Objet,
		DatePrevue:        f.DatePrevue,
		Client:            f.Client,
		Localisation:      f.Localisation,
		ATNum:             f.ATNum,
		Designation:       f.Designation,
		Duree:             f.Duree,
		AnalyseDesRisques: f.AnalyseDesRisques,
		Observations:      f.Observations,
		Team:              team,
		Docs:              []DocRef{{Page: page, Type: DocBT}},
		Badges:            []string{},
	}
}
