// Package classify provides the hardcoded fallback intervention classifier.
// It is independent of the configurable badge engine and needs no external
// configuration, so every work order always has a displayable category even
// when the badge rules are missing or match nothing.
package classify

import (
	"strings"

	"github.com/rachidben91-web/demat-bt-bdsn/internal/textnorm"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/workorder"
)

// Fallback category when nothing else matches.
var Autre = workorder.Category{ID: "AUTRE", Label: "AUTRE", Color: "#64748b", Icon: "⬜"}

type rule struct {
	cat      workorder.Category
	keywords []string
}

// cascade is evaluated in order, first match wins.
var cascade = []rule{
	{
		cat: workorder.Category{ID: "CLIENTELE", Label: "MHS/MES", Color: "#2563eb", Icon: "🟦"},
		keywords: []string{
			"MISE EN SERVICE", "MISE OU REMISE EN SERVICE", "REMISE EN SERVICE",
			"MISE HORS SERVICE", "MHS", "MES", "COMPTEUR", "POSTE CLIENT",
		},
	},
	{
		cat:      workorder.Category{ID: "MAINTENANCE", Label: "MAINT CI-CM", Color: "#10b981", Icon: "🟩"},
		keywords: []string{"MAINTENANCE", "CI CM", "CICM", "ROBINET", "PREVENTIF"},
	},
	{
		cat:      workorder.Category{ID: "SURVEILLANCE", Label: "SURVEILLANCE", Color: "#f59e0b", Icon: "🟧"},
		keywords: []string{"SURVEILLANCE", "ADF", "SUIVI", "ALERTE", "FUITE"},
	},
	{
		cat:      workorder.Category{ID: "LOCA", Label: "LOCA", Color: "#ef4444", Icon: "🟥"},
		keywords: []string{"LOCALISATION", "LOCA", "ODEUR"},
	},
	{
		cat:      workorder.Category{ID: "TRAVAUX", Label: "TRAVAUX", Color: "#8b5cf6", Icon: "🟪"},
		keywords: []string{"TRAVAUX", "CHANTIER", "BRANCHEMENT", "SOUDURE"},
	},
	{
		cat:      workorder.Category{ID: "RSF_SAP", Label: "RSF/SAP", Color: "#eab308", Icon: "🟨"},
		keywords: []string{"RSF", "SAP", "RECHERCHE DE FUITE", "A PIED"},
	},
	{
		cat:      workorder.Category{ID: "ADMIN", Label: "ADMIN", Color: "#a855f7", Icon: "🟣"},
		keywords: []string{"ADMINISTRATIF", "REUNION", "FORMATION", "EAP", "MAGASIN", "ASTREINTE"},
	},
	{
		cat:      workorder.Category{ID: "CLIENTELE", Label: "CLIENT", Color: "#2563eb", Icon: "🟦"},
		keywords: []string{"ACTIVITE CLIENTELE", "ACTIVITE CLIENT"},
	},
}

// Intervention classifies a work order from its objet and observations
// fields. Always returns a category; Autre is the default.
func Intervention(o *workorder.WorkOrder) workorder.Category {
	text := textnorm.Key(o.Objet + " " + o.Observations)

	for _, r := range cascade {
		for _, k := range r.keywords {
			if strings.Contains(text, textnorm.Key(k)) {
				return r.cat
			}
		}
	}
	return Autre
}
