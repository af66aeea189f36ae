package doctype

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rachidben91-web/demat-bt-bdsn/internal/workorder"
)

func TestClassifyCascade(t *testing.T) {
	c := New()

	tests := []struct {
		name       string
		text       string
		imageCount int
		imageOK    bool
		want       workorder.DocType
	}{
		{
			name: "genuine procedure title",
			text: "PROCEDURE D'EXECUTION Tranchée rue des Lilas",
			want: workorder.DocPROC,
		},
		{
			name: "accented lowercase procedure",
			text: "Procédure d'Exécution du chantier",
			want: workorder.DocPROC,
		},
		{
			name: "mode operatoire beats boilerplate",
			text: "La procédure d'exécution sera appliquée sur site. MODE OPERATOIRE soudure PE",
			want: workorder.DocPROC,
		},
		{
			name: "boilerplate alone is not a procedure",
			text: "Rappel: la procédure d'exécution sera appliquée par l'équipe avant intervention",
			want: workorder.DocDOC,
		},
		{
			name: "for113 form",
			text: "FOR-113 FICHE DE PREPARATION ET DE SUIVI",
			want: workorder.DocFOR113,
		},
		{
			name: "authorization with labeled id",
			text: "AUTORISATION DE TRAVAIL N° d'AT: AT00099",
			want: workorder.DocAT,
		},
		{
			name: "authorization with delivery keyword",
			text: "AUTORISATION DE TRAVAIL délivrée au receveur",
			want: workorder.DocAT,
		},
		{
			name: "authorization mention inside work-order boilerplate",
			text: "BON DE TRAVAIL — une autorisation de travail délivrée est requise",
			want: workorder.DocDOC,
		},
		{
			name: "street view capture",
			text: "Google Street View — 12 rue des Acacias",
			want: workorder.DocSTREET,
		},
		{
			name: "plan by paper format",
			text: "FORMAT PAYSAGE A3 — édition du 14/02/2026",
			want: workorder.DocPLAN,
		},
		{
			name: "plan by lambert grid",
			text: "Coordonnées LAMBERT 93 — COMMUNE DE MELUN",
			want: workorder.DocPLAN,
		},
		{
			name: "plan by cartography keyword",
			text: "Extrait de CARTOGRAPHIE réseau moyenne pression",
			want: workorder.DocPLAN,
		},
		{
			name: "bare plan token stays generic",
			text: "Voir le plan de charge hebdomadaire en annexe du document",
			want: workorder.DocDOC,
		},
		{
			name: "plan fallback signature",
			text: "PLAN DE SITUATION du branchement",
			want: workorder.DocPLAN,
		},
		{
			name: "procedure fallback signature",
			text: "ORDONNANCEMENT des interventions de la semaine",
			want: workorder.DocPROC,
		},
		{
			name:       "photo: short text with image",
			text:       "IMG_0042",
			imageCount: 1,
			imageOK:    true,
			want:       workorder.DocPHOTO,
		},
		{
			name:       "text-heavy page never a photo",
			text:       "Compte rendu détaillé de l'intervention du 14 février, incluant l'ensemble des relevés de pression effectués sur le poste de détente, les observations de l'équipe et les suites à donner pour la maintenance.",
			imageCount: 5,
			imageOK:    true,
			want:       workorder.DocDOC,
		},
		{
			name:       "image count unavailable skips photo branch",
			text:       "IMG_0042",
			imageCount: 0,
			imageOK:    false,
			want:       workorder.DocDOC,
		},
		{
			name: "default",
			text: "Annexe diverse sans signature connue",
			want: workorder.DocDOC,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.text, tt.imageCount, tt.imageOK)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyAccentInsensitive(t *testing.T) {
	c := New()
	a := c.Classify("Procédure d'Exécution", 0, true)
	b := c.Classify("PROCEDURE D EXECUTION", 0, true)
	assert.Equal(t, a, b)
	assert.Equal(t, workorder.DocPROC, a)
}

func TestPhotoLimitTunable(t *testing.T) {
	tight := NewWithPhotoLimit(5)
	assert.Equal(t, workorder.DocDOC, tight.Classify("IMG_0042", 1, true))

	wide := NewWithPhotoLimit(200)
	assert.Equal(t, workorder.DocPHOTO, wide.Classify("IMG_0042", 1, true))
}
