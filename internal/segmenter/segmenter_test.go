package segmenter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rachidben91-web/demat-bt-bdsn/internal/badges"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/pdfsource"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/roster"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/workorder"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/zones"
)

const testZones = `{
  "pages": {
    "BT": {
      "BT_NUM":      {"bbox": {"x0": 0,   "y0": 700, "x1": 200, "y1": 760}},
      "OBJET":       {"bbox": {"x0": 0,   "y0": 640, "x1": 300, "y1": 699}},
      "REALISATION": {"bbox": {"x0": 0,   "y0": 500, "x1": 300, "y1": 560}},
      "OBSERVATIONS":{"bbox": {"x0": 0,   "y0": 400, "x1": 300, "y1": 460}}
    }
  }
}`

const testBadgeRules = `{
  "version": "test",
  "badges": [
    {"id": "fuite", "label": "Fuite", "color": "#f59e0b", "priority": 90,
     "rules": [{"any": ["FUITE", "SURVEILLANCE"]}]}
  ]
}`

type fakePage struct {
	items  []pdfsource.TextItem
	images int
	imgErr error
	txtErr error
}

type fakeSource struct {
	pages []fakePage
}

func (f *fakeSource) NumPages() int { return len(f.pages) }

func (f *fakeSource) TextItems(n int) ([]pdfsource.TextItem, error) {
	p := f.pages[n-1]
	if p.txtErr != nil {
		return nil, p.txtErr
	}
	return p.items, nil
}

func (f *fakeSource) ImageCount(n int) (int, error) {
	p := f.pages[n-1]
	return p.images, p.imgErr
}

func titlePage(bt, objet, realisation string) fakePage {
	return fakePage{items: []pdfsource.TextItem{
		{Text: bt, X: 10, Y: 720},
		{Text: objet, X: 10, Y: 660},
		{Text: realisation, X: 10, Y: 520},
	}}
}

func textPage(lines ...string) fakePage {
	p := fakePage{}
	y := 700.0
	for _, l := range lines {
		p.items = append(p.items, pdfsource.TextItem{Text: l, X: 10, Y: y})
		y -= 20
	}
	return p
}

func testSegmenter(t *testing.T) *Segmenter {
	t.Helper()
	reg, err := zones.Parse([]byte(testZones))
	require.NoError(t, err)
	rs, err := badges.ParseRules([]byte(testBadgeRules))
	require.NoError(t, err)
	ro := roster.New([]roster.Technician{{NNI: "A12345", Name: "Jean Dupont"}})
	return New(reg, nil, badges.NewEngine(rs), ro)
}

func testSource() *fakeSource {
	photo := textPage("Photo n°1")
	photo.images = 1
	return &fakeSource{pages: []fakePage{
		textPage("Page de garde sans numéro"), // before the first title page
		titlePage("BT0000000001", "Surveillance de fuite réseau", "Réalisé par A12345 DUPONT"),
		textPage("Procédure d'exécution", "Travaux gaz en charge"),
		photo,
		titlePage("BT0000000002", "Changement compteur", ""),
		textPage("FICHE AT", "Autorisation de travail"),
	}}
}

func TestRunAssemblesOrders(t *testing.T) {
	s := testSegmenter(t)
	res, err := s.Run(context.Background(), testSource())
	require.NoError(t, err)
	require.Len(t, res.Orders, 2)

	first, second := res.Orders[0], res.Orders[1]

	assert.Equal(t, "BT0000000001", first.ID)
	assert.Equal(t, 2, first.PageStart)
	assert.Equal(t, []workorder.DocRef{
		{Page: 2, Type: workorder.DocBT},
		{Page: 3, Type: workorder.DocPROC},
		{Page: 4, Type: workorder.DocPHOTO},
	}, first.Docs)

	assert.Equal(t, "BT0000000002", second.ID)
	assert.Equal(t, []workorder.DocRef{
		{Page: 5, Type: workorder.DocBT},
		{Page: 6, Type: workorder.DocAT},
	}, second.Docs)
}

func TestRunResolvesTeamAndCounts(t *testing.T) {
	s := testSegmenter(t)
	res, err := s.Run(context.Background(), testSource())
	require.NoError(t, err)

	team := res.Orders[0].Team
	require.Len(t, team, 1)
	assert.Equal(t, "A12345", team[0].NNI)
	// Roster name wins over the name parsed from the page.
	assert.Equal(t, "Jean Dupont", team[0].Name)

	assert.Equal(t, map[string]int{"A12345": 1}, res.CountsByNNI)
	assert.Empty(t, res.Orders[1].Team)
}

func TestRunDetectsBadgesOnTitlePageOnly(t *testing.T) {
	s := testSegmenter(t)
	res, err := s.Run(context.Background(), testSource())
	require.NoError(t, err)

	assert.Equal(t, []string{"fuite"}, res.Orders[0].Badges)
	// Attachment text never feeds the badge engine.
	assert.Empty(t, res.Orders[1].Badges)
}

func TestRunFallsBackToCategoryWithoutBadges(t *testing.T) {
	s := testSegmenter(t)
	res, err := s.Run(context.Background(), testSource())
	require.NoError(t, err)

	// The first order carries a badge, so no fallback category is needed.
	assert.Nil(t, res.Orders[0].Category)

	// The second order matches no badge rule but must still be displayable.
	second := res.Orders[1]
	require.NotNil(t, second.Category)
	assert.Equal(t, "CLIENTELE", second.Category.ID)
}

func TestRunCategoryDefaultsToAutre(t *testing.T) {
	s := testSegmenter(t)
	src := &fakeSource{pages: []fakePage{
		titlePage("BT0000000005", "Opération inconnue", ""),
	}}

	res, err := s.Run(context.Background(), src)
	require.NoError(t, err)
	require.NotNil(t, res.Orders[0].Category)
	assert.Equal(t, "AUTRE", res.Orders[0].Category.ID)
}

func TestRunUnknownNNIKeptUncounted(t *testing.T) {
	s := testSegmenter(t)
	src := &fakeSource{pages: []fakePage{
		titlePage("BT0000000003", "Maintenance", "Z99999 INCONNU"),
	}}

	res, err := s.Run(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, res.Orders[0].Team, 1)
	assert.Equal(t, "INCONNU", res.Orders[0].Team[0].Name)
	assert.Empty(t, res.CountsByNNI)
}

func TestRunRequiresZones(t *testing.T) {
	_, err := New(nil, nil, nil, nil).Run(context.Background(), testSource())
	assert.ErrorIs(t, err, ErrZonesNotLoaded)

	empty, perr := zones.Parse([]byte(`{"pages": {"BT": {}}}`))
	require.NoError(t, perr)
	_, err = New(empty, nil, nil, nil).Run(context.Background(), testSource())
	assert.ErrorIs(t, err, ErrZonesNotLoaded)
}

func TestRunAbortsOnPageReadError(t *testing.T) {
	s := testSegmenter(t)
	src := testSource()
	src.pages[2].txtErr = &pdfsource.PageReadError{Page: 3, Err: errors.New("boom")}

	_, err := s.Run(context.Background(), src)
	var pre *pdfsource.PageReadError
	require.ErrorAs(t, err, &pre)
	assert.Equal(t, 3, pre.Page)
}

func TestRunImageCountFailureSkipsPhotoHeuristic(t *testing.T) {
	s := testSegmenter(t)
	photo := textPage("Photo n°1")
	photo.images = 1
	photo.imgErr = errors.New("xobject scan failed")
	src := &fakeSource{pages: []fakePage{
		titlePage("BT0000000004", "Travaux", ""),
		photo,
	}}

	res, err := s.Run(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, workorder.DocDOC, res.Orders[0].Docs[1].Type)
}

func TestRunHonorsContext(t *testing.T) {
	s := testSegmenter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Run(ctx, testSource())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunReportsProgress(t *testing.T) {
	s := testSegmenter(t)
	var seen []int
	s.SetProgress(func(page, total int) {
		assert.Equal(t, 6, total)
		seen = append(seen, page)
	})

	_, err := s.Run(context.Background(), testSource())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, seen)
}

func TestRunIsIdempotent(t *testing.T) {
	s := testSegmenter(t)
	a, err := s.Run(context.Background(), testSource())
	require.NoError(t, err)
	b, err := s.Run(context.Background(), testSource())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
