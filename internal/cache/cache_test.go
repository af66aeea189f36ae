package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rachidben91-web/demat-bt-bdsn/internal/segmenter"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/workorder"
)

func memStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult() *segmenter.Result {
	return &segmenter.Result{
		Orders: []*workorder.WorkOrder{{
			ID:        "BT0000000001",
			PageStart: 1,
			Objet:     "Surveillance de fuite",
			Team:      []workorder.TeamMember{{NNI: "A12345", Name: "Jean Dupont"}},
			Docs:      []workorder.DocRef{{Page: 1, Type: workorder.DocBT}},
			Badges:    []string{"fuite"},
		}},
		CountsByNNI: map[string]int{"A12345": 1},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := memStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleResult(), "tournee-2026-08-31.pdf", nil))

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tournee-2026-08-31.pdf", snap.PDFName)
	assert.False(t, snap.SavedAt.IsZero())
	assert.Equal(t, sampleResult(), snap.Result)
}

func TestLoadEmpty(t *testing.T) {
	s := memStore(t)
	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = s.Info(context.Background())
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestSaveReplacesSnapshot(t *testing.T) {
	s := memStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleResult(), "first.pdf", nil))

	second := sampleResult()
	second.Orders = append(second.Orders, &workorder.WorkOrder{ID: "BT0000000002"})
	require.NoError(t, s.Save(ctx, second, "second.pdf", nil))

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second.pdf", snap.PDFName)
	assert.Len(t, snap.Result.Orders, 2)

	info, err := s.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, info.OrderCount)
	assert.Equal(t, "second.pdf", info.PDFName)
}

func TestClear(t *testing.T) {
	s := memStore(t)
	ctx := context.Background()

	require.NoError(t, s.Clear(ctx)) // empty store, no-op

	require.NoError(t, s.Save(ctx, sampleResult(), "x.pdf", nil))
	require.NoError(t, s.Clear(ctx))

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestOpenFileBacked(t *testing.T) {
	path := t.TempDir() + "/cache.db"

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), sampleResult(), "x.pdf", []byte("%PDF-1.4 fake")))
	require.NoError(t, s.Close())

	// Reopen and read back across process-lifetime boundary.
	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	snap, err := s2.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "BT0000000001", snap.Result.Orders[0].ID)
	assert.Equal(t, []byte("%PDF-1.4 fake"), snap.PDFData)
}

func TestSnapshotWithoutPDFBlob(t *testing.T) {
	s := memStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleResult(), "x.pdf", nil))

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap.PDFData)

	info, err := s.Info(ctx)
	require.NoError(t, err)
	assert.False(t, info.HasPDF)
}

func TestSnapshotInfoReportsPDFBlob(t *testing.T) {
	s := memStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleResult(), "x.pdf", []byte("%PDF-1.4")))

	info, err := s.Info(ctx)
	require.NoError(t, err)
	assert.True(t, info.HasPDF)
}
