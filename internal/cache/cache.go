// Package cache persists the latest extraction result so the server can
// restart without re-reading the source PDF. The store holds exactly one
// snapshot; every save replaces it wholesale.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rachidben91-web/demat-bt-bdsn/internal/segmenter"
)

// ErrEmpty is returned by Load and Info when no snapshot has been saved.
var ErrEmpty = errors.New("cache is empty")

// Snapshot is one persisted extraction result with its provenance. PDFData
// optionally carries the source document itself so a restart can serve
// per-order exports without the original file.
type Snapshot struct {
	Result  *segmenter.Result `json:"result"`
	PDFName string            `json:"pdfName"`
	PDFData []byte            `json:"-"`
	SavedAt time.Time         `json:"savedAt"`
}

// Info describes a stored snapshot without decoding the result payload.
type Info struct {
	PDFName    string    `json:"pdfName"`
	SavedAt    time.Time `json:"savedAt"`
	OrderCount int       `json:"orderCount"`
	HasPDF     bool      `json:"hasPdf"`
}

// Store is a single-snapshot cache backed by a SQLite file. The zero value
// is not usable; call Open.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS snapshot (
	id          TEXT PRIMARY KEY CHECK (id = 'current'),
	orders_json BLOB NOT NULL,
	order_count INTEGER NOT NULL,
	pdf_name    TEXT NOT NULL,
	pdf_blob    BLOB,
	saved_at    TEXT NOT NULL
);`

// Open opens or creates the cache database at path. Use ":memory:" for an
// ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the stored snapshot with res. pdfData may be nil when the
// caller does not want the source document persisted alongside the result.
func (s *Store) Save(ctx context.Context, res *segmenter.Result, pdfName string, pdfData []byte) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshot (id, orders_json, order_count, pdf_name, pdf_blob, saved_at)
		VALUES ('current', ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			orders_json = excluded.orders_json,
			order_count = excluded.order_count,
			pdf_name    = excluded.pdf_name,
			pdf_blob    = excluded.pdf_blob,
			saved_at    = excluded.saved_at`,
		payload, len(res.Orders), pdfName, pdfData, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot, or ErrEmpty when none exists.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	var (
		payload []byte
		pdfName string
		pdfData []byte
		savedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT orders_json, pdf_name, pdf_blob, saved_at FROM snapshot WHERE id = 'current'`).
		Scan(&payload, &pdfName, &pdfData, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var res segmenter.Result
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	ts, err := time.Parse(time.RFC3339, savedAt)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot timestamp: %w", err)
	}

	return &Snapshot{Result: &res, PDFName: pdfName, PDFData: pdfData, SavedAt: ts}, nil
}

// Info returns snapshot metadata without decoding the payload.
func (s *Store) Info(ctx context.Context) (*Info, error) {
	var (
		info    Info
		savedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT pdf_name, saved_at, order_count, pdf_blob IS NOT NULL FROM snapshot WHERE id = 'current'`).
		Scan(&info.PDFName, &savedAt, &info.OrderCount, &info.HasPDF)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot info: %w", err)
	}

	info.SavedAt, err = time.Parse(time.RFC3339, savedAt)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot timestamp: %w", err)
	}
	return &info, nil
}

// Clear removes the stored snapshot. Clearing an empty store is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshot`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}
