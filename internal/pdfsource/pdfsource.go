// Package pdfsource wraps the underlying PDF engine behind the narrow
// contract the extraction pipeline needs: positioned text runs and an
// embedded-image count per page.
package pdfsource

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextItem is one positioned run of text as reported by the PDF text layer.
// X and Y are the run's anchor point in page coordinates.
type TextItem struct {
	Text string
	X    float64
	Y    float64
}

// PageSource is the page-content primitive consumed by the segmenter. Pages
// are numbered from 1.
type PageSource interface {
	NumPages() int
	// TextItems returns every positioned text run on the page. A failure to
	// read the page's text content is fatal to the caller's extraction pass.
	TextItems(pageNum int) ([]TextItem, error)
	// ImageCount returns the number of embedded image objects on the page.
	// Failures here are non-fatal; callers skip image-based heuristics.
	ImageCount(pageNum int) (int, error)
}

// PageReadError reports that the PDF engine could not retrieve the content
// of a page. It aborts the whole extraction pass.
type PageReadError struct {
	Page int
	Err  error
}

func (e *PageReadError) Error() string {
	return fmt.Sprintf("read page %d: %v", e.Page, e.Err)
}

func (e *PageReadError) Unwrap() error { return e.Err }

// Document is a PageSource backed by an open PDF file.
type Document struct {
	path string
	file *os.File
	rdr  *pdf.Reader
}

// Open opens a PDF file for page-level reading. maxFileSize caps the input
// size in bytes; zero disables the check.
func Open(path string, maxFileSize int64) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return nil, fmt.Errorf("file is not a PDF: %s", path)
	}
	if maxFileSize > 0 && info.Size() > maxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max: %d bytes)", info.Size(), maxFileSize)
	}

	f, rdr, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	return &Document{path: path, file: f, rdr: rdr}, nil
}

// Close releases the underlying file handle.
func (d *Document) Close() error {
	return d.file.Close()
}

// Path returns the path the document was opened from.
func (d *Document) Path() string { return d.path }

// NumPages returns the page count.
func (d *Document) NumPages() int {
	return d.rdr.NumPage()
}

// TextItems returns the positioned text runs of one page. Runs whose text is
// blank are dropped. The PDF library panics on malformed content streams, so
// the read is recover-protected and surfaces as a PageReadError.
func (d *Document) TextItems(pageNum int) (items []TextItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			items = nil
			err = &PageReadError{Page: pageNum, Err: fmt.Errorf("text content: %v", r)}
		}
	}()

	page := d.rdr.Page(pageNum)
	if page.V.IsNull() {
		return nil, &PageReadError{Page: pageNum, Err: fmt.Errorf("page object is null")}
	}

	for _, t := range page.Content().Text {
		s := strings.TrimSpace(t.S)
		if s == "" {
			continue
		}
		items = append(items, TextItem{Text: s, X: t.X, Y: t.Y})
	}
	return items, nil
}

// ImageCount counts image XObjects in the page's resource dictionary.
func (d *Document) ImageCount(pageNum int) (count int, err error) {
	defer func() {
		if r := recover(); r != nil {
			count = 0
			err = fmt.Errorf("image scan page %d: %v", pageNum, r)
		}
	}()

	page := d.rdr.Page(pageNum)
	if page.V.IsNull() {
		return 0, fmt.Errorf("image scan page %d: page object is null", pageNum)
	}

	resources := page.V.Key("Resources")
	if resources.IsNull() {
		return 0, nil
	}
	xObjects := resources.Key("XObject")
	if xObjects.IsNull() || xObjects.Kind() != pdf.Dict {
		return 0, nil
	}

	for _, key := range xObjects.Keys() {
		obj := xObjects.Key(key)
		if obj.IsNull() {
			continue
		}
		subtype := obj.Key("Subtype")
		if subtype.IsNull() || subtype.Name() != "Image" {
			continue
		}
		count++
	}
	return count, nil
}
