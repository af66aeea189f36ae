// Package export writes per-work-order PDFs and day-level roundup documents
// from an extraction result. Page extraction reuses the source PDF; the day
// brief is generated from scratch.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"codeberg.org/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/rachidben91-web/demat-bt-bdsn/internal/segmenter"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/workorder"
)

// Exporter writes export artifacts for one source PDF into an output
// directory.
type Exporter struct {
	srcPath string
	outDir  string
}

// New returns an exporter rooted at outDir. The directory is created on
// first use.
func New(srcPath, outDir string) *Exporter {
	return &Exporter{srcPath: srcPath, outDir: outDir}
}

func (e *Exporter) ensureOutDir() error {
	if err := os.MkdirAll(e.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}

// WorkOrderPDF extracts the pages of one work order into a standalone PDF
// named after the order identifier. Returns the written file's path.
func (e *Exporter) WorkOrderPDF(o *workorder.WorkOrder) (string, error) {
	if len(o.Docs) == 0 {
		return "", fmt.Errorf("work order %s has no pages", o.ID)
	}
	if err := e.ensureOutDir(); err != nil {
		return "", err
	}

	pages := make([]int, 0, len(o.Docs))
	for _, d := range o.Docs {
		pages = append(pages, d.Page)
	}

	out := filepath.Join(e.outDir, o.ID+".pdf")
	if err := api.CollectFile(e.srcPath, out, pageSelection(pages), nil); err != nil {
		return "", fmt.Errorf("extract pages for %s: %w", o.ID, err)
	}
	return out, nil
}

// DayPDF collects every page referenced by the given work orders into a
// single document, in ascending source order with duplicates removed.
func (e *Exporter) DayPDF(orders []*workorder.WorkOrder, name string) (string, error) {
	seen := map[int]bool{}
	var pages []int
	for _, o := range orders {
		for _, d := range o.Docs {
			if !seen[d.Page] {
				seen[d.Page] = true
				pages = append(pages, d.Page)
			}
		}
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("no pages to export")
	}
	sort.Ints(pages)

	if err := e.ensureOutDir(); err != nil {
		return "", err
	}
	out := filepath.Join(e.outDir, name)
	if err := api.CollectFile(e.srcPath, out, pageSelection(pages), nil); err != nil {
		return "", fmt.Errorf("extract day pages: %w", err)
	}
	return out, nil
}

// pageSelection formats page numbers for the PDF engine's page-selection
// syntax.
func pageSelection(pages []int) []string {
	sel := make([]string, len(pages))
	for i, p := range pages {
		sel[i] = strconv.Itoa(p)
	}
	return sel
}

// DayBrief generates a one-or-more page A4 summary sheet of the extraction
// result: one line per work order with its schedule, object, team and page
// span. Returns the written file's path.
func (e *Exporter) DayBrief(res *segmenter.Result, title string) (string, error) {
	if err := e.ensureOutDir(); err != nil {
		return "", err
	}

	doc := fpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, tr(fmt.Sprintf("%d bons de travail", len(res.Orders))), "", 1, "L", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "B", 9)
	doc.SetFillColor(230, 230, 230)
	headers := []struct {
		label string
		width float64
	}{
		{"BT", 30}, {"Date", 20}, {"Objet", 55}, {"Équipe", 35}, {"Horaire", 28}, {"Pages", 12},
	}
	for _, h := range headers {
		doc.CellFormat(h.width, 7, tr(h.label), "1", 0, "L", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 9)
	for _, o := range res.Orders {
		team := ""
		for i, m := range o.Team {
			if i > 0 {
				team += ", "
			}
			team += m.Name
		}
		horaire := workorder.FormatDuration(o.Duree)
		if slot, ok := workorder.ExtractTimeSlot(o.Duree, o.Designation); ok {
			horaire = slot.Text
		}

		doc.CellFormat(30, 6, tr(o.ID), "1", 0, "L", false, 0, "")
		doc.CellFormat(20, 6, tr(o.DatePrevue), "1", 0, "L", false, 0, "")
		doc.CellFormat(55, 6, tr(clip(o.Objet, 38)), "1", 0, "L", false, 0, "")
		doc.CellFormat(35, 6, tr(clip(team, 24)), "1", 0, "L", false, 0, "")
		doc.CellFormat(28, 6, tr(horaire), "1", 0, "L", false, 0, "")
		doc.CellFormat(12, 6, tr(fmt.Sprintf("%d", len(o.Docs))), "1", 0, "R", false, 0, "")
		doc.Ln(-1)
	}

	out := filepath.Join(e.outDir, "synthese.pdf")
	if err := doc.OutputFileAndClose(out); err != nil {
		return "", fmt.Errorf("write day brief: %w", err)
	}
	return out, nil
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
