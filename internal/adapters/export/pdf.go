package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/vncsmyrnk/election/internal/core/domain"
)

var pdfColumns = []struct {
	title string
	width float64
	align string
}{
	{"Candidate", 70, "L"},
	{"Party", 55, "L"},
	{"Votes", 30, "R"},
	{"Percentage", 35, "R"},
}

const pdfRowHeight = 8

// WritePDF renders a paginated US Letter document with one table per
// position. Page numbers are printed in the footer.
func WritePDF(w io.Writer, results *domain.ElectionResults, generatedAt time.Time) error {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetTitle("Election Results: "+results.Election.Title, true)
	pdf.SetCreationDate(generatedAt)
	pdf.SetModificationDate(generatedAt)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, tr("Election Results: "+results.Election.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Generated on: "+generatedAt.UTC().Format(time.RFC3339), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	for _, p := range results.Positions {
		// Keep the heading on the same page as at least the table header.
		_, pageHeight := pdf.GetPageSize()
		_, _, _, bottom := pdf.GetMargins()
		if pdf.GetY()+3*pdfRowHeight > pageHeight-bottom {
			pdf.AddPage()
		}

		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 9, tr("Position: "+p.PositionTitle), "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetFillColor(128, 128, 128)
		pdf.SetTextColor(245, 245, 245)
		for _, col := range pdfColumns {
			pdf.CellFormat(col.width, pdfRowHeight, col.title, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 10)
		pdf.SetFillColor(245, 245, 220)
		pdf.SetTextColor(0, 0, 0)
		for _, c := range p.Candidates {
			pdfRow(pdf, tr(c.Name), tr(c.Party), strconv.FormatInt(c.VoteCount, 10), FormatPercentage(c.Percentage))
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdfRow(pdf, "Total Votes", "", strconv.FormatInt(p.TotalVotes, 10), totalPercentage(p.TotalVotes))
		pdf.Ln(6)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}

func pdfRow(pdf *fpdf.Fpdf, cells ...string) {
	for i, col := range pdfColumns {
		pdf.CellFormat(col.width, pdfRowHeight, cells[i], "1", 0, col.align, true, 0, "")
	}
	pdf.Ln(-1)
}
