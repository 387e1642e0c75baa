package reporting

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/hashlock/wpacrack/internal/core/domain"
)

// PDFReportWriter renders a finished crack job as a one-page PDF, grounded on
// the executive-summary PDF layout (header, colored result box, stats table,
// footer) but scoped to a single job instead of a whole-network summary.
type PDFReportWriter struct{}

func NewPDFReportWriter() *PDFReportWriter {
	return &PDFReportWriter{}
}

func (w *PDFReportWriter) WriteReport(_ context.Context, job domain.CrackJob, result domain.CrackResult) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	w.addHeader(pdf, job)
	w.addResultBox(pdf, result)
	w.addDetails(pdf, job, result)
	w.addFooter(pdf, job)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: render pdf report: %v", domain.ErrInternal, err)
	}
	return buf.Bytes(), nil
}

func (w *PDFReportWriter) addHeader(pdf *gofpdf.Fpdf, job domain.CrackJob) {
	pdf.SetFont("Arial", "B", 22)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 14, "Handshake Crack Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 12)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 7, fmt.Sprintf("SSID: %s", job.SSID), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("AP: %s   Client: %s", job.APMac, job.ClientMac), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Key version: %s", job.KeyVersion), "", 1, "L", false, 0, "")
	pdf.Ln(6)
}

func (w *PDFReportWriter) addResultBox(pdf *gofpdf.Fpdf, result domain.CrackResult) {
	r, g, b := 52, 199, 89
	label := "NOT FOUND"
	if result.Found() {
		r, g, b = 220, 53, 69
		label = "PASSWORD RECOVERED"
	}

	pdf.SetFillColor(r, g, b)
	y := pdf.GetY()
	pdf.Rect(20, y, 170, 26, "F")

	pdf.SetFont("Arial", "B", 18)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(25, y+4)
	pdf.CellFormat(160, 10, label, "", 1, "L", false, 0, "")

	if result.Found() {
		pdf.SetFont("Arial", "B", 14)
		pdf.SetXY(25, y+14)
		pdf.CellFormat(160, 8, *result.Password, "", 0, "L", false, 0, "")
	}

	pdf.SetY(y + 32)
}

func (w *PDFReportWriter) addDetails(pdf *gofpdf.Fpdf, job domain.CrackJob, result domain.CrackResult) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Run Statistics", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	rows := []struct{ label, value string }{
		{"Source", fmt.Sprintf("%s (%s)", job.SourceKind, job.SourceDesc)},
		{"Attempts", fmt.Sprintf("%d", result.Attempts)},
		{"Duration", result.Duration.Round(1000000).String()},
		{"Rate", fmt.Sprintf("%.0f candidates/sec", result.Rate)},
		{"Status", string(job.Status)},
	}

	pdf.SetFont("Arial", "", 11)
	for _, row := range rows {
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(50, 8, row.label+":", "", 0, "L", false, 0, "")
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(0, 8, row.value, "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)
}

func (w *PDFReportWriter) addFooter(pdf *gofpdf.Fpdf, job domain.CrackJob) {
	pdf.SetY(-20)
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(3)

	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 5, fmt.Sprintf("Job ID: %s", job.ID), "", 1, "C", false, 0, "")
}
