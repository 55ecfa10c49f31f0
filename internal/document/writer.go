package document

import (
	"bytes"
	"time"

	"github.com/go-pdf/fpdf"
)

// Page geometry in points on an A4 portrait page.
const (
	pageMargin     = 50.0
	logoWidth      = 60.0
	logoY          = 30.0
	leftLogoX      = 50.0
	rightLogoX     = 480.0
	titleY         = 100.0
	signatureX     = 70.0
	signatureWidth = 180.0
	fontFamily     = "Helvetica"
)

// writePDF lays out one document. The PDF metadata dates are pinned to
// issuedAt so identical input yields identical bytes.
func writePDF(layout Layout, logo *Asset, signature []byte, issuedAt time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetCreationDate(issuedAt)
	pdf.SetModificationDate(issuedAt)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(layout.Title, true)
	pdf.SetAuthor("Scouts et Guides de Cluses", true)

	// core fonts are cp1252 encoded
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pageWidth, _ := pdf.GetPageSize()
	contentWidth := pageWidth - 2*pageMargin

	if logo != nil {
		opts := fpdf.ImageOptions{ImageType: logo.ImageType}
		pdf.RegisterImageOptionsReader(logo.Name, opts, bytes.NewReader(logo.Data))
		pdf.ImageOptions(logo.Name, leftLogoX, logoY, logoWidth, 0, false, opts, 0, "")
		pdf.ImageOptions(logo.Name, rightLogoX, logoY, logoWidth, 0, false, opts, 0, "")
	}

	pdf.SetXY(pageMargin, titleY)
	pdf.SetFont(fontFamily, "B", 18)
	pdf.MultiCell(contentWidth, 22, tr(layout.Title), "", "C", false)
	pdf.Ln(24)

	for _, section := range layout.Sections {
		pdf.SetFont(fontFamily, "BU", 14)
		pdf.CellFormat(contentWidth, 20, tr(section.Heading), "", 1, "L", false, 0, "")
		for _, line := range section.Lines {
			if line.Paragraph {
				pdf.SetFont(fontFamily, "", 11)
				pdf.MultiCell(contentWidth, 14, tr(line.Text), "", "J", false)
				continue
			}
			pdf.SetFont(fontFamily, "", 12)
			pdf.CellFormat(contentWidth, 16, tr(line.Text), "", 1, "L", false, 0, "")
		}
		pdf.Ln(12)
	}

	pdf.SetFont(fontFamily, "", 11)
	pdf.SetX(signatureX)
	pdf.CellFormat(0, 16, tr(layout.Signature.Label), "", 1, "L", false, 0, "")

	sigOpts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("signature", sigOpts, bytes.NewReader(signature))
	// flowing places the image at the cursor and breaks the page if needed
	pdf.ImageOptions("signature", signatureX, pdf.GetY(), signatureWidth, 0, true, sigOpts, 0, "")

	pdf.Ln(20)
	pdf.SetFont(fontFamily, "", 10)
	for _, line := range layout.Footer {
		pdf.SetX(signatureX)
		pdf.CellFormat(0, 14, tr(line), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
