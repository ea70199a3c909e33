package notify

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/aiact-formation/auditor/internal/model"
	"github.com/aiact-formation/auditor/internal/report"
)

// ChecklistFilename is the attachment name of the checklist PDF.
const ChecklistFilename = "checklist-ai-act.pdf"

// Checklist holds what goes into the PDF.
type Checklist struct {
	RiskLabel      string
	RiskPercentage float64
	Findings       []string
	Date           time.Time
}

// BuildChecklist renders the quiz-result checklist as a PDF document.
func BuildChecklist(c Checklist) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Checklist AI Act", true)
	pdf.SetAuthor("AI Act Formation", true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(30, 58, 138)
	pdf.CellFormat(0, 12, tr("Votre checklist de conformité AI Act"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(107, 114, 128)
	pdf.CellFormat(0, 6, tr("Générée le "+c.Date.Format("02/01/2006")), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(31, 41, 55)
	pdf.CellFormat(0, 8, tr("Votre diagnostic"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, tr(fmt.Sprintf("Niveau de risque : %s", c.RiskLabel)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, tr(fmt.Sprintf("Score de risque : %.0f %%", c.RiskPercentage)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if len(c.Findings) > 0 {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, tr("Points d'attention"), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		for _, f := range c.Findings {
			pdf.MultiCell(0, 6, tr("- "+f), "", "L", false)
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, tr("Checklist de conformité"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, item := range report.Checklist() {
		pdf.CellFormat(6, 6, "", "1", 0, "L", false, 0, "")
		pdf.CellFormat(3, 6, "", "", 0, "L", false, 0, "")
		pdf.MultiCell(0, 6, tr(item), "", "L", false)
		pdf.Ln(1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render checklist pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// ChecklistFor builds the checklist content of a quiz result.
func ChecklistFor(req model.QuizResultRequest, riskLabel string, now time.Time) Checklist {
	return Checklist{
		RiskLabel:      riskLabel,
		RiskPercentage: req.RiskPercentage,
		Findings:       req.Findings,
		Date:           now,
	}
}
