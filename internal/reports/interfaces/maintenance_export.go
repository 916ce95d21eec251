package interfaces

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	reports "github.com/Hossam-Nazih/gestion-de-maintenance/internal/reports/domain"
)

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatBound(ts time.Time, open string) string {
	if ts.IsZero() {
		return open
	}
	return ts.Format("2006-01-02")
}

// BuildMaintenancePDF renders a minimal PDF for a period summary.
func BuildMaintenancePDF(summary reports.Summary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Rapport de maintenance")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Periode: %s - %s",
		formatBound(summary.Period.From, "debut"), formatBound(summary.Period.To, "aujourd'hui")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Genere: %s", summary.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Transitions enregistrees: %d", summary.Total))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(70, 6, "Statut", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Occurrences", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, status := range sortedKeys(summary.ByStatus) {
		pdf.CellFormat(70, 6, status, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%d", summary.ByStatus[status]), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(70, 6, "Priorite", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Occurrences", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, priority := range sortedKeys(summary.ByPriority) {
		pdf.CellFormat(70, 6, priority, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%d", summary.ByPriority[priority]), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(40, 6, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Equipement", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Depuis", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Vers", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, e := range summary.Breakdowns {
		pdf.CellFormat(40, 6, e.RecordedAt.Format("2006-01-02 15:04"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, e.EquipmentID, "1", 0, "C", false, 0, "")
		pdf.CellFormat(45, 6, e.FromStatus, "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 6, e.ToStatus, "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildMaintenanceXLSX renders a minimal XLSX for a period summary.
func BuildMaintenanceXLSX(summary reports.Summary) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "resume"
	historySheet := "historique"
	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(historySheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Rapport de maintenance")
	_ = f.SetCellValue(summarySheet, "A3", "Periode debut")
	_ = f.SetCellValue(summarySheet, "B3", formatBound(summary.Period.From, ""))
	_ = f.SetCellValue(summarySheet, "A4", "Periode fin")
	_ = f.SetCellValue(summarySheet, "B4", formatBound(summary.Period.To, ""))
	_ = f.SetCellValue(summarySheet, "A5", "Genere")
	_ = f.SetCellValue(summarySheet, "B5", summary.GeneratedAt.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A6", "Transitions")
	_ = f.SetCellValue(summarySheet, "B6", summary.Total)

	row := 8
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), "Statut")
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), "Occurrences")
	for _, status := range sortedKeys(summary.ByStatus) {
		row++
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), status)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), summary.ByStatus[status])
	}
	row += 2
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), "Priorite")
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), "Occurrences")
	for _, priority := range sortedKeys(summary.ByPriority) {
		row++
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), priority)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), summary.ByPriority[priority])
	}

	_ = f.SetCellValue(historySheet, "A1", "Date")
	_ = f.SetCellValue(historySheet, "B1", "Equipement")
	_ = f.SetCellValue(historySheet, "C1", "Nom")
	_ = f.SetCellValue(historySheet, "D1", "Depuis")
	_ = f.SetCellValue(historySheet, "E1", "Vers")
	_ = f.SetCellValue(historySheet, "F1", "Priorite")
	for i, e := range summary.Breakdowns {
		r := i + 2
		_ = f.SetCellValue(historySheet, fmt.Sprintf("A%d", r), e.RecordedAt.Format(time.RFC3339))
		_ = f.SetCellValue(historySheet, fmt.Sprintf("B%d", r), e.EquipmentID)
		_ = f.SetCellValue(historySheet, fmt.Sprintf("C%d", r), e.EquipmentName)
		_ = f.SetCellValue(historySheet, fmt.Sprintf("D%d", r), e.FromStatus)
		_ = f.SetCellValue(historySheet, fmt.Sprintf("E%d", r), e.ToStatus)
		_ = f.SetCellValue(historySheet, fmt.Sprintf("F%d", r), e.Priority)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
