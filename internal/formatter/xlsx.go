package formatter

import (
	"fmt"

	"github.com/desertthunder/acx/internal/models"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the workbook written by [ContactsToXLSX].
const (
	SheetAllContacts = "Tous les contacts"
	SheetStats       = "Statistiques"
	SheetSimple      = "Contacts Simplifiés"
)

// contactWidths are the column widths of the full contact sheets, in characters.
var contactWidths = []float64{5, 30, 35, 15, 15, 15, 40, 12, 30, 30, 18, 10, 8, 15}

var accountSheets = []struct {
	name        string
	accountType string
}{
	{"Enseignants", models.AccountTeacherTransfer},
	{"Candidats", models.AccountTeacherCandidate},
	{"Écoles", models.AccountSchool},
}

// ContactsToXLSX builds a workbook with every contact, the statistics, a short contact list,
// and one sheet per account type that has contacts.
func ContactsToXLSX(contacts []models.Contact) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetAllContacts); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeSheet(f, SheetAllContacts, contactHeaders, contactRows(contacts), contactWidths); err != nil {
		return nil, err
	}

	var stats [][]any
	for _, row := range statsRows(ComputeStats(contacts)) {
		stats = append(stats, []any{row.label, row.value})
	}
	if err := writeSheet(f, SheetStats, []string{"Statistique", "Valeur"}, stats, []float64{35, 15}); err != nil {
		return nil, err
	}

	simple := make([][]any, 0, len(contacts))
	for _, c := range contacts {
		simple = append(simple, []any{orNA(c.Nom), orNA(c.Email), c.Phone(0), c.AccountType})
	}
	if err := writeSheet(f, SheetSimple, []string{"Nom", "Email", "Téléphone Principal", "Type"}, simple, []float64{30, 35, 15, 18}); err != nil {
		return nil, err
	}

	for _, sheet := range accountSheets {
		subset := FilterByAccountType(contacts, sheet.accountType)
		if len(subset) == 0 {
			continue
		}
		if err := writeSheet(f, sheet.name, contactHeaders, contactRows(subset), contactWidths); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func contactRows(contacts []models.Contact) [][]any {
	rows := make([][]any, 0, len(contacts))
	for _, c := range contacts {
		record := contactRecord(c)
		row := make([]any, len(record))
		row[0] = c.Index
		for i := 1; i < len(record); i++ {
			row[i] = record[i]
		}
		rows = append(rows, row)
	}
	return rows
}

// writeSheet fills sheet, creating it when missing, with a header row and rows below it.
func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any, widths []float64) error {
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
		}
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %q headers: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %q row %d: %w", sheet, i+1, err)
		}
	}

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("failed to size %q column %s: %w", sheet, col, err)
		}
	}
	return nil
}
