// package formatter provides functions to export destination contact sheets to various formats (CSV, Markdown, plain text, Excel)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/acx/internal/models"
	"github.com/desertthunder/acx/internal/shared"
)

// Export formats accepted by [WriteContactsExport].
const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
	FormatXLSX     = "xlsx"
)

const na = "N/A"

// ContactStats aggregates contact coverage over an export.
type ContactStats struct {
	Total            int
	WithEmail        int
	WithPhone        int
	WithBoth         int
	TeacherTransfer  int
	TeacherCandidate int
	School           int
	Other            int
}

// ComputeStats counts contact coverage and account types.
func ComputeStats(contacts []models.Contact) ContactStats {
	var s ContactStats
	for _, c := range contacts {
		s.Total++
		hasEmail := c.Email != ""
		hasPhone := len(c.Telephones) > 0
		if hasEmail {
			s.WithEmail++
		}
		if hasPhone {
			s.WithPhone++
		}
		if hasEmail && hasPhone {
			s.WithBoth++
		}

		switch c.AccountType {
		case models.AccountTeacherTransfer:
			s.TeacherTransfer++
		case models.AccountTeacherCandidate:
			s.TeacherCandidate++
		case models.AccountSchool:
			s.School++
		default:
			s.Other++
		}
	}
	return s
}

// FilterByAccountType returns the contacts whose account type is accountType.
func FilterByAccountType(contacts []models.Contact, accountType string) []models.Contact {
	filtered := []models.Contact{}
	for _, c := range contacts {
		if c.AccountType == accountType {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

var contactHeaders = []string{
	"N°", "Nom", "Email", "Téléphone 1", "Téléphone 2", "Téléphone 3", "Tous les téléphones",
	"Matricule", "Fonction", "Zone Actuelle", "Type de Compte", "Vérifié", "Admin", "Date Création",
}

func contactRecord(c models.Contact) []string {
	return []string{
		fmt.Sprint(c.Index),
		orNA(c.Nom),
		orNA(c.Email),
		c.Phone(0),
		c.Phone(1),
		c.Phone(2),
		strings.Join(c.Telephones, ", "),
		orNA(c.Matricule),
		orNA(c.Fonction),
		orNA(c.ZoneActuelle),
		shared.OrDefault(c.AccountType, "unknown"),
		yesNo(c.Verified),
		yesNo(c.Admin),
		formatDate(c),
	}
}

// ContactsToCSV converts contacts to CSV with one row per profile and up to three phone columns.
func ContactsToCSV(contacts []models.Contact) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(contactHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, c := range contacts {
		if err := writer.Write(contactRecord(c)); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ContactsToMarkdown renders a statistics section followed by one contact table per account type.
func ContactsToMarkdown(contacts []models.Contact, title string) ([]byte, error) {
	var buf bytes.Buffer
	stats := ComputeStats(contacts)

	buf.WriteString(fmt.Sprintf("# %s\n\n", shared.OrDefault(title, "Contacts")))
	buf.WriteString("## Statistiques\n\n")
	buf.WriteString("| Statistique | Valeur |\n|---|---|\n")
	for _, row := range statsRows(stats) {
		buf.WriteString(fmt.Sprintf("| %s | %d |\n", row.label, row.value))
	}

	sections := []struct {
		title       string
		accountType string
	}{
		{"Enseignants", models.AccountTeacherTransfer},
		{"Candidats", models.AccountTeacherCandidate},
		{"Écoles", models.AccountSchool},
	}

	for _, section := range sections {
		subset := FilterByAccountType(contacts, section.accountType)
		if len(subset) == 0 {
			continue
		}
		buf.WriteString(fmt.Sprintf("\n## %s (%d)\n\n", section.title, len(subset)))
		buf.WriteString("| N° | Nom | Email | Téléphone | Matricule | Zone Actuelle |\n|---|---|---|---|---|---|\n")
		for _, c := range subset {
			buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s |\n",
				c.Index, mdEscape(orNA(c.Nom)), mdEscape(orNA(c.Email)), mdEscape(c.Phone(0)),
				mdEscape(orNA(c.Matricule)), mdEscape(orNA(c.ZoneActuelle))))
		}
	}

	return buf.Bytes(), nil
}

// ContactsToText converts contacts to a plain text listing with a statistics footer.
func ContactsToText(contacts []models.Contact) ([]byte, error) {
	var buf bytes.Buffer

	for _, c := range contacts {
		phones := strings.Join(c.Telephones, ", ")
		if phones == "" {
			phones = "Pas de téléphone"
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s - %s\n", c.Index, orNA(c.Nom), orNA(c.Email), phones))
	}

	buf.WriteString("\n")
	for _, row := range statsRows(ComputeStats(contacts)) {
		buf.WriteString(fmt.Sprintf("%-32s %d\n", row.label+":", row.value))
	}

	return buf.Bytes(), nil
}

// WriteContactsExport renders contacts in format and writes them to path.
//
// Defaults to contacts.{ext} in the working directory when path is empty.
func WriteContactsExport(contacts []models.Contact, format, path string) (string, error) {
	var (
		data []byte
		err  error
		ext  string
	)

	switch format {
	case FormatCSV, "":
		data, err = ContactsToCSV(contacts)
		ext = "csv"
	case FormatMarkdown, "md":
		data, err = ContactsToMarkdown(contacts, "Contacts")
		ext = "md"
	case FormatText, "text":
		data, err = ContactsToText(contacts)
		ext = "txt"
	case FormatXLSX, "excel":
		data, err = ContactsToXLSX(contacts)
		ext = "xlsx"
	default:
		return "", fmt.Errorf("%w: unsupported export format %q", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", ext, err)
	}

	if path == "" {
		path = "contacts." + ext
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", ext, err)
	}

	return path, nil
}

type statsRow struct {
	label string
	value int
}

func statsRows(s ContactStats) []statsRow {
	return []statsRow{
		{"Total utilisateurs", s.Total},
		{"Avec email", s.WithEmail},
		{"Avec téléphone", s.WithPhone},
		{"Avec email ET téléphone", s.WithBoth},
		{"Enseignants (Permutation)", s.TeacherTransfer},
		{"Candidats", s.TeacherCandidate},
		{"Écoles", s.School},
		{"Autres", s.Other},
	}
}

func orNA(s string) string {
	return shared.OrDefault(s, na)
}

func yesNo(b bool) string {
	if b {
		return "Oui"
	}
	return "Non"
}

func formatDate(c models.Contact) string {
	if c.CreatedAt == nil {
		return na
	}
	return c.CreatedAt.Format("02/01/2006")
}

func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
