package models

import "time"

// Contact is the exported contact sheet row for one destination profile.
type Contact struct {
	Index        int // 1-based position in the listing
	Nom          string
	Email        string
	Telephones   []string
	Matricule    string
	Fonction     string
	ZoneActuelle string
	AccountType  string
	Verified     bool
	Admin        bool
	CreatedAt    *time.Time
}

// ContactFromDocument reads the contact fields of a destination profile document.
func ContactFromDocument(index int, doc Document) Contact {
	d := doc.Data
	c := Contact{
		Index:        index,
		Nom:          stringField(d, "nom"),
		Email:        stringField(d, "email"),
		Telephones:   stringSlice(d, "telephones"),
		Matricule:    stringField(d, "matricule"),
		Fonction:     stringField(d, "fonction"),
		ZoneActuelle: stringField(d, "zoneActuelle"),
		AccountType:  stringField(d, "accountType"),
	}
	if c.Telephones == nil {
		c.Telephones = []string{}
	}
	if v, ok := d["isVerified"].(bool); ok {
		c.Verified = v
	}
	if v, ok := d["isAdmin"].(bool); ok {
		c.Admin = v
	}
	if t, ok := d["createdAt"].(time.Time); ok && !t.IsZero() {
		c.CreatedAt = &t
	}
	return c
}

// Phone returns the i-th phone number, or an empty string.
func (c Contact) Phone(i int) string {
	if i < len(c.Telephones) {
		return c.Telephones[i]
	}
	return ""
}
