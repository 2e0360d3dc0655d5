package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/acx/internal/models"
	"github.com/desertthunder/acx/internal/tasks"
)

var (
	_ list.Item = recordItem{}
)

// recordItem wraps a [models.SourceProfile] to implement [list.Item].
type recordItem struct {
	profile *models.SourceProfile
}

func (i recordItem) FilterValue() string { return i.profile.Email + " " + i.Title() }

func (i recordItem) Title() string {
	if name := tasks.ResolveFullName(i.profile); name != "" {
		return name
	}
	return i.profile.ID
}

func (i recordItem) Description() string {
	matricule := tasks.ResolveMatricule(i.profile)
	mark := "✓"
	if !tasks.ValidateMatricule(matricule) {
		mark = "✗"
	}
	email := i.profile.Email
	if email == "" {
		email = "(no email)"
	}
	return fmt.Sprintf("%s • %s %s", email, mark, orDash(matricule))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func recordItems(profiles []*models.SourceProfile) []list.Item {
	items := make([]list.Item, len(profiles))
	for i, p := range profiles {
		items[i] = recordItem{profile: p}
	}
	return items
}
