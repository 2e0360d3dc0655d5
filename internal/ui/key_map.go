package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings for every view; [keyMap.For] picks the ones shown in help.
type keyMap struct {
	enter   key.Binding
	back    key.Binding
	yes     key.Binding
	no      key.Binding
	dryRun  key.Binding
	stop    key.Binding
	restart key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "migrate")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "start")),
		no:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "cancel")),
		dryRun:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "toggle dry run")),
		stop:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "stop after the current record")),
		restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload records")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// For returns the help bindings of a view.
func (k keyMap) For(view ViewState) []key.Binding {
	switch view {
	case PreviewView:
		return []key.Binding{k.enter, k.dryRun, k.quit}
	case ConfirmView:
		return []key.Binding{k.yes, k.no, k.dryRun}
	case MigrateView:
		return []key.Binding{k.stop}
	case ResultView:
		return []key.Binding{k.restart, k.quit}
	default:
		return []key.Binding{k.quit}
	}
}
