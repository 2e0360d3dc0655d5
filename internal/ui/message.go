package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/acx/internal/models"
	"github.com/desertthunder/acx/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgRecordsFetched MsgKind = iota
	MsgProgressUpdate
	MsgMigrationComplete
)

type recordsFetched struct {
	profiles []*models.SourceProfile
	err      error
}

// migrationDone is the final state of one run, including where its report went.
type migrationDone struct {
	result     *tasks.MigrationResult
	err        error
	reportPath string
	reportErr  error
}

// recordsFetchedMsg is the constructor for [MsgRecordsFetched]
func recordsFetchedMsg(profiles []*models.SourceProfile, err error) Msg {
	return Msg{kind: MsgRecordsFetched, data: recordsFetched{profiles, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// migrationCompleteMsg is the constructor for [MsgMigrationComplete]
func migrationCompleteMsg(done migrationDone) Msg {
	return Msg{kind: MsgMigrationComplete, data: done}
}
