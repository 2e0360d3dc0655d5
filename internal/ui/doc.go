// Package ui implements an interactive terminal interface for migration runs using bubbletea's Elm architecture.
//
// The TUI walks through one run at a time:
//  1. [LoadingView] : Fetch source profiles
//  2. [PreviewView] : Browse profiles with identifier validity marks, toggle dry run
//  3. [ConfirmView] : Confirm the run and its mode
//  4. [MigrateView] : Follow per-record outcomes and overall progress
//  5. [ResultView] : Display the summary box, failed records and report path
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the MigrationEngine; the model reads each one, so the engine never runs ahead of the view by more than the buffer.
// Quitting mid-run cancels between records; the partial result is still reported.
// [RunHooks] let the caller open a ledger entry before the engine starts and persist the run when it ends.
// If the program is killed mid-run, [Model.Wait] collects the partial result the views never saw.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, d, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
