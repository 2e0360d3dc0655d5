package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/acx/internal/models"
	"github.com/desertthunder/acx/internal/services"
	"github.com/desertthunder/acx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	PreviewView
	ConfirmView
	MigrateView
	ResultView
)

// recentOutcomes is how many per-record lines the migrate view keeps on screen.
const recentOutcomes = 8

// RunHooks connect a run to the ledger and report writer. Either hook may be nil.
type RunHooks struct {
	// Start runs before the engine and may amend the options, e.g. to pin the run ID.
	Start func(opts tasks.MigrationOptions) tasks.MigrationOptions
	// Finish persists the run and returns the report path. err is the engine error, if any.
	Finish func(result *tasks.MigrationResult, err error) (string, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	source       services.DocumentReader
	engine       *tasks.MigrationEngine
	opts         tasks.MigrationOptions
	hooks        RunHooks
	width        int
	height       int
	records      list.Model
	profiles     []*models.SourceProfile
	spinner      spinner.Model
	bar          progress.Model
	progressChan chan tasks.ProgressUpdate
	done         chan migrationDone
	finished     chan migrationDone // copy of done for [Model.Wait]
	cancel       context.CancelFunc
	stopping     bool
	progress     tasks.ProgressUpdate
	recent       []models.Outcome
	result       *tasks.MigrationResult
	reportPath   string
	reportErr    error
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, source services.DocumentReader, engine *tasks.MigrationEngine, opts tasks.MigrationOptions, hooks RunHooks) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.title.UnsetMarginBottom()

	return &Model{
		ctx:     ctx,
		view:    LoadingView,
		source:  source,
		engine:  engine,
		opts:    opts,
		hooks:   hooks,
		records: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		spinner: s,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init initializes the TUI by fetching the source records to preview.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchRecords())
}

// Result returns the last finished run, or nil.
func (m *Model) Result() *tasks.MigrationResult {
	return m.result
}

// Err returns the error that stopped the last run, if any.
func (m *Model) Err() error {
	return m.err
}

// Wait collects a run the program exited without seeing finish, e.g. when it was killed.
// The run is cancelled, its progress drained, and the partial result kept for [Model.Result].
// It returns at once when no run is in flight.
func (m *Model) Wait() {
	if m.finished == nil {
		return
	}
	if m.cancel != nil {
		m.cancel()
	}

	progressChan := m.progressChan
	for {
		select {
		case _, ok := <-progressChan:
			if !ok {
				progressChan = nil
			}
		case d := <-m.finished:
			m.complete(d)
			return
		}
	}
}

func (m *Model) complete(d migrationDone) {
	m.result = d.result
	m.err = d.err
	m.reportPath = d.reportPath
	m.reportErr = d.reportErr
	m.view = ResultView
	m.progressChan = nil
	m.done = nil
	m.finished = nil
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.records.SetSize(msg.Width-4, msg.Height-8)
		m.bar.Width = min(max(msg.Width-8, 10), 60)
		return m, nil

	case spinner.TickMsg:
		if m.view != LoadingView && m.view != MigrateView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.view {
		case LoadingView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case PreviewView:
			return m.handlePreviewKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case MigrateView:
			return m.handleMigrateKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	if m.view == PreviewView {
		var cmd tea.Cmd
		m.records, cmd = m.records.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgRecordsFetched:
		data := msg.data.(recordsFetched)
		if data.err != nil {
			m.err = data.err
			m.view = ResultView
			return m, nil
		}
		m.profiles = data.profiles
		m.records.SetItems(recordItems(data.profiles))
		m.records.Title = fmt.Sprintf("Source profiles on %s", m.source.Name())
		m.view = PreviewView
		return m, nil

	case MsgProgressUpdate:
		update := msg.data.(tasks.ProgressUpdate)
		m.progress = update
		if o, ok := update.Data.(models.Outcome); ok {
			m.recent = append(m.recent, o)
			if len(m.recent) > recentOutcomes {
				m.recent = m.recent[len(m.recent)-recentOutcomes:]
			}
		}
		return m, m.waitForProgress()

	case MsgMigrationComplete:
		m.complete(msg.data.(migrationDone))
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoadingView:
		return fmt.Sprintf("%s Fetching source profiles...\n", m.spinner.View())
	case PreviewView:
		return m.renderPreview()
	case ConfirmView:
		return m.renderConfirm()
	case MigrateView:
		return m.renderMigrate()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePreviewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.records.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.records, cmd = m.records.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if len(m.profiles) > 0 {
			m.view = ConfirmView
		}
		return m, nil
	case key.Matches(msg, m.keys.dryRun):
		m.opts.DryRun = !m.opts.DryRun
		return m, nil
	}

	var cmd tea.Cmd
	m.records, cmd = m.records.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit), key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back):
		m.view = PreviewView
		return m, nil
	case key.Matches(msg, m.keys.dryRun):
		m.opts.DryRun = !m.opts.DryRun
		return m, nil
	case key.Matches(msg, m.keys.yes):
		m.view = MigrateView
		return m, tea.Batch(m.spinner.Tick, m.startMigration())
	}
	return m, nil
}

// handleMigrateKeys stops the run between records on quit. The partial result still
// arrives as a completion message so it can be reported.
func (m *Model) handleMigrateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.stop) && m.cancel != nil {
		m.stopping = true
		m.cancel()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = LoadingView
		m.result = nil
		m.err = nil
		m.reportPath = ""
		m.reportErr = nil
		m.recent = nil
		m.stopping = false
		m.progress = tasks.ProgressUpdate{}
		return m, tea.Batch(m.spinner.Tick, m.fetchRecords())
	}
	return m, nil
}

func (m *Model) fetchRecords() tea.Cmd {
	return func() tea.Msg {
		docs, err := m.source.ListDocuments(m.ctx, services.Query{Limit: m.opts.Limit})
		if err != nil {
			return recordsFetchedMsg(nil, err)
		}
		profiles := make([]*models.SourceProfile, 0, len(docs))
		for _, doc := range docs {
			p := models.DecodeSourceProfile(doc)
			if m.opts.Email != "" && !strings.EqualFold(p.Email, m.opts.Email) {
				continue
			}
			profiles = append(profiles, p)
		}
		return recordsFetchedMsg(profiles, nil)
	}
}

// startMigration runs the engine in the background. Progress flows through progressChan;
// the final result is handed over on done once progressChan is closed.
func (m *Model) startMigration() tea.Cmd {
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	m.recent = nil
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.done = make(chan migrationDone, 1)
	m.finished = make(chan migrationDone, 1)

	progressChan, done, finished, opts, hooks := m.progressChan, m.done, m.finished, m.opts, m.hooks
	go func() {
		if hooks.Start != nil {
			opts = hooks.Start(opts)
		}

		var d migrationDone
		d.result, d.err = m.engine.Run(ctx, opts, progressChan)
		if hooks.Finish != nil {
			d.reportPath, d.reportErr = hooks.Finish(d.result, d.err)
		}
		finished <- d
		done <- d
		close(progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progressChan, done := m.progressChan, m.done
	return func() tea.Msg {
		if progressChan == nil {
			return migrationCompleteMsg(migrationDone{result: m.result, err: m.err})
		}

		update, ok := <-progressChan
		if !ok {
			return migrationCompleteMsg(<-done)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) modeLabel() string {
	return styles.Mode(m.opts.DryRun)
}

func (m *Model) renderPreview() string {
	helpView := m.help.ShortHelpView(m.keys.For(PreviewView))
	return fmt.Sprintf("%s\n\nMode: %s\n%s", m.records.View(), m.modeLabel(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Migrate %d profiles to %s?", len(m.profiles), m.engine.Destination()))

	invalid := 0
	for _, p := range m.profiles {
		if !tasks.ValidateMatricule(tasks.ResolveMatricule(p)) {
			invalid++
		}
	}

	info := fmt.Sprintf("\nMode: %s\nRecords: %d\nInvalid identifiers: %d\nSkip duplicates: %v\n",
		m.modeLabel(), len(m.profiles), invalid, m.opts.SkipDuplicates)

	helpView := m.help.ShortHelpView(m.keys.For(ConfirmView))

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderMigrate() string {
	title := styles.title.Render("Migrating Accounts")

	var phase string
	switch m.progress.Phase {
	case tasks.Enumerate:
		phase = fmt.Sprintf("%s %s", m.spinner.View(), m.progress.Message)
	case tasks.MigrateRecords, tasks.Complete:
		percent := 0.0
		if m.progress.Total > 0 {
			percent = float64(m.progress.Step) / float64(m.progress.Total)
		}
		phase = fmt.Sprintf("%s %d/%d\n%s", m.spinner.View(), m.progress.Step, m.progress.Total, m.bar.ViewAs(percent))
	default:
		phase = fmt.Sprintf("%s Processing...", m.spinner.View())
	}

	var lines []string
	for _, o := range m.recent {
		lines = append(lines, renderOutcome(o))
	}

	footer := m.help.ShortHelpView(m.keys.For(MigrateView))
	if m.stopping {
		footer = styles.warn.Render("Stopping after the current record...")
	}

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, phase, strings.Join(lines, "\n"), footer)
}

func renderOutcome(o models.Outcome) string {
	email := o.Email
	if email == "" {
		email = o.OldUID
	}
	line := styles.Marker(o.Status) + " " + email
	if o.Reason != "" {
		line += fmt.Sprintf(" (%s)", o.Reason)
	}
	return line
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView(m.keys.For(ResultView))

	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(fmt.Sprintf("Migration failed: %v", m.err)), helpView)
	}
	if m.result == nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("No result available"), helpView)
	}

	title := styles.ok.Render("✓ Migration Complete!")
	if m.result.Interrupted {
		title = styles.warn.Render("Migration Interrupted")
	}

	s := m.result.Summary
	summary := styles.box.Render(fmt.Sprintf(
		"Mode: %s\nSource: %s\nDestination: %s\nTotal: %d\nSuccess: %d\nSkipped: %d\nErrors: %d\nDuration: %.2fs",
		m.result.Mode, m.result.Source, m.result.Destination,
		s.Total, s.Success, s.Skipped, s.Errors, m.result.Duration().Seconds(),
	))

	var failed string
	if s.Errors > 0 {
		failed = "\n\n" + styles.warn.Render(fmt.Sprintf("%d records failed:", s.Errors))
		for _, o := range m.result.Outcomes {
			if o.Failed() {
				failed += fmt.Sprintf("\n  • %s: %s", orDash(o.Email), o.Reason)
			}
		}
	}

	var report string
	switch {
	case m.reportErr != nil:
		report = "\n\n" + styles.err.Render(fmt.Sprintf("Report not saved: %v", m.reportErr))
	case m.reportPath != "":
		report = "\n\nReport: " + m.reportPath
	}

	return fmt.Sprintf("%s\n%s%s%s\n\n%s", title, summary, failed, report, helpView)
}
