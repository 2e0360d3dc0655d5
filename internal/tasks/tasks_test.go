package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/desertthunder/acx/internal/models"
	"github.com/desertthunder/acx/internal/shared"
	tu "github.com/desertthunder/acx/internal/testing"
)

func defaultOptions() MigrationOptions {
	return MigrationOptions{
		SkipDuplicates:           true,
		Password:                 "Temp123!",
		RollbackOnProfileFailure: true,
	}
}

func newEngine(src *tu.MockSourceStore, dest *tu.MockDestinationStore) *MigrationEngine {
	e := NewMigrationEngine(src, dest, nil)
	clock := time.Date(2025, 12, 2, 10, 0, 0, 0, time.UTC)
	e.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return e
}

func seedSource(n int) *tu.MockSourceStore {
	src := tu.NewMockSourceStore()
	for i := 1; i <= n; i++ {
		src.AddDocument(fmt.Sprintf("src-%d", i), map[string]any{
			"prenom":    "User",
			"nom":       fmt.Sprintf("%d", i),
			"email":     fmt.Sprintf("user%d@x.com", i),
			"matricule": fmt.Sprintf("%06dA", i),
		})
	}
	return src
}

func TestMigrationEngineRun(t *testing.T) {
	ctx := context.Background()

	t.Run("end to end", func(t *testing.T) {
		src := tu.NewMockSourceStore().AddDocument("old-1", map[string]any{
			"email":     "a@x.com",
			"matricule": "123456a",
			"nom":       "A B",
		})
		dest := tu.NewMockDestinationStore()

		result, err := newEngine(src, dest).Run(ctx, defaultOptions(), nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		want := models.Summary{Total: 1, Success: 1, Skipped: 0, Errors: 0}
		if result.Summary != want {
			t.Errorf("expected summary %+v, got %+v", want, result.Summary)
		}
		if len(dest.Principals()) != 1 {
			t.Fatalf("expected one principal, got %d", len(dest.Principals()))
		}
		if dest.DocumentCount() != 1 {
			t.Fatalf("expected one profile, got %d", dest.DocumentCount())
		}

		outcome := result.Outcomes[0]
		if outcome.Status != models.StatusSuccess || outcome.OldUID != "old-1" || outcome.Matricule != "123456A" {
			t.Errorf("unexpected outcome: %+v", outcome)
		}

		doc, ok := dest.Document(outcome.NewUID)
		if !ok {
			t.Fatalf("expected profile keyed by %s", outcome.NewUID)
		}
		if doc["matricule"] != "123456A" {
			t.Errorf("expected matricule 123456A, got %v", doc["matricule"])
		}
		if doc["accountType"] != models.AccountTeacherTransfer {
			t.Errorf("expected accountType %s, got %v", models.AccountTeacherTransfer, doc["accountType"])
		}
		if doc["freeQuotaLimit"] != int64(5) {
			t.Errorf("expected freeQuotaLimit 5, got %v", doc["freeQuotaLimit"])
		}
		if doc["nom"] != "A B" {
			t.Errorf("expected nom 'A B', got %v", doc["nom"])
		}
		if result.Mode != models.ModeProduction || result.Interrupted {
			t.Errorf("unexpected mode/interrupted: %s/%v", result.Mode, result.Interrupted)
		}
	})

	t.Run("dry run writes nothing", func(t *testing.T) {
		src := seedSource(3).AddDocument("bad", map[string]any{"email": "bad@x.com", "matricule": "12"})
		dest := tu.NewMockDestinationStore().AddPrincipal(models.AuthPrincipal{UID: "d1", Email: "user2@x.com"})

		opts := defaultOptions()
		opts.DryRun = true
		result, err := newEngine(src, dest).Run(ctx, opts, nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		if dest.Writes() != 0 {
			t.Errorf("expected zero destination writes, got %d", dest.Writes())
		}

		want := []models.Status{models.StatusWouldMigrate, models.StatusSkipped, models.StatusWouldMigrate, models.StatusError}
		for i, status := range want {
			if result.Outcomes[i].Status != status {
				t.Errorf("outcome %d: expected %s, got %s", i, status, result.Outcomes[i].Status)
			}
		}
		if result.Summary.Success != 2 || result.Summary.Skipped != 1 || result.Summary.Errors != 1 {
			t.Errorf("unexpected summary: %+v", result.Summary)
		}
		if result.Mode != models.ModeDryRun {
			t.Errorf("expected dry-run mode, got %s", result.Mode)
		}
	})

	t.Run("second run skips everything", func(t *testing.T) {
		src := seedSource(3)
		dest := tu.NewMockDestinationStore()
		engine := newEngine(src, dest)

		first, err := engine.Run(ctx, defaultOptions(), nil)
		if err != nil {
			t.Fatalf("first Run failed: %v", err)
		}
		writes := dest.Writes()

		second, err := engine.Run(ctx, defaultOptions(), nil)
		if err != nil {
			t.Fatalf("second Run failed: %v", err)
		}

		if second.Summary.Success != 0 {
			t.Errorf("expected zero new successes, got %d", second.Summary.Success)
		}
		if second.Summary.Skipped != first.Summary.Success {
			t.Errorf("expected %d skips, got %d", first.Summary.Success, second.Summary.Skipped)
		}
		if dest.Writes() != writes {
			t.Errorf("expected no writes on second run, got %d new", dest.Writes()-writes)
		}
		for _, o := range second.Outcomes {
			if o.Reason != models.ReasonEmailExistsInAuth {
				t.Errorf("expected email_exists_in_auth, got %s", o.Reason)
			}
		}
		if first.RunID == second.RunID {
			t.Error("expected distinct run IDs")
		}
	})

	t.Run("invalid identifier does not stop run", func(t *testing.T) {
		src := tu.NewMockSourceStore().
			AddDocument("s1", map[string]any{"email": "a@x.com", "matricule": "12345A"}).
			AddDocument("s2", map[string]any{"email": "b@x.com", "numeroMatricule": "654321z"})
		dest := tu.NewMockDestinationStore()

		result, err := newEngine(src, dest).Run(ctx, defaultOptions(), nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		first := result.Outcomes[0]
		if first.Status != models.StatusError || first.Reason != models.ReasonInvalidIdentifier {
			t.Errorf("expected error(invalid_identifier), got %+v", first)
		}
		if result.Outcomes[1].Status != models.StatusSuccess {
			t.Errorf("expected second record to succeed, got %+v", result.Outcomes[1])
		}
		if dest.PrincipalWrites != 1 {
			t.Errorf("expected exactly one principal write, got %d", dest.PrincipalWrites)
		}
	})

	t.Run("matricule duplicate skipped", func(t *testing.T) {
		src := seedSource(1)
		dest := tu.NewMockDestinationStore().AddDocument("d1", map[string]any{"matricule": "000001A"})

		result, err := newEngine(src, dest).Run(ctx, defaultOptions(), nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		if o := result.Outcomes[0]; o.Status != models.StatusSkipped || o.Reason != models.ReasonMatriculeExists {
			t.Errorf("expected skipped(matricule_exists_in_firestore), got %+v", o)
		}
	})

	t.Run("duplicates not skipped fall through to late detection", func(t *testing.T) {
		src := seedSource(1)
		dest := tu.NewMockDestinationStore().AddPrincipal(models.AuthPrincipal{UID: "d1", Email: "user1@x.com"})

		opts := defaultOptions()
		opts.SkipDuplicates = false
		result, err := newEngine(src, dest).Run(ctx, opts, nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		if o := result.Outcomes[0]; o.Status != models.StatusSkipped || o.Reason != models.ReasonEmailExists {
			t.Errorf("expected skipped(email_exists), got %+v", o)
		}
		if dest.PrincipalWrites != 1 {
			t.Errorf("expected a creation attempt, got %d", dest.PrincipalWrites)
		}
	})

	t.Run("detector failure fails open", func(t *testing.T) {
		src := seedSource(1)
		dest := tu.NewMockDestinationStore()
		dest.LookupErr = errors.New("transient")

		result, err := newEngine(src, dest).Run(ctx, defaultOptions(), nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if result.Outcomes[0].Status != models.StatusSuccess {
			t.Errorf("expected migration to proceed, got %+v", result.Outcomes[0])
		}
	})

	t.Run("provisioning failure is isolated", func(t *testing.T) {
		src := seedSource(2)
		dest := tu.NewMockDestinationStore()
		dest.CreatePrincipalErr = errors.New("internal error")

		result, err := newEngine(src, dest).Run(ctx, defaultOptions(), nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if result.Summary.Errors != 2 || len(result.Outcomes) != 2 {
			t.Errorf("expected two error outcomes, got %+v", result.Summary)
		}
	})

	t.Run("enumeration failure is fatal", func(t *testing.T) {
		src := tu.NewMockSourceStore()
		src.ListErr = errors.New("permission denied")

		result, err := newEngine(src, tu.NewMockDestinationStore()).Run(ctx, defaultOptions(), nil)
		if !errors.Is(err, shared.ErrEnumerationFailed) {
			t.Errorf("expected ErrEnumerationFailed, got %v", err)
		}
		if result != nil {
			t.Errorf("expected no result, got %+v", result)
		}
	})

	t.Run("empty source", func(t *testing.T) {
		result, err := newEngine(tu.NewMockSourceStore(), tu.NewMockDestinationStore()).Run(ctx, defaultOptions(), nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if result.Summary.Total != 0 || len(result.Outcomes) != 0 || result.Outcomes == nil {
			t.Errorf("expected empty non-nil outcomes, got %+v", result)
		}
	})

	t.Run("source principal overrides profile email", func(t *testing.T) {
		src := seedSource(1).AddPrincipal(models.AuthPrincipal{UID: "src-1", Email: "auth@x.com", DisplayName: "Auth Name"})
		dest := tu.NewMockDestinationStore()

		result, err := newEngine(src, dest).Run(ctx, defaultOptions(), nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		outcome := result.Outcomes[0]
		if outcome.Email != "auth@x.com" {
			t.Errorf("expected auth email, got %s", outcome.Email)
		}
		p := dest.Principals()[outcome.NewUID]
		if p.DisplayName != "Auth Name" {
			t.Errorf("expected auth display name, got %s", p.DisplayName)
		}
		doc, _ := dest.Document(outcome.NewUID)
		if doc["email"] != "auth@x.com" {
			t.Errorf("expected profile email to match principal, got %v", doc["email"])
		}
	})

	t.Run("limit and email filter", func(t *testing.T) {
		dest := tu.NewMockDestinationStore()

		opts := defaultOptions()
		opts.DryRun = true
		opts.Limit = 2
		result, err := newEngine(seedSource(5), dest).Run(ctx, opts, nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if result.Summary.Total != 2 {
			t.Errorf("expected 2 records with limit, got %d", result.Summary.Total)
		}

		opts.Limit = 0
		opts.Email = "USER4@x.com"
		result, err = newEngine(seedSource(5), dest).Run(ctx, opts, nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if result.Summary.Total != 1 || result.Outcomes[0].OldUID != "src-4" {
			t.Errorf("expected only src-4, got %+v", result.Outcomes)
		}
	})

	t.Run("cancelled context interrupts", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		dest := tu.NewMockDestinationStore()
		result, err := newEngine(seedSource(3), dest).Run(cancelled, defaultOptions(), nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if !result.Interrupted {
			t.Error("expected run to be interrupted")
		}
		if len(result.Outcomes) != 0 || result.Summary.Total != 3 {
			t.Errorf("expected 0 of 3 processed, got %d of %d", len(result.Outcomes), result.Summary.Total)
		}
		if dest.Writes() != 0 {
			t.Errorf("expected no writes, got %d", dest.Writes())
		}
	})

	t.Run("reports progress", func(t *testing.T) {
		progress := make(chan ProgressUpdate, 32)
		_, err := newEngine(seedSource(2), tu.NewMockDestinationStore()).Run(ctx, defaultOptions(), progress)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		close(progress)

		var records int
		var last ProgressUpdate
		for u := range progress {
			if u.Phase == MigrateRecords {
				records++
				if _, ok := u.Data.(models.Outcome); !ok {
					t.Errorf("expected outcome data, got %T", u.Data)
				}
			}
			last = u
		}
		if records != 2 {
			t.Errorf("expected 2 record updates, got %d", records)
		}
		if last.Phase != Complete {
			t.Errorf("expected final update to be complete, got %s", last.Phase)
		}
	})

	t.Run("slow consumer still sees every record", func(t *testing.T) {
		const n = 2000
		progress := make(chan ProgressUpdate)
		records := make(chan int, 1)
		go func() {
			count := 0
			for update := range progress {
				if update.Phase == MigrateRecords {
					count++
					if count%100 == 0 {
						time.Sleep(time.Millisecond)
					}
				}
			}
			records <- count
		}()

		opts := defaultOptions()
		opts.DryRun = true
		_, err := newEngine(seedSource(n), tu.NewMockDestinationStore()).Run(ctx, opts, progress)
		close(progress)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if got := <-records; got != n {
			t.Errorf("expected %d record updates, got %d", n, got)
		}
	})

	t.Run("unread progress does not block a cancelled run", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		progress := make(chan ProgressUpdate)

		done := make(chan *MigrationResult, 1)
		go func() {
			result, _ := newEngine(seedSource(3), tu.NewMockDestinationStore()).Run(cancelled, defaultOptions(), progress)
			done <- result
		}()

		<-progress
		cancel()

		select {
		case result := <-done:
			if result == nil || !result.Interrupted {
				t.Errorf("expected an interrupted result, got %+v", result)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("run blocked on an unread progress channel after cancellation")
		}
	})

	t.Run("missing stores", func(t *testing.T) {
		_, err := NewMigrationEngine(nil, nil, nil).Run(ctx, defaultOptions(), nil)
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(shared.MigrationConfig{
		SkipDuplicates:           true,
		DefaultPassword:          "pw",
		RollbackOnProfileFailure: true,
		RateLimit:                2.5,
	})

	if !opts.SkipDuplicates || opts.Password != "pw" || !opts.RollbackOnProfileFailure || opts.RateLimit != 2.5 {
		t.Errorf("unexpected options: %+v", opts)
	}
	if opts.DryRun || opts.Mode() != models.ModeProduction {
		t.Errorf("expected production mode by default, got %s", opts.Mode())
	}
}
