package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file and its parent directory were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if _, err := store.StartRun("snake", "tui", 60); err != nil {
		t.Fatalf("StartRun() failed: %v", err)
	}
	store.Close()

	// Migrations must be idempotent
	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer store.Close()

	runs, err := store.RecentRuns("snake", 10)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("Expected 1 run after reopen, got %d", len(runs))
	}
}

func TestStoreRunLifecycle(t *testing.T) {
	store := openTestStore(t)

	runID, err := store.StartRun("snake", "tui", 60)
	if err != nil {
		t.Fatalf("StartRun() failed: %v", err)
	}

	rec := store.Recorder(runID)
	for _, s := range [][2]int{{60, 58}, {60, 61}, {59, 60}} {
		if err := rec.RecordStats(s[0], s[1]); err != nil {
			t.Fatalf("RecordStats() failed: %v", err)
		}
	}

	samples, err := store.Samples(runID)
	if err != nil {
		t.Fatalf("Samples() failed: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("Expected 3 samples, got %d", len(samples))
	}
	for i, sm := range samples {
		if sm.Seq != i+1 {
			t.Errorf("samples[%d].Seq = %d, expected %d", i, sm.Seq, i+1)
		}
	}
	if samples[1].UPS != 60 || samples[1].FPS != 61 {
		t.Errorf("samples[1] = %+v, expected 60/61", samples[1])
	}

	runs, err := store.RecentRuns("snake", 10)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("Expected 1 run, got %d", len(runs))
	}
	r := runs[0]
	if r.Reports != 3 {
		t.Errorf("Reports = %d, expected 3", r.Reports)
	}
	if r.AvgUPS < 59.6 || r.AvgUPS > 59.7 {
		t.Errorf("AvgUPS = %v, expected ~59.67", r.AvgUPS)
	}
	if r.AvgFPS < 59.6 || r.AvgFPS > 59.7 {
		t.Errorf("AvgFPS = %v, expected ~59.67", r.AvgFPS)
	}
	if !r.EndedAt.IsZero() || r.EndReason != "" {
		t.Errorf("Run should still be open, got ended=%v reason=%q", r.EndedAt, r.EndReason)
	}
	if r.StartedAt.IsZero() {
		t.Error("StartedAt should be set")
	}

	if err := store.EndRun(runID, EndClosed); err != nil {
		t.Fatalf("EndRun() failed: %v", err)
	}
	if err := store.EndRun(runID, EndClosed); err == nil {
		t.Error("Ending a run twice should fail")
	}

	runs, _ = store.RecentRuns("snake", 10)
	if runs[0].EndReason != EndClosed || runs[0].EndedAt.IsZero() {
		t.Errorf("Run should be closed, got %+v", runs[0])
	}
}

func TestStoreRecentRunsFilterAndLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 4; i++ {
		if _, err := store.StartRun("snake", "tui", 60); err != nil {
			t.Fatalf("StartRun() failed: %v", err)
		}
	}
	if _, err := store.StartRun("inspect", "desktop", 30); err != nil {
		t.Fatalf("StartRun() failed: %v", err)
	}

	runs, err := store.RecentRuns("snake", 3)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(runs) != 3 {
		t.Errorf("Expected 3 runs with limit, got %d", len(runs))
	}
	for i := 1; i < len(runs); i++ {
		if runs[i-1].ID <= runs[i].ID {
			t.Errorf("Runs not newest first: %d before %d", runs[i-1].ID, runs[i].ID)
		}
	}

	all, err := store.RecentRuns("", 100)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("Expected 5 runs across apps, got %d", len(all))
	}
	if all[0].AppID != "inspect" || all[0].Platform != "desktop" || all[0].UpdateRate != 30 {
		t.Errorf("Newest run = %+v, expected the inspect desktop run", all[0])
	}
}

func TestStoreClearRuns(t *testing.T) {
	store := openTestStore(t)

	snakeRun, _ := store.StartRun("snake", "tui", 60)
	store.RecordSample(snakeRun, 60, 60)
	inspectRun, _ := store.StartRun("inspect", "tui", 60)
	store.RecordSample(inspectRun, 60, 60)

	if err := store.ClearRuns("snake"); err != nil {
		t.Fatalf("ClearRuns() failed: %v", err)
	}

	runs, _ := store.RecentRuns("snake", 10)
	if len(runs) != 0 {
		t.Errorf("Expected no snake runs after clear, got %d", len(runs))
	}
	samples, _ := store.Samples(snakeRun)
	if len(samples) != 0 {
		t.Errorf("Expected no snake samples after clear, got %d", len(samples))
	}

	samples, _ = store.Samples(inspectRun)
	if len(samples) != 1 {
		t.Error("Clearing snake should not affect inspect samples")
	}
}

func TestRecorderWithoutStore(t *testing.T) {
	var rec *Recorder
	if err := rec.RecordStats(1, 1); err == nil {
		t.Error("nil Recorder should return an error")
	}
}
