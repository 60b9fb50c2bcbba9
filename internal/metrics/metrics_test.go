package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vovakirdan/tui-2048/internal/games/t2048"
)

// failingStore fails every save and finds nothing on load.
type failingStore struct{}

var errDown = errors.New("store down")

func (failingStore) LoadSession(context.Context, string) (t2048.SavedSession, bool, error) {
	return t2048.SavedSession{}, false, nil
}
func (failingStore) SaveSession(context.Context, string, t2048.SavedSession) error { return errDown }
func (failingStore) ClearSession(context.Context, string) error                    { return nil }
func (failingStore) LoadProgression(context.Context, string) (t2048.Progression, bool, error) {
	return t2048.Progression{}, false, nil
}
func (failingStore) SaveProgression(context.Context, string, t2048.Progression) error { return errDown }
func (failingStore) RecordRun(context.Context, string, t2048.RunRecord) error         { return nil }

func TestInstrumentCountsResults(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	p := m.Instrument(failingStore{})
	ctx := context.Background()

	if err := p.SaveSession(ctx, "a", t2048.SavedSession{}); !errors.Is(err, errDown) {
		t.Fatalf("SaveSession err = %v, want errDown", err)
	}
	if _, _, err := p.LoadSession(ctx, "a"); err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if err := p.RecordRun(ctx, "a", t2048.RunRecord{Outcome: t2048.StateLevelComplete}); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	tests := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"save error", m.Ops.WithLabelValues("save_session", "error"), 1},
		{"save ok", m.Ops.WithLabelValues("save_session", "ok"), 0},
		{"load ok", m.Ops.WithLabelValues("load_session", "ok"), 1},
		{"run ok", m.Ops.WithLabelValues("record_run", "ok"), 1},
		{"completed runs", m.Runs.WithLabelValues("level_complete"), 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(tt.c); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSaveBatchThroughInstrument(t *testing.T) {
	m := New(prometheus.NewRegistry())
	p := m.Instrument(failingStore{})

	prog := t2048.NewProgression()
	batch := t2048.SaveBatch{Player: "a", Progression: &prog, ClearSession: true}
	if err := batch.Apply(context.Background(), p); !errors.Is(err, errDown) {
		t.Fatalf("Apply err = %v, want errDown", err)
	}
	if got := testutil.ToFloat64(m.Ops.WithLabelValues("clear_session", "ok")); got != 1 {
		t.Errorf("clear_session ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Ops.WithLabelValues("save_progression", "error")); got != 1 {
		t.Errorf("save_progression error = %v, want 1", got)
	}
}
