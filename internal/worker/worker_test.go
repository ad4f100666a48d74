package worker

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/GulmanM/Restraints-Quality-Calculator/internal/config"
	"github.com/GulmanM/Restraints-Quality-Calculator/internal/events"
	"github.com/GulmanM/Restraints-Quality-Calculator/internal/restraint"
	"github.com/GulmanM/Restraints-Quality-Calculator/internal/store"
)

type mockStore struct {
	runs    []*store.Run
	records map[uuid.UUID][]store.RunRecord
}

func newMockStore() *mockStore {
	return &mockStore{records: make(map[uuid.UUID][]store.RunRecord)}
}

func (m *mockStore) CreateRun(_ context.Context, run *store.Run, records []store.RunRecord) error {
	run.ID = uuid.New()
	m.runs = append(m.runs, run)
	m.records[run.ID] = records
	return nil
}

func (m *mockStore) GetRun(_ context.Context, id uuid.UUID) (*store.Run, error) {
	for _, r := range m.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (m *mockStore) ListRuns(_ context.Context, _ store.RunFilter) ([]*store.Run, error) {
	return m.runs, nil
}

func (m *mockStore) GetRunRecords(_ context.Context, id uuid.UUID) ([]store.RunRecord, error) {
	return m.records[id], nil
}

func (m *mockStore) Stats(_ context.Context) (*store.Stats, error) {
	return &store.Stats{TotalRuns: len(m.runs)}, nil
}

func (m *mockStore) Close() error { return nil }

// mockEvents dispatches subscriptions synchronously and records publishes.
type mockEvents struct {
	handlers  map[string]func(string, []byte)
	published map[string][]byte
}

func newMockEvents() *mockEvents {
	return &mockEvents{
		handlers:  make(map[string]func(string, []byte)),
		published: make(map[string][]byte),
	}
}

func (m *mockEvents) Publish(_ context.Context, subject string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	m.published[subject] = payload
	return nil
}

func (m *mockEvents) Subscribe(subject string, handler func(string, []byte)) error {
	m.handlers[subject] = handler
	return nil
}

func (m *mockEvents) Close() {}

func (m *mockEvents) deliver(t *testing.T, subject string, event interface{}) {
	t.Helper()
	h, ok := m.handlers[subject]
	if !ok {
		t.Fatalf("no handler for %s", subject)
	}
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	h(subject, payload)
}

func testWorker(t *testing.T) (*Worker, *mockStore, *mockEvents) {
	t.Helper()
	ms := newMockStore()
	me := newMockEvents()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := New(ms, me, cfg, logger)
	if err := w.Start(); err != nil {
		t.Fatalf("start worker: %v", err)
	}
	return w, ms, me
}

func TestWorkerScoresRequest(t *testing.T) {
	_, ms, me := testWorker(t)

	me.deliver(t, events.SubjectRunRequest, events.RunRequestEvent{
		RequestID: "req-1",
		Pipeline:  "sh3-bench",
		Constants: restraint.Constants{Ls: 10, Lx: 10, Ly: 10, Lz: 10},
		Records: []restraint.Record{
			{ID: "A", X: 0, Y: 0, Z: 0, SL: 0, WI: 1.0, Dij: 0},
			{ID: "B", X: 10, Y: 10, Z: 10, SL: 10, WI: 1.0, Dij: 0},
		},
	})

	if len(ms.runs) != 1 {
		t.Fatalf("expected 1 persisted run, got %d", len(ms.runs))
	}
	run := ms.runs[0]
	if run.Source != "events" {
		t.Errorf("expected source events, got %s", run.Source)
	}
	if run.Pipeline != "sh3-bench" {
		t.Errorf("expected pipeline carried through, got %s", run.Pipeline)
	}
	want := 1.0 * math.Sqrt(0.75) * 0.5
	if math.Abs(run.FinalScore-want) > 1e-12 {
		t.Errorf("expected score %f, got %f", want, run.FinalScore)
	}
	if len(ms.records[run.ID]) != 2 {
		t.Errorf("expected 2 persisted records, got %d", len(ms.records[run.ID]))
	}

	subject := events.SubjectRunScored(run.ID.String())
	payload, ok := me.published[subject]
	if !ok {
		t.Fatalf("expected scored event on %s", subject)
	}
	var scored events.RunScoredEvent
	if err := json.Unmarshal(payload, &scored); err != nil {
		t.Fatalf("unmarshal scored event: %v", err)
	}
	if scored.RequestID != "req-1" {
		t.Errorf("expected request id echoed, got %s", scored.RequestID)
	}
	if math.Abs(scored.FinalScore-want) > 1e-12 {
		t.Errorf("expected event score %f, got %f", want, scored.FinalScore)
	}
}

func TestWorkerRejectsInvalidRequest(t *testing.T) {
	_, ms, me := testWorker(t)

	me.deliver(t, events.SubjectRunRequest, events.RunRequestEvent{
		RequestID: "req-2",
		Constants: restraint.Constants{Ls: 10, Lx: 0, Ly: 10, Lz: 10},
		Records: []restraint.Record{
			{ID: "A", X: 1, Y: 1, Z: 1, SL: 1, WI: 0.5, Dij: 1},
		},
	})

	if len(ms.runs) != 0 {
		t.Fatalf("expected no persisted runs, got %d", len(ms.runs))
	}
	payload, ok := me.published[events.SubjectRunRejected("req-2")]
	if !ok {
		t.Fatal("expected rejection event")
	}
	var rej events.RunRejectedEvent
	if err := json.Unmarshal(payload, &rej); err != nil {
		t.Fatalf("unmarshal rejection: %v", err)
	}
	if !strings.Contains(rej.Reason, "lx") {
		t.Errorf("expected rejection naming the bad constant, got %q", rej.Reason)
	}
}

func TestWorkerRejectsUnknownDecay(t *testing.T) {
	_, ms, me := testWorker(t)

	me.deliver(t, events.SubjectRunRequest, events.RunRequestEvent{
		RequestID: "req-3",
		Decay:     "parabolic",
		Constants: restraint.Constants{Ls: 10, Lx: 10, Ly: 10, Lz: 10},
		Records: []restraint.Record{
			{ID: "A", X: 1, Y: 1, Z: 1, SL: 1, WI: 0.5, Dij: 1},
		},
	})

	if len(ms.runs) != 0 {
		t.Fatal("expected no persisted runs")
	}
	if _, ok := me.published[events.SubjectRunRejected("req-3")]; !ok {
		t.Fatal("expected rejection event for unknown decay")
	}
}

func TestWorkerExplicitZeroD0(t *testing.T) {
	_, ms, me := testWorker(t)

	zero := 0.0
	me.deliver(t, events.SubjectRunRequest, events.RunRequestEvent{
		RequestID: "req-4",
		Decay:     "exp",
		D0:        &zero,
		Constants: restraint.Constants{Ls: 10, Lx: 10, Ly: 10, Lz: 10},
		Records: []restraint.Record{
			{ID: "A", X: 0, Y: 0, Z: 0, SL: 0, WI: 1.0, Dij: 1.0},
			{ID: "B", X: 10, Y: 10, Z: 10, SL: 10, WI: 1.0, Dij: 1.0},
		},
	})

	if len(ms.runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(ms.runs))
	}
	run := ms.runs[0]
	if run.D0 != 0 {
		t.Errorf("explicit d0=0 must not fall back to the default, got %g", run.D0)
	}
	// With d0=0 the plateau is gone: f(1) = e^-1, not 1
	recs := ms.records[run.ID]
	if math.Abs(recs[0].FDij-math.Exp(-1)) > 1e-12 {
		t.Errorf("expected fdij=e^-1, got %f", recs[0].FDij)
	}
	if _, ok := me.published[events.SubjectRunRejected("req-4")]; ok {
		t.Error("valid request must not be rejected")
	}
}

func TestWorkerRejectsNegativeD0(t *testing.T) {
	_, ms, me := testWorker(t)

	neg := -1.5
	me.deliver(t, events.SubjectRunRequest, events.RunRequestEvent{
		RequestID: "req-5",
		Decay:     "exp",
		D0:        &neg,
		Constants: restraint.Constants{Ls: 10, Lx: 10, Ly: 10, Lz: 10},
		Records: []restraint.Record{
			{ID: "A", X: 1, Y: 1, Z: 1, SL: 1, WI: 0.5, Dij: 1},
		},
	})

	if len(ms.runs) != 0 {
		t.Fatal("expected no persisted runs")
	}
	payload, ok := me.published[events.SubjectRunRejected("req-5")]
	if !ok {
		t.Fatal("expected rejection event for negative d0")
	}
	var rej events.RunRejectedEvent
	if err := json.Unmarshal(payload, &rej); err != nil {
		t.Fatalf("unmarshal rejection: %v", err)
	}
	if !strings.Contains(rej.Reason, "d0") {
		t.Errorf("expected rejection naming d0, got %q", rej.Reason)
	}
}

func TestWorkerIgnoresMalformedPayload(t *testing.T) {
	_, ms, me := testWorker(t)

	me.handlers[events.SubjectRunRequest](events.SubjectRunRequest, []byte("{not json"))

	if len(ms.runs) != 0 {
		t.Error("expected no runs from malformed payload")
	}
	if len(me.published) != 0 {
		t.Error("expected no events from malformed payload")
	}
}
