package session

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/starford/cfreality/internal/apperr"
	"github.com/starford/cfreality/internal/cosmology"
	"github.com/starford/cfreality/internal/models"
	"github.com/starford/cfreality/internal/persist"
	"github.com/starford/cfreality/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recorder captures notifications.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Notify(eventType string, _ any) {
	r.mu.Lock()
	r.events = append(r.events, eventType)
	r.mu.Unlock()
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func fixedNow() time.Time { return time.UnixMilli(1_700_000_000_000) }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testSession(t *testing.T, opts ...Option) (*Session, *persist.Adapter) {
	t.Helper()
	adapter := persist.NewAdapter(storage.NewMemory(), "", quietLogger())
	base := []Option{WithSaver(adapter), WithNow(fixedNow), WithLogger(quietLogger())}
	s := New(append(base, opts...)...)
	t.Cleanup(s.Close)
	return s, adapter
}

func zeroed() Option {
	return WithInitial(models.PersistedState{Insights: []models.InsightRecord{}})
}

func TestNew_Defaults(t *testing.T) {
	s, _ := testSession(t)
	want := models.Parameters{Distinctions: 50, Ideation: 50, Complexity: 50}
	if s.Parameters() != want {
		t.Errorf("parameters = %+v", s.Parameters())
	}
	if len(s.Insights()) != 0 || len(s.Collapsed()) != 0 {
		t.Error("new session should have no insights or collapses")
	}
	if s.ID() == "" {
		t.Error("session id should be set")
	}
	if s.ClockState().Running {
		t.Error("clock should start stopped")
	}
}

func TestCollapse_FirstFromDefaults(t *testing.T) {
	s, _ := testSession(t)
	if !s.Collapse("ONE") {
		t.Fatal("collapse should report a change")
	}
	p := s.Parameters()
	if p.Distinctions != 100 || p.Ideation != 100 || p.Complexity != 50 {
		t.Errorf("parameters = %+v", p)
	}
	got := s.Insights()
	want := []models.InsightRecord{{Text: "Collapsed distinction at ONE", Timestamp: 1_700_000_000_000}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("insights (-want +got):\n%s", diff)
	}
}

func TestCollapse_Idempotent(t *testing.T) {
	for _, n := range cosmology.Nodes() {
		s, _ := testSession(t, zeroed())
		if !s.Collapse(string(n.ID)) {
			t.Fatalf("%s: first collapse should change state", n.ID)
		}
		before := s.Snapshot()
		if s.Collapse(string(n.ID)) {
			t.Errorf("%s: second collapse should be a no-op", n.ID)
		}
		after := s.Snapshot()
		if diff := cmp.Diff(before, after); diff != "" {
			t.Errorf("%s: state changed on repeat collapse (-before +after):\n%s", n.ID, diff)
		}
		if len(after.Insights) != 1 {
			t.Errorf("%s: insights = %d, want 1", n.ID, len(after.Insights))
		}
	}
}

func TestCollapse_BoostByCatalogPosition(t *testing.T) {
	s, _ := testSession(t, zeroed())

	s.Collapse("∞") // boost 25
	p := s.Parameters()
	if p.Distinctions != 25 || p.Ideation != 18 {
		t.Errorf("after ∞: %+v, want d=25 i=18", p)
	}

	s.Collapse("Self") // boost 70
	p = s.Parameters()
	if p.Distinctions != 95 || p.Ideation != 67 {
		t.Errorf("after Self: %+v, want d=95 i=67", p)
	}
	if p.Complexity != 0 {
		t.Errorf("complexity changed: %d", p.Complexity)
	}
}

func TestCollapse_AliasResolves(t *testing.T) {
	s, _ := testSession(t)
	if !s.Collapse("infinity") {
		t.Fatal("alias should collapse ∞")
	}
	if !s.IsCollapsed("∞") {
		t.Error("∞ should be collapsed")
	}
	if s.Insights()[0].Text != "Collapsed distinction at ∞" {
		t.Errorf("insight = %q", s.Insights()[0].Text)
	}
}

func TestCollapse_UnknownIsNoop(t *testing.T) {
	s, _ := testSession(t)
	before := s.Snapshot()
	if s.Collapse("Ω") {
		t.Error("unknown node should not change state")
	}
	if diff := cmp.Diff(before, s.Snapshot()); diff != "" {
		t.Errorf("(-before +after):\n%s", diff)
	}
}

func TestCollapse_AllInCatalogOrder(t *testing.T) {
	s, _ := testSession(t)
	for _, n := range cosmology.Nodes() {
		s.Collapse(string(n.ID))
	}
	if diff := cmp.Diff([]cosmology.NodeID{"ONE", "one", "Self", "one+", "ONE+", "∞"}, s.Collapsed()); diff != "" {
		t.Errorf("collapsed (-want +got):\n%s", diff)
	}
	p := s.Parameters()
	if p.Distinctions != 100 || p.Ideation != 100 {
		t.Errorf("parameters = %+v", p)
	}
	ins := s.Insights()
	if len(ins) != 6 || ins[0].Text != "Collapsed distinction at ∞" {
		t.Errorf("newest insight first, got %+v", ins)
	}
}

func TestInsights_CappedAtTen(t *testing.T) {
	var start []models.InsightRecord
	for i := 0; i < 8; i++ {
		start = append(start, models.InsightRecord{Text: "old", Timestamp: int64(i)})
	}
	s, adapter := testSession(t, WithInitial(models.PersistedState{Distinctions: 1, Ideation: 1, Complexity: 1, Insights: start}))
	for _, n := range cosmology.Nodes() {
		s.Collapse(string(n.ID))
	}
	if got := len(s.Insights()); got != 10 {
		t.Errorf("insights = %d, want 10", got)
	}
	if got := len(adapter.Load().Insights); got != 10 {
		t.Errorf("persisted insights = %d, want 10", got)
	}
}

func TestReset_ClearsCollapseAndPhaseOnly(t *testing.T) {
	s, adapter := testSession(t)
	s.Collapse("ONE")
	s.Collapse("one")
	s.clock.Advance(10)
	paramsBefore := s.Parameters()
	insightsBefore := s.Insights()

	s.Reset()

	if len(s.Collapsed()) != 0 {
		t.Errorf("collapsed = %v after reset", s.Collapsed())
	}
	if s.ClockState().Phase != 0 {
		t.Errorf("phase = %v after reset", s.ClockState().Phase)
	}
	if s.Parameters() != paramsBefore {
		t.Errorf("parameters changed by reset: %+v -> %+v", paramsBefore, s.Parameters())
	}
	if diff := cmp.Diff(insightsBefore, s.Insights()); diff != "" {
		t.Errorf("insights changed by reset (-before +after):\n%s", diff)
	}

	// Collapsing again after reset grants the boost again.
	if !s.Collapse("ONE") {
		t.Error("collapse after reset should change state")
	}
	if got := len(adapter.Load().Insights); got != 3 {
		t.Errorf("persisted insights = %d, want 3", got)
	}
}

func TestSetParameter_ClampsAndPersists(t *testing.T) {
	s, adapter := testSession(t)
	p, err := s.SetParameter(models.ParamComplexity, 250)
	if err != nil {
		t.Fatal(err)
	}
	if p.Complexity != 100 {
		t.Errorf("complexity = %d", p.Complexity)
	}
	if got := adapter.Load().Complexity; got != 100 {
		t.Errorf("persisted complexity = %d", got)
	}
	if _, err := s.SetParameter(models.ParamDistinctions, -4); err != nil {
		t.Fatal(err)
	}
	if s.Coherence() != 0 {
		t.Errorf("coherence with distinctions=0 should be 0, got %v", s.Coherence())
	}
}

func TestSetParameter_UnknownName(t *testing.T) {
	s, _ := testSession(t)
	_, err := s.SetParameter("mood", 1)
	if !errors.Is(err, apperr.ErrInvalidParameter) {
		t.Errorf("err = %v", err)
	}
}

func TestUpdateParameters_Patch(t *testing.T) {
	s, adapter := testSession(t)
	d, c := 5.4, 120.0
	got := s.UpdateParameters(Patch{Distinctions: &d, Complexity: &c})
	want := models.Parameters{Distinctions: 5, Ideation: 50, Complexity: 100}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if adapter.Load().Params() != want {
		t.Errorf("persisted = %+v", adapter.Load().Params())
	}
}

func TestUpdateParameters_EmptyPatchDoesNotPersist(t *testing.T) {
	store := storage.NewMemory()
	adapter := persist.NewAdapter(store, "", quietLogger())
	s := New(WithSaver(adapter), WithLogger(quietLogger()))
	defer s.Close()

	s.UpdateParameters(Patch{})
	if _, err := store.Get(persist.DefaultKey); !errors.Is(err, storage.ErrKeyNotFound) {
		t.Errorf("empty patch should not write, got %v", err)
	}
}

func TestNotifications(t *testing.T) {
	rec := &recorder{}
	s, _ := testSession(t, WithNotifier(rec))

	s.Collapse("Self")
	s.Collapse("Self")
	_, _ = s.SetParameter(models.ParamIdeation, 1)
	s.Reset()

	want := []string{
		EventNodeCollapsed, EventParametersUpdated, EventInsightAppended,
		EventParametersUpdated,
		EventDiagramReset,
	}
	if diff := cmp.Diff(want, rec.types()); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestRestoreFromPersisted(t *testing.T) {
	store := storage.NewMemory()
	adapter := persist.NewAdapter(store, "", quietLogger())

	first := New(WithSaver(adapter), WithNow(fixedNow), WithLogger(quietLogger()))
	first.Collapse("one")
	_, _ = first.SetParameter(models.ParamComplexity, 12)
	first.Close()

	second := New(WithInitial(adapter.Load()), WithSaver(adapter), WithLogger(quietLogger()))
	defer second.Close()

	if diff := cmp.Diff(first.Persisted(), second.Persisted()); diff != "" {
		t.Errorf("restored state (-want +got):\n%s", diff)
	}
	if len(second.Collapsed()) != 0 {
		t.Error("collapse state is not persisted")
	}
}

func TestNodes(t *testing.T) {
	s, _ := testSession(t)
	s.Collapse("one+")
	nodes := s.Nodes()
	if len(nodes) != 6 {
		t.Fatalf("nodes = %d", len(nodes))
	}
	for i, n := range nodes {
		if n.Index != i || n.Boost != 100-i*15 {
			t.Errorf("node %s: index %d boost %d", n.ID, n.Index, n.Boost)
		}
		if n.Collapsed != (n.ID == cosmology.NodeEmbodied) {
			t.Errorf("node %s collapsed = %v", n.ID, n.Collapsed)
		}
		if n.Opacity < 0.4 || n.Opacity > 1 {
			t.Errorf("node %s opacity %v", n.ID, n.Opacity)
		}
	}
	if _, ok := s.Node("nope"); ok {
		t.Error("unknown node should miss")
	}
	if v, ok := s.Node("infinity"); !ok || v.Index != 5 {
		t.Errorf("Node(infinity) = %+v, %v", v, ok)
	}
}

func TestClockControls(t *testing.T) {
	s, _ := testSession(t, WithClockTiming(time.Millisecond, 0.1))
	if !s.StartClock().Running {
		t.Error("StartClock should report running")
	}
	deadline := time.Now().Add(2 * time.Second)
	for s.ClockState().Phase == 0 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	if s.ClockState().Phase == 0 {
		t.Error("phase never advanced")
	}
	if s.StopClock().Running {
		t.Error("StopClock should report stopped")
	}
	s.StopClock()
	if !s.ToggleClock().Running {
		t.Error("toggle should resume")
	}
}
