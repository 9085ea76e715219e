package persist

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/starford/cfreality/internal/models"
	"github.com/starford/cfreality/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// failingStore fails every operation.
type failingStore struct{}

func (failingStore) Get(string) (string, error) { return "", errors.New("disk on fire") }
func (failingStore) Put(string, string) error   { return errors.New("quota exceeded") }
func (failingStore) Delete(string) error        { return nil }
func (failingStore) Close() error               { return nil }

// countingStore records the values written to it.
type countingStore struct {
	*storage.Memory
	mu     sync.Mutex
	writes []string
}

func (c *countingStore) Put(key, value string) error {
	c.mu.Lock()
	c.writes = append(c.writes, value)
	c.mu.Unlock()
	return c.Memory.Put(key, value)
}

func (c *countingStore) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.writes)
}

func TestLoad_Absent(t *testing.T) {
	a := NewAdapter(storage.NewMemory(), "", quietLogger())
	if diff := cmp.Diff(Defaults(), a.Load()); diff != "" {
		t.Errorf("absent state (-want +got):\n%s", diff)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	store := storage.NewMemory()
	_ = store.Put(DefaultKey, "{not json")
	got := NewAdapter(store, "", quietLogger()).Load()

	want := models.PersistedState{Distinctions: 50, Ideation: 50, Complexity: 50, Insights: []models.InsightRecord{}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("malformed state (-want +got):\n%s", diff)
	}
}

func TestLoad_WrongShapes(t *testing.T) {
	for _, raw := range []string{`[1,2,3]`, `"text"`, `{"insights": "nope"}`, `{"distinctions": "high"}`} {
		store := storage.NewMemory()
		_ = store.Put(DefaultKey, raw)
		got := NewAdapter(store, "", quietLogger()).Load()
		if diff := cmp.Diff(Defaults(), got); diff != "" {
			t.Errorf("%s: (-want +got):\n%s", raw, diff)
		}
	}
}

func TestLoad_StoreError(t *testing.T) {
	got := NewAdapter(failingStore{}, "", quietLogger()).Load()
	if diff := cmp.Diff(Defaults(), got); diff != "" {
		t.Errorf("store error (-want +got):\n%s", diff)
	}
}

func TestLoad_MissingFieldsDefault(t *testing.T) {
	store := storage.NewMemory()
	_ = store.Put(DefaultKey, `{"ideation": 12}`)
	got := NewAdapter(store, "", quietLogger()).Load()
	want := models.PersistedState{Distinctions: 50, Ideation: 12, Complexity: 50, Insights: []models.InsightRecord{}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestLoad_ClampsAndRounds(t *testing.T) {
	store := storage.NewMemory()
	_ = store.Put(DefaultKey, `{"distinctions": 140, "ideation": 84.5, "complexity": -3}`)
	got := NewAdapter(store, "", quietLogger()).Load()
	if got.Distinctions != 100 || got.Ideation != 85 || got.Complexity != 0 {
		t.Errorf("got %+v", got)
	}
}

func TestLoad_TruncatesInsights(t *testing.T) {
	var in []models.InsightRecord
	for i := 0; i < 12; i++ {
		in = append(in, models.InsightRecord{Text: fmt.Sprintf("r%d", i), Timestamp: int64(1000 + i)})
	}
	st := models.PersistedState{Distinctions: 1, Ideation: 2, Complexity: 3, Insights: in}
	raw := `{"distinctions":1,"ideation":2,"complexity":3,"insights":[`
	for i, r := range st.Insights {
		if i > 0 {
			raw += ","
		}
		raw += fmt.Sprintf(`{"text":%q,"timestamp":%d}`, r.Text, r.Timestamp)
	}
	raw += "]}"

	store := storage.NewMemory()
	_ = store.Put(DefaultKey, raw)
	got := NewAdapter(store, "", quietLogger()).Load()
	if diff := cmp.Diff(in[2:], got.Insights); diff != "" {
		t.Errorf("insights (-want +got):\n%s", diff)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	cases := []models.PersistedState{
		Defaults(),
		{Distinctions: 0, Ideation: 100, Complexity: 7, Insights: []models.InsightRecord{}},
		{Distinctions: 100, Ideation: 100, Complexity: 50, Insights: []models.InsightRecord{
			{Text: "Collapsed distinction at ONE", Timestamp: 1_700_000_000_000},
			{Text: "Collapsed distinction at ∞", Timestamp: 1_700_000_000_500},
		}},
	}
	for i, st := range cases {
		a := NewAdapter(storage.NewMemory(), "", quietLogger())
		a.Save(st)
		if diff := cmp.Diff(st, a.Load()); diff != "" {
			t.Errorf("case %d round trip (-want +got):\n%s", i, diff)
		}
	}
}

func TestSave_KeepsLastTenInsights(t *testing.T) {
	st := Defaults()
	for i := 0; i < 13; i++ {
		st.Insights = append(st.Insights, models.InsightRecord{Text: fmt.Sprintf("r%d", i), Timestamp: int64(i)})
	}
	a := NewAdapter(storage.NewMemory(), "", quietLogger())
	a.Save(st)
	got := a.Load()
	if len(got.Insights) != 10 || got.Insights[0].Text != "r3" {
		t.Errorf("insights = %+v", got.Insights)
	}
}

func TestSave_ErrorSwallowed(t *testing.T) {
	a := NewAdapter(failingStore{}, "", quietLogger())
	a.Save(Defaults()) // must not panic
}

func TestSave_UsesCustomKey(t *testing.T) {
	store := storage.NewMemory()
	a := NewAdapter(store, "other", quietLogger())
	a.Save(Defaults())
	if _, err := store.Get("other"); err != nil {
		t.Errorf("expected value under custom key: %v", err)
	}
	if _, err := store.Get(DefaultKey); !errors.Is(err, storage.ErrKeyNotFound) {
		t.Errorf("default key should be untouched, got %v", err)
	}
}

func TestEncode_NilInsightsAsEmptyArray(t *testing.T) {
	raw, err := Encode(models.PersistedState{Distinctions: 1, Ideation: 2, Complexity: 3})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"distinctions":1,"ideation":2,"complexity":3,"insights":[]}`
	if raw != want {
		t.Errorf("raw = %s, want %s", raw, want)
	}
}

func TestWriter_FlushWritesLatest(t *testing.T) {
	store := &countingStore{Memory: storage.NewMemory()}
	a := NewAdapter(store, "", quietLogger())
	w := NewWriter(a)
	defer w.Close()

	for i := 0; i <= 100; i++ {
		st := Defaults()
		st.Complexity = i
		w.Save(st)
	}
	w.Flush()

	if got := a.Load().Complexity; got != 100 {
		t.Errorf("complexity = %d, want 100", got)
	}
	if n := store.count(); n < 1 || n > 101 {
		t.Errorf("writes = %d", n)
	}
}

func TestWriter_CloseDrains(t *testing.T) {
	store := storage.NewMemory()
	a := NewAdapter(store, "", quietLogger())
	w := NewWriter(a)

	st := Defaults()
	st.Ideation = 3
	w.Save(st)
	w.Close()
	w.Close()

	if got := a.Load().Ideation; got != 3 {
		t.Errorf("ideation = %d, want 3", got)
	}
}

func TestWriter_SaveAfterCloseIsSynchronous(t *testing.T) {
	store := storage.NewMemory()
	a := NewAdapter(store, "", quietLogger())
	w := NewWriter(a)
	w.Close()

	st := Defaults()
	st.Distinctions = 9
	w.Save(st)
	w.Flush()
	if got := a.Load().Distinctions; got != 9 {
		t.Errorf("distinctions = %d, want 9", got)
	}
}
