// Package persist reads and writes the persisted session projection as a
// JSON blob under a fixed key of a storage.Provider.
package persist

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/starford/cfreality/internal/insight"
	"github.com/starford/cfreality/internal/metrics"
	"github.com/starford/cfreality/internal/models"
	"github.com/starford/cfreality/internal/params"
	"github.com/starford/cfreality/internal/storage"
)

// DefaultKey is the storage key of the persisted state.
const DefaultKey = "cfr-state"

// Saver accepts state snapshots for persistence. Implementations never
// report failures to the caller.
type Saver interface {
	Save(models.PersistedState)
}

// Defaults is the state used when nothing valid is stored.
func Defaults() models.PersistedState {
	d := params.Defaults()
	return models.PersistedState{
		Distinctions: d.Distinctions,
		Ideation:     d.Ideation,
		Complexity:   d.Complexity,
		Insights:     []models.InsightRecord{},
	}
}

// Adapter is the synchronous persistence path.
type Adapter struct {
	store  storage.Provider
	key    string
	logger *slog.Logger
}

// NewAdapter returns an Adapter writing under key (DefaultKey when empty).
func NewAdapter(store storage.Provider, key string, logger *slog.Logger) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{store: store, key: key, logger: logger}
}

// Key returns the storage key.
func (a *Adapter) Key() string { return a.key }

// record mirrors the stored JSON. Pointers distinguish missing fields; floats
// accept values written by older clients that stored fractional numbers.
type record struct {
	Distinctions *float64        `json:"distinctions"`
	Ideation     *float64        `json:"ideation"`
	Complexity   *float64        `json:"complexity"`
	Insights     []insightRecord `json:"insights"`
}

type insightRecord struct {
	Text      string  `json:"text"`
	Timestamp float64 `json:"timestamp"`
}

// Load returns the stored state. It never fails: an absent key, a store
// error or malformed JSON all yield Defaults.
func (a *Adapter) Load() models.PersistedState {
	raw, err := a.store.Get(a.key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			metrics.PersistLoadFallbacksTotal.WithLabelValues("absent").Inc()
			a.logger.Debug("persist: no stored state", slog.String("key", a.key))
		} else {
			metrics.PersistLoadFallbacksTotal.WithLabelValues("read_error").Inc()
			a.logger.Warn("persist: read failed", slog.String("key", a.key), slog.String("error", err.Error()))
		}
		return Defaults()
	}

	st, err := Decode(raw)
	if err != nil {
		metrics.PersistLoadFallbacksTotal.WithLabelValues("malformed").Inc()
		a.logger.Warn("persist: discarding malformed state", slog.String("key", a.key), slog.String("error", err.Error()))
		return Defaults()
	}
	return st
}

// Save writes the projection, keeping only the newest insight.Capacity
// records. Failures are logged and counted.
func (a *Adapter) Save(s models.PersistedState) {
	if err := a.write(s); err != nil {
		metrics.PersistWritesTotal.WithLabelValues("error").Inc()
		a.logger.Warn("persist: write failed", slog.String("key", a.key), slog.String("error", err.Error()))
		return
	}
	metrics.PersistWritesTotal.WithLabelValues("ok").Inc()
}

func (a *Adapter) write(s models.PersistedState) error {
	raw, err := Encode(s)
	if err != nil {
		return err
	}
	return a.store.Put(a.key, raw)
}

// Encode serialises s in the stored format.
func Encode(s models.PersistedState) (string, error) {
	out := s
	out.Insights = insight.Tail(s.Insights)
	if out.Insights == nil {
		out.Insights = []models.InsightRecord{}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Decode parses the stored format. Missing fields take their defaults and
// out-of-range numbers are clamped.
func Decode(raw string) (models.PersistedState, error) {
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return models.PersistedState{}, err
	}

	st := Defaults()
	if rec.Distinctions != nil {
		st.Distinctions = params.ClampFloat(*rec.Distinctions)
	}
	if rec.Ideation != nil {
		st.Ideation = params.ClampFloat(*rec.Ideation)
	}
	if rec.Complexity != nil {
		st.Complexity = params.ClampFloat(*rec.Complexity)
	}
	for _, r := range rec.Insights {
		st.Insights = append(st.Insights, models.InsightRecord{Text: r.Text, Timestamp: int64(r.Timestamp)})
	}
	st.Insights = insight.Tail(st.Insights)
	return st, nil
}
