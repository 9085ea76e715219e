// Package session owns the live state of the diagram: parameters, collapsed
// stages, insights and the animation clock. Every surface (HTTP, MCP, TUI,
// CLI) mutates the model through a Session.
package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/cfreality/internal/clock"
	"github.com/starford/cfreality/internal/cosmology"
	"github.com/starford/cfreality/internal/insight"
	"github.com/starford/cfreality/internal/metrics"
	"github.com/starford/cfreality/internal/models"
	"github.com/starford/cfreality/internal/params"
	"github.com/starford/cfreality/internal/persist"
)

// Event types passed to the Notifier.
const (
	EventParametersUpdated = "parameters.updated"
	EventNodeCollapsed     = "node.collapsed"
	EventInsightAppended   = "insight.appended"
	EventDiagramReset      = "diagram.reset"
	EventClockPhase        = "clock.phase"
	EventClockState        = "clock.state"
)

// Notifier receives state change events. Implementations must not block.
type Notifier interface {
	Notify(eventType string, data any)
}

// Session is the owned, explicit state of one running app. Mutations are
// serialized by an internal mutex.
type Session struct {
	id string

	mu        sync.Mutex
	params    *params.State
	collapsed cosmology.CollapseSet
	insights  *insight.Log

	clock    *clock.Clock
	saver    persist.Saver
	notifier Notifier
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Session.
type Option func(*sessionOptions)

type sessionOptions struct {
	initial  models.PersistedState
	saver    persist.Saver
	notifier Notifier
	now      func() time.Time
	logger   *slog.Logger
	period   time.Duration
	step     float64
}

// WithInitial seeds the session from a loaded state.
func WithInitial(s models.PersistedState) Option {
	return func(o *sessionOptions) { o.initial = s }
}

// WithSaver sets where persisted snapshots go after every mutation.
func WithSaver(s persist.Saver) Option {
	return func(o *sessionOptions) { o.saver = s }
}

// WithNotifier sets the event sink.
func WithNotifier(n Notifier) Option {
	return func(o *sessionOptions) { o.notifier = n }
}

// WithNow overrides the clock used for insight timestamps.
func WithNow(now func() time.Time) Option {
	return func(o *sessionOptions) { o.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *sessionOptions) { o.logger = l }
}

// WithClockTiming sets the animation tick period and phase step.
func WithClockTiming(period time.Duration, step float64) Option {
	return func(o *sessionOptions) {
		o.period = period
		o.step = step
	}
}

type discardSaver struct{}

func (discardSaver) Save(models.PersistedState) {}

type discardNotifier struct{}

func (discardNotifier) Notify(string, any) {}

// New returns a session. Without WithInitial it starts from persist.Defaults.
// The animation clock is created stopped.
func New(opts ...Option) *Session {
	o := sessionOptions{
		initial:  persist.Defaults(),
		saver:    discardSaver{},
		notifier: discardNotifier{},
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{
		id:       uuid.NewString(),
		params:   params.New(o.initial.Params()),
		insights: insight.Restore(o.initial.Insights),
		saver:    o.saver,
		notifier: o.notifier,
		now:      o.now,
		logger:   o.logger,
	}
	s.clock = clock.New(o.period, o.step, s.onTick)
	metrics.Coherence.Set(params.Coherence(s.params.Read()))
	return s
}

// ID is a random identifier of this session, not persisted.
func (s *Session) ID() string { return s.id }

// Parameters returns the current triple.
func (s *Session) Parameters() models.Parameters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params.Read()
}

// Coherence is recomputed from the current parameters on every call.
func (s *Session) Coherence() float64 {
	return params.Coherence(s.Parameters())
}

// SetParameter clamps value into [0, 100] and stores it under name.
// The only error is an unknown name.
func (s *Session) SetParameter(name string, value int) (models.Parameters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.params.Set(name, value); err != nil {
		return s.params.Read(), err
	}
	metrics.ParameterUpdatesTotal.WithLabelValues(name).Inc()
	s.parametersChangedLocked()
	s.persistLocked()
	return s.params.Read(), nil
}

// Patch carries optional parameter values; nil fields are left unchanged.
type Patch struct {
	Distinctions *float64 `json:"distinctions,omitempty"`
	Ideation     *float64 `json:"ideation,omitempty"`
	Complexity   *float64 `json:"complexity,omitempty"`
}

// Empty reports whether the patch sets nothing.
func (p Patch) Empty() bool {
	return p.Distinctions == nil && p.Ideation == nil && p.Complexity == nil
}

// UpdateParameters applies every set field of p as one mutation.
func (s *Session) UpdateParameters(p Patch) models.Parameters {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Empty() {
		return s.params.Read()
	}
	set := func(name string, v *float64) {
		if v == nil {
			return
		}
		_ = s.params.Set(name, params.ClampFloat(*v))
		metrics.ParameterUpdatesTotal.WithLabelValues(name).Inc()
	}
	set(models.ParamDistinctions, p.Distinctions)
	set(models.ParamIdeation, p.Ideation)
	set(models.ParamComplexity, p.Complexity)

	s.parametersChangedLocked()
	s.persistLocked()
	return s.params.Read()
}

// Collapse marks the stage id as collapsed. Unknown or already collapsed
// ids are a no-op and report false. Otherwise the stage's catalog boost is
// added to distinctions (and 0.7 of it to ideation) and an insight recorded.
func (s *Session) Collapse(id string) bool {
	node, index, ok := cosmology.Lookup(id)
	if !ok {
		s.logger.Debug("session: collapse of unknown node ignored", slog.String("node", id))
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.collapsed.Add(node.ID) {
		return false
	}

	boost := cosmology.Boost(index)
	_ = s.params.Add(models.ParamDistinctions, float64(boost))
	_ = s.params.Add(models.ParamIdeation, float64(boost)*cosmology.IdeationFactor)
	rec := s.insights.Append(fmt.Sprintf("Collapsed distinction at %s", node.Label), s.now())

	metrics.CollapsesTotal.WithLabelValues(string(node.ID)).Inc()
	s.logger.Info("session: node collapsed",
		slog.String("node", string(node.ID)),
		slog.Int("boost", boost))

	s.notifier.Notify(EventNodeCollapsed, map[string]any{
		"id":    node.ID,
		"label": node.Label,
		"boost": boost,
	})
	s.parametersChangedLocked()
	s.notifier.Notify(EventInsightAppended, rec)
	s.persistLocked()
	return true
}

// IsCollapsed reports whether the stage id is collapsed.
func (s *Session) IsCollapsed(id string) bool {
	node, _, ok := cosmology.Lookup(id)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collapsed.Has(node.ID)
}

// Collapsed returns the collapsed stages in catalog order.
func (s *Session) Collapsed() []cosmology.NodeID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collapsed.IDs()
}

// Reset clears every collapse and rewinds the animation phase. Parameters and
// insights are left as they are.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collapsed.Clear()
	s.clock.Reset()
	metrics.DiagramResetsTotal.Inc()
	s.logger.Info("session: diagram reset")
	s.notifier.Notify(EventDiagramReset, map[string]any{})
}

// Insights returns the log newest first.
func (s *Session) Insights() []models.InsightRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insights.List()
}

// Persisted returns the projection that is written to storage.
func (s *Session) Persisted() models.PersistedState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistedLocked()
}

func (s *Session) persistedLocked() models.PersistedState {
	p := s.params.Read()
	return models.PersistedState{
		Distinctions: p.Distinctions,
		Ideation:     p.Ideation,
		Complexity:   p.Complexity,
		Insights:     s.insights.Records(),
	}
}

func (s *Session) persistLocked() {
	s.saver.Save(s.persistedLocked())
}

func (s *Session) parametersChangedLocked() {
	p := s.params.Read()
	c := params.Coherence(p)
	metrics.Coherence.Set(c)
	s.notifier.Notify(EventParametersUpdated, map[string]any{
		"parameters": p,
		"coherence":  c,
	})
}
