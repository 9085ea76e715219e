package session

import (
	"time"

	"github.com/starford/cfreality/internal/clock"
	"github.com/starford/cfreality/internal/cosmology"
	"github.com/starford/cfreality/internal/metrics"
	"github.com/starford/cfreality/internal/models"
	"github.com/starford/cfreality/internal/params"
)

// ClockState describes the animation clock.
type ClockState struct {
	Running bool    `json:"running"`
	Phase   float64 `json:"phase"`
}

// NodeView is a catalog node decorated with its live state.
type NodeView struct {
	cosmology.Node
	Index     int     `json:"index"`
	Collapsed bool    `json:"collapsed"`
	Boost     int     `json:"boost"`
	Opacity   float64 `json:"opacity"`
}

// Snapshot is a consistent read of the whole session.
type Snapshot struct {
	Session    string                 `json:"session"`
	Parameters models.Parameters      `json:"parameters"`
	Coherence  float64                `json:"coherence"`
	Collapsed  []cosmology.NodeID     `json:"collapsed"`
	Insights   []models.InsightRecord `json:"insights"`
	Clock      ClockState             `json:"clock"`
}

// Snapshot returns the current state. Insights are newest first.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	p := s.params.Read()
	snap := Snapshot{
		Session:    s.id,
		Parameters: p,
		Coherence:  params.Coherence(p),
		Collapsed:  s.collapsed.IDs(),
		Insights:   s.insights.List(),
	}
	s.mu.Unlock()

	snap.Clock = s.ClockState()
	return snap
}

// Nodes returns every catalog node with its collapse flag, boost and the
// opacity for the current animation phase.
func (s *Session) Nodes() []NodeView {
	phase := s.clock.Phase()

	s.mu.Lock()
	defer s.mu.Unlock()

	nodes := cosmology.Nodes()
	out := make([]NodeView, len(nodes))
	for i, n := range nodes {
		out[i] = NodeView{
			Node:      n,
			Index:     i,
			Collapsed: s.collapsed.Has(n.ID),
			Boost:     cosmology.Boost(i),
			Opacity:   clock.Opacity(phase, i),
		}
	}
	return out
}

// Node returns the view of a single stage.
func (s *Session) Node(id string) (NodeView, bool) {
	_, index, ok := cosmology.Lookup(id)
	if !ok {
		return NodeView{}, false
	}
	return s.Nodes()[index], true
}

// ClockState reports whether the animation runs and its phase.
func (s *Session) ClockState() ClockState {
	return ClockState{Running: s.clock.Running(), Phase: s.clock.Phase()}
}

// StartClock resumes the animation.
func (s *Session) StartClock() ClockState {
	s.clock.Start()
	st := s.ClockState()
	s.notifier.Notify(EventClockState, st)
	return st
}

// StopClock pauses the animation. Safe to call repeatedly.
func (s *Session) StopClock() ClockState {
	s.clock.Stop()
	st := s.ClockState()
	s.notifier.Notify(EventClockState, st)
	return st
}

// ToggleClock flips the animation between running and paused.
func (s *Session) ToggleClock() ClockState {
	s.clock.Toggle()
	st := s.ClockState()
	s.notifier.Notify(EventClockState, st)
	return st
}

// SetClockTiming changes the tick period and step of the animation.
func (s *Session) SetClockTiming(period time.Duration, step float64) {
	s.clock.SetTiming(period, step)
}

// Close stops the animation clock.
func (s *Session) Close() {
	s.clock.Stop()
}

func (s *Session) onTick(phase float64) {
	metrics.ClockTicksTotal.Inc()
	s.notifier.Notify(EventClockPhase, map[string]float64{"phase": phase})
}
