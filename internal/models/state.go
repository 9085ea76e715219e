// Package models defines the shared domain types for cfreality.
package models

// Parameter names accepted by the simulator.
const (
	ParamDistinctions = "distinctions"
	ParamIdeation     = "ideation"
	ParamComplexity   = "complexity"
)

// ParameterNames lists the simulator parameters in display order.
var ParameterNames = []string{ParamDistinctions, ParamIdeation, ParamComplexity}

// Parameters is the simulator triple. Every field stays within [0, 100].
type Parameters struct {
	Distinctions int `json:"distinctions"`
	Ideation     int `json:"ideation"`
	Complexity   int `json:"complexity"`
}

// InsightRecord is one line of the insight log.
type InsightRecord struct {
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"` // epoch millis
}

// PersistedState is the projection of the session that survives a reload.
type PersistedState struct {
	Distinctions int             `json:"distinctions"`
	Ideation     int             `json:"ideation"`
	Complexity   int             `json:"complexity"`
	Insights     []InsightRecord `json:"insights"`
}

// Params returns the parameter triple of the persisted state.
func (s PersistedState) Params() Parameters {
	return Parameters{
		Distinctions: s.Distinctions,
		Ideation:     s.Ideation,
		Complexity:   s.Complexity,
	}
}
