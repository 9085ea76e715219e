package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/cfreality/internal/dictionary"
	"github.com/starford/cfreality/internal/models"
	"github.com/starford/cfreality/internal/session"
)

// SetParameterRequest is the request body for PUT /parameters/{name}.
// Out-of-range values are clamped, not rejected.
type SetParameterRequest struct {
	Value *float64 `json:"value" example:"75" validate:"required"`
}

// Validate implements validation.Validatable.
func (r SetParameterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Value, validation.NotNil),
	)
}

// PatchParametersRequest is the request body for PATCH /parameters.
type PatchParametersRequest = session.Patch

// ParametersResponse is returned by every parameter mutation.
type ParametersResponse struct {
	Parameters models.Parameters `json:"parameters" validate:"required"`
	Coherence  float64           `json:"coherence" example:"28.1" validate:"required"`
}

// CollapseResponse reports whether a collapse changed anything.
type CollapseResponse struct {
	Changed bool             `json:"changed" validate:"required"`
	State   session.Snapshot `json:"state" validate:"required"`
}

// NodeListResponse wraps the six stages.
type NodeListResponse struct {
	Nodes []session.NodeView `json:"nodes" validate:"required"`
}

// InsightListResponse wraps the insight log, newest first.
type InsightListResponse struct {
	Insights []models.InsightRecord `json:"insights" validate:"required"`
}

// TermListResponse wraps dictionary filter results.
type TermListResponse struct {
	Terms []dictionary.Term `json:"terms" validate:"required"`
}

// TermDetail is a single term with its resolved related terms.
type TermDetail struct {
	dictionary.Term
	RelatedTerms []dictionary.Term `json:"related_terms" validate:"required"`
}

// dictionaryQuery holds the GET /dictionary filters.
type dictionaryQuery struct {
	Query  string
	Letter string
}

func (q dictionaryQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Query, validation.Length(0, 200)),
		validation.Field(&q.Letter, validation.Length(1, 1), validation.In(letterValues()...)),
	)
}

func letterValues() []interface{} {
	letters := dictionary.Letters()
	out := make([]interface{}, 0, 2*len(letters))
	for _, l := range letters {
		out = append(out, l, string(l[0]+'a'-'A'))
	}
	return out
}
