package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/cfreality/internal/apperr"
	"github.com/starford/cfreality/internal/checksum"
	"github.com/starford/cfreality/internal/dictionary"
	"github.com/starford/cfreality/internal/params"
	"github.com/starford/cfreality/internal/session"
)

// Handler holds API route handlers.
type Handler struct {
	sess *session.Session
}

// NewHandler creates a new Handler.
func NewHandler(sess *session.Session) *Handler {
	return &Handler{sess: sess}
}

// GetState handles GET /api/state.
//
//	@Summary		Full session snapshot
//	@Tags			state
//	@Produce		json
//	@Param			If-None-Match	header	string	false	"ETag of a cached snapshot"
//	@Success		200		{object}	session.Snapshot
//	@Success		304		"Not modified"
//	@Security		BearerAuth
//	@Router			/state [get]
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(h.sess.Snapshot()); err != nil {
		slog.Error("encode state failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	etag := `"` + checksum.Sum(buf.Bytes()) + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// ListNodes handles GET /api/nodes.
//
//	@Summary		List the six stages in catalog order
//	@Tags			nodes
//	@Produce		json
//	@Success		200		{object}	NodeListResponse
//	@Security		BearerAuth
//	@Router			/nodes [get]
func (h *Handler) ListNodes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NodeListResponse{Nodes: h.sess.Nodes()})
}

// GetNode handles GET /api/nodes/{id}.
//
//	@Summary		Get one stage
//	@Tags			nodes
//	@Produce		json
//	@Param			id	path		string	true	"Stage id"
//	@Success		200	{object}	session.NodeView
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/nodes/{id} [get]
func (h *Handler) GetNode(w http.ResponseWriter, r *http.Request) {
	node, ok := h.sess.Node(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody(apperr.ErrNotFound.Error()))
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// CollapseNode handles POST /api/nodes/{id}/collapse. Unknown and already
// collapsed stages answer 200 with changed=false.
//
//	@Summary		Collapse a stage
//	@Tags			nodes
//	@Produce		json
//	@Param			id	path		string	true	"Stage id"
//	@Success		200	{object}	CollapseResponse
//	@Security		BearerAuth
//	@Router			/nodes/{id}/collapse [post]
func (h *Handler) CollapseNode(w http.ResponseWriter, r *http.Request) {
	changed := h.sess.Collapse(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, CollapseResponse{Changed: changed, State: h.sess.Snapshot()})
}

// Reset handles POST /api/reset.
//
//	@Summary		Clear all collapses and rewind the animation
//	@Tags			state
//	@Produce		json
//	@Success		200	{object}	session.Snapshot
//	@Security		BearerAuth
//	@Router			/reset [post]
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.sess.Reset()
	writeJSON(w, http.StatusOK, h.sess.Snapshot())
}

// SetParameter handles PUT /api/parameters/{name}.
//
//	@Summary		Set one parameter (clamped to 0..100)
//	@Tags			parameters
//	@Accept			json
//	@Produce		json
//	@Param			name	path		string				true	"distinctions, ideation or complexity"
//	@Param			body	body		SetParameterRequest	true	"New value"
//	@Success		200		{object}	ParametersResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/parameters/{name} [put]
func (h *Handler) SetParameter(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req SetParameterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	p, err := h.sess.SetParameter(name, params.ClampFloat(*req.Value))
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidParameter) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		} else {
			slog.Error("set parameter failed", slog.String("name", name), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, ParametersResponse{Parameters: p, Coherence: params.Coherence(p)})
}

// PatchParameters handles PATCH /api/parameters.
//
//	@Summary		Set any subset of the parameters at once
//	@Tags			parameters
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PatchParametersRequest	true	"Values to change"
//	@Success		200		{object}	ParametersResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/parameters [patch]
func (h *Handler) PatchParameters(w http.ResponseWriter, r *http.Request) {
	var req PatchParametersRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	p := h.sess.UpdateParameters(req)
	writeJSON(w, http.StatusOK, ParametersResponse{Parameters: p, Coherence: params.Coherence(p)})
}

// ListInsights handles GET /api/insights.
//
//	@Summary		Insight log, newest first
//	@Tags			insights
//	@Produce		json
//	@Success		200	{object}	InsightListResponse
//	@Security		BearerAuth
//	@Router			/insights [get]
func (h *Handler) ListInsights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, InsightListResponse{Insights: h.sess.Insights()})
}

// SearchDictionary handles GET /api/dictionary.
//
//	@Summary		Filter the glossary
//	@Tags			dictionary
//	@Produce		json
//	@Param			q		query		string	false	"Substring of title or definition"
//	@Param			letter	query		string	false	"Initial letter of the title"
//	@Success		200		{object}	TermListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/dictionary [get]
func (h *Handler) SearchDictionary(w http.ResponseWriter, r *http.Request) {
	q := dictionaryQuery{
		Query:  r.URL.Query().Get("q"),
		Letter: strings.TrimSpace(r.URL.Query().Get("letter")),
	}
	if err := q.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, TermListResponse{Terms: dictionary.Filter(q.Query, q.Letter)})
}

// GetTerm handles GET /api/dictionary/{id}.
//
//	@Summary		Get one glossary term with its related terms
//	@Tags			dictionary
//	@Produce		json
//	@Param			id	path		string	true	"Term id"
//	@Success		200	{object}	TermDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/dictionary/{id} [get]
func (h *Handler) GetTerm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	term, ok := dictionary.Lookup(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody(apperr.ErrNotFound.Error()))
		return
	}
	writeJSON(w, http.StatusOK, TermDetail{Term: term, RelatedTerms: dictionary.Related(id)})
}

// GetClock handles GET /api/clock.
//
//	@Summary		Animation clock state
//	@Tags			clock
//	@Produce		json
//	@Success		200	{object}	session.ClockState
//	@Security		BearerAuth
//	@Router			/clock [get]
func (h *Handler) GetClock(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sess.ClockState())
}

// StartClock handles POST /api/clock/start.
func (h *Handler) StartClock(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sess.StartClock())
}

// StopClock handles POST /api/clock/stop.
func (h *Handler) StopClock(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sess.StopClock())
}
