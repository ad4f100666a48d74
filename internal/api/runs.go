package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/GulmanM/Restraints-Quality-Calculator/internal/config"
	"github.com/GulmanM/Restraints-Quality-Calculator/internal/events"
	"github.com/GulmanM/Restraints-Quality-Calculator/internal/restraint"
	"github.com/GulmanM/Restraints-Quality-Calculator/internal/scoring"
	"github.com/GulmanM/Restraints-Quality-Calculator/internal/store"
)

type RunsHandler struct {
	store  store.Store
	events events.Client
	cfg    *config.Config
}

func NewRunsHandler(s store.Store, ev events.Client, cfg *config.Config) *RunsHandler {
	return &RunsHandler{store: s, events: ev, cfg: cfg}
}

type SubmitRunRequest struct {
	Constants restraint.Constants `json:"constants"`
	Records   []restraint.Record  `json:"records"`
	Decay     string              `json:"decay,omitempty"`
	// D0 overrides the configured exp-decay reference distance; a pointer
	// so an explicit zero is distinguishable from absent.
	D0 *float64 `json:"d0,omitempty"`
}

// RunResponse pairs the persisted run with the per-record derived values,
// so callers can audit how each restraint contributed.
type RunResponse struct {
	Run     *store.Run            `json:"run"`
	Records []scoring.RecordScore `json:"records"`
}

func (h *RunsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req SubmitRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	decayName := req.Decay
	if decayName == "" {
		decayName = h.cfg.Scoring.Decay
	}
	d0 := h.cfg.Scoring.D0
	if req.D0 != nil {
		d0 = *req.D0
	}
	decay, err := scoring.DecayForName(decayName, d0)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	scorer := scoring.NewScorer(decay, nil)
	res, err := scorer.Score(req.Constants, restraint.Set(req.Records))
	if err != nil {
		invalidSubmissions.Inc()
		status := http.StatusUnprocessableEntity
		if errors.Is(err, restraint.ErrEmptySet) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	run := &store.Run{
		Source:      "api",
		Pipeline:    r.Header.Get("X-Pipeline-ID"),
		Constants:   req.Constants,
		DecayName:   decayName,
		D0:          d0,
		RecordCount: len(req.Records),
		MeanOmega:   res.MeanOmega,
		SigmaP:      res.SigmaP,
		SigmaL:      res.SigmaL,
		FinalScore:  res.FinalScore,
	}
	records := make([]store.RunRecord, len(req.Records))
	for i, rec := range req.Records {
		records[i] = store.RunRecord{
			RecordID: rec.ID,
			X:        rec.X, Y: rec.Y, Z: rec.Z,
			SL: rec.SL, WI: rec.WI, Dij: rec.Dij,
			FDij:  res.Records[i].FDij,
			Omega: res.Records[i].Omega,
		}
	}
	if err := h.store.CreateRun(r.Context(), run, records); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	runsScored.WithLabelValues(run.Source).Inc()
	finalScores.Observe(run.FinalScore)

	if h.events != nil {
		scored := events.RunScoredEvent{
			RunID:       run.ID.String(),
			Pipeline:    run.Pipeline,
			RecordCount: run.RecordCount,
			MeanOmega:   run.MeanOmega,
			SigmaP:      run.SigmaP,
			SigmaL:      run.SigmaL,
			FinalScore:  run.FinalScore,
			ScoredAt:    run.CreatedAt,
		}
		_ = h.events.Publish(r.Context(), events.SubjectRunScored(scored.RunID), scored)
	}

	writeJSON(w, http.StatusCreated, RunResponse{Run: run, Records: res.Records})
}

func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.RunFilter{
		Source:   r.URL.Query().Get("source"),
		Pipeline: r.URL.Query().Get("pipeline"),
		Limit:    50,
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}

	runs, err := h.store.ListRuns(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid run id"})
		return
	}
	run, err := h.store.GetRun(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if run == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *RunsHandler) Records(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid run id"})
		return
	}
	run, err := h.store.GetRun(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if run == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
		return
	}
	records, err := h.store.GetRunRecords(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if records == nil {
		records = []store.RunRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}
