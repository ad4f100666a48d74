// Package worker consumes scoring requests from the event bus, runs the
// scoring pipeline, persists the run, and publishes the outcome. It is the
// headless counterpart of the HTTP submission path.
package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/GulmanM/Restraints-Quality-Calculator/internal/config"
	"github.com/GulmanM/Restraints-Quality-Calculator/internal/events"
	"github.com/GulmanM/Restraints-Quality-Calculator/internal/restraint"
	"github.com/GulmanM/Restraints-Quality-Calculator/internal/scoring"
	"github.com/GulmanM/Restraints-Quality-Calculator/internal/store"
)

const storeTimeout = 10 * time.Second

type Worker struct {
	store  store.Store
	events events.Client
	cfg    *config.Config
	logger *slog.Logger
}

func New(s store.Store, ev events.Client, cfg *config.Config, logger *slog.Logger) *Worker {
	return &Worker{store: s, events: ev, cfg: cfg, logger: logger}
}

// Start subscribes to the run-request subject. Handlers run on the event
// client's delivery goroutine; each request is scored independently.
func (w *Worker) Start() error {
	return w.events.Subscribe(events.SubjectRunRequest, w.handleRequest)
}

func (w *Worker) handleRequest(subject string, data []byte) {
	var req events.RunRequestEvent
	if err := json.Unmarshal(data, &req); err != nil {
		w.logger.Warn("malformed run request", "subject", subject, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	decayName := req.Decay
	if decayName == "" {
		decayName = w.cfg.Scoring.Decay
	}
	d0 := w.cfg.Scoring.D0
	if req.D0 != nil {
		d0 = *req.D0
	}
	decay, err := scoring.DecayForName(decayName, d0)
	if err != nil {
		w.reject(ctx, req, err.Error())
		return
	}

	scorer := scoring.NewScorer(decay, w.logger)
	res, err := scorer.Score(req.Constants, restraint.Set(req.Records))
	if err != nil {
		w.reject(ctx, req, err.Error())
		return
	}

	run := &store.Run{
		Source:      "events",
		Pipeline:    req.Pipeline,
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
	for i, r := range req.Records {
		records[i] = store.RunRecord{
			RecordID: r.ID,
			X:        r.X, Y: r.Y, Z: r.Z,
			SL: r.SL, WI: r.WI, Dij: r.Dij,
			FDij:  res.Records[i].FDij,
			Omega: res.Records[i].Omega,
		}
	}

	if err := w.store.CreateRun(ctx, run, records); err != nil {
		w.logger.Error("failed to persist run", "pipeline", req.Pipeline, "error", err)
		return
	}

	scored := events.RunScoredEvent{
		RunID:       run.ID.String(),
		RequestID:   req.RequestID,
		Pipeline:    req.Pipeline,
		RecordCount: run.RecordCount,
		MeanOmega:   run.MeanOmega,
		SigmaP:      run.SigmaP,
		SigmaL:      run.SigmaL,
		FinalScore:  run.FinalScore,
		ScoredAt:    run.CreatedAt,
	}
	if err := w.events.Publish(ctx, events.SubjectRunScored(scored.RunID), scored); err != nil {
		w.logger.Warn("failed to publish scored event", "run_id", scored.RunID, "error", err)
	}
	w.logger.Info("run scored",
		"run_id", scored.RunID,
		"pipeline", req.Pipeline,
		"records", run.RecordCount,
		"final_score", run.FinalScore,
	)
}

func (w *Worker) reject(ctx context.Context, req events.RunRequestEvent, reason string) {
	w.logger.Warn("run request rejected", "pipeline", req.Pipeline, "reason", reason)
	id := req.RequestID
	if id == "" {
		id = "unknown"
	}
	rej := events.RunRejectedEvent{RequestID: req.RequestID, Pipeline: req.Pipeline, Reason: reason}
	if err := w.events.Publish(ctx, events.SubjectRunRejected(id), rej); err != nil {
		w.logger.Warn("failed to publish rejection", "request_id", id, "error", err)
	}
}
