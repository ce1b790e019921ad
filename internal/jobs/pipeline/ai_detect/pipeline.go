package ai_detect

import (
	"errors"

	types "github.com/yungbote/checkia-backend/internal/domain"
	"github.com/yungbote/checkia-backend/internal/jobs/pipeline/imageinput"
	jobrt "github.com/yungbote/checkia-backend/internal/jobs/runtime"
	"github.com/yungbote/checkia-backend/internal/platform/dbctx"
	"github.com/yungbote/checkia-backend/internal/verification"
)

func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	dbc := dbctx.Context{Ctx: jc.Ctx, Tx: p.db}
	rec, done := imageinput.Load(jc, dbc, p.images)
	if done {
		return nil
	}
	log := p.log.With("job_id", jc.Job.ID, "verification_id", rec.ID)

	jc.Progress("prepare", 10, "Préparation de l'image")
	prepared := p.input.Prepare(jc.Ctx, rec)

	jc.Progress("analyze", 30, "Détection de génération par IA")
	v := p.analyzer.DetectAIImage(jc.Ctx, rec.ID.String(), prepared.Input)
	imageinput.AttachEvidence(&v, prepared.Evidence)

	jc.Progress("persist", 90, "Enregistrement du verdict")
	applied, err := p.store.CompleteImage(dbc, rec.ID, v)
	if err != nil {
		jc.Fail("persist", err)
		return nil
	}
	if applied && p.observer != nil {
		p.observer.ObserveVerdict(verification.PathAIDetection, v.Status)
	}
	log.Info("AI detection finished", "status", v.Status, "confidence", v.Confidence, "outcome", v.Outcome, "applied", applied)

	if v.Status == types.ImageStatusError {
		jc.FailPermanent("analyze", errors.New(v.Explanation))
		return nil
	}
	jc.Succeed("done", imageinput.Result(rec.ID, v))
	return nil
}

func (p *Pipeline) Abandon(jc *jobrt.Context, cause error) error {
	return imageinput.Abandon(jc, dbctx.Context{Ctx: jc.Ctx, Tx: p.db}, p.store, cause)
}
