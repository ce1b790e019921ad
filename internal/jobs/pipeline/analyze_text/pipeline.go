package analyze_text

import (
	"errors"
	"fmt"

	types "github.com/yungbote/checkia-backend/internal/domain"
	jobrt "github.com/yungbote/checkia-backend/internal/jobs/runtime"
	"github.com/yungbote/checkia-backend/internal/platform/dbctx"
	"github.com/yungbote/checkia-backend/internal/services"
	"github.com/yungbote/checkia-backend/internal/verification"
)

var errMissingSubmission = errors.New("missing submission_id")

func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	id, ok := jc.PayloadUUID("submission_id")
	if !ok {
		jc.FailPermanent("load", errMissingSubmission)
		return nil
	}
	dbc := dbctx.Context{Ctx: jc.Ctx, Tx: p.db}
	log := p.log.With("job_id", jc.Job.ID, "submission_id", id)

	sub, err := p.submissions.GetByID(dbc, id)
	if err != nil {
		jc.Fail("load", err)
		return nil
	}
	if sub == nil {
		jc.FailPermanent("load", fmt.Errorf("submission %s not found", id))
		return nil
	}
	if sub.IsTerminal() {
		log.Info("Submission already terminal; skipping", "status", sub.Status)
		jc.Succeed("done", result(sub.ID, sub.Status, sub.Verdict, sub.Confidence, sub.Explanation, false))
		return nil
	}

	jc.Progress("analyze", 10, "Analyse de la déclaration")
	v := p.analyzer.AnalyzeText(jc.Ctx, id.String(), sub.Text)

	jc.Progress("persist", 90, "Enregistrement du verdict")
	applied, err := p.store.CompleteSubmission(dbc, id, v)
	if err != nil {
		jc.Fail("persist", err)
		return nil
	}
	if applied && p.observer != nil {
		p.observer.ObserveVerdict(verification.PathText, v.Verdict)
	}
	log.Info("Submission analyzed", "verdict", v.Verdict, "confidence", v.Confidence, "outcome", v.Outcome, "applied", applied)

	status := services.SubmissionStatusFor(v.Verdict)
	if !applied {
		if cur, gerr := p.submissions.GetByID(dbc, id); gerr == nil && cur != nil {
			jc.Succeed("done", result(cur.ID, cur.Status, cur.Verdict, cur.Confidence, cur.Explanation, false))
			return nil
		}
	}
	jc.Succeed("done", result(id, status, v.Verdict, verification.ClampConfidence(v.Confidence), v.Explanation, applied))
	return nil
}

// Abandon forces the submission into its terminal error state once the job
// will not be retried.
func (p *Pipeline) Abandon(jc *jobrt.Context, cause error) error {
	id, ok := jc.PayloadUUID("submission_id")
	if !ok {
		return nil
	}
	applied, err := p.store.FailSubmission(dbctx.Context{Ctx: jc.Ctx, Tx: p.db}, id, cause.Error())
	if err != nil {
		return err
	}
	if applied && p.observer != nil {
		p.observer.ObserveVerdict(verification.PathText, types.VerdictError)
	}
	return nil
}
