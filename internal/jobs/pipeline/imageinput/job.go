package imageinput

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/checkia-backend/internal/data/repos"
	types "github.com/yungbote/checkia-backend/internal/domain"
	jobrt "github.com/yungbote/checkia-backend/internal/jobs/runtime"
	"github.com/yungbote/checkia-backend/internal/platform/dbctx"
	"github.com/yungbote/checkia-backend/internal/services"
	"github.com/yungbote/checkia-backend/internal/verification"
)

const PayloadKey = "verification_id"

// Load resolves the job's image verification. done is true when the job has
// already been settled: the payload or record was invalid, the lookup failed,
// or the record is terminal and the run is a redelivery.
func Load(jc *jobrt.Context, dbc dbctx.Context, repo repos.ImageVerificationRepo) (*types.ImageVerification, bool) {
	id, ok := jc.PayloadUUID(PayloadKey)
	if !ok {
		jc.FailPermanent("load", errors.New("missing "+PayloadKey))
		return nil, true
	}
	rec, err := repo.GetByID(dbc, id)
	if err != nil {
		jc.Fail("load", err)
		return nil, true
	}
	if rec == nil {
		jc.FailPermanent("load", fmt.Errorf("image verification %s not found", id))
		return nil, true
	}
	if rec.IsTerminal() {
		jc.Succeed("done", map[string]any{
			"success":         rec.Status != types.ImageStatusError,
			"verification_id": rec.ID.String(),
			"status":          rec.Status,
			"confidence":      rec.Confidence,
			"explanation":     rec.Explanation,
			"applied":         false,
		})
		return nil, true
	}
	return rec, false
}

func Result(id uuid.UUID, v verification.ImageVerdict) map[string]any {
	return map[string]any{
		"success":         v.Status != types.ImageStatusError,
		"verification_id": id.String(),
		"status":          v.Status,
		"confidence":      verification.ClampConfidence(v.Confidence),
		"explanation":     v.Explanation,
		"details":         v.Details,
	}
}

// Abandon forces the verification into the error state.
func Abandon(jc *jobrt.Context, dbc dbctx.Context, store services.VerdictStore, cause error) error {
	id, ok := jc.PayloadUUID(PayloadKey)
	if !ok {
		return nil
	}
	_, err := store.FailImage(dbc, id, cause.Error())
	return err
}
