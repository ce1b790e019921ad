package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/checkia-backend/internal/data/repos"
	types "github.com/yungbote/checkia-backend/internal/domain"
	"github.com/yungbote/checkia-backend/internal/platform/dbctx"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
	"github.com/yungbote/checkia-backend/internal/verification"
)

// VerdictStore owns every terminal write of a submission or an image
// verification. Each write applies at most once; a second call reports
// applied=false and has no side effects.
type VerdictStore interface {
	CompleteSubmission(dbc dbctx.Context, submissionID uuid.UUID, v verification.TextVerdict) (bool, error)
	FailSubmission(dbc dbctx.Context, submissionID uuid.UUID, reason string) (bool, error)
	CompleteImage(dbc dbctx.Context, verificationID uuid.UUID, v verification.ImageVerdict) (bool, error)
	FailImage(dbc dbctx.Context, verificationID uuid.UUID, reason string) (bool, error)
}

type verdictStore struct {
	db          *gorm.DB
	log         *logger.Logger
	submissions repos.SubmissionRepo
	images      repos.ImageVerificationRepo
	facts       repos.FactRepo
	keywords    repos.KeywordRepo
}

func NewVerdictStore(
	db *gorm.DB,
	baseLog *logger.Logger,
	submissions repos.SubmissionRepo,
	images repos.ImageVerificationRepo,
	facts repos.FactRepo,
	keywords repos.KeywordRepo,
) VerdictStore {
	return &verdictStore{
		db:          db,
		log:         baseLog.With("service", "VerdictStore"),
		submissions: submissions,
		images:      images,
		facts:       facts,
		keywords:    keywords,
	}
}

func jsonOf(v any) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte(`null`))
	}
	return datatypes.JSON(b)
}

// SubmissionStatusFor maps a text verdict onto the submission lifecycle.
func SubmissionStatusFor(verdict string) string {
	if verdict == types.VerdictTrue {
		return types.SubmissionStatusVerified
	}
	return types.SubmissionStatusRejected
}

func (s *verdictStore) CompleteSubmission(dbc dbctx.Context, submissionID uuid.UUID, v verification.TextVerdict) (bool, error) {
	applied := false
	err := dbc.DB(s.db).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		sub, err := s.submissions.GetByID(inner, submissionID)
		if err != nil {
			return err
		}
		if sub == nil {
			return fmt.Errorf("submission %s not found", submissionID)
		}
		ok, err := s.submissions.CompleteIfPending(inner, submissionID, map[string]interface{}{
			"status":      SubmissionStatusFor(v.Verdict),
			"verdict":     v.Verdict,
			"confidence":  verification.ClampConfidence(v.Confidence),
			"explanation": v.Explanation,
			"web_sources": jsonOf(v.Retrieval.Sources),
			"result":      jsonOf(v),
		})
		if err != nil || !ok {
			return err
		}
		applied = true
		if v.Verdict != types.VerdictTrue {
			return nil
		}
		return s.createFact(inner, sub, v)
	})
	return applied, err
}

func factSource(sub *types.Submission, v verification.TextVerdict) string {
	for _, u := range v.PrimarySources {
		if strings.TrimSpace(u) != "" {
			return u
		}
	}
	for _, src := range v.Retrieval.Sources {
		if src.Link != "" {
			return src.Link
		}
	}
	if strings.TrimSpace(sub.Source) != "" {
		return sub.Source
	}
	return types.NoVerificationSource
}

func (s *verdictStore) createFact(dbc dbctx.Context, sub *types.Submission, v verification.TextVerdict) error {
	words := verification.ExtractKeywords(sub.Text)
	kws, err := s.keywords.GetOrCreate(dbc, words)
	if err != nil {
		return fmt.Errorf("keywords: %w", err)
	}
	subID := sub.ID
	fact := &types.Fact{
		ID:           uuid.New(),
		Text:         sub.Text,
		Source:       factSource(sub, v),
		WebSources:   jsonOf(v.Retrieval.Sources),
		SubmissionID: &subID,
		CreatedAt:    time.Now().UTC(),
	}
	created, err := s.facts.CreateForSubmission(dbc, fact, kws)
	if err != nil {
		return fmt.Errorf("fact: %w", err)
	}
	if created {
		s.log.Info("Fact created", "submission_id", sub.ID, "fact_id", fact.ID, "keywords", len(kws))
	}
	return nil
}

func (s *verdictStore) FailSubmission(dbc dbctx.Context, submissionID uuid.UUID, reason string) (bool, error) {
	return s.submissions.CompleteIfPending(dbctx.Context{Ctx: dbc.Ctx, Tx: dbc.DB(s.db)}, submissionID, map[string]interface{}{
		"status":      types.SubmissionStatusRejected,
		"verdict":     types.VerdictError,
		"confidence":  0,
		"explanation": reason,
		"result":      jsonOf(map[string]any{"error": reason}),
	})
}

func (s *verdictStore) CompleteImage(dbc dbctx.Context, verificationID uuid.UUID, v verification.ImageVerdict) (bool, error) {
	row, err := s.images.GetByID(dbctx.Context{Ctx: dbc.Ctx, Tx: dbc.DB(s.db)}, verificationID)
	if err != nil {
		return false, err
	}
	if row == nil {
		return false, fmt.Errorf("image verification %s not found", verificationID)
	}
	status := v.Status
	if !types.ValidImageStatus(row.Kind, status) || status == types.ImageStatusInProgress {
		s.log.Warn("Verdict status not valid for kind; storing error", "verification_id", verificationID, "kind", row.Kind, "status", status)
		status = types.ImageStatusError
	}
	model := v.Model
	if model == "" {
		model = row.ModelUsed
	}
	return s.images.CompleteIfInProgress(dbctx.Context{Ctx: dbc.Ctx, Tx: dbc.DB(s.db)}, verificationID, map[string]interface{}{
		"status":      status,
		"confidence":  verification.ClampConfidence(v.Confidence),
		"explanation": v.Explanation,
		"details":     jsonOf(v.Details),
		"model_used":  model,
	})
}

func (s *verdictStore) FailImage(dbc dbctx.Context, verificationID uuid.UUID, reason string) (bool, error) {
	return s.images.CompleteIfInProgress(dbctx.Context{Ctx: dbc.Ctx, Tx: dbc.DB(s.db)}, verificationID, map[string]interface{}{
		"status":      types.ImageStatusError,
		"confidence":  0,
		"explanation": reason,
		"details":     jsonOf(map[string]any{"error": reason}),
	})
}
