package services

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/checkia-backend/internal/data/repos"
	types "github.com/yungbote/checkia-backend/internal/domain"
	"github.com/yungbote/checkia-backend/internal/platform/ctxutil"
	"github.com/yungbote/checkia-backend/internal/platform/dbctx"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
)

const (
	MaxClaimRunes    = 5000
	MaxSourceLength  = 200
	DefaultListLimit = 100
)

type SubmissionService interface {
	Submit(dbc dbctx.Context, text, source string) (*types.Submission, *types.JobRun, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*types.Submission, error)
	ListMine(dbc dbctx.Context) ([]*types.Submission, error)
}

type submissionService struct {
	db    *gorm.DB
	log   *logger.Logger
	repo  repos.SubmissionRepo
	jobs  JobService
	store VerdictStore
}

func NewSubmissionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	repo repos.SubmissionRepo,
	jobs JobService,
	store VerdictStore,
) SubmissionService {
	return &submissionService{
		db:    db,
		log:   baseLog.With("service", "SubmissionService"),
		repo:  repo,
		jobs:  jobs,
		store: store,
	}
}

func requestUser(dbc dbctx.Context) (*ctxutil.RequestData, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	return rd, nil
}

func validateClaim(text, source string) (string, string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", "", newValidationError("text", "claim text is required")
	}
	if utf8.RuneCountInString(text) > MaxClaimRunes {
		return "", "", newValidationError("text", fmt.Sprintf("claim text exceeds %d characters", MaxClaimRunes))
	}
	source = strings.TrimSpace(source)
	if source != "" {
		if len(source) > MaxSourceLength {
			return "", "", newValidationError("source", fmt.Sprintf("source exceeds %d characters", MaxSourceLength))
		}
		u, err := url.Parse(source)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return "", "", newValidationError("source", "source must be an http(s) URL")
		}
	}
	return text, source, nil
}

// Submit validates the claim, stores it as pending and enqueues the text
// analysis job. A dispatch failure forces the submission terminal before the
// error is returned.
func (s *submissionService) Submit(dbc dbctx.Context, text, source string) (*types.Submission, *types.JobRun, error) {
	rd, err := requestUser(dbc)
	if err != nil {
		return nil, nil, err
	}
	text, source, err = validateClaim(text, source)
	if err != nil {
		return nil, nil, err
	}

	inner := dbctx.Context{Ctx: dbc.Ctx, Tx: dbc.DB(s.db)}
	sub, err := s.repo.Create(inner, &types.Submission{
		UserID:    rd.UserID,
		UserEmail: rd.Email,
		UserName:  rd.DisplayName,
		Text:      text,
		Source:    source,
		Status:    types.SubmissionStatusPending,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create submission: %w", err)
	}
	s.log.Info("Submission created", "submission_id", sub.ID, "user_id", rd.UserID)

	entityID := sub.ID
	job, err := s.jobs.Enqueue(dbctx.Context{Ctx: dbc.Ctx}, rd.UserID, types.JobTypeAnalyzeSubmissionText, types.EntitySubmission, &entityID, map[string]any{
		"submission_id": sub.ID.String(),
	})
	if job != nil {
		if serr := s.repo.SetJobID(inner, sub.ID, job.ID); serr != nil {
			s.log.Warn("SetJobID failed", "submission_id", sub.ID, "job_id", job.ID, "error", serr)
		}
		sub.JobID = &job.ID
	}
	if err != nil {
		s.log.Error("Enqueue failed", "submission_id", sub.ID, "error", err)
		if _, ferr := s.store.FailSubmission(inner, sub.ID, "dispatch failed: "+err.Error()); ferr != nil {
			s.log.Error("FailSubmission after dispatch error failed", "submission_id", sub.ID, "error", ferr)
		}
		return sub, job, fmt.Errorf("enqueue analysis: %w", err)
	}
	return sub, job, nil
}

func (s *submissionService) Get(dbc dbctx.Context, id uuid.UUID) (*types.Submission, error) {
	rd, err := requestUser(dbc)
	if err != nil {
		return nil, err
	}
	sub, err := s.repo.GetByID(dbctx.Context{Ctx: dbc.Ctx, Tx: dbc.DB(s.db)}, id)
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.UserID != rd.UserID {
		return nil, ErrNotFound
	}
	return sub, nil
}

func (s *submissionService) ListMine(dbc dbctx.Context) ([]*types.Submission, error) {
	rd, err := requestUser(dbc)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByUser(dbctx.Context{Ctx: dbc.Ctx, Tx: dbc.DB(s.db)}, rd.UserID, DefaultListLimit)
}
