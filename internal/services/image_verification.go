package services

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/checkia-backend/internal/data/repos"
	types "github.com/yungbote/checkia-backend/internal/domain"
	"github.com/yungbote/checkia-backend/internal/platform/dbctx"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
)

type ImageUpload struct {
	Filename string
	Data     []byte
	Claim    string
}

type ImageVerificationService interface {
	Submit(dbc dbctx.Context, kind string, in ImageUpload) (*types.ImageVerification, *types.JobRun, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*types.ImageVerification, error)
	ListMine(dbc dbctx.Context) ([]*types.ImageVerification, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type imageVerificationService struct {
	db        *gorm.DB
	log       *logger.Logger
	repo      repos.ImageVerificationRepo
	images    ImageStore
	jobs      JobService
	store     VerdictStore
	modelName string
}

func NewImageVerificationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	repo repos.ImageVerificationRepo,
	images ImageStore,
	jobs JobService,
	store VerdictStore,
	modelName string,
) ImageVerificationService {
	if strings.TrimSpace(modelName) == "" {
		modelName = types.DefaultImageModel
	}
	return &imageVerificationService{
		db:        db,
		log:       baseLog.With("service", "ImageVerificationService"),
		repo:      repo,
		images:    images,
		jobs:      jobs,
		store:     store,
		modelName: modelName,
	}
}

func jobTypeForKind(kind string) (string, error) {
	switch kind {
	case types.ImageKindContent:
		return types.JobTypeVerifyImageContent, nil
	case types.ImageKindAIDetection:
		return types.JobTypeDetectAIImage, nil
	}
	return "", newValidationError("kind", "unknown verification kind "+kind)
}

func (s *imageVerificationService) Submit(dbc dbctx.Context, kind string, in ImageUpload) (*types.ImageVerification, *types.JobRun, error) {
	rd, err := requestUser(dbc)
	if err != nil {
		return nil, nil, err
	}
	jobType, err := jobTypeForKind(kind)
	if err != nil {
		return nil, nil, err
	}
	if _, err := DetectImageFormat(in.Data); err != nil {
		return nil, nil, err
	}
	claim := strings.TrimSpace(in.Claim)
	if kind == types.ImageKindAIDetection {
		claim = ""
	}
	if utf8.RuneCountInString(claim) > MaxClaimRunes {
		return nil, nil, newValidationError("claim_text", fmt.Sprintf("claim text exceeds %d characters", MaxClaimRunes))
	}
	filename := filepath.Base(strings.TrimSpace(in.Filename))
	if filename == "." || filename == "/" || filename == "" {
		filename = "image"
	}

	stored, err := s.images.Upload(dbc.Ctx, rd.UserID, kind, filename, in.Data)
	if err != nil {
		if IsValidationError(err) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("store image: %w", err)
	}

	inner := dbctx.Context{Ctx: dbc.Ctx, Tx: dbc.DB(s.db)}
	rec, err := s.repo.Create(inner, &types.ImageVerification{
		UserID:           rd.UserID,
		UserEmail:        rd.Email,
		UserName:         rd.DisplayName,
		ImagePath:        stored.Path,
		ImageURL:         stored.URL,
		OriginalFilename: filename,
		ClaimText:        claim,
		Kind:             kind,
		Status:           types.ImageStatusInProgress,
		ModelUsed:        s.modelName,
	})
	if err != nil {
		if derr := s.images.Delete(dbc.Ctx, stored.Path); derr != nil {
			s.log.Warn("Orphan image cleanup failed", "key", stored.Path, "error", derr)
		}
		return nil, nil, fmt.Errorf("create image verification: %w", err)
	}
	s.log.Info("Image verification created", "verification_id", rec.ID, "kind", kind, "user_id", rd.UserID)

	entityID := rec.ID
	job, err := s.jobs.Enqueue(dbctx.Context{Ctx: dbc.Ctx}, rd.UserID, jobType, types.EntityImageVerification, &entityID, map[string]any{
		"verification_id": rec.ID.String(),
	})
	if job != nil {
		if serr := s.repo.SetJobID(inner, rec.ID, job.ID); serr != nil {
			s.log.Warn("SetJobID failed", "verification_id", rec.ID, "job_id", job.ID, "error", serr)
		}
		rec.JobID = &job.ID
	}
	if err != nil {
		s.log.Error("Enqueue failed", "verification_id", rec.ID, "error", err)
		if _, ferr := s.store.FailImage(inner, rec.ID, "dispatch failed: "+err.Error()); ferr != nil {
			s.log.Error("FailImage after dispatch error failed", "verification_id", rec.ID, "error", ferr)
		}
		return rec, job, fmt.Errorf("enqueue verification: %w", err)
	}
	return rec, job, nil
}

func (s *imageVerificationService) Get(dbc dbctx.Context, id uuid.UUID) (*types.ImageVerification, error) {
	rd, err := requestUser(dbc)
	if err != nil {
		return nil, err
	}
	rec, err := s.repo.GetByID(dbctx.Context{Ctx: dbc.Ctx, Tx: dbc.DB(s.db)}, id)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.UserID != rd.UserID {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (s *imageVerificationService) ListMine(dbc dbctx.Context) ([]*types.ImageVerification, error) {
	rd, err := requestUser(dbc)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByUser(dbctx.Context{Ctx: dbc.Ctx, Tx: dbc.DB(s.db)}, rd.UserID, DefaultListLimit)
}

// Delete removes the record, then its storage object. A storage failure is
// logged and does not resurrect the record.
func (s *imageVerificationService) Delete(dbc dbctx.Context, id uuid.UUID) error {
	rec, err := s.Get(dbc, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(dbctx.Context{Ctx: dbc.Ctx, Tx: dbc.DB(s.db)}, rec.ID); err != nil {
		return fmt.Errorf("delete image verification: %w", err)
	}
	if err := s.images.Delete(dbc.Ctx, rec.ImagePath); err != nil {
		s.log.Warn("Image object delete failed", "verification_id", rec.ID, "key", rec.ImagePath, "error", err)
	}
	return nil
}
