package factcheck

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/checkia-backend/internal/domain"
	"github.com/yungbote/checkia-backend/internal/platform/dbctx"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
)

type ImageVerificationRepo interface {
	Create(dbc dbctx.Context, v *types.ImageVerification) (*types.ImageVerification, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ImageVerification, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.ImageVerification, error)
	SetJobID(dbc dbctx.Context, id uuid.UUID, jobID uuid.UUID) error
	CompleteIfInProgress(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (bool, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type imageVerificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewImageVerificationRepo(db *gorm.DB, baseLog *logger.Logger) ImageVerificationRepo {
	return &imageVerificationRepo{db: db, log: baseLog.With("repo", "ImageVerificationRepo")}
}

func (r *imageVerificationRepo) Create(dbc dbctx.Context, v *types.ImageVerification) (*types.ImageVerification, error) {
	if v == nil {
		return nil, errors.New("nil image verification")
	}
	now := time.Now().UTC()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.Status == "" {
		v.Status = types.ImageStatusInProgress
	}
	if v.ModelUsed == "" {
		v.ModelUsed = types.DefaultImageModel
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now
	if err := dbc.DB(r.db).Create(v).Error; err != nil {
		return nil, err
	}
	return v, nil
}

func (r *imageVerificationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ImageVerification, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.ImageVerification
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

func (r *imageVerificationRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.ImageVerification, error) {
	out := []*types.ImageVerification{}
	if userID == uuid.Nil {
		return out, nil
	}
	q := dbc.DB(r.db).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *imageVerificationRepo) SetJobID(dbc dbctx.Context, id uuid.UUID, jobID uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.ImageVerification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"job_id": jobID, "updated_at": time.Now().UTC()}).Error
}

func (r *imageVerificationRepo) CompleteIfInProgress(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	now := time.Now().UTC()
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = now
	}
	if _, ok := updates["completed_at"]; !ok {
		updates["completed_at"] = now
	}
	res := dbc.DB(r.db).
		Model(&types.ImageVerification{}).
		Where("id = ? AND status = ?", id, types.ImageStatusInProgress).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *imageVerificationRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.ImageVerification{}).Error
}
