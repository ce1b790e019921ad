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

type SubmissionRepo interface {
	Create(dbc dbctx.Context, s *types.Submission) (*types.Submission, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Submission, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Submission, error)
	SetJobID(dbc dbctx.Context, id uuid.UUID, jobID uuid.UUID) error
	// CompleteIfPending applies updates only while the row is still pending and
	// reports whether it did.
	CompleteIfPending(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (bool, error)
}

type submissionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) SubmissionRepo {
	return &submissionRepo{db: db, log: baseLog.With("repo", "SubmissionRepo")}
}

func (r *submissionRepo) Create(dbc dbctx.Context, s *types.Submission) (*types.Submission, error) {
	if s == nil {
		return nil, errors.New("nil submission")
	}
	now := time.Now().UTC()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = types.SubmissionStatusPending
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	if err := dbc.DB(r.db).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

func (r *submissionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Submission, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.Submission
	err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error
	if err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

func (r *submissionRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Submission, error) {
	out := []*types.Submission{}
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

func (r *submissionRepo) SetJobID(dbc dbctx.Context, id uuid.UUID, jobID uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.Submission{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"job_id": jobID, "updated_at": time.Now().UTC()}).Error
}

func (r *submissionRepo) CompleteIfPending(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (bool, error) {
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
		Model(&types.Submission{}).
		Where("id = ? AND status = ?", id, types.SubmissionStatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
