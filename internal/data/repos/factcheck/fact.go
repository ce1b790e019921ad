package factcheck

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/checkia-backend/internal/domain"
	"github.com/yungbote/checkia-backend/internal/platform/dbctx"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
)

type FactRepo interface {
	// CreateForSubmission inserts fact and links keywords unless a fact already
	// exists for fact.SubmissionID. It reports whether a row was created.
	CreateForSubmission(dbc dbctx.Context, fact *types.Fact, keywords []*types.Keyword) (bool, error)
	GetBySubmissionID(dbc dbctx.Context, submissionID uuid.UUID) (*types.Fact, error)
	List(dbc dbctx.Context, limit int) ([]*types.Fact, error)
}

type factRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFactRepo(db *gorm.DB, baseLog *logger.Logger) FactRepo {
	return &factRepo{db: db, log: baseLog.With("repo", "FactRepo")}
}

func (r *factRepo) CreateForSubmission(dbc dbctx.Context, fact *types.Fact, keywords []*types.Keyword) (bool, error) {
	if fact == nil || fact.SubmissionID == nil || *fact.SubmissionID == uuid.Nil {
		return false, errors.New("fact requires a submission id")
	}
	if fact.ID == uuid.Nil {
		fact.ID = uuid.New()
	}
	if fact.CreatedAt.IsZero() {
		fact.CreatedAt = time.Now().UTC()
	}
	fact.Keywords = nil

	created := false
	err := dbc.DB(r.db).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&types.Fact{}).
			Where("submission_id = ?", *fact.SubmissionID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "submission_id"}},
			DoNothing: true,
		}).Omit(clause.Associations).Create(fact)
		if res.Error != nil {
			if IsUniqueViolation(res.Error) {
				return nil
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if len(keywords) > 0 {
			if err := tx.Model(fact).Association("Keywords").Append(keywords); err != nil {
				return err
			}
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if created {
		fact.Keywords = keywords
	}
	return created, nil
}

func (r *factRepo) GetBySubmissionID(dbc dbctx.Context, submissionID uuid.UUID) (*types.Fact, error) {
	if submissionID == uuid.Nil {
		return nil, nil
	}
	var out types.Fact
	if err := dbc.DB(r.db).
		Preload("Keywords").
		Where("submission_id = ?", submissionID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

func (r *factRepo) List(dbc dbctx.Context, limit int) ([]*types.Fact, error) {
	out := []*types.Fact{}
	q := dbc.DB(r.db).Preload("Keywords").Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
