package factcheck

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/checkia-backend/internal/domain"
	"github.com/yungbote/checkia-backend/internal/platform/dbctx"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
)

type KeywordRepo interface {
	// GetOrCreate returns one row per distinct normalized word, creating missing ones.
	GetOrCreate(dbc dbctx.Context, words []string) ([]*types.Keyword, error)
	List(dbc dbctx.Context) ([]*types.Keyword, error)
}

type keywordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewKeywordRepo(db *gorm.DB, baseLog *logger.Logger) KeywordRepo {
	return &keywordRepo{db: db, log: baseLog.With("repo", "KeywordRepo")}
}

// NormalizeKeyword is the dedup key for keywords.
func NormalizeKeyword(w string) string {
	return strings.ToLower(strings.TrimSpace(w))
}

func (r *keywordRepo) GetOrCreate(dbc dbctx.Context, words []string) ([]*types.Keyword, error) {
	seen := map[string]bool{}
	norm := make([]string, 0, len(words))
	for _, w := range words {
		n := NormalizeKeyword(w)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		norm = append(norm, n)
	}
	out := []*types.Keyword{}
	if len(norm) == 0 {
		return out, nil
	}

	now := time.Now().UTC()
	rows := make([]*types.Keyword, 0, len(norm))
	for _, n := range norm {
		rows = append(rows, &types.Keyword{ID: uuid.New(), Word: n, CreatedAt: now})
	}
	err := dbc.DB(r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "word"}},
			DoNothing: true,
		}).Create(&rows).Error; err != nil {
			return err
		}
		return tx.Where("word IN ?", norm).Order("word ASC").Find(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *keywordRepo) List(dbc dbctx.Context) ([]*types.Keyword, error) {
	out := []*types.Keyword{}
	if err := dbc.DB(r.db).Order("word ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
