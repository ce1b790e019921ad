package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/checkia-backend/internal/data/repos"
	types "github.com/yungbote/checkia-backend/internal/domain"
	"github.com/yungbote/checkia-backend/internal/platform/dbctx"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
	"github.com/yungbote/checkia-backend/internal/verification"
)

const LibraryLanguage = "fr"

// TranslatedFact is a library entry rendered in the library language.
type TranslatedFact struct {
	ID         uuid.UUID `json:"id"`
	Text       string    `json:"text"`
	Original   string    `json:"original_text"`
	Source     string    `json:"source"`
	Keywords   []string  `json:"keywords"`
	CreatedAt  time.Time `json:"created_at"`
	Translated bool      `json:"translated"`
}

type FactService interface {
	List(dbc dbctx.Context) ([]*types.Fact, error)
	ListTranslated(dbc dbctx.Context) ([]*TranslatedFact, error)
	Keywords(dbc dbctx.Context) ([]*types.Keyword, error)
}

type factService struct {
	db         *gorm.DB
	log        *logger.Logger
	facts      repos.FactRepo
	keywords   repos.KeywordRepo
	translator verification.Translator
}

func NewFactService(
	db *gorm.DB,
	baseLog *logger.Logger,
	facts repos.FactRepo,
	keywords repos.KeywordRepo,
	translator verification.Translator,
) FactService {
	return &factService{
		db:         db,
		log:        baseLog.With("service", "FactService"),
		facts:      facts,
		keywords:   keywords,
		translator: translator,
	}
}

func (s *factService) List(dbc dbctx.Context) ([]*types.Fact, error) {
	if _, err := requestUser(dbc); err != nil {
		return nil, err
	}
	return s.facts.List(dbctx.Context{Ctx: dbc.Ctx, Tx: dbc.DB(s.db)}, 0)
}

// ListTranslated renders facts newest first in the library language and drops
// entries whose translated text was already listed. A failed translation keeps
// the original text.
func (s *factService) ListTranslated(dbc dbctx.Context) ([]*TranslatedFact, error) {
	facts, err := s.List(dbc)
	if err != nil {
		return nil, err
	}
	out := make([]*TranslatedFact, 0, len(facts))
	seen := map[string]bool{}
	for _, f := range facts {
		text, translated := f.Text, false
		if s.translator != nil {
			tr, terr := s.translator.Translate(dbc.Ctx, f.Text, "", LibraryLanguage)
			if terr != nil {
				s.log.Warn("Fact translation failed", "fact_id", f.ID, "error", terr)
			} else if tr != "" {
				text, translated = tr, tr != f.Text
			}
		}
		key := strings.ToLower(strings.TrimSpace(text))
		if seen[key] {
			continue
		}
		seen[key] = true
		words := make([]string, 0, len(f.Keywords))
		for _, k := range f.Keywords {
			words = append(words, k.Word)
		}
		out = append(out, &TranslatedFact{
			ID:         f.ID,
			Text:       text,
			Original:   f.Text,
			Source:     f.Source,
			Keywords:   words,
			CreatedAt:  f.CreatedAt,
			Translated: translated,
		})
	}
	return out, nil
}

func (s *factService) Keywords(dbc dbctx.Context) ([]*types.Keyword, error) {
	if _, err := requestUser(dbc); err != nil {
		return nil, err
	}
	return s.keywords.List(dbctx.Context{Ctx: dbc.Ctx, Tx: dbc.DB(s.db)})
}
