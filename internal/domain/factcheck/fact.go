package factcheck

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const NoVerificationSource = "Source de vérification non disponible"

// Fact is a library entry for a claim confirmed true. SubmissionID is unique so
// a redelivered job cannot insert the same fact twice.
type Fact struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Text         string         `gorm:"column:text;type:text;not null" json:"text"`
	Source       string         `gorm:"column:source;type:text" json:"source"`
	WebSources   datatypes.JSON `gorm:"column:web_sources;type:jsonb" json:"web_sources,omitempty"`
	SubmissionID *uuid.UUID     `gorm:"type:uuid;column:submission_id;uniqueIndex" json:"submission_id,omitempty"`
	Keywords     []*Keyword     `gorm:"many2many:fact_keyword;" json:"keywords"`
	CreatedAt    time.Time      `gorm:"not null;index" json:"created_at"`
}

func (Fact) TableName() string { return "fact" }

// Keyword words are stored lowercased; one row per normalized word.
type Keyword struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Word      string    `gorm:"column:word;not null;uniqueIndex" json:"word"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Keyword) TableName() string { return "keyword" }
