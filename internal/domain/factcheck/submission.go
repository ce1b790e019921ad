package factcheck

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusVerified = "verified"
	SubmissionStatusRejected = "rejected"
)

// Text verdicts. VerdictError is only ever written with status rejected and confidence 0.
const (
	VerdictTrue         = "true"
	VerdictFalse        = "false"
	VerdictUndetermined = "undetermined"
	VerdictError        = "error"
)

// Submission is a text claim sent in for verification. The pipeline writes
// its terminal fields exactly once.
type Submission struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	UserEmail   string         `gorm:"column:user_email" json:"user_email,omitempty"`
	UserName    string         `gorm:"column:user_name" json:"user_name,omitempty"`
	Text        string         `gorm:"column:text;type:text;not null" json:"text"`
	Source      string         `gorm:"column:source" json:"source,omitempty"`
	Status      string         `gorm:"column:status;not null;index" json:"status"`
	Verdict     string         `gorm:"column:verdict" json:"verdict,omitempty"`
	Confidence  int            `gorm:"column:confidence;not null;default:0" json:"confidence"`
	Explanation string         `gorm:"column:explanation;type:text" json:"explanation,omitempty"`
	WebSources  datatypes.JSON `gorm:"column:web_sources;type:jsonb" json:"web_sources,omitempty"`
	Result      datatypes.JSON `gorm:"column:result;type:jsonb" json:"result,omitempty"`
	JobID       *uuid.UUID     `gorm:"type:uuid;column:job_id;index" json:"job_id,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	CompletedAt *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

func (Submission) TableName() string { return "submission" }

func (s *Submission) IsTerminal() bool {
	return s != nil && s.Status != SubmissionStatusPending
}
