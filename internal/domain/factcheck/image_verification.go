package factcheck

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ImageKindContent     = "content"
	ImageKindAIDetection = "ai_detection"
)

const (
	ImageStatusInProgress   = "in_progress"
	ImageStatusTrue         = "true"
	ImageStatusFalse        = "false"
	ImageStatusUndetermined = "undetermined"
	ImageStatusAnalyzed     = "analyzed"
	ImageStatusAIDetected   = "ai_detected"
	ImageStatusAuthentic    = "authentic"
	ImageStatusUncertain    = "uncertain"
	ImageStatusError        = "error"
)

const DefaultImageModel = "openai/gpt-4.1-mini"

type ImageVerification struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	UserEmail        string         `gorm:"column:user_email" json:"user_email,omitempty"`
	UserName         string         `gorm:"column:user_name" json:"user_name,omitempty"`
	ImagePath        string         `gorm:"column:image_path;not null" json:"image_path"`
	ImageURL         string         `gorm:"column:image_url;type:text" json:"image_url"`
	OriginalFilename string         `gorm:"column:original_filename" json:"original_filename"`
	ClaimText        string         `gorm:"column:claim_text;type:text" json:"claim_text,omitempty"`
	Kind             string         `gorm:"column:kind;not null;index" json:"kind"`
	Status           string         `gorm:"column:status;not null;index" json:"status"`
	Explanation      string         `gorm:"column:explanation;type:text" json:"explanation,omitempty"`
	Confidence       int            `gorm:"column:confidence;not null;default:0" json:"confidence"`
	Details          datatypes.JSON `gorm:"column:details;type:jsonb" json:"details,omitempty"`
	ModelUsed        string         `gorm:"column:model_used" json:"model_used"`
	JobID            *uuid.UUID     `gorm:"type:uuid;column:job_id;index" json:"job_id,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
	CompletedAt      *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

func (ImageVerification) TableName() string { return "image_verification" }

func (v *ImageVerification) IsTerminal() bool {
	return v != nil && v.Status != ImageStatusInProgress
}

// ValidImageStatus reports whether status is reachable for kind. Content checks
// never produce detection verdicts and detection never produces claim verdicts.
func ValidImageStatus(kind, status string) bool {
	switch status {
	case ImageStatusInProgress, ImageStatusError:
		return kind == ImageKindContent || kind == ImageKindAIDetection
	case ImageStatusTrue, ImageStatusFalse, ImageStatusUndetermined, ImageStatusAnalyzed:
		return kind == ImageKindContent
	case ImageStatusAIDetected, ImageStatusAuthentic, ImageStatusUncertain:
		return kind == ImageKindAIDetection
	}
	return false
}
