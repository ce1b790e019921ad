package domain

import (
	"github.com/yungbote/checkia-backend/internal/domain/factcheck"
	"github.com/yungbote/checkia-backend/internal/domain/jobs"
)

type (
	JobRun = jobs.JobRun

	Submission        = factcheck.Submission
	ImageVerification = factcheck.ImageVerification
	Fact              = factcheck.Fact
	Keyword           = factcheck.Keyword
)

const (
	JobStatusQueued    = jobs.StatusQueued
	JobStatusRunning   = jobs.StatusRunning
	JobStatusSucceeded = jobs.StatusSucceeded
	JobStatusFailed    = jobs.StatusFailed
	JobStatusCanceled  = jobs.StatusCanceled

	SubmissionStatusPending  = factcheck.SubmissionStatusPending
	SubmissionStatusVerified = factcheck.SubmissionStatusVerified
	SubmissionStatusRejected = factcheck.SubmissionStatusRejected

	VerdictTrue         = factcheck.VerdictTrue
	VerdictFalse        = factcheck.VerdictFalse
	VerdictUndetermined = factcheck.VerdictUndetermined
	VerdictError        = factcheck.VerdictError

	ImageKindContent     = factcheck.ImageKindContent
	ImageKindAIDetection = factcheck.ImageKindAIDetection

	ImageStatusInProgress   = factcheck.ImageStatusInProgress
	ImageStatusTrue         = factcheck.ImageStatusTrue
	ImageStatusFalse        = factcheck.ImageStatusFalse
	ImageStatusUndetermined = factcheck.ImageStatusUndetermined
	ImageStatusAnalyzed     = factcheck.ImageStatusAnalyzed
	ImageStatusAIDetected   = factcheck.ImageStatusAIDetected
	ImageStatusAuthentic    = factcheck.ImageStatusAuthentic
	ImageStatusUncertain    = factcheck.ImageStatusUncertain
	ImageStatusError        = factcheck.ImageStatusError

	DefaultImageModel    = factcheck.DefaultImageModel
	NoVerificationSource = factcheck.NoVerificationSource
)

// Entity types carried on JobRun.
const (
	EntitySubmission        = "submission"
	EntityImageVerification = "image_verification"
)

// Job types.
const (
	JobTypeAnalyzeSubmissionText = "analyze_submission_text"
	JobTypeVerifyImageContent    = "verify_image_content"
	JobTypeDetectAIImage         = "detect_ai_image"
)

// JobTypes lists every job type the worker must be able to run.
var JobTypes = []string{JobTypeAnalyzeSubmissionText, JobTypeVerifyImageContent, JobTypeDetectAIImage}

// EntityForJobType returns the entity type a job type writes its verdict to.
func EntityForJobType(jobType string) string {
	switch jobType {
	case JobTypeAnalyzeSubmissionText:
		return EntitySubmission
	case JobTypeVerifyImageContent, JobTypeDetectAIImage:
		return EntityImageVerification
	}
	return ""
}

var ValidImageStatus = factcheck.ValidImageStatus
