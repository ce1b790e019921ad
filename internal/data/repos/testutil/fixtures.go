package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/checkia-backend/internal/domain"
)

func SeedSubmission(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, text string) *types.Submission {
	tb.Helper()
	now := time.Now().UTC()
	s := &types.Submission{
		ID:         uuid.New(),
		UserID:     userID,
		UserEmail:  "user@example.com",
		UserName:   "User",
		Text:       text,
		Status:     types.SubmissionStatusPending,
		WebSources: datatypes.JSON([]byte("[]")),
		Result:     datatypes.JSON([]byte("{}")),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed submission: %v", err)
	}
	return s
}

func SeedImageVerification(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind, claim string) *types.ImageVerification {
	tb.Helper()
	now := time.Now().UTC()
	v := &types.ImageVerification{
		ID:               uuid.New(),
		UserID:           userID,
		ImagePath:        userID.String() + "/" + kind + "/20250101_120000_deadbeef.png",
		ImageURL:         "https://storage.example.com/img.png",
		OriginalFilename: "img.png",
		ClaimText:        claim,
		Kind:             kind,
		Status:           types.ImageStatusInProgress,
		Explanation:      "",
		Details:          datatypes.JSON([]byte("{}")),
		ModelUsed:        types.DefaultImageModel,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed image verification: %v", err)
	}
	return v
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
