package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/ReviewModerationGo/internal/domain"
	"github.com/utafrali/ReviewModerationGo/internal/repository"
	"github.com/utafrali/ReviewModerationGo/internal/storage"
	"github.com/utafrali/ReviewModerationGo/internal/storage/memory"
)

type profanityFixture struct {
	svc        *ProfanityService
	moderation *mockModerationRepository
	blobs      *memory.Store
	classifier *mockClassifier
}

func newProfanityFixture(t *testing.T) *profanityFixture {
	t.Helper()
	moderation := new(mockModerationRepository)
	blobs := memory.New()
	classifier := new(mockClassifier)

	return &profanityFixture{
		svc:        NewProfanityService(moderation, blobs, classifier, 3, newTestLogger()),
		moderation: moderation,
		blobs:      blobs,
		classifier: classifier,
	}
}

func inlineRecord(reviewText, summary string) *domain.ReviewRecord {
	return &domain.ReviewRecord{
		ReviewID:           "rev-1",
		UserID:             "usr-1",
		OriginalReviewText: &reviewText,
		OriginalSummary:    &summary,
	}
}

func countedResult(violations int, newlyBanned bool) *repository.ModerationResult {
	return &repository.ModerationResult{
		Counted:     true,
		Customer:    &domain.CustomerRecord{UserID: "usr-1", ViolationCount: violations, IsBanned: newlyBanned},
		NewlyBanned: newlyBanned,
	}
}

func TestCheck_CleanInlineText(t *testing.T) {
	f := newProfanityFixture(t)
	ctx := context.Background()
	record := inlineRecord("a lovely product", "lovely")

	f.classifier.On("IsProfane", "a lovely product").Return(false)
	f.classifier.On("IsProfane", "lovely").Return(false)
	f.moderation.On("ApplyProfanityResult", ctx, "rev-1", "usr-1", false, 3).
		Return(countedResult(0, false), nil)

	err := f.svc.Check(ctx, record)

	require.NoError(t, err)
	f.moderation.AssertExpectations(t)
}

func TestCheck_ProfaneReviewText(t *testing.T) {
	f := newProfanityFixture(t)
	ctx := context.Background()
	record := inlineRecord("utter garbage, damn it", "meh")

	f.classifier.On("IsProfane", "utter garbage, damn it").Return(true)
	f.moderation.On("ApplyProfanityResult", ctx, "rev-1", "usr-1", true, 3).
		Return(countedResult(1, false), nil)

	err := f.svc.Check(ctx, record)

	require.NoError(t, err)
	// The OR short-circuits; the summary is never classified.
	f.classifier.AssertNotCalled(t, "IsProfane", "meh")
}

func TestCheck_ProfaneSummaryOnly(t *testing.T) {
	f := newProfanityFixture(t)
	ctx := context.Background()
	record := inlineRecord("fine product", "what the hell")

	f.classifier.On("IsProfane", "fine product").Return(false)
	f.classifier.On("IsProfane", "what the hell").Return(true)
	f.moderation.On("ApplyProfanityResult", ctx, "rev-1", "usr-1", true, 3).
		Return(countedResult(1, false), nil)

	err := f.svc.Check(ctx, record)

	require.NoError(t, err)
	f.moderation.AssertExpectations(t)
}

func TestCheck_RedeliveryNotCounted(t *testing.T) {
	f := newProfanityFixture(t)
	ctx := context.Background()
	record := inlineRecord("damn", "")

	f.classifier.On("IsProfane", mock.Anything).Return(true)
	f.moderation.On("ApplyProfanityResult", ctx, "rev-1", "usr-1", true, 3).
		Return(&repository.ModerationResult{Counted: false}, nil)

	err := f.svc.Check(ctx, record)

	assert.NoError(t, err)
}

func TestCheck_NewlyBanned(t *testing.T) {
	f := newProfanityFixture(t)
	ctx := context.Background()
	record := inlineRecord("damn", "")

	f.classifier.On("IsProfane", mock.Anything).Return(true)
	f.moderation.On("ApplyProfanityResult", ctx, "rev-1", "usr-1", true, 3).
		Return(countedResult(3, true), nil)

	err := f.svc.Check(ctx, record)

	assert.NoError(t, err)
}

func TestCheck_RemoteTextDereferenced(t *testing.T) {
	f := newProfanityFixture(t)
	ctx := context.Background()

	raw, err := json.Marshal(map[string]any{
		"reviewerID": "usr-1",
		"asin":       "B0001",
		"reviewText": "awful damn thing",
		"overall":    1.0,
		"summary":    "bad",
	})
	require.NoError(t, err)
	require.NoError(t, f.blobs.Put(ctx, storage.BlobRef{Bucket: "raw-reviews", Key: "r.json"}, &storage.Object{Body: raw}))

	location := "blob://raw-reviews/r.json"
	record := &domain.ReviewRecord{
		ReviewID:             "rev-1",
		UserID:               "usr-1",
		OriginalTextLocation: &location,
	}

	f.classifier.On("IsProfane", "awful damn thing").Return(true)
	f.moderation.On("ApplyProfanityResult", ctx, "rev-1", "usr-1", true, 3).
		Return(countedResult(1, false), nil)

	err = f.svc.Check(ctx, record)

	require.NoError(t, err)
	f.classifier.AssertExpectations(t)
}

func TestCheck_RemoteTextMissingBlob(t *testing.T) {
	f := newProfanityFixture(t)
	ctx := context.Background()

	location := "blob://raw-reviews/gone.json"
	record := &domain.ReviewRecord{
		ReviewID:             "rev-1",
		UserID:               "usr-1",
		OriginalTextLocation: &location,
	}

	err := f.svc.Check(ctx, record)

	require.Error(t, err)
	f.moderation.AssertNotCalled(t, "ApplyProfanityResult", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheck_NoTextSourceIsClean(t *testing.T) {
	f := newProfanityFixture(t)
	ctx := context.Background()
	record := &domain.ReviewRecord{ReviewID: "rev-1", UserID: "usr-1"}

	f.classifier.On("IsProfane", "").Return(false)
	f.moderation.On("ApplyProfanityResult", ctx, "rev-1", "usr-1", false, 3).
		Return(countedResult(0, false), nil)

	err := f.svc.Check(ctx, record)

	assert.NoError(t, err)
}

func TestCheck_ModerationError(t *testing.T) {
	f := newProfanityFixture(t)
	ctx := context.Background()
	record := inlineRecord("fine", "fine")

	f.classifier.On("IsProfane", mock.Anything).Return(false)
	f.moderation.On("ApplyProfanityResult", ctx, "rev-1", "usr-1", false, 3).
		Return(nil, errors.New("deadlock detected"))

	err := f.svc.Check(ctx, record)

	assert.Error(t, err)
}
