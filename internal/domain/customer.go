package domain

import "time"

// CustomerRecord tracks a reviewer's moderation history. ViolationCount only
// moves through the profanity stage's conditional record transition, so a
// redelivered event can never count the same review twice. Once IsBanned is
// set it never clears and BanDate never changes.
type CustomerRecord struct {
	UserID             string     `json:"user_id"`
	TotalReviews       int        `json:"total_reviews"`
	ViolationCount     int        `json:"violation_count"`
	IsBanned           bool       `json:"is_banned"`
	BanDate            *time.Time `json:"ban_date,omitempty"`
	CreatedDate        time.Time  `json:"created_date"`
	LastUpdated        time.Time  `json:"last_updated"`
	FirstReviewDate    time.Time  `json:"first_review_date"`
	LastReviewDate     time.Time  `json:"last_review_date"`
	FirstViolationDate *time.Time `json:"first_violation_date,omitempty"`
	LastViolationDate  *time.Time `json:"last_violation_date,omitempty"`
}
