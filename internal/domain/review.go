package domain

import (
	"crypto/md5" // #nosec G501 -- non-cryptographic id derivation
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Preprocessing status constants.
const (
	PreprocessingStatusCompleted = "preprocessed"
)

// Profanity check status constants.
const (
	ProfanityStatusPending   = "pending"
	ProfanityStatusCompleted = "completed"
)

// Sentiment analysis status constants.
const (
	SentimentStatusPending   = "pending"
	SentimentStatusProcessed = "processed"
)

// Sentiment label constants.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// reviewTimeLayout parses human-readable review dates such as "09 1, 2014".
const reviewTimeLayout = "1 2, 2006"

// RawReview is the incoming raw review document as uploaded to the raw
// bucket. ReviewText and Overall are pointers so that a missing field can be
// distinguished from a zero value during validation.
type RawReview struct {
	ReviewID       string   `json:"reviewId,omitempty"`
	ReviewerID     string   `json:"reviewerID"`
	ASIN           string   `json:"asin"`
	ReviewText     *string  `json:"reviewText"`
	Overall        *float64 `json:"overall"`
	Summary        string   `json:"summary,omitempty"`
	UnixReviewTime *int64   `json:"unixReviewTime,omitempty"`
	ReviewTime     string   `json:"reviewTime,omitempty"`
	Category       string   `json:"category,omitempty"`
	ReviewerName   string   `json:"reviewerName,omitempty"`
	Helpful        []int    `json:"helpful,omitempty"`
}

// Validate checks that all required fields are present. The returned error
// names the first missing field.
func (r *RawReview) Validate() error {
	switch {
	case r.ReviewerID == "":
		return fmt.Errorf("missing required field: reviewerID")
	case r.ASIN == "":
		return fmt.Errorf("missing required field: asin")
	case r.ReviewText == nil:
		return fmt.Errorf("missing required field: reviewText")
	case r.Overall == nil:
		return fmt.Errorf("missing required field: overall")
	}
	return nil
}

// Text returns the review text, or "" when absent.
func (r *RawReview) Text() string {
	if r.ReviewText == nil {
		return ""
	}
	return *r.ReviewText
}

// Rating returns the overall rating, or 0 when absent.
func (r *RawReview) Rating() float64 {
	if r.Overall == nil {
		return 0
	}
	return *r.Overall
}

// HelpfulVotes returns the helpful vote count from the [helpful, total] pair.
func (r *RawReview) HelpfulVotes() int {
	if len(r.Helpful) > 0 {
		return r.Helpful[0]
	}
	return 0
}

// TotalVotes returns the total vote count from the [helpful, total] pair.
func (r *RawReview) TotalVotes() int {
	if len(r.Helpful) > 1 {
		return r.Helpful[1]
	}
	return 0
}

// ProductCategory returns the category, defaulting to "uncategorized".
func (r *RawReview) ProductCategory() string {
	if r.Category == "" {
		return "uncategorized"
	}
	return r.Category
}

// NewReviewID returns the review's identifier. An explicit reviewId is reused
// as-is; otherwise a deterministic id is derived from the product ASIN, the
// reviewer id and the review timestamp:
//
//	{asin}_{reviewerID}_{md5(asin_reviewerID_ts)[:8]}
//
// The now argument is only consulted when the review carries no
// unixReviewTime.
func NewReviewID(r *RawReview, now time.Time) string {
	if r.ReviewID != "" {
		return r.ReviewID
	}

	ts := now.UTC().Unix()
	if r.UnixReviewTime != nil {
		ts = *r.UnixReviewTime
	}

	hashInput := fmt.Sprintf("%s_%s_%d", r.ASIN, r.ReviewerID, ts)
	sum := md5.Sum([]byte(hashInput)) // #nosec G401 -- id derivation, not security
	suffix := hex.EncodeToString(sum[:])[:8]
	return fmt.Sprintf("%s_%s_%s", r.ASIN, r.ReviewerID, suffix)
}

// ParseReviewTime normalizes the review timestamp. Preference order: the unix
// timestamp, then the human-readable reviewTime (parse failures are
// swallowed), then now. The result is always UTC.
func ParseReviewTime(r *RawReview, now time.Time) time.Time {
	if r.UnixReviewTime != nil {
		return time.Unix(*r.UnixReviewTime, 0).UTC()
	}
	if r.ReviewTime != "" {
		if t, err := time.Parse(reviewTimeLayout, r.ReviewTime); err == nil {
			return t.UTC()
		}
	}
	return now.UTC()
}

// WordCount counts whitespace-separated words in canonicalized text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ProcessedReview is the document written to the processed bucket. It keeps
// both the original and the canonicalized text so downstream stages can pick
// whichever form they need.
type ProcessedReview struct {
	ReviewID               string    `json:"reviewId"`
	ReviewerID             string    `json:"reviewerID"`
	ASIN                   string    `json:"asin"`
	Overall                float64   `json:"overall"`
	PreprocessedReviewText string    `json:"preprocessedReviewText"`
	PreprocessedSummary    string    `json:"preprocessedSummary"`
	OriginalReviewText     string    `json:"originalReviewText"`
	OriginalSummary        string    `json:"originalSummary"`
	Category               string    `json:"category"`
	ReviewerName           string    `json:"reviewerName"`
	Timestamp              time.Time `json:"timestamp"`
	Helpful                [2]int    `json:"helpful"`
}

// ReviewRecord is the moderation record stored per review. Text fields are
// pointers: nil means the original text lives behind OriginalTextLocation
// instead of inline on the record.
type ReviewRecord struct {
	ReviewID             string     `json:"review_id"`
	UserID               string     `json:"user_id"`
	ProductID            string     `json:"product_id"`
	OriginalReviewText   *string    `json:"original_review_text,omitempty"`
	OriginalSummary      *string    `json:"original_summary,omitempty"`
	OriginalTextLocation *string    `json:"original_text_location,omitempty"`
	PreprocessedLocation string     `json:"preprocessed_location"`
	OverallRating        float64    `json:"overall_rating"`
	ReviewTime           time.Time  `json:"review_time"`
	WordCount            int        `json:"word_count"`
	SummaryWordCount     int        `json:"summary_word_count"`
	HelpfulVotes         int        `json:"helpful_votes"`
	TotalVotes           int        `json:"total_votes"`
	ReviewerName         string     `json:"reviewer_name"`
	ProductCategory      string     `json:"product_category"`
	PreprocessingStatus  string     `json:"preprocessing_status"`
	ProfanityStatus      string     `json:"profanity_status"`
	SentimentStatus      string     `json:"sentiment_status"`
	HasProfanity         *bool      `json:"has_profanity,omitempty"`
	Sentiment            *string    `json:"sentiment,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// TextSource describes where a review's original text can be found.
type TextSource struct {
	// Inline is true when the original text is carried on the record.
	Inline bool
	// ReviewText and Summary are set when Inline.
	ReviewText string
	Summary    string
	// Location is the blob reference to the raw document when not Inline.
	Location string
}

// TextSource returns the source of the record's original text. Inline text
// wins; otherwise the raw blob location is referenced.
func (r *ReviewRecord) TextSource() TextSource {
	if r.OriginalReviewText != nil {
		src := TextSource{Inline: true, ReviewText: *r.OriginalReviewText}
		if r.OriginalSummary != nil {
			src.Summary = *r.OriginalSummary
		}
		return src
	}
	src := TextSource{}
	if r.OriginalTextLocation != nil {
		src.Location = *r.OriginalTextLocation
	}
	return src
}
