// Package profanity wraps the profanity detection library behind a small
// interface so the moderation stage does not depend on its internals.
package profanity

import (
	goaway "github.com/TwiN/go-away"
)

// Classifier detects inappropriate content in free text.
// Implementations must be safe for concurrent use.
type Classifier interface {
	IsProfane(text string) bool
}

// Detector is the go-away backed Classifier.
type Detector struct {
	detector *goaway.ProfanityDetector
}

// NewDetector creates a Detector with the library's default dictionaries,
// including leet-speak and sanitization of obfuscated spellings.
func NewDetector() *Detector {
	return &Detector{detector: goaway.NewProfanityDetector()}
}

// IsProfane reports whether the text contains profanity. Empty text is clean.
func (d *Detector) IsProfane(text string) bool {
	if text == "" {
		return false
	}
	return d.detector.IsProfane(text)
}
