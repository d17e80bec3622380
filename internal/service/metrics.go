package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReviewsIngested counts reviews accepted by the preprocessing stage.
	ReviewsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reviews_ingested_total",
			Help: "Total number of raw reviews preprocessed and recorded",
		},
	)

	// ProfanityChecks counts completed profanity checks by outcome.
	ProfanityChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profanity_checks_total",
			Help: "Total number of completed profanity checks by result",
		},
		[]string{"result"},
	)

	// CustomersBanned counts customers banned for crossing the violation threshold.
	CustomersBanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "customers_banned_total",
			Help: "Total number of customers banned for repeated violations",
		},
	)

	// SentimentLabels counts sentiment classifications by label.
	SentimentLabels = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_labels_total",
			Help: "Total number of sentiment classifications by label",
		},
		[]string{"label"},
	)
)

// Profanity check result label values.
const (
	ProfanityResultClean   = "clean"
	ProfanityResultFlagged = "flagged"
)
