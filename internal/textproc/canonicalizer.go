// Package textproc canonicalizes review text for downstream analysis:
// lowercase, tokenize, drop stopwords and non-alphabetic tokens, lemmatize.
//
// Example: "The products are really amazing!" -> "product really amazing".
package textproc

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	prose "github.com/jdkato/prose/v2"
)

//go:embed stopwords.txt
var stopwordsRaw string

// Canonicalizer normalizes free text into its canonical analysis form.
// Implementations must be safe for concurrent use.
type Canonicalizer interface {
	// Canonicalize returns the canonical form of text. Empty or
	// whitespace-only input yields "" without running the pipeline.
	Canonicalize(text string) (string, error)
}

// NLPCanonicalizer tokenizes with prose, filters against the embedded English
// stopword corpus and lemmatizes noun tokens with golem. The lemmatizer
// dictionary is loaded lazily on first use; a load failure is surfaced on
// every call rather than panicking at startup.
type NLPCanonicalizer struct {
	once      sync.Once
	lem       *golem.Lemmatizer
	stopwords map[string]struct{}
	initErr   error
}

// NewNLPCanonicalizer creates a canonicalizer. The heavy dictionary load is
// deferred until the first Canonicalize call.
func NewNLPCanonicalizer() *NLPCanonicalizer {
	return &NLPCanonicalizer{}
}

func (c *NLPCanonicalizer) init() {
	c.stopwords = make(map[string]struct{})
	for _, w := range strings.Fields(stopwordsRaw) {
		c.stopwords[w] = struct{}{}
	}
	c.lem, c.initErr = golem.New(en.New())
}

// Canonicalize implements Canonicalizer.
func (c *NLPCanonicalizer) Canonicalize(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	c.once.Do(c.init)
	if c.initErr != nil {
		return "", fmt.Errorf("load lemmatizer dictionary: %w", c.initErr)
	}

	doc, err := prose.NewDocument(strings.ToLower(text),
		prose.WithExtraction(false),
	)
	if err != nil {
		return "", fmt.Errorf("tokenize text: %w", err)
	}

	var out []string
	for _, tok := range doc.Tokens() {
		word := tok.Text
		if !isAlpha(word) {
			continue
		}
		if _, ok := c.stopwords[word]; ok {
			continue
		}
		// Nouns are reduced to their base form; other word classes pass
		// through unchanged, matching the behavior expected by the
		// sentiment stage's lexicon.
		if strings.HasPrefix(tok.Tag, "NN") {
			word = c.lem.Lemma(word)
		}
		out = append(out, word)
	}

	return strings.Join(out, " "), nil
}

// isAlpha reports whether the token consists solely of letters.
func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
