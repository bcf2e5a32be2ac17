// Package normalizer turns raw learner submissions into a canonical form
// the analyzers operate on: Unicode NFC, control characters stripped,
// whitespace collapsed, with sentence and token segmentation on top.
// Every downstream span indexes into the normalized text; the offset map
// re-indexes spans back into the original submission.
package normalizer

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/kvalencee/alfaia/pkg/errors"
	"github.com/kvalencee/alfaia/pkg/types/analysis"
)

// Result is the output of normalization. Text is the canonical form;
// OrigOffsets maps each byte of Text to the byte offset in the original
// submission that produced it.
type Result struct {
	Text        string
	OrigOffsets []int
	Sentences   []analysis.Sentence
	Stats       analysis.TextStats
}

// ToOriginal re-indexes a span over the normalized text into the
// original submission. The returned span covers at least the source
// bytes that produced the normalized range.
func (r *Result) ToOriginal(span analysis.Span, rawLen int) analysis.Span {
	if len(r.OrigOffsets) == 0 || span.Start >= len(r.OrigOffsets) {
		return analysis.Span{}
	}
	start := r.OrigOffsets[span.Start]
	end := rawLen
	if span.End < len(r.OrigOffsets) {
		end = r.OrigOffsets[span.End]
	}
	if end <= start {
		end = start + 1
	}
	if end > rawLen {
		end = rawLen
	}
	return analysis.Span{Start: start, End: end}
}

// Normalizer is stateless and safe for concurrent use.
type Normalizer struct{}

func New() *Normalizer {
	return &Normalizer{}
}

// Normalize canonicalizes raw and segments it. It is deterministic and
// idempotent: normalizing its own output yields the same text.
// Empty or whitespace-only input is rejected with an input error.
func (n *Normalizer) Normalize(_ context.Context, raw string) (*Result, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.InputEmpty("submission text is empty")
	}
	if !utf8.ValidString(raw) {
		return nil, errors.New(errors.ErrCodeInputEncoding, "submission is not valid UTF-8")
	}

	text, offsets := canonicalize(raw)
	if text == "" {
		return nil, errors.InputEmpty("submission has no analyzable content")
	}

	res := &Result{
		Text:        text,
		OrigOffsets: offsets,
	}
	res.Sentences = segment(text)
	res.Stats = computeStats(raw, text, res.Sentences)
	return res, nil
}

// canonicalize applies NFC, drops control characters and collapses
// whitespace runs to a single space, tracking for every output byte the
// source byte offset it came from. norm.Iter walks the input one
// normalization boundary at a time, which keeps the offset map exact at
// boundary granularity even when composition changes byte lengths.
func canonicalize(raw string) (string, []int) {
	var b strings.Builder
	b.Grow(len(raw))
	offsets := make([]int, 0, len(raw))

	var it norm.Iter
	it.InitString(norm.NFC, raw)

	pendingSpace := false
	spaceOffset := 0
	srcStart := 0
	for !it.Done() {
		seg := it.Next()
		srcEnd := it.Pos()
		for i := 0; i < len(seg); {
			r, size := utf8.DecodeRune(seg[i:])
			i += size
			switch {
			case unicode.IsSpace(r):
				if !pendingSpace {
					pendingSpace = true
					spaceOffset = srcStart
				}
			case unicode.IsControl(r) || r == utf8.RuneError:
				// dropped
			default:
				if pendingSpace && b.Len() > 0 {
					b.WriteByte(' ')
					offsets = append(offsets, spaceOffset)
				}
				pendingSpace = false
				var buf [utf8.UTFMax]byte
				w := utf8.EncodeRune(buf[:], r)
				b.Write(buf[:w])
				for j := 0; j < w; j++ {
					offsets = append(offsets, srcStart)
				}
			}
		}
		srcStart = srcEnd
	}
	return b.String(), offsets
}

// sentence terminators; an ellipsis or a run of terminators closes the
// sentence together.
func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '…'
}

func isOpener(r rune) bool {
	return r == '¿' || r == '¡'
}

// segment splits the normalized text into sentences and tokenizes each.
// A sentence ends after a terminator run followed by a space or end of
// text. Spans index into the normalized text.
func segment(text string) []analysis.Sentence {
	var sentences []analysis.Sentence
	start := 0
	inTerm := false
	for i, r := range text {
		if isTerminator(r) {
			inTerm = true
			continue
		}
		if inTerm {
			end := i
			if r == ' ' {
				sentences = appendSentence(sentences, text, start, end)
				start = i + 1
			} else if isOpener(r) || unicode.IsUpper(r) {
				// terminator directly followed by a new sentence
				// opener, e.g. "hola.¿Qué tal?"
				sentences = appendSentence(sentences, text, start, end)
				start = i
			}
			inTerm = false
		}
	}
	if start < len(text) {
		sentences = appendSentence(sentences, text, start, len(text))
	}
	return sentences
}

func appendSentence(sentences []analysis.Sentence, text string, start, end int) []analysis.Sentence {
	for start < end && text[start] == ' ' {
		start++
	}
	for end > start && text[end-1] == ' ' {
		end--
	}
	if start >= end {
		return sentences
	}
	s := analysis.Sentence{
		Index: len(sentences),
		Text:  text[start:end],
		Span:  analysis.Span{Start: start, End: end},
	}
	s.Tokens = tokenize(text, start, end)
	return append(sentences, s)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// tokenize splits a sentence into word and punctuation tokens. Word
// tokens are maximal letter or digit runs; every other non-space rune
// becomes its own token. Spans are absolute into the normalized text.
func tokenize(text string, start, end int) []analysis.Token {
	var tokens []analysis.Token
	i := start
	for i < end {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case r == ' ':
			i += size
		case isWordRune(r):
			j := i + size
			for j < end {
				nr, nsize := utf8.DecodeRuneInString(text[j:])
				if !isWordRune(nr) {
					break
				}
				j += nsize
			}
			tokens = append(tokens, analysis.Token{
				Text: text[i:j],
				Span: analysis.Span{Start: i, End: j},
				Head: analysis.NoHead,
			})
			i = j
		default:
			tokens = append(tokens, analysis.Token{
				Text: text[i : i+size],
				Span: analysis.Span{Start: i, End: i + size},
				Head: analysis.NoHead,
			})
			i += size
		}
	}
	return tokens
}

func computeStats(raw, text string, sentences []analysis.Sentence) analysis.TextStats {
	stats := analysis.TextStats{
		CharCount:     utf8.RuneCountInString(text),
		SentenceCount: len(sentences),
	}

	unique := make(map[string]struct{})
	for _, s := range sentences {
		for _, tok := range s.Tokens {
			if !isWordToken(tok.Text) {
				continue
			}
			stats.WordCount++
			unique[strings.ToLower(tok.Text)] = struct{}{}
		}
	}
	stats.UniqueWords = len(unique)
	if stats.WordCount > 0 {
		stats.LexicalDiversity = float64(stats.UniqueWords) / float64(stats.WordCount)
	}
	if stats.SentenceCount > 0 {
		stats.AvgWordsPerSent = float64(stats.WordCount) / float64(stats.SentenceCount)
	}

	// Paragraphs come from the raw input; blank lines are gone after
	// whitespace collapsing.
	for _, p := range strings.Split(raw, "\n\n") {
		if strings.TrimSpace(p) != "" {
			stats.ParagraphCount++
		}
	}
	return stats
}

func isWordToken(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return isWordRune(r)
}
