package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// ScoreThreshold is the relevance cutoff for the custom metric: spans whose
// score falls below it are never emitted.
const ScoreThreshold = 20.0

// First pass: a score token shaped like "+23.45%". OCR inserts stray spaces
// around the decimal point, so whitespace is tolerated between characters.
var scoreExpr = regexp.MustCompile(`\+\s*\d{2}\s*\.\s*\d{2}\s*%`)

// Second pass, applied only inside a located span. The line side letter is
// commonly misread as a zero ("027.5" for "o27.5"), and a leading minus on
// the odds comes back as 7, 4, tilde, or a double quote.
var (
	lineExpr = regexp.MustCompile(`[ouO0]\s*\d{1,3}\s*\.\s*5`)
	oddsExpr = regexp.MustCompile(`[-+74~"]\s*\d{3}`)
)

// PropSlip extracts bets from the standard prop-sheet screenshot layout:
// 2-20 entries per image, each carrying a score, a line, and American odds,
// interleaved with cursor and highlight noise.
type PropSlip struct {
	minScore float64
}

var _ Format = (*PropSlip)(nil)

// NewPropSlip builds the default slip format with the documented threshold.
func NewPropSlip() *PropSlip {
	return &PropSlip{minScore: ScoreThreshold}
}

// Name identifies the format inside the registry.
func (p *PropSlip) Name() string {
	return "propslip"
}

// Extract walks the text in two passes. The first pass locates candidate
// spans by score token; a span runs from its score token to the next one
// (or end of text) and is kept only when score >= the threshold. The second
// pass matches line and odds inside the span; a span missing either token
// is discarded, not defaulted.
func (p *PropSlip) Extract(text string) []Span {
	locs := scoreExpr.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	spans := make([]Span, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}

		span := text[loc[0]:end]
		score, ok := parseScore(text[loc[0]:loc[1]])
		if !ok || score < p.minScore {
			continue
		}

		// Search past the score token so its digits cannot satisfy the
		// line or odds patterns.
		rest := span[loc[1]-loc[0]:]
		lineTok := lineExpr.FindString(rest)
		oddsTok := oddsExpr.FindString(rest)
		if lineTok == "" || oddsTok == "" {
			continue
		}

		spans = append(spans, Span{
			Raw:     strings.TrimSpace(span),
			Score:   score,
			RawLine: lineTok,
			RawOdds: oddsTok,
		})
	}

	return spans
}

func parseScore(token string) (float64, bool) {
	cleaned := strings.NewReplacer(" ", "", "+", "", "%", "").Replace(token)
	score, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return score, true
}
