package parse

import (
	"testing"
	"time"

	"PropScanner/internal/domain"
	"PropScanner/internal/extract"
)

func newTestParser() *Parser {
	return NewParser(NewResolver(testRoster(), testAliases()), 2025)
}

func parseOne(t *testing.T, text string) domain.RawBet {
	t.Helper()

	spans := extract.NewPropSlip().Extract(text)
	if len(spans) != 1 {
		t.Fatalf("expected 1 span from %q, got %d", text, len(spans))
	}

	bets := newTestParser().ParseImage("slip_001.png", text, spans)
	if len(bets) != 1 {
		t.Fatalf("expected 1 bet, got %d", len(bets))
	}
	return bets[0]
}

func TestParseCleanEntry(t *testing.T) {
	t.Parallel()

	bet := parseOne(t, `12/28 Points +23.45% u27.5 -115 LeBron James`)

	if bet.Status != domain.StatusReady {
		t.Fatalf("expected ready, got %s (%v)", bet.Status, bet.Reasons)
	}
	if bet.PlayerID != 2544 {
		t.Fatalf("unexpected player: %d", bet.PlayerID)
	}
	if bet.BetType != domain.CatPoints {
		t.Fatalf("unexpected bet type: %s", bet.BetType)
	}
	if bet.Side != domain.SideUnder || bet.Line != 27.5 {
		t.Fatalf("unexpected line: %s %.1f", bet.Side, bet.Line)
	}
	if bet.Odds != -115 {
		t.Fatalf("unexpected odds: %d", bet.Odds)
	}
	if bet.Score != 23.45 {
		t.Fatalf("unexpected score: %v", bet.Score)
	}
	if got := bet.GameDate.Format(domain.DateLayout); got != "2025-12-28" {
		t.Fatalf("unexpected date: %s", got)
	}
	if bet.ID == "" {
		t.Fatal("expected generated record id")
	}
}

func TestParseNormalizesOCRArtifacts(t *testing.T) {
	t.Parallel()

	// Zero for "o", 7 for the leading minus.
	bet := parseOne(t, `12/28 Rebounds +24.10% 012.5 7140 LeBron James`)

	if bet.Status != domain.StatusReady {
		t.Fatalf("expected ready, got %s (%v)", bet.Status, bet.Reasons)
	}
	if bet.Side != domain.SideOver || bet.Line != 12.5 {
		t.Fatalf("unexpected line: %s %.1f", bet.Side, bet.Line)
	}
	if bet.Odds != -140 {
		t.Fatalf("unexpected odds: %d", bet.Odds)
	}
}

func TestParseMisspelledNamePreservedAndFlagged(t *testing.T) {
	t.Parallel()

	bet := parseOne(t, `12/28 Points +23.45% u27.5 -115 LeBron Jame`)

	if bet.Status != domain.StatusNeedsReview {
		t.Fatalf("expected needs_review, got %s", bet.Status)
	}
	if bet.PlayerID != 0 {
		t.Fatalf("misread name must not resolve, got player %d", bet.PlayerID)
	}
	if bet.RawPlayer != "LeBron Jame" {
		t.Fatalf("raw name must be preserved verbatim, got %q", bet.RawPlayer)
	}
	// Readable fields survive alongside the flag.
	if bet.Odds != -115 || bet.Line != 27.5 {
		t.Fatalf("partial record lost fields: odds=%d line=%.1f", bet.Odds, bet.Line)
	}
}

func TestParseMissingDateFlags(t *testing.T) {
	t.Parallel()

	bet := parseOne(t, `Points +23.45% u27.5 -115 LeBron James`)

	if bet.Status != domain.StatusNeedsReview {
		t.Fatalf("expected needs_review, got %s", bet.Status)
	}
	if !bet.GameDate.IsZero() {
		t.Fatalf("date must stay unset, got %v", bet.GameDate)
	}
}

func TestDetectBetTypeOrderedAndSpacingTolerant(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want domain.StatCategory
	}{
		{"Pts+Reb+Ast", domain.CatPtsRebAst},
		{"Pts + Reb + Ast", domain.CatPtsRebAst},
		{"Pts+ Reb", domain.CatPtsReb},
		{"3pts", domain.CatThrees},
		{"Turnovers", domain.CatTurnovers},
	}

	for _, tc := range cases {
		got, ok := detectBetType("12/28 " + tc.text + " +23.45%")
		if !ok || got != tc.want {
			t.Fatalf("detectBetType(%q) = %s %v, want %s", tc.text, got, ok, tc.want)
		}
	}

	if _, ok := detectBetType("12/28 nothing useful"); ok {
		t.Fatal("expected no bet type")
	}
}

func TestParseImageIsDeterministic(t *testing.T) {
	t.Parallel()

	text := `12/28 Points +23.45% u27.5 -115 LeBron James +26.70% o8.5 -130 Kevin Porter`
	spans := extract.NewPropSlip().Extract(text)
	parser := newTestParser()

	first := parser.ParseImage("slip_002.png", text, spans)
	second := parser.ParseImage("slip_002.png", text, spans)

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 bets per run, got %d and %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		// IDs and timestamps are per-insert; every extracted field matches.
		if a.PlayerID != b.PlayerID || a.Side != b.Side || a.Line != b.Line ||
			a.Odds != b.Odds || a.Score != b.Score || a.Status != b.Status {
			t.Fatalf("run mismatch at %d:\n%+v\n%+v", i, a, b)
		}
	}
}

func TestValidateBetRanges(t *testing.T) {
	t.Parallel()

	good := domain.RawBet{Score: 25, Odds: -115, Line: 27.5, BetType: domain.CatPoints}
	if reasons := ValidateBet(good); len(reasons) != 0 {
		t.Fatalf("unexpected reasons: %v", reasons)
	}

	bad := domain.RawBet{Score: 12, Odds: 4115, Line: 275.5, BetType: "quadruple_doubles"}
	reasons := ValidateBet(bad)
	if len(reasons) != 4 {
		t.Fatalf("expected 4 reasons, got %v", reasons)
	}
}

func TestValidateBetRejectsSubHundredOdds(t *testing.T) {
	t.Parallel()

	for _, odds := range []int{50, -50, 99, -99, 1} {
		bet := domain.RawBet{Score: 25, Odds: odds, Line: 27.5, BetType: domain.CatPoints}
		if reasons := ValidateBet(bet); len(reasons) != 1 {
			t.Fatalf("odds %d: expected 1 reason, got %v", odds, reasons)
		}
	}
	for _, odds := range []int{100, -100, 1000, -1000} {
		bet := domain.RawBet{Score: 25, Odds: odds, Line: 27.5, BetType: domain.CatPoints}
		if reasons := ValidateBet(bet); len(reasons) != 0 {
			t.Fatalf("odds %d: unexpected reasons: %v", odds, reasons)
		}
	}
}

func TestValidateCompleteRequiresAllFields(t *testing.T) {
	t.Parallel()

	bet := domain.RawBet{
		PlayerID: 2544,
		BetType:  domain.CatPoints,
		Side:     domain.SideOver,
		Line:     24.5,
		Odds:     -115,
		Score:    25,
		GameDate: time.Date(2025, 12, 28, 0, 0, 0, 0, time.UTC),
	}
	if reasons := ValidateComplete(bet); len(reasons) != 0 {
		t.Fatalf("unexpected reasons: %v", reasons)
	}

	bet.PlayerID = 0
	bet.Odds = 0
	reasons := ValidateComplete(bet)
	if len(reasons) != 2 {
		t.Fatalf("expected 2 reasons, got %v", reasons)
	}
}
