package domain

import "testing"

func TestStatusTransitions(t *testing.T) {
	t.Parallel()

	allowed := []struct{ from, to Status }{
		{StatusNeedsReview, StatusReady},
		{StatusNeedsReview, StatusVoided},
		{StatusReady, StatusResolved},
	}
	for _, tr := range allowed {
		if !tr.from.CanTransition(tr.to) {
			t.Fatalf("%s -> %s must be allowed", tr.from, tr.to)
		}
	}

	denied := []struct{ from, to Status }{
		{StatusResolved, StatusReady},
		{StatusResolved, StatusNeedsReview},
		{StatusVoided, StatusReady},
		{StatusVoided, StatusResolved},
		{StatusReady, StatusNeedsReview},
		{StatusReady, StatusVoided},
		{StatusNeedsReview, StatusResolved},
	}
	for _, tr := range denied {
		if tr.from.CanTransition(tr.to) {
			t.Fatalf("%s -> %s must be denied", tr.from, tr.to)
		}
	}

	if !StatusVoided.Terminal() || !StatusResolved.Terminal() {
		t.Fatal("voided and resolved are terminal")
	}
	if StatusReady.Terminal() || StatusNeedsReview.Terminal() {
		t.Fatal("ready and needs_review are not terminal")
	}
}

func TestSettle(t *testing.T) {
	t.Parallel()

	cases := []struct {
		stat, line float64
		side       Side
		want       Outcome
	}{
		{26, 24.5, SideOver, OutcomeWin},
		{23, 24.5, SideOver, OutcomeLoss},
		{23, 24.5, SideUnder, OutcomeWin},
		{26, 24.5, SideUnder, OutcomeLoss},
		{24, 24, SideOver, OutcomePush},
		{24, 24, SideUnder, OutcomePush},
		{24, 24, SideExact, OutcomeWin},
		{25, 24, SideExact, OutcomeLoss},
	}

	for _, tc := range cases {
		if got := Settle(tc.stat, tc.line, tc.side); got != tc.want {
			t.Fatalf("Settle(%v, %v, %s) = %s, want %s", tc.stat, tc.line, tc.side, got, tc.want)
		}
	}
}

func TestReturnDelta(t *testing.T) {
	t.Parallel()

	if got := ReturnDelta(OutcomeWin, -115); got != 100 {
		t.Fatalf("win at -115 = %v, want 100", got)
	}
	if got := ReturnDelta(OutcomeWin, 120); got != 100 {
		t.Fatalf("win at +120 = %v, want 100", got)
	}
	if got := ReturnDelta(OutcomeLoss, -115); got != -115 {
		t.Fatalf("loss at -115 = %v, want -115", got)
	}
	// Staked to win 100 at +120 means risking 83.
	if got := ReturnDelta(OutcomeLoss, 120); got != -83 {
		t.Fatalf("loss at +120 = %v, want -83", got)
	}
	if got := ReturnDelta(OutcomePush, -115); got != 0 {
		t.Fatalf("push = %v, want 0", got)
	}
}

func TestScoreBucket(t *testing.T) {
	t.Parallel()

	cases := []struct {
		score float64
		want  string
	}{
		{19.99, ""},
		{20, "20-25"},
		{24.99, "20-25"},
		{25, "25-30"},
		{34.5, "30-35"},
		{49.99, "45-50"},
		{50, "50+"},
		{87.3, "50+"},
	}

	for _, tc := range cases {
		if got := ScoreBucket(tc.score); got != tc.want {
			t.Fatalf("ScoreBucket(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestStatLineValue(t *testing.T) {
	t.Parallel()

	line := StatLine{Points: 26, Rebounds: 8, Assists: 7, Threes: 3}

	cases := []struct {
		cat  StatCategory
		want float64
	}{
		{CatPoints, 26},
		{CatThrees, 3},
		{CatPtsRebAst, 41},
		{CatPtsReb, 34},
		{CatPtsAst, 33},
		{CatRebAst, 15},
	}
	for _, tc := range cases {
		got, ok := line.Value(tc.cat)
		if !ok || got != tc.want {
			t.Fatalf("Value(%s) = %v %v, want %v", tc.cat, got, ok, tc.want)
		}
	}

	if _, ok := line.Value("not_a_stat"); ok {
		t.Fatal("unknown category must not produce a value")
	}
}
