package parse

import (
	"testing"

	"PropScanner/internal/domain"
)

func testRoster() []domain.Player {
	return []domain.Player{
		{RefID: 2544, Name: "LeBron James", Active: true},
		{RefID: 1629, Name: "Kevin Porter Jr.", Active: true},
		{RefID: 203, Name: "Jaren Jackson Jr.", Active: true},
		// Retired player sharing a truncated surname with an active one;
		// must never resolve.
		{RefID: 77, Name: "Kevin Porter", Active: false},
	}
}

func testAliases() []domain.PlayerAlias {
	return []domain.PlayerAlias{
		{Alias: "Kevin Porter", RefID: 1629, Source: "seed"},
		{Alias: "Jaren Jackson", RefID: 203, Source: "seed"},
		{Alias: "Nobody Anymore", RefID: 9999, Source: "seed"}, // unknown ref, dropped
	}
}

func TestResolveExactActiveMatch(t *testing.T) {
	t.Parallel()

	r := NewResolver(testRoster(), nil)

	player, ok := r.Resolve("LeBron James")
	if !ok || player.RefID != 2544 {
		t.Fatalf("expected LeBron James to resolve, got %v %v", player, ok)
	}

	// Case and spacing are not identity.
	player, ok = r.Resolve("  lebron   JAMES ")
	if !ok || player.RefID != 2544 {
		t.Fatalf("expected normalized match, got %v %v", player, ok)
	}
}

func TestResolveIgnoresInactivePlayers(t *testing.T) {
	t.Parallel()

	r := NewResolver(testRoster(), nil)

	if _, ok := r.Resolve("Kevin Porter"); ok {
		t.Fatal("inactive player must not resolve without an alias")
	}
}

func TestResolveAliasPointsToActivePlayer(t *testing.T) {
	t.Parallel()

	r := NewResolver(testRoster(), testAliases())

	player, ok := r.Resolve("Kevin Porter")
	if !ok || player.RefID != 1629 {
		t.Fatalf("expected alias to resolve to Kevin Porter Jr., got %v %v", player, ok)
	}
}

func TestResolveNeverGuesses(t *testing.T) {
	t.Parallel()

	r := NewResolver(testRoster(), testAliases())

	if _, ok := r.Resolve("LeBron Jame"); ok {
		t.Fatal("misspelled name must not resolve")
	}
	if _, ok := r.Resolve(""); ok {
		t.Fatal("empty name must not resolve")
	}
}

func TestLocateFindsEarliestRosterName(t *testing.T) {
	t.Parallel()

	r := NewResolver(testRoster(), testAliases())

	matched, player, ok := r.Locate("vs MIL Jaren Jackson Jr. 27 min LeBron James")
	if !ok {
		t.Fatal("expected a roster name in text")
	}
	if player.RefID != 203 {
		t.Fatalf("expected earliest name to win, got %s", player.Name)
	}
	if matched != "Jaren Jackson Jr." {
		t.Fatalf("unexpected matched name: %q", matched)
	}
}

func TestLocateMissesUnknownText(t *testing.T) {
	t.Parallel()

	r := NewResolver(testRoster(), testAliases())

	if _, _, ok := r.Locate("totally unrelated noise"); ok {
		t.Fatal("expected no match")
	}
}
