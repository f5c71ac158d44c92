package usecase

import (
	"context"
	"fmt"
	"time"

	"PropScanner/internal/domain"
	"PropScanner/internal/ports"
)

type statKey struct {
	ref  int64
	date string
}

func keyOf(ref int64, date time.Time) statKey {
	return statKey{ref: ref, date: date.Format(domain.DateLayout)}
}

// fakeBets is an in-memory BetRepository with the same guarded-transition
// semantics as the Postgres store.
type fakeBets struct {
	order []string
	bets  map[string]domain.RawBet
}

func newFakeBets() *fakeBets {
	return &fakeBets{bets: map[string]domain.RawBet{}}
}

func (f *fakeBets) add(bet domain.RawBet) {
	if _, ok := f.bets[bet.ID]; !ok {
		f.order = append(f.order, bet.ID)
	}
	f.bets[bet.ID] = bet
}

func (f *fakeBets) HasSettledImage(_ context.Context, imageSource string) (bool, error) {
	for _, id := range f.order {
		bet := f.bets[id]
		if bet.ImageSource == imageSource && bet.Status != domain.StatusNeedsReview {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBets) ReplaceImage(_ context.Context, imageSource string, bets []domain.RawBet) error {
	kept := f.order[:0]
	for _, id := range f.order {
		bet := f.bets[id]
		if bet.ImageSource == imageSource && bet.Status == domain.StatusNeedsReview {
			delete(f.bets, id)
			continue
		}
		kept = append(kept, id)
	}
	f.order = kept
	for _, bet := range bets {
		f.add(bet)
	}
	return nil
}

func (f *fakeBets) ListByStatus(_ context.Context, status domain.Status) ([]domain.RawBet, error) {
	var out []domain.RawBet
	for _, id := range f.order {
		if f.bets[id].Status == status {
			out = append(out, f.bets[id])
		}
	}
	return out, nil
}

func (f *fakeBets) Get(_ context.Context, id string) (domain.RawBet, error) {
	bet, ok := f.bets[id]
	if !ok {
		return domain.RawBet{}, fmt.Errorf("bet %s not found", id)
	}
	return bet, nil
}

func (f *fakeBets) Transition(_ context.Context, id string, from, to domain.Status) (bool, error) {
	if !from.CanTransition(to) {
		return false, fmt.Errorf("illegal transition %s -> %s", from, to)
	}
	bet, ok := f.bets[id]
	if !ok || bet.Status != from {
		return false, nil
	}
	bet.Status = to
	f.bets[id] = bet
	return true, nil
}

func (f *fakeBets) UpdateCorrected(_ context.Context, corrected domain.RawBet) (bool, error) {
	bet, ok := f.bets[corrected.ID]
	if !ok || bet.Status != domain.StatusNeedsReview {
		return false, nil
	}
	bet.PlayerID = corrected.PlayerID
	bet.BetType = corrected.BetType
	bet.Side = corrected.Side
	bet.Line = corrected.Line
	bet.Odds = corrected.Odds
	bet.Score = corrected.Score
	bet.GameDate = corrected.GameDate
	bet.Status = domain.StatusReady
	bet.Reasons = nil
	f.bets[corrected.ID] = bet
	return true, nil
}

var _ ports.BetRepository = (*fakeBets)(nil)

// fakeCache mirrors the mutual exclusivity of the Postgres cache tables.
type fakeCache struct {
	stats    map[statKey]domain.StatLine
	unplayed map[statKey]bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{stats: map[statKey]domain.StatLine{}, unplayed: map[statKey]bool{}}
}

func (f *fakeCache) CachedStat(_ context.Context, ref int64, date time.Time) (*domain.StatLine, error) {
	if line, ok := f.stats[keyOf(ref, date)]; ok {
		return &line, nil
	}
	return nil, nil
}

func (f *fakeCache) MarkedUnplayed(_ context.Context, ref int64, date time.Time) (bool, error) {
	return f.unplayed[keyOf(ref, date)], nil
}

func (f *fakeCache) PutStat(_ context.Context, stat domain.GameStat) error {
	key := keyOf(stat.PlayerRefID, stat.Date)
	delete(f.unplayed, key)
	if _, ok := f.stats[key]; !ok {
		f.stats[key] = stat.Line
	}
	return nil
}

func (f *fakeCache) PutUnplayed(_ context.Context, unplayed domain.UnplayedBet) error {
	key := keyOf(unplayed.PlayerRefID, unplayed.Date)
	if _, ok := f.stats[key]; ok {
		return fmt.Errorf("stat already cached for %d/%s", unplayed.PlayerRefID, key.date)
	}
	f.unplayed[key] = true
	return nil
}

var _ ports.StatCache = (*fakeCache)(nil)

// fakeStats scripts provider answers per (player, date) and counts lookups.
type fakeStats struct {
	lines  map[statKey]domain.StatLine
	noGame map[statKey]bool
	err    error
	calls  int
}

func newFakeStats() *fakeStats {
	return &fakeStats{lines: map[statKey]domain.StatLine{}, noGame: map[statKey]bool{}}
}

func (f *fakeStats) GameStat(_ context.Context, ref int64, date time.Time) (domain.StatLine, error) {
	f.calls++
	if f.err != nil {
		return domain.StatLine{}, f.err
	}
	key := keyOf(ref, date)
	if f.noGame[key] {
		return domain.StatLine{}, ports.ErrNoGame
	}
	if line, ok := f.lines[key]; ok {
		return line, nil
	}
	return domain.StatLine{}, fmt.Errorf("no scripted answer for %d/%s", ref, key.date)
}

var _ ports.StatsProvider = (*fakeStats)(nil)

// fakeResults is an in-memory ResultStore with conflict-safe inserts.
// consumeErr, when set, fails the next ConsumeBatch before anything folds.
type fakeResults struct {
	results    []domain.BetResult
	nextID     int64
	groups     [][]domain.AggregatedGroup
	consumeErr error
}

func (f *fakeResults) InsertResult(_ context.Context, result domain.BetResult) error {
	for _, existing := range f.results {
		if existing.RawBetID == result.RawBetID {
			return nil
		}
	}
	f.nextID++
	result.ID = f.nextID
	if result.ResolvedAt.IsZero() {
		result.ResolvedAt = time.Now()
	}
	f.results = append(f.results, result)
	return nil
}

func (f *fakeResults) UnuploadedResults(_ context.Context) ([]domain.BetResult, error) {
	var out []domain.BetResult
	for _, result := range f.results {
		if !result.Uploaded {
			out = append(out, result)
		}
	}
	return out, nil
}

func (f *fakeResults) ConsumeBatch(_ context.Context, ids []int64, groups []domain.AggregatedGroup) error {
	if f.consumeErr != nil {
		err := f.consumeErr
		f.consumeErr = nil
		return err
	}
	marked := map[int64]bool{}
	for _, id := range ids {
		marked[id] = true
	}
	for i := range f.results {
		if marked[f.results[i].ID] {
			f.results[i].Uploaded = true
		}
	}
	f.groups = append(f.groups, groups)
	return nil
}

var _ ports.ResultStore = (*fakeResults)(nil)

// fakePlayers holds roster and alias reference data in memory.
type fakePlayers struct {
	players []domain.Player
	aliases []domain.PlayerAlias
}

func (f *fakePlayers) SyncRoster(_ context.Context, roster []domain.Player) (int, int, error) {
	known := map[int64]bool{}
	for _, player := range f.players {
		known[player.RefID] = true
	}
	added := 0
	for _, player := range roster {
		if !known[player.RefID] {
			added++
		}
	}
	f.players = roster
	return added, 0, nil
}

func (f *fakePlayers) ActivePlayers(_ context.Context) ([]domain.Player, error) {
	var out []domain.Player
	for _, player := range f.players {
		if player.Active {
			out = append(out, player)
		}
	}
	return out, nil
}

func (f *fakePlayers) Aliases(_ context.Context) ([]domain.PlayerAlias, error) {
	return f.aliases, nil
}

func (f *fakePlayers) AddAlias(_ context.Context, alias domain.PlayerAlias) error {
	for _, existing := range f.aliases {
		if existing.Alias == alias.Alias {
			return nil
		}
	}
	f.aliases = append(f.aliases, alias)
	return nil
}

var _ ports.PlayerStore = (*fakePlayers)(nil)

// fakeMedium returns scripted corrections and captures exports.
type fakeMedium struct {
	exported    []domain.ReviewItem
	corrections []domain.Correction
}

func (f *fakeMedium) ExportFlagged(_ context.Context, items []domain.ReviewItem) (string, error) {
	f.exported = items
	return "review.csv", nil
}

func (f *fakeMedium) ImportCorrections(_ context.Context, _ string) ([]domain.Correction, error) {
	return f.corrections, nil
}

var _ ports.ReviewMedium = (*fakeMedium)(nil)

// fakeDashboard records pushes and optionally fails them.
type fakeDashboard struct {
	pushes [][]domain.AggregatedGroup
	err    error
}

func (f *fakeDashboard) PushRollups(_ context.Context, groups []domain.AggregatedGroup) error {
	if f.err != nil {
		return f.err
	}
	f.pushes = append(f.pushes, groups)
	return nil
}

var _ ports.DashboardTarget = (*fakeDashboard)(nil)

// fakeReader serves canned OCR text per image path.
type fakeReader struct {
	texts map[string]string
}

func (f *fakeReader) ReadSlip(_ context.Context, imagePath string) (ports.SlipText, error) {
	text, ok := f.texts[imagePath]
	if !ok {
		return ports.SlipText{}, fmt.Errorf("no canned text for %s", imagePath)
	}
	return ports.SlipText{Text: text}, nil
}

var _ ports.SlipReader = (*fakeReader)(nil)

// fakeRoster serves a fixed roster.
type fakeRoster struct {
	players []domain.Player
}

func (f *fakeRoster) FetchRoster(_ context.Context) ([]domain.Player, error) {
	return f.players, nil
}

var _ ports.RosterProvider = (*fakeRoster)(nil)
