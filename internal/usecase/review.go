package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"PropScanner/internal/domain"
	"PropScanner/internal/parse"
	"PropScanner/internal/ports"
)

// ReviewDeps wires the adapters used by the human review loop.
type ReviewDeps struct {
	Bets    ports.BetRepository
	Players ports.PlayerStore
	Medium  ports.ReviewMedium
	Logger  *slog.Logger
}

// Review exports flagged records and applies reviewer corrections.
type Review struct {
	bets    ports.BetRepository
	players ports.PlayerStore
	medium  ports.ReviewMedium
	log     *slog.Logger
}

// ReviewSummary reports what one correction pass did.
type ReviewSummary struct {
	Corrected int
	Voided    int
	Rejected  int
	Aliases   int
}

// NewReview constructs the review workflow.
func NewReview(deps ReviewDeps) *Review {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Review{bets: deps.Bets, players: deps.Players, medium: deps.Medium, log: log}
}

// Export writes every flagged record to the review medium and returns the
// sheet location and record count.
func (r *Review) Export(ctx context.Context) (string, int, error) {
	flagged, err := r.bets.ListByStatus(ctx, domain.StatusNeedsReview)
	if err != nil {
		return "", 0, fmt.Errorf("list flagged: %w", err)
	}
	if len(flagged) == 0 {
		return "", 0, nil
	}

	resolver, err := r.buildResolver(ctx)
	if err != nil {
		return "", 0, err
	}

	items := make([]domain.ReviewItem, 0, len(flagged))
	for _, bet := range flagged {
		item := domain.ReviewItem{Bet: bet, Reasons: bet.Reasons}
		if player, ok := resolver.Resolve(bet.RawPlayer); ok {
			item.Player = player.Name
		}
		items = append(items, item)
	}

	path, err := r.medium.ExportFlagged(ctx, items)
	if err != nil {
		return "", 0, fmt.Errorf("export flagged: %w", err)
	}

	r.log.Info("review sheet exported", "path", path, "records", len(items))
	return path, len(items), nil
}

// Apply reads a corrected sheet and updates the flagged records. Records
// the reviewer removed from the sheet are voided; records whose corrected
// values still fail validation stay flagged. Re-applying a sheet is safe:
// records that already left review are untouched.
func (r *Review) Apply(ctx context.Context, path string) (ReviewSummary, error) {
	corrections, err := r.medium.ImportCorrections(ctx, path)
	if err != nil {
		return ReviewSummary{}, fmt.Errorf("import corrections: %w", err)
	}

	flagged, err := r.bets.ListByStatus(ctx, domain.StatusNeedsReview)
	if err != nil {
		return ReviewSummary{}, fmt.Errorf("list flagged: %w", err)
	}

	resolver, err := r.buildResolver(ctx)
	if err != nil {
		return ReviewSummary{}, err
	}

	byID := make(map[string]domain.Correction, len(corrections))
	for _, c := range corrections {
		byID[c.RecordID] = c
	}

	var summary ReviewSummary
	for _, bet := range flagged {
		correction, present := byID[bet.ID]
		if !present || correction.Delete {
			voided, err := r.bets.Transition(ctx, bet.ID, domain.StatusNeedsReview, domain.StatusVoided)
			if err != nil {
				return summary, fmt.Errorf("void record %s: %w", bet.ID, err)
			}
			if voided {
				summary.Voided++
				r.log.Info("record voided by reviewer", "id", bet.ID)
			}
			continue
		}

		corrected, learned, reject := r.applyCorrection(bet, correction, resolver)
		if reject != "" {
			summary.Rejected++
			r.log.Warn("correction rejected", "id", bet.ID, "reason", reject)
			continue
		}
		if reasons := parse.ValidateComplete(corrected); len(reasons) > 0 {
			summary.Rejected++
			r.log.Warn("corrected record still invalid", "id", bet.ID, "reasons", reasons)
			continue
		}

		applied, err := r.bets.UpdateCorrected(ctx, corrected)
		if err != nil {
			return summary, fmt.Errorf("apply correction %s: %w", bet.ID, err)
		}
		if !applied {
			continue
		}
		summary.Corrected++

		if learned != "" {
			alias := domain.PlayerAlias{Alias: learned, RefID: corrected.PlayerID, Source: "review"}
			if err := r.players.AddAlias(ctx, alias); err != nil {
				return summary, fmt.Errorf("learn alias %q: %w", learned, err)
			}
			summary.Aliases++
			r.log.Info("alias learned", "alias", learned, "ref", corrected.PlayerID)
		}
	}

	r.log.Info("corrections applied", "corrected", summary.Corrected,
		"voided", summary.Voided, "rejected", summary.Rejected, "aliases", summary.Aliases)
	return summary, nil
}

// applyCorrection folds the reviewer's values into the stored record. A
// corrected player name that maps to a known player also teaches the raw
// OCR name as an alias so the next scan resolves it without review.
func (r *Review) applyCorrection(bet domain.RawBet, c domain.Correction, resolver *parse.Resolver) (domain.RawBet, string, string) {
	var learned string

	if c.Player != nil {
		player, ok := resolver.Resolve(*c.Player)
		if !ok {
			return domain.RawBet{}, "", fmt.Sprintf("player %q not on the active roster", *c.Player)
		}
		bet.PlayerID = player.RefID
		if bet.RawPlayer != "" {
			if _, known := resolver.Resolve(bet.RawPlayer); !known {
				learned = bet.RawPlayer
			}
		}
	}
	if c.BetType != nil {
		bet.BetType = *c.BetType
	}
	if c.Side != nil {
		bet.Side = *c.Side
	}
	if c.Line != nil {
		bet.Line = *c.Line
	}
	if c.Odds != nil {
		bet.Odds = *c.Odds
	}
	if c.Score != nil {
		bet.Score = *c.Score
	}
	if c.GameDate != nil {
		bet.GameDate = *c.GameDate
	}

	return bet, learned, ""
}

func (r *Review) buildResolver(ctx context.Context) (*parse.Resolver, error) {
	players, err := r.players.ActivePlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	aliases, err := r.players.Aliases(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aliases: %w", err)
	}
	return parse.NewResolver(players, aliases), nil
}
