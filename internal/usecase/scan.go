// Package usecase orchestrates the slip-processing workflows over the
// driven adapters.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"PropScanner/internal/domain"
	"PropScanner/internal/extract"
	"PropScanner/internal/parse"
	"PropScanner/internal/ports"
)

// ScanDeps wires the driven adapters into the image-scanning workflow.
type ScanDeps struct {
	Reader  ports.SlipReader
	Bets    ports.BetRepository
	Players ports.PlayerStore
	Roster  ports.RosterProvider
	Format  extract.Format
	Year    int
	Logger  *slog.Logger
}

// Scan ingests slip images into the record store.
type Scan struct {
	reader  ports.SlipReader
	bets    ports.BetRepository
	players ports.PlayerStore
	roster  ports.RosterProvider
	format  extract.Format
	year    int
	log     *slog.Logger
}

// ScanSummary reports what one scanning pass did.
type ScanSummary struct {
	Images  int
	Skipped int
	Records int
	Flagged int
}

// NewScan constructs the scanning workflow.
func NewScan(deps ScanDeps) *Scan {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Scan{
		reader:  deps.Reader,
		bets:    deps.Bets,
		players: deps.Players,
		roster:  deps.Roster,
		format:  deps.Format,
		year:    deps.Year,
		log:     log,
	}
}

// SyncRoster refreshes the player reference table from the provider.
func (s *Scan) SyncRoster(ctx context.Context) error {
	roster, err := s.roster.FetchRoster(ctx)
	if err != nil {
		return fmt.Errorf("fetch roster: %w", err)
	}

	added, deactivated, err := s.players.SyncRoster(ctx, roster)
	if err != nil {
		return fmt.Errorf("sync roster: %w", err)
	}

	s.log.Info("roster synced", "players", len(roster), "added", added, "deactivated", deactivated)
	return nil
}

// ProcessDir scans every image file in dir, in name order so reruns are
// deterministic.
func (s *Scan) ProcessDir(ctx context.Context, dir string) (ScanSummary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ScanSummary{}, fmt.Errorf("read image dir: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	return s.ProcessImages(ctx, paths)
}

// ProcessImages runs one scanning pass over the given images. Images whose
// records already left review are skipped; for the rest, still-flagged
// records are replaced by the fresh extraction.
func (s *Scan) ProcessImages(ctx context.Context, imagePaths []string) (ScanSummary, error) {
	parser, err := s.buildParser(ctx)
	if err != nil {
		return ScanSummary{}, err
	}

	var summary ScanSummary
	for _, path := range imagePaths {
		settled, err := s.bets.HasSettledImage(ctx, path)
		if err != nil {
			return summary, fmt.Errorf("check image %s: %w", path, err)
		}
		if settled {
			summary.Skipped++
			s.log.Debug("image already settled", "image", path)
			continue
		}

		slip, err := s.reader.ReadSlip(ctx, path)
		if err != nil {
			return summary, fmt.Errorf("ocr image %s: %w", path, err)
		}

		spans := s.format.Extract(slip.Text)
		bets := parser.ParseImage(path, slip.Text, spans)

		if err := s.bets.ReplaceImage(ctx, path, bets); err != nil {
			return summary, fmt.Errorf("store image %s: %w", path, err)
		}

		flagged := 0
		for _, bet := range bets {
			if bet.Status == domain.StatusNeedsReview {
				flagged++
			}
		}

		summary.Images++
		summary.Records += len(bets)
		summary.Flagged += flagged
		s.log.Info("image scanned", "image", path, "records", len(bets), "flagged", flagged)
	}

	return summary, nil
}

func (s *Scan) buildParser(ctx context.Context) (*parse.Parser, error) {
	players, err := s.players.ActivePlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	aliases, err := s.players.Aliases(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aliases: %w", err)
	}
	return parse.NewParser(parse.NewResolver(players, aliases), s.year), nil
}
