// Package review exchanges flagged records with a human through CSV files.
package review

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"PropScanner/internal/domain"
	"PropScanner/internal/ports"
)

// Column order of the exported sheet. Import accepts the same layout; the
// record id is the join key and must never be edited.
var header = []string{
	"record_id", "image", "raw_span", "player", "bet_type", "side",
	"line", "odds", "score", "game_date", "reasons",
}

// CSVMedium writes review sheets into a directory and reads corrected
// sheets back. A row removed by the reviewer means the record is bogus.
type CSVMedium struct {
	dir       string
	imagesDir string
	now       func() time.Time
}

var _ ports.ReviewMedium = (*CSVMedium)(nil)

// NewCSVMedium uses dir for exported sheets, creating it on first export.
// Source images of flagged records are copied into an images subdirectory
// so the reviewer can check the sheet against the slips.
func NewCSVMedium(dir string) *CSVMedium {
	return &CSVMedium{dir: dir, imagesDir: filepath.Join(dir, "images"), now: time.Now}
}

// ExportFlagged writes one sheet with every flagged record and returns its
// path. The raw span and reasons give the reviewer the context needed to
// fill in or fix the parsed columns.
func (m *CSVMedium) ExportFlagged(_ context.Context, items []domain.ReviewItem) (string, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("create review dir: %w", err)
	}

	path := filepath.Join(m.dir, fmt.Sprintf("review_%s.csv", m.now().Format("20060102_150405")))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create sheet: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("write header: %w", err)
	}

	for _, item := range items {
		bet := item.Bet
		player := item.Player
		if player == "" {
			player = bet.RawPlayer
		}
		row := []string{
			bet.ID,
			bet.ImageSource,
			bet.RawSpan,
			player,
			string(bet.BetType),
			string(bet.Side),
			formatFloat(bet.Line),
			formatInt(bet.Odds),
			formatFloat(bet.Score),
			formatDate(bet.GameDate),
			strings.Join(item.Reasons, "; "),
		}
		if err := writer.Write(row); err != nil {
			_ = file.Close()
			return "", fmt.Errorf("write record %s: %w", bet.ID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("flush sheet: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close sheet: %w", err)
	}
	if err := m.copyImages(items); err != nil {
		return "", err
	}
	return path, nil
}

// copyImages refreshes the review images directory with the source images
// of the exported records, dropping leftovers from earlier exports. Images
// that no longer exist on disk are skipped; the sheet still carries the
// path.
func (m *CSVMedium) copyImages(items []domain.ReviewItem) error {
	if err := os.MkdirAll(m.imagesDir, 0o755); err != nil {
		return fmt.Errorf("create review images dir: %w", err)
	}

	stale, err := os.ReadDir(m.imagesDir)
	if err != nil {
		return fmt.Errorf("read review images dir: %w", err)
	}
	for _, entry := range stale {
		if err := os.Remove(filepath.Join(m.imagesDir, entry.Name())); err != nil {
			return fmt.Errorf("clear stale review image: %w", err)
		}
	}

	seen := map[string]bool{}
	for _, item := range items {
		source := item.Bet.ImageSource
		if source == "" || seen[source] {
			continue
		}
		seen[source] = true

		data, err := os.ReadFile(source)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read source image %s: %w", source, err)
		}
		dest := filepath.Join(m.imagesDir, filepath.Base(source))
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return fmt.Errorf("copy image to %s: %w", dest, err)
		}
	}
	return nil
}

// ImportCorrections reads a corrected sheet back. Empty cells mean "leave
// the field as stored"; only rows present in the sheet are returned, so
// the caller can treat missing rows as reviewer deletions.
func (m *CSVMedium) ImportCorrections(_ context.Context, path string) ([]domain.Correction, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sheet: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(header)

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", path)
	}
	if !sameHeader(rows[0]) {
		return nil, fmt.Errorf("sheet %s: unexpected header %v", path, rows[0])
	}

	corrections := make([]domain.Correction, 0, len(rows)-1)
	for i, row := range rows[1:] {
		correction, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("sheet %s row %d: %w", path, i+2, err)
		}
		corrections = append(corrections, correction)
	}
	return corrections, nil
}

func parseRow(row []string) (domain.Correction, error) {
	correction := domain.Correction{RecordID: strings.TrimSpace(row[0])}
	if correction.RecordID == "" {
		return domain.Correction{}, fmt.Errorf("missing record id")
	}

	if player := strings.TrimSpace(row[3]); player != "" {
		correction.Player = &player
	}
	if betType := strings.TrimSpace(row[4]); betType != "" {
		category := domain.StatCategory(betType)
		if !domain.KnownCategory(category) {
			return domain.Correction{}, fmt.Errorf("unknown bet type %q", betType)
		}
		correction.BetType = &category
	}
	if side := strings.TrimSpace(row[5]); side != "" {
		parsed := domain.Side(side)
		switch parsed {
		case domain.SideOver, domain.SideUnder, domain.SideExact:
			correction.Side = &parsed
		default:
			return domain.Correction{}, fmt.Errorf("unknown side %q", side)
		}
	}
	if lineText := strings.TrimSpace(row[6]); lineText != "" {
		line, err := strconv.ParseFloat(lineText, 64)
		if err != nil {
			return domain.Correction{}, fmt.Errorf("line %q: %w", lineText, err)
		}
		correction.Line = &line
	}
	if oddsText := strings.TrimSpace(row[7]); oddsText != "" {
		odds, err := strconv.Atoi(oddsText)
		if err != nil {
			return domain.Correction{}, fmt.Errorf("odds %q: %w", oddsText, err)
		}
		correction.Odds = &odds
	}
	if scoreText := strings.TrimSpace(row[8]); scoreText != "" {
		score, err := strconv.ParseFloat(scoreText, 64)
		if err != nil {
			return domain.Correction{}, fmt.Errorf("score %q: %w", scoreText, err)
		}
		correction.Score = &score
	}
	if dateText := strings.TrimSpace(row[9]); dateText != "" {
		date, err := time.Parse(domain.DateLayout, dateText)
		if err != nil {
			return domain.Correction{}, fmt.Errorf("game date %q: %w", dateText, err)
		}
		correction.GameDate = &date
	}
	return correction, nil
}

func sameHeader(row []string) bool {
	if len(row) != len(header) {
		return false
	}
	for i, col := range header {
		if strings.TrimSpace(row[i]) != col {
			return false
		}
	}
	return true
}

func formatFloat(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatInt(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func formatDate(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.Format(domain.DateLayout)
}
