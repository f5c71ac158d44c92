// Package statsfeed scrapes the league stats site for rosters and per-game
// box scores.
package statsfeed

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"PropScanner/internal/domain"
	"PropScanner/internal/ports"
)

// Feed fetches roster and game-log pages. Requests are throttled so
// resolution passes over many records stay polite to the upstream site.
type Feed struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

var _ ports.RosterProvider = (*Feed)(nil)
var _ ports.StatsProvider = (*Feed)(nil)

// NewFeed wires an HTTP client; requestsPerSecond caps the fetch rate.
func NewFeed(baseURL string, client *http.Client, requestsPerSecond float64) *Feed {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2
	}
	return &Feed{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// FetchRoster returns every player currently listed as active.
func (f *Feed) FetchRoster(ctx context.Context) ([]domain.Player, error) {
	doc, err := f.fetchDocument(ctx, f.baseURL+"/players/active")
	if err != nil {
		return nil, fmt.Errorf("fetch roster: %w", err)
	}

	var players []domain.Player
	doc.Find("table.roster tbody tr").Each(func(_ int, row *goquery.Selection) {
		refAttr, ok := row.Attr("data-ref")
		if !ok {
			return
		}
		ref, err := strconv.ParseInt(strings.TrimSpace(refAttr), 10, 64)
		if err != nil {
			return
		}
		name := strings.TrimSpace(row.Find("td.player").First().Text())
		if name == "" {
			return
		}
		players = append(players, domain.Player{RefID: ref, Name: name, Active: true})
	})

	if len(players) == 0 {
		return nil, fmt.Errorf("fetch roster: no players parsed")
	}
	return players, nil
}

// GameStat fetches the player's game log and returns the line for the date.
// A date absent from a log that already contains later games is a confirmed
// no-game and returns ports.ErrNoGame; a log that has not reached the date
// yet returns a plain error so the lookup is retried later.
func (f *Feed) GameStat(ctx context.Context, playerRef int64, date time.Time) (domain.StatLine, error) {
	url := fmt.Sprintf("%s/players/%d/gamelog", f.baseURL, playerRef)
	doc, err := f.fetchDocument(ctx, url)
	if err != nil {
		return domain.StatLine{}, fmt.Errorf("fetch gamelog %d: %w", playerRef, err)
	}

	target := date.Format(domain.DateLayout)
	var (
		line      domain.StatLine
		found     bool
		parseErr  error
		laterGame bool
	)

	doc.Find("table.gamelog tbody tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		rowDate := strings.TrimSpace(row.Find("td.date").First().Text())
		if rowDate > target {
			laterGame = true
		}
		if rowDate != target {
			return true
		}
		line, parseErr = parseStatRow(row)
		found = true
		return false
	})

	if parseErr != nil {
		return domain.StatLine{}, fmt.Errorf("gamelog %d row %s: %w", playerRef, target, parseErr)
	}
	if found {
		return line, nil
	}
	if laterGame {
		return domain.StatLine{}, ports.ErrNoGame
	}
	return domain.StatLine{}, fmt.Errorf("gamelog %d: no entry for %s yet", playerRef, target)
}

func parseStatRow(row *goquery.Selection) (domain.StatLine, error) {
	var line domain.StatLine
	fields := []struct {
		class string
		dest  *float64
	}{
		{"pts", &line.Points},
		{"reb", &line.Rebounds},
		{"ast", &line.Assists},
		{"blk", &line.Blocks},
		{"stl", &line.Steals},
		{"tov", &line.Turnovers},
		{"fg3", &line.Threes},
	}
	for _, field := range fields {
		text := strings.TrimSpace(row.Find("td." + field.class).First().Text())
		value, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return domain.StatLine{}, fmt.Errorf("column %s value %q: %w", field.class, text, err)
		}
		*field.dest = value
	}
	return line, nil
}

func (f *Feed) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "PropScanner/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats site returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}
