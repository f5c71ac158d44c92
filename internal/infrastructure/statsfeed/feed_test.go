package statsfeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"PropScanner/internal/ports"
)

const rosterPage = `<html><body>
<table class="roster"><tbody>
<tr data-ref="2544"><td class="player">LeBron James</td><td>LAL</td></tr>
<tr data-ref="1629"><td class="player">Kevin Porter Jr.</td><td>MIL</td></tr>
<tr><td class="player">No Ref Attribute</td></tr>
</tbody></table>
</body></html>`

const gamelogPage = `<html><body>
<table class="gamelog"><tbody>
<tr><td class="date">2025-12-30</td><td class="pts">31</td><td class="reb">9</td><td class="ast">6</td><td class="blk">1</td><td class="stl">0</td><td class="tov">4</td><td class="fg3">3</td></tr>
<tr><td class="date">2025-12-28</td><td class="pts">29</td><td class="reb">8</td><td class="ast">11</td><td class="blk">1</td><td class="stl">2</td><td class="tov">3</td><td class="fg3">4</td></tr>
<tr><td class="date">2025-12-25</td><td class="pts">38</td><td class="reb">6</td><td class="ast">8</td><td class="blk">0</td><td class="stl">1</td><td class="tov">2</td><td class="fg3">5</td></tr>
</tbody></table>
</body></html>`

func newTestFeed(t *testing.T, handler http.HandlerFunc) *Feed {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewFeed(server.URL, server.Client(), 100)
}

func TestFetchRosterSkipsMalformedRows(t *testing.T) {
	t.Parallel()

	feed := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/players/active" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(rosterPage))
	})

	players, err := feed.FetchRoster(context.Background())
	if err != nil {
		t.Fatalf("FetchRoster: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("got %d players, want 2", len(players))
	}
	if players[0].RefID != 2544 || players[0].Name != "LeBron James" {
		t.Errorf("unexpected first player %+v", players[0])
	}
	if !players[1].Active {
		t.Error("roster players must be active")
	}
}

func TestGameStatFindsDateRow(t *testing.T) {
	t.Parallel()

	feed := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/players/2544/gamelog" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(gamelogPage))
	})

	line, err := feed.GameStat(context.Background(), 2544, time.Date(2025, 12, 28, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GameStat: %v", err)
	}
	if line.Points != 29 || line.Rebounds != 8 || line.Assists != 11 {
		t.Errorf("unexpected line %+v", line)
	}
	if line.Threes != 4 {
		t.Errorf("threes %v, want 4", line.Threes)
	}
}

func TestGameStatConfirmedNoGame(t *testing.T) {
	t.Parallel()

	feed := newTestFeed(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(gamelogPage))
	})

	// 12/27 is absent while 12/28 and later are present, so the absence
	// is confirmed rather than a log that lags behind.
	_, err := feed.GameStat(context.Background(), 2544, time.Date(2025, 12, 27, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, ports.ErrNoGame) {
		t.Fatalf("err = %v, want ErrNoGame", err)
	}
}

func TestGameStatLaggingLogIsTransient(t *testing.T) {
	t.Parallel()

	feed := newTestFeed(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(gamelogPage))
	})

	// 12/31 is past every logged game; the log may simply not have
	// caught up, so this must not be a confirmed no-game.
	_, err := feed.GameStat(context.Background(), 2544, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))
	if err == nil {
		t.Fatal("expected error for date past the log")
	}
	if errors.Is(err, ports.ErrNoGame) {
		t.Fatal("date past the log must not be a confirmed no-game")
	}
}

func TestGameStatServerErrorIsTransient(t *testing.T) {
	t.Parallel()

	feed := newTestFeed(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "maintenance", http.StatusBadGateway)
	})

	_, err := feed.GameStat(context.Background(), 2544, time.Date(2025, 12, 28, 0, 0, 0, 0, time.UTC))
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
	if errors.Is(err, ports.ErrNoGame) {
		t.Fatal("server error must not be a confirmed no-game")
	}
}
