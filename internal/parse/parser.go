package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"PropScanner/internal/domain"
	"PropScanner/internal/extract"
)

var (
	// Game dates appear once per image as M/DD or MM/DD.
	dateExpr = regexp.MustCompile(`\b\d{1,2}/\d{2}\b`)

	// Fallback raw-name capture: consecutive capitalized words in the span
	// tail, kept verbatim when resolution fails.
	nameExpr = regexp.MustCompile(`[A-Z][a-zA-Z.'-]+(?:\s+[A-Z][a-zA-Z.'-]+){0,3}`)
)

// Bet-type search strings in the order they must be tried: combo labels
// before their prefixes, so "Pts+Reb+Ast" is not read as "Pts+Reb".
var orderedBetTypes = []struct {
	token string
	cat   domain.StatCategory
}{
	{"pts+reb+ast", domain.CatPtsRebAst},
	{"pts+reb", domain.CatPtsReb},
	{"pts+ast", domain.CatPtsAst},
	{"reb+ast", domain.CatRebAst},
	{"blocks", domain.CatBlocks},
	{"steals", domain.CatSteals},
	{"turnovers", domain.CatTurnovers},
	{"points", domain.CatPoints},
	{"assists", domain.CatAssists},
	{"rebounds", domain.CatRebounds},
	{"3pts", domain.CatThrees},
}

var plusSpacing = regexp.MustCompile(`\s*\+\s*`)

// Parser turns extracted spans into raw bet records. Field failures never
// abort a span: the record is flagged for review with the failure reasons
// attached and every readable field preserved.
type Parser struct {
	resolver *Resolver
	year     int
}

// NewParser wires the name resolver and the season year used to complete
// the partial M/DD dates on slips.
func NewParser(resolver *Resolver, year int) *Parser {
	return &Parser{resolver: resolver, year: year}
}

// ParseImage converts all spans of one image into records. The game date
// and bet type are detected once from the full image text — every entry on
// a slip shares them.
func (p *Parser) ParseImage(imageSource, text string, spans []extract.Span) []domain.RawBet {
	date, dateOK := p.gameDate(text)
	betType, typeOK := detectBetType(text)

	bets := make([]domain.RawBet, 0, len(spans))
	for _, span := range spans {
		bet := domain.RawBet{
			ID:          uuid.NewString(),
			ImageSource: imageSource,
			RawSpan:     span.Raw,
			Score:       span.Score,
			CreatedAt:   time.Now().UTC(),
		}
		var reasons []string

		if dateOK {
			bet.GameDate = date
		} else {
			reasons = append(reasons, "missing game date")
		}

		if typeOK {
			bet.BetType = betType
		} else {
			reasons = append(reasons, "unknown bet type")
		}

		side, line, err := parseLine(span.RawLine)
		if err != nil {
			reasons = append(reasons, err.Error())
		} else {
			bet.Side = side
			bet.Line = line
		}

		odds, err := parseOdds(span.RawOdds)
		if err != nil {
			reasons = append(reasons, err.Error())
		} else {
			bet.Odds = odds
		}

		raw, player, ok := p.parsePlayer(span)
		bet.RawPlayer = raw
		if ok {
			bet.PlayerID = player.RefID
		} else {
			reasons = append(reasons, fmt.Sprintf("unresolved player name %q", raw))
		}

		reasons = append(reasons, ValidateBet(bet)...)

		if len(reasons) > 0 {
			bet.Status = domain.StatusNeedsReview
			bet.Reasons = dedupe(reasons)
		} else {
			bet.Status = domain.StatusReady
		}

		bets = append(bets, bet)
	}

	return bets
}

func (p *Parser) gameDate(text string) (time.Time, bool) {
	token := dateExpr.FindString(text)
	if token == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse("1/02/2006", fmt.Sprintf("%s/%d", token, p.year))
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// parsePlayer looks for a roster name inside the span tail (past the odds
// token). When nothing matches, the capitalized-word capture is preserved
// verbatim so the reviewer sees exactly what OCR produced.
func (p *Parser) parsePlayer(span extract.Span) (string, domain.Player, bool) {
	tail := span.Raw
	if idx := strings.Index(tail, span.RawOdds); idx >= 0 {
		tail = tail[idx+len(span.RawOdds):]
	}

	if p.resolver != nil {
		if matched, player, ok := p.resolver.Locate(tail); ok {
			return matched, player, true
		}
	}

	return strings.TrimSpace(nameExpr.FindString(tail)), domain.Player{}, false
}

// parseLine normalizes a second-pass line token: strip spaces, then map a
// leading zero back to the "o" the OCR misread it from.
func parseLine(token string) (domain.Side, float64, error) {
	cleaned := strings.ReplaceAll(token, " ", "")
	if cleaned == "" {
		return "", 0, fmt.Errorf("missing bet line")
	}
	if cleaned[0] == '0' && len(cleaned) > 1 && cleaned[1] != '.' {
		cleaned = "o" + cleaned[1:]
	}

	var side domain.Side
	switch cleaned[0] {
	case 'o', 'O':
		side = domain.SideOver
	case 'u', 'U':
		side = domain.SideUnder
	default:
		return "", 0, fmt.Errorf("invalid bet line %q", token)
	}

	value, err := strconv.ParseFloat(cleaned[1:], 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid bet line %q", token)
	}
	return side, value, nil
}

// parseOdds normalizes a second-pass odds token: strip spaces, then map
// the OCR stand-ins for a leading minus sign.
func parseOdds(token string) (int, error) {
	cleaned := strings.ReplaceAll(token, " ", "")
	if cleaned == "" {
		return 0, fmt.Errorf("missing odds")
	}
	switch cleaned[0] {
	case '7', '4', '~', '"':
		cleaned = "-" + cleaned[1:]
	}

	odds, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, fmt.Errorf("invalid odds %q", token)
	}
	return odds, nil
}

func detectBetType(text string) (domain.StatCategory, bool) {
	normalized := plusSpacing.ReplaceAllString(strings.ToLower(text), "+")
	for _, entry := range orderedBetTypes {
		if strings.Contains(normalized, entry.token) {
			return entry.cat, true
		}
	}
	return "", false
}

func dedupe(reasons []string) []string {
	seen := make(map[string]struct{}, len(reasons))
	out := reasons[:0]
	for _, r := range reasons {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
