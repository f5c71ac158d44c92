package parse

import (
	"strings"

	"PropScanner/internal/domain"
)

// Resolver matches extracted name text against the canonical roster.
// Matching is restricted to active players throughout: inactive players
// sharing a name fragment with an active one must never resolve silently.
type Resolver struct {
	active  []domain.Player
	byName  map[string]domain.Player
	byAlias map[string]domain.Player
}

// NewResolver indexes the active roster and the alias override table.
// Aliases pointing at inactive or unknown players are ignored.
func NewResolver(players []domain.Player, aliases []domain.PlayerAlias) *Resolver {
	r := &Resolver{
		byName:  make(map[string]domain.Player, len(players)),
		byAlias: make(map[string]domain.Player, len(aliases)),
	}

	byRef := make(map[int64]domain.Player, len(players))
	for _, p := range players {
		if !p.Active {
			continue
		}
		r.active = append(r.active, p)
		r.byName[normalizeName(p.Name)] = p
		byRef[p.RefID] = p
	}

	for _, a := range aliases {
		p, ok := byRef[a.RefID]
		if !ok {
			continue
		}
		r.byAlias[normalizeName(a.Alias)] = p
	}

	return r
}

// Resolve maps a raw name to a canonical player: exact active-roster match
// first, then the alias table. It never guesses — a miss returns false and
// the caller preserves the raw text.
func (r *Resolver) Resolve(raw string) (domain.Player, bool) {
	key := normalizeName(raw)
	if key == "" {
		return domain.Player{}, false
	}
	if p, ok := r.byName[key]; ok {
		return p, true
	}
	if p, ok := r.byAlias[key]; ok {
		return p, true
	}
	return domain.Player{}, false
}

// Locate scans a span of text for the earliest occurrence of any active
// canonical name or known alias. Longer matches win at equal positions so
// "Jaren Jackson Jr." beats a "Jaren Jackson" alias.
func (r *Resolver) Locate(text string) (matched string, player domain.Player, ok bool) {
	lowered := normalizeName(text)

	bestPos := -1
	for name, p := range r.byName {
		pos := strings.Index(lowered, name)
		if pos < 0 {
			continue
		}
		if bestPos == -1 || pos < bestPos || (pos == bestPos && len(name) > len(matched)) {
			bestPos, matched, player, ok = pos, name, p, true
		}
	}
	for alias, p := range r.byAlias {
		pos := strings.Index(lowered, alias)
		if pos < 0 {
			continue
		}
		if bestPos == -1 || pos < bestPos || (pos == bestPos && len(alias) > len(matched)) {
			bestPos, matched, player, ok = pos, alias, p, true
		}
	}

	if !ok {
		return "", domain.Player{}, false
	}
	return player.Name, player, true
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
