package lineup

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/rd2weekly/internal/domain/entity"
)

// Slot is a lineup position and how many distinct players fill it.
type Slot struct {
	Position string `json:"position"`
	Count    int    `json:"count"`
}

// Slots is an ordered slot configuration; the order is the lineup print order.
type Slots []Slot

// DefaultSlots is the standard hitting lineup: C, 1B, 2B, 3B, SS, CF, 2 OF, 2 U.
func DefaultSlots() Slots {
	return Slots{
		{Position: "C", Count: 1},
		{Position: "1B", Count: 1},
		{Position: "2B", Count: 1},
		{Position: "3B", Count: 1},
		{Position: "SS", Count: 1},
		{Position: "CF", Count: 1},
		{Position: "OF", Count: 2},
		{Position: "U", Count: 2},
	}
}

// Validate rejects empty configurations, blank or repeated positions and
// non-positive counts.
func (s Slots) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: no slots", ErrInvalidSlots)
	}
	seen := make(map[string]struct{}, len(s))
	for _, slot := range s {
		if strings.TrimSpace(slot.Position) == "" || slot.Count < 1 {
			return fmt.Errorf("%w: %q x%d", ErrInvalidSlots, slot.Position, slot.Count)
		}
		if _, dup := seen[slot.Position]; dup {
			return fmt.Errorf("%w: %q repeated", ErrInvalidSlots, slot.Position)
		}
		seen[slot.Position] = struct{}{}
	}
	return nil
}

// Total is the number of players in a full lineup.
func (s Slots) Total() int {
	n := 0
	for _, slot := range s {
		n += slot.Count
	}
	return n
}

// Count returns the slot count of a position, 0 when absent.
func (s Slots) Count(position string) int {
	for _, slot := range s {
		if slot.Position == position {
			return slot.Count
		}
	}
	return 0
}

// Pools maps a position to the players eligible for it. A player may sit in
// several pools.
type Pools map[string][]entity.Player

// Size is the number of pool entries across all positions.
func (p Pools) Size() int {
	n := 0
	for _, pool := range p {
		n += len(pool)
	}
	return n
}

// Assignment puts one player in one slot position.
type Assignment struct {
	Position string        `json:"position"`
	Player   entity.Player `json:"player"`
}

// Lineup is a full assignment in slot order.
type Lineup struct {
	Assignments []Assignment `json:"assignments"`
}

// Points is the lineup total.
func (l Lineup) Points() float64 {
	var fp int64
	for _, a := range l.Assignments {
		fp += entity.Fixed(a.Player.Points)
	}
	return float64(fp) / 1e6
}

// Key identifies the unordered player set; lineups that only swap positions share it.
func (l Lineup) Key() string {
	ids := make([]string, len(l.Assignments))
	for i, a := range l.Assignments {
		ids[i] = a.Player.Identity()
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}

// byPoints sorts best first with identity as the tie breaker.
func byPoints(players []entity.Player) {
	sort.SliceStable(players, func(i, j int) bool {
		fi, fj := entity.Fixed(players[i].Points), entity.Fixed(players[j].Points)
		if fi != fj {
			return fi > fj
		}
		return players[i].ID < players[j].ID
	})
}

// distinct copies a pool dropping repeated identities, keeping the first.
func distinct(pool []entity.Player) []entity.Player {
	out := make([]entity.Player, 0, len(pool))
	seen := make(map[int64]struct{}, len(pool))
	for _, p := range pool {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
