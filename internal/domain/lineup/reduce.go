package lineup

import (
	"github.com/okian/rd2weekly/internal/domain/entity"
)

// Reduce shrinks the pools without losing any maximum lineup.
//
// A player eligible for exactly one slot position is unique to it. When a
// position has at least as many unique players as slots, the k-th best of
// them (k = slot count) sets a floor: a lineup seating anyone below it at
// that position leaves a better unique player unused, and swapping them in
// scores more. Candidates strictly below the floor are dropped there. Dropping candidates can make others unique, so the pass
// repeats until nothing changes. Only positions named in slots are kept; the
// input is not modified.
func Reduce(pools Pools, slots Slots) Pools {
	out := make(Pools, len(slots))
	for _, s := range slots {
		out[s.Position] = distinct(pools[s.Position])
	}

	for changed := true; changed; {
		changed = false
		for _, s := range slots {
			seats := countSeats(out)
			pool := out[s.Position]

			unique := make([]entity.Player, 0, len(pool))
			for _, p := range pool {
				if seats[p.ID] == 1 {
					unique = append(unique, p)
				}
			}
			if len(unique) < s.Count {
				continue
			}
			byPoints(unique)
			threshold := entity.Fixed(unique[s.Count-1].Points)

			kept := make([]entity.Player, 0, len(pool))
			for _, p := range pool {
				if entity.Fixed(p.Points) >= threshold {
					kept = append(kept, p)
				}
			}
			if len(kept) != len(pool) {
				out[s.Position] = kept
				changed = true
			}
		}
	}
	return out
}

// countSeats counts how many pools each player appears in.
func countSeats(pools Pools) map[int64]int {
	seats := make(map[int64]int)
	for _, pool := range pools {
		for _, p := range pool {
			seats[p.ID]++
		}
	}
	return seats
}
