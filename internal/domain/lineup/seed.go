package lineup

import (
	"context"
	"errors"

	"github.com/okian/rd2weekly/internal/domain/entity"
	"github.com/okian/rd2weekly/internal/domain/ranking"
)

// SeedPools picks all-star candidates from positional leaderboards.
//
// The seed best players across every board (ties at the cut kept) go into
// each slot pool whose board lists them. While some position still has fewer
// candidates than slots, the best remaining players from the short
// positions' boards are added the same way. The loop stops when a short
// position has nobody left to add; Optimize then reports it.
func SeedPools(leaders map[string][]entity.Player, slots Slots, seed int) Pools {
	boards := make(map[int64][]string)
	players := make(map[int64]entity.Player)
	var order []int64
	for _, s := range slots {
		for _, p := range leaders[s.Position] {
			if _, ok := players[p.ID]; !ok {
				order = append(order, p.ID)
				players[p.ID] = p
			} else if merged, err := entity.Merge(players[p.ID], p); err == nil {
				players[p.ID] = merged
			}
			boards[p.ID] = appendUnique(boards[p.ID], s.Position)
		}
	}

	pools := make(Pools, len(slots))
	added := make(map[int64]struct{})
	add := func(p entity.Player) {
		added[p.ID] = struct{}{}
		for _, pos := range boards[p.ID] {
			pools[pos] = append(pools[pos], players[p.ID])
		}
	}

	top := ranking.New(ranking.Descending, seed, entity.PlayerPoints)
	for _, id := range order {
		top.Offer(players[id])
	}
	for _, p := range top.Members() {
		add(p)
	}

	for {
		var short []string
		for _, s := range slots {
			if len(pools[s.Position]) < s.Count {
				short = append(short, s.Position)
			}
		}
		if len(short) == 0 {
			break
		}
		next := ranking.New(ranking.Descending, 1, entity.PlayerPoints)
		for _, pos := range short {
			for _, p := range leaders[pos] {
				if _, ok := added[p.ID]; !ok {
					next.Offer(players[p.ID])
				}
			}
		}
		best := next.Members()
		if len(best) == 0 {
			break
		}
		for _, p := range best {
			add(p)
		}
	}
	return pools
}

func appendUnique(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(list, v)
}

// AllStars seeds candidate pools from the leaderboards and optimizes them.
// When the seeded pools only admit lineups that repeat a player, the seed is
// doubled and the search retried until every leaderboard player is a
// candidate.
func AllStars(ctx context.Context, leaders map[string][]entity.Player, slots Slots, seed int, opts ...Option) (Result, error) {
	if seed < 1 {
		seed = 1
	}
	everyone := make(map[int64]struct{})
	for _, s := range slots {
		for _, p := range leaders[s.Position] {
			everyone[p.ID] = struct{}{}
		}
	}
	for {
		res, err := Optimize(ctx, SeedPools(leaders, slots, seed), slots, opts...)
		if !errors.Is(err, ErrNoLineup) || seed >= len(everyone) {
			return res, err
		}
		seed *= 2
	}
}
