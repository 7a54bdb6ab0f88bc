package entity

import (
	"fmt"
	"sort"
)

var pitcherTags = map[string]struct{}{
	"P": {}, "SP": {}, "RP": {}, RoleOneStart: {}, RoleTwoStart: {},
}

// IsPitcherTag reports whether a position tag denotes pitching eligibility.
func IsPitcherTag(pos string) bool {
	_, ok := pitcherTags[pos]
	return ok
}

// Merge reconciles two observations of the same player. The fresh
// observation's points and stats win; the existing name and team are kept
// when the fresh one has none. Positions are unioned, and when pitcher and
// non-pitcher tags meet only the pitcher tags survive.
func Merge(existing, fresh Player) (Player, error) {
	if existing.ID != fresh.ID {
		return Player{}, fmt.Errorf("%w: %d vs %d", ErrIdentityMismatch, existing.ID, fresh.ID)
	}
	out := fresh
	if out.Name == "" {
		out.Name = existing.Name
	}
	if out.Team == "" {
		out.Team = existing.Team
	}
	out.Active = existing.Active || fresh.Active
	out.Positions = mergePositions(existing.Positions, fresh.Positions)
	return out, nil
}

func mergePositions(a, b []string) []string {
	set := make(map[string]struct{}, len(a)+len(b))
	pitcher := false
	for _, group := range [][]string{a, b} {
		for _, pos := range group {
			set[pos] = struct{}{}
			if IsPitcherTag(pos) {
				pitcher = true
			}
		}
	}
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for pos := range set {
		if pitcher && !IsPitcherTag(pos) {
			continue
		}
		out = append(out, pos)
	}
	sort.Strings(out)
	return out
}
