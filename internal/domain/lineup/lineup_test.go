package lineup

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/okian/rd2weekly/internal/domain/entity"
	. "github.com/smartystreets/goconvey/convey"
)

func pl(id int64, points float64) entity.Player {
	return entity.Player{ID: id, Name: fmt.Sprintf("P%d", id), Points: points}
}

func keys(ls []Lineup) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.Key()
	}
	sort.Strings(out)
	return out
}

func TestOptimize(t *testing.T) {
	ctx := context.Background()

	Convey("A multi-eligible player is used once", t, func() {
		p1, p2, p3 := pl(1, 10), pl(2, 10), pl(3, 8)
		res, err := Optimize(ctx, Pools{"C": {p1, p2}, "1B": {p1, p3}}, Slots{{"C", 1}, {"1B", 1}})

		So(err, ShouldBeNil)
		So(res.Points, ShouldEqual, 20.0)
		So(res.Lineups, ShouldHaveLength, 1)
		So(res.Lineups[0].Assignments, ShouldResemble, []Assignment{{"C", p2}, {"1B", p1}})
		So(res.RunID, ShouldNotBeEmpty)
	})

	Convey("Co-optimal lineups are all returned", t, func() {
		a, b, c := pl(1, 10), pl(2, 10), pl(3, 5)
		res, err := Optimize(ctx, Pools{"C": {a, b}, "U": {c}}, Slots{{"C", 1}, {"U", 1}})
		So(err, ShouldBeNil)
		So(keys(res.Lineups), ShouldResemble, []string{"1,3", "2,3"})
	})

	Convey("Swapping positions does not make a new lineup", t, func() {
		a, b := pl(1, 10), pl(2, 10)
		res, err := Optimize(ctx, Pools{"C": {a, b}, "1B": {a, b}}, Slots{{"C", 1}, {"1B", 1}})
		So(err, ShouldBeNil)
		So(res.Lineups, ShouldHaveLength, 1)
	})

	Convey("Multi-slot positions choose combinations", t, func() {
		res, err := Optimize(ctx, Pools{"OF": {pl(1, 9), pl(2, 8), pl(3, 8)}}, Slots{{"OF", 2}})
		So(err, ShouldBeNil)
		So(res.Points, ShouldEqual, 17.0)
		So(keys(res.Lineups), ShouldResemble, []string{"1,2", "1,3"})
	})

	Convey("Small pools are a configuration error", t, func() {
		_, err := Optimize(ctx, Pools{"C": {pl(1, 3)}, "OF": {pl(2, 9)}}, Slots{{"C", 1}, {"OF", 2}})
		So(errors.Is(err, ErrInsufficientPool), ShouldBeTrue)
		var pe *PoolError
		So(errors.As(err, &pe), ShouldBeTrue)
		So(pe.Position, ShouldEqual, "OF")
		So(pe.Have, ShouldEqual, 1)
		So(pe.Need, ShouldEqual, 2)

		_, err = Optimize(ctx, Pools{"C": {pl(1, 3), pl(1, 3)}}, Slots{{"C", 2}})
		So(errors.Is(err, ErrInsufficientPool), ShouldBeTrue)
	})

	Convey("Bad slots are rejected", t, func() {
		_, err := Optimize(ctx, Pools{}, nil)
		So(errors.Is(err, ErrInvalidSlots), ShouldBeTrue)
		_, err = Optimize(ctx, Pools{}, Slots{{"C", 0}})
		So(errors.Is(err, ErrInvalidSlots), ShouldBeTrue)
		_, err = Optimize(ctx, Pools{}, Slots{{"C", 1}, {"C", 1}})
		So(errors.Is(err, ErrInvalidSlots), ShouldBeTrue)
	})

	Convey("Pools that force a repeat have no lineup", t, func() {
		p := pl(1, 5)
		_, err := Optimize(ctx, Pools{"C": {p}, "1B": {p}}, Slots{{"C", 1}, {"1B", 1}})
		So(errors.Is(err, ErrNoLineup), ShouldBeTrue)
	})

	Convey("The evaluation cap stops the search", t, func() {
		_, err := Optimize(ctx, Pools{"OF": {pl(1, 9), pl(2, 8), pl(3, 8)}}, Slots{{"OF", 2}}, WithMaxEvaluations(1))
		So(errors.Is(err, ErrSearchLimit), ShouldBeTrue)
	})

	Convey("The run id can be fixed", t, func() {
		res, err := Optimize(ctx, Pools{"C": {pl(1, 1)}}, Slots{{"C", 1}}, WithRunID("run-1"))
		So(err, ShouldBeNil)
		So(res.RunID, ShouldEqual, "run-1")
	})
}

func TestReduce(t *testing.T) {
	Convey("Reduction iterates until uniqueness settles", t, func() {
		a, x, b, z := pl(1, 10), pl(2, 4), pl(3, 6), pl(4, 1)
		pools := Pools{"1B": {x, b, z}, "C": {a, x}, "DH": {pl(9, 1)}}
		slots := Slots{{"1B", 1}, {"C", 1}}

		reduced := Reduce(pools, slots)

		So(reduced, ShouldResemble, Pools{"1B": {b}, "C": {a}})
		Convey("The input is untouched and the result is a fixed point", func() {
			So(pools["1B"], ShouldHaveLength, 3)
			So(pools["C"], ShouldHaveLength, 2)
			So(Reduce(reduced, slots), ShouldResemble, reduced)
		})
	})

	Convey("Ties with the floor survive", t, func() {
		reduced := Reduce(Pools{"OF": {pl(1, 9), pl(2, 8), pl(3, 8), pl(4, 7)}}, Slots{{"OF", 2}})
		So(reduced["OF"], ShouldHaveLength, 3)
	})

	Convey("Positions short of unique players are left alone", t, func() {
		shared := pl(1, 9)
		reduced := Reduce(Pools{"C": {shared, pl(2, 1)}, "U": {shared}}, Slots{{"C", 2}, {"U", 1}})
		So(reduced["C"], ShouldHaveLength, 2)
	})
}

// bruteForce enumerates the full product of seat choices.
func bruteForce(pools Pools, slots Slots) (int64, []string) {
	var seats [][]entity.Player
	for _, s := range slots {
		for i := 0; i < s.Count; i++ {
			seats = append(seats, pools[s.Position])
		}
	}
	best := int64(-1)
	found := map[string]struct{}{}
	picks := make([]entity.Player, len(seats))
	var rec func(int, map[int64]bool)
	rec = func(i int, used map[int64]bool) {
		if i == len(seats) {
			l := Lineup{}
			var total int64
			for _, p := range picks {
				l.Assignments = append(l.Assignments, Assignment{Player: p})
				total += entity.Fixed(p.Points)
			}
			if total > best {
				best = total
				found = map[string]struct{}{}
			}
			if total == best {
				found[l.Key()] = struct{}{}
			}
			return
		}
		for _, p := range seats[i] {
			if used[p.ID] {
				continue
			}
			used[p.ID] = true
			picks[i] = p
			rec(i+1, used)
			delete(used, p.ID)
		}
	}
	rec(0, map[int64]bool{})
	out := make([]string, 0, len(found))
	for k := range found {
		out = append(out, k)
	}
	sort.Strings(out)
	return best, out
}

func TestOptimizeMatchesBruteForce(t *testing.T) {
	Convey("Reduction and bounding never lose a maximum lineup", t, func() {
		rng := rand.New(rand.NewSource(11))
		slots := Slots{{"C", 1}, {"SS", 1}, {"OF", 2}, {"U", 1}}
		var mismatches []string
		for round := 0; round < 150; round++ {
			pools := Pools{}
			for id := int64(1); id <= 9; id++ {
				p := pl(id, float64(rng.Intn(5))+0.5*float64(rng.Intn(2)))
				for _, s := range slots {
					if rng.Intn(3) == 0 {
						pools[s.Position] = append(pools[s.Position], p)
					}
				}
			}
			wantBest, wantKeys := bruteForce(pools, slots)
			res, err := Optimize(context.Background(), pools, slots)
			switch {
			case errors.Is(err, ErrInsufficientPool):
				continue
			case errors.Is(err, ErrNoLineup):
				if wantBest >= 0 {
					mismatches = append(mismatches, fmt.Sprintf("round %d: missed a lineup", round))
				}
			case err != nil:
				mismatches = append(mismatches, err.Error())
			default:
				if entity.Fixed(res.Points) != wantBest {
					mismatches = append(mismatches, fmt.Sprintf("round %d: points %v", round, res.Points))
				}
				if fmt.Sprint(keys(res.Lineups)) != fmt.Sprint(wantKeys) {
					mismatches = append(mismatches, fmt.Sprintf("round %d: %v vs %v", round, keys(res.Lineups), wantKeys))
				}
			}
		}
		So(mismatches, ShouldBeEmpty)
	})
}

func TestSeedPools(t *testing.T) {
	c1, c2 := pl(1, 10), pl(2, 3)
	o1, o2, o3 := pl(11, 9), pl(12, 8), pl(13, 2)
	u1 := pl(21, 7)
	leaders := map[string][]entity.Player{
		"C":  {c1, c2},
		"OF": {o1, o2, o3},
		"U":  {c1, o1, u1, o2},
		"RP": {pl(99, 50)},
	}
	slots := Slots{{"C", 1}, {"OF", 2}, {"U", 1}}

	Convey("The overall leaders seed every board they appear on", t, func() {
		pools := SeedPools(leaders, slots, 2)
		So(pools["C"], ShouldResemble, []entity.Player{c1})
		Convey("And short positions pull their next best", func() {
			So(pools["OF"], ShouldResemble, []entity.Player{o1, o2})
			So(pools["U"], ShouldResemble, []entity.Player{c1, o1, o2})
			So(pools, ShouldNotContainKey, "RP")
		})
	})

	Convey("AllStars widens the seed when the pools force a repeat", t, func() {
		res, err := AllStars(context.Background(), leaders, slots, 2)
		So(err, ShouldBeNil)
		So(res.Lineups, ShouldHaveLength, 1)
		So(res.Points, ShouldEqual, 34.0)
		So(res.Lineups[0].Assignments[3], ShouldResemble, Assignment{"U", u1})
	})

	Convey("A board with too few players is reported", t, func() {
		_, err := AllStars(context.Background(), map[string][]entity.Player{"C": {c1}}, Slots{{"C", 1}, {"OF", 1}}, 10)
		So(errors.Is(err, ErrInsufficientPool), ShouldBeTrue)
	})
}
