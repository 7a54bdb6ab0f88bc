package entity

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestIdentity(t *testing.T) {
	Convey("Identity ignores points", t, func() {
		a := Player{ID: 42, Name: "A", Points: 10}
		b := Player{ID: 42, Name: "A", Points: 3}
		So(SameEntity(a, b), ShouldBeTrue)
		So(SameEntity(a, Player{ID: 43}), ShouldBeFalse)
		So(a.Identity(), ShouldEqual, "42")

		t1 := Team{Name: "Sluggers", HittingPoints: 50}
		t2 := Team{Name: "Sluggers", PitchingPoints: 12}
		So(SameEntity(t1, t2), ShouldBeTrue)
	})

	Convey("Unrostered players show as free agents", t, func() {
		So(Player{}.TeamName(), ShouldEqual, FreeAgent)
		So(Player{Team: "Aces"}.TeamName(), ShouldEqual, "Aces")
	})
}

func TestTeamTotals(t *testing.T) {
	Convey("Team key functions rank the same value three ways", t, func() {
		tm := Team{Name: "T", HittingPoints: 61.5, PitchingPoints: 20.5}
		So(TeamTotal(tm), ShouldEqual, 82.0)
		So(TeamHitting(tm), ShouldEqual, 61.5)
		So(TeamPitching(tm), ShouldEqual, 20.5)
		So(tm.Eligible(), ShouldBeEmpty)
	})

	Convey("Record opponents are sorted", t, func() {
		r := Record{Wins: []string{"Zed"}, Losses: []string{"Abe"}, Ties: []string{"Moe"}}
		So(r.Opponents(), ShouldResemble, []string{"Abe", "Moe", "Zed"})
	})
}

func TestFixed(t *testing.T) {
	Convey("Summed fractional points tie with their literal", t, func() {
		a, b := 0.1, 0.2
		sum := a + b
		So(sum == 0.3, ShouldBeFalse)
		So(Equal(sum, 0.3), ShouldBeTrue)
		So(Fixed(sum), ShouldEqual, Fixed(0.3))
		So(Fixed(12.5), ShouldEqual, int64(12_500_000))
		So(Fixed(-2.5) < Fixed(0), ShouldBeTrue)
	})
}

func TestMerge(t *testing.T) {
	Convey("Given a roster row and a leaderboard row for one player", t, func() {
		roster := Player{ID: 7, Name: "Shohei", Team: "Aces", Points: 0, Positions: []string{"U"}, Active: true}
		board := Player{ID: 7, Points: 31.5, Positions: []string{"SP"}, Games: 1, GamesStarted: 1}

		merged, err := Merge(roster, board)

		Convey("Fresh points and stats win, name and team are kept", func() {
			So(err, ShouldBeNil)
			So(merged.Points, ShouldEqual, 31.5)
			So(merged.GamesStarted, ShouldEqual, 1)
			So(merged.Name, ShouldEqual, "Shohei")
			So(merged.Team, ShouldEqual, "Aces")
			So(merged.Active, ShouldBeTrue)
		})

		Convey("Pitcher eligibility takes precedence", func() {
			So(merged.Positions, ShouldResemble, []string{"SP"})
		})
	})

	Convey("Hitter positions are unioned", t, func() {
		merged, err := Merge(Player{ID: 1, Positions: []string{"SS", "2B"}}, Player{ID: 1, Positions: []string{"2B", "U"}})
		So(err, ShouldBeNil)
		So(merged.Positions, ShouldResemble, []string{"2B", "SS", "U"})
	})

	Convey("Different identities cannot merge", t, func() {
		_, err := Merge(Player{ID: 1}, Player{ID: 2})
		So(errors.Is(err, ErrIdentityMismatch), ShouldBeTrue)
	})
}

func TestPitcherRoles(t *testing.T) {
	Convey("Pitching lines classify by starts", t, func() {
		So(PitcherRole(2, 2), ShouldEqual, RoleTwoStart)
		So(PitcherRole(1, 1), ShouldEqual, RoleOneStart)
		So(PitcherRole(4, 0), ShouldEqual, RoleReliever)
		So(PitcherRole(0, 0), ShouldEqual, "")

		So(MatchesRole(RoleStarter, 2, 2), ShouldBeTrue)
		So(MatchesRole(RoleStarter, 3, 0), ShouldBeFalse)
		So(MatchesRole(RoleReliever, 0, 0), ShouldBeFalse)
		So(MatchesRole("CL", 1, 0), ShouldBeFalse)
	})
}
