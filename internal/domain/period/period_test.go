package period

import (
	"errors"
	"strings"
	"testing"

	"github.com/okian/rd2weekly/internal/domain/entity"
	. "github.com/smartystreets/goconvey/convey"
)

const sample = `{
  "number": 5,
  "teams": [
    {"name": "Aces", "division": "East", "players": [
      {"id": 1, "name": "Slugger", "points": 20.5, "slot": "1B", "active": true},
      {"id": 2, "name": "Ace", "points": 15, "slot": "SP", "active": true},
      {"id": 3, "name": "Benchwarmer", "points": 9, "slot": "BN", "active": false}
    ]},
    {"name": "Bats", "division": "East", "hitting_points": 30, "pitching_points": 4},
    {"name": "Cards", "division": "West", "hitting_points": 10, "pitching_points": 10}
  ],
  "matchups": [
    {"home": "Aces", "away": "Bats"},
    {"home": "Cards", "away": "BYE"}
  ],
  "leaders": [
    {"position": "1B", "players": [
      {"id": 7, "name": "Free Bat", "points": 12},
      {"id": 1, "name": "Slugger", "points": 20.5}
    ]},
    {"position": "SP:RP", "players": [
      {"id": 2, "name": "Ace", "points": 15, "games": 1, "games_started": 1},
      {"id": 8, "name": "Workhorse", "points": 22, "games": 2, "games_started": 2},
      {"id": 9, "name": "Closer", "points": 6, "games": 3, "games_started": 0},
      {"id": 10, "name": "Idle", "points": 0, "games": 0, "games_started": 0}
    ]}
  ]
}`

func TestBuild(t *testing.T) {
	Convey("Given a decoded period", t, func() {
		p, err := Decode(strings.NewReader(sample))
		So(err, ShouldBeNil)
		w, err := p.Build()
		So(err, ShouldBeNil)

		Convey("Team totals come from active roster rows", func() {
			So(w.Teams, ShouldHaveLength, 3)
			So(w.Teams[0].HittingPoints, ShouldEqual, 20.5)
			So(w.Teams[0].PitchingPoints, ShouldEqual, 15.0)
			So(w.Teams[1].Points(), ShouldEqual, 34.0)
		})

		Convey("Byes are skipped and records are tallied", func() {
			So(w.Matchups, ShouldHaveLength, 1)
			So(w.Matchups[0].Team1.Name, ShouldEqual, "Aces")
			So(w.Matchups[0].Team1.Record.Wins, ShouldResemble, []string{"Bats"})
			So(w.Teams[1].Record.Losses, ShouldResemble, []string{"Aces"})
			So(w.Teams[2].Record.Opponents(), ShouldBeEmpty)
		})

		Convey("Leaderboards are sorted and know fantasy teams", func() {
			board := w.Leaders["1B"]
			So(board, ShouldHaveLength, 2)
			So(board[0].Name, ShouldEqual, "Slugger")
			So(board[0].Team, ShouldEqual, "Aces")
			So(board[1].Team, ShouldEqual, entity.FreeAgent)
			So(board[0].EligibleAt("1B"), ShouldBeTrue)
		})

		Convey("Role boards filter the pitcher board", func() {
			So(len(w.Pitchers), ShouldEqual, 4)
			two := w.RoleBoard(entity.RoleTwoStart)
			So(two, ShouldHaveLength, 1)
			So(two[0].Name, ShouldEqual, "Workhorse")
			So(w.RoleBoard(entity.RoleOneStart)[0].Name, ShouldEqual, "Ace")
			So(w.RoleBoard(entity.RoleReliever)[0].Name, ShouldEqual, "Closer")
			So(w.RoleBoard(entity.RoleStarter), ShouldHaveLength, 2)
		})

		Convey("Divisions keep first-seen order", func() {
			names, groups := w.Divisions()
			So(names, ShouldResemble, []string{"East", "West"})
			So(groups["East"], ShouldHaveLength, 2)
		})
	})
}

func TestBuildErrors(t *testing.T) {
	Convey("Invalid periods are rejected", t, func() {
		_, err := Period{Number: 0, Teams: []TeamRecord{{Name: "A"}}}.Build()
		So(errors.Is(err, ErrInvalidPeriod), ShouldBeTrue)

		_, err = Period{Number: 1}.Build()
		So(errors.Is(err, ErrEmptyPeriod), ShouldBeTrue)

		_, err = Period{Number: 1, Teams: []TeamRecord{{Name: "A"}, {Name: "A"}}}.Build()
		So(errors.Is(err, ErrDuplicateTeam), ShouldBeTrue)

		_, err = Period{Number: 1, Teams: []TeamRecord{{Name: "A"}}, Matchups: []Pairing{{Home: "A", Away: "Z"}}}.Build()
		So(errors.Is(err, ErrUnknownTeam), ShouldBeTrue)

		_, err = Decode(strings.NewReader(`{"number": 1, "bogus": true}`))
		So(errors.Is(err, ErrDecode), ShouldBeTrue)
		So(Invalid(err), ShouldBeTrue)
		So(Invalid(errors.New("disk full")), ShouldBeFalse)
	})

	Convey("Repeated leaderboard rows merge", t, func() {
		w, err := Period{
			Number: 1,
			Teams:  []TeamRecord{{Name: "A"}},
			Leaders: []Leaderboard{{Position: "C", Players: []LeaderRow{
				{ID: 4, Name: "Catcher", Points: 3},
				{ID: 4, Points: 5},
			}}},
		}.Build()
		So(err, ShouldBeNil)
		So(w.Leaders["C"], ShouldHaveLength, 1)
		So(w.Leaders["C"][0].Name, ShouldEqual, "Catcher")
		So(w.Leaders["C"][0].Points, ShouldEqual, 5.0)
	})

	Convey("A pairing listed twice counts once", t, func() {
		w, err := Period{
			Number:   1,
			Teams:    []TeamRecord{{Name: "A", HittingPoints: 20}, {Name: "B", HittingPoints: 10}},
			Matchups: []Pairing{{Home: "A", Away: "B"}, {Home: "B", Away: "A"}, {Home: "A", Away: "B"}},
		}.Build()
		So(err, ShouldBeNil)
		So(w.Matchups, ShouldHaveLength, 1)
		So(w.Teams[0].Record.Wins, ShouldResemble, []string{"B"})
		So(w.Teams[1].Record.Losses, ShouldResemble, []string{"A"})
	})
}
