package matchup

import (
	"testing"

	"github.com/okian/rd2weekly/internal/domain/entity"
	. "github.com/smartystreets/goconvey/convey"
)

func team(name string, hitting, pitching float64) entity.Team {
	return entity.Team{Name: name, HittingPoints: hitting, PitchingPoints: pitching}
}

func names(ms []Matchup) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Identity()
	}
	return out
}

func TestCanonicalMatchup(t *testing.T) {
	Convey("Given two teams", t, func() {
		x := team("TeamX", 40, 10)
		y := team("TeamY", 25, 5)

		Convey("Order of arguments does not matter", func() {
			So(New(x, y), ShouldResemble, New(y, x))
			So(New(y, x).Team1.Name, ShouldEqual, "TeamX")
			So(New(x, y).Differential(), ShouldEqual, 20.0)
		})

		Convey("Classification names the winner", func() {
			o := Classify(New(y, x))
			So(o.Winner, ShouldEqual, "TeamX")
			So(o.Loser, ShouldEqual, "TeamY")
			So(o.Tied, ShouldBeFalse)
		})
	})

	Convey("Exact ties order by name and classify as tied", t, func() {
		m := New(team("Zeta", 30, 0), team("Alpha", 20, 10))
		So(m.Team1.Name, ShouldEqual, "Alpha")
		So(m.Tied(), ShouldBeTrue)
		So(m.Differential(), ShouldEqual, 0.0)
		_, ok := m.Winner()
		So(ok, ShouldBeFalse)
		_, ok = m.Loser()
		So(ok, ShouldBeFalse)
		o := Classify(m)
		So(o.Tied, ShouldBeTrue)
		So(o.Pair, ShouldResemble, [2]string{"Alpha", "Zeta"})
	})

	Convey("Records tally both sides", t, func() {
		recs := Records([]Matchup{
			New(team("A", 10, 0), team("B", 5, 0)),
			New(team("C", 7, 0), team("D", 7, 0)),
		})
		So(recs["A"].Wins, ShouldResemble, []string{"B"})
		So(recs["B"].Losses, ShouldResemble, []string{"A"})
		So(recs["C"].Ties, ShouldResemble, []string{"D"})
		So(recs["D"].Ties, ShouldResemble, []string{"C"})
	})
}

func withRecords(teams []entity.Team, ms []Matchup) []entity.Team {
	recs := Records(ms)
	out := make([]entity.Team, len(teams))
	for i, t := range teams {
		t.Record = recs[t.Name]
		out[i] = t
	}
	return out
}

func TestClassifier(t *testing.T) {
	Convey("Given a week of matchups", t, func() {
		a := team("A", 80, 20)
		b := team("B", 60, 10)
		c := team("C", 50, 40)
		d := team("D", 50, 35)
		e := team("E", 30, 10)
		f := team("F", 20, 10)
		g := team("G", 45, 0)
		h := team("H", 40, 5)
		ms := []Matchup{New(a, b), New(c, d), New(e, f), New(g, h), New(a, b)}
		cl := NewClassifier(withRecords([]entity.Team{a, b, c, d, e, f, g, h}, ms), ms)

		Convey("Repeated matchups collapse", func() {
			So(cl.Matchups(), ShouldHaveLength, 4)
		})

		Convey("Closest and blowout skip ties", func() {
			So(names(cl.Closest()), ShouldResemble, []string{"C|D"})
			So(names(cl.Blowout()), ShouldResemble, []string{"A|B"})
		})

		Convey("Strongest loss and weakest win look at the right side", func() {
			sl := cl.StrongestLoss()
			So(sl, ShouldHaveLength, 1)
			loser, ok := sl[0].Loser()
			So(ok, ShouldBeTrue)
			So(loser.Name, ShouldEqual, "D")

			ww := cl.WeakestWin()
			So(ww, ShouldHaveLength, 1)
			winner, _ := ww[0].Winner()
			So(winner.Name, ShouldEqual, "E")
		})

		Convey("Luckiest is the weakest team without a loss", func() {
			lucky := cl.Luckiest()
			So(lucky, ShouldHaveLength, 1)
			So(lucky[0].Team.Name, ShouldEqual, "E")
			So(lucky[0].Opponents[0].Name, ShouldEqual, "F")
		})

		Convey("Unluckiest is the strongest team without a win", func() {
			unlucky := cl.Unluckiest()
			So(unlucky, ShouldHaveLength, 1)
			So(unlucky[0].Team.Name, ShouldEqual, "D")
			So(unlucky[0].Opponents[0].Name, ShouldEqual, "C")
		})
	})

	Convey("Differential ties return every matchup", t, func() {
		ms := []Matchup{
			New(team("A", 10, 0), team("B", 5, 0)),
			New(team("C", 20, 0), team("D", 15, 0)),
		}
		cl := NewClassifier(nil, ms)
		So(names(cl.Closest()), ShouldResemble, []string{"A|B", "C|D"})
		So(names(cl.Blowout()), ShouldResemble, []string{"A|B", "C|D"})
	})

	Convey("Teams with two opponents are swept one against all", t, func() {
		a := team("A", 50, 0)
		b := team("B", 60, 0)
		c := team("C", 40, 0)
		ms := []Matchup{New(a, b), New(a, c)}
		cl := NewClassifier(withRecords([]entity.Team{a, b, c}, ms), ms)
		unlucky := cl.Unluckiest()
		So(unlucky, ShouldHaveLength, 1)
		So(unlucky[0].Team.Name, ShouldEqual, "C")

		lucky := cl.Luckiest()
		So(lucky, ShouldHaveLength, 1)
		So(lucky[0].Team.Name, ShouldEqual, "B")
	})

	Convey("Teams tied with each other share both sweeps", t, func() {
		g := team("G", 45, 0)
		h := team("H", 40, 5)
		ms := []Matchup{New(g, h)}
		cl := NewClassifier(withRecords([]entity.Team{g, h}, ms), ms)

		lucky := cl.Luckiest()
		So(lucky, ShouldHaveLength, 2)
		So(lucky[0].Team.Name, ShouldEqual, "G")
		So(lucky[0].Opponents[0].Name, ShouldEqual, "H")
		So(cl.Unluckiest(), ShouldHaveLength, 2)
		So(cl.Closest(), ShouldBeEmpty)
	})

	Convey("Empty input gives empty answers", t, func() {
		cl := NewClassifier(nil, nil)
		So(cl.Closest(), ShouldBeEmpty)
		So(cl.Blowout(), ShouldBeEmpty)
		So(cl.StrongestLoss(), ShouldBeEmpty)
		So(cl.WeakestWin(), ShouldBeEmpty)
		So(cl.Luckiest(), ShouldBeEmpty)
		So(cl.Unluckiest(), ShouldBeEmpty)
	})

	Convey("A lone matchup's loser is the strongest loss", t, func() {
		x := team("TeamX", 50, 0)
		y := team("TeamY", 30, 0)
		sl := NewClassifier(nil, []Matchup{New(x, y)}).StrongestLoss()
		loser, _ := sl[0].Loser()
		So(loser.Name, ShouldEqual, "TeamY")
	})
}
