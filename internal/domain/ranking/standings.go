package ranking

// Standing is one printable row: competition place ("1224" style), whether
// the place is shared, and the entity's key value.
type Standing[T Identified] struct {
	Place  int
	Tied   bool
	Points float64
	Entity T
}

// Standings flattens the tracker into rows. A tier's place is one more than
// the number of entities in better tiers, so two entities tied for first are
// followed by third place.
func (t *Tracker[T]) Standings() []Standing[T] {
	out := make([]Standing[T], 0, len(t.index))
	place := 1
	for _, tr := range t.tiers {
		tied := len(tr.members) > 1
		for _, m := range tr.members {
			out = append(out, Standing[T]{Place: place, Tied: tied, Points: tr.points, Entity: m})
		}
		place += len(tr.members)
	}
	return out
}

// Cascade offers e to primary and every entity it displaces to fallback,
// e.g. outfielders pushed off an OF board falling back to a utility board.
// It returns the placement in primary.
func Cascade[T Identified](primary, fallback *Tracker[T], e T) Placement[T] {
	p := primary.Offer(e)
	if fallback == nil {
		return p
	}
	for _, d := range p.Displaced {
		fallback.Offer(d)
	}
	return p
}

// Stats summarises a batch of offers.
type Stats struct {
	Placed    int
	Tied      int
	Rejected  int
	Duplicate int
	Displaced int
}

// OfferAll offers every entity in order and tallies the outcomes. Tied
// counts offers that joined or created a shared tier; Rejected counts offers
// that left the entity untracked.
func OfferAll[T Identified](t *Tracker[T], entities []T) Stats {
	var s Stats
	for _, e := range entities {
		p := t.Offer(e)
		s.Displaced += len(p.Displaced)
		switch {
		case p.Duplicate:
			s.Duplicate++
		case p.Rank == 0:
			s.Rejected++
		case p.Tied:
			s.Tied++
		default:
			s.Placed++
		}
	}
	return s
}
