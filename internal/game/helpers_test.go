package game

import (
	"testing"
	"time"
)

// seq is a scripted RandomSource. It cycles once the values run out.
type seq struct {
	vals []float64
	n    int
}

func newSeq(vals ...float64) *seq {
	return &seq{vals: vals}
}

func (s *seq) Float64() float64 {
	v := s.vals[s.n%len(s.vals)]
	s.n++
	return v
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	return cat
}

var testNow = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

// recorder collects emitted events.
type recorder struct {
	events []Event
}

func (r *recorder) Emit(e Event) {
	r.events = append(r.events, e)
}

func (r *recorder) count(kind EventKind) int {
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func newCatch(uid, typeID string, price int64) CaughtFish {
	return CaughtFish{UID: uid, TypeID: typeID, Price: price, CaughtAt: testNow.UnixMilli()}
}
