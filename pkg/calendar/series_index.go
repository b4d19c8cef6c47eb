package calendar

import (
	"slices"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/agendo/agendo/pkg/event"
)

// SeriesIndex maps a series identifier to the ascending set of its
// occurrences' start times. It is a derived cache over a calendar's event
// sequence, never the source of truth, and is updated in the same call as
// every sequence mutation so the two views stay consistent.
type SeriesIndex struct {
	starts map[uuid.UUID][]civil.DateTime
}

func NewSeriesIndex() *SeriesIndex {
	return &SeriesIndex{starts: make(map[uuid.UUID][]civil.DateTime)}
}

// Add records an occurrence start under the given series. A start already
// present is absorbed, so members sharing a start index once.
func (idx *SeriesIndex) Add(id uuid.UUID, start civil.DateTime) {
	starts := idx.starts[id]
	pos, found := slices.BinarySearchFunc(starts, start, event.CompareDateTime)
	if found {
		return
	}
	idx.starts[id] = slices.Insert(starts, pos, start)
}

// Remove drops one occurrence start. The series entry is evicted entirely
// once its occurrence set becomes empty.
func (idx *SeriesIndex) Remove(id uuid.UUID, start civil.DateTime) {
	starts, ok := idx.starts[id]
	if !ok {
		return
	}
	pos, found := slices.BinarySearchFunc(starts, start, event.CompareDateTime)
	if !found {
		return
	}
	starts = slices.Delete(starts, pos, pos+1)
	if len(starts) == 0 {
		delete(idx.starts, id)
	} else {
		idx.starts[id] = starts
	}
}

// ReplaceStart moves one occurrence start within the same series. Unknown
// series identifiers are ignored.
func (idx *SeriesIndex) ReplaceStart(id uuid.UUID, old, updated civil.DateTime) {
	if _, ok := idx.starts[id]; !ok {
		return
	}
	idx.Remove(id, old)
	idx.Add(id, updated)
}

// Starts returns a copy of the ascending start times of a series, empty
// when the identifier is unknown.
func (idx *SeriesIndex) Starts(id uuid.UUID) []civil.DateTime {
	return slices.Clone(idx.starts[id])
}

// Len reports the number of starts indexed under a series.
func (idx *SeriesIndex) Len(id uuid.UUID) int {
	return len(idx.starts[id])
}

// Rebuild clears the index and re-groups the given events by their series
// identifier, skipping events that are not part of any series.
func (idx *SeriesIndex) Rebuild(events []event.Event) {
	idx.starts = make(map[uuid.UUID][]civil.DateTime)
	for _, e := range events {
		if e.SeriesID.Valid {
			idx.Add(e.SeriesID.UUID, e.Start)
		}
	}
}
