package timetable

import "fmt"

// SessionRecord is a committed placement. It is stored by value in every
// table entry it is filed under.
type SessionRecord struct {
	Slot       Slot
	CourseCode string
	CourseName string
	Kind       SessionKind
	Branch     string
	Semester   string
	Primary    Instructor
	Secondary  Instructor
}

// ClassKey returns the class-section the session belongs to.
func (r SessionRecord) ClassKey() ClassKey {
	return ClassKey{Branch: r.Branch, Semester: r.Semester}
}

// Entry pairs a record with the key it was filed under.
type Entry[K comparable] struct {
	Key    K
	Record SessionRecord
}

// OccupancyTable records which slots are taken per key, grouped by day.
// Within one key and one day no two records share a period.
type OccupancyTable[K comparable] struct {
	order   []K
	entries map[K]map[Day][]SessionRecord
	total   int
	sealed  bool
}

// FacultyOccupancy is keyed by instructor.
type FacultyOccupancy = OccupancyTable[Instructor]

// ClassOccupancy is keyed by class-section.
type ClassOccupancy = OccupancyTable[ClassKey]

// NewOccupancyTable returns an empty, writable table.
func NewOccupancyTable[K comparable]() *OccupancyTable[K] {
	return &OccupancyTable[K]{entries: make(map[K]map[Day][]SessionRecord)}
}

// Keys returns every key holding at least one session, in first-filed order.
func (t *OccupancyTable[K]) Keys() []K {
	return append([]K(nil), t.order...)
}

// Sessions returns a copy of the records filed under key on day, in filing order.
func (t *OccupancyTable[K]) Sessions(key K, day Day) []SessionRecord {
	days, ok := t.entries[key]
	if !ok {
		return nil
	}
	return append([]SessionRecord(nil), days[day]...)
}

// Count is the number of sessions filed under key across all days.
func (t *OccupancyTable[K]) Count(key K) int {
	n := 0
	for _, records := range t.entries[key] {
		n += len(records)
	}
	return n
}

// CountOn is the number of sessions filed under key on day.
func (t *OccupancyTable[K]) CountOn(key K, day Day) int {
	return len(t.entries[key][day])
}

// Total is the number of records in the table.
func (t *OccupancyTable[K]) Total() int {
	return t.total
}

// Sealed reports whether the table has moved to its read-only phase.
func (t *OccupancyTable[K]) Sealed() bool {
	return t.sealed
}

// Entries flattens the table ordered by key (first-filed), then by the given
// day order, then by filing order within the day.
func (t *OccupancyTable[K]) Entries(days []Day) []Entry[K] {
	out := make([]Entry[K], 0, t.total)
	for _, key := range t.order {
		for _, day := range days {
			for _, record := range t.entries[key][day] {
				out = append(out, Entry[K]{Key: key, Record: record})
			}
		}
	}
	return out
}

func (t *OccupancyTable[K]) occupied(key K, day Day, period Period) bool {
	for _, record := range t.entries[key][day] {
		if record.Slot.Period == period {
			return true
		}
	}
	return false
}

// file appends record under key. It is the only mutation path; a write after
// sealing or a second record on the same key/day/period is a defect.
func (t *OccupancyTable[K]) file(key K, record SessionRecord) {
	if t.sealed {
		panic("timetable: write to sealed occupancy table")
	}
	if t.occupied(key, record.Slot.Day, record.Slot.Period) {
		panic(fmt.Sprintf("timetable: double booking of %v at %s", key, record.Slot))
	}
	days, ok := t.entries[key]
	if !ok {
		days = make(map[Day][]SessionRecord)
		t.entries[key] = days
		t.order = append(t.order, key)
	}
	days[record.Slot.Day] = append(days[record.Slot.Day], record)
	t.total++
}

func (t *OccupancyTable[K]) seal() {
	t.sealed = true
}
