package timetable

import "sort"

// Tally is a labelled session count.
type Tally struct {
	Label string
	Count int
}

// SectionSummary breaks down one class-section's weekly sessions by kind.
type SectionSummary struct {
	Key        ClassKey
	Total      int
	Lectures   int
	Tutorials  int
	Practicals int
}

// Analytics bundles the post-run aggregations.
type Analytics struct {
	FacultyWorkload    []Tally
	BranchDistribution []Tally
	DailyDistribution  []Tally
}

// Summarize computes every aggregation over the final tables.
func Summarize(grid Grid, faculty *FacultyOccupancy, classes *ClassOccupancy) Analytics {
	return Analytics{
		FacultyWorkload:    FacultyWorkload(faculty),
		BranchDistribution: BranchDistribution(classes),
		DailyDistribution:  DailyDistribution(grid, classes),
	}
}

// FacultyWorkload counts sessions per instructor, busiest first.
func FacultyWorkload(faculty *FacultyOccupancy) []Tally {
	tallies := make([]Tally, 0, len(faculty.order))
	for _, key := range faculty.order {
		tallies = append(tallies, Tally{Label: key.Name(), Count: faculty.Count(key)})
	}
	sortTallies(tallies)
	return tallies
}

// BranchDistribution sums sessions per branch across its semesters, busiest first.
func BranchDistribution(classes *ClassOccupancy) []Tally {
	index := make(map[string]int)
	tallies := make([]Tally, 0)
	for _, key := range classes.order {
		i, ok := index[key.Branch]
		if !ok {
			i = len(tallies)
			index[key.Branch] = i
			tallies = append(tallies, Tally{Label: key.Branch})
		}
		tallies[i].Count += classes.Count(key)
	}
	sortTallies(tallies)
	return tallies
}

// DailyDistribution sums class-section sessions per grid day, in grid order.
func DailyDistribution(grid Grid, classes *ClassOccupancy) []Tally {
	tallies := make([]Tally, 0, len(grid.days))
	for _, day := range grid.days {
		count := 0
		for _, key := range classes.order {
			count += classes.CountOn(key, day)
		}
		tallies = append(tallies, Tally{Label: string(day), Count: count})
	}
	return tallies
}

// SectionSummaries reports per class-section totals by session kind.
func SectionSummaries(classes *ClassOccupancy) []SectionSummary {
	summaries := make([]SectionSummary, 0, len(classes.order))
	for _, key := range classes.order {
		summary := SectionSummary{Key: key}
		for _, records := range classes.entries[key] {
			for _, record := range records {
				summary.Total++
				switch record.Kind {
				case SessionLecture:
					summary.Lectures++
				case SessionTutorial:
					summary.Tutorials++
				case SessionPractical:
					summary.Practicals++
				}
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

func sortTallies(tallies []Tally) {
	sort.SliceStable(tallies, func(i, j int) bool {
		return tallies[i].Count > tallies[j].Count
	})
}
