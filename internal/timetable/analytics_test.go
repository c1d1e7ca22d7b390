package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeSampleRun(t *testing.T) {
	engine := NewEngine(WithSeed(42))
	engine.Run(sampleRequirements())

	analytics := Summarize(engine.Grid(), engine.Faculty(), engine.Classes())

	require.Len(t, analytics.FacultyWorkload, 5)
	assert.Equal(t, Tally{Label: "Dr. A", Count: 6}, analytics.FacultyWorkload[0])
	assert.Equal(t, Tally{Label: "Dr. D", Count: 6}, analytics.FacultyWorkload[1])
	assert.Equal(t, Tally{Label: "Dr. B", Count: 5}, analytics.FacultyWorkload[2])
	assert.Equal(t, Tally{Label: "Dr. C", Count: 5}, analytics.FacultyWorkload[3])
	assert.Equal(t, Tally{Label: "Dr. E", Count: 5}, analytics.FacultyWorkload[4])

	assert.Equal(t, []Tally{{Label: "CSE", Count: 11}, {Label: "ECE", Count: 5}}, analytics.BranchDistribution)

	require.Len(t, analytics.DailyDistribution, 6)
	total := 0
	for i, tally := range analytics.DailyDistribution {
		assert.Equal(t, string(DefaultDays[i]), tally.Label)
		total += tally.Count
	}
	assert.Equal(t, 16, total)
}

func TestBranchDistributionAggregatesSemesters(t *testing.T) {
	reqs := []CourseRequirement{
		{Branch: "ME", Semester: "4", CourseCode: "ME401", Lectures: 1},
		{Branch: "CSE", Semester: "3", CourseCode: "CS301", Lectures: 2},
		{Branch: "CSE", Semester: "5", CourseCode: "CS501", Lectures: 2},
		{Branch: "EE", Semester: "1", CourseCode: "EE101", Lectures: 1},
	}
	_, _, classes := RunSchedulingEngine(reqs, WithSeed(4))

	// ties keep first-seen order
	assert.Equal(t, []Tally{{Label: "CSE", Count: 4}, {Label: "ME", Count: 1}, {Label: "EE", Count: 1}}, BranchDistribution(classes))
}

func TestSectionSummaries(t *testing.T) {
	_, _, classes := RunSchedulingEngine(sampleRequirements(), WithSeed(42))

	summaries := SectionSummaries(classes)
	require.Len(t, summaries, 2)
	assert.Equal(t, SectionSummary{Key: ClassKey{Branch: "CSE", Semester: "5"}, Total: 11, Lectures: 6, Tutorials: 1, Practicals: 4}, summaries[0])
	assert.Equal(t, SectionSummary{Key: ClassKey{Branch: "ECE", Semester: "3"}, Total: 5, Lectures: 2, Tutorials: 1, Practicals: 2}, summaries[1])
}

func TestSummarizeEmptyRun(t *testing.T) {
	engine := NewEngine(WithSeed(1))
	stats := engine.Run(nil)

	analytics := Summarize(engine.Grid(), engine.Faculty(), engine.Classes())
	assert.Empty(t, analytics.FacultyWorkload)
	assert.Empty(t, analytics.BranchDistribution)
	assert.Len(t, analytics.DailyDistribution, 6)
	assert.Zero(t, stats.SuccessRate())
	assert.Zero(t, stats.SessionSuccessRate())
}
