package timetable

import (
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// CourseOutcome records how one course fared in a run.
type CourseOutcome struct {
	Branch     string
	Semester   string
	CourseCode string
	Placed     int
	Required   int
}

// Complete reports whether every required session was placed.
func (o CourseOutcome) Complete() bool {
	return o.Placed == o.Required
}

// RunStats summarises a scheduling run over the non-skipped requirements.
type RunStats struct {
	TotalCourses           int
	FullySuccessfulCourses int
	SessionsPlaced         int
	SessionsRequired       int
	Courses                []CourseOutcome
}

// Shortfall is the number of required sessions left unplaced.
func (s RunStats) Shortfall() int {
	return s.SessionsRequired - s.SessionsPlaced
}

// SuccessRate is the percentage of courses placed in full.
func (s RunStats) SuccessRate() float64 {
	if s.TotalCourses == 0 {
		return 0
	}
	return float64(s.FullySuccessfulCourses) / float64(s.TotalCourses) * 100
}

// SessionSuccessRate is the percentage of required sessions placed.
func (s RunStats) SessionSuccessRate() float64 {
	if s.SessionsRequired == 0 {
		return 0
	}
	return float64(s.SessionsPlaced) / float64(s.SessionsRequired) * 100
}

// Option configures an Engine.
type Option func(*Engine)

// WithGrid overrides the reference grid.
func WithGrid(grid Grid) Option {
	return func(e *Engine) {
		if !grid.IsZero() {
			e.grid = grid
		}
	}
}

// WithRand injects the random source used for slot permutations.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		if rng != nil {
			e.rng = rng
		}
	}
}

// WithSeed seeds a private random source.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed))
	}
}

// WithLogger attaches a logger for run diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine drives one scheduling run. It owns both occupancy tables until the
// run completes, after which they are sealed.
type Engine struct {
	grid    Grid
	rng     *rand.Rand
	logger  *zap.Logger
	faculty *FacultyOccupancy
	classes *ClassOccupancy

	done  bool
	stats RunStats
}

// NewEngine builds an engine with empty tables.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		grid:    DefaultGrid(),
		logger:  zap.NewNop(),
		faculty: NewOccupancyTable[Instructor](),
		classes: NewOccupancyTable[ClassKey](),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return e
}

// Grid returns the grid the engine schedules onto.
func (e *Engine) Grid() Grid {
	return e.grid
}

// Run schedules requirements in the order given. Requirements without a
// branch or course code are excluded from every count. An engine runs once;
// later calls return the first result.
func (e *Engine) Run(requirements []CourseRequirement) RunStats {
	if e.done {
		return e.stats
	}
	distributor := NewDistributor(e.grid, NewSessionAssigner(e.faculty, e.classes), e.rng)

	stats := RunStats{Courses: make([]CourseOutcome, 0, len(requirements))}
	for _, req := range requirements {
		if !req.Valid() {
			continue
		}
		placed, required := distributor.Distribute(req)
		outcome := CourseOutcome{
			Branch:     req.Branch,
			Semester:   req.Semester,
			CourseCode: req.CourseCode,
			Placed:     placed,
			Required:   required,
		}
		stats.TotalCourses++
		stats.SessionsPlaced += placed
		stats.SessionsRequired += required
		if outcome.Complete() {
			stats.FullySuccessfulCourses++
		} else {
			e.logger.Debug("course partially scheduled",
				zap.String("course_code", req.CourseCode),
				zap.String("branch", req.Branch),
				zap.String("semester", req.Semester),
				zap.Int("placed", placed),
				zap.Int("required", required),
			)
		}
		stats.Courses = append(stats.Courses, outcome)
	}

	e.faculty.seal()
	e.classes.seal()
	e.done = true
	e.stats = stats

	e.logger.Info("timetable run complete",
		zap.Int("courses", stats.TotalCourses),
		zap.Int("courses_complete", stats.FullySuccessfulCourses),
		zap.Int("sessions_placed", stats.SessionsPlaced),
		zap.Int("sessions_required", stats.SessionsRequired),
	)
	return stats
}

// Faculty returns the instructor-keyed table.
func (e *Engine) Faculty() *FacultyOccupancy {
	return e.faculty
}

// Classes returns the class-section-keyed table.
func (e *Engine) Classes() *ClassOccupancy {
	return e.classes
}

// RunSchedulingEngine runs a fresh engine over requirements and returns the
// statistics with both sealed tables.
func RunSchedulingEngine(requirements []CourseRequirement, opts ...Option) (RunStats, *FacultyOccupancy, *ClassOccupancy) {
	engine := NewEngine(opts...)
	stats := engine.Run(requirements)
	return stats, engine.Faculty(), engine.Classes()
}
