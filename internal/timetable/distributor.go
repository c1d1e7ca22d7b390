package timetable

import "math/rand"

// Distributor spreads one course's sessions across the grid. Each session gets
// its own shuffled pass over every slot; a session that finds no free slot in
// that pass stays unplaced and earlier placements are never revisited.
type Distributor struct {
	grid     Grid
	assigner *SessionAssigner
	rng      *rand.Rand
}

// NewDistributor builds a distributor drawing permutations from rng.
func NewDistributor(grid Grid, assigner *SessionAssigner, rng *rand.Rand) *Distributor {
	return &Distributor{grid: grid, assigner: assigner, rng: rng}
}

// Distribute returns how many of the course's required sessions were placed.
func (d *Distributor) Distribute(req CourseRequirement) (placed, required int) {
	kinds := req.Sessions()
	slots := d.grid.AllSlots()
	for _, kind := range kinds {
		d.rng.Shuffle(len(slots), func(i, j int) {
			slots[i], slots[j] = slots[j], slots[i]
		})
		for _, slot := range slots {
			if d.assigner.TryAssign(req, kind, slot) {
				placed++
				break
			}
		}
	}
	return placed, len(kinds)
}
