package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sonarsarthak/EDUManager/internal/models"
)

// MemoryRunStore keeps runs in process memory when Postgres persistence is
// disabled. It mirrors RunRepository's ordering and not-found behaviour.
type MemoryRunStore struct {
	mu       sync.RWMutex
	runs     map[string]models.TimetableRun
	sessions map[string][]models.TimetableSession
}

// NewMemoryRunStore returns an empty store.
func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{
		runs:     make(map[string]models.TimetableRun),
		sessions: make(map[string][]models.TimetableSession),
	}
}

// Create stores copies of the run and its sessions.
func (s *MemoryRunStore) Create(ctx context.Context, run *models.TimetableRun, sessions []models.TimetableSession) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	stored := make([]models.TimetableSession, len(sessions))
	for i, session := range sessions {
		session.RunID = run.ID
		if session.ID == "" {
			session.ID = uuid.NewString()
		}
		stored[i] = session
	}
	sortSessions(stored)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[run.ID]; exists {
		return fmt.Errorf("timetable run %s already exists", run.ID)
	}
	s.runs[run.ID] = *run
	s.sessions[run.ID] = stored
	return nil
}

// FindByID returns the run or an error wrapping sql.ErrNoRows.
func (s *MemoryRunStore) FindByID(ctx context.Context, id string) (*models.TimetableRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("get timetable run: %w", sql.ErrNoRows)
	}
	return &run, nil
}

// ListByFaculty returns the sessions taught by name as main or co-faculty.
func (s *MemoryRunStore) ListByFaculty(ctx context.Context, runID, name string) ([]models.TimetableSession, error) {
	return s.filter(runID, func(session models.TimetableSession) bool {
		return session.MainFaculty == name || session.CoFaculty == name
	}), nil
}

// ListByClass returns the sessions of one class-section.
func (s *MemoryRunStore) ListByClass(ctx context.Context, runID, branch, semester string) ([]models.TimetableSession, error) {
	return s.filter(runID, func(session models.TimetableSession) bool {
		return session.Branch == branch && session.Semester == semester
	}), nil
}

func (s *MemoryRunStore) filter(runID string, keep func(models.TimetableSession) bool) []models.TimetableSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.TimetableSession
	for _, session := range s.sessions[runID] {
		if keep(session) {
			out = append(out, session)
		}
	}
	return out
}

func sortSessions(sessions []models.TimetableSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].DayIndex != sessions[j].DayIndex {
			return sessions[i].DayIndex < sessions[j].DayIndex
		}
		return sessions[i].PeriodIndex < sessions[j].PeriodIndex
	})
}
