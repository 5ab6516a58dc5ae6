package state

import (
	"time"

	"driftwatch/internal/points"
)

// ProjectState is the persisted baseline for one project: the points
// observed for each tracked section during the most recent successful run.
type ProjectState struct {
	DOK4 []points.StatePoint `json:"dok4"`
	DOK3 []points.StatePoint `json:"dok3"`
}

// PointsFor returns the baseline points for a section.
func (ps *ProjectState) PointsFor(section points.Section) []points.StatePoint {
	if ps == nil {
		return nil
	}
	switch section {
	case points.SectionDOK4:
		return ps.DOK4
	case points.SectionDOK3:
		return ps.DOK3
	default:
		return nil
	}
}

// SetPoints replaces the baseline points for a section.
func (ps *ProjectState) SetPoints(section points.Section, pts []points.StatePoint) {
	switch section {
	case points.SectionDOK4:
		ps.DOK4 = pts
	case points.SectionDOK3:
		ps.DOK3 = pts
	}
}

// RunStatus is the terminal status of a project run.
type RunStatus string

const (
	RunSuccess RunStatus = "success"
	RunError   RunStatus = "error"
)

// Run records the outcome of processing one project once.
type Run struct {
	ID           string
	ProjectID    string
	Status       RunStatus
	FirstRun     bool
	DOK4Points   int
	DOK3Points   int
	ChangeTweets int
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
}
