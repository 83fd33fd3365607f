package dto

// PlanWeekRequest triggers a Regenerate or Adjust run for the week containing WeekStart.
type PlanWeekRequest struct {
	WeekStart string `json:"weekStart" validate:"required,datetime=2006-01-02"`
	DryRun    bool   `json:"dryRun"`
}

// TopUpRequest reinforces one subject inside a week.
type TopUpRequest struct {
	WeekStart string `json:"weekStart" validate:"required,datetime=2006-01-02"`
	DryRun    bool   `json:"dryRun"`
}

// WeekQuery addresses a stored week.
type WeekQuery struct {
	WeekStart string `uri:"weekStart" validate:"required,datetime=2006-01-02"`
}

// ExportQuery picks the export format.
type ExportQuery struct {
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}

// PlannedSession is a session as returned to clients.
type PlannedSession struct {
	ID          string `json:"id,omitempty"`
	SubjectID   string `json:"subjectId"`
	SubjectName string `json:"subjectName,omitempty"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Status      string `json:"status"`
}

// PlanResult summarises a planner run.
type PlanResult struct {
	RunID             string           `json:"runId,omitempty"`
	Mode              string           `json:"mode"`
	WeekStart         string           `json:"weekStart"`
	Status            string           `json:"status"`
	DryRun            bool             `json:"dryRun"`
	SessionsCreated   int              `json:"sessionsCreated"`
	Sessions          []PlannedSession `json:"sessions"`
	DeletedSessionIDs []string         `json:"deletedSessionIds"`
	ProtectedSessions []string         `json:"protectedSessionIds"`
}

// WeekSessions lists a week's sessions.
type WeekSessions struct {
	WeekStart    string           `json:"weekStart"`
	TotalMinutes int              `json:"totalMinutes"`
	Sessions     []PlannedSession `json:"sessions"`
}
