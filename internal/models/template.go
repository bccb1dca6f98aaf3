package models

import "time"

// ScheduleTemplate is a weekly recurring session definition for an academic
// year. Templates reference a training course and trainer, and optionally a
// room and student group. Day and times are treated as immutable once session
// instances have been generated; changing a recurring session is modeled as
// deactivating the old template and creating a new one.
type ScheduleTemplate struct {
	ID               string    `db:"id" json:"id"`
	TrainingCourseID string    `db:"training_course_id" json:"training_course_id"`
	TrainerID        string    `db:"trainer_id" json:"trainer_id"`
	RoomID           *string   `db:"room_id" json:"room_id,omitempty"`
	GroupID          *string   `db:"group_id" json:"group_id,omitempty"`
	DayOfWeek        string    `db:"day_of_week" json:"day_of_week"`
	StartTime        string    `db:"start_time" json:"start_time"`
	EndTime          string    `db:"end_time" json:"end_time"`
	AcademicYear     string    `db:"academic_year" json:"academic_year"`
	Active           bool      `db:"active" json:"active"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// TemplateFilter describes query params for listing schedule templates.
type TemplateFilter struct {
	TrainerID        string
	GroupID          string
	RoomID           string
	TrainingCourseID string
	AcademicYear     string
	DayOfWeek        string
	Active           *bool
	Page             int
	PageSize         int
	SortBy           string
	SortOrder        string
}

// CandidateSlot describes a proposed schedule slot to validate against
// existing templates. TrainerID and RoomID are each optional; a dimension
// without a value is not checked.
type CandidateSlot struct {
	TrainerID    string
	RoomID       string
	DayOfWeek    string
	StartTime    string
	EndTime      string
	AcademicYear string
}

// Conflict dimensions reported by the conflict checker.
const (
	ConflictDimensionTrainer = "TRAINER"
	ConflictDimensionRoom    = "ROOM"
)

// SlotConflict describes an existing booking that collides with a candidate.
type SlotConflict struct {
	Dimension    string  `json:"dimension"`
	TemplateID   string  `json:"template_id"`
	InstanceID   string  `json:"instance_id,omitempty"`
	TrainerID    string  `json:"trainer_id"`
	RoomID       *string `json:"room_id,omitempty"`
	DayOfWeek    string  `json:"day_of_week,omitempty"`
	Date         string  `json:"date,omitempty"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	AcademicYear string  `json:"academic_year,omitempty"`
	Message      string  `json:"message"`
}

// SlotConflictError is returned when a slot collides with an existing booking.
type SlotConflictError struct {
	Message   string         `json:"message"`
	Conflict  SlotConflict   `json:"conflict"`
	Conflicts []SlotConflict `json:"conflicts,omitempty"`
}

// Error implements the error interface for conflict errors.
func (e *SlotConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
