package models

import "time"

// SessionStatus is the lifecycle state of a session instance.
type SessionStatus string

const (
	SessionStatusScheduled   SessionStatus = "scheduled"
	SessionStatusCancelled   SessionStatus = "cancelled"
	SessionStatusCompleted   SessionStatus = "completed"
	SessionStatusRescheduled SessionStatus = "rescheduled"
)

// SessionInstance is a single calendar occurrence of a schedule template.
// The custom_* fields override the template value when set; nil means the
// template value is in force. An instance cannot exist without its template
// and at most one instance exists per (template, date).
type SessionInstance struct {
	ID              string        `db:"id" json:"id"`
	TemplateID      string        `db:"template_id" json:"template_id"`
	SpecificDate    time.Time     `db:"specific_date" json:"specific_date"`
	CustomStartTime *string       `db:"custom_start_time" json:"custom_start_time,omitempty"`
	CustomEndTime   *string       `db:"custom_end_time" json:"custom_end_time,omitempty"`
	CustomTrainerID *string       `db:"custom_trainer_id" json:"custom_trainer_id,omitempty"`
	CustomRoomID    *string       `db:"custom_room_id" json:"custom_room_id,omitempty"`
	Status          SessionStatus `db:"status" json:"status"`
	Notes           string        `db:"notes" json:"notes"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// SessionView joins an instance with the template fields needed to resolve
// its effective values.
type SessionView struct {
	SessionInstance
	TemplateDay       string  `db:"template_day" json:"template_day"`
	TemplateStartTime string  `db:"template_start_time" json:"template_start_time"`
	TemplateEndTime   string  `db:"template_end_time" json:"template_end_time"`
	TemplateTrainerID string  `db:"template_trainer_id" json:"template_trainer_id"`
	TemplateRoomID    *string `db:"template_room_id" json:"template_room_id,omitempty"`
	TemplateGroupID   *string `db:"template_group_id" json:"template_group_id,omitempty"`
	TrainingCourseID  string  `db:"training_course_id" json:"training_course_id"`
	AcademicYear      string  `db:"academic_year" json:"academic_year"`
}

// EffectiveStartTime returns the start time in force for this occurrence.
func (v *SessionView) EffectiveStartTime() string {
	if v.CustomStartTime != nil {
		return *v.CustomStartTime
	}
	return v.TemplateStartTime
}

// EffectiveEndTime returns the end time in force for this occurrence.
func (v *SessionView) EffectiveEndTime() string {
	if v.CustomEndTime != nil {
		return *v.CustomEndTime
	}
	return v.TemplateEndTime
}

// EffectiveTrainerID returns the trainer in force for this occurrence.
func (v *SessionView) EffectiveTrainerID() string {
	if v.CustomTrainerID != nil {
		return *v.CustomTrainerID
	}
	return v.TemplateTrainerID
}

// EffectiveRoomID returns the room in force for this occurrence, nil when
// neither the instance nor the template assigns one.
func (v *SessionView) EffectiveRoomID() *string {
	if v.CustomRoomID != nil {
		return v.CustomRoomID
	}
	return v.TemplateRoomID
}

// ResolvedSession is the read model handed to consumers such as the
// attendance module: the raw occurrence plus its computed effective values.
type ResolvedSession struct {
	SessionView
	EffectiveStart   string  `json:"effective_start_time"`
	EffectiveEnd     string  `json:"effective_end_time"`
	EffectiveTrainer string  `json:"effective_trainer_id"`
	EffectiveRoom    *string `json:"effective_room_id,omitempty"`
}

// Resolve computes the effective values for the view.
func (v SessionView) Resolve() ResolvedSession {
	return ResolvedSession{
		SessionView:      v,
		EffectiveStart:   v.EffectiveStartTime(),
		EffectiveEnd:     v.EffectiveEndTime(),
		EffectiveTrainer: v.EffectiveTrainerID(),
		EffectiveRoom:    v.EffectiveRoomID(),
	}
}

// InstanceFilter describes query params for listing session instances.
type InstanceFilter struct {
	TemplateID string
	Status     string
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PageSize   int
}
