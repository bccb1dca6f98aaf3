package models

// Reference entities owned by other services. This API only reads them to
// validate assignments and to decorate timetable responses.

// Trainer is the lightweight trainer view used in timetable payloads.
type Trainer struct {
	ID       string `db:"id" json:"id"`
	FullName string `db:"full_name" json:"full_name"`
	Email    string `db:"email" json:"email"`
}

// Room identifies a bookable room on a training site.
type Room struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Site     string `db:"site" json:"site"`
	Capacity int    `db:"capacity" json:"capacity"`
}

// Group is a student group enrolled for one academic year.
type Group struct {
	ID           string `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	AcademicYear string `db:"academic_year" json:"academic_year"`
}

// TrainingCourse is a training program identified by its catalogue code.
type TrainingCourse struct {
	ID    string `db:"id" json:"id"`
	Title string `db:"title" json:"title"`
	Code  string `db:"code" json:"code"`
}
