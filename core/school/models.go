package school

import (
	"time"

	"github.com/tmasula/dnevnik/core"
)

// Entity names as they appear in "not found" errors.
const (
	EntityGroup   = "Group"
	EntityStudent = "Student"
	EntityTeacher = "Teacher"
	EntitySubject = "Subject"
	EntityGrade   = "Grade"
	EntityUser    = "User"
)

// Grade bounds
const (
	GradeMin = 1
	GradeMax = 5
)

type Group struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"` // UTC
}

type Student struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	GroupID   *int      `json:"groupId" db:"group_id"` // at most one group at a time
	UserID    int       `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type Teacher struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	UserID    int       `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type Subject struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	TeacherID *int      `json:"teacherId" db:"teacher_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type Grade struct {
	ID        int       `json:"id" db:"id"`
	Grade     int       `json:"grade" db:"grade"` // 1..5 inclusive
	StudentID int       `json:"studentId" db:"student_id"`
	SubjectID int       `json:"subjectId" db:"subject_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Request payloads

type NewGroup struct {
	Name string `json:"name" validate:"required,min=2,max=50"`
}

func (ng *NewGroup) Validate() error {
	ng.Name = core.CleanString(ng.Name)
	return core.Validate.Struct(ng)
}

type UpdateGroup struct {
	Name string `json:"name" validate:"required,min=2,max=50"`
}

func (ug *UpdateGroup) Validate() error {
	ug.Name = core.CleanString(ug.Name)
	return core.Validate.Struct(ug)
}

type NewStudent struct {
	Name    string `json:"name" validate:"required"`
	GroupID *int   `json:"groupId"`
	UserID  int    `json:"userId" validate:"required"`
}

func (ns *NewStudent) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	return core.Validate.Struct(ns)
}

// UpdateStudent overwrites all mutable Student fields.
type UpdateStudent struct {
	Name    string `json:"name" validate:"required"`
	GroupID *int   `json:"groupId"`
	UserID  int    `json:"userId" validate:"required"`
}

func (us *UpdateStudent) Validate() error {
	us.Name = core.CleanString(us.Name)
	return core.Validate.Struct(us)
}

type NewTeacher struct {
	Name   string `json:"name" validate:"required"`
	UserID int    `json:"userId" validate:"required"`
}

func (nt *NewTeacher) Validate() error {
	nt.Name = core.CleanString(nt.Name)
	return core.Validate.Struct(nt)
}

type UpdateTeacher struct {
	Name   string `json:"name" validate:"required"`
	UserID int    `json:"userId" validate:"required"`
}

func (ut *UpdateTeacher) Validate() error {
	ut.Name = core.CleanString(ut.Name)
	return core.Validate.Struct(ut)
}

type NewSubject struct {
	Name      string `json:"name" validate:"required,min=2,max=100"`
	TeacherID *int   `json:"teacherId"`
}

func (ns *NewSubject) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	return core.Validate.Struct(ns)
}

type UpdateSubject struct {
	Name      string `json:"name" validate:"required,min=2,max=100"`
	TeacherID *int   `json:"teacherId"`
}

func (us *UpdateSubject) Validate() error {
	us.Name = core.CleanString(us.Name)
	return core.Validate.Struct(us)
}

type NewGrade struct {
	Grade     int `json:"grade" validate:"required,min=1,max=5"`
	StudentID int `json:"studentId" validate:"required"`
	SubjectID int `json:"subjectId" validate:"required"`
}

func (ng *NewGrade) Validate() error { return core.Validate.Struct(ng) }

// UpdateGrade only touches the mark itself; re-parenting a grade is not supported.
type UpdateGrade struct {
	Grade int `json:"grade" validate:"required,min=1,max=5"`
}

func (ug *UpdateGrade) Validate() error { return core.Validate.Struct(ug) }

// GradeFilter narrows down a grade query. Nil fields are ignored.
type GradeFilter struct {
	StudentID *int `query:"studentId"`
	SubjectID *int `query:"subjectId"`
}

func (gf *GradeFilter) IsEmpty() bool {
	return gf.StudentID == nil && gf.SubjectID == nil
}

// Match reports whether the grade satisfies every set filter field.
func (gf *GradeFilter) Match(g Grade) bool {
	if gf.StudentID != nil && g.StudentID != *gf.StudentID {
		return false
	}
	if gf.SubjectID != nil && g.SubjectID != *gf.SubjectID {
		return false
	}
	return true
}
