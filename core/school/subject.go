package school

import (
	"context"
	"time"

	"github.com/tmasula/dnevnik/core"
)

type (
	SubjectRepository interface {
		CreateSubject(ctx context.Context, sub Subject) (Subject, error)
		GetSubjectByID(ctx context.Context, id int) (Subject, error)
		QueryAllSubjects(ctx context.Context) ([]Subject, error)
		QuerySubjectsByTeacherID(ctx context.Context, teacherID int) ([]Subject, error)
		// UpdateSubject overwrites the stored record with the given one.
		UpdateSubject(ctx context.Context, sub Subject) (Subject, error)
		// DeleteSubjectByID removes the subject together with its dependent grades.
		DeleteSubjectByID(ctx context.Context, id int) error
	}

	SubjectService struct {
		repo     SubjectRepository
		teachers TeacherRepository
		grades   GradeRepository
		log      core.Logger
	}
)

func NewSubjectService(repo SubjectRepository, teachers TeacherRepository, grades GradeRepository, log core.Logger) *SubjectService {
	return &SubjectService{repo: repo, teachers: teachers, grades: grades, log: log}
}

func (svc *SubjectService) checkTeacher(ctx context.Context, teacherID *int) error {
	if teacherID == nil {
		return nil
	}
	_, err := svc.teachers.GetTeacherByID(ctx, *teacherID)
	return err
}

func (svc *SubjectService) Create(ctx context.Context, ns NewSubject) (Subject, error) {
	if err := svc.checkTeacher(ctx, ns.TeacherID); err != nil {
		return Subject{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateSubject(ctx, Subject{
		Name:      ns.Name,
		TeacherID: ns.TeacherID,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *SubjectService) GetByID(ctx context.Context, id int) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id)
}

func (svc *SubjectService) QueryAll(ctx context.Context) ([]Subject, error) {
	return svc.repo.QueryAllSubjects(ctx)
}

func (svc *SubjectService) Update(ctx context.Context, id int, us UpdateSubject) (Subject, error) {
	sub, err := svc.repo.GetSubjectByID(ctx, id)
	if err != nil {
		return Subject{}, err
	}
	if err := svc.checkTeacher(ctx, us.TeacherID); err != nil {
		return Subject{}, err
	}
	prev := sub
	sub.Name = us.Name
	sub.TeacherID = us.TeacherID
	sub.UpdatedAt = time.Now().UTC()
	updated, err := svc.repo.UpdateSubject(ctx, sub)
	if err != nil {
		return Subject{}, err
	}
	svc.log.Info("subject updated", map[string]interface{}{"id": id, "previous": prev, "current": updated})
	return updated, nil
}

func (svc *SubjectService) Delete(ctx context.Context, id int) error {
	sub, err := svc.repo.GetSubjectByID(ctx, id)
	if err != nil {
		return err
	}
	if err := svc.repo.DeleteSubjectByID(ctx, id); err != nil {
		return err
	}
	svc.log.Info("subject deleted", map[string]interface{}{"id": sub.ID, "name": sub.Name})
	return nil
}

// Grades lists the grades recorded for the subject.
func (svc *SubjectService) Grades(ctx context.Context, subjectID int) ([]Grade, error) {
	if _, err := svc.repo.GetSubjectByID(ctx, subjectID); err != nil {
		return nil, err
	}
	return svc.grades.QueryGrades(ctx, GradeFilter{SubjectID: &subjectID})
}

// AssignTeacher puts a teacher in charge of the subject, overwriting any
// previous assignment.
func (svc *SubjectService) AssignTeacher(ctx context.Context, subjectID, teacherID int) (Subject, error) {
	sub, err := svc.repo.GetSubjectByID(ctx, subjectID)
	if err != nil {
		return Subject{}, err
	}
	if _, err := svc.teachers.GetTeacherByID(ctx, teacherID); err != nil {
		return Subject{}, err
	}
	sub.TeacherID = &teacherID
	sub.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSubject(ctx, sub)
}

// UnassignTeacher clears the subject's teacher link.
func (svc *SubjectService) UnassignTeacher(ctx context.Context, subjectID int) (Subject, error) {
	sub, err := svc.repo.GetSubjectByID(ctx, subjectID)
	if err != nil {
		return Subject{}, err
	}
	sub.TeacherID = nil
	sub.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSubject(ctx, sub)
}
