package school

import (
	"context"
	"time"

	"github.com/tmasula/dnevnik/core"
)

type (
	GradeRepository interface {
		CreateGrade(ctx context.Context, grd Grade) (Grade, error)
		GetGradeByID(ctx context.Context, id int) (Grade, error)
		// QueryGrades applies AND operation on set GradeFilter fields.
		QueryGrades(ctx context.Context, filter GradeFilter) ([]Grade, error)
		// UpdateGrade overwrites the stored record with the given one.
		UpdateGrade(ctx context.Context, grd Grade) (Grade, error)
		DeleteGradeByID(ctx context.Context, id int) error
	}

	GradeService struct {
		repo     GradeRepository
		students StudentRepository
		subjects SubjectRepository
		teachers TeacherRepository
		log      core.Logger
	}
)

func NewGradeService(repo GradeRepository, students StudentRepository, subjects SubjectRepository, teachers TeacherRepository, log core.Logger) *GradeService {
	return &GradeService{repo: repo, students: students, subjects: subjects, teachers: teachers, log: log}
}

func (svc *GradeService) Create(ctx context.Context, ng NewGrade) (Grade, error) {
	if _, err := svc.students.GetStudentByID(ctx, ng.StudentID); err != nil {
		return Grade{}, err
	}
	if _, err := svc.subjects.GetSubjectByID(ctx, ng.SubjectID); err != nil {
		return Grade{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateGrade(ctx, Grade{
		Grade:     ng.Grade,
		StudentID: ng.StudentID,
		SubjectID: ng.SubjectID,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *GradeService) GetByID(ctx context.Context, id int) (Grade, error) {
	return svc.repo.GetGradeByID(ctx, id)
}

func (svc *GradeService) Query(ctx context.Context, filter GradeFilter) ([]Grade, error) {
	return svc.repo.QueryGrades(ctx, filter)
}

func (svc *GradeService) Update(ctx context.Context, id int, ug UpdateGrade) (Grade, error) {
	grd, err := svc.repo.GetGradeByID(ctx, id)
	if err != nil {
		return Grade{}, err
	}
	prev := grd.Grade
	grd.Grade = ug.Grade
	grd.UpdatedAt = time.Now().UTC()
	updated, err := svc.repo.UpdateGrade(ctx, grd)
	if err != nil {
		return Grade{}, err
	}
	svc.log.Info("grade updated", map[string]interface{}{"id": id, "previous": prev, "grade": updated.Grade})
	return updated, nil
}

func (svc *GradeService) Delete(ctx context.Context, id int) error {
	grd, err := svc.repo.GetGradeByID(ctx, id)
	if err != nil {
		return err
	}
	if err := svc.repo.DeleteGradeByID(ctx, id); err != nil {
		return err
	}
	svc.log.Info("grade deleted", map[string]interface{}{"id": grd.ID, "grade": grd.Grade, "studentId": grd.StudentID, "subjectId": grd.SubjectID})
	return nil
}

// Average returns the mean of all grades matching the filter, 0 when none match.
func (svc *GradeService) Average(ctx context.Context, filter GradeFilter) (float64, error) {
	grades, err := svc.repo.QueryGrades(ctx, filter)
	if err != nil {
		return 0, err
	}
	if len(grades) == 0 {
		return 0, nil
	}
	var sum int
	for _, g := range grades {
		sum += g.Grade
	}
	return float64(sum) / float64(len(grades)), nil
}

// SubjectOwnerUserID resolves the subject's governing owner: the user behind
// the teacher currently assigned to it. Returns 0 when the subject has no
// teacher, in which case only an admin may touch its grades.
func (svc *GradeService) SubjectOwnerUserID(ctx context.Context, subjectID int) (int, error) {
	sub, err := svc.subjects.GetSubjectByID(ctx, subjectID)
	if err != nil {
		return 0, err
	}
	if sub.TeacherID == nil {
		return 0, nil
	}
	tch, err := svc.teachers.GetTeacherByID(ctx, *sub.TeacherID)
	if err != nil {
		if core.IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	return tch.UserID, nil
}

// OwnerUserIDByGradeID resolves the owner via the grade's subject.
func (svc *GradeService) OwnerUserIDByGradeID(ctx context.Context, gradeID int) (int, error) {
	grd, err := svc.repo.GetGradeByID(ctx, gradeID)
	if err != nil {
		return 0, err
	}
	return svc.SubjectOwnerUserID(ctx, grd.SubjectID)
}
