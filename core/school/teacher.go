package school

import (
	"context"
	"time"

	"github.com/tmasula/dnevnik/core"
	"github.com/tmasula/dnevnik/core/user"
)

type (
	TeacherRepository interface {
		CreateTeacher(ctx context.Context, tch Teacher) (Teacher, error)
		GetTeacherByID(ctx context.Context, id int) (Teacher, error)
		GetTeacherByUserID(ctx context.Context, userID int) (Teacher, error)
		QueryAllTeachers(ctx context.Context) ([]Teacher, error)
		// UpdateTeacher overwrites the stored record with the given one.
		UpdateTeacher(ctx context.Context, tch Teacher) (Teacher, error)
		// DeleteTeacherByID unlinks the teacher's subjects along with the teacher.
		DeleteTeacherByID(ctx context.Context, id int) error
	}

	TeacherService struct {
		repo     TeacherRepository
		subjects SubjectRepository
		users    user.Repository
		log      core.Logger
	}
)

func NewTeacherService(repo TeacherRepository, subjects SubjectRepository, users user.Repository, log core.Logger) *TeacherService {
	return &TeacherService{repo: repo, subjects: subjects, users: users, log: log}
}

func (svc *TeacherService) Create(ctx context.Context, nt NewTeacher) (Teacher, error) {
	if _, err := svc.users.GetUserByID(ctx, nt.UserID); err != nil {
		return Teacher{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateTeacher(ctx, Teacher{
		Name:      nt.Name,
		UserID:    nt.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *TeacherService) GetByID(ctx context.Context, id int) (Teacher, error) {
	return svc.repo.GetTeacherByID(ctx, id)
}

func (svc *TeacherService) QueryAll(ctx context.Context) ([]Teacher, error) {
	return svc.repo.QueryAllTeachers(ctx)
}

func (svc *TeacherService) Update(ctx context.Context, id int, ut UpdateTeacher) (Teacher, error) {
	tch, err := svc.repo.GetTeacherByID(ctx, id)
	if err != nil {
		return Teacher{}, err
	}
	if _, err := svc.users.GetUserByID(ctx, ut.UserID); err != nil {
		return Teacher{}, err
	}
	prev := tch
	tch.Name = ut.Name
	tch.UserID = ut.UserID
	tch.UpdatedAt = time.Now().UTC()
	updated, err := svc.repo.UpdateTeacher(ctx, tch)
	if err != nil {
		return Teacher{}, err
	}
	svc.log.Info("teacher updated", map[string]interface{}{"id": id, "previous": prev, "current": updated})
	return updated, nil
}

func (svc *TeacherService) Delete(ctx context.Context, id int) error {
	tch, err := svc.repo.GetTeacherByID(ctx, id)
	if err != nil {
		return err
	}
	if err := svc.repo.DeleteTeacherByID(ctx, id); err != nil {
		return err
	}
	svc.log.Info("teacher deleted", map[string]interface{}{"id": tch.ID, "name": tch.Name})
	return nil
}

// Subjects lists the subjects currently taught by the teacher.
func (svc *TeacherService) Subjects(ctx context.Context, teacherID int) ([]Subject, error) {
	if _, err := svc.repo.GetTeacherByID(ctx, teacherID); err != nil {
		return nil, err
	}
	return svc.subjects.QuerySubjectsByTeacherID(ctx, teacherID)
}

// AssignUserToSubject puts the user's teacher profile in charge of a subject,
// creating the profile first if the user has none yet. The subject's previous
// teacher link, if any, is overwritten.
func (svc *TeacherService) AssignUserToSubject(ctx context.Context, userID, subjectID int) (Subject, error) {
	usr, err := svc.users.GetUserByID(ctx, userID)
	if err != nil {
		return Subject{}, err
	}
	sub, err := svc.subjects.GetSubjectByID(ctx, subjectID)
	if err != nil {
		return Subject{}, err
	}

	tch, err := svc.repo.GetTeacherByUserID(ctx, userID)
	if core.IsNotFound(err) {
		now := time.Now().UTC()
		tch, err = svc.repo.CreateTeacher(ctx, Teacher{
			Name:      usr.Username,
			UserID:    usr.ID,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	if err != nil {
		return Subject{}, err
	}

	sub.TeacherID = &tch.ID
	sub.UpdatedAt = time.Now().UTC()
	return svc.subjects.UpdateSubject(ctx, sub)
}
