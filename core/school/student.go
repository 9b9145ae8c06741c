package school

import (
	"context"
	"errors"
	"time"

	"github.com/tmasula/dnevnik/core"
	"github.com/tmasula/dnevnik/core/user"
)

var ErrStudentProfileExists = errors.New("user already has a student profile")

type (
	StudentRepository interface {
		CreateStudent(ctx context.Context, std Student) (Student, error)
		GetStudentByID(ctx context.Context, id int) (Student, error)
		GetStudentByUserID(ctx context.Context, userID int) (Student, error)
		QueryAllStudents(ctx context.Context) ([]Student, error)
		QueryStudentsByGroupID(ctx context.Context, groupID int) ([]Student, error)
		// UpdateStudent overwrites the stored record with the given one.
		UpdateStudent(ctx context.Context, std Student) (Student, error)
		// DeleteStudentByID removes the student together with its dependent grades.
		DeleteStudentByID(ctx context.Context, id int) error
	}

	StudentService struct {
		repo   StudentRepository
		groups GroupRepository
		users  user.Repository
		log    core.Logger
	}
)

func NewStudentService(repo StudentRepository, groups GroupRepository, users user.Repository, log core.Logger) *StudentService {
	return &StudentService{repo: repo, groups: groups, users: users, log: log}
}

// checkRefs re-validates both ends of the student's relationships.
func (svc *StudentService) checkRefs(ctx context.Context, userID int, groupID *int) error {
	if _, err := svc.users.GetUserByID(ctx, userID); err != nil {
		return err
	}
	if groupID != nil {
		if _, err := svc.groups.GetGroupByID(ctx, *groupID); err != nil {
			return err
		}
	}
	return nil
}

func (svc *StudentService) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if err := svc.checkRefs(ctx, ns.UserID, ns.GroupID); err != nil {
		return Student{}, err
	}
	// one user maps to at most one student
	if _, err := svc.repo.GetStudentByUserID(ctx, ns.UserID); err == nil {
		return Student{}, core.NewValidationError(ErrStudentProfileExists, core.FieldError{Field: "userId", Error: ErrStudentProfileExists.Error()})
	} else if !core.IsNotFound(err) {
		return Student{}, err
	}

	now := time.Now().UTC()
	return svc.repo.CreateStudent(ctx, Student{
		Name:      ns.Name,
		GroupID:   ns.GroupID,
		UserID:    ns.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *StudentService) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *StudentService) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx)
}

func (svc *StudentService) Update(ctx context.Context, id int, us UpdateStudent) (Student, error) {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if err := svc.checkRefs(ctx, us.UserID, us.GroupID); err != nil {
		return Student{}, err
	}
	if us.UserID != std.UserID {
		if other, err := svc.repo.GetStudentByUserID(ctx, us.UserID); err == nil && other.ID != id {
			return Student{}, core.NewValidationError(ErrStudentProfileExists, core.FieldError{Field: "userId", Error: ErrStudentProfileExists.Error()})
		} else if err != nil && !core.IsNotFound(err) {
			return Student{}, err
		}
	}

	prev := std
	std.Name = us.Name
	std.GroupID = us.GroupID
	std.UserID = us.UserID
	std.UpdatedAt = time.Now().UTC()
	updated, err := svc.repo.UpdateStudent(ctx, std)
	if err != nil {
		return Student{}, err
	}
	svc.log.Info("student updated", map[string]interface{}{"id": id, "previous": prev, "current": updated})
	return updated, nil
}

func (svc *StudentService) Delete(ctx context.Context, id int) error {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return err
	}
	if err := svc.repo.DeleteStudentByID(ctx, id); err != nil {
		return err
	}
	svc.log.Info("student deleted", map[string]interface{}{"id": std.ID, "name": std.Name})
	return nil
}

// AssignUserToGroup attaches the user's student profile to a group, creating
// the profile first if the user has none yet. The create-if-absent step is
// part of the operation contract, not an incidental side effect.
func (svc *StudentService) AssignUserToGroup(ctx context.Context, userID, groupID int) (Student, error) {
	usr, err := svc.users.GetUserByID(ctx, userID)
	if err != nil {
		return Student{}, err
	}
	if _, err := svc.groups.GetGroupByID(ctx, groupID); err != nil {
		return Student{}, err
	}

	std, err := svc.repo.GetStudentByUserID(ctx, userID)
	if core.IsNotFound(err) {
		now := time.Now().UTC()
		std, err = svc.repo.CreateStudent(ctx, Student{
			Name:      usr.Username,
			UserID:    usr.ID,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	if err != nil {
		return Student{}, err
	}

	if std.GroupID != nil {
		return Student{}, core.NewValidationError(ErrAlreadyInGroup, core.FieldError{Field: "groupId", Error: ErrAlreadyInGroup.Error()})
	}
	std.GroupID = &groupID
	std.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, std)
}
