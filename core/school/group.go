package school

import (
	"context"
	"errors"
	"time"

	"github.com/tmasula/dnevnik/core"
)

var (
	ErrAlreadyInGroup = errors.New("Student is already in a group")
	ErrNotInGroup     = errors.New("Student is not in this group")
)

type (
	GroupRepository interface {
		CreateGroup(ctx context.Context, grp Group) (Group, error)
		GetGroupByID(ctx context.Context, id int) (Group, error)
		QueryAllGroups(ctx context.Context) ([]Group, error)
		UpdateGroup(ctx context.Context, grp Group) (Group, error)
		// DeleteGroupByID clears member students' group link along with the group.
		DeleteGroupByID(ctx context.Context, id int) error
	}

	GroupService struct {
		repo     GroupRepository
		students StudentRepository
		log      core.Logger
	}
)

func NewGroupService(repo GroupRepository, students StudentRepository, log core.Logger) *GroupService {
	return &GroupService{repo: repo, students: students, log: log}
}

func (svc *GroupService) Create(ctx context.Context, ng NewGroup) (Group, error) {
	now := time.Now().UTC()
	return svc.repo.CreateGroup(ctx, Group{
		Name:      ng.Name,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *GroupService) GetByID(ctx context.Context, id int) (Group, error) {
	return svc.repo.GetGroupByID(ctx, id)
}

func (svc *GroupService) QueryAll(ctx context.Context) ([]Group, error) {
	return svc.repo.QueryAllGroups(ctx)
}

func (svc *GroupService) Update(ctx context.Context, id int, ug UpdateGroup) (Group, error) {
	grp, err := svc.repo.GetGroupByID(ctx, id)
	if err != nil {
		return Group{}, err
	}
	prev := grp.Name
	grp.Name = ug.Name
	grp.UpdatedAt = time.Now().UTC()
	updated, err := svc.repo.UpdateGroup(ctx, grp)
	if err != nil {
		return Group{}, err
	}
	svc.log.Info("group updated", map[string]interface{}{"id": updated.ID, "previous": prev, "name": updated.Name})
	return updated, nil
}

func (svc *GroupService) Delete(ctx context.Context, id int) error {
	grp, err := svc.repo.GetGroupByID(ctx, id)
	if err != nil {
		return err
	}
	if err := svc.repo.DeleteGroupByID(ctx, id); err != nil {
		return err
	}
	svc.log.Info("group deleted", map[string]interface{}{"id": grp.ID, "name": grp.Name})
	return nil
}

// Students lists the group's current members.
func (svc *GroupService) Students(ctx context.Context, groupID int) ([]Student, error) {
	if _, err := svc.repo.GetGroupByID(ctx, groupID); err != nil {
		return nil, err
	}
	return svc.students.QueryStudentsByGroupID(ctx, groupID)
}

// AddStudent places a student into the group. A student belongs to at most
// one group at a time; adding an already-grouped student fails.
func (svc *GroupService) AddStudent(ctx context.Context, groupID, studentID int) (Student, error) {
	if _, err := svc.repo.GetGroupByID(ctx, groupID); err != nil {
		return Student{}, err
	}
	std, err := svc.students.GetStudentByID(ctx, studentID)
	if err != nil {
		return Student{}, err
	}
	if std.GroupID != nil {
		return Student{}, core.NewValidationError(ErrAlreadyInGroup, core.FieldError{Field: "groupId", Error: ErrAlreadyInGroup.Error()})
	}
	std.GroupID = &groupID
	std.UpdatedAt = time.Now().UTC()
	return svc.students.UpdateStudent(ctx, std)
}

// RemoveStudent takes a student out of the group; the student must currently
// be a member of this very group.
func (svc *GroupService) RemoveStudent(ctx context.Context, groupID, studentID int) (Student, error) {
	if _, err := svc.repo.GetGroupByID(ctx, groupID); err != nil {
		return Student{}, err
	}
	std, err := svc.students.GetStudentByID(ctx, studentID)
	if err != nil {
		return Student{}, err
	}
	if std.GroupID == nil || *std.GroupID != groupID {
		return Student{}, core.NewValidationError(ErrNotInGroup, core.FieldError{Field: "groupId", Error: ErrNotInGroup.Error()})
	}
	std.GroupID = nil
	std.UpdatedAt = time.Now().UTC()
	return svc.students.UpdateStudent(ctx, std)
}
