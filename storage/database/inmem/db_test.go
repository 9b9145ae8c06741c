package inmemdb

import (
	"context"
	"testing"
	"time"

	"github.com/tmasula/dnevnik/core"
	"github.com/tmasula/dnevnik/core/school"
	"github.com/tmasula/dnevnik/core/user"
)

func newDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open()
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *DB, uname, role string, createdAt time.Time) user.User {
	t.Helper()
	usr, err := NewUserRepository(db).CreateUser(context.Background(), user.User{
		Username: uname, Role: role, CreatedAt: createdAt, UpdatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", uname, err)
	}
	return usr
}

func Test_userRepository_FilterUsers(t *testing.T) {
	db := newDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	u1 := seedUser(t, db, "a", user.RoleStudent, now)
	u2 := seedUser(t, db, "c", user.RoleTeacher, now.Add(time.Hour))
	u3 := seedUser(t, db, "b", user.RoleStudent, now.Add(2*time.Hour))

	byCreated := core.DBOrdering{Field: "created_at", Ascending: true}

	tests := []struct {
		name      string
		filter    user.QueryFilter
		ordering  core.DBOrdering
		paging    core.DBPaging
		wantIDs   []int
		wantTotal int
	}{
		{name: "all", ordering: byCreated, wantIDs: []int{u1.ID, u2.ID, u3.ID}, wantTotal: 3},
		{name: "role filter", filter: user.QueryFilter{Role: user.RoleStudent}, ordering: byCreated, wantIDs: []int{u1.ID, u3.ID}, wantTotal: 2},
		{name: "username asc", ordering: core.DBOrdering{Field: "username", Ascending: true}, wantIDs: []int{u1.ID, u3.ID, u2.ID}, wantTotal: 3},
		{name: "created_at desc", ordering: core.DBOrdering{Field: "created_at"}, wantIDs: []int{u3.ID, u2.ID, u1.ID}, wantTotal: 3},
		{name: "window", ordering: byCreated, paging: core.DBPaging{Offset: 1, Limit: 1}, wantIDs: []int{u2.ID}, wantTotal: 3},
		{name: "window past the end", ordering: byCreated, paging: core.DBPaging{Offset: 5, Limit: 2}, wantIDs: []int{}, wantTotal: 3},
		{name: "short last window", ordering: byCreated, paging: core.DBPaging{Offset: 2, Limit: 2}, wantIDs: []int{u3.ID}, wantTotal: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, total, err := repo.FilterUsers(ctx, tt.filter, tt.ordering, tt.paging)
			if err != nil {
				t.Fatalf("FilterUsers() failed: %v", err)
			}
			if total != tt.wantTotal {
				t.Errorf("total = %d; want %d", total, tt.wantTotal)
			}
			if len(users) != len(tt.wantIDs) {
				t.Fatalf("len(users) = %d; want %d", len(users), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if users[i].ID != id {
					t.Errorf("users[%d].ID = %d; want %d", i, users[i].ID, id)
				}
			}
		})
	}
}

func Test_userRepository_UpdateUser_keepsUnsetFields(t *testing.T) {
	db := newDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	usr := seedUser(t, db, "a1", user.RoleStudent, time.Now().UTC())
	if err := (&usr).SetPassword("p"); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	if _, err := repo.UpdateUser(ctx, usr); err != nil {
		t.Fatalf("UpdateUser() failed: %v", err)
	}

	updated, err := repo.UpdateUser(ctx, user.User{ID: usr.ID, Username: "renamed", UpdatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("UpdateUser() failed: %v", err)
	}
	if updated.Username != "renamed" {
		t.Errorf("Username = %q; want %q", updated.Username, "renamed")
	}
	if updated.Role != user.RoleStudent {
		t.Errorf("Role = %q; want it untouched", updated.Role)
	}
	if len(updated.PasswordHash) == 0 {
		t.Error("PasswordHash was dropped")
	}
}

func Test_userRepository_UpdateOrCreateUser(t *testing.T) {
	db := newDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	created, err := repo.UpdateOrCreateUser(ctx, user.User{Username: "admin", Role: user.RoleStudent, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("UpdateOrCreateUser() failed: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("no ID assigned")
	}

	updated, err := repo.UpdateOrCreateUser(ctx, user.User{Username: "admin", Role: user.RoleAdmin, UpdatedAt: now})
	if err != nil {
		t.Fatalf("UpdateOrCreateUser() failed: %v", err)
	}
	if updated.ID != created.ID {
		t.Errorf("ID = %d; want the existing %d", updated.ID, created.ID)
	}
	if updated.Role != user.RoleAdmin {
		t.Errorf("Role = %q; want %q", updated.Role, user.RoleAdmin)
	}
}

// Deleting a user removes its profiles: the student profile takes its grades
// along, the teacher profile leaves its subjects behind without a teacher.
func Test_userRepository_DeleteUserByID_cascades(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()

	usrRepo := NewUserRepository(db)
	studentRepo := NewStudentRepository(db)
	teacherRepo := NewTeacherRepository(db)
	subjectRepo := NewSubjectRepository(db)
	gradeRepo := NewGradeRepository(db)

	now := time.Now().UTC()
	doomed := seedUser(t, db, "doomed", user.RoleTeacher, now)
	other := seedUser(t, db, "other", user.RoleStudent, now)

	std, err := studentRepo.CreateStudent(ctx, school.Student{Name: "Doomed", UserID: doomed.ID, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	otherStd, err := studentRepo.CreateStudent(ctx, school.Student{Name: "Other", UserID: other.ID, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	tch, err := teacherRepo.CreateTeacher(ctx, school.Teacher{Name: "Doomed", UserID: doomed.ID, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	sub, err := subjectRepo.CreateSubject(ctx, school.Subject{Name: "Math", TeacherID: &tch.ID, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	if _, err := gradeRepo.CreateGrade(ctx, school.Grade{Grade: 4, StudentID: std.ID, SubjectID: sub.ID, CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("CreateGrade() failed: %v", err)
	}
	survivor, err := gradeRepo.CreateGrade(ctx, school.Grade{Grade: 5, StudentID: otherStd.ID, SubjectID: sub.ID, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("CreateGrade() failed: %v", err)
	}

	if err := usrRepo.DeleteUserByID(ctx, doomed.ID); err != nil {
		t.Fatalf("DeleteUserByID() failed: %v", err)
	}

	if _, err := studentRepo.GetStudentByID(ctx, std.ID); !core.IsNotFound(err) {
		t.Errorf("student profile survived: err = %v", err)
	}
	if _, err := teacherRepo.GetTeacherByID(ctx, tch.ID); !core.IsNotFound(err) {
		t.Errorf("teacher profile survived: err = %v", err)
	}

	grades, err := gradeRepo.QueryGrades(ctx, school.GradeFilter{})
	if err != nil {
		t.Fatalf("QueryGrades() failed: %v", err)
	}
	if len(grades) != 1 || grades[0].ID != survivor.ID {
		t.Errorf("cascade removed the wrong grades: %+v", grades)
	}

	refreshed, err := subjectRepo.GetSubjectByID(ctx, sub.ID)
	if err != nil {
		t.Fatalf("GetSubjectByID() failed: %v", err)
	}
	if refreshed.TeacherID != nil {
		t.Errorf("subject still references the deleted teacher: %+v", refreshed)
	}
}
