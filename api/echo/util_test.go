package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tmasula/dnevnik/core"
	"github.com/tmasula/dnevnik/core/school"
	"github.com/tmasula/dnevnik/core/user"
	inmemdb "github.com/tmasula/dnevnik/storage/database/inmem"
)

var (
	usrRepo     user.Repository
	groupRepo   school.GroupRepository
	studentRepo school.StudentRepository
	teacherRepo school.TeacherRepository
	subjectRepo school.SubjectRepository
	gradeRepo   school.GradeRepository

	usrSvc *user.Service

	errMissingToken = httpErr{Message: "missing or malformed jwt"}
	errForbidden    = httpErr{Message: "permission denied"}
)

func setup(t *testing.T) Server {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	usrRepo = inmemdb.NewUserRepository(db)
	groupRepo = inmemdb.NewGroupRepository(db)
	studentRepo = inmemdb.NewStudentRepository(db)
	teacherRepo = inmemdb.NewTeacherRepository(db)
	subjectRepo = inmemdb.NewSubjectRepository(db)
	gradeRepo = inmemdb.NewGradeRepository(db)

	logger := core.NopLogger{}
	usrSvc = user.NewService(usrRepo, logger)

	return NewServer(
		&Options{
			DisableReqLogs: true,
			Logger:         logger,
			UserSvc:        usrSvc,
			GroupSvc:       school.NewGroupService(groupRepo, studentRepo, logger),
			StudentSvc:     school.NewStudentService(studentRepo, groupRepo, usrRepo, logger),
			TeacherSvc:     school.NewTeacherService(teacherRepo, subjectRepo, usrRepo, logger),
			SubjectSvc:     school.NewSubjectService(subjectRepo, teacherRepo, gradeRepo, logger),
			GradeSvc:       school.NewGradeService(gradeRepo, studentRepo, subjectRepo, teacherRepo, logger),
		},
	)
}

// Fixtures; they write through the repositories directly.

func createUser(t *testing.T, uname, role string, createdAt ...time.Time) user.User {
	t.Helper()
	now := time.Now().UTC()
	if len(createdAt) > 0 {
		now = createdAt[0]
	}
	usr := user.User{Username: uname, Role: role, CreatedAt: now, UpdatedAt: now}
	if err := usr.SetPassword("p"); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func createGroup(t *testing.T, name string) school.Group {
	t.Helper()
	now := time.Now().UTC()
	grp, err := groupRepo.CreateGroup(context.Background(), school.Group{Name: name, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("CreateGroup() failed: %v", err)
	}
	return grp
}

func createStudent(t *testing.T, name string, userID int, groupID *int) school.Student {
	t.Helper()
	now := time.Now().UTC()
	std, err := studentRepo.CreateStudent(context.Background(), school.Student{
		Name: name, UserID: userID, GroupID: groupID, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

func createTeacher(t *testing.T, name string, userID int) school.Teacher {
	t.Helper()
	now := time.Now().UTC()
	tchr, err := teacherRepo.CreateTeacher(context.Background(), school.Teacher{
		Name: name, UserID: userID, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return tchr
}

func createSubject(t *testing.T, name string, teacherID *int) school.Subject {
	t.Helper()
	now := time.Now().UTC()
	sub, err := subjectRepo.CreateSubject(context.Background(), school.Subject{
		Name: name, TeacherID: teacherID, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return sub
}

func createGrade(t *testing.T, grade, studentID, subjectID int) school.Grade {
	t.Helper()
	now := time.Now().UTC()
	grd, err := gradeRepo.CreateGrade(context.Background(), school.Grade{
		Grade: grade, StudentID: studentID, SubjectID: subjectID, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateGrade() failed: %v", err)
	}
	return grd
}

type httpErr struct {
	Message string `json:"message"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func intPtr(i int) *int { return &i }
