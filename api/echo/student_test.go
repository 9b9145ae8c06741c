package echoapi

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/tmasula/dnevnik/core/school"
	"github.com/tmasula/dnevnik/core/user"
)

func Test_studentApi_create(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "admin", user.RoleAdmin)
	stdUsr := createUser(t, "pupil", user.RoleStudent)
	grp := createGroup(t, "10A")
	adminToken := getToken(t, admin)

	tests := []httpTest{
		{
			name: "ok", body: marchallObj(t, school.NewStudent{Name: "Pupil", UserID: stdUsr.ID, GroupID: intPtr(grp.ID)}),
			wantCode: http.StatusCreated,
		},
		{
			name: "one student per user", body: marchallObj(t, school.NewStudent{Name: "Again", UserID: stdUsr.ID}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown user", body: []byte(`{"name":"Ghost","userId":999}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Message: "User not found"}),
		},
		{
			name: "unknown group", body: marchallObj(t, school.NewStudent{Name: "Lost", UserID: admin.ID, GroupID: intPtr(999)}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Message: "Group not found"}),
		},
		{
			name: "name missing", body: marchallObj(t, school.NewStudent{UserID: admin.ID}),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/students", adminToken, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
		})
	}
}

// Deleting a student removes exactly its dependent grades and no others.
func Test_studentApi_delete_cascades_to_grades(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "admin", user.RoleAdmin)
	u1 := createUser(t, "p1", user.RoleStudent)
	u2 := createUser(t, "p2", user.RoleStudent)
	doomed := createStudent(t, "Doomed", u1.ID, nil)
	kept := createStudent(t, "Kept", u2.ID, nil)
	sub := createSubject(t, "Math", nil)

	createGrade(t, 2, doomed.ID, sub.ID)
	createGrade(t, 3, doomed.ID, sub.ID)
	survivor := createGrade(t, 4, kept.ID, sub.ID)

	req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/students/%d", doomed.ID), getToken(t, admin))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
	}

	grades, err := gradeRepo.QueryGrades(context.Background(), school.GradeFilter{})
	if err != nil {
		t.Fatalf("QueryGrades() failed: %v", err)
	}
	if len(grades) != 1 || grades[0].ID != survivor.ID {
		t.Errorf("cascade removed the wrong grades: %+v", grades)
	}
}

func Test_studentApi_reads_are_open(t *testing.T) {
	app := setup(t)

	usr := createUser(t, "pupil", user.RoleStudent)
	std := createStudent(t, "Pupil", usr.ID, nil)

	tests := []httpTest{
		{name: "list", path: "/students", wantData: marchallList(t, std)},
		{name: "detail", path: fmt.Sprintf("/students/%d", std.ID), wantData: marchallObj(t, std)},
		{
			name: "unknown", path: "/students/999",
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Message: "Student not found"}),
		},
	}
	for _, tt := range tests {
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
