package echoapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/tmasula/dnevnik/core/user"
)

func Test_userApi_register(t *testing.T) {
	app := setup(t)

	tests := []httpTest{
		{
			name: "ok", body: []byte(`{"username":"a1","password":"p","role":"admin"}`),
			wantCode: http.StatusCreated,
		},
		{
			name: "duplicate username", body: []byte(`{"username":"a1","password":"p","role":"admin"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Message: "a user with this username already exists"}),
		},
		{
			name: "unknown role", body: []byte(`{"username":"b2","password":"p","role":"boss"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "missing password", body: []byte(`{"username":"c3","role":"student"}`),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/auth/register", tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
			if tt.wantCode == http.StatusCreated {
				var usr user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				if usr.ID == 0 || usr.Username != "a1" || usr.Role != "admin" {
					t.Errorf("unexpected user: %+v", usr)
				}
			}
		})
	}
}

func Test_userApi_login(t *testing.T) {
	app := setup(t)
	usr := createUser(t, "a1", user.RoleAdmin) // password "p"

	tests := []httpTest{
		{
			name: "unknown username", body: []byte(`{"username":"ghost","password":"p"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Message: "User not found"}),
		},
		{
			name: "bad password", body: []byte(`{"username":"a1","password":"nope"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Message: "Invalid password"}),
		},
		{
			name: "ok", body: []byte(`{"username":"a1","password":"p"}`),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/auth/login", tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			var resp LoginResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshalling response: %v", err)
			}
			if resp.Token == "" {
				t.Error("empty token")
			}
			if resp.User.ID != usr.ID || resp.User.Username != "a1" || resp.User.Role != user.RoleAdmin {
				t.Errorf("unexpected user: %+v", resp.User)
			}
		})
	}
}

func Test_userApi_query(t *testing.T) {
	app := setup(t)

	now := time.Now().UTC()
	admin := createUser(t, "admin", user.RoleAdmin, now)
	s1 := createUser(t, "s1", user.RoleStudent, now.Add(1*time.Hour))
	s2 := createUser(t, "s2", user.RoleStudent, now.Add(2*time.Hour))
	t1 := createUser(t, "t1", user.RoleTeacher, now.Add(3*time.Hour))
	s3 := createUser(t, "s3", user.RoleStudent, now.Add(4*time.Hour))

	adminToken := getToken(t, admin)

	page := func(users []user.User, totalPages, currentPage int) []byte {
		return marchallObj(t, UserPage{Users: users, TotalPages: totalPages, CurrentPage: currentPage})
	}

	tests := []httpTest{
		{name: "Auth required", path: "/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/users", token: getToken(t, s1),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Get all", path: "/users", token: adminToken,
			wantData: page([]user.User{admin, s1, s2, t1, s3}, 1, 1),
		},
		{
			name: "role filter", path: "/users?role=student", token: adminToken,
			wantData: page([]user.User{s1, s2, s3}, 1, 1),
		},
		{
			name: "role filter (no match)", path: "/users?role=ghost", token: adminToken,
			wantData: page([]user.User{}, 0, 1),
		},
		{
			name: "sort by username desc", path: "/users?sortBy=username&sortOrder=desc", token: adminToken,
			wantData: page([]user.User{t1, s3, s2, s1, admin}, 1, 1),
		},
		{
			name: "paging window", path: "/users?limit=2&page=2", token: adminToken,
			wantData: page([]user.User{s2, t1}, 3, 2),
		},
		{
			name: "paging past the end", path: "/users?limit=2&page=4", token: adminToken,
			wantData: page([]user.User{}, 3, 4),
		},
		{
			name: "paging last short page", path: "/users?limit=2&page=3", token: adminToken,
			wantData: page([]user.User{s3}, 3, 3),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_crud(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "admin", user.RoleAdmin)
	other := createUser(t, "other", user.RoleStudent)
	adminToken := getToken(t, admin)

	t.Run("retrieve", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, fmt.Sprintf("/users/%d", other.ID), adminToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, other)}, rec)
	})

	t.Run("retrieve unknown", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/users/999", adminToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Message: "User not found"}),
		}, rec)
	})

	t.Run("update", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, fmt.Sprintf("/users/%d", other.ID), adminToken,
			[]byte(`{"username":"renamed"}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		var usr user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if usr.Username != "renamed" || usr.Role != user.RoleStudent {
			t.Errorf("unexpected user: %+v", usr)
		}
	})

	t.Run("update password never stores cleartext", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, fmt.Sprintf("/users/%d", other.ID), adminToken,
			[]byte(`{"password":"s3cret"}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}

		stored, err := usrRepo.GetUserByID(req.Context(), other.ID)
		if err != nil {
			t.Fatalf("GetUserByID() failed: %v", err)
		}
		if bytes.Contains(stored.PasswordHash, []byte("s3cret")) {
			t.Error("stored password hash contains the cleartext password")
		}
		if err := stored.CheckPassword("s3cret"); err != nil {
			t.Errorf("CheckPassword() failed against the new password: %v", err)
		}

		req, rec = newRequest(http.MethodPost, "/auth/login", []byte(`{"username":"renamed","password":"s3cret"}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("login with the new password failed; code = %v; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("destroy", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/users/%d", other.ID), adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodGet, fmt.Sprintf("/users/%d", other.ID), adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("deleted user still retrievable; code = %v", rec.Code)
		}
	})
}

func Test_userApi_assignGroup(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "admin", user.RoleAdmin)
	stdUsr := createUser(t, "pupil", user.RoleStudent)
	grp := createGroup(t, "10A")
	grp2 := createGroup(t, "10B")
	adminToken := getToken(t, admin)

	path := fmt.Sprintf("/users/%d/assign-group", stdUsr.ID)

	t.Run("lazily creates the student profile", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, adminToken,
			marchallObj(t, AssignGroupRequest{GroupID: grp.ID}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		var std struct {
			Name    string `json:"name"`
			GroupID *int   `json:"groupId"`
			UserID  int    `json:"userId"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &std); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if std.UserID != stdUsr.ID || std.GroupID == nil || *std.GroupID != grp.ID || std.Name != "pupil" {
			t.Errorf("unexpected student: %+v", std)
		}
	})

	t.Run("second group rejected", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, adminToken,
			marchallObj(t, AssignGroupRequest{GroupID: grp2.ID}))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Message: "Student is already in a group"}),
		}, rec)
	})

	t.Run("unknown group", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, fmt.Sprintf("/users/%d/assign-group", admin.ID), adminToken,
			marchallObj(t, AssignGroupRequest{GroupID: 999}))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Message: "Group not found"}),
		}, rec)
	})
}

func Test_userApi_assignSubject(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "admin", user.RoleAdmin)
	tchUsr := createUser(t, "prof", user.RoleTeacher)
	sub := createSubject(t, "Math", nil)
	adminToken := getToken(t, admin)

	req, rec := newAuthRequest(http.MethodPost, fmt.Sprintf("/users/%d/assign-subject", tchUsr.ID), adminToken,
		marchallObj(t, AssignSubjectRequest{SubjectID: sub.ID}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
	}

	var got struct {
		TeacherID *int `json:"teacherId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if got.TeacherID == nil {
		t.Fatal("subject has no teacher after assignment")
	}

	// profile was lazily created and linked back to the user
	tchr, err := teacherRepo.GetTeacherByID(req.Context(), *got.TeacherID)
	if err != nil {
		t.Fatalf("GetTeacherByID() failed: %v", err)
	}
	if tchr.UserID != tchUsr.ID {
		t.Errorf("teacher.UserID = %d; want %d", tchr.UserID, tchUsr.ID)
	}
}
