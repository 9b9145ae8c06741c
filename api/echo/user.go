package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tmasula/dnevnik/core"
	"github.com/tmasula/dnevnik/core/school"
	"github.com/tmasula/dnevnik/core/user"
)

type userApi struct {
	svc        *user.Service
	studentSvc *school.StudentService
	teacherSvc *school.TeacherService
}

func registerUserAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *user.Service,
	studentSvc *school.StudentService,
	teacherSvc *school.TeacherService,
) {
	api := userApi{
		svc:        svc,
		studentSvc: studentSvc,
		teacherSvc: teacherSvc,
	}

	// un-authed endpoints
	ag := g.Group("/auth")
	ag.POST("/register", api.register)
	ag.POST("/login", api.login)

	// authed endpoints
	ug := g.Group("/users", jwt, authorize(adminOnly))
	ug.POST("", api.create)
	ug.GET("", api.query)
	ug.GET("/:id", api.retrieve)
	ug.PUT("/:id", api.update)
	ug.DELETE("/:id", api.destroy)
	ug.POST("/:id/assign-group", api.assignGroup)
	ug.POST("/:id/assign-subject", api.assignSubject)
}

// Handlers

func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := authenticate(ctx.Request().Context(), data.Username, data.Password, api.svc)
	if err != nil {
		return err
	}
	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{
		Token: token,
		User:  LoginUser{ID: usr.ID, Username: usr.Username, Role: usr.Role},
	})
}

func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) query(ctx echo.Context) error {
	filter := user.QueryFilter{Role: ctx.QueryParam("role")}

	ordering := core.DBOrdering{Field: "created_at"}
	if ctx.QueryParam("sortBy") == "username" {
		ordering.Field = "username"
	}
	ordering.Ascending = !strings.EqualFold(ctx.QueryParam("sortOrder"), "desc")

	page := intQueryParam(ctx, "page", 1)
	limit := intQueryParam(ctx, "limit", 10)

	users, total, err := api.svc.Filter(
		ctx.Request().Context(), filter, ordering,
		core.DBPaging{Offset: (page - 1) * limit, Limit: limit},
	)
	if err != nil {
		return errors.Wrap(err, "filtering users")
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return ctx.JSON(http.StatusOK, UserPage{
		Users:       users,
		TotalPages:  totalPages,
		CurrentPage: page,
	})
}

func (api *userApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id", school.EntityUser)
	if err != nil {
		return err
	}
	usr, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id", school.EntityUser)
	if err != nil {
		return err
	}
	usr, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	var data user.UpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}
	if err := data.Validate(usr, api.svc); err != nil {
		return err
	}

	usr, err = api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id", school.EntityUser)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// assignGroup attaches a Student profile to the user, creating the profile
// first when the user has none, and links it to the group.
func (api *userApi) assignGroup(ctx echo.Context) error {
	userID, err := intParam(ctx, "id", school.EntityUser)
	if err != nil {
		return err
	}

	var data AssignGroupRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignGroupRequest")
	}
	if err := core.Validate.Struct(&data); err != nil {
		return err
	}

	std, err := api.studentSvc.AssignUserToGroup(ctx.Request().Context(), userID, data.GroupID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

// assignSubject attaches a Teacher profile to the user, creating the profile
// first when the user has none, and takes over the subject.
func (api *userApi) assignSubject(ctx echo.Context) error {
	userID, err := intParam(ctx, "id", school.EntityUser)
	if err != nil {
		return err
	}

	var data AssignSubjectRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignSubjectRequest")
	}
	if err := core.Validate.Struct(&data); err != nil {
		return err
	}

	sub, err := api.teacherSvc.AssignUserToSubject(ctx.Request().Context(), userID, data.SubjectID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginUser struct {
		ID       int    `json:"id"`
		Username string `json:"username"`
		Role     string `json:"role"`
	}

	LoginResponse struct {
		Token string    `json:"token"`
		User  LoginUser `json:"user"`
	}

	UserPage struct {
		Users       []user.User `json:"users"`
		TotalPages  int         `json:"totalPages"`
		CurrentPage int         `json:"currentPage"`
	}

	AssignGroupRequest struct {
		GroupID int `json:"groupId" validate:"required"`
	}

	AssignSubjectRequest struct {
		SubjectID int `json:"subjectId" validate:"required"`
	}
)

func (lr *LoginRequest) Validate() error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return core.Validate.Struct(lr)
}
