package echoapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tmasula/dnevnik/core"
	"github.com/tmasula/dnevnik/core/school"
	"github.com/tmasula/dnevnik/core/user"
)

type gradeApi struct {
	svc *school.GradeService
}

func registerGradeAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *school.GradeService) {
	api := gradeApi{svc: svc}

	// writes: admin, or the teacher owning the grade's subject
	teacherOwner := []string{user.RoleTeacher}
	wg := g.Group("/grades", jwt)
	wg.POST("", api.create, authorize(accessPolicy{roles: teacherOwner, owner: api.newGradeOwner}))
	wg.PUT("/:id", api.update, authorize(accessPolicy{roles: teacherOwner, owner: api.gradeOwner}))
	wg.DELETE("/:id", api.destroy, authorize(accessPolicy{roles: teacherOwner, owner: api.gradeOwner}))

	// open reads; registered after the write group so the explicit GET routes
	// override the catch-alls that Group.Use installs with the jwt middleware
	gg := g.Group("/grades")
	gg.GET("", api.query)
	gg.GET("/average", api.average)
	gg.GET("/:id", api.retrieve)
}

// newGradeOwner peeks the request body for the target subject and resolves
// the owning teacher's user ID. The body is restored for the handler's bind.
func (api *gradeApi) newGradeOwner(ctx echo.Context) (int, error) {
	body, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return 0, errors.Wrap(err, "reading request body")
	}
	ctx.Request().Body = io.NopCloser(bytes.NewReader(body))

	var data struct {
		SubjectID int `json:"subjectId"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return 0, core.NewValidationError(errors.New("invalid request body"))
	}
	if data.SubjectID < 1 {
		err := errors.New("subjectId is required")
		return 0, core.NewValidationError(err, core.FieldError{Field: "subjectId", Error: err.Error()})
	}
	return api.svc.SubjectOwnerUserID(ctx.Request().Context(), data.SubjectID)
}

func (api *gradeApi) gradeOwner(ctx echo.Context) (int, error) {
	id, err := intParam(ctx, "id", school.EntityGrade)
	if err != nil {
		return 0, err
	}
	return api.svc.OwnerUserIDByGradeID(ctx.Request().Context(), id)
}

func (api *gradeApi) query(ctx echo.Context) error {
	grades, err := api.svc.Query(ctx.Request().Context(), gradeFilterFromQuery(ctx))
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *gradeApi) average(ctx echo.Context) error {
	avg, err := api.svc.Average(ctx.Request().Context(), gradeFilterFromQuery(ctx))
	if err != nil {
		return errors.Wrap(err, "averaging grades")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"averageGrade": avg})
}

func (api *gradeApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id", school.EntityGrade)
	if err != nil {
		return err
	}
	grd, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grd)
}

func (api *gradeApi) create(ctx echo.Context) error {
	var data school.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	grd, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, grd)
}

func (api *gradeApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id", school.EntityGrade)
	if err != nil {
		return err
	}

	var data school.UpdateGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGrade")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	grd, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grd)
}

func (api *gradeApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id", school.EntityGrade)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func gradeFilterFromQuery(ctx echo.Context) school.GradeFilter {
	var filter school.GradeFilter
	if v := ctx.QueryParam("studentId"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			filter.StudentID = &id
		}
	}
	if v := ctx.QueryParam("subjectId"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			filter.SubjectID = &id
		}
	}
	return filter
}
