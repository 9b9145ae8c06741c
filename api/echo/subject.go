package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tmasula/dnevnik/core"
	"github.com/tmasula/dnevnik/core/school"
)

type subjectApi struct {
	svc *school.SubjectService
}

func registerSubjectAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *school.SubjectService) {
	api := subjectApi{svc: svc}

	// open reads
	sg := g.Group("/subjects")
	sg.GET("", api.query)
	sg.GET("/:id", api.retrieve)
	sg.GET("/:id/grades", api.grades)

	// admin writes
	wg := g.Group("/subjects", jwt, authorize(adminOnly))
	wg.POST("", api.create)
	wg.PUT("/:id", api.update)
	wg.DELETE("/:id", api.destroy)
	wg.POST("/:id/assign-teacher", api.assignTeacher)
	wg.DELETE("/:id/unassign-teacher", api.unassignTeacher)
}

func (api *subjectApi) query(ctx echo.Context) error {
	subjects, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *subjectApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id", school.EntitySubject)
	if err != nil {
		return err
	}
	sub, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *subjectApi) grades(ctx echo.Context) error {
	id, err := intParam(ctx, "id", school.EntitySubject)
	if err != nil {
		return err
	}
	grades, err := api.svc.Grades(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *subjectApi) create(ctx echo.Context) error {
	var data school.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sub, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *subjectApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id", school.EntitySubject)
	if err != nil {
		return err
	}

	var data school.UpdateSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSubject")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sub, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *subjectApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id", school.EntitySubject)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *subjectApi) assignTeacher(ctx echo.Context) error {
	subjectID, err := intParam(ctx, "id", school.EntitySubject)
	if err != nil {
		return err
	}

	var data AssignTeacherRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignTeacherRequest")
	}
	if err := core.Validate.Struct(&data); err != nil {
		return err
	}

	sub, err := api.svc.AssignTeacher(ctx.Request().Context(), subjectID, data.TeacherID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *subjectApi) unassignTeacher(ctx echo.Context) error {
	subjectID, err := intParam(ctx, "id", school.EntitySubject)
	if err != nil {
		return err
	}

	sub, err := api.svc.UnassignTeacher(ctx.Request().Context(), subjectID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

type AssignTeacherRequest struct {
	TeacherID int `json:"teacherId" validate:"required"`
}
