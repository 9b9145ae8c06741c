package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tmasula/dnevnik/core/school"
)

type teacherApi struct {
	svc *school.TeacherService
}

func registerTeacherAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *school.TeacherService) {
	api := teacherApi{svc: svc}

	// open reads
	tg := g.Group("/teachers")
	tg.GET("", api.query)
	tg.GET("/:id", api.retrieve)
	tg.GET("/:id/subjects", api.subjects)

	// admin writes
	wg := g.Group("/teachers", jwt, authorize(adminOnly))
	wg.POST("", api.create)
	wg.PUT("/:id", api.update)
	wg.DELETE("/:id", api.destroy)
}

func (api *teacherApi) query(ctx echo.Context) error {
	teachers, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *teacherApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id", school.EntityTeacher)
	if err != nil {
		return err
	}
	tchr, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tchr)
}

func (api *teacherApi) subjects(ctx echo.Context) error {
	id, err := intParam(ctx, "id", school.EntityTeacher)
	if err != nil {
		return err
	}
	subjects, err := api.svc.Subjects(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *teacherApi) create(ctx echo.Context) error {
	var data school.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	tchr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, tchr)
}

func (api *teacherApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id", school.EntityTeacher)
	if err != nil {
		return err
	}

	var data school.UpdateTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTeacher")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	tchr, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tchr)
}

func (api *teacherApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id", school.EntityTeacher)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
