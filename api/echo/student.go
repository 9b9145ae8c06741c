package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tmasula/dnevnik/core/school"
)

type studentApi struct {
	svc *school.StudentService
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *school.StudentService) {
	api := studentApi{svc: svc}

	// admin writes
	wg := g.Group("/students", jwt, authorize(adminOnly))
	wg.POST("", api.create)
	wg.PUT("/:id", api.update)
	wg.DELETE("/:id", api.destroy)

	// open reads; registered after the write group so the explicit GET routes
	// override the catch-alls that Group.Use installs with the jwt middleware
	sg := g.Group("/students")
	sg.GET("", api.query)
	sg.GET("/:id", api.retrieve)
}

func (api *studentApi) query(ctx echo.Context) error {
	students, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id", school.EntityStudent)
	if err != nil {
		return err
	}
	std, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) create(ctx echo.Context) error {
	var data school.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	std, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *studentApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id", school.EntityStudent)
	if err != nil {
		return err
	}

	var data school.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	std, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id", school.EntityStudent)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
