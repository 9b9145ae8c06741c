package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tmasula/dnevnik/core/school"
)

type groupApi struct {
	svc *school.GroupService
}

func registerGroupAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *school.GroupService) {
	api := groupApi{svc: svc}

	// admin writes
	wg := g.Group("/groups", jwt, authorize(adminOnly))
	wg.POST("", api.create)
	wg.PUT("/:id", api.update)
	wg.DELETE("/:id", api.destroy)
	wg.POST("/:id/students/:studentId", api.addStudent)
	wg.DELETE("/:id/students/:studentId", api.removeStudent)

	// open reads; registered after the write group so the explicit GET routes
	// override the catch-alls that Group.Use installs with the jwt middleware
	gg := g.Group("/groups")
	gg.GET("", api.query)
	gg.GET("/:id", api.retrieve)
	gg.GET("/:id/students", api.students)
}

func (api *groupApi) query(ctx echo.Context) error {
	groups, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying groups")
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *groupApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id", school.EntityGroup)
	if err != nil {
		return err
	}
	grp, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) students(ctx echo.Context) error {
	id, err := intParam(ctx, "id", school.EntityGroup)
	if err != nil {
		return err
	}
	students, err := api.svc.Students(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *groupApi) create(ctx echo.Context) error {
	var data school.NewGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGroup")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	grp, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating group")
	}
	return ctx.JSON(http.StatusCreated, grp)
}

func (api *groupApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id", school.EntityGroup)
	if err != nil {
		return err
	}

	var data school.UpdateGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGroup")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	grp, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id", school.EntityGroup)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *groupApi) addStudent(ctx echo.Context) error {
	groupID, err := intParam(ctx, "id", school.EntityGroup)
	if err != nil {
		return err
	}
	studentID, err := intParam(ctx, "studentId", school.EntityStudent)
	if err != nil {
		return err
	}

	std, err := api.svc.AddStudent(ctx.Request().Context(), groupID, studentID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *groupApi) removeStudent(ctx echo.Context) error {
	groupID, err := intParam(ctx, "id", school.EntityGroup)
	if err != nil {
		return err
	}
	studentID, err := intParam(ctx, "studentId", school.EntityStudent)
	if err != nil {
		return err
	}

	std, err := api.svc.RemoveStudent(ctx.Request().Context(), groupID, studentID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}
