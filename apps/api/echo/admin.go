package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/apps/shared"
	"github.com/trezcool/darasa/core/catalog"
)

type adminApi struct {
	svcs *shared.Services
}

func registerAdminAPI(g *echo.Group, auth []echo.MiddlewareFunc, svcs *shared.Services) {
	api := adminApi{svcs: svcs}

	ag := g.Group("/admin", append(auth, adminMiddleware())...)
	ag.GET("/courses", api.queryCourses)
	ag.POST("/courses", api.createCourse)
	ag.PUT("/courses/:id/publish", api.publishCourse)
	ag.GET("/courses/:id/enrollments", api.courseEnrollments)
}

// Handlers

func (api *adminApi) queryCourses(ctx echo.Context) error {
	courses, err := api.svcs.Catalog.ListCourses(ctx.Request().Context(), false /* publishedOnly */)
	if err != nil {
		return errors.Wrap(err, "listing courses")
	}
	if courses == nil {
		courses = []catalog.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *adminApi) createCourse(ctx echo.Context) error {
	var data catalog.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}

	course, err := api.svcs.Catalog.CreateCourse(ctx.Request().Context(), currentActor(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, course)
}

func (api *adminApi) publishCourse(ctx echo.Context) error {
	var data PublishRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PublishRequest")
	}

	course, err := api.svcs.Catalog.SetPublished(ctx.Request().Context(), currentActor(ctx), ctx.Param("id"), data.IsPublished)
	if err != nil {
		return errors.Wrap(err, "publishing course")
	}
	return ctx.JSON(http.StatusOK, course)
}

func (api *adminApi) courseEnrollments(ctx echo.Context) error {
	summaries, err := api.svcs.Enrollments.ListCourseEnrollments(ctx.Request().Context(), currentActor(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "listing course enrollments")
	}
	return ctx.JSON(http.StatusOK, nonNilSummaries(summaries))
}
