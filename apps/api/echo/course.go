package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/apps/shared"
	"github.com/trezcool/darasa/core/catalog"
	"github.com/trezcool/darasa/core/enrollment"
)

type courseApi struct {
	svcs *shared.Services
}

func registerCourseAPI(g *echo.Group, auth []echo.MiddlewareFunc, svcs *shared.Services) {
	api := courseApi{svcs: svcs}

	cg := g.Group("/courses")
	cg.GET("", api.query)
	cg.GET("/:slug", api.retrieve)

	cg.POST("/:id/enroll", api.enroll, auth...)
	cg.GET("/:id/enrollment", api.enrollment, auth...)
	cg.GET("/:id/progress", api.progress, auth...)

	g.GET("/enrollments", api.enrollments, auth...)
}

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	courses, err := api.svcs.Catalog.ListCourses(ctx.Request().Context(), true /* publishedOnly */)
	if err != nil {
		return errors.Wrap(err, "listing courses")
	}
	if courses == nil {
		courses = []catalog.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	course, err := api.svcs.Catalog.GetCourseBySlug(ctx.Request().Context(), ctx.Param("slug"))
	if err != nil {
		return errors.Wrap(err, "getting course by slug")
	}
	if !course.IsPublished {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, course)
}

func (api *courseApi) enroll(ctx echo.Context) error {
	enr, err := api.svcs.Enrollments.Enroll(ctx.Request().Context(), currentActor(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "enrolling")
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *courseApi) enrollment(ctx echo.Context) error {
	enr, err := api.svcs.Enrollments.GetEnrollment(ctx.Request().Context(), currentActor(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting enrollment")
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *courseApi) progress(ctx echo.Context) error {
	prog, err := api.svcs.Progress.GetCourseProgress(ctx.Request().Context(), currentActor(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting course progress")
	}
	return ctx.JSON(http.StatusOK, prog)
}

func (api *courseApi) enrollments(ctx echo.Context) error {
	summaries, err := api.svcs.Enrollments.ListEnrollments(ctx.Request().Context(), currentActor(ctx))
	if err != nil {
		return errors.Wrap(err, "listing enrollments")
	}
	return ctx.JSON(http.StatusOK, nonNilSummaries(summaries))
}

func nonNilSummaries(summaries []enrollment.Summary) []enrollment.Summary {
	if summaries == nil {
		return []enrollment.Summary{}
	}
	return summaries
}
