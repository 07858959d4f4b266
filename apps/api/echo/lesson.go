package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/apps/shared"
)

type lessonApi struct {
	svcs *shared.Services
}

func registerLessonAPI(g *echo.Group, auth []echo.MiddlewareFunc, svcs *shared.Services) {
	api := lessonApi{svcs: svcs}

	lg := g.Group("/lessons/:id", auth...)
	lg.PUT("/progress", api.updateProgress)
	lg.GET("/quiz", api.quiz)
	lg.POST("/quiz", api.submitQuiz)
	lg.GET("/quiz/response", api.quizResponse)
	lg.DELETE("/quiz/response", api.retakeQuiz)
	lg.GET("/note", api.note)
	lg.PUT("/note", api.saveNote)
}

// Handlers

func (api *lessonApi) updateProgress(ctx echo.Context) error {
	var data ProgressRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProgressRequest")
	}

	prog, err := api.svcs.Progress.UpdateLessonProgress(
		ctx.Request().Context(), currentActor(ctx), ctx.Param("id"), data.Percent, data.Completed,
	)
	if err != nil {
		return errors.Wrap(err, "updating lesson progress")
	}
	return ctx.JSON(http.StatusOK, prog)
}

func (api *lessonApi) quiz(ctx echo.Context) error {
	qz, err := api.svcs.Quizzes.GetQuiz(ctx.Request().Context(), currentActor(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting quiz")
	}
	return ctx.JSON(http.StatusOK, qz)
}

func (api *lessonApi) submitQuiz(ctx echo.Context) error {
	var data QuizSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to QuizSubmission")
	}

	res, err := api.svcs.Quizzes.SubmitQuiz(ctx.Request().Context(), currentActor(ctx), ctx.Param("id"), data.Answers)
	if err != nil {
		return errors.Wrap(err, "submitting quiz")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *lessonApi) quizResponse(ctx echo.Context) error {
	resp, err := api.svcs.Quizzes.GetQuizResponse(ctx.Request().Context(), currentActor(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting quiz response")
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *lessonApi) retakeQuiz(ctx echo.Context) error {
	if err := api.svcs.Quizzes.RetakeQuiz(ctx.Request().Context(), currentActor(ctx), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "retaking quiz")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *lessonApi) note(ctx echo.Context) error {
	nt, err := api.svcs.Notes.GetNote(ctx.Request().Context(), currentActor(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting note")
	}
	return ctx.JSON(http.StatusOK, nt)
}

func (api *lessonApi) saveNote(ctx echo.Context) error {
	var data NoteRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NoteRequest")
	}

	nt, err := api.svcs.Notes.SaveNote(ctx.Request().Context(), currentActor(ctx), ctx.Param("id"), data.Content)
	if err != nil {
		return errors.Wrap(err, "saving note")
	}
	return ctx.JSON(http.StatusOK, nt)
}
