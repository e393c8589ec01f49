package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ecoquest/ecoquest/core/access"
	"github.com/ecoquest/ecoquest/core/progress"
	"github.com/ecoquest/ecoquest/core/session"
)

type (
	progressApi struct {
		store   *progress.Store
		syncer  *progress.Syncer
		session *session.Service
	}

	ChallengeRequest struct {
		ID     string `json:"id"`
		Points int    `json:"points"`
	}

	BadgeRequest struct {
		ID string `json:"id"`
	}

	LessonProgressRequest struct {
		Percent float64 `json:"percent"`
	}

	PathProgressRequest struct {
		IncrementPercent int `json:"incrementPercent"`
	}

	PathProgressResponse struct {
		Progress progress.Record `json:"progress"`
		Synced   bool            `json:"synced"` // a remote sync was scheduled
	}
)

func registerProgressAPI(g *echo.Group, deps ServerDeps) {
	api := progressApi{store: deps.Progress, syncer: deps.Syncer, session: deps.Session}

	pg := g.Group("/progress", gateMiddleware(deps.Gate, access.ViewDashboard))
	pg.GET("", api.retrieve)
	pg.GET("/stats", api.stats)
	pg.POST("/quizzes", api.recordQuiz)
	pg.POST("/challenges", api.completeChallenge)
	pg.POST("/badges", api.unlockBadge)
	pg.POST("/lessons/:id/enroll", api.enroll)
	pg.PUT("/lessons/:id", api.updateLesson)
	pg.PUT("/paths/:id", api.updatePath)
}

// Handlers

func (api *progressApi) retrieve(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.store.Load(ctx.Request().Context()))
}

func (api *progressApi) stats(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.store.Stats(ctx.Request().Context()))
}

func (api *progressApi) recordQuiz(ctx echo.Context) error {
	var data progress.QuizResult
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to QuizResult")
	}
	rec, err := api.store.RecordQuizResult(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *progressApi) completeChallenge(ctx echo.Context) error {
	var data ChallengeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChallengeRequest")
	}
	rec, err := api.store.CompleteChallenge(ctx.Request().Context(), data.ID, data.Points)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *progressApi) unlockBadge(ctx echo.Context) error {
	var data BadgeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BadgeRequest")
	}
	rec, err := api.store.UnlockBadge(ctx.Request().Context(), data.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *progressApi) enroll(ctx echo.Context) error {
	rec, err := api.store.EnrollInLesson(ctx.Request().Context(), pathParam(ctx, "id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *progressApi) updateLesson(ctx echo.Context) error {
	var data LessonProgressRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LessonProgressRequest")
	}
	rec, err := api.store.UpdateLessonProgress(ctx.Request().Context(), pathParam(ctx, "id"), data.Percent)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

// updatePath stores the increment locally, then mirrors it remotely in the background.
func (api *progressApi) updatePath(ctx echo.Context) error {
	var data PathProgressRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PathProgressRequest")
	}

	reqCtx := ctx.Request().Context()
	pathID := pathParam(ctx, "id")
	rec, err := api.store.UpdateLearningPathProgress(reqCtx, pathID, data.IncrementPercent)
	if err != nil {
		return err
	}

	var synced bool
	if token, ok := api.session.Token(reqCtx); ok {
		if userID, ok := api.session.UserID(reqCtx); ok {
			synced = api.syncer.PathProgressed(token, userID, pathID, data.IncrementPercent)
		}
	}
	return ctx.JSON(http.StatusOK, PathProgressResponse{Progress: rec, Synced: synced})
}
