package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ecoquest/ecoquest/core/learning"
)

type (
	learningApi struct {
		svc *learning.Service
	}

	TopicsRequest struct {
		Topics []string `json:"topics"`
	}

	LearningsResponse struct {
		Topics  []string          `json:"topics"`
		Lessons []learning.Lesson `json:"lessons"`
	}
)

func registerLearningAPI(g *echo.Group, deps ServerDeps) {
	api := learningApi{svc: deps.Learning}

	lg := g.Group("/learnings")
	lg.GET("", api.query)
	lg.GET("/topics", api.queryTopics)
	lg.PUT("/topics", api.setTopics)
}

// Handlers

// query builds lessons for `?topic=` or, without it, for the saved topics.
func (api *learningApi) query(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var query TopicsQuery
	query.Bind(ctx)
	if len(query.Topics) == 0 {
		query.Topics = api.svc.DefaultTopics(reqCtx)
	}
	return ctx.JSON(http.StatusOK, LearningsResponse{
		Topics:  query.Topics,
		Lessons: api.svc.Fetch(reqCtx, query.Topics),
	})
}

func (api *learningApi) queryTopics(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, TopicsRequest{Topics: api.svc.DefaultTopics(ctx.Request().Context())})
}

func (api *learningApi) setTopics(ctx echo.Context) error {
	var data TopicsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TopicsRequest")
	}
	topics, err := api.svc.SetTopics(ctx.Request().Context(), data.Topics)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, TopicsRequest{Topics: topics})
}
