package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ecoquest/ecoquest/core/discussion"
)

type (
	discussionApi struct {
		board *discussion.Board
	}

	VoteRequest struct {
		Vote discussion.Vote `json:"vote"`
	}
)

func registerDiscussionAPI(g *echo.Group, deps ServerDeps) {
	api := discussionApi{board: deps.Board}

	dg := g.Group("/discussion")
	dg.GET("/posts", api.queryPosts)
	dg.POST("/posts", api.createPost)
	dg.GET("/posts/:id/comments", api.queryComments)
	dg.POST("/posts/:id/comments", api.createComment)
	dg.POST("/posts/:id/vote", api.votePost)
	dg.POST("/comments/:id/replies", api.createReply)
	dg.POST("/comments/:id/vote", api.voteComment)
}

func contextAuthor(ctx echo.Context) discussion.Author {
	claims, _ := contextClaims(ctx)
	return discussion.AuthorFrom(claims)
}

// Handlers

func (api *discussionApi) queryPosts(ctx echo.Context) error {
	var query PostsQuery
	if err := query.Bind(ctx); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.board.Posts(ctx.Request().Context(), query.Sort))
}

func (api *discussionApi) createPost(ctx echo.Context) error {
	var data discussion.NewPost
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPost")
	}
	post, err := api.board.CreatePost(ctx.Request().Context(), contextAuthor(ctx), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, post)
}

func (api *discussionApi) queryComments(ctx echo.Context) error {
	comments, err := api.board.Comments(ctx.Request().Context(), pathParam(ctx, "id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, comments)
}

func (api *discussionApi) createComment(ctx echo.Context) error {
	var data discussion.NewMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	comment, err := api.board.AddComment(ctx.Request().Context(), contextAuthor(ctx), pathParam(ctx, "id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, comment)
}

func (api *discussionApi) createReply(ctx echo.Context) error {
	var data discussion.NewMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	reply, err := api.board.AddReply(ctx.Request().Context(), contextAuthor(ctx), pathParam(ctx, "id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, reply)
}

func (api *discussionApi) votePost(ctx echo.Context) error {
	var data VoteRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VoteRequest")
	}
	post, err := api.board.VotePost(ctx.Request().Context(), pathParam(ctx, "id"), data.Vote)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, post)
}

func (api *discussionApi) voteComment(ctx echo.Context) error {
	var data VoteRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VoteRequest")
	}
	comment, err := api.board.VoteComment(ctx.Request().Context(), pathParam(ctx, "id"), data.Vote)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, comment)
}
