package echoapi

import (
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ecoquest/ecoquest/core/discussion"
)

var (
	sortParam  = "sort"
	topicParam = "topic"
)

type PostsQuery struct {
	Sort discussion.Sort
}

func (q *PostsQuery) Bind(ctx echo.Context) error {
	sort, err := discussion.ParseSort(strings.ToLower(strings.TrimSpace(ctx.QueryParam(sortParam))))
	if err != nil {
		return err
	}
	q.Sort = sort
	return nil
}

// TopicsQuery accepts `?topic=a&topic=b` as well as `?topic=a,b`.
type TopicsQuery struct {
	Topics []string
}

func (q *TopicsQuery) Bind(ctx echo.Context) {
	for _, val := range ctx.QueryParams()[topicParam] {
		for _, topic := range strings.Split(val, ",") {
			if topic = strings.TrimSpace(topic); topic != "" {
				q.Topics = append(q.Topics, topic)
			}
		}
	}
}

// pathParam returns the unescaped path parameter.
func pathParam(ctx echo.Context, name string) string {
	raw := ctx.Param(name)
	if val, err := url.PathUnescape(raw); err == nil {
		return val
	}
	return raw
}
