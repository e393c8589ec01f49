package discussion

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/ecoquest/ecoquest/core"
	"github.com/ecoquest/ecoquest/core/session"
)

type (
	Vote string
	Sort string
)

const (
	Up   Vote = "up"
	Down Vote = "down"

	SortRecent  Sort = "recent"
	SortPopular Sort = "popular"
)

type (
	Author struct {
		Name   string       `json:"author"`
		Role   session.Role `json:"authorRole"`
		Avatar string       `json:"authorAvatar"`
	}

	// Votes holds the counters and the device user's own vote.
	Votes struct {
		Up          int  `json:"upvotes"`
		Down        int  `json:"downvotes"`
		IsUpvoted   bool `json:"isUpvoted"`
		IsDownvoted bool `json:"isDownvoted"`
	}

	Post struct {
		ID        string    `json:"id"`
		Title     string    `json:"title"`
		Content   string    `json:"content"`
		Image     string    `json:"image,omitempty"`
		Link      string    `json:"link,omitempty"`
		Tags      []string  `json:"tags"`
		Comments  int       `json:"comments"`
		CreatedAt time.Time `json:"createdAt"`
		Author
		Votes
	}

	Comment struct {
		ID        string    `json:"id"`
		PostID    string    `json:"postId"`
		Content   string    `json:"content"`
		Replies   []Reply   `json:"replies"`
		CreatedAt time.Time `json:"createdAt"`
		Author
		Votes
	}

	Reply struct {
		ID        string    `json:"id"`
		Content   string    `json:"content"`
		CreatedAt time.Time `json:"createdAt"`
		Author
		Votes
	}

	// NewPost is what a user submits. Tags is a comma separated list.
	NewPost struct {
		Title   string `json:"title" validate:"required"`
		Content string `json:"content" validate:"required"`
		Image   string `json:"image"`
		Link    string `json:"link" validate:"omitempty,url"`
		Tags    string `json:"tags"`
	}

	NewMessage struct {
		Content string `json:"content" validate:"required"`
	}
)

func (np *NewPost) Validate(validate *validator.Validate) error {
	np.Title = core.CleanString(np.Title)
	np.Content = core.CleanString(np.Content)
	np.Image = core.CleanString(np.Image)
	np.Link = core.CleanString(np.Link)
	return validate.Struct(np)
}

func (nm *NewMessage) Validate(validate *validator.Validate) error {
	nm.Content = core.CleanString(nm.Content)
	return validate.Struct(nm)
}

// SplitTags splits "a, b,,c" into [a b c].
func SplitTags(tags string) []string {
	out := make([]string, 0)
	for _, tag := range strings.Split(tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// AuthorFrom derives the author shown on posts. claims may be nil.
func AuthorFrom(claims *session.Claims) Author {
	author := Author{Name: "Anonymous", Role: session.RoleStudent, Avatar: "A"}
	if claims == nil {
		return author
	}
	if name := claims.DisplayName(); name != "" {
		author.Name = name
		author.Avatar = initial(claims.FirstName) + initial(claims.LastName)
	}
	if claims.Role != "" {
		author.Role = claims.Role
	}
	return author
}

func initial(s string) string {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return ""
	}
	return string(unicode.ToUpper(r))
}

func (v Votes) Score() int { return v.Up - v.Down }

// toggle applies vote: repeating a vote undoes it, the opposite vote moves it.
func (v *Votes) toggle(vote Vote) {
	switch vote {
	case Up:
		if v.IsUpvoted {
			v.Up--
			v.IsUpvoted = false
			return
		}
		v.Up++
		v.IsUpvoted = true
		if v.IsDownvoted {
			v.Down--
			v.IsDownvoted = false
		}
	case Down:
		if v.IsDownvoted {
			v.Down--
			v.IsDownvoted = false
			return
		}
		v.Down++
		v.IsDownvoted = true
		if v.IsUpvoted {
			v.Up--
			v.IsUpvoted = false
		}
	}
}

func (v Vote) valid() bool { return v == Up || v == Down }
