package discussion

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/ecoquest/ecoquest/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrInvalidVote     = errors.New("vote must be up or down")
	ErrInvalidSort     = errors.New("sort must be recent or popular")
)

type state struct {
	Posts    []Post    `json:"posts"`    // newest first
	Comments []Comment `json:"comments"` // newest first
}

// Board is the device's discussion board, persisted in one slot.
type Board struct {
	mutex    sync.Mutex
	kv       core.KVStore
	logger   core.Logger
	validate *validator.Validate
}

func NewBoard(kv core.KVStore, logger core.Logger, validate *validator.Validate) *Board {
	if logger == nil {
		logger = core.NopLogger()
	}
	return &Board{kv: kv, logger: logger, validate: validate}
}

func ParseSort(s string) (Sort, error) {
	switch Sort(s) {
	case "", SortRecent:
		return SortRecent, nil
	case SortPopular:
		return SortPopular, nil
	}
	return "", ErrInvalidSort
}

// Posts lists the posts: recent is newest first, popular is by score (ties newest first).
func (b *Board) Posts(ctx context.Context, by Sort) []Post {
	b.mutex.Lock()
	st := b.load(ctx)
	b.mutex.Unlock()

	posts := st.Posts
	sort.SliceStable(posts, func(i, j int) bool {
		if by == SortPopular && posts[i].Score() != posts[j].Score() {
			return posts[i].Score() > posts[j].Score()
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts
}

// Comments lists the comments of a post, newest first.
func (b *Board) Comments(ctx context.Context, postID string) ([]Comment, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	st := b.load(ctx)
	if st.post(postID) < 0 {
		return nil, ErrPostNotFound
	}
	comments := make([]Comment, 0)
	for _, c := range st.Comments {
		if c.PostID == postID {
			comments = append(comments, c)
		}
	}
	return comments, nil
}

func (b *Board) CreatePost(ctx context.Context, author Author, np NewPost) (Post, error) {
	if err := np.Validate(b.validate); err != nil {
		return Post{}, err
	}

	post := Post{
		ID:        uuid.NewString(),
		Title:     np.Title,
		Content:   np.Content,
		Image:     np.Image,
		Link:      np.Link,
		Tags:      SplitTags(np.Tags),
		CreatedAt: NowFunc().UTC(),
		Author:    author,
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	st := b.load(ctx)
	st.Posts = append([]Post{post}, st.Posts...)
	b.save(ctx, st)
	return post, nil
}

// AddComment adds a comment and bumps the post's comment count.
func (b *Board) AddComment(ctx context.Context, author Author, postID string, nm NewMessage) (Comment, error) {
	if err := nm.Validate(b.validate); err != nil {
		return Comment{}, err
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	st := b.load(ctx)
	i := st.post(postID)
	if i < 0 {
		return Comment{}, ErrPostNotFound
	}

	comment := Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		Content:   nm.Content,
		Replies:   []Reply{},
		CreatedAt: NowFunc().UTC(),
		Author:    author,
	}
	st.Comments = append([]Comment{comment}, st.Comments...)
	st.Posts[i].Comments++
	b.save(ctx, st)
	return comment, nil
}

func (b *Board) AddReply(ctx context.Context, author Author, commentID string, nm NewMessage) (Reply, error) {
	if err := nm.Validate(b.validate); err != nil {
		return Reply{}, err
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	st := b.load(ctx)
	i := st.comment(commentID)
	if i < 0 {
		return Reply{}, ErrCommentNotFound
	}

	reply := Reply{
		ID:        uuid.NewString(),
		Content:   nm.Content,
		CreatedAt: NowFunc().UTC(),
		Author:    author,
	}
	st.Comments[i].Replies = append(st.Comments[i].Replies, reply)
	b.save(ctx, st)
	return reply, nil
}

func (b *Board) VotePost(ctx context.Context, postID string, vote Vote) (Post, error) {
	if !vote.valid() {
		return Post{}, ErrInvalidVote
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	st := b.load(ctx)
	i := st.post(postID)
	if i < 0 {
		return Post{}, ErrPostNotFound
	}
	st.Posts[i].toggle(vote)
	b.save(ctx, st)
	return st.Posts[i], nil
}

func (b *Board) VoteComment(ctx context.Context, commentID string, vote Vote) (Comment, error) {
	if !vote.valid() {
		return Comment{}, ErrInvalidVote
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	st := b.load(ctx)
	i := st.comment(commentID)
	if i < 0 {
		return Comment{}, ErrCommentNotFound
	}
	st.Comments[i].toggle(vote)
	b.save(ctx, st)
	return st.Comments[i], nil
}

func (st *state) post(id string) int {
	for i := range st.Posts {
		if st.Posts[i].ID == id {
			return i
		}
	}
	return -1
}

func (st *state) comment(id string) int {
	for i := range st.Comments {
		if st.Comments[i].ID == id {
			return i
		}
	}
	return -1
}

// load must be called with the mutex held. A missing or corrupted slot is an empty board.
func (b *Board) load(ctx context.Context) state {
	st := state{}
	raw, err := b.kv.Get(ctx, core.SlotDiscussion)
	switch {
	case err == core.ErrSlotNotFound:
	case err != nil:
		b.logger.Error("reading discussion board", err)
	default:
		if err = json.Unmarshal(raw, &st); err != nil {
			b.logger.Error("decoding discussion board", errors.Wrap(err, "corrupted discussion slot"))
			st = state{}
		}
	}
	if st.Posts == nil {
		st.Posts = []Post{}
	}
	if st.Comments == nil {
		st.Comments = []Comment{}
	}
	return st
}

func (b *Board) save(ctx context.Context, st state) {
	raw, err := json.Marshal(st)
	if err == nil {
		err = b.kv.Set(ctx, core.SlotDiscussion, raw)
	}
	if err != nil {
		b.logger.Error("persisting discussion board", err)
	}
}
