package learning

import (
	"context"
	"encoding/json"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/ecoquest/ecoquest/core"
)

const (
	wordsPerMinute  = 180
	minMinutes      = 5
	maxMinutes      = 25
	defaultDuration = "10 min"
	articleBaseURL  = "https://en.wikipedia.org/wiki/"

	maxDefaultTopics = 6
	maxStoredTopics  = 8
)

var (
	ErrNoTopics = errors.New("at least one topic is required")

	defaultTopics = []string{"Climate change", "Renewable energy", "Waste management", "Biodiversity"}
	spaces        = regexp.MustCompile(`\s+`)
)

type (
	// Lesson is a dynamically generated lesson card.
	Lesson struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Summary  string `json:"summary"`
		URL      string `json:"url"`
		Duration string `json:"duration"`
	}

	// Article is a knowledge source summary. Any field may be empty.
	Article struct {
		Title       string
		Extract     string
		Description string
		URL         string
	}

	Source interface {
		Summary(ctx context.Context, topic string) (*Article, error)
	}
)

// Slug lowers s and replaces whitespace runs with "-".
func Slug(s string) string {
	return spaces.ReplaceAllString(strings.ToLower(s), "-")
}

// EstimateDuration gives a reading time from the word count, clamped to [5, 25] minutes.
func EstimateDuration(text string) string {
	words := len(strings.Fields(text))
	minutes := int(math.Round(float64(words) / wordsPerMinute))
	if minutes < minMinutes {
		minutes = minMinutes
	}
	if minutes > maxMinutes {
		minutes = maxMinutes
	}
	return strconv.Itoa(minutes) + " min"
}

func articleURL(topic string) string {
	return articleBaseURL + url.PathEscape(topic)
}

// Placeholder is the lesson shown when a topic could not be fetched.
func Placeholder(topic string) Lesson {
	return Lesson{
		ID:       Slug(topic),
		Title:    topic,
		Summary:  "Learn about " + topic + " with curated open knowledge resources.",
		URL:      articleURL(topic),
		Duration: defaultDuration,
	}
}

func lessonFrom(topic string, a *Article) Lesson {
	title := a.Title
	if title == "" {
		title = topic
	}
	summary := a.Extract
	if summary == "" {
		summary = a.Description
	}
	if summary == "" {
		summary = topic
	}
	link := a.URL
	if link == "" {
		link = articleURL(topic)
	}
	return Lesson{
		ID:       Slug(title),
		Title:    title,
		Summary:  summary,
		URL:      link,
		Duration: EstimateDuration(summary),
	}
}

// Service builds dynamic lessons and keeps the device's topic preferences.
type Service struct {
	source  Source
	kv      core.KVStore
	logger  core.Logger
	timeout time.Duration

	mutex sync.Mutex
}

func NewService(source Source, kv core.KVStore, logger core.Logger, timeout time.Duration) *Service {
	if logger == nil {
		logger = core.NopLogger()
	}
	return &Service{source: source, kv: kv, logger: logger, timeout: timeout}
}

// Fetch returns one lesson per topic, in order. All topics share one deadline;
// a topic that fails or misses it gets its placeholder.
func (s *Service) Fetch(ctx context.Context, topics []string) []Lesson {
	lessons := make([]Lesson, len(topics))
	if len(topics) == 0 {
		return lessons
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, topic := range topics {
		i, topic := i, topic
		g.Go(func() error {
			a, err := s.summary(gctx, topic)
			if err != nil {
				s.logger.Debug("fetching lesson", err, map[string]interface{}{"topic": topic})
				lessons[i] = Placeholder(topic)
				return nil
			}
			lessons[i] = lessonFrom(topic, a)
			return nil
		})
	}
	_ = g.Wait() // never fails, failures become placeholders
	return lessons
}

// summary bounds the source call by ctx even if the source ignores it.
func (s *Service) summary(ctx context.Context, topic string) (*Article, error) {
	type result struct {
		a   *Article
		err error
	}
	ch := make(chan result, 1)
	go func() {
		a, err := s.source.Summary(ctx, topic)
		ch <- result{a, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.err == nil && r.a == nil {
			r.err = errors.New("empty summary")
		}
		return r.a, r.err
	}
}

// DefaultTopics returns up to 6 stored topics, or the built-in list.
func (s *Service) DefaultTopics(ctx context.Context) []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	raw, err := s.kv.Get(ctx, core.SlotTopics)
	if err != nil {
		if err != core.ErrSlotNotFound {
			s.logger.Error("reading topics", err)
		}
		return append([]string(nil), defaultTopics...)
	}
	var topics []string
	if err = json.Unmarshal(raw, &topics); err != nil || len(topics) == 0 {
		return append([]string(nil), defaultTopics...)
	}
	if len(topics) > maxDefaultTopics {
		topics = topics[:maxDefaultTopics]
	}
	return topics
}

// SetTopics stores the user's topics (blank ones dropped, at most 8 kept) and returns what was stored.
func (s *Service) SetTopics(ctx context.Context, topics []string) ([]string, error) {
	cleaned := make([]string, 0, len(topics))
	for _, t := range topics {
		if t = core.CleanString(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return nil, ErrNoTopics
	}
	if len(cleaned) > maxStoredTopics {
		cleaned = cleaned[:maxStoredTopics]
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	raw, err := json.Marshal(cleaned)
	if err == nil {
		err = s.kv.Set(ctx, core.SlotTopics, raw)
	}
	if err != nil {
		s.logger.Error("persisting topics", err)
	}
	return cleaned, nil
}
