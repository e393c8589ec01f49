package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoquest/ecoquest/core"
	"github.com/ecoquest/ecoquest/core/access"
	"github.com/ecoquest/ecoquest/core/approval"
	"github.com/ecoquest/ecoquest/core/discussion"
	"github.com/ecoquest/ecoquest/core/learning"
	"github.com/ecoquest/ecoquest/core/progress"
	"github.com/ecoquest/ecoquest/core/session"
	"github.com/ecoquest/ecoquest/services/userapi"
	inmemdb "github.com/ecoquest/ecoquest/storage/database/inmem"
)

// Mocks

type authMock struct {
	tokens map[string]string // email -> token
}

func (m authMock) Signup(_ context.Context, req session.SignupRequest) (string, error) {
	return makeToken(req.Email, req.Role, req.FirstName, req.LastName), nil
}

func (m authMock) Login(_ context.Context, req session.LoginRequest) (string, error) {
	if token, ok := m.tokens[req.Email]; ok {
		return token, nil
	}
	return "", errors.New("Invalid credentials")
}

type progressRemoteMock struct {
	mu     sync.Mutex
	pushed []progress.UpdateProgressRequest
}

func (m *progressRemoteMock) InitializeProgress(context.Context, string, int64) error { return nil }

func (m *progressRemoteMock) PushPathIncrement(_ context.Context, _ string, _ int64, req progress.UpdateProgressRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushed = append(m.pushed, req)
	return nil
}

type remoteUsersMock struct {
	mu       sync.Mutex
	approved []int64
	fail     bool
}

func (m *remoteUsersMock) ApproveUser(_ context.Context, _ string, id int64) (*userapi.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errors.New("user service down")
	}
	m.approved = append(m.approved, id)
	return &userapi.User{ID: id}, nil
}

func (m *remoteUsersMock) RejectUser(context.Context, string, int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("user service down")
	}
	return nil
}

type sourceMock map[string]*learning.Article

func (m sourceMock) Summary(_ context.Context, topic string) (*learning.Article, error) {
	if a, ok := m[topic]; ok {
		return a, nil
	}
	return nil, errors.New("not found")
}

// Setup

type testEnv struct {
	srv     *Server
	kv      core.KVStore
	reg     *approval.Registry
	syncer  *progress.Syncer
	remote  *progressRemoteMock
	users   *remoteUsersMock
	student string
	teacher string
}

func makeToken(email string, role session.Role, first, last string) string {
	claims := jwt.MapClaims{"sub": email, "role": string(role), "firstName": first, "lastName": last}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("auth-service-key"))
	return token
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	conf := &core.Config{
		AppName:            "EcoQuest",
		TestMode:           true,
		SecretKey:          "secret",
		JWTExpirationDelta: time.Hour,
		AdminEmail:         "admin@ecoquest.local",
		AdminPassword:      "admin123",
		SyncTimeout:        time.Second,
		LearningTimeout:    time.Second,
		TotalPaths:         3,
	}
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	session.InitValidators(validate, translator)

	env := &testEnv{
		kv:      inmemdb.Open(),
		remote:  &progressRemoteMock{},
		users:   &remoteUsersMock{},
		student: makeToken("emma@example.com", session.RoleStudent, "Emma", "Rodriguez"),
		teacher: makeToken("jane@example.com", session.RoleTeacher, "Jane", "Goodall"),
	}
	env.reg = approval.NewRegistry(env.kv, nil, nil)
	env.syncer = progress.NewSyncer(env.remote, nil, time.Second)

	sess, err := session.NewService(session.Options{
		Store:     env.kv,
		Auth:      authMock{tokens: map[string]string{"emma@example.com": env.student, "jane@example.com": env.teacher}},
		Approvals: env.reg,
		Validate:  validate,
		Conf:      conf,
	})
	require.NoError(t, err)

	source := sourceMock{"Biodiversity": {Title: "Biodiversity", Extract: "The variety of life."}}
	env.srv = NewServer(ServerDeps{
		Conf:        conf,
		Logger:      core.NopLogger(),
		Session:     sess,
		Gate:        access.NewGate(env.reg, conf.AdminEmail),
		Progress:    progress.NewStore(env.kv, nil, validate, conf.TotalPaths),
		Syncer:      env.syncer,
		Approvals:   env.reg,
		RemoteUsers: env.users,
		Board:       discussion.NewBoard(env.kv, nil, validate),
		Learning:    learning.NewService(source, env.kv, nil, time.Second),
		Validate:    validate,
		Translator:  translator,
	})
	return env
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	return req, httptest.NewRecorder()
}

func (env *testEnv) do(t *testing.T, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body []byte
	if payload != nil {
		body = marchallObj(t, payload)
	}
	req, rec := newRequest(method, path, body)
	env.srv.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) login(t *testing.T, email string) {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/v1/session/login", echoMap{"email": email, "password": "pwd"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func (env *testEnv) adminLogin(t *testing.T) {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/v1/session/admin-login", echoMap{"email": "admin@ecoquest.local", "password": "admin123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

type echoMap map[string]interface{}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), rec.Body.String())
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

var (
	unauthenticated = []byte(`{"error":"user not authenticated","reason":"UNAUTHENTICATED","redirect":"/auth"}`)
	pendingApproval = []byte(`{"error":"your account is pending approval by the admin","reason":"PENDING_APPROVAL","redirect":"/auth"}`)
	forbidden       = []byte(`{"error":"permission denied","reason":"FORBIDDEN","redirect":"/"}`)
)

// Tests

func TestServer_Home(t *testing.T) {
	env := setup(t)
	req, rec := newRequest(http.MethodGet, "/")
	env.srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to EcoQuest!", rec.Body.String())
}

func TestSessionApi(t *testing.T) {
	env := setup(t)

	tests := []httpTest{
		{name: "no session", method: http.MethodGet, path: "/v1/session", wantCode: http.StatusUnauthorized, wantData: unauthenticated},
		{
			name: "invalid login", method: http.MethodPost, path: "/v1/session/login",
			body: []byte(`{"email":"not-an-email","password":""}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown user", method: http.MethodPost, path: "/v1/session/login",
			body: []byte(`{"email":"nobody@example.com","password":"x"}`), wantCode: http.StatusUnauthorized,
			wantData: []byte(`{"error":"authentication failed"}`),
		},
		{
			name: "teacher not approved", method: http.MethodPost, path: "/v1/session/login",
			body: []byte(`{"email":"jane@example.com","password":"x"}`), wantCode: http.StatusForbidden, wantData: pendingApproval,
		},
		{
			name: "teacher signup is gated", method: http.MethodPost, path: "/v1/session/signup",
			body:     []byte(`{"firstName":"Jane","lastName":"Goodall","email":"jane@example.com","password":"x","role":"teacher"}`),
			wantCode: http.StatusForbidden, wantData: pendingApproval,
		},
		{
			name: "admin role cannot sign up", method: http.MethodPost, path: "/v1/session/signup",
			body:     []byte(`{"firstName":"Al","lastName":"Min","email":"al@example.com","password":"x","role":"ADMIN"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"role":"role must be one of STUDENT, TEACHER or AMBASSADOR"}`),
		},
		{
			name: "bad admin password", method: http.MethodPost, path: "/v1/session/admin-login",
			body: []byte(`{"email":"admin@ecoquest.local","password":"nope"}`), wantCode: http.StatusUnauthorized,
			wantData: []byte(`{"error":"invalid admin credentials"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.srv.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("teacher is pending", func(t *testing.T) {
		_, ok := env.reg.Pending(context.Background(), "jane@example.com")
		assert.True(t, ok)
	})

	t.Run("student login", func(t *testing.T) {
		env.login(t, "emma@example.com")

		rec := env.do(t, http.MethodGet, "/v1/session", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp SessionResponse
		decode(t, rec, &resp)
		assert.Equal(t, "emma@example.com", resp.User.Email)
		assert.Equal(t, "Student", resp.RoleDisplayName)
		assert.Equal(t, access.ViewStudentDashboard, resp.Landing)
		assert.Len(t, resp.Navigation, 5)
	})

	t.Run("logout", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/session/logout", nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		rec = env.do(t, http.MethodGet, "/v1/session", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("student signup", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/session/signup", echoMap{
			"firstName": "Leo", "lastName": "Green", "email": "Leo@Example.com", "password": "x", "role": "student",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var resp SessionResponse
		decode(t, rec, &resp)
		assert.Equal(t, "leo@example.com", resp.User.Email)
		assert.Equal(t, access.ViewStudentDashboard, resp.Landing)
	})

	t.Run("admin login", func(t *testing.T) {
		env.adminLogin(t)
		rec := env.do(t, http.MethodGet, "/v1/session", nil)
		var resp SessionResponse
		decode(t, rec, &resp)
		assert.Equal(t, session.RoleAdmin, resp.User.Role)
		assert.Equal(t, access.ViewAdminDashboard, resp.Landing)
	})
}

func TestAccessApi(t *testing.T) {
	env := setup(t)

	tests := []struct {
		name  string
		login func(t *testing.T)
		path  string
		want  access.Decision
	}{
		{"public", nil, "/lessons", access.Decision{Allowed: true}},
		{"anonymous", nil, "/dashboard", access.Decision{Target: "/auth", Reason: access.ReasonUnauthenticated}},
		{"student dashboard", func(t *testing.T) { env.login(t, "emma@example.com") }, "/student-dashboard", access.Decision{Allowed: true}},
		{"student on teacher portal", nil, "/teacher-portal", access.Decision{Target: "/", Reason: access.ReasonForbidden}},
		{"admin dashboard", func(t *testing.T) { env.adminLogin(t) }, "/admin-dashboard", access.Decision{Allowed: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.login != nil {
				tt.login(t)
			}
			rec := env.do(t, http.MethodGet, "/v1/access?path="+tt.path, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			var got access.Decision
			decode(t, rec, &got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProgressApi(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	rec := env.do(t, http.MethodGet, "/v1/progress", nil)
	checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: unauthenticated}, rec)

	env.login(t, "emma@example.com")
	require.NoError(t, env.kv.Set(ctx, core.SlotUserID, []byte("7")))

	rec = env.do(t, http.MethodGet, "/v1/progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var record progress.Record
	decode(t, rec, &record)
	assert.Equal(t, 2485, record.EcoPoints)

	rec = env.do(t, http.MethodGet, "/v1/progress/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats progress.Stats
	decode(t, rec, &stats)
	assert.Equal(t, 3, stats.TotalPaths)

	t.Run("quiz", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/progress/quizzes", echoMap{
			"id": 3, "title": "Oceans", "score": 80, "totalQuestions": 5, "pointsEarned": 40, "completedAt": "2024-05-01",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		decode(t, rec, &record)
		assert.Equal(t, 2525, record.EcoPoints)

		rec = env.do(t, http.MethodPost, "/v1/progress/quizzes", echoMap{"id": 4, "title": "x", "score": 140, "totalQuestions": 5})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("challenge, badge, lesson", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/progress/challenges", echoMap{"id": "plant-tree", "points": 75})
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &record)
		assert.Contains(t, record.CompletedChallenges, "plant-tree")

		rec = env.do(t, http.MethodPost, "/v1/progress/challenges", echoMap{"id": " ", "points": 75})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = env.do(t, http.MethodPost, "/v1/progress/badges", echoMap{"id": "eco-hero"})
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &record)
		assert.Contains(t, record.UnlockedBadges, "eco-hero")

		rec = env.do(t, http.MethodPost, "/v1/progress/lessons/solar-101/enroll", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &record)
		assert.Contains(t, record.EnrolledLessons, "solar-101")

		rec = env.do(t, http.MethodPut, "/v1/progress/lessons/solar-101", echoMap{"percent": 49.6})
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &record)
		assert.Equal(t, 50, record.LessonProgress["solar-101"])
	})

	t.Run("path progress is synced", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/v1/progress/paths/42", echoMap{"incrementPercent": 60})
		require.Equal(t, http.StatusOK, rec.Code)
		var resp PathProgressResponse
		decode(t, rec, &resp)
		assert.True(t, resp.Synced)
		assert.Equal(t, 60, resp.Progress.LearningPathProgress["42"])

		rec = env.do(t, http.MethodPut, "/v1/progress/paths/solar-path", echoMap{"incrementPercent": 60})
		decode(t, rec, &resp)
		assert.False(t, resp.Synced, "non numeric path ids stay local")

		env.syncer.Wait()
		env.remote.mu.Lock()
		defer env.remote.mu.Unlock()
		assert.Equal(t, []progress.UpdateProgressRequest{{PathID: 42, IncrementPercent: 60}}, env.remote.pushed)
	})
}

func TestProgressApi_PendingTeacher(t *testing.T) {
	env := setup(t)
	// a teacher token stored before the approval was revoked
	require.NoError(t, env.kv.Set(context.Background(), core.SlotAuthToken, []byte(env.teacher)))

	rec := env.do(t, http.MethodGet, "/v1/progress", nil)
	checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: []byte(
		`{"error":"your account is pending approval by the admin","reason":"PENDING_APPROVAL","redirect":"/auth"}`,
	)}, rec)
}

func TestApprovalApi(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	require.NoError(t, env.reg.RequestApproval(ctx, "jane@example.com", session.RoleTeacher))
	require.NoError(t, env.reg.RequestApproval(ctx, "amb@example.com", session.RoleAmbassador))

	env.login(t, "emma@example.com")
	rec := env.do(t, http.MethodGet, "/v1/approvals", nil)
	checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: forbidden}, rec)

	env.adminLogin(t)
	rec = env.do(t, http.MethodGet, "/v1/approvals", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list ApprovalsResponse
	decode(t, rec, &list)
	assert.Len(t, list.Pending, 2)
	assert.Empty(t, list.Approved)

	rec = env.do(t, http.MethodPost, "/v1/approvals/jane@example.com/approve", echoMap{"userId": 4})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: []byte(
		`{"email":"jane@example.com","decision":"APPROVED","remote":true}`,
	)}, rec)
	assert.Equal(t, []int64{4}, env.users.approved)

	env.users.mu.Lock()
	env.users.fail = true
	env.users.mu.Unlock()
	rec = env.do(t, http.MethodPost, "/v1/approvals/amb%40example.com/reject", echoMap{"userId": 5})
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: []byte(
		`{"email":"amb@example.com","decision":"REJECTED","remote":false}`,
	)}, rec)

	rec = env.do(t, http.MethodPost, "/v1/approvals/%20/approve", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.True(t, env.reg.IsApproved(ctx, "jane@example.com"))
	assert.Empty(t, env.reg.ListPending(ctx))

	// the approved teacher can now sign in
	env.login(t, "jane@example.com")
	rec = env.do(t, http.MethodGet, "/v1/access?path=/teacher-portal", nil)
	assert.JSONEq(t, `{"allowed":true}`, rec.Body.String())
}

func TestDiscussionApi(t *testing.T) {
	env := setup(t)
	env.login(t, "emma@example.com")

	rec := env.do(t, http.MethodPost, "/v1/discussion/posts", echoMap{"title": "Beach cleanup", "content": "Join us", "tags": "ocean, volunteering"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var post discussion.Post
	decode(t, rec, &post)
	assert.Equal(t, "Emma Rodriguez", post.Author.Name)
	assert.Equal(t, "ER", post.Avatar)
	assert.Equal(t, []string{"ocean", "volunteering"}, post.Tags)

	rec = env.do(t, http.MethodPost, "/v1/discussion/posts", echoMap{"title": " ", "content": "x"})
	checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: []byte(`{"title":"this field is required"}`)}, rec)

	rec = env.do(t, http.MethodPost, "/v1/discussion/posts/"+post.ID+"/comments", echoMap{"content": "Count me in"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var comment discussion.Comment
	decode(t, rec, &comment)

	rec = env.do(t, http.MethodPost, "/v1/discussion/comments/"+comment.ID+"/replies", echoMap{"content": "See you there"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/discussion/posts/"+post.ID+"/comments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var comments []discussion.Comment
	decode(t, rec, &comments)
	require.Len(t, comments, 1)
	assert.Len(t, comments[0].Replies, 1)

	rec = env.do(t, http.MethodPost, "/v1/discussion/posts/"+post.ID+"/vote", echoMap{"vote": "up"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &post)
	assert.Equal(t, 1, post.Up)
	assert.Equal(t, 1, post.Comments)

	rec = env.do(t, http.MethodPost, "/v1/discussion/comments/"+comment.ID+"/vote", echoMap{"vote": "down"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &comment)
	assert.True(t, comment.IsDownvoted)

	tests := []httpTest{
		{name: "bad vote", method: http.MethodPost, path: "/v1/discussion/posts/" + post.ID + "/vote", body: []byte(`{"vote":"meh"}`), wantCode: http.StatusBadRequest},
		{name: "missing post", method: http.MethodPost, path: "/v1/discussion/posts/nope/comments", body: []byte(`{"content":"x"}`), wantCode: http.StatusNotFound, wantData: []byte(`{"error":"post not found"}`)},
		{name: "missing comment", method: http.MethodPost, path: "/v1/discussion/comments/nope/vote", body: []byte(`{"vote":"up"}`), wantCode: http.StatusNotFound},
		{name: "bad sort", method: http.MethodGet, path: "/v1/discussion/posts?sort=hot", wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.srv.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	rec = env.do(t, http.MethodGet, "/v1/discussion/posts?sort=popular", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var posts []discussion.Post
	decode(t, rec, &posts)
	assert.Len(t, posts, 1)
}

func TestDiscussionApi_Anonymous(t *testing.T) {
	env := setup(t)
	rec := env.do(t, http.MethodPost, "/v1/discussion/posts", echoMap{"title": "Hello", "content": "World"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var post discussion.Post
	decode(t, rec, &post)
	assert.Equal(t, discussion.AuthorFrom(nil), post.Author)
}

func TestLearningApi(t *testing.T) {
	env := setup(t)

	rec := env.do(t, http.MethodGet, "/v1/learnings?topic=Biodiversity,Wetlands", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp LearningsResponse
	decode(t, rec, &resp)
	assert.Equal(t, []string{"Biodiversity", "Wetlands"}, resp.Topics)
	require.Len(t, resp.Lessons, 2)
	assert.Equal(t, "The variety of life.", resp.Lessons[0].Summary)
	assert.Equal(t, learning.Placeholder("Wetlands"), resp.Lessons[1])

	rec = env.do(t, http.MethodPut, "/v1/learnings/topics", echoMap{"topics": []string{"Wetlands", " "}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"topics":["Wetlands"]}`, rec.Body.String())

	rec = env.do(t, http.MethodPut, "/v1/learnings/topics", echoMap{"topics": []string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/learnings", nil)
	decode(t, rec, &resp)
	assert.Equal(t, []string{"Wetlands"}, resp.Topics)

	rec = env.do(t, http.MethodGet, "/v1/learnings/topics", nil)
	assert.True(t, strings.Contains(rec.Body.String(), "Wetlands"))
}
