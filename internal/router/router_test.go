package router

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"caspian/internal/config"
	"caspian/internal/db"
	"caspian/internal/middleware"
	"caspian/internal/services"
	"caspian/internal/store"
)

var testDBSeq atomic.Int64

type testApp struct {
	router   *gin.Engine
	users    store.UserStore
	posts    store.PostStore
	comments store.CommentStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:routertest%d?mode=memory&cache=shared", testDBSeq.Add(1))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	users := store.NewUserStore(gdb)
	posts := store.NewPostStore(gdb)
	comments := store.NewCommentStore(gdb)
	mail := services.NewMailService(config.SMTP{}) // disabled in tests

	r := gin.New()
	r.Use(sessions.Sessions("caspian_session", cookie.NewStore([]byte("test-secret"))))
	r.HTMLRender = testTemplates()
	r.Use(middleware.LoadUser(users))
	RegisterRoutes(r, users, posts, comments, mail, "http://blog.test")

	return &testApp{router: r, users: users, posts: posts, comments: comments}
}

// testTemplates registers minimal stand-ins for every view the handlers name.
func testTemplates() multitemplate.Renderer {
	r := multitemplate.NewRenderer()
	for name, body := range map[string]string{
		"index.html":         `home`,
		"blog/list.html":     `list:{{ len .Posts }}`,
		"blog/detail.html":   `{{ .Post.Title }}:{{ len .Comments }}`,
		"blog/form.html":     `form:{{ .Error }}`,
		"auth/login.html":    `login:{{ .Error }}{{ .Success }}`,
		"auth/register.html": `register:{{ .Error }}`,
		"contact.html":       `contact:{{ .FieldErrors }}`,
		"error.html":         `error:{{ .Error }}`,
	} {
		r.AddFromString(name, body)
	}
	return r
}

func (a *testApp) get(path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) post(path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) register(t *testing.T, email, name, password string) {
	t.Helper()
	w := a.post("/register", url.Values{
		"email":    {email},
		"name":     {name},
		"password": {password},
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("register %s: status %d, body %s", email, w.Code, w.Body.String())
	}
}

func (a *testApp) login(t *testing.T, email, password string) []*http.Cookie {
	t.Helper()
	w := a.post("/login", url.Values{
		"email":    {email},
		"password": {password},
	}, nil)
	if w.Code != http.StatusFound {
		t.Fatalf("login %s: status %d, body %s", email, w.Code, w.Body.String())
	}
	return w.Result().Cookies()
}

func postPayload(title string) url.Values {
	return url.Values{
		"title":   {title},
		"img_url": {"https://example.com/cover.jpg"},
		"body":    {"Once upon a time."},
	}
}

func TestOnlyTheFirstRegisteredUserIsAdmin(t *testing.T) {
	app := newTestApp(t)

	app.register(t, "a@x.com", "Alice", "pw1pw1")
	app.register(t, "b@x.com", "Bob", "pw2pw2")

	// Second account may not publish
	bob := app.login(t, "b@x.com", "pw2pw2")
	w := app.post("/blog/new-post", postPayload("First light"), bob)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", w.Code)
	}
	if posts, _ := app.posts.List(); len(posts) != 0 {
		t.Fatalf("store changed by forbidden request: %d posts", len(posts))
	}

	// First account may
	alice := app.login(t, "a@x.com", "pw1pw1")
	w = app.post("/blog/new-post", postPayload("First light"), alice)
	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect for admin, got %d, body %s", w.Code, w.Body.String())
	}

	posts, err := app.posts.List()
	if err != nil || len(posts) != 1 {
		t.Fatalf("expected 1 post, got %d (%v)", len(posts), err)
	}
	admin, _ := app.users.Verify("a@x.com", "pw1pw1")
	if posts[0].UserID != admin.ID {
		t.Errorf("post author = %d, want %d", posts[0].UserID, admin.ID)
	}
}

func TestAnonymousCannotReachAuthoringRoutes(t *testing.T) {
	app := newTestApp(t)

	w := app.get("/blog/new-post", nil)
	if w.Code != http.StatusFound || !strings.HasPrefix(w.Header().Get("Location"), "/login") {
		t.Errorf("expected redirect to login, got %d -> %q", w.Code, w.Header().Get("Location"))
	}
}

func TestForgedSessionIsAnonymous(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "a@x.com", "Alice", "pw1pw1")

	forged := []*http.Cookie{{Name: "caspian_session", Value: "forged-garbage"}}
	w := app.get("/blog/new-post", forged)
	if w.Code != http.StatusFound || !strings.HasPrefix(w.Header().Get("Location"), "/login") {
		t.Errorf("forged cookie should be anonymous, got %d -> %q", w.Code, w.Header().Get("Location"))
	}
}

func TestDuplicateTitleRejected(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "a@x.com", "Alice", "pw1pw1")
	alice := app.login(t, "a@x.com", "pw1pw1")

	if w := app.post("/blog/new-post", postPayload("Same title"), alice); w.Code != http.StatusFound {
		t.Fatalf("first create failed: %d", w.Code)
	}
	w := app.post("/blog/new-post", postPayload("Same title"), alice)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate title, got %d", w.Code)
	}
	if posts, _ := app.posts.List(); len(posts) != 1 {
		t.Errorf("post count changed by rejected create: %d", len(posts))
	}
}

func TestNewPostValidation(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "a@x.com", "Alice", "pw1pw1")
	alice := app.login(t, "a@x.com", "pw1pw1")

	payload := postPayload("Broken cover")
	payload.Set("img_url", "not a url")
	w := app.post("/blog/new-post", payload, alice)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed URL, got %d", w.Code)
	}
	if posts, _ := app.posts.List(); len(posts) != 0 {
		t.Errorf("invalid form reached the store: %d posts", len(posts))
	}
}

func TestEditAndDeletePost(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "a@x.com", "Alice", "pw1pw1")
	alice := app.login(t, "a@x.com", "pw1pw1")

	if w := app.post("/blog/new-post", postPayload("Original"), alice); w.Code != http.StatusFound {
		t.Fatalf("create failed: %d", w.Code)
	}
	posts, _ := app.posts.List()
	id := posts[0].ID

	payload := postPayload("Renamed")
	w := app.post(fmt.Sprintf("/blog/edit-post/%d", id), payload, alice)
	if w.Code != http.StatusFound {
		t.Fatalf("edit failed: %d, body %s", w.Code, w.Body.String())
	}
	got, _ := app.posts.ByID(id)
	if got.Title != "Renamed" {
		t.Errorf("edit not applied: %q", got.Title)
	}

	w = app.get(fmt.Sprintf("/delete/%d", id), alice)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/blog" {
		t.Fatalf("delete failed: %d -> %q", w.Code, w.Header().Get("Location"))
	}
	if remaining, _ := app.posts.List(); len(remaining) != 0 {
		t.Errorf("post survived delete: %d", len(remaining))
	}
}

func TestCommentRequiresLogin(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "a@x.com", "Alice", "pw1pw1")
	alice := app.login(t, "a@x.com", "pw1pw1")
	if w := app.post("/blog/new-post", postPayload("Commentable"), alice); w.Code != http.StatusFound {
		t.Fatalf("create failed: %d", w.Code)
	}
	posts, _ := app.posts.List()
	id := posts[0].ID

	// Anonymous submission: redirected to login, nothing written
	w := app.post(fmt.Sprintf("/blog/%d", id), url.Values{"text": {"first!"}}, nil)
	if w.Code != http.StatusFound || !strings.HasPrefix(w.Header().Get("Location"), "/login") {
		t.Fatalf("expected login redirect, got %d -> %q", w.Code, w.Header().Get("Location"))
	}
	if comments, _ := app.comments.ForPost(id); len(comments) != 0 {
		t.Fatalf("anonymous comment was stored: %d", len(comments))
	}

	// The same submission after authenticating creates exactly one comment
	app.register(t, "b@x.com", "Bob", "pw2pw2")
	bob := app.login(t, "b@x.com", "pw2pw2")
	w = app.post(fmt.Sprintf("/blog/%d", id), url.Values{"text": {"first!"}}, bob)
	if w.Code != http.StatusFound {
		t.Fatalf("authenticated comment failed: %d", w.Code)
	}

	comments, _ := app.comments.ForPost(id)
	if len(comments) != 1 {
		t.Fatalf("expected exactly 1 comment, got %d", len(comments))
	}
	bobUser, _ := app.users.Verify("b@x.com", "pw2pw2")
	if comments[0].UserID != bobUser.ID || comments[0].PostID != id {
		t.Errorf("comment references wrong rows: %+v", comments[0])
	}
}

func TestLoginFailuresAreGeneric(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "a@x.com", "Alice", "pw1pw1")

	wrongPass := app.post("/login", url.Values{"email": {"a@x.com"}, "password": {"wrong"}}, nil)
	unknown := app.post("/login", url.Values{"email": {"nobody@x.com"}, "password": {"pw1pw1"}}, nil)

	for _, w := range []*httptest.ResponseRecorder{wrongPass, unknown} {
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	}
	if wrongPass.Body.String() != unknown.Body.String() {
		t.Error("login failure responses leak which field was wrong")
	}
}

func TestDuplicateEmailRegistration(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "a@x.com", "Alice", "pw1pw1")

	w := app.post("/register", url.Values{
		"email":    {"a@x.com"},
		"name":     {"Imposter"},
		"password": {"pw2pw2"},
	}, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 on duplicate email, got %d", w.Code)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "a@x.com", "Alice", "pw1pw1")
	alice := app.login(t, "a@x.com", "pw1pw1")

	w := app.get("/logout", alice)
	if w.Code != http.StatusFound {
		t.Fatalf("logout failed: %d", w.Code)
	}
	cleared := w.Result().Cookies()

	w = app.get("/blog/new-post", cleared)
	if w.Code != http.StatusFound || !strings.HasPrefix(w.Header().Get("Location"), "/login") {
		t.Errorf("session survived logout: %d -> %q", w.Code, w.Header().Get("Location"))
	}
}

func TestContactFormValidationAndRelayFailure(t *testing.T) {
	app := newTestApp(t)

	// Missing fields come back to the form
	w := app.post("/message", url.Values{"name": {"Sam"}}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing fields, got %d", w.Code)
	}

	// With no configured relay the send fails and the request errors out
	w = app.post("/message", url.Values{
		"name":     {"Sam"},
		"email":    {"sam@x.com"},
		"question": {"When is the next post?"},
	}, nil)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 when the relay fails, got %d", w.Code)
	}
}
