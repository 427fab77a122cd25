package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/microblog/internal/api"
	"github.com/d60-Lab/microblog/internal/api/handler"
	"github.com/d60-Lab/microblog/internal/api/middleware"
	"github.com/d60-Lab/microblog/internal/cache"
	"github.com/d60-Lab/microblog/internal/model"
	"github.com/d60-Lab/microblog/internal/repository"
	"github.com/d60-Lab/microblog/internal/service"
)

type app struct {
	router    http.Handler
	db        *gorm.DB
	redis     *miniredis.Miniredis
	pageCache *cache.PageCache
	posts     service.PostService
	relations service.RelationshipService
	accounts  service.AccountService
}

type fakeImageStore struct{}

func (fakeImageStore) Save(_ context.Context, filename, _ string, _ int64, r io.Reader) (string, error) {
	_, _ = io.Copy(io.Discard, r)
	return "http://images.local/microblog/posts/" + filename, nil
}

func newApp(t *testing.T, opts api.Options) *app {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	pageCache := cache.NewPageCache(rdb, cache.DefaultTTL)

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)

	posts := service.NewPostService(postRepo, groupRepo, userRepo, commentRepo, followRepo, 10)
	relations := service.NewRelationshipService(followRepo, userRepo)
	accounts := service.NewAccountService(userRepo, "test-secret", time.Hour)

	h := handler.NewHandler(posts, relations, accounts, fakeImageStore{})
	opts.Mode = "test"
	router := api.NewRouter(h, accounts, pageCache, opts)

	return &app{
		router: router, db: db, redis: mr, pageCache: pageCache,
		posts: posts, relations: relations, accounts: accounts,
	}
}

func (a *app) signup(t *testing.T, username string) *model.User {
	t.Helper()
	user, err := a.accounts.Signup(context.Background(), service.SignupInput{
		Username: username, Password: "password123",
	})
	require.NoError(t, err)
	return user
}

func (a *app) login(t *testing.T, username string) *http.Cookie {
	t.Helper()
	token, _, err := a.accounts.Login(context.Background(), username, "password123")
	require.NoError(t, err)
	return &http.Cookie{Name: middleware.AuthCookie, Value: token}
}

func (a *app) do(t *testing.T, method, path string, body url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(body.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *app) postCount(t *testing.T) int64 {
	t.Helper()
	var cnt int64
	require.NoError(t, a.db.Model(&model.Post{}).Count(&cnt).Error)
	return cnt
}

func (a *app) commentCount(t *testing.T) int64 {
	t.Helper()
	var cnt int64
	require.NoError(t, a.db.Model(&model.Comment{}).Count(&cnt).Error)
	return cnt
}

func (a *app) followCount(t *testing.T) int64 {
	t.Helper()
	var cnt int64
	require.NoError(t, a.db.Model(&model.Follow{}).Count(&cnt).Error)
	return cnt
}

func decodePosts(t *testing.T, body []byte) []map[string]any {
	t.Helper()
	var envelope struct {
		Data struct {
			Posts []map[string]any `json:"posts"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope.Data.Posts
}

func TestCreatePostFlow(t *testing.T) {
	a := newApp(t, api.Options{})
	a.signup(t, "leo")
	cookie := a.login(t, "leo")

	w := a.do(t, http.MethodGet, "/create/", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	before := a.postCount(t)
	w = a.do(t, http.MethodPost, "/create/", url.Values{"text": {"hello"}}, cookie)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/profile/leo/", w.Header().Get("Location"))
	require.Equal(t, before+1, a.postCount(t))

	w = a.do(t, http.MethodGet, "/profile/leo/", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	posts := decodePosts(t, w.Body.Bytes())
	require.Len(t, posts, 1)
	require.Equal(t, "hello", posts[0]["text"])
}

func TestCreatePostInvalidInput(t *testing.T) {
	a := newApp(t, api.Options{})
	a.signup(t, "leo")
	cookie := a.login(t, "leo")

	before := a.postCount(t)
	w := a.do(t, http.MethodPost, "/create/", url.Values{"text": {""}}, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "text")
	require.Equal(t, before, a.postCount(t))
}

func TestAnonymousRedirectedToLogin(t *testing.T) {
	a := newApp(t, api.Options{})
	author := a.signup(t, "leo")
	post, err := a.posts.Create(context.Background(), author.ID, service.PostInput{Text: "x"})
	require.NoError(t, err)

	editPath := "/posts/" + post.ID + "/edit/"
	w := a.do(t, http.MethodGet, editPath, nil, nil)
	require.Equal(t, http.StatusFound, w.Code)

	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, middleware.LoginPath, loc.Path)
	require.Equal(t, editPath, loc.Query().Get("next"))

	// the feed and create are protected the same way
	for _, p := range []string{"/follow/", "/create/"} {
		w := a.do(t, http.MethodGet, p, nil, nil)
		require.Equal(t, http.StatusFound, w.Code)
	}
}

func TestEditByNonAuthorSilentlyRedirects(t *testing.T) {
	a := newApp(t, api.Options{})
	author := a.signup(t, "author")
	a.signup(t, "intruder")
	post, err := a.posts.Create(context.Background(), author.ID, service.PostInput{Text: "original"})
	require.NoError(t, err)
	cookie := a.login(t, "intruder")

	detailPath := "/posts/" + post.ID + "/"
	editPath := detailPath + "edit/"

	// both the form page and the submission redirect, never an error page
	w := a.do(t, http.MethodGet, editPath, nil, cookie)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, detailPath, w.Header().Get("Location"))

	w = a.do(t, http.MethodPost, editPath, url.Values{"text": {"hacked"}}, cookie)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, detailPath, w.Header().Get("Location"))

	got, err := a.posts.Detail(context.Background(), post.ID)
	require.NoError(t, err)
	require.Equal(t, "original", got.Post.Text)
}

func TestEditByAuthor(t *testing.T) {
	a := newApp(t, api.Options{})
	author := a.signup(t, "leo")
	post, err := a.posts.Create(context.Background(), author.ID, service.PostInput{Text: "before"})
	require.NoError(t, err)
	cookie := a.login(t, "leo")

	editPath := "/posts/" + post.ID + "/edit/"
	w := a.do(t, http.MethodGet, editPath, nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "before")

	w = a.do(t, http.MethodPost, editPath, url.Values{"text": {"after"}}, cookie)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/posts/"+post.ID+"/", w.Header().Get("Location"))

	got, err := a.posts.Detail(context.Background(), post.ID)
	require.NoError(t, err)
	require.Equal(t, "after", got.Post.Text)

	w = a.do(t, http.MethodGet, "/posts/no-such-id/edit/", nil, cookie)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommentFlow(t *testing.T) {
	a := newApp(t, api.Options{})
	author := a.signup(t, "leo")
	post, err := a.posts.Create(context.Background(), author.ID, service.PostInput{Text: "x"})
	require.NoError(t, err)
	cookie := a.login(t, "leo")

	commentPath := "/posts/" + post.ID + "/comment/"
	w := a.do(t, http.MethodPost, commentPath, url.Values{"text": {"nice"}}, cookie)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/posts/"+post.ID+"/", w.Header().Get("Location"))
	require.EqualValues(t, 1, a.commentCount(t))

	// empty text never creates a row
	w = a.do(t, http.MethodPost, commentPath, url.Values{"text": {""}}, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.EqualValues(t, 1, a.commentCount(t))

	// missing target is a proper not-found
	w = a.do(t, http.MethodPost, "/posts/no-such-id/comment/", url.Values{"text": {"hi"}}, cookie)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.EqualValues(t, 1, a.commentCount(t))

	w = a.do(t, http.MethodGet, "/posts/"+post.ID+"/", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "nice")
	require.Contains(t, w.Body.String(), "Пост x")
}

func TestFollowRoutes(t *testing.T) {
	a := newApp(t, api.Options{})
	a.signup(t, "user")
	a.signup(t, "author")
	cookie := a.login(t, "user")

	// repeated follows stay at one row, always redirecting
	for i := 0; i < 2; i++ {
		w := a.do(t, http.MethodGet, "/profile/author/follow/", nil, cookie)
		require.Equal(t, http.StatusFound, w.Code)
		require.Equal(t, "/profile/author/", w.Header().Get("Location"))
	}
	require.EqualValues(t, 1, a.followCount(t))

	// self-follow: no row, same redirect
	w := a.do(t, http.MethodGet, "/profile/user/follow/", nil, cookie)
	require.Equal(t, http.StatusFound, w.Code)
	require.EqualValues(t, 1, a.followCount(t))

	// profile shows the following flag for the viewer
	w = a.do(t, http.MethodGet, "/profile/author/", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"following":true`)

	// unfollow twice: second is a no-op with the same redirect
	for i := 0; i < 2; i++ {
		w := a.do(t, http.MethodGet, "/profile/author/unfollow/", nil, cookie)
		require.Equal(t, http.StatusFound, w.Code)
	}
	require.EqualValues(t, 0, a.followCount(t))

	w = a.do(t, http.MethodGet, "/profile/ghost/follow/", nil, cookie)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestFeedRoute(t *testing.T) {
	a := newApp(t, api.Options{})
	a.signup(t, "a")
	b := a.signup(t, "b")
	a.signup(t, "c")
	cookieA := a.login(t, "a")
	cookieC := a.login(t, "c")

	w := a.do(t, http.MethodGet, "/profile/b/follow/", nil, cookieA)
	require.Equal(t, http.StatusFound, w.Code)

	_, err := a.posts.Create(context.Background(), b.ID, service.PostInput{Text: "fresh from b"})
	require.NoError(t, err)

	w = a.do(t, http.MethodGet, "/follow/", nil, cookieA)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "fresh from b")

	w = a.do(t, http.MethodGet, "/follow/", nil, cookieC)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "fresh from b")
}

func TestGroupListingOverHTTP(t *testing.T) {
	a := newApp(t, api.Options{})
	author := a.signup(t, "leo")
	groupRepo := repository.NewGroupRepository(a.db)
	group := &model.Group{ID: "7f000000-0000-4000-8000-000000000001", Title: "G", Slug: "g", Description: "d"}
	require.NoError(t, groupRepo.Create(context.Background(), group))

	for i := 0; i < 13; i++ {
		_, err := a.posts.Create(context.Background(), author.ID, service.PostInput{
			Text: fmt.Sprintf("post %02d", i), GroupID: group.ID,
		})
		require.NoError(t, err)
	}

	w := a.do(t, http.MethodGet, "/group/g/", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decodePosts(t, w.Body.Bytes()), 10)

	w = a.do(t, http.MethodGet, "/group/g/?page=2", nil, nil)
	require.Len(t, decodePosts(t, w.Body.Bytes()), 3)

	// out-of-range page clamps to the last page
	w = a.do(t, http.MethodGet, "/group/g/?page=99", nil, nil)
	require.Len(t, decodePosts(t, w.Body.Bytes()), 3)

	w = a.do(t, http.MethodGet, "/group/ghost/", nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestIndexPageCacheStaleness(t *testing.T) {
	a := newApp(t, api.Options{})
	author := a.signup(t, "leo")
	post, err := a.posts.Create(context.Background(), author.ID, service.PostInput{Text: "soon gone"})
	require.NoError(t, err)

	w := a.do(t, http.MethodGet, "/", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "soon gone")

	require.NoError(t, a.posts.DeletePost(context.Background(), post.ID))

	// within the window the deleted post is still served
	w = a.do(t, http.MethodGet, "/", nil, nil)
	require.Contains(t, w.Body.String(), "soon gone")

	// the key ignores the query string: page=2 gets the same bytes
	w = a.do(t, http.MethodGet, "/?page=2", nil, nil)
	require.Contains(t, w.Body.String(), "soon gone")

	require.NoError(t, a.pageCache.Clear(context.Background()))
	w = a.do(t, http.MethodGet, "/", nil, nil)
	require.NotContains(t, w.Body.String(), "soon gone")

	// the TTL window has the same effect as an explicit clear
	w = a.do(t, http.MethodGet, "/", nil, nil)
	a.redis.FastForward(21 * time.Second)
	w = a.do(t, http.MethodGet, "/", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestSignupLoginOverHTTP(t *testing.T) {
	a := newApp(t, api.Options{})

	w := a.do(t, http.MethodPost, "/auth/signup/", url.Values{
		"username": {"anna"}, "password": {"password123"},
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(t, http.MethodPost, "/auth/login/?next=/create/", url.Values{
		"username": {"anna"}, "password": {"password123"},
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"next":"/create/"`)

	var authCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.AuthCookie {
			authCookie = c
		}
	}
	require.NotNil(t, authCookie)

	// the issued cookie opens protected routes
	w = a.do(t, http.MethodGet, "/create/", nil, authCookie)
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(t, http.MethodPost, "/auth/login/", url.Values{
		"username": {"anna"}, "password": {"wrong"},
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadRoute(t *testing.T) {
	a := newApp(t, api.Options{})
	a.signup(t, "leo")
	cookie := a.login(t, "leo")

	var buf strings.Builder
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "cat.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload/", strings.NewReader(buf.String()))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "http://images.local/microblog/posts/cat.png")
}

func TestAboutPages(t *testing.T) {
	a := newApp(t, api.Options{})
	for _, p := range []string{"/about/author/", "/about/tech/"} {
		w := a.do(t, http.MethodGet, p, nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	a := newApp(t, api.Options{RateLimitRPS: 1, RateLimitBurst: 2})

	codes := make(map[int]int)
	for i := 0; i < 5; i++ {
		w := a.do(t, http.MethodGet, "/about/tech/", nil, nil)
		codes[w.Code]++
	}
	require.Positive(t, codes[http.StatusTooManyRequests])
}
