package api

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/d60-Lab/microblog/docs"
	"github.com/d60-Lab/microblog/internal/api/handler"
	"github.com/d60-Lab/microblog/internal/api/middleware"
	"github.com/d60-Lab/microblog/internal/cache"
	"github.com/d60-Lab/microblog/internal/service"
)

// Options 路由器装配参数
type Options struct {
	Mode           string
	RateLimitRPS   float64
	RateLimitBurst int
	EnableSentry   bool
}

// NewRouter mounts every route from the public contract. The page
// cache wraps only the home listing; the feed stays uncached.
func NewRouter(h *handler.Handler, accounts service.AccountService, pageCache *cache.PageCache, opts Options) *gin.Engine {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLog())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(otelgin.Middleware("microblog"))
	if opts.EnableSentry {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	if opts.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitRPS, opts.RateLimitBurst))
	}

	requireAuth := middleware.RequireAuth(accounts)
	optionalAuth := middleware.OptionalAuth(accounts)

	r.GET("/", pageCache.Middleware(), h.Index)
	r.GET("/group/:slug/", h.GroupPosts)
	r.GET("/profile/:username/", optionalAuth, h.Profile)
	r.GET("/posts/:id/", h.PostDetail)

	r.GET("/create/", requireAuth, h.CreatePostForm)
	r.POST("/create/", requireAuth, h.CreatePost)
	r.GET("/posts/:id/edit/", requireAuth, h.EditPostForm)
	r.POST("/posts/:id/edit/", requireAuth, h.EditPost)
	r.POST("/posts/:id/comment/", requireAuth, h.AddComment)

	r.GET("/follow/", requireAuth, h.FollowIndex)
	r.GET("/profile/:username/follow/", requireAuth, h.Follow)
	r.GET("/profile/:username/unfollow/", requireAuth, h.Unfollow)

	r.POST("/auth/signup/", h.Signup)
	r.POST("/auth/login/", h.Login)
	r.POST("/auth/logout/", h.Logout)

	r.POST("/upload/", requireAuth, h.Upload)

	r.GET("/about/author/", h.AboutAuthor)
	r.GET("/about/tech/", h.AboutTech)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
