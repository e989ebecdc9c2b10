package app

import (
	"context"
	"net/http"
	"time"

	"unievent/pkg/jwt"
	"unievent/pkg/logger"
	"unievent/pkg/middleware"
	"unievent/pkg/response"
	apiHTTP "unievent/services/api/internal/controller/http"
	"unievent/services/api/internal/entity"
	"unievent/services/api/internal/repo"
	"unievent/services/api/internal/repo/cache"
	"unievent/services/api/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "unievent/services/api/docs" // Swagger docs
)

// Dependencies are the collaborators the router is built from. Redis and
// Storage may be nil.
type Dependencies struct {
	Store          repo.Store
	Redis          *redis.Client
	Storage        usecase.ObjectStorage
	JWT            *jwt.Service
	Hasher         usecase.PasswordHasher
	Logger         *logger.Logger
	AllowedOrigins []string
	PostCacheTTL   time.Duration
	// Ping reports storage health for /health. Optional.
	Ping func(ctx context.Context) error
}

func NewRouter(deps Dependencies) *gin.Engine {
	log := deps.Logger
	response.UseJSONFieldNames()

	hasher := deps.Hasher
	if hasher == nil {
		hasher = usecase.NewBcryptHasher(0)
	}
	postCache := cache.NewPostCache(deps.Redis, deps.PostCacheTTL)

	// Initialize use cases
	cascade := usecase.NewCascadePolicy(log)
	resolver := usecase.NewPrincipalResolver(deps.Store.Users(), log)
	authUseCase := usecase.NewAuthUseCase(deps.Store.Users(), hasher, deps.JWT, log)
	postUseCase := usecase.NewPostUseCase(deps.Store, cascade, postCache, log)
	interactionUseCase := usecase.NewInteractionUseCase(deps.Store, postCache, log)
	userUseCase := usecase.NewUserUseCase(deps.Store, cascade, postCache, deps.Storage, log)

	// Initialize HTTP handlers
	authHandler := apiHTTP.NewAuthHandler(authUseCase, log)
	postHandler := apiHTTP.NewPostHandler(postUseCase, log)
	interactionHandler := apiHTTP.NewInteractionHandler(interactionUseCase, log)
	userHandler := apiHTTP.NewUserHandler(userUseCase, log)

	r := gin.New()
	r.Use(response.Recovery(log))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics())

	corsConfig := cors.Config{
		AllowOrigins:     deps.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(deps.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	r.Use(cors.New(corsConfig))

	r.Use(middleware.AuthGate[*entity.Principal](deps.JWT, resolver, middleware.MustPolicies(middleware.DefaultPolicies()), log))

	r.NoRoute(func(c *gin.Context) {
		response.Abort(c, http.StatusNotFound, "Resource not found")
	})

	// Health check
	r.GET("/health", func(c *gin.Context) {
		if deps.Ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Ping(ctx); err != nil {
				log.Warn("Health check failed: %v", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	{
		api.GET("/posts", postHandler.ListFeed)
		api.POST("/posts", postHandler.CreatePost)
		api.GET("/posts/user/:userId", postHandler.ListByAuthor)
		api.GET("/posts/:id", postHandler.GetPost)
		api.DELETE("/posts/:id", postHandler.DeletePost)
		api.POST("/posts/:id/like", interactionHandler.ToggleLike)
		api.GET("/posts/:id/comments", interactionHandler.ListComments)
		api.POST("/posts/:id/comments", interactionHandler.AddComment)
		api.DELETE("/posts/:id/comments/:commentId", interactionHandler.DeleteComment)
	}

	{
		api.GET("/users/me", userHandler.Me)
		api.PATCH("/users/me", userHandler.UpdateProfile)
		api.POST("/users/me/avatar", userHandler.UploadAvatar)
		api.GET("/users/me/likes/:postId", interactionHandler.IsLiked)
		api.GET("/users/:id", userHandler.GetUser)
		api.DELETE("/users/:id", userHandler.DeleteUser)
	}

	return r
}
