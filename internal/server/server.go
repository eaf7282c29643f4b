package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	authdomain "github.com/healthsync/backend/internal/auth/domain"
	chatdomain "github.com/healthsync/backend/internal/chat/domain"
	communitydomain "github.com/healthsync/backend/internal/community/domain"
	"github.com/healthsync/backend/internal/config"
	"github.com/healthsync/backend/internal/logger"
	"github.com/healthsync/backend/internal/metrics"
	"github.com/healthsync/backend/internal/ratelimit"
	"github.com/healthsync/backend/internal/token"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

// NewEngine assembles the middleware chain shared by every route.
func NewEngine(cfg config.Config, log *zap.Logger, m *metrics.Metrics, limiter *ratelimit.RequestLimiter) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		Logger:          log,
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(corsMiddleware(cfg))
	r.Use(m.Middleware())
	r.Use(limiter.Middleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	return r
}

func corsMiddleware(cfg config.Config) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.CORSOrigins
	}
	return cors.New(corsCfg)
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

// Server holds the handler dependencies.
type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	log          *zap.Logger
	codec        *token.Codec
	authSvc      authdomain.Service
	chatSvc      chatdomain.Service
	communitySvc communitydomain.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Log          *zap.Logger
	Codec        *token.Codec
	AuthSvc      authdomain.Service
	ChatSvc      chatdomain.Service
	CommunitySvc communitydomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		log:          p.Log.Named("server"),
		codec:        p.Codec,
		authSvc:      p.AuthSvc,
		chatSvc:      p.ChatSvc,
		communitySvc: p.CommunitySvc,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func registerRoutes(s *Server) {
	s.RegisterRoutes()
}

// RegisterRoutes mounts the API surface.
func (s *Server) RegisterRoutes() {
	api := s.engine.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/firebase", s.BindIdentity)
	auth.GET("/me", s.AuthRequired(), s.Me)
	auth.POST("/logout", s.Logout)
	auth.POST("/forgot-password", s.ForgotPassword)

	chats := api.Group("/chats", s.AuthRequired())
	chats.GET("", s.ListChats)
	chats.GET("/:id", s.GetChat)
	chats.POST("", s.CreateChat)
	chats.PUT("/:id", s.UpdateChat)
	chats.DELETE("/:id", s.DeleteChat)

	community := api.Group("/community")
	community.GET("", s.OptionalAuth(), s.ListCommunityPosts)
	community.POST("", s.AuthRequired(), s.CreateCommunityPost)
	community.DELETE("/:id", s.AuthRequired(), s.DeleteCommunityPost)
}
