// Package httpserver manages server creation and routing.
package httpserver

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/cheque-desk/internal/chequedelivery"
	"github.com/go-petr/cheque-desk/internal/chequerepo"
	"github.com/go-petr/cheque-desk/internal/chequeservice"
	"github.com/go-petr/cheque-desk/internal/domain"
	"github.com/go-petr/cheque-desk/internal/middleware"
	"github.com/go-petr/cheque-desk/internal/userdelivery"
	"github.com/go-petr/cheque-desk/internal/userrepo"
	"github.com/go-petr/cheque-desk/internal/userservice"
	"github.com/go-petr/cheque-desk/internal/view"
	"github.com/go-petr/cheque-desk/pkg/configpkg"
	"github.com/go-petr/cheque-desk/pkg/tokenpkg"
	"github.com/go-petr/cheque-desk/pkg/web"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB         *sql.DB
	Engine     *gin.Engine
	Config     configpkg.Config
	TokenMaker tokenpkg.Maker
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	tokenMaker, err := tokenpkg.NewMaker(config.TokenKind, config.TokenSymmetricKey)
	if err != nil {
		return nil, fmt.Errorf("cannot create token maker: %w", err)
	}

	loginLimiter, err := middleware.NewLimiter(config.LoginRateLimit)
	if err != nil {
		return nil, fmt.Errorf("cannot create login rate limiter: %w", err)
	}

	userRepo := userrepo.NewRepoPGS(conn)
	chequeRepo := chequerepo.NewRepoPGS(conn)

	userService := userservice.New(userRepo)
	chequeService := chequeservice.New(chequeRepo)

	userHandler := userdelivery.NewHandler(userService, tokenMaker, config)
	chequeHandler := chequedelivery.NewHandler(chequeService)

	engine := gin.New()

	// Nil trusts no proxy, so ClientIP is the peer address.
	if err := engine.SetTrustedProxies(config.TrustedProxies); err != nil {
		return nil, fmt.Errorf("cannot set trusted proxies: %w", err)
	}

	if err := view.Load(engine); err != nil {
		return nil, fmt.Errorf("cannot load templates: %w", err)
	}

	engine.Use(middleware.RequestLogger(logger))

	server := &Server{
		DB:         conn,
		Engine:     engine,
		Config:     config,
		TokenMaker: tokenMaker,
	}

	engine.GET("/healthz", server.health)
	engine.GET("/", func(gctx *gin.Context) {
		gctx.Redirect(http.StatusSeeOther, chequedelivery.ListPath)
	})

	engine.GET(userdelivery.LoginPath, userHandler.LoginForm)
	engine.POST(userdelivery.LoginPath, middleware.RateLimit(loginLimiter), userHandler.Login)
	engine.POST("/logout", userHandler.Logout)

	cheques := engine.Group(chequedelivery.ListPath, middleware.AuthMiddleware(tokenMaker))

	cheques.GET("", middleware.RequirePermission(domain.OpList), chequeHandler.List)
	cheques.GET("/new", middleware.RequirePermission(domain.OpCreate), chequeHandler.NewForm)
	cheques.POST("", middleware.RequirePermission(domain.OpCreate), chequeHandler.Create)
	cheques.GET("/:id", middleware.RequirePermission(domain.OpDetails), chequeHandler.Details)
	cheques.GET("/:id/edit", middleware.RequirePermission(domain.OpUpdate), chequeHandler.EditForm)
	cheques.POST("/:id", middleware.RequirePermission(domain.OpUpdate), chequeHandler.Update)
	cheques.GET("/:id/delete", middleware.RequirePermission(domain.OpDelete), chequeHandler.DeleteForm)
	cheques.POST("/:id/delete", middleware.RequirePermission(domain.OpDelete), chequeHandler.Delete)
	cheques.GET("/:id/print", middleware.RequirePermission(domain.OpPrint), chequeHandler.Print)

	engine.NoRoute(func(gctx *gin.Context) {
		web.RenderError(gctx, http.StatusNotFound, fmt.Errorf("Page %s not found", gctx.Request.URL.Path))
	})

	return server, nil
}

func (s *Server) health(gctx *gin.Context) {
	if err := s.DB.PingContext(gctx.Request.Context()); err != nil {
		l := zerolog.Ctx(gctx.Request.Context())
		l.Error().Err(err).Msg("database ping failed")

		gctx.JSON(http.StatusServiceUnavailable, web.Response{Error: "database unavailable"})

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: gin.H{"status": "ok"}})
}
