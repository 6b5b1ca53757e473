package http

import (
	"context"
	"fmt"
	stdhttp "net/http"

	"client-vault/internal/audit"
	"client-vault/internal/auth"
	"client-vault/internal/config"
	"client-vault/internal/http/handler"
	"client-vault/internal/http/middleware"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

const (
	jsonKeyStatus    = "status"
	statusOK         = "ok"
	requestBodyLimit = "1M"
	bytesPerMegabyte = 1 << 20
	routeMedia       = "/media"
)

// UserStore is everything the HTTP layer needs from the user repository.
type UserStore interface {
	handler.UserRepository
	handler.GoogleUserResolver
	handler.ClientLister
}

type ServerDependencies struct {
	Config     *config.Config
	Users      UserStore
	Assets     handler.AssetRepository
	Media      handler.MediaStore
	Hasher     handler.PasswordHasher
	JWTService *auth.JWTService
	// OAuth is nil when Google login is not configured.
	OAuth  handler.OAuthProvider
	States handler.StateStore
	// Audit may be nil; events are then dropped.
	Audit *audit.Logger
}

type Server struct {
	echo *echo.Echo
	deps *ServerDependencies
}

func NewServer(deps *ServerDependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = CustomHTTPErrorHandler

	e.Server.ReadTimeout = deps.Config.Server.ReadTimeout
	e.Server.WriteTimeout = deps.Config.Server.WriteTimeout

	metrics := middleware.NewMetrics()

	// Request ID middleware (first, so all logs have request ID)
	e.Use(middleware.RequestID())
	e.Use(metrics.Middleware())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{deps.Config.OAuth.FrontendURL},
		AllowMethods: []string{stdhttp.MethodGet, stdhttp.MethodPost, stdhttp.MethodDelete},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID},
	}))
	e.Use(echomiddleware.BodyLimitWithConfig(echomiddleware.BodyLimitConfig{
		Limit: requestBodyLimit,
		// Media uploads carry their own, larger limit.
		Skipper: func(c echo.Context) bool { return c.Path() == routeMedia },
	}))

	globalRateLimiter := middleware.NewGlobalRateLimiter()
	e.Use(globalRateLimiter.Middleware())

	// Strict rate limiting for credential endpoints
	strictRateLimiter := middleware.NewStrictRateLimiter()

	authMiddleware := auth.NewMiddleware(deps.JWTService)

	authHandler := handler.NewAuthHandler(deps.Users, deps.Hasher, deps.JWTService, deps.Audit)
	oauthHandler := handler.NewOAuthHandler(
		deps.OAuth,
		deps.States,
		deps.Users,
		deps.JWTService,
		deps.Config.OAuth.FrontendURL,
		deps.Config.OAuth.StateTTL,
	)
	userHandler := handler.NewUserHandler(deps.Users)
	assetHandler := handler.NewAssetHandler(deps.Assets, deps.Media, deps.Audit)
	mediaHandler := handler.NewMediaHandler(deps.Media, deps.Config.App.MaxUploadSize)

	e.POST("/users/register", authHandler.Register, strictRateLimiter.Middleware())
	e.POST("/users/login", authHandler.Login, strictRateLimiter.Middleware())
	e.GET("/auth/google", oauthHandler.Start)
	e.GET("/auth/google/callback", oauthHandler.Callback)
	e.GET("/health", healthCheck)

	requireJWT := authMiddleware.RequireJWT()

	e.GET("/auth/current-user", authHandler.CurrentUser, requireJWT)
	e.GET("/users", userHandler.ListClients, requireJWT, authMiddleware.RequireAdmin())
	e.GET("/metrics/requests", metrics.Handler, requireJWT, authMiddleware.RequireAdmin())

	e.GET("/assets", assetHandler.ListAssets, requireJWT)
	e.POST("/assets", assetHandler.CreateAsset, requireJWT)
	e.DELETE("/assets/:id", assetHandler.DeleteAsset, requireJWT)

	e.POST(routeMedia, mediaHandler.Upload, requireJWT, echomiddleware.BodyLimit(uploadBodyLimit(deps.Config.App.MaxUploadSize)))

	return &Server{
		echo: e,
		deps: deps,
	}
}

// uploadBodyLimit rounds the file limit up to whole megabytes and leaves one
// more for multipart framing.
func uploadBodyLimit(maxUploadSize int64) string {
	mb := (maxUploadSize + bytesPerMegabyte - 1) / bytesPerMegabyte
	return fmt.Sprintf("%dM", mb+1)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	err := s.echo.Shutdown(ctx)
	s.deps.Audit.Wait()
	return err
}

// Handler exposes the router, mainly for in-process tests.
func (s *Server) Handler() stdhttp.Handler {
	return s.echo
}

func healthCheck(c echo.Context) error {
	return c.JSON(stdhttp.StatusOK, map[string]string{
		jsonKeyStatus: statusOK,
	})
}
