package server

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/segmentio/ksuid"

	"storyagent/pkg/agent"
)

type Server struct {
	Echo      *echo.Echo
	Agent     *agent.Agent
	ProjectID string
}

func NewServer(a *agent.Agent, projectID string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{validate: validator.New()}

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return ksuid.New().String() },
	}))
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		Echo:      e,
		Agent:     a,
		ProjectID: projectID,
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/", s.handleGetRoot)
	s.Echo.GET("/health", s.handleGetHealth)
	s.Echo.GET("/stories/:storyId/context", s.handleGetStoryContext)

	s.Echo.POST("/agent/execute", s.handlePostExecute)
}

func (s *Server) Start(addr string) error {
	log.Info("server listening", "addr", addr, "backend", s.Agent.Backend())
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("shutting down server")
	return s.Echo.Shutdown(ctx)
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}
