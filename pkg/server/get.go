package server

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"storyagent/pkg/storycontext"
)

func (s *Server) handleGetRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service": "Story Agent API",
		"status":  "ok",
		"backend": string(s.Agent.Backend()),
	})
}

// GET /health
func (s *Server) handleGetHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":     "healthy",
		"project_id": s.ProjectID,
	})
}

// GET /stories/:storyId/context
func (s *Server) handleGetStoryContext(c echo.Context) error {
	storyID := c.Param("storyId")

	sc, err := s.Agent.StoryContext(c.Request().Context(), storyID)
	var notFound *storycontext.NotFoundError
	if errors.As(err, &notFound) {
		return c.JSON(http.StatusNotFound, failure(err.Error()))
	}
	if err != nil {
		log.Error("failed to build story context", "story", storyID, "err", err)
		return c.JSON(http.StatusInternalServerError, failure(err.Error()))
	}

	return c.JSON(http.StatusOK, Response{Success: true, Data: sc})
}
