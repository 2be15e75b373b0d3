package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"resourcefinda/internal/render"
)

const reloadPath = "/api/reload"

type healthResponse struct {
	Status   string     `json:"status"`
	Version  string     `json:"version,omitempty"`
	Records  int        `json:"records"`
	LoadedAt *time.Time `json:"loaded_at,omitempty"`
	Error    string     `json:"error,omitempty"`
}

func (s *Server) currentView() (render.View, error) {
	snap := s.refresher.Store().Current()
	return render.Render(snap.State, s.cfg.Render), snap.LastError
}

func (s *Server) handleIndex(c *gin.Context) {
	view, lastErr := s.currentView()

	var buf bytes.Buffer
	err := render.HTML(&buf, render.Page{
		View:      view,
		Error:     bannerMessage(lastErr),
		ReloadURL: reloadPath,
	})
	if err != nil {
		log.WithError(err).Error("Failed to render map page")
		c.String(http.StatusInternalServerError, "failed to render map")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) handleView(c *gin.Context) {
	view, _ := s.currentView()
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleGeoJSON(c *gin.Context) {
	view, _ := s.currentView()
	data, err := json.Marshal(render.GeoJSON(view))
	if err != nil {
		log.WithError(err).Error("Failed to encode GeoJSON")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to encode facilities", Kind: "internal"})
		return
	}
	c.Data(http.StatusOK, "application/geo+json", data)
}

// handleReload runs a load for the optional q parameter and returns the resulting view.
// The load outlives a disconnecting client; the refresher bounds it with LOAD_TIMEOUT.
func (s *Server) handleReload(c *gin.Context) {
	q := c.Query("q")
	ctx := context.WithoutCancel(c.Request.Context())
	if err := s.refresher.Refresh(ctx, q); err != nil {
		status, resp := describeLoadError(err)
		c.JSON(status, resp)
		return
	}
	view, _ := s.currentView()
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleHealth(c *gin.Context) {
	snap := s.refresher.Store().Current()
	resp := healthResponse{
		Status:  "ok",
		Version: s.cfg.Version,
		Records: len(snap.State.Records),
		Error:   bannerMessage(snap.LastError),
	}
	if !snap.State.LoadedAt.IsZero() {
		loadedAt := snap.State.LoadedAt
		resp.LoadedAt = &loadedAt
	}
	if snap.LastError != nil {
		resp.Status = "degraded"
	}
	c.JSON(http.StatusOK, resp)
}
