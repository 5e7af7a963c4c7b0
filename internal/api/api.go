package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kiliankoe/numberhunter/internal/config"
	"github.com/kiliankoe/numberhunter/internal/game"
	"github.com/rs/zerolog/log"
)

const hostTokenHeader = "X-Host-Token"

type Handler struct {
	RM  *game.RoomManager
	cfg config.Config
}

func New(rm *game.RoomManager, cfg config.Config) *Handler {
	return &Handler{RM: rm, cfg: cfg}
}

type createReq struct {
	Config game.SessionConfig `json:"config"`
}

type configureReq struct {
	TargetCount int `json:"targetCount"`
	Width       int `json:"width"`
	Height      int `json:"height"`
	// Viewport dimensions are converted to a play area when width and
	// height are not given.
	ViewportWidth  int `json:"viewportWidth"`
	ViewportHeight int `json:"viewportHeight"`
}

type clickReq struct {
	TargetID string `json:"targetId" binding:"required"`
}

// Register mounts the health check and the session API.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC(), "sessions": h.RM.Len()})
	})

	api := r.Group("/api/session")
	api.GET("/active", h.active)

	create := []gin.HandlerFunc{h.create}
	if h.cfg.AuthEnabled() {
		create = append([]gin.HandlerFunc{gin.BasicAuth(gin.Accounts{h.cfg.HostUser: h.cfg.HostPass})}, create...)
	}
	api.POST("", create...)

	api.GET("/:code", h.withSession, h.state)
	api.GET("/:code/results", h.withSession, h.results)

	host := api.Group("/:code", h.withSession, h.requireHost)
	host.POST("/configure", h.configure)
	host.POST("/start", h.start)
	host.POST("/click", h.click)
	host.POST("/autoplay", h.autoplay)
	host.POST("/restart", h.restart)
	host.DELETE("", h.close)
}

func (h *Handler) active(c *gin.Context) {
	if code, sess := h.RM.Active(); sess != nil {
		c.JSON(http.StatusOK, gin.H{"sessionCode": code})
		return
	}
	c.Status(http.StatusNotFound)
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_config"})
			return
		}
	}
	if req.Config.TargetCount == 0 {
		req.Config.TargetCount = h.cfg.DefaultTargetCount
	}
	code, hostToken, err := h.RM.CreateSession(req.Config)
	if err != nil {
		abortErr(c, err)
		return
	}
	log.Info().Str("code", code).Msg("api: session created")
	c.JSON(http.StatusOK, gin.H{"sessionCode": code, "hostToken": hostToken})
}

func (h *Handler) state(c *gin.Context) {
	c.JSON(http.StatusOK, session(c).Round.Snapshot())
}

func (h *Handler) results(c *gin.Context) {
	s := session(c)
	out := gin.H{"results": s.Results()}
	if best, ok := s.Best(); ok {
		out["best"] = best
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) configure(c *gin.Context) {
	var req configureReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	w, ht := req.Width, req.Height
	if (w == 0 || ht == 0) && req.ViewportWidth > 0 && req.ViewportHeight > 0 {
		a := game.PlayArea(req.ViewportWidth, req.ViewportHeight)
		w, ht = a.Width, a.Height
	}
	s := session(c)
	if err := s.Round.Configure(req.TargetCount, w, ht); err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Round.Snapshot())
}

func (h *Handler) start(c *gin.Context) {
	s := session(c)
	started := s.Round.Start()
	c.JSON(http.StatusOK, gin.H{"started": started, "state": s.Round.Snapshot()})
}

func (h *Handler) click(c *gin.Context) {
	var req clickReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	res := session(c).Round.Click(req.TargetID)
	c.JSON(http.StatusOK, gin.H{"result": res})
}

func (h *Handler) autoplay(c *gin.Context) {
	on := session(c).Round.ToggleAutoPlay()
	c.JSON(http.StatusOK, gin.H{"autoPlay": on})
}

func (h *Handler) restart(c *gin.Context) {
	s := session(c)
	s.Round.Restart()
	c.JSON(http.StatusOK, s.Round.Snapshot())
}

func (h *Handler) close(c *gin.Context) {
	if err := h.RM.Close(c.Param("code")); err != nil {
		abortErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) withSession(c *gin.Context) {
	s, err := h.RM.Get(c.Param("code"))
	if err != nil {
		abortErr(c, err)
		return
	}
	c.Set("session", s)
	c.Next()
}

func (h *Handler) requireHost(c *gin.Context) {
	if err := session(c).Authorize(c.GetHeader(hostTokenHeader)); err != nil {
		abortErr(c, err)
		return
	}
	c.Next()
}

func session(c *gin.Context) *game.Session {
	return c.MustGet("session").(*game.Session)
}

func abortErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, game.ErrSessionNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "session_not_found"})
	case errors.Is(err, game.ErrNotHost):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not_host"})
	case errors.Is(err, game.ErrInvalidPhase):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "invalid_phase"})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("api error")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal"})
	}
}
