package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hnakamur/ltsvlog"
	"github.com/hnakamur/remotesum/msg"
	"golang.org/x/net/context"
)

// Service is the coordinator as seen by the HTTP handlers.
type Service interface {
	SumArrays(ctx context.Context, a, b []int64) *msg.SumArraysReply
	Workers() []msg.WorkerState
}

type Handler struct {
	svc    Service
	logger ltsvlog.LogWriter
}

// NewHandler creates handlers serving svc.
func NewHandler(svc Service, logger ltsvlog.LogWriter) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes registers POST /sum and GET /workers on g.
func (h *Handler) RegisterRoutes(g *gin.RouterGroup) {
	g.POST("/sum", h.SumArrays)
	g.GET("/workers", h.Workers)
}

// SumArrays replies 200 for task failures too; the reply carries ok=false.
func (h *Handler) SumArrays(c *gin.Context) {
	var req msg.SumArraysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Err(ltsvlog.WrapErr(err, func(err error) error {
			return fmt.Errorf("bad sum request: %v", err)
		}).String("remoteAddr", c.ClientIP()).Stack(""))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	reply := h.svc.SumArrays(c.Request.Context(), req.A, req.B)
	c.JSON(http.StatusOK, reply)
}

func (h *Handler) Workers(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Workers())
}

// NewRouter returns a gin engine serving the coordinator API at the root.
func NewRouter(svc Service, logger ltsvlog.LogWriter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	NewHandler(svc, logger).RegisterRoutes(&r.RouterGroup)
	return r
}
