package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/utpal74/track-my-tasks-api/model"
	"github.com/utpal74/track-my-tasks-api/service"
)

type StatsHandler struct {
	svc *service.StatsService
}

func NewStatsHandler(svc *service.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (handler *StatsHandler) GetStatsHandler(c *gin.Context, user *model.User) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	stats, err := handler.svc.Summary(ctx, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// StatusHandler answers liveness probes.
func StatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
