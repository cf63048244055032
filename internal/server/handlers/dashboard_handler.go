package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/mandi/internal/domain/models"
	"github.com/mamadbah2/mandi/internal/service/aggregator"
)

// DashboardService assembles dashboards.
type DashboardService interface {
	Dashboard(userID string) (models.Dashboard, error)
	DefaultDashboard() (models.Dashboard, error)
}

// DashboardHandler serves the landing page payload.
type DashboardHandler struct {
	svc    DashboardService
	logger *zap.Logger
}

// NewDashboardHandler constructs the dashboard handler.
func NewDashboardHandler(svc DashboardService, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{svc: svc, logger: logger}
}

// Default returns the dashboard of the default user.
func (h *DashboardHandler) Default(c *gin.Context) {
	dashboard, err := h.svc.DefaultDashboard()
	if err != nil {
		h.logger.Error("failed to build default dashboard", zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "failed to build dashboard")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// ForUser returns the dashboard of the user in the path.
func (h *DashboardHandler) ForUser(c *gin.Context) {
	dashboard, err := h.svc.Dashboard(c.Param("userId"))
	switch {
	case errors.Is(err, aggregator.ErrUserNotFound):
		errorJSON(c, http.StatusNotFound, "user not found")
		return
	case err != nil:
		h.logger.Error("failed to build dashboard", zap.Error(err), zap.String("user_id", c.Param("userId")))
		errorJSON(c, http.StatusInternalServerError, "failed to build dashboard")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
