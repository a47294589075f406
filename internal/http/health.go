package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// HealthController reports process liveness plus backend connectivity.
// The db is nil when the file-backed storage mode is active.
type HealthController struct {
	db      *gorm.DB
	mode    string
	version string
}

func NewHealthController(db *gorm.DB, mode, version string) *HealthController {
	return &HealthController{db: db, mode: mode, version: version}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := map[string]string{"storage_mode": h.mode}
	status := "healthy"

	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else if err := sqlDB.Ping(); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}
	c.IndentedJSON(statusCode, health)
}
