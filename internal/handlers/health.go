package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-application-tracker/internal/lifecycle"
)

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Statuses lists the pipeline in display order so clients never hardcode it.
func Statuses(c *gin.Context) {
	statuses := lifecycle.Statuses()
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	c.JSON(http.StatusOK, gin.H{"statuses": out})
}
