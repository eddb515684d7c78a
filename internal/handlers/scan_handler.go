package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-application-tracker/internal/dtos"
	"github.com/justsurfingit/job-application-tracker/internal/services"
)

// ScanHandler fills the new-application form from a job posting link.
type ScanHandler struct {
	Scanner *services.ScanService
}

func NewScanHandler(scanner *services.ScanService) *ScanHandler {
	return &ScanHandler{Scanner: scanner}
}

// Scan is POST /scan
func (h *ScanHandler) Scan(c *gin.Context) {
	var req dtos.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": services.ScanMessage(services.ErrInvalidScanURL)})
		return
	}

	res, err := h.Scanner.Scan(c.Request.Context(), req.URL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.ScanResponse{
		Company:  res.Company,
		Role:     res.Role,
		Location: res.Location,
		Filled:   res.Filled,
	})
}

// ScanLocation is POST /scan/location
func (h *ScanHandler) ScanLocation(c *gin.Context) {
	var req dtos.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": services.ScanMessage(services.ErrInvalidScanURL)})
		return
	}

	res, err := h.Scanner.ScanLocation(c.Request.Context(), req.URL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.ScanResponse{Location: res.Location, Filled: res.Filled})
}
