package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-application-tracker/internal/auth"
	"github.com/justsurfingit/job-application-tracker/internal/lifecycle"
	"github.com/justsurfingit/job-application-tracker/internal/services"
)

// respondError maps a service error onto a status code and a JSON body.
func respondError(c *gin.Context, err error) {
	var verr *lifecycle.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please fix the highlighted fields.", "fields": verr.Fields})
	case errors.Is(err, lifecycle.ErrInvalidStatus), errors.Is(err, lifecycle.ErrInvalidSort):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidScanURL):
		c.JSON(http.StatusBadRequest, gin.H{"error": services.ScanMessage(err)})
	case errors.Is(err, services.ErrApplicationNotFound), errors.Is(err, services.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNothingExtracted), errors.Is(err, services.ErrExtractionFailed):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": services.ScanMessage(err)})
	case errors.Is(err, services.ErrExtractionUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": services.ScanMessage(err)})
	case errors.Is(err, services.ErrNotionDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Notion export is not available right now."})
	default:
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
	}
}

// respondAuthError is respondError for sign-in and sign-up, where every
// failure is shown on the form.
func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidEmail), errors.Is(err, services.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": services.FriendlyMessage(err)})
	case errors.Is(err, services.ErrAccountExists):
		c.JSON(http.StatusConflict, gin.H{"error": services.FriendlyMessage(err)})
	case errors.Is(err, services.ErrAccountNotFound),
		errors.Is(err, services.ErrIncorrectPassword),
		errors.Is(err, auth.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": services.FriendlyMessage(err)})
	default:
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": services.FriendlyMessage(err)})
	}
}
