package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-application-tracker/internal/dtos"
	"github.com/justsurfingit/job-application-tracker/internal/lifecycle"
	"github.com/justsurfingit/job-application-tracker/internal/middleware"
	"github.com/justsurfingit/job-application-tracker/internal/services"
)

type ApplicationHandler struct {
	Applications *services.ApplicationService
	Notion       *services.NotionService
}

func NewApplicationHandler(apps *services.ApplicationService, notion *services.NotionService) *ApplicationHandler {
	return &ApplicationHandler{Applications: apps, Notion: notion}
}

// Board is GET /applications?sort=&dir=
func (h *ApplicationHandler) Board(c *gin.Context) {
	key, dir, err := boardOrder(c)
	if err != nil {
		respondError(c, err)
		return
	}

	board, err := h.Applications.Board(c.Request.Context(), middleware.AccountID(c), key, dir)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.NewBoardResponse(board, key, dir))
}

// Create is POST /applications
func (h *ApplicationHandler) Create(c *gin.Context) {
	var req dtos.ApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	draft, err := req.Draft()
	if err != nil {
		respondError(c, err)
		return
	}

	app, err := h.Applications.Create(c.Request.Context(), middleware.AccountID(c), draft)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dtos.NewApplicationResponse(app))
}

func (h *ApplicationHandler) Get(c *gin.Context) {
	app, err := h.Applications.Get(c.Request.Context(), middleware.AccountID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.NewApplicationResponse(app))
}

// Update is PUT /applications/:id. Status and archive state are untouched.
func (h *ApplicationHandler) Update(c *gin.Context) {
	var req dtos.ApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	draft, err := req.Draft()
	if err != nil {
		respondError(c, err)
		return
	}

	app, err := h.Applications.Update(c.Request.Context(), middleware.AccountID(c), c.Param("id"), draft)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.NewApplicationResponse(app))
}

// UpdateStatus is PATCH /applications/:id/status
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	var req dtos.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	app, err := h.Applications.UpdateStatus(c.Request.Context(), middleware.AccountID(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.NewApplicationResponse(app))
}

// Archive is POST /applications/:id/archive. The body is optional.
func (h *ApplicationHandler) Archive(c *gin.Context) {
	var req dtos.ArchiveRequest
	// the body is optional; an empty one means no notes
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
			return
		}
	}

	app, err := h.Applications.Archive(c.Request.Context(), middleware.AccountID(c), c.Param("id"), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.NewApplicationResponse(app))
}

// Events is GET /applications/:id/events
func (h *ApplicationHandler) Events(c *gin.Context) {
	events, err := h.Applications.Events(c.Request.Context(), middleware.AccountID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.NewEventList(events))
}

// ExportNotion is POST /applications/:id/notion
func (h *ApplicationHandler) ExportNotion(c *gin.Context) {
	pageID, err := h.Notion.ExportApplication(c.Request.Context(), middleware.AccountID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notion_page_id": pageID})
}

// Stats is GET /stats
func (h *ApplicationHandler) Stats(c *gin.Context) {
	stats, err := h.Applications.Stats(c.Request.Context(), middleware.AccountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// boardOrder reads ?sort=&dir=. Without a sort the board opens newest
// application first; sort=none keeps storage order.
func boardOrder(c *gin.Context) (lifecycle.SortKey, lifecycle.Direction, error) {
	key := lifecycle.SortDateApplied
	if raw, ok := c.GetQuery("sort"); ok {
		var err error
		if key, err = lifecycle.ParseSortKey(raw); err != nil {
			return key, "", err
		}
	}
	dir, err := lifecycle.ParseDirection(c.Query("dir"))
	return key, dir, err
}
