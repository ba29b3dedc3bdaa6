package handler

import (
	"errors"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/strideworks/sprintline/internal/analysis"
	"github.com/strideworks/sprintline/internal/api/models"
	"github.com/strideworks/sprintline/internal/database"
	"github.com/strideworks/sprintline/internal/engine"
)

// UploadVideo stages one segment video for the authenticated runner. The
// segment is taken from the path, the video from the "video" form file.
func (h *Handler) UploadVideo(c *gin.Context) {
	user := currentUser(c)

	file, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "video file is required"})
		return
	}

	src, err := file.Open()
	if err != nil {
		log.Error("failed to open uploaded file", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	defer src.Close() //nolint:errcheck

	staged, err := h.engine.IngestVideo(c.Request.Context(), user.ID, c.Param("segment"), engine.Upload{
		FileName: file.Filename,
		Size:     file.Size,
		Content:  src,
	})
	if err != nil {
		switch {
		case errors.Is(err, analysis.ErrUnknownSegment):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown segment"})
		case errors.Is(err, engine.ErrUploadTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "video exceeds the maximum allowed size"})
		case errors.Is(err, engine.ErrUnsupportedFormat):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported video format"})
		default:
			log.Error("failed to stage upload", "runner", user.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"segment":  staged.Segment,
		"fileName": staged.FileName,
		"fileSize": staged.FileSize,
	})
}

// UploadStatus reports which segments the runner has staged.
func (h *Handler) UploadStatus(c *gin.Context) {
	user := currentUser(c)

	state, err := h.engine.UploadState(c.Request.Context(), user.ID)
	if err != nil {
		log.Error("failed to load upload state", "runner", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load upload state"})
		return
	}

	complete := true
	for _, staged := range state {
		complete = complete && staged
	}
	c.JSON(http.StatusOK, models.UploadStatus{Segments: state, Complete: complete})
}

// DiscardUploads drops the runner's staged uploads.
func (h *Handler) DiscardUploads(c *gin.Context) {
	user := currentUser(c)

	if err := h.engine.DiscardUploads(c.Request.Context(), user.ID); err != nil {
		log.Error("failed to discard uploads", "runner", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to discard uploads"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CompleteSession turns the runner's four staged uploads into a stored
// session and returns its listing row.
func (h *Handler) CompleteSession(c *gin.Context) {
	user := currentUser(c)

	session, err := h.engine.CompleteSession(c.Request.Context(), user.ID)
	if err != nil {
		if errors.Is(err, database.ErrIncompleteSession) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "all four segment videos must be uploaded first"})
			return
		}
		log.Error("failed to complete session", "runner", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to complete session"})
		return
	}

	h.statsCache.Delete(statsCacheKey(user.ID))

	c.JSON(http.StatusCreated, gin.H{"session": models.ToSessionItem(*session)})
}

// ServeVideo streams a stored segment video of a session.
func (h *Handler) ServeVideo(c *gin.Context) {
	user := currentUser(c)

	session, ok := h.loadSessionChecked(c, user)
	if !ok {
		return
	}

	segment := c.Param("segment")
	for _, video := range session.Videos {
		if video.Segment == segment {
			if _, err := os.Stat(video.StoragePath); err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "video file is no longer available"})
				return
			}
			c.FileAttachment(video.StoragePath, video.FileName)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "no video for this segment"})
}
