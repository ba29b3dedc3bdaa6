package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/strideworks/sprintline/internal/analysis"
	"github.com/strideworks/sprintline/internal/database"
)

var (
	// ErrUploadTooLarge is returned when an upload exceeds the configured size limit.
	ErrUploadTooLarge = errors.New("upload exceeds maximum allowed size")
	// ErrUnsupportedFormat is returned for video files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported video format")
)

// Upload describes an incoming segment video.
type Upload struct {
	FileName string
	Size     int64
	Content  io.Reader
}

// IngestVideo validates and stores one segment video for a runner and stages
// it for session completion. Re-uploading a segment replaces the previous
// file.
func (e *Engine) IngestVideo(ctx context.Context, runnerID uint, segmentLabel string, upload Upload) (*database.PendingUpload, error) {
	segment, err := analysis.ParseSegment(segmentLabel)
	if err != nil {
		return nil, err
	}

	if upload.Size > e.cfg.Uploads.MaxSize {
		return nil, ErrUploadTooLarge
	}

	ext := strings.ToLower(filepath.Ext(upload.FileName))
	if !lo.Contains(e.cfg.Uploads.AllowedExtensions, ext) {
		return nil, ErrUnsupportedFormat
	}

	storagePath := filepath.Join(e.cfg.Uploads.Dir, uuid.NewString()+ext)
	written, err := e.storeFile(storagePath, upload.Content)
	if err != nil {
		return nil, err
	}
	if written > e.cfg.Uploads.MaxSize {
		_ = os.Remove(storagePath)
		return nil, ErrUploadTooLarge
	}

	staged := database.PendingUpload{
		RunnerID:    runnerID,
		Segment:     segment.String(),
		FileName:    filepath.Base(upload.FileName),
		StoragePath: storagePath,
		FileSize:    written,
		UploadedAt:  time.Now(),
	}

	previousPath, err := e.db.StageUpload(ctx, staged)
	if err != nil {
		_ = os.Remove(storagePath)
		return nil, err
	}
	if previousPath != "" {
		if err := os.Remove(previousPath); err != nil && !os.IsNotExist(err) {
			log.Warn("failed to remove replaced upload file", "path", previousPath, "error", err)
		}
	}

	log.Info("staged segment video", "runner", runnerID, "segment", segment, "size", written)
	return &staged, nil
}

// storeFile writes the upload to disk, capped at one byte over the limit so
// oversized streams are detected without buffering them fully.
func (e *Engine) storeFile(path string, content io.Reader) (int64, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return 0, fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	written, err := io.Copy(f, io.LimitReader(content, e.cfg.Uploads.MaxSize+1))
	if err != nil {
		_ = os.Remove(path)
		return 0, fmt.Errorf("failed to store upload: %w", err)
	}
	return written, nil
}

// UploadState reports which segments a runner has staged.
func (e *Engine) UploadState(ctx context.Context, runnerID uint) (map[string]bool, error) {
	uploads, err := e.db.StagedUploads(ctx, runnerID)
	if err != nil {
		return nil, err
	}
	state := make(map[string]bool, len(analysis.Segments))
	for _, segment := range analysis.Segments {
		state[segment.String()] = false
	}
	for _, u := range uploads {
		state[u.Segment] = true
	}
	return state, nil
}

// DiscardUploads drops a runner's staged uploads and their files.
func (e *Engine) DiscardUploads(ctx context.Context, runnerID uint) error {
	paths, err := e.db.DeleteStagedUploads(ctx, runnerID)
	if err != nil {
		return err
	}
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn("failed to remove discarded upload file", "path", path, "error", err)
		}
	}
	return nil
}
