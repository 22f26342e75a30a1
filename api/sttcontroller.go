package api

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"voxbridge/config"
	"voxbridge/pipeline"
)

// RegisterSTTRoutes registers the video upload and transcription endpoints.
func RegisterSTTRoutes(r *gin.Engine, cfg config.Config, runner *pipeline.Runner, log zerolog.Logger) {
	ctrl := &sttController{cfg: cfg, runner: runner, log: log}
	r.POST("/stt-video", ctrl.handleSTTVideo)
	r.POST("/upload-video", ctrl.handleUploadVideo)
}

type sttController struct {
	cfg    config.Config
	runner *pipeline.Runner
	log    zerolog.Logger
}

// STTResponse is the success payload: the full contents of both persisted
// artifacts plus run metadata.
type STTResponse struct {
	Transcription  string `json:"transcription"`
	Translation    string `json:"translation"`
	RunID          string `json:"run_id"`
	Filename       string `json:"filename"`
	SegmentCount   int    `json:"segment_count"`
	FailedSegments int    `json:"failed_segments"`
}

// handleSTTVideo runs the full pipeline on the uploaded video.
// POST /stt-video, multipart field "file".
func (s *sttController) handleSTTVideo(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing multipart field \"file\"", "stage": pipeline.StageUpload})
		return
	}

	src, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload: " + err.Error(), "stage": pipeline.StageUpload})
		return
	}
	defer src.Close()

	res, err := s.runner.Run(c.Request.Context(), fh.Filename, src)
	if err != nil {
		status := http.StatusInternalServerError
		var validationErr *pipeline.ValidationError
		if errors.As(err, &validationErr) {
			status = http.StatusBadRequest
		}

		stage := ""
		var stageErr *pipeline.StageError
		if errors.As(err, &stageErr) {
			stage = stageErr.Stage
		}

		c.JSON(status, gin.H{"error": err.Error(), "stage": stage})
		return
	}

	c.JSON(http.StatusOK, STTResponse{
		Transcription:  res.Transcription,
		Translation:    res.Translation,
		RunID:          res.RunID,
		Filename:       res.Filename,
		SegmentCount:   res.SegmentCount,
		FailedSegments: res.FailedSegments,
	})
}

// handleUploadVideo persists the uploaded video without transcribing it.
// POST /upload-video, multipart field "file".
func (s *sttController) handleUploadVideo(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing multipart field \"file\""})
		return
	}

	id := uuid.NewString()
	dst := filepath.Join(s.cfg.UploadDir, id, filepath.Base(fh.Filename))
	if err := c.SaveUploadedFile(fh, dst); err != nil {
		s.log.Error().Err(err).Str("path", dst).Msg("upload persist failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   fmt.Sprintf("file %s uploaded", fh.Filename),
		"upload_id": id,
	})
}
