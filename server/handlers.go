package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voicedetect"
	"github.com/opd-ai/voicedetect/audio"
	"github.com/opd-ai/voicedetect/features"
)

// detectionRequest is the detection endpoint's input contract.
type detectionRequest struct {
	Language    string `json:"language" binding:"required"`
	AudioFormat string `json:"audioFormat" binding:"omitempty,oneof=mp3 wav"`
	AudioBase64 string `json:"audioBase64" binding:"required,min=100"`
}

func errorEnvelope(message string) gin.H {
	return gin.H{"status": "error", "message": message}
}

func (s *Server) handleDetection(c *gin.Context) {
	var req detectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorEnvelope("Invalid request: "+err.Error()))
		return
	}

	result, err := s.detector.Detect(req.AudioBase64, req.Language)
	if err != nil {
		status, message := mapDetectError(err)
		logrus.WithFields(logrus.Fields{
			"function": "handleDetection",
			"language": req.Language,
			"status":   status,
			"error":    err.Error(),
		}).Error("Detection request failed")
		c.JSON(status, errorEnvelope(message))
		return
	}

	c.JSON(http.StatusOK, result)
}

// mapDetectError translates pipeline sentinels into HTTP semantics: client
// input problems are 400, internal processing faults are 500.
func mapDetectError(err error) (int, string) {
	switch {
	case errors.Is(err, voicedetect.ErrLanguage):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, audio.ErrDecode):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, audio.ErrAudioLoad):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, features.ErrExtraction):
		return http.StatusInternalServerError, "Processing error: " + err.Error()
	default:
		return http.StatusInternalServerError, "Processing error: " + err.Error()
	}
}
