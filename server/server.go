package server

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voicedetect"
)

// Version is reported by the health and root endpoints.
const Version = "1.0.0"

// Config holds the HTTP-layer settings.
type Config struct {
	// APIKey is the shared secret expected in the x-api-key header.
	APIKey string
}

// Server wires a Detector into HTTP handlers.
type Server struct {
	detector *voicedetect.Detector
	cfg      Config
}

// New creates the HTTP layer around an already-constructed detector.
func New(detector *voicedetect.Detector, cfg Config) *Server {
	return &Server{detector: detector, cfg: cfg}
}

// Router builds the gin engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	r.GET("/", s.handleRoot)

	api := r.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.POST("/voice-detection", s.requireAPIKey(), s.handleDetection)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Server.Router",
		"strategy": s.detector.Strategy(),
	}).Info("HTTP routes registered")

	return r
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(200, gin.H{
		"name":    "AI Voice Detection API",
		"version": Version,
		"endpoints": gin.H{
			"voice_detection": "/api/voice-detection",
			"health":          "/api/health",
		},
		"supported_languages": s.detector.Languages(),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":              "healthy",
		"version":             Version,
		"supported_languages": s.detector.Languages(),
	})
}
