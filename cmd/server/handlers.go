package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gemlab/spectraldna/pkg/logger"
	"github.com/gemlab/spectraldna/pkg/models"
	"github.com/gemlab/spectraldna/pkg/spectraldna"
	"github.com/gemlab/spectraldna/pkg/spectraldna/fingerprint"
	"github.com/gemlab/spectraldna/pkg/spectraldna/reading"
)

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service spectraldna.Service
	config  *ServerConfig
	log     spectraldna.Logger
	engine  *gin.Engine
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Addr           string
	Database       string // shown on the metrics endpoint
	AllowedOrigins []string
}

// NewServer creates a new server instance with its routes registered.
func NewServer(service spectraldna.Service, config *ServerConfig) *Server {
	s := &Server{
		service: service,
		config:  config,
		log:     logger.GetLogger().With("component", "http"),
	}
	s.engine = s.setupRoutes()
	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// respondError writes an error response
func (s *Server) respondError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// respondServiceError maps service errors onto status codes.
func (s *Server) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, fingerprint.ErrInvalidInput):
		s.respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, spectraldna.ErrNotFound):
		s.respondError(c, http.StatusNotFound, err.Error())
	default:
		s.log.Errorf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		s.respondError(c, http.StatusInternalServerError, "internal error")
	}
}

// bindReading decodes a reading document from the request body with the
// same strict decoder the CLI uses, so unknown keys are rejected.
func (s *Server) bindReading(c *gin.Context) (fingerprint.RawMeasurement, bool) {
	m, err := reading.Decode(c.Request.Body)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, fmt.Sprintf("invalid reading: %v", err))
		return fingerprint.RawMeasurement{}, false
	}
	return m, true
}

// handleRoot handles GET /
func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "SpectralDNA API",
		"version": "1.0.0",
		"endpoints": gin.H{
			"health":               "GET /health",
			"metrics":              "GET /api/health/metrics",
			"fingerprint":          "POST /api/fingerprint",
			"register":             "POST /api/samples",
			"samples":              "GET /api/samples",
			"getSample":            "GET /api/samples/:id",
			"deleteSample":         "DELETE /api/samples/:id",
			"getSampleFingerprint": "GET /api/fingerprints/:fingerprint",
			"verify":               "POST /api/verify",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleMetrics handles GET /api/health/metrics
func (s *Server) handleMetrics(c *gin.Context) {
	stats, err := s.service.Stats()
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MetricsResponse{
		Status:       "healthy",
		Database:     s.config.Database,
		SampleCount:  stats.Samples,
		MineralClass: stats.MineralClass,
		Algorithm:    stats.Algorithm,
		Rounding:     stats.Rounding,
	})
}

// handleFingerprint handles POST /api/fingerprint
func (s *Server) handleFingerprint(c *gin.Context) {
	raw, ok := s.bindReading(c)
	if !ok {
		return
	}
	res, err := s.service.Fingerprint(c.Request.Context(), raw)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newFingerprintResponse(res))
}

// handleRegister handles POST /api/samples
func (s *Server) handleRegister(c *gin.Context) {
	raw, ok := s.bindReading(c)
	if !ok {
		return
	}
	reg, err := s.service.Register(c.Request.Context(), raw)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}

	resp := RegisterResponse{
		Existing: reg.Existing,
		Sample:   newSampleDTO(reg.Sample, nil),
		Result:   newFingerprintResponse(reg.Result),
	}
	if reg.Attestation != nil {
		dto := newAttestationDTO(*reg.Attestation)
		resp.Attestation = &dto
	}

	status := http.StatusCreated
	if reg.Existing {
		status = http.StatusOK
	}
	c.JSON(status, resp)
}

// handleVerify handles POST /api/verify
func (s *Server) handleVerify(c *gin.Context) {
	raw, ok := s.bindReading(c)
	if !ok {
		return
	}
	v, err := s.service.Verify(c.Request.Context(), raw)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}

	resp := VerifyResponse{
		Matched:  v.Matched,
		Attested: v.Attested,
		Result:   newFingerprintResponse(v.Result),
	}
	if v.Sample != nil {
		dto := newSampleDTO(*v.Sample, nil)
		resp.Sample = &dto
	}
	c.JSON(http.StatusOK, resp)
}

// handleListSamples handles GET /api/samples
func (s *Server) handleListSamples(c *gin.Context) {
	samples, err := s.service.ListSamples()
	if err != nil {
		s.respondServiceError(c, err)
		return
	}

	dtos := make([]SampleDTO, len(samples))
	for i, sample := range samples {
		dtos[i] = newSampleDTO(sample, nil)
	}
	c.JSON(http.StatusOK, ListSamplesResponse{
		Samples: dtos,
		Count:   len(dtos),
	})
}

// handleGetSample handles GET /api/samples/:id
func (s *Server) handleGetSample(c *gin.Context) {
	sample, err := s.service.GetSample(c.Param("id"))
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	s.respondSample(c, sample)
}

// handleGetSampleByFingerprint handles GET /api/fingerprints/:fingerprint
func (s *Server) handleGetSampleByFingerprint(c *gin.Context) {
	sample, err := s.service.GetSampleByFingerprint(strings.TrimSpace(c.Param("fingerprint")))
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	s.respondSample(c, sample)
}

func (s *Server) respondSample(c *gin.Context, sample *models.Sample) {
	atts, err := s.service.Attestations(sample.ID)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSampleDTO(*sample, atts))
}

// handleDeleteSample handles DELETE /api/samples/:id
func (s *Server) handleDeleteSample(c *gin.Context) {
	id := c.Param("id")
	if err := s.service.DeleteSample(id); err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, DeleteSampleResponse{
		Message: "Sample deleted successfully",
		ID:      id,
	})
}
