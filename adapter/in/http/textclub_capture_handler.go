package http

import (
	"textclub_server/core/service/spam"
	"textclub_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CaptureHandler exposes the spam capture pipeline.
type CaptureHandler struct {
	captureService *spam.CaptureService
}

// NewCaptureHandler creates a new capture handler.
func NewCaptureHandler(captureService *spam.CaptureService) *CaptureHandler {
	return &CaptureHandler{captureService: captureService}
}

// Register registers capture routes.
func (h *CaptureHandler) Register(router fiber.Router) {
	spamGroup := router.Group("/spam")

	spamGroup.Post("/capture", h.RunCapture)
	spamGroup.Get("/capture/stats", h.CaptureStats)
}

// RunCapture triggers one synchronous capture run and returns its report.
func (h *CaptureHandler) RunCapture(c *fiber.Ctx) error {
	if h.captureService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Capture service not available")
	}

	report, err := h.captureService.Run(c.Context())
	if err != nil {
		return err
	}

	return response.OK(c, report)
}

// CaptureStats returns run duration statistics.
func (h *CaptureHandler) CaptureStats(c *fiber.Ctx) error {
	if h.captureService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Capture service not available")
	}

	return response.OK(c, h.captureService.Latency().ToMap())
}
