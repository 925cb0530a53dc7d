package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tourism-service/internal/service"
)

// CertificatesHandler serves public certificate verification.
type CertificatesHandler struct {
	certificates *service.CertificateService
}

// NewCertificatesHandler constructs handler.
func NewCertificatesHandler(certificates *service.CertificateService) *CertificatesHandler {
	return &CertificatesHandler{certificates: certificates}
}

// Verify handles GET /tourism_certificate/:id.
func (h *CertificatesHandler) Verify(c *fiber.Ctx) error {
	cert, err := h.certificates.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"certificate":      cert,
			"verification_url": h.certificates.VerificationURL(cert.TourismCertID),
		},
	})
}
