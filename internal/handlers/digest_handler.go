package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spendwise/internal/services"
)

// DigestHandler exposes the monthly digest job to internal callers.
type DigestHandler struct {
	digestService services.DigestServicer
}

// NewDigestHandler creates a new DigestHandler.
func NewDigestHandler(digestService services.DigestServicer) *DigestHandler {
	return &DigestHandler{digestService: digestService}
}

// RunMonthlyDigest runs the monthly digest immediately
// @Summary     Run monthly digest
// @Description Build and publish the digest of the month that just closed for every active user
// @Tags        internal
// @Produce     json
// @Security    ApiKeyAuth
// @Success     200 {object} services.DigestRun "Run summary"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Failure     503 {object} ErrorResponse "Internal jobs not configured"
// @Router      /internal/digests/run [post]
func (h *DigestHandler) RunMonthlyDigest(c *gin.Context) {
	run, err := h.digestService.RunMonthlyDigest(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}
