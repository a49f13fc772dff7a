package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stitts-dev/football-site/internal/providers"
	"github.com/stitts-dev/football-site/pkg/utils"
)

// sendProviderError maps a football API failure onto the response envelope.
func sendProviderError(c *gin.Context, err error) {
	_ = c.Error(err)
	message := providers.UserMessage(err)

	if errors.Is(err, providers.ErrUnknownLeague) {
		utils.SendValidationError(c, "Unknown league", err.Error())
		return
	}

	var netErr *providers.NetworkError
	if errors.As(err, &netErr) {
		utils.SendUpstreamError(c, utils.ErrCodeUnavailable, message)
		return
	}

	switch providers.StatusCode(err) {
	case 0:
		utils.SendInternalError(c, message)
	case http.StatusTooManyRequests:
		utils.SendUpstreamError(c, utils.ErrCodeRateLimited, message)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		utils.SendUpstreamError(c, utils.ErrCodeUnavailable, message)
	case http.StatusNotFound:
		utils.SendNotFound(c, message)
	default:
		utils.SendUpstreamError(c, utils.ErrCodeUpstream, message)
	}
}
