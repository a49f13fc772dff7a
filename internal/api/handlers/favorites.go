package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/football-site/internal/api/middleware"
	"github.com/stitts-dev/football-site/internal/favorites"
	"github.com/stitts-dev/football-site/internal/models"
	"github.com/stitts-dev/football-site/pkg/utils"
)

// ToggleResult is returned by the toggle endpoints.
type ToggleResult[T any] struct {
	Added     bool `json:"added"`
	Favorites []T  `json:"favorites"`
}

type FavoritesHandler struct {
	service *favorites.Service
	logger  *logrus.Logger
}

func NewFavoritesHandler(service *favorites.Service, logger *logrus.Logger) *FavoritesHandler {
	return &FavoritesHandler{service: service, logger: logger}
}

func (h *FavoritesHandler) GetPlayers(c *gin.Context) {
	list, err := h.service.Players(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.storeError(c, err, "Failed to load favorite players")
		return
	}
	utils.SendSuccess(c, list)
}

// TogglePlayer adds the posted player snapshot, or removes the player if already present.
func (h *FavoritesHandler) TogglePlayer(c *gin.Context) {
	var player models.FavoritePlayer
	if err := c.ShouldBindJSON(&player); err != nil {
		utils.SendValidationError(c, "Invalid player", err.Error())
		return
	}

	added, list, err := h.service.TogglePlayer(c.Request.Context(), middleware.SessionID(c), player)
	if err != nil {
		h.storeError(c, err, "Failed to update favorite players")
		return
	}
	utils.SendSuccess(c, ToggleResult[models.FavoritePlayer]{Added: added, Favorites: list})
}

func (h *FavoritesHandler) GetTeams(c *gin.Context) {
	list, err := h.service.Teams(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.storeError(c, err, "Failed to load favorite teams")
		return
	}
	utils.SendSuccess(c, list)
}

func (h *FavoritesHandler) ToggleTeam(c *gin.Context) {
	var team models.FavoriteTeam
	if err := c.ShouldBindJSON(&team); err != nil {
		utils.SendValidationError(c, "Invalid team", err.Error())
		return
	}

	added, list, err := h.service.ToggleTeam(c.Request.Context(), middleware.SessionID(c), team)
	if err != nil {
		h.storeError(c, err, "Failed to update favorite teams")
		return
	}
	utils.SendSuccess(c, ToggleResult[models.FavoriteTeam]{Added: added, Favorites: list})
}

func (h *FavoritesHandler) storeError(c *gin.Context, err error, message string) {
	_ = c.Error(err)
	h.logger.WithFields(logrus.Fields{
		"session_id": middleware.SessionID(c),
		"error":      err.Error(),
	}).Error(message)
	utils.SendInternalError(c, message)
}
