package character

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/house-aratus/membership-api/internal/auth"
	"github.com/house-aratus/membership-api/internal/config"
	"github.com/house-aratus/membership-api/internal/db/models"
	"github.com/house-aratus/membership-api/internal/web/handler"
)

const (
	// Path is the path of the character endpoints.
	Path = "/character/:id"
)

// Response is the character representation exposed by the API. The provider
// tokens stay server side.
type Response struct {
	ID            uint64   `json:"id"`
	CharacterID   int64    `json:"characterId"`
	CharacterName string   `json:"characterName"`
	Scopes        []string `json:"scopes"`
	Avatar        string   `json:"avatar"`
	UserID        uint64   `json:"userId"`
}

// Service is the character handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
	sso *auth.SsoClient
}

// Handler is the character handler.
var Handler = Service{}

// Init initializes the character handler on the given router. The router is
// expected to sit behind the bearer token middleware.
func (s *Service) Init(router fiber.Router, cfg *config.Config, db *gorm.DB, ssoClient *auth.SsoClient) error {
	if router == nil || cfg == nil || db == nil || ssoClient == nil {
		return errors.New(handler.ErrNilACSFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db
	s.sso = ssoClient

	router.Get(Path, s.Get)
	router.Delete(Path, s.Delete)

	return nil
}

// Get returns a linked character by its row id.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid character id")
	}

	var character models.Character

	err = s.db.First(&character, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "character not found")
	}

	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load character")
	}

	return c.JSON(toResponse(&character))
}

// Delete unlinks a character by its row id.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid character id")
	}

	if err = s.sso.RemoveCharacter(id); err != nil {
		if errors.Is(err, auth.ErrCharacterNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "character not found")
		}

		return fiber.NewError(fiber.StatusInternalServerError, "failed to remove character")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func toResponse(character *models.Character) Response {
	return Response{
		ID:            character.ID,
		CharacterID:   character.CharacterID,
		CharacterName: character.CharacterName,
		Scopes:        character.Scopes,
		Avatar:        character.Avatar,
		UserID:        character.UserID,
	}
}
