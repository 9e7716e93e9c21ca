package profile

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/house-aratus/membership-api/internal/config"
	"github.com/house-aratus/membership-api/internal/db/models"
	"github.com/house-aratus/membership-api/internal/web/handler"
	authmw "github.com/house-aratus/membership-api/internal/web/middleware/auth"
)

const (
	// Path is the path of the profile endpoint.
	Path = "/profile"
)

// Character is the character representation embedded in a profile.
type Character struct {
	ID            uint64 `json:"id"`
	CharacterID   int64  `json:"characterId"`
	CharacterName string `json:"characterName"`
	Avatar        string `json:"avatar"`
}

// Response is the profile of the authenticated member.
type Response struct {
	ID         uint64      `json:"id"`
	Username   string      `json:"username"`
	Email      string      `json:"email"`
	Roles      []string    `json:"roles"`
	Groups     []string    `json:"groups"`
	Characters []Character `json:"characters"`
	LastLogin  *time.Time  `json:"lastLogin,omitempty"`
}

// Service is the profile handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the profile handler.
var Handler = Service{}

// Init initializes the profile handler on the given router. The router is
// expected to sit behind the bearer token middleware.
func (s *Service) Init(router fiber.Router, cfg *config.Config, db *gorm.DB) error {
	if router == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACSFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db

	router.Get(Path, s.Get)

	return nil
}

// Get returns the authenticated member's profile with groups and linked
// characters.
func (s *Service) Get(c *fiber.Ctx) error {
	claims := authmw.Claims(c)
	if claims == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
	}

	var user models.User

	err := s.db.Preload("Groups").Preload("Characters").First(&user, claims.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "user not found")
	}

	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load profile")
	}

	groups := make([]string, 0, len(user.Groups))
	for _, group := range user.Groups {
		groups = append(groups, group.Name)
	}

	characters := make([]Character, 0, len(user.Characters))
	for _, character := range user.Characters {
		characters = append(characters, Character{
			ID:            character.ID,
			CharacterID:   character.CharacterID,
			CharacterName: character.CharacterName,
			Avatar:        character.Avatar,
		})
	}

	return c.JSON(Response{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		Roles:      user.Roles,
		Groups:     groups,
		Characters: characters,
		LastLogin:  user.LastLogin,
	})
}
