package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/house-aratus/membership-api/internal/config"
	"github.com/house-aratus/membership-api/internal/db/models"
	"github.com/house-aratus/membership-api/internal/uniuri"
)

// ssoTimeout bounds every call to the SSO provider. A single failed call
// fails the whole operation; there is no retry.
const ssoTimeout = 2 * time.Second

// stateLen is the length of the generated state parameter.
const stateLen = 32

// CharacterData is the character identity obtained from a completed SSO
// callback: the verify endpoint's payload plus the exchanged tokens.
type CharacterData struct {
	CharacterID   int64
	CharacterName string
	Scopes        []string
	TokenType     string
	OwnerHash     string
	RefreshToken  string
	AccessToken   string
}

// StateStore keeps pending single-use SSO state values keyed by session.
// Take must remove the value as part of the same atomic step that reads it.
type StateStore interface {
	Put(sessionID, state string) error
	Take(sessionID string) (string, bool)
}

// SsoClient drives the OAuth2 authorization-code flow against the EVE
// Online SSO and upserts the linked character.
type SsoClient struct {
	cfg    config.Sso
	oauth  oauth2.Config
	client *http.Client
	states StateStore
	db     *gorm.DB
}

// verifyResponse is the provider's verify endpoint payload.
type verifyResponse struct {
	CharacterID        int64  `json:"CharacterID"`
	CharacterName      string `json:"CharacterName"`
	Scopes             string `json:"Scopes"`
	TokenType          string `json:"TokenType"`
	CharacterOwnerHash string `json:"CharacterOwnerHash"`
}

// NewSsoClient creates an SSO client. The token exchange authenticates with
// Basic auth (client id and secret), matching the provider's contract.
func NewSsoClient(cfg config.Sso, states StateStore, db *gorm.DB) *SsoClient {
	return &SsoClient{
		cfg: cfg,
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.SecretKey,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthorizeURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		client: &http.Client{Timeout: ssoTimeout},
		states: states,
		db:     db,
	}
}

// AuthorizeURL generates a fresh single-use state for the session, stores it
// and returns the provider's authorize URL. The callback URL embeds the user
// id and the optional redirect hint as query parameters so the callback can
// restore them.
func (c *SsoClient) AuthorizeURL(sessionID string, userID uint64, redirect string) (string, error) {
	state := uniuri.NewLen(stateLen)

	if err := c.states.Put(sessionID, state); err != nil {
		return "", fmt.Errorf("failed to store sso state: %w", err)
	}

	callbackParams := url.Values{}
	callbackParams.Set("userId", strconv.FormatUint(userID, 10))

	if redirect != "" {
		callbackParams.Set("redirect", redirect)
	}

	callbackURL := c.cfg.CallbackURL + "?" + callbackParams.Encode()

	return c.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("redirect_uri", callbackURL)), nil
}

// HandleCallback validates the callback state, exchanges the code for
// tokens and verifies the character identity with the provider.
//
// The stored state is consumed before comparison, so a state is good for
// exactly one callback regardless of outcome. On mismatch no network call
// is made.
func (c *SsoClient) HandleCallback(ctx context.Context, sessionID, code, state string) (*CharacterData, error) {
	stored, ok := c.states.Take(sessionID)
	if !ok || stored != state {
		return nil, ErrInvalidState
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.client)

	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange: %w", ErrSsoProvider, err)
	}

	verify, err := c.verify(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	return &CharacterData{
		CharacterID:   verify.CharacterID,
		CharacterName: verify.CharacterName,
		Scopes:        strings.Fields(verify.Scopes),
		TokenType:     verify.TokenType,
		OwnerHash:     verify.CharacterOwnerHash,
		RefreshToken:  token.RefreshToken,
		AccessToken:   token.AccessToken,
	}, nil
}

// verify calls the provider's verify endpoint with the access token.
func (c *SsoClient) verify(ctx context.Context, accessToken string) (*verifyResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.VerifyURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build verify request: %w", ErrSsoProvider, err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: verify: %w", ErrSsoProvider, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: verify returned status %d", ErrSsoProvider, resp.StatusCode)
	}

	var verify verifyResponse
	if errDecode := json.NewDecoder(resp.Body).Decode(&verify); errDecode != nil {
		return nil, fmt.Errorf("%w: decode verify response: %w", ErrSsoProvider, errDecode)
	}

	return &verify, nil
}

// UpsertCharacter creates or updates the character identified by the
// external character id and associates it with the user. The last user to
// complete the flow for a character owns it. The write is all-or-nothing:
// a failed persist leaves no trace of the exchanged tokens.
func (c *SsoClient) UpsertCharacter(userID uint64, data *CharacterData) (*models.Character, error) {
	var character models.Character

	err := c.db.Transaction(func(tx *gorm.DB) error {
		var user models.User

		errUser := tx.First(&user, userID).Error
		if errors.Is(errUser, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}

		if errUser != nil {
			return fmt.Errorf("failed to query user: %w", errUser)
		}

		errFind := tx.Where("character_id = ?", data.CharacterID).First(&character).Error

		switch {
		case errors.Is(errFind, gorm.ErrRecordNotFound):
			character = models.Character{
				CharacterID:   data.CharacterID,
				CharacterName: data.CharacterName,
				Avatar:        models.AvatarURL(data.CharacterID),
			}
		case errFind != nil:
			return fmt.Errorf("failed to query character: %w", errFind)
		}

		character.Scopes = data.Scopes
		character.TokenType = data.TokenType
		character.OwnerHash = data.OwnerHash
		character.RefreshToken = data.RefreshToken
		character.AccessToken = data.AccessToken
		character.UserID = user.ID

		if errSave := tx.Save(&character).Error; errSave != nil {
			return fmt.Errorf("failed to save character: %w", errSave)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &character, nil
}

// RemoveCharacter deletes a linked character by its row id.
func (c *SsoClient) RemoveCharacter(id uint64) error {
	result := c.db.Delete(&models.Character{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete character: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrCharacterNotFound
	}

	return nil
}
