package handler

import (
	"errors"
	"net/http"
	"strings"

	"client-vault/internal/audit"
	"client-vault/internal/auth"
	"client-vault/internal/domain/identity"
	"client-vault/internal/domain/user"
	apperrors "client-vault/pkg/errors"
	"client-vault/pkg/validator"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	userRepo UserRepository
	hasher   PasswordHasher
	tokens   TokenGenerator
	audit    AuditRecorder
}

func NewAuthHandler(userRepo UserRepository, hasher PasswordHasher, tokens TokenGenerator, recorder AuditRecorder) *AuthHandler {
	return &AuthHandler{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		audit:    auditOrDiscard(recorder),
	}
}

type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyName string `json:"companyName"`
}

// LoginRequest accepts either a username or an email as the identifier.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.CompanyName = strings.TrimSpace(req.CompanyName)

	if err := validator.Username(req.Username); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	if err := validator.Email(req.Email); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	if err := validator.Password(req.Password); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	passwordHash, err := h.hasher.Hash(req.Password)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, msgPasswordProcessFail)
	}

	u, err := h.userRepo.Create(c.Request().Context(), user.CreateUserInput{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		CompanyName:  req.CompanyName,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUsernameTaken):
			return respondError(c, http.StatusConflict, msgUsernameTaken)
		case errors.Is(err, apperrors.ErrEmailExists):
			return respondError(c, http.StatusConflict, msgEmailAlreadyExists)
		}
		c.Logger().Errorf("Failed to create user %s: %v", req.Username, err)
		return respondError(c, http.StatusInternalServerError, msgCreateAccountFail)
	}

	return h.respondWithToken(c, http.StatusCreated, u)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	identifier := strings.TrimSpace(req.Email)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Username)
	}

	if identifier == "" || req.Password == "" {
		h.hasher.BurnTime(req.Password)
		return respondError(c, http.StatusUnauthorized, msgInvalidCredentials)
	}

	ctx := c.Request().Context()
	var (
		u   *user.User
		err error
	)
	if strings.Contains(identifier, "@") {
		u, err = h.userRepo.GetByEmail(ctx, strings.ToLower(identifier))
	} else {
		u, err = h.userRepo.GetByUsername(ctx, identifier)
	}
	if err != nil {
		// Unknown accounts cost the same as a wrong password.
		h.hasher.BurnTime(req.Password)
		return respondError(c, http.StatusUnauthorized, msgInvalidCredentials)
	}

	if u.PasswordHash == "" || !h.hasher.Verify(req.Password, u.PasswordHash) {
		h.audit.Record(c, audit.ActionLogin, audit.ResourceUser, u.ID.String(), audit.StatusFailure, nil)
		return respondError(c, http.StatusUnauthorized, msgInvalidCredentials)
	}

	h.audit.Record(c, audit.ActionLogin, audit.ResourceUser, u.ID.String(), audit.StatusSuccess, nil)
	return h.respondWithToken(c, http.StatusOK, u)
}

// CurrentUser returns the identity behind the bearer token, without the token.
func (h *AuthHandler) CurrentUser(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}

	u, err := h.userRepo.GetByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return respondError(c, http.StatusUnauthorized, msgUserNotFound)
		}
		c.Logger().Errorf("Failed to load user %s: %v", userID, err)
		return respondError(c, http.StatusInternalServerError, msgLoadUserFail)
	}

	return c.JSON(http.StatusOK, u.Identity())
}

func (h *AuthHandler) respondWithToken(c echo.Context, status int, u *user.User) error {
	token, err := h.tokens.Generate(u)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, msgGenerateTokenFail)
	}

	return c.JSON(status, identityWithToken(u, token))
}

func identityWithToken(u *user.User, token string) identity.ClientIdentity {
	return u.Identity().WithToken(token)
}
