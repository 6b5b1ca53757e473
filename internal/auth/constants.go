package auth

import "time"

const (
	ContextKeyUserID   = "user_id"
	ContextKeyUsername = "username"
	ContextKeyIsAdmin  = "is_admin"

	jsonKeyError = "error"

	headerAuthorization = "Authorization"

	bearerScheme    = "bearer"
	authHeaderParts = 2

	stateKeyPrefix    = "oauth:state:"
	stateNonceBytes   = 24
	userInfoTimeout   = 10 * time.Second
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
)

const (
	msgMissingAuthorization    = "missing authorization token"
	msgInvalidOrExpiredToken   = "invalid or expired token"
	msgUserNotAuthenticated    = "user not authenticated"
	msgAdminRequired           = "admin access required"
	msgInvalidUserIDCtx        = "invalid user ID in context"
	msgUnexpectedSigningMethod = "unexpected signing method: %v"
	msgTokenParseFailed        = "failed to parse token: %w"
	msgInvalidTokenClaims      = "invalid token claims"
	msgInvalidRole             = "invalid role: %q"
	msgStateNotFound           = "oauth state not found or expired"
	msgFailedSaveStateFmt      = "failed to save oauth state: %w"
	msgFailedConsumeStateFmt   = "failed to consume oauth state: %w"
	msgFailedGenerateNonceFmt  = "failed to generate oauth nonce: %w"
	msgFailedExchangeCodeFmt   = "failed to exchange authorization code: %w"
	msgFailedFetchUserInfoFmt  = "failed to fetch user info: %w"
	msgUserInfoStatusFmt       = "user info endpoint returned status %d"
	msgUserInfoIncomplete      = "user info is missing subject or email"
	msgEmailNotVerified        = "google account email is not verified"
)
