package handler

const (
	jsonKeyError = "error"
	jsonKeyURL   = "url"
	jsonKeyKey   = "key"

	paramID = "id"

	queryOwnerID = "ownerId"
	queryRole    = "role"
	queryState   = "state"
	queryCode    = "code"
	queryError   = "error"
	queryLogin   = "login"
	queryToken   = "token"

	formFieldFile    = "file"
	formFieldOwnerID = "ownerId"

	roleClientFilter = "client"
	loginSuccess     = "success"

	pathClientVault = "/vault"
	pathAdminVault  = "/admin"
	pathClientLogin = "/login"
	pathAdminLogin  = "/admin/login"

	oauthErrInvalidState = "invalid_state"
	oauthErrExchange     = "oauth_failed"
	oauthErrForbidden    = "forbidden"
	oauthErrAccount      = "account_unavailable"
	oauthErrDenied       = "access_denied"

	googleUsernameSuffixLen   = 6
	googleUsernameLocalMaxLen = 48
)

const (
	msgContentTypeJSONRequired = "content type must be application/json"
	msgInvalidRequestBody      = "invalid request body"
	msgInvalidCredentials      = "invalid username or password"
	msgUsernameTaken           = "username already exists"
	msgEmailAlreadyExists      = "email already exists"
	msgPasswordProcessFail     = "failed to process password"
	msgCreateAccountFail       = "failed to create account"
	msgGenerateTokenFail       = "failed to generate token"
	msgUserNotFound            = "user not found"
	msgUserNotAuthenticated    = "user not authenticated"
	msgLoadUserFail            = "failed to load user"
	msgListClientsFail         = "failed to list clients"
	msgUnsupportedRoleFilter   = "role must be client"
	msgInvalidRole             = "state must be client or admin"
	msgOAuthDisabled           = "google login is not configured"
	msgOAuthStartFail          = "failed to start google login"
	msgOwnerIDRequired         = "ownerId is required"
	msgOwnerForbidden          = "cannot access another client's assets"
	msgOwnerNotFound           = "owner not found"
	msgInvalidAssetType        = "type must be image or video"
	msgInvalidAssetSize        = "size cannot be negative"
	msgForeignMediaURL         = "url refers to another client's media"
	msgAssetNotFound           = "asset not found"
	msgListAssetsFail          = "failed to list assets"
	msgCreateAssetFail         = "failed to create asset"
	msgDeleteAssetFail         = "failed to delete asset"
	msgFileRequired            = "file is required"
	msgOpenUploadFail          = "failed to read uploaded file"
	msgUploadMediaFail         = "failed to upload media"
)
