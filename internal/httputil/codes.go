package httputil

// Machine-readable error codes returned alongside error messages so
// clients can branch without parsing human-facing text.
const (
	CodeInvalidRequestBody        = "INVALID_REQUEST_BODY"
	CodeInvalidAuthHeader         = "INVALID_AUTH_HEADER"
	CodeMissingAuth               = "MISSING_AUTH"
	CodeInvalidToken              = "INVALID_TOKEN"
	CodeTokenExpired              = "TOKEN_EXPIRED"
	CodeInvalidTokenSubject       = "INVALID_TOKEN_SUBJECT"
	CodeForbidden                 = "FORBIDDEN"
	CodeEmailAlreadyExists        = "EMAIL_ALREADY_EXISTS"
	CodeEmailRequired             = "EMAIL_REQUIRED"
	CodeInvalidEmailFormat        = "INVALID_EMAIL_FORMAT"
	CodePasswordRequired          = "PASSWORD_REQUIRED"
	CodePasswordTooShort          = "PASSWORD_TOO_SHORT"
	CodeInvalidCredentials        = "INVALID_CREDENTIALS"
	CodeAccountLocked             = "ACCOUNT_LOCKED"
	CodeEmailNotVerified          = "EMAIL_NOT_VERIFIED"
	CodeVerificationTokenRequired = "VERIFICATION_TOKEN_REQUIRED"
	CodeVerificationFailed        = "VERIFICATION_FAILED"
	CodeAlreadyVerified           = "ALREADY_VERIFIED"
	CodeInvalidResetToken         = "INVALID_RESET_TOKEN"
	CodeUserNotFound              = "USER_NOT_FOUND"
	CodeInvalidUserID             = "INVALID_USER_ID"
	CodeInvalidRole               = "INVALID_ROLE"
	CodeInvalidField              = "INVALID_FIELD"
	CodeInvalidPagination         = "INVALID_PAGINATION"
	CodeTooManyRequests           = "TOO_MANY_REQUESTS"
	CodeCooldownActive            = "COOLDOWN_ACTIVE"
	CodeInternalError             = "INTERNAL_ERROR"
)
