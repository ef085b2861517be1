package auth

type contextKey string

const (
	ContextKeyUserID contextKey = "user_id"

	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "

	notAuthorizedMessage = "Not Authorized. Login Again"
	invalidTokenMessage  = "Token verification failed"

	minPasswordLength = 8
	maxPasswordLength = 72
)
