package auth

import (
	"context"
	"net/http"
)

// Session is what register and login hand back to the client.
type Session struct {
	Token string
	Name  string
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextKeyUserID).(string)
	return id, ok && id != ""
}

func GetUserIDFromRequest(r *http.Request) (string, bool) {
	return UserIDFromContext(r.Context())
}

// ContextWithUserID is what RequireAuth does on success; handlers and tests
// use it to build an authenticated context directly.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}
