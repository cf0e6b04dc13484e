package auth

import "context"

type sessionCtxKey struct{}

// WithSession returns a copy of ctx carrying the request's session.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, s)
}

// SessionFrom returns the session stored by WithSession. Without one it
// returns an empty, unauthenticated session.
func SessionFrom(ctx context.Context) *Session {
	if s, ok := ctx.Value(sessionCtxKey{}).(*Session); ok && s != nil {
		return s
	}
	return &Session{}
}
