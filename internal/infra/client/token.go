package client

import "context"

// StaticToken is a TokenSource that always returns the same bearer token.
type StaticToken string

// Token returns the token.
func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}
