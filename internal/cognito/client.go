package cognito

import "context"

// Client is the subset of the user pool API a local client needs to obtain
// and revoke the tokens the GraphQL endpoint expects.
type Client interface {
	Login(ctx context.Context, input LoginInput) (AuthOutput, error)
	RefreshTokens(ctx context.Context, input RefreshInput) (AuthOutput, error)
	GlobalSignOut(ctx context.Context, input GlobalSignOutInput) error
}

type LoginInput struct {
	Username string
	Password string
}

// AuthOutput contains tokens returned after successful authentication.
type AuthOutput struct {
	IDToken      string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int32
	TokenType    string
}

// RefreshInput carries the username only for SECRET_HASH computation.
type RefreshInput struct {
	Username     string
	RefreshToken string
}

type GlobalSignOutInput struct {
	AccessToken string
}
