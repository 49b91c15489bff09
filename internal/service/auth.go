package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jaekwang-park/todo-resolver/internal/cognito"
)

// AuthService lets a local client obtain and revoke user pool tokens.
type AuthService struct {
	cognitoClient cognito.Client
}

func NewAuthService(cognitoClient cognito.Client) *AuthService {
	return &AuthService{cognitoClient: cognitoClient}
}

type LoginInput struct {
	Username string
	Password string
}

type LoginOutput struct {
	Sub          string `json:"sub"`
	IDToken      string `json:"id_token"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int32  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

type RefreshInput struct {
	Username     string
	RefreshToken string
}

type RefreshOutput struct {
	IDToken     string `json:"id_token"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int32  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

type LogoutInput struct {
	AccessToken string
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginOutput, error) {
	if err := required("username", input.Username, "password", input.Password); err != nil {
		return LoginOutput{}, err
	}

	authOut, err := s.cognitoClient.Login(ctx, cognito.LoginInput(input))
	if err != nil {
		return LoginOutput{}, err
	}

	sub, err := extractSub(authOut.IDToken)
	if err != nil {
		return LoginOutput{}, fmt.Errorf("failed to extract sub from id token: %w", err)
	}

	return LoginOutput{
		Sub:          sub,
		IDToken:      authOut.IDToken,
		AccessToken:  authOut.AccessToken,
		RefreshToken: authOut.RefreshToken,
		ExpiresIn:    authOut.ExpiresIn,
		TokenType:    authOut.TokenType,
	}, nil
}

// Refresh trades a refresh token for new ID and access tokens. Cognito does
// not rotate the refresh token, so none is returned.
func (s *AuthService) Refresh(ctx context.Context, input RefreshInput) (RefreshOutput, error) {
	if err := required("username", input.Username, "refresh_token", input.RefreshToken); err != nil {
		return RefreshOutput{}, err
	}

	authOut, err := s.cognitoClient.RefreshTokens(ctx, cognito.RefreshInput(input))
	if err != nil {
		return RefreshOutput{}, err
	}

	return RefreshOutput{
		IDToken:     authOut.IDToken,
		AccessToken: authOut.AccessToken,
		ExpiresIn:   authOut.ExpiresIn,
		TokenType:   authOut.TokenType,
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if err := required("access_token", input.AccessToken); err != nil {
		return err
	}
	return s.cognitoClient.GlobalSignOut(ctx, cognito.GlobalSignOutInput(input))
}

// required takes name/value pairs and reports the first empty value.
func required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, pairs[i])
		}
	}
	return nil
}

// extractSub reads the sub claim of a token the user pool has just issued.
// The signature is not checked.
func extractSub(idToken string) (string, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, &claims); err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("sub claim not found in id token")
	}
	return claims.Subject, nil
}
