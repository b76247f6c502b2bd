package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ErlanBelekov/invoice-console/internal/apiclient"
	"github.com/ErlanBelekov/invoice-console/internal/domain"
	"github.com/ErlanBelekov/invoice-console/internal/repository"
)

// AuthGateway calls the unauthenticated auth endpoints.
type AuthGateway struct {
	client *apiclient.Client
}

func NewAuthGateway(client *apiclient.Client) *AuthGateway {
	return &AuthGateway{client: client}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    struct {
		PK    string `json:"pk"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

func (g *AuthGateway) Login(ctx context.Context, email, password string) (domain.TokenPair, error) {
	var resp loginResponse
	err := g.client.PostWithoutToken(ctx, "/api/auth/login/", loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		switch apiclient.StatusCode(err) {
		case http.StatusBadRequest, http.StatusUnauthorized:
			return domain.TokenPair{}, fmt.Errorf("%w: %w", domain.ErrInvalidCredentials, err)
		}
		return domain.TokenPair{}, fmt.Errorf("login: %w", err)
	}
	if resp.Access == "" {
		return domain.TokenPair{}, fmt.Errorf("login: response carried no access token")
	}
	return domain.TokenPair{UserID: resp.User.PK, Access: resp.Access, Refresh: resp.Refresh}, nil
}

type registerRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
}

func (g *AuthGateway) Register(ctx context.Context, in repository.RegisterInput) error {
	err := g.client.PostWithoutToken(ctx, "/api/auth/register/", registerRequest{
		Name:      in.Name,
		Email:     in.Email,
		Password1: in.Password1,
		Password2: in.Password2,
	}, nil)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Refresh exchanges a refresh token. The returned pair has an empty Refresh
// when the API does not rotate refresh tokens.
func (g *AuthGateway) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	var resp refreshResponse
	if err := g.client.PostWithoutToken(ctx, "/api/auth/token/refresh/", refreshRequest{Refresh: refreshToken}, &resp); err != nil {
		return domain.TokenPair{}, fmt.Errorf("refresh: %w", err)
	}
	if resp.Access == "" {
		return domain.TokenPair{}, fmt.Errorf("refresh: response carried no access token")
	}
	return domain.TokenPair{Access: resp.Access, Refresh: resp.Refresh}, nil
}

func (g *AuthGateway) Logout(ctx context.Context, refreshToken string) error {
	if err := g.client.PostWithoutToken(ctx, "/api/auth/logout/", refreshRequest{Refresh: refreshToken}, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}
