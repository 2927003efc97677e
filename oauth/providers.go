package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)

// Identity is what a provider tells us about the signed-in account.
type Identity struct {
	Provider string
	ID       string
	Email    string
	Username string
}

// Provider is one OAuth2 identity provider.
type Provider struct {
	Name        string
	Config      *oauth2.Config
	UserInfoURL string
	// EmailsURL is queried when the profile has no public email (GitHub).
	EmailsURL string
	decode    func(body []byte) (Identity, error)
}

// ProviderConfig holds client credentials for one provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Google returns the Google OpenID Connect provider.
func Google(cfg ProviderConfig) *Provider {
	return &Provider{
		Name: ProviderGoogle,
		Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoints.Google,
			Scopes:       []string{"openid", "email", "profile"},
		},
		UserInfoURL: "https://openidconnect.googleapis.com/v1/userinfo",
		decode:      decodeGoogle,
	}
}

// GitHub returns the GitHub provider.
func GitHub(cfg ProviderConfig) *Provider {
	return &Provider{
		Name: ProviderGitHub,
		Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoints.GitHub,
			Scopes:       []string{"read:user", "user:email"},
		},
		UserInfoURL: "https://api.github.com/user",
		EmailsURL:   "https://api.github.com/user/emails",
		decode:      decodeGitHub,
	}
}

func decodeGoogle(body []byte) (Identity, error) {
	var profile struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := json.Unmarshal(body, &profile); err != nil {
		return Identity{}, fmt.Errorf("decode google profile: %w", err)
	}
	if profile.Sub == "" {
		return Identity{}, errors.New("google profile has no subject")
	}
	id := Identity{Provider: ProviderGoogle, ID: profile.Sub}
	if profile.EmailVerified {
		id.Email = profile.Email
	}
	return id, nil
}

func decodeGitHub(body []byte) (Identity, error) {
	var profile struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &profile); err != nil {
		return Identity{}, fmt.Errorf("decode github profile: %w", err)
	}
	if profile.ID == 0 {
		return Identity{}, errors.New("github profile has no id")
	}
	return Identity{
		Provider: ProviderGitHub,
		ID:       strconv.FormatInt(profile.ID, 10),
		Email:    profile.Email,
		Username: profile.Login,
	}, nil
}

// fetchIdentity loads the profile with an authorized client.
func (p *Provider) fetchIdentity(ctx context.Context, client *http.Client) (Identity, error) {
	body, err := getJSON(ctx, client, p.UserInfoURL)
	if err != nil {
		return Identity{}, err
	}
	id, err := p.decode(body)
	if err != nil {
		return Identity{}, err
	}
	if id.Email == "" && p.EmailsURL != "" {
		id.Email, err = primaryEmail(ctx, client, p.EmailsURL)
		if err != nil {
			return Identity{}, err
		}
	}
	if id.Email == "" {
		return Identity{}, fmt.Errorf("%s account has no verified email", p.Name)
	}
	return id, nil
}

func primaryEmail(ctx context.Context, client *http.Client, url string) (string, error) {
	body, err := getJSON(ctx, client, url)
	if err != nil {
		return "", err
	}
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := json.Unmarshal(body, &emails); err != nil {
		return "", fmt.Errorf("decode emails: %w", err)
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	return "", nil
}

func getJSON(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: status %d", url, resp.StatusCode)
	}
	return body, nil
}
