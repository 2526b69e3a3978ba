package admanagerclient

import (
	"context"
	"crypto/rsa"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/vfg2006/admanager-extractor/pkg/apperrors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	AdManagerScope = "https://www.googleapis.com/auth/dfp"
	jwtBearerGrant = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	assertionLifetime = time.Hour
)

// TokenResponse representa a resposta do endpoint de token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type assertionClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// jwtTokenSource troca uma asserção JWT assinada pela conta de serviço por um access token
type jwtTokenSource struct {
	ctx        context.Context
	email      string
	tokenURI   string
	key        *rsa.PrivateKey
	httpClient *http.Client
	now        func() time.Time
}

func (s *jwtTokenSource) Token() (*oauth2.Token, error) {
	assertion, err := s.signAssertion()
	if err != nil {
		return nil, fmt.Errorf("erro ao assinar asserção JWT: %w", err)
	}

	form := url.Values{}
	form.Set("grant_type", jwtBearerGrant)
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(s.ctx, http.MethodPost, s.tokenURI, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("erro ao criar requisição de token: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Authentication(err, "cannot reach the token endpoint")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler resposta do token: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logrus.WithField("status", resp.StatusCode).Error("Endpoint de token rejeitou as credenciais")
		return nil, apperrors.Authentication(
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			"service account credentials were rejected")
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, apperrors.Authentication(err, "malformed token response")
	}

	if tokenResp.AccessToken == "" {
		return nil, apperrors.Authentication(nil, "token endpoint returned an empty access token")
	}

	token := &oauth2.Token{
		AccessToken: tokenResp.AccessToken,
		TokenType:   tokenResp.TokenType,
	}
	if tokenResp.ExpiresIn > 0 {
		token.Expiry = s.now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	}

	logrus.WithField("expires_in", tokenResp.ExpiresIn).Debug("Access token obtido")

	return token, nil
}

func (s *jwtTokenSource) signAssertion() (string, error) {
	iat := s.now()
	claims := assertionClaims{
		Scope: AdManagerScope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.email,
			Audience:  jwt.ClaimStrings{s.tokenURI},
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(iat.Add(assertionLifetime)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.key)
}
