package admanagerclient

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/vfg2006/admanager-extractor/internal/domain"
	"github.com/vfg2006/admanager-extractor/pkg/apperrors"
)

const defaultHTTPTimeout = 2 * time.Minute

// SessionOptions ajusta o transporte HTTP da sessão
type SessionOptions struct {
	HTTPTimeout time.Duration
	Transport   http.RoundTripper
	Now         func() time.Time
}

// Session guarda o cliente HTTP autorizado de uma execução.
// Nenhum material da credencial é gravado em disco.
type Session struct {
	NetworkCode string

	tokens     oauth2.TokenSource
	httpClient *http.Client
	rawClient  *http.Client
}

// NewSession valida a chave privada e busca o primeiro token imediatamente,
// para que credenciais rejeitadas falhem antes de qualquer chamada de relatório
func NewSession(ctx context.Context, creds domain.Credentials, opts SessionOptions) (*Session, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(creds.PrivateKey))
	if err != nil {
		return nil, apperrors.WrapField(err, apperrors.KindConfiguration, "#private_key",
			`cannot parse private key, new lines must be delimited by \n`)
	}

	timeout := opts.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	base := &noCacheTransport{base: opts.Transport}
	rawClient := &http.Client{Transport: base, Timeout: timeout}

	source := &jwtTokenSource{
		ctx:        ctx,
		email:      creds.ClientEmail,
		tokenURI:   creds.TokenURI,
		key:        key,
		httpClient: rawClient,
		now:        now,
	}

	first, err := source.Token()
	if err != nil {
		return nil, err
	}
	tokens := oauth2.ReuseTokenSource(first, source)

	logrus.WithField("client_email", creds.ClientEmail).Info("Sessão do Ad Manager autenticada")

	return &Session{
		NetworkCode: creds.NetworkCode,
		tokens:      tokens,
		httpClient: &http.Client{
			Transport: &oauth2.Transport{Source: tokens, Base: base},
			Timeout:   timeout,
		},
		rawClient: rawClient,
	}, nil
}

// HTTPClient retorna o cliente que assina as requisições com o access token
func (s *Session) HTTPClient() *http.Client {
	return s.httpClient
}

// DownloadClient retorna o cliente sem autorização, usado na URL assinada do relatório
func (s *Session) DownloadClient() *http.Client {
	return s.rawClient
}

// noCacheTransport pede que intermediários não sirvam respostas em cache
type noCacheTransport struct {
	base http.RoundTripper
}

func (t *noCacheTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	clone := req.Clone(req.Context())
	clone.Header.Set("Cache-Control", "no-cache")
	clone.Header.Set("Pragma", "no-cache")

	return base.RoundTrip(clone)
}
