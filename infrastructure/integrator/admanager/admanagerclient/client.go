package admanagerclient

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	admanagerdomain "github.com/vfg2006/admanager-extractor/infrastructure/integrator/admanager/domain"
	"github.com/vfg2006/admanager-extractor/internal/domain"
)

const (
	DefaultBaseURL      = "https://ads.google.com"
	DefaultPollInterval = 30 * time.Second

	serviceName = "ReportService"
)

type Client interface {
	Submit(ctx context.Context, query *domain.ReportQuery) (domain.ReportJobID, error)
	Wait(ctx context.Context, jobID domain.ReportJobID) (domain.ReportJobID, error)
	Download(ctx context.Context, reportID domain.ReportJobID, w io.Writer) (int64, error)
}

// Options define endereço, versão e ritmo de consulta do ReportService
type Options struct {
	BaseURL         string
	APIVersion      string
	ApplicationName string
	PollInterval    time.Duration
}

type AdManagerClient struct {
	session         *Session
	endpoint        string
	namespace       string
	applicationName string
	pollInterval    time.Duration
	after           func(time.Duration) <-chan time.Time
}

func NewClient(session *Session, opts Options) Client {
	return newClient(session, opts)
}

func newClient(session *Session, opts Options) *AdManagerClient {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	return &AdManagerClient{
		session:         session,
		endpoint:        fmt.Sprintf("%s/apis/ads/publisher/%s/%s", baseURL, opts.APIVersion, serviceName),
		namespace:       admanagerdomain.Namespace(opts.APIVersion),
		applicationName: opts.ApplicationName,
		pollInterval:    pollInterval,
		after:           time.After,
	}
}
