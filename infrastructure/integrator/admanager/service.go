package admanager

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/vfg2006/admanager-extractor/infrastructure/integrator/admanager/admanagerclient"
	"github.com/vfg2006/admanager-extractor/internal/config"
	"github.com/vfg2006/admanager-extractor/internal/usecases/reporting"
)

// AdManagerIntegrator monta a sessão autenticada e o cliente do ReportService
type AdManagerIntegrator struct {
	cfg     *config.Config
	session admanagerclient.SessionOptions
}

func New(cfg *config.Config) *AdManagerIntegrator {
	return &AdManagerIntegrator{
		cfg: cfg,
		session: admanagerclient.SessionOptions{
			HTTPTimeout: cfg.AdManager.HTTPTimeout,
		},
	}
}

// NewReportClient autentica com a conta de serviço e retorna o cliente de relatórios.
// Credenciais rejeitadas falham aqui, antes de qualquer chamada de relatório.
func (s *AdManagerIntegrator) NewReportClient(ctx context.Context) (reporting.ReportClient, error) {
	session, err := admanagerclient.NewSession(ctx, s.cfg.Credentials(), s.session)
	if err != nil {
		logrus.WithError(err).Error("admanager: failed to authenticate service account")
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"network_code": s.cfg.Parameters.NetworkCode,
		"api_version":  s.cfg.Parameters.APIVersion,
	}).Info("admanager: report client ready")

	return admanagerclient.NewClient(session, admanagerclient.Options{
		BaseURL:         s.cfg.AdManager.URL,
		APIVersion:      s.cfg.Parameters.APIVersion,
		ApplicationName: s.cfg.AdManager.ApplicationName,
		PollInterval:    s.cfg.ReportRun.PollInterval,
	}), nil
}
