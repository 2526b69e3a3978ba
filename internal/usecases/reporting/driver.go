package reporting

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/vfg2006/admanager-extractor/internal/config"
	"github.com/vfg2006/admanager-extractor/internal/domain"
	"github.com/vfg2006/admanager-extractor/pkg/apperrors"
	"github.com/vfg2006/admanager-extractor/pkg/log"
	"github.com/vfg2006/admanager-extractor/pkg/retry"
)

const (
	DefaultRetryAttempts = 5
	DefaultRetryDelay    = 30 * time.Second
)

// Driver conduz um relatório por SUBMITTED → WAITING → READY → DOWNLOADING → DONE,
// repetindo a sequência inteira apenas em falhas temporárias do servidor
type Driver struct {
	client ReportClient
	policy retry.Policy

	mu    sync.Mutex
	state domain.ReportState
}

// NewDriver cria o driver com a política de novas tentativas da configuração
func NewDriver(client ReportClient, cfg config.ReportRun) *Driver {
	attempts := cfg.RetryAttempts
	if attempts == 0 {
		attempts = DefaultRetryAttempts
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = DefaultRetryDelay
	}

	return NewDriverWithPolicy(client, retry.Policy{
		MaxAttempts: attempts,
		Delay:       delay,
	})
}

// NewDriverWithPolicy cria o driver com uma política explícita.
// O critério de repetição é sempre IsTransient.
func NewDriverWithPolicy(client ReportClient, policy retry.Policy) *Driver {
	policy.RetryIf = apperrors.IsTransient
	return &Driver{
		client: client,
		policy: policy,
	}
}

// WithTimer troca a espera entre tentativas, usado nos testes
func (d *Driver) WithTimer(timer retry.Timer) *Driver {
	d.policy.Timer = timer
	return d
}

// State retorna a etapa atual do relatório
func (d *Driver) State() domain.ReportState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Driver) setState(ctx context.Context, state domain.ReportState) {
	d.mu.Lock()
	d.state = state
	d.mu.Unlock()

	log.ForContext(ctx).WithField("state", state).Debug("Relatório mudou de etapa")
}

// Fetch executa o ciclo completo e grava o CSV em dst.
// Cada tentativa recomeça do zero, com dst truncado.
func (d *Driver) Fetch(ctx context.Context, query *domain.ReportQuery, dst ResultFile) (int64, error) {
	var written int64

	policy := d.policy
	policy.OnRetry = func(attempt uint, err error) {
		if attempt+1 >= policy.MaxAttempts {
			return
		}
		log.ForContext(ctx).WithFields(log.Fields{
			"attempt":      attempt + 1,
			"max_attempts": policy.MaxAttempts,
			"delay":        policy.Delay.String(),
		}).WithError(err).Warn("Falha temporária do servidor do Ad Manager")
	}

	err := policy.Do(ctx, func(ctx context.Context, attempt uint) error {
		log.ForContext(ctx).WithField("attempt", attempt).Info("Iniciando tentativa de geração do relatório")

		n, err := d.runOnce(ctx, query, dst)
		written = n
		return err
	})
	if err != nil {
		if apperrors.IsTransient(err) {
			return 0, apperrors.TransientServer(err,
				fmt.Sprintf("Ad Manager server error persisted after %d attempts", policy.MaxAttempts))
		}
		return 0, err
	}

	if written == 0 {
		return 0, apperrors.EmptyResult()
	}

	return written, nil
}

func (d *Driver) runOnce(ctx context.Context, query *domain.ReportQuery, dst ResultFile) (int64, error) {
	if err := resetFile(dst); err != nil {
		return 0, fmt.Errorf("erro ao preparar arquivo temporário: %w", err)
	}

	d.setState(ctx, domain.ReportStateSubmitted)
	jobID, err := d.client.Submit(ctx, query)
	if err != nil {
		d.setState(ctx, domain.ReportStateFailed)
		return 0, err
	}

	logger := log.ForContext(ctx).WithField("report_job_id", jobID)
	logger.Info("Job de relatório aceito pelo Ad Manager")

	d.setState(ctx, domain.ReportStateWaiting)
	reportID, err := d.client.Wait(ctx, jobID)
	if err != nil {
		d.setState(ctx, domain.ReportStateFailed)
		return 0, err
	}
	d.setState(ctx, domain.ReportStateReady)

	d.setState(ctx, domain.ReportStateDownloading)
	n, err := d.client.Download(ctx, reportID, dst)
	if err != nil {
		d.setState(ctx, domain.ReportStateFailed)
		return 0, err
	}

	if err := dst.Sync(); err != nil {
		d.setState(ctx, domain.ReportStateFailed)
		return 0, fmt.Errorf("erro ao gravar arquivo temporário: %w", err)
	}

	d.setState(ctx, domain.ReportStateDone)
	logger.WithField("bytes", n).Info("Relatório baixado")

	return n, nil
}

func resetFile(f ResultFile) error {
	if err := f.Truncate(0); err != nil {
		return err
	}
	_, err := f.Seek(0, io.SeekStart)
	return err
}
