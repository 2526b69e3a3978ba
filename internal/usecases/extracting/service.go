package extracting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vfg2006/admanager-extractor/infrastructure/manifest"
	"github.com/vfg2006/admanager-extractor/infrastructure/storage/gcs"
	"github.com/vfg2006/admanager-extractor/internal/config"
	"github.com/vfg2006/admanager-extractor/internal/domain"
	"github.com/vfg2006/admanager-extractor/internal/usecases/normalizing"
	"github.com/vfg2006/admanager-extractor/internal/usecases/reporting"
	"github.com/vfg2006/admanager-extractor/internal/usecases/transcoding"
	"github.com/vfg2006/admanager-extractor/pkg/log"
	"github.com/vfg2006/admanager-extractor/pkg/retry"
	"github.com/vfg2006/admanager-extractor/pkg/scratch"
)

// Service conduz uma execução: valida, consulta, baixa, converte e publica a tabela
type Service struct {
	cfg        *config.Config
	newClient  ClientFactory
	newMirror  MirrorFactory
	manifests  manifest.Writer
	normalizer *normalizing.Normalizer
	scratchDir string
	retryTimer retry.Timer
	now        func() time.Time
}

// NewService cria o serviço com o gravador de manifesto e o espelho GCS padrão
func NewService(cfg *config.Config, newClient ClientFactory) *Service {
	return &Service{
		cfg:        cfg,
		newClient:  newClient,
		newMirror:  defaultMirror,
		manifests:  manifest.NewWriter(),
		normalizer: normalizing.New(),
		now:        time.Now,
	}
}

func defaultMirror(ctx context.Context, output config.Output) (gcs.Mirror, error) {
	return gcs.NewUploader(ctx, output)
}

// WithMirror troca a fábrica do espelho de saída
func (s *Service) WithMirror(newMirror MirrorFactory) *Service {
	s.newMirror = newMirror
	return s
}

// WithManifestWriter troca o gravador de manifesto
func (s *Service) WithManifestWriter(w manifest.Writer) *Service {
	s.manifests = w
	return s
}

// WithClock fixa o relógio usado na resolução das datas
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithRetryTimer troca a espera entre tentativas
func (s *Service) WithRetryTimer(timer retry.Timer) *Service {
	s.retryTimer = timer
	return s
}

// WithScratchDir define onde o diretório temporário é criado
func (s *Service) WithScratchDir(dir string) *Service {
	s.scratchDir = dir
	return s
}

// Run executa a extração e retorna a tabela publicada
func (s *Service) Run(ctx context.Context) (*domain.OutputTable, error) {
	logger := log.ForContext(ctx)
	params := s.cfg.Parameters

	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	dates, err := reporting.ResolveDateRange(params.Report.Date, s.now())
	if err != nil {
		return nil, err
	}

	query, err := reporting.BuildQuery(params.Report, dates)
	if err != nil {
		return nil, err
	}

	client, err := s.newClient(ctx)
	if err != nil {
		return nil, err
	}

	ws, err := scratch.New(s.scratchDir)
	if err != nil {
		return nil, err
	}
	defer ws.Close()

	raw, err := ws.CreateFile(".csv")
	if err != nil {
		return nil, err
	}
	defer raw.Close()

	driver := reporting.NewDriver(client, s.cfg.ReportRun)
	if s.retryTimer != nil {
		driver.WithTimer(s.retryTimer)
	}

	size, err := driver.Fetch(ctx, query, raw)
	if err != nil {
		logger.WithField("state", driver.State()).WithError(err).Error("Falha ao obter o relatório")
		return nil, err
	}
	logger.WithField("bytes", size).Info("Resultado bruto recebido")

	table, err := s.publish(ctx, raw.Name())
	if err != nil {
		return nil, err
	}

	if params.Output.GCSBucket != "" {
		if err := s.mirror(ctx, table); err != nil {
			return nil, err
		}
	}

	logger.WithFields(log.Fields{
		"table":   table.Name,
		"path":    table.Path,
		"columns": len(table.Columns),
	}).Info("Extração concluída")

	return table, nil
}

// publish converte o resultado bruto na tabela final e grava o manifesto.
// Nenhum arquivo parcial fica para trás em caso de erro.
func (s *Service) publish(ctx context.Context, rawPath string) (*domain.OutputTable, error) {
	outputDir := s.cfg.OutputTablesDir()
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("erro ao criar diretório de saída: %w", err)
	}

	name := s.normalizer.TableName(s.cfg.Parameters.Report.ReportName)
	table := &domain.OutputTable{
		Name:       name,
		Path:       filepath.Join(outputDir, name),
		PrimaryKey: []string{},
	}

	columns, err := transcoding.TranscodeFile(rawPath, table.Path, s.cfg.Parameters.SourceEncoding)
	if err != nil {
		return nil, err
	}
	table.Columns = s.normalizer.NormalizeHeader(columns)

	log.ForContext(ctx).WithFields(log.Fields{
		"raw_columns": columns,
		"columns":     table.Columns,
	}).Debug("Colunas normalizadas")

	if err := s.manifests.Write(table); err != nil {
		_ = os.Remove(table.Path)
		return nil, err
	}

	return table, nil
}

func (s *Service) mirror(ctx context.Context, table *domain.OutputTable) error {
	m, err := s.newMirror(ctx, s.cfg.Parameters.Output)
	if err != nil {
		return err
	}
	defer m.Close()

	for _, path := range []string{table.Path, table.ManifestPath()} {
		if _, err := m.UploadFile(ctx, path); err != nil {
			return err
		}
	}
	return nil
}
