package extracting

import (
	"context"

	"github.com/vfg2006/admanager-extractor/infrastructure/storage/gcs"
	"github.com/vfg2006/admanager-extractor/internal/config"
	"github.com/vfg2006/admanager-extractor/internal/domain"
	"github.com/vfg2006/admanager-extractor/internal/usecases/reporting"
)

// ClientFactory autentica e devolve o cliente de relatórios de uma execução
type ClientFactory func(ctx context.Context) (reporting.ReportClient, error)

// MirrorFactory abre o destino opcional onde a tabela final é copiada
type MirrorFactory func(ctx context.Context, output config.Output) (gcs.Mirror, error)

// Extractor executa uma extração completa
type Extractor interface {
	Run(ctx context.Context) (*domain.OutputTable, error)
}
