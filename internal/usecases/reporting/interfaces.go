package reporting

import (
	"context"
	"io"

	"github.com/vfg2006/admanager-extractor/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// ReportClient define as operações do serviço de relatórios usadas pelo extrator
type ReportClient interface {
	// Submit envia a consulta e retorna o ID do job aceito pelo servidor
	Submit(ctx context.Context, query *domain.ReportQuery) (domain.ReportJobID, error)

	// Wait bloqueia até o job terminar e retorna o ID do relatório pronto
	Wait(ctx context.Context, jobID domain.ReportJobID) (domain.ReportJobID, error)

	// Download grava o relatório em CSV no writer e retorna a quantidade de bytes
	Download(ctx context.Context, reportID domain.ReportJobID, w io.Writer) (int64, error)
}

// ResultFile é o destino temporário do relatório baixado
type ResultFile interface {
	io.Writer
	io.Seeker
	Truncate(size int64) error
	Sync() error
}
