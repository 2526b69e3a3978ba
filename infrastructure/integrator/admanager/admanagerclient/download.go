package admanagerclient

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	admanagerdomain "github.com/vfg2006/admanager-extractor/infrastructure/integrator/admanager/domain"
	"github.com/vfg2006/admanager-extractor/internal/domain"
	"github.com/vfg2006/admanager-extractor/pkg/apperrors"
)

// Download pede a URL do relatório em CSV sem compressão e copia o conteúdo para w
func (c *AdManagerClient) Download(ctx context.Context, reportID domain.ReportJobID, w io.Writer) (int64, error) {
	downloadURL, err := c.downloadURL(ctx, reportID)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return 0, fmt.Errorf("erro ao criar a requisição de download: %w", err)
	}

	resp, err := c.session.DownloadClient().Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		return 0, apperrors.TransientServer(err, "cannot download the report")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, statusError(resp.StatusCode)
	}

	body := &trackingReader{r: resp.Body}
	n, err := io.Copy(w, body)
	if err != nil {
		if body.err != nil {
			return n, apperrors.TransientServer(err, "report download was interrupted")
		}
		return n, fmt.Errorf("erro ao gravar o relatório: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"report_id": reportID,
		"bytes":     n,
	}).Debug("Download do relatório concluído")

	return n, nil
}

func (c *AdManagerClient) downloadURL(ctx context.Context, reportID domain.ReportJobID) (string, error) {
	request := admanagerdomain.GetReportDownloadURLWithOptions{
		Xmlns:       c.namespace,
		ReportJobID: int64(reportID),
		DownloadOptions: admanagerdomain.ReportDownloadOptions{
			ExportFormat:            admanagerdomain.ExportFormatCSVDump,
			IncludeReportProperties: false,
			IncludeTotalsRow:        false,
			UseGzipCompression:      false,
		},
	}

	var response admanagerdomain.GetReportDownloadURLWithOptionsResponse
	if err := c.call(ctx, "getReportDownloadUrlWithOptions", request, &response); err != nil {
		return "", err
	}

	if response.Rval == "" {
		return "", apperrors.ReportGeneration(nil, "Ad Manager did not return a download URL")
	}

	return response.Rval, nil
}

// trackingReader separa falhas de leitura da rede de falhas de escrita local
type trackingReader struct {
	r   io.Reader
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		t.err = err
	}
	return n, err
}
