package admanagerclient

import (
	"context"

	"github.com/sirupsen/logrus"

	admanagerdomain "github.com/vfg2006/admanager-extractor/infrastructure/integrator/admanager/domain"
	"github.com/vfg2006/admanager-extractor/internal/domain"
	"github.com/vfg2006/admanager-extractor/pkg/apperrors"
)

// Submit chama runReportJob e retorna o ID do job criado
func (c *AdManagerClient) Submit(ctx context.Context, query *domain.ReportQuery) (domain.ReportJobID, error) {
	request := admanagerdomain.RunReportJob{
		Xmlns: c.namespace,
		ReportJob: admanagerdomain.ReportJob{
			ReportQuery: toReportQuery(query),
		},
	}

	var response admanagerdomain.RunReportJobResponse
	if err := c.call(ctx, "runReportJob", request, &response); err != nil {
		return 0, err
	}

	if response.Rval.ID == 0 {
		return 0, apperrors.ReportGeneration(nil, "Ad Manager did not return a report job id")
	}

	return domain.ReportJobID(response.Rval.ID), nil
}

// Wait consulta getReportJobStatus no intervalo configurado até o job terminar
func (c *AdManagerClient) Wait(ctx context.Context, jobID domain.ReportJobID) (domain.ReportJobID, error) {
	logger := logrus.WithField("report_job_id", jobID)

	for {
		status, err := c.status(ctx, jobID)
		if err != nil {
			return 0, err
		}

		switch status {
		case domain.ReportJobStatusCompleted:
			return jobID, nil
		case domain.ReportJobStatusFailed:
			return 0, apperrors.ReportGeneration(nil,
				"report job failed, check used dimensions, metrics and API version")
		}

		logger.WithField("status", status).Debug("Relatório ainda em processamento")

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-c.after(c.pollInterval):
		}
	}
}

func (c *AdManagerClient) status(ctx context.Context, jobID domain.ReportJobID) (domain.ReportJobStatus, error) {
	request := admanagerdomain.GetReportJobStatus{
		Xmlns:       c.namespace,
		ReportJobID: int64(jobID),
	}

	var response admanagerdomain.GetReportJobStatusResponse
	if err := c.call(ctx, "getReportJobStatus", request, &response); err != nil {
		return "", err
	}

	return domain.ReportJobStatus(response.Rval), nil
}

func toReportQuery(q *domain.ReportQuery) *admanagerdomain.ReportQuery {
	return &admanagerdomain.ReportQuery{
		Dimensions:          q.Dimensions,
		AdUnitView:          q.AdUnitView,
		Columns:             q.Columns,
		DimensionAttributes: q.DimensionAttributes,
		StartDate:           toDate(q.StartDate),
		EndDate:             toDate(q.EndDate),
		DateRangeType:       q.DateRangeType,
		ReportCurrency:      q.ReportCurrency,
	}
}

func toDate(d *domain.Date) *admanagerdomain.Date {
	if d == nil {
		return nil
	}
	return &admanagerdomain.Date{Year: d.Year, Month: int(d.Month), Day: d.Day}
}
