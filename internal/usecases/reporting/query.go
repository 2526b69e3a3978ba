package reporting

import (
	"github.com/sirupsen/logrus"

	"github.com/vfg2006/admanager-extractor/internal/config"
	"github.com/vfg2006/admanager-extractor/internal/domain"
	"github.com/vfg2006/admanager-extractor/pkg/apperrors"
	"github.com/vfg2006/admanager-extractor/pkg/utils"
)

// BuildQuery monta a consulta do relatório a partir dos parâmetros normalizados.
// Uma palavra-chave dinâmica sempre prevalece sobre datas explícitas.
func BuildQuery(settings config.ReportSettings, dates domain.DateSpec) (*domain.ReportQuery, error) {
	if len(settings.Dimensions) == 0 {
		return nil, apperrors.Configuration("report_settings.dimensions", "at least one dimension is required")
	}
	if len(settings.Metrics) == 0 {
		return nil, apperrors.Configuration("report_settings.metrics", "at least one metric is required")
	}

	query := &domain.ReportQuery{
		Dimensions: append([]string(nil), settings.Dimensions...),
		Columns:    append([]string(nil), settings.Metrics...),
	}

	if settings.Currency != "" {
		query.ReportCurrency = settings.Currency
	}

	switch {
	case dates.IsDynamic():
		query.DateRangeType = dates.Dynamic
	case dates.IsExplicit():
		from, to := *dates.From, *dates.To
		query.DateRangeType = domain.CustomDateRangeType
		query.StartDate = &from
		query.EndDate = &to
	}

	if len(settings.DimensionAttributes) > 0 {
		query.DimensionAttributes = append([]string(nil), settings.DimensionAttributes...)
	}

	if settings.AdUnitView != "" {
		query.AdUnitView = settings.AdUnitView
	}

	logrus.WithFields(logrus.Fields{
		"dimensions":           query.Dimensions,
		"columns":              query.Columns,
		"dimension_attributes": query.DimensionAttributes,
		"date_range_type":      query.DateRangeType,
		"start_date":           query.StartDate,
		"end_date":             query.EndDate,
		"ad_unit_view":         query.AdUnitView,
		"report_currency":      query.ReportCurrency,
	}).Info("Consulta do relatório montada")
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.Debugf("Consulta enviada ao Ad Manager:\n%s", utils.PrettyJson(query))
	}

	return query, nil
}
