package domain

import (
	"fmt"
	"time"
)

// CustomDateRangeType é o tipo de intervalo usado quando as datas são informadas explicitamente
const CustomDateRangeType = "CUSTOM_DATE"

// Date é uma data de calendário, sem horário nem fuso
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf extrai a data de calendário de um time.Time
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time retorna a data à meia-noite no fuso informado
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Before indica se d é anterior a other
func (d Date) Before(other Date) bool {
	return d.Time(time.UTC).Before(other.Time(time.UTC))
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText serializa a data como YYYY-MM-DD
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DateSpec é o resultado da resolução do intervalo de datas:
// um par explícito, uma palavra-chave dinâmica, ou nenhum dos dois
type DateSpec struct {
	From    *Date
	To      *Date
	Dynamic string
}

// IsExplicit indica se o intervalo tem as duas datas
func (s DateSpec) IsExplicit() bool {
	return s.From != nil && s.To != nil
}

// IsDynamic indica se o intervalo é resolvido pelo servidor
func (s DateSpec) IsDynamic() bool {
	return s.Dynamic != ""
}

// ReportQuery é a consulta enviada ao serviço de relatórios
type ReportQuery struct {
	Dimensions          []string `json:"dimensions"`
	Columns             []string `json:"columns"`
	DimensionAttributes []string `json:"dimensionAttributes,omitempty"`
	DateRangeType       string   `json:"dateRangeType,omitempty"`
	StartDate           *Date    `json:"startDate,omitempty"`
	EndDate             *Date    `json:"endDate,omitempty"`
	AdUnitView          string   `json:"adUnitView,omitempty"`
	ReportCurrency      string   `json:"reportCurrency,omitempty"`
}

// ReportJobID identifica um job de relatório aceito pelo servidor
type ReportJobID int64

// ReportJobStatus é o status de um job informado pelo servidor
type ReportJobStatus string

const (
	ReportJobStatusCompleted  ReportJobStatus = "COMPLETED"
	ReportJobStatusInProgress ReportJobStatus = "IN_PROGRESS"
	ReportJobStatusFailed     ReportJobStatus = "FAILED"
)

// ReportState representa a etapa do ciclo de vida de um relatório dentro da execução
type ReportState string

const (
	ReportStateSubmitted   ReportState = "SUBMITTED"
	ReportStateWaiting     ReportState = "WAITING"
	ReportStateReady       ReportState = "READY"
	ReportStateDownloading ReportState = "DOWNLOADING"
	ReportStateDone        ReportState = "DONE"
	ReportStateFailed      ReportState = "FAILED"
)
