package admanagerdomain

import (
	"encoding/xml"
	"fmt"
)

const (
	SOAPEnvelopeNamespace = "http://schemas.xmlsoap.org/soap/envelope/"
	publisherNamespace    = "https://www.google.com/apis/ads/publisher/%s"
)

// Namespace retorna o namespace XML da versão da API
func Namespace(version string) string {
	return fmt.Sprintf(publisherNamespace, version)
}

// Envelope é o envelope SOAP 1.1 de uma requisição
type Envelope struct {
	XMLName xml.Name       `xml:"http://schemas.xmlsoap.org/soap/envelope/ Envelope"`
	Header  EnvelopeHeader `xml:"http://schemas.xmlsoap.org/soap/envelope/ Header"`
	Body    EnvelopeBody   `xml:"http://schemas.xmlsoap.org/soap/envelope/ Body"`
}

type EnvelopeHeader struct {
	RequestHeader RequestHeader
}

// EnvelopeBody carrega a operação; o nome do elemento vem do XMLName do conteúdo
type EnvelopeBody struct {
	Content any `xml:",any"`
}

// RequestHeader identifica a rede e a aplicação em toda chamada
type RequestHeader struct {
	XMLName         xml.Name `xml:"RequestHeader"`
	Xmlns           string   `xml:"xmlns,attr"`
	NetworkCode     string   `xml:"networkCode"`
	ApplicationName string   `xml:"applicationName"`
}

// ResponseEnvelope decodifica a resposta em duas etapas: primeiro o envelope,
// depois o conteúdo do corpo no tipo de resposta da operação
type ResponseEnvelope struct {
	XMLName xml.Name     `xml:"Envelope"`
	Body    ResponseBody `xml:"Body"`
}

type ResponseBody struct {
	Fault   *Fault `xml:"Fault"`
	Content []byte `xml:",innerxml"`
}

// ReportQuery segue a ordem de elementos do WSDL do ReportService
type ReportQuery struct {
	Dimensions          []string `xml:"dimensions"`
	AdUnitView          string   `xml:"adUnitView,omitempty"`
	Columns             []string `xml:"columns"`
	DimensionAttributes []string `xml:"dimensionAttributes"`
	StartDate           *Date    `xml:"startDate,omitempty"`
	EndDate             *Date    `xml:"endDate,omitempty"`
	DateRangeType       string   `xml:"dateRangeType,omitempty"`
	ReportCurrency      string   `xml:"reportCurrency,omitempty"`
}

type Date struct {
	Year  int `xml:"year"`
	Month int `xml:"month"`
	Day   int `xml:"day"`
}

type ReportJob struct {
	ID          int64        `xml:"id,omitempty"`
	ReportQuery *ReportQuery `xml:"reportQuery,omitempty"`
}

type RunReportJob struct {
	XMLName   xml.Name  `xml:"runReportJob"`
	Xmlns     string    `xml:"xmlns,attr"`
	ReportJob ReportJob `xml:"reportJob"`
}

type RunReportJobResponse struct {
	XMLName xml.Name  `xml:"runReportJobResponse"`
	Rval    ReportJob `xml:"rval"`
}

type GetReportJobStatus struct {
	XMLName     xml.Name `xml:"getReportJobStatus"`
	Xmlns       string   `xml:"xmlns,attr"`
	ReportJobID int64    `xml:"reportJobId"`
}

type GetReportJobStatusResponse struct {
	XMLName xml.Name `xml:"getReportJobStatusResponse"`
	Rval    string   `xml:"rval"`
}

// Formatos de exportação aceitos por getReportDownloadUrlWithOptions
const (
	ExportFormatCSVDump = "CSV_DUMP"
)

type ReportDownloadOptions struct {
	ExportFormat            string `xml:"exportFormat"`
	IncludeReportProperties bool   `xml:"includeReportProperties"`
	IncludeTotalsRow        bool   `xml:"includeTotalsRow"`
	UseGzipCompression      bool   `xml:"useGzipCompression"`
}

type GetReportDownloadURLWithOptions struct {
	XMLName         xml.Name              `xml:"getReportDownloadUrlWithOptions"`
	Xmlns           string                `xml:"xmlns,attr"`
	ReportJobID     int64                 `xml:"reportJobId"`
	DownloadOptions ReportDownloadOptions `xml:"reportDownloadOptions"`
}

type GetReportDownloadURLWithOptionsResponse struct {
	XMLName xml.Name `xml:"getReportDownloadUrlWithOptionsResponse"`
	Rval    string   `xml:"rval"`
}
