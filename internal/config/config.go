package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/vfg2006/admanager-extractor/internal/domain"
	"github.com/vfg2006/admanager-extractor/pkg/apperrors"
)

// ConfigFileName é o nome do arquivo de configuração dentro do diretório de dados
const ConfigFileName = "config.json"

// DefaultAPIVersion é usada quando a configuração não informa api_version
const DefaultAPIVersion = "v202508"

// SupportedAPIVersions lista as versões da API do Ad Manager aceitas
var SupportedAPIVersions = []string{
	"v202411",
	"v202502",
	"v202505",
	"v202508",
	"v202511",
}

type Config struct {
	App        App        `mapstructure:",squash"`
	AdManager  AdManager  `mapstructure:",squash"`
	ReportRun  ReportRun  `mapstructure:",squash"`
	Parameters Parameters `mapstructure:"parameters"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
	DataDir  string `mapstructure:"kbc_datadir"`
}

type AdManager struct {
	URL             string        `mapstructure:"ad_manager_url"`
	ApplicationName string        `mapstructure:"application_name"`
	HTTPTimeout     time.Duration `mapstructure:"ad_manager_http_timeout"`
}

type ReportRun struct {
	PollInterval  time.Duration `mapstructure:"report_poll_interval"`
	RetryAttempts uint          `mapstructure:"report_retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"report_retry_delay"`
}

type Parameters struct {
	ClientEmail    string         `mapstructure:"client_email"`
	PrivateKey     string         `mapstructure:"#private_key"`
	TokenURI       string         `mapstructure:"token_uri"`
	NetworkCode    string         `mapstructure:"network_code"`
	APIVersion     string         `mapstructure:"api_version"`
	SourceEncoding string         `mapstructure:"source_encoding"`
	Report         ReportSettings `mapstructure:"report_settings"`
	Output         Output         `mapstructure:"output"`
}

type ReportSettings struct {
	ReportName          string       `mapstructure:"report_name"`
	Dimensions          []string     `mapstructure:"dimensions"`
	Metrics             []string     `mapstructure:"metrics"`
	DimensionAttributes []string     `mapstructure:"dimension_attributes"`
	Currency            string       `mapstructure:"currency"`
	AdUnitView          string       `mapstructure:"ad_unit_view"`
	Date                DateSettings `mapstructure:"date_settings"`
}

type DateSettings struct {
	Range string `mapstructure:"date_range"`
	From  string `mapstructure:"date_from"`
	To    string `mapstructure:"date_to"`
}

type Output struct {
	GCSBucket   string `mapstructure:"gcs_bucket"`
	GCSPrefix   string `mapstructure:"gcs_prefix"`
	GCSEndpoint string `mapstructure:"gcs_endpoint"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("KBC_DATADIR", "/data")

	v.SetDefault("AD_MANAGER_URL", "https://ads.google.com")
	v.SetDefault("APPLICATION_NAME", "ad-manager-extractor")
	v.SetDefault("AD_MANAGER_HTTP_TIMEOUT", 2*time.Minute)

	v.SetDefault("REPORT_POLL_INTERVAL", 30*time.Second) // Intervalo entre consultas de status do job
	v.SetDefault("REPORT_RETRY_ATTEMPTS", 5)             // Tentativas em falhas temporárias do servidor
	v.SetDefault("REPORT_RETRY_DELAY", 30*time.Second)   // Espera fixa entre tentativas
}

// NewConfig lê variáveis de ambiente e o config.json do diretório de dados.
// A instância do viper pode vir com flags já vinculadas.
func NewConfig(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	loadEnvFile() // ONLY LOCAL

	SetDefaults(v)
	v.AutomaticEnv()

	dataDir := v.GetString("kbc_datadir")
	configPath := filepath.Join(dataDir, ConfigFileName)

	v.SetConfigType("json")
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, apperrors.WrapField(err, apperrors.KindConfiguration, "config.json",
			fmt.Sprintf("cannot read configuration file %s", configPath))
	}

	logrus.WithField("path", configPath).Debug("Arquivo de configuração lido com sucesso")

	config := &Config{}
	err := v.Unmarshal(config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, apperrors.WrapField(err, apperrors.KindConfiguration, "parameters", "malformed configuration")
	}

	config.normalize()

	return config, nil
}

// normalize limpa listas, desfaz o escape da chave privada e aplica padrões
func (c *Config) normalize() {
	p := &c.Parameters

	p.PrivateKey = strings.ReplaceAll(p.PrivateKey, `\n`, "\n")
	p.ClientEmail = strings.TrimSpace(p.ClientEmail)
	p.TokenURI = strings.TrimSpace(p.TokenURI)
	p.NetworkCode = strings.TrimSpace(p.NetworkCode)
	p.APIVersion = strings.TrimSpace(p.APIVersion)
	if p.APIVersion == "" {
		p.APIVersion = DefaultAPIVersion
	}
	if strings.TrimSpace(p.SourceEncoding) == "" {
		p.SourceEncoding = "utf-8"
	}

	p.Report.Dimensions = cleanList(p.Report.Dimensions)
	p.Report.Metrics = cleanList(p.Report.Metrics)
	p.Report.DimensionAttributes = cleanList(p.Report.DimensionAttributes)
	p.Report.Currency = strings.TrimSpace(p.Report.Currency)
	p.Report.AdUnitView = strings.TrimSpace(p.Report.AdUnitView)
}

// Validate verifica os parâmetros antes de qualquer chamada de rede
func (c *Config) Validate() error {
	p := c.Parameters

	required := []struct {
		field string
		value string
	}{
		{"client_email", p.ClientEmail},
		{"#private_key", p.PrivateKey},
		{"token_uri", p.TokenURI},
		{"network_code", p.NetworkCode},
		{"report_settings.report_name", p.Report.ReportName},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return apperrors.Configuration(r.field, "missing required parameter")
		}
	}

	if !slices.Contains(SupportedAPIVersions, p.APIVersion) {
		return apperrors.Configuration("api_version", fmt.Sprintf(
			"unsupported API version %q, supported versions are %s",
			p.APIVersion, strings.Join(SupportedAPIVersions, ", ")))
	}

	if len(p.Report.Dimensions) == 0 {
		return apperrors.Configuration("report_settings.dimensions", "at least one dimension is required")
	}
	if len(p.Report.Metrics) == 0 {
		return apperrors.Configuration("report_settings.metrics", "at least one metric is required")
	}

	if _, err := htmlindex.Get(p.SourceEncoding); err != nil {
		return apperrors.Configuration("source_encoding", fmt.Sprintf("unknown encoding %q", p.SourceEncoding))
	}

	if c.ReportRun.RetryAttempts == 0 {
		return apperrors.Configuration("REPORT_RETRY_ATTEMPTS", "must be at least 1")
	}
	if c.ReportRun.PollInterval <= 0 {
		return apperrors.Configuration("REPORT_POLL_INTERVAL", "must be positive")
	}

	return nil
}

// Credentials monta as credenciais da conta de serviço
func (c *Config) Credentials() domain.Credentials {
	return domain.Credentials{
		ClientEmail: c.Parameters.ClientEmail,
		PrivateKey:  c.Parameters.PrivateKey,
		TokenURI:    c.Parameters.TokenURI,
		NetworkCode: c.Parameters.NetworkCode,
	}
}

// OutputTablesDir é o diretório onde a tabela final e o manifesto são gravados
func (c *Config) OutputTablesDir() string {
	return filepath.Join(c.App.DataDir, "out", "tables")
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Debug("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),               // Diretório atual
		filepath.Join(filepath.Dir(cwd), ".env"), // Diretório pai
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Debug("Arquivo .env carregado de:", location)
			return
		}
	}
}
