package manifest

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/vfg2006/admanager-extractor/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Manifest descreve a tabela de saída para a carga seguinte
type Manifest struct {
	Columns     []string `json:"columns"`
	Incremental bool     `json:"incremental"`
	PrimaryKey  []string `json:"primary_key"`
}

type Writer interface {
	Write(table *domain.OutputTable) error
}

type FileWriter struct{}

func NewWriter() Writer {
	return &FileWriter{}
}

// Write grava <tabela>.manifest ao lado do arquivo da tabela
func (w *FileWriter) Write(table *domain.OutputTable) error {
	m := Manifest{
		Columns:     table.Columns,
		Incremental: table.Incremental,
		PrimaryKey:  table.PrimaryKey,
	}
	if m.Columns == nil {
		m.Columns = []string{}
	}
	if m.PrimaryKey == nil {
		m.PrimaryKey = []string{}
	}

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("erro ao serializar manifesto: %w", err)
	}

	path := table.ManifestPath()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("erro ao gravar manifesto %s: %w", path, err)
	}

	logrus.WithFields(logrus.Fields{
		"path":    path,
		"columns": len(m.Columns),
	}).Info("Manifesto gravado")

	return nil
}
