// Package scratch guarda os arquivos temporários de uma execução em um diretório privado
package scratch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/vfg2006/admanager-extractor/pkg/utils"
)

const (
	idLength   = 12
	dirPattern = "admanager-extractor-"
)

// Workspace é um diretório 0700 removido por inteiro em Close
type Workspace struct {
	dir string
}

// New cria o diretório dentro de base; base vazio usa o diretório temporário do sistema
func New(base string) (*Workspace, error) {
	dir, err := os.MkdirTemp(base, dirPattern)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar diretório temporário: %w", err)
	}
	if err := os.Chmod(dir, 0o700); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("erro ao restringir diretório temporário: %w", err)
	}

	return &Workspace{dir: dir}, nil
}

// Dir retorna o caminho do diretório
func (w *Workspace) Dir() string {
	return w.dir
}

// CreateFile cria um arquivo exclusivo, legível apenas pelo dono
func (w *Workspace) CreateFile(suffix string) (*os.File, error) {
	id, err := utils.GenerateID(idLength)
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar nome de arquivo temporário: %w", err)
	}

	path := filepath.Join(w.dir, id+suffix)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar arquivo temporário: %w", err)
	}
	return f, nil
}

// Close remove o diretório e tudo dentro dele
func (w *Workspace) Close() error {
	if w == nil || w.dir == "" {
		return nil
	}
	if err := os.RemoveAll(w.dir); err != nil {
		logrus.WithError(err).WithField("dir", w.dir).Warn("Não foi possível remover o diretório temporário")
		return err
	}
	return nil
}
