package normalizing

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultSubstitute = "_"
	emptyColumnName   = "column"
	tableSuffix       = ".csv"
)

// Normalizer transforma nomes livres em identificadores [a-z0-9_] estáveis
type Normalizer struct {
	Substitute string
}

func New() *Normalizer {
	return &Normalizer{Substitute: DefaultSubstitute}
}

func (n *Normalizer) substitute() string {
	if n == nil || n.Substitute == "" {
		return DefaultSubstitute
	}
	return n.Substitute
}

// Normalize remove acentos, passa para minúsculas e troca cada sequência de
// caracteres fora de [a-z0-9] por um único substituto
func (n *Normalizer) Normalize(name string) string {
	sub := n.substitute()

	folded := stripAccents(name)

	var b strings.Builder
	b.Grow(len(folded))
	pending := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && b.Len() > 0 {
				b.WriteString(sub)
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}

	if b.Len() == 0 {
		return emptyColumnName
	}
	return b.String()
}

// NormalizeHeader normaliza todas as colunas mantendo a ordem. Nomes repetidos
// recebem os sufixos _1, _2, ... pulando nomes que já existem.
func (n *Normalizer) NormalizeHeader(columns []string) []string {
	sub := n.substitute()

	out := make([]string, len(columns))
	taken := make(map[string]struct{}, len(columns))
	normalized := make([]string, len(columns))

	for i, column := range columns {
		normalized[i] = n.Normalize(column)
	}

	// Primeira passada: a primeira ocorrência de cada nome fica com ele
	for i, name := range normalized {
		if _, ok := taken[name]; !ok {
			taken[name] = struct{}{}
			out[i] = name
		}
	}

	for i, name := range normalized {
		if out[i] != "" {
			continue
		}
		for suffix := 1; ; suffix++ {
			candidate := name + sub + strconv.Itoa(suffix)
			if _, ok := taken[candidate]; !ok {
				taken[candidate] = struct{}{}
				out[i] = candidate
				break
			}
		}
	}

	return out
}

// TableName normaliza o nome do relatório e acrescenta a extensão .csv
func (n *Normalizer) TableName(reportName string) string {
	return n.Normalize(reportName) + tableSuffix
}

func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
