package domain

// OutputTable é o artefato final da execução: arquivo de dados sem cabeçalho
// mais a lista de colunas que vai no manifesto
type OutputTable struct {
	Name        string   `json:"-"`
	Path        string   `json:"-"`
	Columns     []string `json:"columns"`
	Incremental bool     `json:"incremental"`
	PrimaryKey  []string `json:"primary_key"`
}

// ManifestPath retorna o caminho do manifesto ao lado do arquivo da tabela
func (t *OutputTable) ManifestPath() string {
	return t.Path + ".manifest"
}
