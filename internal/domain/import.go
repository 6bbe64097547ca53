package domain

// ImportRow é uma linha crua do arquivo importado: campos indexados pelo nome
// da coluna, valores possivelmente ausentes. A ordem das colunas no arquivo
// não importa; a ordem das linhas sim.
type ImportRow map[string]string

// DuplicateRow registra uma linha de importação rejeitada por colisão de nome,
// apontando para o produto que já detém o nome.
type DuplicateRow struct {
	Name       string `json:"name"`
	ExistingID string `json:"existingId"`
}

// ImportSummary é o resultado de um lote de importação. Sucesso parcial
// (algumas linhas adicionadas, outras puladas) é o resultado normal de um
// lote, não um estado de erro.
type ImportSummary struct {
	Added      int            `json:"added"`
	Skipped    int            `json:"skipped"`
	Duplicates []DuplicateRow `json:"duplicates"`
}
