package domain

import "time"

// StockAudit representa uma transição de estoque de um produto.
// É um registro imutável: criado uma única vez junto com a atualização
// do produto, nunca alterado e nunca removido pelas operações normais.
type StockAudit struct {
	ID        int64     `json:"id"` // Sequencial: desempata entradas com o mesmo timestamp
	ProductID string    `json:"productId"`
	OldStock  int       `json:"oldStock"`
	NewStock  int       `json:"newStock"`
	ChangedBy string    `json:"changedBy"`
	ChangedAt time.Time `json:"timestamp"`
}

// DefaultActor é o autor registrado quando a requisição não informa quem mudou o estoque.
const DefaultActor = "admin"
