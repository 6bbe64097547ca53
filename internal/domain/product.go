package domain

// Product representa o item de inventário (a Entidade principal).
// O controle de estoque é feito diretamente no produto, e toda mudança
// de estoque gera um registro de auditoria (ver StockAudit).
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"` // Único entre todos os produtos (case-insensitive)
	Unit     string `json:"unit"`
	Category string `json:"category"`
	Brand    string `json:"brand"`
	Stock    int    `json:"stock"` // Nunca negativo
	Status   string `json:"status"`
	Image    string `json:"image"` // Opcional (URL ou caminho)
}

// --- Interfaces de Contrato (O CORAÇÃO DA ARQUITETURA LIMPA) ---

// ProductService é a interface que a camada de Serviço (Business Logic) DEVE implementar.
// Ela define o que o Handler (Camada API) pode pedir para a camada de Serviço fazer.
type ProductService interface {
	CreateProduct(ctx Context, product Product) (Product, error)
	GetProductByID(ctx Context, id string) (Product, error)
	ListProducts(ctx Context, filter ProductFilter) ([]Product, error)
	SearchProducts(ctx Context, name string) ([]Product, error)
	UpdateProduct(ctx Context, id string, product Product, changedBy string) (Product, error)
	DeleteProduct(ctx Context, id string) error
	GetProductHistory(ctx Context, id string) ([]StockAudit, error)
}

// --- Estruturas Auxiliares (Filtros e Contexto) ---

// ProductFilter define os parâmetros de listagem de produtos.
// Categoria vazia ou "All" significa "todos os produtos".
type ProductFilter struct {
	Category string
}

// Context é uma interface que encapsula o Go context.Context.
// É usado para propagar o timeout e sinais de cancelamento pelas camadas.
// Isso evita a dependência direta do pacote "context".
type Context interface{}
