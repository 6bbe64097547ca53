package router

import (
	"net/http"
	"time"

	"github.com/kaleshwar-2005/inventory-management-app/internal/api/product"
	"github.com/kaleshwar-2005/inventory-management-app/internal/pkg/cache"
	"github.com/kaleshwar-2005/inventory-management-app/internal/pkg/middleware"
)

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências.
func NewRouter(productHandler *product.Handler, cacheClient cache.Client, rateLimit int, ratePeriod time.Duration) http.Handler {

	// Usamos o ServeMux padrão do net/http para roteamento
	// Em projetos maiores, pode-se usar um mux de terceiros (e.g., gorilla/mux, chi)
	mux := http.NewServeMux()

	// --- 1. Rotas de Health Check ---
	mux.HandleFunc("/ping", PingHandler)

	// Banner da raiz
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("Inventory backend running"))
	})

	// --- 2. Rotas do Módulo de Produtos ---

	// GET  /api/products           (Listar, com ?category=)
	// POST /api/products           (Criar Produto)
	mux.HandleFunc("/api/products", productHandler.ProductsHandler)

	// GET    /api/products/search       (Buscar por nome)
	// GET    /api/products/export       (Exportar CSV)
	// POST   /api/products/import       (Importar CSV)
	// GET    /api/products/{id}         (Buscar por ID)
	// PUT    /api/products/{id}         (Atualizar + auditoria de estoque)
	// DELETE /api/products/{id}         (Remover)
	// GET    /api/products/{id}/history (Histórico de estoque)
	mux.HandleFunc("/api/products/", productHandler.ProductSubrouteHandler)

	// --- 3. Middlewares Globais ---
	rateLimiter := middleware.RateLimiter(cacheClient, rateLimit, ratePeriod)

	return rateLimiter(mux)
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
