package product

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kaleshwar-2005/inventory-management-app/internal/domain"
	apperror "github.com/kaleshwar-2005/inventory-management-app/internal/errors"
	"github.com/kaleshwar-2005/inventory-management-app/internal/pkg/logger"
)

// ProductService define o contrato que o Handler espera da camada de Serviço.
// Usamos a assinatura com o tipo abstrato domain.Context para manter a pureza do domínio.
type ProductService interface {
	CreateProduct(ctx domain.Context, product domain.Product) (domain.Product, error)
	GetProductByID(ctx domain.Context, id string) (domain.Product, error)
	ListProducts(ctx domain.Context, filter domain.ProductFilter) ([]domain.Product, error)
	SearchProducts(ctx domain.Context, name string) ([]domain.Product, error)
	UpdateProduct(ctx domain.Context, id string, product domain.Product, changedBy string) (domain.Product, error)
	DeleteProduct(ctx domain.Context, id string) error
	GetProductHistory(ctx domain.Context, id string) ([]domain.StockAudit, error)
}

// ImportService define o contrato do reconciliador de importação em lote.
type ImportService interface {
	ImportProducts(ctx domain.Context, rows []domain.ImportRow) (domain.ImportSummary, error)
}

// ExportService define o contrato do exportador CSV.
type ExportService interface {
	ExportProducts(ctx domain.Context) ([]byte, error)
}

// Handler agrupa todos os métodos de Handler do inventário de produtos.
type Handler struct {
	Service  ProductService
	Importer ImportService
	Exporter ExportService
	Logger   logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando os Services e o Logger.
func NewHandler(svc ProductService, importer ImportService, exporter ExportService, log logger.Logger) *Handler {
	return &Handler{
		Service:  svc,
		Importer: importer,
		Exporter: exporter,
		Logger:   log,
	}
}

// --- Funções Auxiliares ---

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		// Sucesso
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)

		h.Logger.Info("Requisição concluída com sucesso", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": successStatus,
		})

		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
				http.Error(w, "Erro ao codificar resposta", http.StatusInternalServerError)
			}
		}
		return
	}

	// TRATAMENTO DE ERROS
	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		// Erros de cliente (4xx) são logged como debug
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	errorResponse := domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse)
}

// productPayload é o corpo JSON aceito em create e update. O update aceita
// adicionalmente o autor da mudança de estoque (changedBy).
type productPayload struct {
	domain.Product
	ChangedBy string `json:"changedBy"`
}

// --- Handlers da Coleção (/api/products) ---

// ProductsHandler lida com GET (listar) e POST (criar) em /api/products.
func (h *Handler) ProductsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listProducts(w, r)
	case http.MethodPost:
		h.createProduct(w, r)
	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// listProducts lida com GET /api/products?category=...
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	filter := domain.ProductFilter{Category: r.URL.Query().Get("category")}

	products, err := h.Service.ListProducts(r.Context(), filter)
	h.handleServiceResponse(w, r, products, err, http.StatusOK)
}

// createProduct lida com POST /api/products.
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var payload productPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}

	newProduct, err := h.Service.CreateProduct(r.Context(), payload.Product)
	h.handleServiceResponse(w, r, newProduct, err, http.StatusCreated)
}

// --- Handlers de Sub-rotas (/api/products/...) ---

// ProductSubrouteHandler despacha as rotas sob /api/products/:
// search, export, import, {id}, {id}/history.
func (h *Handler) ProductSubrouteHandler(w http.ResponseWriter, r *http.Request) {
	// Normaliza e divide o caminho: ["api", "products", ...]
	path := strings.Trim(r.URL.Path, "/")
	segments := strings.Split(path, "/")

	switch {
	case len(segments) == 3 && segments[2] == "search":
		h.searchProducts(w, r)
	case len(segments) == 3 && segments[2] == "export":
		h.exportProducts(w, r)
	case len(segments) == 3 && segments[2] == "import":
		h.importProducts(w, r)
	case len(segments) == 4 && segments[3] == "history":
		h.productHistory(w, r, segments[2])
	case len(segments) == 3 && segments[2] != "":
		h.productByID(w, r, segments[2])
	default:
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Formato de URL inválido ou ID ausente."), http.StatusOK)
	}
}

// searchProducts lida com GET /api/products/search?name=...
func (h *Handler) searchProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	products, err := h.Service.SearchProducts(r.Context(), r.URL.Query().Get("name"))
	h.handleServiceResponse(w, r, products, err, http.StatusOK)
}

// productHistory lida com GET /api/products/{id}/history.
func (h *Handler) productHistory(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	history, err := h.Service.GetProductHistory(r.Context(), id)
	h.handleServiceResponse(w, r, history, err, http.StatusOK)
}

// productByID lida com GET/PUT/DELETE /api/products/{id}.
func (h *Handler) productByID(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		product, err := h.Service.GetProductByID(ctx, id)
		h.handleServiceResponse(w, r, product, err, http.StatusOK)

	case http.MethodPut:
		var payload productPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
			return
		}
		updated, err := h.Service.UpdateProduct(ctx, id, payload.Product, payload.ChangedBy)
		h.handleServiceResponse(w, r, updated, err, http.StatusOK)

	case http.MethodDelete:
		err := h.Service.DeleteProduct(ctx, id)
		h.handleServiceResponse(w, r, map[string]string{"message": "Produto removido"}, err, http.StatusOK)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// --- Importação / Exportação ---

// importProducts lida com POST /api/products/import (multipart, campo "csvFile").
// O arquivo temporário do upload é liberado ao final do lote, com ou sem sucesso.
func (h *Handler) importProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	file, _, err := r.FormFile("csvFile")
	if err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Nenhum arquivo enviado."), http.StatusBadRequest)
		return
	}
	defer file.Close()
	// Libera o armazenamento temporário do multipart após o lote.
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	rows, err := parseCSVRows(file)
	if err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Arquivo CSV inválido."), http.StatusBadRequest)
		return
	}

	summary, err := h.Importer.ImportProducts(r.Context(), rows)
	h.handleServiceResponse(w, r, summary, err, http.StatusOK)
}

// parseCSVRows lê o arquivo CSV e converte cada linha de dados em um registro
// indexado pelo cabeçalho. A ordem das colunas no arquivo é livre; a ordem das
// linhas é preservada para o reconciliador.
func parseCSVRows(file io.Reader) ([]domain.ImportRow, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Linhas com menos colunas são toleradas

	header, err := reader.Read()
	if err == io.EOF {
		return []domain.ImportRow{}, nil
	}
	if err != nil {
		return nil, err
	}

	rows := []domain.ImportRow{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		row := domain.ImportRow{}
		for i, column := range header {
			if i < len(record) {
				row[strings.TrimSpace(column)] = record[i]
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// exportProducts lida com GET /api/products/export.
func (h *Handler) exportProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	csvData, err := h.Exporter.ExportProducts(r.Context())
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="products.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(csvData)

	h.Logger.Info("Exportação de produtos enviada.", map[string]interface{}{"bytes": len(csvData)})
}
