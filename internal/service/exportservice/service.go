package exportservice

import (
	"context"
	"strconv"
	"strings"

	"github.com/kaleshwar-2005/inventory-management-app/internal/domain"
	"github.com/kaleshwar-2005/inventory-management-app/internal/pkg/logger"
)

// ProductFinder define o contrato de leitura que o exportador espera
// da camada de Persistência.
type ProductFinder interface {
	FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
}

// Service serializa o conjunto de produtos para CSV.
//
// O formato é a contraparte exata do conjunto de colunas consumido pela
// importação: mesmo cabeçalho, todos os valores entre aspas duplas, aspas
// internas escapadas por duplicação.
type Service struct {
	repo   ProductFinder
	logger logger.Logger
}

// csvHeaders é a ordem fixa das colunas do arquivo exportado.
var csvHeaders = []string{"name", "unit", "category", "brand", "stock", "status", "image"}

// NewService cria e retorna uma nova instância do Serviço de Exportação.
func NewService(repo ProductFinder, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ExportProducts monta o documento CSV com todos os produtos, na ordem
// retornada pelo repositório.
func (s *Service) ExportProducts(ctx domain.Context) ([]byte, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
	}

	products, err := s.repo.FindAll(ctxGo, domain.ProductFilter{})
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(strings.Join(csvHeaders, ","))

	for _, p := range products {
		fields := []string{
			p.Name,
			p.Unit,
			p.Category,
			p.Brand,
			strconv.Itoa(p.Stock),
			p.Status,
			p.Image,
		}
		quoted := make([]string, len(fields))
		for i, f := range fields {
			quoted[i] = quoteField(f)
		}
		b.WriteString("\n")
		b.WriteString(strings.Join(quoted, ","))
	}

	s.logger.Debug("Exportação de produtos gerada.", map[string]interface{}{"count": len(products)})
	return []byte(b.String()), nil
}

// quoteField envolve o valor em aspas duplas, duplicando aspas internas.
// Todos os campos são citados, inclusive os vazios.
func quoteField(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
