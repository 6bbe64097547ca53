package productservice

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/kaleshwar-2005/inventory-management-app/internal/domain"
	apperror "github.com/kaleshwar-2005/inventory-management-app/internal/errors"
	"github.com/kaleshwar-2005/inventory-management-app/internal/pkg/logger"
)

// ProductRepository define o contrato (interface) que este Serviço espera
// da camada de Persistência (DB, Cache).
// O Repositório usa context.Context nativo, pois é a camada de infraestrutura.
type ProductRepository interface {
	Save(ctx context.Context, product domain.Product) (domain.Product, error)
	FindByID(ctx context.Context, id string) (domain.Product, error)
	FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	SearchByName(ctx context.Context, name string) ([]domain.Product, error)
	FindIDByName(ctx context.Context, name, excludeID string) (string, error)
	Update(ctx context.Context, id string, product domain.Product, changedBy string) (domain.Product, error)
	Delete(ctx context.Context, id string) error
}

// AuditRepository define o contrato de leitura do histórico de estoque.
type AuditRepository interface {
	FindByProductID(ctx context.Context, productID string) ([]domain.StockAudit, error)
}

// Service é a estrutura que implementa a interface domain.ProductService.
// É o núcleo do inventário: validação, unicidade de nome e a fronteira
// transacional entre a atualização do produto e sua auditoria de estoque.
type Service struct {
	repo      ProductRepository
	auditRepo AuditRepository
	logger    logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Produto.
func NewService(repo ProductRepository, auditRepo AuditRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, auditRepo: auditRepo, logger: logger}
}

// validateProduct aplica as regras de negócio comuns a create e update.
func validateProduct(product domain.Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return apperror.NewValidationError("O nome do produto é obrigatório.")
	}
	if product.Stock < 0 {
		return apperror.NewValidationError("O estoque deve ser um inteiro maior ou igual a zero.")
	}
	if product.Unit == "" || product.Category == "" || product.Brand == "" || product.Status == "" {
		return apperror.NewValidationError("Unidade, categoria, marca e status são obrigatórios.")
	}
	return nil
}

// toGoContext converte o domain.Context abstrato para o context.Context nativo.
func toGoContext(ctx domain.Context) context.Context {
	if ctxGo, ok := ctx.(context.Context); ok {
		return ctxGo
	}
	return context.Background()
}

// --- Implementação: CreateProduct ---

// CreateProduct valida e persiste um novo produto. A pré-checagem de nome
// duplicado dá uma mensagem amigável; a palavra final é do índice único no DB.
func (s *Service) CreateProduct(ctx domain.Context, product domain.Product) (domain.Product, error) {
	ctxGo := toGoContext(ctx)

	// 1. Validação de Regras de Negócio
	if err := validateProduct(product); err != nil {
		return domain.Product{}, err
	}

	// 2. Pré-checagem de unicidade do nome (case-insensitive)
	existingID, err := s.repo.FindIDByName(ctxGo, product.Name, "")
	if err != nil {
		return domain.Product{}, err
	}
	if existingID != "" {
		return domain.Product{}, apperror.NewDuplicateNameError(product.Name)
	}

	// 3. Preenchimento do ID e defaults
	product.ID = uuid.New().String()
	// Image sem valor fica como string vazia (o zero value já garante isso).

	// 4. Delegação para a Camada de Persistência (Repository)
	createdProduct, err := s.repo.Save(ctxGo, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.logger.Info("Produto criado com sucesso.", map[string]interface{}{
		"product_id": createdProduct.ID,
		"name":       createdProduct.Name,
	})
	return createdProduct, nil
}

// --- Implementação: UpdateProduct ---

// UpdateProduct valida e aplica todas as alterações de um produto existente.
// A captura do estoque anterior, a atualização da linha e o registro de
// auditoria (quando o estoque muda) acontecem em uma única transação no
// repositório: nenhum leitor observa uma mudança de estoque sem o registro
// correspondente, nem o contrário.
func (s *Service) UpdateProduct(ctx domain.Context, id string, product domain.Product, changedBy string) (domain.Product, error) {
	ctxGo := toGoContext(ctx)

	// 1. Validação de Regras de Negócio (mesmas regras do create)
	if err := validateProduct(product); err != nil {
		return domain.Product{}, err
	}

	// 2. Pré-checagem de unicidade do nome, excluindo o próprio produto
	existingID, err := s.repo.FindIDByName(ctxGo, product.Name, id)
	if err != nil {
		return domain.Product{}, err
	}
	if existingID != "" {
		return domain.Product{}, apperror.NewDuplicateNameError(product.Name)
	}

	// 3. Autor da mudança: default quando a requisição não informa
	if changedBy == "" {
		changedBy = domain.DefaultActor
	}

	// 4. Delegação para a transação de atualização + auditoria
	updatedProduct, err := s.repo.Update(ctxGo, id, product, changedBy)
	if err != nil {
		return domain.Product{}, err
	}

	s.logger.Info("Produto atualizado com sucesso.", map[string]interface{}{
		"product_id": updatedProduct.ID,
		"stock":      updatedProduct.Stock,
		"changed_by": changedBy,
	})
	return updatedProduct, nil
}

// --- Implementação: DeleteProduct ---

// DeleteProduct remove o produto. O histórico de auditoria do ID é mantido
// (referência pendurada por decisão de projeto).
func (s *Service) DeleteProduct(ctx domain.Context, id string) error {
	ctxGo := toGoContext(ctx)

	if err := s.repo.Delete(ctxGo, id); err != nil {
		return err
	}

	s.logger.Info("Produto removido com sucesso.", map[string]interface{}{"product_id": id})
	return nil
}

// --- Implementação: Leituras ---

// GetProductByID busca um único produto.
func (s *Service) GetProductByID(ctx domain.Context, id string) (domain.Product, error) {
	return s.repo.FindByID(toGoContext(ctx), id)
}

// ListProducts retorna os produtos, opcionalmente filtrados por categoria.
func (s *Service) ListProducts(ctx domain.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return s.repo.FindAll(toGoContext(ctx), filter)
}

// SearchProducts busca produtos por substring do nome (case-insensitive).
// Padrão vazio retorna lista vazia sem consultar o repositório.
func (s *Service) SearchProducts(ctx domain.Context, name string) ([]domain.Product, error) {
	if name == "" {
		return []domain.Product{}, nil
	}
	return s.repo.SearchByName(toGoContext(ctx), strings.ToLower(name))
}

// GetProductHistory retorna o histórico de estoque de um produto, do mais
// recente para o mais antigo. Funciona também para produtos já removidos.
func (s *Service) GetProductHistory(ctx domain.Context, id string) ([]domain.StockAudit, error) {
	return s.auditRepo.FindByProductID(toGoContext(ctx), id)
}
