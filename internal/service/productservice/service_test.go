package productservice_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kaleshwar-2005/inventory-management-app/internal/domain"
	apperror "github.com/kaleshwar-2005/inventory-management-app/internal/errors"
	"github.com/kaleshwar-2005/inventory-management-app/internal/pkg/logger"
	"github.com/kaleshwar-2005/inventory-management-app/internal/service/productservice"
)

// MockProductRepository é uma implementação mock da interface ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductRepository) SearchByName(ctx context.Context, name string) ([]domain.Product, error) {
	args := m.Called(ctx, name)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindIDByName(ctx context.Context, name, excludeID string) (string, error) {
	args := m.Called(ctx, name, excludeID)
	return args.String(0), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, id string, product domain.Product, changedBy string) (domain.Product, error) {
	args := m.Called(ctx, id, product, changedBy)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAuditRepository é uma implementação mock da interface AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) FindByProductID(ctx context.Context, productID string) ([]domain.StockAudit, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]domain.StockAudit), args.Error(1)
}

func newService() (*productservice.Service, *MockProductRepository, *MockAuditRepository) {
	mockRepo := new(MockProductRepository)
	mockAudit := new(MockAuditRepository)
	svc := productservice.NewService(mockRepo, mockAudit, logger.NewLogger("debug"))
	return svc, mockRepo, mockAudit
}

func validProduct() domain.Product {
	return domain.Product{
		Name:     "Rice",
		Unit:     "kg",
		Category: "Grocery",
		Brand:    "X",
		Stock:    10,
		Status:   "In Stock",
	}
}

// TestCreateProduct_Success testa a criação de um produto válido com ID atribuído pelo serviço.
func TestCreateProduct_Success(t *testing.T) {
	svc, mockRepo, _ := newService()

	input := validProduct()
	mockRepo.On("FindIDByName", mock.Anything, "Rice", "").Return("", nil)
	mockRepo.On("Save", mock.Anything, mock.MatchedBy(func(p domain.Product) bool {
		return p.ID != "" && p.Name == "Rice" && p.Stock == 10 && p.Image == ""
	})).Return(domain.Product{ID: "gerado-no-teste", Name: "Rice", Unit: "kg", Category: "Grocery", Brand: "X", Stock: 10, Status: "In Stock"}, nil)

	result, err := svc.CreateProduct(context.Background(), input)

	assert.NoError(t, err)
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, 10, result.Stock)
	mockRepo.AssertExpectations(t)
}

// TestCreateProduct_Fail_MissingName testa a rejeição de um produto sem nome.
func TestCreateProduct_Fail_MissingName(t *testing.T) {
	svc, mockRepo, _ := newService()

	input := validProduct()
	input.Name = ""

	_, err := svc.CreateProduct(context.Background(), input)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// TestCreateProduct_Fail_NegativeStock testa a rejeição de estoque negativo.
func TestCreateProduct_Fail_NegativeStock(t *testing.T) {
	svc, mockRepo, _ := newService()

	input := validProduct()
	input.Stock = -1

	_, err := svc.CreateProduct(context.Background(), input)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// TestCreateProduct_Fail_DuplicateName testa a rejeição de nome já existente
// (a pré-checagem é case-insensitive via lower(name) no repositório).
func TestCreateProduct_Fail_DuplicateName(t *testing.T) {
	svc, mockRepo, _ := newService()

	input := validProduct()
	mockRepo.On("FindIDByName", mock.Anything, "Rice", "").Return("id-existente", nil)

	_, err := svc.CreateProduct(context.Background(), input)

	assert.Error(t, err)
	assert.IsType(t, &apperror.DuplicateNameError{}, err)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

// TestUpdateProduct_Success_DefaultActor testa que o autor da mudança
// recebe o default "admin" quando a requisição não informa changedBy.
func TestUpdateProduct_Success_DefaultActor(t *testing.T) {
	svc, mockRepo, _ := newService()

	input := validProduct()
	input.Stock = 5
	updated := input
	updated.ID = "prod-1"

	mockRepo.On("FindIDByName", mock.Anything, "Rice", "prod-1").Return("", nil)
	mockRepo.On("Update", mock.Anything, "prod-1", input, domain.DefaultActor).Return(updated, nil)

	result, err := svc.UpdateProduct(context.Background(), "prod-1", input, "")

	assert.NoError(t, err)
	assert.Equal(t, 5, result.Stock)
	mockRepo.AssertExpectations(t)
}

// TestUpdateProduct_Success_ActorPropagated testa que o changedBy informado é repassado.
func TestUpdateProduct_Success_ActorPropagated(t *testing.T) {
	svc, mockRepo, _ := newService()

	input := validProduct()
	updated := input
	updated.ID = "prod-1"

	mockRepo.On("FindIDByName", mock.Anything, "Rice", "prod-1").Return("", nil)
	mockRepo.On("Update", mock.Anything, "prod-1", input, "maria").Return(updated, nil)

	_, err := svc.UpdateProduct(context.Background(), "prod-1", input, "maria")

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

// TestUpdateProduct_Fail_DuplicateName testa a rejeição quando outro produto
// (ID diferente) já possui o mesmo nome.
func TestUpdateProduct_Fail_DuplicateName(t *testing.T) {
	svc, mockRepo, _ := newService()

	input := validProduct()
	mockRepo.On("FindIDByName", mock.Anything, "Rice", "prod-1").Return("prod-2", nil)

	_, err := svc.UpdateProduct(context.Background(), "prod-1", input, "")

	assert.Error(t, err)
	assert.IsType(t, &apperror.DuplicateNameError{}, err)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

// TestUpdateProduct_Fail_NotFound testa a propagação de NotFoundError do repositório.
func TestUpdateProduct_Fail_NotFound(t *testing.T) {
	svc, mockRepo, _ := newService()

	input := validProduct()
	mockRepo.On("FindIDByName", mock.Anything, "Rice", "prod-x").Return("", nil)
	mockRepo.On("Update", mock.Anything, "prod-x", input, domain.DefaultActor).
		Return(domain.Product{}, apperror.NewNotFoundError("Produto com ID prod-x não existe na base de dados."))

	_, err := svc.UpdateProduct(context.Background(), "prod-x", input, "")

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockRepo.AssertExpectations(t)
}

// TestDeleteProduct_Fail_NotFound testa a remoção de um ID inexistente.
func TestDeleteProduct_Fail_NotFound(t *testing.T) {
	svc, mockRepo, _ := newService()

	mockRepo.On("Delete", mock.Anything, "prod-x").
		Return(apperror.NewNotFoundError("Produto com ID prod-x não existe na base de dados."))

	err := svc.DeleteProduct(context.Background(), "prod-x")

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockRepo.AssertExpectations(t)
}

// TestSearchProducts_EmptyPattern testa que padrão vazio retorna lista vazia
// sem consultar o repositório.
func TestSearchProducts_EmptyPattern(t *testing.T) {
	svc, mockRepo, _ := newService()

	result, err := svc.SearchProducts(context.Background(), "")

	assert.NoError(t, err)
	assert.Empty(t, result)
	mockRepo.AssertNotCalled(t, "SearchByName", mock.Anything, mock.Anything)
}

// TestSearchProducts_LowercasesPattern testa que o padrão é normalizado para
// minúsculas antes da busca case-insensitive.
func TestSearchProducts_LowercasesPattern(t *testing.T) {
	svc, mockRepo, _ := newService()

	mockRepo.On("SearchByName", mock.Anything, "rice").
		Return([]domain.Product{{ID: "prod-1", Name: "Rice"}}, nil)

	result, err := svc.SearchProducts(context.Background(), "RiCe")

	assert.NoError(t, err)
	assert.Len(t, result, 1)
	mockRepo.AssertExpectations(t)
}

// TestGetProductHistory_NewestFirst testa o repasse do histórico na ordem do repositório.
func TestGetProductHistory_NewestFirst(t *testing.T) {
	svc, _, mockAudit := newService()

	now := time.Now()
	entries := []domain.StockAudit{
		{ID: 2, ProductID: "prod-1", OldStock: 10, NewStock: 5, ChangedBy: "admin", ChangedAt: now},
		{ID: 1, ProductID: "prod-1", OldStock: 0, NewStock: 10, ChangedBy: "admin", ChangedAt: now.Add(-time.Hour)},
	}
	mockAudit.On("FindByProductID", mock.Anything, "prod-1").Return(entries, nil)

	result, err := svc.GetProductHistory(context.Background(), "prod-1")

	assert.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, int64(2), result[0].ID)
	mockAudit.AssertExpectations(t)
}
