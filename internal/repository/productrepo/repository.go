package productrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/kaleshwar-2005/inventory-management-app/internal/domain"
	"github.com/kaleshwar-2005/inventory-management-app/internal/errors"
	"github.com/kaleshwar-2005/inventory-management-app/internal/pkg/cache"
	"github.com/kaleshwar-2005/inventory-management-app/internal/pkg/logger"
)

// uniqueViolation é o código de erro do PostgreSQL para violação de constraint UNIQUE.
// O índice único em lower(name) é o árbitro final da unicidade do nome: a checagem
// na camada de serviço é apenas um atalho para uma mensagem de erro mais amigável.
const uniqueViolation = pq.ErrorCode("23505")

// Chave de cache para produtos (estratégia Cache-Aside).
const productCacheKey = "product:%s"

// ProductRepository implementa o acesso a dados de produtos e a escrita
// transacional do log de auditoria de estoque.
type ProductRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewProductRepository cria e retorna uma nova instância do Repositório.
// Aqui injetamos as dependências de Infraestrutura (DB e Cache).
func NewProductRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, logger logger.Logger) *ProductRepository {
	return &ProductRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// isUniqueNameViolation verifica se o erro do driver corresponde ao índice único de nome.
func isUniqueNameViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == uniqueViolation
	}
	return false
}

// Save persiste um novo Produto no banco de dados.
// Uma corrida entre dois creates com o mesmo nome é resolvida pelo índice único:
// o perdedor recebe DuplicateNameError, mesmo tendo passado pela pré-checagem.
func (r *ProductRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const insertSQL = `
		INSERT INTO products (id, name, unit, category, brand, stock, status, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.DB.ExecContext(ctxTimeout, insertSQL,
		product.ID,
		product.Name,
		product.Unit,
		product.Category,
		product.Brand,
		product.Stock,
		product.Status,
		product.Image,
	)

	if err != nil {
		if isUniqueNameViolation(err) {
			return domain.Product{}, errors.NewDuplicateNameError(product.Name)
		}
		r.logger.Error("Falha ao inserir produto no DB.", err)
		return domain.Product{}, errors.NewDBError("Falha ao inserir produto", err)
	}

	return product, nil
}

// FindByID busca um produto pelo ID, utilizando a estratégia Cache-Aside.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(productCacheKey, id)
	var product domain.Product

	// 1. Tentar obter do Cache (Redis)
	cachedData, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		// Cache HIT
		if json.Unmarshal([]byte(cachedData), &product) == nil {
			return product, nil
		}
		// Se a desserialização falhar, continua para o DB
	} else if err != cache.ErrCacheMiss {
		// Erro real de cache (ex: conexão perdida): logamos, mas seguimos para o DB.
		r.logger.Warn("Falha ao ler do cache Redis.", map[string]interface{}{"key": key, "error": err.Error()})
	}

	// 2. Busca no Banco de Dados (PostgreSQL)
	const querySQL = `
		SELECT id, name, unit, category, brand, stock, status, image
		FROM products
		WHERE id = $1`

	row := r.DB.QueryRowContext(ctxTimeout, querySQL, id)
	err = row.Scan(
		&product.ID,
		&product.Name,
		&product.Unit,
		&product.Category,
		&product.Brand,
		&product.Stock,
		&product.Status,
		&product.Image,
	)

	if err == sql.ErrNoRows {
		return domain.Product{}, errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe na base de dados.", id))
	}
	if err != nil {
		return domain.Product{}, errors.NewDBError("Falha ao buscar produto no DB", err)
	}

	// 3. Popular o cache para futuras requisições (com TTL)
	productJSON, marshalErr := json.Marshal(product)
	if marshalErr == nil {
		r.Cache.Set(ctxTimeout, key, productJSON, r.CacheTTL)
	}

	return product, nil
}

// FindAll retorna todos os produtos, opcionalmente filtrados por categoria.
// Categoria vazia ou "All" não filtra nada.
func (r *ProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
		SELECT id, name, unit, category, brand, stock, status, image
		FROM products`
	var args []interface{}

	if filter.Category != "" && filter.Category != "All" {
		query += ` WHERE category = $1`
		args = append(args, filter.Category)
	}

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		return nil, errors.NewDBError("Falha ao listar produtos", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// SearchByName busca produtos cujo nome contenha o padrão informado (case-insensitive).
func (r *ProductRepository) SearchByName(ctx context.Context, name string) ([]domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const querySQL = `
		SELECT id, name, unit, category, brand, stock, status, image
		FROM products
		WHERE lower(name) LIKE $1`

	like := "%" + name + "%"
	rows, err := r.DB.QueryContext(ctxTimeout, querySQL, like)
	if err != nil {
		return nil, errors.NewDBError("Falha ao buscar produtos por nome", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// FindIDByName retorna o ID do produto com o nome informado (case-insensitive),
// ignorando o produto excludeID (usado no update para não conflitar consigo mesmo).
// Retorna string vazia quando não há produto com esse nome.
func (r *ProductRepository) FindIDByName(ctx context.Context, name, excludeID string) (string, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const querySQL = `
		SELECT id FROM products
		WHERE lower(name) = lower($1) AND id != $2`

	var id string
	err := r.DB.QueryRowContext(ctxTimeout, querySQL, name, excludeID).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", errors.NewDBError("Falha ao verificar unicidade do nome", err)
	}
	return id, nil
}

// Update aplica todas as alterações do produto e registra a auditoria de estoque
// em uma única transação: ou a linha do produto e o registro de auditoria são
// commitados juntos, ou nenhum dos dois fica visível.
func (r *ProductRepository) Update(ctx context.Context, id string, product domain.Product, changedBy string) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação de atualização de produto.", err)
		return domain.Product{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback() // Rollback em caso de erro

	// 1. Carregar a linha atual (com FOR UPDATE para bloquear a linha na transação).
	//    Aqui capturamos o oldStock e a imagem anterior.
	var current domain.Product
	const querySelect = `
		SELECT id, name, unit, category, brand, stock, status, image
		FROM products
		WHERE id = $1 FOR UPDATE`

	err = tx.QueryRowContext(ctxTimeout, querySelect, id).Scan(
		&current.ID, &current.Name, &current.Unit, &current.Category,
		&current.Brand, &current.Stock, &current.Status, &current.Image,
	)
	if err == sql.ErrNoRows {
		return domain.Product{}, errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe na base de dados.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao selecionar produto para atualização.", err)
		return domain.Product{}, errors.NewDBError("Falha ao buscar produto para atualização", err)
	}

	// 2. Imagem é opcional: quando o update não envia uma, o valor anterior é mantido.
	image := product.Image
	if image == "" {
		image = current.Image
	}

	// 3. Atualizar a linha do produto.
	const queryUpdate = `
		UPDATE products
		SET name = $1, unit = $2, category = $3, brand = $4, stock = $5, status = $6, image = $7
		WHERE id = $8`

	_, err = tx.ExecContext(ctxTimeout, queryUpdate,
		product.Name, product.Unit, product.Category, product.Brand,
		product.Stock, product.Status, image, id,
	)
	if err != nil {
		if isUniqueNameViolation(err) {
			return domain.Product{}, errors.NewDuplicateNameError(product.Name)
		}
		r.logger.Error("Falha ao atualizar produto.", err)
		return domain.Product{}, errors.NewDBError("Falha ao atualizar produto", err)
	}

	// 4. Exatamente um registro de auditoria quando (e somente quando) o estoque mudou.
	//    Se este INSERT falhar, o rollback desfaz também o UPDATE acima.
	if product.Stock != current.Stock {
		const queryAudit = `
			INSERT INTO inventory_logs (product_id, old_stock, new_stock, changed_by, changed_at)
			VALUES ($1, $2, $3, $4, $5)`

		_, err = tx.ExecContext(ctxTimeout, queryAudit,
			id, current.Stock, product.Stock, changedBy, time.Now().UTC(),
		)
		if err != nil {
			r.logger.Error("Falha ao inserir registro de auditoria de estoque.", err)
			return domain.Product{}, errors.NewDBError("Falha ao registrar auditoria de estoque", err)
		}
	}

	// 5. Commitar a transação.
	if commitErr := tx.Commit(); commitErr != nil {
		r.logger.Error("Falha ao commitar transação de atualização de produto.", commitErr)
		return domain.Product{}, errors.NewDBError("Falha ao commitar transação", commitErr)
	}

	// 6. Invalidar o cache do produto (a próxima leitura repopula do DB).
	if cacheErr := r.Cache.Delete(ctxTimeout, fmt.Sprintf(productCacheKey, id)); cacheErr != nil {
		r.logger.Warn("Falha ao invalidar cache do produto.", map[string]interface{}{"product_id": id, "error": cacheErr.Error()})
	}

	updated := product
	updated.ID = id
	updated.Image = image
	return updated, nil
}

// Delete remove o produto. O histórico de auditoria do ID é mantido de propósito.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao remover produto do DB.", err)
		return errors.NewDBError("Falha ao remover produto", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe na base de dados.", id))
	}

	if cacheErr := r.Cache.Delete(ctxTimeout, fmt.Sprintf(productCacheKey, id)); cacheErr != nil {
		r.logger.Warn("Falha ao invalidar cache do produto.", map[string]interface{}{"product_id": id, "error": cacheErr.Error()})
	}

	return nil
}

// scanProducts mapeia as linhas do resultado para a entidade de domínio.
func scanProducts(rows *sql.Rows) ([]domain.Product, error) {
	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Unit, &p.Category,
			&p.Brand, &p.Stock, &p.Status, &p.Image,
		); err != nil {
			return nil, errors.NewDBError("Falha ao mapear produto", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar produtos", err)
	}
	return products, nil
}
