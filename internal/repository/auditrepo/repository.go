package auditrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/kaleshwar-2005/inventory-management-app/internal/domain"
	"github.com/kaleshwar-2005/inventory-management-app/internal/errors"
	"github.com/kaleshwar-2005/inventory-management-app/internal/pkg/logger"
)

// AuditRepository lê o log de auditoria de estoque (inventory_logs).
// A escrita acontece apenas dentro da transação de atualização de produto
// (ver productrepo.Update); este repositório é somente leitura.
type AuditRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewAuditRepository cria e retorna uma nova instância do Repositório de Auditoria.
func NewAuditRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *AuditRepository {
	return &AuditRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// FindByProductID retorna o histórico de estoque de um produto, do mais recente
// para o mais antigo. Empates de timestamp são desempatados pelo id sequencial,
// preservando a ordem de inserção. O produto referenciado pode já ter sido
// removido; o histórico continua consultável mesmo assim.
func (r *AuditRepository) FindByProductID(ctx context.Context, productID string) ([]domain.StockAudit, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const querySQL = `
		SELECT id, product_id, old_stock, new_stock, changed_by, changed_at
		FROM inventory_logs
		WHERE product_id = $1
		ORDER BY changed_at DESC, id DESC`

	rows, err := r.DB.QueryContext(ctxTimeout, querySQL, productID)
	if err != nil {
		r.logger.Error("Falha ao buscar histórico de estoque no DB.", err)
		return nil, errors.NewDBError("Falha ao buscar histórico de estoque", err)
	}
	defer rows.Close()

	entries := []domain.StockAudit{}
	for rows.Next() {
		var e domain.StockAudit
		if err := rows.Scan(&e.ID, &e.ProductID, &e.OldStock, &e.NewStock, &e.ChangedBy, &e.ChangedAt); err != nil {
			return nil, errors.NewDBError("Falha ao mapear registro de auditoria", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar registros de auditoria", err)
	}

	return entries, nil
}
