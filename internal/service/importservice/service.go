package importservice

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/kaleshwar-2005/inventory-management-app/internal/domain"
	"github.com/kaleshwar-2005/inventory-management-app/internal/pkg/logger"
)

// StatusInStock e StatusOutOfStock são os defaults de status aplicados na
// importação quando a linha não informa um status próprio.
const (
	StatusInStock    = "In Stock"
	StatusOutOfStock = "Out of Stock"
)

// ProductRepository define o contrato que o reconciliador de importação espera
// da camada de Persistência.
type ProductRepository interface {
	FindIDByName(ctx context.Context, name, excludeID string) (string, error)
	Save(ctx context.Context, product domain.Product) (domain.Product, error)
}

// Service é o reconciliador de importação em lote.
//
// O processamento é estritamente sequencial, na ordem do arquivo: linhas
// posteriores precisam enxergar as decisões de unicidade tomadas pelas linhas
// anteriores do mesmo lote. Este laço não deve ser paralelizado.
type Service struct {
	repo   ProductRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Importação.
func NewService(repo ProductRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ImportProducts aplica a política linha a linha e devolve o resumo do lote.
//
// Política por linha: nome ausente → pulada; nome já existente no banco OU já
// criado por uma linha anterior do mesmo lote → pulada e registrada como
// duplicata; caso contrário, inserida com defaults. Falhas de persistência em
// uma linha (ex: corrida com uma escrita externa concorrente) rebaixam para
// "pulada" e o lote continua — não há atomicidade entre linhas.
func (s *Service) ImportProducts(ctx domain.Context, rows []domain.ImportRow) (domain.ImportSummary, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
	}

	summary := domain.ImportSummary{Duplicates: []domain.DuplicateRow{}}

	// Nomes (minúsculos) decididos neste lote → ID atribuído.
	// Inclui tanto os produtos criados aqui quanto os já encontrados no banco,
	// para que linhas repetidas não consultem o banco de novo.
	seen := map[string]string{}

	for _, row := range rows {
		// Cancelamento entre linhas: o lote para onde está e devolve o que já contou.
		if err := ctxGo.Err(); err != nil {
			s.logger.Warn("Importação interrompida por cancelamento de contexto.", map[string]interface{}{
				"added": summary.Added, "skipped": summary.Skipped,
			})
			return summary, err
		}

		name := row["name"]
		if name == "" {
			summary.Skipped++
			continue
		}

		lowered := strings.ToLower(name)

		// 1. Duplicata dentro do próprio lote
		if existingID, dup := seen[lowered]; dup {
			summary.Skipped++
			summary.Duplicates = append(summary.Duplicates, domain.DuplicateRow{Name: name, ExistingID: existingID})
			continue
		}

		// 2. Duplicata contra o banco (case-insensitive)
		existingID, err := s.repo.FindIDByName(ctxGo, name, "")
		if err != nil {
			// Falha de leitura não derruba o lote: a linha vira "pulada".
			s.logger.Error("Falha ao verificar nome na importação; linha pulada.", err)
			summary.Skipped++
			continue
		}
		if existingID != "" {
			summary.Skipped++
			summary.Duplicates = append(summary.Duplicates, domain.DuplicateRow{Name: name, ExistingID: existingID})
			seen[lowered] = existingID
			continue
		}

		// 3. Linha nova: montar o produto com os defaults de importação
		stock, convErr := strconv.Atoi(row["stock"])
		if convErr != nil || stock < 0 {
			stock = 0
		}

		status := row["status"]
		if status == "" {
			if stock > 0 {
				status = StatusInStock
			} else {
				status = StatusOutOfStock
			}
		}

		product := domain.Product{
			ID:       uuid.New().String(),
			Name:     name,
			Unit:     row["unit"],
			Category: row["category"],
			Brand:    row["brand"],
			Stock:    stock,
			Status:   status,
			Image:    row["image"],
		}

		if _, err := s.repo.Save(ctxGo, product); err != nil {
			// Corrida com uma escrita externa (índice único) ou falha de DB:
			// a linha é pulada e o lote segue para a próxima.
			s.logger.Error("Falha ao inserir linha importada; linha pulada.", err)
			summary.Skipped++
			continue
		}

		seen[lowered] = product.ID
		summary.Added++
	}

	s.logger.Info("Lote de importação concluído.", map[string]interface{}{
		"added":      summary.Added,
		"skipped":    summary.Skipped,
		"duplicates": len(summary.Duplicates),
	})
	return summary, nil
}
