package exportservice_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kaleshwar-2005/inventory-management-app/internal/domain"
	"github.com/kaleshwar-2005/inventory-management-app/internal/pkg/logger"
	"github.com/kaleshwar-2005/inventory-management-app/internal/service/exportservice"
	"github.com/kaleshwar-2005/inventory-management-app/internal/service/importservice"
)

// fakeFinder devolve uma lista fixa de produtos.
type fakeFinder struct {
	products []domain.Product
}

func (f *fakeFinder) FindAll(_ context.Context, _ domain.ProductFilter) ([]domain.Product, error) {
	return f.products, nil
}

func newService(products []domain.Product) *exportservice.Service {
	return exportservice.NewService(&fakeFinder{products: products}, logger.NewLogger("fatal"))
}

// TestExportProducts_Empty testa que um inventário vazio exporta apenas o cabeçalho.
func TestExportProducts_Empty(t *testing.T) {
	svc := newService([]domain.Product{})

	data, err := svc.ExportProducts(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, "name,unit,category,brand,stock,status,image", string(data))
}

// TestExportProducts_QuotingAndOrder testa o formato exato: todos os campos
// entre aspas (inclusive vazios), aspas internas duplicadas, estoque em decimal.
func TestExportProducts_QuotingAndOrder(t *testing.T) {
	svc := newService([]domain.Product{
		{ID: "p1", Name: "Rice", Unit: "kg", Category: "Grocery", Brand: "X", Stock: 10, Status: "In Stock", Image: "rice.png"},
		{ID: "p2", Name: `Açúcar "Extra"`, Unit: "", Category: "", Brand: "", Stock: 0, Status: "Out of Stock", Image: ""},
	})

	data, err := svc.ExportProducts(context.Background())

	assert.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "name,unit,category,brand,stock,status,image", lines[0])
	assert.Equal(t, `"Rice","kg","Grocery","X","10","In Stock","rice.png"`, lines[1])
	assert.Equal(t, `"Açúcar ""Extra""","","","","0","Out of Stock",""`, lines[2])
}

// parseCSV converte o documento exportado de volta em linhas de importação,
// da mesma forma que o handler de upload faz (cabeçalho → campos por nome).
func parseCSV(t *testing.T, data []byte) []domain.ImportRow {
	t.Helper()
	reader := csv.NewReader(bytes.NewReader(data))

	header, err := reader.Read()
	assert.NoError(t, err)

	rows := []domain.ImportRow{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		assert.NoError(t, err)

		row := domain.ImportRow{}
		for i, column := range header {
			row[column] = record[i]
		}
		rows = append(rows, row)
	}
	return rows
}

// emptyImportRepo simula um banco vazio para o round trip de importação.
type emptyImportRepo struct {
	saved []domain.Product
}

func (r *emptyImportRepo) FindIDByName(_ context.Context, _ string, _ string) (string, error) {
	return "", nil
}

func (r *emptyImportRepo) Save(_ context.Context, product domain.Product) (domain.Product, error) {
	r.saved = append(r.saved, product)
	return product, nil
}

// TestExportImport_RoundTrip testa que exportar o inventário e importar o
// resultado em um banco vazio recria a mesma quantidade de produtos, com os
// mesmos campos.
func TestExportImport_RoundTrip(t *testing.T) {
	original := []domain.Product{
		{ID: "p1", Name: "Rice", Unit: "kg", Category: "Grocery", Brand: "X", Stock: 10, Status: "In Stock", Image: "rice.png"},
		{ID: "p2", Name: `Açúcar "Extra"`, Unit: "g", Category: "Grocery", Brand: "Y", Stock: 0, Status: "Out of Stock", Image: ""},
		{ID: "p3", Name: "Feijão, preto", Unit: "kg", Category: "Grocery", Brand: "Z", Stock: 2, Status: "In Stock", Image: ""},
	}
	exporter := newService(original)

	data, err := exporter.ExportProducts(context.Background())
	assert.NoError(t, err)

	rows := parseCSV(t, data)
	assert.Len(t, rows, len(original))

	repo := &emptyImportRepo{}
	importer := importservice.NewService(repo, logger.NewLogger("fatal"))

	summary, err := importer.ImportProducts(context.Background(), rows)

	assert.NoError(t, err)
	assert.Equal(t, len(original), summary.Added)
	assert.Equal(t, 0, summary.Skipped)

	for i, p := range original {
		assert.Equal(t, p.Name, repo.saved[i].Name)
		assert.Equal(t, p.Stock, repo.saved[i].Stock)
		assert.Equal(t, p.Status, repo.saved[i].Status)
		assert.Equal(t, p.Image, repo.saved[i].Image)
	}
}
