package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Pacotes de infraestrutura e utilitários
	"github.com/kaleshwar-2005/inventory-management-app/config"
	"github.com/kaleshwar-2005/inventory-management-app/internal/pkg/cache"
	"github.com/kaleshwar-2005/inventory-management-app/internal/pkg/database"
	"github.com/kaleshwar-2005/inventory-management-app/internal/pkg/logger"

	// Camadas do inventário para Injeção de Dependências
	"github.com/kaleshwar-2005/inventory-management-app/internal/api/product" // Handlers
	"github.com/kaleshwar-2005/inventory-management-app/internal/api/router"  // Roteador central
	"github.com/kaleshwar-2005/inventory-management-app/internal/repository/auditrepo"
	"github.com/kaleshwar-2005/inventory-management-app/internal/repository/productrepo" // Acesso a Dados
	"github.com/kaleshwar-2005/inventory-management-app/internal/service/exportservice"
	"github.com/kaleshwar-2005/inventory-management-app/internal/service/importservice"
	"github.com/kaleshwar-2005/inventory-management-app/internal/service/productservice" // Lógica de Negócio
)

func main() {
	// 1. Configuração e Inicialização
	log.Println("⚡ Inicializando serviço de inventário...")

	// 0. CARREGAR VARIÁVEIS DE AMBIENTE (.env)
	// O godotenv.Load() procura por um arquivo chamado .env na raiz.
	if err := godotenv.Load(); err != nil {
		// Se o arquivo .env não for encontrado, avisamos, mas continuamos,
		// pois as variáveis essenciais podem estar no ambiente do sistema (ex: Docker).
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig() // Carrega as configurações (URLs, Timeouts, etc.)
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close() // Fecha a conexão de DB ao sair
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	log.Info("Conexão Redis estabelecida.", nil)

	// 3. INJEÇÃO DE DEPENDÊNCIAS (Montagem da Clean Architecture)
	// Ordem: Repository -> Service -> Handler

	// A. Repositórios (Camada de Acesso a Dados)
	productRepo := productrepo.NewProductRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTTL, log)
	auditRepo := auditrepo.NewAuditRepository(db, cfg.DBTimeout, log)
	log.Debug("Repositórios de Produto e Auditoria inicializados.", nil)

	// B. Serviços (Camada de Lógica de Negócio)
	productSvc := productservice.NewService(productRepo, auditRepo, log)
	importSvc := importservice.NewService(productRepo, log)
	exportSvc := exportservice.NewService(productRepo, log)
	log.Debug("Serviços de Produto, Importação e Exportação inicializados.", nil)

	// C. Handler (Camada de Apresentação)
	productHandler := product.NewHandler(productSvc, importSvc, exportSvc, log)
	log.Debug("Handler de Produto inicializado.", nil)

	// 4. Configuração e Início do Roteador/Servidor

	// O roteador recebe os Handlers e aplica os middlewares globais (rate limiting)
	r := router.NewRouter(productHandler, cacheClient, cfg.RateLimitMaxRequests, cfg.RateLimitPeriod)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r, // O roteador final
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor de inventário ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	// Lógica do Graceful Shutdown (captura de sinal)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	// Timeout para desligamento (usa o contexto)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
