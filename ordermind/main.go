package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ordermind/ordermind/agents/actions"
	"ordermind/ordermind/agents/configs"
	"ordermind/ordermind/agents/core"
	"ordermind/ordermind/config"
	"ordermind/ordermind/controllers"
	"ordermind/ordermind/routes"
	"ordermind/ordermind/services/llm"
	"ordermind/ordermind/services/rag"
	"ordermind/ordermind/sources/psql"
	"ordermind/ordermind/sources/psql/dao"
	"ordermind/ordermind/sources/storage"
	"ordermind/ordermind/utils/logging"

	"go.uber.org/zap"
)

func main() {
	logging.InitLogger()
	defer logging.Sync()
	cfg := config.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := psql.NewDatabase(ctx, cfg)
	if err != nil {
		logging.ErrorLogger.Error("database connection error", zap.Error(err))
		logging.AppLogger.Fatal("database connection error", zap.Error(err))
	}
	defer db.Close()
	sqlDB, err := db.DB.DB()
	if err != nil {
		logging.AppLogger.Fatal("database handle error", zap.Error(err))
	}

	minioClient, err := storage.NewMinIOClient(ctx, cfg)
	if err != nil {
		logging.ErrorLogger.Error("minio connection error", zap.Error(err))
		logging.AppLogger.Fatal("minio connection error", zap.Error(err))
	}

	prompts, err := configs.LoadConfig(cfg.PromptsFile)
	if err != nil {
		logging.AppLogger.Fatal("prompt config error", zap.Error(err))
	}

	userDAO := dao.NewUserDAO(db.DB)
	orderDAO := dao.NewOrderDAO(db.DB)
	memoryDAO := dao.NewMemoryDAO(db.DB)
	vectorDAO := dao.NewVectorDAO(db.DB)

	model := llm.NewClient(llm.Options{
		APIKey:         cfg.OpenAIAPIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		Model:          cfg.OpenAIModel,
		EmbeddingModel: cfg.OpenAIEmbeddingModel,
		MaxRetries:     -1,
	})
	agent := core.NewBaseAgent(prompts, model, actions.NewDataActions(orderDAO))
	ragService := rag.NewService(model, model, vectorDAO, minioClient, prompts.RAGAnswer, prompts.RAGTopK)

	handler := routes.NewRouter(cfg, userDAO, routes.Controllers{
		Auth:   controllers.NewAuthController(userDAO, cfg.JWTSecret),
		Orders: controllers.NewOrderController(orderDAO),
		Chat:   controllers.NewChatController(memoryDAO, model, cfg.ChatStreamTimeout),
		Agent:  controllers.NewAgentController(agent),
		RAG:    controllers.NewRAGController(ragService, minioClient),
		Health: controllers.NewHealthController(sqlDB),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logging.AppLogger.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
			logging.AppLogger.Fatal("server listen error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}
