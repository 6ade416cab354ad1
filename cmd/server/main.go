// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"eduassist-go/internal/config"
	"eduassist-go/internal/handler"
	"eduassist-go/internal/knowledge"
	"eduassist-go/internal/middleware"
	"eduassist-go/internal/pipeline"
	"eduassist-go/internal/repository"
	"eduassist-go/internal/service"
	"eduassist-go/pkg/database"
	"eduassist-go/pkg/es"
	"eduassist-go/pkg/kafka"
	"eduassist-go/pkg/kvstore"
	"eduassist-go/pkg/llm"
	"eduassist-go/pkg/log"
	"eduassist-go/pkg/storage"
	"eduassist-go/pkg/tasks"
	"eduassist-go/pkg/token"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化键值存储后端
	store := openStore(cfg)

	// 4. 初始化 Repository
	keys := repository.Keys{Prefix: cfg.Storage.KeyPrefix}
	migrator := repository.NewLegacyMigrator(store, keys, cfg.UI.PreviousChatTitle, uuid.NewString, time.Now)
	sessionRepo := repository.NewSessionRepository(store, keys, migrator, cfg.UI.NewChatTitle, time.Now)
	messageRepo := repository.NewMessageRepository(store, keys, sessionRepo, cfg.UI.MediaRemovedMarker)
	preferenceRepo := repository.NewPreferenceRepository(store, keys)
	userRepo := repository.NewUserRepository(store, keys)

	// 5. 初始化 AI 客户端和检索索引
	llmClient, err := llm.NewClient(context.Background(), cfg.LLM)
	if err != nil {
		log.Fatal("初始化 AI 客户端失败", err)
	}
	kb := knowledge.Default()

	var (
		searcher service.TranscriptSearcher
		index    pipeline.Index
	)
	if cfg.Elasticsearch.Enabled {
		if err := es.InitES(cfg.Elasticsearch); err != nil {
			log.Fatal("es 初始化失败", err)
		}
		transcripts := es.NewTranscriptIndex(es.ESClient, cfg.Elasticsearch.IndexName)
		searcher, index = transcripts, transcripts
	}

	// 6. 初始化转录索引管道，启用 Kafka 时异步消费
	processor := pipeline.NewProcessor(messageRepo, index)
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()

	var (
		publisher tasks.Publisher
		producer  *kafka.Producer
	)
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka)
		publisher = producer
		go kafka.StartConsumer(consumerCtx, cfg.Kafka, processor)
	} else {
		publisher = pipeline.NewInline(processor)
	}

	// 7. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	userService := service.NewUserService(userRepo, jwtManager)
	preferenceService := service.NewPreferenceService(preferenceRepo)
	sessionService := service.NewSessionService(sessionRepo, messageRepo, preferenceRepo, llmClient, kb, publisher, searcher, cfg.UI)

	// 8. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 9. 注册路由
	handler.RegisterRoutes(r, jwtManager, handler.Handlers{
		Auth:       handler.NewAuthHandler(userService),
		Session:    handler.NewSessionHandler(sessionService, preferenceService),
		Chat:       handler.NewChatHandler(sessionService, jwtManager),
		Preference: handler.NewPreferenceHandler(preferenceService, kb),
	})

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	stopConsumer()
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Warnf("关闭 Kafka 生产者失败: %v", err)
		}
	}
	log.Info("服务已优雅关闭")
}

// openStore 按配置选择键值存储后端，初始化失败直接退出。
func openStore(cfg config.Config) kvstore.Backend {
	quota := cfg.Storage.QuotaBytes
	switch cfg.Storage.Backend {
	case "memory":
		return kvstore.NewMemoryStore(quota)
	case "redis":
		database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
		return kvstore.NewRedisStore(database.RDB, strings.TrimSuffix(cfg.Storage.KeyPrefix, ":"), quota)
	case "mysql", "sqlite":
		if cfg.Storage.Backend == "mysql" {
			database.InitMySQL(cfg.Database.MySQL.DSN)
		} else {
			database.InitSQLite(cfg.Database.SQLite.Path)
		}
		store, err := kvstore.NewSQLStore(database.DB, quota)
		if err != nil {
			log.Fatal("初始化 SQL 键值存储失败", err)
		}
		return store
	case "minio":
		storage.InitMinIO(cfg.MinIO)
		return kvstore.NewMinioStore(storage.MinioClient, cfg.MinIO.BucketName, quota)
	default:
		log.Fatalf("未知的存储后端: %s", cfg.Storage.Backend)
		return nil
	}
}
