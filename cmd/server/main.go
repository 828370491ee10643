// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clear-ai-go/internal/config"
	"clear-ai-go/internal/handler"
	"clear-ai-go/internal/middleware"
	"clear-ai-go/internal/model"
	"clear-ai-go/internal/pipeline"
	"clear-ai-go/internal/repository"
	"clear-ai-go/internal/service"
	"clear-ai-go/pkg/database"
	"clear-ai-go/pkg/es"
	"clear-ai-go/pkg/gemini"
	"clear-ai-go/pkg/kafka"
	"clear-ai-go/pkg/llm"
	"clear-ai-go/pkg/log"
	"clear-ai-go/pkg/storage"
	"clear-ai-go/pkg/token"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、缓存与外部基础设施
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	if err := database.DB.AutoMigrate(&model.Question{}, &model.User{}); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}
	storage.InitMinIO(cfg.MinIO)
	if err := es.InitES(cfg.Elasticsearch); err != nil {
		log.Fatalf("es 初始化失败: %v", err)
	}
	kafka.InitProducer(cfg.Kafka)

	// 4. 初始化模型客户端
	visionClient, err := gemini.NewClient(context.Background(), cfg.Gemini)
	if err != nil {
		log.Fatalf("视觉模型客户端初始化失败: %v", err)
	}
	llmClient, err := llm.NewClient(cfg.OpenAI)
	if err != nil {
		log.Fatalf("文本模型客户端初始化失败: %v", err)
	}

	// 5. 初始化 Repository
	questionRepo := repository.NewQuestionRepository(database.DB, database.RDB)
	userRepo := repository.NewUserRepository(database.DB)

	// 6. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	userService := service.NewUserService(userRepo, jwtManager)
	questionService := service.NewQuestionService(questionRepo, kafka.ProduceQuestionTask)
	extractService := service.NewExtractService(visionClient)
	translateService := service.NewTranslateService(llmClient)
	explainService := service.NewExplainService(llmClient)
	tutorService := service.NewTutorService(questionService, llmClient,
		cfg.Tutor.HistoryWindowOrDefault(), cfg.Tutor.MaxAnswerTokensOrDefault())
	searchService := service.NewSearchService(es.ESClient, cfg.Elasticsearch.IndexName)

	// 7. 初始化解析链路
	uploader := func(ctx context.Context, data []byte, fileName, contentType string) (string, error) {
		return storage.UploadImage(ctx, cfg.MinIO.BucketName, data, fileName, contentType)
	}
	analysisPipeline := pipeline.NewAnalysisPipeline(extractService, translateService, questionService, uploader)

	// 8. 启动后台 Kafka 消费者（问题索引）
	indexer := pipeline.NewIndexer(questionRepo, cfg.Elasticsearch.IndexName)
	go kafka.StartConsumer(cfg.Kafka, indexer)

	// 9. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 10. 注册路由
	apiV1 := r.Group("/api/v1")
	{
		auth := apiV1.Group("/auth")
		{
			auth.POST("/refreshToken", handler.NewAuthHandler(userService).RefreshToken)
		}

		users := apiV1.Group("/users")
		{
			users.POST("/register", handler.NewUserHandler(userService).Register)
			users.POST("/login", handler.NewUserHandler(userService).Login)

			authed := users.Group("/")
			authed.Use(middleware.AuthMiddleware(jwtManager, userService))
			{
				authed.GET("/me", handler.NewUserHandler(userService).GetProfile)
				authed.POST("/logout", handler.NewUserHandler(userService).Logout)
			}
		}

		// 图片解析入口，需要认证
		upload := apiV1.Group("/upload")
		upload.Use(middleware.AuthMiddleware(jwtManager, userService))
		{
			upload.POST("", handler.NewUploadHandler(analysisPipeline).Upload)
		}

		// 问题实体路由组，需要认证
		questionHandler := handler.NewQuestionHandler(questionService, explainService, tutorService)
		questions := apiV1.Group("/questions")
		questions.Use(middleware.AuthMiddleware(jwtManager, userService))
		{
			questions.POST("", questionHandler.Create)
			questions.GET("", questionHandler.List)
			questions.GET("/search", handler.NewSearchHandler(searchService).Search)
			questions.GET("/:id", questionHandler.Get)
			questions.PUT("/:id", questionHandler.Update)
			questions.DELETE("/:id", questionHandler.Delete)
			questions.POST("/:id/conversation", questionHandler.AppendConversation)
			questions.POST("/:id/explain", questionHandler.Explain)
			questions.POST("/:id/ask", questionHandler.Ask)
		}
	}

	// 辅导问答 WebSocket 路由，token 走路径参数
	r.GET("/tutor/:token", handler.NewTutorHandler(tutorService, jwtManager).Handle)

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}
	log.Info("服务已优雅关闭")
}
