package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/xiebiao/library/docs" // swagger文档(swag init生成)
	appbook "github.com/xiebiao/library/internal/application/book"
	apploan "github.com/xiebiao/library/internal/application/loan"
	appmetadata "github.com/xiebiao/library/internal/application/metadata"
	appnotification "github.com/xiebiao/library/internal/application/notification"
	appuser "github.com/xiebiao/library/internal/application/user"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/notification"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/identity"
	inframetadata "github.com/xiebiao/library/internal/infrastructure/metadata"
	"github.com/xiebiao/library/internal/infrastructure/persistence/file"
	"github.com/xiebiao/library/internal/infrastructure/persistence/kv"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/mq"
	"github.com/xiebiao/library/pkg/response"
)

// main 主程序入口
// 说明：手动依赖注入,组装链 Repository ← Service ← UseCase ← Handler
// (wire.go提供等价的Wire自动生成版本)
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 存储驱动: %s\n", cfg.Storage.Driver)
	fmt.Printf("  - 账号数量: %d\n", len(cfg.Users))

	// 2. 初始化指标
	metrics.InitMetrics()

	// 3. 初始化快照存储与可选的会话存储
	ctx := context.Background()
	var (
		store        kv.Store
		sessionStore *redis.SessionStore
	)
	switch cfg.Storage.Driver {
	case "redis":
		client, err := redis.NewClient(cfg)
		if err != nil {
			log.Fatalf("初始化Redis失败: %v", err)
		}
		store = redis.NewStore(client)
		sessionStore = redis.NewSessionStore(client)
	default:
		fileStore, err := file.NewStore(cfg.Storage.FileDir)
		if err != nil {
			log.Fatalf("初始化文件存储失败: %v", err)
		}
		store = fileStore
		fmt.Printf("✓ 文件存储就绪: %s\n", cfg.Storage.FileDir)
	}

	// 4. 依赖注入（手动组装）

	// 基础设施层
	bookRepo, err := kv.NewBookRepository(ctx, store, cfg.Storage.BooksKey)
	if err != nil {
		log.Fatalf("恢复图书集合失败: %v", err)
	}
	notificationRepo, err := kv.NewNotificationRepository(ctx, store, cfg.Storage.NotificationsKey)
	if err != nil {
		log.Fatalf("恢复通知账本失败: %v", err)
	}
	directory, err := identity.NewStaticDirectory(cfg.Users)
	if err != nil {
		log.Fatalf("加载身份目录失败: %v", err)
	}
	metadataClient := inframetadata.NewGoogleBooksClient(cfg.Metadata)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 可选:变更事件发布(RabbitMQ)
	var events book.EventPublisher
	if cfg.Events.Enabled {
		publisher, err := mq.NewPublisher(cfg.Events.URL, cfg.Events.Exchange, "topic")
		if err != nil {
			log.Fatalf("初始化事件发布者失败: %v", err)
		}
		defer publisher.Close()
		events = publisher
	}

	// 领域层
	notificationService := notification.NewService(notificationRepo)
	bookService := book.NewService(bookRepo, notificationService, directory, events)

	// 应用层
	loginUseCase := appuser.NewLoginUseCase(directory, jwtManager, sessionStore)
	logoutUseCase := appuser.NewLogoutUseCase(sessionStore)
	registerBookUseCase := appbook.NewRegisterBookUseCase(bookService, directory)
	updateBookUseCase := appbook.NewUpdateBookUseCase(bookService, directory)
	deleteBookUseCase := appbook.NewDeleteBookUseCase(bookService)
	getBookUseCase := appbook.NewGetBookUseCase(bookService, directory)
	listBooksUseCase := appbook.NewListBooksUseCase(bookService, directory)
	requestLoanUseCase := apploan.NewRequestLoanUseCase(bookService, directory)
	approveLoanUseCase := apploan.NewApproveLoanUseCase(bookService, directory)
	rejectLoanUseCase := apploan.NewRejectLoanUseCase(bookService, directory)
	returnBookUseCase := apploan.NewReturnBookUseCase(bookService, directory)
	forceReturnUseCase := apploan.NewForceReturnUseCase(bookService, directory)
	pendingRequestsUseCase := apploan.NewPendingRequestsUseCase(bookService, directory)
	listNotificationsUseCase := appnotification.NewListNotificationsUseCase(notificationService)
	markAllReadUseCase := appnotification.NewMarkAllReadUseCase(notificationService)
	searchMetadataUseCase := appmetadata.NewSearchMetadataUseCase(metadataClient)

	// 接口层
	userHandler := handler.NewUserHandler(loginUseCase, logoutUseCase)
	bookHandler := handler.NewBookHandler(
		registerBookUseCase, updateBookUseCase, deleteBookUseCase,
		getBookUseCase, listBooksUseCase,
	)
	loanHandler := handler.NewLoanHandler(
		requestLoanUseCase, approveLoanUseCase, rejectLoanUseCase,
		returnBookUseCase, forceReturnUseCase, pendingRequestsUseCase,
	)
	notificationHandler := handler.NewNotificationHandler(listNotificationsUseCase, markAllReadUseCase)
	metadataHandler := handler.NewMetadataHandler(searchMetadataUseCase)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 5. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.Metrics())

	// 6. 注册路由
	registerRoutes(r, userHandler, bookHandler, loanHandler, notificationHandler, metadataHandler, authMiddleware)

	// 7. 启动服务
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	fmt.Printf("\n🚀 服务启动成功！\n")
	fmt.Printf("   访问地址: http://localhost%s\n", addr)
	fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
	fmt.Printf("   用户登录: POST http://localhost%s/api/v1/users/login\n", addr)
	fmt.Printf("   图书列表: GET  http://localhost%s/api/v1/books (需要登录)\n", addr)
	fmt.Printf("   API文档:  http://localhost%s/swagger/index.html\n", addr)
	fmt.Printf("\n按Ctrl+C停止服务\n\n")

	if err := r.Run(addr); err != nil {
		log.Fatalf("启动服务失败: %v", err)
	}
}

// registerRoutes 注册路由
func registerRoutes(
	r *gin.Engine,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	loanHandler *handler.LoanHandler,
	notificationHandler *handler.NotificationHandler,
	metadataHandler *handler.MetadataHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标端点
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API路由组
	v1 := r.Group("/api/v1")
	{
		// 用户模块
		users := v1.Group("/users")
		{
			users.POST("/login", userHandler.Login) // 公开接口
			users.POST("/logout", authMiddleware.RequireAuth(), userHandler.Logout)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(authMiddleware.RequireAuth())
		{
			// 图书模块
			books := authorized.Group("/books")
			{
				books.GET("", bookHandler.ListBooks)
				books.GET("/:id", bookHandler.GetBook)

				// 借阅生命周期(用户操作)
				books.POST("/:id/request", loanHandler.RequestLoan)
				books.POST("/:id/return", loanHandler.ReturnBook)

				// 管理员操作
				admin := books.Group("")
				admin.Use(authMiddleware.RequireAdmin())
				{
					admin.POST("", bookHandler.RegisterBook)
					admin.PUT("/:id", bookHandler.UpdateBook)
					admin.DELETE("/:id", bookHandler.DeleteBook)
					admin.POST("/:id/approve", loanHandler.ApproveLoan)
					admin.POST("/:id/reject", loanHandler.RejectLoan)
					admin.POST("/:id/force-return", loanHandler.ForceReturn)
				}
			}

			// 待审批列表(管理员)
			authorized.GET("/loans/pending", authMiddleware.RequireAdmin(), loanHandler.PendingRequests)

			// 通知模块
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", notificationHandler.ListNotifications)
				notifications.POST("/read-all", notificationHandler.MarkAllRead)
			}

			// 元数据搜索(管理员登记表单预填充)
			authorized.GET("/metadata/search", authMiddleware.RequireAdmin(), metadataHandler.SearchMetadata)
		}
	}
}
