//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入不同，Wire在编译期生成代码
// 3. 优势：零运行时开销、类型安全、编译期检测循环依赖
//
// Wire工作流程：
// Step 1: 编写wire.go（本文件），定义Providers和Injector
// Step 2: 运行 `wire gen ./cmd/api`
// Step 3: Wire生成wire_gen.go，包含完整的依赖创建代码
// Step 4: main.go调用wire_gen.go中的InitializeApp()
//
// 说明:本Injector组装file存储驱动的形态(无Redis、无会话存储、
// 无事件发布);redis驱动与可选依赖的组装见main.go的手动注入版本

package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"

	appbook "github.com/xiebiao/library/internal/application/book"
	apploan "github.com/xiebiao/library/internal/application/loan"
	appmetadata "github.com/xiebiao/library/internal/application/metadata"
	appnotification "github.com/xiebiao/library/internal/application/notification"
	appuser "github.com/xiebiao/library/internal/application/user"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/metadata"
	"github.com/xiebiao/library/internal/domain/notification"
	"github.com/xiebiao/library/internal/domain/user"
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
)

// ========================================
// Wire Provider Sets (依赖分组)
// ========================================

// infrastructureSet 基础设施层依赖
var infrastructureSet = wire.NewSet(
	config.Load,          // 加载配置文件
	provideFileStore,     // 文件快照存储
	provideBookRepo,      // 图书仓储
	provideNotifRepo,     // 通知仓储
	provideDirectory,     // 静态身份目录
	provideMetadataCli,   // Google Books客户端
	provideJWTManager,    // JWT管理器
	provideSessionStore,  // 会话存储(file驱动下为nil)
	provideEventNoop,     // 事件发布(file形态不启用)
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	notification.NewService, // 通知领域服务
	provideBookService,      // 图书领域服务
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appbook.NewRegisterBookUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewDeleteBookUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewListBooksUseCase,
	apploan.NewRequestLoanUseCase,
	apploan.NewApproveLoanUseCase,
	apploan.NewRejectLoanUseCase,
	apploan.NewReturnBookUseCase,
	apploan.NewForceReturnUseCase,
	apploan.NewPendingRequestsUseCase,
	appnotification.NewListNotificationsUseCase,
	appnotification.NewMarkAllReadUseCase,
	appmetadata.NewSearchMetadataUseCase,
)

// handlerSet HTTP处理器与中间件依赖
var handlerSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewBookHandler,
	handler.NewLoanHandler,
	handler.NewNotificationHandler,
	handler.NewMetadataHandler,
	middleware.NewAuthMiddleware,
)

// ========================================
// Custom Providers (自定义Provider)
// ========================================

func provideFileStore(cfg *config.Config) (kv.Store, error) {
	return file.NewStore(cfg.Storage.FileDir)
}

func provideBookRepo(cfg *config.Config, store kv.Store) (book.Repository, error) {
	return kv.NewBookRepository(context.Background(), store, cfg.Storage.BooksKey)
}

func provideNotifRepo(cfg *config.Config, store kv.Store) (notification.Repository, error) {
	return kv.NewNotificationRepository(context.Background(), store, cfg.Storage.NotificationsKey)
}

func provideDirectory(cfg *config.Config) (user.Directory, error) {
	return identity.NewStaticDirectory(cfg.Users)
}

func provideMetadataCli(cfg *config.Config) metadata.Searcher {
	return inframetadata.NewGoogleBooksClient(cfg.Metadata)
}

// provideJWTManager 从配置创建JWT管理器
// 教学要点：config.Config包含多个字段,Wire无法自动知道如何从
// Config提取参数,所以需要手动编写Provider
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideSessionStore file驱动形态没有Redis,会话存储为nil,
// 认证中间件与登录/登出用例对nil做了降级处理
func provideSessionStore() *redis.SessionStore {
	return nil
}

// provideEventNoop file形态不发布变更事件
func provideEventNoop() book.EventPublisher {
	return nil
}

func provideBookService(
	repo book.Repository,
	notifier notification.Service,
	directory user.Directory,
	events book.EventPublisher,
) book.Service {
	return book.NewService(repo, notifier, directory, events)
}

// provideGinEngine 创建并配置Gin引擎
func provideGinEngine(
	cfg *config.Config,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	loanHandler *handler.LoanHandler,
	notificationHandler *handler.NotificationHandler,
	metadataHandler *handler.MetadataHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics.InitMetrics()

	r := gin.Default()
	r.Use(middleware.Metrics())
	registerRoutes(r, userHandler, bookHandler, loanHandler, notificationHandler, metadataHandler, authMiddleware)
	return r
}

// ========================================
// Wire Injector (依赖注入器)
// ========================================

// InitializeApp 初始化整个应用
// 返回：配置好的Gin引擎
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		domainSet,
		applicationSet,
		handlerSet,
		provideGinEngine,
	)

	// 返回值是占位符,实际运行时由wire_gen.go替代
	return nil, nil
}
