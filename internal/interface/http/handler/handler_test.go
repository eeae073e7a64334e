package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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
	"github.com/xiebiao/library/internal/infrastructure/persistence/kv"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/jwt"
)

// 教学说明：HTTP接口端到端测试
//
// 测试场景覆盖：
// 1. 登录获取Token、认证与管理员权限校验
// 2. 完整借阅生命周期(登记 → 申请 → 审批 → 归还)
// 3. 通知的产生与已读标记
// 4. 普通用户的图书列表可见性过滤
//
// 全部组件在进程内组装(内存存储 + httptest元数据后端),不依赖外部服务

// envelope 统一响应结构(镜像response.Response,Data保留原始JSON便于二次解析)
type envelope struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
	Data    json.RawMessage   `json:"data"`
}

// bookView 图书视图(测试只解析断言用到的字段)
type bookView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Stock       int    `json:"stock"`
	Status      string `json:"status"`
	Requester   string `json:"requester"`
	Borrower    string `json:"borrower"`
	Approver    string `json:"approver"`
	BorrowUntil string `json:"borrow_until"`
}

// newTestRouter 进程内组装完整路由
// 组装链与main.go一致,存储换成内存实现,元数据后端换成metadataURL
func newTestRouter(t *testing.T, metadataURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	store := kv.NewMemory()

	bookRepo, err := kv.NewBookRepository(ctx, store, "books")
	require.NoError(t, err, "恢复图书集合失败")
	notificationRepo, err := kv.NewNotificationRepository(ctx, store, "notifications")
	require.NoError(t, err, "恢复通知账本失败")

	directory, err := identity.NewStaticDirectory([]config.UserConfig{
		{ID: "admin-1", Username: "admin", Password: "admin123", Role: "admin"},
		{ID: "reader-1", Username: "zhangsan", Password: "pass123", Role: "user"},
	})
	require.NoError(t, err, "加载身份目录失败")

	metadataClient := inframetadata.NewGoogleBooksClient(config.MetadataConfig{
		BaseURL: metadataURL,
		Timeout: time.Second,
	})
	jwtManager := jwt.NewManager("test-secret", 2*time.Hour, 24*time.Hour)

	notificationService := notification.NewService(notificationRepo)
	bookService := book.NewService(bookRepo, notificationService, directory, nil)

	userHandler := handler.NewUserHandler(
		appuser.NewLoginUseCase(directory, jwtManager, nil),
		appuser.NewLogoutUseCase(nil),
	)
	bookHandler := handler.NewBookHandler(
		appbook.NewRegisterBookUseCase(bookService, directory),
		appbook.NewUpdateBookUseCase(bookService, directory),
		appbook.NewDeleteBookUseCase(bookService),
		appbook.NewGetBookUseCase(bookService, directory),
		appbook.NewListBooksUseCase(bookService, directory),
	)
	loanHandler := handler.NewLoanHandler(
		apploan.NewRequestLoanUseCase(bookService, directory),
		apploan.NewApproveLoanUseCase(bookService, directory),
		apploan.NewRejectLoanUseCase(bookService, directory),
		apploan.NewReturnBookUseCase(bookService, directory),
		apploan.NewForceReturnUseCase(bookService, directory),
		apploan.NewPendingRequestsUseCase(bookService, directory),
	)
	notificationHandler := handler.NewNotificationHandler(
		appnotification.NewListNotificationsUseCase(notificationService),
		appnotification.NewMarkAllReadUseCase(notificationService),
	)
	metadataHandler := handler.NewMetadataHandler(appmetadata.NewSearchMetadataUseCase(metadataClient))
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, nil)

	r := gin.New()
	v1 := r.Group("/api/v1")
	{
		users := v1.Group("/users")
		{
			users.POST("/login", userHandler.Login)
			users.POST("/logout", authMiddleware.RequireAuth(), userHandler.Logout)
		}

		authorized := v1.Group("")
		authorized.Use(authMiddleware.RequireAuth())
		{
			books := authorized.Group("/books")
			{
				books.GET("", bookHandler.ListBooks)
				books.GET("/:id", bookHandler.GetBook)
				books.POST("/:id/request", loanHandler.RequestLoan)
				books.POST("/:id/return", loanHandler.ReturnBook)

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

			authorized.GET("/loans/pending", authMiddleware.RequireAdmin(), loanHandler.PendingRequests)

			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", notificationHandler.ListNotifications)
				notifications.POST("/read-all", notificationHandler.MarkAllRead)
			}

			authorized.GET("/metadata/search", authMiddleware.RequireAdmin(), metadataHandler.SearchMetadata)
		}
	}

	return r
}

// doRequest 发送请求并解析统一响应
func doRequest(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *envelope {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err, "序列化请求体失败")
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, "业务错误也使用HTTP 200,错误码在响应体中")

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "解析响应失败")
	return &resp
}

// login 登录并返回Access Token
func login(t *testing.T, r *gin.Engine, username, password string) string {
	t.Helper()

	resp := doRequest(t, r, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, 0, resp.Code, "登录应该成功: %s", resp.Message)

	var data struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.NotEmpty(t, data.AccessToken)
	return data.AccessToken
}

// registerBook 管理员登记图书,返回图书ID
func registerBook(t *testing.T, r *gin.Engine, adminToken, title string, stock int) string {
	t.Helper()

	resp := doRequest(t, r, http.MethodPost, "/api/v1/books", adminToken, map[string]interface{}{
		"title":  title,
		"author": "刘慈欣",
		"year":   2008,
		"genre":  "科幻",
		"stock":  stock,
	})
	require.Equal(t, 0, resp.Code, "登记应该成功: %s", resp.Message)

	var v bookView
	require.NoError(t, json.Unmarshal(resp.Data, &v))
	require.NotEmpty(t, v.ID)
	return v.ID
}

// TestLogin 测试登录
func TestLogin(t *testing.T) {
	r := newTestRouter(t, "http://metadata.invalid")

	t.Run("正常登录", func(t *testing.T) {
		token := login(t, r, "admin", "admin123")
		assert.NotEmpty(t, token)
		t.Log("✓ 登录成功")
	})

	t.Run("密码错误", func(t *testing.T) {
		resp := doRequest(t, r, http.MethodPost, "/api/v1/users/login", "", map[string]string{
			"username": "admin",
			"password": "wrong",
		})
		assert.Equal(t, 40103, resp.Code, "密码错误应返回认证失败")
		t.Logf("✓ 错误密码正确被拒绝: %s", resp.Message)
	})

	t.Run("未知用户", func(t *testing.T) {
		resp := doRequest(t, r, http.MethodPost, "/api/v1/users/login", "", map[string]string{
			"username": "nobody",
			"password": "whatever",
		})
		// 与密码错误返回相同错误,不暴露用户是否存在
		assert.Equal(t, 40103, resp.Code)
	})
}

// TestAuthGuards 测试认证与权限守卫
func TestAuthGuards(t *testing.T) {
	r := newTestRouter(t, "http://metadata.invalid")

	t.Run("未登录不能访问", func(t *testing.T) {
		resp := doRequest(t, r, http.MethodGet, "/api/v1/books", "", nil)
		assert.Equal(t, 40100, resp.Code)
		t.Logf("✓ 未登录正确被拒绝: %s", resp.Message)
	})

	t.Run("非法Token被拒绝", func(t *testing.T) {
		resp := doRequest(t, r, http.MethodGet, "/api/v1/books", "not-a-token", nil)
		assert.Equal(t, 40101, resp.Code)
	})

	t.Run("普通用户不能登记图书", func(t *testing.T) {
		readerToken := login(t, r, "zhangsan", "pass123")
		resp := doRequest(t, r, http.MethodPost, "/api/v1/books", readerToken, map[string]interface{}{
			"title":  "三体",
			"author": "刘慈欣",
			"year":   2008,
		})
		assert.Equal(t, 40300, resp.Code, "普通用户应被管理员守卫拒绝")
		t.Logf("✓ 非管理员正确被拒绝: %s", resp.Message)
	})
}

// TestLoanLifecycle 测试完整借阅生命周期
func TestLoanLifecycle(t *testing.T) {
	r := newTestRouter(t, "http://metadata.invalid")
	adminToken := login(t, r, "admin", "admin123")
	readerToken := login(t, r, "zhangsan", "pass123")

	bookID := registerBook(t, r, adminToken, "三体", 1)

	// 1. 读者申请借阅
	resp := doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/v1/books/%s/request", bookID), readerToken, nil)
	require.Equal(t, 0, resp.Code, "申请应该成功: %s", resp.Message)

	var v bookView
	require.NoError(t, json.Unmarshal(resp.Data, &v))
	assert.Equal(t, "requested", v.Status)
	assert.Equal(t, "zhangsan", v.Requester)

	// 2. 管理员查看待审批列表
	resp = doRequest(t, r, http.MethodGet, "/api/v1/loans/pending", adminToken, nil)
	require.Equal(t, 0, resp.Code)
	var pending []bookView
	require.NoError(t, json.Unmarshal(resp.Data, &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, bookID, pending[0].ID)

	// 3. 管理员批准(空请求体,默认借期7天)
	resp = doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/v1/books/%s/approve", bookID), adminToken, nil)
	require.Equal(t, 0, resp.Code, "批准应该成功: %s", resp.Message)
	require.NoError(t, json.Unmarshal(resp.Data, &v))
	assert.Equal(t, "borrowed", v.Status)
	assert.Equal(t, "zhangsan", v.Borrower)
	assert.Equal(t, "admin", v.Approver)
	assert.Equal(t, 0, v.Stock, "批准后库存扣减")
	assert.Equal(t, time.Now().AddDate(0, 0, 7).Format("2006-01-02"), v.BorrowUntil)

	// 4. 读者收到审批通知
	resp = doRequest(t, r, http.MethodGet, "/api/v1/notifications?unread=true", readerToken, nil)
	require.Equal(t, 0, resp.Code)
	var notifications []struct {
		Message string `json:"message"`
		Read    bool   `json:"read"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &notifications))
	require.Len(t, notifications, 1, "批准应产生恰好一条通知")
	assert.Contains(t, notifications[0].Message, "三体")
	assert.Contains(t, notifications[0].Message, "admin")

	// 5. 全部标记已读(幂等)
	resp = doRequest(t, r, http.MethodPost, "/api/v1/notifications/read-all", readerToken, nil)
	require.Equal(t, 0, resp.Code)
	var marked struct {
		Marked int `json:"marked"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &marked))
	assert.Equal(t, 1, marked.Marked)

	resp = doRequest(t, r, http.MethodPost, "/api/v1/notifications/read-all", readerToken, nil)
	require.NoError(t, json.Unmarshal(resp.Data, &marked))
	assert.Equal(t, 0, marked.Marked, "重复标记应返回0")

	// 6. 读者归还
	resp = doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/v1/books/%s/return", bookID), readerToken, nil)
	require.Equal(t, 0, resp.Code, "归还应该成功: %s", resp.Message)
	require.NoError(t, json.Unmarshal(resp.Data, &v))
	assert.Equal(t, "available", v.Status)
	assert.Equal(t, 1, v.Stock, "归还后库存恢复")
	assert.Empty(t, v.Borrower)

	t.Log("✓ 借阅生命周期测试通过")
}

// TestRejectLoan 测试驳回申请
func TestRejectLoan(t *testing.T) {
	r := newTestRouter(t, "http://metadata.invalid")
	adminToken := login(t, r, "admin", "admin123")
	readerToken := login(t, r, "zhangsan", "pass123")

	bookID := registerBook(t, r, adminToken, "球状闪电", 1)

	resp := doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/v1/books/%s/request", bookID), readerToken, nil)
	require.Equal(t, 0, resp.Code)

	resp = doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/v1/books/%s/reject", bookID), adminToken, nil)
	require.Equal(t, 0, resp.Code, "驳回应该成功: %s", resp.Message)

	var v bookView
	require.NoError(t, json.Unmarshal(resp.Data, &v))
	assert.Equal(t, "available", v.Status)
	assert.Empty(t, v.Requester)

	// 驳回不产生通知
	resp = doRequest(t, r, http.MethodGet, "/api/v1/notifications", readerToken, nil)
	var notifications []struct{}
	require.NoError(t, json.Unmarshal(resp.Data, &notifications))
	assert.Empty(t, notifications, "驳回不应产生通知")

	t.Log("✓ 驳回测试通过")
}

// TestListVisibility 测试图书列表可见性过滤
func TestListVisibility(t *testing.T) {
	r := newTestRouter(t, "http://metadata.invalid")
	adminToken := login(t, r, "admin", "admin123")
	readerToken := login(t, r, "zhangsan", "pass123")

	availableID := registerBook(t, r, adminToken, "三体", 1)
	requestedID := registerBook(t, r, adminToken, "沙丘", 1)
	doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/v1/books/%s/request", requestedID), readerToken, nil)

	// 普通用户只看到可借阅的图书
	resp := doRequest(t, r, http.MethodGet, "/api/v1/books", readerToken, nil)
	require.Equal(t, 0, resp.Code)
	var books []bookView
	require.NoError(t, json.Unmarshal(resp.Data, &books))
	require.Len(t, books, 1)
	assert.Equal(t, availableID, books[0].ID)

	// 管理员看到全部
	resp = doRequest(t, r, http.MethodGet, "/api/v1/books", adminToken, nil)
	require.NoError(t, json.Unmarshal(resp.Data, &books))
	assert.Len(t, books, 2)

	// 关键词过滤
	resp = doRequest(t, r, http.MethodGet, "/api/v1/books?keyword=沙丘", adminToken, nil)
	require.NoError(t, json.Unmarshal(resp.Data, &books))
	require.Len(t, books, 1)
	assert.Equal(t, "沙丘", books[0].Title)

	t.Log("✓ 可见性过滤测试通过")
}

// TestRegisterBookValidation 测试登记字段校验
func TestRegisterBookValidation(t *testing.T) {
	r := newTestRouter(t, "http://metadata.invalid")
	adminToken := login(t, r, "admin", "admin123")

	resp := doRequest(t, r, http.MethodPost, "/api/v1/books", adminToken, map[string]interface{}{
		"title":  "短", // 标题过短
		"author": "刘慈欣",
		"year":   999, // 年份超范围
		"isbn":   "9787115428021",
	})
	assert.Equal(t, 40900, resp.Code, "校验失败应返回字段级错误")
	assert.Contains(t, resp.Fields, "title")
	assert.Contains(t, resp.Fields, "year")
	assert.Contains(t, resp.Fields, "isbn")

	t.Logf("✓ 字段校验测试通过: %v", resp.Fields)
}

// TestMetadataSearch 测试元数据搜索(表单预填充)
func TestMetadataSearch(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"items": [
				{"volumeInfo": {
					"title": "Dune",
					"authors": ["Frank Herbert"],
					"publishedDate": "1965-08-01",
					"categories": ["Fiction"],
					"industryIdentifiers": [{"type": "ISBN_13", "identifier": "9780441013593"}]
				}}
			]
		}`)
	}))
	defer backend.Close()

	r := newTestRouter(t, backend.URL)
	adminToken := login(t, r, "admin", "admin123")
	readerToken := login(t, r, "zhangsan", "pass123")

	t.Run("管理员搜索成功", func(t *testing.T) {
		resp := doRequest(t, r, http.MethodGet, "/api/v1/metadata/search?q=Dune", adminToken, nil)
		require.Equal(t, 0, resp.Code, "搜索应该成功: %s", resp.Message)

		var candidates []struct {
			Title string `json:"title"`
			Year  int    `json:"year"`
			ISBN  string `json:"isbn"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &candidates))
		require.Len(t, candidates, 1)
		assert.Equal(t, "Dune", candidates[0].Title)
		assert.Equal(t, 1965, candidates[0].Year)
		assert.Equal(t, "9780441013593", candidates[0].ISBN)
	})

	t.Run("普通用户不能搜索", func(t *testing.T) {
		resp := doRequest(t, r, http.MethodGet, "/api/v1/metadata/search?q=Dune", readerToken, nil)
		assert.Equal(t, 40300, resp.Code)
	})
}
