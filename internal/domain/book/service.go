package book

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/xiebiao/library/internal/domain/user"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
)

// DefaultLoanDays 默认借期(天),审批未指定借期时使用
const DefaultLoanDays = 7

// Notifier 通知发送接口
// 由notification领域服务实现;批准借阅时引擎通过它追加一条站内通知
type Notifier interface {
	Notify(ctx context.Context, userID, message string) error
}

// EventPublisher 变更事件发布接口
// 设计说明:
// 1. 引擎不依赖任何UI框架的生命周期,状态变更通过显式事件对外广播
// 2. 表现层(或其他消费方)按需订阅;发布失败只记录日志,不影响业务结果
// 3. 具体实现为pkg/mq的RabbitMQ发布者,未配置时注入nil即可
type EventPublisher interface {
	Publish(routingKey string, event interface{}) error
}

// ChangeEvent 图书变更事件
type ChangeEvent struct {
	BookID string    `json:"book_id"`
	Action string    `json:"action"` // created/updated/deleted/requested/approved/rejected/returned
	Status Status    `json:"status"`
	Stock  int       `json:"stock"`
	At     time.Time `json:"at"`
}

// AddParams 创建图书参数
type AddParams struct {
	Title  string
	Author string
	Year   int
	Genre  string
	ISBN   string
	Stock  int // <=0时默认为1
}

// UpdateParams 编辑图书参数(仅描述性字段)
type UpdateParams struct {
	Title  string
	Author string
	Year   int
	Genre  string
	ISBN   string
}

// Service 图书目录与生命周期引擎(领域服务接口)
// 设计说明:
// 1. 引擎独占两个集合(图书、通知)的全部变更路径,表现层只能调用这些操作
// 2. 字段级校验只在创建/编辑路径执行;生命周期转换只校验状态/库存不变量
// 3. 引擎位于网络边界之后,生命周期转换按图书ID互斥,
//    防止并发审批重复扣减库存
type Service interface {
	// AddBook 登记新图书(管理员操作)
	// 业务规则:字段校验(标题/作者3-100字符、年份范围、ISBN校验位),
	// stock未指定时默认1,状态初始为available
	AddBook(ctx context.Context, params AddParams) (*Book, error)

	// UpdateBook 编辑图书描述性字段(管理员操作)
	// 与生命周期转换是互相独立的操作,不允许借此修改状态/库存/借阅字段
	UpdateBook(ctx context.Context, id string, params UpdateParams) (*Book, error)

	// DeleteBook 删除图书(管理员操作)
	// 无条件硬删除,借阅中的图书也允许删除(演示系统的既定行为)
	DeleteBook(ctx context.Context, id string) error

	// GetBook 查询单本图书
	GetBook(ctx context.Context, id string) (*Book, error)

	// ListBooks 按插入顺序查询图书列表
	// 支持关键词搜索(标题/作者/ISBN子串)与"仅可借阅"过滤
	ListBooks(ctx context.Context, params ListParams) ([]*Book, error)

	// PendingRequests 查询全部待审批的借阅申请(管理员视角)
	PendingRequests(ctx context.Context) ([]*Book, error)

	// RequestLoan 用户申请借阅(available → requested)
	RequestLoan(ctx context.Context, bookID, userID string) (*Book, error)

	// ApproveLoan 管理员批准借阅(requested → borrowed)
	// durationDays<=0时使用默认借期;副作用:向借阅人追加一条通知
	// (内容包含审批人、审批时间、应还日期)
	ApproveLoan(ctx context.Context, bookID, adminID string, durationDays int) (*Book, error)

	// RejectLoan 管理员拒绝借阅(requested → available),不发送通知
	RejectLoan(ctx context.Context, bookID string) (*Book, error)

	// ReturnBook 借阅人归还(borrowed → available),校验借阅人身份
	ReturnBook(ctx context.Context, bookID, userID string) (*Book, error)

	// ForceReturn 管理员强制归还(borrowed → available),不校验借阅人
	ForceReturn(ctx context.Context, bookID string) (*Book, error)
}

// service 领域服务实现
type service struct {
	repo      Repository
	notifier  Notifier
	directory user.Directory
	events    EventPublisher // 可为nil(未配置事件发布)
	locks     sync.Map       // 图书ID → *sync.Mutex(生命周期转换互斥)
}

// NewService 创建图书领域服务
// events可传nil表示不发布变更事件
func NewService(repo Repository, notifier Notifier, directory user.Directory, events EventPublisher) Service {
	return &service{
		repo:      repo,
		notifier:  notifier,
		directory: directory,
		events:    events,
	}
}

// AddBook 登记新图书
func (s *service) AddBook(ctx context.Context, params AddParams) (*Book, error) {
	// 1. 字段校验(逐字段收集错误,一次性返回)
	fields := validateFields(params.Title, params.Author, params.Year, params.Genre, params.ISBN)
	if params.Stock < 0 {
		fields["stock"] = "库存不能为负数"
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidation(fields)
	}

	// 2. 创建图书实体(ID为UUID,stock默认1,状态available)
	b := NewBook(uuid.NewString(), params.Title, params.Author, params.Year,
		params.Genre, params.ISBN, params.Stock)

	// 3. 持久化(快照写失败不回滚内存变更)
	if err := s.persist(s.repo.Save(ctx, b)); err != nil {
		return nil, err
	}

	s.publish("created", b)
	return b, nil
}

// UpdateBook 编辑图书描述性字段
func (s *service) UpdateBook(ctx context.Context, id string, params UpdateParams) (*Book, error) {
	fields := validateFields(params.Title, params.Author, params.Year, params.Genre, params.ISBN)
	if len(fields) > 0 {
		return nil, apperrors.NewValidation(fields)
	}

	unlock := s.lock(id)
	defer unlock()

	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	b.UpdateInfo(params.Title, params.Author, params.Year, params.Genre, params.ISBN)

	if err := s.persist(s.repo.Save(ctx, b)); err != nil {
		return nil, err
	}

	s.publish("updated", b)
	return b, nil
}

// DeleteBook 删除图书
func (s *service) DeleteBook(ctx context.Context, id string) error {
	unlock := s.lock(id)
	defer unlock()

	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.persist(s.repo.Delete(ctx, id)); err != nil {
		return err
	}

	s.publish("deleted", b)
	return nil
}

// GetBook 查询单本图书
func (s *service) GetBook(ctx context.Context, id string) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// ListBooks 查询图书列表
func (s *service) ListBooks(ctx context.Context, params ListParams) ([]*Book, error) {
	books, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*Book, 0, len(books))
	for _, b := range books {
		if params.AvailableOnly && (b.Status != StatusAvailable || b.Stock <= 0) {
			continue
		}
		if params.Keyword != "" && !matchKeyword(b, params.Keyword) {
			continue
		}
		result = append(result, b)
	}
	return result, nil
}

// PendingRequests 查询待审批借阅申请
func (s *service) PendingRequests(ctx context.Context) ([]*Book, error) {
	books, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	pending := make([]*Book, 0)
	for _, b := range books {
		if b.Status == StatusRequested {
			pending = append(pending, b)
		}
	}
	return pending, nil
}

// RequestLoan 申请借阅
func (s *service) RequestLoan(ctx context.Context, bookID, userID string) (*Book, error) {
	unlock := s.lock(bookID)
	defer unlock()

	b, err := s.repo.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	// 前置条件校验与状态转换(失败时不产生任何变更)
	if err := b.Request(userID, time.Now()); err != nil {
		return nil, err
	}

	if err := s.persist(s.repo.Save(ctx, b)); err != nil {
		return nil, err
	}

	s.publish("requested", b)
	return b, nil
}

// ApproveLoan 批准借阅
func (s *service) ApproveLoan(ctx context.Context, bookID, adminID string, durationDays int) (*Book, error) {
	if durationDays <= 0 {
		durationDays = DefaultLoanDays
	}

	unlock := s.lock(bookID)
	defer unlock()

	b, err := s.repo.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := b.Approve(adminID, time.Duration(durationDays)*24*time.Hour, now); err != nil {
		// 库存不足时申请保持待审批状态,不追加任何通知
		return nil, err
	}

	if err := s.persist(s.repo.Save(ctx, b)); err != nil {
		return nil, err
	}

	// 副作用:向借阅人追加通知(包含审批人、审批时间、应还日期)
	// 审批人ID是弱引用,查不到时解析为"未知用户"占位
	approver := s.directory.GetByID(ctx, adminID)
	message := fmt.Sprintf("借阅申请已通过:《%s》。审批人:%s,审批时间:%s,应还日期:%s",
		b.Title,
		approver.Username,
		now.Format("2006-01-02 15:04:05"),
		b.BorrowUntil.Format("2006-01-02"))

	if err := s.notifier.Notify(ctx, b.BorrowedBy, message); err != nil {
		// 通知追加失败不回滚已完成的状态转换
		log.Printf("追加借阅通知失败: %v", err)
	}

	s.publish("approved", b)
	return b, nil
}

// RejectLoan 拒绝借阅
func (s *service) RejectLoan(ctx context.Context, bookID string) (*Book, error) {
	unlock := s.lock(bookID)
	defer unlock()

	b, err := s.repo.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if err := b.Reject(time.Now()); err != nil {
		return nil, err
	}

	if err := s.persist(s.repo.Save(ctx, b)); err != nil {
		return nil, err
	}

	// 拒绝不发送通知(与批准不对称,保持产品现状)
	s.publish("rejected", b)
	return b, nil
}

// ReturnBook 借阅人归还
func (s *service) ReturnBook(ctx context.Context, bookID, userID string) (*Book, error) {
	unlock := s.lock(bookID)
	defer unlock()

	b, err := s.repo.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if err := b.ReturnBy(userID, time.Now()); err != nil {
		return nil, err
	}

	if err := s.persist(s.repo.Save(ctx, b)); err != nil {
		return nil, err
	}

	s.publish("returned", b)
	return b, nil
}

// ForceReturn 管理员强制归还
func (s *service) ForceReturn(ctx context.Context, bookID string) (*Book, error) {
	unlock := s.lock(bookID)
	defer unlock()

	b, err := s.repo.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if err := b.ForceReturn(time.Now()); err != nil {
		return nil, err
	}

	if err := s.persist(s.repo.Save(ctx, b)); err != nil {
		return nil, err
	}

	s.publish("returned", b)
	return b, nil
}

// =========================================
// 辅助函数
// =========================================

// lock 获取指定图书的互斥锁
// 学习要点:引擎位于网络边界之后,同一本书的读-改-写必须互斥,
// 否则两个并发审批可能把库存扣成负数
func (s *service) lock(bookID string) func() {
	v, _ := s.locks.LoadOrStore(bookID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// persist 处理仓储返回的错误
// 快照写入失败(ErrCodePersistenceWrite)只记录日志:内存变更已生效,
// 持久化状态允许暂时偏离(尽力而为的持久化契约)
func (s *service) persist(err error) error {
	if err == nil {
		return nil
	}
	if apperrors.HasCode(err, apperrors.ErrCodePersistenceWrite) {
		log.Printf("图书集合快照写入失败(内存状态已更新): %v", err)
		return nil
	}
	return err
}

// publish 记录生命周期转换指标并发布变更事件(尽力而为)
func (s *service) publish(action string, b *Book) {
	metrics.IncCounterVec(metrics.LoanTransitionsTotal, map[string]string{"action": action})

	if s.events == nil {
		return
	}
	event := ChangeEvent{
		BookID: b.ID,
		Action: action,
		Status: b.Status,
		Stock:  b.Stock,
		At:     time.Now(),
	}
	if err := s.events.Publish("book."+action, event); err != nil {
		log.Printf("发布变更事件失败: routing_key=book.%s: %v", action, err)
	}
}

// matchKeyword 关键词匹配(标题/作者/ISBN子串,不区分大小写)
func matchKeyword(b *Book, keyword string) bool {
	k := strings.ToLower(keyword)
	return strings.Contains(strings.ToLower(b.Title), k) ||
		strings.Contains(strings.ToLower(b.Author), k) ||
		(b.ISBN != "" && strings.Contains(strings.ToLower(b.ISBN), k))
}

// validateFields 字段级校验(创建/编辑共用)
// 业务规则:
// - 标题/作者:必填,3-100字符
// - 年份:1000 ≤ year ≤ 当前年份+1
// - 类型:可选,≤50字符
// - ISBN:可选,必须通过ISBN-10或ISBN-13校验位检查
func validateFields(title, author string, year int, genre, isbn string) map[string]string {
	fields := make(map[string]string)

	if n := utf8.RuneCountInString(title); n < 3 || n > 100 {
		fields["title"] = "标题长度应为3-100个字符"
	}
	if n := utf8.RuneCountInString(author); n < 3 || n > 100 {
		fields["author"] = "作者长度应为3-100个字符"
	}
	if maxYear := time.Now().Year() + 1; year < 1000 || year > maxYear {
		fields["year"] = fmt.Sprintf("年份应在1000-%d之间", maxYear)
	}
	if utf8.RuneCountInString(genre) > 50 {
		fields["genre"] = "类型不能超过50个字符"
	}
	if !IsValidISBN(isbn) {
		fields["isbn"] = "ISBN无效(必须是合法的ISBN-10或ISBN-13)"
	}

	return fields
}
