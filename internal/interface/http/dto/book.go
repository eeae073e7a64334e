package dto

// RegisterBookRequest HTTP图书登记请求
// 说明:字段级业务校验(长度、年份范围、ISBN校验位)由领域服务执行,
// 这里只做结构绑定,让领域层返回逐字段的校验错误
type RegisterBookRequest struct {
	Title  string `json:"title" binding:"required" example:"Go语言实战"`
	Author string `json:"author" binding:"required" example:"威廉·肯尼迪"`
	Year   int    `json:"year" binding:"required" example:"2017"`
	Genre  string `json:"genre" example:"计算机"`
	ISBN   string `json:"isbn" example:"9787115428028"`
	Stock  int    `json:"stock" example:"3"` // 未指定时默认1
}

// UpdateBookRequest HTTP图书编辑请求
// 只允许修改描述性字段,状态与库存由生命周期操作维护
type UpdateBookRequest struct {
	Title  string `json:"title" binding:"required" example:"Go语言实战(第2版)"`
	Author string `json:"author" binding:"required" example:"威廉·肯尼迪"`
	Year   int    `json:"year" binding:"required" example:"2022"`
	Genre  string `json:"genre" example:"计算机"`
	ISBN   string `json:"isbn" example:"9787115428028"`
}

// ApproveLoanRequest HTTP借阅审批请求
type ApproveLoanRequest struct {
	DurationDays int `json:"duration_days" example:"7"` // 借期(天),未指定时默认7天
}

// ListBooksQuery HTTP图书列表查询参数
type ListBooksQuery struct {
	Keyword string `form:"keyword" binding:"omitempty,max=100" example:"Go"`
}

// MetadataSearchQuery HTTP元数据搜索查询参数
type MetadataSearchQuery struct {
	Q string `form:"q" binding:"required,max=200" example:"Dune"`
}
