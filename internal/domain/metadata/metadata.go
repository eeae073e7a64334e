package metadata

import (
	"context"
)

// MaxResults 单次元数据搜索返回的最大候选数
const MaxResults = 5

// Candidate 图书元数据候选(用于登记表单预填充)
type Candidate struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Year     int    `json:"year"`
	Category string `json:"category"`
	ISBN     string `json:"isbn"`
}

// Searcher 元数据搜索接口
// 设计说明:领域层只声明接口,具体实现(Google Books客户端)
// 在基础设施层;查询失败统一包装为外部查询错误
type Searcher interface {
	// Search 按标题关键词搜索,最多返回MaxResults条候选
	// 空关键词返回空列表;网络或解析失败返回ErrCodeExternalLookup错误
	Search(ctx context.Context, query string) ([]Candidate, error)
}
