package metadata

import (
	"context"

	"github.com/xiebiao/library/internal/domain/metadata"
)

// SearchMetadataUseCase 图书元数据搜索用例
// 用于登记表单的预填充:按标题搜索外部书目,返回可直接
// 填入表单的候选(标题/作者/年份/类型/ISBN)
type SearchMetadataUseCase struct {
	searcher metadata.Searcher
}

// NewSearchMetadataUseCase 创建搜索用例
func NewSearchMetadataUseCase(searcher metadata.Searcher) *SearchMetadataUseCase {
	return &SearchMetadataUseCase{searcher: searcher}
}

// Execute 执行搜索,最多返回5条候选
func (uc *SearchMetadataUseCase) Execute(ctx context.Context, query string) ([]metadata.Candidate, error) {
	return uc.searcher.Search(ctx, query)
}
