package handler

import (
	"github.com/gin-gonic/gin"

	appmetadata "github.com/xiebiao/library/internal/application/metadata"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/pkg/response"
)

// MetadataHandler 图书元数据HTTP处理器
type MetadataHandler struct {
	searchUseCase *appmetadata.SearchMetadataUseCase
}

// NewMetadataHandler 创建元数据处理器
func NewMetadataHandler(searchUseCase *appmetadata.SearchMetadataUseCase) *MetadataHandler {
	return &MetadataHandler{searchUseCase: searchUseCase}
}

// SearchMetadata 元数据搜索
// @Summary      元数据搜索
// @Description  按标题搜索外部书目(Google Books),返回最多5条候选用于登记表单预填充
// @Tags         元数据
// @Produce      json
// @Security     BearerAuth
// @Param        q query string true "标题关键词"
// @Success      200 {object} response.Response{data=[]metadata.Candidate}
// @Failure      502 {object} response.Response "外部查询失败"
// @Router       /api/v1/metadata/search [get]
func (h *MetadataHandler) SearchMetadata(c *gin.Context) {
	var query dto.MetadataSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.searchUseCase.Execute(c.Request.Context(), query.Q)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
