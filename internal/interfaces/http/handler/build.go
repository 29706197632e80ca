package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"app-builder-ai-api/internal/interfaces/http/dto"
	wfmodel "app-builder-ai-api/internal/workflow/model"
)

// BuildHandler 项目生成处理器
type BuildHandler struct {
	builder AppBuilder
}

// NewBuildHandler 创建项目生成处理器
func NewBuildHandler(builder AppBuilder) *BuildHandler {
	return &BuildHandler{builder: builder}
}

// Build 根据对话生成完整项目
// @Summary 生成项目
// @Tags Build
// @Accept json
// @Produce json
// @Success 200 {object} entity.BuildResult
// @Failure 429 {object} dto.ErrorResponse
// @Router /api/build [post]
func (h *BuildHandler) Build(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		writeError(c, http.StatusBadRequest, errInvalidBody, err.Error())
		return
	}
	req, err := dto.ParseBuildRequest(body)
	if err != nil {
		writeError(c, http.StatusBadRequest, errInvalidBody, err.Error())
		return
	}

	ctx := withProject(c, req.ProjectID)
	result, err := h.builder.Generate(ctx, &wfmodel.BuildGenerateInput{
		ProjectID: req.ProjectID,
		Turns:     req.Messages,
	})
	if err != nil {
		writeGenerationError(c, errBuildFailed, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
