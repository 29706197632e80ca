package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"app-builder-ai-api/internal/application/appgen"
	"app-builder-ai-api/internal/domain/entity"
	"app-builder-ai-api/internal/domain/repository"
	"app-builder-ai-api/internal/interfaces/http/dto"
	"app-builder-ai-api/pkg/logger"
)

// ProjectBuildHandler 项目最近一次构建的读取接口
type ProjectBuildHandler struct {
	// store 为 nil 时所有接口返回 404
	store repository.BuildSnapshotRepository
}

// NewProjectBuildHandler 创建处理器
func NewProjectBuildHandler(store repository.BuildSnapshotRepository) *ProjectBuildHandler {
	return &ProjectBuildHandler{store: store}
}

// GetBuild 返回构建快照
// @Summary 获取最近一次构建
// @Tags Build
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 200 {object} dto.BuildSnapshotResponse
// @Router /api/projects/{pid}/build [get]
func (h *ProjectBuildHandler) GetBuild(c *gin.Context) {
	snapshot, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToBuildSnapshotResponse(snapshot))
}

// GetPreview 以 HTML 文档返回预览页
func (h *ProjectBuildHandler) GetPreview(c *gin.Context) {
	snapshot, ok := h.load(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(snapshot.Result.PreviewHTML))
}

// GetArchive 打包下载项目文件
func (h *ProjectBuildHandler) GetArchive(c *gin.Context) {
	snapshot, ok := h.load(c)
	if !ok {
		return
	}

	data, err := appgen.Archive(snapshot.Result.Files, snapshot.CreatedAt)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to archive build", err)
		writeError(c, http.StatusInternalServerError, "failed to archive build", err.Error())
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+appgen.ArchiveName(snapshot.Result.Blueprint)+`"`)
	c.Data(http.StatusOK, "application/zip", data)
}

// GetTree 返回文件树
func (h *ProjectBuildHandler) GetTree(c *gin.Context) {
	snapshot, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"tree": appgen.BuildFileTree(snapshot.Result.Files)})
}

func (h *ProjectBuildHandler) load(c *gin.Context) (*entity.BuildSnapshot, bool) {
	projectID := c.Param("pid")
	ctx := withProject(c, projectID)

	if h.store == nil {
		writeError(c, http.StatusNotFound, errBuildNotFound, "")
		return nil, false
	}

	snapshot, err := h.store.Get(ctx, projectID)
	if err != nil {
		logger.Error(ctx, "failed to load build snapshot", err)
		writeError(c, http.StatusInternalServerError, errBuildLoadError, err.Error())
		return nil, false
	}
	if snapshot == nil || snapshot.Result == nil {
		writeError(c, http.StatusNotFound, errBuildNotFound, "")
		return nil, false
	}
	return snapshot, true
}
