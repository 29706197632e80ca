package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"app-builder-ai-api/internal/interfaces/http/dto"
	wfmodel "app-builder-ai-api/internal/workflow/model"
	"app-builder-ai-api/pkg/logger"
)

// ChatHandler 对话处理器
type ChatHandler struct {
	responder ChatResponder
}

// NewChatHandler 创建对话处理器
func NewChatHandler(responder ChatResponder) *ChatHandler {
	return &ChatHandler{responder: responder}
}

// Chat 生成下一条助手回复
// @Summary 对话
// @Tags Chat
// @Accept json
// @Produce json
// @Success 200 {object} dto.ChatReply
// @Failure 429 {object} dto.ErrorResponse
// @Router /api/chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		writeError(c, http.StatusBadRequest, errInvalidBody, err.Error())
		return
	}
	req, err := dto.ParseChatRequest(body)
	if err != nil {
		writeError(c, http.StatusBadRequest, errInvalidBody, err.Error())
		return
	}

	ctx := withProject(c, req.ProjectID)
	ctx = logger.WithContext(ctx, logger.ModeKey, string(req.Mode))
	c.Request = c.Request.WithContext(ctx)

	turn, err := h.responder.Reply(ctx, &wfmodel.ChatGenerateInput{
		ProjectID: req.ProjectID,
		Mode:      req.Mode,
		Turns:     req.Messages,
		UIContext: req.UIContext,
	})
	if err != nil {
		writeGenerationError(c, errChatFailed, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToChatReply(turn))
}
