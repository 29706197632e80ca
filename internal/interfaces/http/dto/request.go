package dto

import (
	"encoding/json"
	"errors"

	"app-builder-ai-api/internal/domain/entity"
)

// ErrBodyNotObject 请求体不是 JSON 对象
var ErrBodyNotObject = errors.New("request body must be a JSON object")

// BuildRequest POST /api/build 请求
type BuildRequest struct {
	ProjectID string
	Messages  []entity.ConversationTurn
}

// ChatRequest POST /api/chat 请求
type ChatRequest struct {
	ProjectID string
	Messages  []entity.ConversationTurn
	Mode      entity.GenerationMode
	// UIContext 仅 edit 模式使用，缺失或不是对象时为 nil
	UIContext *entity.UIElementContext
}

// ParseBuildRequest 宽松解析构建请求：字段类型不符时取零值，而不是拒绝请求
func ParseBuildRequest(body []byte) (*BuildRequest, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	return &BuildRequest{
		ProjectID: stringValue(fields["projectId"]),
		Messages:  decodeTurns(fields["messages"]),
	}, nil
}

// ParseChatRequest 宽松解析对话请求
func ParseChatRequest(body []byte) (*ChatRequest, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	return &ChatRequest{
		ProjectID: stringValue(fields["projectId"]),
		Messages:  decodeTurns(fields["messages"]),
		Mode:      entity.ParseGenerationMode(stringValue(fields["mode"])),
		UIContext: decodeUIContext(fields["uiContext"]),
	}, nil
}

func decodeObject(raw []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	// "null" 能解码为 nil map
	if fields == nil {
		return nil, ErrBodyNotObject
	}
	return fields, nil
}

// decodeTurns messages 不是数组时返回空；非对象元素保留为空的轮次
func decodeTurns(raw json.RawMessage) []entity.ConversationTurn {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []entity.ConversationTurn{}
	}

	turns := make([]entity.ConversationTurn, 0, len(items))
	for _, item := range items {
		var fields map[string]json.RawMessage
		_ = json.Unmarshal(item, &fields)
		turns = append(turns, entity.ConversationTurn{
			ID:      stringValue(fields["id"]),
			Role:    entity.Role(stringValue(fields["role"])),
			Content: stringValue(fields["content"]),
		})
	}
	return turns
}

func decodeUIContext(raw json.RawMessage) *entity.UIElementContext {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil
	}
	return &entity.UIElementContext{
		Selector:    stringValue(fields["selector"]),
		Text:        stringValue(fields["text"]),
		HTMLSnippet: stringValue(fields["htmlSnippet"]),
		URL:         stringValue(fields["url"]),
	}
}

// stringValue 非字符串（含缺失）一律返回 ""
func stringValue(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}
