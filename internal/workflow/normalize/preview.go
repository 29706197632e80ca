package normalize

import (
	_ "embed"
	"encoding/json"
	"strings"
	"text/template"

	"app-builder-ai-api/internal/domain/entity"
)

//go:embed templates/preview.html.tmpl
var previewSource string

// 预览页只是应用外壳的视觉占位，与生成的文件无关
var previewTemplate = template.Must(template.New("preview").Parse(previewSource))

const (
	previewListLimit = 8
	toastMillis      = 1400
)

var (
	defaultPreviewPages    = []string{"Home", "Dashboard", "Settings"}
	defaultPreviewFeatures = []string{"Create items", "Edit items", "Search", "Basic dashboard"}
)

type previewData struct {
	AppName      string
	Description  string
	PagesJSON    string
	FeaturesJSON string
	ToastMillis  int
}

// RenderPreview 由蓝图生成自包含的预览 HTML
func RenderPreview(bp entity.Blueprint) string {
	name := bp.AppName
	if name == "" {
		name = entity.DefaultAppName
	}
	data := previewData{
		AppName:      EscapeHTML(name),
		Description:  EscapeHTML(bp.Description),
		PagesJSON:    scriptList(bp.Pages, defaultPreviewPages),
		FeaturesJSON: scriptList(bp.Features, defaultPreviewFeatures),
		ToastMillis:  toastMillis,
	}

	var b strings.Builder
	if err := previewTemplate.Execute(&b, data); err != nil {
		// 模板与数据均为内部固定结构，不会走到这里
		return ""
	}
	return b.String()
}

// scriptList 序列化为内联脚本可用的 JSON 数组；json.Marshal 会转义 < > &，模型文本无法闭合 script 标签
func scriptList(items, fallback []string) string {
	if len(items) == 0 {
		items = fallback
	}
	if len(items) > previewListLimit {
		items = items[:previewListLimit]
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}
