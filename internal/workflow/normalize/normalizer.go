// Package normalize 把模型返回的构建文本修复为完整、可运行的最小项目
package normalize

import (
	"bytes"
	"encoding/json"
	"path"
	"strings"

	"app-builder-ai-api/internal/domain/entity"
	"app-builder-ai-api/internal/workflow/node"
)

const fallbackAppComponent = `export default function App() {
  return (
    <div className="min-h-screen bg-black text-white p-8">
      <h1 className="text-2xl font-bold">Generated App</h1>
      <p className="mt-2 text-gray-300">This is a starter app generated from your requirements.</p>
    </div>
  );
}
`

// Report 描述一次规范化做了什么，用于日志与指标
type Report struct {
	Extraction     node.Extraction
	ShapeValid     bool
	DroppedEntries int
	Synthesized    []string
}

// Outcome 指标标签：parsed / extracted / fallback
func (r Report) Outcome() string {
	switch {
	case !r.ShapeValid:
		return "fallback"
	case r.Extraction == node.ExtractionEmbedded:
		return "extracted"
	default:
		return "parsed"
	}
}

// FallbackBlueprint 模型输出不可用时的固定蓝图
func FallbackBlueprint() entity.Blueprint {
	return entity.Blueprint{
		AppName:     entity.DefaultAppName,
		Description: "App based on your chat requirements",
		Components:  []string{"App"},
		Features:    []string{"Core flows based on your answers"},
		Pages:       []string{"Home"},
	}
}

func fallbackFiles() []entity.ProjectFile {
	return []entity.ProjectFile{{Path: PathAppTSX, Content: fallbackAppComponent}}
}

// Normalize 从不失败：任何畸形输入都退化为默认值
func Normalize(raw string) (*entity.BuildResult, Report) {
	payload, extraction := node.ExtractJSONObject(raw)
	report := Report{Extraction: extraction}

	bp, files, dropped, ok := decodeBuild(payload)
	if ok {
		report.ShapeValid = true
		report.DroppedEntries = dropped
	} else {
		bp, files = FallbackBlueprint(), fallbackFiles()
	}

	files, report.Synthesized = ApplyScaffold(files, bp)

	return &entity.BuildResult{
		Blueprint:   bp,
		Files:       files,
		PreviewHTML: RenderPreview(bp),
	}, report
}

// decodeBuild 仅当 blueprint 为对象且 files 为数组时接受
func decodeBuild(payload json.RawMessage) (entity.Blueprint, []entity.ProjectFile, int, bool) {
	var top map[string]json.RawMessage
	if len(payload) == 0 || json.Unmarshal(payload, &top) != nil || top == nil {
		return entity.Blueprint{}, nil, 0, false
	}
	if jsonKind(top["blueprint"]) != '{' || jsonKind(top["files"]) != '[' {
		return entity.Blueprint{}, nil, 0, false
	}

	bp := decodeBlueprint(top["blueprint"])
	files, dropped := sanitizeFiles(top["files"])
	return bp, files, dropped, true
}

func decodeBlueprint(raw json.RawMessage) entity.Blueprint {
	var fields map[string]json.RawMessage
	_ = json.Unmarshal(raw, &fields)

	bp := entity.Blueprint{
		AppName:     stringField(fields["app_name"]),
		Description: stringField(fields["description"]),
		Components:  stringList(fields["components"]),
		Features:    stringList(fields["features"]),
		Pages:       stringList(fields["pages"]),
	}
	if strings.TrimSpace(bp.AppName) == "" {
		bp.AppName = entity.DefaultAppName
	}
	return bp
}

// sanitizeFiles 保留 path 与 content 均为字符串的条目，同一路径只保留第一条
func sanitizeFiles(raw json.RawMessage) ([]entity.ProjectFile, int) {
	var entries []json.RawMessage
	_ = json.Unmarshal(raw, &entries)

	files := make([]entity.ProjectFile, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	dropped := 0
	for _, e := range entries {
		var obj map[string]json.RawMessage
		if jsonKind(e) != '{' || json.Unmarshal(e, &obj) != nil {
			dropped++
			continue
		}
		p, okPath := asString(obj["path"])
		content, okContent := asString(obj["content"])
		if !okPath || !okContent {
			dropped++
			continue
		}
		p, ok := CleanPath(p)
		if !ok {
			dropped++
			continue
		}
		if _, dup := seen[p]; dup {
			dropped++
			continue
		}
		seen[p] = struct{}{}
		files = append(files, entity.ProjectFile{Path: p, Content: content})
	}
	return files, dropped
}

// CleanPath 统一为相对项目根的正斜杠路径；空路径或包含 .. 段时返回 false
func CleanPath(p string) (string, bool) {
	p = strings.TrimSpace(strings.ReplaceAll(p, `\`, "/"))
	for strings.HasPrefix(p, "./") || strings.HasPrefix(p, "/") {
		p = strings.TrimPrefix(strings.TrimPrefix(p, "./"), "/")
	}
	if p == "" {
		return "", false
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", false
		}
	}
	p = path.Clean(p)
	if p == "." {
		return "", false
	}
	return p, true
}

// jsonKind 返回 JSON 值的首字符，用于区分对象、数组、字符串
func jsonKind(raw json.RawMessage) byte {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 {
		return 0
	}
	return b[0]
}

func asString(raw json.RawMessage) (string, bool) {
	if jsonKind(raw) != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func stringField(raw json.RawMessage) string {
	s, _ := asString(raw)
	return s
}

// stringList 非数组视为空，数组中的非字符串元素丢弃
func stringList(raw json.RawMessage) []string {
	out := []string{}
	if jsonKind(raw) != '[' {
		return out
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return out
	}
	for _, it := range items {
		if s, ok := asString(it); ok {
			out = append(out, s)
		}
	}
	return out
}
