package entity

import "time"

// DefaultAppName 蓝图缺少应用名时使用
const DefaultAppName = "Generated App"

// Blueprint 生成应用的结构化摘要
type Blueprint struct {
	AppName     string   `json:"app_name"`
	Description string   `json:"description"`
	Components  []string `json:"components"`
	Features    []string `json:"features"`
	Pages       []string `json:"pages"`
}

// ProjectFile 项目文件，Path 为相对项目根目录的正斜杠路径
type ProjectFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// BuildResult 一次构建的完整输出
type BuildResult struct {
	Blueprint   Blueprint     `json:"blueprint"`
	Files       []ProjectFile `json:"files"`
	PreviewHTML string        `json:"previewHtml"`
	// ZipURL 始终为 null，打包下载走独立接口
	ZipURL *string `json:"zipUrl"`
}

// File 按路径查找文件
func (r *BuildResult) File(path string) (ProjectFile, bool) {
	if r == nil {
		return ProjectFile{}, false
	}
	for _, f := range r.Files {
		if f.Path == path {
			return f, true
		}
	}
	return ProjectFile{}, false
}

// BuildSnapshot 项目最近一次构建结果
type BuildSnapshot struct {
	ProjectID string       `json:"project_id"`
	Result    *BuildResult `json:"result"`
	CreatedAt time.Time    `json:"created_at"`
}

// NewBuildSnapshot 创建构建快照
func NewBuildSnapshot(projectID string, result *BuildResult) *BuildSnapshot {
	return &BuildSnapshot{
		ProjectID: projectID,
		Result:    result,
		CreatedAt: time.Now().UTC(),
	}
}
