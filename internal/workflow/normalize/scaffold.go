package normalize

import (
	"encoding/json"
	"strings"

	"app-builder-ai-api/internal/domain/entity"
)

const defaultAppComponent = `export default function App() {
  return (
    <div style={{ padding: 24, fontFamily: 'system-ui' }}>
      <h1 style={{ margin: 0, fontSize: 22 }}>Generated App</h1>
      <p style={{ marginTop: 8, opacity: 0.8 }}>Edit src/App.tsx to start building.</p>
    </div>
  );
}
`

const mainEntry = `import React from 'react'
import ReactDOM from 'react-dom/client'
import App from './App'
import './index.css'

ReactDOM.createRoot(document.getElementById('root')).render(
  <React.StrictMode>
    <App />
  </React.StrictMode>
)`

const baseStylesheet = ":root { color-scheme: dark; }\nbody { margin: 0; background: #000; color: #fff; }\n"

const viteEnvDecl = "/// <reference types=\"vite/client\" />\n"

const viteConfig = `import { defineConfig } from 'vite'
import react from '@vitejs/plugin-react'

export default defineConfig({
  plugins: [react()],
  server: {
    host: true,
    port: 5173
  }
})`

const hostDocumentTpl = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="UTF-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1.0" />
    <title>%TITLE%</title>
  </head>
  <body>
    <div id="root"></div>
    <script type="module" src="/src/main.jsx"></script>
  </body>
</html>`

// 标准项目文件路径
const (
	PathAppTSX      = "src/App.tsx"
	PathAppJSX      = "src/App.jsx"
	PathMainEntry   = "src/main.jsx"
	PathStylesheet  = "src/index.css"
	PathViteEnv     = "src/vite-env.d.ts"
	PathHostHTML    = "index.html"
	PathViteConfig  = "vite.config.js"
	PathPackageJSON = "package.json"
)

// scaffoldRule 一条补齐规则；when 为 nil 表示无条件执行
type scaffoldRule struct {
	path    string
	content func(bp entity.Blueprint) string
	when    func(files []entity.ProjectFile) bool
}

// scaffoldRules 顺序固定：入口组件的存在性必须先于其余文件判断
var scaffoldRules = []scaffoldRule{
	{path: PathAppJSX, content: constant(defaultAppComponent), when: missingAppComponent},
	{path: PathMainEntry, content: constant(mainEntry)},
	{path: PathStylesheet, content: constant(baseStylesheet)},
	{path: PathViteEnv, content: constant(viteEnvDecl)},
	{path: PathHostHTML, content: hostDocument},
	{path: PathViteConfig, content: constant(viteConfig)},
	{path: PathPackageJSON, content: packageManifest},
}

func constant(s string) func(entity.Blueprint) string {
	return func(entity.Blueprint) string { return s }
}

func missingAppComponent(files []entity.ProjectFile) bool {
	for _, f := range files {
		if (f.Path == PathAppTSX || f.Path == PathAppJSX) && f.Content != "" {
			return false
		}
	}
	return true
}

func hostDocument(bp entity.Blueprint) string {
	title := bp.AppName
	if title == "" {
		title = "App"
	}
	return strings.Replace(hostDocumentTpl, "%TITLE%", EscapeHTML(title), 1)
}

type manifest struct {
	Name            string            `json:"name"`
	Private         bool              `json:"private"`
	Version         string            `json:"version"`
	Type            string            `json:"type"`
	Scripts         manifestScripts   `json:"scripts"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

type manifestScripts struct {
	Dev     string `json:"dev"`
	Build   string `json:"build"`
	Preview string `json:"preview"`
}

func packageManifest(bp entity.Blueprint) string {
	m := manifest{
		Name:    PackageName(bp.AppName),
		Private: true,
		Version: "0.0.0",
		Type:    "module",
		Scripts: manifestScripts{
			Dev:     "vite --host 0.0.0.0 --port 5173",
			Build:   "vite build",
			Preview: "vite preview",
		},
		Dependencies: map[string]string{
			"react":     "^18.3.1",
			"react-dom": "^18.3.1",
		},
		DevDependencies: map[string]string{
			"vite":                 "^5.0.0",
			"@vitejs/plugin-react": "^4.0.0",
		},
	}
	b, _ := json.MarshalIndent(m, "", "  ")
	return string(b)
}

// Upsert 已存在且内容非空时保持不变；存在但为空白时回填；不存在时追加。
// 返回值 changed 表示文件集是否被修改。
func Upsert(files []entity.ProjectFile, path, content string) (out []entity.ProjectFile, changed bool) {
	for i := range files {
		if files[i].Path != path {
			continue
		}
		if strings.TrimSpace(files[i].Content) == "" {
			files[i].Content = content
			return files, true
		}
		return files, false
	}
	return append(files, entity.ProjectFile{Path: path, Content: content}), true
}

// ApplyScaffold 依次应用补齐规则，返回新文件集和被追加或回填的路径。
// 不修改入参，重复应用结果不变。
func ApplyScaffold(files []entity.ProjectFile, bp entity.Blueprint) ([]entity.ProjectFile, []string) {
	out := make([]entity.ProjectFile, len(files), len(files)+len(scaffoldRules))
	copy(out, files)

	var synthesized []string
	for _, rule := range scaffoldRules {
		if rule.when != nil && !rule.when(out) {
			continue
		}
		var changed bool
		out, changed = Upsert(out, rule.path, rule.content(bp))
		if changed {
			synthesized = append(synthesized, rule.path)
		}
	}
	return out, synthesized
}
