package appgen

import (
	"sort"
	"strings"

	"app-builder-ai-api/internal/domain/entity"
)

// 节点类型
const (
	NodeTypeDir  = "dir"
	NodeTypeFile = "file"
)

// FileNode 文件树节点，供前端文件树视图使用
type FileNode struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	Type     string      `json:"type"`
	Children []*FileNode `json:"children,omitempty"`
}

// BuildFileTree 目录在前、文件在后，同类按名称排序
func BuildFileTree(files []entity.ProjectFile) []*FileNode {
	root := &FileNode{Type: NodeTypeDir}
	dirs := map[string]*FileNode{"": root}

	for _, f := range files {
		parts := strings.Split(f.Path, "/")
		parent := root
		for i, name := range parts[:len(parts)-1] {
			dirPath := strings.Join(parts[:i+1], "/")
			dir, ok := dirs[dirPath]
			if !ok {
				dir = &FileNode{Name: name, Path: dirPath, Type: NodeTypeDir}
				dirs[dirPath] = dir
				parent.Children = append(parent.Children, dir)
			}
			parent = dir
		}
		parent.Children = append(parent.Children, &FileNode{
			Name: parts[len(parts)-1],
			Path: f.Path,
			Type: NodeTypeFile,
		})
	}

	sortTree(root)
	if root.Children == nil {
		return []*FileNode{}
	}
	return root.Children
}

func sortTree(n *FileNode) {
	sort.SliceStable(n.Children, func(i, j int) bool {
		a, b := n.Children[i], n.Children[j]
		if a.Type != b.Type {
			return a.Type == NodeTypeDir
		}
		return a.Name < b.Name
	})
	for _, c := range n.Children {
		if c.Type == NodeTypeDir {
			sortTree(c)
		}
	}
}
