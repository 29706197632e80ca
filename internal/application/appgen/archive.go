package appgen

import (
	"archive/zip"
	"bytes"
	"fmt"
	"time"

	"app-builder-ai-api/internal/domain/entity"
	"app-builder-ai-api/internal/workflow/normalize"
)

// Archive 将文件集打包为 zip，条目按存储顺序写入
func Archive(files []entity.ProjectFile, modified time.Time) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, f := range files {
		// 跳过含 .. 的路径
		p, ok := normalize.CleanPath(f.Path)
		if !ok {
			continue
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     p,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to add %s to archive: %w", p, err)
		}
		if _, err := w.Write([]byte(f.Content)); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", p, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

// ArchiveName 下载文件名，与 package.json 的 name 一致
func ArchiveName(bp entity.Blueprint) string {
	return normalize.PackageName(bp.AppName) + ".zip"
}
