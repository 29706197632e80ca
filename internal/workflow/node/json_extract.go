package node

import (
	"encoding/json"
	"strings"
)

// Extraction 记录 JSON 是通过哪条路径取得的
type Extraction string

const (
	ExtractionDirect   Extraction = "direct"
	ExtractionEmbedded Extraction = "embedded"
	ExtractionFailed   Extraction = "failed"
)

// ExtractJSONObject 从模型输出中取出 JSON 值。
// 先整体解析；失败后截取第一个 '{' 到最后一个 '}' 再解析一次。
// 括号匹配不感知字符串字面量，字符串内的 '}' 可能导致截取错误。
func ExtractJSONObject(s string) (json.RawMessage, Extraction) {
	if v, ok := decodeValue(s); ok {
		return v, ExtractionDirect
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, ExtractionFailed
	}
	if v, ok := decodeValue(s[start : end+1]); ok {
		return v, ExtractionEmbedded
	}
	return nil, ExtractionFailed
}

func decodeValue(s string) (json.RawMessage, bool) {
	var raw json.RawMessage
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, false
	}
	return raw, true
}
