package normalize

import (
	"regexp"
	"strings"
)

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML 转义五个 HTML 敏感字符
func EscapeHTML(s string) string {
	return htmlReplacer.Replace(s)
}

const defaultPackageName = "generated-app"

var packageNameInvalid = regexp.MustCompile(`[^a-z0-9-]+`)

// PackageName 由应用名推导 package.json 的 name
func PackageName(appName string) string {
	name := packageNameInvalid.ReplaceAllString(strings.ToLower(appName), "-")
	name = strings.Trim(name, "-")
	if name == "" {
		return defaultPackageName
	}
	return name
}
