package todo

import (
	"strings"
	"unicode/utf8"
)

// minInputLength 去除首尾空白后允许的最小输入长度
const minInputLength = 2

// htmlEscaper 对 HTML 敏感字符做实体转义
// 单遍替换，已转义的实体不会被二次转义
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// ParseInput 规范化并校验用户原始输入
// 对整个字符串做 HTML 实体转义，不只是标题：指令全文都会进入模型请求，
// 模型回显的文本因此同样是安全的。
// 去除空白后不足 2 个字符的输入被拒绝，调用方必须静默忽略而不触发任何变更
func ParseInput(raw string) (string, bool) {
	if utf8.RuneCountInString(strings.TrimSpace(raw)) < minInputLength {
		return "", false
	}
	return htmlEscaper.Replace(raw), true
}
