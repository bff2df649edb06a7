package utils

import (
	"regexp"
	"strings"
)

var (
	slugDropRe     = regexp.MustCompile(`[^\w\s-]`)
	slugSpaceRe    = regexp.MustCompile(`\s+`)
	slugCollapseRe = regexp.MustCompile(`-+`)
)

// Slugify 人名 → URL 安全的基础 slug
// 小写 → 去掉 word/空白/连字符以外的字符 → 空白折叠成 '-' → 连字符折叠 → 去首尾 '-'
func Slugify(text string) string {
	s := strings.ToLower(text)
	s = slugDropRe.ReplaceAllString(s, "")
	s = slugSpaceRe.ReplaceAllString(s, "-")
	s = slugCollapseRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
