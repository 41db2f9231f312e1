package utils

import "fmt"

// CLI messages for fixed keys. Form content is never translated.
var translations = map[string]map[string]string{
	"en": {
		"session.expired":  "Session expired, please sign in again.",
		"login.success":    "Signed in as %s.",
		"logout.done":      "Signed out.",
		"login.required":   "You are not signed in. Run `inform login` first.",
		"validate.ok":      "%s is valid.",
		"validate.invalid": "%s is invalid:",
		"forms.none":       "No forms match your search or filter.",
		"forms.page":       "Page %d of %d (%s forms)",
		"export.written":   "Wrote %s responses to %s (%s).",
		"summary.total":    "%s responses",
		"publish.done":     "%s",
		"email.sent":       "Share link sent to %s.",
		"new.written":      "Created %s in %s.",
		"pull.written":     "Saved %s with %s responses to %s.",
		"fill.submitted":   "Response submitted.",
		"leaderboard.none": "No results yet.",
	},
	"zh": {
		"session.expired":  "会话已过期，请重新登录。",
		"login.success":    "已登录：%s。",
		"logout.done":      "已退出登录。",
		"login.required":   "尚未登录，请先运行 `inform login`。",
		"validate.ok":      "%s 校验通过。",
		"validate.invalid": "%s 校验未通过：",
		"forms.none":       "没有符合搜索或筛选条件的表单。",
		"forms.page":       "第 %d 页，共 %d 页（%s 个表单）",
		"export.written":   "已导出 %s 条回复到 %s（%s）。",
		"summary.total":    "%s 条回复",
		"email.sent":       "分享链接已发送至 %s。",
		"new.written":      "已在 %[2]s 创建%[1]s。",
		"pull.written":     "已将 %s（%s 条回复）保存到 %s。",
		"fill.submitted":   "回复已提交。",
		"leaderboard.none": "暂无成绩。",
	},
}

// T returns the translated string for key in locale; falls back to English.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := translations["en"]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}

// Tf formats the translated string with args.
func Tf(locale, key string, args ...any) string {
	return fmt.Sprintf(T(locale, key), args...)
}
