// Package web 内嵌页面模板与 flash 消息。
package web

import (
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"fromNow":    fromNow,
	"formatTime": func(t time.Time) string { return t.Format("2006-01-02 15:04") },
	"add":        func(a, b int) int { return a + b },
}

// Templates 解析全部页面；每个页面以 {{define "<name>"}} 命名
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

// MustTemplates 用于启动阶段
func MustTemplates() *template.Template {
	return template.Must(Templates())
}

func fromNow(t time.Time) string {
	return humanize(time.Since(t))
}

func humanize(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d/time.Hour))
	default:
		return fmt.Sprintf("%d days ago", int(d/(24*time.Hour)))
	}
}
