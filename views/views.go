package views

import (
	"embed"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templates embed.FS

// Templates parses every page together with the shared partials.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"formatTime": formatTime,
	}).ParseFS(templates, "templates/*.html")
}

func formatTime(v interface{}) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return "Never"
		}
		return t.Format("Jan 2, 2006 15:04 MST")
	case *time.Time:
		if t == nil {
			return "Never"
		}
		return formatTime(*t)
	default:
		return ""
	}
}
