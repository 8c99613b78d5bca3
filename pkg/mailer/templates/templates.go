package templates

import (
	"bytes"
	"encoding/json"
	"fmt"
	htmpl "html/template"
	"reflect"
	"sort"
	"strings"
	texttpl "text/template"
	"time"
)

// EmailData defines standard fields for notification templates.
type EmailData struct {
	Name           string            `json:"Name"`
	Email          string            `json:"Email"`
	RecipientEmail string            `json:"RecipientEmail"`
	Type           string            `json:"Type"`
	AppName        string            `json:"AppName"`
	Time           string            `json:"Time"`
	ActorID        string            `json:"ActorID"`
	Changes        map[string]string `json:"Changes"`
}

// ToMap converts EmailData to a map[string]any for EmailJob.Data
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() {
			return fallback
		}
		if rv.IsZero() {
			return fallback
		}
		return value
	}
}

// sortedKeys keeps change lists stable between renders.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func baseFuncs() map[string]any {
	return map[string]any{
		"now":        func() time.Time { return time.Now().UTC() },
		"formatTime": func(t time.Time, layout string) string { return t.Format(layout) },
		"upper":      strings.ToUpper,
		"default":    defaultFn,
		"keys":       sortedKeys,
	}
}

var (
	htmlFuncMap = htmpl.FuncMap(baseFuncs())
	textFuncMap = texttpl.FuncMap(baseFuncs())
)

const (
	ProfileUpdated = "profile_updated"
	AccountDeleted = "account_deleted"
)

type set struct {
	subject string
	text    string
	html    string
}

var sets = map[string]set{
	ProfileUpdated: {
		subject: `Your {{ .AppName | default "Energy" }} profile was updated`,
		text: `Hello {{ .Name | default "there" }},

Your profile was updated{{ with .Time }} at {{ . }}{{ end }}.
{{ with .Changes }}{{ range $k := keys . }}  - {{ $k }}: {{ index $.Changes $k }}
{{ end }}{{ end }}
If this was not you, contact an administrator.
`,
		html: `<p>Hello {{ .Name | default "there" }},</p>
<p>Your profile was updated{{ with .Time }} at {{ . }}{{ end }}.</p>
{{ with .Changes }}<ul>{{ range $k := keys . }}<li>{{ $k }}: {{ index $.Changes $k }}</li>{{ end }}</ul>{{ end }}
<p>If this was not you, contact an administrator.</p>
`,
	},
	AccountDeleted: {
		subject: `Your {{ .AppName | default "Energy" }} account was removed`,
		text: `Hello {{ .Name | default "there" }},

Your account and everything you posted were removed by an administrator{{ with .Time }} at {{ . }}{{ end }}.
`,
		html: `<p>Hello {{ .Name | default "there" }},</p>
<p>Your account and everything you posted were removed by an administrator{{ with .Time }} at {{ . }}{{ end }}.</p>
`,
	},
}

// Known reports whether name has a template set.
func Known(name string) bool {
	_, ok := sets[strings.ToLower(name)]
	return ok
}

func renderText(name, src string, data any) (string, error) {
	var buf bytes.Buffer
	tpl, err := texttpl.New(name).Funcs(textFuncMap).Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse text %q: %w", name, err)
	}
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", name, err)
	}
	return buf.String(), nil
}

func renderHTML(name, src string, data any) (string, error) {
	var buf bytes.Buffer
	tpl, err := htmpl.New(name).Funcs(htmlFuncMap).Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse html %q: %w", name, err)
	}
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", name, err)
	}
	return buf.String(), nil
}

// Render renders the subject, text and html bodies of the named template.
func Render(name string, data map[string]any) (subject string, text string, html string, err error) {
	s, ok := sets[strings.ToLower(name)]
	if !ok {
		return "", "", "", fmt.Errorf("unknown template %q", name)
	}
	if subject, err = renderText(name+".subject", s.subject, data); err != nil {
		return "", "", "", err
	}
	if text, err = renderText(name+".text", s.text, data); err != nil {
		return "", "", "", err
	}
	if html, err = renderHTML(name+".html", s.html, data); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
