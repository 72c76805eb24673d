// Package export renders a chat session into a downloadable file.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"jarvis-ai-be/internal/entity"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

const (
	FormatJSON     = "json"
	FormatTxt      = "txt"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatCSV      = "csv"

	timestampLayout = "2006-01-02 15:04:05"
	fileStampLayout = "20060102_150405"
)

type format struct {
	ext         string
	contentType string
	render      func(*entity.ChatSession, []*entity.ChatMessage) ([]byte, error)
}

var formats = map[string]format{
	FormatJSON:     {"json", "application/json", renderJSON},
	FormatTxt:      {"txt", "text/plain; charset=utf-8", renderText},
	FormatMarkdown: {"md", "text/markdown; charset=utf-8", renderMarkdown},
	FormatHTML:     {"html", "text/html; charset=utf-8", renderHTML},
	FormatCSV:      {"csv", "text/csv; charset=utf-8", renderCSV},
}

// File is a rendered export.
type File struct {
	Format      string
	Filename    string
	ContentType string
	Body        []byte
}

// Normalize maps unknown or empty formats to json. "md" is accepted for markdown.
func Normalize(f string) string {
	f = strings.ToLower(strings.TrimSpace(f))
	if f == "md" {
		return FormatMarkdown
	}
	if _, ok := formats[f]; ok {
		return f
	}
	return FormatJSON
}

// Filename is chat_<session-id>_<YYYYMMDD_HHMMSS>.<ext>.
func Filename(sessionID string, f string, at time.Time) string {
	return fmt.Sprintf("chat_%s_%s.%s", sessionID, at.Format(fileStampLayout), formats[Normalize(f)].ext)
}

// Render writes messages (oldest first) in the requested format.
func Render(session *entity.ChatSession, messages []*entity.ChatMessage, f string, at time.Time) (*File, error) {
	name := Normalize(f)
	spec := formats[name]
	body, err := spec.render(session, messages)
	if err != nil {
		return nil, fmt.Errorf("render %s export: %w", name, err)
	}
	return &File{
		Format:      name,
		Filename:    Filename(session.Id.String(), name, at),
		ContentType: spec.contentType,
		Body:        body,
	}, nil
}

func sender(role string) string {
	switch role {
	case entity.ChatRoleUser:
		return "User"
	case entity.ChatRoleAssistant:
		return "AI"
	default:
		return "System"
	}
}

type jsonChat struct {
	Id          string     `json:"id"`
	Name        string     `json:"name"`
	CreatedAt   time.Time  `json:"created_at"`
	LastMessage *time.Time `json:"last_message"`
}

type jsonMessage struct {
	Id         string    `json:"id"`
	MessageId  string    `json:"message_id"`
	Content    string    `json:"content"`
	Type       string    `json:"type"`
	ModelUsed  *string   `json:"model_used"`
	Timestamp  time.Time `json:"timestamp"`
	TokenCount int       `json:"token_count"`
}

func renderJSON(s *entity.ChatSession, messages []*entity.ChatMessage) ([]byte, error) {
	out := struct {
		Chat     jsonChat      `json:"chat"`
		Messages []jsonMessage `json:"messages"`
	}{
		Chat:     jsonChat{Id: s.Id.String(), Name: s.Name, CreatedAt: s.CreatedAt, LastMessage: s.LastMessageAt},
		Messages: make([]jsonMessage, 0, len(messages)),
	}
	for _, m := range messages {
		jm := jsonMessage{
			Id:         m.Id.String(),
			MessageId:  m.MessageUid,
			Content:    m.Content,
			Type:       m.Role,
			Timestamp:  m.CreatedAt,
			TokenCount: m.TokenCount,
		}
		if m.ModelUsed != "" {
			model := m.ModelUsed
			jm.ModelUsed = &model
		}
		out.Messages = append(out.Messages, jm)
	}
	return json.MarshalIndent(out, "", "  ")
}

func renderText(s *entity.ChatSession, messages []*entity.ChatMessage) ([]byte, error) {
	rule := strings.Repeat("-", 80)
	var b strings.Builder
	fmt.Fprintf(&b, "Chat: %s\n", s.Name)
	fmt.Fprintf(&b, "Date: %s\n", s.CreatedAt.Format(timestampLayout))
	b.WriteString(rule + "\n")
	for _, m := range messages {
		fmt.Fprintf(&b, "%s (%s):\n", sender(m.Role), m.CreatedAt.Format(timestampLayout))
		b.WriteString(m.Content + "\n")
		b.WriteString(rule + "\n")
	}
	return []byte(b.String()), nil
}

func renderMarkdown(s *entity.ChatSession, messages []*entity.ChatMessage) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# Chat: %s\n", s.Name)
	fmt.Fprintf(&b, "Date: %s\n\n", s.CreatedAt.Format(timestampLayout))
	for _, m := range messages {
		fmt.Fprintf(&b, "## %s (%s)\n", sender(m.Role), m.CreatedAt.Format(timestampLayout))
		b.WriteString(m.Content + "\n\n")
	}
	return []byte(b.String()), nil
}

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Table,
		extension.Strikethrough,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
	),
)

var htmlTemplate = template.Must(template.New("chat").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Chat: {{.Name}}</title>
<style>
body { font-family: Arial, sans-serif; max-width: 800px; margin: 0 auto; padding: 20px; }
.message { margin-bottom: 20px; padding: 10px; border-radius: 10px; }
.user { background-color: #f0f0f0; text-align: right; }
.assistant { background-color: #e6f7ff; }
.system { background-color: #fff3cd; }
.header { color: #666; font-size: 0.8em; margin-bottom: 5px; }
.plain { white-space: pre-wrap; }
</style>
</head>
<body>
<h1>Chat: {{.Name}}</h1>
<p>Date: {{.Date}}</p>
{{range .Messages}}<div class="message {{.Role}}">
<div class="header">{{.Sender}} ({{.Timestamp}})</div>
{{if .Rendered}}<div class="content">{{.Rendered}}</div>{{else}}<div class="content plain">{{.Content}}</div>{{end}}
</div>
{{end}}</body>
</html>
`))

type htmlMessage struct {
	Role      string
	Sender    string
	Timestamp string
	Content   string
	Rendered  template.HTML
}

// renderHTML escapes user and system text; assistant replies are markdown
// and go through goldmark, which drops raw HTML by default.
func renderHTML(s *entity.ChatSession, messages []*entity.ChatMessage) ([]byte, error) {
	view := struct {
		Name     string
		Date     string
		Messages []htmlMessage
	}{Name: s.Name, Date: s.CreatedAt.Format(timestampLayout)}

	for _, m := range messages {
		hm := htmlMessage{
			Role:      m.Role,
			Sender:    sender(m.Role),
			Timestamp: m.CreatedAt.Format(timestampLayout),
			Content:   m.Content,
		}
		if m.Role == entity.ChatRoleAssistant {
			var buf bytes.Buffer
			if err := markdownEngine.Convert([]byte(m.Content), &buf); err != nil {
				return nil, err
			}
			hm.Rendered = template.HTML(buf.String())
		}
		view.Messages = append(view.Messages, hm)
	}

	var out bytes.Buffer
	if err := htmlTemplate.Execute(&out, view); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func renderCSV(s *entity.ChatSession, messages []*entity.ChatMessage) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"timestamp", "sender", "content"}); err != nil {
		return nil, err
	}
	for _, m := range messages {
		if err := w.Write([]string{m.CreatedAt.Format(timestampLayout), sender(m.Role), m.Content}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
