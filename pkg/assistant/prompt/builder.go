package prompt

import (
	"strings"

	"jarvis-ai-be/internal/entity"
	"jarvis-ai-be/pkg/llm"
)

// MaxHistory is the number of earlier turns replayed to the model.
const MaxHistory = 10

const dataMarker = "\n\n[SYSTEM: Here is relevant data from the ERP system to help answer this question]\n"

// Company is the contact block shown to the business persona.
type Company struct {
	Name    string
	Website string
	Email   string
	Phone   string
}

// Builder assembles the provider message list for one exchange.
type Builder struct {
	business bool
	company  *Company
	custom   string
	history  []llm.Message
	content  string
	data     string
}

func NewBuilder(business bool) *Builder {
	return &Builder{business: business}
}

// WithCompany is ignored for the general persona.
func (b *Builder) WithCompany(c *Company) *Builder {
	b.company = c
	return b
}

func (b *Builder) WithCustomPrompt(custom string) *Builder {
	b.custom = strings.TrimSpace(custom)
	return b
}

func (b *Builder) WithHistory(history []llm.Message) *Builder {
	b.history = history
	return b
}

// WithData attaches ERP context to the user turn. Only the business persona sends it.
func (b *Builder) WithData(data string) *Builder {
	b.data = strings.TrimSpace(data)
	return b
}

func (b *Builder) WithContent(content string) *Builder {
	b.content = content
	return b
}

// SystemPrompt renders the persona with its optional extensions.
func (b *Builder) SystemPrompt() string {
	var sb strings.Builder

	if b.business {
		b.writeBusinessPersona(&sb)
		b.writeCompany(&sb)
	} else {
		b.writeGeneralPersona(&sb)
	}

	if b.custom != "" {
		sb.WriteString("\n\nAdditional Guidelines:\n")
		sb.WriteString(b.custom)
	}
	return sb.String()
}

// UserContent is the current message plus the data block when there is one.
func (b *Builder) UserContent() string {
	if !b.business || b.data == "" {
		return b.content
	}
	return b.content + dataMarker + b.data
}

func (b *Builder) Build() []llm.Message {
	messages := make([]llm.Message, 0, len(b.history)+2)
	messages = append(messages, llm.Message{Role: entity.ChatRoleSystem, Content: b.SystemPrompt()})
	messages = append(messages, b.history...)
	messages = append(messages, llm.Message{Role: entity.ChatRoleUser, Content: b.UserContent()})
	return messages
}

func (b *Builder) writeBusinessPersona(sb *strings.Builder) {
	sb.WriteString("You are JARVIS, an AI assistant integrated with the company ERP.\n")
	sb.WriteString("You help users analyze business data and make informed decisions.\n")
	sb.WriteString("Below are some guidelines to follow:\n\n")
	sb.WriteString("1. When analyzing data, provide clear insights and actionable recommendations\n")
	sb.WriteString("2. Answer based only on the data provided, avoid making assumptions\n")
	sb.WriteString("3. For sales analysis, compare performance across time periods and calculate growth rates\n")
	sb.WriteString("4. For inventory analysis, identify low stock items and potential ordering needs\n")
	sb.WriteString("5. For finance analysis, highlight important metrics and trends\n")
	sb.WriteString("6. Use formatting to make your responses easy to read\n")
	sb.WriteString("7. If you don't have the data to answer a question, explain what data would be needed\n\n")
	sb.WriteString("Data after a [SYSTEM: ...] marker is provided by the system. The user does not see it, but it is the context you should answer from.\n")
}

func (b *Builder) writeGeneralPersona(sb *strings.Builder) {
	sb.WriteString("You are an AI assistant that can help with general knowledge questions.\n")
	sb.WriteString("Your name is AI Business Assistant, but you can answer questions on a wide range of topics beyond just business.\n\n")
	sb.WriteString("When answering questions:\n")
	sb.WriteString("1. Be helpful, accurate, and informative\n")
	sb.WriteString("2. Use your knowledge about the world, science, technology, history, etc.\n")
	sb.WriteString("3. If you're not confident in an answer, say so\n")
	sb.WriteString("4. Format your responses for easy reading\n")
	sb.WriteString("5. If appropriate, provide examples or analogies to explain complex topics\n")
}

func (b *Builder) writeCompany(sb *strings.Builder) {
	if b.company == nil {
		return
	}
	sb.WriteString("\n\nCompany Information:\n")
	sb.WriteString("- Name: " + orNotSet(b.company.Name) + "\n")
	sb.WriteString("- Website: " + orNotSet(b.company.Website) + "\n")
	sb.WriteString("- Email: " + orNotSet(b.company.Email) + "\n")
	sb.WriteString("- Phone: " + orNotSet(b.company.Phone) + "\n")
}

func orNotSet(v string) string {
	if strings.TrimSpace(v) == "" {
		return "Not set"
	}
	return v
}

// History converts stored messages (oldest first) into provider turns. System
// notes are skipped and only the last MaxHistory turns are kept.
func History(messages []*entity.ChatMessage) []llm.Message {
	out := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == entity.ChatRoleSystem {
			continue
		}
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	if len(out) > MaxHistory {
		out = out[len(out)-MaxHistory:]
	}
	return out
}
