package protocol

import (
	"encoding/json"
	"fmt"
)

// contentBlock is the union of the content block shapes agents emit
type contentBlock struct {
	Content    json.RawMessage `json:"content"`
	Data       string          `json:"data"`
	MimeType   string          `json:"mimeType"`
	Name       string          `json:"name"`
	Path       string          `json:"path"`
	Resource   *resource       `json:"resource"`
	TerminalID string          `json:"terminalId"`
	Text       string          `json:"text"`
	Type       string          `json:"type"`
	URI        string          `json:"uri"`
}

type resource struct {
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
	URI      string `json:"uri"`
}

// ContentText renders a content block as displayable text. Binary and
// referenced content becomes a short placeholder.
func ContentText(raw json.RawMessage) string {
	var block contentBlock
	if err := json.Unmarshal(raw, &block); err != nil {
		return ""
	}
	return block.text()
}

func (b contentBlock) text() string {
	switch b.Type {
	case "text":
		return b.Text
	case "image":
		return fmt.Sprintf("[image: %s]", b.MimeType)
	case "audio":
		return fmt.Sprintf("[audio: %s]", b.MimeType)
	case "resource":
		if b.Resource != nil {
			return fmt.Sprintf("[resource: %s]", b.Resource.URI)
		}
		return "[resource]"
	case "resource_link":
		return fmt.Sprintf("[link: %s (%s)]", b.Name, b.URI)
	case "diff":
		return fmt.Sprintf("[diff: %s]", b.Path)
	case "terminal":
		return fmt.Sprintf("[terminal: %s]", b.TerminalID)
	case "content":
		// Tool call content wraps a regular content block
		return ContentText(b.Content)
	}
	return ""
}

// contentTexts renders a list of content blocks, skipping empty results
func contentTexts(raw []json.RawMessage) []string {
	var out []string
	for _, r := range raw {
		if s := ContentText(r); s != "" {
			out = append(out, s)
		}
	}
	return out
}
