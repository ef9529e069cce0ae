package jira

// Atlassian Document Format (ADF) nodes.
// https://developer.atlassian.com/cloud/jira/platform/apis/document/structure/

type Document struct {
	Type    string `json:"type"`
	Version int    `json:"version"`
	Content []Node `json:"content"`
}

type Node struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Content []Node `json:"content,omitempty"`
}

func TextNode(text string) Node {
	return Node{Type: "text", Text: text}
}

// ParagraphNode builds a paragraph, text nodes with empty text are skipped
// because Jira rejects them.
func ParagraphNode(content ...Node) Node {
	p := Node{Type: "paragraph"}
	for _, n := range content {
		if n.Type == "text" && n.Text == "" {
			continue
		}
		p.Content = append(p.Content, n)
	}
	return p
}

func NewDocument(content ...Node) *Document {
	if content == nil {
		content = []Node{}
	}
	return &Document{Type: "doc", Version: 1, Content: content}
}

// PlainTextToADF wraps the text as a single paragraph document.
// No markup is interpreted.
func PlainTextToADF(text string) *Document {
	return NewDocument(ParagraphNode(TextNode(text)))
}
