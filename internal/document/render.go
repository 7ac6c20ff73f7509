package document

import (
	"bytes"
	_ "embed"
	"encoding/xml"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"

	"recruitflow/internal/logger"
)

const (
	ContentTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypeText = "text/plain; charset=utf-8"

	nameMarker = "{{NAME}}"
	bodyMarker = "<w:p><w:r><w:t>{{BODY}}</w:t></w:r></w:p>"
)

//go:embed templates/resume.docx
var defaultTemplate []byte

var (
	ErrEmptyText      = errors.New("resume text is empty")
	errMarkerNotFound = errors.New("template body marker not found")

	unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
)

// File is a rendered download.
type File struct {
	Name        string
	ContentType string
	Data        []byte
	// Fallback is set when the docx could not be produced and Data holds plain text.
	Fallback bool
}

// Renderer turns resume text into a Word document using a template that carries
// a {{NAME}} placeholder and a {{BODY}} paragraph.
type Renderer struct {
	template []byte
}

// NewRenderer returns a renderer over the embedded resume template.
func NewRenderer() *Renderer {
	return &Renderer{template: defaultTemplate}
}

// NewRendererWithTemplate returns a renderer over a caller-supplied .docx template.
func NewRendererWithTemplate(template []byte) *Renderer {
	return &Renderer{template: template}
}

// Export renders text as a .docx download named after the candidate. If the template
// cannot be rendered, the same text is returned as a .txt attachment instead.
func (r *Renderer) Export(name, text string) (*File, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	base := FileBaseName(name)

	data, err := r.RenderDocx(name, text)
	if err != nil {
		logger.WithError(err).Warn("docx rendering failed, falling back to text", "name", base)
		return &File{
			Name:        base + ".txt",
			ContentType: ContentTypeText,
			Data:        []byte(text),
			Fallback:    true,
		}, nil
	}

	return &File{
		Name:        base + ".docx",
		ContentType: ContentTypeDocx,
		Data:        data,
	}, nil
}

// RenderDocx fills the template with the classified lines of text.
func (r *Renderer) RenderDocx(name, text string) ([]byte, error) {
	reader, err := docx.ReadDocxFromMemory(bytes.NewReader(r.template), int64(len(r.template)))
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	defer reader.Close()

	doc := reader.Editable()
	if !strings.Contains(doc.GetContent(), bodyMarker) {
		return nil, errMarkerNotFound
	}

	body, err := paragraphsXML(Classify(text))
	if err != nil {
		return nil, err
	}
	doc.ReplaceRaw(bodyMarker, body, 1)

	if strings.TrimSpace(name) == "" {
		name = "Resume"
	}
	if err := doc.Replace(nameMarker, strings.TrimSpace(name), -1); err != nil {
		return nil, fmt.Errorf("replace name: %w", err)
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, fmt.Errorf("write docx: %w", err)
	}
	return buf.Bytes(), nil
}

func paragraphsXML(lines []Line) (string, error) {
	var sb strings.Builder
	for _, line := range lines {
		var escaped bytes.Buffer
		if err := xml.EscapeText(&escaped, []byte(line.Text)); err != nil {
			return "", fmt.Errorf("escape line: %w", err)
		}

		switch line.Kind {
		case KindHeader:
			sb.WriteString(`<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t xml:space="preserve">`)
			sb.Write(escaped.Bytes())
		case KindBullet:
			sb.WriteString(`<w:p><w:pPr><w:pStyle w:val="ListBullet"/></w:pPr><w:r><w:t xml:space="preserve">• `)
			sb.Write(escaped.Bytes())
		default:
			sb.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
			sb.Write(escaped.Bytes())
		}
		sb.WriteString(`</w:t></w:r></w:p>`)
	}
	return sb.String(), nil
}

// FileBaseName builds "<Name>_Resume" from a display name, keeping only filename-safe characters.
func FileBaseName(name string) string {
	cleaned := strings.Trim(unsafeFileChars.ReplaceAllString(strings.TrimSpace(name), "_"), "_")
	if cleaned == "" {
		return "Resume"
	}
	return cleaned + "_Resume"
}
