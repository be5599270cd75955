package richtext

import (
	"fmt"
	"strconv"
	"strings"
)

// RenderHTML renders the blocks of doc in order. Blocks that render to
// nothing are skipped and the rest are joined with newlines.
func RenderHTML(doc Document) string {
	parts := make([]string, 0, len(doc.Blocks))
	for _, block := range doc.Blocks {
		if out := renderBlock(block); out != "" {
			parts = append(parts, out)
		}
	}
	return strings.Join(parts, "\n")
}

func renderBlock(block Block) string {
	switch data := block.Data.(type) {
	case ParagraphData:
		return wrap("p", data.Text)
	case HeaderData:
		tag := "h" + strconv.Itoa(clampLevel(data.Level))
		return wrap(tag, data.Text)
	case ListData:
		return renderList(data)
	case QuoteData:
		caption := ""
		if data.Caption != "" {
			caption = wrap("cite", data.Caption)
		}
		return "<blockquote>" + wrap("p", data.Text) + caption + "</blockquote>"
	case CodeData:
		return "<pre><code>" + escapeHTML(data.Code) + "</code></pre>"
	case DelimiterData:
		return "<hr />"
	case ImageData:
		return renderImage(data)
	case RawData:
		return data.HTML
	case TableData:
		return renderTable(data)
	case EmbedData:
		return renderEmbed(data)
	case ChecklistData:
		return renderChecklist(data)
	case WarningData:
		var b strings.Builder
		b.WriteString(`<div class="warning">`)
		if data.Title != "" {
			b.WriteString(wrap("strong", data.Title))
		}
		if data.Message != "" {
			b.WriteString(wrap("span", data.Message))
		}
		b.WriteString("</div>")
		return b.String()
	case LinkToolData:
		if data.Link == "" {
			return ""
		}
		title := data.Link
		if t, ok := data.Meta["title"].(string); ok {
			title = t
		}
		return fmt.Sprintf(`<p><a href="%s" rel="noopener noreferrer">%s</a></p>`, escapeAttribute(data.Link), title)
	case UnknownData:
		if text, ok := data.Fields["text"]; ok {
			return wrap("p", stringify(text))
		}
		return ""
	}
	return ""
}

func wrap(tag, content string) string {
	return "<" + tag + ">" + content + "</" + tag + ">"
}

func clampLevel(level int) int {
	switch {
	case level < 1:
		return 1
	case level > 6:
		return 6
	}
	return level
}

func renderList(data ListData) string {
	tag := "ul"
	if data.Style == ListOrdered {
		tag = "ol"
	}
	var b strings.Builder
	b.WriteString("<" + tag + ">")
	for _, item := range data.Items {
		b.WriteString(wrap("li", item))
	}
	b.WriteString("</" + tag + ">")
	return b.String()
}

func renderImage(data ImageData) string {
	if data.File.URL == "" {
		return ""
	}

	var classes []string
	if data.WithBorder {
		classes = append(classes, "with-border")
	}
	if data.WithBackground {
		classes = append(classes, "with-background")
	}
	if data.Stretched {
		classes = append(classes, "stretched")
	}

	var b strings.Builder
	b.WriteString("<figure")
	if len(classes) > 0 {
		b.WriteString(` class="` + strings.Join(classes, " ") + `"`)
	}
	b.WriteString(`><img src="` + escapeAttribute(data.File.URL) + `" alt="` + escapeAttribute(data.Caption) + `" />`)
	if data.Caption != "" {
		b.WriteString(wrap("figcaption", data.Caption))
	}
	b.WriteString("</figure>")
	return b.String()
}

func renderEmbed(data EmbedData) string {
	url := data.Embed
	if url == "" {
		url = data.Source
	}
	if url == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString("<figure")
	if data.Service != "" {
		b.WriteString(` class="embed-` + escapeAttribute(data.Service) + `"`)
	}
	b.WriteString(`><iframe src="` + escapeAttribute(url) + `" frameborder="0"`)
	if data.Width != 0 {
		b.WriteString(` width="` + strconv.Itoa(data.Width) + `"`)
	}
	if data.Height != 0 {
		b.WriteString(` height="` + strconv.Itoa(data.Height) + `"`)
	}
	b.WriteString(" allowfullscreen></iframe>")
	if data.Caption != "" {
		b.WriteString(wrap("figcaption", data.Caption))
	}
	b.WriteString("</figure>")
	return b.String()
}

func renderTable(data TableData) string {
	var b strings.Builder
	b.WriteString("<table><tbody>")
	for _, row := range data.Content {
		b.WriteString("<tr>")
		for _, cell := range row {
			b.WriteString(wrap("td", cell))
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
	return b.String()
}

func renderChecklist(data ChecklistData) string {
	var b strings.Builder
	b.WriteString(`<ul class="checklist">`)
	for _, item := range data.Items {
		glyph := "☐"
		if item.Checked {
			glyph = "☑"
		}
		b.WriteString(wrap("li", glyph+" "+item.Text))
	}
	b.WriteString("</ul>")
	return b.String()
}
