package richtext

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

var blockTags = map[string]struct{}{
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"p": {}, "ul": {}, "ol": {}, "blockquote": {}, "pre": {},
	"hr": {}, "img": {}, "table": {},
}

var (
	listItem     = regexp.MustCompile(`(?is)<li\b[^>]*>(.*?)</li>`)
	tableRow     = regexp.MustCompile(`(?is)<tr\b[^>]*>(.*?)</tr>`)
	tableCell    = regexp.MustCompile(`(?is)<(?:td|th)\b[^>]*>(.*?)</(?:td|th)>`)
	citeElement  = regexp.MustCompile(`(?is)<cite\b[^>]*>(.*?)</cite>`)
	codeTag      = regexp.MustCompile(`(?i)</?code\b[^>]*>`)
	inputTag     = regexp.MustCompile(`(?is)<input\b[^>]*>`)
	checkboxHint = regexp.MustCompile(`(?i)type\s*=\s*["']?checkbox`)
	checkedAttr  = regexp.MustCompile(`(?i)\bchecked\b`)
	imgTag       = regexp.MustCompile(`(?is)<img\b[^>]*>`)
	iframeTag    = regexp.MustCompile(`(?is)<iframe\b[^>]*>`)
	figCaption   = regexp.MustCompile(`(?is)<figcaption\b[^>]*>(.*?)</figcaption>`)
	embedClass   = regexp.MustCompile(`embed-([A-Za-z0-9_-]+)`)
)

var attributePatterns = map[string]*regexp.Regexp{}

func init() {
	for _, name := range []string{"src", "alt", "width", "height", "class"} {
		attributePatterns[name] = regexp.MustCompile(`(?i)(?:^|[\s<])` + name + `\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'>]+))`)
	}
}

// ParseHTML converts an HTML fragment into a block document. It never fails:
// text outside recognized block elements becomes paragraphs and anything it
// cannot interpret is dropped. Empty input yields a document without blocks.
func ParseHTML(input string) Document {
	doc := NewDocument()
	if strings.TrimSpace(input) == "" {
		return doc
	}
	p := &parser{doc: &doc}
	p.parse(input)
	p.flush()
	return doc
}

type parser struct {
	doc     *Document
	pending strings.Builder
}

func (p *parser) parse(fragment string) {
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return
		case html.CommentToken, html.DoctypeToken:
			continue
		case html.StartTagToken, html.SelfClosingTagToken:
		default:
			p.pending.Write(z.Raw())
			continue
		}

		raw := string(z.Raw())
		name, _ := z.TagName()
		tag := string(name)

		if tag == "figure" && tt == html.StartTagToken {
			inner := collectInner(z, tag)
			if block, ok := figureBlock(raw, inner); ok {
				p.flush()
				p.push(block)
				continue
			}
			p.parse(inner)
			continue
		}

		if _, ok := blockTags[tag]; !ok {
			p.pending.WriteString(raw)
			continue
		}

		p.flush()
		inner := ""
		if tt == html.StartTagToken && tag != "hr" && tag != "img" {
			inner = collectInner(z, tag)
		}
		for _, block := range elementBlocks(tag, raw, inner) {
			p.push(block)
		}
	}
}

func (p *parser) push(block Block) {
	p.doc.Blocks = append(p.doc.Blocks, block)
}

// flush turns text gathered outside block elements into a paragraph.
func (p *parser) flush() {
	if text := sanitizeText(p.pending.String()); text != "" {
		p.push(NewParagraph(text))
	}
	p.pending.Reset()
}

// collectInner returns the raw markup up to the end tag matching tag,
// honouring nested elements of the same name. An unterminated element
// extends to the end of input.
func collectInner(z *html.Tokenizer, tag string) string {
	var b strings.Builder
	depth := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return b.String()
		case html.StartTagToken:
			if name, _ := z.TagName(); string(name) == tag {
				depth++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == tag {
				if depth == 0 {
					return b.String()
				}
				depth--
			}
		}
		b.Write(z.Raw())
	}
}

// elementBlocks converts one block element. Images inside paragraphs and
// headings become image blocks of their own, in document order, with the
// surrounding text split around them.
func elementBlocks(tag, startTag, inner string) []Block {
	var out []Block
	add := func(block Block, ok bool) {
		if ok {
			out = append(out, block)
		}
	}

	if !isTextElement(tag) || !imgTag.MatchString(inner) {
		add(elementBlock(tag, startTag, inner))
		return out
	}

	last := 0
	for _, loc := range imgTag.FindAllStringIndex(inner, -1) {
		add(elementBlock(tag, startTag, inner[last:loc[0]]))
		img := inner[loc[0]:loc[1]]
		add(imageBlock(img, img, ""))
		last = loc[1]
	}
	add(elementBlock(tag, startTag, inner[last:]))
	return out
}

func isTextElement(tag string) bool {
	switch tag {
	case "p", "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

func elementBlock(tag, startTag, inner string) (Block, bool) {
	switch tag {
	case "p":
		text := sanitizeInline(inner)
		return NewParagraph(text), text != ""
	case "h1", "h2", "h3", "h4", "h5", "h6":
		text := sanitizeInline(inner)
		level, _ := strconv.Atoi(tag[1:])
		return NewHeader(text, level), text != ""
	case "ul", "ol":
		if isChecklist(startTag, inner) {
			if items := checklistItems(inner); len(items) > 0 {
				return Block{Type: TypeChecklist, Data: ChecklistData{Items: items}}, true
			}
		}
		items := listItems(inner)
		style := ListUnordered
		if tag == "ol" {
			style = ListOrdered
		}
		return NewList(style, items...), len(items) > 0
	case "blockquote":
		caption := ""
		if m := citeElement.FindStringSubmatch(inner); m != nil {
			caption = sanitizeInline(m[1])
		}
		text := sanitizeInline(citeElement.ReplaceAllString(inner, ""))
		return Block{Type: TypeQuote, Data: QuoteData{Text: text, Caption: caption}}, text != "" || caption != ""
	case "pre":
		code := strings.TrimSpace(decodeEntities(codeTag.ReplaceAllString(inner, "")))
		return Block{Type: TypeCode, Data: CodeData{Code: code}}, code != ""
	case "hr":
		return NewDelimiter(), true
	case "img":
		return imageBlock(startTag, startTag, "")
	case "table":
		rows := tableRows(inner)
		return Block{Type: TypeTable, Data: TableData{Content: rows}}, len(rows) > 0
	}
	return Block{}, false
}

// figureBlock recognizes the figure wrappers produced for images and embeds.
func figureBlock(startTag, inner string) (Block, bool) {
	caption := ""
	if m := figCaption.FindStringSubmatch(inner); m != nil {
		caption = sanitizeInline(m[1])
	}
	if img := imgTag.FindString(inner); img != "" {
		return imageBlock(img, startTag+img, caption)
	}
	if iframe := iframeTag.FindString(inner); iframe != "" {
		src := attribute(iframe, "src")
		if src == "" {
			return Block{}, false
		}
		width, _ := strconv.Atoi(attribute(iframe, "width"))
		height, _ := strconv.Atoi(attribute(iframe, "height"))
		service := ""
		if m := embedClass.FindStringSubmatch(attribute(startTag, "class")); m != nil {
			service = m[1]
		}
		return Block{Type: TypeEmbed, Data: EmbedData{
			Service: service,
			Embed:   src,
			Width:   width,
			Height:  height,
			Caption: caption,
		}}, true
	}
	return Block{}, false
}

// imageBlock reads src and alt from img. The display flags are a substring
// heuristic over hints, which is the img tag plus any wrapping figure tag.
func imageBlock(img, hints, fallbackCaption string) (Block, bool) {
	src := attribute(img, "src")
	if src == "" {
		return Block{}, false
	}
	caption := attribute(img, "alt")
	if caption == "" {
		caption = fallbackCaption
	}
	lower := strings.ToLower(hints)
	return Block{Type: TypeImage, Data: ImageData{
		File:           ImageFile{URL: src},
		Caption:        caption,
		WithBorder:     strings.Contains(lower, "border"),
		WithBackground: strings.Contains(lower, "background"),
		Stretched:      strings.Contains(lower, "stretched"),
	}}, true
}

func attribute(tag, name string) string {
	re, ok := attributePatterns[name]
	if !ok {
		return ""
	}
	m := re.FindStringSubmatch(tag)
	if m == nil {
		return ""
	}
	for _, v := range m[1:] {
		if v != "" {
			return decodeEntities(v)
		}
	}
	return ""
}

func isChecklist(startTag, inner string) bool {
	return checkboxHint.MatchString(inner) ||
		strings.ContainsAny(inner, "☑☐") ||
		strings.Contains(strings.ToLower(attribute(startTag, "class")), "checklist")
}

func listItems(inner string) []string {
	var items []string
	for _, m := range listItem.FindAllStringSubmatch(inner, -1) {
		if text := sanitizeInline(m[1]); text != "" {
			items = append(items, text)
		}
	}
	return items
}

func checklistItems(inner string) []ChecklistItem {
	var items []ChecklistItem
	for _, m := range listItem.FindAllStringSubmatch(inner, -1) {
		raw := m[1]
		checked := strings.Contains(raw, "☑")
		for _, input := range inputTag.FindAllString(raw, -1) {
			if checkedAttr.MatchString(input) {
				checked = true
			}
		}
		cleaned := strings.NewReplacer("☑", "", "☐", "").Replace(inputTag.ReplaceAllString(raw, ""))
		if text := sanitizeInline(cleaned); text != "" {
			items = append(items, ChecklistItem{Text: text, Checked: checked})
		}
	}
	return items
}

func tableRows(inner string) [][]string {
	var rows [][]string
	for _, row := range tableRow.FindAllStringSubmatch(inner, -1) {
		cells := []string{}
		for _, cell := range tableCell.FindAllStringSubmatch(row[1], -1) {
			cells = append(cells, sanitizeInline(cell[1]))
		}
		rows = append(rows, cells)
	}
	return rows
}
