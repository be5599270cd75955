// Package richtext converts product descriptions between the block document
// format used by the editor and HTML.
package richtext

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Version is the editor version stamped on documents built from HTML.
const Version = "2.29.1"

type BlockType string

const (
	TypeParagraph BlockType = "paragraph"
	TypeHeader    BlockType = "header"
	TypeList      BlockType = "list"
	TypeQuote     BlockType = "quote"
	TypeCode      BlockType = "code"
	TypeDelimiter BlockType = "delimiter"
	TypeImage     BlockType = "image"
	TypeRaw       BlockType = "raw"
	TypeTable     BlockType = "table"
	TypeEmbed     BlockType = "embed"
	TypeChecklist BlockType = "checklist"
	TypeWarning   BlockType = "warning"
	TypeLinkTool  BlockType = "linkTool"
)

type ListStyle string

const (
	ListOrdered   ListStyle = "ordered"
	ListUnordered ListStyle = "unordered"
)

var now = time.Now

// Document is an ordered sequence of blocks. Block order is presentation order.
type Document struct {
	Time    int64   `json:"time,omitempty"`
	Version string  `json:"version,omitempty"`
	Blocks  []Block `json:"blocks"`
}

// NewDocument returns an empty document stamped with the current time.
func NewDocument() Document {
	return Document{
		Time:    now().UnixMilli(),
		Version: Version,
		Blocks:  []Block{},
	}
}

// UnmarshalJSON tolerates a non-numeric time or version instead of failing.
func (d *Document) UnmarshalJSON(raw []byte) error {
	var envelope struct {
		Time    interface{} `json:"time"`
		Version interface{} `json:"version"`
		Blocks  []Block     `json:"blocks"`
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&envelope); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	meta := fields{"time": envelope.Time, "version": envelope.Version}
	ts, _ := meta.number("time")
	d.Time = int64(ts)
	d.Version = meta.str("version")
	d.Blocks = envelope.Blocks
	if d.Blocks == nil {
		d.Blocks = []Block{}
	}
	return nil
}

// Block is one typed unit of a document. Data holds the payload matching Type;
// blocks of an unrecognized type carry UnknownData.
type Block struct {
	ID   string
	Type BlockType
	Data BlockData
}

// BlockData is implemented by every block payload type.
type BlockData interface {
	blockData()
}

type ParagraphData struct {
	Text string `json:"text"`
}

type HeaderData struct {
	Text  string `json:"text"`
	Level int    `json:"level"`
}

type ListData struct {
	Style ListStyle `json:"style"`
	Items []string  `json:"items"`
}

type QuoteData struct {
	Text    string `json:"text"`
	Caption string `json:"caption,omitempty"`
}

type CodeData struct {
	Code string `json:"code"`
}

type DelimiterData struct{}

type ImageFile struct {
	URL string `json:"url"`
}

type ImageData struct {
	File           ImageFile `json:"file"`
	Caption        string    `json:"caption,omitempty"`
	WithBorder     bool      `json:"withBorder"`
	WithBackground bool      `json:"withBackground"`
	Stretched      bool      `json:"stretched"`
}

type RawData struct {
	HTML string `json:"html"`
}

type TableData struct {
	Content [][]string `json:"content"`
}

type EmbedData struct {
	Service string `json:"service,omitempty"`
	Source  string `json:"source,omitempty"`
	Embed   string `json:"embed,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Caption string `json:"caption,omitempty"`
}

type ChecklistItem struct {
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

type ChecklistData struct {
	Items []ChecklistItem `json:"items"`
}

type WarningData struct {
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
}

type LinkToolData struct {
	Link string                 `json:"link"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

// UnknownData keeps the payload of a block type this package does not model.
type UnknownData struct {
	Fields map[string]interface{}
}

func (ParagraphData) blockData() {}
func (HeaderData) blockData()    {}
func (ListData) blockData()      {}
func (QuoteData) blockData()     {}
func (CodeData) blockData()      {}
func (DelimiterData) blockData() {}
func (ImageData) blockData()     {}
func (RawData) blockData()       {}
func (TableData) blockData()     {}
func (EmbedData) blockData()     {}
func (ChecklistData) blockData() {}
func (WarningData) blockData()   {}
func (LinkToolData) blockData()  {}
func (UnknownData) blockData()   {}

func (d UnknownData) MarshalJSON() ([]byte, error) {
	if d.Fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d.Fields)
}

func (b Block) MarshalJSON() ([]byte, error) {
	data := b.Data
	if data == nil {
		data = UnknownData{}
	}
	return json.Marshal(struct {
		ID   string    `json:"id,omitempty"`
		Type BlockType `json:"type"`
		Data BlockData `json:"data"`
	}{b.ID, b.Type, data})
}

// UnmarshalJSON accepts any block object. Fields with unexpected types fall
// back to their zero value instead of failing the whole document.
func (b *Block) UnmarshalJSON(raw []byte) error {
	var value interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&value); err != nil {
		return fmt.Errorf("decode block: %w", err)
	}
	envelope, _ := value.(map[string]interface{})
	b.ID = fields(envelope).str("id")
	b.Type = BlockType(fields(envelope).str("type"))
	b.Data = decodeData(b.Type, fields(envelope).object("data"))
	return nil
}

func decodeData(t BlockType, f fields) BlockData {
	switch t {
	case TypeParagraph:
		return ParagraphData{Text: f.str("text")}
	case TypeHeader:
		level, _ := f.number("level")
		return HeaderData{Text: f.str("text"), Level: int(level)}
	case TypeList:
		style := ListUnordered
		if f.str("style") == string(ListOrdered) {
			style = ListOrdered
		}
		items := make([]string, 0, len(f.list("items")))
		for _, item := range f.list("items") {
			if nested, ok := item.(map[string]interface{}); ok {
				items = append(items, fields(nested).text("content"))
				continue
			}
			items = append(items, stringify(item))
		}
		return ListData{Style: style, Items: items}
	case TypeQuote:
		return QuoteData{Text: f.str("text"), Caption: f.str("caption")}
	case TypeCode:
		return CodeData{Code: f.str("code")}
	case TypeDelimiter:
		return DelimiterData{}
	case TypeImage:
		url := f.object("file").str("url")
		if url == "" {
			url = f.str("url")
		}
		return ImageData{
			File:           ImageFile{URL: url},
			Caption:        f.str("caption"),
			WithBorder:     f.truthy("withBorder"),
			WithBackground: f.truthy("withBackground"),
			Stretched:      f.truthy("stretched"),
		}
	case TypeRaw:
		return RawData{HTML: f.str("html")}
	case TypeTable:
		rows := f.list("content")
		content := make([][]string, 0, len(rows))
		for _, row := range rows {
			cells, _ := row.([]interface{})
			out := make([]string, 0, len(cells))
			for _, cell := range cells {
				out = append(out, stringify(cell))
			}
			content = append(content, out)
		}
		return TableData{Content: content}
	case TypeEmbed:
		width, _ := f.strictNumber("width")
		height, _ := f.strictNumber("height")
		return EmbedData{
			Service: f.str("service"),
			Source:  f.str("source"),
			Embed:   f.str("embed"),
			Width:   int(width),
			Height:  int(height),
			Caption: f.str("caption"),
		}
	case TypeChecklist:
		var items []ChecklistItem
		for _, item := range f.list("items") {
			entry, _ := item.(map[string]interface{})
			items = append(items, ChecklistItem{
				Text:    fields(entry).text("text"),
				Checked: fields(entry).truthy("checked"),
			})
		}
		return ChecklistData{Items: items}
	case TypeWarning:
		return WarningData{Title: f.str("title"), Message: f.str("message")}
	case TypeLinkTool:
		return LinkToolData{Link: f.str("link"), Meta: f.object("meta")}
	default:
		return UnknownData{Fields: f}
	}
}

// NewParagraph returns a paragraph block.
func NewParagraph(text string) Block {
	return Block{Type: TypeParagraph, Data: ParagraphData{Text: text}}
}

// NewHeader returns a header block.
func NewHeader(text string, level int) Block {
	return Block{Type: TypeHeader, Data: HeaderData{Text: text, Level: level}}
}

// NewList returns a list block.
func NewList(style ListStyle, items ...string) Block {
	return Block{Type: TypeList, Data: ListData{Style: style, Items: items}}
}

// NewDelimiter returns a horizontal rule block.
func NewDelimiter() Block {
	return Block{Type: TypeDelimiter, Data: DelimiterData{}}
}
