package model

import "time"

// Outline 是从 LLM 文本归一化得到的结构化内容。
// Slides 为 nil 表示模型完全没有返回幻灯片序列，由装配器降级处理。
type Outline struct {
	Title  string   `json:"title"`
	Slides []*Slide `json:"slides"`
}

// Slide 单张幻灯片的内容与呈现提示，归一化之后只读
type Slide struct {
	SlideTitle   string   `json:"slideTitle"`
	BulletPoints []string `json:"bulletPoints"`
	Layout       string   `json:"layout,omitempty"`
	VisualHint   string   `json:"visualHint,omitempty"`
	Image        *Image   `json:"image,omitempty"`
	Table        *Table   `json:"table,omitempty"`
	Chart        *Chart   `json:"chart,omitempty"`
}

// Image 幻灯片配图。Data 为 data URI（自带媒体类型），没有字节数据时
// Idea 作为占位文案使用。
type Image struct {
	Data        string       `json:"data,omitempty"`
	URL         string       `json:"url,omitempty"`
	Attribution *Attribution `json:"attribution,omitempty"`
	Idea        string       `json:"idea,omitempty"`
}

type Attribution struct {
	Photographer string `json:"photographer,omitempty"`
	SourceURL    string `json:"sourceUrl,omitempty"`
}

type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

type Chart struct {
	Type   string    `json:"type"` // bar / line / pie
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Title  string    `json:"title,omitempty"`
}

// DeckRecord 一次成功生成的历史记录
type DeckRecord struct {
	ID                string    `json:"id"`
	Topic             string    `json:"topic"`
	SlideCount        int       `json:"slide_count"`
	Style             string    `json:"style"`
	AudienceLevel     string    `json:"audience_level"`
	IncludeConclusion bool      `json:"include_conclusion"`
	ColorTheme        string    `json:"color_theme"`
	Filename          string    `json:"filename"`
	SizeBytes         int       `json:"size_bytes"`
	CreatedAt         time.Time `json:"created_at"`
}

// DeckResult 生成操作的完整产出
type DeckResult struct {
	Data     []byte
	Filename string
	Record   *DeckRecord
}
