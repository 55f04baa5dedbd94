// Package outline 把 LLM 返回的松散文本归一化为可渲染的大纲。
// 全部是纯函数：解析失败才报错，可修复的偏差（页数不符、bulletPoints
// 是字符串）一律静默修复。
package outline

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"deckcraft-backend/internal/model"
)

// rawOutline 宽松解析用的中间结构，slides 保持原始 JSON 以便逐条容错
type rawOutline struct {
	Title  string          `json:"title"`
	Slides json.RawMessage `json:"slides"`
}

type rawSlide struct {
	SlideTitle   string          `json:"slideTitle"`
	BulletPoints json.RawMessage `json:"bulletPoints"`
	Layout       string          `json:"layout"`
	VisualHint   string          `json:"visualHint"`
	Image        json.RawMessage `json:"image"`
	Table        json.RawMessage `json:"table"`
	Chart        json.RawMessage `json:"chart"`
}

// 条目分隔符：换行、常见项目符号、对勾、斜杠、分号
const bulletSeparators = "\n\r•◦▪·●○✓✔/;"

// 形如 "1. " / "2) " / "3、" 的开头编号
var enumPrefix = regexp.MustCompile(`^\s*\d+\s*[.)、]\s*`)

// Normalize 从原始模型输出提取 JSON 并修复为恰好 requestedCount 页的大纲。
// 找不到 JSON 对象或解析失败时返回 GenerationError。
func Normalize(raw string, requestedCount int, topic string) (*model.Outline, error) {
	jsonText, err := extractJSONObject(raw)
	if err != nil {
		return nil, model.NewGenerationError("failed to process AI response")
	}

	var parsed rawOutline
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		return nil, model.NewGenerationError("failed to process AI response")
	}

	slides := parseSlides(parsed.Slides)
	slides = repairSlideCount(slides, requestedCount, topic)

	title := strings.TrimSpace(parsed.Title)
	if title == "" {
		title = topic
	}

	return &model.Outline{Title: title, Slides: slides}, nil
}

// extractJSONObject 定位文本中第一个顶层 JSON 对象。
// 模型经常在 JSON 前后附加说明文字，这里按大括号深度扫描，
// 并跳过字符串字面量里的大括号。
func extractJSONObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", fmt.Errorf("no JSON object in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}

	return "", fmt.Errorf("unterminated JSON object in response")
}

// parseSlides 逐条解析幻灯片，非对象的条目直接丢弃。
// slides 字段缺失或不是数组时返回 nil，由页数修复补齐。
func parseSlides(raw json.RawMessage) []*model.Slide {
	if len(raw) == 0 {
		return nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}

	slides := make([]*model.Slide, 0, len(entries))
	for _, entry := range entries {
		var rs rawSlide
		if err := json.Unmarshal(entry, &rs); err != nil {
			continue
		}

		slide := &model.Slide{
			SlideTitle:   strings.TrimSpace(rs.SlideTitle),
			BulletPoints: repairBullets(rs.BulletPoints),
			Layout:       strings.TrimSpace(rs.Layout),
			VisualHint:   strings.TrimSpace(rs.VisualHint),
			Image:        decodeOptional[model.Image](rs.Image),
			Table:        decodeOptional[model.Table](rs.Table),
			Chart:        decodeOptional[model.Chart](rs.Chart),
		}
		slides = append(slides, slide)
	}

	return slides
}

// decodeOptional 解析可选的附加内容，格式不对就当作不存在
func decodeOptional[T any](raw json.RawMessage) *T {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

// repairBullets 修复 bulletPoints 字段：
//   - 字符串数组：逐项清理
//   - 单个字符串：按分隔符拆分
//   - 其它类型：空列表
func repairBullets(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return []string{}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		bullets := make([]string, 0, len(items))
		for _, item := range items {
			var s string
			if err := json.Unmarshal(item, &s); err != nil {
				// 数字等标量保留其字面值，对象丢弃
				var n json.Number
				if err := json.Unmarshal(item, &n); err != nil {
					continue
				}
				s = n.String()
			}
			if cleaned := cleanBullet(s); cleaned != "" {
				bullets = append(bullets, cleaned)
			}
		}
		return bullets
	}

	var single string
	if err := json.Unmarshal(raw, &single); err != nil {
		return []string{}
	}
	return splitBulletText(single)
}

// splitBulletText 把混在一个字符串里的要点拆开
func splitBulletText(s string) []string {
	fragments := strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(bulletSeparators, r)
	})

	bullets := make([]string, 0, len(fragments))
	for _, frag := range fragments {
		if cleaned := cleanBullet(frag); cleaned != "" {
			bullets = append(bullets, cleaned)
		}
	}
	return bullets
}

func cleanBullet(s string) string {
	s = strings.TrimSpace(s)
	s = enumPrefix.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// repairSlideCount 把页数修到恰好 want 页：多裁少补，静默完成
func repairSlideCount(slides []*model.Slide, want int, topic string) []*model.Slide {
	if len(slides) > want {
		return slides[:want]
	}

	for len(slides) < want {
		n := len(slides) + 1
		slides = append(slides, fillerSlide(n, topic))
	}
	return slides
}

// fillerSlide 合成补位页，要点数在 2-3 之间交替
func fillerSlide(n int, topic string) *model.Slide {
	bullets := []string{
		fmt.Sprintf("Key points about %s", topic),
		"Supporting details and examples",
	}
	if n%2 == 1 {
		bullets = append(bullets, fmt.Sprintf("Further reading on %s", topic))
	}

	return &model.Slide{
		SlideTitle:   fmt.Sprintf("Additional Content %d", n),
		BulletPoints: bullets,
	}
}
