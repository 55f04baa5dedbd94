package deck

// Layout 幻灯片版式，封闭的七种取值
type Layout string

const (
	LayoutTitleBullets   Layout = "title-bullets"
	LayoutTwoColumn      Layout = "two-column"
	LayoutQuote          Layout = "quote"
	LayoutSectionDivider Layout = "section-divider"
	LayoutChecklist      Layout = "checklist"
	LayoutNumbers        Layout = "numbers"
	LayoutImageLeft      Layout = "image-left"
)

// layoutCycle 轮转顺序，保证默认情况下相邻幻灯片版式不重复
var layoutCycle = []Layout{
	LayoutTitleBullets,
	LayoutTwoColumn,
	LayoutQuote,
	LayoutSectionDivider,
	LayoutChecklist,
	LayoutNumbers,
	LayoutImageLeft,
}

var knownLayouts = map[Layout]bool{
	LayoutTitleBullets:   true,
	LayoutTwoColumn:      true,
	LayoutQuote:          true,
	LayoutSectionDivider: true,
	LayoutChecklist:      true,
	LayoutNumbers:        true,
	LayoutImageLeft:      true,
}

// SelectLayout 为第 index 张内容页选版式。
// requested 命中已知版式名时原样采用（尊重逐页的作者意图，
// 即便与上一页重复）；否则按 index 轮转取默认值。纯函数。
func SelectLayout(index int, requested string) Layout {
	if requested != "" && knownLayouts[Layout(requested)] {
		return Layout(requested)
	}
	return layoutCycle[index%len(layoutCycle)]
}
