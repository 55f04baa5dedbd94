package deck

import (
	"bytes"
	"fmt"
	"time"

	ppt "github.com/VantageDataChat/GoPPT"

	"deckcraft-backend/internal/model"
)

const deckCreator = "DeckCraft"

// Assemble 把规整后的大纲组装成 PPTX 二进制。
// 首页为标题页，其后每个大纲条目一张内容页；nil 条目跳过。
// 大纲为空或缺少内容页时输出一张红色错误提示页，保证文件始终可打开。
func Assemble(outline *model.Outline, th Theme, topic, subtitle string) ([]byte, error) {
	p := ppt.New()
	p.GetLayout().SetCustomLayout(emu(slideWidthIn), emu(slideHeightIn))

	props := p.GetDocumentProperties()
	props.Creator = deckCreator
	props.LastModifiedBy = deckCreator
	props.Title = topic
	props.Created = time.Now()
	props.Modified = time.Now()

	deckTitle := topic
	if outline != nil && outline.Title != "" {
		deckTitle = outline.Title
	}
	drawTitleSlide(p.GetActiveSlide(), deckTitle, subtitle, th)

	rendered := 0
	if outline != nil {
		for i, rec := range outline.Slides {
			if rec == nil {
				continue
			}
			slide := p.CreateSlide()
			RenderSlide(slide, rec, th, SelectLayout(i, rec.Layout), i)
			rendered++
		}
	}
	if rendered == 0 && (outline == nil || outline.Slides == nil) {
		drawErrorSlide(p.CreateSlide())
	}

	w, err := ppt.NewWriter(p, ppt.WriterPowerPoint2007)
	if err != nil {
		return nil, &model.RenderError{Err: fmt.Errorf("create pptx writer: %w", err)}
	}

	var buf bytes.Buffer
	if err := w.(*ppt.PPTXWriter).WriteTo(&buf); err != nil {
		return nil, &model.RenderError{Err: fmt.Errorf("serialize presentation: %w", err)}
	}
	return buf.Bytes(), nil
}

// drawTitleSlide 标题页：主题色背景、上下两条强调色装饰、居中标题与副标题
func drawTitleSlide(slide *ppt.Slide, title, subtitle string, th Theme) {
	slide.SetBackground(solidFill(th.Background))

	top := slide.CreateRichTextShape()
	top.SetOffsetX(0).SetOffsetY(0)
	top.SetWidth(emu(slideWidthIn)).SetHeight(emu(0.12))
	top.CreateTextRun("")
	top.SetFill(solidFill(th.Accent))

	bottom := slide.CreateRichTextShape()
	bottom.SetOffsetX(0).SetOffsetY(emu(slideHeightIn - 0.12))
	bottom.SetWidth(emu(slideWidthIn)).SetHeight(emu(0.12))
	bottom.CreateTextRun("")
	bottom.SetFill(solidFill(th.Accent))

	titleShape := slide.CreateRichTextShape()
	titleShape.SetOffsetX(emu(0.6)).SetOffsetY(emu(1.9))
	titleShape.SetWidth(emu(slideWidthIn - 1.2)).SetHeight(emu(1.2))
	titleShape.SetTextAnchor(ppt.TextAnchorMiddle)
	tr := titleShape.CreateTextRun(title)
	tr.GetFont().SetSize(fontDeckTitle).SetBold(true).SetColor(pptColor(th.Title))
	alignCenter(titleShape.GetActiveParagraph())

	if subtitle != "" {
		subShape := slide.CreateRichTextShape()
		subShape.SetOffsetX(emu(0.6)).SetOffsetY(emu(3.3))
		subShape.SetWidth(emu(slideWidthIn - 1.2)).SetHeight(emu(0.6))
		str := subShape.CreateTextRun(subtitle)
		str.GetFont().SetSize(fontSubtitle).SetColor(pptColor(th.Text))
		alignCenter(subShape.GetActiveParagraph())
	}
}

// drawErrorSlide 生成失败时的兜底页
func drawErrorSlide(slide *ppt.Slide) {
	shape := slide.CreateRichTextShape()
	shape.SetOffsetX(emu(0.6)).SetOffsetY(emu(2.2))
	shape.SetWidth(emu(slideWidthIn - 1.2)).SetHeight(emu(1.2))
	shape.SetTextAnchor(ppt.TextAnchorMiddle)
	tr := shape.CreateTextRun("Error: No content generated")
	tr.GetFont().SetSize(fontHeading).SetBold(true).SetColor(ppt.NewColor("FFCC0000"))
	alignCenter(shape.GetActiveParagraph())
}
