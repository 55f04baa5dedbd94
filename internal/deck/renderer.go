package deck

import (
	"encoding/base64"
	"fmt"
	"strings"

	ppt "github.com/VantageDataChat/GoPPT"

	"deckcraft-backend/internal/model"
)

// 16:9 页面与排版常量，单位为英寸，写入 GoPPT 时换算成 EMU
const (
	emuPerInch = 914400

	slideWidthIn  = 10.0
	slideHeightIn = 5.625

	marginLeftIn = 0.4
	marginTopIn  = 0.35

	stripeHeightIn = 0.08
	titleBandIn    = 0.75
	contentTopIn   = 1.2
)

const (
	fontDeckTitle = 36
	fontSubtitle  = 18
	fontHeading   = 26
	fontDivider   = 34
	fontQuote     = 24
	fontBody      = 14
	fontSmall     = 12
	fontTableHead = 11
	fontTableCell = 10
)

// tintSteps 内容页背景的提亮系数，按页序循环，让相邻页面深浅有别
var tintSteps = []float64{0.93, 0.89, 0.85}

func emu(inches float64) int64 {
	return int64(inches * emuPerInch)
}

// region 页面上的一块矩形区域，单位英寸
type region struct {
	x, y, w, h float64
}

func alignCenter(p *ppt.Paragraph) {
	p.SetAlignment(ppt.NewAlignment().SetHorizontal(ppt.HorizontalCenter))
}

// contentRenderer 在指定区域尝试渲染一种可选内容，失败时返回错误且不留半成品
type contentRenderer func() error

// firstSuccessful 依次尝试候选渲染器，任一成功即停；全部失败返回 false
func firstSuccessful(renderers ...contentRenderer) bool {
	for _, r := range renderers {
		if r == nil {
			continue
		}
		if err := r(); err == nil {
			return true
		}
	}
	return false
}

// RenderSlide 按版式把一张内容页画到 GoPPT 幻灯片上。
// 可选内容（图片、表格、图表）缺失或损坏时静默跳过，不影响整页输出。
func RenderSlide(slide *ppt.Slide, rec *model.Slide, th Theme, layout Layout, index int) {
	tint := Lighten(th.Accent, tintSteps[index%len(tintSteps)])
	slide.SetBackground(solidFill(tint))

	drawAccentStripe(slide, th)

	switch layout {
	case LayoutTwoColumn:
		drawTwoColumn(slide, rec, th)
	case LayoutQuote:
		drawQuote(slide, rec, th)
	case LayoutSectionDivider:
		drawSectionDivider(slide, rec, th)
	case LayoutChecklist:
		drawPrefixedList(slide, rec, th, func(int) string { return "✓ " })
	case LayoutNumbers:
		drawPrefixedList(slide, rec, th, func(i int) string { return fmt.Sprintf("%d. ", i+1) })
	case LayoutImageLeft:
		drawImageLeft(slide, rec, th)
	default:
		drawTitleBullets(slide, rec, th)
	}
}

// drawAccentStripe 页面顶部的强调色窄条
func drawAccentStripe(slide *ppt.Slide, th Theme) {
	stripe := slide.CreateRichTextShape()
	stripe.SetOffsetX(0).SetOffsetY(0)
	stripe.SetWidth(emu(slideWidthIn)).SetHeight(emu(stripeHeightIn))
	stripe.CreateTextRun("")
	stripe.SetFill(solidFill(th.Accent))
}

func drawSlideTitle(slide *ppt.Slide, title string, th Theme) {
	shape := slide.CreateRichTextShape()
	shape.SetOffsetX(emu(marginLeftIn)).SetOffsetY(emu(marginTopIn))
	shape.SetWidth(emu(slideWidthIn - 2*marginLeftIn)).SetHeight(emu(titleBandIn))
	tr := shape.CreateTextRun(title)
	tr.GetFont().SetSize(fontHeading).SetBold(true).SetColor(pptColor(th.Title))
}

// drawBulletText 在区域内逐段落写要点，prefix 为 nil 时使用 "• "
func drawBulletText(slide *ppt.Slide, bullets []string, th Theme, reg region, size int, prefix func(i int) string) {
	if len(bullets) == 0 {
		return
	}
	if prefix == nil {
		prefix = func(int) string { return "• " }
	}

	shape := slide.CreateRichTextShape()
	shape.SetOffsetX(emu(reg.x)).SetOffsetY(emu(reg.y))
	shape.SetWidth(emu(reg.w)).SetHeight(emu(reg.h))

	for i, b := range bullets {
		var para *ppt.Paragraph
		if i == 0 {
			para = shape.GetActiveParagraph()
		} else {
			para = shape.CreateParagraph()
		}
		tr := para.CreateTextRun(prefix(i) + b)
		tr.GetFont().SetSize(size).SetColor(pptColor(th.Text))
	}
}

// ---- 七种版式 ----

// drawTitleBullets 默认版式：左侧三分之二要点，右侧三分一图片，底部图表或表格
func drawTitleBullets(slide *ppt.Slide, rec *model.Slide, th Theme) {
	drawSlideTitle(slide, rec.SlideTitle, th)
	drawBulletText(slide, rec.BulletPoints, th, region{marginLeftIn, contentTopIn, 5.9, 2.6}, fontBody, nil)

	imageRegion := region{6.5, contentTopIn, 3.1, 2.3}
	firstSuccessful(func() error { return renderImage(slide, rec.Image, th, imageRegion) })

	band := region{marginLeftIn, 3.95, slideWidthIn - 2*marginLeftIn, 1.45}
	firstSuccessful(
		func() error { return renderChart(slide, rec.Chart, th, band) },
		func() error { return renderTable(slide, rec.Table, th, band) },
	)
}

// drawTwoColumn 要点对半分栏；右栏优先表格，其次图表，否则回落为后半要点的纯文本
func drawTwoColumn(slide *ppt.Slide, rec *model.Slide, th Theme) {
	drawSlideTitle(slide, rec.SlideTitle, th)

	mid := (len(rec.BulletPoints) + 1) / 2
	left := rec.BulletPoints[:mid]
	right := rec.BulletPoints[mid:]

	colW := (slideWidthIn - 2*marginLeftIn - 0.3) / 2
	drawBulletText(slide, left, th, region{marginLeftIn, contentTopIn, colW, 3.9}, fontBody, nil)

	rightRegion := region{marginLeftIn + colW + 0.3, contentTopIn, colW, 3.9}
	firstSuccessful(
		func() error { return renderTable(slide, rec.Table, th, rightRegion) },
		func() error { return renderChart(slide, rec.Chart, th, rightRegion) },
		func() error {
			if len(right) == 0 {
				return fmt.Errorf("no remaining bullets")
			}
			drawBulletText(slide, right, th, rightRegion, fontBody, nil)
			return nil
		},
	)
}

// drawQuote 第一条要点作为大字引文居中，其余要点缩小列于下方
func drawQuote(slide *ppt.Slide, rec *model.Slide, th Theme) {
	drawSlideTitle(slide, rec.SlideTitle, th)

	if len(rec.BulletPoints) > 0 {
		quote := slide.CreateRichTextShape()
		quote.SetOffsetX(emu(0.8)).SetOffsetY(emu(1.4))
		quote.SetWidth(emu(slideWidthIn - 1.6)).SetHeight(emu(1.4))
		quote.SetTextAnchor(ppt.TextAnchorMiddle)
		tr := quote.CreateTextRun("“" + rec.BulletPoints[0] + "”")
		tr.GetFont().SetSize(fontQuote).SetItalic(true).SetColor(pptColor(th.Title))
		alignCenter(quote.GetActiveParagraph())

		drawBulletText(slide, rec.BulletPoints[1:], th, region{1.2, 2.95, slideWidthIn - 2.4, 1.0}, fontSmall, nil)
	}

	band := region{marginLeftIn, 4.0, slideWidthIn - 2*marginLeftIn, 1.4}
	firstSuccessful(
		func() error { return renderTable(slide, rec.Table, th, band) },
		func() error { return renderChart(slide, rec.Chart, th, band) },
		func() error { return renderImage(slide, rec.Image, th, region{3.6, 4.0, 2.8, 1.4}) },
	)
}

// drawSectionDivider 整页强调色横幅，仅居中显示标题，忽略要点
func drawSectionDivider(slide *ppt.Slide, rec *model.Slide, th Theme) {
	band := slide.CreateRichTextShape()
	band.SetOffsetX(0).SetOffsetY(emu(1.75))
	band.SetWidth(emu(slideWidthIn)).SetHeight(emu(2.1))
	band.SetFill(solidFill(th.Accent))
	band.SetTextAnchor(ppt.TextAnchorMiddle)
	tr := band.CreateTextRun(rec.SlideTitle)
	tr.GetFont().SetSize(fontDivider).SetBold(true).SetColor(ppt.NewColor("FFFFFFFF"))
	alignCenter(band.GetActiveParagraph())
}

// drawPrefixedList 清单与编号两种版式共用的实现，只差前缀
func drawPrefixedList(slide *ppt.Slide, rec *model.Slide, th Theme, prefix func(i int) string) {
	drawSlideTitle(slide, rec.SlideTitle, th)

	bullets := rec.BulletPoints
	if len(bullets) == 0 {
		bullets = []string{"First task", "Second task"}
	}
	drawBulletText(slide, bullets, th, region{marginLeftIn, contentTopIn, slideWidthIn - 2*marginLeftIn, 2.6}, fontBody, prefix)

	band := region{marginLeftIn, 3.95, slideWidthIn - 2*marginLeftIn, 1.45}
	firstSuccessful(
		func() error { return renderChart(slide, rec.Chart, th, band) },
		func() error { return renderTable(slide, rec.Table, th, band) },
	)
}

// drawImageLeft 左图右文
func drawImageLeft(slide *ppt.Slide, rec *model.Slide, th Theme) {
	drawSlideTitle(slide, rec.SlideTitle, th)

	imageRegion := region{marginLeftIn, contentTopIn, 3.5, 3.7}
	firstSuccessful(func() error { return renderImage(slide, rec.Image, th, imageRegion) })

	drawBulletText(slide, rec.BulletPoints, th, region{4.3, contentTopIn, slideWidthIn - 4.3 - marginLeftIn, 3.7}, fontBody, nil)
}

// ---- 可选内容 ----

// renderImage 优先内嵌图片数据，其次显示构思占位块，两者皆无则报错让上层跳过
func renderImage(slide *ppt.Slide, img *model.Image, th Theme, reg region) error {
	if img == nil {
		return fmt.Errorf("no image")
	}

	data, mime, err := decodeImageData(img.Data)
	if err == nil {
		shape := slide.CreateDrawingShape()
		shape.SetOffsetX(emu(reg.x)).SetOffsetY(emu(reg.y))
		shape.SetWidth(emu(reg.w)).SetHeight(emu(reg.h))
		shape.SetImageData(data, mime)
		if img.Attribution != nil && img.Attribution.Photographer != "" {
			credit := slide.CreateRichTextShape()
			credit.SetOffsetX(emu(reg.x)).SetOffsetY(emu(reg.y + reg.h))
			credit.SetWidth(emu(reg.w)).SetHeight(emu(0.25))
			tr := credit.CreateTextRun("Photo: " + img.Attribution.Photographer)
			tr.GetFont().SetSize(8).SetColor(pptColor(Lighten(th.Text, 0.35)))
		}
		return nil
	}

	if strings.TrimSpace(img.Idea) != "" {
		placeholder := slide.CreateRichTextShape()
		placeholder.SetOffsetX(emu(reg.x)).SetOffsetY(emu(reg.y))
		placeholder.SetWidth(emu(reg.w)).SetHeight(emu(reg.h))
		placeholder.SetFill(solidFill(Lighten(th.Accent, 0.75)))
		placeholder.SetTextAnchor(ppt.TextAnchorMiddle)
		tr := placeholder.CreateTextRun("[" + strings.TrimSpace(img.Idea) + "]")
		tr.GetFont().SetSize(fontSmall).SetItalic(true).SetColor(pptColor(th.Title))
		alignCenter(placeholder.GetActiveParagraph())
		return nil
	}

	return fmt.Errorf("image has no usable content: %w", err)
}

// decodeImageData 解析 data URI 或裸 base64，返回字节与 MIME 类型
func decodeImageData(data string) ([]byte, string, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, "", fmt.Errorf("empty image data")
	}

	mime := "image/png"
	if strings.HasPrefix(data, "data:") {
		comma := strings.Index(data, ",")
		if comma < 0 {
			return nil, "", fmt.Errorf("malformed data URI")
		}
		header := data[len("data:"):comma]
		if semi := strings.Index(header, ";"); semi >= 0 {
			header = header[:semi]
		}
		if header != "" {
			mime = header
		}
		data = data[comma+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, "", fmt.Errorf("decode image base64: %w", err)
	}
	if len(raw) == 0 {
		return nil, "", fmt.Errorf("empty image payload")
	}
	return raw, mime, nil
}

const (
	maxTableCols = 6
	maxTableRows = 6
)

// renderTable 表头加数据行，列数与行数都设上限防止撑破版面
func renderTable(slide *ppt.Slide, tbl *model.Table, th Theme, reg region) error {
	if tbl == nil || len(tbl.Headers) == 0 {
		return fmt.Errorf("no table")
	}

	headers := tbl.Headers
	if len(headers) > maxTableCols {
		headers = headers[:maxTableCols]
	}
	rows := tbl.Rows
	if len(rows) > maxTableRows {
		rows = rows[:maxTableRows]
	}

	shape := slide.CreateTableShape(len(rows)+1, len(headers))
	shape.SetOffsetX(emu(reg.x)).SetOffsetY(emu(reg.y))
	shape.SetWidth(emu(reg.w)).SetHeight(emu(reg.h))

	for c, h := range headers {
		cell := shape.GetCell(0, c)
		if cell == nil {
			continue
		}
		cell.SetFill(solidFill(th.Accent))
		tr := cell.GetParagraphs()[0].CreateTextRun(h)
		tr.GetFont().SetSize(fontTableHead).SetBold(true).SetColor(ppt.NewColor("FFFFFFFF"))
	}

	for r, row := range rows {
		for c := range headers {
			cell := shape.GetCell(r+1, c)
			if cell == nil {
				continue
			}
			text := ""
			if c < len(row) {
				text = row[c]
			}
			tr := cell.GetParagraphs()[0].CreateTextRun(text)
			tr.GetFont().SetSize(fontTableCell).SetColor(pptColor(th.Text))
		}
	}
	return nil
}

const maxChartPoints = 6

// renderChart 柱状、折线、饼图三选一，数据点按标签与数值的较短者截断
func renderChart(slide *ppt.Slide, ch *model.Chart, th Theme, reg region) error {
	if ch == nil {
		return fmt.Errorf("no chart")
	}

	n := len(ch.Labels)
	if len(ch.Values) < n {
		n = len(ch.Values)
	}
	if n > maxChartPoints {
		n = maxChartPoints
	}
	if n == 0 {
		return fmt.Errorf("chart has no data points")
	}

	title := strings.TrimSpace(ch.Title)
	if title == "" {
		title = "Data"
	}

	series := ppt.NewChartSeriesOrdered(title, ch.Labels[:n], ch.Values[:n])
	series.SetFillColor(pptColor(th.Accent))

	shape := slide.CreateChartShape()
	shape.SetPosition(emu(reg.x), emu(reg.y))
	shape.SetSize(emu(reg.w), emu(reg.h))
	shape.GetTitle().SetText(title)

	switch strings.ToLower(strings.TrimSpace(ch.Type)) {
	case "pie":
		pie := ppt.NewPieChart()
		pie.AddSeries(series)
		shape.GetPlotArea().SetType(pie)
	case "line":
		line := ppt.NewLineChart()
		line.AddSeries(series)
		shape.GetPlotArea().SetType(line)
	default:
		bar := ppt.NewBarChart()
		bar.AddSeries(series)
		shape.GetPlotArea().SetType(bar)
	}
	return nil
}
