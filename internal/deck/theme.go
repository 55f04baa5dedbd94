package deck

import (
	"fmt"
	"strconv"
	"strings"

	ppt "github.com/VantageDataChat/GoPPT"
)

// Theme 固定的四色配色方案，颜色为 6 位十六进制 RGB
type Theme struct {
	Name       string
	Background string
	Title      string
	Text       string
	Accent     string
}

const defaultThemeName = "blue"

var themes = map[string]Theme{
	"blue":   {Name: "blue", Background: "EFF6FF", Title: "1E3A8A", Text: "1F2937", Accent: "3B82F6"},
	"green":  {Name: "green", Background: "ECFDF5", Title: "064E3B", Text: "1F2937", Accent: "10B981"},
	"purple": {Name: "purple", Background: "F5F3FF", Title: "4C1D95", Text: "1F2937", Accent: "8B5CF6"},
	"red":    {Name: "red", Background: "FEF2F2", Title: "7F1D1D", Text: "1F2937", Accent: "EF4444"},
	"orange": {Name: "orange", Background: "FFF7ED", Title: "7C2D12", Text: "1F2937", Accent: "F97316"},
	"teal":   {Name: "teal", Background: "F0FDFA", Title: "134E4A", Text: "1F2937", Accent: "14B8A6"},
	"gray":   {Name: "gray", Background: "F9FAFB", Title: "111827", Text: "374151", Accent: "6B7280"},
}

// ResolveTheme 按名称取主题，未知或为空时回落到 blue
func ResolveTheme(name string) Theme {
	if t, ok := themes[strings.ToLower(strings.TrimSpace(name))]; ok {
		return t
	}
	return themes[defaultThemeName]
}

// Lighten 将颜色向白色做仿射插值，fraction 取值 [0,1]。
// 0 返回原色，1 返回纯白，各通道独立钳制在 [0,255]。
func Lighten(hex string, fraction float64) string {
	if fraction < 0 {
		fraction = 0
	} else if fraction > 1 {
		fraction = 1
	}

	r, g, b := parseHexColor(hex)
	blend := func(c int) int {
		v := int(float64(c) + (255-float64(c))*fraction + 0.5)
		if v < 0 {
			return 0
		}
		if v > 255 {
			return 255
		}
		return v
	}

	return fmt.Sprintf("%02X%02X%02X", blend(r), blend(g), blend(b))
}

func parseHexColor(hex string) (int, int, int) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return 0, 0, 0
	}
	r, _ := strconv.ParseInt(hex[0:2], 16, 32)
	g, _ := strconv.ParseInt(hex[2:4], 16, 32)
	b, _ := strconv.ParseInt(hex[4:6], 16, 32)
	return int(r), int(g), int(b)
}

// pptColor 把 6 位 RGB 转成 GoPPT 的 ARGB 颜色（不透明）
func pptColor(hex string) ppt.Color {
	return ppt.NewColor("FF" + strings.TrimPrefix(hex, "#"))
}

// solidFill 纯色填充的简写
func solidFill(hex string) *ppt.Fill {
	return ppt.NewFill().SetSolid(pptColor(hex))
}
