package model

import (
	"strings"
	"unicode/utf8"
)

type GenerateRequest struct {
	Topic             string `json:"topic" binding:"required"`
	SlideCount        int    `json:"slide_count"`
	Style             string `json:"style"`
	AudienceLevel     string `json:"audience_level"`
	IncludeConclusion bool   `json:"include_conclusion"`
	ColorTheme        string `json:"color_theme"`
}

var (
	allowedSlideCounts = map[int]bool{3: true, 5: true, 7: true, 10: true}
	allowedStyles      = map[string]bool{"professional": true, "casual": true, "academic": true, "creative": true}
	allowedAudiences   = map[string]bool{"beginner": true, "general": true, "expert": true}
	allowedThemes      = map[string]bool{"blue": true, "green": true, "purple": true, "red": true, "orange": true, "teal": true, "gray": true}
)

// Validate 校验参数是否在枚举域内，空值回填默认值
func (r *GenerateRequest) Validate() *ValidationError {
	r.Topic = strings.TrimSpace(r.Topic)
	if n := utf8.RuneCountInString(r.Topic); n < 3 {
		return NewValidationError("topic", "must be at least 3 characters")
	} else if n > 200 {
		return NewValidationError("topic", "must be at most 200 characters")
	}

	if r.SlideCount == 0 {
		r.SlideCount = 5
	}
	if !allowedSlideCounts[r.SlideCount] {
		return NewValidationError("slide_count", "must be one of 3, 5, 7, 10")
	}

	if r.Style == "" {
		r.Style = "professional"
	}
	if !allowedStyles[r.Style] {
		return NewValidationError("style", "must be one of professional, casual, academic, creative")
	}

	if r.AudienceLevel == "" {
		r.AudienceLevel = "general"
	}
	if !allowedAudiences[r.AudienceLevel] {
		return NewValidationError("audience_level", "must be one of beginner, general, expert")
	}

	if r.ColorTheme == "" {
		r.ColorTheme = "blue"
	}
	if !allowedThemes[r.ColorTheme] {
		return NewValidationError("color_theme", "must be one of blue, green, purple, red, orange, teal, gray")
	}

	return nil
}
