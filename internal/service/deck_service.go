package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"deckcraft-backend/internal/config"
	"deckcraft-backend/internal/deck"
	"deckcraft-backend/internal/model"
	"deckcraft-backend/internal/outline"
	"deckcraft-backend/internal/pexels"
	"deckcraft-backend/internal/storage"
	"deckcraft-backend/pkg/logger"
)

// DeckService 生成管线的编排层：
// 提示词 -> 模型调用（带重试）-> 大纲规整 -> 配图 -> 组装 -> 存档
type DeckService struct {
	cfg       *config.Config
	chatModel einoModel.ChatModel
	images    *pexels.Client
	storage   storage.Storage
}

func NewDeckService(cfg *config.Config) *DeckService {
	var store storage.Storage

	if cfg.Storage.Type == "disk" {
		store = storage.NewDiskStorage(cfg.Storage.DataDir, cfg.Storage.CacheSize)
	} else {
		store = storage.NewMemoryStorage()
	}

	if err := store.Init(); err != nil {
		logger.Errorf("Failed to initialize storage: %v", err)
		store = storage.NewMemoryStorage()
		store.Init()
	}

	return &DeckService{
		cfg:       cfg,
		chatModel: model.NewOutlineModel(context.Background(), cfg),
		images:    pexels.NewClient(cfg.Pexels),
		storage:   store,
	}
}

// GenerateDeck 同步生成一副演示文稿。请求应已通过参数校验。
func (s *DeckService) GenerateDeck(ctx context.Context, req *model.GenerateRequest) (*model.DeckResult, error) {
	return s.generate(ctx, req, nil)
}

// GenerateDeckStream 流式生成，进度事件通过返回的通道推送，
// 结果与错误在通道关闭前各自通过对应通道给出。
func (s *DeckService) GenerateDeckStream(ctx context.Context, req *model.GenerateRequest) (<-chan model.StreamEvent, <-chan *model.DeckResult, <-chan error) {
	pm := NewProgressManager()
	resultChan := make(chan *model.DeckResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer pm.Close()
		defer close(resultChan)
		defer close(errChan)

		result, err := s.generate(ctx, req, pm)
		if err != nil {
			pm.SendEvent("error", "Generation failed", 0, err)
			errChan <- err
			return
		}

		pm.SendComplete(result.Record.ID, result.Filename)
		resultChan <- result
	}()

	return pm.GetProgressChannel(), resultChan, errChan
}

func (s *DeckService) generate(ctx context.Context, req *model.GenerateRequest, pm *ProgressManager) (*model.DeckResult, error) {
	started := time.Now()

	if pm != nil {
		pm.SendEvent("start", "Starting presentation generation", 0, nil)
		pm.SendEvent("outline", "Requesting outline from AI model", 0, nil)
	}

	raw, err := s.requestOutline(ctx, req)
	if err != nil {
		return nil, err
	}

	if pm != nil {
		pm.SendEvent("normalize", "Normalizing AI response", 0, nil)
	}

	o, err := outline.Normalize(raw, req.SlideCount, req.Topic)
	if err != nil {
		return nil, err
	}

	s.enrichImages(ctx, o, pm)

	if pm != nil {
		pm.SendEvent("render", "Rendering presentation", 0, nil)
	}

	theme := deck.ResolveTheme(req.ColorTheme)
	data, err := deck.Assemble(o, theme, req.Topic, s.cfg.Generation.Subtitle)
	if err != nil {
		return nil, err
	}

	record := &model.DeckRecord{
		ID:                uuid.New().String(),
		Topic:             req.Topic,
		SlideCount:        req.SlideCount,
		Style:             req.Style,
		AudienceLevel:     req.AudienceLevel,
		IncludeConclusion: req.IncludeConclusion,
		ColorTheme:        req.ColorTheme,
		Filename:          deckFilename(req.Topic, time.Now()),
		SizeBytes:         len(data),
		CreatedAt:         time.Now(),
	}

	// 存档失败不影响本次下载，只记日志
	if err := s.storage.SaveDeck(record, data); err != nil {
		logger.Errorf("Failed to persist deck %s: %v", record.ID, err)
	}

	logger.Infof("Deck generated: id=%s topic=%q slides=%d bytes=%d elapsed=%s",
		record.ID, req.Topic, len(o.Slides), len(data), time.Since(started))

	return &model.DeckResult{
		Data:     data,
		Filename: record.Filename,
		Record:   record,
	}, nil
}

// requestOutline 调用模型生成大纲文本，仅在过载类错误上指数退避重试
func (s *DeckService) requestOutline(ctx context.Context, req *model.GenerateRequest) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(outlineSystemPrompt),
		schema.UserMessage(s.buildPrompt(req)),
	}

	maxAttempts := s.cfg.Generation.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	backoff := s.cfg.Generation.RetryBackoff

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := s.chatModel.Generate(ctx, messages)
		if err == nil {
			if resp == nil || strings.TrimSpace(resp.Content) == "" {
				return "", model.NewGenerationError("AI model returned an empty response")
			}
			return resp.Content, nil
		}

		lastErr = err
		if !model.IsOverloaded(err) {
			return "", model.WrapGenerationError("AI model request failed", err, false)
		}

		logger.Warnf("Model overloaded (attempt %d/%d): %v", attempt, maxAttempts, err)

		if attempt < maxAttempts {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", model.WrapGenerationError("generation cancelled", ctx.Err(), false)
			}
			backoff *= 2
		}
	}

	return "", model.WrapGenerationError("AI model overloaded", lastErr, true)
}

// enrichImages 按 visualHint 逐张配图。顺序执行并在两次搜索之间等待，
// 避免触发图片服务的限流；任何失败只跳过该页。
func (s *DeckService) enrichImages(ctx context.Context, o *model.Outline, pm *ProgressManager) {
	if !s.images.Enabled() {
		return
	}

	delay := s.cfg.Generation.EnrichmentDelay
	first := true

	for i, slide := range o.Slides {
		if slide == nil || slide.Image != nil {
			continue
		}
		hint := strings.TrimSpace(slide.VisualHint)
		if hint == "" {
			continue
		}

		if !first && delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			}
		}
		first = false

		if pm != nil {
			pm.SendEvent("enrich", fmt.Sprintf("Searching image for slide %d", i+1), i+1, nil)
		}

		img, err := s.images.Search(ctx, hint)
		if err != nil {
			logger.Warnf("Image search failed for slide %d: %v", i+1, err)
			continue
		}
		img.Idea = hint
		slide.Image = img
	}
}

const outlineSystemPrompt = `You are a presentation outline generator. ` +
	`Respond with a single JSON object and nothing else. The object must have a "title" string ` +
	`and a "slides" array. Each slide has "slideTitle" (string), "bulletPoints" (array of strings), ` +
	`"layout" (one of: title-bullets, two-column, quote, section-divider, checklist, numbers, image-left), ` +
	`and "visualHint" (short image search phrase). A slide may optionally include "table" ` +
	`({"headers": [...], "rows": [[...]]}) or "chart" ({"type": "bar"|"line"|"pie", "labels": [...], "values": [...], "title": "..."}).`

// buildPrompt 拼装用户提示词，配置里给了模板就用模板
func (s *DeckService) buildPrompt(req *model.GenerateRequest) string {
	if tmpl := s.cfg.Generation.OutlinePrompt; tmpl != "" {
		return fmt.Sprintf(tmpl, req.Topic, req.SlideCount, req.Style, req.AudienceLevel)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create a presentation outline about %q with exactly %d slides.\n", req.Topic, req.SlideCount)
	fmt.Fprintf(&b, "Style: %s. Audience level: %s.\n", req.Style, req.AudienceLevel)
	if req.IncludeConclusion {
		b.WriteString("The last slide must be a conclusion summarizing the key takeaways.\n")
	}
	b.WriteString("Vary the layouts across slides. Use a table or chart where the content suits one.")
	return b.String()
}

var filenameUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// deckFilename 形如 quantum_computing_20260830.pptx
func deckFilename(topic string, now time.Time) string {
	slug := filenameUnsafe.ReplaceAllString(strings.ToLower(topic), "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		slug = "presentation"
	}
	if len(slug) > 60 {
		slug = strings.Trim(slug[:60], "_")
	}
	return fmt.Sprintf("%s_%s.pptx", slug, now.Format("20060102"))
}

// ---- 历史记录 ----

func (s *DeckService) ListDecks() ([]*model.DeckRecord, error) {
	return s.storage.ListDecks()
}

func (s *DeckService) GetDeck(deckID string) (*model.DeckRecord, []byte, error) {
	return s.storage.GetDeck(deckID)
}

func (s *DeckService) DeleteDeck(deckID string) error {
	return s.storage.DeleteDeck(deckID)
}

func (s *DeckService) ClearDecks() error {
	return s.storage.ClearDecks()
}

func (s *DeckService) GetStorage() storage.Storage {
	return s.storage
}
