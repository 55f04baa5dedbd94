package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	ppt "github.com/VantageDataChat/GoPPT"
	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	openai "github.com/sashabaranov/go-openai"

	"deckcraft-backend/internal/config"
	"deckcraft-backend/internal/model"
	"deckcraft-backend/internal/pexels"
	"deckcraft-backend/internal/storage"
)

// fakeChatModel 按预设的应答序列响应 Generate 调用
type fakeChatModel struct {
	responses []fakeResponse
	calls     int
}

type fakeResponse struct {
	content string
	err     error
}

func (f *fakeChatModel) Generate(ctx context.Context, messages []*schema.Message, opts ...einoModel.Option) (*schema.Message, error) {
	if f.calls >= len(f.responses) {
		return nil, errors.New("no more scripted responses")
	}
	r := f.responses[f.calls]
	f.calls++
	if r.err != nil {
		return nil, r.err
	}
	return &schema.Message{Role: schema.Assistant, Content: r.content}, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, messages []*schema.Message, opts ...einoModel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported in fake")
}

func (f *fakeChatModel) BindTools(tools []*schema.ToolInfo) error {
	return nil
}

const validOutlineJSON = `{"title": "Fake Deck", "slides": [
	{"slideTitle": "One", "bulletPoints": ["a", "b"], "layout": "title-bullets"},
	{"slideTitle": "Two", "bulletPoints": ["c"], "layout": "quote"},
	{"slideTitle": "Three", "bulletPoints": ["d"], "layout": "checklist"}
]}`

func newTestService(fake *fakeChatModel) *DeckService {
	cfg := &config.Config{}
	cfg.Generation.MaxAttempts = 3
	cfg.Generation.RetryBackoff = time.Millisecond
	cfg.Generation.EnrichmentDelay = 0
	cfg.Generation.Subtitle = "Generated by DeckCraft"

	return &DeckService{
		cfg:       cfg,
		chatModel: fake,
		images:    pexels.NewClient(cfg.Pexels), // 无 API key，配图关闭
		storage:   storage.NewMemoryStorage(),
	}
}

func validRequest() *model.GenerateRequest {
	req := &model.GenerateRequest{Topic: "Test Topic", SlideCount: 3}
	if err := req.Validate(); err != nil {
		panic(err)
	}
	return req
}

func TestGenerateDeckSuccess(t *testing.T) {
	fake := &fakeChatModel{responses: []fakeResponse{{content: validOutlineJSON}}}
	svc := newTestService(fake)

	result, err := svc.GenerateDeck(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("GenerateDeck returned error: %v", err)
	}
	if len(result.Data) == 0 {
		t.Fatal("empty pptx payload")
	}
	if !strings.HasSuffix(result.Filename, ".pptx") {
		t.Errorf("filename = %q", result.Filename)
	}
	if !strings.HasPrefix(result.Filename, "test_topic_") {
		t.Errorf("filename = %q, want test_topic_ prefix", result.Filename)
	}
	if result.Record.SizeBytes != len(result.Data) {
		t.Errorf("record size = %d, payload size = %d", result.Record.SizeBytes, len(result.Data))
	}

	// 标题页 + 3 张内容页
	p, err := ppt.ReadFrom(bytes.NewReader(result.Data), int64(len(result.Data)))
	if err != nil {
		t.Fatalf("output is not a readable pptx: %v", err)
	}
	if got := p.GetSlideCount(); got != 4 {
		t.Errorf("slide count = %d, want 4", got)
	}

	// 结果应已入库
	records, err := svc.ListDecks()
	if err != nil {
		t.Fatalf("ListDecks: %v", err)
	}
	if len(records) != 1 || records[0].ID != result.Record.ID {
		t.Errorf("stored records = %+v", records)
	}
}

func TestGenerateDeckRetriesOnOverload(t *testing.T) {
	overload := &openai.APIError{HTTPStatusCode: 429, Message: "rate limit"}
	fake := &fakeChatModel{responses: []fakeResponse{
		{err: overload},
		{err: overload},
		{content: validOutlineJSON},
	}}
	svc := newTestService(fake)

	if _, err := svc.GenerateDeck(context.Background(), validRequest()); err != nil {
		t.Fatalf("GenerateDeck returned error: %v", err)
	}
	if fake.calls != 3 {
		t.Errorf("model called %d times, want 3", fake.calls)
	}
}

func TestGenerateDeckExhaustsRetries(t *testing.T) {
	overload := &openai.APIError{HTTPStatusCode: 503, Message: "overloaded"}
	fake := &fakeChatModel{responses: []fakeResponse{
		{err: overload}, {err: overload}, {err: overload},
	}}
	svc := newTestService(fake)

	_, err := svc.GenerateDeck(context.Background(), validRequest())
	if err == nil {
		t.Fatal("expected error")
	}
	var gerr *model.GenerationError
	if !errors.As(err, &gerr) {
		t.Fatalf("error type = %T", err)
	}
	if !gerr.Overloaded {
		t.Error("error should be marked overloaded")
	}
	if fake.calls != 3 {
		t.Errorf("model called %d times, want 3", fake.calls)
	}
}

func TestGenerateDeckNoRetryOnOtherErrors(t *testing.T) {
	fake := &fakeChatModel{responses: []fakeResponse{
		{err: errors.New("invalid api key")},
		{content: validOutlineJSON},
	}}
	svc := newTestService(fake)

	_, err := svc.GenerateDeck(context.Background(), validRequest())
	if err == nil {
		t.Fatal("expected error")
	}
	var gerr *model.GenerationError
	if !errors.As(err, &gerr) {
		t.Fatalf("error type = %T", err)
	}
	if gerr.Overloaded {
		t.Error("auth failure should not be marked overloaded")
	}
	if fake.calls != 1 {
		t.Errorf("model called %d times, want 1 (no retry)", fake.calls)
	}
}

func TestGenerateDeckGarbageResponse(t *testing.T) {
	fake := &fakeChatModel{responses: []fakeResponse{{content: "I am sorry, I cannot do that."}}}
	svc := newTestService(fake)

	_, err := svc.GenerateDeck(context.Background(), validRequest())
	if err == nil {
		t.Fatal("expected error for non-JSON response")
	}
	var gerr *model.GenerationError
	if !errors.As(err, &gerr) {
		t.Fatalf("error type = %T", err)
	}
}

func TestGenerateDeckEmptyResponse(t *testing.T) {
	fake := &fakeChatModel{responses: []fakeResponse{{content: "   "}}}
	svc := newTestService(fake)

	if _, err := svc.GenerateDeck(context.Background(), validRequest()); err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestGenerateDeckStream(t *testing.T) {
	fake := &fakeChatModel{responses: []fakeResponse{{content: validOutlineJSON}}}
	svc := newTestService(fake)

	progressChan, resultChan, errChan := svc.GenerateDeckStream(context.Background(), validRequest())

	stages := map[string]bool{}
	var completeEvent *model.StreamEvent
	for event := range progressChan {
		stages[event.Stage] = true
		if event.Stage == "complete" {
			e := event
			completeEvent = &e
		}
	}

	select {
	case err := <-errChan:
		if err != nil {
			t.Fatalf("stream error: %v", err)
		}
	default:
	}

	result := <-resultChan
	if result == nil {
		t.Fatal("no result delivered")
	}

	for _, stage := range []string{"start", "outline", "normalize", "render", "complete"} {
		if !stages[stage] {
			t.Errorf("missing stage %q", stage)
		}
	}
	if completeEvent == nil {
		t.Fatal("no complete event")
	}
	if completeEvent.DeckID != result.Record.ID {
		t.Errorf("complete deck_id = %q, record id = %q", completeEvent.DeckID, result.Record.ID)
	}
	if completeEvent.Filename != result.Filename {
		t.Errorf("complete filename = %q, want %q", completeEvent.Filename, result.Filename)
	}
}

func TestGenerateDeckStreamError(t *testing.T) {
	fake := &fakeChatModel{responses: []fakeResponse{{content: "no json here"}}}
	svc := newTestService(fake)

	progressChan, resultChan, errChan := svc.GenerateDeckStream(context.Background(), validRequest())

	sawError := false
	for event := range progressChan {
		if event.Stage == "error" {
			sawError = true
		}
	}
	if !sawError {
		t.Error("expected error stage event")
	}

	if err := <-errChan; err == nil {
		t.Error("expected error on error channel")
	}
	if result := <-resultChan; result != nil {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestGenerateDeckStreamErrorSanitized(t *testing.T) {
	upstream := errors.New("invalid api key sk-secret-upstream-12345")
	fake := &fakeChatModel{responses: []fakeResponse{{err: upstream}}}
	svc := newTestService(fake)

	progressChan, _, errChan := svc.GenerateDeckStream(context.Background(), validRequest())

	var errEvent *model.StreamEvent
	for event := range progressChan {
		if event.Stage == "error" {
			e := event
			errEvent = &e
		}
	}
	if errEvent == nil {
		t.Fatal("expected error stage event")
	}
	if errEvent.Error != "failed to process AI response" {
		t.Errorf("event error = %q, want sanitized message", errEvent.Error)
	}

	// 推给客户端的是整个事件的 JSON，任何字段都不能带上游原文
	data, err := json.Marshal(errEvent)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	if strings.Contains(string(data), "sk-secret") {
		t.Errorf("stream event leaks upstream detail: %s", data)
	}

	// 错误通道留给服务端日志用，保留完整错误链
	if err := <-errChan; !strings.Contains(err.Error(), "sk-secret-upstream-12345") {
		t.Errorf("server-side error lost detail: %v", err)
	}
}

func TestDeckFilename(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		topic string
		want  string
	}{
		{"Quantum Computing", "quantum_computing_20260830.pptx"},
		{"  C++ & Go!  ", "c_go_20260830.pptx"},
		{"???", "presentation_20260830.pptx"},
	}

	for _, tt := range tests {
		if got := deckFilename(tt.topic, now); got != tt.want {
			t.Errorf("deckFilename(%q) = %q, want %q", tt.topic, got, tt.want)
		}
	}
}

func TestEnrichmentFailureNonFatal(t *testing.T) {
	outlineJSON := `{"title": "T", "slides": [
		{"slideTitle": "One", "bulletPoints": ["a"], "visualHint": "server racks"},
		{"slideTitle": "Two", "bulletPoints": ["b"], "visualHint": "data center"},
		{"slideTitle": "Three", "bulletPoints": ["c"]}
	]}`
	fake := &fakeChatModel{responses: []fakeResponse{{content: outlineJSON}}}
	svc := newTestService(fake)
	// 指向打不通的地址，让每次图片搜索都失败
	svc.images = pexels.NewClient(config.PexelsConfig{
		APIKey:  "key",
		BaseURL: "http://127.0.0.1:1",
		Timeout: 200 * time.Millisecond,
	})

	result, err := svc.GenerateDeck(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("GenerateDeck returned error despite enrichment failures: %v", err)
	}
	if len(result.Data) == 0 {
		t.Fatal("empty payload")
	}
}

func TestEnrichmentFailureLeavesSlidesUntouched(t *testing.T) {
	svc := newTestService(&fakeChatModel{})
	svc.images = pexels.NewClient(config.PexelsConfig{
		APIKey:  "key",
		BaseURL: "http://127.0.0.1:1",
		Timeout: 200 * time.Millisecond,
	})

	o := &model.Outline{
		Title: "T",
		Slides: []*model.Slide{
			{SlideTitle: "One", BulletPoints: []string{"a", "b"}, VisualHint: "server racks"},
			{SlideTitle: "Two", BulletPoints: []string{"c"}, VisualHint: "data center"},
		},
	}

	svc.enrichImages(context.Background(), o, nil)

	// 搜索失败只能跳过配图，幻灯片其余字段原样保留
	wantTitles := []string{"One", "Two"}
	wantHints := []string{"server racks", "data center"}
	for i, s := range o.Slides {
		if s.Image != nil {
			t.Errorf("slide %d: unexpected image %+v", i, s.Image)
		}
		if s.SlideTitle != wantTitles[i] {
			t.Errorf("slide %d: title = %q, want %q", i, s.SlideTitle, wantTitles[i])
		}
		if s.VisualHint != wantHints[i] {
			t.Errorf("slide %d: visual hint = %q, want %q", i, s.VisualHint, wantHints[i])
		}
	}
	if got := len(o.Slides[0].BulletPoints); got != 2 {
		t.Errorf("slide 0: bullet count = %d, want 2", got)
	}
}
