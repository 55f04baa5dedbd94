package pexels

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"deckcraft-backend/internal/config"
	"deckcraft-backend/internal/model"
	"deckcraft-backend/internal/utils"
	"deckcraft-backend/pkg/logger"
)

// maxImageBytes 单张图片下载上限，防止异常大图拖垮内存
const maxImageBytes = 8 << 20

// Client Pexels 图片搜索客户端。
// 未配置 API Key 时 Enabled 返回 false，调用方应整体跳过配图。
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewClient(cfg config.PexelsConfig) *Client {
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    utils.NewHTTPClient(cfg.Timeout),
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

type searchResponse struct {
	Photos []struct {
		Photographer string `json:"photographer"`
		URL          string `json:"url"`
		Src          struct {
			Medium string `json:"medium"`
			Large  string `json:"large"`
		} `json:"src"`
	} `json:"photos"`
}

var nonQueryChars = regexp.MustCompile(`[^\p{L}\p{N}\s-]`)

// CleanQuery 把模型给出的配图构思收敛成搜索关键词：
// 取第一个逗号前的片段，去掉符号，截断到 50 字符
func CleanQuery(idea string) string {
	q := idea
	if i := strings.Index(q, ","); i >= 0 {
		q = q[:i]
	}
	q = nonQueryChars.ReplaceAllString(q, " ")
	q = strings.Join(strings.Fields(q), " ")
	if r := []rune(q); len(r) > 50 {
		q = strings.TrimSpace(string(r[:50]))
	}
	return q
}

// Search 按关键词搜一张图，下载后编码成 data URI。
// 任何一步失败都返回错误，由调用方决定跳过；绝不中断整副生成。
func (c *Client) Search(ctx context.Context, query string) (*model.Image, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("pexels client not configured")
	}
	query = CleanQuery(query)
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}

	endpoint := fmt.Sprintf("%s/search?query=%s&per_page=1", c.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pexels search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pexels search returned %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if len(result.Photos) == 0 {
		return nil, fmt.Errorf("no photos for query %q", query)
	}

	photo := result.Photos[0]
	src := photo.Src.Medium
	if src == "" {
		src = photo.Src.Large
	}
	if src == "" {
		return nil, fmt.Errorf("photo has no usable source url")
	}

	data, mime, err := c.download(ctx, src)
	if err != nil {
		return nil, err
	}

	logger.Debugf("Pexels 配图成功: query=%q photographer=%s bytes=%d", query, photo.Photographer, len(data))

	return &model.Image{
		Data: fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data)),
		URL:  src,
		Attribution: &model.Attribution{
			Photographer: photo.Photographer,
			SourceURL:    photo.URL,
		},
	}, nil
}

func (c *Client) download(ctx context.Context, src string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build download request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("photo download returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read photo body: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty photo body")
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("photo exceeds %d bytes", maxImageBytes)
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" || !strings.HasPrefix(mime, "image/") {
		mime = "image/jpeg"
	}
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return data, mime, nil
}
