package model

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// QwenDebugTransport 自定义 HTTP 传输层，按需记录请求体用于排查 qwen 接口问题
type QwenDebugTransport struct {
	base         http.RoundTripper
	debugEnabled bool
	logger       *logrus.Logger
}

func NewQwenDebugTransport(base http.RoundTripper, debugEnabled bool) *QwenDebugTransport {
	if base == nil {
		base = http.DefaultTransport
	}

	l := logrus.New()
	l.SetLevel(logrus.DebugLevel)

	return &QwenDebugTransport{
		base:         base,
		debugEnabled: debugEnabled,
		logger:       l,
	}
}

func (t *QwenDebugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.debugEnabled && req.Method == http.MethodPost {
		t.logRequest(req)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil && t.debugEnabled {
		t.logger.Errorf("[Qwen Debug] Request failed: %v", err)
	}

	return resp, err
}

func (t *QwenDebugTransport) logRequest(req *http.Request) {
	t.logger.Infof("[Qwen Debug] %s %s", req.Method, req.URL.String())

	for name, values := range req.Header {
		if isSensitiveHeader(name) {
			t.logger.Infof("[Qwen Debug]   %s: [REDACTED]", name)
		} else {
			t.logger.Infof("[Qwen Debug]   %s: %s", name, strings.Join(values, ", "))
		}
	}

	if req.Body == nil {
		return
	}

	bodyBytes, err := io.ReadAll(req.Body)
	if err != nil {
		t.logger.Errorf("[Qwen Debug] Failed to read request body: %v", err)
		return
	}

	// 恢复请求体，以免影响实际请求
	req.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	t.logger.Infof("[Qwen Debug] Request body (%d bytes): %s", len(bodyBytes), string(bodyBytes))
}

func isSensitiveHeader(name string) bool {
	switch strings.ToLower(name) {
	case "authorization", "x-api-key", "x-auth-token", "cookie":
		return true
	}
	return false
}
