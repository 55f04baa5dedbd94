package utils

import (
	"fmt"
	"net/http"
)

// SSEWriter 包装 http.ResponseWriter，按 Server-Sent Events 协议写出事件
type SSEWriter struct {
	w http.ResponseWriter
}

// NewSSEWriter 设置 SSE 所需的响应头并返回写入器
func NewSSEWriter(w http.ResponseWriter) *SSEWriter {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	return &SSEWriter{w: w}
}

// Write 写出一条事件并立即刷出，event 为空时只写 data 行
func (s *SSEWriter) Write(event, data string) error {
	if event != "" {
		if _, err := fmt.Fprintf(s.w, "event: %s\n", event); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}

	if f, ok := s.w.(http.Flusher); ok {
		f.Flush()
	}

	return nil
}

// Close 发送结束标记，通知客户端流已结束
func (s *SSEWriter) Close() error {
	return s.Write("", "[DONE]")
}
