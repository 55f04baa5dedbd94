package utils

import (
	"net/http"
	"time"
)

// NewHTTPClient 返回带连接池的 HTTP 客户端，timeout 约束整个请求周期
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
