package service

import (
	"time"

	"deckcraft-backend/internal/model"
	"deckcraft-backend/pkg/logger"
)

// ProgressManager 管理生成管线的进度上报，供 SSE 推送
type ProgressManager struct {
	progressChan chan model.StreamEvent
}

// NewProgressManager 创建新的进度管理器
func NewProgressManager() *ProgressManager {
	return &ProgressManager{
		progressChan: make(chan model.StreamEvent, 100), // 缓冲通道防止阻塞
	}
}

// SendEvent 发送进度事件
func (pm *ProgressManager) SendEvent(stage, message string, slideIndex int, err error) {
	event := model.StreamEvent{
		Stage:      stage,
		Message:    message,
		SlideIndex: slideIndex,
		Timestamp:  time.Now(),
	}

	if err != nil {
		// 客户端只看到净化文案，原始错误落日志
		event.Error = model.PublicMessage(err)
		logger.Errorf("Pipeline stage %s failed: %v", stage, err)
	}

	pm.send(event)
}

// SendComplete 发送带产物信息的完成事件
func (pm *ProgressManager) SendComplete(deckID, filename string) {
	pm.send(model.StreamEvent{
		Stage:     "complete",
		Message:   "Presentation ready",
		DeckID:    deckID,
		Filename:  filename,
		Timestamp: time.Now(),
	})
}

// send 非阻塞发送
func (pm *ProgressManager) send(event model.StreamEvent) {
	select {
	case pm.progressChan <- event:
		// 成功发送
	default:
		// 通道已满，记录警告
		logger.Warn("Progress channel is full, dropping event")
	}
}

// GetProgressChannel 获取进度通道
func (pm *ProgressManager) GetProgressChannel() <-chan model.StreamEvent {
	return pm.progressChan
}

// Close 关闭进度通道
func (pm *ProgressManager) Close() {
	close(pm.progressChan)
}
