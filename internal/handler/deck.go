package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"deckcraft-backend/internal/config"
	"deckcraft-backend/internal/model"
	"deckcraft-backend/internal/service"
	"deckcraft-backend/internal/storage"
	"deckcraft-backend/internal/utils"
	"deckcraft-backend/pkg/logger"
)

const pptxContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

type DeckHandler struct {
	deckService *service.DeckService
}

func NewDeckHandler(deckService *service.DeckService) *DeckHandler {
	return &DeckHandler{
		deckService: deckService,
	}
}

// GenerateDeck 同步生成并直接回传 PPTX 文件
func (h *DeckHandler) GenerateDeck(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), config.Get().Generation.Timeout)
	defer cancel()

	result, err := h.deckService.GenerateDeck(ctx, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, pptxContentType, result.Data)
}

// StreamGenerate SSE 推送各阶段进度，完成事件携带 deck_id 供后续下载
func (h *DeckHandler) StreamGenerate(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	sseWriter := utils.NewSSEWriter(c.Writer)

	ctx, cancel := context.WithTimeout(c.Request.Context(), config.Get().Generation.Timeout)
	defer cancel()

	progressChan, resultChan, errChan := h.deckService.GenerateDeckStream(ctx, req)

	for event := range progressChan {
		data, err := json.Marshal(event)
		if err != nil {
			logger.Errorf("Failed to marshal stream event: %v", err)
			continue
		}
		if err := sseWriter.Write(event.Stage, string(data)); err != nil {
			logger.Warnf("SSE write failed, client gone: %v", err)
			cancel()
			break
		}
	}

	// 进度通道关闭后结果通道必然已有值或已关闭
	select {
	case err := <-errChan:
		if err != nil {
			logger.Errorf("Stream generation failed: %v", err)
		}
	case <-resultChan:
	}

	sseWriter.Close()
}

func (h *DeckHandler) bindRequest(c *gin.Context) (*model.GenerateRequest, bool) {
	var req model.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error: "invalid request body: " + err.Error(),
			Type:  "validation_error",
		})
		return nil, false
	}

	if verr := req.Validate(); verr != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error: verr.Error(),
			Type:  "validation_error",
		})
		return nil, false
	}

	return &req, true
}

// ListDecks 历史记录，按创建时间倒序
func (h *DeckHandler) ListDecks(c *gin.Context) {
	records, err := h.deckService.ListDecks()
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.DeckListResponse{
		Decks: records,
		Total: len(records),
	})
}

// DownloadDeck 按 ID 重新下载已生成的文件
func (h *DeckHandler) DownloadDeck(c *gin.Context) {
	deckID := c.Param("deck_id")

	record, data, err := h.deckService.GetDeck(deckID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.Filename))
	c.Data(http.StatusOK, pptxContentType, data)
}

func (h *DeckHandler) DeleteDeck(c *gin.Context) {
	deckID := c.Param("deck_id")

	if err := h.deckService.DeleteDeck(deckID); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deck deleted"})
}

func (h *DeckHandler) ClearDecks(c *gin.Context) {
	if err := h.deckService.ClearDecks(); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "all decks cleared"})
}

// writeError 错误到 HTTP 状态码的统一映射。
// 模型侧错误对外只给脱敏文案，详细原因落日志。
func (h *DeckHandler) writeError(c *gin.Context, err error) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: verr.Error(), Type: "validation_error"})
		return
	}

	var gerr *model.GenerationError
	if errors.As(err, &gerr) {
		logger.Errorf("Generation error: %v", err)
		c.JSON(http.StatusBadGateway, model.ErrorResponse{Error: model.PublicMessage(err), Type: "generation_error"})
		return
	}

	var rerr *model.RenderError
	if errors.As(err, &rerr) {
		logger.Errorf("Render error: %v", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: model.PublicMessage(err), Type: "render_error"})
		return
	}

	if errors.Is(err, storage.ErrDeckNotFound) {
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "deck not found", Type: "not_found"})
		return
	}

	logger.Errorf("Unexpected error: %v", err)
	c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "internal server error", Type: "internal_error"})
}
