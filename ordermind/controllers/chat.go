package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"ordermind/ordermind/services/streaming"
	"ordermind/ordermind/sources/psql/dao"
	"ordermind/ordermind/sources/psql/models"
	"ordermind/ordermind/types"
	"ordermind/ordermind/utils/generator"
	"ordermind/ordermind/utils/logging"

	"go.uber.org/zap"
)

var ErrEmptyPrompt = errors.New("prompt is required")

type ChatController struct {
	memory  *dao.MemoryDAO
	source  streaming.TokenSource
	timeout time.Duration
}

func NewChatController(memory *dao.MemoryDAO, source streaming.TokenSource, timeout time.Duration) *ChatController {
	return &ChatController{memory: memory, source: source, timeout: timeout}
}

// Prepare validates req and assigns a resource id when the client sent none.
// It must run before any response bytes are written.
func (c *ChatController) Prepare(req *types.ChatRequest) error {
	if strings.TrimSpace(req.Prompt) == "" {
		return ErrEmptyPrompt
	}
	if req.ResourceID == "" {
		req.ResourceID = generator.ResourceID()
	}
	return nil
}

// Stream runs one chat session over emitter and returns it once a terminal
// state is reached and the turns are written, so a server shutdown that
// drains handlers also drains their memory writes.
func (c *ChatController) Stream(ctx context.Context, req types.ChatRequest, emitter streaming.Emitter) *streaming.Session {
	session := streaming.NewSession(streaming.Options{
		ResourceID: req.ResourceID,
		Prompt:     req.Prompt,
		Format:     req.Format,
		Timeout:    c.timeout,
	}, c.source, emitter, c.memory)

	state := session.Run(ctx)
	session.Wait()
	logging.AppLogger.Info("chat session finished",
		zap.String("resource_id", req.ResourceID),
		zap.String("state", state.String()),
		zap.Int("content_len", len(session.Content())),
	)
	return session
}

// Home lists conversations and the recent history of resourceID, or of a
// fresh id when resourceID is empty.
func (c *ChatController) Home(ctx context.Context, user *models.User, resourceID string) (*types.HomeResponse, error) {
	if resourceID == "" {
		resourceID = generator.ResourceID()
	}
	ids, err := c.memory.ResourceIDs(ctx)
	if err != nil {
		return nil, err
	}
	history, err := c.memory.ChatHistory(ctx, resourceID, dao.DefaultHistoryLimit)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	if history == nil {
		history = []models.ChatTurn{}
	}
	return &types.HomeResponse{
		User: user,
		Data: types.HomeData{ResourceIDs: ids, ResourceID: resourceID, ChatHistory: history},
	}, nil
}

func (c *ChatController) History(ctx context.Context, resourceID string) ([]models.ChatTurn, error) {
	turns, err := c.memory.Read(ctx, dao.MemoryFilter{ResourceID: resourceID})
	if err != nil {
		return nil, err
	}
	if len(turns) == 0 {
		return nil, dao.ErrNotFound
	}
	return turns, nil
}

func (c *ChatController) DeleteHistory(ctx context.Context, resourceID string) error {
	n, err := c.memory.DeleteResource(ctx, resourceID)
	if err != nil {
		return err
	}
	if n == 0 {
		return dao.ErrNotFound
	}
	logging.AppLogger.Info("conversation deleted", zap.String("resource_id", resourceID), zap.Int64("turns", n))
	return nil
}
