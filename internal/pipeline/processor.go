// Package pipeline 定义了会话转录索引的处理流程。
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"eduassist-go/internal/model"
	"eduassist-go/internal/repository"
	"eduassist-go/pkg/log"
	"eduassist-go/pkg/tasks"
)

// Index 是处理器写入的检索索引，es.TranscriptIndex 实现了它。
type Index interface {
	IndexDocuments(ctx context.Context, docs []model.TranscriptDocument) error
	DeleteSession(ctx context.Context, sessionID string) error
}

// Processor 封装了转录索引的所有依赖和逻辑。
type Processor struct {
	messages repository.MessageRepository
	index    Index
}

// NewProcessor 创建一个新的 Processor 实例。index 为 nil 时所有任务都是空操作。
func NewProcessor(messages repository.MessageRepository, index Index) *Processor {
	return &Processor{messages: messages, index: index}
}

// Process 是任务处理的主函数。
func (p *Processor) Process(ctx context.Context, task tasks.TranscriptTask) error {
	if p.index == nil {
		return nil
	}
	switch task.Op {
	case tasks.OpDelete:
		if err := p.index.DeleteSession(ctx, task.SessionID); err != nil {
			return fmt.Errorf("删除会话索引失败: %w", err)
		}
		log.Infof("[Processor] 已删除会话 %s 的索引", task.SessionID)
		return nil
	case tasks.OpIndex:
		docs := BuildDocuments(task.UserID, task.SessionID, p.messages.LoadMessages(ctx, task.UserID, task.SessionID))
		// 先整体删除再写入，保证被删改的消息不会残留
		if err := p.index.DeleteSession(ctx, task.SessionID); err != nil {
			return fmt.Errorf("清理会话索引失败: %w", err)
		}
		if len(docs) == 0 {
			return nil
		}
		if err := p.index.IndexDocuments(ctx, docs); err != nil {
			return fmt.Errorf("写入会话索引失败: %w", err)
		}
		log.Infof("[Processor] 会话 %s 已索引 %d 条消息", task.SessionID, len(docs))
		return nil
	default:
		return fmt.Errorf("unknown transcript op: %s", task.Op)
	}
}

// BuildDocuments 把消息转换为索引文档，跳过出错消息和没有文本的消息。
func BuildDocuments(userID, sessionID string, messages []model.Message) []model.TranscriptDocument {
	docs := make([]model.TranscriptDocument, 0, len(messages))
	for _, m := range messages {
		if m.IsError || strings.TrimSpace(m.Text) == "" {
			continue
		}
		docs = append(docs, model.TranscriptDocument{
			DocID:     sessionID + ":" + m.ID,
			UserID:    userID,
			SessionID: sessionID,
			MessageID: m.ID,
			Sender:    m.Sender,
			Text:      m.Text,
			Timestamp: model.JSTime(m.Timestamp),
		})
	}
	return docs
}

// Inline 在调用方的 goroutine 中同步处理任务，未启用 Kafka 时使用。
type Inline struct {
	processor tasks.Processor
}

// NewInline 创建一个同步的 tasks.Publisher。
func NewInline(processor tasks.Processor) *Inline {
	return &Inline{processor: processor}
}

// Publish 直接处理任务。
func (i *Inline) Publish(ctx context.Context, task tasks.TranscriptTask) error {
	return i.processor.Process(ctx, task)
}
