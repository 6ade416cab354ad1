// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

import "context"

// TranscriptOp 是索引任务的类型。
type TranscriptOp string

const (
	// OpIndex 重新索引会话的全部消息。
	OpIndex TranscriptOp = "index"
	// OpDelete 删除会话在索引中的全部文档。
	OpDelete TranscriptOp = "delete"
)

// TranscriptTask represents the data structure for a transcript indexing job.
type TranscriptTask struct {
	Op        TranscriptOp `json:"op"`
	UserID    string       `json:"user_id"`
	SessionID string       `json:"session_id"`
}

// Publisher 负责把任务交给处理方，可以是 Kafka 也可以是同步处理。
type Publisher interface {
	Publish(ctx context.Context, task TranscriptTask) error
}

// Processor defines the interface for any service that can process a task.
type Processor interface {
	Process(ctx context.Context, task TranscriptTask) error
}
