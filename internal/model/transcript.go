package model

// TranscriptDocument 是写入检索索引的单条消息。
type TranscriptDocument struct {
	DocID     string `json:"doc_id"` // sessionId:messageId
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	MessageID string `json:"message_id"`
	Sender    Sender `json:"sender"`
	Text      string `json:"text"`
	Timestamp JSTime `json:"timestamp"`
}

// SessionHit 是跨会话检索的一条结果。
type SessionHit struct {
	Session Session `json:"session"`
	// Snippets 是命中的消息片段，按会话内顺序排列。
	Snippets []string `json:"snippets"`
}
