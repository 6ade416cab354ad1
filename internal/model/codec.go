package model

import (
	"encoding/json"
	"fmt"
)

// 以下 record 类型是落盘格式，时间字段统一经 JSTime 转换。
// 与领域类型分开，保证 isStreaming 这类瞬态字段不会被写入存储。

type sessionRecord struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	Title     string        `json:"title"`
	CreatedAt JSTime        `json:"createdAt"`
	UpdatedAt JSTime        `json:"updatedAt"`
	Status    SessionStatus `json:"status,omitempty"`
}

type messageRecord struct {
	ID                string             `json:"id"`
	Text              string             `json:"text"`
	Sender            Sender             `json:"sender"`
	Timestamp         JSTime             `json:"timestamp"`
	IsError           bool               `json:"isError,omitempty"`
	Image             string             `json:"image,omitempty"`
	RelatedPrompt     string             `json:"relatedPrompt,omitempty"`
	Attachments       []Attachment       `json:"attachments,omitempty"`
	GroundingMetadata *GroundingMetadata `json:"groundingMetadata,omitempty"`
	Feedback          Feedback           `json:"feedback,omitempty"`
}

// EncodeSessions 序列化会话列表。
func EncodeSessions(sessions []Session) (string, error) {
	records := make([]sessionRecord, len(sessions))
	for i, s := range sessions {
		records[i] = sessionRecord{
			ID:        s.ID,
			UserID:    s.UserID,
			Title:     s.Title,
			CreatedAt: JSTime(s.CreatedAt),
			UpdatedAt: JSTime(s.UpdatedAt),
			Status:    s.Status,
		}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("failed to marshal sessions: %w", err)
	}
	return string(b), nil
}

// DecodeSessions 反序列化会话列表，缺失的状态补为 active。
func DecodeSessions(data string) ([]Session, error) {
	var records []sessionRecord
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sessions: %w", err)
	}
	sessions := make([]Session, len(records))
	for i, r := range records {
		status := r.Status
		if status == "" {
			status = StatusActive
		}
		sessions[i] = Session{
			ID:        r.ID,
			UserID:    r.UserID,
			Title:     r.Title,
			CreatedAt: r.CreatedAt.Time(),
			UpdatedAt: r.UpdatedAt.Time(),
			Status:    status,
		}
	}
	return sessions, nil
}

// EncodeMessages 序列化消息列表，丢弃 isStreaming。
func EncodeMessages(messages []Message) (string, error) {
	records := make([]messageRecord, len(messages))
	for i, m := range messages {
		records[i] = messageRecord{
			ID:                m.ID,
			Text:              m.Text,
			Sender:            m.Sender,
			Timestamp:         JSTime(m.Timestamp),
			IsError:           m.IsError,
			Image:             m.Image,
			RelatedPrompt:     m.RelatedPrompt,
			Attachments:       m.Attachments,
			GroundingMetadata: m.GroundingMetadata,
			Feedback:          m.Feedback,
		}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("failed to marshal messages: %w", err)
	}
	return string(b), nil
}

// DecodeMessages 反序列化消息列表。
func DecodeMessages(data string) ([]Message, error) {
	var records []messageRecord
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal messages: %w", err)
	}
	messages := make([]Message, len(records))
	for i, r := range records {
		messages[i] = Message{
			ID:                r.ID,
			Text:              r.Text,
			Sender:            r.Sender,
			Timestamp:         r.Timestamp.Time(),
			IsError:           r.IsError,
			Image:             r.Image,
			RelatedPrompt:     r.RelatedPrompt,
			Attachments:       r.Attachments,
			GroundingMetadata: r.GroundingMetadata,
			Feedback:          r.Feedback,
		}
	}
	return messages, nil
}
