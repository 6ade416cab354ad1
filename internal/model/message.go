package model

import "time"

// Sender 标识消息的发送方。
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Feedback 是用户对回答的评价。
type Feedback string

const (
	FeedbackPositive Feedback = "positive"
	FeedbackNegative Feedback = "negative"
)

// AttachmentType 是附件的粗粒度类型。
type AttachmentType string

const (
	AttachmentImage AttachmentType = "image"
	AttachmentVideo AttachmentType = "video"
	AttachmentAudio AttachmentType = "audio"
	AttachmentFile  AttachmentType = "file"
)

// Attachment 是内嵌在消息中的媒体，Data 为 base64，URI 为展示用的 data URI。
type Attachment struct {
	MimeType string         `json:"mimeType"`
	Data     string         `json:"data"`
	URI      string         `json:"uri"`
	Name     string         `json:"name,omitempty"`
	Type     AttachmentType `json:"type"`
}

// GroundingSource 是一条引用来源。
type GroundingSource struct {
	URI     string `json:"uri"`
	Title   string `json:"title"`
	PlaceID string `json:"placeId,omitempty"`
}

// GroundingChunk 对应一次检索命中，web 与 maps 至多其一。
type GroundingChunk struct {
	Web  *GroundingSource `json:"web,omitempty"`
	Maps *GroundingSource `json:"maps,omitempty"`
}

// GroundingMetadata 保存回答的引用链接。
type GroundingMetadata struct {
	GroundingChunks []GroundingChunk `json:"groundingChunks,omitempty"`
}

// Message 是会话记录中的一轮发言。
type Message struct {
	ID                string             `json:"id"`
	Text              string             `json:"text"`
	Sender            Sender             `json:"sender"`
	Timestamp         time.Time          `json:"timestamp"`
	IsStreaming       bool               `json:"isStreaming,omitempty"`
	IsError           bool               `json:"isError,omitempty"`
	Image             string             `json:"image,omitempty"`
	RelatedPrompt     string             `json:"relatedPrompt,omitempty"`
	Attachments       []Attachment       `json:"attachments,omitempty"`
	GroundingMetadata *GroundingMetadata `json:"groundingMetadata,omitempty"`
	Feedback          Feedback           `json:"feedback,omitempty"`
}

// HasMedia 判断消息是否携带图片或附件。
func (m Message) HasMedia() bool {
	return m.Image != "" || len(m.Attachments) > 0
}

// Clone 返回深拷贝，两份消息之间不共享任何切片或指针。
func (m Message) Clone() Message {
	out := m
	if m.Attachments != nil {
		out.Attachments = make([]Attachment, len(m.Attachments))
		copy(out.Attachments, m.Attachments)
	}
	if m.GroundingMetadata != nil {
		gm := GroundingMetadata{}
		if m.GroundingMetadata.GroundingChunks != nil {
			gm.GroundingChunks = make([]GroundingChunk, len(m.GroundingMetadata.GroundingChunks))
			for i, c := range m.GroundingMetadata.GroundingChunks {
				if c.Web != nil {
					w := *c.Web
					gm.GroundingChunks[i].Web = &w
				}
				if c.Maps != nil {
					mp := *c.Maps
					gm.GroundingChunks[i].Maps = &mp
				}
			}
		}
		out.GroundingMetadata = &gm
	}
	return out
}

// CloneMessages 深拷贝一组消息。
func CloneMessages(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.Clone()
	}
	return out
}
