package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"eduassist-go/internal/middleware"
	"eduassist-go/internal/service"
	"eduassist-go/pkg/log"
	"eduassist-go/pkg/token"
)

var (
	upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // 允许所有来源
		},
	}
)

// ChatHandler 负责发送消息，包括 WebSocket 流式连接和语音合成。
type ChatHandler struct {
	sessionService service.SessionService
	jwtManager     *token.JWTManager
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(sessionService service.SessionService, jwtManager *token.JWTManager) *ChatHandler {
	return &ChatHandler{sessionService: sessionService, jwtManager: jwtManager}
}

// Send 以普通 HTTP 请求发送消息，回答结束后返回完整的会话记录。
func (h *ChatHandler) Send(c *gin.Context) {
	var req service.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "无效的请求负载")
		return
	}
	view, err := h.sessionService.SendMessage(c.Request.Context(), middleware.CurrentUser(c), req, nil)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, view)
}

// Handle 处理一个传入的 WebSocket 连接，每条入站消息是一次发送。
func (h *ChatHandler) Handle(c *gin.Context) {
	user, valid := middleware.UserFromToken(h.jwtManager, c.Param("token"))
	if !valid {
		fail(c, http.StatusUnauthorized, "无效的 token")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	log.Infof("WebSocket 连接已建立，用户: %s", user.ID)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Warnf("从 WebSocket 读取消息失败: %v", err)
			break
		}

		var req service.SendRequest
		if err := json.Unmarshal(message, &req); err != nil {
			writeJSON(conn, gin.H{"type": "error", "message": "无效的消息格式"})
			continue
		}

		observe := func(e service.Event) {
			switch e.Type {
			case service.EventChunk:
				writeJSON(conn, gin.H{"type": "chunk", "sessionId": e.SessionID, "messageId": e.Message.ID, "text": e.Message.Text})
			default:
				writeJSON(conn, gin.H{"type": "message", "sessionId": e.SessionID, "message": e.Message})
			}
		}
		view, err := h.sessionService.SendMessage(c.Request.Context(), user, req, observe)
		if err != nil {
			log.Warnf("处理 WebSocket 消息失败: user=%s error=%v", user.ID, err)
			writeJSON(conn, gin.H{"type": "error", "message": err.Error()})
			continue
		}
		writeJSON(conn, gin.H{
			"type":      "completion",
			"status":    "finished",
			"message":   "响应已完成",
			"sessionId": view.SessionID,
			"title":     view.Title,
			"timestamp": time.Now().UnixMilli(),
			"date":      time.Now().Format("2006-01-02T15:04:05"),
		})
	}
}

func writeJSON(conn *websocket.Conn, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Errorf("序列化 WebSocket 消息失败: %v", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		log.Warnf("写入 WebSocket 消息失败: %v", err)
	}
}

// SpeechRequest 是语音合成请求。
type SpeechRequest struct {
	Text     string `json:"text" binding:"required"`
	Language string `json:"language"`
}

// Speak 把文本合成为 base64 编码的音频。
func (h *ChatHandler) Speak(c *gin.Context) {
	var req SpeechRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "无效的请求负载：text 不能为空")
		return
	}
	audio, err := h.sessionService.Speak(c.Request.Context(), req.Text, req.Language)
	if err != nil {
		log.Errorf("语音合成失败: %v", err)
		failErr(c, err)
		return
	}
	ok(c, gin.H{"audio": audio})
}
