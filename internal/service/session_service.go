// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"eduassist-go/internal/config"
	"eduassist-go/internal/knowledge"
	"eduassist-go/internal/model"
	"eduassist-go/internal/repository"
	"eduassist-go/pkg/llm"
	"eduassist-go/pkg/log"
	"eduassist-go/pkg/tasks"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrSessionBusy     = errors.New("session has a reply in progress")
	ErrEmptyMessage    = errors.New("message is empty")
	ErrInvalidStatus   = errors.New("invalid session status")
	ErrInvalidFeedback = errors.New("invalid feedback")
)

// 发送完成后机器人消息的固定文案。
const (
	imageGeneratedText = "Image generated."
	imageEditedText    = "Image edited."
	errorFallbackText  = "Error occurred."
	knowledgeNote      = "\n\n[System Note: Internal knowledge base context]\n\n"
	snippetRunes       = 120
	searchSize         = 100
)

// View 是当前显示的会话：SessionID 为空表示尚未持久化的新对话。
type View struct {
	SessionID string          `json:"sessionId"`
	Title     string          `json:"title"`
	Messages  []model.Message `json:"messages"`
}

// BootstrapResult 是登录后首屏需要的数据。
type BootstrapResult struct {
	View     *View           `json:"view"`
	Sessions []model.Session `json:"sessions"`
}

// SendRequest 是一次发送。SessionID 为空时发往当前会话。
type SendRequest struct {
	SessionID   string             `json:"sessionId"`
	Text        string             `json:"text"`
	Attachments []model.Attachment `json:"attachments"`
	Mode        model.InputMode    `json:"mode"`
	Settings    model.ChatSettings `json:"settings"`
}

// EventType 是发送过程中推送给调用方的事件类型。
type EventType string

const (
	// EventMessage 表示一条消息被追加或最终确定。
	EventMessage EventType = "message"
	// EventChunk 表示流式回答的文本有更新。
	EventChunk EventType = "chunk"
)

// Event 携带事件发生时消息的快照。
type Event struct {
	Type      EventType     `json:"type"`
	SessionID string        `json:"sessionId"`
	Message   model.Message `json:"message"`
}

// Observer 接收发送过程中的事件，可以为 nil。
type Observer func(Event)

// TranscriptSearcher 是跨会话检索的索引，es.TranscriptIndex 实现了它。
type TranscriptSearcher interface {
	Search(ctx context.Context, userID, query string, size int) ([]model.TranscriptDocument, error)
}

// SessionService 是会话生命周期控制器，保证会话列表和消息记录始终一致。
type SessionService interface {
	Bootstrap(ctx context.Context, user model.User) (*BootstrapResult, error)
	ListSessions(ctx context.Context, user model.User, includeAll bool) []model.Session
	StartNewSession(ctx context.Context, user model.User) *View
	SelectSession(ctx context.Context, user model.User, sessionID string) (*View, error)
	Current(ctx context.Context, user model.User) *View
	SendMessage(ctx context.Context, user model.User, req SendRequest, observe Observer) (*View, error)
	BranchSession(ctx context.Context, user model.User, sessionID, messageID string) (*View, error)
	SetSessionStatus(ctx context.Context, user model.User, sessionID string, status model.SessionStatus) (*View, error)
	DeleteSession(ctx context.Context, user model.User, sessionID string) (*View, error)
	LoadMessages(ctx context.Context, user model.User, sessionID string) ([]model.Message, error)
	SetFeedback(ctx context.Context, user model.User, sessionID, messageID string, feedback model.Feedback) (*model.Message, error)
	AssignIdentity(ctx context.Context, user model.User, sessionID string) (string, error)
	SearchMessages(ctx context.Context, user model.User, query string) []model.Message
	SearchSessions(ctx context.Context, user model.User, query string) ([]model.SessionHit, error)
	Speak(ctx context.Context, text, language string) (string, error)
}

// userState 是一个用户当前显示的会话，相当于浏览器里的一个标签页。
type userState struct {
	mu         sync.Mutex
	currentID  string
	transcript []model.Message
}

type sessionService struct {
	sessions  repository.SessionRepository
	messages  repository.MessageRepository
	prefs     repository.PreferenceRepository
	ai        llm.Client
	kb        *knowledge.Base
	publisher tasks.Publisher
	searcher  TranscriptSearcher
	ui        config.UIConfig

	statesMu sync.Mutex
	states   map[string]*userState

	busyMu sync.Mutex
	busy   map[string]struct{}

	now   func() time.Time
	newID func() string
	intN  func(int) int
}

// NewSessionService 创建一个新的 SessionService 实例。publisher 和 searcher 可以为 nil。
func NewSessionService(
	sessions repository.SessionRepository,
	messages repository.MessageRepository,
	prefs repository.PreferenceRepository,
	ai llm.Client,
	kb *knowledge.Base,
	publisher tasks.Publisher,
	searcher TranscriptSearcher,
	ui config.UIConfig,
) SessionService {
	return &sessionService{
		sessions:  sessions,
		messages:  messages,
		prefs:     prefs,
		ai:        ai,
		kb:        kb,
		publisher: publisher,
		searcher:  searcher,
		ui:        ui,
		states:    make(map[string]*userState),
		busy:      make(map[string]struct{}),
		now:       time.Now,
		newID:     uuid.NewString,
		intN:      rand.IntN,
	}
}

// Bootstrap 在登录后调用：首次访问时创建引导会话，否则打开最近的会话或新对话。
func (s *sessionService) Bootstrap(ctx context.Context, user model.User) (*BootstrapResult, error) {
	st := s.state(user)
	st.mu.Lock()
	var pending []tasks.TranscriptTask
	if !s.prefs.IsOnboarded(ctx, user.ID) {
		if err := s.prefs.MarkOnboarded(ctx, user.ID); err != nil {
			log.Warnf("[SessionService] 标记用户 %s 已引导失败: %v", user.ID, err)
		}
		id := s.newID()
		st.currentID = id
		st.transcript = guideMessages(s.ui, user, s.now(), s.newID)
		pending = s.persistLocked(ctx, st, user, id, model.CloneMessages(st.transcript), s.ui.GuideSessionTitle)
		log.Infof("[SessionService] 用户 %s 首次访问，已创建引导会话 %s", user.ID, id)
	} else if active := activeSessions(s.sessions.ListSessions(ctx, user.ID)); len(active) > 0 {
		s.selectLocked(ctx, st, user.ID, active[0].ID)
	} else {
		s.resetLocked(st, user)
	}
	view := s.viewLocked(ctx, st, user.ID)
	st.mu.Unlock()

	s.publish(ctx, pending...)
	return &BootstrapResult{View: view, Sessions: s.ListSessions(ctx, user, false)}, nil
}

// ListSessions 返回按最近更新排序的会话，默认只包含 active 会话。
// 读取可能触发旧数据迁移写入，需持有用户锁。
func (s *sessionService) ListSessions(ctx context.Context, user model.User, includeAll bool) []model.Session {
	st := s.state(user)
	st.mu.Lock()
	all := s.sessions.ListSessions(ctx, user.ID)
	st.mu.Unlock()
	if includeAll {
		return all
	}
	return activeSessions(all)
}

// StartNewSession 切换到一个尚未持久化的新对话。
func (s *sessionService) StartNewSession(ctx context.Context, user model.User) *View {
	st := s.state(user)
	st.mu.Lock()
	defer st.mu.Unlock()
	s.resetLocked(st, user)
	return s.viewLocked(ctx, st, user.ID)
}

// SelectSession 加载会话记录并设为当前会话。
func (s *sessionService) SelectSession(ctx context.Context, user model.User, sessionID string) (*View, error) {
	st := s.state(user)
	st.mu.Lock()
	defer st.mu.Unlock()
	if err := s.selectOwnedLocked(ctx, st, user.ID, sessionID); err != nil {
		return nil, err
	}
	return s.viewLocked(ctx, st, user.ID), nil
}

// Current 返回当前会话。
func (s *sessionService) Current(ctx context.Context, user model.User) *View {
	st := s.state(user)
	st.mu.Lock()
	defer st.mu.Unlock()
	return s.viewLocked(ctx, st, user.ID)
}

// SendMessage 追加用户消息，调用 AI 生成回答，并在回答结束后持久化完整记录。
// AI 失败不会作为错误返回，而是以 isError 的机器人消息写入记录。
func (s *sessionService) SendMessage(ctx context.Context, user model.User, req SendRequest, observe Observer) (*View, error) {
	if strings.TrimSpace(req.Text) == "" && len(req.Attachments) == 0 {
		return nil, ErrEmptyMessage
	}
	if observe == nil {
		observe = func(Event) {}
	}

	st := s.state(user)
	st.mu.Lock()
	if req.SessionID != "" && req.SessionID != st.currentID {
		if err := s.selectOwnedLocked(ctx, st, user.ID, req.SessionID); err != nil {
			st.mu.Unlock()
			return nil, err
		}
	}
	isNew := st.currentID == ""
	if isNew {
		st.currentID = s.newID()
	}
	sessionID := st.currentID
	if !s.acquire(sessionID) {
		if isNew {
			st.currentID = ""
		}
		st.mu.Unlock()
		return nil, ErrSessionBusy
	}
	defer s.release(sessionID)

	userMsg := model.Message{
		ID:          s.newID(),
		Text:        req.Text,
		Sender:      model.SenderUser,
		Timestamp:   s.now(),
		Attachments: req.Attachments,
	}
	history := model.CloneMessages(st.transcript)
	local := append(model.CloneMessages(st.transcript), userMsg)

	var pending []tasks.TranscriptTask
	title := ""
	if isNew {
		// 新会话立即保存用户消息和派生标题
		title = DeriveTitle(req.Text, s.ui.DefaultChatTitle)
		pending = append(pending, s.persistLocked(ctx, st, user, sessionID, model.CloneMessages(local), title)...)
	}

	bot := model.Message{
		ID:          s.newID(),
		Sender:      model.SenderBot,
		Timestamp:   s.now(),
		IsStreaming: true,
	}
	local = append(local, bot)
	botIdx := len(local) - 1
	if st.currentID == sessionID {
		st.transcript = model.CloneMessages(local)
	}
	st.mu.Unlock()

	observe(Event{Type: EventMessage, SessionID: sessionID, Message: userMsg.Clone()})
	observe(Event{Type: EventMessage, SessionID: sessionID, Message: bot.Clone()})

	// update 在锁内修改本地副本，仅当会话仍是当前会话时同步到显示状态
	update := func(mutate func(m *model.Message)) model.Message {
		st.mu.Lock()
		defer st.mu.Unlock()
		mutate(&local[botIdx])
		if st.currentID == sessionID && botIdx < len(st.transcript) && st.transcript[botIdx].ID == local[botIdx].ID {
			st.transcript[botIdx] = local[botIdx].Clone()
		}
		return local[botIdx].Clone()
	}

	// 用户切走后回答仍然写回它所属的会话
	aiCtx := context.WithoutCancel(ctx)
	if err := s.generate(aiCtx, sessionID, req, history, update, observe); err != nil {
		log.Errorf("[SessionService] 会话 %s 生成回答失败: %v", sessionID, err)
		msg := err.Error()
		if msg == "" {
			msg = errorFallbackText
		}
		update(func(m *model.Message) {
			m.Text = msg
			m.IsError = true
			m.IsStreaming = false
		})
	}

	st.mu.Lock()
	final := local[botIdx].Clone()
	if st.currentID == sessionID {
		st.transcript = model.CloneMessages(local)
	}
	pending = append(pending, s.persistLocked(aiCtx, st, user, sessionID, model.CloneMessages(local), title)...)
	view := &View{SessionID: sessionID, Title: s.titleOf(aiCtx, user.ID, sessionID), Messages: model.CloneMessages(local)}
	st.mu.Unlock()

	observe(Event{Type: EventMessage, SessionID: sessionID, Message: final})
	s.publish(aiCtx, pending...)
	return view, nil
}

// generate 按输入模式调用 AI，把结果写入机器人消息。
func (s *sessionService) generate(ctx context.Context, sessionID string, req SendRequest, history []model.Message,
	update func(func(m *model.Message)) model.Message, observe Observer) error {
	switch {
	case req.Mode == model.InputImageGen:
		image, err := s.ai.GenerateImage(ctx, variationPrompt(req.Text, s.intN), req.Settings.ImageAspectRatio)
		if err != nil {
			return err
		}
		update(func(m *model.Message) {
			m.Image = image
			m.Text = imageGeneratedText
			m.RelatedPrompt = req.Text
			m.IsStreaming = false
		})
		return nil
	case req.Mode == model.InputImageEdit && len(req.Attachments) > 0:
		image, err := s.ai.EditImage(ctx, req.Text, req.Attachments[0])
		if err != nil {
			return err
		}
		update(func(m *model.Message) {
			m.Image = image
			m.Text = imageEditedText
			m.IsStreaming = false
		})
		return nil
	}

	res, err := s.ai.StreamChat(ctx, llm.ChatRequest{
		History:           history,
		Text:              req.Text,
		Attachments:       req.Attachments,
		Settings:          req.Settings,
		SystemInstruction: s.systemInstruction(req.Text),
	}, func(accumulated string) error {
		snap := update(func(m *model.Message) { m.Text = accumulated })
		observe(Event{Type: EventChunk, SessionID: sessionID, Message: snap})
		return nil
	})
	if err != nil {
		return err
	}
	update(func(m *model.Message) {
		m.Text = res.Text
		m.GroundingMetadata = res.GroundingMetadata
		m.IsStreaming = false
	})
	return nil
}

func (s *sessionService) systemInstruction(query string) string {
	if s.kb == nil {
		return s.ui.SystemInstruction
	}
	if kb := s.kb.Context(query); kb != "" {
		return s.ui.SystemInstruction + knowledgeNote + kb
	}
	return s.ui.SystemInstruction
}

// BranchSession 把会话中截至 messageID 的消息深拷贝到一个新会话，并切换过去。
func (s *sessionService) BranchSession(ctx context.Context, user model.User, sessionID, messageID string) (*View, error) {
	st := s.state(user)
	st.mu.Lock()
	source, err := s.transcriptLocked(ctx, st, user.ID, sessionID)
	if err != nil {
		st.mu.Unlock()
		return nil, err
	}
	cut := -1
	for i, m := range source {
		if m.ID == messageID {
			cut = i
			break
		}
	}
	if cut < 0 {
		st.mu.Unlock()
		return nil, ErrMessageNotFound
	}

	branch := model.CloneMessages(source[:cut+1])
	title := s.ui.DefaultChatTitle
	for i := range branch {
		branch[i].IsStreaming = false
		if title == s.ui.DefaultChatTitle && branch[i].Sender == model.SenderUser {
			title = DeriveTitle(branch[i].Text, s.ui.DefaultChatTitle)
		}
	}

	newID := s.newID()
	st.currentID = newID
	st.transcript = branch
	pending := s.persistLocked(ctx, st, user, newID, model.CloneMessages(branch), title)
	view := s.viewLocked(ctx, st, user.ID)
	st.mu.Unlock()

	log.Infof("[SessionService] 会话 %s 在消息 %s 处分支为 %s", sessionID, messageID, newID)
	s.publish(ctx, pending...)
	return view, nil
}

// SetSessionStatus 修改会话状态；当前会话不再是 active 时回到新对话。
func (s *sessionService) SetSessionStatus(ctx context.Context, user model.User, sessionID string, status model.SessionStatus) (*View, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	st := s.state(user)
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := s.findSession(ctx, user.ID, sessionID); !ok {
		return nil, ErrSessionNotFound
	}
	if err := s.sessions.SetStatus(ctx, user.ID, sessionID, status); err != nil {
		log.Errorf("[SessionService] 修改会话 %s 状态失败: %v", sessionID, err)
		return nil, err
	}
	if status != model.StatusActive && st.currentID == sessionID {
		s.resetLocked(st, user)
	}
	return s.viewLocked(ctx, st, user.ID), nil
}

// DeleteSession 同时删除会话列表条目和消息记录。
func (s *sessionService) DeleteSession(ctx context.Context, user model.User, sessionID string) (*View, error) {
	st := s.state(user)
	st.mu.Lock()
	if _, ok := s.findSession(ctx, user.ID, sessionID); !ok {
		st.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	if s.isBusy(sessionID) {
		st.mu.Unlock()
		return nil, ErrSessionBusy
	}
	if err := s.sessions.DeleteSession(ctx, user.ID, sessionID); err != nil {
		st.mu.Unlock()
		return nil, err
	}
	if err := s.messages.DeleteMessages(ctx, user.ID, sessionID); err != nil {
		log.Errorf("[SessionService] 删除会话 %s 的消息失败: %v", sessionID, err)
	}
	if st.currentID == sessionID {
		s.resetLocked(st, user)
	}
	view := s.viewLocked(ctx, st, user.ID)
	st.mu.Unlock()

	s.publish(ctx, tasks.TranscriptTask{Op: tasks.OpDelete, UserID: user.ID, SessionID: sessionID})
	return view, nil
}

// LoadMessages 返回会话的消息记录，当前会话返回正在显示的记录。
func (s *sessionService) LoadMessages(ctx context.Context, user model.User, sessionID string) ([]model.Message, error) {
	st := s.state(user)
	st.mu.Lock()
	defer st.mu.Unlock()
	msgs, err := s.transcriptLocked(ctx, st, user.ID, sessionID)
	if err != nil {
		return nil, err
	}
	return model.CloneMessages(msgs), nil
}

// SetFeedback 记录用户对某条回答的评价并持久化。
func (s *sessionService) SetFeedback(ctx context.Context, user model.User, sessionID, messageID string, feedback model.Feedback) (*model.Message, error) {
	if feedback != model.FeedbackPositive && feedback != model.FeedbackNegative {
		return nil, ErrInvalidFeedback
	}
	st := s.state(user)
	st.mu.Lock()
	msgs, err := s.transcriptLocked(ctx, st, user.ID, sessionID)
	if err != nil {
		st.mu.Unlock()
		return nil, err
	}
	if s.isBusy(sessionID) {
		st.mu.Unlock()
		return nil, ErrSessionBusy
	}
	msgs = model.CloneMessages(msgs)
	idx := -1
	for i := range msgs {
		if msgs[i].ID == messageID {
			idx = i
			break
		}
	}
	if idx < 0 {
		st.mu.Unlock()
		return nil, ErrMessageNotFound
	}
	msgs[idx].Feedback = feedback
	if st.currentID == sessionID {
		st.transcript = model.CloneMessages(msgs)
	}
	out := msgs[idx].Clone()
	pending := s.persistLocked(ctx, st, user, sessionID, msgs, "")
	st.mu.Unlock()

	s.publish(ctx, pending...)
	return &out, nil
}

// AssignIdentity 让 AI 根据最近的对话起一个角色名，并作为会话标题保存。
func (s *sessionService) AssignIdentity(ctx context.Context, user model.User, sessionID string) (string, error) {
	msgs, err := s.LoadMessages(ctx, user, sessionID)
	if err != nil {
		return "", err
	}
	name, err := s.ai.ChatIdentity(ctx, msgs)
	name = strings.TrimSpace(name)
	if err != nil || name == "" {
		if err != nil {
			log.Warnf("[SessionService] 获取会话 %s 的角色名失败: %v", sessionID, err)
		}
		name = s.ui.DefaultIdentity
	}

	st := s.state(user)
	st.mu.Lock()
	defer st.mu.Unlock()
	if err := s.sessions.UpsertSession(ctx, user.ID, sessionID, name); err != nil {
		return "", err
	}
	return name, nil
}

// SearchMessages 在当前显示的记录中不区分大小写地过滤消息。
func (s *sessionService) SearchMessages(ctx context.Context, user model.User, query string) []model.Message {
	q := strings.ToLower(strings.TrimSpace(query))
	st := s.state(user)
	st.mu.Lock()
	defer st.mu.Unlock()
	if q == "" {
		return model.CloneMessages(st.transcript)
	}
	var out []model.Message
	for _, m := range st.transcript {
		if strings.Contains(strings.ToLower(m.Text), q) {
			out = append(out, m.Clone())
		}
	}
	return out
}

// SearchSessions 跨会话检索，只返回用户 active 会话中的命中。
// 未配置索引或索引不可用时退化为逐个扫描消息记录。
func (s *sessionService) SearchSessions(ctx context.Context, user model.User, query string) ([]model.SessionHit, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, nil
	}
	active := s.ListSessions(ctx, user, false)
	if s.searcher != nil {
		docs, err := s.searcher.Search(ctx, user.ID, q, searchSize)
		if err == nil {
			return groupHits(active, docs), nil
		}
		log.Warnf("[SessionService] 索引检索失败，改为扫描消息记录: %v", err)
	}

	st := s.state(user)
	st.mu.Lock()
	defer st.mu.Unlock()
	lower := strings.ToLower(q)
	var hits []model.SessionHit
	for _, sess := range active {
		var snippets []string
		for _, m := range s.messages.LoadMessages(ctx, user.ID, sess.ID) {
			if !m.IsError && strings.Contains(strings.ToLower(m.Text), lower) {
				snippets = append(snippets, snippet(m.Text, snippetRunes))
			}
		}
		if len(snippets) > 0 {
			hits = append(hits, model.SessionHit{Session: sess, Snippets: snippets})
		}
	}
	return hits, nil
}

// Speak 把文本合成为语音。
func (s *sessionService) Speak(ctx context.Context, text, language string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyMessage
	}
	if language == "" || language == "auto" {
		language = string(model.DefaultLanguage)
	}
	return s.ai.GenerateSpeech(ctx, text, language)
}

func (s *sessionService) state(user model.User) *userState {
	s.statesMu.Lock()
	defer s.statesMu.Unlock()
	st, ok := s.states[user.ID]
	if !ok {
		st = &userState{transcript: []model.Message{welcomeMessage(s.ui, user, s.now())}}
		s.states[user.ID] = st
	}
	return st
}

// persistLocked 保存消息记录并刷新会话列表，返回需要发布的索引任务。
// 记录未能写入时不刷新列表；被淘汰的会话如果正是当前会话则回到新对话。
func (s *sessionService) persistLocked(ctx context.Context, st *userState, user model.User, sessionID string, msgs []model.Message, title string) []tasks.TranscriptTask {
	res := s.messages.SaveMessages(ctx, user.ID, sessionID, msgs)
	var pending []tasks.TranscriptTask
	for _, evicted := range res.Evicted {
		pending = append(pending, tasks.TranscriptTask{Op: tasks.OpDelete, UserID: user.ID, SessionID: evicted})
		if st.currentID == evicted {
			s.resetLocked(st, user)
		}
	}
	if !res.Persisted {
		log.Errorf("[SessionService] 会话 %s 未能持久化，本次内容只保留在内存中: %v", sessionID, res.Err)
		return pending
	}
	if res.MediaStripped {
		log.Warnf("[SessionService] 会话 %s 超出存储配额，已移除媒体后保存", sessionID)
	}
	if err := s.sessions.UpsertSession(ctx, user.ID, sessionID, title); err != nil {
		log.Errorf("[SessionService] 刷新会话 %s 的列表条目失败: %v", sessionID, err)
	}
	return append(pending, tasks.TranscriptTask{Op: tasks.OpIndex, UserID: user.ID, SessionID: sessionID})
}

func (s *sessionService) resetLocked(st *userState, user model.User) {
	st.currentID = ""
	st.transcript = []model.Message{welcomeMessage(s.ui, user, s.now())}
}

func (s *sessionService) selectLocked(ctx context.Context, st *userState, userID, sessionID string) {
	st.currentID = sessionID
	st.transcript = s.messages.LoadMessages(ctx, userID, sessionID)
}

func (s *sessionService) selectOwnedLocked(ctx context.Context, st *userState, userID, sessionID string) error {
	if _, ok := s.findSession(ctx, userID, sessionID); !ok {
		return ErrSessionNotFound
	}
	s.selectLocked(ctx, st, userID, sessionID)
	return nil
}

// transcriptLocked 返回会话的记录，不做拷贝。
func (s *sessionService) transcriptLocked(ctx context.Context, st *userState, userID, sessionID string) ([]model.Message, error) {
	if sessionID != "" && sessionID == st.currentID {
		return st.transcript, nil
	}
	if _, ok := s.findSession(ctx, userID, sessionID); !ok {
		return nil, ErrSessionNotFound
	}
	return s.messages.LoadMessages(ctx, userID, sessionID), nil
}

func (s *sessionService) viewLocked(ctx context.Context, st *userState, userID string) *View {
	return &View{
		SessionID: st.currentID,
		Title:     s.titleOf(ctx, userID, st.currentID),
		Messages:  model.CloneMessages(st.transcript),
	}
}

func (s *sessionService) titleOf(ctx context.Context, userID, sessionID string) string {
	if sessionID == "" {
		return ""
	}
	if sess, ok := s.findSession(ctx, userID, sessionID); ok {
		return sess.Title
	}
	return ""
}

func (s *sessionService) findSession(ctx context.Context, userID, sessionID string) (model.Session, bool) {
	if sessionID == "" {
		return model.Session{}, false
	}
	for _, sess := range s.sessions.ListSessions(ctx, userID) {
		if sess.ID == sessionID {
			return sess, true
		}
	}
	return model.Session{}, false
}

func (s *sessionService) acquire(sessionID string) bool {
	s.busyMu.Lock()
	defer s.busyMu.Unlock()
	if _, ok := s.busy[sessionID]; ok {
		return false
	}
	s.busy[sessionID] = struct{}{}
	return true
}

func (s *sessionService) release(sessionID string) {
	s.busyMu.Lock()
	defer s.busyMu.Unlock()
	delete(s.busy, sessionID)
}

func (s *sessionService) isBusy(sessionID string) bool {
	s.busyMu.Lock()
	defer s.busyMu.Unlock()
	_, ok := s.busy[sessionID]
	return ok
}

func (s *sessionService) publish(ctx context.Context, pending ...tasks.TranscriptTask) {
	if s.publisher == nil {
		return
	}
	for _, task := range pending {
		if err := s.publisher.Publish(ctx, task); err != nil {
			log.Errorf("[SessionService] 发布索引任务失败: op=%s session=%s error=%v", task.Op, task.SessionID, err)
		}
	}
}

func activeSessions(all []model.Session) []model.Session {
	out := make([]model.Session, 0, len(all))
	for _, sess := range all {
		if sess.IsActive() {
			out = append(out, sess)
		}
	}
	return out
}

// groupHits 按会话列表的顺序聚合索引命中，丢弃不属于 active 会话的文档。
func groupHits(active []model.Session, docs []model.TranscriptDocument) []model.SessionHit {
	bySession := make(map[string][]string)
	for _, d := range docs {
		bySession[d.SessionID] = append(bySession[d.SessionID], snippet(d.Text, snippetRunes))
	}
	var hits []model.SessionHit
	for _, sess := range active {
		if snippets, ok := bySession[sess.ID]; ok {
			hits = append(hits, model.SessionHit{Session: sess, Snippets: snippets})
		}
	}
	return hits
}
