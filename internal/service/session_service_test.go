package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"eduassist-go/internal/config"
	"eduassist-go/internal/knowledge"
	"eduassist-go/internal/model"
	"eduassist-go/internal/repository"
	"eduassist-go/pkg/kvstore"
	"eduassist-go/pkg/llm"
	"eduassist-go/pkg/tasks"
)

type fakeAI struct {
	mu       sync.Mutex
	reply    string
	err      error
	chunks   []string
	started  chan struct{}
	release  chan struct{}
	requests []llm.ChatRequest
	prompts  []string
}

func (f *fakeAI) StreamChat(_ context.Context, req llm.ChatRequest, onChunk llm.StreamHandler) (*llm.ChatResult, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	acc := ""
	for _, c := range f.chunks {
		acc += c
		if err := onChunk(acc); err != nil {
			return nil, err
		}
	}
	return &llm.ChatResult{Text: f.reply}, nil
}

func (f *fakeAI) GenerateImage(_ context.Context, prompt string, _ model.AspectRatio) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return "data:image/png;base64,AAAA", f.err
}

func (f *fakeAI) EditImage(_ context.Context, prompt string, image model.Attachment) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return "data:" + image.MimeType + ";base64,BBBB", f.err
}

func (f *fakeAI) GenerateSpeech(_ context.Context, text, language string) (string, error) {
	return language + ":" + text, nil
}

func (f *fakeAI) ChatIdentity(_ context.Context, _ []model.Message) (string, error) {
	return "", errors.New("identity unavailable")
}

type recordingPublisher struct {
	mu    sync.Mutex
	tasks []tasks.TranscriptTask
}

func (p *recordingPublisher) Publish(_ context.Context, task tasks.TranscriptTask) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tasks = append(p.tasks, task)
	return nil
}

type fakeSearcher struct {
	docs []model.TranscriptDocument
	err  error
}

func (f *fakeSearcher) Search(_ context.Context, _, _ string, _ int) ([]model.TranscriptDocument, error) {
	return f.docs, f.err
}

type tickClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *tickClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type fixture struct {
	svc   *sessionService
	ai    *fakeAI
	pub   *recordingPublisher
	store *kvstore.MemoryStore
}

func newFixture(t *testing.T, ai *fakeAI) *fixture {
	t.Helper()
	return newFixtureWithStore(t, ai, kvstore.NewMemoryStore(0))
}

func newFixtureWithStore(t *testing.T, ai *fakeAI, store *kvstore.MemoryStore) *fixture {
	t.Helper()
	clock := &tickClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	keys := repository.Keys{}
	sessions := repository.NewSessionRepository(store, keys, nil, "New Chat", clock.Now)
	messages := repository.NewMessageRepository(store, keys, sessions, "[Media removed to save space]")
	prefs := repository.NewPreferenceRepository(store, keys)
	pub := &recordingPublisher{}
	svc := NewSessionService(sessions, messages, prefs, ai, knowledge.Default(), pub, nil, config.DefaultUI()).(*sessionService)
	svc.now = clock.Now
	n := 0
	var mu sync.Mutex
	svc.newID = func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
	svc.intN = func(int) int { return 0 }
	return &fixture{svc: svc, ai: ai, pub: pub, store: store}
}

var student = model.User{ID: "u1", Name: "Ana", Method: model.LoginEmail, Role: model.RoleStudent}

func send(t *testing.T, f *fixture, sessionID, text string) *View {
	t.Helper()
	view, err := f.svc.SendMessage(context.Background(), student, SendRequest{SessionID: sessionID, Text: text, Mode: model.InputText}, nil)
	if err != nil {
		t.Fatalf("SendMessage(%q) error = %v", text, err)
	}
	return view
}

func TestDeriveTitle(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"**Hello** world\nsecond line", "Hello world"},
		{"  # Heading ~~x~~ `code`  ", "Heading x code"},
		{"***", "Chat"},
		{strings.Repeat("é", 70), strings.Repeat("é", 60)},
	}
	for _, c := range cases {
		if got := DeriveTitle(c.in, "Chat"); got != c.want {
			t.Fatalf("DeriveTitle(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSendMessage_FirstMessageCreatesSession(t *testing.T) {
	f := newFixture(t, &fakeAI{reply: "Hi there", chunks: []string{"Hi", " there"}})
	ctx := context.Background()

	var events []Event
	view, err := f.svc.SendMessage(ctx, student, SendRequest{Text: "**Hello** world\nsecond line"}, func(e Event) {
		events = append(events, e)
	})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if view.SessionID == "" || view.Title != "Hello world" {
		t.Fatalf("view = %+v, want a new session titled %q", view, "Hello world")
	}

	sessions := f.svc.ListSessions(ctx, student, false)
	if len(sessions) != 1 || sessions[0].ID != view.SessionID || sessions[0].Title != "Hello world" {
		t.Fatalf("sessions = %+v", sessions)
	}

	msgs, err := f.svc.LoadMessages(ctx, student, view.SessionID)
	if err != nil {
		t.Fatalf("LoadMessages() error = %v", err)
	}
	if len(msgs) != 3 || msgs[0].ID != WelcomeMessageID || msgs[1].Sender != model.SenderUser {
		t.Fatalf("messages = %+v, want welcome, user and bot", msgs)
	}
	bot := msgs[2]
	if bot.Text != "Hi there" || bot.IsStreaming || bot.IsError {
		t.Fatalf("bot message = %+v", bot)
	}

	var chunks int
	for _, e := range events {
		if e.Type == EventChunk {
			chunks++
		}
	}
	if chunks != 2 {
		t.Fatalf("chunk events = %d, want 2", chunks)
	}
	last := events[len(events)-1]
	if last.Type != EventMessage || last.Message.ID != bot.ID || last.Message.IsStreaming {
		t.Fatalf("last event = %+v", last)
	}

	if len(f.ai.requests) != 1 || len(f.ai.requests[0].History) != 1 || f.ai.requests[0].History[0].ID != WelcomeMessageID {
		t.Fatalf("history sent to ai = %+v, want only the welcome message", f.ai.requests)
	}
}

func TestSendMessage_Validation(t *testing.T) {
	f := newFixture(t, &fakeAI{reply: "ok"})
	ctx := context.Background()
	if _, err := f.svc.SendMessage(ctx, student, SendRequest{Text: "  "}, nil); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("empty send error = %v, want ErrEmptyMessage", err)
	}
	if _, err := f.svc.SendMessage(ctx, student, SendRequest{SessionID: "missing", Text: "hi"}, nil); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("unknown session error = %v, want ErrSessionNotFound", err)
	}
}

func TestSendMessage_AIFailurePersistsErrorMessage(t *testing.T) {
	f := newFixture(t, &fakeAI{err: errors.New("permission denied")})
	ctx := context.Background()

	view := send(t, f, "", "explain gravity")
	msgs, _ := f.svc.LoadMessages(ctx, student, view.SessionID)
	bot := msgs[len(msgs)-1]
	if !bot.IsError || bot.Text != "permission denied" || bot.IsStreaming {
		t.Fatalf("bot message = %+v, want persisted error", bot)
	}

	// 会话在出错后仍然可用
	f.ai.err = nil
	f.ai.reply = "retry worked"
	view = send(t, f, view.SessionID, "again")
	if got := view.Messages[len(view.Messages)-1].Text; got != "retry worked" {
		t.Fatalf("reply after error = %q", got)
	}
}

func TestSendMessage_ImageModes(t *testing.T) {
	f := newFixture(t, &fakeAI{reply: "text reply"})
	ctx := context.Background()

	view, err := f.svc.SendMessage(ctx, student, SendRequest{Text: "a cat", Mode: model.InputImageGen}, nil)
	if err != nil {
		t.Fatalf("SendMessage(image-gen) error = %v", err)
	}
	bot := view.Messages[len(view.Messages)-1]
	if bot.Image == "" || bot.Text != "Image generated." || bot.RelatedPrompt != "a cat" {
		t.Fatalf("image-gen bot = %+v", bot)
	}
	if f.ai.prompts[0] != "a cat, cinematic masterwork (variation #0)" {
		t.Fatalf("image prompt = %q", f.ai.prompts[0])
	}

	att := model.Attachment{MimeType: "image/png", Data: "Zm9v", Type: model.AttachmentImage}
	view, err = f.svc.SendMessage(ctx, student, SendRequest{Text: "make it blue", Mode: model.InputImageEdit, Attachments: []model.Attachment{att}}, nil)
	if err != nil {
		t.Fatalf("SendMessage(image-edit) error = %v", err)
	}
	bot = view.Messages[len(view.Messages)-1]
	if bot.Text != "Image edited." || !strings.HasPrefix(bot.Image, "data:image/png") {
		t.Fatalf("image-edit bot = %+v", bot)
	}

	// 没有附件的编辑请求按普通对话处理
	view, err = f.svc.SendMessage(ctx, student, SendRequest{Text: "edit nothing", Mode: model.InputImageEdit}, nil)
	if err != nil {
		t.Fatalf("SendMessage(image-edit without attachment) error = %v", err)
	}
	if got := view.Messages[len(view.Messages)-1].Text; got != "text reply" {
		t.Fatalf("fallback reply = %q, want text chat", got)
	}
}

func TestSetSessionStatus_DemotingCurrentResetsView(t *testing.T) {
	f := newFixture(t, &fakeAI{reply: "ok"})
	ctx := context.Background()
	view := send(t, f, "", "hello")

	got, err := f.svc.SetSessionStatus(ctx, student, view.SessionID, model.StatusArchived)
	if err != nil {
		t.Fatalf("SetSessionStatus() error = %v", err)
	}
	if got.SessionID != "" || len(got.Messages) != 1 || got.Messages[0].ID != WelcomeMessageID {
		t.Fatalf("view after archive = %+v, want a fresh new chat", got)
	}
	if cur := f.svc.Current(ctx, student); cur.SessionID != "" {
		t.Fatalf("Current() = %q, want empty", cur.SessionID)
	}
	if active := f.svc.ListSessions(ctx, student, false); len(active) != 0 {
		t.Fatalf("active sessions = %+v, want none", active)
	}
	if all := f.svc.ListSessions(ctx, student, true); len(all) != 1 || all[0].Status != model.StatusArchived {
		t.Fatalf("all sessions = %+v", all)
	}
	if _, err := f.svc.SetSessionStatus(ctx, student, view.SessionID, "bogus"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("invalid status error = %v", err)
	}
}

func TestBranchSession_IsIndependent(t *testing.T) {
	f := newFixture(t, &fakeAI{reply: "answer"})
	ctx := context.Background()
	src := send(t, f, "", "**First** question")
	src = send(t, f, src.SessionID, "second question")
	pivot := src.Messages[2] // 第一条回答

	branch, err := f.svc.BranchSession(ctx, student, src.SessionID, pivot.ID)
	if err != nil {
		t.Fatalf("BranchSession() error = %v", err)
	}
	if branch.SessionID == src.SessionID || branch.Title != "First question" || len(branch.Messages) != 3 {
		t.Fatalf("branch view = %+v", branch)
	}

	send(t, f, branch.SessionID, "only in branch")
	srcMsgs, _ := f.svc.LoadMessages(ctx, student, src.SessionID)
	if len(srcMsgs) != 5 {
		t.Fatalf("source transcript has %d messages, want 5", len(srcMsgs))
	}
	send(t, f, src.SessionID, "only in source")
	branchMsgs, _ := f.svc.LoadMessages(ctx, student, branch.SessionID)
	if len(branchMsgs) != 5 || branchMsgs[3].Text != "only in branch" {
		t.Fatalf("branch transcript = %+v", branchMsgs)
	}

	if _, err := f.svc.BranchSession(ctx, student, src.SessionID, "nope"); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("branch on unknown message error = %v", err)
	}
}

func TestDeleteSession_IsTotal(t *testing.T) {
	f := newFixture(t, &fakeAI{reply: "ok"})
	ctx := context.Background()
	view := send(t, f, "", "to be deleted")

	got, err := f.svc.DeleteSession(ctx, student, view.SessionID)
	if err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if got.SessionID != "" {
		t.Fatalf("current after delete = %q", got.SessionID)
	}
	if all := f.svc.ListSessions(ctx, student, true); len(all) != 0 {
		t.Fatalf("sessions after delete = %+v", all)
	}
	if _, err := f.store.Scope(student.ID).Get(ctx, repository.Keys{}.Messages(view.SessionID)); !errors.Is(err, kvstore.ErrNotFound) {
		t.Fatalf("message log after delete err = %v, want ErrNotFound", err)
	}
	last := f.pub.tasks[len(f.pub.tasks)-1]
	if last.Op != tasks.OpDelete || last.SessionID != view.SessionID {
		t.Fatalf("last task = %+v, want delete", last)
	}
	if _, err := f.svc.DeleteSession(ctx, student, view.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("second delete error = %v", err)
	}
}

func TestSendMessage_BusySessionIsGuarded(t *testing.T) {
	ai := &fakeAI{reply: "slow", started: make(chan struct{}), release: make(chan struct{})}
	f := newFixture(t, ai)
	ctx := context.Background()

	done := make(chan *View)
	go func() {
		view, _ := f.svc.SendMessage(ctx, student, SendRequest{Text: "slow question"}, nil)
		done <- view
	}()
	<-ai.started

	cur := f.svc.Current(ctx, student)
	if _, err := f.svc.SendMessage(ctx, student, SendRequest{Text: "impatient"}, nil); !errors.Is(err, ErrSessionBusy) {
		t.Fatalf("concurrent send error = %v, want ErrSessionBusy", err)
	}
	if _, err := f.svc.DeleteSession(ctx, student, cur.SessionID); !errors.Is(err, ErrSessionBusy) {
		t.Fatalf("delete during reply error = %v, want ErrSessionBusy", err)
	}
	close(ai.release)
	view := <-done
	if view == nil || view.Messages[len(view.Messages)-1].Text != "slow" {
		t.Fatalf("slow send view = %+v", view)
	}
}

func TestSendMessage_ReplyLandsInOriginSessionAfterSwitch(t *testing.T) {
	ai := &fakeAI{reply: "late answer", started: make(chan struct{}), release: make(chan struct{})}
	f := newFixture(t, ai)
	ctx := context.Background()

	done := make(chan *View)
	go func() {
		view, _ := f.svc.SendMessage(ctx, student, SendRequest{Text: "question"}, nil)
		done <- view
	}()
	<-ai.started
	f.svc.StartNewSession(ctx, student)
	close(ai.release)
	view := <-done

	if cur := f.svc.Current(ctx, student); cur.SessionID != "" || len(cur.Messages) != 1 {
		t.Fatalf("current view = %+v, want the new chat untouched", cur)
	}
	msgs, err := f.svc.LoadMessages(ctx, student, view.SessionID)
	if err != nil {
		t.Fatalf("LoadMessages() error = %v", err)
	}
	if got := msgs[len(msgs)-1].Text; got != "late answer" {
		t.Fatalf("origin session last message = %q", got)
	}
}

func TestBootstrap_OnboardingThenResume(t *testing.T) {
	store := kvstore.NewMemoryStore(0)
	f := newFixtureWithStore(t, &fakeAI{reply: "ok"}, store)
	ctx := context.Background()

	res, err := f.svc.Bootstrap(ctx, student)
	if err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	if res.View.Title != "Guide" || len(res.View.Messages) != 3 {
		t.Fatalf("first bootstrap view = %+v", res.View)
	}
	if got := res.View.Messages[0].Text; got != "👋 Hi Ana! Welcome to EduAssist AI." {
		t.Fatalf("guide welcome = %q", got)
	}
	if !res.View.Messages[0].Timestamp.Before(res.View.Messages[2].Timestamp) {
		t.Fatalf("guide messages are not in chronological order")
	}
	if len(res.Sessions) != 1 {
		t.Fatalf("sessions = %+v", res.Sessions)
	}

	again := newFixtureWithStore(t, &fakeAI{reply: "ok"}, store)
	res2, err := again.svc.Bootstrap(ctx, student)
	if err != nil {
		t.Fatalf("second Bootstrap() error = %v", err)
	}
	if res2.View.SessionID != res.View.SessionID || len(res2.Sessions) != 1 {
		t.Fatalf("second bootstrap = %+v, want the guide session resumed", res2.View)
	}
}

func TestStartNewSession_Welcome(t *testing.T) {
	f := newFixture(t, &fakeAI{})
	ctx := context.Background()

	guest := model.User{ID: "g1", Name: "Guest User", IsGuest: true, Method: model.LoginGuest}
	if got := f.svc.StartNewSession(ctx, guest).Messages[0].Text; strings.Contains(got, "Guest") || strings.Contains(got, "{name}") {
		t.Fatalf("guest welcome = %q", got)
	}
	teacher := model.User{ID: "t1", Name: "Mr. Rao", Role: model.RoleTeacher}
	if got := f.svc.StartNewSession(ctx, teacher).Messages[0].Text; !strings.Contains(got, "Teacher Mr. Rao") {
		t.Fatalf("teacher welcome = %q", got)
	}
}

func TestSetFeedback(t *testing.T) {
	f := newFixture(t, &fakeAI{reply: "ok"})
	ctx := context.Background()
	view := send(t, f, "", "rate me")
	bot := view.Messages[len(view.Messages)-1]

	got, err := f.svc.SetFeedback(ctx, student, view.SessionID, bot.ID, model.FeedbackPositive)
	if err != nil || got.Feedback != model.FeedbackPositive {
		t.Fatalf("SetFeedback() = %+v, %v", got, err)
	}
	f.svc.StartNewSession(ctx, student)
	msgs, _ := f.svc.LoadMessages(ctx, student, view.SessionID)
	if msgs[len(msgs)-1].Feedback != model.FeedbackPositive {
		t.Fatalf("feedback was not persisted: %+v", msgs[len(msgs)-1])
	}
	if _, err := f.svc.SetFeedback(ctx, student, view.SessionID, bot.ID, "meh"); !errors.Is(err, ErrInvalidFeedback) {
		t.Fatalf("invalid feedback error = %v", err)
	}
}

func TestAssignIdentity_FallsBackToDefault(t *testing.T) {
	f := newFixture(t, &fakeAI{reply: "ok"})
	ctx := context.Background()
	view := send(t, f, "", "hello")

	name, err := f.svc.AssignIdentity(ctx, student, view.SessionID)
	if err != nil || name != "EduAssist AI" {
		t.Fatalf("AssignIdentity() = %q, %v", name, err)
	}
	if sessions := f.svc.ListSessions(ctx, student, false); sessions[0].Title != "EduAssist AI" {
		t.Fatalf("session title = %q", sessions[0].Title)
	}
}

func TestSearch(t *testing.T) {
	f := newFixture(t, &fakeAI{reply: "Plants make sugar"})
	ctx := context.Background()
	a := send(t, f, "", "photosynthesis please")
	f.svc.StartNewSession(ctx, student)
	b := send(t, f, "", "photosynthesis again")
	if _, err := f.svc.SetSessionStatus(ctx, student, a.SessionID, model.StatusHidden); err != nil {
		t.Fatalf("SetSessionStatus() error = %v", err)
	}
	if _, err := f.svc.SelectSession(ctx, student, b.SessionID); err != nil {
		t.Fatalf("SelectSession() error = %v", err)
	}

	if got := f.svc.SearchMessages(ctx, student, "SUGAR"); len(got) != 1 || got[0].Sender != model.SenderBot {
		t.Fatalf("SearchMessages() = %+v", got)
	}

	hits, err := f.svc.SearchSessions(ctx, student, "photosynthesis")
	if err != nil || len(hits) != 1 || hits[0].Session.ID != b.SessionID {
		t.Fatalf("SearchSessions() fallback = %+v, %v", hits, err)
	}

	f.svc.searcher = &fakeSearcher{docs: []model.TranscriptDocument{
		{SessionID: a.SessionID, Text: "photosynthesis please"},
		{SessionID: b.SessionID, Text: "photosynthesis again"},
	}}
	hits, err = f.svc.SearchSessions(ctx, student, "photosynthesis")
	if err != nil || len(hits) != 1 || hits[0].Session.ID != b.SessionID || hits[0].Snippets[0] != "photosynthesis again" {
		t.Fatalf("SearchSessions() via index = %+v, %v", hits, err)
	}
}

func TestSystemInstructionIncludesKnowledge(t *testing.T) {
	f := newFixture(t, &fakeAI{reply: "ok"})
	send(t, f, "", "tell me about newton and gravity")
	instr := f.ai.requests[0].SystemInstruction
	if !strings.HasPrefix(instr, config.DefaultUI().SystemInstruction) || !strings.Contains(instr, knowledgeNote+"[Knowledge Base - ") {
		t.Fatalf("system instruction = %q", instr)
	}
}

func TestSpeak(t *testing.T) {
	f := newFixture(t, &fakeAI{})
	got, err := f.svc.Speak(context.Background(), "hello", "auto")
	if err != nil || got != "en:hello" {
		t.Fatalf("Speak() = %q, %v", got, err)
	}
	if _, err := f.svc.Speak(context.Background(), " ", "en"); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("Speak(empty) error = %v", err)
	}
}

// slowBackend 让每次读取都稍有延迟，放大并发读写之间的竞争窗口。
type slowBackend struct{ *kvstore.MemoryStore }

func (b slowBackend) Scope(owner string) kvstore.Store {
	return slowStore{b.MemoryStore.Scope(owner)}
}

type slowStore struct{ kvstore.Store }

func (s slowStore) Get(ctx context.Context, key string) (string, error) {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Get(ctx, key)
}

func TestListSessions_ConcurrentMigrationRunsOnce(t *testing.T) {
	ctx := context.Background()
	store := slowBackend{kvstore.NewMemoryStore(0)}
	keys := repository.Keys{}
	legacy, _ := model.EncodeMessages([]model.Message{{ID: "a", Text: "old question", Sender: model.SenderUser, Timestamp: time.Now()}})
	if err := store.Scope(student.ID).Set(ctx, keys.LegacyHistory(student.ID), legacy); err != nil {
		t.Fatalf("seed legacy history: %v", err)
	}

	var (
		idMu sync.Mutex
		n    int
	)
	newID := func() string {
		idMu.Lock()
		defer idMu.Unlock()
		n++
		return fmt.Sprintf("migrated-%d", n)
	}
	migrator := repository.NewLegacyMigrator(store, keys, "Previous Chat", newID, nil)
	sessions := repository.NewSessionRepository(store, keys, migrator, "New Chat", nil)
	messages := repository.NewMessageRepository(store, keys, sessions, "")
	prefs := repository.NewPreferenceRepository(store, keys)
	svc := NewSessionService(sessions, messages, prefs, &fakeAI{}, knowledge.Default(), nil, nil, config.DefaultUI())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.ListSessions(ctx, student, true)
		}()
	}
	wg.Wait()

	got := svc.ListSessions(ctx, student, true)
	if len(got) != 1 || got[0].Title != "Previous Chat" {
		t.Fatalf("sessions = %+v, want exactly one migrated session", got)
	}
}
