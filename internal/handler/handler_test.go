package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"eduassist-go/internal/config"
	"eduassist-go/internal/knowledge"
	"eduassist-go/internal/repository"
	"eduassist-go/internal/service"
	"eduassist-go/pkg/kvstore"
	"eduassist-go/pkg/llm"
	"eduassist-go/pkg/token"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := kvstore.NewMemoryStore(0)
	keys := repository.Keys{Prefix: "test:"}
	ui := config.DefaultUI()
	sessions := repository.NewSessionRepository(store, keys, nil, ui.NewChatTitle, nil)
	messages := repository.NewMessageRepository(store, keys, sessions, ui.MediaRemovedMarker)
	prefs := repository.NewPreferenceRepository(store, keys)
	jwtManager := token.NewJWTManager("test-secret", 1, 1)
	kb := knowledge.Default()

	sessionService := service.NewSessionService(sessions, messages, prefs, llm.NewMockClient(), kb, nil, nil, ui)
	preferenceService := service.NewPreferenceService(prefs)
	userService := service.NewUserService(repository.NewUserRepository(store, keys), jwtManager)

	r := gin.New()
	RegisterRoutes(r, jwtManager, Handlers{
		Auth:       NewAuthHandler(userService),
		Session:    NewSessionHandler(sessionService, preferenceService),
		Chat:       NewChatHandler(sessionService, jwtManager),
		Preference: NewPreferenceHandler(preferenceService, kb),
	})
	return r
}

func do(t *testing.T, r http.Handler, method, path, bearer string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode response %q: %v", method, path, w.Body.String(), err)
	}
	return w.Code, env
}

func login(t *testing.T, r http.Handler) (access, refresh string) {
	t.Helper()
	code, env := do(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{"method": "guest"})
	if code != http.StatusOK {
		t.Fatalf("login status = %d, body = %+v", code, env)
	}
	var res service.LoginResult
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return res.AccessToken, res.RefreshToken
}

func TestAuthRequired(t *testing.T) {
	r := newTestRouter(t)
	if code, _ := do(t, r, http.MethodGet, "/api/v1/sessions", "", nil); code != http.StatusUnauthorized {
		t.Fatalf("no token status = %d, want 401", code)
	}
	_, refresh := login(t, r)
	if code, _ := do(t, r, http.MethodGet, "/api/v1/sessions", refresh, nil); code != http.StatusUnauthorized {
		t.Fatalf("refresh token as bearer status = %d, want 401", code)
	}
}

func TestSessionFlow(t *testing.T) {
	r := newTestRouter(t)
	tok, _ := login(t, r)

	code, env := do(t, r, http.MethodGet, "/api/v1/me/bootstrap", tok, nil)
	if code != http.StatusOK {
		t.Fatalf("bootstrap status = %d", code)
	}
	var boot struct {
		Current  service.View `json:"current"`
		Sessions []struct {
			ID string `json:"id"`
		} `json:"sessions"`
	}
	if err := json.Unmarshal(env.Data, &boot); err != nil {
		t.Fatalf("decode bootstrap: %v", err)
	}
	if boot.Current.Title != "Guide" || len(boot.Sessions) != 1 {
		t.Fatalf("bootstrap = %+v", boot)
	}

	do(t, r, http.MethodPost, "/api/v1/sessions/new", tok, nil)
	code, env = do(t, r, http.MethodPost, "/api/v1/chat/messages", tok, gin.H{"text": "**Why** is the sky blue?"})
	if code != http.StatusOK {
		t.Fatalf("send status = %d, body = %+v", code, env)
	}
	var view service.View
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.Title != "Why is the sky blue?" || !strings.HasPrefix(view.Messages[len(view.Messages)-1].Text, "You asked:") {
		t.Fatalf("send view = %+v", view)
	}

	code, env = do(t, r, http.MethodGet, "/api/v1/sessions", tok, nil)
	var list []json.RawMessage
	if err := json.Unmarshal(env.Data, &list); err != nil || code != http.StatusOK || len(list) != 2 {
		t.Fatalf("list = %d %s", code, env.Data)
	}

	if code, _ := do(t, r, http.MethodPut, "/api/v1/sessions/"+view.SessionID+"/status", tok, gin.H{"status": "archived"}); code != http.StatusOK {
		t.Fatalf("archive status = %d", code)
	}
	code, env = do(t, r, http.MethodGet, "/api/v1/sessions?all=true", tok, nil)
	if err := json.Unmarshal(env.Data, &list); err != nil || len(list) != 2 {
		t.Fatalf("list all = %d %s", code, env.Data)
	}

	if code, _ := do(t, r, http.MethodDelete, "/api/v1/sessions/"+view.SessionID, tok, nil); code != http.StatusOK {
		t.Fatalf("delete status = %d", code)
	}
	if code, _ := do(t, r, http.MethodGet, "/api/v1/sessions/"+view.SessionID+"/messages", tok, nil); code != http.StatusNotFound {
		t.Fatalf("messages of deleted session status = %d, want 404", code)
	}
}

func TestValidationErrors(t *testing.T) {
	r := newTestRouter(t)
	tok, _ := login(t, r)

	if code, _ := do(t, r, http.MethodPost, "/api/v1/chat/messages", tok, gin.H{"text": " "}); code != http.StatusBadRequest {
		t.Fatalf("empty send status = %d, want 400", code)
	}
	if code, _ := do(t, r, http.MethodPut, "/api/v1/preferences/theme", tok, gin.H{"mode": "neon"}); code != http.StatusBadRequest {
		t.Fatalf("invalid theme status = %d, want 400", code)
	}
	if code, _ := do(t, r, http.MethodPut, "/api/v1/preferences/language", tok, gin.H{"language": "xx"}); code != http.StatusBadRequest {
		t.Fatalf("invalid language status = %d, want 400", code)
	}
	if code, _ := do(t, r, http.MethodPost, "/api/v1/sessions/nope/select", tok, nil); code != http.StatusNotFound {
		t.Fatalf("select unknown status = %d, want 404", code)
	}
	if code, _ := do(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{"method": "email", "email": "a@b.c", "password": "x"}); code != http.StatusUnauthorized {
		t.Fatalf("bad credentials status = %d, want 401", code)
	}
}

func TestPreferences(t *testing.T) {
	r := newTestRouter(t)
	tok, _ := login(t, r)

	_, env := do(t, r, http.MethodGet, "/api/v1/preferences/theme", tok, nil)
	if !strings.Contains(string(env.Data), `"mode":"dark"`) || !strings.Contains(string(env.Data), `"galaxyEnabled":true`) {
		t.Fatalf("default theme = %s", env.Data)
	}
	if code, _ := do(t, r, http.MethodPut, "/api/v1/preferences/language", tok, gin.H{"language": "hi"}); code != http.StatusOK {
		t.Fatalf("set language status = %d", code)
	}
	_, env = do(t, r, http.MethodGet, "/api/v1/preferences/language", tok, nil)
	if !strings.Contains(string(env.Data), `"hi"`) {
		t.Fatalf("language = %s", env.Data)
	}

	_, env = do(t, r, http.MethodGet, "/api/v1/knowledge?q=newton", tok, nil)
	if !strings.Contains(strings.ToLower(string(env.Data)), "newton") {
		t.Fatalf("knowledge search = %s", env.Data)
	}
}

func TestWebsocketStreamsReply(t *testing.T) {
	r := newTestRouter(t)
	tok, _ := login(t, r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/chat/" + tok
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(gin.H{"text": "hello there friend", "mode": "text"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	var chunks int
	for {
		var frame map[string]interface{}
		if err := conn.ReadJSON(&frame); err != nil {
			t.Fatalf("ReadJSON() error = %v", err)
		}
		switch frame["type"] {
		case "chunk":
			chunks++
		case "error":
			t.Fatalf("error frame = %v", frame)
		case "completion":
			if chunks == 0 || frame["sessionId"] == "" || frame["title"] != "hello there friend" {
				t.Fatalf("completion = %v after %d chunks", frame, chunks)
			}
			return
		}
	}
}

func TestWebsocketRejectsBadToken(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chat/not-a-token", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
