package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jarvis-ai-be/internal/dto"
	"jarvis-ai-be/internal/pkg/serverutils"
	"jarvis-ai-be/pkg/assistant/engine"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "controller-test-secret"

func token(t *testing.T, userId uuid.UUID, role string, companyId float64) string {
	t.Helper()
	claims := jwt.MapClaims{"user_id": userId.String(), "role": role, "exp": time.Now().Add(time.Hour).Unix()}
	if companyId > 0 {
		claims["company_id"] = companyId
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

type fakeChatService struct {
	owner     uuid.UUID
	companyId int64
	sendErr   error
	lastState string
}

func (f *fakeChatService) owned(userId uuid.UUID) error {
	if userId != f.owner {
		return &dto.NotFoundError{Resource: "chat session"}
	}
	return nil
}

func (f *fakeChatService) CreateSession(ctx context.Context, userId uuid.UUID, companyId int64, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	f.companyId = companyId
	return &dto.SessionResponse{Id: uuid.New(), Name: req.Name, State: "active"}, nil
}

func (f *fakeChatService) ListSessions(ctx context.Context, userId uuid.UUID, state string) ([]*dto.SessionListItem, error) {
	f.lastState = state
	return []*dto.SessionListItem{}, nil
}

func (f *fakeChatService) ArchiveSession(ctx context.Context, userId, sessionId uuid.UUID) error {
	return f.owned(userId)
}

func (f *fakeChatService) RestoreSession(ctx context.Context, userId, sessionId uuid.UUID) error {
	return f.owned(userId)
}

func (f *fakeChatService) ClearSession(ctx context.Context, userId, sessionId uuid.UUID) error {
	return f.owned(userId)
}

func (f *fakeChatService) GetMessages(ctx context.Context, userId, sessionId uuid.UUID) (*dto.SessionMessagesResponse, error) {
	if err := f.owned(userId); err != nil {
		return nil, err
	}
	return &dto.SessionMessagesResponse{Messages: []dto.MessageResponse{}}, nil
}

func (f *fakeChatService) SendMessage(ctx context.Context, userId uuid.UUID, companyId int64, sessionId uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageReply, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &dto.MessageReply{Content: "Halo " + req.Message, ModelUsed: "gpt-3.5-turbo", TokenCount: 7, MessageId: "msg_x"}, nil
}

type fakeSettingsService struct {
	reloaded bool
}

func (f *fakeSettingsService) GetSettings(ctx context.Context, userId uuid.UUID, companyId int64) (*dto.SettingsResponse, error) {
	return &dto.SettingsResponse{DefaultModel: "gpt-3.5-turbo"}, nil
}

func (f *fakeSettingsService) UpdateSettings(ctx context.Context, userId uuid.UUID, companyId int64, req *dto.UpdateSettingsRequest) (*dto.SettingsResponse, error) {
	return &dto.SettingsResponse{DefaultModel: *req.DefaultModel}, nil
}

func (f *fakeSettingsService) ListConfigurations(ctx context.Context) ([]*dto.AiConfigurationResponse, error) {
	return []*dto.AiConfigurationResponse{}, nil
}

func (f *fakeSettingsService) UpdateConfiguration(ctx context.Context, key string, req dto.UpdateAiConfigurationRequest) (*dto.AiConfigurationResponse, error) {
	return &dto.AiConfigurationResponse{Key: key, Value: req.Value}, nil
}

func (f *fakeSettingsService) ReloadConfig(ctx context.Context) (*dto.ProviderConfigResponse, error) {
	f.reloaded = true
	return &dto.ProviderConfigResponse{Provider: "openai"}, nil
}

type fakeExportService struct{}

func (fakeExportService) ExportSession(ctx context.Context, userId, sessionId uuid.UUID, format string) (*dto.ExportFile, error) {
	return &dto.ExportFile{Filename: "chat_" + sessionId.String() + "_20250618_140509.md", ContentType: "text/markdown; charset=utf-8", Body: []byte("# Chat: x")}, nil
}

func newTestApp(t *testing.T, chat *fakeChatService, settings *fakeSettingsService) *fiber.App {
	t.Helper()
	t.Setenv("JWT_SECRET", testSecret)
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/web/ai")
	NewChatController(chat, 1).RegisterRoutes(api)
	NewSettingsController(settings, 1).RegisterRoutes(api)
	NewExportController(fakeExportService{}).RegisterRoutes(api)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, bearer, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(res.Body)
	out := map[string]interface{}{}
	_ = json.Unmarshal(raw, &out)
	return res, out
}

func TestRoutesRequireToken(t *testing.T) {
	app := newTestApp(t, &fakeChatService{}, &fakeSettingsService{})
	for _, path := range []string{"/web/ai/chat/list", "/web/ai/settings", "/web/ai/export/" + uuid.NewString()} {
		res, _ := do(t, app, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode, path)
	}
}

func TestChatRoutes(t *testing.T) {
	owner := uuid.New()
	chat := &fakeChatService{owner: owner}
	app := newTestApp(t, chat, &fakeSettingsService{})
	tok := token(t, owner, "user", 4)
	sessionPath := "/web/ai/chat/" + uuid.NewString()

	res, body := do(t, app, http.MethodPost, "/web/ai/chat/session", tok, `{"name":"Q2"}`)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, int64(4), chat.companyId)

	res, _ = do(t, app, http.MethodPost, "/web/ai/chat/session", token(t, owner, "user", 0), "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, int64(1), chat.companyId)

	res, _ = do(t, app, http.MethodGet, "/web/ai/chat/list?state=archived", tok, "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "archived", chat.lastState)

	for _, op := range []string{"archive", "restore", "clear"} {
		res, _ = do(t, app, http.MethodPost, sessionPath+"/"+op, tok, "")
		assert.Equal(t, http.StatusOK, res.StatusCode, op)

		res, _ = do(t, app, http.MethodPost, sessionPath+"/"+op, token(t, uuid.New(), "user", 4), "")
		assert.Equal(t, http.StatusNotFound, res.StatusCode, op)
	}

	res, _ = do(t, app, http.MethodGet, "/web/ai/chat/not-a-uuid/messages", tok, "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestSendMessageEnvelope(t *testing.T) {
	owner := uuid.New()
	tests := []struct {
		name       string
		sendErr    error
		body       string
		wantStatus int
		wantError  string
	}{
		{name: "success", body: `{"message":"pagi"}`, wantStatus: http.StatusOK},
		{name: "empty message", sendErr: engine.ErrEmptyMessage, body: `{"message":""}`, wantStatus: http.StatusBadRequest, wantError: "Message cannot be empty"},
		{name: "quota", sendErr: &dto.QuotaExceededError{Limit: 5, Used: 5, Model: "GPT-4"}, body: `{"message":"x","model":"gpt-4"}`, wantStatus: http.StatusTooManyRequests},
		{name: "bad query mode", body: `{"message":"x","query_mode":"weird"}`, wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, &fakeChatService{owner: owner, sendErr: tt.sendErr}, &fakeSettingsService{})
			res, body := do(t, app, http.MethodPost, "/web/ai/chat/"+uuid.NewString()+"/message", token(t, owner, "user", 1), tt.body)
			assert.Equal(t, tt.wantStatus, res.StatusCode)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, true, body["success"])
				reply := body["response"].(map[string]interface{})
				assert.Equal(t, "Halo pagi", reply["content"])
				assert.Equal(t, "msg_x", reply["message_id"])
				return
			}
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
			}
		})
	}
}

func TestSettingsAndConfigRoutes(t *testing.T) {
	settings := &fakeSettingsService{}
	app := newTestApp(t, &fakeChatService{}, settings)
	user := token(t, uuid.New(), "user", 1)
	admin := token(t, uuid.New(), "admin", 1)

	res, body := do(t, app, http.MethodPost, "/web/ai/settings", user, `{"default_model":"gpt-4o"}`)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "gpt-4o", body["data"].(map[string]interface{})["default_model"])

	res, _ = do(t, app, http.MethodPost, "/web/ai/config/reload", user, "")
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.False(t, settings.reloaded)

	res, _ = do(t, app, http.MethodPost, "/web/ai/config/reload", admin, "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, settings.reloaded)

	res, _ = do(t, app, http.MethodPut, "/web/ai/config/openai.model", admin, `{"value":""}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestExportDownload(t *testing.T) {
	app := newTestApp(t, &fakeChatService{}, &fakeSettingsService{})
	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/web/ai/export/"+id+"?format=markdown", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, uuid.New(), "user", 1))
	res, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "text/markdown; charset=utf-8", res.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="chat_`+id+`_20250618_140509.md"`, res.Header.Get("Content-Disposition"))
	raw, _ := io.ReadAll(res.Body)
	assert.Equal(t, "# Chat: x", string(raw))
}
