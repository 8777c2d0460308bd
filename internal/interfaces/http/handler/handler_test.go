package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	appTodo "github.com/listwise/backend/internal/application/todo"
	domainTodo "github.com/listwise/backend/internal/domain/todo"
	"github.com/listwise/backend/internal/infrastructure/config"
	"github.com/listwise/backend/internal/infrastructure/identity"
	"github.com/listwise/backend/internal/infrastructure/openai"
	"github.com/listwise/backend/internal/infrastructure/storage"
	"github.com/listwise/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubChat 返回预设文本的模型客户端
type stubChat struct {
	response string
}

func (s *stubChat) ChatJSON(ctx context.Context, messages []openai.Message) (string, error) {
	return s.response, nil
}

// testEnv 挂载全部路由的测试环境，存储为临时 SQLite
type testEnv struct {
	router   *gin.Engine
	verifier *identity.HMACVerifier
	chat     *stubChat
	todos    domainTodo.Repository
	lists    domainTodo.ListRepository
	blobs    storage.BlobStore
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := storage.OpenDB(&config.DatabaseConfig{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	todos := storage.NewTodoRepository(db)
	lists := storage.NewListRepository(db)
	users := storage.NewUserRepository(db)
	blobs := storage.NewBlobStore(db)

	cfg := &config.Config{OpenAI: config.OpenAIConfig{Moderation: false}}
	chat := &stubChat{response: `{"list": [], "feedback": "ok"}`}

	resolver := appTodo.NewAccessResolver(lists, todos, users)
	service := appTodo.NewService(todos, resolver, nil)
	listService := appTodo.NewListService(lists, users)
	interpreter := appTodo.NewInterpreter(chat, nil, cfg)
	orchestrator := appTodo.NewOrchestrator(todos, resolver, interpreter, nil, nil, nil, cfg)

	todoHandler := NewTodoHandler(service)
	listHandler := NewListHandler(listService)
	aiHandler := NewAIHandler(orchestrator)
	userHandler := NewUserHandler(listService)
	imageHandler := NewImageHandler(blobs)

	verifier := identity.NewHMACVerifier("test-secret")

	router := gin.New()
	api := router.Group("/api/v1", middleware.Identity(verifier))
	{
		api.POST("/users/sync", middleware.RequireSubject(), userHandler.Sync)
		api.POST("/lists", middleware.RequireSubject(), listHandler.Create)
		api.GET("/lists", middleware.RequireSubject(), listHandler.Mine)
		api.GET("/share/:shareId", listHandler.GetByShare)
		api.GET("/lists/:id/todos", todoHandler.List)
		api.POST("/lists/:id/todos", todoHandler.Add)
		api.POST("/lists/:id/todos/toggle-all", todoHandler.ToggleAll)
		api.DELETE("/lists/:id/todos/completed", todoHandler.ClearCompleted)
		api.PATCH("/todos/:id", todoHandler.Update)
		api.DELETE("/todos/:id", todoHandler.Delete)
		api.POST("/lists/:id/instruct", aiHandler.Instruct)
		api.GET("/images/:id", imageHandler.Get)
	}

	return &testEnv{
		router:   router,
		verifier: verifier,
		chat:     chat,
		todos:    todos,
		lists:    lists,
		blobs:    blobs,
	}
}

// do 发送请求，subject 非空时携带其签名令牌
func (e *testEnv) do(t *testing.T, method, path, subject string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if subject != "" {
		req.Header.Set("Authorization", "Bearer "+e.verifier.Sign(subject, time.Hour))
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// envelope 统一响应结构
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Detail  string          `json:"detail"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

// createList 通过 API 创建清单，返回 (listID, shareID)
func (e *testEnv) createList(t *testing.T, subject string) (string, string) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/lists", subject, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var dto ListDTO
	env := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &dto))
	return dto.ID, dto.ShareID
}

func TestUserSync(t *testing.T) {
	env := setupEnv(t)

	// 匿名调用被拒绝
	w := env.do(t, http.MethodPost, "/api/v1/users/sync", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/users/sync", "auth0|alice", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var dto UserDTO
	resp := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(resp.Data, &dto))
	assert.Equal(t, "auth0|alice", dto.Subject)
	assert.NotEmpty(t, dto.ID)
}

func TestListLifecycle(t *testing.T) {
	env := setupEnv(t)

	listID, shareID := env.createList(t, "auth0|alice")
	assert.NotEmpty(t, listID)
	assert.NotEmpty(t, shareID)

	// 我的清单包含分享令牌
	w := env.do(t, http.MethodGet, "/api/v1/lists", "auth0|alice", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var mine []ListDTO
	resp := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(resp.Data, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, shareID, mine[0].ShareID)

	// 凭令牌访问时响应不回显令牌
	w = env.do(t, http.MethodGet, "/api/v1/share/"+shareID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var shared ListDTO
	resp = decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(resp.Data, &shared))
	assert.Equal(t, listID, shared.ID)
	assert.Empty(t, shared.ShareID)

	// 错误令牌返回 404
	w = env.do(t, http.MethodGet, "/api/v1/share/wrong-token", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTodoEndpoints(t *testing.T) {
	env := setupEnv(t)
	listID, _ := env.createList(t, "auth0|alice")

	// 添加
	w := env.do(t, http.MethodPost, "/api/v1/lists/"+listID+"/todos", "auth0|alice",
		AddTodoRequest{Title: "buy milk"})
	require.Equal(t, http.StatusOK, w.Code)

	var added TodoDTO
	resp := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(resp.Data, &added))
	assert.Equal(t, "buy milk", added.Title)

	// 过短标题静默忽略，data 为空
	w = env.do(t, http.MethodPost, "/api/v1/lists/"+listID+"/todos", "auth0|alice",
		AddTodoRequest{Title: " x "})
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeEnvelope(t, w)
	assert.Empty(t, resp.Data)

	// 更新标题和完成状态
	completed := true
	title := "buy oat milk"
	w = env.do(t, http.MethodPatch, "/api/v1/todos/"+added.ID, "auth0|alice",
		UpdateTodoRequest{Completed: &completed, Title: &title})
	require.Equal(t, http.StatusOK, w.Code)

	var updated TodoDTO
	resp = decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(resp.Data, &updated))
	assert.True(t, updated.Completed)
	assert.Equal(t, "buy oat milk", updated.Title)

	// 两个字段都缺失是参数错误
	w = env.do(t, http.MethodPatch, "/api/v1/todos/"+added.ID, "auth0|alice",
		UpdateTodoRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 按完成状态过滤
	w = env.do(t, http.MethodGet, "/api/v1/lists/"+listID+"/todos?completed=true", "auth0|alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []TodoDTO
	resp = decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(resp.Data, &items))
	assert.Len(t, items, 1)

	// 非法过滤参数
	w = env.do(t, http.MethodGet, "/api/v1/lists/"+listID+"/todos?completed=maybe", "auth0|alice", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 清除已完成
	w = env.do(t, http.MethodDelete, "/api/v1/lists/"+listID+"/todos/completed", "auth0|alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeEnvelope(t, w)
	assert.JSONEq(t, `{"deleted": 1}`, string(resp.Data))
}

func TestTodoToggleAllAndDelete(t *testing.T) {
	env := setupEnv(t)
	listID, _ := env.createList(t, "auth0|alice")

	w := env.do(t, http.MethodPost, "/api/v1/lists/"+listID+"/todos", "auth0|alice",
		AddTodoRequest{Title: "task one"})
	require.Equal(t, http.StatusOK, w.Code)
	var item TodoDTO
	resp := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(resp.Data, &item))

	w = env.do(t, http.MethodPost, "/api/v1/lists/"+listID+"/todos/toggle-all", "auth0|alice",
		ToggleAllRequest{Completed: true})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodDelete, "/api/v1/todos/"+item.ID, "auth0|alice", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// 已删除的待办返回 404
	w = env.do(t, http.MethodDelete, "/api/v1/todos/"+item.ID, "auth0|alice", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTodoAccessDenied(t *testing.T) {
	env := setupEnv(t)
	listID, shareID := env.createList(t, "auth0|alice")

	// 陌生人无令牌被拒绝
	w := env.do(t, http.MethodGet, "/api/v1/lists/"+listID+"/todos", "auth0|mallory", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 匿名凭正确令牌放行
	w = env.do(t, http.MethodGet, "/api/v1/lists/"+listID+"/todos?share_id="+shareID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// 清单不存在返回 404
	w = env.do(t, http.MethodGet, "/api/v1/lists/not-exist/todos", "auth0|alice", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInstruct(t *testing.T) {
	env := setupEnv(t)
	listID, _ := env.createList(t, "auth0|alice")

	env.chat.response = `{"list": [{"title": "eggs", "completed": false}], "feedback": "added eggs"}`

	w := env.do(t, http.MethodPost, "/api/v1/lists/"+listID+"/instruct", "auth0|alice",
		InstructRequest{Message: "we need eggs"})
	require.Equal(t, http.StatusOK, w.Code)

	var result InstructResponse
	resp := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.True(t, result.Applied)
	assert.Equal(t, "added eggs", result.Feedback)
	require.Len(t, result.List, 1)
	assert.Equal(t, "eggs", result.List[0].Title)

	// 清单已被整体替换
	items, err := env.todos.FindByList(listID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "eggs", items[0].Title)
}

func TestInstruct_ShortMessageNotApplied(t *testing.T) {
	env := setupEnv(t)
	listID, _ := env.createList(t, "auth0|alice")

	w := env.do(t, http.MethodPost, "/api/v1/lists/"+listID+"/instruct", "auth0|alice",
		InstructRequest{Message: " x "})
	require.Equal(t, http.StatusOK, w.Code)

	var result InstructResponse
	resp := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.False(t, result.Applied)
	assert.Empty(t, result.List)
}

func TestInstruct_InvalidModelOutput(t *testing.T) {
	env := setupEnv(t)
	listID, _ := env.createList(t, "auth0|alice")

	env.chat.response = `this is not json`

	w := env.do(t, http.MethodPost, "/api/v1/lists/"+listID+"/instruct", "auth0|alice",
		InstructRequest{Message: "do something"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "502001")
}

func TestInstruct_Unauthorized(t *testing.T) {
	env := setupEnv(t)
	listID, _ := env.createList(t, "auth0|alice")

	w := env.do(t, http.MethodPost, "/api/v1/lists/"+listID+"/instruct", "auth0|mallory",
		InstructRequest{Message: "take over"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "403001")
}

func TestInstruct_MissingMessage(t *testing.T) {
	env := setupEnv(t)
	listID, _ := env.createList(t, "auth0|alice")

	w := env.do(t, http.MethodPost, "/api/v1/lists/"+listID+"/instruct", "auth0|alice",
		gin.H{"history": []any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImageGet(t *testing.T) {
	env := setupEnv(t)

	data := []byte("png bytes")
	id, err := env.blobs.Store("image/png", data)
	require.NoError(t, err)

	w := env.do(t, http.MethodGet, "/api/v1/images/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Cache-Control"), "immutable")
	assert.Equal(t, data, w.Body.Bytes())

	w = env.do(t, http.MethodGet, "/api/v1/images/not-exist", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
