package todo

import (
	"context"
	"sort"

	"log/slog"

	domainTodo "github.com/listwise/backend/internal/domain/todo"
	"github.com/listwise/backend/internal/infrastructure/config"
	"github.com/listwise/backend/internal/infrastructure/log"
	"github.com/listwise/backend/internal/infrastructure/openai"
	"github.com/listwise/backend/internal/infrastructure/websocket"
)

// Moderator 内容审核客户端
type Moderator interface {
	Moderate(ctx context.Context, input string) (*openai.ModerationResult, error)
}

// Orchestrator 清单变更编排器
// 指令处理主路径：校验输入 → 解析权限 → 读取当前清单 → 审核 →
// 解释 → 校验响应 → 原子替换 → 调度后台副作用。
// 每一步都是下一步的硬性前置；替换之前的任何失败都不触碰存储
type Orchestrator struct {
	todos       domainTodo.Repository
	access      *AccessResolver
	interpreter *Interpreter
	moderator   Moderator
	images      *ImageService
	hub         *websocket.Hub
	cfg         *config.Config
	logger      *slog.Logger
}

// NewOrchestrator 创建清单变更编排器
func NewOrchestrator(
	todos domainTodo.Repository,
	access *AccessResolver,
	interpreter *Interpreter,
	moderator Moderator,
	images *ImageService,
	hub *websocket.Hub,
	cfg *config.Config,
) *Orchestrator {
	return &Orchestrator{
		todos:       todos,
		access:      access,
		interpreter: interpreter,
		moderator:   moderator,
		images:      images,
		hub:         hub,
		cfg:         cfg,
		logger:      log.NewModuleLogger("todo", "orchestrator"),
	}
}

// ApplyInstruction 处理一条自然语言指令
// 输入过短时静默返回 (nil, nil)，不发生任何存储读写。
// history 为同一会话中之前的轮次（可为空）。
// 成功时返回已落库的解释结果
func (o *Orchestrator) ApplyInstruction(
	ctx context.Context,
	subject, listID, shareID, rawMessage string,
	history []domainTodo.Turn,
) (*domainTodo.Interpretation, error) {
	message, ok := ParseInput(rawMessage)
	if !ok {
		o.logger.Debug("Instruction too short, ignored")
		return nil, nil
	}

	list, err := o.access.ResolveList(subject, listID, shareID)
	if err != nil {
		return nil, err
	}

	items, err := o.todos.FindByList(list.ID)
	if err != nil {
		return nil, err
	}
	snapshot := domainTodo.Snapshot(items)

	turn := domainTodo.Turn{Snapshot: snapshot, Message: message}

	if o.moderationEnabled() {
		if err := o.screen(ctx, turn); err != nil {
			return nil, err
		}
	}

	turns := append(append([]domainTodo.Turn{}, history...), turn)
	interpretation, err := o.interpreter.Interpret(ctx, turns)
	if err != nil {
		return nil, err
	}

	if err := o.todos.ReplaceAll(list.ID, interpretation.List); err != nil {
		return nil, err
	}

	o.logger.Info("Instruction applied",
		"list_id", list.ID,
		"items", len(interpretation.List),
	)

	// 后台副作用与调用方的完成解耦：调度后立即返回，失败只记录日志
	o.scheduleBackgroundImage(list.ID, interpretation.List)
	o.notify(list.ID, interpretation.Feedback)

	return interpretation, nil
}

// moderationEnabled 审核开关（部署变体 + 客户端可用性）
func (o *Orchestrator) moderationEnabled() bool {
	return o.moderator != nil && o.cfg.OpenAISnapshot().Moderation
}

// screen 审核组合载荷（快照 + 指令），命中时携带违规分类中止
// 单独审核指令是不够的：恶意内容可能藏在清单里
func (o *Orchestrator) screen(ctx context.Context, turn domainTodo.Turn) error {
	combined, err := TurnContent(turn)
	if err != nil {
		return err
	}

	result, err := o.moderator.Moderate(ctx, combined)
	if err != nil {
		return err
	}
	if !result.Flagged {
		return nil
	}

	var categories []string
	for name, hit := range result.Categories {
		if hit {
			categories = append(categories, name)
		}
	}
	sort.Strings(categories)
	return &domainTodo.FlaggedError{Categories: categories}
}

// scheduleBackgroundImage 调度背景图重新生成（fire-and-forget）
func (o *Orchestrator) scheduleBackgroundImage(listID string, items []domainTodo.SnapshotItem) {
	if o.images == nil {
		return
	}
	go func() {
		// 与触发请求的生命周期脱钩，使用独立 context
		if err := o.images.Regenerate(context.Background(), listID, items); err != nil {
			o.logger.Warn("Background image regeneration failed",
				"list_id", listID,
				"error", err,
			)
		}
	}()
}

// notify 向订阅该清单的客户端推送变更事件
func (o *Orchestrator) notify(listID, feedback string) {
	if o.hub == nil {
		return
	}
	if err := o.hub.BroadcastToList(listID, &websocket.ListEvent{
		Type:     "list.updated",
		ListID:   listID,
		Feedback: feedback,
	}); err != nil {
		o.logger.Warn("Failed to broadcast list update", "error", err)
	}
}
