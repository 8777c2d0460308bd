package todo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"log/slog"

	domainTodo "github.com/listwise/backend/internal/domain/todo"
	"github.com/listwise/backend/internal/infrastructure/config"
	"github.com/listwise/backend/internal/infrastructure/log"
	"github.com/listwise/backend/internal/infrastructure/openai"
)

// maxFeedbackLength 反馈文本的最大长度（字符数）
const maxFeedbackLength = 50

// systemDirective 解释器的固定系统指令
// 行为规则：优先把输入解释为清单变更命令（包括复合命令，且要穷尽执行）；
// 无法解释为命令时作为新待办追加；两者都不行时也要把原文追加为待办，
// 模型永远不应返回未变更且无解释的清单。模型被期望但不被保证遵守，
// 调用方必须对输出做严格校验
const systemDirective = `You are a helpful assistant designed to output JSON, specifically todo lists in JSON format.

You will always respond with JSON object containing a "list" property, and the "list" property contains the todo list.

All of the user commands will be about the todo list.

The value of the "list" property will be an array of JSON objects, each having a "title" property with a string value and a "completed" property with a boolean value.

Each user message will begin with the todo list as it exists prior to the user message.

You must interpret each user message strictly as one of two types:

1. A command to alter the list.
2. A todo item to add to the list.

If the user message is a command to alter the list, you should return the altered list based on the command. Always try to interpret the input as a command first.

If there is any way to interpret the input as a complex command to alter the list in ways beyond just adding an item, you should do so.

Always be exhaustive in carrying out commands.

If the user message is a todo item, you should add the todo item to the list and return the list.

You must never add additional keys to the todo items in the list, they must only be "title" and "completed".

You may receive multiple user messages, in which case the user messages represent the history of your conversation with the user, and the final user message is the command you are responding to.

You must also add a "feedback" key to your JSON response with an extremely brief summary of how you handled the request, eg., "added eggs".

Always do your best to process and respond to the user message. Be creative with the "title" field in the JSON object, you can put whatever you need to there to fulfill the request.

If there is absolutely no way to respond to the user message appropriately, add the input to the list as a todo item.

Any feedback for the user may be provided in the feedback key of the JSON response.

The feedback should be a string with a maximum length of 50 characters.`

// ChatClient 结构化输出的 chat completion 客户端
type ChatClient interface {
	ChatJSON(ctx context.Context, messages []openai.Message) (string, error)
}

// TokenCounter Token 估算器
type TokenCounter interface {
	CountTokens(text string) int
}

// Interpreter 指令解释器
// 无内部状态的转换器：输入历史轮次（快照 + 指令），输出整体替换清单和反馈。
// 模型输出视为不可信的外部边界，只接受 {list, feedback} 的精确形状
type Interpreter struct {
	chat   ChatClient
	tokens TokenCounter
	cfg    *config.Config
	logger *slog.Logger
}

// NewInterpreter 创建指令解释器
// TokenCounter 允许为 nil，此时退化为按字符估算（1 token ≈ 4 字符）
func NewInterpreter(chat ChatClient, tokens TokenCounter, cfg *config.Config) *Interpreter {
	return &Interpreter{
		chat:   chat,
		tokens: tokens,
		cfg:    cfg,
		logger: log.NewModuleLogger("todo", "interpreter"),
	}
}

// TurnContent 构造一轮的消息正文：指令前的清单 JSON 快照 + 空行 + 指令原文
func TurnContent(turn domainTodo.Turn) (string, error) {
	snapshot := turn.Snapshot
	if snapshot == nil {
		// 空清单必须序列化为 []，不能是 null
		snapshot = []domainTodo.SnapshotItem{}
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return fmt.Sprintf("%s\n\n%s", data, turn.Message), nil
}

// Interpret 解释最后一轮指令
// turns 至少包含一轮；前面的轮次是会话上下文，超出 token 预算时从最旧的
// 上下文轮次开始丢弃，最后一轮永不丢弃
func (i *Interpreter) Interpret(ctx context.Context, turns []domainTodo.Turn) (*domainTodo.Interpretation, error) {
	if len(turns) == 0 {
		return nil, fmt.Errorf("no turns to interpret")
	}

	contents := make([]string, 0, len(turns))
	for _, turn := range turns {
		content, err := TurnContent(turn)
		if err != nil {
			return nil, err
		}
		contents = append(contents, content)
	}

	contents = i.trimToBudget(contents)

	messages := make([]openai.Message, 0, len(contents)+1)
	messages = append(messages, openai.Message{Role: "system", Content: systemDirective})
	for _, content := range contents {
		messages = append(messages, openai.Message{Role: "user", Content: content})
	}

	raw, err := i.chat.ChatJSON(ctx, messages)
	if err != nil {
		return nil, err
	}

	interpretation, err := decodeInterpretation(raw)
	if err != nil {
		i.logger.Warn("Model returned unparseable output", "error", err)
		return nil, err
	}

	i.logger.Info("Instruction interpreted",
		"items", len(interpretation.List),
		"feedback", interpretation.Feedback,
	)
	return interpretation, nil
}

// trimToBudget 丢弃最旧的上下文轮次直到落入 token 预算
func (i *Interpreter) trimToBudget(contents []string) []string {
	budget := i.cfg.OpenAISnapshot().PromptTokenBudget
	if budget <= 0 {
		return contents
	}

	total := i.countTokens(systemDirective)
	for _, content := range contents {
		total += i.countTokens(content)
	}

	dropped := 0
	for total > budget && len(contents) > 1 {
		total -= i.countTokens(contents[0])
		contents = contents[1:]
		dropped++
	}
	if dropped > 0 {
		i.logger.Debug("Dropped history turns over token budget",
			"dropped", dropped,
			"budget", budget,
		)
	}
	return contents
}

// countTokens Token 估算，估算器不可用时按字符近似
func (i *Interpreter) countTokens(text string) int {
	if i.tokens != nil {
		return i.tokens.CountTokens(text)
	}
	return len(text) / 4
}

// decodeInterpretation 严格解析模型输出
// 只接受 {list: [{title, completed}...], feedback: string}；
// 任何未知字段、类型不符、缺失 list 都判为硬失败，绝不当作空清单处理
func decodeInterpretation(raw string) (*domainTodo.Interpretation, error) {
	// 先解析到带指针的中间结构以区分字段缺失和零值
	var envelope struct {
		List *[]struct {
			Title     *string `json:"title"`
			Completed *bool   `json:"completed"`
		} `json:"list"`
		Feedback *string `json:"feedback"`
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", domainTodo.ErrInvalidResponse, err)
	}
	// 响应之后不允许再有内容
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after response object", domainTodo.ErrInvalidResponse)
	}

	if envelope.List == nil {
		return nil, fmt.Errorf("%w: missing list", domainTodo.ErrInvalidResponse)
	}
	if envelope.Feedback == nil {
		return nil, fmt.Errorf("%w: missing feedback", domainTodo.ErrInvalidResponse)
	}

	items := make([]domainTodo.SnapshotItem, 0, len(*envelope.List))
	for idx, item := range *envelope.List {
		if item.Title == nil || item.Completed == nil {
			return nil, fmt.Errorf("%w: malformed item at index %d", domainTodo.ErrInvalidResponse, idx)
		}
		items = append(items, domainTodo.SnapshotItem{
			Title:     *item.Title,
			Completed: *item.Completed,
		})
	}

	feedback := *envelope.Feedback
	if runes := []rune(feedback); len(runes) > maxFeedbackLength {
		feedback = string(runes[:maxFeedbackLength])
	}

	return &domainTodo.Interpretation{
		List:     items,
		Feedback: feedback,
	}, nil
}
