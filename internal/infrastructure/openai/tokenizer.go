package openai

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// 在包初始化时设置离线加载器，避免运行期下载编码文件
func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// TokenEstimator 使用 tiktoken 估算文本的 Token 数量
type TokenEstimator struct {
	encoding *tiktoken.Tiktoken
	mu       sync.RWMutex
}

var (
	estimatorInstance *TokenEstimator
	estimatorOnce     sync.Once
	estimatorErr      error
)

// GetTokenEstimator 获取 TokenEstimator 单例
// 编码文件较大，进程内只加载一次
func GetTokenEstimator() (*TokenEstimator, error) {
	estimatorOnce.Do(func() {
		// cl100k_base 与 gpt-3.5 / gpt-4 系列模型兼容
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			estimatorErr = err
			return
		}
		estimatorInstance = &TokenEstimator{encoding: enc}
	})

	if estimatorErr != nil {
		return nil, estimatorErr
	}
	return estimatorInstance, nil
}

// CountTokens 计算文本的 Token 数量
func (e *TokenEstimator) CountTokens(text string) int {
	if text == "" {
		return 0
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.encoding.Encode(text, nil, nil))
}
