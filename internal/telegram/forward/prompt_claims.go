package forward

import (
	"sync"
	"time"
)

// promptClaimRetention 已处理的提示保留多久；超过后按钮早已被编辑移除
const promptClaimRetention = 10 * time.Minute

type promptKey struct {
	ref    MessageRef
	source bool // 提示消息不可访问时按源消息去重
}

// promptClaims 记录已被确认或取消的提示，同一提示只处理一次
type promptClaims struct {
	mu   sync.Mutex
	seen map[promptKey]time.Time
}

func newPromptClaims() *promptClaims {
	return &promptClaims{seen: make(map[promptKey]time.Time)}
}

// claim 首次调用返回 true，保留期内的重复调用返回 false
func (c *promptClaims) claim(key promptKey, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, at := range c.seen {
		if now.Sub(at) >= promptClaimRetention {
			delete(c.seen, k)
		}
	}

	if _, ok := c.seen[key]; ok {
		return false
	}
	c.seen[key] = now
	return true
}

// callbackPromptKey 优先使用提示消息本身；不可访问时确认按钮以源消息为键，取消按钮无键
func callbackPromptKey(cb Callback, token Token) (promptKey, bool) {
	if cb.Prompt.MessageID != 0 {
		return promptKey{ref: cb.Prompt}, true
	}
	if token.Kind == TokenConfirm {
		return promptKey{ref: MessageRef{ChatID: token.ChatID, MessageID: token.MessageID}, source: true}, true
	}
	return promptKey{}, false
}
