package forward

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized 提交者不在允许列表中
	ErrUnauthorized = errors.New("forward: submitter is not authorized")
	// ErrRateLimited 提交者仍处于冷却期
	ErrRateLimited = errors.New("forward: submitter is rate limited")
	// ErrMalformedConfirmation 无法解析的确认回调数据
	ErrMalformedConfirmation = errors.New("forward: malformed confirmation payload")
	// ErrPromptResolved 提示已被确认或取消
	ErrPromptResolved = errors.New("forward: prompt already resolved")
	// ErrPermanentForward 目标频道转发失败（不可重试或重试耗尽）
	ErrPermanentForward = errors.New("forward: destination failed permanently")
)

// ForwardError 单个目标频道的最终失败原因
type ForwardError struct {
	Destination string
	Attempts    int
	Err         error
}

func (e *ForwardError) Error() string {
	return fmt.Sprintf("forward to %s failed after %d attempt(s): %v", e.Destination, e.Attempts, e.Err)
}

// Unwrap 同时暴露 ErrPermanentForward 与底层错误
func (e *ForwardError) Unwrap() []error {
	return []error{ErrPermanentForward, e.Err}
}
