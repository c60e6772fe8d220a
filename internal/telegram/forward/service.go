package forward

import (
	"context"
	"fmt"
	"time"

	"relay_bot/internal/logger"
)

// 用户可见的文本
const (
	textUnauthorized = "You are not authorized to use this bot for forwarding messages."
	textRateLimited  = "You are sending messages too quickly. Please wait a moment before trying again."
	textPrompt       = "Do you want to forward this message?"
	textCancelled    = "Message forwarding cancelled."
	buttonYes        = "Yes"
	buttonNo         = "No"
)

// Service 转发确认流程：授权 → 限流 → 确认提示 → 确认/取消 → 执行转发
type Service struct {
	transport  Transport
	authorizer *Authorizer
	limiter    RateLimiter
	executor   *Executor
	claims     *promptClaims

	now   func() time.Time
	spawn func(func())
}

// NewService 创建转发服务实例
func NewService(transport Transport, authorizer *Authorizer, limiter RateLimiter, executor *Executor) *Service {
	return &Service{
		transport:  transport,
		authorizer: authorizer,
		limiter:    limiter,
		executor:   executor,
		claims:     newPromptClaims(),
		now:        time.Now,
		spawn:      func(f func()) { go f() },
	}
}

// HandleSubmission 处理用户提交的消息并发送确认提示
//
// 未授权返回 ErrUnauthorized，冷却期内返回 ErrRateLimited；两者都已回复用户且不修改任何状态。
func (s *Service) HandleSubmission(ctx context.Context, sub Submission) error {
	if !s.authorizer.IsAuthorized(sub.Submitter) {
		logger.L().Warnf("Unauthorized forward request: user=%d username=%q", sub.Submitter.UserID, sub.Submitter.Username)
		if err := s.reply(ctx, sub, textUnauthorized); err != nil {
			return err
		}
		return ErrUnauthorized
	}

	now := s.now()
	accepted, err := s.limiter.TryAccept(ctx, sub.Submitter.UserID, now)
	if err != nil {
		return fmt.Errorf("failed to check cooldown for user %d: %w", sub.Submitter.UserID, err)
	}
	if !accepted {
		logger.L().Infof("Forward request rate limited: user=%d", sub.Submitter.UserID)
		if err := s.reply(ctx, sub, textRateLimited); err != nil {
			return err
		}
		return ErrRateLimited
	}

	pending := PendingForward{
		SourceChatID:    sub.ChatID,
		SourceMessageID: sub.MessageID,
		RequestedBy:     sub.Submitter.UserID,
		CreatedAt:       now,
	}

	_, err = s.transport.SendText(ctx, OutgoingText{
		ChatID:  sub.ChatID,
		Text:    textPrompt,
		ReplyTo: sub.MessageID,
		Buttons: []Button{
			{Text: buttonYes, Data: ConfirmToken(pending.SourceChatID, pending.SourceMessageID).String()},
			{Text: buttonNo, Data: CancelToken().String()},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send confirmation prompt: %w", err)
	}

	logger.L().Infof("Forward confirmation requested: user=%d chat=%d message=%d kind=%s",
		pending.RequestedBy, pending.SourceChatID, pending.SourceMessageID, sub.Kind)
	return nil
}

// HandleCallback 处理确认/取消按钮
//
// 回调总是先被应答。确认后的转发在独立任务中执行，其错误只记录日志。
func (s *Service) HandleCallback(ctx context.Context, cb Callback) error {
	if err := s.transport.AnswerCallback(ctx, cb.ID); err != nil {
		return fmt.Errorf("failed to answer callback query: %w", err)
	}

	token, err := ParseToken(cb.Data)
	if err != nil {
		return err
	}

	if token.Kind == TokenCancel {
		if err := s.claimPrompt(cb, token); err != nil {
			return err
		}
		logger.L().Infof("User %d cancelled forward", cb.From.UserID)
		return NewProgressReporter(s.transport, s.statusRef(cb)).Notice(ctx, textCancelled)
	}

	// 只接受来自同一会话提示消息的确认
	if cb.Prompt.ChatID != 0 && cb.Prompt.ChatID != token.ChatID {
		return fmt.Errorf("%w: token chat %d does not match prompt chat %d",
			ErrMalformedConfirmation, token.ChatID, cb.Prompt.ChatID)
	}
	if !s.authorizer.IsAuthorized(cb.From) {
		logger.L().Warnf("Unauthorized confirmation: user=%d username=%q", cb.From.UserID, cb.From.Username)
		return ErrUnauthorized
	}
	if err := s.claimPrompt(cb, token); err != nil {
		return err
	}

	pending := PendingForward{
		SourceChatID:    token.ChatID,
		SourceMessageID: token.MessageID,
		RequestedBy:     cb.From.UserID,
		CreatedAt:       s.now(),
	}
	status := s.statusRef(cb)

	logger.L().Infof("User %d confirmed forward of chat=%d message=%d",
		pending.RequestedBy, pending.SourceChatID, pending.SourceMessageID)

	s.spawn(func() {
		if _, err := s.executor.Execute(ctx, pending, status); err != nil {
			logger.L().Errorf("Forward of chat=%d message=%d aborted: %v",
				pending.SourceChatID, pending.SourceMessageID, err)
		}
	})
	return nil
}

// claimPrompt 同一提示的重复点击（连点 Yes，或先 No 后 Yes）返回 ErrPromptResolved
func (s *Service) claimPrompt(cb Callback, token Token) error {
	key, ok := callbackPromptKey(cb, token)
	if !ok || s.claims.claim(key, s.now()) {
		return nil
	}
	return fmt.Errorf("%w: chat %d message %d", ErrPromptResolved, key.ref.ChatID, key.ref.MessageID)
}

// statusRef 提示消息不可编辑时，状态消息以新消息发送到原会话（未知时发给点击按钮的用户）
func (s *Service) statusRef(cb Callback) MessageRef {
	switch {
	case cb.Prompt.MessageID != 0:
		return cb.Prompt
	case cb.Prompt.ChatID != 0:
		return MessageRef{ChatID: cb.Prompt.ChatID}
	default:
		return MessageRef{ChatID: cb.From.UserID}
	}
}

func (s *Service) reply(ctx context.Context, sub Submission, text string) error {
	_, err := s.transport.SendText(ctx, OutgoingText{
		ChatID:  sub.ChatID,
		Text:    text,
		ReplyTo: sub.MessageID,
	})
	if err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}
