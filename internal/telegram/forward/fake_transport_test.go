package forward

import (
	"context"
	"sync"
	"time"
)

// fakeTransport 记录所有调用，转发结果按目标频道脚本化
type fakeTransport struct {
	mu sync.Mutex

	sent     []OutgoingText
	edits    []string
	editRefs []MessageRef
	answered []string
	forwards []forwardCall

	// 每个目标频道依次返回的错误，耗尽后返回 nil
	forwardErrs map[string][]error
	editErr     error
	sendErr     error
	answerErr   error
	nextMsgID   int
}

type forwardCall struct {
	destination string
	fromChatID  int64
	messageID   int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{forwardErrs: map[string][]error{}, nextMsgID: 1000}
}

func (f *fakeTransport) SendText(_ context.Context, msg OutgoingText) (MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return MessageRef{}, f.sendErr
	}
	f.sent = append(f.sent, msg)
	f.nextMsgID++
	return MessageRef{ChatID: msg.ChatID, MessageID: f.nextMsgID}, nil
}

func (f *fakeTransport) EditText(_ context.Context, ref MessageRef, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return f.editErr
	}
	f.edits = append(f.edits, text)
	f.editRefs = append(f.editRefs, ref)
	return nil
}

func (f *fakeTransport) ForwardMessage(_ context.Context, destination string, fromChatID int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forwards = append(f.forwards, forwardCall{destination: destination, fromChatID: fromChatID, messageID: messageID})
	errs := f.forwardErrs[destination]
	if len(errs) == 0 {
		return nil
	}
	f.forwardErrs[destination] = errs[1:]
	return errs[0]
}

func (f *fakeTransport) AnswerCallback(_ context.Context, callbackID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.answerErr != nil {
		return f.answerErr
	}
	f.answered = append(f.answered, callbackID)
	return nil
}

func (f *fakeTransport) forwardsTo(destination string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, call := range f.forwards {
		if call.destination == destination {
			n++
		}
	}
	return n
}

// sleepRecorder 代替真实等待
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return ctx.Err()
}
