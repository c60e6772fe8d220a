package forward

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spyLimiter 记录调用次数
type spyLimiter struct {
	inner *MemoryRateLimiter
	calls int
	err   error
}

func (s *spyLimiter) TryAccept(ctx context.Context, userID int64, now time.Time) (bool, error) {
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	return s.inner.TryAccept(ctx, userID, now)
}

type serviceFixture struct {
	svc       *Service
	transport *fakeTransport
	limiter   *spyLimiter
	clock     time.Time
}

func newServiceFixture(t *testing.T, destinations ...string) *serviceFixture {
	t.Helper()

	f := &serviceFixture{
		transport: newFakeTransport(),
		limiter:   &spyLimiter{inner: NewMemoryRateLimiter(DefaultCooldown)},
		clock:     time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
	}
	executor, _ := newTestExecutor(f.transport, destinations, nil)
	f.svc = NewService(f.transport, NewAuthorizer([]string{"chicago311", "@Username2"}), f.limiter, executor)
	f.svc.now = func() time.Time { return f.clock }
	f.svc.spawn = func(fn func()) { fn() }
	return f
}

var (
	allowed  = Submitter{UserID: 42, Username: "chicago311"}
	stranger = Submitter{UserID: 99, Username: "mallory"}
)

func submission(from Submitter, kind ContentKind) Submission {
	return Submission{Submitter: from, ChatID: 555, MessageID: 12, Kind: kind}
}

func TestHandleSubmissionUnauthorized(t *testing.T) {
	for _, kind := range []ContentKind{KindText, KindPhoto, KindVideo, KindAudio} {
		t.Run(string(kind), func(t *testing.T) {
			f := newServiceFixture(t, "A")

			err := f.svc.HandleSubmission(context.Background(), submission(stranger, kind))
			require.ErrorIs(t, err, ErrUnauthorized)

			assert.Zero(t, f.limiter.calls, "unauthorized requests must not touch the cooldown")
			require.Len(t, f.transport.sent, 1)
			assert.Equal(t, textUnauthorized, f.transport.sent[0].Text)
			assert.Empty(t, f.transport.sent[0].Buttons, "no confirmation prompt")

			// 被拒绝的用户没有留下冷却记录
			ok, _ := f.limiter.inner.TryAccept(context.Background(), stranger.UserID, f.clock)
			assert.True(t, ok)
		})
	}
}

func TestHandleSubmissionUsernameWithoutHandle(t *testing.T) {
	f := newServiceFixture(t, "A")

	err := f.svc.HandleSubmission(context.Background(), submission(Submitter{UserID: 5}, KindText))
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestHandleSubmissionPrompt(t *testing.T) {
	f := newServiceFixture(t, "A")

	err := f.svc.HandleSubmission(context.Background(), submission(Submitter{UserID: 7, Username: "USERNAME2"}, KindPhoto))
	require.NoError(t, err)

	require.Len(t, f.transport.sent, 1)
	prompt := f.transport.sent[0]
	assert.Equal(t, textPrompt, prompt.Text)
	assert.Equal(t, int64(555), prompt.ChatID)
	assert.Equal(t, 12, prompt.ReplyTo)
	assert.Equal(t, []Button{
		{Text: "Yes", Data: "confirm_forward:555:12"},
		{Text: "No", Data: "cancel_forward"},
	}, prompt.Buttons)
	assert.Empty(t, f.transport.forwards, "nothing is forwarded before confirmation")
}

func TestHandleSubmissionCooldown(t *testing.T) {
	f := newServiceFixture(t, "A")
	ctx := context.Background()

	require.NoError(t, f.svc.HandleSubmission(ctx, submission(allowed, KindText)))

	f.clock = f.clock.Add(29 * time.Second)
	err := f.svc.HandleSubmission(ctx, submission(allowed, KindVideo))
	require.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, textRateLimited, f.transport.sent[len(f.transport.sent)-1].Text)

	f.clock = f.clock.Add(time.Second)
	require.NoError(t, f.svc.HandleSubmission(ctx, submission(allowed, KindAudio)))
	assert.Equal(t, textPrompt, f.transport.sent[len(f.transport.sent)-1].Text)
}

func TestHandleSubmissionLimiterError(t *testing.T) {
	f := newServiceFixture(t, "A")
	f.limiter.err = errors.New("redis unavailable")

	err := f.svc.HandleSubmission(context.Background(), submission(allowed, KindText))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRateLimited)
	assert.Empty(t, f.transport.sent)
}

func promptCallback(data string) Callback {
	return Callback{
		ID:     "cb-1",
		From:   allowed,
		Data:   data,
		Prompt: MessageRef{ChatID: 555, MessageID: 13},
	}
}

func TestHandleCallbackCancel(t *testing.T) {
	f := newServiceFixture(t, "A", "B")

	err := f.svc.HandleCallback(context.Background(), promptCallback("cancel_forward"))
	require.NoError(t, err)

	assert.Equal(t, []string{"cb-1"}, f.transport.answered)
	assert.Equal(t, []string{textCancelled}, f.transport.edits)
	assert.Equal(t, []MessageRef{{ChatID: 555, MessageID: 13}}, f.transport.editRefs)
	assert.Empty(t, f.transport.forwards)
}

func TestHandleCallbackMalformed(t *testing.T) {
	for _, data := range []string{"confirm_forward:555", "confirm_forward:x:y", "garbage"} {
		t.Run(data, func(t *testing.T) {
			f := newServiceFixture(t, "A")

			err := f.svc.HandleCallback(context.Background(), promptCallback(data))
			require.ErrorIs(t, err, ErrMalformedConfirmation)

			assert.Equal(t, []string{"cb-1"}, f.transport.answered, "callback is still acknowledged")
			assert.Empty(t, f.transport.forwards)
			assert.Empty(t, f.transport.edits)
			assert.Empty(t, f.transport.sent)
		})
	}
}

func TestHandleCallbackConfirm(t *testing.T) {
	f := newServiceFixture(t, "A", "B", "C")

	err := f.svc.HandleCallback(context.Background(), promptCallback("confirm_forward:555:12"))
	require.NoError(t, err)

	require.Len(t, f.transport.forwards, 3)
	for i, dest := range []string{"A", "B", "C"} {
		assert.Equal(t, forwardCall{destination: dest, fromChatID: 555, messageID: 12}, f.transport.forwards[i])
	}
	assert.Equal(t, "Forwarding message in 30 seconds...", f.transport.edits[0])
	assert.Equal(t, "Forwarding finished.\n✅ succeeded: A, B, C", f.transport.edits[len(f.transport.edits)-1])
	for _, ref := range f.transport.editRefs {
		assert.Equal(t, MessageRef{ChatID: 555, MessageID: 13}, ref)
	}
}

func TestHandleCallbackConfirmFromOtherThread(t *testing.T) {
	f := newServiceFixture(t, "A")

	cb := promptCallback("confirm_forward:555:12")
	cb.Prompt.ChatID = 777

	err := f.svc.HandleCallback(context.Background(), cb)
	require.ErrorIs(t, err, ErrMalformedConfirmation)
	assert.Empty(t, f.transport.forwards)
}

func TestHandleCallbackConfirmByUnauthorizedUser(t *testing.T) {
	f := newServiceFixture(t, "A")

	cb := promptCallback("confirm_forward:555:12")
	cb.From = stranger

	err := f.svc.HandleCallback(context.Background(), cb)
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, f.transport.forwards)
	assert.Empty(t, f.transport.edits)
}

func TestHandleCallbackInaccessiblePrompt(t *testing.T) {
	f := newServiceFixture(t, "A")

	cb := promptCallback("confirm_forward:555:12")
	cb.Prompt = MessageRef{}

	require.NoError(t, f.svc.HandleCallback(context.Background(), cb))
	require.Len(t, f.transport.sent, 1)
	assert.Equal(t, allowed.UserID, f.transport.sent[0].ChatID)
	assert.Equal(t, 1, f.transport.forwardsTo("A"))
}

func TestHandleCallbackAnswerFailure(t *testing.T) {
	f := newServiceFixture(t, "A")
	f.transport.answerErr = errors.New("query is too old")

	err := f.svc.HandleCallback(context.Background(), promptCallback("confirm_forward:555:12"))
	require.Error(t, err)
	assert.Empty(t, f.transport.forwards)
}

func TestHandleCallbackExecutionErrorIsContained(t *testing.T) {
	f := newServiceFixture(t, "A")
	f.transport.editErr = errors.New("message can't be edited")

	err := f.svc.HandleCallback(context.Background(), promptCallback("confirm_forward:555:12"))
	require.NoError(t, err, "executor failures are logged by the spawned task")
	assert.Empty(t, f.transport.forwards)
}

func TestHandleCallbackRepeatedConfirmForwardsOnce(t *testing.T) {
	f := newServiceFixture(t, "A", "B")
	ctx := context.Background()

	require.NoError(t, f.svc.HandleCallback(ctx, promptCallback("confirm_forward:555:12")))
	err := f.svc.HandleCallback(ctx, promptCallback("confirm_forward:555:12"))
	require.ErrorIs(t, err, ErrPromptResolved)

	assert.Equal(t, 1, f.transport.forwardsTo("A"))
	assert.Equal(t, 1, f.transport.forwardsTo("B"))
	assert.Equal(t, []string{"cb-1", "cb-1"}, f.transport.answered, "every tap is acknowledged")
}

func TestHandleCallbackConfirmAfterCancel(t *testing.T) {
	f := newServiceFixture(t, "A")
	ctx := context.Background()

	require.NoError(t, f.svc.HandleCallback(ctx, promptCallback("cancel_forward")))
	err := f.svc.HandleCallback(ctx, promptCallback("confirm_forward:555:12"))
	require.ErrorIs(t, err, ErrPromptResolved)

	assert.Empty(t, f.transport.forwards)
	assert.Equal(t, []string{textCancelled}, f.transport.edits)
}

func TestHandleCallbackRepeatedConfirmInaccessiblePrompt(t *testing.T) {
	f := newServiceFixture(t, "A")
	ctx := context.Background()

	cb := promptCallback("confirm_forward:555:12")
	cb.Prompt = MessageRef{}

	require.NoError(t, f.svc.HandleCallback(ctx, cb))
	require.ErrorIs(t, f.svc.HandleCallback(ctx, cb), ErrPromptResolved)
	assert.Equal(t, 1, f.transport.forwardsTo("A"))
}

func TestHandleCallbackUnauthorizedTapDoesNotResolvePrompt(t *testing.T) {
	f := newServiceFixture(t, "A")
	ctx := context.Background()

	cb := promptCallback("confirm_forward:555:12")
	cb.From = stranger
	require.ErrorIs(t, f.svc.HandleCallback(ctx, cb), ErrUnauthorized)

	require.NoError(t, f.svc.HandleCallback(ctx, promptCallback("confirm_forward:555:12")))
	assert.Equal(t, 1, f.transport.forwardsTo("A"))
}

func TestPromptClaimsExpire(t *testing.T) {
	claims := newPromptClaims()
	key := promptKey{ref: MessageRef{ChatID: 555, MessageID: 13}}
	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	assert.True(t, claims.claim(key, start))
	assert.False(t, claims.claim(key, start.Add(promptClaimRetention-time.Second)))
	assert.True(t, claims.claim(key, start.Add(promptClaimRetention)))
}
