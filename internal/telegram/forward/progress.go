package forward

import (
	"context"
	"fmt"
	"strings"
)

// ProgressReporter 原地编辑同一条状态消息，展示进度与最终结果
type ProgressReporter struct {
	transport Transport
	ref       MessageRef
}

// NewProgressReporter ref.MessageID 为 0 时首次展示会发送新消息到 ref.ChatID
func NewProgressReporter(transport Transport, ref MessageRef) *ProgressReporter {
	return &ProgressReporter{transport: transport, ref: ref}
}

// Ref 当前状态消息
func (p *ProgressReporter) Ref() MessageRef {
	return p.ref
}

// Notice 替换状态消息文本
func (p *ProgressReporter) Notice(ctx context.Context, text string) error {
	return p.show(ctx, text)
}

// Start 初始化进度为 0%
func (p *ProgressReporter) Start(ctx context.Context, total int) error {
	return p.show(ctx, progressText(0, total))
}

// Report 第 completed 个目标频道处理完毕
func (p *ProgressReporter) Report(ctx context.Context, completed, total int) error {
	return p.show(ctx, progressText(completed, total))
}

// Finish 用最终汇总替换进度
func (p *ProgressReporter) Finish(ctx context.Context, summary Summary) error {
	return p.show(ctx, summary.Text())
}

func (p *ProgressReporter) show(ctx context.Context, text string) error {
	if p.ref.MessageID != 0 {
		if err := p.transport.EditText(ctx, p.ref, text); err != nil {
			return fmt.Errorf("failed to edit status message: %w", err)
		}
		return nil
	}

	ref, err := p.transport.SendText(ctx, OutgoingText{ChatID: p.ref.ChatID, Text: text})
	if err != nil {
		return fmt.Errorf("failed to send status message: %w", err)
	}
	p.ref = ref
	return nil
}

// progressPercent round(completed / total * 100)，半数向上取整
func progressPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return (completed*100 + total/2) / total
}

func progressText(completed, total int) string {
	return fmt.Sprintf("Forwarding message... %d%% (%d/%d)", progressPercent(completed, total), completed, total)
}

// Text 汇总文本：标题行，然后是成功列表与失败列表（为空则省略）
func (s Summary) Text() string {
	var text strings.Builder
	text.WriteString("Forwarding finished.")
	if len(s.Succeeded) > 0 {
		text.WriteString("\n✅ succeeded: ")
		text.WriteString(strings.Join(s.Succeeded, ", "))
	}
	if len(s.Failed) > 0 {
		text.WriteString("\n❌ failed: ")
		text.WriteString(strings.Join(s.Failed, ", "))
	}
	return text.String()
}
