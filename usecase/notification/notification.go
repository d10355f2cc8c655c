package notification

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/usecase"
)

const (
	DefaultBotName = "TodoBot"
	DefaultIcon    = ":calendar:"

	digestHeader = "📅 *Tasks due tomorrow!*"
	digestFooter = "Don't forget to get them done! 💪"
	testMessage  = "🧪 Test notification: todo reminders are working!"
	dueLayout    = "01/02"
)

// Payload is the JSON body posted to the webhook.
type Payload struct {
	Text      string `json:"text"`
	Username  string `json:"username"`
	IconEmoji string `json:"icon_emoji"`
}

// Sender delivers a payload to the webhook endpoint.
type Sender interface {
	Send(ctx context.Context, payload Payload) error
}

type Options struct {
	BotName string
	Icon    string
}

// Service formats task digests and dispatches them through a Sender.
type Service struct {
	sender Sender
	opts   Options
	logger *zap.Logger
}

var _ usecase.Notifier = (*Service)(nil)

func New(sender Sender, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.BotName == "" {
		opts.BotName = DefaultBotName
	}
	if opts.Icon == "" {
		opts.Icon = DefaultIcon
	}
	return &Service{sender: sender, opts: opts, logger: logger}
}

func (s *Service) Enabled() bool { return true }

// SendDueTomorrowDigest posts one message listing every task. An empty list sends nothing.
func (s *Service) SendDueTomorrowDigest(ctx context.Context, tasks []domain.Task) {
	if len(tasks) == 0 {
		return
	}
	if err := s.dispatch(ctx, FormatDigest(tasks)); err != nil {
		s.logger.Error("failed to send due-tomorrow digest", zap.Int("tasks", len(tasks)), zap.Error(err))
		return
	}
	s.logger.Info("due-tomorrow digest sent", zap.Int("tasks", len(tasks)))
}

func (s *Service) SendTest(ctx context.Context) {
	if err := s.dispatch(ctx, testMessage); err != nil {
		s.logger.Error("failed to send test notification", zap.Error(err))
		return
	}
	s.logger.Info("test notification sent")
}

func (s *Service) dispatch(ctx context.Context, text string) error {
	return s.sender.Send(ctx, Payload{
		Text:      text,
		Username:  s.opts.BotName,
		IconEmoji: s.opts.Icon,
	})
}

// FormatDigest renders the digest body: one bullet per task with owner and due date.
func FormatDigest(tasks []domain.Task) string {
	var b strings.Builder
	b.WriteString(digestHeader)
	b.WriteString("\n\n")
	for _, task := range tasks {
		b.WriteString("• ")
		b.WriteString(task.Text)
		b.WriteString(" (user: ")
		b.WriteString(task.OwnerUsername)
		b.WriteString(")")
		if task.DueDate != nil {
			b.WriteString(" - due: ")
			b.WriteString(task.DueDate.Format(dueLayout))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(digestFooter)
	return b.String()
}

// Nop is the Notifier used when notifications are switched off.
type Nop struct{}

var _ usecase.Notifier = Nop{}

func (Nop) Enabled() bool                                        { return false }
func (Nop) SendDueTomorrowDigest(context.Context, []domain.Task) {}
func (Nop) SendTest(context.Context)                             {}
