package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/terraincognita07/crewdesk/internal/config"
)

// Sender delivers one message. Implementations must honour ctx.
type Sender interface {
	Send(ctx context.Context, msg Message) error
	Close() error
}

// NewSender builds the transport selected by MAIL_TRANSPORT.
func NewSender(cfg config.MailConfig, logger *zap.Logger) (Sender, error) {
	switch cfg.Transport {
	case config.MailTransportResend:
		return NewResendSender(cfg.ResendBaseURL, cfg.ResendAPIKey), nil
	case config.MailTransportSMTP:
		return NewSMTPSender(SMTPOptions{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
		}), nil
	case config.MailTransportKafka:
		return NewKafkaSender(KafkaOptions{
			Broker:   cfg.KafkaBroker,
			Topic:    cfg.KafkaTopic,
			Username: cfg.KafkaUsername,
			Password: cfg.KafkaPassword,
		}), nil
	case config.MailTransportLog, "":
		return NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.Transport)
	}
}

type LogSender struct {
	logger *zap.Logger
}

// NewLogSender writes messages to the log instead of sending them. It is the
// default for local development.
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger.Named("mail")}
}

func (sender *LogSender) Send(_ context.Context, msg Message) error {
	sender.logger.Info("lead notification",
		zap.String("lead_id", msg.LeadID),
		zap.String("to", msg.To),
		zap.String("reply_to", msg.ReplyTo),
		zap.String("subject", msg.Subject),
	)
	return nil
}

func (sender *LogSender) Close() error { return nil }
