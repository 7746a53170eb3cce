package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Message is one outbound email. Link, when set, is appended to the body so
// a payment request can carry its checkout URL.
type Message struct {
	To      string
	Subject string
	Body    string
	Link    string
}

// Result reports the dispatch outcome. Sample means nothing actually left
// the building: either no provider is configured or delivery failed and was
// downgraded, and the caller should label the result as demo data.
type Result struct {
	MessageID string `json:"message_id"`
	Sample    bool   `json:"sample,omitempty"`
}

// Mailer is the email collaborator. Fire-and-forget from the caller's view:
// Send never returns a hard failure for provider problems.
type Mailer interface {
	Send(ctx context.Context, msg Message) (Result, error)
}

// Config selects and configures the provider.
type Config struct {
	Region      string
	FromAddress string
}

// New returns a SESv2-backed mailer when configured, else the sample mailer.
func New(ctx context.Context, cfg Config, logger *zap.Logger) Mailer {
	if cfg.Region == "" || cfg.FromAddress == "" {
		logger.Warn("email provider not configured, using sample mailer")
		return &sampleMailer{logger: logger}
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		logger.Warn("failed to load AWS config for SES, using sample mailer", zap.Error(err))
		return &sampleMailer{logger: logger}
	}

	return &sesMailer{
		client: sesv2.NewFromConfig(awsCfg),
		from:   cfg.FromAddress,
		logger: logger,
	}
}

type sesMailer struct {
	client *sesv2.Client
	from   string
	logger *zap.Logger
}

func (m *sesMailer) Send(ctx context.Context, msg Message) (Result, error) {
	body := msg.Body
	if msg.Link != "" {
		body = fmt.Sprintf("%s\n\nPay securely here: %s", body, msg.Link)
	}

	out, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.from),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		// Delivery problems degrade to a sample result instead of failing
		// the payment-request operation that triggered the send.
		m.logger.Warn("SES send failed, downgrading to sample result",
			zap.String("to", msg.To), zap.Error(err))
		return Result{MessageID: "sample-" + uuid.NewString()[:8], Sample: true}, nil
	}

	return Result{MessageID: aws.ToString(out.MessageId)}, nil
}

type sampleMailer struct {
	logger *zap.Logger
}

func (m *sampleMailer) Send(ctx context.Context, msg Message) (Result, error) {
	m.logger.Info("sample mailer: email not actually sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return Result{MessageID: "sample-" + uuid.NewString()[:8], Sample: true}, nil
}
