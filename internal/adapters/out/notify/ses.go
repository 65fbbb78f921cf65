package notify

import (
	"context"
	"fmt"
	"log/slog"

	"dispatch/internal/core/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

const channelEmail = "ses"

// EmailClient is the part of *sesv2.Client the sender uses.
type EmailClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// NewSESClient loads credentials from the default AWS chain.
func NewSESClient(ctx context.Context, region string) (*sesv2.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return sesv2.NewFromConfig(cfg), nil
}

// SESSender e-mails operators.
type SESSender struct {
	client    EmailClient
	fromEmail string
	logger    *slog.Logger
}

func NewSESSender(client EmailClient, fromEmail string, logger *slog.Logger) *SESSender {
	return &SESSender{
		client:    client,
		fromEmail: fromEmail,
		logger:    logger.With("component", "ses_sender"),
	}
}

func (s *SESSender) SendToOperator(ctx context.Context, op ports.Operator, msg ports.Message) error {
	body := renderPlainText(msg)
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{op.Email},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(msg.Title),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data:    aws.String(body),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return NewDeliveryError(channelEmail, op.ID, err)
	}

	s.logger.DebugContext(ctx, "e-mail sent", "operator_id", op.ID.String())
	return nil
}
