// Package ses provides email notification services via AWS SES
package ses

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	appConfig "scheme-recommendation-engine/internal/config"
	"scheme-recommendation-engine/internal/models"
	"scheme-recommendation-engine/internal/utils"
)

// Service handles SES email operations
type Service struct {
	client    *ses.Client
	fromEmail string
}

// EmailParams represents parameters for sending an email
type EmailParams struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
	ReplyTo  string
}

// DigestParams contains data for a matched-scheme digest email
type DigestParams struct {
	RecipientName  string
	RecipientEmail string
	MatchCount     int
	TopSchemes     []SchemeInfo
	PortalURL      string
}

// SchemeInfo contains info about a single matched scheme for email
type SchemeInfo struct {
	Name           string
	Ministry       string
	Origin         models.SchemeOrigin
	RelevanceScore float64
	Benefits       string
	ApplyLink      string
}

// SendEmailResult contains the result of sending an email
type SendEmailResult struct {
	MessageID string
	SentAt    time.Time
}

// NewService creates a new SES service
func NewService(ctx context.Context) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	appCfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}

	client := ses.NewFromConfig(cfg)

	return &Service{
		client:    client,
		fromEmail: appCfg.SESSenderEmail,
	}, nil
}

// SendEmail sends a basic email
func (s *Service) SendEmail(ctx context.Context, params EmailParams) (*SendEmailResult, error) {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{params.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(params.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}

	if params.HTMLBody != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(params.HTMLBody),
			Charset: aws.String("UTF-8"),
		}
	}

	if params.TextBody != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(params.TextBody),
			Charset: aws.String("UTF-8"),
		}
	}

	if params.ReplyTo != "" {
		input.ReplyToAddresses = []string{params.ReplyTo}
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		utils.Logger.Error("Failed to send email",
			zap.String("to", params.To),
			zap.String("subject", params.Subject),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	utils.Logger.Info("Email sent successfully",
		zap.String("to", params.To),
		zap.String("subject", params.Subject),
		zap.String("messageId", *result.MessageId),
	)

	return &SendEmailResult{
		MessageID: *result.MessageId,
		SentAt:    time.Now(),
	}, nil
}

// SendSchemeDigest sends a digest of a citizen's matched schemes
func (s *Service) SendSchemeDigest(ctx context.Context, params DigestParams) (*SendEmailResult, error) {
	htmlBody, err := s.renderDigestHTML(params)
	if err != nil {
		return nil, fmt.Errorf("failed to render email template: %w", err)
	}

	textBody := s.renderDigestText(params)

	subject := fmt.Sprintf("%s, you may be eligible for %d government schemes", params.RecipientName, params.MatchCount)

	return s.SendEmail(ctx, EmailParams{
		To:       params.RecipientEmail,
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	})
}

// BuildDigestParams creates digest params from a recommendation result
func BuildDigestParams(name, email string, result *models.RecommendationResult, portalURL string) DigestParams {
	topSchemes := make([]SchemeInfo, 0, len(result.Schemes))

	for _, scored := range result.Schemes {
		topSchemes = append(topSchemes, SchemeInfo{
			Name:           scored.Scheme.Name,
			Ministry:       scored.Scheme.Ministry,
			Origin:         scored.Origin,
			RelevanceScore: scored.RelevanceScore,
			Benefits:       scored.Scheme.Benefits,
			ApplyLink:      scored.Scheme.ApplyLink,
		})
	}

	return DigestParams{
		RecipientName:  name,
		RecipientEmail: email,
		MatchCount:     result.TotalMatches,
		TopSchemes:     topSchemes,
		PortalURL:      portalURL,
	}
}

// renderDigestHTML renders the HTML email template
func (s *Service) renderDigestHTML(params DigestParams) (string, error) {
	tmpl := `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: linear-gradient(135deg, #138808 0%, #0b5c05 100%); color: white; padding: 30px; border-radius: 10px 10px 0 0; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px; }
        .scheme-card { background: white; border-radius: 8px; padding: 20px; margin: 15px 0; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .scheme-card h3 { margin: 0 0 10px 0; color: #138808; }
        .scheme-card .ministry { color: #666; font-size: 14px; margin-bottom: 10px; }
        .scheme-card .benefits { margin: 10px 0; }
        .origin-badge { display: inline-block; background: #1a73e8; color: white; padding: 3px 10px; border-radius: 12px; font-size: 12px; text-transform: uppercase; }
        .score-badge { display: inline-block; background: #28a745; color: white; padding: 5px 12px; border-radius: 20px; font-weight: bold; }
        .cta-button { display: inline-block; background: #138808; color: white; padding: 15px 30px; text-decoration: none; border-radius: 8px; font-weight: bold; margin-top: 20px; }
        .footer { text-align: center; margin-top: 30px; color: #999; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Government Schemes For You</h1>
        <p>Hi {{.RecipientName}}, your profile matches {{.MatchCount}} schemes</p>
    </div>
    <div class="content">
        <p>Based on the details you shared, you may be eligible for the following schemes:</p>

        {{range .TopSchemes}}
        <div class="scheme-card">
            <h3>{{.Name}}</h3>
            <p class="ministry">{{.Ministry}} <span class="origin-badge">{{.Origin}}</span></p>
            <p class="benefits">{{.Benefits}}</p>
            <p><span class="score-badge">{{printf "%.0f" .RelevanceScore}}% match</span></p>
            {{if .ApplyLink}}<p><a href="{{.ApplyLink}}">Apply here</a></p>{{end}}
        </div>
        {{end}}

        {{if .PortalURL}}
        <div style="text-align: center;">
            <a href="{{.PortalURL}}" class="cta-button">View All Matches</a>
        </div>
        {{end}}
    </div>
    <div class="footer">
        <p>This email was sent by the Scheme Recommendation Service</p>
        <p>You received this because you submitted your profile for scheme matching.</p>
    </div>
</body>
</html>`

	t, err := template.New("scheme_digest").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, params); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// renderDigestText renders plain text version
func (s *Service) renderDigestText(params DigestParams) string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Hi %s,\n\n", params.RecipientName))
	buf.WriteString(fmt.Sprintf("Your profile matches %d government schemes.\n\n", params.MatchCount))
	buf.WriteString("Here are your top matches:\n\n")

	for i, scheme := range params.TopSchemes {
		buf.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, scheme.Name, scheme.Origin))
		if scheme.Ministry != "" {
			buf.WriteString(fmt.Sprintf("   Ministry: %s\n", scheme.Ministry))
		}
		if scheme.Benefits != "" {
			buf.WriteString(fmt.Sprintf("   Benefits: %s\n", scheme.Benefits))
		}
		buf.WriteString(fmt.Sprintf("   Match: %.0f%%\n", scheme.RelevanceScore))
		if scheme.ApplyLink != "" {
			buf.WriteString(fmt.Sprintf("   Apply: %s\n", scheme.ApplyLink))
		}
		buf.WriteString("\n")
	}

	if params.PortalURL != "" {
		buf.WriteString(fmt.Sprintf("View all matches: %s\n\n", params.PortalURL))
	}

	buf.WriteString("Best regards,\nScheme Recommendation Service\n")

	return buf.String()
}

// VerifyEmailAddress verifies an email address for sending
func (s *Service) VerifyEmailAddress(ctx context.Context, email string) error {
	input := &ses.VerifyEmailAddressInput{
		EmailAddress: aws.String(email),
	}

	_, err := s.client.VerifyEmailAddress(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to verify email: %w", err)
	}

	utils.Logger.Info("Email verification initiated", zap.String("email", email))
	return nil
}
