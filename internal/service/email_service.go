package service

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"

	"vitrina-autos/internal/config"
)

type EmailService interface {
	SendPasswordResetEmail(ctx context.Context, toEmail, fullName, resetToken string) error
}

type emailService struct {
	client *resend.Client
	config *config.Config
}

func NewEmailService(cfg *config.Config) EmailService {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &emailService{
		client: client,
		config: cfg,
	}
}

func (s *emailService) SendPasswordResetEmail(ctx context.Context, toEmail, fullName, resetToken string) error {
	subject := "Password Reset Request - Vitrina Autos"
	resetLink := fmt.Sprintf("https://%s/reset-password?token=%s", s.config.Domain, resetToken)

	html := fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Password Reset - Vitrina Autos</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f9fafb;">

	<!-- Header -->
	<div style="background: linear-gradient(135deg, #1e3a5f 0%%, #0f2744 100%%); padding: 30px; text-align: center; border-radius: 10px 10px 0 0;">
		<h1 style="color: #ffffff; margin: 0; font-size: 28px;">
			Vitrina Autos
		</h1>
		<p style="color: #bcd2e8; margin: 10px 0 0 0; font-size: 16px;">
			Dealership Back Office
		</p>
	</div>

	<!-- Content -->
	<div style="background-color: #ffffff; padding: 30px; border: 1px solid #e5e7eb; border-top: none; border-radius: 0 0 10px 10px;">

		<h2 style="color: #111827; margin-top: 0;">
			Hi, %s!
		</h2>

		<p>
			We received a request to reset the password for your Vitrina Autos staff account.
		</p>

		<div style="background-color: #fffbeb; padding: 20px; border-radius: 8px; margin: 20px 0; border-left: 4px solid #f59e0b;">
			<h3 style="margin-top: 0; color: #92400e;">
				Reset Your Password
			</h3>
			<p style="margin-bottom: 0;">
				Click the button below to choose a new password.
				This link expires in <strong>1 hour</strong>.
			</p>
		</div>

		<!-- Button -->
		<div style="text-align: center; margin: 30px 0;">
			<a href="%s"
			   style="background-color: #f59e0b; color: #ffffff; padding: 14px 28px; text-decoration: none; border-radius: 6px; font-weight: bold; display: inline-block;">
				Reset My Password
			</a>
		</div>

		<!-- Fallback Link -->
		<p style="font-size: 14px; color: #6b7280;">
			If the button above does not work, copy and paste this link into your browser:
			<br>
			<a href="%s" style="color: #f59e0b; word-break: break-all;">
				%s
			</a>
		</p>

		<!-- Security Note -->
		<p style="font-size: 14px; color: #6b7280;">
			If you did not request a password reset, you can safely ignore this email.
			Never share the reset link with anyone.
		</p>

		<hr style="border: none; border-top: 1px solid #e5e7eb; margin: 30px 0;">

		<p style="font-size: 14px; color: #6b7280;">
			Regards,<br>
			<strong>The Vitrina Autos Team</strong>
		</p>
	</div>

</body>
</html>`, fullName, resetLink, resetLink, resetLink)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("Vitrina Autos <%s>", s.config.FromEmail),
		To:      []string{toEmail},
		Html:    html,
		Subject: subject,
	}

	_, err := s.client.Emails.Send(params)
	return err
}
