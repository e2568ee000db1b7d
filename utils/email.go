package utils

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/lahiruanushka/bookstore-api/config"
	"github.com/lahiruanushka/bookstore-api/models"
)

// EmailService sends transactional email over SMTP
type EmailService struct {
	dialer      *gomail.Dialer
	sender      string
	frontendURL string
}

// NewEmailService initializes and returns a new EmailService instance
func NewEmailService(cfg config.SMTPConfig, frontendURL string) *EmailService {
	return &EmailService{
		dialer:      gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		sender:      cfg.User,
		frontendURL: frontendURL,
	}
}

// VerifyConnection dials the SMTP server once so misconfigured credentials
// surface at startup instead of on the first registration.
func (es *EmailService) VerifyConnection() error {
	sc, err := es.dialer.Dial()
	if err != nil {
		return err
	}
	return sc.Close()
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", es.sender)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlContent)

	if err := es.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendVerificationEmail sends an email verification link to the user
func (es *EmailService) SendVerificationEmail(toEmail, token string) error {
	subject := "Verify Your Email"
	verificationLink := fmt.Sprintf("%s/verify-email/%s", es.frontendURL, token)
	htmlContent := fmt.Sprintf(
		"<strong>Please verify your email by clicking on the following link:</strong> <a href=\"%s\">Verify Email</a><br><br>The link expires in 24 hours.",
		verificationLink,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}

// SendPasswordResetEmail sends a password reset link to the user
func (es *EmailService) SendPasswordResetEmail(toEmail, token string) error {
	subject := "Reset Your Password"
	resetLink := fmt.Sprintf("%s/reset-password/%s", es.frontendURL, token)
	htmlContent := fmt.Sprintf(
		"<strong>We received a request to reset your password.</strong> <a href=\"%s\">Reset Password</a><br><br>The link expires in 1 hour. If you did not request this, you can ignore this email.",
		resetLink,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}

// SendOrderConfirmationEmail sends an order confirmation email to the user
func (es *EmailService) SendOrderConfirmationEmail(toEmail, name string, order models.Order) error {
	subject := "Order Confirmation"
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Thank you for your purchase! Your order (ID: %s) has been placed successfully.<br><br>Total Amount: <strong>$%.2f</strong><br><br>Thank you for shopping with us!",
		name,
		order.ID.Hex(),
		order.TotalAmount,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}
