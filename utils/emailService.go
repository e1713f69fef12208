package utils

import (
	"fmt"
	"log"
	"net/http"

	"github.com/Umairanwarr/hadith-sub001/config"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// Generic Send Email. Without a SendGrid key the message is only logged.
func SendEmail(to []string, subject string, htmlBody string) error {
	cfg := config.Get()

	if cfg.SendGridAPIKey == "" {
		log.Printf("[EMAIL] (console) to=%v subject=%q", to, subject)
		return nil
	}

	p := sgmail.NewPersonalization()
	p.Subject = subject
	for _, addr := range to {
		p.AddTos(sgmail.NewEmail("", addr))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(cfg.EmailSenderName, cfg.EmailSender))
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/html", htmlBody))

	req := sendgrid.GetRequest(cfg.SendGridAPIKey, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.API(req)
	if err != nil {
		log.Printf("[EMAIL] send to %v failed: %v", to, err)
		return err
	}
	if res.StatusCode >= http.StatusBadRequest {
		log.Printf("[EMAIL] send to %v rejected: status=%d body=%s", to, res.StatusCode, res.Body)
		return fmt.Errorf("sendgrid status %d", res.StatusCode)
	}
	log.Printf("[EMAIL] sent %q to %v", subject, to)
	return nil
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: Georgia, 'Times New Roman', serif; background-color: #F7F3EA; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1F4E3D; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1F2A24; line-height: 1.6; }
			.footer { background-color: #F7F3EA; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
			.info-box { background: #FBF6E9; padding: 15px; border-radius: 4px; border-left: 4px solid #B8934A; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>HADITH UNIVERSITY</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; Hadith University. All rights reserved.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// --- Triggers ---

// Welcome / Signup
func SendWelcomeEmail(email, name string) {
	subject := "Welcome to Hadith University"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your student account has been created. You can now enroll in courses and start learning.</p>
	`, name)

	go SendEmail([]string{email}, subject, getEmailTemplate("Welcome!", body))
}

// Login notification
func SendLoginNotificationEmail(email, name, ip, device, timeStr string) {
	subject := "New login to your account"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>We noticed a new login to your account.</p>
		<div class="info-box">
			<strong>Time:</strong> %s<br>
			<strong>IP:</strong> %s<br>
			<strong>Device:</strong> %s
		</div>
		<p>If this was not you, please change your password.</p>
	`, name, timeStr, ip, device)

	go SendEmail([]string{email}, subject, getEmailTemplate("Login Alert", body))
}

// Course enrollment
func SendEnrollmentEmail(email, name, courseName string) {
	subject := "Enrolled: " + courseName
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You are now enrolled in <strong>%s</strong>. Complete every lesson to unlock the final exam.</p>
	`, name, courseName)

	go SendEmail([]string{email}, subject, getEmailTemplate("Enrollment Confirmed", body))
}

// Certificate issued. Called from a goroutine, so it sends synchronously.
func SendCertificateEmail(email, name, courseName, certificateNumber string) {
	subject := "Your certificate for " + courseName
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Congratulations on passing the final exam of <strong>%s</strong>.</p>
		<div class="info-box">
			<strong>Certificate number:</strong> %s
		</div>
		<p>You can download your certificate from your dashboard at any time.</p>
	`, name, courseName, certificateNumber)

	SendEmail([]string{email}, subject, getEmailTemplate("Certificate Issued", body))
}
