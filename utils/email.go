package utils

import (
	"fmt"
	"net/smtp"

	"hirevox/config"
)

// SendInterviewInvite emails the candidate their interview link using SMTP
func SendInterviewInvite(cfg *config.Config, email, interviewID, jobTitle string) error {
	auth := smtp.PlainAuth("", cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Host)
	to := []string{email}
	link := fmt.Sprintf("https://app.hirevox.io/interview/%s", interviewID)
	msg := []byte(fmt.Sprintf(
		"To: %s\r\n"+
			"From: %s <%s>\r\n"+
			"Subject: Your Interview Invitation - %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n"+
			"<p>You have been invited to an automated voice interview for the role of <strong>%s</strong>.</p>\r\n"+
			"<p>Join here when you are ready: <a href=\"%s\">%s</a></p>\r\n"+
			"<p>Use a quiet room and a working microphone. The session starts once you confirm your devices.</p>\r\n",
		email, cfg.SMTP.SenderName, cfg.SMTP.SenderEmail, jobTitle, jobTitle, link, link))

	addr := fmt.Sprintf("%s:%d", cfg.SMTP.Host, cfg.SMTP.Port)
	if err := smtp.SendMail(addr, auth, cfg.SMTP.SenderEmail, to, msg); err != nil {
		return fmt.Errorf("failed to send interview invite: %v", err)
	}
	return nil
}

// SendResultsReadyEmail notifies the employer that an interview has finished
func SendResultsReadyEmail(cfg *config.Config, email, interviewID, candidateEmail string) error {
	auth := smtp.PlainAuth("", cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Host)
	to := []string{email}
	link := fmt.Sprintf("https://app.hirevox.io/results/%s", interviewID)
	msg := []byte(fmt.Sprintf(
		"To: %s\r\n"+
			"From: %s <%s>\r\n"+
			"Subject: Interview Results Ready\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n"+
			"<p>The interview with <strong>%s</strong> has finished.</p>\r\n"+
			"<p>Review the transcript and scores: <a href=\"%s\">%s</a></p>\r\n",
		email, cfg.SMTP.SenderName, cfg.SMTP.SenderEmail, candidateEmail, link, link))

	addr := fmt.Sprintf("%s:%d", cfg.SMTP.Host, cfg.SMTP.Port)
	if err := smtp.SendMail(addr, auth, cfg.SMTP.SenderEmail, to, msg); err != nil {
		return fmt.Errorf("failed to send results email: %v", err)
	}
	return nil
}
