package service

import (
	"net/url"
	"time"

	"github.com/kitforge/backend/internal/model"
	"github.com/kitforge/backend/internal/template"
)

const (
	verificationSubject = "Verify your {{app.name}} account"
	verificationBody    = `Hi {{user.name}},

Please confirm {{user.email}} by opening the link below:

{{action.url}}

The link is valid for {{action.ttl}} (until {{action.expires_at}}).

{{app.name}}
`

	passwordResetSubject = "Reset your {{app.name}} password"
	passwordResetBody    = `Hi {{user.name}},

We received a request to reset the password for {{user.email}}.
Open the link below to choose a new password:

{{action.url}}

The link is valid for {{action.ttl}}. If you did not ask for this, ignore this email.

{{app.name}}
`
)

func (s *AuthService) verificationEmail(user *model.User, tok string, expiresAt time.Time) model.Email {
	link := s.opts.BaseURL + "/auth/verify-email/" + url.PathEscape(tok)
	return s.renderEmail(user, verificationSubject, verificationBody, link, expiresAt, VerificationTTL)
}

func (s *AuthService) passwordResetEmail(user *model.User, tok string, expiresAt time.Time) model.Email {
	link := s.opts.BaseURL + "/reset-password?token=" + url.QueryEscape(tok)
	return s.renderEmail(user, passwordResetSubject, passwordResetBody, link, expiresAt, PasswordResetTTL)
}

func (s *AuthService) renderEmail(user *model.User, subject, body, link string, expiresAt time.Time, ttl time.Duration) model.Email {
	app := template.AppData{Name: s.opts.AppName, URL: s.opts.BaseURL}
	recipient := template.UserDataFromModel(user)
	action := &template.ActionData{URL: link, ExpiresAt: expiresAt, TTL: ttl}

	return model.Email{
		To:      user.Email,
		Subject: template.RenderEmail(subject, app, nil, nil),
		Text:    template.RenderEmail(body, app, &recipient, action),
	}
}
