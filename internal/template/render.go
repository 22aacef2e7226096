// Package template renders the {{...}} placeholders used by transactional email
// bodies and by the project scaffolder.
//
// Supported variables:
//
//	{{app.name}}, {{app.url}}
//	{{user.name}}, {{user.email}}
//	{{action.url}}, {{action.expires_at}}, {{action.ttl}}
//
//	{{project.name}}, {{project.module}}, {{project.go_version}}
package template

import (
	"strconv"
	"strings"
	"time"

	"github.com/kitforge/backend/internal/model"
)

type AppData struct {
	Name string
	URL  string
}

type UserData struct {
	Name  string
	Email string
}

// ActionData describes the link the recipient must follow (verify, reset).
type ActionData struct {
	URL       string
	ExpiresAt time.Time
	TTL       time.Duration
}

type ProjectData struct {
	Name      string
	Module    string
	GoVersion string
}

// UserDataFromModel greets by first name, falling back to username and then the email local part.
func UserDataFromModel(u *model.User) UserData {
	name := ""
	switch {
	case u.FirstName != nil && strings.TrimSpace(*u.FirstName) != "":
		name = strings.TrimSpace(*u.FirstName)
	case u.Username != nil && *u.Username != "":
		name = *u.Username
	default:
		name, _, _ = strings.Cut(u.Email, "@")
	}
	return UserData{Name: name, Email: u.Email}
}

// RenderEmail replaces app, user and action variables. A nil user or action
// renders its variables as empty strings.
func RenderEmail(body string, app AppData, user *UserData, action *ActionData) string {
	pairs := make([]string, 0, 14)

	pairs = append(pairs,
		"{{app.name}}", app.Name,
		"{{app.url}}", app.URL,
	)

	if user != nil {
		pairs = append(pairs,
			"{{user.name}}", user.Name,
			"{{user.email}}", user.Email,
		)
	} else {
		pairs = append(pairs,
			"{{user.name}}", "",
			"{{user.email}}", "",
		)
	}

	if action != nil {
		pairs = append(pairs,
			"{{action.url}}", action.URL,
			"{{action.expires_at}}", action.ExpiresAt.UTC().Format(time.RFC1123),
			"{{action.ttl}}", humanDuration(action.TTL),
		)
	} else {
		pairs = append(pairs,
			"{{action.url}}", "",
			"{{action.expires_at}}", "",
			"{{action.ttl}}", "",
		)
	}

	return strings.NewReplacer(pairs...).Replace(body)
}

func RenderProject(body string, p ProjectData) string {
	return strings.NewReplacer(
		"{{project.name}}", p.Name,
		"{{project.module}}", p.Module,
		"{{project.go_version}}", p.GoVersion,
	).Replace(body)
}

func humanDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return ""
	case d%(24*time.Hour) == 0:
		return plural(int(d/(24*time.Hour)), "day")
	case d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	default:
		return d.String()
	}
}

func plural(n int, unit string) string {
	s := strconv.Itoa(n) + " " + unit
	if n != 1 {
		s += "s"
	}
	return s
}
