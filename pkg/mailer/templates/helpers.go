package templates

import (
	"time"
)

// Option pattern
type Option func(*EmailData)

func WithIP(ip string) Option        { return func(d *EmailData) { d.IP = ip } }
func WithUserAgent(ua string) Option { return func(d *EmailData) { d.UserAgent = ua } }
func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		d.Time = t.UTC().Format("02 January 2006, 15:04 MST")
	}
}

// NewEmailData fills the common fields, then applies opts.
func NewEmailData(appName, clubName, typ, name, username, email string, opts ...Option) EmailData {
	d := EmailData{
		Type:     typ,
		Name:     name,
		Username: username,
		Email:    email,
		AppName:  appName,
		ClubName: clubName,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewWelcomeData(appName, clubName, name, username, email string, opts ...Option) map[string]any {
	return ToMap(NewEmailData(appName, clubName, Welcome, name, username, email, opts...))
}

func NewPasswordChangedData(appName, clubName, name, username, email string, opts ...Option) map[string]any {
	return ToMap(NewEmailData(appName, clubName, PasswordChanged, name, username, email, opts...))
}
