// Package form validates registration and login forms before submission.
package form

import (
	"context"
	"regexp"
	"unicode/utf8"

	"go.uber.org/zap"
)

// MinPasswordLength is the shortest accepted registration password.
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,6}$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// EmailChecker asks the server whether an email is already registered.
type EmailChecker interface {
	CheckEmail(ctx context.Context, email string) (bool, error)
}

// Registration is the registration form.
type Registration struct {
	Email     string
	Username  string
	Password  string
	Password2 string
}

// Login is the login form.
type Login struct {
	Email    string
	Password string
}

// Errors holds one message per field slot; "" means no error.
type Errors struct {
	Email     string
	Name      string
	Password  string
	Password2 string
}

// Result is the outcome of one validation run.
type Result struct {
	Errors Errors
}

// OK reports whether submission may proceed.
func (r Result) OK() bool {
	return r.Errors == Errors{}
}

// FieldError is the message shown in one field's error slot.
type FieldError struct {
	Field   string
	Message string
}

// Fields returns the non-empty messages in form order.
func (r Result) Fields() []FieldError {
	var out []FieldError
	for _, f := range []FieldError{
		{"email", r.Errors.Email},
		{"username", r.Errors.Name},
		{"password", r.Errors.Password},
		{"password2", r.Errors.Password2},
	} {
		if f.Message != "" {
			out = append(out, f)
		}
	}
	return out
}

// Gatekeeper validates forms.
type Gatekeeper struct {
	checker EmailChecker
	msgs    Messages
	log     *zap.Logger
}

// Option configures a Gatekeeper.
type Option func(*Gatekeeper)

// WithLocale selects the message catalog.
func WithLocale(locale string) Option {
	return func(g *Gatekeeper) { g.msgs = Catalog(locale) }
}

// WithLogger sets the logger for failed existence checks.
func WithLogger(log *zap.Logger) Option {
	return func(g *Gatekeeper) {
		if log != nil {
			g.log = log
		}
	}
}

// New creates a Gatekeeper. checker may be nil, which skips the existence
// check.
func New(checker EmailChecker, opts ...Option) *Gatekeeper {
	g := &Gatekeeper{checker: checker, msgs: english, log: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ValidateRegistration checks a registration form. The existence check runs
// only for well-formed emails, and a failed check counts as "not registered".
func (g *Gatekeeper) ValidateRegistration(ctx context.Context, f Registration) Result {
	var res Result

	if !ValidEmail(f.Email) {
		res.Errors.Email = g.msgs.InvalidEmail
	} else if g.checker != nil {
		exists, err := g.checker.CheckEmail(ctx, f.Email)
		if err != nil {
			g.log.Warn("email check failed", zap.String("email", f.Email), zap.Error(err))
		} else if exists {
			res.Errors.Email = g.msgs.EmailTaken
		}
	}

	if utf8.RuneCountInString(f.Password) < MinPasswordLength {
		res.Errors.Password = g.msgs.PasswordTooShort
	}
	if f.Password != f.Password2 {
		res.Errors.Password2 = g.msgs.PasswordMismatch
	}
	return res
}

// ValidateLogin checks a login form.
func (g *Gatekeeper) ValidateLogin(f Login) Result {
	var res Result
	if !ValidEmail(f.Email) {
		res.Errors.Email = g.msgs.InvalidEmail
	}
	if f.Password == "" {
		res.Errors.Password = g.msgs.PasswordRequired
	}
	return res
}
