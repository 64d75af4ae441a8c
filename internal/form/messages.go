package form

import (
	"golang.org/x/text/language"
)

// Messages holds the texts shown in the error slots.
type Messages struct {
	InvalidEmail     string
	EmailTaken       string
	PasswordTooShort string
	PasswordMismatch string
	PasswordRequired string
}

var english = Messages{
	InvalidEmail:     "Please enter a valid email address (for example: example@domain.com)",
	EmailTaken:       "This email is already registered",
	PasswordTooShort: "Password must be at least 6 characters",
	PasswordMismatch: "Passwords do not match",
	PasswordRequired: "Enter your password",
}

var russian = Messages{
	InvalidEmail:     "Пожалуйста, введите правильный E-mail (например: example@domain.com)",
	EmailTaken:       "Этот E-mail уже зарегистрирован",
	PasswordTooShort: "Пароль должен содержать минимум 6 символов",
	PasswordMismatch: "Пароли не совпадают",
	PasswordRequired: "Введите пароль",
}

var (
	supported = []language.Tag{language.English, language.Russian}
	catalogs  = []Messages{english, russian}
	matcher   = language.NewMatcher(supported)
)

// Catalog returns the messages best matching locale, an IETF tag or an
// Accept-Language style list. English is the fallback.
func Catalog(locale string) Messages {
	_, idx := language.MatchStrings(matcher, locale)
	if idx < 0 || idx >= len(catalogs) {
		return english
	}
	return catalogs[idx]
}
