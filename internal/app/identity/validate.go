package identity

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"connect/internal/app/user"
	"connect/internal/pkg/errs"
)

var validate = validator.New()

// NormalizeDomain lower-cases domain and strips a leading "@".
func NormalizeDomain(domain string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "@")
}

// ValidateCredentials checks a sign-in attempt before any provider is contacted and returns
// the normalized email. Missing fields are reported first, then addresses outside domain,
// then malformed addresses.
func ValidateCredentials(email, password, domain string) (string, *errs.CustomError) {
	email = user.NormalizeEmail(email)
	domain = NormalizeDomain(domain)

	if email == "" {
		return "", errs.NewError(errs.ErrEmailRequired)
	}
	if password == "" {
		return "", errs.NewError(errs.ErrPasswordRequired)
	}
	if !strings.HasSuffix(email, "@"+domain) {
		return "", errs.NewError(errs.ErrUnauthorizedDomain, domain)
	}
	if err := validate.Var(email, "email"); err != nil {
		return "", errs.NewError(errs.ErrInvalidEmail)
	}

	return email, nil
}
