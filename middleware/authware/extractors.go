package authware

import (
	"errors"
	"strings"

	"github.com/goliatone/go-router"
)

// ErrNoCredential is returned by extractors when the request carries no
// token in the inspected location.
var ErrNoCredential = errors.New("no bearer credential present")

// TokenExtractor pulls a raw token string out of the request, or returns
// ErrNoCredential when the location it inspects is empty.
type TokenExtractor func(c router.Context) (string, error)

// ExtractRawToken runs the extractors in order and returns the first token
// found. Order matters: the first populated location wins even if the token
// it holds is garbage.
func ExtractRawToken(c router.Context, extractors []TokenExtractor) (string, error) {
	for _, extractor := range extractors {
		raw, err := extractor(c)
		if raw != "" && err == nil {
			return raw, nil
		}
	}
	return "", ErrNoCredential
}

// GetExtractors parses a lookup string such as
// "header:Authorization,query:token,cookie:token" into an ordered extractor
// chain.
func GetExtractors(tokenLookup, authScheme string) []TokenExtractor {
	extractors := make([]TokenExtractor, 0)

	for _, rootPart := range strings.Split(tokenLookup, ",") {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")
		if len(parts) != 2 {
			continue
		}

		source := strings.TrimSpace(parts[0])
		name := strings.TrimSpace(parts[1])

		switch source {
		case "header":
			extractors = append(extractors, tokenFromHeader(name, authScheme))
		case "query":
			extractors = append(extractors, tokenFromQuery(name))
		case "cookie":
			extractors = append(extractors, tokenFromCookie(name))
		}
	}

	return extractors
}

// tokenFromHeader extracts "<scheme> <token>" from the named header.
func tokenFromHeader(header, authScheme string) TokenExtractor {
	return func(c router.Context) (string, error) {
		a := c.GetString(header, "")
		scheme := strings.TrimSpace(authScheme)
		l := len(scheme)
		if l == 0 || len(a) <= l+1 {
			return "", ErrNoCredential
		}
		if strings.EqualFold(a[:l], scheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrNoCredential
	}
}

func tokenFromQuery(param string) TokenExtractor {
	return func(c router.Context) (string, error) {
		token := c.Query(param, "")
		if token == "" {
			return "", ErrNoCredential
		}
		return token, nil
	}
}

func tokenFromCookie(name string) TokenExtractor {
	return func(c router.Context) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrNoCredential
		}
		return token, nil
	}
}
