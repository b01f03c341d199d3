package identity

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ProviderIdentity is the provider-neutral shape every external identity
// is normalized to before it touches account resolution.
type ProviderIdentity struct {
	ExternalID string `json:"external_id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	AvatarURL  string `json:"avatar_url"`
}

// NormalizeProviderIdentity maps the raw attribute payload returned by an
// OAuth2/OIDC provider into a ProviderIdentity. Each provider names and
// nests its fields differently, so mapping is an exhaustive per-provider
// switch rather than a generic path walk.
func NormalizeProviderIdentity(provider Provider, attrs map[string]any) (*ProviderIdentity, error) {
	var ident *ProviderIdentity

	switch provider {
	case ProviderGoogle:
		ident = &ProviderIdentity{
			ExternalID: attrID(attrs, "sub"),
			Email:      attrString(attrs, "email"),
			FirstName:  attrString(attrs, "given_name"),
			LastName:   attrString(attrs, "family_name"),
			AvatarURL:  attrString(attrs, "picture"),
		}
	case ProviderGithub:
		first, last := splitName(attrString(attrs, "name"))
		ident = &ProviderIdentity{
			ExternalID: attrID(attrs, "id"),
			Email:      attrString(attrs, "email"),
			FirstName:  first,
			LastName:   last,
			AvatarURL:  attrString(attrs, "avatar_url"),
		}
	case ProviderFacebook:
		ident = &ProviderIdentity{
			ExternalID: attrID(attrs, "id"),
			Email:      attrString(attrs, "email"),
			FirstName:  attrString(attrs, "first_name"),
			LastName:   attrString(attrs, "last_name"),
			AvatarURL:  facebookPicture(attrs),
		}
	default:
		return nil, ErrUnsupportedProvider.Clone().
			WithMetadata(map[string]any{"provider": string(provider)})
	}

	if strings.TrimSpace(ident.Email) == "" {
		return nil, ErrMissingEmail.Clone().
			WithMetadata(map[string]any{"provider": string(provider)})
	}

	ident.Email = strings.ToLower(strings.TrimSpace(ident.Email))

	return ident, nil
}

// facebookPicture digs the avatar URL out of facebook's nested
// picture.data.url envelope.
func facebookPicture(attrs map[string]any) string {
	picture, ok := attrs["picture"].(map[string]any)
	if !ok {
		return ""
	}
	data, ok := picture["data"].(map[string]any)
	if !ok {
		return ""
	}
	url, _ := data["url"].(string)
	return url
}

// attrString returns the attribute as a string, or "" when absent or not
// a string.
func attrString(attrs map[string]any, key string) string {
	v, _ := attrs[key].(string)
	return v
}

// attrID stringifies an identifier attribute. Github returns numeric IDs
// and JSON decoding may surface them as float64 or json.Number depending
// on the decoder.
func attrID(attrs map[string]any, key string) string {
	switch v := attrs[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// splitName splits a display name at the first space. A single-token name
// becomes the first name with an empty last name.
func splitName(name string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	parts := strings.SplitN(name, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}
