// Package identity implements the token and identity lifecycle for a
// multi-provider authentication service: local username/password accounts
// plus google, github, and facebook identities normalized into one canonical
// account model.
//
// Token lifecycle:
//   - TokenService mints and verifies stateless HS256 access tokens carrying
//     the account id and its derived authorities. Validity is proven by
//     signature and expiry alone; nothing is persisted.
//   - RefreshTokens owns the long-lived opaque credentials. Issuing a token
//     revokes every prior live token for the account inside one transaction,
//     so at most one refresh token per account is ever usable.
//
// Identity resolution:
//   - NormalizeProviderIdentity maps raw provider attribute payloads into a
//     ProviderIdentity, one mapping per supported provider tag.
//   - AccountResolver finds or creates the canonical Account for a normalized
//     identity, generating collision-free usernames from the email local part
//     and refusing to merge provider sign-ins into local accounts.
//
// SessionOrchestrator ties the pieces together: login, registration, token
// refresh, and logout, each returning (or invalidating) a Session. Per-request
// authentication lives in middleware/authware, which degrades every token
// failure to an anonymous request instead of aborting it.
package identity
