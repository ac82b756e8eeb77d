package session

import "context"

type contextKey string

const credentialKey contextKey = "credential"

// WithCredential stashes the session's bearer credential on the
// context so outbound LMS calls made on behalf of this request can
// attach it.
func WithCredential(ctx context.Context, credential string) context.Context {
	return context.WithValue(ctx, credentialKey, credential)
}

// CredentialFromContext returns the credential stashed by
// WithCredential, if any.
func CredentialFromContext(ctx context.Context) (string, bool) {
	if val := ctx.Value(credentialKey); val != nil {
		if cred, ok := val.(string); ok && cred != "" {
			return cred, true
		}
	}
	return "", false
}

// ContextCredentials sources the bearer credential from the request
// context. It is the credential source wired into the LMS client.
type ContextCredentials struct{}

// Credential implements the LMS client's credential source.
func (ContextCredentials) Credential(ctx context.Context) (string, bool) {
	return CredentialFromContext(ctx)
}
