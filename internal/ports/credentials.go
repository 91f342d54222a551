package ports

import "context"

// Credentials is the credential material the transport attaches on its own.
type Credentials interface {
	Cookie(ctx context.Context, name string) (value string, ok bool, err error)
	ForgetCredentials(ctx context.Context) error
}
