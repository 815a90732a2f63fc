package auth

import (
	"context"

	"github.com/iliyamo/football-club/internal/model"
)

// Authenticator runs the per-request pipeline: verify the bearer token,
// then resolve its subject.  Authorization against a Requirement is a
// separate step (Authorize) so one authenticated principal can be checked
// against several requirements.
type Authenticator struct {
	codec    *Codec
	resolver *Resolver
}

func NewAuthenticator(codec *Codec, resolver *Resolver) *Authenticator {
	return &Authenticator{codec: codec, resolver: resolver}
}

// Authenticate accepts access tokens only.
func (a *Authenticator) Authenticate(ctx context.Context, raw string) (*model.User, error) {
	p, err := a.codec.VerifyKind(raw, KindAccess)
	if err != nil {
		return nil, err
	}
	return a.resolver.Resolve(ctx, p)
}
