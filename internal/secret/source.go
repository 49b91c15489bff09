package secret

import "context"

// Source resolves database credentials from a secret store.
type Source interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// StaticSource serves fixed credentials, for local development.
type StaticSource struct {
	creds Credentials
}

func NewStaticSource(creds Credentials) *StaticSource {
	return &StaticSource{creds: creds}
}

func (s *StaticSource) Credentials(ctx context.Context) (Credentials, error) {
	if err := s.creds.Validate(); err != nil {
		return Credentials{}, err
	}
	return s.creds, nil
}

var _ Source = (*StaticSource)(nil)
