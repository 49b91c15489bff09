package secret

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hashicorp/vault/api"
)

// VaultSource reads credentials from a KV v2 secret whose keys mirror the
// Secrets Manager payload (username, password, host, port, dbname).
type VaultSource struct {
	client     *api.Client
	mountPath  string
	secretPath string
}

func NewVaultSource(addr, token, mountPath, secretPath string) (*VaultSource, error) {
	if addr == "" {
		return nil, fmt.Errorf("vault address is required")
	}
	if mountPath == "" {
		return nil, fmt.Errorf("vault mount path is required")
	}
	if secretPath == "" {
		return nil, fmt.Errorf("vault secret path is required")
	}

	cfg := api.DefaultConfig()
	cfg.Address = addr

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	client.SetToken(token)

	return &VaultSource{
		client:     client,
		mountPath:  mountPath,
		secretPath: secretPath,
	}, nil
}

func (s *VaultSource) Credentials(ctx context.Context) (Credentials, error) {
	kv, err := s.client.KVv2(s.mountPath).Get(ctx, s.secretPath)
	if err != nil {
		if errors.Is(err, api.ErrSecretNotFound) {
			return Credentials{}, fmt.Errorf("%s: %w", s.secretPath, ErrSecretNotFound)
		}
		var respErr *api.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == 403 {
			return Credentials{}, fmt.Errorf("%s: %w", s.secretPath, ErrAccessDenied)
		}
		return Credentials{}, fmt.Errorf("vault: %w", err)
	}
	if kv == nil || kv.Data == nil {
		return Credentials{}, fmt.Errorf("%s: %w", s.secretPath, ErrSecretNotFound)
	}

	payload, err := json.Marshal(kv.Data)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrMalformedSecret, err)
	}
	return ParseCredentials(payload)
}

var _ Source = (*VaultSource)(nil)
