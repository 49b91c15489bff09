package secret

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/smithy-go"
)

// GetSecretValueAPI is the subset of the Secrets Manager client used here.
type GetSecretValueAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSource reads credentials from an AWS Secrets Manager secret, such as the
// one RDS generates for a cluster.
type AWSSource struct {
	client   GetSecretValueAPI
	secretID string
}

func NewAWSSource(client GetSecretValueAPI, secretID string) *AWSSource {
	return &AWSSource{client: client, secretID: secretID}
}

func (s *AWSSource) Credentials(ctx context.Context) (Credentials, error) {
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(s.secretID),
	})
	if err != nil {
		return Credentials{}, mapAWSError(err)
	}
	if out.SecretString == nil || *out.SecretString == "" {
		return Credentials{}, fmt.Errorf("%s: %w", s.secretID, ErrEmptySecret)
	}
	return ParseCredentials([]byte(*out.SecretString))
}

// mapAWSError converts Secrets Manager errors to secret sentinel errors.
func mapAWSError(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("secretsmanager: %w", err)
	}

	switch apiErr.ErrorCode() {
	case "ResourceNotFoundException":
		return fmt.Errorf("%s: %w", apiErr.ErrorMessage(), ErrSecretNotFound)
	case "AccessDeniedException", "DecryptionFailure":
		return fmt.Errorf("%s: %w", apiErr.ErrorMessage(), ErrAccessDenied)
	default:
		return fmt.Errorf("secretsmanager %s: %w", apiErr.ErrorCode(), err)
	}
}

var _ Source = (*AWSSource)(nil)
