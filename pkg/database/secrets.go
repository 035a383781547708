package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// Credentials is the JSON payload stored in the database secret.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SecretSource fetches the raw secret string for an id.
type SecretSource interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, opts ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// NewSecretsManagerSource builds a Secrets Manager client from the default AWS chain.
func NewSecretsManagerSource(ctx context.Context) (SecretSource, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao carregar configuração AWS: %w", err)
	}
	return secretsmanager.NewFromConfig(cfg), nil
}

// ResolveCredentials reads and decodes the secret identified by secretID.
func ResolveCredentials(ctx context.Context, secretID string, newSource func(context.Context) (SecretSource, error)) (*Credentials, error) {
	src, err := newSource(ctx)
	if err != nil {
		return nil, err
	}

	out, err := src.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(secretID),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return nil, fmt.Errorf("falha ao ler segredo %s: %w", secretID, err)
	}
	if out.SecretString == nil {
		return nil, fmt.Errorf("segredo %s sem conteúdo textual", secretID)
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(*out.SecretString), &creds); err != nil {
		return nil, fmt.Errorf("segredo %s em formato inválido: %w", secretID, err)
	}
	if creds.Username == "" {
		return nil, fmt.Errorf("segredo %s sem username", secretID)
	}
	return &creds, nil
}
