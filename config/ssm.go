package config

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
)

// parametersByPathAPI is the part of the SSM client used for loading parameters.
type parametersByPathAPI interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// LoadSSMParameters overlays every parameter below SSM_PARAMETER_PATH onto config.
// It is a no-op when SSM_PARAMETER_PATH is not set.
func LoadSSMParameters(ctx context.Context, config map[string]string) error {
	parameterPath := GetString(config, "SSM_PARAMETER_PATH", "")
	if parameterPath == "" {
		return nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	return overlayParameters(ctx, ssm.NewFromConfig(awsCfg), parameterPath, config)
}

func overlayParameters(ctx context.Context, client parametersByPathAPI, parameterPath string, config map[string]string) error {
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(parameterPath),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})

	loaded := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("get parameters by path %s: %w", parameterPath, err)
		}
		for _, parameter := range page.Parameters {
			config[parameterKey(aws.ToString(parameter.Name))] = aws.ToString(parameter.Value)
			loaded++
		}
	}

	log.Info().Str("path", parameterPath).Int("parameters", loaded).Msg("Loaded configuration from SSM")
	return nil
}

// parameterKey maps "/tech-api/prod/db-password" to "DB_PASSWORD".
func parameterKey(name string) string {
	key := strings.ToUpper(path.Base(name))
	return strings.NewReplacer("-", "_", ".", "_").Replace(key)
}
