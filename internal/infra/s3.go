package infra

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/kvv-bao/profiler/internal/app/appconfig"
)

// S3 returns a client for the audit export bucket, or nil when the export is disabled.
func S3(conf *appconfig.Config) (*s3.Client, error) {
	if conf.ExportS3Bucket == "" {
		log.Info().Msg("infra: s3: audit export is disabled due to missing bucket")
		return nil, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(conf.ExportS3Region),
	}
	if conf.ExportS3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conf.ExportS3AccessKey, conf.ExportS3SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		log.Error().Err(err).Msg("infra: s3: failed to load aws configuration")
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if conf.ExportS3Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.ExportS3Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}
