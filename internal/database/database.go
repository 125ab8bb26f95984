package database

import (
	"context"
	"fmt"

	"support-chat-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

type DynamoDBClient struct {
	svc *dynamodb.Client
}

func NewDynamoDBClient(ctx context.Context, cfg config.Config) (*DynamoDBClient, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}

	if cfg.AWSID != "" && cfg.AWSSecret != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(cfg.AWSID, cfg.AWSSecret, cfg.AWSToken)),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	clientOpts := []func(*dynamodb.Options){}
	if cfg.DynamoDBEndpoint != "" {
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		})
	}

	return &DynamoDBClient{
		svc: dynamodb.NewFromConfig(awsCfg, clientOpts...),
	}, nil
}

type Database struct {
	Client *DynamoDBClient
	Tables config.Tables
}

func NewDatabase(ctx context.Context, cfg config.Config) (*Database, error) {
	dbClient, err := NewDynamoDBClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init dynamodb client: %w", err)
	}

	return &Database{
		Client: dbClient,
		Tables: cfg.Tables,
	}, nil
}
