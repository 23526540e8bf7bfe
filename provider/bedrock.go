package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"llmgames/meta"
)

type bedrockBackend struct {
	client      *bedrockruntime.Client
	modelID     string
	temperature float64
}

func newBedrockBackend(cfg Config, temperature float64) (Backend, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("bedrock config: %w", err)
	}

	modelID := cfg.Model
	if cfg.CrossRegion {
		modelID = inferenceProfilePrefix(cfg.Region) + "." + modelID
	}

	return &bedrockBackend{
		client:      bedrockruntime.NewFromConfig(awsCfg),
		modelID:     modelID,
		temperature: temperature,
	}, nil
}

func (b *bedrockBackend) Name() string { return string(VendorBedrock) }

func (b *bedrockBackend) Invoke(ctx context.Context, prompt string) (string, error) {
	out, err := b.client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(b.modelID),
		Messages: []types.Message{{
			Role: types.ConversationRoleUser,
			Content: []types.ContentBlock{
				&types.ContentBlockMemberText{Value: prompt},
			},
		}},
		InferenceConfig: &types.InferenceConfiguration{
			Temperature: aws.Float32(float32(b.temperature)),
			MaxTokens:   aws.Int32(meta.MAX_RESPONSE_TOKENS),
		},
	})
	if err != nil {
		return "", fmt.Errorf("bedrock converse: %w", err)
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok || len(msg.Value.Content) == 0 {
		return "", errors.New("bedrock returned no message content")
	}
	text, ok := msg.Value.Content[0].(*types.ContentBlockMemberText)
	if !ok {
		return "", errors.New("bedrock returned non-text content")
	}
	return text.Value, nil
}

// inferenceProfilePrefix maps a region to the geographic prefix Bedrock
// expects on cross-region inference profile IDs.
func inferenceProfilePrefix(region string) string {
	switch {
	case strings.HasPrefix(region, "eu-"):
		return "eu"
	case strings.HasPrefix(region, "ap-"):
		return "apac"
	default:
		return "us"
	}
}
