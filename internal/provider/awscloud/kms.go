package awscloud

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	kmstypes "github.com/aws/aws-sdk-go-v2/service/kms/types"

	"github.com/v2kk/stackctl/internal/provider"
	"github.com/v2kk/stackctl/internal/resource"
)

// defaultDeletionWindowDays is the KMS deletion window used when a key
// declaration does not set one.
const defaultDeletionWindowDays = 30

func (p *Provider) createKey(ctx context.Context, props resource.Properties) (*provider.Created, error) {
	input := &kms.CreateKeyInput{}
	if desc := provider.StringPropOr(props, "Description", ""); desc != "" {
		input.Description = aws.String(desc)
	}

	tags, err := provider.StringMapProp(props, "Tags")
	if err != nil {
		return nil, err
	}
	for k, v := range tags {
		input.Tags = append(input.Tags, kmstypes.Tag{TagKey: aws.String(k), TagValue: aws.String(v)})
	}

	out, err := p.kms.CreateKey(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("create KMS key: %w", err)
	}

	keyID := aws.ToString(out.KeyMetadata.KeyId)
	arn := aws.ToString(out.KeyMetadata.Arn)

	if provider.BoolProp(props, "EnableKeyRotation") {
		if _, err := p.kms.EnableKeyRotation(ctx, &kms.EnableKeyRotationInput{KeyId: aws.String(keyID)}); err != nil {
			return nil, fmt.Errorf("enable rotation on KMS key %s: %w", keyID, err)
		}
	}

	window := provider.IntProp(props, "DeletionWindowInDays", defaultDeletionWindowDays)
	p.logger.Info("KMS key created", "keyId", keyID, "arn", arn)
	return &provider.Created{
		ID: keyID,
		Outputs: resource.Outputs{
			"KeyId": keyID,
			"Arn":   arn,
			// Carried so destroy can honor the declared deletion window.
			"DeletionWindowInDays": strconv.Itoa(window),
		},
	}, nil
}

func (p *Provider) scheduleKeyDeletion(ctx context.Context, id string, props resource.Properties) error {
	window := defaultDeletionWindowDays
	if s := provider.StringPropOr(props, "DeletionWindowInDays", ""); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			window = n
		}
	}

	if _, err := p.kms.ScheduleKeyDeletion(ctx, &kms.ScheduleKeyDeletionInput{
		KeyId:               aws.String(id),
		PendingWindowInDays: aws.Int32(int32(window)),
	}); err != nil {
		return fmt.Errorf("schedule deletion of KMS key %s: %w", id, err)
	}
	p.logger.Info("KMS key deletion scheduled", "keyId", id, "windowDays", window)
	return nil
}

func (p *Provider) createAlias(ctx context.Context, props resource.Properties) (*provider.Created, error) {
	name, err := provider.StringProp(props, "Name")
	if err != nil {
		return nil, err
	}
	targetKeyID, err := provider.StringProp(props, "TargetKeyId")
	if err != nil {
		return nil, err
	}

	if _, err := p.kms.CreateAlias(ctx, &kms.CreateAliasInput{
		AliasName:   aws.String(name),
		TargetKeyId: aws.String(targetKeyID),
	}); err != nil {
		return nil, fmt.Errorf("create KMS alias %q: %w", name, err)
	}

	p.logger.Info("KMS alias created", "alias", name, "targetKeyId", targetKeyID)
	return &provider.Created{
		ID: name,
		Outputs: resource.Outputs{
			"AliasName":   name,
			"TargetKeyId": targetKeyID,
		},
	}, nil
}

func (p *Provider) deleteAlias(ctx context.Context, id string) error {
	if _, err := p.kms.DeleteAlias(ctx, &kms.DeleteAliasInput{AliasName: aws.String(id)}); err != nil {
		return fmt.Errorf("delete KMS alias %q: %w", id, err)
	}
	return nil
}
