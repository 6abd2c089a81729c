package awscloud

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/identitystore"
	identitytypes "github.com/aws/aws-sdk-go-v2/service/identitystore/types"

	"github.com/v2kk/stackctl/internal/provider"
	"github.com/v2kk/stackctl/internal/resource"
)

func (p *Provider) createGroup(ctx context.Context, props resource.Properties) (*provider.Created, error) {
	storeID, err := provider.StringProp(props, "IdentityStoreId")
	if err != nil {
		return nil, err
	}
	displayName, err := provider.StringProp(props, "DisplayName")
	if err != nil {
		return nil, err
	}

	input := &identitystore.CreateGroupInput{
		IdentityStoreId: aws.String(storeID),
		DisplayName:     aws.String(displayName),
	}
	if desc := provider.StringPropOr(props, "Description", ""); desc != "" {
		input.Description = aws.String(desc)
	}

	out, err := p.identity.CreateGroup(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("create identity store group %q: %w", displayName, err)
	}

	groupID := aws.ToString(out.GroupId)
	p.logger.Info("identity store group created", "displayName", displayName, "groupId", groupID)
	return &provider.Created{
		ID: groupID,
		Outputs: resource.Outputs{
			"GroupId":         groupID,
			"IdentityStoreId": storeID,
		},
	}, nil
}

func (p *Provider) deleteGroup(ctx context.Context, id string, props resource.Properties) error {
	storeID, err := provider.StringProp(props, "IdentityStoreId")
	if err != nil {
		return err
	}
	if _, err := p.identity.DeleteGroup(ctx, &identitystore.DeleteGroupInput{
		IdentityStoreId: aws.String(storeID),
		GroupId:         aws.String(id),
	}); err != nil {
		return fmt.Errorf("delete identity store group %s: %w", id, err)
	}
	return nil
}

func (p *Provider) createUser(ctx context.Context, props resource.Properties) (*provider.Created, error) {
	storeID, err := provider.StringProp(props, "IdentityStoreId")
	if err != nil {
		return nil, err
	}
	userName, err := provider.StringProp(props, "UserName")
	if err != nil {
		return nil, err
	}
	displayName, err := provider.StringProp(props, "DisplayName")
	if err != nil {
		return nil, err
	}

	input := &identitystore.CreateUserInput{
		IdentityStoreId: aws.String(storeID),
		UserName:        aws.String(userName),
		DisplayName:     aws.String(displayName),
	}
	if given := provider.StringPropOr(props, "GivenName", ""); given != "" {
		input.Name = &identitytypes.Name{
			GivenName:  aws.String(given),
			FamilyName: aws.String(provider.StringPropOr(props, "FamilyName", "")),
		}
	}
	if email := provider.StringPropOr(props, "Email", ""); email != "" {
		input.Emails = []identitytypes.Email{{
			Value:   aws.String(email),
			Primary: provider.BoolProp(props, "EmailPrimary"),
		}}
	}

	out, err := p.identity.CreateUser(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("create identity store user %q: %w", userName, err)
	}

	userID := aws.ToString(out.UserId)
	p.logger.Info("identity store user created", "userName", userName, "userId", userID)
	return &provider.Created{
		ID: userID,
		Outputs: resource.Outputs{
			"UserId":          userID,
			"IdentityStoreId": storeID,
		},
	}, nil
}

func (p *Provider) deleteUser(ctx context.Context, id string, props resource.Properties) error {
	storeID, err := provider.StringProp(props, "IdentityStoreId")
	if err != nil {
		return err
	}
	if _, err := p.identity.DeleteUser(ctx, &identitystore.DeleteUserInput{
		IdentityStoreId: aws.String(storeID),
		UserId:          aws.String(id),
	}); err != nil {
		return fmt.Errorf("delete identity store user %s: %w", id, err)
	}
	return nil
}

func (p *Provider) createGroupMembership(ctx context.Context, props resource.Properties) (*provider.Created, error) {
	storeID, err := provider.StringProp(props, "IdentityStoreId")
	if err != nil {
		return nil, err
	}
	groupID, err := provider.StringProp(props, "GroupId")
	if err != nil {
		return nil, err
	}
	memberID, err := provider.StringProp(props, "MemberId")
	if err != nil {
		return nil, err
	}

	out, err := p.identity.CreateGroupMembership(ctx, &identitystore.CreateGroupMembershipInput{
		IdentityStoreId: aws.String(storeID),
		GroupId:         aws.String(groupID),
		MemberId:        &identitytypes.MemberIdMemberUserId{Value: memberID},
	})
	if err != nil {
		return nil, fmt.Errorf("create group membership (group %s, member %s): %w", groupID, memberID, err)
	}

	membershipID := aws.ToString(out.MembershipId)
	p.logger.Info("group membership created", "groupId", groupID, "memberId", memberID, "membershipId", membershipID)
	return &provider.Created{
		ID: membershipID,
		Outputs: resource.Outputs{
			"MembershipId":    membershipID,
			"IdentityStoreId": storeID,
		},
	}, nil
}

func (p *Provider) deleteGroupMembership(ctx context.Context, id string, props resource.Properties) error {
	storeID, err := provider.StringProp(props, "IdentityStoreId")
	if err != nil {
		return err
	}
	if _, err := p.identity.DeleteGroupMembership(ctx, &identitystore.DeleteGroupMembershipInput{
		IdentityStoreId: aws.String(storeID),
		MembershipId:    aws.String(id),
	}); err != nil {
		return fmt.Errorf("delete group membership %s: %w", id, err)
	}
	return nil
}
