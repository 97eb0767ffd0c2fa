package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"

	"github.com/businesspro/auth-api/internal/models"
)

// DynamoAccountStore persists accounts in a single DynamoDB table.
// Each account is two items: the account itself under ACCOUNT#<id> and
// an email pointer under EMAIL#<email>, written transactionally so the
// unique-email invariant holds without a GSI.
type DynamoAccountStore struct {
	client    *dynamodb.Client
	tableName string
	logger    *logrus.Logger
}

func NewDynamoAccountStore(client *dynamodb.Client, tableName string, logger *logrus.Logger) *DynamoAccountStore {
	return &DynamoAccountStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

func emailPK(email string) string {
	return "EMAIL#" + models.NormalizeEmail(email)
}

func (s *DynamoAccountStore) Create(ctx context.Context, account *models.Account) error {
	now := time.Now()
	account.Email = models.NormalizeEmail(account.Email)
	account.CreatedAt = now
	account.UpdatedAt = now

	item, err := attributevalue.MarshalMap(account)
	if err != nil {
		s.logger.WithError(err).Error("Failed to marshal account for DynamoDB")
		return fmt.Errorf("failed to marshal account: %w", err)
	}
	item["PK"] = &types.AttributeValueMemberS{Value: account.GetPK()}
	item["SK"] = &types.AttributeValueMemberS{Value: account.GetSK()}

	pointer := map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: emailPK(account.Email)},
		"SK":         &types.AttributeValueMemberS{Value: "METADATA"},
		"account_id": &types.AttributeValueMemberS{Value: account.ID},
	}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           aws.String(s.tableName),
					Item:                pointer,
					ConditionExpression: aws.String("attribute_not_exists(PK)"),
				},
			},
			{
				Put: &types.Put{
					TableName: aws.String(s.tableName),
					Item:      item,
				},
			},
		},
	})
	if err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			for _, reason := range canceled.CancellationReasons {
				if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
					return ErrDuplicateEmail
				}
			}
		}
		s.logger.WithError(err).Error("Failed to create account in DynamoDB")
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

func (s *DynamoAccountStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: emailPK(email)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	})
	if err != nil {
		s.logger.WithError(err).Error("Failed to look up email pointer in DynamoDB")
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	idAttr, ok := result.Item["account_id"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, fmt.Errorf("email pointer item missing account_id")
	}
	return s.FindByID(ctx, idAttr.Value)
}

func (s *DynamoAccountStore) FindByID(ctx context.Context, id string) (*models.Account, error) {
	account := &models.Account{ID: id}

	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: account.GetPK()},
			"SK": &types.AttributeValueMemberS{Value: account.GetSK()},
		},
	})
	if err != nil {
		s.logger.WithError(err).Error("Failed to get account from DynamoDB")
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var stored models.Account
	if err := attributevalue.UnmarshalMap(result.Item, &stored); err != nil {
		s.logger.WithError(err).Error("Failed to unmarshal account from DynamoDB")
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}
	return &stored, nil
}

func (s *DynamoAccountStore) UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (*models.Account, error) {
	account := &models.Account{ID: id}
	now := time.Now()

	expr := "SET updated_at = :updated_at"
	names := map[string]string{}
	values := map[string]types.AttributeValue{
		":updated_at": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
	}

	if update.FirstName != nil {
		expr += ", first_name = :first_name"
		values[":first_name"] = &types.AttributeValueMemberS{Value: *update.FirstName}
	}
	if update.LastName != nil {
		expr += ", last_name = :last_name"
		values[":last_name"] = &types.AttributeValueMemberS{Value: *update.LastName}
	}
	if update.Company != nil {
		expr += ", company = :company"
		values[":company"] = &types.AttributeValueMemberS{Value: *update.Company}
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: account.GetPK()},
			"SK": &types.AttributeValueMemberS{Value: account.GetSK()},
		},
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	}
	if len(names) > 0 {
		input.ExpressionAttributeNames = names
	}

	result, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return nil, ErrNotFound
		}
		s.logger.WithError(err).Error("Failed to update account in DynamoDB")
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	var stored models.Account
	if err := attributevalue.UnmarshalMap(result.Attributes, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}
	return &stored, nil
}

func (s *DynamoAccountStore) MarkVerified(ctx context.Context, id string) (*models.Account, error) {
	account := &models.Account{ID: id}
	now := time.Now().Format(time.RFC3339Nano)

	// if_not_exists keeps the first verification timestamp on repeat calls.
	result, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: account.GetPK()},
			"SK": &types.AttributeValueMemberS{Value: account.GetSK()},
		},
		UpdateExpression:    aws.String("SET is_verified = :true, verified_at = if_not_exists(verified_at, :now), updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":true": &types.AttributeValueMemberBOOL{Value: true},
			":now":  &types.AttributeValueMemberS{Value: now},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return nil, ErrNotFound
		}
		s.logger.WithError(err).Error("Failed to mark account verified in DynamoDB")
		return nil, fmt.Errorf("failed to mark account verified: %w", err)
	}

	var stored models.Account
	if err := attributevalue.UnmarshalMap(result.Attributes, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}
	return &stored, nil
}

func (s *DynamoAccountStore) Delete(ctx context.Context, id string) error {
	account, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrNotFound
	}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Delete: &types.Delete{
					TableName: aws.String(s.tableName),
					Key: map[string]types.AttributeValue{
						"PK": &types.AttributeValueMemberS{Value: account.GetPK()},
						"SK": &types.AttributeValueMemberS{Value: account.GetSK()},
					},
				},
			},
			{
				Delete: &types.Delete{
					TableName: aws.String(s.tableName),
					Key: map[string]types.AttributeValue{
						"PK": &types.AttributeValueMemberS{Value: emailPK(account.Email)},
						"SK": &types.AttributeValueMemberS{Value: "METADATA"},
					},
				},
			},
		},
	})
	if err != nil {
		s.logger.WithError(err).Error("Failed to delete account from DynamoDB")
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}
