package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/yusufkecer/macro-tracker-backend/internal/domain"
)

// DynamoAPI is the subset of *dynamodb.Client the tally store uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

type DynamoTallyRepository struct {
	client DynamoAPI
	table  string
}

func NewDynamoTallyRepository(client DynamoAPI, table string) *DynamoTallyRepository {
	return &DynamoTallyRepository{client: client, table: table}
}

func (r *DynamoTallyRepository) key(userID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: userID},
	}
}

func (r *DynamoTallyRepository) GetTally(ctx context.Context, userID string) (*domain.MacroTally, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(r.table),
		Key:                  r.key(userID),
		ProjectionExpression: aws.String(macrosField),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get macros: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var tally domain.MacroTally
	av, ok := out.Item[macrosField]
	if !ok {
		return &tally, nil
	}
	if err := attributevalue.Unmarshal(av, &tally); err != nil {
		return nil, fmt.Errorf("failed to decode macros for user %s: %w", userID, err)
	}
	return &tally, nil
}

func (r *DynamoTallyRepository) UpdateTally(ctx context.Context, userID string, tally domain.MacroTally) error {
	av, err := attributevalue.Marshal(tally)
	if err != nil {
		return fmt.Errorf("failed to encode macros: %w", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.table),
		Key:              r.key(userID),
		UpdateExpression: aws.String("SET macros = :newMacros"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":newMacros": av,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to update macros: %w", err)
	}
	return nil
}
