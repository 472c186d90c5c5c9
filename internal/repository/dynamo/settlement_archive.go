package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/jeffleon2/draftea-paymentscore/internal/models"
	"github.com/jeffleon2/draftea-paymentscore/internal/service"
	"github.com/shopspring/decimal"
)

// API is the part of the DynamoDB client the archive uses.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

type settlementItem struct {
	SettlementID     string   `dynamodbav:"settlement_id"`
	MerchantID       string   `dynamodbav:"merchant_id"`
	TransactionRefs  []string `dynamodbav:"transaction_refs"`
	TransactionCount int      `dynamodbav:"transaction_count"`
	TotalAmount      string   `dynamodbav:"total_amount"`
	TotalFees        string   `dynamodbav:"total_fees"`
	TotalNetAmount   string   `dynamodbav:"total_net_amount"`
	Status           string   `dynamodbav:"status"`
	ProcessedAt      string   `dynamodbav:"processed_at"`
}

// SettlementArchive stores processed settlements in DynamoDB.
//
// Table requirements:
//   - PK: settlement_id (string)
type SettlementArchive struct {
	ddb       API
	tableName string
}

var _ service.SettlementArchive = (*SettlementArchive)(nil)

func NewSettlementArchive(ddb API, tableName string) *SettlementArchive {
	return &SettlementArchive{
		ddb:       ddb,
		tableName: tableName,
	}
}

func (r *SettlementArchive) SaveSettlement(ctx context.Context, settlement *models.MerchantSettlement) error {
	av, err := attributevalue.MarshalMap(toSettlementItem(settlement))
	if err != nil {
		return err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "settlement_id",
		},
	})
	var conditionFailed *types.ConditionalCheckFailedException
	if errors.As(err, &conditionFailed) {
		return service.ErrDuplicate
	}
	return err
}

func (r *SettlementArchive) FindSettlement(ctx context.Context, settlementID string) (*models.MerchantSettlement, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"settlement_id": &types.AttributeValueMemberS{Value: settlementID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, service.ErrRecordNotFound
	}

	var it settlementItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, err
	}
	return fromSettlementItem(it)
}

func toSettlementItem(s *models.MerchantSettlement) settlementItem {
	return settlementItem{
		SettlementID:     s.SettlementID,
		MerchantID:       s.MerchantID,
		TransactionRefs:  s.TransactionRefs,
		TransactionCount: s.TransactionCount,
		TotalAmount:      s.TotalAmount.StringFixed(2),
		TotalFees:        s.TotalFees.StringFixed(2),
		TotalNetAmount:   s.TotalNetAmount.StringFixed(2),
		Status:           s.Status,
		ProcessedAt:      s.ProcessedAt.UTC().Format(time.RFC3339Nano),
	}
}

func fromSettlementItem(it settlementItem) (*models.MerchantSettlement, error) {
	processedAt, err := time.Parse(time.RFC3339Nano, it.ProcessedAt)
	if err != nil {
		return nil, fmt.Errorf("settlement %s: invalid processed_at %q: %w", it.SettlementID, it.ProcessedAt, err)
	}
	totalAmount, err := parseMoney(it.SettlementID, "total_amount", it.TotalAmount)
	if err != nil {
		return nil, err
	}
	totalFees, err := parseMoney(it.SettlementID, "total_fees", it.TotalFees)
	if err != nil {
		return nil, err
	}
	totalNet, err := parseMoney(it.SettlementID, "total_net_amount", it.TotalNetAmount)
	if err != nil {
		return nil, err
	}

	return &models.MerchantSettlement{
		SettlementID:     it.SettlementID,
		MerchantID:       it.MerchantID,
		TransactionRefs:  it.TransactionRefs,
		TransactionCount: it.TransactionCount,
		TotalAmount:      totalAmount,
		TotalFees:        totalFees,
		TotalNetAmount:   totalNet,
		Status:           it.Status,
		ProcessedAt:      processedAt,
	}, nil
}

func parseMoney(settlementID, attr, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("settlement %s: invalid %s %q: %w", settlementID, attr, raw, err)
	}
	return d, nil
}
