package db

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/pkg/errors"
)

const (
	DefaultTable    = "dreamland-state"
	DefaultEndpoint = "http://localhost:8000"
	DefaultRegion   = "localhost"
)

// DynamoStore keeps flags in a DynamoDB table keyed by PK with a boolean
// Value attribute.
type DynamoStore struct {
	client dynamodbiface.DynamoDBAPI
	table  string
}

func NewDynamoStore(table, endpoint, region string) (*DynamoStore, error) {
	if table == "" {
		table = DefaultTable
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if region == "" {
		region = DefaultRegion
	}
	sess, err := session.NewSession(&aws.Config{
		Region:   aws.String(region),
		Endpoint: aws.String(endpoint),
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not create a new DynamoDB session")
	}
	return NewDynamoStoreWithClient(dynamodb.New(sess), table), nil
}

func NewDynamoStoreWithClient(client dynamodbiface.DynamoDBAPI, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

func (s *DynamoStore) key(key string) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{
		"PK": {S: aws.String(key)},
	}
}

func (s *DynamoStore) Flag(ctx context.Context, key string) (bool, error) {
	res, err := s.client.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       s.key(key),
	})
	if err != nil {
		return false, errors.Wrapf(err, "error from DynamoDB reading %s", key)
	}
	v, ok := res.Item["Value"]
	if !ok || v.BOOL == nil {
		return false, nil
	}
	return *v.BOOL, nil
}

func (s *DynamoStore) SetFlag(ctx context.Context, key string, value bool) error {
	item := s.key(key)
	item["Value"] = &dynamodb.AttributeValue{BOOL: aws.Bool(value)}
	_, err := s.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return errors.Wrapf(err, "error from DynamoDB writing %s", key)
	}
	return nil
}
