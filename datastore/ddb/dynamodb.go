/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-openapi/strfmt"
	"go.uber.org/zap"

	"github.com/suparena/eavstore/datastore"
	storeerrors "github.com/suparena/eavstore/errors"
	"github.com/suparena/eavstore/registry"
	"github.com/suparena/eavstore/schema"
	"github.com/suparena/eavstore/storagemodels"
)

var (
	_ datastore.DataStore = (*DynamodbDataStore)(nil)
	_ datastore.Migrator  = (*DynamodbDataStore)(nil)
)

// Attribute names stored next to the configured foreign key, name and value.
const (
	attrID        = "id"
	attrCreatedAt = "created_at"
	attrUpdatedAt = "updated_at"
)

// maxBatchWrite is the BatchWriteItem request limit.
const maxBatchWrite = 25

// Client is the subset of the DynamoDB API used by the store.
type Client interface {
	Query(ctx context.Context, in *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
	PutItem(ctx context.Context, in *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *sdk.UpdateItemInput, optFns ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
	BatchWriteItem(ctx context.Context, in *sdk.BatchWriteItemInput, optFns ...func(*sdk.Options)) (*sdk.BatchWriteItemOutput, error)
	CreateTable(ctx context.Context, in *sdk.CreateTableInput, optFns ...func(*sdk.Options)) (*sdk.CreateTableOutput, error)
	DeleteTable(ctx context.Context, in *sdk.DeleteTableInput, optFns ...func(*sdk.Options)) (*sdk.DeleteTableOutput, error)
	DescribeTable(ctx context.Context, in *sdk.DescribeTableInput, optFns ...func(*sdk.Options)) (*sdk.DescribeTableOutput, error)
}

// DynamodbDataStore implements datastore.DataStore with one DynamoDB table per
// companion store. Items are keyed by (foreign key, name field).
type DynamodbDataStore struct {
	client       Client
	queryOptions storagemodels.QueryOptions
	tableWait    time.Duration
	logger       *zap.Logger
}

// Option configures a DynamodbDataStore.
type Option func(*DynamodbDataStore)

// WithQueryOptions sets paging and retry behaviour for reads and batch deletes.
func WithQueryOptions(opts ...storagemodels.QueryOption) Option {
	return func(d *DynamodbDataStore) {
		for _, opt := range opts {
			opt(&d.queryOptions)
		}
	}
}

// WithTableWait makes Migrate wait up to timeout for a new table to become active.
func WithTableWait(timeout time.Duration) Option {
	return func(d *DynamodbDataStore) {
		d.tableWait = timeout
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *DynamodbDataStore) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDynamoDBClient initializes a DynamoDB client using static AWS credentials.
func NewDynamoDBClient(ctx context.Context, awsAccessKey, awsSecretKey, awsRegion string) (*sdk.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(awsRegion),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsAccessKey, awsSecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return sdk.NewFromConfig(cfg), nil
}

// NewDynamodbDataStore constructs a store backed by a new DynamoDB client.
func NewDynamodbDataStore(ctx context.Context, awsAccessKey, awsSecretKey, awsRegion string, opts ...Option) (*DynamodbDataStore, error) {
	client, err := NewDynamoDBClient(ctx, awsAccessKey, awsSecretKey, awsRegion)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}
	d := NewWithClient(client, opts...)
	d.logger.Debug("DynamoDB client initialized", zap.String("region", awsRegion))
	return d, nil
}

// NewWithClient constructs a store around an existing client.
func NewWithClient(client Client, opts ...Option) *DynamodbDataStore {
	d := &DynamodbDataStore{
		client:       client,
		queryOptions: storagemodels.DefaultQueryOptions(),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Create puts a new item, failing if (owner, name) already exists.
func (d *DynamodbDataStore) Create(ctx context.Context, store registry.CompanionStoreConfig, row storagemodels.CompanionRow) error {
	item, err := marshalRow(store, row)
	if err != nil {
		return err
	}

	cond := "attribute_not_exists(#name)"
	_, err = d.client.PutItem(ctx, &sdk.PutItemInput{
		TableName:                aws.String(store.Table),
		Item:                     item,
		ConditionExpression:      aws.String(cond),
		ExpressionAttributeNames: map[string]string{"#name": store.NameField},
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return storeerrors.NewAlreadyExistsError(store.Name, row.OwnerID+"/"+row.Name)
		}
		return fmt.Errorf("PutItem failed: %w", err)
	}
	return nil
}

// Update sets the value and updated_at of an existing item.
func (d *DynamodbDataStore) Update(ctx context.Context, store registry.CompanionStoreConfig, row storagemodels.CompanionRow) error {
	updateExpr, exprAttrNames, exprAttrValues, err := buildUpdateExpression(map[string]string{
		store.ValueField: row.Value,
		attrUpdatedAt:    row.UpdatedAt.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to build update expression: %w", err)
	}
	exprAttrNames["#name"] = store.NameField

	_, err = d.client.UpdateItem(ctx, &sdk.UpdateItemInput{
		TableName:                 aws.String(store.Table),
		Key:                       rowKey(store, row.OwnerID, row.Name),
		UpdateExpression:          aws.String(updateExpr),
		ConditionExpression:       aws.String("attribute_exists(#name)"),
		ExpressionAttributeNames:  exprAttrNames,
		ExpressionAttributeValues: exprAttrValues,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return storeerrors.NewNotFoundError(store.Name, row.OwnerID+"/"+row.Name)
		}
		return fmt.Errorf("UpdateItem failed: %w", err)
	}
	return nil
}

// Delete removes an item. DynamoDB deletes are idempotent.
func (d *DynamodbDataStore) Delete(ctx context.Context, store registry.CompanionStoreConfig, row storagemodels.CompanionRow) error {
	_, err := d.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName: aws.String(store.Table),
		Key:       rowKey(store, row.OwnerID, row.Name),
	})
	if err != nil {
		return fmt.Errorf("failed to delete item in DynamoDB: %w", err)
	}
	return nil
}

// DeleteByOwner removes all items of ownerID using batched deletes.
func (d *DynamodbDataStore) DeleteByOwner(ctx context.Context, store registry.CompanionStoreConfig, ownerID string) error {
	rows, err := d.ListByOwner(ctx, store, ownerID)
	if err != nil {
		return err
	}

	for start := 0; start < len(rows); start += maxBatchWrite {
		end := min(start+maxBatchWrite, len(rows))
		reqs := make([]types.WriteRequest, 0, end-start)
		for _, r := range rows[start:end] {
			reqs = append(reqs, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: rowKey(store, ownerID, r.Name)},
			})
		}
		if err := d.batchWrite(ctx, store.Table, reqs); err != nil {
			return err
		}
	}
	return nil
}

// batchWrite sends reqs and resubmits unprocessed items with backoff.
func (d *DynamodbDataStore) batchWrite(ctx context.Context, table string, reqs []types.WriteRequest) error {
	pending := map[string][]types.WriteRequest{table: reqs}
	for attempt := 0; ; attempt++ {
		out, err := d.client.BatchWriteItem(ctx, &sdk.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			return fmt.Errorf("BatchWriteItem failed: %w", err)
		}
		if len(out.UnprocessedItems) == 0 {
			return nil
		}
		if attempt >= d.queryOptions.MaxRetries {
			return fmt.Errorf("BatchWriteItem left %d unprocessed items after %d retries",
				len(out.UnprocessedItems[table]), attempt)
		}
		pending = out.UnprocessedItems
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * d.queryOptions.RetryBackoff):
		}
	}
}

// Migrate creates the table behind store. An existing table is left alone.
func (d *DynamodbDataStore) Migrate(ctx context.Context, store registry.CompanionStoreConfig) error {
	_, err := d.client.CreateTable(ctx, schema.DynamoTable(store))
	if err != nil {
		var inUse *types.ResourceInUseException
		if errors.As(err, &inUse) {
			return nil
		}
		return fmt.Errorf("CreateTable failed: %w", err)
	}
	if d.tableWait > 0 {
		w := sdk.NewTableExistsWaiter(d.client)
		if err := w.Wait(ctx, &sdk.DescribeTableInput{TableName: aws.String(store.Table)}, d.tableWait); err != nil {
			return fmt.Errorf("waiting for table %s: %w", store.Table, err)
		}
	}
	d.logger.Debug("created DynamoDB table", zap.String("table", store.Table))
	return nil
}

// Drop deletes the table behind store. A missing table is not an error.
func (d *DynamodbDataStore) Drop(ctx context.Context, store registry.CompanionStoreConfig) error {
	_, err := d.client.DeleteTable(ctx, &sdk.DeleteTableInput{TableName: aws.String(store.Table)})
	if err != nil {
		var nf *types.ResourceNotFoundException
		if errors.As(err, &nf) {
			return nil
		}
		return fmt.Errorf("DeleteTable failed: %w", err)
	}
	return nil
}

func rowKey(store registry.CompanionStoreConfig, ownerID, name string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		store.ForeignKey: &types.AttributeValueMemberS{Value: ownerID},
		store.NameField:  &types.AttributeValueMemberS{Value: name},
	}
}

func marshalRow(store registry.CompanionStoreConfig, row storagemodels.CompanionRow) (map[string]types.AttributeValue, error) {
	av, err := attributevalue.MarshalMap(map[string]string{
		attrID:           row.ID,
		store.ForeignKey: row.OwnerID,
		store.NameField:  row.Name,
		store.ValueField: row.Value,
		attrCreatedAt:    row.CreatedAt.String(),
		attrUpdatedAt:    row.UpdatedAt.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal row: %w", err)
	}
	return av, nil
}

func unmarshalRow(store registry.CompanionStoreConfig, item map[string]types.AttributeValue) (storagemodels.CompanionRow, error) {
	var m map[string]string
	if err := attributevalue.UnmarshalMap(item, &m); err != nil {
		return storagemodels.CompanionRow{}, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	row := storagemodels.CompanionRow{
		ID:      m[attrID],
		OwnerID: m[store.ForeignKey],
		Name:    m[store.NameField],
		Value:   m[store.ValueField],
	}
	for attr, dst := range map[string]*strfmt.DateTime{attrCreatedAt: &row.CreatedAt, attrUpdatedAt: &row.UpdatedAt} {
		if s := m[attr]; s != "" {
			ts, err := strfmt.ParseDateTime(s)
			if err != nil {
				return storagemodels.CompanionRow{}, fmt.Errorf("failed to parse %s: %w", attr, err)
			}
			*dst = ts
		}
	}
	return row, nil
}

// buildUpdateExpression transforms a map of field->value into:
//   - an "update expression" (e.g., "SET #f0 = :v0, #f1 = :v1")
//   - a corresponding map of expression attribute names
//   - a corresponding map of expression attribute values
//
// Fields are emitted in sorted order so the expression is deterministic.
func buildUpdateExpression(updates map[string]string) (string,
	map[string]string,
	map[string]types.AttributeValue,
	error) {

	if len(updates) == 0 {
		return "", nil, nil, errors.New("no updates provided")
	}

	fields := make([]string, 0, len(updates))
	for field := range updates {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	setClauses := make([]string, 0, len(updates))
	exprAttrNames := make(map[string]string, len(updates))
	exprAttrValues := make(map[string]types.AttributeValue, len(updates))

	for i, field := range fields {
		placeholderName := fmt.Sprintf("#f%d", i)
		placeholderValue := fmt.Sprintf(":v%d", i)

		setClauses = append(setClauses, fmt.Sprintf("%s = %s", placeholderName, placeholderValue))
		exprAttrNames[placeholderName] = field
		exprAttrValues[placeholderValue] = &types.AttributeValueMemberS{Value: updates[field]}
	}

	return "SET " + strings.Join(setClauses, ", "), exprAttrNames, exprAttrValues, nil
}
