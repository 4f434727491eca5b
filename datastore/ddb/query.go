/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/suparena/eavstore/registry"
	"github.com/suparena/eavstore/storagemodels"
)

// ListByOwner queries every item in the owner's partition, following
// LastEvaluatedKey across pages.
func (d *DynamodbDataStore) ListByOwner(ctx context.Context, store registry.CompanionStoreConfig, ownerID string) ([]storagemodels.CompanionRow, error) {
	options := d.queryOptions
	input := &sdk.QueryInput{
		TableName:                aws.String(store.Table),
		KeyConditionExpression:   aws.String("#fk = :owner"),
		ExpressionAttributeNames: map[string]string{"#fk": store.ForeignKey},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":owner": &types.AttributeValueMemberS{Value: ownerID},
		},
		Limit: aws.Int32(options.PageSize),
	}

	progress := storagemodels.QueryProgress{StartTime: time.Now()}
	var rows []storagemodels.CompanionRow
	for {
		out, err := d.queryWithRetry(ctx, input, options)
		if err != nil {
			return nil, err
		}
		progress.PagesRead++

		for _, item := range out.Items {
			row, err := unmarshalRow(store, item)
			if err != nil {
				return nil, err
			}
			rows = append(rows, row)
		}
		progress.ItemsRead = int64(len(rows))
		progress.LastPage = len(out.LastEvaluatedKey) == 0
		if options.ProgressHandler != nil {
			options.ProgressHandler(progress)
		}

		if progress.LastPage {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	d.logger.Debug("listed companion rows",
		zap.String("table", store.Table),
		zap.String("owner", ownerID),
		zap.Int("rows", len(rows)),
		zap.Int("pages", progress.PagesRead))
	return rows, nil
}

// queryWithRetry executes a query with configurable retry logic
func (d *DynamodbDataStore) queryWithRetry(
	ctx context.Context,
	input *sdk.QueryInput,
	options storagemodels.QueryOptions,
) (*sdk.QueryOutput, error) {
	var lastErr error

	for attempt := 0; attempt <= options.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		out, err := d.client.Query(ctx, input)
		if err == nil {
			return out, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			return nil, fmt.Errorf("query error: %w", err)
		}

		// Don't sleep after last attempt
		if attempt < options.MaxRetries {
			backoff := time.Duration(attempt+1) * options.RetryBackoff
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("query failed after %d retries: %w", options.MaxRetries, lastErr)
}

// isRetryableError determines if a DynamoDB error is retryable
func isRetryableError(err error) bool {
	var (
		throughput *types.ProvisionedThroughputExceededException
		limit      *types.RequestLimitExceeded
		internal   *types.InternalServerError
	)
	if errors.As(err, &throughput) || errors.As(err, &limit) || errors.As(err, &internal) {
		return true
	}

	var retryable interface{ IsRetryable() bool }
	if errors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}
