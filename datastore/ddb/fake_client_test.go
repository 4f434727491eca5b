/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type fakeTable struct {
	pk, sk string
	items  map[string]map[string]types.AttributeValue
}

// fakeClient is an in-memory stand-in for the DynamoDB API covering the
// expressions the store emits.
type fakeClient struct {
	mu     sync.Mutex
	tables map[string]*fakeTable

	queryErrs       []error // returned by successive Query calls before succeeding
	queryCalls      int
	unprocessedOnce bool
	batchCalls      int
}

func newFakeClient() *fakeClient {
	return &fakeClient{tables: make(map[string]*fakeTable)}
}

func str(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (t *fakeTable) key(item map[string]types.AttributeValue) string {
	return str(item[t.pk]) + "\x00" + str(item[t.sk])
}

func (f *fakeClient) table(name *string) *fakeTable {
	t, ok := f.tables[aws.ToString(name)]
	if !ok {
		panic("fake: unknown table " + aws.ToString(name))
	}
	return t
}

func (f *fakeClient) CreateTable(ctx context.Context, in *sdk.CreateTableInput, _ ...func(*sdk.Options)) (*sdk.CreateTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := aws.ToString(in.TableName)
	if _, ok := f.tables[name]; ok {
		return nil, &types.ResourceInUseException{Message: aws.String("table exists")}
	}
	t := &fakeTable{items: make(map[string]map[string]types.AttributeValue)}
	for _, ks := range in.KeySchema {
		if ks.KeyType == types.KeyTypeHash {
			t.pk = aws.ToString(ks.AttributeName)
		} else {
			t.sk = aws.ToString(ks.AttributeName)
		}
	}
	f.tables[name] = t
	return &sdk.CreateTableOutput{}, nil
}

func (f *fakeClient) DeleteTable(ctx context.Context, in *sdk.DeleteTableInput, _ ...func(*sdk.Options)) (*sdk.DeleteTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := aws.ToString(in.TableName)
	if _, ok := f.tables[name]; !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("no table")}
	}
	delete(f.tables, name)
	return &sdk.DeleteTableOutput{}, nil
}

func (f *fakeClient) DescribeTable(ctx context.Context, in *sdk.DescribeTableInput, _ ...func(*sdk.Options)) (*sdk.DescribeTableOutput, error) {
	return &sdk.DescribeTableOutput{Table: &types.TableDescription{
		TableName:   in.TableName,
		TableStatus: types.TableStatusActive,
	}}, nil
}

func (f *fakeClient) PutItem(ctx context.Context, in *sdk.PutItemInput, _ ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.table(in.TableName)
	k := t.key(in.Item)
	if _, exists := t.items[k]; exists && strings.HasPrefix(aws.ToString(in.ConditionExpression), "attribute_not_exists") {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("exists")}
	}
	t.items[k] = in.Item
	return &sdk.PutItemOutput{}, nil
}

func (f *fakeClient) UpdateItem(ctx context.Context, in *sdk.UpdateItemInput, _ ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.table(in.TableName)
	k := t.key(in.Key)
	item, exists := t.items[k]
	if !exists {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("missing")}
	}
	clauses := strings.Split(strings.TrimPrefix(aws.ToString(in.UpdateExpression), "SET "), ", ")
	for _, c := range clauses {
		parts := strings.SplitN(c, " = ", 2)
		item[in.ExpressionAttributeNames[parts[0]]] = in.ExpressionAttributeValues[parts[1]]
	}
	return &sdk.UpdateItemOutput{}, nil
}

func (f *fakeClient) DeleteItem(ctx context.Context, in *sdk.DeleteItemInput, _ ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.table(in.TableName)
	delete(t.items, t.key(in.Key))
	return &sdk.DeleteItemOutput{}, nil
}

func (f *fakeClient) BatchWriteItem(ctx context.Context, in *sdk.BatchWriteItemInput, _ ...func(*sdk.Options)) (*sdk.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls++
	out := &sdk.BatchWriteItemOutput{}
	for name, reqs := range in.RequestItems {
		t := f.table(aws.String(name))
		if f.unprocessedOnce && len(reqs) > 1 {
			f.unprocessedOnce = false
			out.UnprocessedItems = map[string][]types.WriteRequest{name: reqs[1:]}
			reqs = reqs[:1]
		}
		for _, r := range reqs {
			if r.DeleteRequest != nil {
				delete(t.items, t.key(r.DeleteRequest.Key))
			}
		}
	}
	return out, nil
}

func (f *fakeClient) Query(ctx context.Context, in *sdk.QueryInput, _ ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryCalls++
	if len(f.queryErrs) > 0 {
		err := f.queryErrs[0]
		f.queryErrs = f.queryErrs[1:]
		return nil, err
	}

	t := f.table(in.TableName)
	owner := str(in.ExpressionAttributeValues[":owner"])

	var matched []map[string]types.AttributeValue
	for _, item := range t.items {
		if str(item[t.pk]) == owner {
			matched = append(matched, item)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return str(matched[i][t.sk]) < str(matched[j][t.sk]) })

	if in.ExclusiveStartKey != nil {
		after := str(in.ExclusiveStartKey[t.sk])
		for i, item := range matched {
			if str(item[t.sk]) > after {
				matched = matched[i:]
				break
			}
			if i == len(matched)-1 {
				matched = nil
			}
		}
	}

	out := &sdk.QueryOutput{}
	limit := int(aws.ToInt32(in.Limit))
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
		last := matched[limit-1]
		out.LastEvaluatedKey = map[string]types.AttributeValue{t.pk: last[t.pk], t.sk: last[t.sk]}
	}
	out.Items = matched
	return out, nil
}
