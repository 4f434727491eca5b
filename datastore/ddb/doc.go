/*
Package ddb provides a DynamoDB implementation of the DataStore interface.

Each companion store maps to its own table. The configured foreign key is
the partition key and the name field is the sort key, so all attributes of
one owner live in a single partition:

	user_id (HASH) | name (RANGE) | value | id | created_at | updated_at
	"42"           | "nickname"   | "Chip"| ...

The store supports:
  - Conditional creates and updates (AlreadyExistsError / NotFoundError)
  - Paginated owner reads with retry on throttling
  - Batched cascade deletes with unprocessed item resubmission
  - Table creation from the schema package

Paging and retries are configurable:

	store, err := ddb.NewDynamodbDataStore(ctx, key, secret, region,
	    ddb.WithQueryOptions(
	        storagemodels.WithPageSize(25),
	        storagemodels.WithMaxRetries(3),
	    ),
	)
*/
package ddb
