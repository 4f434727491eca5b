/*
Package storagemodels defines the data structures shared by eavstore and its
companion backends.

CompanionRow:
One persisted attribute of an owning entity:

	row := &CompanionRow{
	    OwnerID: "42",
	    Name:    "nickname",
	    Value:   "Chip",
	}

A row whose ID is empty has not been written yet. Rows are never stored with
a blank value; the attribute layer deletes them instead.

QueryOptions:
Paging and retry configuration for backends that read an owner's rows in
pages:

	opts := []QueryOption{
	    WithPageSize(25),
	    WithMaxRetries(3),
	    WithProgressHandler(progressFunc),
	}
*/
package storagemodels
