/*
Package errors provides semantic error types for eavstore.

Every failure the attribute layer can surface has a sentinel and a typed
error. Check them with the standard errors.Is() function or the helpers:

	var (
	    ErrConfig            = errors.New("invalid companion store configuration")
	    ErrUnknownMember     = errors.New("unknown member")
	    ErrOwnerNotPersisted = errors.New("owner not persisted")
	    ErrPersist           = errors.New("companion persist failed")
	    ErrInvalidInput      = errors.New("invalid input")
	    ErrNotFound          = errors.New("entity not found")
	)

Usage:

	value, ok, err := rec.Get(ctx, "nickname")
	if err != nil {
	    if errors.IsUnknownMember(err) {
	        // no companion store owns the name and the owner does not serve it
	    }
	    return err
	}

	if err := rec.Save(ctx); errors.IsPersistError(err) {
	    // the companion backend failed; staged writes that were not
	    // flushed are still buffered on rec
	}

PersistError unwraps to the backend error, so driver specific checks keep
working through errors.As.
*/
package errors
