package closer

// CloseAll closes every entry in the order given, which must already be
// close order. err is the error the scope body failed with, if any.
//
// Each entry is closed exactly once whatever happened before it. The first
// error seen, err itself or else the earliest close failure, is returned as
// primary; every later close failure is wrapped with its entry's hint and
// appended to the primary's suppressed list. If nothing failed the result
// is nil, and if only err failed it is returned unchanged.
func CloseAll(entries []Entry, err error) error {
	return closeAll(entries, err, func(e Entry) error { return Close(e.Resource) })
}

func closeAll(entries []Entry, err error, closeOne func(Entry) error) error {
	acc := aggregate{err: err}
	for _, e := range entries {
		if cerr := safeClose(e, closeOne); cerr != nil {
			acc.add(&Error{Cause: cerr, Hint: e.Hint})
		}
	}
	return acc.err
}

// safeClose turns a panicking close into that entry's close error.
func safeClose(e Entry, closeOne func(Entry) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(r)
		}
	}()
	return closeOne(e)
}
