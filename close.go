package quarry

import "context"

// Close marks the db closed. Later operations fail with ErrClosed; cursors that
// are still open are reported through the logger and keep working until closed.
// Closing twice is a no-op.
func (db *DB) Close() error {
	if db == nil || !db.closed.CompareAndSwap(false, true) {
		return nil
	}
	db.logger.LogLeakedCursors(context.Background(), db.ix.OpenCursors())
	return nil
}
