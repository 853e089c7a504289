// Package update implements the deferred-update queue that batches writes
// to live surface objects.
//
// Updates are queued instead of applied synchronously and run together when
// the queue is flushed, typically once per rendering opportunity:
//
//	update.Default().EnqueueKeyed(node, func() error {
//	    return surface.SetText(handle, "42")
//	})
//	...
//	update.Flush(ctx)
//
// Updates run in the order they were first enqueued. A keyed update replaces
// any update still pending under the same key, keeping the original position,
// so several writes to one node before a flush collapse into the last one.
// Updates enqueued while a flush is running are held for the next flush.
package update
