package apicache

import (
	"context"

	"github.com/showgrid/showgrid-go/querycache"
)

// removeFromCachedLists applies the speculative removal of one record
// to every cached list entry the queries instance has issued. Entries
// that do not contain the record are left untouched; touched entries
// are snapshotted by the transaction so a failed mutation restores
// them exactly.
func removeFromCachedLists[T any](ctx context.Context, txn *Txn, q *Queries[T], idOf func(T) string, id string) error {
	for _, key := range q.TrackedListKeys() {
		res, ok := querycache.Lookup[ListResult[T]](ctx, q.cache, key)
		if !ok {
			continue
		}

		filtered := make([]T, 0, len(res.Records))
		for _, record := range res.Records {
			if idOf(record) == id {
				continue
			}
			filtered = append(filtered, record)
		}
		if len(filtered) == len(res.Records) {
			continue
		}

		res.Records = filtered
		if res.Page.Total > 0 {
			res.Page.Total--
		}
		// Keep the pagination pair consistent with the adjusted counts;
		// a server-reported flag is recomputed the same way the facade
		// derives it when the flag is absent.
		res.Page.HasMore = res.Page.Offset+len(filtered) < res.Page.Total
		if err := txn.Set(ctx, key, res); err != nil {
			return err
		}
	}
	return nil
}

// replaceInCachedLists applies the speculative replacement of one
// record to every cached list entry containing it.
func replaceInCachedLists[T any](ctx context.Context, txn *Txn, q *Queries[T], idOf func(T) string, id string, replacement T) error {
	for _, key := range q.TrackedListKeys() {
		res, ok := querycache.Lookup[ListResult[T]](ctx, q.cache, key)
		if !ok {
			continue
		}

		touched := false
		updated := make([]T, len(res.Records))
		for i, record := range res.Records {
			if idOf(record) == id {
				updated[i] = replacement
				touched = true
			} else {
				updated[i] = record
			}
		}
		if !touched {
			continue
		}

		res.Records = updated
		if err := txn.Set(ctx, key, res); err != nil {
			return err
		}
	}
	return nil
}
