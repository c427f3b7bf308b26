package userstore

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// Subscribe registers onChange to run whenever any account document
// changes, using a change stream on the users collection. It returns an
// unsubscribe func that stops the stream; Subscribe also stops when ctx
// is cancelled.
//
// Observers must treat each notification as "recompute from scratch":
// a single award can reorder the whole leaderboard, so incremental
// patching is never attempted.
func (s *Store) Subscribe(ctx context.Context, onChange func()) (func(), error) {
	stream, err := s.c.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, err
	}

	wctx, cancel := context.WithCancel(ctx)
	go func() {
		defer stream.Close(context.Background())
		for stream.Next(wctx) {
			onChange()
		}
	}()

	return cancel, nil
}
