// Package mongo provides a kv.Store on a MongoDB collection. Multi-key writes
// run inside a transaction, so the server must be a replica set; change
// notifications come from the native change stream.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/syntrixbase/wordlog/internal/kv/types"
)

// DefaultCollection holds the entries when no collection is configured.
const DefaultCollection = "kv"

type entry struct {
	Key       string `bson:"_id"`
	Value     []byte `bson:"value"`
	UpdatedAt int64  `bson:"updated_at"`
}

// changeStream is the subset of *mongo.ChangeStream the watcher uses.
type changeStream interface {
	Next(ctx context.Context) bool
	Decode(val interface{}) error
	Err() error
	Close(ctx context.Context) error
}

type changeEvent struct {
	OperationType string `bson:"operationType"`
	FullDocument  *entry `bson:"fullDocument"`
	DocumentKey   struct {
		ID string `bson:"_id"`
	} `bson:"documentKey"`
	ClusterTime primitive.Timestamp `bson:"clusterTime"`
}

type store struct {
	client     *mongo.Client
	coll       *mongo.Collection
	closed     atomic.Bool
	openStream func(ctx context.Context, pipeline mongo.Pipeline, opts *options.ChangeStreamOptions) (changeStream, error)
}

// Open connects to uri and returns a store on database dbName.
func Open(ctx context.Context, uri, dbName, collection string) (types.Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return newStore(client, client.Database(dbName), collection), nil
}

func newStore(client *mongo.Client, db *mongo.Database, collection string) *store {
	if collection == "" {
		collection = DefaultCollection
	}
	s := &store{client: client, coll: db.Collection(collection)}
	s.openStream = func(ctx context.Context, pipeline mongo.Pipeline, opts *options.ChangeStreamOptions) (changeStream, error) {
		return s.coll.Watch(ctx, pipeline, opts)
	}
	return s
}

func (s *store) Get(ctx context.Context, keys ...string) (map[string][]byte, error) {
	if s.closed.Load() {
		return nil, types.ErrClosed
	}
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": keys}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []entry
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	for _, d := range docs {
		out[d.Key] = d.Value
	}
	return out, nil
}

func (s *store) Set(ctx context.Context, entries map[string][]byte) error {
	if s.closed.Load() {
		return types.ErrClosed
	}
	for k := range entries {
		if err := types.ValidateKeys(k); err != nil {
			return err
		}
	}
	if len(entries) == 0 {
		return nil
	}

	now := time.Now().UnixMilli()
	return s.transaction(ctx, func(sessCtx mongo.SessionContext) error {
		for k, v := range entries {
			if v == nil {
				v = []byte{}
			}
			_, err := s.coll.ReplaceOne(sessCtx,
				bson.M{"_id": k},
				entry{Key: k, Value: v, UpdatedAt: now},
				options.Replace().SetUpsert(true),
			)
			if err != nil {
				return fmt.Errorf("write %q: %w", k, err)
			}
		}
		return nil
	})
}

func (s *store) Remove(ctx context.Context, keys ...string) error {
	if s.closed.Load() {
		return types.ErrClosed
	}
	if len(keys) == 0 {
		return nil
	}
	return s.transaction(ctx, func(sessCtx mongo.SessionContext) error {
		_, err := s.coll.DeleteMany(sessCtx, bson.M{"_id": bson.M{"$in": keys}})
		return err
	})
}

func (s *store) transaction(ctx context.Context, fn func(sessCtx mongo.SessionContext) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}

func (s *store) Subscribe(ctx context.Context, key string, fn func(types.Change)) error {
	if s.closed.Load() {
		return types.ErrClosed
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "documentKey._id", Value: key}}}},
	}
	// We need 'updateLookup' to get the full document after an update
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	stream, err := s.openStream(ctx, pipeline, opts)
	if err != nil {
		return fmt.Errorf("failed to watch %q: %w", key, err)
	}

	go func() {
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			var ev changeEvent
			if err := stream.Decode(&ev); err != nil {
				slog.Warn("Dropping undecodable change event", "key", key, "error", err)
				continue
			}
			change, ok := toChange(ev)
			if !ok || change.Key != key {
				continue
			}
			fn(change)
		}
		if err := stream.Err(); err != nil && !errors.Is(err, context.Canceled) {
			slog.Warn("Change stream ended", "key", key, "error", err)
		}
	}()

	return nil
}

func toChange(ev changeEvent) (types.Change, bool) {
	change := types.Change{Key: ev.DocumentKey.ID, Timestamp: time.Now()}
	if ev.ClusterTime.T != 0 {
		change.Timestamp = time.Unix(int64(ev.ClusterTime.T), 0)
	}

	switch ev.OperationType {
	case "insert", "update", "replace":
		if ev.FullDocument == nil {
			// Document removed before the lookup ran; a delete event follows.
			return types.Change{}, false
		}
		change.Value = ev.FullDocument.Value
	case "delete":
		change.Deleted = true
	default:
		return types.Change{}, false
	}
	return change, true
}

func (s *store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
