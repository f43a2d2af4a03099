package history

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/flowlayout/pkg/errors"
)

// MongoOptions configures [OpenMongo].
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
	MaxEntries int

	// Timeout bounds connecting and closing. Default 5s.
	Timeout time.Duration
}

// mongoEntry is the document representation of an [Entry]. Data is kept
// as a string so any JSON document survives unchanged.
type mongoEntry struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Source    string    `bson:"source"`
	Data      string    `bson:"data"`
	CreatedAt time.Time `bson:"created_at"`
}

func (m mongoEntry) entry() Entry {
	return Entry{
		ID:        m.ID,
		Name:      m.Name,
		Source:    Source(m.Source),
		Data:      []byte(m.Data),
		CreatedAt: m.CreatedAt.UTC(),
	}
}

// MongoStore keeps entries in a MongoDB collection.
type MongoStore struct {
	client  *mongo.Client
	coll    *mongo.Collection
	max     int
	timeout time.Duration
}

// OpenMongo connects, pings the primary and ensures a created_at index.
func OpenMongo(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mongo connection string cannot be empty")
	}
	if opts.Database == "" {
		opts.Database = "flowlayout"
	}
	if opts.Collection == "" {
		opts.Collection = "history"
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = MaxEntries
	}
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}

	cctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	client, err := mongo.Connect(cctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect mongo client")
	}
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongo")
	}

	coll := client.Database(opts.Database).Collection(opts.Collection)
	_, err = coll.Indexes().CreateOne(cctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create history index")
	}

	return &MongoStore{client: client, coll: coll, max: opts.MaxEntries, timeout: opts.Timeout}, nil
}

// Add upserts e and deletes documents beyond the limit.
func (s *MongoStore) Add(ctx context.Context, e Entry) (Entry, error) {
	e, err := prepare(e)
	if err != nil {
		return Entry{}, err
	}

	doc := mongoEntry{ID: e.ID, Name: e.Name, Source: string(e.Source), Data: string(e.Data), CreatedAt: e.CreatedAt}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": e.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return Entry{}, errors.Wrap(errors.ErrCodeStorage, err, "insert history entry")
	}

	cur, err := s.coll.Find(ctx, bson.D{},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
			SetSkip(int64(s.max)).
			SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return Entry{}, errors.Wrap(errors.ErrCodeStorage, err, "find old history entries")
	}
	var stale []mongoEntry
	if err := cur.All(ctx, &stale); err != nil {
		return Entry{}, errors.Wrap(errors.ErrCodeStorage, err, "read old history entries")
	}
	if len(stale) > 0 {
		ids := make([]string, len(stale))
		for i, d := range stale {
			ids[i] = d.ID
		}
		if _, err := s.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
			return Entry{}, errors.Wrap(errors.ErrCodeStorage, err, "trim history")
		}
	}
	return e, nil
}

// List returns up to limit entries, newest first.
func (s *MongoStore) List(ctx context.Context, limit int) ([]Entry, error) {
	cur, err := s.coll.Find(ctx, bson.D{},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
			SetLimit(int64(limitOrMax(limit, s.max))))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list history entries")
	}
	var docs []mongoEntry
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode history entries")
	}
	out := make([]Entry, len(docs))
	for i, d := range docs {
		out[i] = d.entry()
	}
	return out, nil
}

// Get returns one entry.
func (s *MongoStore) Get(ctx context.Context, id string) (Entry, error) {
	var doc mongoEntry
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return Entry{}, notFound(id)
	}
	if err != nil {
		return Entry{}, errors.Wrap(errors.ErrCodeStorage, err, "get history entry")
	}
	return doc.entry(), nil
}

// Delete removes one entry.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete history entry")
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

// Clear removes every document of the collection.
func (s *MongoStore) Clear(ctx context.Context) (int, error) {
	res, err := s.coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeStorage, err, "clear history")
	}
	return int(res.DeletedCount), nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("close mongo client: %w", err)
	}
	return nil
}

var _ Store = (*MongoStore)(nil)
