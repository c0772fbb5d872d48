package keystore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const defaultMongoCollection = "recovery_options"

// MongoStore implements Store and Updater with one document per name.
type MongoStore struct {
	coll    *mongo.Collection
	retries int
}

type mongoDocument struct {
	Name    string `bson:"_id"`
	Value   []byte `bson:"value"`
	Version int64  `bson:"version"`
}

type MongoOption func(*mongoStoreOptions)

type mongoStoreOptions struct {
	collection string
	retries    int
}

// WithMongoCollection overrides the collection name.
func WithMongoCollection(name string) MongoOption {
	return func(o *mongoStoreOptions) {
		if name != "" {
			o.collection = name
		}
	}
}

// WithMongoRetries bounds the compare-and-swap retry loop.
func WithMongoRetries(n int) MongoOption {
	return func(o *mongoStoreOptions) {
		if n > 0 {
			o.retries = n
		}
	}
}

// NewMongoStore uses the given database. The caller owns the client.
func NewMongoStore(db *mongo.Database, opts ...MongoOption) *MongoStore {
	o := &mongoStoreOptions{
		collection: defaultMongoCollection,
		retries:    defaultRetries,
	}
	for _, opt := range opts {
		opt(o)
	}
	return &MongoStore{
		coll:    db.Collection(o.collection),
		retries: o.retries,
	}
}

func (s *MongoStore) load(ctx context.Context, name string) (*mongoDocument, error) {
	var doc mongoDocument
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: name}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *MongoStore) Get(ctx context.Context, name string, def []byte) ([]byte, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	doc, err := s.load(ctx, name)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return def, nil
	}
	return doc.Value, nil
}

// Set replaces the value and bumps the version so in-flight Updates retry.
func (s *MongoStore) Set(ctx context.Context, name string, value []byte) error {
	if name == "" {
		return ErrEmptyName
	}
	_, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: name}},
		bson.D{
			{Key: "$set", Value: bson.D{{Key: "value", Value: nonNil(value)}}},
			{Key: "$inc", Value: bson.D{{Key: "version", Value: int64(1)}}},
		},
		options.UpdateOne().SetUpsert(true),
	)
	return err
}

// Update reads the document, applies fn and writes back only if the version
// is unchanged. A missing document is created with an insert, which fails on
// a duplicate _id if another writer got there first.
func (s *MongoStore) Update(ctx context.Context, name string, fn UpdateFunc) error {
	if name == "" {
		return ErrEmptyName
	}

	for range s.retries {
		doc, err := s.load(ctx, name)
		if err != nil {
			return err
		}

		var current []byte
		if doc != nil {
			current = doc.Value
		}

		next, err := fn(current)
		if err != nil {
			return errors.Join(ErrAborted, err)
		}

		if doc == nil {
			_, err := s.coll.InsertOne(ctx, mongoDocument{Name: name, Value: nonNil(next), Version: 1})
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			return err
		}

		res, err := s.coll.UpdateOne(ctx,
			bson.D{{Key: "_id", Value: name}, {Key: "version", Value: doc.Version}},
			bson.D{{Key: "$set", Value: bson.D{
				{Key: "value", Value: nonNil(next)},
				{Key: "version", Value: doc.Version + 1},
			}}},
		)
		if err != nil {
			return err
		}
		if res.MatchedCount == 1 {
			return nil
		}
	}

	return ErrConflict
}
