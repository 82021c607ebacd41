package lock

import (
	"context"
	"fmt"
	"reservations/pkg/model"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const SlotLocksCollection = "Slot_locks"

// MongoLocker stores one document per held key. The unique _id makes the
// insert the atomic test-and-set; a TTL index on expires_at reaps locks
// left behind by crashed holders.
type MongoLocker struct {
	collection *mongo.Collection
	ttl        time.Duration
	wait       time.Duration
}

func NewMongoLocker(db *mongo.Database, ttl time.Duration, wait time.Duration) *MongoLocker {
	return &MongoLocker{
		collection: db.Collection(SlotLocksCollection),
		ttl:        ttl,
		wait:       wait,
	}
}

func (l *MongoLocker) Acquire(ctx context.Context, key string) (Lease, error) {
	return acquireWithRetry(ctx, l.wait, func(ctx context.Context) (Lease, bool, error) {
		return l.tryAcquire(ctx, key)
	})
}

func (l *MongoLocker) tryAcquire(ctx context.Context, key string) (Lease, bool, error) {
	now := time.Now().UTC()
	doc := &model.SlotLock{
		ID:        key,
		Token:     uuid.NewString(),
		ExpiresAt: now.Add(l.ttl),
		CreatedAt: now,
	}

	_, err := l.collection.InsertOne(ctx, doc)
	if err == nil {
		return &mongoLease{collection: l.collection, key: key, token: doc.Token}, false, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return nil, false, fmt.Errorf("failed to acquire slot lock %s: %w", key, err)
	}

	// The TTL monitor only runs periodically, so clear an expired holder here.
	res, err := l.collection.DeleteOne(ctx, bson.M{"_id": key, "expires_at": bson.M{"$lte": now}})
	if err != nil {
		return nil, false, fmt.Errorf("failed to clear expired slot lock %s: %w", key, err)
	}
	if res.DeletedCount > 0 {
		return l.tryAcquire(ctx, key)
	}
	return nil, true, nil
}

type mongoLease struct {
	collection *mongo.Collection
	key        string
	token      string
}

func (m *mongoLease) Key() string {
	return m.key
}

func (m *mongoLease) Release(ctx context.Context) error {
	_, err := m.collection.DeleteOne(ctx, bson.M{"_id": m.key, "token": m.token})
	if err != nil {
		return fmt.Errorf("failed to release slot lock %s: %w", m.key, err)
	}
	return nil
}
