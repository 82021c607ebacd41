package repository

import (
	"context"
	"errors"
	"fmt"
	rideserrors "reservations/internal/rides/errors"
	"reservations/pkg/config"
	mongotx "reservations/pkg/db/mongo"
	"reservations/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Rides"
)

type RideRepository interface {
	Create(ctx context.Context, ride *model.Ride) error
	FindByID(ctx context.Context, id string) (*model.Ride, error)
	FindAll(ctx context.Context, status string, limit int, offset int64) ([]*model.Ride, error)
	Count(ctx context.Context, status string) (int64, error)
	// UpdateIfVersion writes status and passengers only when the stored
	// version still equals ride.Version, then bumps ride.Version.
	UpdateIfVersion(ctx context.Context, ride *model.Ride) error
	Delete(ctx context.Context, id string) error
}

type mongoRideRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRideRepository(cfg *config.Config) RideRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRideRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoRideRepository) Create(ctx context.Context, ride *model.Ride) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	ride.CreatedAt = now
	ride.UpdatedAt = now
	ride.Version = 1
	if ride.Passengers == nil {
		ride.Passengers = []model.PassengerBooking{}
	}

	result, err := r.collection.InsertOne(ctx, ride)
	if err != nil {
		return fmt.Errorf("failed to create ride: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		ride.ID = oid.Hex()
	}
	return nil
}

func (r *mongoRideRepository) FindByID(ctx context.Context, id string) (*model.Ride, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", rideserrors.ErrInvalidID, id)
	}

	var ride model.Ride
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&ride)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, rideserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find ride: %w", err)
	}

	return &ride, nil
}

func statusFilter(status string) bson.M {
	if status == "" {
		return bson.M{}
	}
	return bson.M{"status": status}
}

func (r *mongoRideRepository) FindAll(ctx context.Context, status string, limit int, offset int64) ([]*model.Ride, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "departure_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, statusFilter(status), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find rides: %w", err)
	}
	defer cursor.Close(ctx)

	var rides []*model.Ride
	if err = cursor.All(ctx, &rides); err != nil {
		return nil, fmt.Errorf("failed to decode rides: %w", err)
	}

	return rides, nil
}

func (r *mongoRideRepository) Count(ctx context.Context, status string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, statusFilter(status))
	if err != nil {
		return 0, fmt.Errorf("failed to count rides: %w", err)
	}
	return count, nil
}

func (r *mongoRideRepository) UpdateIfVersion(ctx context.Context, ride *model.Ride) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(ride.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", rideserrors.ErrInvalidID, ride.ID)
	}

	updatedAt := time.Now().UTC().Truncate(time.Millisecond)
	filter := bson.M{"_id": objectID, "version": ride.Version}
	update := bson.M{
		"$set": bson.M{
			"status":     ride.Status,
			"passengers": ride.Passengers,
			"updated_at": updatedAt,
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update ride: %w", err)
	}

	if result.MatchedCount == 0 {
		exists, err := r.collection.CountDocuments(ctx, bson.M{"_id": objectID})
		if err != nil {
			return fmt.Errorf("failed to check ride: %w", err)
		}
		if exists == 0 {
			return rideserrors.ErrNotFound
		}
		return rideserrors.ErrVersionConflict
	}

	ride.Version++
	ride.UpdatedAt = updatedAt
	return nil
}

func (r *mongoRideRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", rideserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete ride: %w", err)
	}

	if result.DeletedCount == 0 {
		return rideserrors.ErrNotFound
	}

	return nil
}
