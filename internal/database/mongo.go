// server/internal/database/mongo.go
package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	CollUsers          = "users"
	CollRequesters     = "requesters"
	CollReliefCentres  = "relief_centres"
	CollReliefRequests    = "relief_requests"
	CollDispatches        = "dispatches"
	CollVolunteerProfiles = "volunteer_profiles"
)

// Index names referenced when translating duplicate-key errors.
const (
	IdxDispatchRequest  = "uniq_dispatch_request"
	IdxActiveVolunteer  = "uniq_active_volunteer_dispatch"
)

// Connect opens a client and pings the deployment.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client.Database(dbName), nil
}

// EnsureIndexes creates the indexes the dispatch core depends on for
// correctness. The unique index on dispatches.requestID is the atomic
// single-dispatch-per-request guard; the partial unique index on volunteerID
// enforces one active dispatch per volunteer by construction.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := func(key string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: key, Value: 1}},
			Options: options.Index().SetUnique(true),
		}
	}

	if _, err := db.Collection(CollUsers).Indexes().CreateOne(ctx, unique("email")); err != nil {
		return err
	}
	if _, err := db.Collection(CollRequesters).Indexes().CreateOne(ctx, unique("deviceID")); err != nil {
		return err
	}
	if _, err := db.Collection(CollReliefCentres).Indexes().CreateOne(ctx, unique("centreID")); err != nil {
		return err
	}
	if _, err := db.Collection(CollReliefRequests).Indexes().CreateOne(ctx, unique("requestID")); err != nil {
		return err
	}

	dispatchIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "dispatchID", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "requestID", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(IdxDispatchRequest),
		},
		{
			Keys: bson.D{{Key: "volunteerID", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName(IdxActiveVolunteer).
				SetPartialFilterExpression(bson.M{
					"status": bson.M{"$in": bson.A{"ASSIGNED", "IN_PROGRESS"}},
				}),
		},
	}
	if _, err := db.Collection(CollDispatches).Indexes().CreateMany(ctx, dispatchIndexes); err != nil {
		return err
	}

	return nil
}
