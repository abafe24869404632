// server/internal/database/dispatch_store.go
package database

import (
	"context"
	"strings"
	"time"

	"disaster-relief-api-server/internal/dispatch"
	"disaster-relief-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// DispatchStore is the mongo-backed implementation of dispatch.Store.
type DispatchStore struct {
	db *mongo.Database
}

func NewDispatchStore(db *mongo.Database) *DispatchStore {
	return &DispatchStore{db: db}
}

func (s *DispatchStore) GetRequest(ctx context.Context, requestID string) (*models.ReliefRequest, error) {
	var req models.ReliefRequest
	err := s.db.Collection(CollReliefRequests).
		FindOne(ctx, bson.M{"requestID": requestID}).Decode(&req)
	if err == mongo.ErrNoDocuments {
		return nil, dispatch.ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *DispatchStore) TransitionRequest(ctx context.Context, requestID string, from, to models.RequestStatus) error {
	res, err := s.db.Collection(CollReliefRequests).UpdateOne(ctx,
		bson.M{"requestID": requestID, "status": from},
		bson.M{"$set": bson.M{"status": to}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return dispatch.ErrConflict
	}
	return nil
}

func (s *DispatchStore) CreateDispatch(ctx context.Context, d *models.Dispatch) error {
	_, err := s.db.Collection(CollDispatches).InsertOne(ctx, d)
	if mongo.IsDuplicateKeyError(err) {
		// Which uniqueness guard fired decides the conflict we report.
		if strings.Contains(err.Error(), IdxActiveVolunteer) {
			return dispatch.ErrVolunteerBusy
		}
		return dispatch.ErrAlreadyDispatched
	}
	return err
}

func (s *DispatchStore) GetDispatch(ctx context.Context, dispatchID string) (*models.Dispatch, error) {
	return s.findDispatch(ctx, bson.M{"dispatchID": dispatchID})
}

func (s *DispatchStore) GetDispatchByRequest(ctx context.Context, requestID string) (*models.Dispatch, error) {
	return s.findDispatch(ctx, bson.M{"requestID": requestID})
}

func (s *DispatchStore) GetActiveDispatchByVolunteer(ctx context.Context, volunteerID string) (*models.Dispatch, error) {
	return s.findDispatch(ctx, bson.M{
		"volunteerID": volunteerID,
		"status":      bson.M{"$in": bson.A{models.DispatchAssigned, models.DispatchInProgress}},
	})
}

func (s *DispatchStore) findDispatch(ctx context.Context, filter bson.M) (*models.Dispatch, error) {
	var d models.Dispatch
	err := s.db.Collection(CollDispatches).FindOne(ctx, filter).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, dispatch.ErrDispatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *DispatchStore) TransitionDispatch(ctx context.Context, dispatchID string, from, to models.DispatchStatus) error {
	res, err := s.db.Collection(CollDispatches).UpdateOne(ctx,
		bson.M{"dispatchID": dispatchID, "status": from},
		bson.M{"$set": bson.M{"status": to}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return dispatch.ErrConflict
	}
	return nil
}

func (s *DispatchStore) SetDispatchLocation(ctx context.Context, dispatchID string, lat, lng float64, at time.Time) error {
	// Status is part of the filter so a completion racing this write cannot
	// put coordinates onto a terminal dispatch.
	res, err := s.db.Collection(CollDispatches).UpdateOne(ctx,
		bson.M{
			"dispatchID": dispatchID,
			"status":     bson.M{"$in": bson.A{models.DispatchAssigned, models.DispatchInProgress}},
		},
		bson.M{"$set": bson.M{
			"volunteerLatitude":  lat,
			"volunteerLongitude": lng,
			"locationUpdatedAt":  at,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, err := s.findDispatch(ctx, bson.M{"dispatchID": dispatchID}); err != nil {
			return err
		}
		return dispatch.ErrDispatchTerminal
	}
	return nil
}

func (s *DispatchStore) GetRequesterByDevice(ctx context.Context, deviceID string) (*models.Requester, error) {
	var requester models.Requester
	err := s.db.Collection(CollRequesters).
		FindOne(ctx, bson.M{"deviceID": deviceID}).Decode(&requester)
	if err == mongo.ErrNoDocuments {
		return nil, dispatch.ErrInvalidDevice
	}
	if err != nil {
		return nil, err
	}
	return &requester, nil
}

func (s *DispatchStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.db.Collection(CollUsers).FindOne(ctx, bson.M{"userID": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, dispatch.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *DispatchStore) GetCentre(ctx context.Context, centreID string) (*models.ReliefCentre, error) {
	var centre models.ReliefCentre
	err := s.db.Collection(CollReliefCentres).
		FindOne(ctx, bson.M{"centreID": centreID}).Decode(&centre)
	if err == mongo.ErrNoDocuments {
		return nil, dispatch.ErrCentreNotFound
	}
	if err != nil {
		return nil, err
	}
	return &centre, nil
}
