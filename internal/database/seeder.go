// server/internal/database/seeder.go
package database

import (
	"context"
	"strings"
	"time"

	"disaster-relief-api-server/config"
	"disaster-relief-api-server/internal/auth"
	"disaster-relief-api-server/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SeedAdmin creates the default admin user unless one already exists.
// Admins are seed-only; self-registration is restricted to volunteers.
func SeedAdmin(ctx context.Context, db *mongo.Database, cfg config.Config, log zerolog.Logger) error {
	users := db.Collection(CollUsers)

	count, err := users.CountDocuments(ctx, bson.M{"email": cfg.Admin.Email})
	if err != nil {
		return err
	}
	if count > 0 {
		log.Info().Msg("admin already exists, seeding skipped")
		return nil
	}
	if cfg.Admin.Password == "" {
		log.Warn().Msg("no admin password configured, admin not seeded")
		return nil
	}

	hashedPassword, err := auth.HashPassword(cfg.Admin.Password)
	if err != nil {
		return err
	}

	admin := models.User{
		UserID:       "ADM-" + strings.ToUpper(uuid.New().String()[:8]),
		Name:         cfg.Admin.Name,
		Email:        cfg.Admin.Email,
		PasswordHash: hashedPassword,
		Role:         models.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := users.InsertOne(ctx, admin); err != nil {
		return err
	}

	log.Info().Str("email", cfg.Admin.Email).Msg("admin seeded")
	return nil
}

// SeedReliefCentres populates a starter set of centres when the collection is
// empty, so the nearest-centre flow works out of the box.
func SeedReliefCentres(ctx context.Context, db *mongo.Database, log zerolog.Logger) error {
	centres := db.Collection(CollReliefCentres)

	count, err := centres.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count > 0 {
		log.Info().Int64("count", count).Msg("relief centres already present, seeding skipped")
		return nil
	}

	starter := []struct {
		name     string
		lat, lng float64
	}{
		{"Guduvancherry Central Relief Centre", 12.6939, 79.9757},
		{"Maraimalai Nagar Emergency Shelter", 12.8000, 80.0000},
		{"Potheri Relief Camp", 12.8500, 80.0500},
		{"Singaperumal Koil Relief Centre", 12.7500, 79.9500},
		{"Padappai Emergency Camp", 12.9000, 80.1000},
		{"Chengalpattu District Relief Centre", 12.6925, 79.9770},
		{"Tambaram Relief Centre", 12.9250, 80.1000},
	}

	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(starter))
	for _, s := range starter {
		docs = append(docs, models.ReliefCentre{
			CentreID:  "RC-" + strings.ToUpper(uuid.New().String()[:8]),
			Name:      s.name,
			Latitude:  s.lat,
			Longitude: s.lng,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	if _, err := centres.InsertMany(ctx, docs); err != nil {
		return err
	}

	log.Info().Int("count", len(docs)).Msg("relief centres seeded")
	return nil
}
