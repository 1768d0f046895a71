package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersCollection       = "users"
	RatingsCollection     = "ratings"
	ConnectionsCollection = "connections"
	BlocksCollection      = "blocks"
	ReportsCollection     = "reports"
	ActivitiesCollection  = "activities"
	AuditLogsCollection   = "audit_logs"
	MigrationsCollection  = "migrations"

	// RatingPairIndex is the compound (rater_id, rated_id) index name.
	RatingPairIndex = "rater_rated_pair"
)

type Migration struct {
	Version     int
	Description string
	Up          func(ctx context.Context, db *mongo.Database) error
	Down        func(ctx context.Context, db *mongo.Database) error
}

type MigrationOptions struct {
	// UniqueRatingPerPair makes (rater_id, rated_id) a unique index.
	UniqueRatingPerPair bool
}

type Migrator struct {
	db         *mongo.Database
	migrations []Migration
	log        logrus.FieldLogger
}

func NewMigrator(db *mongo.Database, opts MigrationOptions, log logrus.FieldLogger) *Migrator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Migrator{
		db:         db,
		migrations: getMigrations(opts),
		log:        log,
	}
}

func (m *Migrator) Up(ctx context.Context) error {
	currentVersion, err := m.getCurrentVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if migration.Version <= currentVersion {
			continue
		}

		m.log.WithField("version", migration.Version).Infof("Running migration: %s", migration.Description)

		if err := migration.Up(ctx, m.db); err != nil {
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if err := m.updateVersion(ctx, migration.Version); err != nil {
			return fmt.Errorf("failed to update migration version: %w", err)
		}
	}

	return nil
}

func (m *Migrator) Down(ctx context.Context, targetVersion int) error {
	currentVersion, err := m.getCurrentVersion(ctx)
	if err != nil {
		return err
	}

	for i := len(m.migrations) - 1; i >= 0; i-- {
		migration := m.migrations[i]
		if migration.Version > currentVersion || migration.Version <= targetVersion {
			continue
		}

		m.log.WithField("version", migration.Version).Infof("Reverting migration: %s", migration.Description)

		if err := migration.Down(ctx, m.db); err != nil {
			return fmt.Errorf("migration %d rollback failed: %w", migration.Version, err)
		}

		previousVersion := targetVersion
		if i > 0 {
			previousVersion = m.migrations[i-1].Version
		}

		if err := m.updateVersion(ctx, previousVersion); err != nil {
			return fmt.Errorf("failed to update migration version: %w", err)
		}
	}

	return nil
}

func (m *Migrator) getCurrentVersion(ctx context.Context) (int, error) {
	var result struct {
		Version int `bson:"version"`
	}

	err := m.db.Collection(MigrationsCollection).FindOne(ctx, bson.D{}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}

	return result.Version, nil
}

func (m *Migrator) updateVersion(ctx context.Context, version int) error {
	_, err := m.db.Collection(MigrationsCollection).ReplaceOne(
		ctx,
		bson.D{},
		bson.D{{Key: "version", Value: version}, {Key: "updated_at", Value: time.Now().UTC()}},
		options.Replace().SetUpsert(true),
	)
	return err
}

func getMigrations(opts MigrationOptions) []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create users indexes",
			Up:          createUsersIndexes,
			Down:        dropIndexes(UsersCollection),
		},
		{
			Version:     2,
			Description: "Create ratings indexes",
			Up: func(ctx context.Context, db *mongo.Database) error {
				return createRatingsIndexes(ctx, db, opts.UniqueRatingPerPair)
			},
			Down: dropIndexes(RatingsCollection),
		},
		{
			Version:     3,
			Description: "Create connections and blocks indexes",
			Up:          createRelationshipIndexes,
			Down: func(ctx context.Context, db *mongo.Database) error {
				if err := dropIndexes(ConnectionsCollection)(ctx, db); err != nil {
					return err
				}
				return dropIndexes(BlocksCollection)(ctx, db)
			},
		},
		{
			Version:     4,
			Description: "Create reports indexes",
			Up:          createReportsIndexes,
			Down:        dropIndexes(ReportsCollection),
		},
		{
			Version:     5,
			Description: "Create activities and audit log indexes",
			Up:          createActivityIndexes,
			Down: func(ctx context.Context, db *mongo.Database) error {
				if err := dropIndexes(ActivitiesCollection)(ctx, db); err != nil {
					return err
				}
				return dropIndexes(AuditLogsCollection)(ctx, db)
			},
		},
	}
}

func dropIndexes(collection string) func(ctx context.Context, db *mongo.Database) error {
	return func(ctx context.Context, db *mongo.Database) error {
		_, err := db.Collection(collection).Indexes().DropAll(ctx)
		return err
	}
}

func createUsersIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "role", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{
			Keys:    bson.D{{Key: "verification_token_hash", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	_, err := db.Collection(UsersCollection).Indexes().CreateMany(ctx, indexes)
	return err
}

func createRatingsIndexes(ctx context.Context, db *mongo.Database, uniquePair bool) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "rater_id", Value: 1}, {Key: "rated_id", Value: 1}},
			Options: options.Index().SetName(RatingPairIndex).SetUnique(uniquePair),
		},
		{Keys: bson.D{{Key: "rated_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "rater_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	_, err := db.Collection(RatingsCollection).Indexes().CreateMany(ctx, indexes)
	return err
}

func createRelationshipIndexes(ctx context.Context, db *mongo.Database) error {
	connectionIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_low", Value: 1}, {Key: "user_high", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "requester_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "addressee_id", Value: 1}, {Key: "status", Value: 1}}},
	}
	if _, err := db.Collection(ConnectionsCollection).Indexes().CreateMany(ctx, connectionIndexes); err != nil {
		return err
	}

	blockIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "blocker_id", Value: 1}, {Key: "blocked_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "blocked_id", Value: 1}}},
	}
	_, err := db.Collection(BlocksCollection).Indexes().CreateMany(ctx, blockIndexes)
	return err
}

func createReportsIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "reporter_id", Value: 1}, {Key: "reported_user_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"open": true}).
				SetName("open_report_per_pair"),
		},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "reported_user_id", Value: 1}}},
	}

	_, err := db.Collection(ReportsCollection).Indexes().CreateMany(ctx, indexes)
	return err
}

func createActivityIndexes(ctx context.Context, db *mongo.Database) error {
	activityIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "actor_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "subject_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := db.Collection(ActivitiesCollection).Indexes().CreateMany(ctx, activityIndexes); err != nil {
		return err
	}

	auditIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "admin_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "resource_id", Value: 1}}},
	}
	_, err := db.Collection(AuditLogsCollection).Indexes().CreateMany(ctx, auditIndexes)
	return err
}
