package db

import (
	"context"
	"strings"

	"github.com/utpal74/track-my-tasks-api/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	"go.uber.org/zap"
)

// defaultMongoDatabase is used when the connection string names no database.
const defaultMongoDatabase = "task-tracker"

// Open picks a backend from the connection string: mongodb:// and
// mongodb+srv:// URLs use MongoDB, postgres:// and postgresql:// use
// PostgreSQL through gorm, anything else is a SQLite path (an optional
// sqlite:/// prefix is stripped).
func Open(ctx context.Context, databaseURL string) (Store, error) {
	switch {
	case databaseURL == "":
		return nil, &configError{"DATABASE_URL is not set"}
	case strings.HasPrefix(databaseURL, "mongodb://"), strings.HasPrefix(databaseURL, "mongodb+srv://"):
		client, name, err := ConnectMongo(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return NewMongoStore(ctx, client, name)
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return OpenPostgres(ctx, databaseURL)
	default:
		return OpenSQLite(ctx, sqlitePath(databaseURL))
	}
}

// ConnectMongo connects and pings MongoDB, returning the client and the
// database named in the URL.
func ConnectMongo(ctx context.Context, mongoURI string) (*mongo.Client, string, error) {
	logger := logger.FromCtx(ctx)

	cs, err := connstring.ParseAndValidate(mongoURI)
	if err != nil {
		return nil, "", &configError{"invalid mongo connection string: " + err.Error()}
	}
	name := cs.Database
	if name == "" {
		name = defaultMongoDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, "", &connectionError{"MongoDB", err}
	}

	logger.Info("pinging mongo db")
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, "", &pingError{"MongoDB", err}
	}
	logger.Info("mongo db ping successful", zap.String("database", name))
	return client, name, nil
}

func sqlitePath(databaseURL string) string {
	if rest, ok := strings.CutPrefix(databaseURL, "sqlite:///"); ok {
		return rest
	}
	return strings.TrimPrefix(databaseURL, "sqlite://")
}

type configError struct {
	message string
}

func (e *configError) Error() string {
	return e.message
}

type connectionError struct {
	backend string
	err     error
}

func (e *connectionError) Error() string {
	return "Failed to connect to " + e.backend + ": " + e.err.Error()
}

func (e *connectionError) Unwrap() error { return e.err }

type pingError struct {
	backend string
	err     error
}

func (e *pingError) Error() string {
	return "Failed to ping " + e.backend + ": " + e.err.Error()
}

func (e *pingError) Unwrap() error { return e.err }
