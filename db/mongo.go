package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/utpal74/track-my-tasks-api/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps users, tasks and categories in MongoDB collections.
// Integer ids for users and categories come from a counters collection.
type MongoStore struct {
	client     *mongo.Client
	users      *mongo.Collection
	tasks      *mongo.Collection
	categories *mongo.Collection
	counters   *mongo.Collection
}

// NewMongoStore binds the store to database name and creates its indexes.
func NewMongoStore(ctx context.Context, client *mongo.Client, name string) (*MongoStore, error) {
	database := client.Database(name)
	s := &MongoStore{
		client:     client,
		users:      database.Collection("users"),
		tasks:      database.Collection("tasks"),
		categories: database.Collection("categories"),
		counters:   database.Collection("counters"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys: bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"username": bson.M{"$type": "string"}}),
		},
		{
			Keys: bson.D{{Key: "oauth_provider", Value: 1}, {Key: "oauth_id", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"oauth_id": bson.M{"$type": "string"}}),
		},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	if _, err := s.tasks.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}}}); err != nil {
		return fmt.Errorf("create task indexes: %w", err)
	}
	if _, err := s.categories.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}}}); err != nil {
		return fmt.Errorf("create category indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) nextID(ctx context.Context, sequence string) (uint, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": sequence},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", sequence, err)
	}
	return uint(counter.Seq), nil
}

func (s *MongoStore) CreateUser(ctx context.Context, user *model.User) error {
	id, err := s.nextID(ctx, "users")
	if err != nil {
		return err
	}
	user.ID = id
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now()
	}
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("create user: %w", translateMongo(err))
	}
	return nil
}

func (s *MongoStore) UpdateUser(ctx context.Context, user *model.User) error {
	res, err := s.users.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return fmt.Errorf("update user: %w", translateMongo(err))
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update user: %w", ErrNotFound)
	}
	return nil
}

func (s *MongoStore) UserByID(ctx context.Context, id uint) (*model.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *MongoStore) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *MongoStore) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"username": username})
}

func (s *MongoStore) UserByOAuth(ctx context.Context, provider, oauthID string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"oauth_provider": provider, "oauth_id": oauthID})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*model.User, error) {
	var user model.User
	if err := s.users.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, fmt.Errorf("find user: %w", translateMongo(err))
	}
	return &user, nil
}

// DeleteUser removes tasks and categories before the user so an interrupted
// run never leaves records without an owner.
func (s *MongoStore) DeleteUser(ctx context.Context, id uint) error {
	if _, err := s.tasks.DeleteMany(ctx, bson.M{"user_id": id}); err != nil {
		return fmt.Errorf("delete user tasks: %w", err)
	}
	if _, err := s.categories.DeleteMany(ctx, bson.M{"user_id": id}); err != nil {
		return fmt.Errorf("delete user categories: %w", err)
	}
	res, err := s.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete user: %w", ErrNotFound)
	}
	return nil
}

func (s *MongoStore) ListTasks(ctx context.Context, userID uint, filter model.TaskFilter) ([]model.Task, error) {
	query := bson.M{"user_id": userID}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	cur, err := s.tasks.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer cur.Close(ctx)

	tasks := make([]model.Task, 0)
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return tasks, nil
}

func (s *MongoStore) GetTask(ctx context.Context, userID uint, id string) (*model.Task, error) {
	var task model.Task
	if err := s.tasks.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&task); err != nil {
		return nil, fmt.Errorf("find task: %w", translateMongo(err))
	}
	return &task, nil
}

func (s *MongoStore) CreateTask(ctx context.Context, task *model.Task) error {
	if _, err := s.tasks.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("create task: %w", translateMongo(err))
	}
	return nil
}

func (s *MongoStore) SaveTask(ctx context.Context, task *model.Task) error {
	set := bson.D{
		{Key: "title", Value: task.Title},
		{Key: "category", Value: task.Category},
		{Key: "status", Value: task.Status},
		{Key: "estimated_hours", Value: task.EstimatedHours},
		{Key: "actual_hours", Value: task.ActualHours},
	}
	res, err := s.tasks.UpdateOne(ctx, bson.M{"_id": task.ID, "user_id": task.UserID}, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("save task: %w", ErrNotFound)
	}
	return nil
}

func (s *MongoStore) DeleteTask(ctx context.Context, userID uint, id string) error {
	res, err := s.tasks.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete task: %w", ErrNotFound)
	}
	return nil
}

func (s *MongoStore) ListCategories(ctx context.Context, userID uint) ([]model.Category, error) {
	cur, err := s.categories.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer cur.Close(ctx)

	categories := make([]model.Category, 0)
	if err := cur.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return categories, nil
}

func (s *MongoStore) GetCategory(ctx context.Context, userID, id uint) (*model.Category, error) {
	var category model.Category
	if err := s.categories.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&category); err != nil {
		return nil, fmt.Errorf("find category: %w", translateMongo(err))
	}
	return &category, nil
}

func (s *MongoStore) CreateCategory(ctx context.Context, category *model.Category) error {
	id, err := s.nextID(ctx, "categories")
	if err != nil {
		return err
	}
	category.ID = id
	if category.CreatedAt.IsZero() {
		category.CreatedAt = now()
	}
	if _, err := s.categories.InsertOne(ctx, category); err != nil {
		return fmt.Errorf("create category: %w", translateMongo(err))
	}
	return nil
}

func (s *MongoStore) SaveCategory(ctx context.Context, category *model.Category) error {
	res, err := s.categories.UpdateOne(ctx,
		bson.M{"_id": category.ID, "user_id": category.UserID},
		bson.M{"$set": bson.M{"name": category.Name}},
	)
	if err != nil {
		return fmt.Errorf("save category: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("save category: %w", ErrNotFound)
	}
	return nil
}

func (s *MongoStore) DeleteCategory(ctx context.Context, userID, id uint) error {
	res, err := s.categories.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete category: %w", ErrNotFound)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func translateMongo(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}

func now() time.Time {
	return time.Now().UTC()
}
