// Package mongo is the MongoDB implementation of todo.Repository.
//
// Filters compile to a bson document, list ordering is a server-side sort and
// grouping runs as an aggregation pipeline.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/rezkam/todos/internal/application/todo"
	"github.com/rezkam/todos/internal/domain"
)

const (
	DefaultDatabase   = "todos"
	DefaultCollection = "todos"
)

var _ todo.Repository = (*Store)(nil)

// Config holds MongoDB connection settings.
type Config struct {
	URI         string
	Database    string // default: todos
	Collection  string // default: todos
	MaxPoolSize uint64 // 0 keeps the driver default
	MinPoolSize uint64
}

// Store implements todo.Repository on a single collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type document struct {
	ID       bson.ObjectID `bson:"_id"`
	Owner    string        `bson:"owner"`
	Status   bool          `bson:"status"`
	Body     string        `bson:"body"`
	Category string        `bson:"category"`
}

type memberDocument struct {
	ID    bson.ObjectID `bson:"_id"`
	Owner string        `bson:"owner"`
}

type groupDocument struct {
	Key     string           `bson:"_id"`
	Count   int              `bson:"count"`
	Members []memberDocument `bson:"members"`
}

// NewStore connects to MongoDB, verifies the connection and ensures indexes exist.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	if cfg.MinPoolSize > 0 {
		opts.SetMinPoolSize(cfg.MinPoolSize)
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	database := cfg.Database
	if database == "" {
		database = DefaultDatabase
	}
	collection := cfg.Collection
	if collection == "" {
		collection = DefaultCollection
	}

	s := &Store{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: domain.FieldOwner, Value: 1}}},
		{Keys: bson.D{{Key: domain.FieldStatus, Value: 1}}},
		{Keys: bson.D{{Key: domain.FieldCategory, Value: 1}}},
	}
	if _, err := s.coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("failed to create indexes on %s: %w", s.coll.Name(), err)
	}
	slog.DebugContext(ctx, "mongo indexes ensured", "collection", s.coll.Name())
	return nil
}

func parseID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.ObjectID{}, domain.NewValidationError("id", id, domain.ErrInvalidID)
	}
	return oid, nil
}

// FindTodoByID retrieves a single todo.
func (s *Store) FindTodoByID(ctx context.Context, id string) (*domain.Todo, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var doc document
	if err := s.coll.FindOne(ctx, bson.D{{Key: domain.FieldID, Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTodoNotFound, id)
		}
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}
	t := toDomain(doc)
	return &t, nil
}

// FindTodos runs filter with a server-side sort.
func (s *Store) FindTodos(ctx context.Context, filter domain.Filter, sort domain.Sort) ([]domain.Todo, error) {
	opts := options.Find().SetSort(sortDocument(sort))

	cursor, err := s.coll.Find(ctx, filterDocument(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find todos: %w", err)
	}

	var docs []document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode todos: %w", err)
	}

	todos := make([]domain.Todo, 0, len(docs))
	for _, d := range docs {
		todos = append(todos, toDomain(d))
	}
	return todos, nil
}

// GroupTodos runs the grouping pipeline for q.
func (s *Store) GroupTodos(ctx context.Context, q domain.GroupQuery) ([]domain.Summary, error) {
	cursor, err := s.coll.Aggregate(ctx, groupPipeline(q))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate todos: %w", err)
	}

	var groups []groupDocument
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode groups: %w", err)
	}

	summaries := make([]domain.Summary, 0, len(groups))
	for _, g := range groups {
		members := make([]domain.Member, 0, len(g.Members))
		for _, m := range g.Members {
			members = append(members, domain.Member{ID: m.ID.Hex(), Owner: m.Owner})
		}
		summaries = append(summaries, domain.Summary{Key: g.Key, Count: g.Count, Members: members})
	}
	return summaries, nil
}

// CreateTodo inserts t under a new ObjectID.
func (s *Store) CreateTodo(ctx context.Context, t *domain.Todo) (string, error) {
	doc := fromDomain(*t)
	doc.ID = bson.NewObjectID()

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to insert todo: %w", err)
	}
	return doc.ID.Hex(), nil
}

// DeleteTodo deletes by ID and reports how many documents were removed.
func (s *Store) DeleteTodo(ctx context.Context, id string) (int64, error) {
	oid, err := parseID(id)
	if err != nil {
		return 0, err
	}

	result, err := s.coll.DeleteOne(ctx, bson.D{{Key: domain.FieldID, Value: oid}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete todo: %w", err)
	}
	return result.DeletedCount, nil
}

// CountTodos counts every document in the collection.
func (s *Store) CountTodos(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to count todos: %w", err)
	}
	return n, nil
}

// filterDocument translates f to a query document. Absent clauses are omitted;
// the remaining ones are implicitly ANDed.
func filterDocument(f domain.Filter) bson.D {
	doc := bson.D{}
	if f.Owner != nil {
		doc = append(doc, bson.E{Key: domain.FieldOwner, Value: *f.Owner})
	}
	if f.Status != nil {
		doc = append(doc, bson.E{Key: domain.FieldStatus, Value: *f.Status})
	}
	if f.Category != nil {
		doc = append(doc, bson.E{Key: domain.FieldCategory, Value: *f.Category})
	}
	if f.BodyContains != nil {
		doc = append(doc, bson.E{Key: domain.FieldBody, Value: bson.Regex{
			Pattern: regexp.QuoteMeta(*f.BodyContains),
			Options: "i",
		}})
	}
	return doc
}

func direction(d domain.SortDirection) int {
	if d.Descending() {
		return -1
	}
	return 1
}

// sortDocument orders by s.Field then by _id ascending.
func sortDocument(s domain.Sort) bson.D {
	field := s.Field
	switch field {
	case domain.FieldOwner, domain.FieldStatus, domain.FieldBody, domain.FieldCategory, domain.FieldID:
	default:
		field = domain.FieldID
	}

	doc := bson.D{{Key: field, Value: direction(s.Direction)}}
	if field != domain.FieldID {
		doc = append(doc, bson.E{Key: domain.FieldID, Value: 1})
	}
	return doc
}

// groupKeyExpr projects the grouping value as a string so status keys read "false"/"true".
func groupKeyExpr(dim domain.Dimension) any {
	if dim == domain.DimensionStatus {
		return bson.D{{Key: "$toString", Value: "$" + domain.FieldStatus}}
	}
	return "$" + dim.Field()
}

// groupPipeline builds $sort → $project → $group → $sort.
// The leading sort fixes member order to _id order.
func groupPipeline(q domain.GroupQuery) mongo.Pipeline {
	var order bson.D
	if q.Sort.By == domain.GroupSortByCount {
		order = bson.D{{Key: "count", Value: direction(q.Sort.Direction)}, {Key: "_id", Value: 1}}
	} else {
		order = bson.D{{Key: "_id", Value: direction(q.Sort.Direction)}}
	}

	return mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: domain.FieldID, Value: 1}}}},
		{{Key: "$project", Value: bson.D{
			{Key: domain.FieldID, Value: 1},
			{Key: domain.FieldOwner, Value: 1},
			{Key: "key", Value: groupKeyExpr(q.Dimension)},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$key"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "members", Value: bson.D{{Key: "$push", Value: bson.D{
				{Key: domain.FieldID, Value: "$" + domain.FieldID},
				{Key: domain.FieldOwner, Value: "$" + domain.FieldOwner},
			}}}},
		}}},
		{{Key: "$sort", Value: order}},
	}
}

func toDomain(d document) domain.Todo {
	return domain.Todo{ID: d.ID.Hex(), Owner: d.Owner, Status: d.Status, Body: d.Body, Category: d.Category}
}

func fromDomain(t domain.Todo) document {
	return document{Owner: t.Owner, Status: t.Status, Body: t.Body, Category: t.Category}
}
