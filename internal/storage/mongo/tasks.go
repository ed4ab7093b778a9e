package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/storage"
)

type taskDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	UserID      primitive.ObjectID `bson:"userId"`
	TaskName    string             `bson:"taskName"`
	Description string             `bson:"description,omitempty"`
	Status      string             `bson:"status"`
	Priority    string             `bson:"priority"`
	DueDate     time.Time          `bson:"dueDate"`
	StartDate   *time.Time         `bson:"startDate,omitempty"`
	CompletedAt *time.Time         `bson:"completedAt,omitempty"`
	Tags        []string           `bson:"tags"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *taskDocument) model() *models.Task {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return &models.Task{
		ID:          d.ID.Hex(),
		UserID:      d.UserID.Hex(),
		TaskName:    d.TaskName,
		Description: d.Description,
		Status:      models.Status(d.Status),
		Priority:    models.Priority(d.Priority),
		DueDate:     d.DueDate,
		StartDate:   d.StartDate,
		CompletedAt: d.CompletedAt,
		Tags:        tags,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type taskRepository struct {
	coll *mongo.Collection
}

func (*taskRepository) ValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	userID, err := primitive.ObjectIDFromHex(task.UserID)
	if err != nil {
		return fmt.Errorf("invalid owner id %q: %w", task.UserID, err)
	}

	tags := task.Tags
	if tags == nil {
		tags = []string{}
	}

	doc := taskDocument{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		TaskName:    task.TaskName,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		DueDate:     task.DueDate,
		StartDate:   task.StartDate,
		CompletedAt: task.CompletedAt,
		Tags:        tags,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	_, err = r.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	task.ID = doc.ID.Hex()
	task.Tags = tags
	return nil
}

func (r *taskRepository) Get(ctx context.Context, id, userID string) (*models.Task, error) {
	filter, ok := ownedFilter(id, userID)
	if !ok {
		return nil, storage.ErrNotFound
	}

	var doc taskDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return doc.model(), nil
}

func (r *taskRepository) List(ctx context.Context, params storage.TaskListParams) ([]*models.Task, int64, error) {
	userID, err := primitive.ObjectIDFromHex(params.Filter.UserID)
	if err != nil {
		return []*models.Task{}, 0, nil
	}

	filter := bson.D{{Key: "userId", Value: userID}}
	if params.Filter.Status != nil {
		filter = append(filter, bson.E{Key: "status", Value: string(*params.Filter.Status)})
	}
	if params.Filter.Priority != nil {
		filter = append(filter, bson.E{Key: "priority", Value: string(*params.Filter.Priority)})
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	cursor, err := r.find(ctx, filter, params)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = cursor.Close(ctx) }()

	var docs []taskDocument
	err = cursor.All(ctx, &docs)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode tasks: %w", err)
	}

	tasks := make([]*models.Task, 0, len(docs))
	for i := range docs {
		tasks = append(tasks, docs[i].model())
	}
	return tasks, total, nil
}

// find runs a plain query for date sorts and an aggregation for enum sorts,
// which have to be ranked by their declared order instead of lexically.
func (r *taskRepository) find(ctx context.Context, filter bson.D, params storage.TaskListParams) (*mongo.Cursor, error) {
	direction := 1
	if params.Sort.Desc {
		direction = -1
	}

	switch params.Sort.Field {
	case storage.SortByPriority, storage.SortByStatus:
		var order bson.A
		if params.Sort.Field == storage.SortByPriority {
			for _, p := range models.Priorities {
				order = append(order, string(p))
			}
		} else {
			for _, s := range models.Statuses {
				order = append(order, string(s))
			}
		}

		pipeline := mongo.Pipeline{
			{{Key: "$match", Value: filter}},
			{{Key: "$addFields", Value: bson.D{{Key: "_rank", Value: bson.D{
				{Key: "$indexOfArray", Value: bson.A{order, "$" + string(params.Sort.Field)}},
			}}}}},
			{{Key: "$sort", Value: bson.D{{Key: "_rank", Value: direction}, {Key: "_id", Value: 1}}}},
			{{Key: "$skip", Value: params.Offset}},
			{{Key: "$limit", Value: params.Limit}},
			{{Key: "$project", Value: bson.D{{Key: "_rank", Value: 0}}}},
		}
		cursor, err := r.coll.Aggregate(ctx, pipeline)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate tasks: %w", err)
		}
		return cursor, nil
	default:
		opts := options.Find().
			SetSort(bson.D{{Key: string(params.Sort.Field), Value: direction}, {Key: "_id", Value: 1}}).
			SetSkip(params.Offset).
			SetLimit(params.Limit)
		cursor, err := r.coll.Find(ctx, filter, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to find tasks: %w", err)
		}
		return cursor, nil
	}
}

func (r *taskRepository) Update(ctx context.Context, id, userID string, patch models.TaskPatch) (*models.Task, error) {
	filter, ok := ownedFilter(id, userID)
	if !ok {
		return nil, storage.ErrNotFound
	}

	guarded := append(bson.D{}, filter...)
	guard, hasGuard := dateOrderGuard(patch)
	if hasGuard {
		guarded = append(guarded, guard)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc taskDocument
	err := r.coll.FindOneAndUpdate(ctx, guarded, bson.D{{Key: "$set", Value: setDocument(patch)}}, opts).Decode(&doc)
	if err == nil {
		return doc.model(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if !hasGuard {
		return nil, storage.ErrNotFound
	}

	// The guard and the ownership check share one predicate; look again
	// without the guard to tell which of them failed.
	count, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	if count == 0 {
		return nil, storage.ErrNotFound
	}
	return nil, storage.ErrDateOrder
}

func (r *taskRepository) Delete(ctx context.Context, id, userID string) error {
	filter, ok := ownedFilter(id, userID)
	if !ok {
		return storage.ErrNotFound
	}

	result, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func ownedFilter(id, userID string) (bson.D, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, false
	}
	return bson.D{{Key: "_id", Value: oid}, {Key: "userId", Value: uid}}, true
}

func dateOrderGuard(patch models.TaskPatch) (bson.E, bool) {
	switch {
	case patch.StartDate != nil && patch.DueDate == nil:
		return bson.E{Key: "dueDate", Value: bson.D{{Key: "$gt", Value: *patch.StartDate}}}, true
	case patch.DueDate != nil && patch.StartDate == nil:
		// A null match also covers documents without a start date.
		return bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "startDate", Value: nil}},
			bson.D{{Key: "startDate", Value: bson.D{{Key: "$lt", Value: *patch.DueDate}}}},
		}}, true
	default:
		return bson.E{}, false
	}
}

func setDocument(patch models.TaskPatch) bson.D {
	set := bson.D{}
	if patch.TaskName != nil {
		set = append(set, bson.E{Key: "taskName", Value: *patch.TaskName})
	}
	if patch.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *patch.Description})
	}
	if patch.Status != nil {
		set = append(set, bson.E{Key: "status", Value: string(*patch.Status)})
	}
	if patch.Priority != nil {
		set = append(set, bson.E{Key: "priority", Value: string(*patch.Priority)})
	}
	if patch.DueDate != nil {
		set = append(set, bson.E{Key: "dueDate", Value: *patch.DueDate})
	}
	if patch.StartDate != nil {
		set = append(set, bson.E{Key: "startDate", Value: *patch.StartDate})
	}
	if patch.Tags != nil {
		tags := *patch.Tags
		if tags == nil {
			tags = []string{}
		}
		set = append(set, bson.E{Key: "tags", Value: tags})
	}
	if patch.CompletedAt != nil {
		set = append(set, bson.E{Key: "completedAt", Value: *patch.CompletedAt})
	}
	return append(set, bson.E{Key: "updatedAt", Value: patch.UpdatedAt})
}
