package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	mongox "github.com/dmitrymomot/planmeter/pkg/mongo"
	"github.com/dmitrymomot/planmeter/pkg/subscription"
)

const SubscriptionsCollection = "subscriptions"

// activeSubscriptionIndex makes (user_id, plan_id) unique among active
// subscriptions only, so cancelled history never blocks a new subscribe.
const activeSubscriptionIndex = "uniq_active_user_plan"

// SubscriptionStore implements subscription.Store on MongoDB.
type SubscriptionStore struct {
	coll *mongo.Collection
}

// NewSubscriptionStore returns a store backed by db's subscriptions
// collection. Call EnsureIndexes before serving traffic.
func NewSubscriptionStore(db *mongo.Database) *SubscriptionStore {
	return &SubscriptionStore{coll: db.Collection(SubscriptionsCollection)}
}

func (s *SubscriptionStore) EnsureIndexes(ctx context.Context) error {
	return mongox.EnsureIndexes(ctx, s.coll,
		mongo.IndexModel{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "plan_id", Value: 1}},
			Options: options.Index().
				SetName(activeSubscriptionIndex).
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "status", Value: string(subscription.StatusActive)}}),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("user_created"),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "plan_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("plan_status"),
		},
	)
}

func (s *SubscriptionStore) Insert(ctx context.Context, sub *subscription.Subscription) error {
	if _, err := s.coll.InsertOne(ctx, newSubscriptionDocument(sub)); err != nil {
		if mongox.IsDuplicateKeyError(err) {
			return subscription.ErrAlreadySubscribed
		}
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

func (s *SubscriptionStore) FindByID(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
}

func (s *SubscriptionStore) FindActive(ctx context.Context, userID, planID string) (*subscription.Subscription, error) {
	return s.findOne(ctx, bson.D{
		{Key: "user_id", Value: userID},
		{Key: "plan_id", Value: planID},
		{Key: "status", Value: string(subscription.StatusActive)},
	})
}

func (s *SubscriptionStore) FindByUser(ctx context.Context, userID string) ([]subscription.Subscription, error) {
	return s.find(ctx, bson.D{{Key: "user_id", Value: userID}})
}

func (s *SubscriptionStore) FindAll(ctx context.Context, filter subscription.Filter) ([]subscription.Subscription, error) {
	return s.find(ctx, filterDocument(filter))
}

// ChangePlan sets plan and quota only. Moving an active record into an
// occupied (user, plan) slot trips the partial unique index.
func (s *SubscriptionStore) ChangePlan(ctx context.Context, id uuid.UUID, planID string, quotaGB float64, at time.Time) (*subscription.Subscription, error) {
	return s.modifyOne(ctx, id, nil, bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "plan_id", Value: planID},
			{Key: "quota_gb", Value: quotaGB},
			{Key: "updated_at", Value: at.UTC()},
		}},
	})
}

// Cancel runs as an update pipeline so cancelled_at is only filled when empty.
func (s *SubscriptionStore) Cancel(ctx context.Context, id uuid.UUID, at time.Time) (*subscription.Subscription, error) {
	at = at.UTC()
	return s.modifyOne(ctx, id, nil, mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "status", Value: string(subscription.StatusCancelled)},
			{Key: "auto_renew", Value: false},
			{Key: "updated_at", Value: at},
			{Key: "cancelled_at", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$cancelled_at", at}}}},
		}}},
	})
}

func (s *SubscriptionStore) SetAutoRenew(ctx context.Context, id uuid.UUID, autoRenew bool, at time.Time) (*subscription.Subscription, error) {
	var cond bson.D
	if autoRenew {
		cond = activeOnly
	}
	return s.modifyOne(ctx, id, cond, bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "auto_renew", Value: autoRenew},
			{Key: "updated_at", Value: at.UTC()},
		}},
	})
}

func (s *SubscriptionStore) IncrementUsage(ctx context.Context, id uuid.UUID, dataGB float64, at time.Time) (*subscription.Subscription, error) {
	return s.modifyOne(ctx, id, activeOnly, bson.D{
		{Key: "$inc", Value: bson.D{{Key: "data_used_gb", Value: dataGB}}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: at.UTC()}}},
	})
}

var activeOnly = bson.D{{Key: "status", Value: string(subscription.StatusActive)}}

// modifyOne updates the record with id that also matches cond and returns
// the new version. A record that exists but fails cond yields
// ErrInvalidSubscriptionState.
func (s *SubscriptionStore) modifyOne(ctx context.Context, id uuid.UUID, cond bson.D, update any) (*subscription.Subscription, error) {
	filter := append(bson.D{{Key: "_id", Value: id.String()}}, cond...)

	var doc subscriptionDocument
	err := s.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	switch {
	case err == nil:
		return decodeSubscription(doc)
	case mongox.IsDuplicateKeyError(err):
		return nil, subscription.ErrAlreadySubscribed
	case !mongox.IsNotFound(err):
		return nil, fmt.Errorf("update subscription: %w", err)
	case len(cond) == 0:
		return nil, subscription.ErrSubscriptionNotFound
	}
	if _, ferr := s.FindByID(ctx, id); ferr != nil {
		return nil, ferr
	}
	return nil, subscription.ErrInvalidSubscriptionState
}

// CountByPlan groups every subscription by plan in the database.
func (s *SubscriptionStore) CountByPlan(ctx context.Context, limit int) ([]subscription.PlanCount, error) {
	cur, err := s.coll.Aggregate(ctx, countByPlanPipeline(limit))
	if err != nil {
		return nil, fmt.Errorf("aggregate plan counts: %w", err)
	}
	var rows []struct {
		PlanID string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode plan counts: %w", err)
	}

	out := make([]subscription.PlanCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, subscription.PlanCount{PlanID: row.PlanID, Count: row.Count})
	}
	return out, nil
}

func (s *SubscriptionStore) HasActiveForPlan(ctx context.Context, planID string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{
		{Key: "plan_id", Value: planID},
		{Key: "status", Value: string(subscription.StatusActive)},
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count active subscriptions: %w", err)
	}
	return n > 0, nil
}

func (s *SubscriptionStore) findOne(ctx context.Context, filter bson.D) (*subscription.Subscription, error) {
	var doc subscriptionDocument
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if mongox.IsNotFound(err) {
			return nil, subscription.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("find subscription: %w", err)
	}
	return decodeSubscription(doc)
}

func (s *SubscriptionStore) find(ctx context.Context, filter bson.D) ([]subscription.Subscription, error) {
	cur, err := s.coll.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("find subscriptions: %w", err)
	}
	var docs []subscriptionDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode subscriptions: %w", err)
	}

	out := make([]subscription.Subscription, 0, len(docs))
	for _, doc := range docs {
		sub, err := doc.toSubscription()
		if err != nil {
			return nil, errors.Join(ErrCorruptDocument, err)
		}
		out = append(out, sub)
	}
	return out, nil
}

func decodeSubscription(doc subscriptionDocument) (*subscription.Subscription, error) {
	sub, err := doc.toSubscription()
	if err != nil {
		return nil, errors.Join(ErrCorruptDocument, err)
	}
	return &sub, nil
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

func filterDocument(f subscription.Filter) bson.D {
	filter := bson.D{}
	if f.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: string(f.Status)})
	}
	if f.UserID != "" {
		filter = append(filter, bson.E{Key: "user_id", Value: f.UserID})
	}
	return filter
}

// countByPlanPipeline sorts by count descending with plan id as tie-break.
func countByPlanPipeline(limit int) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$plan_id"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	return pipeline
}
