package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/planmeter/pkg/catalog"
	mongox "github.com/dmitrymomot/planmeter/pkg/mongo"
)

const PlansCollection = "plans"

// PlanRepository implements catalog.Repository on MongoDB.
type PlanRepository struct {
	coll *mongo.Collection
}

func NewPlanRepository(db *mongo.Database) *PlanRepository {
	return &PlanRepository{coll: db.Collection(PlansCollection)}
}

func (r *PlanRepository) EnsureIndexes(ctx context.Context) error {
	return mongox.EnsureIndexes(ctx, r.coll,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "name_key", Value: 1}},
			Options: options.Index().SetName("uniq_name").SetUnique(true),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "price", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetName("price_name"),
		},
	)
}

func (r *PlanRepository) List(ctx context.Context) ([]catalog.Plan, error) {
	cur, err := r.coll.Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "price", Value: 1}, {Key: "name", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find plans: %w", err)
	}
	var docs []planDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode plans: %w", err)
	}

	out := make([]catalog.Plan, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toPlan())
	}
	return out, nil
}

func (r *PlanRepository) FindByID(ctx context.Context, id string) (*catalog.Plan, error) {
	var doc planDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		if mongox.IsNotFound(err) {
			return nil, catalog.ErrPlanNotFound
		}
		return nil, fmt.Errorf("find plan: %w", err)
	}
	p := doc.toPlan()
	return &p, nil
}

func (r *PlanRepository) Create(ctx context.Context, plan *catalog.Plan) error {
	if _, err := r.coll.InsertOne(ctx, newPlanDocument(plan)); err != nil {
		if mongox.IsDuplicateKeyError(err) {
			return catalog.ErrPlanNameTaken
		}
		return fmt.Errorf("insert plan: %w", err)
	}
	return nil
}

func (r *PlanRepository) Update(ctx context.Context, plan *catalog.Plan) error {
	res, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: plan.ID}}, newPlanDocument(plan))
	if err != nil {
		if mongox.IsDuplicateKeyError(err) {
			return catalog.ErrPlanNameTaken
		}
		return fmt.Errorf("replace plan: %w", err)
	}
	if res.MatchedCount == 0 {
		return catalog.ErrPlanNotFound
	}
	return nil
}

func (r *PlanRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	if res.DeletedCount == 0 {
		return catalog.ErrPlanNotFound
	}
	return nil
}
