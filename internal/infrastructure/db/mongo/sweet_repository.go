package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sweetshop/sweet-inventory/internal/core/domain"
)

const collectionSweets = "sweets"

// SweetRepository implements ports.SweetRepository using MongoDB. Stock
// changes are single conditional updates, so concurrent purchases can never
// drive stock below zero.
type SweetRepository struct {
	col *mongo.Collection
}

func NewSweetRepository(db *mongo.Database) *SweetRepository {
	return &SweetRepository{col: db.Collection(collectionSweets)}
}

type sweetDocument struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty"`
	Name       string               `bson:"name"`
	Price      primitive.Decimal128 `bson:"price"`
	Stock      int                  `bson:"stock"`
	CategoryID string               `bson:"category_id"`
	OwnerID    string               `bson:"owner_id"`
	CreatedAt  time.Time            `bson:"created_at"`
	UpdatedAt  time.Time            `bson:"updated_at"`
}

func (d sweetDocument) toDomain() (*domain.Sweet, error) {
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		return nil, fmt.Errorf("decode price of sweet %s: %w", d.ID.Hex(), err)
	}
	return &domain.Sweet{
		ID:         d.ID.Hex(),
		Name:       d.Name,
		Price:      price,
		Stock:      d.Stock,
		CategoryID: d.CategoryID,
		OwnerID:    d.OwnerID,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func (r *SweetRepository) Create(ctx context.Context, s *domain.Sweet) (*domain.Sweet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	price, err := toDecimal128(s.Price)
	if err != nil {
		return nil, fmt.Errorf("encode price: %w", err)
	}
	doc := sweetDocument{
		ID:         primitive.NewObjectID(),
		Name:       s.Name,
		Price:      price,
		Stock:      s.Stock,
		CategoryID: s.CategoryID,
		OwnerID:    s.OwnerID,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, storeErr("insert sweet", err)
	}
	return doc.toDomain()
}

func (r *SweetRepository) FindByID(ctx context.Context, id string) (*domain.Sweet, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrSweetNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc sweetDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSweetNotFound
		}
		return nil, storeErr("find sweet", err)
	}
	return doc.toDomain()
}

func (r *SweetRepository) List(ctx context.Context) ([]*domain.Sweet, error) {
	return r.find(ctx, bson.M{})
}

func (r *SweetRepository) Search(ctx context.Context, filter domain.SearchFilter) ([]*domain.Sweet, error) {
	query, err := searchQuery(filter)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, query)
}

func (r *SweetRepository) find(ctx context.Context, query bson.M) ([]*domain.Sweet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, storeErr("find sweets", err)
	}
	defer cur.Close(ctx)

	var docs []sweetDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storeErr("decode sweets", err)
	}

	out := make([]*domain.Sweet, 0, len(docs))
	for _, d := range docs {
		s, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *SweetRepository) Update(ctx context.Context, id string, patch domain.SweetPatch) (*domain.Sweet, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrSweetNotFound
	}
	set, err := patchDocument(patch)
	if err != nil {
		return nil, err
	}
	set["updated_at"] = time.Now().UTC()

	return r.findOneAndUpdate(ctx, "update sweet", bson.M{"_id": oid}, bson.M{"$set": set})
}

func (r *SweetRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrSweetNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return storeErr("delete sweet", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrSweetNotFound
	}
	return nil
}

// DecrementStock subtracts quantity only when the current stock covers it.
// When the guarded update matches nothing, a second lookup tells a missing
// sweet apart from an insufficient one.
func (r *SweetRepository) DecrementStock(ctx context.Context, id string, quantity int) (*domain.Sweet, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrSweetNotFound
	}

	filter := bson.M{"_id": oid, "stock": bson.M{"$gte": quantity}}
	update := bson.M{
		"$inc": bson.M{"stock": -quantity},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	updated, err := r.findOneAndUpdate(ctx, "decrement stock", filter, update)
	if !errors.Is(err, domain.ErrSweetNotFound) {
		return updated, err
	}

	countCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	n, err := r.col.CountDocuments(countCtx, bson.M{"_id": oid})
	if err != nil {
		return nil, storeErr("count sweet", err)
	}
	if n == 0 {
		return nil, domain.ErrSweetNotFound
	}
	return nil, domain.ErrInsufficientStock
}

func (r *SweetRepository) IncrementStock(ctx context.Context, id string, quantity int) (*domain.Sweet, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrSweetNotFound
	}
	update := bson.M{
		"$inc": bson.M{"stock": quantity},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	return r.findOneAndUpdate(ctx, "increment stock", bson.M{"_id": oid}, update)
}

func (r *SweetRepository) findOneAndUpdate(ctx context.Context, op string, filter, update bson.M) (*domain.Sweet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc sweetDocument
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSweetNotFound
		}
		return nil, storeErr(op, err)
	}
	return doc.toDomain()
}

// EnsureIndexes creates the lookup indexes used by search and listing.
func (r *SweetRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "category_id", Value: 1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// searchQuery translates a filter into a MongoDB query document. The name
// predicate is a quoted, case-insensitive regex so user input never acts as
// a pattern.
func searchQuery(f domain.SearchFilter) (bson.M, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	query := bson.M{}
	if f.Name != "" {
		query["name"] = bson.M{"$regex": regexp.QuoteMeta(f.Name), "$options": "i"}
	}
	if f.CategoryID != "" {
		query["category_id"] = f.CategoryID
	}

	price := bson.M{}
	if f.PriceMin != nil {
		v, err := toDecimal128(*f.PriceMin)
		if err != nil {
			return nil, fmt.Errorf("encode priceMin: %w", err)
		}
		price["$gte"] = v
	}
	if f.PriceMax != nil {
		v, err := toDecimal128(*f.PriceMax)
		if err != nil {
			return nil, fmt.Errorf("encode priceMax: %w", err)
		}
		price["$lte"] = v
	}
	if len(price) > 0 {
		query["price"] = price
	}
	return query, nil
}

func patchDocument(p domain.SweetPatch) (bson.M, error) {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Price != nil {
		v, err := toDecimal128(*p.Price)
		if err != nil {
			return nil, fmt.Errorf("encode price: %w", err)
		}
		set["price"] = v
	}
	if p.Stock != nil {
		set["stock"] = *p.Stock
	}
	if p.CategoryID != nil {
		set["category_id"] = *p.CategoryID
	}
	return set, nil
}
