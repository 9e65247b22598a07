package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/marketplace/storefront/internal/core/domain"
	"github.com/marketplace/storefront/internal/core/ports"
)

const publicationsCollection = "publications"

type PublicationRepository struct {
	col *mongo.Collection
}

var _ ports.PublicationRepository = (*PublicationRepository)(nil)

func NewPublicationRepository(db *mongo.Database) *PublicationRepository {
	return &PublicationRepository{col: db.Collection(publicationsCollection)}
}

type imageDoc struct {
	ID           string `bson:"id"`
	URL          string `bson:"url"`
	AltText      string `bson:"alt_text,omitempty"`
	DisplayOrder int    `bson:"display_order"`
}

type publicationDoc struct {
	ID            string               `bson:"_id"`
	Title         string               `bson:"title"`
	Description   string               `bson:"description"`
	Price         primitive.Decimal128 `bson:"price"`
	City          string               `bson:"city"`
	IsPremium     bool                 `bson:"is_premium"`
	Type          string               `bson:"type"`
	IsPaused      bool                 `bson:"is_paused"`
	UserID        int64                `bson:"user_id"`
	Brand         string               `bson:"brand,omitempty"`
	Model         string               `bson:"model,omitempty"`
	Color         string               `bson:"color,omitempty"`
	Condition     string               `bson:"condition,omitempty"`
	Compatibility string               `bson:"compatibility,omitempty"`
	Images        []imageDoc           `bson:"images"`
	CreatedAt     time.Time            `bson:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at"`
}

// EnsureIndexes creates the indexes used by the feed and the owner listing.
func (r *PublicationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "is_paused", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create publication indexes: %w", err)
	}
	return nil
}

func (r *PublicationRepository) Create(ctx context.Context, p *domain.Publication) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toPublicationDoc(p)
	if err != nil {
		return err
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert publication: %w", err)
	}
	return nil
}

func (r *PublicationRepository) FindByID(ctx context.Context, id string) (*domain.Publication, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc publicationDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPublicationNotFound
		}
		return nil, fmt.Errorf("find publication: %w", err)
	}
	return doc.toDomain()
}

func (r *PublicationRepository) Update(ctx context.Context, p *domain.Publication) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toPublicationDoc(p)
	if err != nil {
		return err
	}
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, doc)
	if err != nil {
		return fmt.Errorf("update publication: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPublicationNotFound
	}
	return nil
}

func (r *PublicationRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete publication: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrPublicationNotFound
	}
	return nil
}

func (r *PublicationRepository) List(ctx context.Context, page, size int) ([]domain.Publication, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"is_paused": false}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count publications: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * size)).
		SetLimit(int64(size))
	items, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PublicationRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Publication, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{"user_id": userID}, opts)
}

func (r *PublicationRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Publication, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find publications: %w", err)
	}
	defer cur.Close(ctx)

	var docs []publicationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode publications: %w", err)
	}

	out := make([]domain.Publication, 0, len(docs))
	for _, d := range docs {
		p, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func toPublicationDoc(p *domain.Publication) (publicationDoc, error) {
	price, err := primitive.ParseDecimal128(p.Price.String())
	if err != nil {
		return publicationDoc{}, fmt.Errorf("encode price %s: %w", p.Price, err)
	}
	images := make([]imageDoc, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, imageDoc{ID: img.ID, URL: img.URL, AltText: img.AltText, DisplayOrder: img.DisplayOrder})
	}
	return publicationDoc{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		Price:         price,
		City:          p.City,
		IsPremium:     p.IsPremium,
		Type:          p.Type,
		IsPaused:      p.IsPaused,
		UserID:        p.UserID,
		Brand:         p.Brand,
		Model:         p.Model,
		Color:         p.Color,
		Condition:     string(p.Condition),
		Compatibility: p.Compatibility,
		Images:        images,
		CreatedAt:     p.CreatedAt.UTC(),
		UpdatedAt:     p.UpdatedAt.UTC(),
	}, nil
}

func (d publicationDoc) toDomain() (*domain.Publication, error) {
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		return nil, fmt.Errorf("decode price of %s: %w", d.ID, err)
	}
	images := make([]domain.Image, 0, len(d.Images))
	for _, img := range d.Images {
		images = append(images, domain.Image{
			ID:            img.ID,
			URL:           img.URL,
			AltText:       img.AltText,
			DisplayOrder:  img.DisplayOrder,
			PublicationID: d.ID,
		})
	}
	return &domain.Publication{
		ID:            d.ID,
		Title:         d.Title,
		Description:   d.Description,
		Price:         price,
		City:          d.City,
		IsPremium:     d.IsPremium,
		Type:          d.Type,
		IsPaused:      d.IsPaused,
		UserID:        d.UserID,
		Brand:         d.Brand,
		Model:         d.Model,
		Color:         d.Color,
		Condition:     domain.Condition(d.Condition),
		Compatibility: d.Compatibility,
		Images:        images,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}, nil
}
