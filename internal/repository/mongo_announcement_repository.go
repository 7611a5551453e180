package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"twse-announcements/internal/entity"
	"twse-announcements/internal/query"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type announcementDocument struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	CompanyCode        string             `bson:"company_code"`
	CompanyName        string             `bson:"company_name"`
	Title              string             `bson:"title"`
	Date               string             `bson:"date"`
	Time               string             `bson:"time"`
	DetailContent      *string            `bson:"detail_content,omitempty"`
	AnnouncementType   *string            `bson:"announcement_type,omitempty"`
	FactDate           *string            `bson:"fact_date,omitempty"`
	FactOccurrenceDate *string            `bson:"fact_occurrence_date,omitempty"`
	ClauseCode         *string            `bson:"clause_code,omitempty"`
	QueryDate          *string            `bson:"query_date,omitempty"`
	CreatedAt          time.Time          `bson:"created_at"`
}

func toAnnouncementDocument(a *entity.Announcement) announcementDocument {
	return announcementDocument{
		CompanyCode:        a.CompanyCode,
		CompanyName:        a.CompanyName,
		Title:              a.Title,
		Date:               a.Date,
		Time:               a.Time,
		DetailContent:      a.DetailContent,
		AnnouncementType:   a.AnnouncementType,
		FactDate:           a.FactDate,
		FactOccurrenceDate: a.FactOccurrenceDate,
		ClauseCode:         a.ClauseCode,
		QueryDate:          a.QueryDate,
		CreatedAt:          a.CreatedAt,
	}
}

func (d announcementDocument) toEntity() entity.Announcement {
	return entity.Announcement{
		CompanyCode:        d.CompanyCode,
		CompanyName:        d.CompanyName,
		Title:              d.Title,
		Date:               d.Date,
		Time:               d.Time,
		DetailContent:      d.DetailContent,
		AnnouncementType:   d.AnnouncementType,
		FactDate:           d.FactDate,
		FactOccurrenceDate: d.FactOccurrenceDate,
		ClauseCode:         d.ClauseCode,
		QueryDate:          d.QueryDate,
		CreatedAt:          d.CreatedAt,
	}
}

func keyDocument(key entity.AnnouncementKey) bson.D {
	return bson.D{
		{Key: "company_code", Value: key.CompanyCode},
		{Key: "date", Value: key.Date},
		{Key: "time", Value: key.Time},
		{Key: "title", Value: key.Title},
	}
}

// NewMongoAnnouncementRepository creates an announcement repository over a
// document collection. Records are matched by identity tuple, not ID.
func NewMongoAnnouncementRepository(coll *mongo.Collection) AnnouncementRepository {
	return &mongoAnnouncementRepository{coll: coll}
}

type mongoAnnouncementRepository struct {
	coll *mongo.Collection
}

// EnsureAnnouncementIndexes creates the listing and identity indexes.
func EnsureAnnouncementIndexes(ctx context.Context, coll *mongo.Collection) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "company_code", Value: 1}}},
		{Keys: bson.D{{Key: "query_date", Value: 1}}},
		{Keys: bson.D{{Key: "date", Value: -1}, {Key: "time", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("failed to create announcement indexes: %w", err)
	}
	return nil
}

func (r *mongoAnnouncementRepository) FindByKey(ctx context.Context, key entity.AnnouncementKey) (*entity.Announcement, error) {
	var doc announcementDocument
	err := r.coll.FindOne(ctx, keyDocument(key)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a := doc.toEntity()
	return &a, nil
}

func (r *mongoAnnouncementRepository) Create(ctx context.Context, a *entity.Announcement) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := r.coll.InsertOne(ctx, toAnnouncementDocument(a))
	return err
}

// Update replaces the document with a's identity, keeping its _id.
func (r *mongoAnnouncementRepository) Update(ctx context.Context, a *entity.Announcement) error {
	res, err := r.coll.ReplaceOne(ctx, keyDocument(a.Key()), toAnnouncementDocument(a))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceByQueryDate deletes then bulk inserts. The two steps are not atomic
// on a standalone server.
func (r *mongoAnnouncementRepository) ReplaceByQueryDate(ctx context.Context, queryDate string, batch []entity.Announcement) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.D{{Key: "query_date", Value: queryDate}})
	if err != nil {
		return 0, err
	}
	if len(batch) == 0 {
		return res.DeletedCount, nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, len(batch))
	for i := range batch {
		if batch[i].CreatedAt.IsZero() {
			batch[i].CreatedAt = now
		}
		docs[i] = toAnnouncementDocument(&batch[i])
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return res.DeletedCount, err
	}
	return res.DeletedCount, nil
}

func (r *mongoAnnouncementRepository) Find(ctx context.Context, f query.Filter) ([]entity.Announcement, error) {
	filter, err := filterDocument(f)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(sortDocument()).SetLimit(int64(query.ClampLimit(f.Limit)))
	return r.find(ctx, filter, opts)
}

func (r *mongoAnnouncementRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.D{})
}

func (r *mongoAnnouncementRepository) TopCompanies(ctx context.Context, n int) ([]CompanyCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "company_code", Value: "$company_code"},
				{Key: "company_name", Value: "$company_name"},
			}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id.company_code", Value: 1}}}},
		{{Key: "$limit", Value: n}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID struct {
			CompanyCode string `bson:"company_code"`
			CompanyName string `bson:"company_name"`
		} `bson:"_id"`
		Count int64 `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make([]CompanyCount, len(rows))
	for i, row := range rows {
		out[i] = CompanyCount{CompanyCode: row.ID.CompanyCode, CompanyName: row.ID.CompanyName, Count: row.Count}
	}
	return out, nil
}

func (r *mongoAnnouncementRepository) Sample(ctx context.Context, n int) ([]entity.Announcement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetLimit(int64(n))
	return r.find(ctx, bson.D{}, opts)
}

func (r *mongoAnnouncementRepository) find(ctx context.Context, filter bson.D, opts *options.FindOptions) ([]entity.Announcement, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []announcementDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]entity.Announcement, len(docs))
	for i := range docs {
		out[i] = docs[i].toEntity()
	}
	return out, nil
}
