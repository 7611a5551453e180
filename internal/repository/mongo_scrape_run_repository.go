package repository

import (
	"context"
	"time"

	"twse-announcements/internal/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/datatypes"
)

type scrapeRunDocument struct {
	ID           string     `bson:"_id"`
	QueryDate    string     `bson:"query_date"`
	Mode         string     `bson:"mode"`
	Company      string     `bson:"company,omitempty"`
	Status       string     `bson:"status"`
	Found        int        `bson:"found"`
	Inserted     int        `bson:"inserted"`
	Updated      int        `bson:"updated"`
	Skipped      int        `bson:"skipped"`
	Deleted      int        `bson:"deleted"`
	DroppedRows  int        `bson:"dropped_rows"`
	CompanyCodes []string   `bson:"company_codes"`
	Summary      string     `bson:"summary,omitempty"`
	ErrorMessage string     `bson:"error_message,omitempty"`
	StartedAt    time.Time  `bson:"started_at"`
	CompletedAt  *time.Time `bson:"completed_at,omitempty"`
}

func toScrapeRunDocument(run *entity.ScrapeRun) scrapeRunDocument {
	return scrapeRunDocument{
		ID:           run.ID,
		QueryDate:    run.QueryDate,
		Mode:         run.Mode,
		Company:      run.Company,
		Status:       string(run.Status),
		Found:        run.Found,
		Inserted:     run.Inserted,
		Updated:      run.Updated,
		Skipped:      run.Skipped,
		Deleted:      run.Deleted,
		DroppedRows:  run.DroppedRows,
		CompanyCodes: run.CompanyCodes,
		Summary:      string(run.Summary),
		ErrorMessage: run.ErrorMessage,
		StartedAt:    run.StartedAt,
		CompletedAt:  run.CompletedAt,
	}
}

func (d scrapeRunDocument) toEntity() entity.ScrapeRun {
	run := entity.ScrapeRun{
		ID:           d.ID,
		QueryDate:    d.QueryDate,
		Mode:         d.Mode,
		Company:      d.Company,
		Status:       entity.ScrapeStatus(d.Status),
		Found:        d.Found,
		Inserted:     d.Inserted,
		Updated:      d.Updated,
		Skipped:      d.Skipped,
		Deleted:      d.Deleted,
		DroppedRows:  d.DroppedRows,
		CompanyCodes: d.CompanyCodes,
		ErrorMessage: d.ErrorMessage,
		StartedAt:    d.StartedAt,
		CompletedAt:  d.CompletedAt,
	}
	if d.Summary != "" {
		run.Summary = datatypes.JSON(d.Summary)
	}
	return run
}

// NewMongoScrapeRunRepository creates a scrape-run repository over a
// document collection keyed by run ID.
func NewMongoScrapeRunRepository(coll *mongo.Collection) ScrapeRunRepository {
	return &mongoScrapeRunRepository{coll: coll}
}

type mongoScrapeRunRepository struct {
	coll *mongo.Collection
}

func (r *mongoScrapeRunRepository) Create(ctx context.Context, run *entity.ScrapeRun) error {
	_, err := r.coll.InsertOne(ctx, toScrapeRunDocument(run))
	return err
}

func (r *mongoScrapeRunRepository) Update(ctx context.Context, run *entity.ScrapeRun) error {
	_, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: run.ID}}, toScrapeRunDocument(run), options.Replace().SetUpsert(true))
	return err
}

func (r *mongoScrapeRunRepository) FindRecent(ctx context.Context, limit int) ([]entity.ScrapeRun, error) {
	opts := options.Find().SetSort(bson.D{{Key: "started_at", Value: -1}}).SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []scrapeRunDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]entity.ScrapeRun, len(docs))
	for i := range docs {
		out[i] = docs[i].toEntity()
	}
	return out, nil
}
