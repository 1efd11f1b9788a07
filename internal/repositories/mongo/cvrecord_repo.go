package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/cvstudio/internal/models"
	"github.com/yoockh/cvstudio/internal/repositories"
	"github.com/yoockh/cvstudio/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type cvRecordRepo struct {
	col *mongo.Collection
}

func NewCVRecordRepo(db *mongo.Database) repositories.CVRecordRepository {
	return &cvRecordRepo{col: db.Collection("cv_records")}
}

func (r *cvRecordRepo) Insert(ctx context.Context, rec *models.CVRecord) error {
	if rec.UploadedAt.IsZero() {
		rec.UploadedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, rec)
	return err
}

func (r *cvRecordRepo) GetByID(ctx context.Context, id string) (*models.CVRecord, error) {
	var rec models.CVRecord
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

var summaryProjection = bson.M{
	"_id":                           1,
	"uploaded_by":                   1,
	"uploaded_at":                   1,
	"formatted_cv.header.name":      1,
	"formatted_cv.header.job_title": 1,
	"formatted_cv.key_skills":       1,
}

func (r *cvRecordRepo) ListByOwner(ctx context.Context, userID string, limit int) ([]models.CVRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "uploaded_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(summaryProjection)

	cur, err := r.col.Find(ctx, bson.M{"uploaded_by": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.CVRecord, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
