package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/talentdesk/ats-system/internal/core/domain"
	"github.com/talentdesk/ats-system/internal/core/ports"
)

const collectionApplications = "applications"

// ApplicationRepository implements ports.ApplicationRepository on MongoDB.
// One application document is the unit of consistency: status and history
// always change together in a single write.
type ApplicationRepository struct {
	col *mongo.Collection
}

func NewApplicationRepository(db *mongo.Database) *ApplicationRepository {
	return &ApplicationRepository{col: db.Collection(collectionApplications)}
}

type applicationDoc struct {
	ID            primitive.ObjectID          `bson:"_id,omitempty"`
	UserID        primitive.ObjectID          `bson:"user_id"`
	JobID         primitive.ObjectID          `bson:"job_id"`
	ResumeRef     string                      `bson:"resume_ref"`
	Applicant     domain.ApplicantSnapshot    `bson:"applicant"`
	Status        string                      `bson:"status"`
	StatusHistory []domain.StatusHistoryEntry `bson:"status_history"`
	AppliedAt     time.Time                   `bson:"applied_at"`
	CreatedAt     time.Time                   `bson:"created_at"`
	UpdatedAt     time.Time                   `bson:"updated_at"`
}

func (d applicationDoc) toDomain() *domain.Application {
	return &domain.Application{
		ID:            d.ID.Hex(),
		UserID:        d.UserID.Hex(),
		JobID:         d.JobID.Hex(),
		ResumeRef:     d.ResumeRef,
		Applicant:     d.Applicant,
		Status:        domain.ApplicationStatus(d.Status),
		StatusHistory: d.StatusHistory,
		AppliedAt:     d.AppliedAt,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// Create inserts the application. The unique (user_id, job_id) index turns a
// concurrent duplicate submission into domain.ErrDuplicateApplication for
// the losing writer; there is no read-then-write race window.
func (r *ApplicationRepository) Create(ctx context.Context, app *domain.Application) (*domain.Application, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	userOID, err := primitive.ObjectIDFromHex(app.UserID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	jobOID, err := primitive.ObjectIDFromHex(app.JobID)
	if err != nil {
		return nil, domain.ErrJobNotFound
	}

	doc := applicationDoc{
		UserID:        userOID,
		JobID:         jobOID,
		ResumeRef:     app.ResumeRef,
		Applicant:     app.Applicant,
		Status:        string(app.Status),
		StatusHistory: app.StatusHistory,
		AppliedAt:     app.AppliedAt,
		CreatedAt:     app.CreatedAt,
		UpdatedAt:     app.UpdatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateApplication
		}
		return nil, fmt.Errorf("insert application: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*domain.Application, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrApplicationNotFound
	}

	var doc applicationDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("find application: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ApplicationRepository) FindByUser(ctx context.Context, userID string) ([]*domain.Application, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []*domain.Application{}, nil
	}

	cur, err := r.col.Find(ctx, bson.M{"user_id": oid}, listSortOptions())
	if err != nil {
		return nil, fmt.Errorf("find applications by user: %w", err)
	}
	defer cur.Close(ctx)

	return decodeApplications(ctx, cur)
}

// List returns one page plus the total count for the compound filter.
func (r *ApplicationRepository) List(ctx context.Context, filter ports.ListApplicationsFilter) ([]*domain.Application, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.JobID != "" {
		oid, err := primitive.ObjectIDFromHex(filter.JobID)
		if err != nil {
			return []*domain.Application{}, 0, nil
		}
		query["job_id"] = oid
	}
	if filter.JobIDs != nil {
		oids := make([]primitive.ObjectID, 0, len(filter.JobIDs))
		for _, id := range filter.JobIDs {
			if oid, err := primitive.ObjectIDFromHex(id); err == nil {
				oids = append(oids, oid)
			}
		}
		// A resolved-but-empty job set must yield an empty page; $in with an
		// empty array matches nothing, which is exactly that.
		query["job_id"] = bson.M{"$in": oids}
	}
	if filter.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"applicant.name": re},
			bson.M{"applicant.email": re},
			bson.M{"applicant.skills": re},
		}
	}
	appliedAt := bson.M{}
	if !filter.DateFrom.IsZero() {
		appliedAt["$gte"] = filter.DateFrom
	}
	if !filter.DateTo.IsZero() {
		appliedAt["$lte"] = filter.DateTo
	}
	if len(appliedAt) > 0 {
		query["applied_at"] = appliedAt
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	opts := listSortOptions().
		SetSkip(int64(filter.Page-1) * int64(filter.Limit)).
		SetLimit(int64(filter.Limit))

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}
	defer cur.Close(ctx)

	apps, err := decodeApplications(ctx, cur)
	return apps, total, err
}

// listSortOptions orders by applied_at descending with _id descending as the
// tie-breaker, keeping pagination deterministic under equal timestamps.
func listSortOptions() *options.FindOptions {
	return options.Find().SetSort(bson.D{
		{Key: "applied_at", Value: -1},
		{Key: "_id", Value: -1},
	})
}

func decodeApplications(ctx context.Context, cur *mongo.Cursor) ([]*domain.Application, error) {
	apps := []*domain.Application{}
	for cur.Next(ctx) {
		var doc applicationDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		apps = append(apps, doc.toDomain())
	}
	return apps, cur.Err()
}

// UpdateStatus atomically sets the status field and appends the history
// entry in one document write, returning the post-update document. Status
// and history can never be observed disagreeing, even under concurrent
// transitions.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status domain.ApplicationStatus, at time.Time) (*domain.Application, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrApplicationNotFound
	}

	update := bson.M{
		"$set": bson.M{
			"status":     string(status),
			"updated_at": at,
		},
		"$push": bson.M{
			"status_history": bson.M{"status": string(status), "changed_at": at},
		},
	}

	var doc applicationDoc
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("update application status: %w", err)
	}
	return doc.toDomain(), nil
}

// CountPerJob groups applications by job and joins the posting title.
// Ordering is count descending, then job id, so output is deterministic.
func (r *ApplicationRepository) CountPerJob(ctx context.Context) ([]ports.JobApplicationCount, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":                "$job_id",
			"total_applications": bson.M{"$sum": 1},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionJobs,
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "job",
		}}},
		{{Key: "$unwind", Value: "$job"}},
		{{Key: "$project", Value: bson.M{
			"job_title":          "$job.title",
			"total_applications": 1,
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "total_applications", Value: -1},
			{Key: "_id", Value: 1},
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate applications per job: %w", err)
	}
	defer cur.Close(ctx)

	rows := []ports.JobApplicationCount{}
	for cur.Next(ctx) {
		var doc struct {
			ID                primitive.ObjectID `bson:"_id"`
			JobTitle          string             `bson:"job_title"`
			TotalApplications int64              `bson:"total_applications"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		rows = append(rows, ports.JobApplicationCount{
			JobID:             doc.ID.Hex(),
			JobTitle:          doc.JobTitle,
			TotalApplications: doc.TotalApplications,
		})
	}
	return rows, cur.Err()
}

func (r *ApplicationRepository) FindAll(ctx context.Context) ([]*domain.Application, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, listSortOptions())
	if err != nil {
		return nil, fmt.Errorf("find all applications: %w", err)
	}
	defer cur.Close(ctx)

	return decodeApplications(ctx, cur)
}

func (r *ApplicationRepository) DeleteByJob(ctx context.Context, jobID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(jobID)
	if err != nil {
		return 0, domain.ErrJobNotFound
	}

	res, err := r.col.DeleteMany(ctx, bson.M{"job_id": oid})
	if err != nil {
		return 0, fmt.Errorf("delete applications by job: %w", err)
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates the unique (user_id, job_id) compound index plus the
// listing indexes.
func (r *ApplicationRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "job_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "job_id", Value: 1}}},
		{Keys: bson.D{{Key: "applied_at", Value: -1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
