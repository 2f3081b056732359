package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/roomsync/reservation-system/internal/core/domain"
	"github.com/roomsync/reservation-system/internal/core/ports"
)

const reservationCollection = "reservations"

type ReservationRepository struct {
	coll       *mongo.Collection
	afterWrite WriteHook
}

func NewReservationRepository(db *mongo.Database, afterWrite WriteHook) *ReservationRepository {
	if afterWrite == nil {
		afterWrite = func(context.Context, string) {}
	}
	return &ReservationRepository{coll: db.Collection(reservationCollection), afterWrite: afterWrite}
}

type mongoReservation struct {
	ID        string    `bson:"_id"`
	ClientID  string    `bson:"client_id"`
	RoomID    string    `bson:"room_id"`
	GuestName string    `bson:"guest_name"`
	Starts    time.Time `bson:"starts"`
	Ends      time.Time `bson:"ends"`
	Status    string    `bson:"status"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (mr mongoReservation) toDomain() *domain.Reservation {
	return &domain.Reservation{
		ID:        mr.ID,
		ClientID:  mr.ClientID,
		RoomID:    mr.RoomID,
		GuestName: mr.GuestName,
		Starts:    mr.Starts,
		Ends:      mr.Ends,
		Status:    domain.ReservationStatus(mr.Status),
		CreatedAt: mr.CreatedAt,
		UpdatedAt: mr.UpdatedAt,
	}
}

// Create inserts a new reservation document and fires the post-write hook.
func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	doc := mongoReservation{
		ID:        res.ID,
		ClientID:  res.ClientID,
		RoomID:    res.RoomID,
		GuestName: res.GuestName,
		Starts:    res.Starts,
		Ends:      res.Ends,
		Status:    string(res.Status),
		CreatedAt: res.CreatedAt,
		UpdatedAt: res.UpdatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}

	r.afterWrite(ctx, res.ID)
	return nil
}

// FindByID retrieves a reservation by id. When clientID is non-empty an
// additional filter by client_id is applied (RBAC scoping).
func (r *ReservationRepository) FindByID(ctx context.Context, id string, clientID string) (*domain.Reservation, error) {
	filter := bson.M{"_id": id}
	if clientID != "" {
		filter["client_id"] = clientID
	}

	var mr mongoReservation
	if err := r.coll.FindOne(ctx, filter).Decode(&mr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, err
	}
	return mr.toDomain(), nil
}

// UpdateStatus persists a status transition and fires the post-write hook.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, id string, status domain.ReservationStatus) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": string(status), "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrReservationNotFound
	}

	r.afterWrite(ctx, id)
	return nil
}

// List returns a page of reservations matching filter and the total count.
func (r *ReservationRepository) List(ctx context.Context, filter ports.ListReservationsFilter) ([]*domain.Reservation, int64, error) {
	query := bson.M{}
	if filter.ClientID != "" {
		query["client_id"] = filter.ClientID
	}
	if filter.RoomID != "" {
		query["room_id"] = filter.RoomID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var out []*domain.Reservation
	for cursor.Next(ctx) {
		var mr mongoReservation
		if err := cursor.Decode(&mr); err != nil {
			return nil, 0, err
		}
		out = append(out, mr.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// EnsureIndexes creates the indexes both repositories rely on, including the
// unique email index that backs duplicate registration detection.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := db.Collection(userCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(reservationCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "client_id", Value: 1}}},
		{Keys: bson.D{{Key: "room_id", Value: 1}, {Key: "starts", Value: 1}}},
	})
	return err
}
