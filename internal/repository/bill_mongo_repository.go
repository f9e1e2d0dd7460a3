package repository

import (
	"context"
	"fmt"
	"time"

	"billtrack/internal/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const billsCollection = "bills"

type billDocument struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty"`
	Title      string               `bson:"title"`
	Amount     primitive.Decimal128 `bson:"amount"`
	Date       string               `bson:"date"`
	StorageKey string               `bson:"s3Key"`
	CreatedAt  time.Time            `bson:"createdAt"`
}

// MongoBillRepository stores bills as documents in a MongoDB collection.
type MongoBillRepository struct {
	coll   *mongo.Collection
	logger *zap.Logger
}

func NewMongoBillRepository(db *mongo.Database, logger *zap.Logger) *MongoBillRepository {
	return &MongoBillRepository{
		coll:   db.Collection(billsCollection),
		logger: logger,
	}
}

func (r *MongoBillRepository) Create(ctx context.Context, bill *models.Bill) error {
	doc, err := toBillDocument(bill)
	if err != nil {
		return err
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert bill: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("insert bill: unexpected id type %T", res.InsertedID)
	}
	bill.ID = oid.Hex()

	r.logger.Debug("Bill stored", zap.String("id", bill.ID), zap.String("storage_key", bill.StorageKey))
	return nil
}

func (r *MongoBillRepository) List(ctx context.Context) ([]*models.Bill, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find bills: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []billDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode bills: %w", err)
	}

	bills := make([]*models.Bill, 0, len(docs))
	for i := range docs {
		bill, err := fromBillDocument(&docs[i])
		if err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}
	return bills, nil
}

func toBillDocument(bill *models.Bill) (*billDocument, error) {
	amount, err := primitive.ParseDecimal128(bill.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("encode amount %s: %w", bill.Amount, err)
	}

	return &billDocument{
		Title:      bill.Title,
		Amount:     amount,
		Date:       bill.Date.Format(models.DateLayout),
		StorageKey: bill.StorageKey,
		CreatedAt:  bill.CreatedAt,
	}, nil
}

func fromBillDocument(doc *billDocument) (*models.Bill, error) {
	amount, err := decimal.NewFromString(doc.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("decode amount for bill %s: %w", doc.ID.Hex(), err)
	}

	date, err := time.Parse(models.DateLayout, doc.Date)
	if err != nil {
		return nil, fmt.Errorf("decode date for bill %s: %w", doc.ID.Hex(), err)
	}

	return &models.Bill{
		ID:         doc.ID.Hex(),
		Title:      doc.Title,
		Amount:     amount,
		Date:       date,
		StorageKey: doc.StorageKey,
		CreatedAt:  doc.CreatedAt,
	}, nil
}
