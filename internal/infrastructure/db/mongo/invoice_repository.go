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

	"github.com/99minutos/invoice-system/internal/core/domain"
	"github.com/99minutos/invoice-system/internal/core/ports"
)

const collectionInvoices = "invoices"

// InvoiceRepository implements ports.InvoiceRepository using MongoDB. Items are
// embedded in the invoice document, so an insert is atomic on its own.
type InvoiceRepository struct {
	col *mongo.Collection
}

func NewInvoiceRepository(db *mongo.Database) *InvoiceRepository {
	return &InvoiceRepository{col: db.Collection(collectionInvoices)}
}

type invoiceItemDoc struct {
	Description string               `bson:"description"`
	Quantity    int                  `bson:"quantity"`
	UnitPrice   primitive.Decimal128 `bson:"unit_price"`
	TotalPrice  primitive.Decimal128 `bson:"total_price"`
}

type invoiceDoc struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty"`
	InvoiceNumber    string               `bson:"invoice_number"`
	CustomerName     string               `bson:"customer_name"`
	IssueDate        time.Time            `bson:"issue_date"`
	DueDate          time.Time            `bson:"due_date"`
	TotalAmount      primitive.Decimal128 `bson:"total_amount"`
	Status           string               `bson:"status"`
	AcceptedDate     *time.Time           `bson:"accepted_date,omitempty"`
	AssignedUserID   string               `bson:"assigned_user_id"`
	CreatedByAdminID string               `bson:"created_by_admin_id,omitempty"`
	Items            []invoiceItemDoc     `bson:"items"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func fromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(d.String())
}

func newInvoiceDoc(inv *domain.Invoice) (*invoiceDoc, error) {
	total, err := toDecimal128(inv.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("encode total amount: %w", err)
	}

	doc := &invoiceDoc{
		InvoiceNumber:    inv.InvoiceNumber,
		CustomerName:     inv.CustomerName,
		IssueDate:        inv.IssueDate.UTC(),
		DueDate:          inv.DueDate.UTC(),
		TotalAmount:      total,
		Status:           string(inv.Status),
		AcceptedDate:     inv.AcceptedDate,
		AssignedUserID:   inv.AssignedUserID,
		CreatedByAdminID: inv.CreatedByAdminID,
		Items:            make([]invoiceItemDoc, 0, len(inv.Items)),
	}
	for _, it := range inv.Items {
		unit, err := toDecimal128(it.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("encode unit price: %w", err)
		}
		line, err := toDecimal128(it.TotalPrice)
		if err != nil {
			return nil, fmt.Errorf("encode line total: %w", err)
		}
		doc.Items = append(doc.Items, invoiceItemDoc{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   unit,
			TotalPrice:  line,
		})
	}
	return doc, nil
}

func (d *invoiceDoc) toDomain() (*domain.Invoice, error) {
	total, err := fromDecimal128(d.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("decode total amount: %w", err)
	}

	inv := &domain.Invoice{
		ID:               d.ID.Hex(),
		InvoiceNumber:    d.InvoiceNumber,
		CustomerName:     d.CustomerName,
		IssueDate:        d.IssueDate.UTC(),
		DueDate:          d.DueDate.UTC(),
		TotalAmount:      total,
		Status:           domain.InvoiceStatus(d.Status),
		AssignedUserID:   d.AssignedUserID,
		CreatedByAdminID: d.CreatedByAdminID,
		Items:            make([]domain.InvoiceItem, 0, len(d.Items)),
	}
	if d.AcceptedDate != nil {
		ts := d.AcceptedDate.UTC()
		inv.AcceptedDate = &ts
	}
	for _, it := range d.Items {
		unit, err := fromDecimal128(it.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("decode unit price: %w", err)
		}
		line, err := fromDecimal128(it.TotalPrice)
		if err != nil {
			return nil, fmt.Errorf("decode line total: %w", err)
		}
		inv.Items = append(inv.Items, domain.InvoiceItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   unit,
			TotalPrice:  line,
		})
	}
	return inv, nil
}

// Create inserts the invoice document and sets inv.ID.
func (r *InvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	doc, err := newInvoiceDoc(inv)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateInvoiceNumber
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		inv.ID = oid.Hex()
	}
	return nil
}

func (r *InvoiceRepository) FindByID(ctx context.Context, id string) (*domain.Invoice, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvoiceNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc invoiceDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("find invoice: %w", err)
	}
	return doc.toDomain()
}

// List returns invoices matching the filter, most recently issued first.
func (r *InvoiceRepository) List(ctx context.Context, f ports.InvoiceFilter) ([]*domain.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.AssignedUserID != "" {
		filter["assigned_user_id"] = f.AssignedUserID
	}
	opts := options.Find().SetSort(bson.D{{Key: "issue_date", Value: -1}})

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer cur.Close(ctx)

	var docs []invoiceDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode invoices: %w", err)
	}

	out := make([]*domain.Invoice, 0, len(docs))
	for i := range docs {
		inv, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, nil
}

// UpdateStatus is a compare-and-set on the status field. A miss means either
// the invoice is gone or another request moved it first.
func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id string, from, to domain.InvoiceStatus, acceptedDate *time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvoiceNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"status": string(to)}
	if acceptedDate != nil {
		set["accepted_date"] = acceptedDate.UTC()
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid, "status": string(from)}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	err = r.col.FindOne(ctx, bson.M{"_id": oid}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrInvoiceNotFound
	}
	if err != nil {
		return fmt.Errorf("check invoice: %w", err)
	}
	return domain.ErrInvoiceProcessed
}

// EnsureIndexes creates necessary indexes on the invoices collection.
func (r *InvoiceRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "invoice_number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "assigned_user_id", Value: 1}, {Key: "issue_date", Value: -1}}},
		{Keys: bson.D{{Key: "issue_date", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
