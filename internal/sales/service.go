package sales

import (
	"context"
	"fmt"
	"time"
)

// Service orchestrates the sale lifecycle: create, delete, edit and
// reservation finalization, each inside one atomic unit.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) newID(t Type, at time.Time) string {
	prefix := "MAN"
	if t == TypeSale {
		prefix = "TXN"
	}
	return fmt.Sprintf("%s-%d", prefix, at.UnixMilli())
}

// Get returns a transaction with its items.
func (s *Service) Get(ctx context.Context, id string) (*Transaction, error) {
	return s.repo.Get(ctx, id)
}

// ListRecent returns the newest transactions, bounded.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]Transaction, error) {
	return s.repo.ListRecent(ctx, limit)
}

// Create records a transaction. For sales, item rows are inserted and the
// ledger is debited for every item carrying both color and size. A reserved
// sale debits stock immediately; finalize never debits again.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Transaction, error) {
	if !input.Type.Valid() {
		return nil, ErrInvalidType
	}
	now := s.now().UTC()
	status := StatusCompleted
	if input.Reserved && input.Type == TypeSale {
		status = StatusReserved
	}
	header := Transaction{
		ID:            s.newID(input.Type, now),
		Type:          input.Type,
		Status:        status,
		Total:         input.Total,
		PaymentMethod: input.PaymentMethod,
		Description:   input.Description,
		CreatedBy:     input.CreatedBy,
		Location:      input.Location,
		CreatedAt:     now,
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.InsertTransaction(ctx, header); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		if input.Type != TypeSale {
			return nil
		}
		for _, in := range input.Items {
			item := Item{
				TransactionID: header.ID,
				ProductID:     in.ProductID,
				Color:         in.Color,
				Size:          in.Size,
				Channel:       in.Channel,
				Quantity:      in.Quantity,
				UnitPrice:     in.UnitPrice,
			}
			if _, err := tx.InsertItem(ctx, item); err != nil {
				return fmt.Errorf("insert item: %w", err)
			}
			if in.Color != "" && in.Size != "" {
				if err := tx.AdjustStock(ctx, in.ProductID, in.Color, in.Size, in.Channel, -in.Quantity); err != nil {
					return fmt.Errorf("debit stock: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, header.ID)
}

// Delete removes a transaction. For sales, every item with full variant
// identity restores its quantity to stock before the rows go.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		t, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		if t.Type == TypeSale {
			for _, item := range t.Items {
				if !item.HasVariantIdentity() {
					continue
				}
				if err := tx.AdjustStock(ctx, item.ProductID, item.Color, item.Size, item.Channel, item.Quantity); err != nil {
					return fmt.Errorf("restore stock: %w", err)
				}
			}
		}
		return tx.Delete(ctx, id)
	})
}

// reconcileItems applies a replacement item set to the sale's current rows:
// absent items restore their full quantity and are deleted; present items
// clamp to quantity >= 1 and price >= 0, restoring only decreases (increases
// never re-debit the ledger). Returns the recomputed total.
func reconcileItems(ctx context.Context, tx TxRepository, t *Transaction, edits []ItemEdit) (float64, error) {
	byID := make(map[int64]ItemEdit, len(edits))
	for _, e := range edits {
		byID[e.ItemID] = e
	}

	var total float64
	for _, item := range t.Items {
		edit, keep := byID[item.ID]
		if !keep {
			if item.HasVariantIdentity() {
				if err := tx.AdjustStock(ctx, item.ProductID, item.Color, item.Size, item.Channel, item.Quantity); err != nil {
					return 0, fmt.Errorf("restore stock: %w", err)
				}
			}
			if err := tx.DeleteItem(ctx, item.ID); err != nil {
				return 0, fmt.Errorf("delete item: %w", err)
			}
			continue
		}

		quantity := edit.Quantity
		if quantity < 1 {
			quantity = 1
		}
		price := edit.UnitPrice
		if price < 0 {
			price = 0
		}
		if quantity < item.Quantity && item.HasVariantIdentity() {
			if err := tx.AdjustStock(ctx, item.ProductID, item.Color, item.Size, item.Channel, item.Quantity-quantity); err != nil {
				return 0, fmt.Errorf("restore stock: %w", err)
			}
		}
		if err := tx.UpdateItem(ctx, item.ID, quantity, price); err != nil {
			return 0, fmt.Errorf("update item: %w", err)
		}
		total += float64(quantity) * price
	}
	return total, nil
}

// Edit rewrites a completed sale's item set in place and recomputes the
// total. Reserved sales must go through Finalize instead.
func (s *Service) Edit(ctx context.Context, id string, input EditInput) (*Transaction, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		t, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		if t.Type != TypeSale {
			return ErrNotSale
		}
		if t.Reserved() {
			return ErrReservedSale
		}
		total, err := reconcileItems(ctx, tx, t, input.Items)
		if err != nil {
			return err
		}
		return tx.UpdateHeader(ctx, id, HeaderPatch{Total: &total, PaymentMethod: input.PaymentMethod})
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Finalize reconciles a reserved sale's items exactly like Edit, then marks
// it completed. Stock was already debited at reservation time and is never
// debited again here.
func (s *Service) Finalize(ctx context.Context, id string, input EditInput) (*Transaction, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		t, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		if t.Type != TypeSale || !t.Reserved() {
			return ErrNotReserved
		}
		total, err := reconcileItems(ctx, tx, t, input.Items)
		if err != nil {
			return err
		}
		if err := tx.UpdateHeader(ctx, id, HeaderPatch{Total: &total, PaymentMethod: input.PaymentMethod}); err != nil {
			return err
		}
		return tx.SetStatus(ctx, id, StatusCompleted)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// UpdateHeader applies header-only corrections. Sales accept description and
// payment-method changes (never while reserved); manual entries also accept
// a total correction. No ledger effect either way.
func (s *Service) UpdateHeader(ctx context.Context, id string, patch HeaderPatch) (*Transaction, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		t, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		if t.Type == TypeSale {
			if t.Reserved() {
				return ErrReservedSale
			}
			patch.Total = nil
		}
		return tx.UpdateHeader(ctx, id, patch)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}
