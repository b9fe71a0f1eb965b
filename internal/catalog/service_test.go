package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errVariantInsert = errors.New("variant insert failed")

type memoryRepo struct {
	nextID   int64
	products map[int64]Product
	variants map[int64][]Variant

	// failVariants forces variant writes to error, standing in for a
	// mid-transaction insert failure.
	failVariants bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		nextID:   1,
		products: make(map[int64]Product),
		variants: make(map[int64][]Variant),
	}
}

func (m *memoryRepo) List(context.Context) ([]Product, error) {
	out := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (*Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.Variants = m.variants[id]
	return &p, nil
}

// Create mirrors the transactional contract: product and variants land
// together or not at all.
func (m *memoryRepo) Create(ctx context.Context, p Product, inputs []VariantInput) (int64, error) {
	for _, existing := range m.products {
		if existing.Reference == p.Reference {
			return 0, ErrDuplicateReference
		}
	}
	if m.failVariants && len(inputs) > 0 {
		return 0, errVariantInsert
	}
	p.ID = m.nextID
	p.CreatedAt = time.Now()
	m.nextID++
	m.products[p.ID] = p
	if err := m.ReplaceVariants(ctx, p.ID, inputs); err != nil {
		delete(m.products, p.ID)
		return 0, err
	}
	return p.ID, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, patch ProductPatch) error {
	p, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.PriceWholesale != nil {
		p.PriceWholesale = patch.PriceWholesale
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	m.products[id] = p
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.products[id]; !ok {
		return ErrNotFound
	}
	delete(m.products, id)
	delete(m.variants, id)
	return nil
}

func (m *memoryRepo) ReplaceVariants(_ context.Context, productID int64, inputs []VariantInput) error {
	if _, ok := m.products[productID]; !ok {
		return ErrNotFound
	}
	var rows []Variant
	for _, in := range inputs {
		if in.Color == "" || in.Size == "" || in.Channel == "" {
			continue
		}
		stock := in.Stock
		if stock < 0 {
			stock = 0
		}
		rows = append(rows, Variant{
			ID:        m.nextID,
			ProductID: productID,
			Color:     in.Color,
			Size:      in.Size,
			Channel:   in.Channel,
			Stock:     stock,
		})
		m.nextID++
	}
	m.variants[productID] = rows
	return nil
}

func (m *memoryRepo) ListVariants(_ context.Context, productID int64) ([]Variant, error) {
	return m.variants[productID], nil
}

func (m *memoryRepo) AggregateStock(_ context.Context, productID int64, channel Channel) (int, error) {
	var total int
	for _, v := range m.variants[productID] {
		if channel == "" || v.Channel == channel {
			total += v.Stock
		}
	}
	return total, nil
}

func (m *memoryRepo) AdjustStock(_ context.Context, productID int64, color, size string, channel Channel, delta int) error {
	rows := m.variants[productID]
	for i, v := range rows {
		if v.Color == color && v.Size == size && v.Channel == channel {
			rows[i].Stock += delta
			if rows[i].Stock < 0 {
				rows[i].Stock = 0
			}
		}
	}
	return nil
}

func TestCreateWithInitialVariants(t *testing.T) {
	svc := NewService(newMemoryRepo())

	p, err := svc.Create(context.Background(), Product{Name: "Linen Shirt", Reference: "LS-01", Price: 50}, []VariantInput{
		{Color: "white", Size: "M", Channel: ChannelSingle, Stock: 10},
		{Color: "white", Size: "L", Channel: ChannelWholesale, Stock: 30},
	})
	require.NoError(t, err)
	require.Equal(t, "LS-01", p.Reference)
	require.Len(t, p.Variants, 2)
}

func TestCreateVariantFailureLeavesNoProduct(t *testing.T) {
	repo := newMemoryRepo()
	repo.failVariants = true
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), Product{Name: "Linen Shirt", Reference: "LS-01", Price: 50}, []VariantInput{
		{Color: "white", Size: "M", Channel: ChannelSingle, Stock: 5},
	})
	require.ErrorIs(t, err, errVariantInsert)
	require.Empty(t, repo.products)
	require.Empty(t, repo.variants)
}

func TestCreateRejectsUnknownChannel(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), Product{Name: "Shirt", Reference: "LS-01", Price: 50}, []VariantInput{
		{Color: "white", Size: "M", Channel: "retail", Stock: 5},
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateRejectsMissingFields(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), Product{Name: "No Ref"}, nil)
	require.Error(t, err)

	_, err = svc.Create(context.Background(), Product{Reference: "R-1"}, nil)
	require.Error(t, err)

	_, err = svc.Create(context.Background(), Product{Name: "N", Reference: "R-1", Price: -1}, nil)
	require.Error(t, err)
}

func TestCreateRejectsDuplicateReference(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), Product{Name: "A", Reference: "DUP-1", Price: 10}, nil)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), Product{Name: "B", Reference: "DUP-1", Price: 20}, nil)
	require.ErrorIs(t, err, ErrDuplicateReference)
}

func TestUpdatePatchesOnlyProvidedFields(t *testing.T) {
	svc := NewService(newMemoryRepo())
	created, err := svc.Create(context.Background(), Product{Name: "Coat", Reference: "WC-02", Price: 200, Category: "coats"}, nil)
	require.NoError(t, err)

	price := 180.0
	updated, err := svc.Update(context.Background(), created.ID, ProductPatch{Price: &price})
	require.NoError(t, err)
	require.Equal(t, 180.0, updated.Price)
	require.Equal(t, "Coat", updated.Name)
	require.Equal(t, "coats", updated.Category)
}

func TestUpdateRejectsNegativePrice(t *testing.T) {
	svc := NewService(newMemoryRepo())
	created, err := svc.Create(context.Background(), Product{Name: "Coat", Reference: "WC-02", Price: 200}, nil)
	require.NoError(t, err)

	price := -5.0
	_, err = svc.Update(context.Background(), created.ID, ProductPatch{Price: &price})
	require.Error(t, err)
}

func TestReplaceVariantsSkipsIncompleteRows(t *testing.T) {
	svc := NewService(newMemoryRepo())
	created, err := svc.Create(context.Background(), Product{Name: "Shirt", Reference: "LS-01", Price: 50}, nil)
	require.NoError(t, err)

	p, err := svc.ReplaceVariants(context.Background(), created.ID, []VariantInput{
		{Color: "white", Size: "M", Channel: ChannelSingle, Stock: 5},
		{Color: "", Size: "M", Channel: ChannelSingle, Stock: 5},
		{Color: "white", Size: "", Channel: ChannelSingle, Stock: 5},
	})
	require.NoError(t, err)
	require.Len(t, p.Variants, 1)
}

func TestReplaceVariantsClampsNegativeStock(t *testing.T) {
	svc := NewService(newMemoryRepo())
	created, err := svc.Create(context.Background(), Product{Name: "Shirt", Reference: "LS-01", Price: 50}, nil)
	require.NoError(t, err)

	p, err := svc.ReplaceVariants(context.Background(), created.ID, []VariantInput{
		{Color: "white", Size: "M", Channel: ChannelSingle, Stock: -4},
	})
	require.NoError(t, err)
	require.Equal(t, 0, p.Variants[0].Stock)
}

func TestReplaceVariantsRejectsUnknownChannel(t *testing.T) {
	svc := NewService(newMemoryRepo())
	created, err := svc.Create(context.Background(), Product{Name: "Shirt", Reference: "LS-01", Price: 50}, nil)
	require.NoError(t, err)

	_, err = svc.ReplaceVariants(context.Background(), created.ID, []VariantInput{
		{Color: "white", Size: "M", Channel: "retail", Stock: 5},
	})
	require.Error(t, err)
}

func TestStockSummaryAggregatesChannels(t *testing.T) {
	svc := NewService(newMemoryRepo())
	created, err := svc.Create(context.Background(), Product{Name: "Shirt", Reference: "LS-01", Price: 50}, []VariantInput{
		{Color: "white", Size: "38", Channel: ChannelSingle, Stock: 10},
		{Color: "navy", Size: "40", Channel: ChannelSingle, Stock: 4},
		{Color: "white", Size: "L", Channel: ChannelWholesale, Stock: 30},
	})
	require.NoError(t, err)

	sum, err := svc.Stock(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, 44, sum.Stock)
	require.Equal(t, 14, sum.StockSingle)
	require.Equal(t, 30, sum.StockWholesale)
}

func TestStockSummaryUnknownProduct(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Stock(context.Background(), 404)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStockSummaryVariantlessProductIsZero(t *testing.T) {
	svc := NewService(newMemoryRepo())
	created, err := svc.Create(context.Background(), Product{Name: "Shirt", Reference: "LS-01", Price: 50}, nil)
	require.NoError(t, err)

	sum, err := svc.Stock(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, 0, sum.Stock)
	require.Equal(t, 0, sum.StockSingle)
	require.Equal(t, 0, sum.StockWholesale)
}

func TestDeleteCascadesVariants(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	created, err := svc.Create(context.Background(), Product{Name: "Shirt", Reference: "LS-01", Price: 50}, []VariantInput{
		{Color: "white", Size: "M", Channel: ChannelSingle, Stock: 5},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	_, err = svc.Get(context.Background(), created.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.Empty(t, repo.variants[created.ID])
}
