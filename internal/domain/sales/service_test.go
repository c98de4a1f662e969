package sales_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tudogestao/internal/core/apperror"
	"tudogestao/internal/core/entity"
	"tudogestao/internal/core/id"
	"tudogestao/internal/core/types"
	"tudogestao/internal/domain/customers"
	"tudogestao/internal/domain/events"
	"tudogestao/internal/domain/products"
	"tudogestao/internal/domain/receivables"
	"tudogestao/internal/domain/registers/stock"
	"tudogestao/internal/domain/sales"
	"tudogestao/internal/infrastructure/storage/memory"
)

type fixture struct {
	store       *memory.Store
	sales       *sales.Service
	receivables *receivables.Service
	stock       *stock.Service
	company     id.ID
	customer    *customers.Customer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	stockSvc := stock.NewService(store.Movements())

	salesSvc := sales.NewService(sales.Deps{
		Repo:      store.Sales(),
		Products:  store.Products(),
		Customers: store.Customers(),
		Stock:     stockSvc,
		Numerator: store,
		TxManager: store,
		Events:    store,
	})
	recSvc := receivables.NewService(store.Receivables(), salesSvc, store, nil)
	recSvc.RegisterSaleHooks(salesSvc.Hooks())

	company := id.New()
	customer := customers.NewCustomer(company, "Maria Silva")
	require.NoError(t, store.Customers().Create(context.Background(), customer))

	return &fixture{
		store:       store,
		sales:       salesSvc,
		receivables: recSvc,
		stock:       stockSvc,
		company:     company,
		customer:    customer,
	}
}

func (f *fixture) product(t *testing.T, code, price string, stockQty int) *products.Product {
	t.Helper()
	p := products.NewProduct(f.company, code, "Product "+code)
	p.SalePrice = types.MustMoney(price)
	p.Stock = stockQty
	require.NoError(t, f.store.Products().Create(context.Background(), p))
	return p
}

func (f *fixture) stockOf(t *testing.T, productID id.ID) int {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), f.company, productID)
	require.NoError(t, err)
	return p.Stock
}

func (f *fixture) input(items ...sales.ItemInput) sales.CreateSaleInput {
	in, _ := sales.NewCreateSaleInput(sales.CreateSaleInput{
		CompanyID:  f.company,
		CustomerID: f.customer.ID,
		Items:      items,
	})
	return in
}

func item(productID id.ID, qty int) sales.ItemInput {
	return sales.ItemInput{ProductID: productID, Quantity: qty}
}

func TestCreate_DecrementsStockAndNumbers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "P1", "10.00", 10)

	sale, err := f.sales.Create(ctx, f.input(item(p.ID, 3)))
	require.NoError(t, err)

	assert.Equal(t, "VND-000001", sale.Number)
	assert.Equal(t, sales.StatusPending, sale.Status)
	assert.Equal(t, "30.00", sale.Subtotal.StringFixed(2))
	assert.Equal(t, "30.00", sale.NetAmount.StringFixed(2))
	assert.Equal(t, 7, f.stockOf(t, p.ID))

	moves, err := f.stock.ForRecorder(ctx, f.company, sale.ID)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, entity.RecordTypeExpense, moves[0].RecordType)
	assert.Equal(t, 3, moves[0].Quantity)

	second, err := f.sales.Create(ctx, f.input(item(p.ID, 1)))
	require.NoError(t, err)
	assert.Equal(t, "VND-000002", second.Number)
}

func TestCreate_Totals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A", "10.00", 10)
	b := f.product(t, "B", "2.50", 10)

	in := f.input(
		sales.ItemInput{ProductID: a.ID, Quantity: 2, Discount: types.MustMoney("1.00")},
		item(b.ID, 4),
	)
	in.Discount = types.MustMoney("5.00")

	sale, err := f.sales.Create(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, "30.00", sale.Subtotal.StringFixed(2), "item discounts are not subtracted")
	assert.Equal(t, "25.00", sale.NetAmount.StringFixed(2))
	require.Len(t, sale.Items, 2)
	assert.Equal(t, "19.00", sale.Items[0].Total.StringFixed(2))
	assert.Equal(t, "10.00", sale.Items[1].Total.StringFixed(2))
}

func TestCreate_ExplicitUnitPrice(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "P1", "10.00", 10)

	price := types.MustMoney("7.25")
	sale, err := f.sales.Create(context.Background(), f.input(sales.ItemInput{ProductID: p.ID, Quantity: 2, UnitPrice: &price}))
	require.NoError(t, err)
	assert.Equal(t, "14.50", sale.Subtotal.StringFixed(2))
}

func TestCreate_InsufficientStockChangesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A", "10.00", 5)
	b := f.product(t, "B", "10.00", 1)

	_, err := f.sales.Create(ctx, f.input(item(a.ID, 2), item(b.ID, 2)))
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.HTTPStatus)
	assert.Equal(t, b.ID.String(), appErr.Details["product_id"])

	assert.Equal(t, 5, f.stockOf(t, a.ID))
	assert.Equal(t, 1, f.stockOf(t, b.ID))

	filter := sales.ListFilter{}
	filter.CompanyID = f.company
	res, err := f.sales.List(ctx, filter)
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Zero(t, res.TotalCount)

	// the failed attempt does not consume a number
	sale, err := f.sales.Create(ctx, f.input(item(a.ID, 1)))
	require.NoError(t, err)
	assert.Equal(t, "VND-000001", sale.Number)
}

func TestCreate_DuplicateProductLinesAreSummed(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "P1", "1.00", 3)

	_, err := f.sales.Create(context.Background(), f.input(item(p.ID, 2), item(p.ID, 2)))
	assert.True(t, apperror.IsInsufficientStock(err))
	assert.Equal(t, 3, f.stockOf(t, p.ID))
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "P1", "10.00", 10)

	t.Run("unknown customer", func(t *testing.T) {
		in := f.input(item(p.ID, 1))
		in.CustomerID = id.New()
		_, err := f.sales.Create(ctx, in)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := f.sales.Create(ctx, f.input(item(id.New(), 1)))
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("discount above subtotal", func(t *testing.T) {
		in := f.input(item(p.ID, 1))
		in.Discount = types.MustMoney("10.01")
		_, err := f.sales.Create(ctx, in)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	})

	t.Run("no items", func(t *testing.T) {
		_, err := sales.NewCreateSaleInput(sales.CreateSaleInput{CompanyID: f.company, CustomerID: f.customer.ID})
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	})

	t.Run("zero quantity", func(t *testing.T) {
		_, err := sales.NewCreateSaleInput(sales.CreateSaleInput{
			CompanyID:  f.company,
			CustomerID: f.customer.ID,
			Items:      []sales.ItemInput{item(p.ID, 0)},
		})
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	})

	assert.Equal(t, 10, f.stockOf(t, p.ID))
}

func TestCreate_OtherCompanyProductIsNotFound(t *testing.T) {
	f := newFixture(t)
	other := products.NewProduct(id.New(), "X", "foreign")
	other.Stock = 10
	require.NoError(t, f.store.Products().Create(context.Background(), other))

	_, err := f.sales.Create(context.Background(), f.input(item(other.ID, 1)))
	assert.True(t, apperror.IsNotFound(err))
}

func TestCancel_ReturnsStockOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "P1", "10.00", 10)

	sale, err := f.sales.Create(ctx, f.input(item(p.ID, 4)))
	require.NoError(t, err)
	require.Equal(t, 6, f.stockOf(t, p.ID))

	cancelled, err := f.sales.Cancel(ctx, f.company, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.StatusCancelled, cancelled.Status)
	assert.True(t, cancelled.StockReversed)
	assert.Equal(t, 10, f.stockOf(t, p.ID))

	_, err = f.sales.Cancel(ctx, f.company, sale.ID)
	assert.True(t, apperror.IsAlreadyCancelled(err))
	assert.True(t, apperror.IsInvalidState(err))
	assert.Equal(t, 10, f.stockOf(t, p.ID))
}

func TestCancel_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.sales.Cancel(context.Background(), f.company, id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestDelete_ReturnsStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "P1", "10.00", 10)

	sale, err := f.sales.Create(ctx, f.input(item(p.ID, 4)))
	require.NoError(t, err)

	require.NoError(t, f.sales.Delete(ctx, f.company, sale.ID))
	assert.Equal(t, 10, f.stockOf(t, p.ID))

	_, err = f.sales.Get(ctx, f.company, sale.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDelete_AfterCancelDoesNotReturnStockTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "P1", "10.00", 10)

	sale, err := f.sales.Create(ctx, f.input(item(p.ID, 4)))
	require.NoError(t, err)
	_, err = f.sales.Cancel(ctx, f.company, sale.ID)
	require.NoError(t, err)

	require.NoError(t, f.sales.Delete(ctx, f.company, sale.ID))
	assert.Equal(t, 10, f.stockOf(t, p.ID))
}

func TestDelete_PaidSaleIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "P1", "10.00", 10)

	sale, err := f.sales.Create(ctx, f.input(item(p.ID, 2)))
	require.NoError(t, err)
	_, err = f.sales.UpdateStatus(ctx, f.company, sale.ID, sales.StatusPaid)
	require.NoError(t, err)

	err = f.sales.Delete(ctx, f.company, sale.ID)
	assert.True(t, apperror.IsInvalidState(err))
	assert.Equal(t, 8, f.stockOf(t, p.ID))

	got, err := f.sales.Get(ctx, f.company, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.StatusPaid, got.Status)
}

func TestUpdateStatus_Transitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "P1", "10.00", 10)

	sale, err := f.sales.Create(ctx, f.input(item(p.ID, 1)))
	require.NoError(t, err)

	got, err := f.sales.UpdateStatus(ctx, f.company, sale.ID, sales.StatusPartial)
	require.NoError(t, err)
	assert.Equal(t, sales.StatusPartial, got.Status)

	_, err = f.sales.UpdateStatus(ctx, f.company, sale.ID, sales.StatusPending)
	assert.True(t, apperror.IsInvalidState(err))

	got, err = f.sales.UpdateStatus(ctx, f.company, sale.ID, sales.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, sales.StatusPaid, got.Status)

	// same status is a no-op
	got, err = f.sales.UpdateStatus(ctx, f.company, sale.ID, sales.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, sales.StatusPaid, got.Status)

	_, err = f.sales.UpdateStatus(ctx, f.company, sale.ID, sales.Status("SHIPPED"))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	var paid int
	for _, e := range f.store.PublishedEvents() {
		if e.EventType == events.SalePaid {
			paid++
		}
	}
	assert.Equal(t, 1, paid)
}

func TestUpdateStatus_CancelledReturnsStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "P1", "10.00", 10)

	sale, err := f.sales.Create(ctx, f.input(item(p.ID, 3)))
	require.NoError(t, err)

	got, err := f.sales.UpdateStatus(ctx, f.company, sale.ID, sales.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, sales.StatusCancelled, got.Status)
	assert.Equal(t, 10, f.stockOf(t, p.ID))
}

func TestCreate_GeneratesInstallments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "P1", "100.00", 10)

	in := f.input(item(p.ID, 1))
	in.PaymentMethod = sales.PaymentBankSlip
	in.Installments = 3
	in.Date = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	sale, err := f.sales.Create(ctx, in)
	require.NoError(t, err)

	recs, err := f.receivables.ListBySale(ctx, f.company, sale.ID)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "33.33", recs[0].Amount.StringFixed(2))
	assert.Equal(t, "33.33", recs[1].Amount.StringFixed(2))
	assert.Equal(t, "33.34", recs[2].Amount.StringFixed(2))
	assert.Equal(t, in.Date.AddDate(0, 0, 30), recs[0].DueDate)
	assert.Equal(t, in.Date.AddDate(0, 0, 90), recs[2].DueDate)
}

func TestGet_PopulatesItemsAndCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "P1", "10.00", 10)

	sale, err := f.sales.Create(ctx, f.input(item(p.ID, 2)))
	require.NoError(t, err)

	got, err := f.sales.Get(ctx, f.company, sale.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, p.ID, got.Items[0].ProductID)
	require.NotNil(t, got.Customer)
	assert.Equal(t, "Maria Silva", got.Customer.Name)

	_, err = f.sales.Get(ctx, id.New(), sale.ID)
	assert.True(t, apperror.IsNotFound(err), "other company")
}

func TestList_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "P1", "10.00", 10)

	first, err := f.sales.Create(ctx, f.input(item(p.ID, 1)))
	require.NoError(t, err)
	_, err = f.sales.Create(ctx, f.input(item(p.ID, 1)))
	require.NoError(t, err)
	_, err = f.sales.Cancel(ctx, f.company, first.ID)
	require.NoError(t, err)

	status := sales.StatusCancelled
	filter := sales.ListFilter{Status: &status}
	filter.CompanyID = f.company

	res, err := f.sales.List(ctx, filter)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, first.ID, res.Items[0].ID)
}
