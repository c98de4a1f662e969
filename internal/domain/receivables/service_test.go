package receivables_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tudogestao/internal/core/apperror"
	"tudogestao/internal/core/id"
	"tudogestao/internal/core/types"
	"tudogestao/internal/domain/customers"
	"tudogestao/internal/domain/products"
	"tudogestao/internal/domain/receivables"
	"tudogestao/internal/domain/registers/stock"
	"tudogestao/internal/domain/sales"
	"tudogestao/internal/infrastructure/storage/memory"
)

type env struct {
	sales       *sales.Service
	receivables *receivables.Service
	locks       *lockLog
	company     id.ID
	customer    id.ID
	product     id.ID
}

// lockLog records which rows are locked, in order.
type lockLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *lockLog) add(entry string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

func (l *lockLog) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

func (l *lockLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

type lockingSaleRepo struct {
	sales.Repository
	log *lockLog
}

func (r lockingSaleRepo) GetForUpdate(ctx context.Context, companyID, saleID id.ID) (*sales.Sale, error) {
	r.log.add("sale")
	return r.Repository.GetForUpdate(ctx, companyID, saleID)
}

type lockingReceivableRepo struct {
	receivables.Repository
	log *lockLog
}

func (r lockingReceivableRepo) GetForUpdate(ctx context.Context, companyID, receivableID id.ID) (*receivables.Receivable, error) {
	r.log.add("receivable")
	return r.Repository.GetForUpdate(ctx, companyID, receivableID)
}

func (r lockingReceivableRepo) DeleteBySale(ctx context.Context, companyID, saleID id.ID) error {
	r.log.add("receivable")
	return r.Repository.DeleteBySale(ctx, companyID, saleID)
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	locks := &lockLog{}

	salesSvc := sales.NewService(sales.Deps{
		Repo:      lockingSaleRepo{Repository: store.Sales(), log: locks},
		Products:  store.Products(),
		Customers: store.Customers(),
		Stock:     stock.NewService(store.Movements()),
		Numerator: store,
		TxManager: store,
		Events:    store,
	})
	recSvc := receivables.NewService(lockingReceivableRepo{Repository: store.Receivables(), log: locks}, salesSvc, store, nil)
	recSvc.RegisterSaleHooks(salesSvc.Hooks())

	company := id.New()
	c := customers.NewCustomer(company, "Cliente")
	require.NoError(t, store.Customers().Create(ctx, c))
	p := products.NewProduct(company, "P1", "Produto")
	p.SalePrice = types.MustMoney("50.00")
	p.Stock = 100
	require.NoError(t, store.Products().Create(ctx, p))

	return &env{sales: salesSvc, receivables: recSvc, locks: locks, company: company, customer: c.ID, product: p.ID}
}

func (e *env) sale(t *testing.T, method sales.PaymentMethod, installments int) *sales.Sale {
	t.Helper()
	in, err := sales.NewCreateSaleInput(sales.CreateSaleInput{
		CompanyID:     e.company,
		CustomerID:    e.customer,
		Items:         []sales.ItemInput{{ProductID: e.product, Quantity: 2}},
		PaymentMethod: method,
		Installments:  installments,
	})
	require.NoError(t, err)
	sale, err := e.sales.Create(context.Background(), in)
	require.NoError(t, err)
	return sale
}

func TestGenerateForSale_OnlyDeferredMethods(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	cash := e.sale(t, sales.PaymentCash, 1)
	recs, err := e.receivables.ListBySale(ctx, e.company, cash.ID)
	require.NoError(t, err)
	assert.Empty(t, recs)

	credit := e.sale(t, sales.PaymentStoreCredit, 2)
	recs, err = e.receivables.ListBySale(ctx, e.company, credit.ID)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for i, r := range recs {
		assert.Equal(t, i+1, r.InstallmentNo)
		assert.Equal(t, "50.00", r.Amount.StringFixed(2))
		assert.Equal(t, receivables.StatusPending, r.Status)
		require.NotNil(t, r.CustomerID)
		assert.Equal(t, e.customer, *r.CustomerID)
	}
}

func TestMarkPaid_LastInstallmentSettlesSale(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sale := e.sale(t, sales.PaymentBankSlip, 2)

	recs, err := e.receivables.ListBySale(ctx, e.company, sale.ID)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	paid, err := e.receivables.MarkPaid(ctx, e.company, recs[0].ID)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid())
	require.NotNil(t, paid.PaidAt)

	got, err := e.sales.Get(ctx, e.company, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.StatusPending, got.Status)

	_, err = e.receivables.MarkPaid(ctx, e.company, recs[1].ID)
	require.NoError(t, err)

	got, err = e.sales.Get(ctx, e.company, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.StatusPaid, got.Status)
}

func TestMarkPaid_DoesNotPromoteUnrelatedSale(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	saleA := e.sale(t, sales.PaymentBankSlip, 2)
	saleB := e.sale(t, sales.PaymentStoreCredit, 2)

	recsA, err := e.receivables.ListBySale(ctx, e.company, saleA.ID)
	require.NoError(t, err)
	require.Len(t, recsA, 2)
	recsB, err := e.receivables.ListBySale(ctx, e.company, saleB.ID)
	require.NoError(t, err)
	require.Len(t, recsB, 2)

	var wg sync.WaitGroup
	errs := make([]error, len(recsA))
	for i, r := range recsA {
		wg.Add(1)
		go func(i int, receivableID id.ID) {
			defer wg.Done()
			_, errs[i] = e.receivables.MarkPaid(ctx, e.company, receivableID)
		}(i, r.ID)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	_, err = e.receivables.MarkPaid(ctx, e.company, recsB[0].ID)
	require.NoError(t, err)

	gotA, err := e.sales.Get(ctx, e.company, saleA.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.StatusPaid, gotA.Status)

	gotB, err := e.sales.Get(ctx, e.company, saleB.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.StatusPending, gotB.Status)
}

func TestMarkPaid_LocksSaleBeforeReceivable(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sale := e.sale(t, sales.PaymentBankSlip, 2)

	recs, err := e.receivables.ListBySale(ctx, e.company, sale.ID)
	require.NoError(t, err)

	e.locks.reset()
	_, err = e.receivables.MarkPaid(ctx, e.company, recs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"sale", "receivable"}, e.locks.snapshot())

	open := e.sale(t, sales.PaymentBankSlip, 2)
	e.locks.reset()
	require.NoError(t, e.sales.Delete(ctx, e.company, open.ID))
	assert.Equal(t, []string{"sale", "receivable"}, e.locks.snapshot())
}

func TestMarkPaid_Idempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sale := e.sale(t, sales.PaymentBankSlip, 1)

	recs, err := e.receivables.ListBySale(ctx, e.company, sale.ID)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	first, err := e.receivables.MarkPaid(ctx, e.company, recs[0].ID)
	require.NoError(t, err)
	second, err := e.receivables.MarkPaid(ctx, e.company, recs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, first.Version, second.Version)
	assert.Equal(t, first.PaidAt, second.PaidAt)
}

func TestMarkPaid_NotFound(t *testing.T) {
	e := newEnv(t)
	_, err := e.receivables.MarkPaid(context.Background(), e.company, id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeleteSale_RemovesOpenReceivables(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sale := e.sale(t, sales.PaymentBankSlip, 3)

	require.NoError(t, e.sales.Delete(ctx, e.company, sale.ID))

	status := receivables.StatusPending
	filter := receivables.ListFilter{Status: &status}
	filter.CompanyID = e.company
	res, err := e.receivables.List(ctx, filter)
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestDeleteSale_WithPaidReceivableIsRejected(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sale := e.sale(t, sales.PaymentBankSlip, 2)

	recs, err := e.receivables.ListBySale(ctx, e.company, sale.ID)
	require.NoError(t, err)
	_, err = e.receivables.MarkPaid(ctx, e.company, recs[0].ID)
	require.NoError(t, err)

	err = e.sales.Delete(ctx, e.company, sale.ID)
	assert.True(t, apperror.IsInvalidState(err))

	recs, err = e.receivables.ListBySale(ctx, e.company, sale.ID)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestCreate_Standalone(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	r, err := e.receivables.Create(ctx, receivables.CreateInput{
		CompanyID:   e.company,
		Description: "Rent",
		Amount:      types.MustMoney("1200.00"),
		DueDate:     time.Now().AddDate(0, 1, 0),
	})
	require.NoError(t, err)
	assert.Zero(t, r.InstallmentNo)

	_, err = e.receivables.Create(ctx, receivables.CreateInput{
		CompanyID:   e.company,
		Description: "Zero",
		Amount:      types.Zero(),
		DueDate:     time.Now(),
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestCreate_LinkedToCancelledSale(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sale := e.sale(t, sales.PaymentCash, 1)
	_, err := e.sales.Cancel(ctx, e.company, sale.ID)
	require.NoError(t, err)

	_, err = e.receivables.Create(ctx, receivables.CreateInput{
		CompanyID:   e.company,
		SaleID:      id.Ptr(sale.ID),
		Description: "late",
		Amount:      types.MustMoney("1.00"),
		DueDate:     time.Now(),
	})
	assert.True(t, apperror.IsInvalidState(err))
}
