package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tudogestao/internal/core/apperror"
	"tudogestao/internal/core/id"
	"tudogestao/internal/core/numerator"
	"tudogestao/internal/domain"
	"tudogestao/internal/domain/customers"
	"tudogestao/internal/domain/products"
)

func newProduct(t *testing.T, s *Store, companyID id.ID, code string, stock int) *products.Product {
	t.Helper()
	p := products.NewProduct(companyID, code, "Product "+code)
	p.Stock = stock
	require.NoError(t, s.Products().Create(context.Background(), p))
	return p
}

func TestRunInTransaction_RollsBackOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	company := id.New()
	p := newProduct(t, s, company, "A", 10)

	boom := errors.New("boom")
	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		ok, err := s.Products().DecrementStock(ctx, company, p.ID, 4)
		require.NoError(t, err)
		require.True(t, ok)
		_, err = s.GetNextNumber(ctx, numerator.SaleConfig(), company.String(), time.Now())
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Products().GetByID(ctx, company, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)

	number, err := s.GetNextNumber(ctx, numerator.SaleConfig(), company.String(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "VND-000001", number, "a rolled back number is reused")
}

func TestRunInTransaction_RollsBackOnPanic(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	company := id.New()
	p := newProduct(t, s, company, "A", 3)

	assert.Panics(t, func() {
		_ = s.RunInTransaction(ctx, func(ctx context.Context) error {
			_, _ = s.Products().DecrementStock(ctx, company, p.ID, 3)
			panic("boom")
		})
	})

	got, err := s.Products().GetByID(ctx, company, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)
}

func TestRunInTransaction_Nested(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	calls := 0
	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.RunInTransaction(ctx, func(ctx context.Context) error {
			calls++
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRunInTransaction_RollbackKeepsConcurrentWrites(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	company := id.New()

	started := make(chan struct{})
	release := make(chan struct{})
	rolledBack := make(chan error, 1)
	go func() {
		rolledBack <- s.RunInTransaction(ctx, func(ctx context.Context) error {
			close(started)
			<-release
			return errors.New("rollback")
		})
	}()
	<-started

	c := customers.NewCustomer(company, "Maria")
	created := make(chan error, 1)
	go func() { created <- s.Customers().Create(ctx, c) }()

	time.Sleep(20 * time.Millisecond)
	close(release)

	require.Error(t, <-rolledBack)
	require.NoError(t, <-created)

	got, err := s.Customers().GetByID(ctx, company, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria", got.Name)
}

func TestDecrementStock_Guard(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	company := id.New()
	p := newProduct(t, s, company, "A", 5)

	ok, err := s.Products().DecrementStock(ctx, company, p.ID, 6)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Products().DecrementStock(ctx, company, p.ID, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Products().DecrementStock(ctx, id.New(), p.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok, "other company")
}

func TestDecrementStock_ConcurrentNeverOversells(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	company := id.New()
	p := newProduct(t, s, company, "A", 10)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		sold int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.RunInTransaction(ctx, func(ctx context.Context) error {
				ok, _ := s.Products().DecrementStock(ctx, company, p.ID, 1)
				if ok {
					mu.Lock()
					sold++
					mu.Unlock()
				}
				return nil
			})
		}()
	}
	wg.Wait()

	got, err := s.Products().GetByID(ctx, company, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
	assert.Equal(t, 10, sold)
}

func TestProductUpdate_VersionCheck(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	company := id.New()
	p := newProduct(t, s, company, "A", 5)

	stale := *p
	p.Name = "Renamed"
	require.NoError(t, s.Products().Update(ctx, p))
	assert.Equal(t, 2, p.Version)

	stale.Name = "Other"
	err := s.Products().Update(ctx, &stale)
	assert.True(t, apperror.IsConcurrentModification(err))
}

func TestProductList_ScopedAndPaged(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	company := id.New()
	newProduct(t, s, company, "B", 0)
	newProduct(t, s, company, "A", 0)
	newProduct(t, s, company, "C", 0)
	newProduct(t, s, id.New(), "D", 0)

	res, err := s.Products().List(ctx, domain.ListFilter{CompanyID: company, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.TotalCount)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "A", res.Items[0].Code)
	assert.Equal(t, "B", res.Items[1].Code)

	res, err = s.Products().List(ctx, domain.ListFilter{CompanyID: company, Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "C", res.Items[0].Code)
}

func TestProductCreate_DuplicateCode(t *testing.T) {
	s := NewStore()
	company := id.New()
	newProduct(t, s, company, "A", 0)

	err := s.Products().Create(context.Background(), products.NewProduct(company, "A", "again"))
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))

	// same code in another company is fine
	require.NoError(t, s.Products().Create(context.Background(), products.NewProduct(id.New(), "A", "x")))
}
