package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"tudogestao/internal/core/apperror"
	"tudogestao/internal/core/entity"
	"tudogestao/internal/core/id"
	"tudogestao/internal/domain"
	"tudogestao/internal/domain/customers"
	"tudogestao/internal/domain/products"
	"tudogestao/internal/domain/receivables"
	"tudogestao/internal/domain/registers/stock"
	"tudogestao/internal/domain/sales"
)

var (
	_ products.Repository    = (*productRepo)(nil)
	_ customers.Repository   = (*customerRepo)(nil)
	_ sales.Repository       = (*saleRepo)(nil)
	_ receivables.Repository = (*receivableRepo)(nil)
	_ stock.Repository       = (*movementRepo)(nil)
)

func matches(search string, fields ...string) bool {
	if search == "" {
		return true
	}
	search = strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

func inIDs(ids []id.ID, v id.ID) bool {
	return len(ids) == 0 || slices.Contains(ids, v)
}

func result[T any](items []T, f domain.ListFilter) domain.ListResult[T] {
	return domain.ListResult[T]{
		Items:      page(items, f.Limit, f.Offset),
		TotalCount: int64(len(items)),
		Limit:      f.Limit,
		Offset:     f.Offset,
	}
}

func bump(b *entity.BaseEntity) {
	b.Version++
	b.UpdatedAt = time.Now().UTC()
}

// --- Products ---

type productRepo struct{ s *Store }

func (r *productRepo) Create(ctx context.Context, p *products.Product) error {
	defer r.s.lockWrite(ctx)()

	for _, existing := range r.s.data.products {
		if existing.CompanyID == p.CompanyID && existing.Code == p.Code {
			return apperror.NewDuplicate(products.EntityName, "code", p.Code)
		}
	}
	r.s.data.products[p.ID] = *p
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, companyID, productID id.ID) (*products.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.data.products[productID]
	if !ok || p.CompanyID != companyID {
		return nil, apperror.NewNotFound(products.EntityName, productID)
	}
	return &p, nil
}

func (r *productRepo) GetByCode(ctx context.Context, companyID id.ID, code string) (*products.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.data.products {
		if p.CompanyID == companyID && p.Code == code {
			return &p, nil
		}
	}
	return nil, apperror.NewNotFound(products.EntityName, code)
}

func (r *productRepo) Update(ctx context.Context, p *products.Product) error {
	defer r.s.lockWrite(ctx)()

	current, ok := r.s.data.products[p.ID]
	if !ok || current.CompanyID != p.CompanyID {
		return apperror.NewNotFound(products.EntityName, p.ID)
	}
	if current.Version != p.Version {
		return apperror.NewConcurrentModification(products.EntityName, p.ID)
	}

	bump(&p.BaseEntity)
	next := *p
	next.Stock = current.Stock
	r.s.data.products[p.ID] = next
	p.Stock = current.Stock
	return nil
}

func (r *productRepo) list(filter domain.ListFilter, keep func(products.Product) bool) domain.ListResult[*products.Product] {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*products.Product
	for _, p := range r.s.data.products {
		if p.CompanyID != filter.CompanyID || !inIDs(filter.IDs, p.ID) {
			continue
		}
		if !matches(filter.Search, p.Code, p.Name) || !keep(p) {
			continue
		}
		p := p
		out = append(out, &p)
	}
	slices.SortFunc(out, func(a, b *products.Product) int { return strings.Compare(a.Code, b.Code) })
	return result(out, filter)
}

func (r *productRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*products.Product], error) {
	return r.list(filter, func(products.Product) bool { return true }), nil
}

func (r *productRepo) FindLowStock(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*products.Product], error) {
	return r.list(filter, func(p products.Product) bool { return p.Active && p.IsLowStock() }), nil
}

// mutateStock applies delta when guard(stock) holds, mirroring a conditional UPDATE.
func (r *productRepo) mutateStock(ctx context.Context, companyID, productID id.ID, delta int) (int, bool) {
	defer r.s.lockWrite(ctx)()

	p, ok := r.s.data.products[productID]
	if !ok || p.CompanyID != companyID || p.Stock+delta < 0 {
		return 0, false
	}
	p.Stock += delta
	p.UpdatedAt = time.Now().UTC()
	r.s.data.products[productID] = p
	return p.Stock, true
}

func (r *productRepo) DecrementStock(ctx context.Context, companyID, productID id.ID, qty int) (bool, error) {
	_, ok := r.mutateStock(ctx, companyID, productID, -qty)
	return ok, nil
}

func (r *productRepo) IncrementStock(ctx context.Context, companyID, productID id.ID, qty int) (bool, error) {
	_, ok := r.mutateStock(ctx, companyID, productID, qty)
	return ok, nil
}

func (r *productRepo) AdjustStock(ctx context.Context, companyID, productID id.ID, delta int) (int, bool, error) {
	n, ok := r.mutateStock(ctx, companyID, productID, delta)
	return n, ok, nil
}

// --- Customers ---

type customerRepo struct{ s *Store }

func (r *customerRepo) Create(ctx context.Context, c *customers.Customer) error {
	defer r.s.lockWrite(ctx)()

	if c.Document != "" {
		for _, existing := range r.s.data.customers {
			if existing.CompanyID == c.CompanyID && existing.Document == c.Document {
				return apperror.NewDuplicate(customers.EntityName, "document", c.Document)
			}
		}
	}
	r.s.data.customers[c.ID] = *c
	return nil
}

func (r *customerRepo) GetByID(ctx context.Context, companyID, customerID id.ID) (*customers.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.data.customers[customerID]
	if !ok || c.CompanyID != companyID {
		return nil, apperror.NewNotFound(customers.EntityName, customerID)
	}
	return &c, nil
}

func (r *customerRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*customers.Customer], error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*customers.Customer
	for _, c := range r.s.data.customers {
		if c.CompanyID != filter.CompanyID || !inIDs(filter.IDs, c.ID) {
			continue
		}
		if !matches(filter.Search, c.Name, c.Document, c.Email) {
			continue
		}
		c := c
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *customers.Customer) int { return strings.Compare(a.Name, b.Name) })
	return result(out, filter), nil
}

// --- Sales ---

type saleRepo struct{ s *Store }

func (r *saleRepo) Create(ctx context.Context, sale *sales.Sale) error {
	defer r.s.lockWrite(ctx)()

	for _, existing := range r.s.data.sales {
		if existing.CompanyID == sale.CompanyID && existing.Number == sale.Number {
			return apperror.NewDuplicate(sales.EntityName, "number", sale.Number)
		}
	}
	row := *sale
	row.Items, row.Customer = nil, nil
	r.s.data.sales[sale.ID] = row
	return nil
}

func (r *saleRepo) SaveItems(ctx context.Context, saleID id.ID, items []sales.SaleItem) error {
	defer r.s.lockWrite(ctx)()

	if _, ok := r.s.data.sales[saleID]; !ok {
		return apperror.NewNotFound(sales.EntityName, saleID)
	}
	r.s.data.saleItems[saleID] = append(r.s.data.saleItems[saleID], items...)
	return nil
}

func (r *saleRepo) GetByID(ctx context.Context, companyID, saleID id.ID) (*sales.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sale, ok := r.s.data.sales[saleID]
	if !ok || sale.CompanyID != companyID {
		return nil, apperror.NewNotFound(sales.EntityName, saleID)
	}
	return &sale, nil
}

// GetForUpdate needs no row lock: the store serializes transactions.
func (r *saleRepo) GetForUpdate(ctx context.Context, companyID, saleID id.ID) (*sales.Sale, error) {
	return r.GetByID(ctx, companyID, saleID)
}

func (r *saleRepo) GetItems(ctx context.Context, saleID id.ID) ([]sales.SaleItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := slices.Clone(r.s.data.saleItems[saleID])
	slices.SortFunc(items, func(a, b sales.SaleItem) int { return a.LineNo - b.LineNo })
	return items, nil
}

func (r *saleRepo) Update(ctx context.Context, sale *sales.Sale) error {
	defer r.s.lockWrite(ctx)()

	current, ok := r.s.data.sales[sale.ID]
	if !ok || current.CompanyID != sale.CompanyID {
		return apperror.NewNotFound(sales.EntityName, sale.ID)
	}
	if current.Version != sale.Version {
		return apperror.NewConcurrentModification(sales.EntityName, sale.ID)
	}

	bump(&sale.BaseEntity)
	current.Status = sale.Status
	current.StockReversed = sale.StockReversed
	current.Version = sale.Version
	current.UpdatedAt = sale.UpdatedAt
	r.s.data.sales[sale.ID] = current
	return nil
}

func (r *saleRepo) Delete(ctx context.Context, companyID, saleID id.ID) error {
	defer r.s.lockWrite(ctx)()

	sale, ok := r.s.data.sales[saleID]
	if !ok || sale.CompanyID != companyID {
		return apperror.NewNotFound(sales.EntityName, saleID)
	}
	delete(r.s.data.sales, saleID)
	delete(r.s.data.saleItems, saleID)
	return nil
}

func (r *saleRepo) List(ctx context.Context, filter sales.ListFilter) (domain.ListResult[*sales.Sale], error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*sales.Sale
	for _, sale := range r.s.data.sales {
		switch {
		case sale.CompanyID != filter.CompanyID, !inIDs(filter.IDs, sale.ID):
			continue
		case filter.CustomerID != nil && sale.CustomerID != *filter.CustomerID:
			continue
		case filter.Status != nil && sale.Status != *filter.Status:
			continue
		case filter.DateFrom != nil && sale.Date.Before(*filter.DateFrom):
			continue
		case filter.DateTo != nil && sale.Date.After(*filter.DateTo):
			continue
		case !matches(filter.Search, sale.Number, sale.Notes):
			continue
		}
		sale := sale
		out = append(out, &sale)
	}
	// newest first, number breaks ties
	slices.SortFunc(out, func(a, b *sales.Sale) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return strings.Compare(b.Number, a.Number)
	})
	return result(out, filter.ListFilter), nil
}

// --- Receivables ---

type receivableRepo struct{ s *Store }

func (r *receivableRepo) Create(ctx context.Context, rec *receivables.Receivable) error {
	defer r.s.lockWrite(ctx)()

	r.s.data.receivables[rec.ID] = *rec
	return nil
}

func (r *receivableRepo) GetByID(ctx context.Context, companyID, receivableID id.ID) (*receivables.Receivable, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.data.receivables[receivableID]
	if !ok || rec.CompanyID != companyID {
		return nil, apperror.NewNotFound(receivables.EntityName, receivableID)
	}
	return &rec, nil
}

func (r *receivableRepo) GetForUpdate(ctx context.Context, companyID, receivableID id.ID) (*receivables.Receivable, error) {
	return r.GetByID(ctx, companyID, receivableID)
}

func (r *receivableRepo) Update(ctx context.Context, rec *receivables.Receivable) error {
	defer r.s.lockWrite(ctx)()

	current, ok := r.s.data.receivables[rec.ID]
	if !ok || current.CompanyID != rec.CompanyID {
		return apperror.NewNotFound(receivables.EntityName, rec.ID)
	}
	if current.Version != rec.Version {
		return apperror.NewConcurrentModification(receivables.EntityName, rec.ID)
	}

	bump(&rec.BaseEntity)
	current.Status = rec.Status
	current.PaidAt = rec.PaidAt
	current.Version = rec.Version
	current.UpdatedAt = rec.UpdatedAt
	r.s.data.receivables[rec.ID] = current
	return nil
}

func (r *receivableRepo) ListBySale(ctx context.Context, companyID, saleID id.ID) ([]*receivables.Receivable, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*receivables.Receivable
	for _, rec := range r.s.data.receivables {
		if rec.CompanyID == companyID && rec.SaleID != nil && *rec.SaleID == saleID {
			rec := rec
			out = append(out, &rec)
		}
	}
	slices.SortFunc(out, func(a, b *receivables.Receivable) int { return a.InstallmentNo - b.InstallmentNo })
	return out, nil
}

func (r *receivableRepo) DeleteBySale(ctx context.Context, companyID, saleID id.ID) error {
	defer r.s.lockWrite(ctx)()

	for key, rec := range r.s.data.receivables {
		if rec.CompanyID == companyID && rec.SaleID != nil && *rec.SaleID == saleID {
			delete(r.s.data.receivables, key)
		}
	}
	return nil
}

func (r *receivableRepo) List(ctx context.Context, filter receivables.ListFilter) (domain.ListResult[*receivables.Receivable], error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*receivables.Receivable
	for _, rec := range r.s.data.receivables {
		switch {
		case rec.CompanyID != filter.CompanyID, !inIDs(filter.IDs, rec.ID):
			continue
		case filter.SaleID != nil && (rec.SaleID == nil || *rec.SaleID != *filter.SaleID):
			continue
		case filter.Status != nil && rec.Status != *filter.Status:
			continue
		case filter.DueBefore != nil && !rec.DueDate.Before(*filter.DueBefore):
			continue
		case !matches(filter.Search, rec.Description):
			continue
		}
		rec := rec
		out = append(out, &rec)
	}
	slices.SortFunc(out, func(a, b *receivables.Receivable) int {
		if c := a.DueDate.Compare(b.DueDate); c != 0 {
			return c
		}
		return a.InstallmentNo - b.InstallmentNo
	})
	return result(out, filter.ListFilter), nil
}

// --- Stock journal ---

type movementRepo struct{ s *Store }

func (r *movementRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	defer r.s.lockWrite(ctx)()

	r.s.data.movements = append(r.s.data.movements, movements...)
	return nil
}

func (r *movementRepo) GetMovementHistory(ctx context.Context, companyID, productID id.ID, filter stock.MovementFilter) ([]entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []entity.StockMovement
	for i := len(r.s.data.movements) - 1; i >= 0; i-- {
		m := r.s.data.movements[i]
		if m.CompanyID != companyID || m.ProductID != productID {
			continue
		}
		if filter.RecordType != nil && m.RecordType != *filter.RecordType {
			continue
		}
		out = append(out, m)
	}
	return page(out, filter.Limit, filter.Offset), nil
}

func (r *movementRepo) GetMovementsByRecorder(ctx context.Context, companyID, recorderID id.ID) ([]entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []entity.StockMovement
	for _, m := range r.s.data.movements {
		if m.CompanyID == companyID && m.RecorderID == recorderID {
			out = append(out, m)
		}
	}
	return out, nil
}
