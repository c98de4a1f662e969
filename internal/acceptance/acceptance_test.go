// Package acceptance runs the Gherkin scenarios in features/ against the
// services wired over the in-memory store.
package acceptance

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"tudogestao/internal/app"
	"tudogestao/internal/config"
	"tudogestao/internal/core/apperror"
	"tudogestao/internal/core/id"
	"tudogestao/internal/core/types"
	"tudogestao/internal/domain/customers"
	"tudogestao/internal/domain/products"
	"tudogestao/internal/domain/receivables"
	"tudogestao/internal/domain/sales"
)

type salesTestContext struct {
	app       *app.Container
	companyID id.ID
	customer  *customers.Customer
	products  map[string]*products.Product
	sale      *sales.Sale
	err       error
}

func (c *salesTestContext) reset() {
	c.app = app.NewMemory(&config.Config{AuditTimeout: time.Second})
	c.companyID = id.New()
	c.customer = nil
	c.products = make(map[string]*products.Product)
	c.sale = nil
	c.err = nil
}

func (c *salesTestContext) aCustomer(name string) error {
	c.customer = customers.NewCustomer(c.companyID, name)
	return c.app.Customers.Create(context.Background(), c.customer)
}

func (c *salesTestContext) aProductWithStockAndPrice(code string, stock int, price string) error {
	p := products.NewProduct(c.companyID, code, "Produto "+code)
	p.Stock = stock
	p.SalePrice = types.MustMoney(price)
	if err := c.app.Products.Create(context.Background(), p); err != nil {
		return err
	}
	c.products[code] = p
	return nil
}

func (c *salesTestContext) product(code string) (*products.Product, error) {
	p, ok := c.products[code]
	if !ok {
		return nil, fmt.Errorf("unknown product %q", code)
	}
	return p, nil
}

func (c *salesTestContext) createSale(qty int, code string, method sales.PaymentMethod, installments int) error {
	p, err := c.product(code)
	if err != nil {
		return err
	}
	in, err := sales.NewCreateSaleInput(sales.CreateSaleInput{
		CompanyID:     c.companyID,
		CustomerID:    c.customer.ID,
		Items:         []sales.ItemInput{{ProductID: p.ID, Quantity: qty}},
		PaymentMethod: method,
		Installments:  installments,
	})
	if err != nil {
		c.err = err
		return nil
	}
	sale, err := c.app.Sales.Create(context.Background(), in)
	c.err = err
	if err == nil {
		c.sale = sale
	}
	return nil
}

func (c *salesTestContext) iCreateASaleOf(qty int, code string) error {
	return c.createSale(qty, code, sales.PaymentCash, 1)
}

func (c *salesTestContext) iCreateASaleOfPaidBy(qty int, code, method string, installments int) error {
	return c.createSale(qty, code, sales.PaymentMethod(method), installments)
}

func (c *salesTestContext) requireSale() error {
	if c.err != nil {
		return fmt.Errorf("previous step failed: %w", c.err)
	}
	if c.sale == nil {
		return errors.New("no sale was created")
	}
	return nil
}

func (c *salesTestContext) iCancelTheSale() error {
	if c.sale == nil {
		return errors.New("no sale was created")
	}
	sale, err := c.app.Sales.Cancel(context.Background(), c.companyID, c.sale.ID)
	c.err = err
	if err == nil {
		c.sale = sale
	}
	return nil
}

func (c *salesTestContext) iDeleteTheSale() error {
	if c.sale == nil {
		return errors.New("no sale was created")
	}
	c.err = c.app.Sales.Delete(context.Background(), c.companyID, c.sale.ID)
	return nil
}

func (c *salesTestContext) receivables() ([]*receivables.Receivable, error) {
	if err := c.requireSale(); err != nil {
		return nil, err
	}
	return c.app.Receivables.ListBySale(context.Background(), c.companyID, c.sale.ID)
}

func (c *salesTestContext) theSaleHasPendingReceivables(n int) error {
	list, err := c.receivables()
	if err != nil {
		return err
	}
	if len(list) != n {
		return fmt.Errorf("expected %d receivables, got %d", n, len(list))
	}
	for _, r := range list {
		if r.Status != receivables.StatusPending {
			return fmt.Errorf("receivable %d is %s", r.InstallmentNo, r.Status)
		}
	}
	return nil
}

func (c *salesTestContext) iPayReceivable(n int) error {
	list, err := c.receivables()
	if err != nil {
		return err
	}
	for _, r := range list {
		if r.InstallmentNo == n {
			_, err := c.app.Receivables.MarkPaid(context.Background(), c.companyID, r.ID)
			return err
		}
	}
	return fmt.Errorf("sale has no installment %d", n)
}

func (c *salesTestContext) theOperationFailsWith(code string) error {
	if c.err == nil {
		return fmt.Errorf("expected error %s, got none", code)
	}
	if !apperror.HasCode(c.err, code) {
		return fmt.Errorf("expected error %s, got %v", code, c.err)
	}
	return nil
}

func (c *salesTestContext) theStockOfIs(code string, want int) error {
	p, err := c.product(code)
	if err != nil {
		return err
	}
	current, err := c.app.Products.Get(context.Background(), c.companyID, p.ID)
	if err != nil {
		return err
	}
	if current.Stock != want {
		return fmt.Errorf("expected stock %d, got %d", want, current.Stock)
	}
	return nil
}

func (c *salesTestContext) theSaleStatusIs(status string) error {
	if c.sale == nil {
		return errors.New("no sale was created")
	}
	sale, err := c.app.Sales.Get(context.Background(), c.companyID, c.sale.ID)
	if err != nil {
		return err
	}
	if string(sale.Status) != status {
		return fmt.Errorf("expected status %s, got %s", status, sale.Status)
	}
	return nil
}

func (c *salesTestContext) theSaleNetAmountEqualsItsSubtotal() error {
	if err := c.requireSale(); err != nil {
		return err
	}
	if !c.sale.NetAmount.Equal(c.sale.Subtotal) {
		return fmt.Errorf("net amount %s differs from subtotal %s", c.sale.NetAmount, c.sale.Subtotal)
	}
	return nil
}

func (c *salesTestContext) theSaleNoLongerExists() error {
	if c.err != nil {
		return fmt.Errorf("delete failed: %w", c.err)
	}
	_, err := c.app.Sales.Get(context.Background(), c.companyID, c.sale.ID)
	if !apperror.IsNotFound(err) {
		return fmt.Errorf("expected not found, got %v", err)
	}
	return nil
}

func (c *salesTestContext) theSaleNumberIs(number string) error {
	if err := c.requireSale(); err != nil {
		return err
	}
	if c.sale.Number != number {
		return fmt.Errorf("expected number %s, got %s", number, c.sale.Number)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &salesTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a customer "([^"]*)"$`, tc.aCustomer)
	ctx.Step(`^a product "([^"]*)" with stock (\d+) and price "([^"]*)"$`, tc.aProductWithStockAndPrice)

	// When steps
	ctx.Step(`^I create a sale of (\d+) "([^"]*)"$`, tc.iCreateASaleOf)
	ctx.Step(`^I create a sale of (\d+) "([^"]*)" paid by "([^"]*)" in (\d+) installments$`, tc.iCreateASaleOfPaidBy)
	ctx.Step(`^I cancel the sale$`, tc.iCancelTheSale)
	ctx.Step(`^I delete the sale$`, tc.iDeleteTheSale)
	ctx.Step(`^I pay receivable (\d+)$`, tc.iPayReceivable)

	// Then steps
	ctx.Step(`^the operation fails with "([^"]*)"$`, tc.theOperationFailsWith)
	ctx.Step(`^the stock of "([^"]*)" is (\d+)$`, tc.theStockOfIs)
	ctx.Step(`^the sale status is "([^"]*)"$`, tc.theSaleStatusIs)
	ctx.Step(`^the sale net amount equals its subtotal$`, tc.theSaleNetAmountEqualsItsSubtotal)
	ctx.Step(`^the sale no longer exists$`, tc.theSaleNoLongerExists)
	ctx.Step(`^the sale number is "([^"]*)"$`, tc.theSaleNumberIs)
	ctx.Step(`^the sale has (\d+) pending receivables$`, tc.theSaleHasPendingReceivables)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
