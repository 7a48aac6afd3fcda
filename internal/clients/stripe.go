// internal/clients/stripe.go
package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/price"
	"github.com/stripe/stripe-go/v74/product"

	"github.com/javajoker/storesync/internal/config"
)

// Metadata keys carried on mirrored Stripe objects. variant_key is the
// cross-reference that survives an archive-and-recreate: the replacement
// price carries the same key as the price it supersedes.
const (
	MetaCRMProductID = "crm_product_id"
	MetaVariantKey   = "variant_key"
	MetaSKU          = "sku"
)

// AuthorityPrice is one active price object as reported by the payment
// processor.
type AuthorityPrice struct {
	ID         string
	Amount     decimal.Decimal
	Nickname   string
	VariantKey string
	SKU        string
}

// CreatePriceParams describes a price to create on the authority.
type CreatePriceParams struct {
	StripeProductID string
	Key             string
	Name            string
	Amount          decimal.Decimal
	SKU             string
	CRMProductID    string
}

// StripePriceService mirrors products and prices into Stripe, which is
// authoritative for amounts once mirrored. Stripe forbids editing a
// price's amount in place, so amount changes are a deactivate-then-create
// pair, never an update.
type StripePriceService struct {
	currency string
}

func NewStripePriceService(cfg config.StripeConfig) *StripePriceService {
	stripe.Key = cfg.SecretKey
	return &StripePriceService{currency: cfg.Currency}
}

// EnsureProduct returns the Stripe product mirroring the CRM product,
// creating it on first sight. Lookup is by the crm_product_id metadata.
func (s *StripePriceService) EnsureProduct(ctx context.Context, crmProductID, name string) (string, error) {
	searchParams := &stripe.ProductSearchParams{
		SearchParams: stripe.SearchParams{
			Query:   fmt.Sprintf("metadata['%s']:'%s'", MetaCRMProductID, crmProductID),
			Context: ctx,
		},
	}

	iter := product.Search(searchParams)
	for iter.Next() {
		return iter.Product().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", classifyStripeErr("failed to search products", err)
	}

	createParams := &stripe.ProductParams{
		Params: stripe.Params{Context: ctx},
		Name:   stripe.String(name),
	}
	createParams.AddMetadata(MetaCRMProductID, crmProductID)

	created, err := product.New(createParams)
	if err != nil {
		return "", classifyStripeErr("failed to create product", err)
	}
	return created.ID, nil
}

// ListActivePrices returns every active price attached to the Stripe
// product.
func (s *StripePriceService) ListActivePrices(ctx context.Context, stripeProductID string) ([]AuthorityPrice, error) {
	params := &stripe.PriceListParams{
		ListParams: stripe.ListParams{Context: ctx},
		Product:    stripe.String(stripeProductID),
		Active:     stripe.Bool(true),
	}

	var prices []AuthorityPrice
	iter := price.List(params)
	for iter.Next() {
		p := iter.Price()
		prices = append(prices, AuthorityPrice{
			ID:         p.ID,
			Amount:     decimal.NewFromInt(p.UnitAmount).Div(decimal.NewFromInt(100)),
			Nickname:   p.Nickname,
			VariantKey: p.Metadata[MetaVariantKey],
			SKU:        p.Metadata[MetaSKU],
		})
	}
	if err := iter.Err(); err != nil {
		return nil, classifyStripeErr("failed to list prices", err)
	}
	return prices, nil
}

// CreatePrice creates a new active price carrying the variant
// cross-reference metadata.
func (s *StripePriceService) CreatePrice(ctx context.Context, req CreatePriceParams) (AuthorityPrice, error) {
	params := &stripe.PriceParams{
		Params:     stripe.Params{Context: ctx},
		Product:    stripe.String(req.StripeProductID),
		UnitAmount: stripe.Int64(req.Amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()),
		Currency:   stripe.String(s.currency),
		Nickname:   stripe.String(req.Name),
	}
	params.AddMetadata(MetaVariantKey, req.Key)
	params.AddMetadata(MetaCRMProductID, req.CRMProductID)
	if req.SKU != "" {
		params.AddMetadata(MetaSKU, req.SKU)
	}

	created, err := price.New(params)
	if err != nil {
		return AuthorityPrice{}, classifyStripeErr("failed to create price", err)
	}

	return AuthorityPrice{
		ID:         created.ID,
		Amount:     req.Amount,
		Nickname:   req.Name,
		VariantKey: req.Key,
		SKU:        req.SKU,
	}, nil
}

// DeactivatePrice archives a price object. The amount itself is immutable
// on Stripe's side.
func (s *StripePriceService) DeactivatePrice(ctx context.Context, priceID string) error {
	params := &stripe.PriceParams{
		Params: stripe.Params{Context: ctx},
		Active: stripe.Bool(false),
	}
	if _, err := price.Update(priceID, params); err != nil {
		return classifyStripeErr("failed to deactivate price", err)
	}
	return nil
}

func classifyStripeErr(msg string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return fmt.Errorf("%s: %w", msg, classifyStatus("stripe", stripeErr.HTTPStatusCode, string(stripeErr.Code)))
	}
	return fmt.Errorf("%s: %w", msg, err)
}
