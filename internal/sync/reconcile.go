// internal/sync/reconcile.go
package sync

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storesync/internal/clients"
	"github.com/javajoker/storesync/internal/models"
)

// PriceReconciler settles a product's variant list against the payment
// authority. The authority treats amounts as immutable, so changing a
// price means deactivating the old object and creating a replacement that
// carries the same variant key.
type PriceReconciler struct {
	authority PriceAuthority
}

func NewPriceReconciler(authority PriceAuthority) *PriceReconciler {
	return &PriceReconciler{authority: authority}
}

// Reconcile applies the desired price set to the authority and returns the
// resulting variant list. With an empty desired set (payload carried no
// price data) the authority's active prices are mirrored unchanged.
func (r *PriceReconciler) Reconcile(ctx context.Context, stripeProductID, crmProductID string, desired []models.DesiredPrice) ([]models.Variant, error) {
	active, err := r.authority.ListActivePrices(ctx, stripeProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices for %s: %w", crmProductID, err)
	}

	if len(desired) == 0 {
		return variantsFromAuthority(active), nil
	}

	byKey := make(map[string]clients.AuthorityPrice, len(active))
	for _, p := range active {
		key := p.VariantKey
		if key == "" {
			key = Slugify(p.Nickname)
		}
		byKey[key] = p
	}

	variants := make([]models.Variant, 0, len(desired))
	matched := make(map[string]bool, len(desired))

	for _, want := range desired {
		current, ok := byKey[want.Key]
		matched[want.Key] = true

		if ok && current.Amount.Equal(want.Amount) {
			variants = append(variants, models.Variant{
				Name:      want.Name,
				Price:     current.Amount,
				PriceID:   current.ID,
				SKU:       want.SKU,
				Available: true,
			})
			continue
		}

		if ok {
			// Amount changed: archive the old price and create a new one
			// under the same variant key.
			if err := r.authority.DeactivatePrice(ctx, current.ID); err != nil {
				return nil, fmt.Errorf("failed to retire price %s: %w", current.ID, err)
			}
			logrus.WithFields(logrus.Fields{
				"product":    crmProductID,
				"variant":    want.Key,
				"old_price":  current.Amount.String(),
				"new_price":  want.Amount.String(),
				"old_object": current.ID,
			}).Info("Replacing authority price")
		}

		created, err := r.authority.CreatePrice(ctx, clients.CreatePriceParams{
			StripeProductID: stripeProductID,
			Key:             want.Key,
			Name:            want.Name,
			Amount:          want.Amount,
			SKU:             want.SKU,
			CRMProductID:    crmProductID,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create price for %s/%s: %w", crmProductID, want.Key, err)
		}

		variants = append(variants, models.Variant{
			Name:      want.Name,
			Price:     want.Amount,
			PriceID:   created.ID,
			SKU:       want.SKU,
			Available: true,
		})
	}

	// Authority prices no longer present in the desired set are retired.
	for key, p := range byKey {
		if matched[key] {
			continue
		}
		if err := r.authority.DeactivatePrice(ctx, p.ID); err != nil {
			return nil, fmt.Errorf("failed to retire orphaned price %s: %w", p.ID, err)
		}
	}

	return variants, nil
}

// BasePrice is the lowest price across the variant list.
func BasePrice(variants []models.Variant) (decimal.Decimal, bool) {
	if len(variants) == 0 {
		return decimal.Decimal{}, false
	}
	min := variants[0].Price
	for _, v := range variants[1:] {
		if v.Price.LessThan(min) {
			min = v.Price
		}
	}
	return min, true
}

func variantsFromAuthority(active []clients.AuthorityPrice) []models.Variant {
	variants := make([]models.Variant, 0, len(active))
	for _, p := range active {
		name := p.Nickname
		if name == "" {
			if len(active) == 1 {
				name = "Standard"
			} else {
				name = fmt.Sprintf("Variant - $%s", p.Amount.StringFixed(2))
			}
		}
		variants = append(variants, models.Variant{
			Name:      name,
			Price:     p.Amount,
			PriceID:   p.ID,
			SKU:       p.SKU,
			Available: true,
		})
	}
	return variants
}
