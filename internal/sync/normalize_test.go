// internal/sync/normalize_test.go
package sync

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/storesync/internal/models"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedNormalizer() *Normalizer {
	return &Normalizer{now: func() time.Time { return fixedNow }}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Cedar Bucket", "cedar-bucket"},
		{"  Handmade -- Oak / Stool  ", "handmade-oak-stool"},
		{"Émile's Crêpe Pan", "émile-s-crêpe-pan"},
		{"---", ""},
		{"", ""},
		{"already-a-slug", "already-a-slug"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	for _, in := range []string{"Cedar Bucket", "A & B: C", "Émile's Crêpe Pan", "x  y"} {
		once := Slugify(in)
		assert.Equal(t, once, Slugify(once), "re-slugging %q must not change it", in)
	}
}

func TestProductFieldFallbackOrder(t *testing.T) {
	n := fixedNormalizer()

	// First candidate wins when present.
	doc := n.Product(models.Payload{
		"name":        "Cedar Bucket",
		"title":       "Ignored Title",
		"description": "Primary",
		"bodyHtml":    "Ignored",
	})
	assert.Equal(t, "Cedar Bucket", doc.Name)
	assert.Equal(t, "Primary", doc.Description)

	// Later candidates fill in when earlier ones are empty.
	doc = n.Product(models.Payload{
		"title":    "Fallback Title",
		"bodyHtml": "Fallback Body",
	})
	assert.Equal(t, "Fallback Title", doc.Name)
	assert.Equal(t, "Fallback Body", doc.Description)
}

func TestProductSlugDerivedWhenAbsent(t *testing.T) {
	n := fixedNormalizer()

	doc := n.Product(models.Payload{"name": "Cedar Bucket"})
	assert.Equal(t, "cedar-bucket", doc.Slug)

	doc = n.Product(models.Payload{"name": "Cedar Bucket", "slug": "custom-slug"})
	assert.Equal(t, "custom-slug", doc.Slug)
}

func TestProductFailOpenDefaults(t *testing.T) {
	n := fixedNormalizer()

	doc := n.Product(models.Payload{"name": "Cedar Bucket"})
	assert.True(t, doc.InStock, "absent stock field must not delist")
	assert.True(t, doc.IsActive, "absent active field must not deactivate")

	doc = n.Product(models.Payload{
		"name":     "Cedar Bucket",
		"inStock":  false,
		"isActive": false,
	})
	assert.False(t, doc.InStock)
	assert.False(t, doc.IsActive)

	// Some CRM versions express status as a string.
	doc = n.Product(models.Payload{"name": "Cedar Bucket", "status": "inactive"})
	assert.False(t, doc.IsActive)
}

func TestProductSEODefaults(t *testing.T) {
	n := fixedNormalizer()
	long := strings.Repeat("x", 200)

	doc := n.Product(models.Payload{
		"name":        "Cedar Bucket",
		"description": long,
	})
	assert.Equal(t, "Cedar Bucket", doc.SEOTitle)
	assert.Len(t, []rune(doc.SEODescription), 160)

	doc = n.Product(models.Payload{
		"name":           "Cedar Bucket",
		"seoTitle":       "Buy Cedar Buckets",
		"seoDescription": "Short blurb",
	})
	assert.Equal(t, "Buy Cedar Buckets", doc.SEOTitle)
	assert.Equal(t, "Short blurb", doc.SEODescription)
}

func TestProductTimestamps(t *testing.T) {
	n := fixedNormalizer()

	doc := n.Product(models.Payload{
		"name":      "Cedar Bucket",
		"createdAt": "2024-03-10T08:00:00Z",
	})
	assert.Equal(t, fixedNow, doc.UpdatedAt, "updatedAt is always stamped with the sync time")
	assert.Equal(t, time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC), doc.PublishedAt)

	doc = n.Product(models.Payload{"name": "Cedar Bucket"})
	assert.Equal(t, fixedNow, doc.PublishedAt, "missing createdAt falls back to now")
}

func TestProductBadgeValidation(t *testing.T) {
	n := fixedNormalizer()

	doc := n.Product(models.Payload{"name": "Cedar Bucket", "badge": "sale"})
	assert.Equal(t, models.BadgeSale, doc.Badge)

	doc = n.Product(models.Payload{"name": "Cedar Bucket", "badge": "sparkly"})
	assert.Empty(t, doc.Badge, "unknown badge values are dropped")
}

func TestDesiredPricesSinglePrice(t *testing.T) {
	n := fixedNormalizer()

	desired := n.DesiredPrices(models.Payload{"price": 149.0})
	require.Len(t, desired, 1)
	assert.Equal(t, "standard", desired[0].Key)
	assert.Equal(t, "Standard", desired[0].Name)
	assert.True(t, desired[0].Amount.Equal(dec("149")))
}

func TestDesiredPricesVariants(t *testing.T) {
	n := fixedNormalizer()

	desired := n.DesiredPrices(models.Payload{
		"variants": []interface{}{
			map[string]interface{}{"id": "v-small", "name": "Small", "price": 20.0, "sku": "SK-S"},
			map[string]interface{}{"id": "v-large", "name": "Large", "price": 35.0},
			map[string]interface{}{"id": "v-x", "price": 15.0},
		},
	})
	require.Len(t, desired, 3)
	assert.Equal(t, "v-small", desired[0].Key)
	assert.Equal(t, "Small", desired[0].Name)
	assert.Equal(t, "SK-S", desired[0].SKU)
	assert.Equal(t, "Variant - $15.00", desired[2].Name, "unnamed price in a multi-price set gets a generated label")
}

func TestDesiredPricesEmptyWithoutAmount(t *testing.T) {
	n := fixedNormalizer()
	assert.Nil(t, n.DesiredPrices(models.Payload{"name": "Cedar Bucket"}))
}

func TestContactNormalization(t *testing.T) {
	n := fixedNormalizer()

	doc := n.Contact(models.Payload{
		"id":    "c1",
		"email": "  Jordan@Example.COM ",
		"name":  "Jordan Q Lee",
		"tags":  []interface{}{"newsletter", "vip"},
	})
	assert.Equal(t, "jordan@example.com", doc.Email, "email is the dedup key and must be lowercased")
	assert.Equal(t, "Jordan", doc.FirstName)
	assert.Equal(t, "Q Lee", doc.LastName)
	assert.Equal(t, []string{"newsletter", "vip"}, doc.Tags)
	assert.True(t, doc.IsActive)
}

func TestContactCommaSeparatedTags(t *testing.T) {
	n := fixedNormalizer()

	doc := n.Contact(models.Payload{
		"id":    "c1",
		"email": "a@b.com",
		"tags":  "newsletter, vip ,",
	})
	assert.Equal(t, []string{"newsletter", "vip"}, doc.Tags)
}

func TestOrderTotalsDerivedFromLineItems(t *testing.T) {
	n := fixedNormalizer()

	doc := n.Order(models.Payload{
		"id": "ord1",
		"lineItems": []interface{}{
			map[string]interface{}{"name": "Bucket", "quantity": 2.0, "unitPrice": 10.0},
			map[string]interface{}{"name": "Stool", "quantity": 1.0, "unitPrice": 30.0},
		},
		"tax":      5.0,
		"shipping": 8.0,
		"discount": 3.0,
	})
	require.Len(t, doc.LineItems, 2)
	assert.True(t, doc.Subtotal.Equal(dec("50")))
	assert.True(t, doc.Total.Equal(dec("60")), "total = subtotal + tax + shipping - discount")
}

func TestOrderStatusAndPayment(t *testing.T) {
	n := fixedNormalizer()

	doc := n.Order(models.Payload{
		"id":         "ord1",
		"total":      100.0,
		"amountPaid": 100.0,
		"status":     "shipped",
	})
	assert.Equal(t, models.OrderStatusShipped, doc.Status)
	assert.Equal(t, models.PaymentStatusPaid, doc.PaymentStatus)

	doc = n.Order(models.Payload{
		"id":         "ord2",
		"total":      100.0,
		"amountPaid": 100.0,
		"status":     "cancelled",
	})
	assert.Equal(t, models.OrderStatusCancelled, doc.Status)
	assert.Equal(t, models.PaymentStatusVoid, doc.PaymentStatus, "cancellation voids payment regardless of amounts")
}

func TestInvoiceCarriesOrderCrossReference(t *testing.T) {
	n := fixedNormalizer()

	doc := n.Invoice(models.Payload{
		"id":         "inv1",
		"orderId":    "ord1",
		"total":      100.0,
		"amountPaid": 100.0,
	})
	assert.Equal(t, "ord1", doc.CRMOrderID)
	assert.Equal(t, models.PaymentStatusPaid, doc.PaymentStatus)
}
