// internal/sync/normalize.go
package sync

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/javajoker/storesync/internal/models"
)

const seoDescriptionLimit = 160

// Source-field candidates per canonical field, in priority order; the
// first non-empty value wins. The CRM renames fields between API versions
// and webhook payloads carry different shapes than direct fetches, so the
// fallback order is declared once here instead of being repeated across
// the four flows.
var (
	productIDSources      = []string{"id", "productId", "_id"}
	productNameSources    = []string{"name", "productName", "title"}
	productSlugSources    = []string{"slug", "handle", "urlKey"}
	productDescSources    = []string{"description", "productDescription", "bodyHtml"}
	productCategorySource = []string{"category", "productCategory", "type"}
	productStockSources   = []string{"inStock", "available", "inventoryAvailable"}
	productActiveSources  = []string{"isActive", "active", "status"}
	priceAmountSources    = []string{"price", "unitPrice", "rate", "amount"}

	contactIDSources    = []string{"id", "contactId", "_id"}
	contactEmailSources = []string{"email", "emailAddress"}
	contactPhoneSources = []string{"phone", "phoneNumber", "mobile"}

	orderIDSources   = []string{"id", "orderId", "_id"}
	invoiceIDSources = []string{"id", "invoiceId", "_id"}
	lineItemSources  = []string{"lineItems", "items", "line_items"}
	totalSources     = []string{"total", "grandTotal", "totalAmount"}
	paidSources      = []string{"amountPaid", "paidAmount", "amount_paid"}
	createdSources   = []string{"createdAt", "created_at", "createdTime", "dateCreated"}
)

// Normalizer converts heterogeneous external payloads into canonical
// content-store documents. The clock is injectable so timestamp rules stay
// testable.
type Normalizer struct {
	now func() time.Time
}

func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// Product builds the canonical product document. Variants and the final
// base price are settled afterwards by the reconciler; the normalizer
// seeds the base price from the payload when one is present.
func (n *Normalizer) Product(p models.Payload) *models.Product {
	now := n.now().UTC()

	name := p.String(productNameSources...)
	slug := p.String(productSlugSources...)
	if slug == "" {
		slug = Slugify(name)
	}
	description := p.String(productDescSources...)

	doc := &models.Product{
		CRMProductID:    p.String(productIDSources...),
		StripeProductID: p.String("stripeProductId", "stripe_product_id", "paymentProductId"),
		Name:            name,
		Slug:            slug,
		Description:     description,
		Category:        p.String(productCategorySource...),
		Collection:      p.String("collection", "collectionName"),
		Features:        p.Strings("features", "highlights", "bulletPoints"),
		// A record is delisted only on an explicit false; a missing field
		// must not silently pull a live product off the site.
		InStock:        p.Bool(true, productStockSources...),
		IsActive:       p.Bool(true, productActiveSources...),
		SEOTitle:       p.String("seoTitle", "metaTitle"),
		SEODescription: p.String("seoDescription", "metaDescription"),
		UpdatedAt:      now,
	}

	if doc.SEOTitle == "" {
		doc.SEOTitle = name
	}
	if doc.SEODescription == "" {
		doc.SEODescription = truncate(description, seoDescriptionLimit)
	}

	if amount, ok := p.Decimal(priceAmountSources...); ok {
		doc.Price = amount
	}
	if sale, ok := p.Decimal("salePrice", "compareAtPrice", "discountedPrice"); ok {
		doc.SalePrice = &sale
	}
	if count, ok := p.Int("stockCount", "inventoryCount", "quantityAvailable"); ok {
		doc.StockCount = &count
	}
	if badge := models.Badge(p.String("badge", "label")); validBadge(badge) {
		doc.Badge = badge
	}

	doc.Images = normalizeImages(p)
	doc.Specifications = normalizeSpecs(p)

	if created, ok := p.Time(createdSources...); ok {
		doc.PublishedAt = created.UTC()
	} else {
		doc.PublishedAt = now
	}

	return doc
}

// DesiredPrices extracts the price set the payload asks the authority to
// carry. A single price becomes the implicit "Standard" variant; with
// multiple prices an unnamed one gets a generated "Variant - $amount"
// name.
func (n *Normalizer) DesiredPrices(p models.Payload) []models.DesiredPrice {
	raw := p.Objects("variants", "prices", "priceOptions")

	if len(raw) == 0 {
		amount, ok := p.Decimal(priceAmountSources...)
		if !ok {
			return nil
		}
		name := p.String("priceName", "priceLabel")
		if name == "" {
			name = "Standard"
		}
		return []models.DesiredPrice{{
			Key:    "standard",
			Name:   name,
			Amount: amount,
			SKU:    p.String("sku"),
		}}
	}

	desired := make([]models.DesiredPrice, 0, len(raw))
	for _, v := range raw {
		amount, ok := v.Decimal(priceAmountSources...)
		if !ok {
			continue
		}
		name := v.String("name", "label", "title")
		key := v.String("id", "variantId", "key")
		if key == "" {
			key = Slugify(name)
		}
		if key == "" {
			key = "price-" + amount.String()
		}
		desired = append(desired, models.DesiredPrice{
			Key:    key,
			Name:   name,
			Amount: amount,
			SKU:    v.String("sku"),
		})
	}

	// A lone price is the product's own implicit variant; unnamed prices in
	// a multi-price set get a generated label.
	for i := range desired {
		if desired[i].Name != "" {
			continue
		}
		if len(desired) == 1 {
			desired[i].Name = "Standard"
		} else {
			desired[i].Name = fmt.Sprintf("Variant - $%s", desired[i].Amount.StringFixed(2))
		}
	}
	return desired
}

// Contact builds the canonical contact document. Email is lowercased
// because it is the case-insensitive dedup key.
func (n *Normalizer) Contact(p models.Payload) *models.Contact {
	now := n.now().UTC()

	doc := &models.Contact{
		CRMContactID: p.String(contactIDSources...),
		Email:        strings.ToLower(strings.TrimSpace(p.String(contactEmailSources...))),
		FirstName:    p.String("firstName", "first_name", "givenName"),
		LastName:     p.String("lastName", "last_name", "familyName"),
		Phone:        p.String(contactPhoneSources...),
		Tags:         p.Strings("tags", "labels"),
		IsActive:     p.Bool(true, "isActive", "active", "status"),
		UpdatedAt:    now,
	}

	if doc.FirstName == "" && doc.LastName == "" {
		doc.FirstName, doc.LastName = splitName(p.String("name", "fullName"))
	}

	if addr, ok := p.Object("address", "mailingAddress"); ok {
		a := normalizeAddress(addr)
		if !a.IsEmpty() {
			doc.Address = &a
		}
	}

	if custom, ok := p.Object("customFields", "custom_fields"); ok {
		fields := make(map[string]string)
		for key := range custom {
			if value := custom.String(key); value != "" {
				fields[key] = value
			}
		}
		if len(fields) > 0 {
			doc.CustomFields = fields
		}
	}

	if created, ok := p.Time(createdSources...); ok {
		doc.CreatedAt = created.UTC()
	} else {
		doc.CreatedAt = now
	}

	return doc
}

// Order builds the canonical order document with derived totals and
// payment status.
func (n *Normalizer) Order(p models.Payload) *models.Order {
	now := n.now().UTC()
	items := normalizeLineItems(p)
	subtotal, tax, shipping, discount, total := normalizeTotals(p, items)

	amountPaid, _ := p.Decimal(paidSources...)
	status := normalizeOrderStatus(p)

	doc := &models.Order{
		CRMOrderID:    p.String(orderIDSources...),
		Number:        p.String("number", "orderNumber", "name"),
		CRMContactID:  normalizeContactRef(p),
		LineItems:     items,
		Subtotal:      subtotal,
		Tax:           tax,
		Shipping:      shipping,
		Discount:      discount,
		Total:         total,
		Status:        status,
		PaymentStatus: models.DerivePaymentStatus(total, amountPaid, status == models.OrderStatusCancelled),
		UpdatedAt:     now,
	}

	if addr, ok := p.Object("shippingAddress", "shipping_address"); ok {
		a := normalizeAddress(addr)
		if !a.IsEmpty() {
			doc.ShippingAddress = &a
		}
	}
	if addr, ok := p.Object("billingAddress", "billing_address"); ok {
		a := normalizeAddress(addr)
		if !a.IsEmpty() {
			doc.BillingAddress = &a
		}
	}

	if created, ok := p.Time(createdSources...); ok {
		doc.CreatedAt = created.UTC()
	} else {
		doc.CreatedAt = now
	}

	return doc
}

// Invoice builds the canonical invoice document, carrying the order
// cross-reference used for payment-status propagation.
func (n *Normalizer) Invoice(p models.Payload) *models.Invoice {
	now := n.now().UTC()
	items := normalizeLineItems(p)
	subtotal, tax, _, discount, total := normalizeTotals(p, items)

	amountPaid, _ := p.Decimal(paidSources...)
	cancelled := isCancelled(p)

	doc := &models.Invoice{
		CRMInvoiceID:  p.String(invoiceIDSources...),
		Number:        p.String("number", "invoiceNumber", "name"),
		CRMContactID:  normalizeContactRef(p),
		CRMOrderID:    p.String("orderId", "crmOrderId", "relatedOrderId"),
		LineItems:     items,
		Subtotal:      subtotal,
		Tax:           tax,
		Discount:      discount,
		Total:         total,
		AmountPaid:    amountPaid,
		PaymentStatus: models.DerivePaymentStatus(total, amountPaid, cancelled),
		UpdatedAt:     now,
	}

	if addr, ok := p.Object("billingAddress", "billing_address"); ok {
		a := normalizeAddress(addr)
		if !a.IsEmpty() {
			doc.BillingAddress = &a
		}
	}

	if created, ok := p.Time(createdSources...); ok {
		doc.CreatedAt = created.UTC()
	} else {
		doc.CreatedAt = now
	}

	return doc
}

// Slugify derives a URL-safe slug: lowercase, runs of non-alphanumerics
// collapsed to a single hyphen, no leading or trailing hyphen. The result
// is stable under re-application, so re-deriving on every sync cannot move
// a product's URL.
func Slugify(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		} else {
			pendingHyphen = true
		}
	}
	return b.String()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func validBadge(b models.Badge) bool {
	switch b {
	case models.BadgeNew, models.BadgeSale, models.BadgeBestSeller, models.BadgeLimited:
		return true
	}
	return false
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func normalizeImages(p models.Payload) []models.Image {
	raw := p.Objects("images", "media", "photos")
	if len(raw) == 0 {
		if url := p.String("image", "imageUrl", "thumbnail"); url != "" {
			return []models.Image{{URL: url, Alt: p.String(productNameSources...), Featured: true}}
		}
		return nil
	}

	images := make([]models.Image, 0, len(raw))
	for _, img := range raw {
		url := img.String("url", "src", "href")
		if url == "" {
			continue
		}
		images = append(images, models.Image{
			URL:      url,
			Alt:      img.String("alt", "altText", "caption"),
			PriceID:  img.String("priceId", "variantId"),
			Featured: img.Bool(false, "featured", "isFeatured", "primary"),
		})
	}
	return images
}

func normalizeSpecs(p models.Payload) []models.Specification {
	raw := p.Objects("specifications", "specs", "attributes")
	specs := make([]models.Specification, 0, len(raw))
	for _, s := range raw {
		label := s.String("label", "name", "key")
		value := s.String("value", "val")
		if label == "" || value == "" {
			continue
		}
		specs = append(specs, models.Specification{Label: label, Value: value})
	}
	if len(specs) == 0 {
		return nil
	}
	return specs
}

func normalizeLineItems(p models.Payload) []models.LineItem {
	raw := p.Objects(lineItemSources...)
	items := make([]models.LineItem, 0, len(raw))
	for _, li := range raw {
		quantity, ok := li.Int("quantity", "qty", "count")
		if !ok || quantity < 1 {
			quantity = 1
		}
		unitPrice, _ := li.Decimal("unitPrice", "price", "rate")
		total, ok := li.Decimal("total", "lineTotal", "amount")
		if !ok {
			total = unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
		}
		items = append(items, models.LineItem{
			CRMProductID: li.String("productId", "crmProductId", "itemId"),
			Name:         li.String("name", "productName", "description"),
			VariantName:  li.String("variantName", "variant"),
			Quantity:     quantity,
			UnitPrice:    unitPrice,
			Total:        total,
		})
	}
	if len(items) == 0 {
		return nil
	}
	return items
}

func normalizeTotals(p models.Payload, items []models.LineItem) (subtotal, tax, shipping, discount, total decimal.Decimal) {
	subtotal, ok := p.Decimal("subtotal", "subTotal")
	if !ok {
		for _, li := range items {
			subtotal = subtotal.Add(li.Total)
		}
	}
	tax, _ = p.Decimal("tax", "taxAmount", "taxTotal")
	shipping, _ = p.Decimal("shipping", "shippingCost", "shippingAmount")
	discount, _ = p.Decimal("discount", "discountAmount", "discountTotal")

	total, ok = p.Decimal(totalSources...)
	if !ok {
		total = subtotal.Add(tax).Add(shipping).Sub(discount)
	}
	return subtotal, tax, shipping, discount, total
}

func normalizeContactRef(p models.Payload) string {
	if id := p.String("contactId", "customerId", "crmContactId"); id != "" {
		return id
	}
	if contact, ok := p.Object("contact", "customer"); ok {
		return contact.String(contactIDSources...)
	}
	return ""
}

func normalizeOrderStatus(p models.Payload) models.OrderStatus {
	if isCancelled(p) {
		return models.OrderStatusCancelled
	}
	switch strings.ToLower(p.String("status", "orderStatus", "state")) {
	case "processing", "in_progress", "in-progress":
		return models.OrderStatusProcessing
	case "shipped", "fulfilled", "dispatched":
		return models.OrderStatusShipped
	case "completed", "complete", "delivered", "closed":
		return models.OrderStatusCompleted
	default:
		return models.OrderStatusPending
	}
}

func isCancelled(p models.Payload) bool {
	switch strings.ToLower(p.String("status", "orderStatus", "state")) {
	case "cancelled", "canceled", "void", "voided":
		return true
	}
	return p.Bool(false, "cancelled", "isCancelled", "isVoid")
}

func normalizeAddress(p models.Payload) models.Address {
	return models.Address{
		Line1:      p.String("line1", "address1", "street"),
		Line2:      p.String("line2", "address2"),
		City:       p.String("city", "town"),
		State:      p.String("state", "province", "region"),
		PostalCode: p.String("postalCode", "zip", "zipCode"),
		Country:    p.String("country", "countryCode"),
	}
}
