// Package orders holds two sample routes over tenant databases: an order
// lookup that requires a tenant and a product listing written against the
// shared DB handle.
package orders

import (
	"time"
)

type Order struct {
	ID         int64     `json:"id"`
	Number     string    `json:"number"`
	Customer   string    `json:"customer"`
	Status     string    `json:"status"`
	TotalCents int64     `json:"total_cents"`
	CreatedAt  time.Time `json:"created_at"`
}

type Product struct {
	ID         int64  `json:"id"`
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
}

const (
	getOrderQuery = `SELECT id, number, customer_name, status, total_cents, created_at
FROM orders
WHERE id = $1`

	listProductsQuery = `SELECT id, sku, name, price_cents
FROM products
ORDER BY name
LIMIT $1`
)

const (
	defaultProductLimit = 50
	maxProductLimit     = 200
)
