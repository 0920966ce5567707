package service

import (
	"context"

	"github.com/dukerupert/coffee-delivery/internal/domain"
)

// CatalogService provides read access to the products on sale.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, sku string) (*domain.Product, error)
}

type staticCatalog struct {
	products []domain.Product
	bySKU    map[string]domain.Product
}

// NewStaticCatalog creates a catalog from a fixed product list. Products are
// listed in the order given; duplicate SKUs keep the first entry.
func NewStaticCatalog(products []domain.Product) CatalogService {
	c := &staticCatalog{bySKU: make(map[string]domain.Product, len(products))}
	for _, p := range products {
		if _, dup := c.bySKU[p.SKU]; dup {
			continue
		}
		c.bySKU[p.SKU] = p
		c.products = append(c.products, p)
	}
	return c
}

// ListProducts returns every product in catalog order.
func (c *staticCatalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out, nil
}

// GetProduct returns the product with the given SKU.
func (c *staticCatalog) GetProduct(ctx context.Context, sku string) (*domain.Product, error) {
	p, ok := c.bySKU[sku]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

// DefaultProducts is the coffee menu the storefront opens with.
func DefaultProducts() []domain.Product {
	return []domain.Product{
		{SKU: "expresso-tradicional", Name: "Expresso Tradicional", Description: "O tradicional café feito com água quente e grãos moídos", Tags: []string{"tradicional"}, PriceCents: 990},
		{SKU: "expresso-americano", Name: "Expresso Americano", Description: "Expresso diluído, menos intenso que o tradicional", Tags: []string{"tradicional"}, PriceCents: 990},
		{SKU: "expresso-cremoso", Name: "Expresso Cremoso", Description: "Café expresso tradicional com espuma cremosa", Tags: []string{"tradicional"}, PriceCents: 990},
		{SKU: "expresso-gelado", Name: "Expresso Gelado", Description: "Bebida preparada com café expresso e cubos de gelo", Tags: []string{"tradicional", "gelado"}, PriceCents: 990},
		{SKU: "cafe-com-leite", Name: "Café com Leite", Description: "Meio a meio de expresso tradicional com leite vaporizado", Tags: []string{"tradicional", "com leite"}, PriceCents: 990},
		{SKU: "latte", Name: "Latte", Description: "Uma dose de café expresso com o dobro de leite e espuma cremosa", Tags: []string{"tradicional", "com leite"}, PriceCents: 990},
		{SKU: "capuccino", Name: "Capuccino", Description: "Bebida com canela feita de doses iguais de café, leite e espuma", Tags: []string{"tradicional", "com leite"}, PriceCents: 990},
		{SKU: "macchiato", Name: "Macchiato", Description: "Café expresso misturado com um pouco de leite quente e espuma", Tags: []string{"tradicional", "com leite"}, PriceCents: 990},
		{SKU: "mocaccino", Name: "Mocaccino", Description: "Café expresso com calda de chocolate, pouco leite e espuma", Tags: []string{"tradicional", "com leite"}, PriceCents: 990},
		{SKU: "chocolate-quente", Name: "Chocolate Quente", Description: "Bebida feita com chocolate dissolvido no leite quente e café", Tags: []string{"especial", "com leite"}, PriceCents: 990},
		{SKU: "cubano", Name: "Cubano", Description: "Drink gelado de café expresso com rum, creme de leite e hortelã", Tags: []string{"especial", "alcoólico", "gelado"}, PriceCents: 990},
		{SKU: "havaiano", Name: "Havaiano", Description: "Bebida adocicada preparada com café e leite de coco", Tags: []string{"especial"}, PriceCents: 990},
		{SKU: "arabe", Name: "Árabe", Description: "Bebida preparada com grãos de café árabe e especiarias", Tags: []string{"especial"}, PriceCents: 990},
		{SKU: "irlandes", Name: "Irlandês", Description: "Bebida a base de café, uísque irlandês, açúcar e chantilly", Tags: []string{"especial", "alcoólico"}, PriceCents: 990},
	}
}
