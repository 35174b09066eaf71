package masterdata

import (
	"github.com/go-chi/chi/v5"

	"github.com/zambezi-erp/zambezi-erp/internal/masterdata/customers"
	"github.com/zambezi-erp/zambezi-erp/internal/masterdata/items"
	"github.com/zambezi-erp/zambezi-erp/internal/masterdata/suppliers"
	"github.com/zambezi-erp/zambezi-erp/internal/masterdata/taxes"
	"github.com/zambezi-erp/zambezi-erp/internal/masterdata/warehouses"
)

// Handler aggregates master data sub-handlers under one mount point.
type Handler struct {
	Customers  *customers.Handler
	Suppliers  *suppliers.Handler
	Items      *items.Handler
	Taxes      *taxes.Handler
	Warehouses *warehouses.Handler
}

// MountRoutes registers all master data routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/customers", h.Customers.MountRoutes)
	r.Route("/suppliers", h.Suppliers.MountRoutes)
	r.Route("/items", h.Items.MountRoutes)
	r.Route("/taxes", h.Taxes.MountRoutes)
	r.Route("/warehouses", h.Warehouses.MountRoutes)
}
