// Package domain contains the entity model and broadcast payloads for the
// ERP voice assistant.
package domain

// Record is one row of an entity table. Optional columns that were never set
// are absent or nil; numeric columns default to 0 on insert so a record never
// carries NaN.
type Record map[string]any

// Kind identifies an entity table.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindProduct  Kind = "product"
	KindEmployee Kind = "employee"
	KindOrder    Kind = "order"
	KindInvoice  Kind = "invoice"
)

// Kinds lists every entity kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindCustomer, KindProduct, KindEmployee, KindOrder, KindInvoice}
}

// Table describes the schema and behavior of one entity table.
type Table struct {
	// Name is the SQL table name.
	Name string
	// Prefix is prepended to generated ids and names the broadcast events
	// (e.g. "customer" -> "customer_added").
	Prefix string
	// LookupColumn is the key used by update/delete. Every kind uses "id"
	// except employees, which are addressed by their human-assigned code.
	LookupColumn string
	// Columns is the full column set, id first.
	Columns []string
	// Numeric marks columns stored as REAL; absent numeric values are
	// inserted as 0.
	Numeric map[string]bool
	// Required columns must be present and non-empty on add.
	Required []string
}

var tables = map[Kind]Table{
	KindCustomer: {
		Name:         "customers",
		Prefix:       "customer",
		LookupColumn: "id",
		Columns: []string{
			"id", "name", "email", "phone", "company", "address",
			"status", "lead_score", "created_date", "last_contact", "notes",
		},
		Numeric:  map[string]bool{"lead_score": true},
		Required: []string{"name", "email"},
	},
	KindProduct: {
		Name:         "products",
		Prefix:       "product",
		LookupColumn: "id",
		Columns: []string{
			"id", "name", "sku", "category", "price", "cost",
			"stock_quantity", "reorder_level", "supplier_id",
			"warehouse_location", "created_date", "description",
		},
		Numeric: map[string]bool{
			"price": true, "cost": true, "stock_quantity": true, "reorder_level": true,
		},
		Required: []string{"name", "sku", "price"},
	},
	KindEmployee: {
		Name:         "employees",
		Prefix:       "employee",
		LookupColumn: "employee_id",
		Columns: []string{
			"id", "employee_id", "first_name", "last_name", "email", "phone",
			"department", "position", "hire_date", "salary", "status", "manager_id",
		},
		Numeric:  map[string]bool{"salary": true},
		Required: []string{"first_name", "email"},
	},
	KindOrder: {
		Name:         "sales_orders",
		Prefix:       "order",
		LookupColumn: "id",
		Columns: []string{
			"id", "customer_id", "order_date", "status", "total_amount",
			"shipping_address", "notes",
		},
		Numeric:  map[string]bool{"total_amount": true},
		Required: []string{"customer_id", "total_amount"},
	},
	KindInvoice: {
		Name:         "invoices",
		Prefix:       "invoice",
		LookupColumn: "id",
		Columns: []string{
			"id", "invoice_number", "order_id", "customer_id", "issue_date",
			"due_date", "total_amount", "status", "paid_amount",
		},
		Numeric:  map[string]bool{"total_amount": true, "paid_amount": true},
		Required: []string{"customer_id", "total_amount"},
	},
}

// TableFor returns the schema for a kind. The second result is false for an
// unknown kind.
func TableFor(kind Kind) (Table, bool) {
	t, ok := tables[kind]
	return t, ok
}

// HasColumn reports whether the table defines the named column.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}
