package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/ARahim3/ERP-Voice-Assistant/internal/domain"
)

// Seed loads the demo dataset when the database is empty. Seeding is silent:
// no change events are emitted for the initial rows.
func (s *SQLiteStore) Seed(ctx context.Context) error {
	var existing int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM customers").Scan(&existing); err != nil {
		return fmt.Errorf("check seed state: %w", err)
	}
	if existing > 0 {
		return nil
	}

	for kind, records := range sampleData() {
		t, _ := domain.TableFor(kind)
		for _, rec := range records {
			if err := s.insertSeed(ctx, t, rec); err != nil {
				return fmt.Errorf("seed %s: %w", t.Name, err)
			}
		}
	}
	return nil
}

func (s *SQLiteStore) insertSeed(ctx context.Context, t domain.Table, fields domain.Record) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.Columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.Name, strings.Join(t.Columns, ", "), placeholders)

	args := make([]any, 0, len(t.Columns))
	for _, col := range t.Columns {
		value, ok := fields[col]
		if !ok {
			if t.Numeric[col] {
				value = 0.0
			} else {
				value = nil
			}
		}
		args = append(args, value)
	}
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

func sampleData() map[domain.Kind][]domain.Record {
	return map[domain.Kind][]domain.Record{
		domain.KindCustomer: {
			{
				"id": "cust001", "name": "Acme Corporation", "email": "contact@acme.com",
				"phone": "+1-555-0123", "company": "Acme Corp", "address": "123 Business Ave, NYC",
				"status": "Active", "lead_score": 85.0, "created_date": "2024-01-15",
				"last_contact": "2024-05-20", "notes": "Premium customer",
			},
			{
				"id": "cust002", "name": "TechStart LLC", "email": "hello@techstart.com",
				"phone": "+1-555-0456", "company": "TechStart LLC", "address": "456 Innovation Blvd, SF",
				"status": "Active", "lead_score": 72.0, "created_date": "2024-02-10",
				"last_contact": "2024-05-28", "notes": "Startup client",
			},
		},
		domain.KindProduct: {
			{
				"id": "prod001", "name": "Wireless Headphones Pro", "sku": "WH-PRO-001",
				"category": "Electronics", "price": 299.99, "cost": 150.00,
				"stock_quantity": 150.0, "reorder_level": 25.0, "supplier_id": "supp001",
				"warehouse_location": "A-1-15", "created_date": "2024-01-01",
				"description": "High-fidelity wireless headphones with noise cancellation.",
			},
			{
				"id": "prod002", "name": "Ergonomic Office Chair", "sku": "CHAIR-ERG-001",
				"category": "Furniture", "price": 449.99, "cost": 200.00,
				"stock_quantity": 45.0, "reorder_level": 10.0, "supplier_id": "supp002",
				"warehouse_location": "B-2-08", "created_date": "2024-01-05",
				"description": "Comfortable ergonomic chair for long working hours.",
			},
			{
				"id": "prod003", "name": "Smart Water Bottle", "sku": "BOTTLE-SMRT-01",
				"category": "Gadgets", "price": 79.99, "cost": 30.00,
				"stock_quantity": 8.0, "reorder_level": 15.0, "supplier_id": "supp001",
				"warehouse_location": "C-1-02", "created_date": "2024-02-10",
				"description": "Tracks water intake and glows to remind you to drink.",
			},
		},
		domain.KindEmployee: {
			{
				"id": "emp001", "employee_id": "E001", "first_name": "John", "last_name": "Smith",
				"email": "john.smith@company.com", "phone": "+1-555-4001", "department": "Sales",
				"position": "Sales Manager", "hire_date": "2023-03-15", "salary": 75000.0,
				"status": "Active", "manager_id": "",
			},
			{
				"id": "emp002", "employee_id": "E002", "first_name": "Emily", "last_name": "Davis",
				"email": "emily.davis@company.com", "phone": "+1-555-4002", "department": "Marketing",
				"position": "Marketing Specialist", "hire_date": "2023-06-01", "salary": 65000.0,
				"status": "Active", "manager_id": "emp001",
			},
		},
		domain.KindOrder: {
			{
				"id": "ord001", "customer_id": "cust001", "order_date": "2024-05-25",
				"status": "Processing", "total_amount": 1499.95,
				"shipping_address": "123 Business Ave, NYC", "notes": "Bulk order",
			},
			{
				"id": "ord002", "customer_id": "cust002", "order_date": "2024-05-28",
				"status": "Pending", "total_amount": 899.97,
				"shipping_address": "456 Innovation Blvd, SF", "notes": "Standard delivery",
			},
		},
		domain.KindInvoice: {
			{
				"id": "inv001", "invoice_number": "INV001", "order_id": "ord001",
				"customer_id": "cust001", "issue_date": "2024-05-25", "due_date": "2024-06-24",
				"total_amount": 1499.95, "status": "Paid", "paid_amount": 1499.95,
			},
			{
				"id": "inv002", "invoice_number": "INV002", "order_id": "ord002",
				"customer_id": "cust002", "issue_date": "2024-05-28", "due_date": "2024-06-27",
				"total_amount": 899.97, "status": "Pending", "paid_amount": 0.00,
			},
		},
	}
}
