package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ARahim3/ERP-Voice-Assistant/internal/domain"
	"github.com/ARahim3/ERP-Voice-Assistant/internal/llm"
	"github.com/ARahim3/ERP-Voice-Assistant/internal/store"
)

type createCustomerArgs struct {
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Company   string   `json:"company,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Address   string   `json:"address,omitempty"`
	Status    string   `json:"status,omitempty" jsonschema:"enum=Active,enum=Lead,enum=Inactive"`
	LeadScore *float64 `json:"lead_score,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

type updateCustomerArgs struct {
	CustomerID string   `json:"customer_id"`
	Name       string   `json:"name,omitempty"`
	Email      string   `json:"email,omitempty"`
	Company    string   `json:"company,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	Address    string   `json:"address,omitempty"`
	Status     string   `json:"status,omitempty" jsonschema:"enum=Active,enum=Lead,enum=Inactive"`
	LeadScore  *float64 `json:"lead_score,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

type idArgs struct {
	ID string `json:"id"`
}

type queryArgs struct {
	Query string `json:"query"`
}

func (t *Toolset) customerTools() []llm.Tool {
	return []llm.Tool{
		llm.NewTool("create_customer", "Creates a new customer record. Name and email are required.",
			func(ctx context.Context, args createCustomerArgs) (string, error) {
				if missing := missingRequired("name", args.Name, "email", args.Email); len(missing) > 0 {
					return fmt.Sprintf("Error creating customer: missing required field(s): %s.", strings.Join(missing, ", ")), nil
				}
				rec := domain.Record{"name": args.Name, "email": args.Email}
				setString(rec, "company", args.Company)
				setString(rec, "phone", args.Phone)
				setString(rec, "address", args.Address)
				setString(rec, "status", args.Status)
				if rec["status"] == nil {
					rec["status"] = "Lead"
				}
				setNumber(rec, "lead_score", args.LeadScore)
				setString(rec, "notes", args.Notes)

				if _, err := t.store.Add(ctx, domain.KindCustomer, rec); err != nil {
					return fmt.Sprintf("Error creating customer: %v", err), nil
				}
				return fmt.Sprintf("Success: Customer '%s' created.", args.Name), nil
			}),
		llm.NewTool("update_customer", "Updates an existing customer's details using their ID.",
			func(ctx context.Context, args updateCustomerArgs) (string, error) {
				if args.CustomerID == "" {
					return "Error updating customer: customer_id is required.", nil
				}
				rec := domain.Record{}
				setString(rec, "name", args.Name)
				setString(rec, "email", args.Email)
				setString(rec, "company", args.Company)
				setString(rec, "phone", args.Phone)
				setString(rec, "address", args.Address)
				setString(rec, "status", args.Status)
				setNumber(rec, "lead_score", args.LeadScore)
				setString(rec, "notes", args.Notes)

				if _, err := t.store.Update(ctx, domain.KindCustomer, args.CustomerID, rec); err != nil {
					return t.mutationFailure("updating customer", args.CustomerID, err), nil
				}
				return fmt.Sprintf("Success: Customer ID '%s' updated.", args.CustomerID), nil
			}),
		llm.NewTool("delete_customer", "Deletes a customer using their ID.",
			func(ctx context.Context, args idArgs) (string, error) {
				if _, err := t.store.Delete(ctx, domain.KindCustomer, args.ID); err != nil {
					return t.mutationFailure("deleting customer", args.ID, err), nil
				}
				return fmt.Sprintf("Success: Customer ID '%s' has been deleted.", args.ID), nil
			}),
		llm.NewTool("search_customers", "Searches existing customers by name, email, or company. Returns matching records or a not-found message.",
			func(ctx context.Context, args queryArgs) (string, error) {
				return t.search(ctx, domain.KindCustomer, "customer", args.Query, []string{"name", "email", "company"}), nil
			}),
	}
}

type createProductArgs struct {
	Name          string   `json:"name"`
	SKU           string   `json:"sku"`
	Price         *float64 `json:"price"`
	StockQuantity *float64 `json:"stock_quantity"`
	Category      string   `json:"category,omitempty"`
	Cost          *float64 `json:"cost,omitempty"`
	ReorderLevel  *float64 `json:"reorder_level,omitempty"`
	Description   string   `json:"description,omitempty"`
}

type updateProductArgs struct {
	ProductID     string   `json:"product_id"`
	Name          string   `json:"name,omitempty"`
	SKU           string   `json:"sku,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	StockQuantity *float64 `json:"stock_quantity,omitempty"`
	Category      string   `json:"category,omitempty"`
	Cost          *float64 `json:"cost,omitempty"`
	ReorderLevel  *float64 `json:"reorder_level,omitempty"`
	Description   string   `json:"description,omitempty"`
}

func (t *Toolset) productTools() []llm.Tool {
	return []llm.Tool{
		llm.NewTool("create_product", "Creates a new product in the inventory. Name, SKU, price and stock quantity are required.",
			func(ctx context.Context, args createProductArgs) (string, error) {
				var missing []string
				missing = append(missing, missingRequired("name", args.Name, "sku", args.SKU)...)
				if args.Price == nil {
					missing = append(missing, "price")
				}
				if args.StockQuantity == nil {
					missing = append(missing, "stock_quantity")
				}
				if len(missing) > 0 {
					return fmt.Sprintf("Error creating product: missing required field(s): %s.", strings.Join(missing, ", ")), nil
				}

				rec := domain.Record{
					"name": args.Name, "sku": args.SKU,
					"price": *args.Price, "stock_quantity": *args.StockQuantity,
				}
				setString(rec, "category", args.Category)
				setNumber(rec, "cost", args.Cost)
				setNumber(rec, "reorder_level", args.ReorderLevel)
				setString(rec, "description", args.Description)

				if _, err := t.store.Add(ctx, domain.KindProduct, rec); err != nil {
					return fmt.Sprintf("Error creating product: %v", err), nil
				}
				return fmt.Sprintf("Success: Product '%s' created.", args.Name), nil
			}),
		llm.NewTool("update_product", "Updates an existing product's details using its ID.",
			func(ctx context.Context, args updateProductArgs) (string, error) {
				if args.ProductID == "" {
					return "Error updating product: product_id is required.", nil
				}
				rec := domain.Record{}
				setString(rec, "name", args.Name)
				setString(rec, "sku", args.SKU)
				setNumber(rec, "price", args.Price)
				setNumber(rec, "stock_quantity", args.StockQuantity)
				setString(rec, "category", args.Category)
				setNumber(rec, "cost", args.Cost)
				setNumber(rec, "reorder_level", args.ReorderLevel)
				setString(rec, "description", args.Description)

				if _, err := t.store.Update(ctx, domain.KindProduct, args.ProductID, rec); err != nil {
					return t.mutationFailure("updating product", args.ProductID, err), nil
				}
				return fmt.Sprintf("Success: Product ID '%s' updated.", args.ProductID), nil
			}),
		llm.NewTool("delete_product", "Deletes a product from inventory using its ID.",
			func(ctx context.Context, args idArgs) (string, error) {
				if _, err := t.store.Delete(ctx, domain.KindProduct, args.ID); err != nil {
					return t.mutationFailure("deleting product", args.ID, err), nil
				}
				return fmt.Sprintf("Success: Product ID '%s' has been deleted.", args.ID), nil
			}),
		llm.NewTool("search_products", "Searches existing products by name or SKU. Returns matching records or a not-found message.",
			func(ctx context.Context, args queryArgs) (string, error) {
				return t.search(ctx, domain.KindProduct, "product", args.Query, []string{"name", "sku"}), nil
			}),
	}
}

type createEmployeeArgs struct {
	EmployeeID string   `json:"employee_id" jsonschema_description:"Human-assigned code like E001, not a generated id"`
	FirstName  string   `json:"first_name"`
	LastName   string   `json:"last_name"`
	Email      string   `json:"email"`
	Position   string   `json:"position"`
	Department string   `json:"department,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	HireDate   string   `json:"hire_date,omitempty"`
	Salary     *float64 `json:"salary,omitempty"`
	Status     string   `json:"status,omitempty" jsonschema:"enum=Active,enum=On Leave"`
}

type updateEmployeeArgs struct {
	EmployeeIDCustom string   `json:"employee_id_custom" jsonschema_description:"The employee's human-assigned code like E001"`
	FirstName        string   `json:"first_name,omitempty"`
	LastName         string   `json:"last_name,omitempty"`
	Email            string   `json:"email,omitempty"`
	Position         string   `json:"position,omitempty"`
	Department       string   `json:"department,omitempty"`
	Phone            string   `json:"phone,omitempty"`
	HireDate         string   `json:"hire_date,omitempty"`
	Salary           *float64 `json:"salary,omitempty"`
	Status           string   `json:"status,omitempty" jsonschema:"enum=Active,enum=On Leave"`
}

type employeeCodeArgs struct {
	EmployeeIDCustom string `json:"employee_id_custom" jsonschema_description:"The employee's human-assigned code like E001"`
}

func (t *Toolset) employeeTools() []llm.Tool {
	return []llm.Tool{
		llm.NewTool("create_employee", "Creates a new employee record. The employee_id is the human-assigned code such as E001.",
			func(ctx context.Context, args createEmployeeArgs) (string, error) {
				missing := missingRequired(
					"employee_id", args.EmployeeID,
					"first_name", args.FirstName,
					"last_name", args.LastName,
					"email", args.Email,
					"position", args.Position,
				)
				if len(missing) > 0 {
					return fmt.Sprintf("Error creating employee: missing required field(s): %s.", strings.Join(missing, ", ")), nil
				}

				rec := domain.Record{
					"employee_id": args.EmployeeID,
					"first_name":  args.FirstName,
					"last_name":   args.LastName,
					"email":       args.Email,
					"position":    args.Position,
				}
				setString(rec, "department", args.Department)
				setString(rec, "phone", args.Phone)
				setString(rec, "hire_date", args.HireDate)
				setNumber(rec, "salary", args.Salary)
				setString(rec, "status", args.Status)
				if rec["status"] == nil {
					rec["status"] = "Active"
				}

				if _, err := t.store.Add(ctx, domain.KindEmployee, rec); err != nil {
					return fmt.Sprintf("Error creating employee: %v", err), nil
				}
				return fmt.Sprintf("Success: Employee '%s %s' created.", args.FirstName, args.LastName), nil
			}),
		llm.NewTool("update_employee", "Updates an existing employee's details using their human-assigned employee code.",
			func(ctx context.Context, args updateEmployeeArgs) (string, error) {
				if args.EmployeeIDCustom == "" {
					return "Error updating employee: employee_id_custom is required.", nil
				}
				rec := domain.Record{}
				setString(rec, "first_name", args.FirstName)
				setString(rec, "last_name", args.LastName)
				setString(rec, "email", args.Email)
				setString(rec, "position", args.Position)
				setString(rec, "department", args.Department)
				setString(rec, "phone", args.Phone)
				setString(rec, "hire_date", args.HireDate)
				setNumber(rec, "salary", args.Salary)
				setString(rec, "status", args.Status)

				if _, err := t.store.Update(ctx, domain.KindEmployee, args.EmployeeIDCustom, rec); err != nil {
					return t.mutationFailure("updating employee", args.EmployeeIDCustom, err), nil
				}
				return fmt.Sprintf("Success: Employee ID '%s' updated.", args.EmployeeIDCustom), nil
			}),
		llm.NewTool("delete_employee", "Deletes an employee using their human-assigned employee code (e.g. E001).",
			func(ctx context.Context, args employeeCodeArgs) (string, error) {
				if _, err := t.store.Delete(ctx, domain.KindEmployee, args.EmployeeIDCustom); err != nil {
					return t.mutationFailure("deleting employee", args.EmployeeIDCustom, err), nil
				}
				return fmt.Sprintf("Success: Employee ID '%s' has been deleted.", args.EmployeeIDCustom), nil
			}),
		llm.NewTool("search_employees", "Searches existing employees by first name, last name, or email. Returns matching records or a not-found message.",
			func(ctx context.Context, args queryArgs) (string, error) {
				return t.search(ctx, domain.KindEmployee, "employee", args.Query, []string{"first_name", "last_name", "email"}), nil
			}),
	}
}

type createOrderArgs struct {
	CustomerID      string   `json:"customer_id"`
	OrderDate       string   `json:"order_date"`
	TotalAmount     *float64 `json:"total_amount"`
	Status          string   `json:"status,omitempty" jsonschema:"enum=Pending,enum=Processing,enum=Shipped,enum=Delivered"`
	ShippingAddress string   `json:"shipping_address,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}

type updateOrderArgs struct {
	OrderID         string   `json:"order_id"`
	CustomerID      string   `json:"customer_id,omitempty"`
	OrderDate       string   `json:"order_date,omitempty"`
	TotalAmount     *float64 `json:"total_amount,omitempty"`
	Status          string   `json:"status,omitempty" jsonschema:"enum=Pending,enum=Processing,enum=Shipped,enum=Delivered"`
	ShippingAddress string   `json:"shipping_address,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}

func (t *Toolset) orderTools() []llm.Tool {
	return []llm.Tool{
		llm.NewTool("create_order", "Creates a new customer order. Customer ID, order date and total amount are required.",
			func(ctx context.Context, args createOrderArgs) (string, error) {
				missing := missingRequired("customer_id", args.CustomerID, "order_date", args.OrderDate)
				if args.TotalAmount == nil {
					missing = append(missing, "total_amount")
				}
				if len(missing) > 0 {
					return fmt.Sprintf("Error creating order: missing required field(s): %s.", strings.Join(missing, ", ")), nil
				}

				rec := domain.Record{
					"customer_id":  args.CustomerID,
					"order_date":   args.OrderDate,
					"total_amount": *args.TotalAmount,
				}
				setString(rec, "status", args.Status)
				if rec["status"] == nil {
					rec["status"] = "Pending"
				}
				setString(rec, "shipping_address", args.ShippingAddress)
				setString(rec, "notes", args.Notes)

				if _, err := t.store.Add(ctx, domain.KindOrder, rec); err != nil {
					return fmt.Sprintf("Error creating order: %v", err), nil
				}
				return fmt.Sprintf("Success: Order created for customer '%s'.", args.CustomerID), nil
			}),
		llm.NewTool("update_order", "Updates an existing order using its ID.",
			func(ctx context.Context, args updateOrderArgs) (string, error) {
				if args.OrderID == "" {
					return "Error updating order: order_id is required.", nil
				}
				rec := domain.Record{}
				setString(rec, "customer_id", args.CustomerID)
				setString(rec, "order_date", args.OrderDate)
				setNumber(rec, "total_amount", args.TotalAmount)
				setString(rec, "status", args.Status)
				setString(rec, "shipping_address", args.ShippingAddress)
				setString(rec, "notes", args.Notes)

				if _, err := t.store.Update(ctx, domain.KindOrder, args.OrderID, rec); err != nil {
					return t.mutationFailure("updating order", args.OrderID, err), nil
				}
				return fmt.Sprintf("Success: Order ID '%s' updated.", args.OrderID), nil
			}),
		llm.NewTool("delete_order", "Deletes an order using its ID.",
			func(ctx context.Context, args idArgs) (string, error) {
				if _, err := t.store.Delete(ctx, domain.KindOrder, args.ID); err != nil {
					return t.mutationFailure("deleting order", args.ID, err), nil
				}
				return fmt.Sprintf("Success: Order ID '%s' has been deleted.", args.ID), nil
			}),
		llm.NewTool("search_orders", "Searches existing orders by customer ID or status. Returns matching records or a not-found message.",
			func(ctx context.Context, args queryArgs) (string, error) {
				return t.search(ctx, domain.KindOrder, "order", args.Query, []string{"customer_id", "status"}), nil
			}),
	}
}

type createInvoiceArgs struct {
	CustomerID  string   `json:"customer_id"`
	IssueDate   string   `json:"issue_date"`
	DueDate     string   `json:"due_date"`
	TotalAmount *float64 `json:"total_amount"`
	OrderID     string   `json:"order_id,omitempty"`
	PaidAmount  *float64 `json:"paid_amount,omitempty"`
	Status      string   `json:"status,omitempty" jsonschema:"enum=Pending,enum=Paid,enum=Overdue,enum=Cancelled"`
}

type updateInvoiceArgs struct {
	InvoiceID   string   `json:"invoice_id"`
	CustomerID  string   `json:"customer_id,omitempty"`
	IssueDate   string   `json:"issue_date,omitempty"`
	DueDate     string   `json:"due_date,omitempty"`
	TotalAmount *float64 `json:"total_amount,omitempty"`
	OrderID     string   `json:"order_id,omitempty"`
	PaidAmount  *float64 `json:"paid_amount,omitempty"`
	Status      string   `json:"status,omitempty" jsonschema:"enum=Pending,enum=Paid,enum=Overdue,enum=Cancelled"`
}

func (t *Toolset) invoiceTools() []llm.Tool {
	return []llm.Tool{
		llm.NewTool("create_invoice", "Creates a new invoice. Customer ID, issue date, due date and total amount are required.",
			func(ctx context.Context, args createInvoiceArgs) (string, error) {
				missing := missingRequired(
					"customer_id", args.CustomerID,
					"issue_date", args.IssueDate,
					"due_date", args.DueDate,
				)
				if args.TotalAmount == nil {
					missing = append(missing, "total_amount")
				}
				if len(missing) > 0 {
					return fmt.Sprintf("Error creating invoice: missing required field(s): %s.", strings.Join(missing, ", ")), nil
				}

				rec := domain.Record{
					"customer_id":  args.CustomerID,
					"issue_date":   args.IssueDate,
					"due_date":     args.DueDate,
					"total_amount": *args.TotalAmount,
				}
				setString(rec, "order_id", args.OrderID)
				setNumber(rec, "paid_amount", args.PaidAmount)
				setString(rec, "status", args.Status)
				if rec["status"] == nil {
					rec["status"] = "Pending"
				}

				created, err := t.store.Add(ctx, domain.KindInvoice, rec)
				if err != nil {
					return fmt.Sprintf("Error creating invoice: %v", err), nil
				}
				number, _ := created["invoice_number"].(string)
				return fmt.Sprintf("Success: Invoice %s created for customer '%s'.", number, args.CustomerID), nil
			}),
		llm.NewTool("update_invoice", "Updates an existing invoice using its ID.",
			func(ctx context.Context, args updateInvoiceArgs) (string, error) {
				if args.InvoiceID == "" {
					return "Error updating invoice: invoice_id is required.", nil
				}
				rec := domain.Record{}
				setString(rec, "customer_id", args.CustomerID)
				setString(rec, "issue_date", args.IssueDate)
				setString(rec, "due_date", args.DueDate)
				setNumber(rec, "total_amount", args.TotalAmount)
				setString(rec, "order_id", args.OrderID)
				setNumber(rec, "paid_amount", args.PaidAmount)
				setString(rec, "status", args.Status)

				if _, err := t.store.Update(ctx, domain.KindInvoice, args.InvoiceID, rec); err != nil {
					return t.mutationFailure("updating invoice", args.InvoiceID, err), nil
				}
				return fmt.Sprintf("Success: Invoice ID '%s' updated.", args.InvoiceID), nil
			}),
		llm.NewTool("delete_invoice", "Deletes an invoice using its ID.",
			func(ctx context.Context, args idArgs) (string, error) {
				if _, err := t.store.Delete(ctx, domain.KindInvoice, args.ID); err != nil {
					return t.mutationFailure("deleting invoice", args.ID, err), nil
				}
				return fmt.Sprintf("Success: Invoice ID '%s' has been deleted.", args.ID), nil
			}),
		llm.NewTool("search_invoices", "Searches existing invoices by invoice number or customer ID. Returns matching records or a not-found message.",
			func(ctx context.Context, args queryArgs) (string, error) {
				return t.search(ctx, domain.KindInvoice, "invoice", args.Query, []string{"invoice_number", "customer_id"}), nil
			}),
	}
}

// mutationFailure phrases store errors for speech, distinguishing a missing
// record from an internal failure.
func (t *Toolset) mutationFailure(action, id string, err error) string {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Sprintf("Error %s: no record found for ID '%s'.", action, id)
	}
	return fmt.Sprintf("Error %s: %v", action, err)
}
