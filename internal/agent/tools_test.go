package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/ARahim3/ERP-Voice-Assistant/internal/domain"
	"github.com/ARahim3/ERP-Voice-Assistant/internal/llm"
)

// fakeStore is an in-memory Store recording mutations per kind.
type fakeStore struct {
	records map[domain.Kind][]domain.Record
	adds    int
	updates int
	deletes int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[domain.Kind][]domain.Record)}
}

func (f *fakeStore) List(ctx context.Context, kind domain.Kind) ([]domain.Record, error) {
	return f.records[kind], nil
}

func (f *fakeStore) Add(ctx context.Context, kind domain.Kind, fields domain.Record) (domain.Record, error) {
	f.adds++
	rec := domain.Record{"id": "test001"}
	for k, v := range fields {
		rec[k] = v
	}
	if kind == domain.KindInvoice && rec["invoice_number"] == nil {
		rec["invoice_number"] = "INVTEST001"
	}
	f.records[kind] = append(f.records[kind], rec)
	return rec, nil
}

func (f *fakeStore) Update(ctx context.Context, kind domain.Kind, id string, fields domain.Record) (domain.Record, error) {
	f.updates++
	rec := domain.Record{"id": id}
	for k, v := range fields {
		rec[k] = v
	}
	return rec, nil
}

func (f *fakeStore) Delete(ctx context.Context, kind domain.Kind, id string) (domain.Record, error) {
	f.deletes++
	return domain.Record{"id": id}, nil
}

func (f *fakeStore) Counts(ctx context.Context) (map[string]int, error) { return nil, nil }
func (f *fakeStore) Ping(ctx context.Context) error                    { return nil }
func (f *fakeStore) Close() error                                      { return nil }

// fakeBroadcaster records emitted UI instructions.
type fakeBroadcaster struct {
	instructions []domain.Instruction
	err          error
}

func (f *fakeBroadcaster) UIInstruction(inst domain.Instruction) error {
	if f.err != nil {
		return f.err
	}
	f.instructions = append(f.instructions, inst)
	return nil
}

func dispatch(t *testing.T, ts *Toolset, name, arguments string) string {
	t.Helper()
	return ts.Dispatch(context.Background(), llm.ToolCall{ID: "call_1", Name: name, Arguments: arguments})
}

func TestNavigateURLMapping(t *testing.T) {
	cases := []struct {
		app string
		url string
	}{
		{"crm", "/crm_vue"},
		{"inventory", "/inventory_vue"},
		{"orders", "/orders_vue"},
		{"hr", "/hr_vue"},
		{"finance", "/finance_vue"},
		{"dashboard", "/"},
	}

	for _, tc := range cases {
		t.Run(tc.app, func(t *testing.T) {
			bc := &fakeBroadcaster{}
			ts := NewToolset(newFakeStore(), bc)

			result := dispatch(t, ts, "navigate_to_page", `{"target_app":"`+tc.app+`"}`)

			if len(bc.instructions) != 1 {
				t.Fatalf("Expected 1 instruction, got %d", len(bc.instructions))
			}
			inst := bc.instructions[0]
			if inst.Action != domain.ActionNavigate {
				t.Errorf("Expected navigate action, got %q", inst.Action)
			}
			if inst.URL != tc.url {
				t.Errorf("Expected URL %q, got %q", tc.url, inst.URL)
			}
			want := "Okay, I have navigated to the " + tc.app + " page."
			if result != want {
				t.Errorf("Expected %q, got %q", want, result)
			}
		})
	}
}

func TestNavigateUnknownApp(t *testing.T) {
	bc := &fakeBroadcaster{}
	ts := NewToolset(newFakeStore(), bc)

	result := dispatch(t, ts, "navigate_to_page", `{"target_app":"warehouse"}`)

	if len(bc.instructions) != 0 {
		t.Errorf("Expected no instruction for unknown app, got %d", len(bc.instructions))
	}
	if !strings.Contains(result, "don't know a page") {
		t.Errorf("Expected unknown-page reply, got %q", result)
	}
}

func TestNavigateMarksTurn(t *testing.T) {
	ts := NewToolset(newFakeStore(), &fakeBroadcaster{})

	ctx, trace := withTrace(context.Background())
	ts.Dispatch(ctx, llm.ToolCall{Name: "navigate_to_page", Arguments: `{"target_app":"crm"}`})

	if !trace.navigated {
		t.Error("Expected trace to record the navigation")
	}
}

func TestNavigateBroadcastErrorSpokenApology(t *testing.T) {
	bc := &fakeBroadcaster{err: context.DeadlineExceeded}
	ts := NewToolset(newFakeStore(), bc)

	ctx, trace := withTrace(context.Background())
	result := ts.Dispatch(ctx, llm.ToolCall{Name: "navigate_to_page", Arguments: `{"target_app":"crm"}`})

	if result != "Sorry, I couldn't navigate to that page right now." {
		t.Errorf("Expected spoken failure, got %q", result)
	}
	if trace.navigated {
		t.Error("Expected failed navigation not to mark the turn")
	}
}

func TestFillFormFieldRoundTrip(t *testing.T) {
	bc := &fakeBroadcaster{}
	ts := NewToolset(newFakeStore(), bc)

	dispatch(t, ts, "fill_form_field", `{"target_app":"crm","field_id":"customer-name","value":"Acme Corp"}`)

	if len(bc.instructions) != 1 {
		t.Fatalf("Expected 1 instruction, got %d", len(bc.instructions))
	}
	inst := bc.instructions[0]
	if inst.Action != domain.ActionFillField {
		t.Errorf("Expected fill_field action, got %q", inst.Action)
	}
	if inst.FieldID != "customer-name" || inst.Value != "Acme Corp" {
		t.Errorf("Expected field carried unmodified, got %q=%q", inst.FieldID, inst.Value)
	}
}

func TestCreateToolsRejectMissingRequired(t *testing.T) {
	cases := []struct {
		tool string
		args string
	}{
		{"create_customer", `{"name":"Acme Corp"}`},
		{"create_product", `{"name":"Widget","sku":"W-1","price":9.5}`},
		{"create_employee", `{"first_name":"Jane","last_name":"Doe","email":"j@x.test","position":"Engineer"}`},
		{"create_order", `{"customer_id":"cust001","order_date":"2025-01-01"}`},
		{"create_invoice", `{"customer_id":"cust001","issue_date":"2025-01-01","due_date":"2025-02-01"}`},
	}

	for _, tc := range cases {
		t.Run(tc.tool, func(t *testing.T) {
			st := newFakeStore()
			ts := NewToolset(st, &fakeBroadcaster{})

			result := dispatch(t, ts, tc.tool, tc.args)

			if st.adds != 0 {
				t.Errorf("Expected no store call, got %d adds", st.adds)
			}
			if !strings.Contains(result, "missing required field") {
				t.Errorf("Expected missing-field failure, got %q", result)
			}
		})
	}
}

func TestCreateCustomerSuccess(t *testing.T) {
	st := newFakeStore()
	ts := NewToolset(st, &fakeBroadcaster{})

	result := dispatch(t, ts, "create_customer", `{"name":"Acme Corp","email":"info@acme.test"}`)

	if result != "Success: Customer 'Acme Corp' created." {
		t.Errorf("Expected success string, got %q", result)
	}
	if st.adds != 1 {
		t.Errorf("Expected 1 add, got %d", st.adds)
	}
}

func TestCreateCustomerOmitsUnsetOptionals(t *testing.T) {
	st := newFakeStore()
	ts := NewToolset(st, &fakeBroadcaster{})

	dispatch(t, ts, "create_customer", `{"name":"Acme Corp","email":"info@acme.test"}`)

	rec := st.records[domain.KindCustomer][0]
	if _, present := rec["phone"]; present {
		t.Error("Expected unset optional phone to be omitted from the payload")
	}
	if rec["status"] != "Lead" {
		t.Errorf("Expected default status Lead, got %v", rec["status"])
	}
}

func TestCreateInvoiceSpeaksInvoiceNumber(t *testing.T) {
	st := newFakeStore()
	ts := NewToolset(st, &fakeBroadcaster{})

	result := dispatch(t, ts, "create_invoice",
		`{"customer_id":"cust001","issue_date":"2025-01-01","due_date":"2025-02-01","total_amount":150}`)

	if result != "Success: Invoice INVTEST001 created for customer 'cust001'." {
		t.Errorf("Expected invoice number in reply, got %q", result)
	}
}

func TestSearchSentinels(t *testing.T) {
	ts := NewToolset(newFakeStore(), &fakeBroadcaster{})

	cases := []struct {
		tool string
		want string
	}{
		{"search_customers", "No customer found matching that query."},
		{"search_products", "No product found matching that query."},
		{"search_employees", "No employee found matching that query."},
		{"search_orders", "No order found matching that query."},
		{"search_invoices", "No invoice found matching that query."},
	}
	for _, tc := range cases {
		result := dispatch(t, ts, tc.tool, `{"query":"nothing"}`)
		if result != tc.want {
			t.Errorf("Expected %q, got %q", tc.want, result)
		}
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	st := newFakeStore()
	st.records[domain.KindCustomer] = []domain.Record{
		{"id": "cust001", "name": "Acme Corporation", "email": "info@acme.test"},
		{"id": "cust002", "name": "Globex", "email": "hi@globex.test"},
	}
	ts := NewToolset(st, &fakeBroadcaster{})

	result := dispatch(t, ts, "search_customers", `{"query":"ACME"}`)

	if !strings.Contains(result, "cust001") {
		t.Errorf("Expected match for cust001, got %q", result)
	}
	if strings.Contains(result, "cust002") {
		t.Errorf("Expected no match for cust002, got %q", result)
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	ts := NewToolset(newFakeStore(), &fakeBroadcaster{})

	result := dispatch(t, ts, "launch_rocket", `{}`)

	if result != `Error: unknown tool "launch_rocket".` {
		t.Errorf("Expected unknown tool error, got %q", result)
	}
}

func TestDispatchMalformedArguments(t *testing.T) {
	ts := NewToolset(newFakeStore(), &fakeBroadcaster{})

	result := dispatch(t, ts, "create_customer", `{not json`)

	if !strings.HasPrefix(result, "Error running create_customer:") {
		t.Errorf("Expected error string result, got %q", result)
	}
}

func TestDeleteToolsSpeakTheID(t *testing.T) {
	cases := []struct {
		tool string
		args string
		want string
	}{
		{"delete_customer", `{"id":"cust001"}`, "Success: Customer ID 'cust001' has been deleted."},
		{"delete_product", `{"id":"prod001"}`, "Success: Product ID 'prod001' has been deleted."},
		{"delete_employee", `{"employee_id_custom":"E001"}`, "Success: Employee ID 'E001' has been deleted."},
		{"delete_order", `{"id":"ord001"}`, "Success: Order ID 'ord001' has been deleted."},
		{"delete_invoice", `{"id":"inv001"}`, "Success: Invoice ID 'inv001' has been deleted."},
	}

	st := newFakeStore()
	ts := NewToolset(st, &fakeBroadcaster{})
	for _, tc := range cases {
		if result := dispatch(t, ts, tc.tool, tc.args); result != tc.want {
			t.Errorf("Expected %q, got %q", tc.want, result)
		}
	}
	if st.deletes != len(cases) {
		t.Errorf("Expected %d deletes, got %d", len(cases), st.deletes)
	}
}

func TestUpdateEmployeeUsesCode(t *testing.T) {
	st := newFakeStore()
	ts := NewToolset(st, &fakeBroadcaster{})

	result := dispatch(t, ts, "update_employee", `{"employee_id_custom":"E001","position":"Manager"}`)

	if result != "Success: Employee ID 'E001' updated." {
		t.Errorf("Expected success string, got %q", result)
	}
	if st.updates != 1 {
		t.Errorf("Expected 1 update, got %d", st.updates)
	}
}
