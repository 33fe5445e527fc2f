package model

import (
	"errors"
	"fmt"
	"strings"
)

// FieldKind tags how a mapped field is interacted with on the page.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type FieldKind string

const (
	// FieldKindText fills an input or textarea.
	FieldKindText FieldKind = "text"
	// FieldKindSelect sets an option on a native select element.
	FieldKindSelect FieldKind = "select"
	// FieldKindClick clicks the element (checkboxes, radios, buttons).
	FieldKindClick FieldKind = "click"
	// FieldKindSearchableDropdown drives a search-as-you-type widget
	// (click to open, type into a revealed filter, pick a result).
	FieldKindSearchableDropdown FieldKind = "searchable-dropdown"
)

// Valid returns true if the FieldKind is valid.
func (k FieldKind) Valid() bool {
	return k == FieldKindText || k == FieldKindSelect || k == FieldKindClick ||
		k == FieldKindSearchableDropdown
}

// UnmarshalText implements encoding.TextUnmarshaler for FieldKind.
func (k *FieldKind) UnmarshalText(text []byte) error {
	v := FieldKind(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid field kind: %q", string(text))
	}
	*k = v
	return nil
}

// FieldSpec maps one logical field name to an ordered candidate selector list
// and an interaction kind. Selectors is comma-separated in transport; order is
// the resolution tie-break.
type FieldSpec struct {
	Name      string    `json:"name"`
	Selectors string    `json:"selectors"`
	Kind      FieldKind `json:"kind"`
	// Entity marks values that identify an entity on the host page (payer,
	// tenant). Selecting one triggers dependent-field population, so the
	// dropdown handler applies an extra settle delay after picking it.
	Entity bool `json:"entity,omitempty"`
}

// Candidates returns the ordered candidate selector list.
func (f FieldSpec) Candidates() []string {
	parts := strings.Split(f.Selectors, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate validates the FieldSpec.
func (f FieldSpec) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return errors.New("field name is required")
	}
	if len(f.Candidates()) == 0 {
		return fmt.Errorf("field %s: at least one selector is required", f.Name)
	}
	if !f.Kind.Valid() {
		return fmt.Errorf("field %s: invalid kind %q", f.Name, f.Kind)
	}
	return nil
}

// FieldMapping is the ordered list of field specs for one target form.
// Order matters: fields are filled in declaration order.
type FieldMapping []FieldSpec

// DefaultReceiptMapping is the built-in mapping for the AppFolio tenant
// receipts form, ordered so Amount is filled right after TenantName.
// Selector lists reflect the inspected DOM of that form.
func DefaultReceiptMapping() FieldMapping {
	return FieldMapping{
		{Name: "TenantName", Selectors: "#s2id_autogen3, .select2-focusser, .js-payer input[type='text']", Kind: FieldKindSearchableDropdown, Entity: true},
		{Name: "Amount", Selectors: "#receivable_payment_amount", Kind: FieldKindText},
		{Name: "ReceiptDate", Selectors: "#receivable_payment_occurred_on", Kind: FieldKindText},
		{Name: "Remarks", Selectors: "#receivable_payment_remarks", Kind: FieldKindText},
		{Name: "Reference", Selectors: "#receivable_payment_reference", Kind: FieldKindText},
		{Name: "CashAccount", Selectors: "#s2id_autogen1, .select2-focusser", Kind: FieldKindSearchableDropdown},
		{Name: "PaymentType", Selectors: "#s2id_autogen2, .select2-focusser", Kind: FieldKindSearchableDropdown},
	}
}

// DefaultDemoMapping is the built-in mapping for the httpbin demo form.
func DefaultDemoMapping() FieldMapping {
	return FieldMapping{
		{Name: "ApplicantFirstName", Selectors: "input[name='custname']", Kind: FieldKindText},
		{Name: "ApplicantLastName", Selectors: "input[name='custtel']", Kind: FieldKindText},
		{Name: "Email", Selectors: "input[name='custemail']", Kind: FieldKindText},
	}
}

// DefaultMappingFor picks a built-in mapping based on the target URL, matching
// the selection rule of the original orchestration layer.
func DefaultMappingFor(targetURL string) FieldMapping {
	if strings.Contains(targetURL, "appfolio") || strings.Contains(targetURL, "sairealty") {
		return DefaultReceiptMapping()
	}
	return DefaultDemoMapping()
}
