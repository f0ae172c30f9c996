package domain

import (
	"fmt"
	"strings"

	"github.com/smallbiznis/invoicekit/internal/contact"
	partydomain "github.com/smallbiznis/invoicekit/internal/party/domain"
)

// Validate checks the required fields of an invoice form and every line
// item. All failures are reported, in form order.
func (r SaveInvoiceRequest) Validate() error {
	var errs ValidationErrors
	required := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, &FieldError{Field: field, Err: ErrRequired})
		}
	}

	date := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, &FieldError{Field: field, Err: ErrRequired})
			return
		}
		if _, ok := contact.ParseDate(value); !ok {
			errs = append(errs, &FieldError{Field: field, Err: ErrInvalidDate})
		}
	}

	requireParty(required, "sender", r.Sender)
	required("invoiceNumber", r.InvoiceNumber)
	date("issueDate", r.IssueDate)
	date("dueDate", r.DueDate)
	required("paymentMethod", r.PaymentMethod)
	requireParty(required, "recipient", r.Recipient)

	if _, ok := ParseStatus(string(r.Status)); !ok {
		errs = append(errs, &FieldError{Field: "status", Err: ErrInvalidStatus})
	}

	if len(r.Items) == 0 {
		errs = append(errs, &FieldError{Field: "items", Err: ErrNoItems})
	}
	for i, item := range r.Items {
		prefix := fmt.Sprintf("items[%d]", i)
		required(prefix+".description", item.Description)
		if !item.Quantity.IsPositive() {
			errs = append(errs, &FieldError{Field: prefix + ".quantity", Err: ErrInvalidQuantity})
		}
		if item.UnitPrice.IsNegative() {
			errs = append(errs, &FieldError{Field: prefix + ".price", Err: ErrInvalidPrice})
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func requireParty(required func(field, value string), prefix string, p partydomain.Party) {
	required(prefix+".firstName", p.FirstName)
	required(prefix+".lastName", p.LastName)
	required(prefix+".addressLine1", p.AddressLine1)
	required(prefix+".city", p.City)
	required(prefix+".province", p.Province)
	required(prefix+".country", p.Country)
	required(prefix+".postalCode", p.PostalCode)
	required(prefix+".email", p.Email)
	required(prefix+".phone", p.Phone)
}
