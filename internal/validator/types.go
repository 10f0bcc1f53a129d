package validator

// InvoiceExtract is the typed, null-permissive form of an LLM extraction.
// Every field is nullable except the boolean flags, which the BIR schema
// requires to be exactly true or false.
type InvoiceExtract struct {
	InvoiceNumber       *string  `json:"invoice_number"`
	InvoiceDate         *string  `json:"invoice_date"`
	SerialNumber        *string  `json:"serial_number"`
	VendorName          *string  `json:"vendor_name"`
	VendorAddress       *string  `json:"vendor_address"`
	VendorTIN           *string  `json:"vendor_tin"`
	CustomerName        *string  `json:"customer_name"`
	CustomerAddress     *string  `json:"customer_address"`
	CustomerTIN         *string  `json:"customer_tin"`
	Subtotal            *float64 `json:"subtotal"`
	VatableSales        *float64 `json:"vatable_sales"`
	VATAmount           *float64 `json:"vat_amount"`
	VATExemptSales      *float64 `json:"vat_exempt_sales"`
	ZeroRatedSales      *float64 `json:"zero_rated_sales"`
	TotalAmount         *float64 `json:"total_amount"`
	Currency            *string  `json:"currency"`
	VATStatus           *string  `json:"vat_status"`
	VATClassification   *string  `json:"vat_classification"`
	ExemptMarked        bool     `json:"exempt_marked"`
	SignaturePresent    bool     `json:"signature_present"`
	BIRATP              bool     `json:"bir_atp"`
	DocumentControlType *string  `json:"document_control_type"`
	ATPOCNNumber        *string  `json:"atp_ocn_number"`
	PTUACCNNumber       *string  `json:"ptu_accn_number"`

	LineItems []ExtractLineItem `json:"line_items"`
}

// ExtractLineItem is a single extracted invoice line. Extractions name the
// price field either unit_price or unit_cost; Cost resolves whichever is set.
type ExtractLineItem struct {
	Description *string  `json:"description"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price"`
	UnitCost    *float64 `json:"unit_cost"`
	LineTotal   *float64 `json:"line_total"`
}

// Cost returns the unit cost, preferring unit_cost over unit_price.
func (li *ExtractLineItem) Cost() *float64 {
	if li.UnitCost != nil {
		return li.UnitCost
	}
	return li.UnitPrice
}

// Field returns the runtime value of a named top-level field for predicate
// evaluation: string, float64, or bool, and nil when the field is absent.
func (e *InvoiceExtract) Field(name string) any {
	switch name {
	case "invoice_number":
		return strVal(e.InvoiceNumber)
	case "invoice_date":
		return strVal(e.InvoiceDate)
	case "serial_number":
		return strVal(e.SerialNumber)
	case "vendor_name":
		return strVal(e.VendorName)
	case "vendor_address":
		return strVal(e.VendorAddress)
	case "vendor_tin":
		return strVal(e.VendorTIN)
	case "customer_name":
		return strVal(e.CustomerName)
	case "customer_address":
		return strVal(e.CustomerAddress)
	case "customer_tin":
		return strVal(e.CustomerTIN)
	case "subtotal":
		return numVal(e.Subtotal)
	case "vatable_sales":
		return numVal(e.VatableSales)
	case "vat_amount":
		return numVal(e.VATAmount)
	case "vat_exempt_sales":
		return numVal(e.VATExemptSales)
	case "zero_rated_sales":
		return numVal(e.ZeroRatedSales)
	case "total_amount":
		return numVal(e.TotalAmount)
	case "currency":
		return strVal(e.Currency)
	case "vat_status":
		return strVal(e.VATStatus)
	case "vat_classification":
		return strVal(e.VATClassification)
	case "exempt_marked":
		return e.ExemptMarked
	case "signature_present":
		return e.SignaturePresent
	case "bir_atp":
		return e.BIRATP
	case "document_control_type":
		return strVal(e.DocumentControlType)
	case "atp_ocn_number":
		return strVal(e.ATPOCNNumber)
	case "ptu_accn_number":
		return strVal(e.PTUACCNNumber)
	default:
		return nil
	}
}

func strVal(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func numVal(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
