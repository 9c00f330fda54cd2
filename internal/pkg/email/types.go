// internal/pkg/email/types.go
package email

// Message represents an email message
type Message struct {
	To          []string
	Subject     string
	HTMLContent string

	// Optional single attachment
	AttachmentName  string
	AttachmentBytes []byte
}

// TemplateData contains common data for all email templates
type TemplateData struct {
	SiteName  string
	UserName  string
	UserEmail string
	Year      int
}

// OrderLine is one purchased line rendered in order emails
type OrderLine struct {
	Name     string
	SKU      string
	Size     string
	Color    string
	Quantity int
	Price    string
	Total    string
}

// OrderEmailData contains data for order confirmation and operator emails
type OrderEmailData struct {
	TemplateData
	OrderNumber   string
	OrderDate     string
	Status        string
	PaymentMethod string
	Subtotal      string
	DeliveryFee   string
	Total         string
	Lines         []OrderLine
	ShippingName  string
	ShippingLines []string
}

// InvoiceEmailData contains data for the invoice email
type InvoiceEmailData struct {
	TemplateData
	OrderNumber   string
	InvoiceNumber string
	Total         string
}
