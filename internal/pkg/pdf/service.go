// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/config"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/order"
)

// Renderer generates invoice documents with wkhtmltopdf. It implements
// order.DocumentRenderer.
type Renderer struct {
	config *config.Config
}

// NewRenderer creates a new PDF renderer
func NewRenderer(cfg *config.Config) *Renderer {
	return &Renderer{
		config: cfg,
	}
}

// RenderInvoice renders a PDF invoice for an order
func (r *Renderer) RenderInvoice(o *order.Order, inv *order.Invoice) ([]byte, error) {
	data := r.invoiceData(o, inv)

	htmlContent, err := r.generateHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	// PDF options
	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return pdfg.Bytes(), nil
}

// generateHTML generates HTML content from the invoice template
func (r *Renderer) generateHTML(data InvoiceData) (string, error) {
	tmpl := template.Must(template.New("invoice").Parse(invoiceTemplate))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

func (r *Renderer) invoiceData(o *order.Order, inv *order.Invoice) InvoiceData {
	lines := make([]InvoiceLine, 0, len(o.Items))
	for _, item := range o.Items {
		variant := ""
		switch {
		case item.SelectedSize != "" && item.SelectedColor != "":
			variant = fmt.Sprintf("%s / %s", item.SelectedSize, item.SelectedColor)
		case item.SelectedSize != "":
			variant = item.SelectedSize
		case item.SelectedColor != "":
			variant = item.SelectedColor
		}
		lines = append(lines, InvoiceLine{
			Name:     item.ProductName,
			SKU:      item.ProductSKU,
			Variant:  variant,
			Quantity: item.Quantity,
			Price:    formatAmount(item.PricePaid),
			Total:    formatAmount(item.LineTotal()),
		})
	}

	paymentStatus := "pending"
	if o.IsPaid {
		paymentStatus = "paid"
	}

	return InvoiceData{
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceDate:   inv.CreatedAt.Format("January 2, 2006"),
		OrderNumber:   o.OrderNumber,
		OrderDate:     o.CreatedAt.Format("January 2, 2006"),
		OrderStatus:   string(o.Status),
		PaymentStatus: paymentStatus,
		CustomerEmail: o.Email,
		ShipTo:        o.ShippingAddress,
		Lines:         lines,
		Subtotal:      formatAmount(o.SubtotalAmount),
		DeliveryFee:   formatAmount(o.DeliveryFee),
		Total:         formatAmount(o.TotalAmount),
		Company: CompanyInfo{
			Name:    r.config.App.CompanyName,
			Address: r.config.App.CompanyAddress,
			Phone:   r.config.App.CompanyPhone,
			Email:   r.config.App.CompanyEmail,
		},
	}
}

// formatAmount renders an amount in cents as a decimal string
func formatAmount(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100)
}

// InvoiceLine is one order line as shown on the invoice
type InvoiceLine struct {
	Name     string
	SKU      string
	Variant  string
	Quantity int
	Price    string
	Total    string
}

// InvoiceData represents the data passed to the invoice template
type InvoiceData struct {
	InvoiceNumber string
	InvoiceDate   string
	OrderNumber   string
	OrderDate     string
	OrderStatus   string
	PaymentStatus string
	CustomerEmail string
	ShipTo        order.ShippingAddress
	Lines         []InvoiceLine
	Subtotal      string
	DeliveryFee   string
	Total         string
	Company       CompanyInfo
}

// CompanyInfo represents company information printed on the invoice
type CompanyInfo struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

// Invoice HTML template
const invoiceTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Invoice {{.InvoiceNumber}}</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            margin: 0;
            padding: 20px;
            color: #333;
        }
        .header {
            display: flex;
            justify-content: space-between;
            margin-bottom: 30px;
            border-bottom: 2px solid #eee;
            padding-bottom: 20px;
        }
        .company-info {
            flex: 1;
        }
        .invoice-info {
            text-align: right;
            flex: 1;
        }
        .invoice-title {
            font-size: 28px;
            font-weight: bold;
            color: #2563eb;
            margin-bottom: 10px;
        }
        .invoice-details {
            margin-bottom: 30px;
        }
        .invoice-details table {
            width: 100%;
        }
        .invoice-details td {
            padding: 5px 0;
            vertical-align: top;
        }
        .invoice-details .label {
            font-weight: bold;
            width: 150px;
        }
        .shipping-info {
            margin-bottom: 30px;
        }
        .section-title {
            font-size: 16px;
            font-weight: bold;
            margin-bottom: 10px;
            color: #374151;
        }
        .items-table {
            width: 100%;
            border-collapse: collapse;
            margin-bottom: 30px;
        }
        .items-table th,
        .items-table td {
            border: 1px solid #ddd;
            padding: 12px 8px;
            text-align: left;
        }
        .items-table th {
            background-color: #f8f9fa;
            font-weight: bold;
        }
        .items-table .qty-col,
        .items-table .price-col,
        .items-table .total-col {
            text-align: right;
            width: 80px;
        }
        .totals {
            float: right;
            width: 300px;
        }
        .totals table {
            width: 100%;
            border-collapse: collapse;
        }
        .totals td {
            padding: 8px;
            border-bottom: 1px solid #eee;
        }
        .totals .label {
            text-align: right;
            font-weight: bold;
        }
        .totals .amount {
            text-align: right;
            width: 100px;
        }
        .total-row {
            font-size: 18px;
            font-weight: bold;
            border-top: 2px solid #333 !important;
        }
        .footer {
            margin-top: 50px;
            padding-top: 20px;
            border-top: 1px solid #eee;
            text-align: center;
            color: #666;
            font-size: 12px;
        }
        .status-badge {
            display: inline-block;
            padding: 4px 8px;
            border-radius: 4px;
            font-size: 12px;
            font-weight: bold;
            text-transform: uppercase;
        }
        .status-paid {
            background-color: #dcfce7;
            color: #166534;
        }
        .status-pending {
            background-color: #fef3c7;
            color: #92400e;
        }
    </style>
</head>
<body>
    <div class="header">
        <div class="company-info">
            <h1>{{.Company.Name}}</h1>
            <p>{{.Company.Address}}</p>
            <p>Phone: {{.Company.Phone}}</p>
            <p>Email: {{.Company.Email}}</p>
        </div>
        <div class="invoice-info">
            <div class="invoice-title">INVOICE</div>
            <p><strong>Invoice #:</strong> {{.InvoiceNumber}}</p>
            <p><strong>Invoice Date:</strong> {{.InvoiceDate}}</p>
            <p><strong>Order #:</strong> {{.OrderNumber}}</p>
        </div>
    </div>

    <div class="invoice-details">
        <table>
            <tr>
                <td class="label">Order Date:</td>
                <td>{{.OrderDate}}</td>
                <td class="label" style="text-align: right;">Payment Status:</td>
                <td style="text-align: right;">
                    <span class="status-badge {{if eq .PaymentStatus "paid"}}status-paid{{else}}status-pending{{end}}">
                        {{.PaymentStatus}}
                    </span>
                </td>
            </tr>
            <tr>
                <td class="label">Order Status:</td>
                <td>{{.OrderStatus}}</td>
                <td></td>
                <td></td>
            </tr>
        </table>
    </div>

    <div class="shipping-info">
        <div class="section-title">Ship To:</div>
        <p><strong>{{.ShipTo.FirstName}} {{.ShipTo.LastName}}</strong></p>
        <p>{{.ShipTo.Street}}</p>
        <p>{{.ShipTo.City}} {{.ShipTo.PostalCode}}</p>
        <p>{{.ShipTo.Country}}</p>
        {{if .ShipTo.Phone}}<p>Phone: {{.ShipTo.Phone}}</p>{{end}}
        <p>Email: {{.CustomerEmail}}</p>
    </div>

    <table class="items-table">
        <thead>
            <tr>
                <th>Item</th>
                <th>SKU</th>
                <th class="qty-col">Qty</th>
                <th class="price-col">Price</th>
                <th class="total-col">Total</th>
            </tr>
        </thead>
        <tbody>
            {{range .Lines}}
            <tr>
                <td>
                    <strong>{{.Name}}</strong>
                    {{if .Variant}}<br><small>{{.Variant}}</small>{{end}}
                </td>
                <td>{{.SKU}}</td>
                <td class="qty-col">{{.Quantity}}</td>
                <td class="price-col">{{.Price}}</td>
                <td class="total-col">{{.Total}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <div class="totals">
        <table>
            <tr>
                <td class="label">Subtotal:</td>
                <td class="amount">{{.Subtotal}}</td>
            </tr>
            <tr>
                <td class="label">Delivery:</td>
                <td class="amount">{{.DeliveryFee}}</td>
            </tr>
            <tr class="total-row">
                <td class="label">Total:</td>
                <td class="amount">{{.Total}}</td>
            </tr>
        </table>
    </div>

    <div style="clear: both;"></div>

    <div class="footer">
        <p>Thank you for your business!</p>
        <p>If you have any questions about this invoice, please contact us at {{.Company.Email}} or {{.Company.Phone}}</p>
    </div>
</body>
</html>
`
