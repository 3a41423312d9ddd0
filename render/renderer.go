// Package render builds the HTML table fragments the SPA swaps into its
// views, shared by the customer and invoice screens.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"arcollect/model"
	"arcollect/statuses"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatMoney renders a decimal amount as a display currency string. The
// amount is formatted from its fixed-point string so money never passes
// through float64.
func FormatMoney(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	dot := strings.IndexByte(fixed, '.')
	whole, err := strconv.ParseInt(fixed[:dot], 10, 64)
	if err != nil {
		// Beyond int64 range; show ungrouped digits rather than lose cents.
		return sign + "$" + fixed
	}
	return sign + printer.Sprintf("$%d.%s", whole, fixed[dot+1:])
}

// RenderInvoiceTableHTML generates the invoice list fragment. collectorMap
// resolves collector codes to names; pass nil to show raw codes.
func RenderInvoiceTableHTML(invoices []model.Invoice, collectorMap map[string]string, statusMessage string) string {
	var sb strings.Builder

	sb.WriteString(`
    <thead>
        <tr>
            <th class="col-action"></th>
            <th class="col-invoice">Invoice</th>
            <th class="col-customer">Customer</th>
            <th class="col-date">Date</th>
            <th class="col-due">Due</th>
            <th class="col-amount">Amount</th>
            <th class="col-balance">Balance</th>
            <th class="col-status">Status</th>
            <th class="col-collector">Collector</th>
            <th class="col-promise">Promise</th>
        </tr>
    </thead>`)

	sb.WriteString(`<tbody>`)
	if statusMessage != "" {
		sb.WriteString(fmt.Sprintf(`<tr><td colspan="10">%s</td></tr>`, statusMessage))
	} else if len(invoices) == 0 {
		sb.WriteString(`<tr><td colspan="10">No invoices found.</td></tr>`)
	} else {
		for _, inv := range invoices {
			collectorName := inv.CollectorCode
			if collectorMap != nil {
				if name, ok := collectorMap[inv.CollectorCode]; ok {
					collectorName = name
				}
			}
			sb.WriteString(fmt.Sprintf(`<tr data-invoice-number="%s">`, inv.InvoiceNumber))
			sb.WriteString(fmt.Sprintf(`<td class="center col-action"><button class="edit-invoice-btn btn" data-number="%s">Edit</button></td>`, inv.InvoiceNumber))
			sb.WriteString(fmt.Sprintf(`<td class="col-invoice">%s</td>`, inv.InvoiceNumber))
			sb.WriteString(fmt.Sprintf(`<td class="left col-customer">%s</td>`, inv.CustomerName))
			sb.WriteString(fmt.Sprintf(`<td class="center col-date">%s</td>`, inv.InvoiceDate))
			sb.WriteString(fmt.Sprintf(`<td class="center col-due">%s</td>`, inv.DueDate))
			sb.WriteString(fmt.Sprintf(`<td class="right col-amount">%s</td>`, FormatMoney(inv.Amount)))
			sb.WriteString(fmt.Sprintf(`<td class="right col-balance">%s</td>`, FormatMoney(inv.Balance)))
			sb.WriteString(fmt.Sprintf(`<td class="center col-status status-%s">%s</td>`, inv.ColorStatus, statuses.Label(inv.ColorStatus)))
			sb.WriteString(fmt.Sprintf(`<td class="center col-collector">%s</td>`, collectorName))
			sb.WriteString(fmt.Sprintf(`<td class="center col-promise">%s</td>`, inv.PromiseDate))
			sb.WriteString(`</tr>`)
		}
	}
	sb.WriteString(`</tbody>`)

	return sb.String()
}

// RenderCustomerTableHTML generates the customer browse fragment.
func RenderCustomerTableHTML(customers []model.CustomerSummary, collectorMap map[string]string, statusMessage string) string {
	var sb strings.Builder

	sb.WriteString(`
    <thead>
        <tr>
            <th class="col-action"></th>
            <th class="col-code">Code</th>
            <th class="col-name">Name</th>
            <th class="col-status">Status</th>
            <th class="col-collector">Collector</th>
            <th class="col-open">Open Invoices</th>
            <th class="col-overdue">Overdue</th>
            <th class="col-balance">Open Balance</th>
        </tr>
    </thead>`)

	sb.WriteString(`<tbody>`)
	if statusMessage != "" {
		sb.WriteString(fmt.Sprintf(`<tr><td colspan="8">%s</td></tr>`, statusMessage))
	} else if len(customers) == 0 {
		sb.WriteString(`<tr><td colspan="8">No customers found.</td></tr>`)
	} else {
		for _, c := range customers {
			collectorName := c.CollectorCode
			if collectorMap != nil {
				if name, ok := collectorMap[c.CollectorCode]; ok {
					collectorName = name
				}
			}
			sb.WriteString(fmt.Sprintf(`<tr data-customer-code="%s">`, c.CustomerCode))
			sb.WriteString(fmt.Sprintf(`<td class="center col-action"><button class="open-customer-btn btn" data-code="%s">Open</button></td>`, c.CustomerCode))
			sb.WriteString(fmt.Sprintf(`<td class="col-code">%s</td>`, c.CustomerCode))
			sb.WriteString(fmt.Sprintf(`<td class="left col-name">%s</td>`, c.CustomerName))
			sb.WriteString(fmt.Sprintf(`<td class="center col-status status-%s">%s</td>`, c.ColorStatus, statuses.Label(c.ColorStatus)))
			sb.WriteString(fmt.Sprintf(`<td class="center col-collector">%s</td>`, collectorName))
			sb.WriteString(fmt.Sprintf(`<td class="right col-open">%d</td>`, c.OpenInvoices))
			sb.WriteString(fmt.Sprintf(`<td class="right col-overdue">%d</td>`, c.OverdueCount))
			sb.WriteString(fmt.Sprintf(`<td class="right col-balance">%s</td>`, FormatMoney(c.OpenBalance)))
			sb.WriteString(`</tr>`)
		}
	}
	sb.WriteString(`</tbody>`)

	return sb.String()
}
