package menu

import (
	"fmt"
	"io"
	"strconv"

	"github.com/abgdnv/inventory/internal/inventory/service"
	"github.com/olekukonko/tablewriter"
)

var productHeader = []string{"ID", "Nome", "Quantidade", "Preço", "Validade"}

// RenderProducts writes products as a table. An empty list prints a notice instead.
func RenderProducts(w io.Writer, products []service.ProductDto, color bool) {
	if len(products) == 0 {
		_, _ = fmt.Fprintln(w, "Nenhum produto encontrado.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader(productHeader)
	if color {
		table.SetHeaderColor(
			tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
			tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiYellowColor},
			tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiGreenColor},
			tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiMagentaColor},
			tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiBlueColor},
		)
	}
	for _, p := range products {
		table.Append([]string{
			strconv.Itoa(p.ID),
			p.Name,
			strconv.Itoa(p.Quantity),
			"R$ " + p.Price.StringFixed(2),
			p.ExpiryText(),
		})
	}
	table.Render()
}

// RenderValuation writes the inventory summary as a two-column table.
func RenderValuation(w io.Writer, v service.ValuationDto) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Resumo", "Valor"})
	table.Append([]string{"Produtos", strconv.Itoa(v.Products)})
	table.Append([]string{"Unidades", strconv.Itoa(v.Units)})
	table.Append([]string{"Valor total", "R$ " + v.Value.StringFixed(2)})
	table.Render()
}
