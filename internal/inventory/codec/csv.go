package codec

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/abgdnv/inventory/internal/inventory/product"
)

// CSVHeader is the header row of the CSV export.
var CSVHeader = []string{"ID Produto", "Nome", "Quantidade", "Preço", "Validade"}

// EncodeCSV writes the header row followed by one row per product, in slice order.
func EncodeCSV(w io.Writer, products []product.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, p := range products {
		row := []string{
			strconv.Itoa(p.ID),
			p.Name,
			strconv.Itoa(p.Quantity),
			p.Price.StringFixed(2),
			p.ExpiryText(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
