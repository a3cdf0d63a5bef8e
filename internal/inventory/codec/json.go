// Package codec converts inventory products to and from the backing-file and export formats.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	inverrors "github.com/abgdnv/inventory/internal/inventory/errors"
	"github.com/abgdnv/inventory/internal/inventory/product"
)

// EncodeJSON writes products as a JSON object keyed by the textual product ID.
// Keys are written in the order of the given slice.
func EncodeJSON(w io.Writer, products []product.Product) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range products {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(strconv.Itoa(p.ID))
		if err != nil {
			return err
		}
		value, err := json.Marshal(p.Serialize())
		if err != nil {
			return fmt.Errorf("encoding product %d: %w", p.ID, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err := w.Write(out.Bytes())
	return err
}

// DecodeJSON reads products written by EncodeJSON, preserving the key order of the document.
// Any structural problem is reported as ErrCorruptState.
func DecodeJSON(r io.Reader) ([]product.Product, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, corrupt("reading document start: %v", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, corrupt("expected a JSON object, got %v", tok)
	}

	products := make([]product.Product, 0)
	seen := make(map[int]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, corrupt("reading key: %v", err)
		}
		key, _ := tok.(string)
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, corrupt("key %q is not a product ID", key)
		}

		var data product.Data
		if err := dec.Decode(&data); err != nil {
			return nil, corrupt("decoding product %q: %v", key, err)
		}
		if data.ID != id {
			return nil, corrupt("key %q does not match id_produto %d", key, data.ID)
		}
		if _, dup := seen[id]; dup {
			return nil, corrupt("product %d appears more than once", id)
		}
		seen[id] = struct{}{}

		p, err := product.Deserialize(data)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	if _, err := dec.Token(); err != nil {
		return nil, corrupt("reading document end: %v", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, corrupt("unexpected data after document end")
	}
	return products, nil
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", inverrors.ErrCorruptState, fmt.Sprintf(format, args...))
}
