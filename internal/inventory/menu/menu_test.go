package menu

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abgdnv/inventory/internal/inventory/product"
	"github.com/abgdnv/inventory/internal/inventory/service"
	"github.com/abgdnv/inventory/internal/inventory/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMenu(t *testing.T, input string, seed ...product.Product) (*Menu, *bytes.Buffer, *store.FileStore) {
	t.Helper()
	s, err := store.NewFileStore(filepath.Join(t.TempDir(), "estoque.json"), store.WithClock(func() time.Time {
		return time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, err)
	for _, p := range seed {
		require.NoError(t, s.Add(p))
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	out := &bytes.Buffer{}
	m := New(service.NewService(s, logger), strings.NewReader(input), out, logger)
	return m, out, s
}

func rice() product.Product {
	return product.New(1, "Rice", 10, decimal.RequireFromString("5.00"), nil)
}

func beans() product.Product {
	expiry := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	return product.New(2, "Beans", 3, decimal.RequireFromString("7.50"), &expiry)
}

func Test_Menu_AddAndShow(t *testing.T) {
	// given
	m, out, s := newTestMenu(t, "1\n1\nRice\n10\n5,50\n15/01/2024\n4\n0\n")

	// when
	err := m.Run(context.Background())

	// then
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Produto Rice adicionado com sucesso!")
	assert.Contains(t, out.String(), "R$ 5.50")
	assert.Contains(t, out.String(), "15/01/2024")
	assert.Contains(t, out.String(), "R$ 55.00")
	assert.Contains(t, out.String(), "Encerrando o sistema...")

	got, err := s.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "5.50", got.Price.StringFixed(2))
}

func Test_Menu_InvalidInputIsReprompted(t *testing.T) {
	// given
	m, out, s := newTestMenu(t, "1\nabc\n-1\n2\nBeans\nx\n3\n7.5\n31/02/2024\n\n0\n")

	// when
	err := m.Run(context.Background())

	// then
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out.String(), "Valor inválido. Digite um número inteiro."))
	assert.Contains(t, out.String(), "Data inválida.")
	got, err := s.Get(2)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)
	assert.False(t, got.HasExpiry())
}

func Test_Menu_Update(t *testing.T) {
	testCases := []struct {
		name             string
		input            string
		expectedQuantity int
		expectedPrice    string
	}{
		{name: "blank input keeps values", input: "2\n1\n\n\n0\n", expectedQuantity: 10, expectedPrice: "5.00"},
		{name: "zero quantity is applied", input: "2\n1\n0\n\n0\n", expectedQuantity: 0, expectedPrice: "5.00"},
		{name: "price only", input: "2\n1\n\n6,25\n0\n", expectedQuantity: 10, expectedPrice: "6.25"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			m, out, s := newTestMenu(t, tc.input, rice())

			// when
			err := m.Run(context.Background())

			// then
			require.NoError(t, err)
			assert.Contains(t, out.String(), "Produto Rice atualizado com sucesso!")
			got, err := s.Get(1)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedQuantity, got.Quantity)
			assert.Equal(t, tc.expectedPrice, got.Price.StringFixed(2))
		})
	}
}

func Test_Menu_Messages(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "duplicate add", input: "1\n1\n0\n", expected: "Produto com ID 1 já existe."},
		{name: "update unknown", input: "2\n9\n0\n", expected: "Produto com ID 9 não encontrado."},
		{name: "remove unknown", input: "3\n9\n0\n", expected: "Produto com ID 9 não encontrado."},
		{name: "remove", input: "3\n1\n0\n", expected: "Produto Rice removido com sucesso!"},
		{name: "invalid option", input: "x\n0\n", expected: "Opção inválida, tente novamente."},
		{name: "empty search", input: "5\nsalt\n0\n", expected: "Nenhum produto encontrado."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, out, _ := newTestMenu(t, tc.input, rice())

			require.NoError(t, m.Run(context.Background()))

			assert.Contains(t, out.String(), tc.expected)
		})
	}
}

func Test_Menu_Searches(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		contains    string
		notContains string
	}{
		{name: "term by name", input: "5\nri\n0\n", contains: "Rice", notContains: "Beans"},
		{name: "term by id", input: "5\n2\n0\n", contains: "Beans", notContains: "Rice"},
		{name: "filter min quantity", input: "6\n3\n5\n0\n", contains: "Rice", notContains: "Beans"},
		{name: "filter max price", input: "6\n4\n6\n0\n", contains: "Rice", notContains: "Beans"},
		{name: "filter min expiry", input: "6\n5\n\n01/01/2024\n0\n", contains: "Beans", notContains: "Rice"},
		{name: "upcoming default window", input: "8\n\n0\n", contains: "Beans", notContains: "Rice"},
		{name: "upcoming zero days", input: "8\n0\n0\n", contains: "Nenhum produto encontrado.", notContains: "Beans"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			m, out, _ := newTestMenu(t, tc.input, rice(), beans())

			// when
			err := m.Run(context.Background())

			// then
			require.NoError(t, err)
			assert.Contains(t, out.String(), tc.contains)
			assert.NotContains(t, out.String(), tc.notContains)
		})
	}
}

func Test_Menu_ListByExpiry(t *testing.T) {
	m, out, _ := newTestMenu(t, "7\n0\n", rice(), beans())

	require.NoError(t, m.Run(context.Background()))

	text := out.String()
	assert.Less(t, strings.Index(text, "Beans"), strings.Index(text, "Rice"), "products without expiry come last")
}

func Test_Menu_Export(t *testing.T) {
	// given
	path := filepath.Join(t.TempDir(), "out.csv")
	m, out, _ := newTestMenu(t, "9\n"+path+"\n0\n", rice())

	// when
	err := m.Run(context.Background())

	// then
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Estoque exportado para "+path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ID Produto,Nome,Quantidade,Preço,Validade\n1,Rice,10,5.00,\n", string(data))
}

func Test_Menu_EndOfInput(t *testing.T) {
	m, _, _ := newTestMenu(t, "1\n5\nRice\n")

	assert.NoError(t, m.Run(context.Background()))
}

func Test_Menu_ContextCancelled(t *testing.T) {
	// given
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := store.NewFileStore(filepath.Join(t.TempDir(), "estoque.json"))
	require.NoError(t, err)
	m := New(service.NewService(s, logger), pr, io.Discard, logger)
	ctx, cancel := context.WithCancel(context.Background())

	// when
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()
	cancel()

	// then
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("menu did not stop after cancellation")
	}
}

func Test_RenderProducts(t *testing.T) {
	testCases := []struct {
		name     string
		products []service.ProductDto
		color    bool
		expected []string
	}{
		{
			name:     "empty",
			expected: []string{"Nenhum produto encontrado."},
		},
		{
			name: "plain table",
			products: []service.ProductDto{
				{ID: 1, Name: "Rice", Quantity: 10, Price: decimal.RequireFromString("5")},
			},
			expected: []string{"ID", "Nome", "Quantidade", "Preço", "Validade", "Rice", "R$ 5.00"},
		},
		{
			name: "coloured header",
			products: []service.ProductDto{
				{ID: 1, Name: "Rice", Quantity: 10, Price: decimal.RequireFromString("5")},
			},
			color:    true,
			expected: []string{"\x1b[", "Rice"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer

			RenderProducts(&buf, tc.products, tc.color)

			for _, e := range tc.expected {
				assert.Contains(t, buf.String(), e)
			}
		})
	}
}

func Test_RenderValuation(t *testing.T) {
	var buf bytes.Buffer

	RenderValuation(&buf, service.ValuationDto{Products: 2, Units: 13, Value: decimal.RequireFromString("72.5")})

	assert.Contains(t, buf.String(), "Unidades")
	assert.Contains(t, buf.String(), "13")
	assert.Contains(t, buf.String(), "R$ 72.50")
}
