package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seed = `{
  "1": {"id_produto": 1, "nome": "Rice", "quantidade": 10, "preco": 5.0},
  "2": {"id_produto": 2, "nome": "Beans", "quantidade": 3, "preco": 7.5, "validade": "15/01/2099"}
}`

// runApp runs the command line in a fresh working directory holding a seeded inventory.
func runApp(t *testing.T, input string, args ...string) (string, string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("INVENTORY_UI_COLOR", "false")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "estoque.json"), []byte(seed), 0o644))

	var out, errOut bytes.Buffer
	err := newApp(strings.NewReader(input), &out, &errOut).Run(append([]string{"inventory"}, args...))
	return out.String(), errOut.String(), err
}

func Test_App_Commands(t *testing.T) {
	testCases := []struct {
		name        string
		args        []string
		contains    []string
		notContains []string
	}{
		{name: "list", args: []string{"list"}, contains: []string{"Rice", "Beans", "R$ 72.50"}},
		{name: "search", args: []string{"search", "ri"}, contains: []string{"Rice"}, notContains: []string{"Beans"}},
		{name: "expiring default window", args: []string{"expiring"}, contains: []string{"Nenhum produto encontrado."}},
		{name: "expiring wide window", args: []string{"expiring", "--days", "100000"}, contains: []string{"Beans"}, notContains: []string{"Rice"}},
		{name: "report", args: []string{"report", "--threshold", "3"}, contains: []string{"quantidade <= 3", "Beans", "Unidades"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			out, _, err := runApp(t, "", tc.args...)

			// then
			require.NoError(t, err)
			for _, c := range tc.contains {
				assert.Contains(t, out, c)
			}
			for _, c := range tc.notContains {
				assert.NotContains(t, out, c)
			}
		})
	}
}

func Test_App_Export(t *testing.T) {
	// when
	out, _, err := runApp(t, "", "export", "--out", "report.csv")

	// then
	require.NoError(t, err)
	assert.Contains(t, out, "Estoque exportado para report.csv.")
	data, err := os.ReadFile("report.csv")
	require.NoError(t, err)
	assert.Equal(t, "ID Produto,Nome,Quantidade,Preço,Validade\n1,Rice,10,5.00,\n2,Beans,3,7.50,15/01/2099\n", string(data))
}

func Test_App_SearchRequiresTerm(t *testing.T) {
	_, _, err := runApp(t, "", "search")

	assert.EqualError(t, err, "search term is required")
}

func Test_App_Interactive(t *testing.T) {
	// given a session that removes a product and exits
	out, _, err := runApp(t, "3\n2\n0\n")

	// then
	require.NoError(t, err)
	assert.Contains(t, out, "Produto Beans removido com sucesso!")
	data, err := os.ReadFile("estoque.json")
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Beans")
}

func Test_App_FileFlag(t *testing.T) {
	// given
	other := filepath.Join(t.TempDir(), "other.json")

	// when
	_, _, err := runApp(t, "1\n7\nSalt\n1\n1,99\n\n0\n", "--file", other)

	// then
	require.NoError(t, err)
	data, err := os.ReadFile(other)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Salt")
}

func Test_App_CorruptInventory(t *testing.T) {
	// given
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	// when
	out, errOut, err := runApp(t, "", "--file", path, "list")

	// then
	assert.Error(t, err)
	assert.NotContains(t, out, "run_id", "log records go to the error writer only")
	assert.Contains(t, errOut, "Error opening inventory")
	assert.Contains(t, errOut, "run_id")
}
