package main

import (
	"os"
	"path/filepath"
	"testing"

	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/mealbox/internal/domain/auth"
)

func TestParseCatalog_Embedded(t *testing.T) {
	data, err := readCatalog("")
	require.NoError(t, err)

	meals, err := parseCatalog(data)
	require.NoError(t, err)
	require.NotEmpty(t, meals)

	first := meals[0]
	assert.Equal(t, "chicken-bowl", first.ID)
	assert.Equal(t, "provider-green-kitchen", first.ProviderID)
	require.Len(t, first.Portions, 3)
	assert.Equal(t, "small", first.Portions[0].Size)
	assert.True(t, decimal.RequireFromString("8.99").Equal(first.Portions[0].Price))
}

func TestParseCatalog(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:  "numeric price",
			input: `[{"id":"a","providerId":"p","name":"A","portions":[{"size":"s","price":7.5}],"extra":{"x":1}}]`,
		},
		{name: "empty", input: `[]`},
		{name: "no portions", input: `[{"id":"a","name":"A","portions":[]}]`, wantErr: true},
		{name: "no name", input: `[{"id":"a","portions":[{"size":"s","price":"1"}]}]`, wantErr: true},
		{name: "missing id", input: `[{"name":"A","portions":[{"size":"s","price":"1"}]}]`, wantErr: true},
		{name: "zero price", input: `[{"id":"a","name":"A","portions":[{"size":"s","price":"0"}]}]`, wantErr: true},
		{name: "bad price", input: `[{"id":"a","name":"A","portions":[{"size":"s","price":"abc"}]}]`, wantErr: true},
		{name: "bad availability", input: `[{"id":"a","name":"A","available":"no","portions":[{"size":"s","price":"1"}]}]`, wantErr: true},
		{name: "not an array", input: `{"id":"a"}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCatalog([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParseCatalog_Availability(t *testing.T) {
	meals, err := parseCatalog([]byte(`[
		{"id":"a","name":"A","portions":[{"size":"s","price":"1"}]},
		{"id":"b","name":"B","availability":false,"portions":[{"size":"s","price":"1"}]}
	]`))
	require.NoError(t, err)
	require.Len(t, meals, 2)
	assert.True(t, meals[0].Available)
	assert.False(t, meals[1].Available)
}

func TestReadCatalog_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meals.json.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := pgzip.NewWriter(f)
	_, err = gz.Write([]byte(`[{"id":"a","name":"A","portions":[{"size":"s","price":"2.25"}]}]`))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	data, err := readCatalog(path)
	require.NoError(t, err)
	meals, err := parseCatalog(data)
	require.NoError(t, err)
	require.Len(t, meals, 1)
	assert.True(t, decimal.RequireFromString("2.25").Equal(meals[0].Portions[0].Price))
}

func TestReadCatalog_Missing(t *testing.T) {
	_, err := readCatalog(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestDevToken(t *testing.T) {
	token, err := devToken("secret", "prov-1", "provider")
	require.NoError(t, err)

	p, err := auth.NewTokenVerifier([]byte("secret")).Verify(token)
	require.NoError(t, err)
	assert.Equal(t, auth.Principal{UserID: "prov-1", Role: auth.RoleProvider}, p)

	_, err = devToken("", "u", "customer")
	require.Error(t, err)
	_, err = devToken("secret", "u", "admin")
	require.Error(t, err)
}
