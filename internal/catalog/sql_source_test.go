package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dropedev/MeuAssistente/internal/domain"
)

func seededData(t *testing.T) *Data {
	t.Helper()
	data := sampleData()
	d, err := ParseDate("2024-03-01")
	require.NoError(t, err)
	data.Orders[0].DataCompra = d
	data.Orders[0].Produtos[0].Quantidade = 2
	return data
}

func assertRoundTrip(t *testing.T, want, got *Data) {
	t.Helper()
	require.Len(t, got.Products, len(want.Products))
	assert.Equal(t, ids(want.Products), ids(got.Products))
	assert.Equal(t, 16000.0, got.Products[0].Especificacoes["dpi"])
	assert.False(t, got.Products[3].Disponivel)
	assert.True(t, got.Products[2].Disponivel)

	assert.Equal(t, orderIDs(want.Orders), orderIDs(got.Orders))
	assert.Equal(t, "2024-03-01", got.Orders[0].DataCompra.String())
	assert.Equal(t, []string{"Tênis de Corrida", "Tênis Casual"}, got.Orders[0].ProductNames())
	assert.Equal(t, 2, got.Orders[0].Produtos[0].Quantidade)
	assert.Equal(t, want.Policies, got.Policies)
}

func TestSQLite_ImportAndLoad(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, "sqlite", filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer db.Close()

	want := seededData(t)
	require.NoError(t, Import(ctx, db, want))

	got, err := LoadFromSQL(ctx, db)
	require.NoError(t, err)
	assertRoundTrip(t, want, got)
}

func TestSQLite_ImportRejectsInvalidData(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, "sqlite", filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer db.Close()

	err = Import(ctx, db, &Data{Products: []Product{{ID: "P1", Preco: -5}}})
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeValidation))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mongo", "x")
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeConfig))
}

func TestPostgres_ImportAndLoad(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("catalog_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(ctx, "postgres", dsn)
	require.NoError(t, err)
	defer db.Close()

	want := seededData(t)
	require.NoError(t, Import(ctx, db, want))

	got, err := LoadFromSQL(ctx, db)
	require.NoError(t, err)
	assertRoundTrip(t, want, got)
}
