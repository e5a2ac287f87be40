//go:build integration

package integration

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tdhoang/teahouse/internal/domain/order"
	"github.com/tdhoang/teahouse/internal/storage/postgres"
)

var pool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "teahouse",
				"POSTGRES_PASSWORD": "teahouse",
				"POSTGRES_DB":       "teahouse",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("start postgres container: %v", err)
	}

	host, err := ctr.Host(ctx)
	if err != nil {
		log.Fatalf("container host: %v", err)
	}
	port, err := ctr.MappedPort(ctx, "5432")
	if err != nil {
		log.Fatalf("container port: %v", err)
	}

	url := fmt.Sprintf("postgres://teahouse:teahouse@%s:%s/teahouse", host, port.Port())
	pool, err = postgres.NewPool(ctx, url)
	if err != nil {
		log.Fatalf("create pool: %v", err)
	}
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	code := m.Run()

	pool.Close()
	_ = ctr.Terminate(ctx)
	os.Exit(code)
}

func newTestOrder(id string, minutesAgo int) *order.Order {
	li := order.LineItem{
		ID:        id + "-line-1",
		MenuID:    "tra-chanh",
		Name:      "Trà Chanh",
		BasePrice: decimal.NewFromInt(25000),
		Quantity:  2,
		Custom:    &order.Customization{Sugar: 50, Ice: 50, Aloe: true},
	}
	li.Reprice()
	return &order.Order{
		ID:          id,
		Items:       []order.LineItem{li},
		TotalAmount: li.Total,
		OrderTime:   time.Now().UTC().Add(-time.Duration(minutesAgo) * time.Minute),
		Status:      order.StatusNew,
	}
}

func TestOrderRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewOrderRepository(pool)

	o := newTestOrder("it-crud", 0)
	require.NoError(t, repo.Create(ctx, o))
	t.Cleanup(func() { _ = repo.Delete(context.Background(), o.ID) })

	got, err := repo.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, order.StatusNew, got.Status)
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(60000)))
	require.Len(t, got.Items, 1)
	require.NotNil(t, got.Items[0].Custom)
	assert.True(t, got.Items[0].Custom.Aloe)

	require.NoError(t, repo.UpdateStatus(ctx, o.ID, order.StatusProcessing))
	got, err = repo.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusProcessing, got.Status)

	newItems := []order.LineItem{{
		ID:        "it-crud-line-2",
		MenuID:    "tra-da",
		Name:      "Trà Đá",
		BasePrice: decimal.NewFromInt(15000),
		Quantity:  1,
	}}
	newItems[0].Reprice()
	require.NoError(t, repo.UpdateItems(ctx, o.ID, newItems, newItems[0].Total))

	got, err = repo.Get(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "tra-da", got.Items[0].MenuID)
	assert.Nil(t, got.Items[0].Custom, "plain item carries no customization")
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(15000)))

	require.NoError(t, repo.Delete(ctx, o.ID))
	_, err = repo.Get(ctx, o.ID)
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestOrderRepositoryNotFound(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewOrderRepository(pool)

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, order.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, "missing", order.StatusProcessing), order.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "missing"), order.ErrNotFound)
}

func TestOrderRepositoryListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewOrderRepository(pool)

	older := newTestOrder("it-list-older", 10)
	newer := newTestOrder("it-list-newer", 1)
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	t.Cleanup(func() {
		_ = repo.Delete(context.Background(), older.ID)
		_ = repo.Delete(context.Background(), newer.ID)
	})

	orders, err := repo.List(ctx)
	require.NoError(t, err)

	var ids []string
	for _, o := range orders {
		if o.ID == older.ID || o.ID == newer.ID {
			ids = append(ids, o.ID)
		}
	}
	require.Equal(t, []string{newer.ID, older.ID}, ids, "orders are listed newest first")
}

func TestOrderRepositorySubscribe(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	repo := postgres.NewOrderRepository(pool)

	snapshots := make(chan []order.Order, 16)
	stop, err := repo.Subscribe(ctx,
		func(orders []order.Order) { snapshots <- orders },
		func(err error) { t.Errorf("feed error: %v", err) },
	)
	require.NoError(t, err)
	defer stop()

	// Initial snapshot arrives without any change.
	select {
	case <-snapshots:
	case <-time.After(10 * time.Second):
		t.Fatal("no initial snapshot")
	}

	o := newTestOrder("it-subscribe", 0)
	require.NoError(t, repo.Create(ctx, o))
	t.Cleanup(func() { _ = repo.Delete(context.Background(), o.ID) })

	deadline := time.After(10 * time.Second)
	for {
		select {
		case orders := <-snapshots:
			for _, got := range orders {
				if got.ID == o.ID {
					return
				}
			}
		case <-deadline:
			t.Fatal("change notification never delivered the new order")
		}
	}
}
