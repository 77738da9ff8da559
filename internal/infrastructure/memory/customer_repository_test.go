package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/customer-api/internal/domain"
	"github.com/jhoicas/customer-api/internal/domain/entity"
	"github.com/jhoicas/customer-api/internal/infrastructure/memory"
)

func TestSave_InsertaConIDYTimestamps(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 0, 0, 123456789, time.UTC)
	repo := memory.NewCustomerRepository().WithClock(func() time.Time { return now })

	saved, err := repo.Save(context.Background(), &entity.Customer{Name: "Alice", Email: "alice@x.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, now.Truncate(time.Microsecond), saved.CreatedAt)
	assert.Equal(t, saved.CreatedAt, saved.UpdatedAt)
}

func TestSave_SobrescribeSinTocarCreatedAt(t *testing.T) {
	repo := memory.NewCustomerRepository()
	ctx := context.Background()
	saved, err := repo.Save(ctx, &entity.Customer{Name: "Alice", Email: "alice@x.com"})
	require.NoError(t, err)

	updated, err := repo.Save(ctx, &entity.Customer{
		ID: saved.ID, Name: "Alicia", Email: "alicia@x.com",
		CreatedAt: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)
	assert.Equal(t, "Alicia", updated.Name)
	assert.Equal(t, saved.CreatedAt, updated.CreatedAt)
	assert.Equal(t, saved.UpdatedAt, updated.UpdatedAt)

	// El email anterior queda libre.
	_, err = repo.Save(ctx, &entity.Customer{Name: "Otra", Email: "alice@x.com"})
	assert.NoError(t, err)
}

func TestSave_MismoEmailEnLaMismaFilaNoEsConflicto(t *testing.T) {
	repo := memory.NewCustomerRepository()
	ctx := context.Background()
	saved, err := repo.Save(ctx, &entity.Customer{Name: "Alice", Email: "alice@x.com"})
	require.NoError(t, err)

	_, err = repo.Save(ctx, &entity.Customer{ID: saved.ID, Name: "Alice B", Email: "alice@x.com"})
	assert.NoError(t, err)
}

func TestSave_ConflictoDeEmail(t *testing.T) {
	repo := memory.NewCustomerRepository()
	ctx := context.Background()
	_, err := repo.Save(ctx, &entity.Customer{Name: "Alice", Email: "alice@x.com"})
	require.NoError(t, err)
	bob, err := repo.Save(ctx, &entity.Customer{Name: "Bob", Email: "bob@x.com"})
	require.NoError(t, err)

	_, err = repo.Save(ctx, &entity.Customer{Name: "Carol", Email: "alice@x.com"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = repo.Save(ctx, &entity.Customer{ID: bob.ID, Name: "Bob", Email: "alice@x.com"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestSave_ActualizarInexistenteEsNotFound(t *testing.T) {
	repo := memory.NewCustomerRepository()

	_, err := repo.Save(context.Background(), &entity.Customer{ID: "8f14e45f-ceea-4e67-a1b0-5b6d1f3d0a11", Name: "A", Email: "a@x.com"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFindByID_Ausente(t *testing.T) {
	repo := memory.NewCustomerRepository()

	got, err := repo.FindByID(context.Background(), "8f14e45f-ceea-4e67-a1b0-5b6d1f3d0a11")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindByID_DevuelveCopia(t *testing.T) {
	repo := memory.NewCustomerRepository()
	ctx := context.Background()
	saved, err := repo.Save(ctx, &entity.Customer{Name: "Alice", Email: "alice@x.com"})
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	got.Name = "mutado"

	again, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", again.Name)
}

func TestDeleteByID(t *testing.T) {
	repo := memory.NewCustomerRepository()
	ctx := context.Background()
	saved, err := repo.Save(ctx, &entity.Customer{Name: "Alice", Email: "alice@x.com"})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByID(ctx, saved.ID))
	assert.ErrorIs(t, repo.DeleteByID(ctx, saved.ID), domain.ErrNotFound)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSave_ConcurrenteMismoEmail_SoloUnoGana(t *testing.T) {
	repo := memory.NewCustomerRepository()
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Save(ctx, &entity.Customer{Name: fmt.Sprintf("c%d", i), Email: "same@x.com"})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrConflict)
	}
	assert.Equal(t, 1, ok)
}

func TestContextoCancelado(t *testing.T) {
	repo := memory.NewCustomerRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.FindAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = repo.Save(ctx, &entity.Customer{Name: "A", Email: "a@x.com"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, repo.Ping(ctx), context.Canceled)
}
