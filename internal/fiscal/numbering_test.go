package fiscal_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/fiscal"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/apperror"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/database"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/testutil/dbtest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextProgressiveNumber(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.TruncateAll(t, db)

	numberer := fiscal.NewNumberer(db)
	tx := database.NewTransactor(db)
	ctx := context.Background()
	eventID := uuid.New()

	_, err := numberer.NextProgressiveNumber(ctx, eventID)
	assert.Equal(t, apperror.KindNumberingFailure, apperror.KindOf(err))

	last, err := numberer.LastProgressiveNumber(ctx, eventID)
	require.NoError(t, err)
	assert.Zero(t, last)

	t.Run("rollback returns the number", func(t *testing.T) {
		err := tx.WithTx(ctx, func(ctx context.Context) error {
			n, err := numberer.NextProgressiveNumber(ctx, eventID)
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)
			return errors.New("abort")
		})
		require.Error(t, err)

		last, err := numberer.LastProgressiveNumber(ctx, eventID)
		require.NoError(t, err)
		assert.Zero(t, last)
	})

	t.Run("concurrent allocation is gapless", func(t *testing.T) {
		const workers = 20
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			numbers []int64
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := tx.WithTx(ctx, func(ctx context.Context) error {
					n, err := numberer.NextProgressiveNumber(ctx, eventID)
					if err != nil {
						return err
					}
					mu.Lock()
					numbers = append(numbers, n)
					mu.Unlock()
					return nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
		require.Len(t, numbers, workers)
		for i, n := range numbers {
			assert.Equal(t, int64(i+1), n)
		}

		last, err := numberer.LastProgressiveNumber(ctx, eventID)
		require.NoError(t, err)
		assert.Equal(t, int64(workers), last)
	})

	t.Run("counters are per event", func(t *testing.T) {
		other := uuid.New()
		err := tx.WithTx(ctx, func(ctx context.Context) error {
			n, err := numberer.NextProgressiveNumber(ctx, other)
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)
			return nil
		})
		require.NoError(t, err)
	})
}
