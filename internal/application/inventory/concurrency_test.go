package inventory_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-tienda/internal/application/inventory"
	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
	"github.com/jhoicas/inventario-tienda/internal/infrastructure/memory"
)

// Con entradas, salidas y traslados concurrentes, la suma final es inicial + entradas - salidas,
// ninguna existencia queda negativa y el historial reproduce cada existencia.
func TestConcurrencia_ConservaUnidades(t *testing.T) {
	s := newTestStore(t)
	e := newEngine(s)
	ctx := context.Background()
	locations := []string{locAnexo, locBodega, locPiso}
	for _, loc := range locations {
		mustApply(t, e, entry(pCamisa, loc, 100))
	}

	const workers, ops = 8, 60
	var entered, exited atomic.Int64
	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			rng := rand.New(rand.NewPCG(seed, seed+1))
			for range ops {
				qty := int64(rng.IntN(5) + 1)
				a := locations[rng.IntN(len(locations))]
				var err error
				switch rng.IntN(3) {
				case 0:
					_, err = e.Apply(ctx, inventory.MovementInput{ProductID: pCamisa, Quantity: qty, Kind: entity.MovementKindEntry, DestinationID: a})
					if err == nil {
						entered.Add(qty)
					}
				case 1:
					_, err = e.Apply(ctx, inventory.MovementInput{ProductID: pCamisa, Quantity: qty, Kind: entity.MovementKindExit, SourceID: a})
					if err == nil {
						exited.Add(qty)
					}
				default:
					b := locations[rng.IntN(len(locations))]
					if a == b {
						continue
					}
					_, _, err = e.Transfer(ctx, inventory.TransferInput{ProductID: pCamisa, Quantity: qty, SourceID: a, DestinationID: b})
				}
				if err != nil && !errors.Is(err, domain.ErrInsufficientStock) {
					t.Errorf("error inesperado: %v", err)
				}
			}
		}(uint64(w))
	}
	wg.Wait()

	var total int64
	for _, loc := range locations {
		q := stockOf(t, s, pCamisa, loc)
		assert.GreaterOrEqual(t, q, int64(0))
		total += q
	}
	assert.Equal(t, 300+entered.Load()-exited.Load(), total)

	// Reproducir el historial en orden ascendente.
	movs := collect(t, newQueries(s, nil).MovementHistory(ctx, repository.MovementFilter{ProductID: pCamisa}, 50))
	replay := make(map[string]int64)
	for i := len(movs) - 1; i >= 0; i-- {
		m := movs[i]
		switch m.Kind {
		case entity.MovementKindEntry:
			replay[m.DestinationID] += m.Quantity
		case entity.MovementKindExit:
			replay[m.SourceID] -= m.Quantity
		case entity.MovementKindAdjustment:
			replay[m.DestinationID] = m.Quantity
		}
	}
	for _, loc := range locations {
		assert.Equal(t, stockOf(t, s, pCamisa, loc), replay[loc], loc)
	}
}

func TestConcurrencia_TrasladosOpuestosNoSeBloquean(t *testing.T) {
	s := newTestStore(t, memory.WithLockTimeout(2*time.Second))
	e := newEngine(s)
	ctx := context.Background()
	mustApply(t, e, entry(pGorra, locBodega, 500))
	mustApply(t, e, entry(pGorra, locPiso, 500))

	var wg sync.WaitGroup
	errs := make(chan error, 200)
	for i := range 100 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := inventory.TransferInput{ProductID: pGorra, Quantity: 1, SourceID: locBodega, DestinationID: locPiso}
			if i%2 == 1 {
				in.SourceID, in.DestinationID = in.DestinationID, in.SourceID
			}
			_, _, err := e.Transfer(ctx, in)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err, "traslados opuestos no deben agotar la espera")
	}
	assert.Equal(t, int64(500), stockOf(t, s, pGorra, locBodega))
	assert.Equal(t, int64(500), stockOf(t, s, pGorra, locPiso))
}

func TestConcurrencia_BloqueoOcupadoDevuelveErrBusy(t *testing.T) {
	s := newTestStore(t, memory.WithLockTimeout(50*time.Millisecond))
	e := newEngine(s)
	ctx := context.Background()
	mustApply(t, e, entry(pCamisa, locPiso, 10))

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func(stock repository.StockRepository, _ repository.InventoryMovementRepository, _ repository.TransferRepository) error {
			if _, err := stock.GetForUpdate(ctx, pCamisa, locPiso); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	_, err := e.Apply(ctx, exit(pCamisa, locPiso, 1))
	assert.ErrorIs(t, err, domain.ErrBusy)
	assert.True(t, domain.IsRetryable(err))

	close(release)
	require.NoError(t, <-done)

	// Liberado el bloqueo, el reintento funciona.
	res := mustApply(t, e, exit(pCamisa, locPiso, 1))
	assert.Equal(t, int64(9), res.Stock.Quantity)
}

func TestConcurrencia_ContextoCanceladoMientrasEspera(t *testing.T) {
	s := newTestStore(t, memory.WithLockTimeout(5*time.Second))
	e := newEngine(s)
	mustApply(t, e, entry(pCamisa, locPiso, 10))

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.Run(context.Background(), func(stock repository.StockRepository, _ repository.InventoryMovementRepository, _ repository.TransferRepository) error {
			if _, err := stock.GetForUpdate(context.Background(), pCamisa, locPiso); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := e.Apply(ctx, exit(pCamisa, locPiso, 1))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, int64(10), stockOf(t, s, pCamisa, locPiso))
}
