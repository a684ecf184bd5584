package services

import (
	"context"
	"sync"
	"testing"

	"github.com/sierra-health/medequip-api/models"
	"github.com/sierra-health/medequip-api/repository"
	"github.com/sierra-health/medequip-api/tests/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) (*repository.Store, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	return repository.NewGormStore(db), db
}

func seedCatalog(t *testing.T, catalog *CatalogService) (*models.Category, *models.Product) {
	t.Helper()
	ctx := context.Background()
	category, err := catalog.CreateCategory(ctx, "Slit Lamps")
	require.NoError(t, err)
	product, err := catalog.CreateProduct(ctx, ProductInput{
		Name:       "SL-115",
		Brand:      "Zeiss",
		CategoryID: category.ID,
		Price:      4500,
		Images:     []string{"https://img.example/sl115.png"},
	})
	require.NoError(t, err)
	return category, product
}

// readBarrier holds the first n reads until all n have happened, so that
// concurrent requests all observe the same state before any of them writes
type readBarrier struct {
	mu      sync.Mutex
	pending int
	release chan struct{}
}

func newReadBarrier(n int) *readBarrier {
	return &readBarrier{pending: n, release: make(chan struct{})}
}

func (b *readBarrier) arrive() {
	b.mu.Lock()
	if b.pending == 0 {
		b.mu.Unlock()
		return
	}
	b.pending--
	if b.pending == 0 {
		close(b.release)
	}
	b.mu.Unlock()
	<-b.release
}

type barrierReviews struct {
	repository.ReviewRepository
	barrier *readBarrier
}

func (r *barrierReviews) GetByID(ctx context.Context, id string) (*models.Review, error) {
	review, err := r.ReviewRepository.GetByID(ctx, id)
	r.barrier.arrive()
	return review, err
}

type barrierOrders struct {
	repository.OrderRepository
	barrier *readBarrier
}

func (r *barrierOrders) GetByID(ctx context.Context, id string) (*models.Order, error) {
	order, err := r.OrderRepository.GetByID(ctx, id)
	r.barrier.arrive()
	return order, err
}

// raceTwo runs both functions concurrently and returns their errors in order
func raceTwo(first, second func() error) (error, error) {
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, fn := range []func() error{first, second} {
		wg.Add(1)
		go func(i int, fn func() error) {
			defer wg.Done()
			errs[i] = fn()
		}(i, fn)
	}
	wg.Wait()
	return errs[0], errs[1]
}
