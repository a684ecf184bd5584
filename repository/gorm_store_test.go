package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sierra-health/medequip-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return NewGormStore(db), db
}

var baseTime = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func seedCategory(t *testing.T, store *Store, name string) *models.Category {
	t.Helper()
	category := &models.Category{ID: uuid.NewString(), Name: name, CreatedAt: baseTime, UpdatedAt: baseTime}
	require.NoError(t, store.Categories.Create(context.Background(), category))
	return category
}

func seedProduct(t *testing.T, store *Store, name, categoryID string, createdAt time.Time) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:          uuid.NewString(),
		Name:        name,
		Brand:       "Zeiss",
		CategoryID:  categoryID,
		Price:       100,
		Images:      []string{"https://img.example/" + name + ".png"},
		ReviewIDs:   []string{},
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
		Description: name + " description",
	}
	require.NoError(t, store.Products.Create(context.Background(), product))
	return product
}

func seedOrder(t *testing.T, store *Store, createdAt time.Time, items ...models.OrderItem) *models.Order {
	t.Helper()
	user := &models.User{ID: uuid.NewString(), Name: "Jane", Email: "jane@x.com", Phone: "555"}
	order := &models.Order{
		ID:        uuid.NewString(),
		Items:     items,
		Status:    models.OrderStatusNew,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, store.Orders.CreateInquiry(context.Background(), user, order, nil))
	return order
}

func TestGormProductRepository(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()
	category := seedCategory(t, store, "Slit Lamps")

	older := seedProduct(t, store, "SL-115", category.ID, baseTime)
	newer := seedProduct(t, store, "SL-220", category.ID, baseTime.Add(time.Hour))

	t.Run("GetByID populates category", func(t *testing.T) {
		product, err := store.Products.GetByID(ctx, older.ID)
		require.NoError(t, err)
		assert.Equal(t, "SL-115", product.Name)
		require.NotNil(t, product.Category)
		assert.Equal(t, "Slit Lamps", product.Category.Name)
		assert.Equal(t, []string{"https://img.example/SL-115.png"}, product.Images)
	})

	t.Run("GetByID unknown id", func(t *testing.T) {
		_, err := store.Products.GetByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("List is newest first and paginated", func(t *testing.T) {
		products, err := store.Products.List(ctx, 0, 1)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, newer.ID, products[0].ID)

		products, err = store.Products.List(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, older.ID, products[0].ID)

		total, err := store.Products.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("ListByCategory excludes id", func(t *testing.T) {
		products, err := store.Products.ListByCategory(ctx, category.ID, older.ID)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, newer.ID, products[0].ID)

		products, err = store.Products.ListByCategory(ctx, category.ID, "")
		require.NoError(t, err)
		assert.Len(t, products, 2)
	})

	t.Run("Update changes fields", func(t *testing.T) {
		product, err := store.Products.GetByID(ctx, newer.ID)
		require.NoError(t, err)
		product.Price = 250.5
		product.IsBestSeller = true
		require.NoError(t, store.Products.Update(ctx, product))

		updated, err := store.Products.GetByID(ctx, newer.ID)
		require.NoError(t, err)
		assert.Equal(t, 250.5, updated.Price)
		assert.True(t, updated.IsBestSeller)
	})

	t.Run("Update unknown id", func(t *testing.T) {
		err := store.Products.Update(ctx, &models.Product{ID: uuid.NewString(), Name: "ghost"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("AppendReview keeps order", func(t *testing.T) {
		require.NoError(t, store.Products.AppendReview(ctx, older.ID, "r1"))
		require.NoError(t, store.Products.AppendReview(ctx, older.ID, "r2"))

		product, err := store.Products.GetByID(ctx, older.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"r1", "r2"}, product.ReviewIDs)

		assert.ErrorIs(t, store.Products.AppendReview(ctx, uuid.NewString(), "r3"), ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Products.Delete(ctx, older.ID))
		_, err := store.Products.GetByID(ctx, older.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, store.Products.Delete(ctx, older.ID), ErrNotFound)
	})
}

func TestGormTopSelling(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()
	category := seedCategory(t, store, "Tonometers")

	p1 := seedProduct(t, store, "P1", category.ID, baseTime)
	p2 := seedProduct(t, store, "P2", category.ID, baseTime)
	p3 := seedProduct(t, store, "P3", category.ID, baseTime)
	p4 := seedProduct(t, store, "P4", category.ID, baseTime)
	gone := seedProduct(t, store, "Gone", category.ID, baseTime)

	seedOrder(t, store, baseTime,
		models.OrderItem{ProductID: p1.ID, Quantity: 2},
		models.OrderItem{ProductID: p2.ID, Quantity: 7},
		models.OrderItem{ProductID: gone.ID, Quantity: 50},
	)
	seedOrder(t, store, baseTime, models.OrderItem{ProductID: p1.ID, Quantity: 3})
	seedOrder(t, store, baseTime,
		models.OrderItem{ProductID: p3.ID, Quantity: 1},
		models.OrderItem{ProductID: p4.ID, Quantity: 1},
	)
	require.NoError(t, store.Products.Delete(ctx, gone.ID))

	top, err := store.Products.TopSelling(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)

	assert.Equal(t, p2.ID, top[0].ID)
	assert.Equal(t, 7, top[0].SoldQuantity)
	assert.Equal(t, p1.ID, top[1].ID)
	assert.Equal(t, 5, top[1].SoldQuantity)

	// p3 and p4 tie on quantity; the lower id wins
	expectedThird := p3.ID
	if p4.ID < p3.ID {
		expectedThird = p4.ID
	}
	assert.Equal(t, expectedThird, top[2].ID)
	assert.Equal(t, 1, top[2].SoldQuantity)
	assert.NotNil(t, top[0].Category)
}

func TestGormTopSellingWithoutOrders(t *testing.T) {
	store, _ := setupStore(t)

	top, err := store.Products.TopSelling(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestGormCategoryRepository(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	lamps := seedCategory(t, store, "Slit Lamps")
	empty := &models.Category{ID: uuid.NewString(), Name: "Lenses", CreatedAt: baseTime.Add(time.Minute), UpdatedAt: baseTime}
	require.NoError(t, store.Categories.Create(ctx, empty))
	seedProduct(t, store, "A", lamps.ID, baseTime)
	seedProduct(t, store, "B", lamps.ID, baseTime)

	t.Run("List oldest first", func(t *testing.T) {
		categories, err := store.Categories.List(ctx)
		require.NoError(t, err)
		require.Len(t, categories, 2)
		assert.Equal(t, lamps.ID, categories[0].ID)
		assert.Equal(t, empty.ID, categories[1].ID)
	})

	t.Run("ListWithCounts counts products", func(t *testing.T) {
		counts, err := store.Categories.ListWithCounts(ctx)
		require.NoError(t, err)
		require.Len(t, counts, 2)
		assert.Equal(t, "Slit Lamps", counts[0].Name)
		assert.Equal(t, int64(2), counts[0].ProductCount)
		assert.Equal(t, int64(0), counts[1].ProductCount)
	})

	t.Run("Update renames", func(t *testing.T) {
		require.NoError(t, store.Categories.Update(ctx, &models.Category{ID: empty.ID, Name: "Contact Lenses"}))
		category, err := store.Categories.GetByID(ctx, empty.ID)
		require.NoError(t, err)
		assert.Equal(t, "Contact Lenses", category.Name)

		err = store.Categories.Update(ctx, &models.Category{ID: uuid.NewString(), Name: "x"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Delete leaves products pointing at the removed category", func(t *testing.T) {
		require.NoError(t, store.Categories.Delete(ctx, lamps.ID))

		products, err := store.Products.ListByCategory(ctx, lamps.ID, "")
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, lamps.ID, products[0].CategoryID)

		product, err := store.Products.GetByID(ctx, products[0].ID)
		require.NoError(t, err)
		assert.Nil(t, product.Category)

		assert.ErrorIs(t, store.Categories.Delete(ctx, lamps.ID), ErrNotFound)
	})
}

func TestGormOrderRepository(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()
	category := seedCategory(t, store, "Refractors")
	product := seedProduct(t, store, "P1", category.ID, baseTime)

	user := &models.User{ID: uuid.NewString(), Name: "Jane", Email: "jane@x.com", Phone: "555"}
	order := &models.Order{
		ID:        uuid.NewString(),
		Items:     []models.OrderItem{{ProductID: product.ID, Quantity: 2}},
		Message:   "Please call",
		Status:    models.OrderStatusNew,
		CreatedAt: baseTime,
	}
	notifications := []models.Notification{
		{ID: uuid.NewString(), Kind: models.NotificationAdminInquiry, Recipient: "admin@x.com", Subject: "s", Status: models.NotificationPending, NextAttemptAt: baseTime},
	}
	require.NoError(t, store.Orders.CreateInquiry(ctx, user, order, notifications))
	assert.Equal(t, user.ID, order.UserID)

	later := seedOrder(t, store, baseTime.Add(48*time.Hour))

	t.Run("GetByID populates user and products", func(t *testing.T) {
		found, err := store.Orders.GetByID(ctx, order.ID)
		require.NoError(t, err)
		require.NotNil(t, found.User)
		assert.Equal(t, "Jane", found.User.Name)
		require.Len(t, found.Items, 1)
		assert.Equal(t, 2, found.Items[0].Quantity)
		require.NotNil(t, found.Items[0].Product)
		assert.Equal(t, "P1", found.Items[0].Product.Name)
	})

	t.Run("List all newest first", func(t *testing.T) {
		orders, err := store.Orders.List(ctx, time.Time{}, time.Time{})
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, later.ID, orders[0].ID)
		assert.Empty(t, orders[0].Items)
	})

	t.Run("List by day", func(t *testing.T) {
		day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
		orders, err := store.Orders.List(ctx, day, day.AddDate(0, 0, 1))
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, order.ID, orders[0].ID)
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		require.NoError(t, store.Orders.UpdateStatus(ctx, order.ID, models.OrderStatusNew, models.OrderStatusContacted))
		found, err := store.Orders.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusContacted, found.Status)

		err = store.Orders.UpdateStatus(ctx, order.ID, models.OrderStatusNew, models.OrderStatusClosed)
		assert.ErrorIs(t, err, ErrStatusChanged, "the order is no longer new")
		found, err = store.Orders.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusContacted, found.Status)

		err = store.Orders.UpdateStatus(ctx, uuid.NewString(), models.OrderStatusNew, models.OrderStatusClosed)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("CreateInquiry writes notifications and a new lead every time", func(t *testing.T) {
		var count int64
		require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
		require.NoError(t, db.Model(&models.User{}).Where("email = ?", "jane@x.com").Count(&count).Error)
		assert.Equal(t, int64(2), count)
	})
}

func TestGormCreateInquiryRollsBack(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()

	user := &models.User{ID: uuid.NewString(), Name: "Jane"}
	order := &models.Order{ID: uuid.NewString(), Status: models.OrderStatusNew}
	// Duplicate primary keys make the outbox insert fail after the lead and order are written
	dup := uuid.NewString()
	notifications := []models.Notification{
		{ID: dup, Kind: models.NotificationAdminInquiry, Recipient: "a", Subject: "s"},
		{ID: dup, Kind: models.NotificationCustomerInquiry, Recipient: "b", Subject: "s"},
	}
	require.Error(t, store.Orders.CreateInquiry(ctx, user, order, notifications))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGormReviewRepository(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()
	category := seedCategory(t, store, "Lenses")
	product := seedProduct(t, store, "P1", category.ID, baseTime)

	newReview := func(name, status string, at time.Time) *models.Review {
		review := &models.Review{
			ID: uuid.NewString(), ProductID: product.ID, Name: name, Stars: 4,
			Comment: "fine", Status: status, CreatedAt: at, UpdatedAt: at,
		}
		require.NoError(t, store.Reviews.Create(ctx, review))
		return review
	}
	bob := newReview("Bob", models.ReviewStatusPending, baseTime)
	newReview("Ann", models.ReviewStatusRejected, baseTime.Add(time.Minute))
	cara := newReview("Cara", models.ReviewStatusAccepted, baseTime.Add(2*time.Minute))

	t.Run("FindActiveByName ignores rejected", func(t *testing.T) {
		found, err := store.Reviews.FindActiveByName(ctx, product.ID, "Bob")
		require.NoError(t, err)
		assert.Equal(t, bob.ID, found.ID)

		_, err = store.Reviews.FindActiveByName(ctx, product.ID, "Ann")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ListByProduct filters by status", func(t *testing.T) {
		all, err := store.Reviews.ListByProduct(ctx, product.ID, "")
		require.NoError(t, err)
		assert.Len(t, all, 3)
		assert.Equal(t, cara.ID, all[0].ID)

		accepted, err := store.Reviews.ListByProduct(ctx, product.ID, models.ReviewStatusAccepted)
		require.NoError(t, err)
		require.Len(t, accepted, 1)
		assert.Equal(t, cara.ID, accepted[0].ID)
	})

	t.Run("ListByStatus populates product", func(t *testing.T) {
		pending, err := store.Reviews.ListByStatus(ctx, models.ReviewStatusPending)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		require.NotNil(t, pending[0].Product)
		assert.Equal(t, "P1", pending[0].Product.Name)
	})

	t.Run("UpdateStatus returns updated review", func(t *testing.T) {
		updated, err := store.Reviews.UpdateStatus(ctx, bob.ID, models.ReviewStatusPending, models.ReviewStatusAccepted)
		require.NoError(t, err)
		assert.Equal(t, models.ReviewStatusAccepted, updated.Status)

		_, err = store.Reviews.UpdateStatus(ctx, bob.ID, models.ReviewStatusPending, models.ReviewStatusRejected)
		assert.ErrorIs(t, err, ErrStatusChanged, "a decided review is not pending anymore")

		_, err = store.Reviews.UpdateStatus(ctx, uuid.NewString(), models.ReviewStatusPending, models.ReviewStatusAccepted)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestGormNotificationRepository(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()

	due := models.Notification{ID: uuid.NewString(), Kind: models.NotificationAdminInquiry, Recipient: "a@x.com", Subject: "s", Status: models.NotificationPending, NextAttemptAt: baseTime}
	future := models.Notification{ID: uuid.NewString(), Kind: models.NotificationCustomerInquiry, Recipient: "b@x.com", Subject: "s", Status: models.NotificationPending, NextAttemptAt: baseTime.Add(time.Hour)}
	require.NoError(t, db.Create(&[]models.Notification{due, future}).Error)

	found, err := store.Notifications.Due(ctx, baseTime.Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, due.ID, found[0].ID)

	require.NoError(t, store.Notifications.MarkSent(ctx, due.ID, baseTime.Add(time.Minute)))
	var sent models.Notification
	require.NoError(t, db.First(&sent, "id = ?", due.ID).Error)
	assert.Equal(t, models.NotificationSent, sent.Status)
	assert.Equal(t, 1, sent.Attempts)
	require.NotNil(t, sent.SentAt)

	require.NoError(t, store.Notifications.MarkRetry(ctx, future.ID, 3, baseTime.Add(2*time.Hour), "smtp down", true))
	var failed models.Notification
	require.NoError(t, db.First(&failed, "id = ?", future.ID).Error)
	assert.Equal(t, models.NotificationFailed, failed.Status)
	assert.Equal(t, 3, failed.Attempts)
	assert.Equal(t, "smtp down", failed.LastError)

	found, err = store.Notifications.Due(ctx, baseTime.Add(24*time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestGormStatsRepository(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()
	category := seedCategory(t, store, "Lenses")
	seedProduct(t, store, "P1", category.ID, baseTime)
	seedProduct(t, store, "P2", category.ID, baseTime)
	seedOrder(t, store, baseTime)

	stats, err := store.Stats.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalProducts)
	assert.Equal(t, int64(1), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.TotalCategories)
	assert.Equal(t, int64(1), stats.TotalUsers)
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	mock.ExpectPing()
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewGormStore(db), mock
}

func TestGormStatsRepositoryDatabaseError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "products"`)).WillReturnError(errors.New("connection reset"))

	_, err := store.Stats.Counts(context.Background())
	assert.EqualError(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStorePing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectPing()
	assert.NoError(t, store.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("database is down"))
	assert.Error(t, store.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
