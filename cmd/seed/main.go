// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"swiftpos/internal/core/types"
	"swiftpos/internal/domain/auth"
	"swiftpos/internal/domain/catalogs/category"
	"swiftpos/internal/domain/catalogs/product"
	"swiftpos/internal/domain/catalogs/unit"
	"swiftpos/internal/infrastructure/storage/postgres"
	"swiftpos/internal/infrastructure/storage/postgres/auth_repo"
	"swiftpos/internal/infrastructure/storage/postgres/catalog_repo"
	"swiftpos/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)

	if err := seedAdminUser(ctx, txManager, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}
	if err := seedReferences(ctx, txManager, log); err != nil {
		log.Fatalw("failed to seed reference data", "error", err)
	}
	if os.Getenv("SEED_DEMO") == "1" {
		if err := seedDemoProducts(ctx, txManager, log); err != nil {
			log.Fatalw("failed to seed demo products", "error", err)
		}
	}

	log.Info("seeding complete")
}

// seedAdminUser creates the initial admin account when it does not exist.
func seedAdminUser(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	users := auth_repo.NewUserRepo(txManager)

	username := getEnv("ADMIN_USERNAME", "admin")
	exists, err := users.UsernameExists(ctx, username)
	if err != nil {
		return err
	}
	if exists {
		log.Infow("admin user already present", "username", username)
		return nil
	}

	password := getEnv("ADMIN_PASSWORD", "")
	if password == "" {
		return fmt.Errorf("ADMIN_PASSWORD is required to create the admin user")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := auth.NewUser(username, getEnv("ADMIN_EMAIL", "admin@swiftpos.local"), string(hash))
	admin.FirstName = "Store"
	admin.LastName = "Admin"
	admin.Role = auth.RoleManager
	admin.IsApproved = true
	admin.IsStaff = true
	admin.IsAdmin = true

	err = txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return users.Create(ctx, admin)
	})
	if err != nil {
		return err
	}

	log.Infow("admin user created", "username", username, "id", admin.ID)
	return nil
}

// seedReferences inserts the default units and categories. Names that
// already exist are left untouched.
func seedReferences(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	defaultUnits := []string{"Piece", "Pack", "Carton", "Kilogram", "Litre"}
	defaultCategories := []string{"Beverages", "Food", "Toiletries", "Household", "Stationery"}

	executor := postgres.NewBatchExecutor(txManager)

	const insertSQL = `
		INSERT INTO %s (id, created_at, updated_at, name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO NOTHING
	`

	var queries []postgres.BatchQuery
	for _, name := range defaultUnits {
		u := unit.New(name)
		queries = append(queries, postgres.BatchQuery{
			SQL:  fmt.Sprintf(insertSQL, "cat_units"),
			Args: []any{u.ID, u.CreatedAt, u.UpdatedAt, u.Name},
		})
	}
	for _, name := range defaultCategories {
		cat := category.New(name)
		queries = append(queries, postgres.BatchQuery{
			SQL:  fmt.Sprintf(insertSQL, "cat_categories"),
			Args: []any{cat.ID, cat.CreatedAt, cat.UpdatedAt, cat.Name},
		})
	}

	err := txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return executor.ExecuteBatch(ctx, queries)
	})
	if err != nil {
		return err
	}

	log.Infow("reference data seeded", "units", len(defaultUnits), "categories", len(defaultCategories))
	return nil
}

// seedDemoProducts bulk-loads a small demo catalog through the COPY
// protocol. Runs only with SEED_DEMO=1 and only on an empty catalog.
func seedDemoProducts(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	units := catalog_repo.NewUnitRepo(txManager)
	products := catalog_repo.NewProductRepo(txManager)
	inserter := postgres.NewBatchInserter(txManager)

	piece, err := units.GetByName(ctx, "Piece")
	if err != nil {
		return err
	}

	demo := []struct {
		code, name   string
		buying, sale int64
		quantity     int
	}{
		{"DEMO-001", "Bottled Water 500ml", 150, 250, 120},
		{"DEMO-002", "Soda 330ml", 200, 350, 96},
		{"DEMO-003", "Bar Soap", 300, 450, 40},
		{"DEMO-004", "Notebook A5", 500, 800, 25},
		{"DEMO-005", "Cooking Oil 1L", 1800, 2400, 18},
	}

	exists, err := products.ExistsByCode(ctx, demo[0].code)
	if err != nil {
		return err
	}
	if exists {
		log.Info("demo products already present")
		return nil
	}

	columns := postgres.ExtractDBColumns[product.Product]()
	rows := make([][]any, 0, len(demo))
	for _, d := range demo {
		p := product.New(d.code, d.name, piece.ID)
		p.Quantity = d.quantity
		p.MinStockThreshold = 10
		p.UnitBuyingPrice = types.MoneyFromInt(d.buying)
		p.UnitPrice = types.MoneyFromInt(d.sale)

		values := postgres.StructToMap(p)
		row := make([]any, 0, len(columns))
		for _, col := range columns {
			row = append(row, values[col])
		}
		rows = append(rows, row)
	}

	var inserted int64
	err = txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		inserted, err = inserter.CopyFromSlice(ctx, "cat_products", columns, rows)
		return err
	})
	if err != nil {
		return err
	}

	log.Infow("demo products seeded", "count", inserted)
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
