// Package seed bootstraps a fresh store with an admin account and, in
// development, a small wholesale catalog.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/optommarket/backend/internal/config"
	"github.com/optommarket/backend/internal/domain/blog"
	"github.com/optommarket/backend/internal/domain/discount"
	"github.com/optommarket/backend/internal/domain/product"
	"github.com/optommarket/backend/internal/domain/user"
	"github.com/optommarket/backend/internal/pkg/apperror"
	"github.com/optommarket/backend/internal/pkg/auth"
	"github.com/optommarket/backend/internal/storage"
)

// Seeder inserts initial data through the storage interface so it works
// against both backends
type Seeder struct {
	store     storage.Storage
	passwords *auth.PasswordManager
	cfg       *config.Config
	log       *logrus.Logger
	now       func() time.Time
}

// New creates a seeder
func New(store storage.Storage, passwords *auth.PasswordManager, cfg *config.Config, log *logrus.Logger) *Seeder {
	return &Seeder{store: store, passwords: passwords, cfg: cfg, log: log, now: time.Now}
}

// Run creates the admin account and, when enabled, the sample catalog.
// It is safe to run on every start.
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.seedAdmin(ctx); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	if !s.cfg.App.SeedData {
		return nil
	}

	n, err := s.store.CountProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if n > 0 {
		s.log.Debug("catalog already populated, skipping sample data")
		return nil
	}

	if err := s.seedCatalog(ctx); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	if err := s.seedDiscount(ctx); err != nil {
		return fmt.Errorf("failed to seed discount: %w", err)
	}
	if err := s.seedPost(ctx); err != nil {
		return fmt.Errorf("failed to seed blog: %w", err)
	}

	s.log.Info("initial data seeded")
	return nil
}

func (s *Seeder) seedAdmin(ctx context.Context) error {
	username := s.cfg.App.AdminUsername
	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		s.log.WithField("username", username).Debug("admin user already exists")
		return nil
	} else if !apperror.IsNotFound(err) {
		return err
	}

	hash, err := s.passwords.HashPassword(s.cfg.App.AdminPassword)
	if err != nil {
		return err
	}
	admin := &user.User{
		Username: username,
		Email:    s.cfg.App.AdminEmail,
		Password: hash,
		Role:     user.RoleAdmin,
	}
	if err := s.store.CreateUser(ctx, admin); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"user_id": admin.ID, "username": username}).Info("admin user created")
	return nil
}

type sampleCategory struct {
	nameUz, nameRu, slug string
	children             []sampleCategory
}

var sampleCategories = []sampleCategory{
	{nameUz: "Kiyim-kechak", nameRu: "Одежда", slug: "kiyim-kechak", children: []sampleCategory{
		{nameUz: "Bolalar kiyimi", nameRu: "Детская одежда", slug: "bolalar-kiyimi"},
		{nameUz: "Erkaklar kiyimi", nameRu: "Мужская одежда", slug: "erkaklar-kiyimi"},
	}},
	{nameUz: "Uy-ro'zg'or buyumlari", nameRu: "Товары для дома", slug: "uy-rozgor", children: []sampleCategory{
		{nameUz: "Oshxona jihozlari", nameRu: "Кухонные принадлежности", slug: "oshxona"},
	}},
	{nameUz: "Oziq-ovqat", nameRu: "Продукты питания", slug: "oziq-ovqat"},
}

type sampleProduct struct {
	category         string
	nameUz, nameRu   string
	slug, unit       string
	price, wholesale int64
	minQuantity      int
	stock            int
	featured         bool
}

var sampleProducts = []sampleProduct{
	{"bolalar-kiyimi", "Bolalar futbolkasi", "Детская футболка", "bolalar-futbolkasi", "dona", 45000, 35000, 20, 500, true},
	{"bolalar-kiyimi", "Bolalar shimi", "Детские брюки", "bolalar-shimi", "dona", 80000, 65000, 10, 200, false},
	{"erkaklar-kiyimi", "Erkaklar ko'ylagi", "Мужская рубашка", "erkaklar-koylagi", "dona", 150000, 120000, 10, 150, true},
	{"oshxona", "Choynak 2 litr", "Чайник 2 литра", "choynak-2-litr", "dona", 120000, 95000, 6, 80, false},
	{"oshxona", "Piyola to'plami", "Набор пиал", "piyola-toplami", "to'plam", 90000, 70000, 5, 120, true},
	{"oziq-ovqat", "Guruch Lazer", "Рис Лазер", "guruch-lazer", "kg", 22000, 18500, 50, 5000, false},
}

func (s *Seeder) seedCatalog(ctx context.Context) error {
	ids := make(map[string]uint)

	var create func(list []sampleCategory, parent *uint) error
	create = func(list []sampleCategory, parent *uint) error {
		for i, sc := range list {
			c := &product.Category{
				NameUz:    sc.nameUz,
				NameRu:    sc.nameRu,
				Slug:      sc.slug,
				ParentID:  parent,
				SortOrder: i + 1,
				IsActive:  true,
			}
			if err := s.store.CreateCategory(ctx, c); err != nil {
				return err
			}
			ids[sc.slug] = c.ID
			if err := create(sc.children, &c.ID); err != nil {
				return err
			}
		}
		return nil
	}
	if err := create(sampleCategories, nil); err != nil {
		return err
	}

	for _, sp := range sampleProducts {
		p := &product.Product{
			NameUz:         sp.nameUz,
			NameRu:         sp.nameRu,
			CategoryID:     ids[sp.category],
			Price:          decimal.NewFromInt(sp.price),
			WholesalePrice: decimal.NewFromInt(sp.wholesale),
			MinQuantity:    sp.minQuantity,
			StockQuantity:  sp.stock,
			Unit:           sp.unit,
			Specifications: product.Specifications{},
			Images:         []string{},
			Slug:           sp.slug,
			IsActive:       true,
			IsFeatured:     sp.featured,
		}
		if err := s.store.CreateProduct(ctx, p); err != nil {
			return err
		}
	}

	s.log.WithFields(logrus.Fields{
		"categories": len(ids),
		"products":   len(sampleProducts),
	}).Info("sample catalog created")
	return nil
}

func (s *Seeder) seedDiscount(ctx context.Context) error {
	now := s.now().UTC()
	return s.store.CreateDiscount(ctx, &discount.Discount{
		Code:       "WELCOME10",
		Type:       discount.TypePercentage,
		Value:      decimal.NewFromInt(10),
		IsActive:   true,
		ValidFrom:  now,
		ValidUntil: now.AddDate(1, 0, 0),
		TargetType: discount.TargetAllProducts,
	})
}

func (s *Seeder) seedPost(ctx context.Context) error {
	now := s.now().UTC()
	return s.store.CreatePost(ctx, &blog.Post{
		TitleUz:     "Ulgurji xaridlar uchun qo'llanma",
		TitleRu:     "Руководство по оптовым закупкам",
		ContentUz:   "Ulgurji narx minimal miqdordan boshlab qo'llaniladi.",
		ContentRu:   "Оптовая цена применяется начиная с минимального количества.",
		Slug:        "ulgurji-xaridlar-uchun-qollanma",
		IsPublished: true,
		PublishedAt: &now,
	})
}
