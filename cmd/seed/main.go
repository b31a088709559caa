// Command seed 把 JSON 文件中的商品写入商品目录。商品没有 HTTP 写入接口。
//
//	go run ./cmd/seed -file products.json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/bootstrap"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/domain"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/repository"
)

func main() {
	file := flag.String("file", "products.json", "JSON array of products")
	flag.Parse()

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := bootstrap.NewLogger(cfg)

	products, err := readProducts(*file)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *file, err)
	}

	ctx := context.Background()
	store, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close(ctx)

	created, skipped := 0, 0
	for i := range products {
		p := &products[i]
		err := store.Products().Create(ctx, p)
		switch {
		case err == nil:
			created++
		case errors.Is(err, repository.ErrDuplicateEntry):
			skipped++
		default:
			log.WithError(err).WithField("product", p.Name).Error("Failed to insert product")
		}
	}
	log.WithFields(logrus.Fields{"created": created, "skipped": skipped, "total": len(products)}).Info("Seeding finished")
}

func readProducts(path string) ([]domain.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, err
	}
	return products, nil
}
