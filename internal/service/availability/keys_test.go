package availability_test

import (
	"testing"

	"github.com/vladislavdragonenkov/redirector/internal/domain"
	"github.com/vladislavdragonenkov/redirector/internal/service/availability"
)

func TestStockKey(t *testing.T) {
	loc := domain.LocationContext{ZipCode: "33101"}
	if got := availability.StockKey(loc, "0123"); got != "stock:33101:nostore:123" {
		t.Errorf("unexpected key: %s", got)
	}

	loc.StoreID = "s-7"
	if got := availability.StockKey(loc, "123"); got != "stock:33101:s-7:123" {
		t.Errorf("unexpected key: %s", got)
	}
}

func TestStockKey_SentinelAvoidsCollisions(t *testing.T) {
	with := availability.StockKey(domain.LocationContext{ZipCode: "33101", StoreID: "x"}, "1")
	without := availability.StockKey(domain.LocationContext{ZipCode: "33101"}, "1")
	if with == without {
		t.Fatal("keys with and without store id must differ")
	}
}

func TestBatchStockKey_OrderIndependent(t *testing.T) {
	loc := domain.LocationContext{ZipCode: "33101"}
	a := availability.BatchStockKey(loc, []domain.ProductID{"222", "0111"})
	b := availability.BatchStockKey(loc, []domain.ProductID{"111", "222"})

	if a != b {
		t.Fatalf("batch keys must not depend on identifier order: %s vs %s", a, b)
	}
	if a != "stock:batch:33101:nostore:111,222" {
		t.Errorf("unexpected batch key: %s", a)
	}
}

func TestBatchStockKey_DistinctFromSingleKey(t *testing.T) {
	loc := domain.LocationContext{ZipCode: "33101"}
	single := availability.StockKey(loc, "1")
	batch := availability.BatchStockKey(loc, []domain.ProductID{"1"})

	if single == batch {
		t.Fatal("a one-element batch snapshot must not collide with the raw single-id entry")
	}
}

func TestCatalogKey(t *testing.T) {
	if got := availability.CatalogKey(" 42 "); got != "catalog:42" {
		t.Errorf("unexpected key: %s", got)
	}
}
