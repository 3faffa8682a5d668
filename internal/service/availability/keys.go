package availability

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vladislavdragonenkov/redirector/internal/domain"
)

// storeSentinel подставляется вместо отсутствующего storeId, чтобы ключи
// контекстов с магазином и без магазина никогда не коллидировали.
const storeSentinel = "nostore"

// StockKey строит ключ stock-кэша для одного идентификатора.
// Формат: stock:<zip>:<storeId|nostore>:<канонический id>.
func StockKey(loc domain.LocationContext, id domain.ProductID) string {
	store := loc.StoreID
	if store == "" {
		store = storeSentinel
	}
	return fmt.Sprintf("stock:%s:%s:%s", loc.ZipCode, store, domain.NormalizeProductID(string(id)))
}

// BatchStockKey строит ключ снимка целого batch-а. Идентификаторы
// нормализуются и сортируются, чтобы порядок в запросе не порождал разные
// ключи одного результата. Вид операции в ключе свой: снимок batch-а из
// одного товара не должен коллидировать с сырой записью этого товара.
func BatchStockKey(loc domain.LocationContext, ids []domain.ProductID) string {
	store := loc.StoreID
	if store == "" {
		store = storeSentinel
	}

	canonical := make([]string, 0, len(ids))
	for _, id := range ids {
		canonical = append(canonical, string(domain.NormalizeProductID(string(id))))
	}
	sort.Strings(canonical)

	return fmt.Sprintf("stock:batch:%s:%s:%s", loc.ZipCode, store, strings.Join(canonical, ","))
}

// CatalogKey строит ключ долгоживущего catalog-кэша метаданных товара.
func CatalogKey(id domain.ProductID) string {
	return fmt.Sprintf("catalog:%s", domain.NormalizeProductID(string(id)))
}
