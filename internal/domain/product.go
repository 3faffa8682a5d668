package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ProductID — канонический идентификатор товара в каталоге.
// Все map-операции внутри сервиса выполняются только над канонической формой.
type ProductID string

// NormalizeProductID приводит произвольное текстовое представление идентификатора
// к канонической форме. Числовые представления ("0123", "123.0", " 123 ")
// сводятся к одной десятичной записи, чтобы поиск по map не зависел от того,
// как caller или upstream сериализовали значение.
func NormalizeProductID(raw string) ProductID {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ProductID("")
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ProductID(strconv.FormatInt(n, 10))
	}

	// Представления вида "123.0" или "1.2345678e7" тоже считаем числовыми,
	// если значение целое и помещается в int64.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f == math.Trunc(f) && f >= math.MinInt64 && f <= math.MaxInt64 {
			return ProductID(strconv.FormatInt(int64(f), 10))
		}
	}

	return ProductID(s)
}

// NormalizeProductIDs нормализует список идентификаторов с сохранением порядка.
func NormalizeProductIDs(raw []string) []ProductID {
	ids := make([]ProductID, 0, len(raw))
	for _, r := range raw {
		ids = append(ids, NormalizeProductID(r))
	}
	return ids
}

// LocationContext задаёт географический контекст запроса наличия.
// Два контекста, отличающиеся хотя бы одним полем, кэш-несовместимы.
type LocationContext struct {
	// ZipCode — пятизначный почтовый индекс покупателя.
	ZipCode string
	// StoreID — необязательный идентификатор предпочитаемого магазина.
	StoreID string
}

// HasStore сообщает, выбрал ли покупатель конкретный магазин.
func (l LocationContext) HasStore() bool {
	return l.StoreID != ""
}

// FulfillmentOption — одна локация выдачи, возвращённая upstream-источником.
// Список опций упорядочен по возрастанию расстояния.
type FulfillmentOption struct {
	LocationID   string  `json:"location_id"`
	LocationName string  `json:"location_name"`
	InStock      bool    `json:"in_stock"`
	Quantity     int     `json:"quantity"`
	Distance     float64 `json:"distance"`
	Address      string  `json:"address,omitempty"`
}

// Usable сообщает, можно ли реально выдать товар из этой локации.
func (o FulfillmentOption) Usable() bool {
	return o.InStock && o.Quantity > 0
}

// ProductMetadata — метаданные товара из каталога. Меняются редко,
// поэтому живут в долгоживущем namespace кэша.
type ProductMetadata struct {
	ProductID ProductID `json:"product_id"`
	Name      string    `json:"name,omitempty"`
	Brand     string    `json:"brand,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

// StockLookup — сырой результат одного обращения к upstream за одним товаром.
// Именно это значение целиком кладётся в stock-кэш до нормализации.
type StockLookup struct {
	Product ProductMetadata     `json:"product"`
	Options []FulfillmentOption `json:"options"`
}

// ProductAvailability — нормализованная запись наличия по одному идентификатору.
// InStock истинно только когда выбранная локация отдаёт сток и количество > 0.
type ProductAvailability struct {
	ProductID         ProductID `json:"product_id"`
	InStock           bool      `json:"in_stock"`
	AvailableQuantity int       `json:"available_quantity"`
	LocationID        string    `json:"location_id,omitempty"`
	LocationName      string    `json:"location_name,omitempty"`
	Distance          float64   `json:"distance,omitempty"`
	// Resolved истинно, когда upstream вернул хотя бы одну локацию.
	// Ложное значение означает синтетическую запись "данных нет":
	// ошибка поиска или пустой список локаций.
	Resolved bool `json:"resolved"`
}

// Usable — предикат "доступен и пригоден" из алгоритма подстановки.
func (a ProductAvailability) Usable() bool {
	return a.InStock && a.AvailableQuantity > 0
}

// UnavailableProduct возвращает запись "данных нет" для идентификатора,
// по которому upstream не дал ни одной локации. Запись никогда не опускается,
// но остаётся с Resolved=false в отличие от обычной "нет в наличии".
func UnavailableProduct(id ProductID) ProductAvailability {
	return ProductAvailability{ProductID: id, InStock: false, AvailableQuantity: 0}
}
