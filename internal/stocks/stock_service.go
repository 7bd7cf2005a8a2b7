package stocks

import (
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/shopspring/decimal"

	custom_error "github.com/tobi647/beer-distribution-app-sub000/pkg/errors"
	"github.com/tobi647/beer-distribution-app-sub000/pkg/models"
)

type stockStore interface {
	GetStockItem(id string) (*models.StockItem, error)
	GetStockItemForUpdate(tx *goqu.TxDatabase, id string) (*models.StockItem, error)
	ListStockItems() ([]models.StockItem, error)
	ListLowStockItems() ([]models.StockItem, error)
	InsertStockItem(item *models.StockItem) error
	UpdateStockItem(tx *goqu.TxDatabase, item *models.StockItem) error
	InsertSupplyEntry(tx *goqu.TxDatabase, entry models.SupplyEntry) error
	DeleteStockItem(id string) (bool, error)
}

type txRunner interface {
	RunInTransaction(fn func(tx *goqu.TxDatabase) error) error
}

// StockService applies ledger operations to persisted items. Mutations load
// the current record with a row lock, run the pure state transition and store
// the result inside one transaction, so concurrent batch submissions cannot
// lose a weighted-average update.
type StockService struct {
	r     txRunner
	store stockStore
}

func NewStockService(r txRunner, store stockStore) *StockService {
	return &StockService{r: r, store: store}
}

func (s *StockService) CreateStock(fields ItemFields) (*models.StockItem, *PriceWarning, error) {
	item, warning, err := CreateItem(fields)
	if err != nil {
		return nil, nil, err
	}

	if err := s.store.InsertStockItem(item); err != nil {
		return nil, nil, err
	}

	return item, warning, nil
}

func (s *StockService) GetStock(id string) (*models.StockItem, error) {
	item, err := s.store.GetStockItem(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, custom_error.NewNotFoundError("stock item", id)
	}
	return item, nil
}

func (s *StockService) ListStocks(searchTerm, sortField string, order SortOrder) ([]models.StockItem, error) {
	items, err := s.store.ListStockItems()
	if err != nil {
		return nil, err
	}
	return FilterAndSort(items, searchTerm, sortField, order), nil
}

func (s *StockService) ListLowStocks() ([]models.StockItem, error) {
	return s.store.ListLowStockItems()
}

// lockStockItem loads one item inside the given transaction, holding its row
// lock until commit.
func (s *StockService) lockStockItem(tx *goqu.TxDatabase, id string) (*models.StockItem, error) {
	item, err := s.store.GetStockItemForUpdate(tx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, custom_error.NewNotFoundError("stock item", id)
	}
	return item, nil
}

func (s *StockService) EditStock(id string, fields ItemFields) (*models.StockItem, *PriceWarning, error) {
	var item *models.StockItem
	var warning *PriceWarning

	err := s.r.RunInTransaction(func(tx *goqu.TxDatabase) error {
		var err error
		item, err = s.lockStockItem(tx, id)
		if err != nil {
			return err
		}

		entry, editWarning, err := ApplyEdit(item, fields)
		if err != nil {
			return err
		}
		warning = editWarning

		if err := s.store.UpdateStockItem(tx, item); err != nil {
			return fmt.Errorf("failed to persist stock edit: %w", err)
		}
		if entry != nil {
			if err := s.store.InsertSupplyEntry(tx, *entry); err != nil {
				return fmt.Errorf("failed to persist price-change entry: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return item, warning, nil
}

func (s *StockService) AddSupply(id string, batch SupplyBatch) (*models.StockItem, error) {
	var item *models.StockItem

	err := s.r.RunInTransaction(func(tx *goqu.TxDatabase) error {
		var err error
		item, err = s.lockStockItem(tx, id)
		if err != nil {
			return err
		}

		entry, err := AddSupply(item, batch)
		if err != nil {
			return err
		}

		if err := s.store.UpdateStockItem(tx, item); err != nil {
			return fmt.Errorf("failed to persist supply blend: %w", err)
		}
		if err := s.store.InsertSupplyEntry(tx, *entry); err != nil {
			return fmt.Errorf("failed to persist supply entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

func (s *StockService) TogglePriceLock(id string, lock bool, currentPrice decimal.Decimal) (*models.StockItem, *PriceWarning, error) {
	var item *models.StockItem
	var warning *PriceWarning

	err := s.r.RunInTransaction(func(tx *goqu.TxDatabase) error {
		var err error
		item, err = s.lockStockItem(tx, id)
		if err != nil {
			return err
		}

		entry, lockWarning, err := TogglePriceLock(item, lock, currentPrice)
		if err != nil {
			return err
		}
		if entry == nil {
			// Already in the requested state.
			return nil
		}
		warning = lockWarning

		if err := s.store.UpdateStockItem(tx, item); err != nil {
			return fmt.Errorf("failed to persist price lock change: %w", err)
		}
		if err := s.store.InsertSupplyEntry(tx, *entry); err != nil {
			return fmt.Errorf("failed to persist price lock entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return item, warning, nil
}

func (s *StockService) DeleteStock(id string) error {
	deleted, err := s.store.DeleteStockItem(id)
	if err != nil {
		return err
	}
	if !deleted {
		return custom_error.NewNotFoundError("stock item", id)
	}
	return nil
}

func (s *StockService) GetHistory(id string, filter HistoryFilter) ([]models.SupplyEntry, error) {
	item, err := s.GetStock(id)
	if err != nil {
		return nil, err
	}

	return FilterSupplyHistory(item.SupplyHistory, filter), nil
}
