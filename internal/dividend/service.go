package dividend

import (
	"sync"
	"time"

	"github.com/dividendlab/cashflow-backend/internal/provider"
	"github.com/dividendlab/cashflow-backend/internal/repository"
)

// Service owns the dividend event lifecycle: fetching from providers, fusing,
// reconciling against storage, and deriving the income calendar. It is
// stateless between calls except for the persisted event store.
type Service struct {
	eventRepo    *repository.DividendEventRepository
	holdingRepo  *repository.HoldingRepository
	sources      []provider.Source // priority order, most trusted first
	fetchTimeout time.Duration

	// symbolLocks serializes reconciliation per symbol so overlapping
	// refresh calls cannot race on the same (symbol, ex_date, amount) key.
	// Different symbols reconcile concurrently without contention.
	symbolLocks sync.Map // symbol -> *sync.Mutex
}

// NewService creates a dividend Service. Sources must already be ordered by
// configured provider priority (see provider.OrderByPriority).
func NewService(
	eventRepo *repository.DividendEventRepository,
	holdingRepo *repository.HoldingRepository,
	sources []provider.Source,
	fetchTimeout time.Duration,
) *Service {
	return &Service{
		eventRepo:    eventRepo,
		holdingRepo:  holdingRepo,
		sources:      sources,
		fetchTimeout: fetchTimeout,
	}
}

// lockSymbol acquires the per-symbol reconciliation lock and returns its
// unlock function.
func (s *Service) lockSymbol(symbol string) func() {
	value, _ := s.symbolLocks.LoadOrStore(symbol, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
