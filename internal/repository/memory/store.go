package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jeffleon2/draftea-paymentscore/internal/models"
	"github.com/jeffleon2/draftea-paymentscore/internal/service"
	"github.com/shopspring/decimal"
)

// Store keeps every record in process memory. A transaction holds the store lock for its
// whole duration and works on a copy that replaces the shared state only on success, so
// transactions are serializable and a failed one leaves no trace.
type Store struct {
	mu     *sync.Mutex
	data   *data
	faults *faults
	inTx   bool
}

type data struct {
	merchants   map[string]models.MerchantAccount
	intents     []models.PaymentIntent
	fraudChecks []models.FraudCheck
	commissions []models.TransactionCommission
	transfers   []models.RailTransfer
	entries     []models.LedgerEntry
	events      []models.PaymentEvent
	settlements map[string]models.MerchantSettlement
	seq         int64
}

type faults struct {
	mu  sync.Mutex
	ops map[string]error
}

var _ service.Store = (*Store)(nil)
var _ service.SettlementArchive = (*Store)(nil)

func New() *Store {
	return &Store{
		mu: &sync.Mutex{},
		data: &data{
			merchants:   make(map[string]models.MerchantAccount),
			settlements: make(map[string]models.MerchantSettlement),
		},
		faults: &faults{ops: make(map[string]error)},
	}
}

// FailOn makes every later call of the named store method return err.
func (s *Store) FailOn(op string, err error) {
	s.faults.mu.Lock()
	defer s.faults.mu.Unlock()
	s.faults.ops[op] = err
}

func (s *Store) fault(op string) error {
	s.faults.mu.Lock()
	defer s.faults.mu.Unlock()
	return s.faults.ops[op]
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx service.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(&Store{mu: s.mu, data: work, faults: s.faults, inTx: true}); err != nil {
		return err
	}
	*s.data = *work
	return nil
}

// SaveMerchant inserts or replaces a merchant account.
func (s *Store) SaveMerchant(merchant models.MerchantAccount) {
	defer s.lock()()
	s.data.merchants[merchant.MerchantID] = merchant
}

func (s *Store) FindActiveMerchant(ctx context.Context, merchantID string) (*models.MerchantAccount, error) {
	merchant, err := s.FindMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if !merchant.IsActive() {
		return nil, service.ErrRecordNotFound
	}
	return merchant, nil
}

func (s *Store) FindMerchant(ctx context.Context, merchantID string) (*models.MerchantAccount, error) {
	defer s.lock()()
	merchant, ok := s.data.merchants[merchantID]
	if !ok {
		return nil, service.ErrRecordNotFound
	}
	return &merchant, nil
}

func (s *Store) CreateIntent(ctx context.Context, intent *models.PaymentIntent) error {
	if err := s.fault("CreateIntent"); err != nil {
		return err
	}
	defer s.lock()()
	for _, existing := range s.data.intents {
		if existing.SessionID == intent.SessionID {
			return service.ErrDuplicate
		}
	}
	if intent.ID == "" {
		intent.ID = uuid.New().String()
	}
	stamp(&intent.CreatedAt)
	s.data.intents = append(s.data.intents, *intent)
	return nil
}

func (s *Store) FindIntentBySessionID(ctx context.Context, sessionID string) (*models.PaymentIntent, error) {
	defer s.lock()()
	for _, intent := range s.data.intents {
		if intent.SessionID == sessionID {
			return &intent, nil
		}
	}
	return nil, service.ErrRecordNotFound
}

func (s *Store) FindIntentByTransactionRef(ctx context.Context, transactionRef string) (*models.PaymentIntent, error) {
	defer s.lock()()
	for _, intent := range s.data.intents {
		if intent.TransactionRef == transactionRef {
			return &intent, nil
		}
	}
	return nil, service.ErrRecordNotFound
}

func (s *Store) FindIntentsByIDs(ctx context.Context, ids []string) ([]models.PaymentIntent, error) {
	defer s.lock()()
	wanted := idSet(ids)
	var out []models.PaymentIntent
	for _, intent := range s.data.intents {
		if _, ok := wanted[intent.ID]; ok {
			out = append(out, intent)
		}
	}
	return out, nil
}

func (s *Store) CompareAndSetStatus(ctx context.Context, sessionID string, from, to models.PaymentStatus, amount *decimal.Decimal, at time.Time) (bool, error) {
	if err := s.fault("CompareAndSetStatus"); err != nil {
		return false, err
	}
	defer s.lock()()
	for i := range s.data.intents {
		intent := &s.data.intents[i]
		if intent.SessionID != sessionID {
			continue
		}
		if intent.Status != from {
			return false, nil
		}
		intent.Status = to
		intent.UpdatedAt = at
		if amount != nil {
			intent.Amount = *amount
		}
		return true, nil
	}
	return false, nil
}

func (s *Store) CountIntentsSince(ctx context.Context, merchantID string, since time.Time) (int64, error) {
	defer s.lock()()
	var count int64
	for _, intent := range s.data.intents {
		if intent.MerchantID == merchantID && !intent.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *Store) FindSimilarIntentsSince(ctx context.Context, merchantID string, amount decimal.Decimal, status models.PaymentStatus, since time.Time) ([]models.PaymentIntent, error) {
	defer s.lock()()
	var out []models.PaymentIntent
	for _, intent := range s.data.intents {
		if intent.MerchantID == merchantID && intent.Status == status &&
			intent.Amount.Equal(amount) && !intent.CreatedAt.Before(since) {
			out = append(out, intent)
		}
	}
	return out, nil
}

func (s *Store) CreateFraudCheck(ctx context.Context, check *models.FraudCheck) error {
	if err := s.fault("CreateFraudCheck"); err != nil {
		return err
	}
	defer s.lock()()
	for _, existing := range s.data.fraudChecks {
		if existing.PaymentIntentID == check.PaymentIntentID {
			return service.ErrDuplicate
		}
	}
	if check.ID == "" {
		check.ID = uuid.New().String()
	}
	stamp(&check.CreatedAt)
	s.data.fraudChecks = append(s.data.fraudChecks, *check)
	return nil
}

func (s *Store) FindFraudCheckByIntentID(ctx context.Context, paymentIntentID string) (*models.FraudCheck, error) {
	defer s.lock()()
	for _, check := range s.data.fraudChecks {
		if check.PaymentIntentID == paymentIntentID {
			return &check, nil
		}
	}
	return nil, service.ErrRecordNotFound
}

func (s *Store) CreateCommission(ctx context.Context, commission *models.TransactionCommission) error {
	if err := s.fault("CreateCommission"); err != nil {
		return err
	}
	defer s.lock()()
	for _, existing := range s.data.commissions {
		if existing.PaymentIntentID == commission.PaymentIntentID {
			return service.ErrDuplicate
		}
	}
	if commission.ID == "" {
		commission.ID = uuid.New().String()
	}
	stamp(&commission.CreatedAt)
	s.data.commissions = append(s.data.commissions, *commission)
	return nil
}

func (s *Store) FindCommissionsByIntentIDs(ctx context.Context, ids []string) ([]models.TransactionCommission, error) {
	defer s.lock()()
	wanted := idSet(ids)
	var out []models.TransactionCommission
	for _, commission := range s.data.commissions {
		if _, ok := wanted[commission.PaymentIntentID]; ok {
			out = append(out, commission)
		}
	}
	return out, nil
}

func (s *Store) CreateRailTransfer(ctx context.Context, transfer *models.RailTransfer) error {
	if err := s.fault("CreateRailTransfer"); err != nil {
		return err
	}
	defer s.lock()()
	if transfer.ID == "" {
		transfer.ID = uuid.New().String()
	}
	stamp(&transfer.CreatedAt)
	s.data.transfers = append(s.data.transfers, *transfer)
	return nil
}

func (s *Store) FindRailTransfersByIntentIDs(ctx context.Context, ids []string) ([]models.RailTransfer, error) {
	defer s.lock()()
	wanted := idSet(ids)
	var out []models.RailTransfer
	for _, transfer := range s.data.transfers {
		if _, ok := wanted[transfer.PaymentIntentID]; ok {
			out = append(out, transfer)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// LockAccounts is a no-op: a transaction already owns the whole store.
func (s *Store) LockAccounts(ctx context.Context, accounts ...string) error {
	return s.fault("LockAccounts")
}

func (s *Store) SumAccount(ctx context.Context, account string) (decimal.Decimal, decimal.Decimal, error) {
	defer s.lock()()
	credits, debits := decimal.Zero, decimal.Zero
	for _, entry := range s.data.entries {
		if entry.AccountNumber != account {
			continue
		}
		if entry.EntryType == models.EntryCredit {
			credits = credits.Add(entry.Amount)
		} else {
			debits = debits.Add(entry.Amount)
		}
	}
	return credits, debits, nil
}

func (s *Store) CreateLedgerEntry(ctx context.Context, entry *models.LedgerEntry) error {
	if err := s.fault("CreateLedgerEntry"); err != nil {
		return err
	}
	defer s.lock()()
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	stamp(&entry.CreatedAt)
	s.data.seq++
	entry.Seq = s.data.seq
	s.data.entries = append(s.data.entries, *entry)
	return nil
}

func (s *Store) FindEntriesByAccount(ctx context.Context, account string) ([]models.LedgerEntry, error) {
	defer s.lock()()
	var out []models.LedgerEntry
	for _, entry := range s.data.entries {
		if entry.AccountNumber == account {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return entryBefore(out[j], out[i]) })
	return out, nil
}

func (s *Store) FindEntriesByAccountAndType(ctx context.Context, account string, entryType models.EntryType, from, to time.Time) ([]models.LedgerEntry, error) {
	defer s.lock()()
	var out []models.LedgerEntry
	for _, entry := range s.data.entries {
		if entry.AccountNumber == account && entry.EntryType == entryType &&
			!entry.CreatedAt.Before(from) && entry.CreatedAt.Before(to) {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return entryBefore(out[i], out[j]) })
	return out, nil
}

func (s *Store) FindEntriesByIntentID(ctx context.Context, paymentIntentID string) ([]models.LedgerEntry, error) {
	defer s.lock()()
	var out []models.LedgerEntry
	for _, entry := range s.data.entries {
		if entry.PaymentIntentID == paymentIntentID {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return entryBefore(out[i], out[j]) })
	return out, nil
}

func (s *Store) CreateEvent(ctx context.Context, event *models.PaymentEvent) error {
	if err := s.fault("CreateEvent"); err != nil {
		return err
	}
	defer s.lock()()
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	stamp(&event.CreatedAt)
	s.data.seq++
	event.Seq = s.data.seq
	s.data.events = append(s.data.events, *event)
	return nil
}

func (s *Store) FindEventsByIntentID(ctx context.Context, paymentIntentID string) ([]models.PaymentEvent, error) {
	defer s.lock()()
	var out []models.PaymentEvent
	for _, event := range s.data.events {
		if event.PaymentIntentID == paymentIntentID {
			out = append(out, event)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Seq < out[j].Seq
	})
	return out, nil
}

func (s *Store) SaveSettlement(ctx context.Context, settlement *models.MerchantSettlement) error {
	if err := s.fault("SaveSettlement"); err != nil {
		return err
	}
	defer s.lock()()
	if _, ok := s.data.settlements[settlement.SettlementID]; ok {
		return service.ErrDuplicate
	}
	s.data.settlements[settlement.SettlementID] = *settlement
	return nil
}

func (s *Store) FindSettlement(ctx context.Context, settlementID string) (*models.MerchantSettlement, error) {
	defer s.lock()()
	settlement, ok := s.data.settlements[settlementID]
	if !ok {
		return nil, service.ErrRecordNotFound
	}
	return &settlement, nil
}

func (d *data) clone() *data {
	c := &data{
		merchants:   make(map[string]models.MerchantAccount, len(d.merchants)),
		intents:     append([]models.PaymentIntent(nil), d.intents...),
		fraudChecks: append([]models.FraudCheck(nil), d.fraudChecks...),
		commissions: append([]models.TransactionCommission(nil), d.commissions...),
		transfers:   append([]models.RailTransfer(nil), d.transfers...),
		entries:     append([]models.LedgerEntry(nil), d.entries...),
		events:      append([]models.PaymentEvent(nil), d.events...),
		settlements: make(map[string]models.MerchantSettlement, len(d.settlements)),
		seq:         d.seq,
	}
	for k, v := range d.merchants {
		c.merchants[k] = v
	}
	for k, v := range d.settlements {
		c.settlements[k] = v
	}
	return c
}

// entryBefore orders by created_at, then by insert sequence.
func entryBefore(a, b models.LedgerEntry) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.Seq < b.Seq
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now()
	}
}
