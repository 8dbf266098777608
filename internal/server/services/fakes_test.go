package services

import (
	"context"
	"database/sql"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/avoropay/finsync/internal/common"
	"github.com/avoropay/finsync/internal/dbx"
	"github.com/avoropay/finsync/internal/server/models"
	"github.com/avoropay/finsync/internal/server/repositories/budgets"
	"github.com/avoropay/finsync/internal/server/repositories/sessions"
	"github.com/avoropay/finsync/internal/server/repositories/transactions"
	"github.com/avoropay/finsync/internal/server/repositories/users"
)

// newTxCapableDB returns a sqlmock DB that tolerates any number of
// transactions. Services only use the handle for BeginTx/Commit/Rollback;
// all data access goes through the in-memory fakes below.
func newTxCapableDB(t *testing.T) *sql.DB {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 128; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectRollback()
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// --- in-memory fakes ---

type memUsersRepo struct {
	mu     sync.Mutex
	nextID int
	byID   map[string]*models.User
}

func newMemUsersRepo() *memUsersRepo {
	return &memUsersRepo{byID: map[string]*models.User{}}
}

func (f *memUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Username == u.Username {
			return nil, common.ErrUsernameTaken
		}
	}
	f.nextID++
	u.ID = "u" + strconv.Itoa(f.nextID)
	u.CreatedAt = time.Now()
	f.byID[u.ID] = u
	return u, nil
}

func (f *memUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *memUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *memUsersRepo) UpdateCredentials(ctx context.Context, id, hash, recoveryKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	u.PasswordHash = hash
	u.RecoveryKey = recoveryKey
	return nil
}

func (f *memUsersRepo) Lock(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return common.ErrNotFound
	}
	return nil
}

func (f *memUsersRepo) IncrementSyncVersion(ctx context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return 0, common.ErrNotFound
	}
	u.SyncVersion++
	return u.SyncVersion, nil
}

func (f *memUsersRepo) GetSyncVersion(ctx context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return 0, common.ErrNotFound
	}
	return u.SyncVersion, nil
}

type memSessionsRepo struct {
	mu      sync.Mutex
	byToken map[string]*models.Session
}

func newMemSessionsRepo() *memSessionsRepo {
	return &memSessionsRepo{byToken: map[string]*models.Session{}}
}

func (f *memSessionsRepo) Create(ctx context.Context, userID, token, deviceID string, validity time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byToken[token] = &models.Session{
		UserID: userID, Token: token, DeviceID: deviceID,
		ExpiresAt: time.Now().Add(validity), CreatedAt: time.Now(),
	}
	return nil
}

func (f *memSessionsRepo) FindByToken(ctx context.Context, token string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byToken[token]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *memSessionsRepo) FindByUser(ctx context.Context, userID string) ([]*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Session
	for _, s := range f.byToken {
		if s.UserID == userID {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *memSessionsRepo) Rotate(ctx context.Context, oldToken, newToken string, validity time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byToken[oldToken]
	if !ok {
		return common.ErrNotFound
	}
	delete(f.byToken, oldToken)
	s.Token = newToken
	s.ExpiresAt = time.Now().Add(validity)
	f.byToken[newToken] = s
	return nil
}

func (f *memSessionsRepo) DeleteByToken(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byToken, token)
	return nil
}

func (f *memSessionsRepo) TrimOverCap(ctx context.Context, userID string, cap int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var owned []*models.Session
	for _, s := range f.byToken {
		if s.UserID == userID {
			owned = append(owned, s)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].ExpiresAt.After(owned[j].ExpiresAt)
	})
	for i := cap; i < len(owned); i++ {
		delete(f.byToken, owned[i].Token)
	}
	return nil
}

type memTransactionsRepo struct {
	mu   sync.Mutex
	byID map[string]*models.Transaction // keyed by user_id + "/" + id
}

func newMemTransactionsRepo() *memTransactionsRepo {
	return &memTransactionsRepo{byID: map[string]*models.Transaction{}}
}

func (f *memTransactionsRepo) CreateOrUpdate(ctx context.Context, t *models.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *t
	f.byID[t.UserID+"/"+t.ID] = &copied
	return nil
}

func (f *memTransactionsRepo) SelectUpdated(ctx context.Context, userID string, minVersion int64) ([]*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Transaction
	for _, t := range f.byID {
		if t.UserID == userID && t.Version > minVersion {
			copied := *t
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (f *memTransactionsRepo) SelectAll(ctx context.Context, userID string) ([]*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Transaction
	for _, t := range f.byID {
		if t.UserID == userID && !t.Deleted {
			copied := *t
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *memTransactionsRepo) SumByCategory(ctx context.Context, userID, categoryID string, year, month int) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum float64
	for _, t := range f.byID {
		if t.UserID != userID || t.Deleted {
			continue
		}
		if categoryID != "" && t.Category != categoryID {
			continue
		}
		if strings.HasPrefix(t.Date, monthPrefix(year, month)) {
			sum += t.Amount
		}
	}
	return sum, nil
}

func monthPrefix(year, month int) string {
	m := strconv.Itoa(month)
	if month < 10 {
		m = "0" + m
	}
	return strconv.Itoa(year) + "-" + m
}

type memBudgetsRepo struct {
	mu     sync.Mutex
	nextID int
	byID   map[string]*models.Budget
}

func newMemBudgetsRepo() *memBudgetsRepo {
	return &memBudgetsRepo{byID: map[string]*models.Budget{}}
}

func (f *memBudgetsRepo) Upsert(ctx context.Context, b *models.Budget) (*models.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.UserID == b.UserID && existing.CategoryID == b.CategoryID &&
			existing.Year == b.Year && existing.Month == b.Month {
			existing.Amount = b.Amount
			copied := *existing
			return &copied, nil
		}
	}
	f.nextID++
	b.ID = "b" + strconv.Itoa(f.nextID)
	copied := *b
	f.byID[b.ID] = &copied
	return b, nil
}

func (f *memBudgetsRepo) FindByUser(ctx context.Context, userID string) ([]*models.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Budget
	for _, b := range f.byID {
		if b.UserID == userID {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *memBudgetsRepo) Find(ctx context.Context, userID, categoryID string, year, month int) (*models.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.byID {
		if b.UserID == userID && b.CategoryID == categoryID && b.Year == year && b.Month == month {
			copied := *b
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *memBudgetsRepo) Update(ctx context.Context, b *models.Budget) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.byID[b.ID]
	if !ok || existing.UserID != b.UserID {
		return common.ErrNotFound
	}
	copied := *b
	f.byID[b.ID] = &copied
	return nil
}

func (f *memBudgetsRepo) Delete(ctx context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.byID[id]
	if !ok || existing.UserID != userID {
		return common.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeRepoManager hands out the same in-memory repos regardless of the
// handle, mimicking read-your-writes within a logical transaction.
type fakeRepoManager struct {
	users        *memUsersRepo
	sessions     *memSessionsRepo
	transactions *memTransactionsRepo
	budgets      *memBudgetsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:        newMemUsersRepo(),
		sessions:     newMemSessionsRepo(),
		transactions: newMemTransactionsRepo(),
		budgets:      newMemBudgetsRepo(),
	}
}

func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository               { return m.users }
func (m *fakeRepoManager) Sessions(dbx.DBTX) sessions.Repository         { return m.sessions }
func (m *fakeRepoManager) Transactions(dbx.DBTX) transactions.Repository { return m.transactions }
func (m *fakeRepoManager) Budgets(dbx.DBTX) budgets.Repository           { return m.budgets }

// hookedRepoManager lets a test run code right after a watermark read, to
// interleave writes with the two halves of a pull.
type hookedRepoManager struct {
	*fakeRepoManager
	afterVersionRead func()
}

func (m *hookedRepoManager) Users(dbx.DBTX) users.Repository {
	return &hookedUsersRepo{Repository: m.fakeRepoManager.users, after: m.afterVersionRead}
}

type hookedUsersRepo struct {
	users.Repository
	after func()
}

func (r *hookedUsersRepo) GetSyncVersion(ctx context.Context, id string) (int64, error) {
	v, err := r.Repository.GetSyncVersion(ctx, id)
	if r.after != nil {
		r.after()
	}
	return v, err
}
