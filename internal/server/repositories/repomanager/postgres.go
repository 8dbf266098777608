package repomanager

import (
	"github.com/avoropay/finsync/internal/dbx"
	"github.com/avoropay/finsync/internal/server/repositories/budgets"
	"github.com/avoropay/finsync/internal/server/repositories/sessions"
	"github.com/avoropay/finsync/internal/server/repositories/transactions"
	"github.com/avoropay/finsync/internal/server/repositories/users"
)

// PostgresRepositoryManager builds PostgreSQL repositories on demand.
type PostgresRepositoryManager struct{}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Transactions(db dbx.DBTX) transactions.Repository {
	return transactions.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Budgets(db dbx.DBTX) budgets.Repository {
	return budgets.NewPostgresRepository(db)
}
