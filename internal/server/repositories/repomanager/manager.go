// Package repomanager wires repositories to database handles. Services ask
// the manager for a repository bound either to the pool or to a transaction
// they started, so the same repository code runs inside and outside of
// transactions.
package repomanager

import (
	"github.com/avoropay/finsync/internal/dbx"
	"github.com/avoropay/finsync/internal/server/repositories/budgets"
	"github.com/avoropay/finsync/internal/server/repositories/sessions"
	"github.com/avoropay/finsync/internal/server/repositories/transactions"
	"github.com/avoropay/finsync/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to the given DBTX.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Transactions(db dbx.DBTX) transactions.Repository
	Budgets(db dbx.DBTX) budgets.Repository
}
