// Package schema names the persisted layout of the transaction ledger. The
// DDL lives in the storage migrations; these constants are the only column
// and table names the store and the query compiler may emit.
package schema

const (
	Table = "tranx_history"

	ColumnID                     = "id"
	ColumnEpochMilliseconds      = "epoch_milliseconds"
	ColumnAmount                 = "amount"
	ColumnCurrency               = "currency"
	ColumnCurrencySpecifications = "currency_specifications"
	ColumnPurpose                = "tranx_purpose"
	ColumnIncoming               = "incoming"
	ColumnTransactionIdentity    = "transaction_identity"
)

// Columns lists every column in table order.
var Columns = []string{
	ColumnID,
	ColumnEpochMilliseconds,
	ColumnAmount,
	ColumnCurrency,
	ColumnCurrencySpecifications,
	ColumnPurpose,
	ColumnIncoming,
	ColumnTransactionIdentity,
}

// Indexed lists the columns carrying a secondary index, one per filter
// dimension.
var Indexed = []string{
	ColumnEpochMilliseconds,
	ColumnAmount,
	ColumnIncoming,
	ColumnPurpose,
}

// IsColumn reports whether name is a column of Table.
func IsColumn(name string) bool {
	for _, c := range Columns {
		if c == name {
			return true
		}
	}
	return false
}
