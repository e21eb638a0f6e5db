package aggregates

// TxOwnership says who opens the transaction around an aggregate write.
type TxOwnership string

const (
	// TxOwnedByAggregate aggregates open and commit every write transaction themselves.
	TxOwnedByAggregate TxOwnership = "aggregate_owned"
	// TxJoinable aggregates own their transactions and also expose *InTx writes that run
	// inside a caller's transaction, so another aggregate can commit them together.
	TxJoinable         TxOwnership = "joinable"
)

// Contract describes an aggregate's write boundary.
type Contract struct {
	Name        string
	TxOwnership TxOwnership
	Notes       string
}

type Aggregate interface {
	Contract() Contract
}

// JoinsCallerTx reports whether *InTx writes may run inside a transaction the caller opened.
func (c Contract) JoinsCallerTx() bool {
	return c.TxOwnership == TxJoinable
}
