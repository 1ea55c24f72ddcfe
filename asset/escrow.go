package asset

// Escrow adapts a Ledger to the transfer surface an orderbook settles
// against: inbound pulls move funds from the payer into the escrow account,
// outbound payouts move them back out.
type Escrow struct {
	ledger  *Ledger
	account string
}

// NewEscrow creates an escrow over the ledger, holding funds under the given
// account name.
func NewEscrow(ledger *Ledger, account string) *Escrow {
	return &Escrow{
		ledger:  ledger,
		account: account,
	}
}

// Symbol returns the underlying asset symbol.
func (e *Escrow) Symbol() string {
	return e.ledger.Symbol()
}

// TransferIn pulls amount from the payer into escrow.
func (e *Escrow) TransferIn(payer string, amount uint64) error {
	return e.ledger.Transfer(payer, e.account, amount)
}

// TransferOut pays amount from escrow to the payee.
func (e *Escrow) TransferOut(payee string, amount uint64) error {
	return e.ledger.Transfer(e.account, payee, amount)
}

// BalanceOf returns the holder's ledger balance.
func (e *Escrow) BalanceOf(holder string) uint64 {
	return e.ledger.Balance(holder)
}
