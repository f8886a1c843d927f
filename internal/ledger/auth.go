package ledger

import "github.com/ethereum/go-ethereum/common"

// SingleAdmin authorizes exactly one administrator address.
type SingleAdmin struct {
	Administrator common.Address
}

func (a SingleAdmin) IsAdministrator(caller common.Address) bool {
	return caller == a.Administrator
}
