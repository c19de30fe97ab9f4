package db

import (
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/russross/meddler"
)

func init() {
	// Account addresses are stored base58check encoded, contracts as <index,subindex>.
	meddler.Register("account", textMeddler[concordium.AccountAddress]{
		parse:  concordium.ParseAccountAddress,
		format: concordium.AccountAddress.String,
	})
	meddler.Register("contract", textMeddler[concordium.ContractAddress]{
		parse:  concordium.ParseContractAddress,
		format: concordium.ContractAddress.String,
	})
	meddler.Register("address", textMeddler[concordium.Address]{
		parse:  concordium.ParseAddress,
		format: concordium.Address.String,
	})
}
