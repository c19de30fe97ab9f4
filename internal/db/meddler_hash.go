package db

import (
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/russross/meddler"
)

func init() {
	meddler.Register("hash", textMeddler[concordium.Hash]{
		parse:  concordium.ParseHash,
		format: concordium.Hash.String,
	})
	meddler.Register("tokenid", textMeddler[concordium.TokenID]{
		parse:  concordium.ParseTokenID,
		format: concordium.TokenID.String,
	})
}
