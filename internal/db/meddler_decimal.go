package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/russross/meddler"
	"github.com/shopspring/decimal"
)

func init() {
	// Token and currency amounts exceed 64 bits, so they are kept as decimal strings.
	meddler.Register("decimal", textMeddler[decimal.Decimal]{
		parse:  decimal.NewFromString,
		format: decimal.Decimal.String,
	})
	meddler.Register("unixmilli", UnixMilliMeddler{})
}

// UnixMilliMeddler stores time.Time as milliseconds since the unix epoch.
type UnixMilliMeddler struct{}

func (UnixMilliMeddler) PreRead(fieldAddr interface{}) (scanTarget interface{}, err error) {
	return new(sql.NullInt64), nil
}

func (UnixMilliMeddler) PostRead(fieldAddr, scanTarget interface{}) error {
	ni, ok := scanTarget.(*sql.NullInt64)
	if !ok {
		return fmt.Errorf("expected *sql.NullInt64, got %T", scanTarget)
	}

	ptr, ok := fieldAddr.(*time.Time)
	if !ok {
		return fmt.Errorf("expected *time.Time, got %T", fieldAddr)
	}

	if !ni.Valid {
		*ptr = time.Time{}
		return nil
	}
	*ptr = time.UnixMilli(ni.Int64).UTC()
	return nil
}

func (UnixMilliMeddler) PreWrite(field interface{}) (saveValue interface{}, err error) {
	t, ok := field.(time.Time)
	if !ok {
		return nil, fmt.Errorf("expected time.Time, got %T", field)
	}
	return t.UnixMilli(), nil
}
