package concordium

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	addressTypeAccount  = "AddressAccount"
	addressTypeContract = "AddressContract"
)

type addressJSON struct {
	Type    string          `json:"type"`
	Address json.RawMessage `json:"address"`
}

// MarshalJSON renders the node's tagged address form.
func (a Address) MarshalJSON() ([]byte, error) {
	if a.Kind == AddressKindContract {
		return json.Marshal(struct {
			Type    string          `json:"type"`
			Address ContractAddress `json:"address"`
		}{addressTypeContract, a.Contract})
	}
	return json.Marshal(struct {
		Type    string         `json:"type"`
		Address AccountAddress `json:"address"`
	}{addressTypeAccount, a.Account})
}

// UnmarshalJSON accepts the node's tagged address form.
func (a *Address) UnmarshalJSON(data []byte) error {
	var raw addressJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch raw.Type {
	case addressTypeAccount:
		var acc AccountAddress
		if err := json.Unmarshal(raw.Address, &acc); err != nil {
			return err
		}
		*a = AccountAddr(acc)
	case addressTypeContract:
		var c ContractAddress
		if err := json.Unmarshal(raw.Address, &c); err != nil {
			return err
		}
		*a = ContractAddr(c)
	default:
		return fmt.Errorf("unknown address type %q", raw.Type)
	}

	return nil
}

// UnmarshalJSON accepts both numeric and string encoded amounts.
func (c *CCDAmount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid CCD amount %s: %w", data, err)
	}
	*c = CCDAmount(v)
	return nil
}

func (c CCDAmount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(strconv.FormatUint(uint64(c), 10))), nil
}
