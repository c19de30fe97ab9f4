package identityregistry

import "github.com/goran-ethernal/RWAListener/pkg/concordium"

const (
	tagIdentityRegistered uint8 = iota
	tagIdentityRemoved
	tagIssuerAdded
	tagIssuerRemoved
	tagAgentAdded
	tagAgentRemoved
)

// Event is one decoded identity registry event.
type Event interface {
	isEvent()
}

// IdentityUpdated covers IdentityRegistered and IdentityRemoved.
type IdentityUpdated struct {
	Address concordium.Address
	Added   bool
}

// IssuerUpdated covers IssuerAdded and IssuerRemoved.
type IssuerUpdated struct {
	Issuer concordium.ContractAddress
	Added  bool
}

// AgentUpdated covers AgentAdded and AgentRemoved.
type AgentUpdated struct {
	Agent concordium.Address
	Added bool
}

func (IdentityUpdated) isEvent() {}
func (IssuerUpdated) isEvent()   {}
func (AgentUpdated) isEvent()    {}

func parseEvent(tag uint8, r *concordium.Reader) (Event, bool) {
	switch tag {
	case tagIdentityRegistered, tagIdentityRemoved:
		return IdentityUpdated{Address: r.Address(), Added: tag == tagIdentityRegistered}, true
	case tagIssuerAdded, tagIssuerRemoved:
		return IssuerUpdated{Issuer: r.ContractAddress(), Added: tag == tagIssuerAdded}, true
	case tagAgentAdded, tagAgentRemoved:
		return AgentUpdated{Agent: r.Address(), Added: tag == tagAgentAdded}, true
	default:
		return nil, false
	}
}
