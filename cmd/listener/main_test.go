package main

import (
	"testing"

	"github.com/goran-ethernal/RWAListener/internal/logger"
	"github.com/goran-ethernal/RWAListener/internal/testutil"
	"github.com/goran-ethernal/RWAListener/pkg/config"
	"github.com/goran-ethernal/RWAListener/pkg/processor"
	"github.com/stretchr/testify/require"
)

func TestAllProcessorsShareOneDatabase(t *testing.T) {
	database := testutil.NewTestDB(t)
	log := logger.NewNopLogger()

	registered := processor.ListRegistered()
	require.ElementsMatch(t, []string{
		"identity-registry",
		"market",
		"mint-fund",
		"multi-yielder",
		"offchain-rewards",
		"p2p-trading",
		"security-sft",
		"security-sft-rewards",
	}, registered)

	build := func() {
		for i, typ := range registered {
			p, err := processor.Create(config.ProcessorConfig{
				Type:         typ,
				Name:         typ,
				ModuleRef:    testutil.ModuleRef(byte(i + 1)).String(),
				ContractName: "rwa_" + typ,
			}, database, log)
			require.NoError(t, err, typ)
			require.Equal(t, typ, p.Type())
		}
	}

	build()
	// a restart runs every processor's migrations again
	build()

	tables := []string{
		"checkpoint", "tracked_contracts", "contract_calls",
		"identity_registry_identities", "identity_registry_issuers", "identity_registry_agents",
		"market_tokens", "market_exchanges", "market_agents",
		"mint_fund_funds", "mint_fund_investors", "mint_fund_investment_records", "mint_fund_agents",
		"multi_yielder_yields", "multi_yielder_holder_yields", "multi_yielder_distributions",
		"multi_yielder_treasuries", "multi_yielder_agents",
		"offchain_rewardees", "offchain_reward_claims", "offchain_rewards_agents", "offchain_rewards_treasuries",
		"p2p_contracts", "p2p_traders", "p2p_trading_records",
		"cis2_contracts", "cis2_tokens", "cis2_token_holders", "cis2_operators", "cis2_agents",
		"cis2_recoveries", "cis2_contract_rewards", "cis2_reward_tokens", "cis2_reward_claims",
	}
	for _, table := range tables {
		require.Equal(t, 1, testutil.Count(t, database, "sqlite_master", "type = 'table' AND name = ?", table),
			"missing table %s", table)
		require.Zero(t, testutil.Count(t, database, table, ""), table)
	}
}
