package domain

// Table is a mongo collection name
type Table string

const (
	TableAccounts         Table = "accounts"
	TableListings         Table = "listings"
	TableOffers           Table = "offers"
	TableCounters         Table = "counters"
	TableActivities       Table = "activities"
	TableOrderNonces      Table = "order_nonces"
	TablePayTokens        Table = "pay_tokens"
	TableRoyalties        Table = "royalties"
	TableAssetContracts   Table = "asset_contracts"
	TableAssetHoldings    Table = "asset_holdings"
	TableAssetApprovals   Table = "asset_approvals"
	TableLedgerBalances   Table = "ledger_balances"
	TableLedgerAllowances Table = "ledger_allowances"
)
