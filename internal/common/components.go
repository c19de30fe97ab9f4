package common

const (
	ComponentListener    = "listener"
	ComponentFetcher     = "fetcher"
	ComponentRPC         = "rpc"
	ComponentRegistry    = "registry"
	ComponentCheckpoint  = "checkpoint"
	ComponentProcessor   = "processor"
	ComponentMaintenance = "maintenance"
	ComponentAPI         = "api"
	ComponentMetrics     = "metrics"
	ComponentNotifier    = "notifier"
)

var AllComponents = map[string]struct{}{
	ComponentListener:    {},
	ComponentFetcher:     {},
	ComponentRPC:         {},
	ComponentRegistry:    {},
	ComponentCheckpoint:  {},
	ComponentProcessor:   {},
	ComponentMaintenance: {},
	ComponentAPI:         {},
	ComponentMetrics:     {},
	ComponentNotifier:    {},
}
