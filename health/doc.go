// Package health checks the dependencies of the fusion service.
//
// A Checker reports the Status of one dependency: the record store, an
// upstream API's circuit breaker, or the weather API key. An Aggregator
// runs its checkers concurrently under one deadline and folds the results
// into a Report whose overall status is the worst individual status.
//
//	agg := health.NewAggregator()
//	agg.Register(health.NewStoreChecker(kv))
//	agg.Register(health.NewBreakerChecker(swapi.Breaker()))
//	agg.Register(health.NewAPIKeyChecker("weather", wx.HasAPIKey))
//
//	report := agg.Report(ctx)
//	if report.Status == health.StatusUnhealthy {
//	    os.Exit(1)
//	}
package health
