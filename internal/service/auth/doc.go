// Package auth acquires Microsoft Teams access tokens from a live browser session.
//
// The Controller is an explicit state machine (Launching, Polling, Recovering
// and three terminal states). On every polling tick it runs the extraction
// strategies one after another against the borrowed Session, merges their
// output into the run's token set, and stops as soon as every resource scope
// has a real-looking token. A session that sits on the application without
// yielding tokens is recovered once by purging the cached MSAL entries and
// reloading the page.
//
// Three strategies are provided: Interceptor reads token-endpoint responses,
// StorageScan reads the current MSAL cache format and LegacyScan reads the
// older flat cache entries keyed by the identity-provider authority.
package auth
