// Package browser hosts the Chromium session used to acquire tokens.
//
// A Host launches Chrome through go-rod on a persistent profile directory,
// guards that directory with a file lock, and hands out a Session bound to
// one stealth page. The Session exposes the few page operations the
// acquisition loop needs (current URL, web storage, reload) and feeds
// token-endpoint responses to a ResponseObserver as they arrive.
package browser
