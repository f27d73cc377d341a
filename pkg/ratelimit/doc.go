// Package ratelimit keeps downloads polite toward the hosts they hit.
//
// SlidingWindow counts requests inside a moving time window. PerHost keeps
// one window per host so a page that links to several CDNs only throttles
// each of them individually:
//
//	limiter := ratelimit.NewPerHost(60) // at most 60 requests a minute per host
//	if err := limiter.Wait(ctx, rawURL); err != nil {
//	    return err // ctx was cancelled while waiting
//	}
//
// A limit of zero or less disables throttling; NewPerHost then returns nil
// and a nil *PerHost never blocks.
package ratelimit
