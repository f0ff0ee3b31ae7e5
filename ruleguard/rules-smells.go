package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

func smells(m dsl.Matcher) {
	// Two consecutive guard-ifs returning the same value can merge with ||.
	m.Match(`if $c1 { return $ret }; if $c2 { return $ret }`).
		Report(`two consecutive guards return the same value; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { return $ret }`)

	m.Match(`if $c1 { continue }; if $c2 { continue }`).
		Report(`two consecutive continues; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { continue }`)

	// Locks taken without a paired deferred unlock leak on early returns.
	m.Match(`$mu.Lock(); $*_; $mu.Lock()`).
		Report(`mutex locked twice without an unlock in between`)

	// time.Sleep in request paths is usually a missing synchronization point.
	m.Match(`for $*_ { time.Sleep($_) }`).
		Report(`polling loop with time.Sleep; consider a channel or timer instead`)
}
