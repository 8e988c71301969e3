package redisstore

import "github.com/redis/go-redis/v9"

// Key layout for one presence index with prefix p:
//
//	p              geo sorted set, member = device_id
//	p:ttl:<id>     TTL marker, value = observed_at (RFC 3339), expires after the ping TTL
//	p:meta:<id>    hash {accuracy, timestamp, latitude, longitude}, same expiry
const (
	ttlKeySegment  = ":ttl:"
	metaKeySegment = ":meta:"
)

// pruneExpiredScript removes geo members whose TTL marker is gone.
// The marker is re-checked inside the script, so a device renewed after the
// scan that nominated it is left alone.
//
//	KEYS[1]                 geo set
//	KEYS[2i], KEYS[2i+1]    TTL marker and metadata of ARGV[i]
//	ARGV[i]                 device_id
//
// Returns the number of members removed from the geo set.
var pruneExpiredScript = redis.NewScript(`
local removed = 0
for i = 1, #ARGV do
	if redis.call('EXISTS', KEYS[2 * i]) == 0 then
		removed = removed + redis.call('ZREM', KEYS[1], ARGV[i])
		redis.call('DEL', KEYS[2 * i + 1])
	end
end
return removed
`)
