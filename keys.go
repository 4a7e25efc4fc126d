package lrucache

import (
	"strings"

	"github.com/unkn0wn-root/lrucache/internal/glob"
)

const (
	defaultMarker = "LRU-"
	lockSuffix    = "-lock"
)

// keyspace maps logical keys to the physical keys sent to the store.
// Every physical key starts with prefix.
type keyspace struct {
	prefix string
}

// newKeyspace resolves the prefix: an explicit prefix wins, otherwise the
// marker alone or marker + namespace + "-".
func newKeyspace(prefix, namespace string) keyspace {
	switch {
	case prefix != "":
		return keyspace{prefix: prefix}
	case namespace == "":
		return keyspace{prefix: defaultMarker}
	default:
		return keyspace{prefix: defaultMarker + namespace + "-"}
	}
}

func (k keyspace) physical(key string) string { return k.prefix + key }

// logical strips the prefix; foreign keys pass through unchanged.
func (k keyspace) logical(physical string) string {
	return strings.TrimPrefix(physical, k.prefix)
}

func (k keyspace) lock(key string) string { return k.prefix + key + lockSuffix }

// pattern anchors a caller pattern under the prefix. The prefix itself is
// quoted so glob metacharacters in it match literally.
func (k keyspace) pattern(p string) string { return glob.QuoteMeta(k.prefix) + p }
