package logrus

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/lrucache"
)

func TestLogger(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	l := New(base)

	l.Debug("store command", lrucache.Fields{"cmd": "get"})
	boom := errors.New("boom")
	l.Error("delete failed", lrucache.Fields{"keys": []string{"LRU-a"}, "err": boom})

	require.Len(t, hook.Entries, 2)
	assert.Equal(t, logrus.DebugLevel, hook.Entries[0].Level)
	assert.Equal(t, "get", hook.Entries[0].Data["cmd"])
	assert.Equal(t, "lrucache", hook.Entries[0].Data["component"])

	last := hook.LastEntry()
	assert.Equal(t, "delete failed", last.Message)
	assert.Equal(t, boom, last.Data[logrus.ErrorKey])
	assert.Equal(t, []string{"LRU-a"}, last.Data["keys"])
}
