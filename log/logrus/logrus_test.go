package logrus

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unkn0wn-root/oddsgrid"
)

func TestLogrusLoggerFields(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	l := LogrusLogger{E: logrus.NewEntry(base)}

	l.Info("page fetched", oddsgrid.Fields{"offset": 1000, "rows": 1000})

	require.Len(t, hook.Entries, 1)
	e := hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, e.Level)
	assert.Equal(t, 1000, e.Data["offset"])
}

func TestNewHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "warn")
	require.NoError(t, err)

	l.Info("hidden", nil)
	assert.Zero(t, buf.Len())
	l.Warn("shown", oddsgrid.Fields{"k": "v"})
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	_, err = New(&buf, "loud")
	assert.Error(t, err)
}
