package metrics

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetStats_SetAndIncrement(t *testing.T) {
	s, err := NewNetStats(prometheus.NewRegistry())
	require.NoError(t, err)

	s.SetStat(NetIncoming, 2, "RpcMessage", 10)
	s.IncrementStat(NetIncoming, 2, "RpcMessage", 5)
	s.IncrementStat(NetOutgoing, 1, "ObjectDestroyMessage", 1)

	assert.Equal(t, 15.0, testutil.ToFloat64(s.gauge(NetIncoming, 2, "RpcMessage")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.gauge(NetOutgoing, 1, "ObjectDestroyMessage")))

	s.SetStat(NetIncoming, 2, "RpcMessage", 3)
	assert.Equal(t, 3.0, testutil.ToFloat64(s.gauge(NetIncoming, 2, "RpcMessage")))
}

func TestNetStats_ResetAll(t *testing.T) {
	s, err := NewNetStats(prometheus.NewRegistry())
	require.NoError(t, err)

	s.IncrementStat(NetIncoming, 8, "UpdateVarsMessage", 4)
	assert.Equal(t, 1, testutil.CollectAndCount(s.entries))

	s.ResetAll()
	assert.Equal(t, 0, testutil.CollectAndCount(s.entries))
}

func TestNetStats_TickAndDirections(t *testing.T) {
	s, err := NewNetStats(prometheus.NewRegistry())
	require.NoError(t, err)

	s.NewProfilerTick(12.5)
	s.NewProfilerTick(13.5)
	assert.Equal(t, float32(13.5), s.LastTick())
	assert.Equal(t, 2.0, testutil.ToFloat64(s.ticks))

	dirs := s.NetworkDirections()
	require.Len(t, dirs, 2)
	assert.Equal(t, NetIncoming, dirs[0])
	assert.Equal(t, NetOutgoing, dirs[1])
	assert.Equal(t, "outgoing", NetOutgoing.String())
}

func TestNetStats_DoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewNetStats(reg)
	require.NoError(t, err)

	_, err = NewNetStats(reg)
	assert.Error(t, err)
}

func TestServer_Lifecycle(t *testing.T) {
	s := NewServer(&Cfg{Addr: "127.0.0.1:0", Path: "/metrics"})
	assert.False(t, s.IsStarted())
	assert.Nil(t, s.Addr())

	// 未启动时关闭是空操作
	s.Shutdown()

	require.NoError(t, s.Init())
	require.True(t, s.IsStarted())
	require.NoError(t, s.Init())

	IncrCounterWithGroup("test", "server_scrape_total", 1)

	resp, err := http.Get("http://" + s.Addr().String() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "mirror_test_server_scrape_total"))

	s.Shutdown()
	assert.False(t, s.IsStarted())
	s.Shutdown()
}

func TestCfg_Validate(t *testing.T) {
	assert.NoError(t, DefaultCfg().Validate())
	assert.Error(t, (&Cfg{}).Validate())
	assert.Error(t, (&Cfg{Addr: ":1", Path: "metrics"}).Validate())
	assert.Error(t, (&Cfg{Addr: ":1", Path: "/m", ConsulAddr: "127.0.0.1:8500"}).Validate())
}
