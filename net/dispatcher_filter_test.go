package net

import (
	"errors"
	"reflect"
	"testing"

	"github.com/lcx/mirror/opcode"
)

// TestDispatcherFilterChain 测试过滤链的调用顺序与短路
func TestDispatcherFilterChain(t *testing.T) {
	var calls []string
	record := func(name string) DispatcherFilter {
		return func(d *Delivery, f DispatcherFilterHandleFunc) error {
			calls = append(calls, name)
			return f(d)
		}
	}
	stop := func(err error) DispatcherFilter {
		return func(d *Delivery, f DispatcherFilterHandleFunc) error {
			calls = append(calls, "stop")
			return err
		}
	}
	errBlocked := errors.New("blocked")

	tests := []struct {
		name      string
		filters   DispatcherFilterChain
		wantCalls []string
		wantErr   error
	}{
		{
			name:      "empty chain calls handler directly",
			filters:   DispatcherFilterChain{},
			wantCalls: []string{"handler"},
		},
		{
			name:      "filters run in order",
			filters:   DispatcherFilterChain{record("a"), record("b")},
			wantCalls: []string{"a", "b", "handler"},
		},
		{
			name:      "filter can drop silently",
			filters:   DispatcherFilterChain{record("a"), stop(nil), record("c")},
			wantCalls: []string{"a", "stop"},
		},
		{
			name:      "filter error is returned",
			filters:   DispatcherFilterChain{stop(errBlocked), record("b")},
			wantCalls: []string{"stop"},
			wantErr:   errBlocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls = nil
			err := tt.filters.Handle(&Delivery{Header: &MsgHeader{}}, func(d *Delivery) error {
				calls = append(calls, "handler")
				return nil
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Handle() error = %v, want %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(calls, tt.wantCalls) {
				t.Errorf("calls = %v, want %v", calls, tt.wantCalls)
			}
		})
	}
}

// TestMsgFilter 测试按 opcode 丢弃消息以及重载
func TestMsgFilter(t *testing.T) {
	cfg := DefaultDispatcherConfig()
	cfg.MsgFilter = []int16{int16(opcode.Ping)}
	d, err := NewDispatcher(cfg, opcode.NewRegistry(opcode.SchemeLegacy), nil)
	if err != nil {
		t.Fatalf("NewDispatcher() error = %v", err)
	}

	passed := 0
	next := func(*Delivery) error {
		passed++
		return nil
	}

	_ = d.msgFilter(&Delivery{Header: &MsgHeader{MsgType: opcode.Ping}}, next)
	_ = d.msgFilter(&Delivery{Header: &MsgHeader{MsgType: opcode.Pong}}, next)
	if passed != 1 {
		t.Fatalf("passed = %d, want 1", passed)
	}

	// 重载后旧的过滤项失效
	d.lock.Lock()
	d.reloadMsgFilterCfg([]int16{int16(opcode.Pong)})
	d.lock.Unlock()

	passed = 0
	_ = d.msgFilter(&Delivery{Header: &MsgHeader{MsgType: opcode.Ping}}, next)
	_ = d.msgFilter(&Delivery{Header: &MsgHeader{MsgType: opcode.Pong}}, next)
	if passed != 1 {
		t.Fatalf("after reload passed = %d, want 1", passed)
	}
}
