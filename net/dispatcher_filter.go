package net

import "github.com/lcx/mirror/opcode"

// DispatcherFilterHandleFunc handles a delivery after the filters.
type DispatcherFilterHandleFunc func(d *Delivery) error

// DispatcherFilter may drop a delivery or pass it on to f.
type DispatcherFilter func(d *Delivery, f DispatcherFilterHandleFunc) error

// DispatcherFilterChain runs filters in order.
type DispatcherFilterChain []DispatcherFilter

// Handle runs the chain, then f.
func (fc DispatcherFilterChain) Handle(d *Delivery, f DispatcherFilterHandleFunc) error {
	if len(fc) == 0 {
		return f(d)
	}
	return fc[0](d, func(d *Delivery) error {
		return fc[1:].Handle(d, f)
	})
}

// reloadMsgFilterCfg replaces the set of dropped opcodes. Callers hold dp.lock.
func (dp *Dispatcher) reloadMsgFilterCfg(ids []int16) {
	m := make(map[opcode.MsgType]struct{}, len(ids))
	for _, id := range ids {
		m[opcode.MsgType(id)] = struct{}{}
	}
	dp.msgFilterMap = m
}

// msgFilter drops deliveries whose opcode is configured in msgFilter.
func (dp *Dispatcher) msgFilter(d *Delivery, f DispatcherFilterHandleFunc) error {
	dp.lock.RLock()
	_, drop := dp.msgFilterMap[d.Header.MsgType]
	dp.lock.RUnlock()
	if drop {
		return nil
	}
	return f(d)
}
