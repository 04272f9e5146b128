package service

import "sync"

// busCall 记录一次广播调用
type busCall struct {
	Method string // all/except/to
	Action string
	ConnID string
	Data   interface{}
}

// fakeBus 记录型广播桩
type fakeBus struct {
	mu    sync.Mutex
	calls []busCall
}

func newFakeBus() *fakeBus {
	return &fakeBus{}
}

func (b *fakeBus) BroadcastAll(action string, data interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, busCall{Method: "all", Action: action, Data: data})
}

func (b *fakeBus) BroadcastExcept(connID string, action string, data interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, busCall{Method: "except", Action: action, ConnID: connID, Data: data})
}

func (b *fakeBus) SendTo(connID string, action string, data interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, busCall{Method: "to", Action: action, ConnID: connID, Data: data})
	return nil
}

// callsOf 按action过滤调用记录
func (b *fakeBus) callsOf(action string) []busCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	var result []busCall
	for _, call := range b.calls {
		if call.Action == action {
			result = append(result, call)
		}
	}
	return result
}

// lastOf 最后一次指定action的调用
func (b *fakeBus) lastOf(action string) (busCall, bool) {
	calls := b.callsOf(action)
	if len(calls) == 0 {
		return busCall{}, false
	}
	return calls[len(calls)-1], true
}

func (b *fakeBus) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = nil
}
