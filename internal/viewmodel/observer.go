package viewmodel

import "slices"

// Subscription identifies a registered observer.
type Subscription uint64

type observer struct {
	token Subscription
	fn    func()
}

// observers is an ordered set of zero-argument callbacks.
type observers struct {
	list []observer
}

func (o *observers) add(token Subscription, fn func()) {
	o.list = append(o.list, observer{token: token, fn: fn})
}

func (o *observers) remove(token Subscription) bool {
	idx := slices.IndexFunc(o.list, func(ob observer) bool { return ob.token == token })
	if idx < 0 {
		return false
	}
	o.list = slices.Delete(o.list, idx, idx+1)
	return true
}

// notify calls every observer in registration order. Observers added or
// removed during dispatch take effect on the next notification.
func (o *observers) notify() {
	for _, ob := range slices.Clone(o.list) {
		ob.fn()
	}
}
