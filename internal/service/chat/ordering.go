package chat

import "sync"

// ordering hands out per-chat tickets so that follow-up jobs for one chat
// run one at a time in the order they were scheduled.
type ordering struct {
	mu    sync.Mutex
	tails map[string]chan struct{}
}

func newOrdering() *ordering {
	return &ordering{tails: make(map[string]chan struct{})}
}

// next returns a channel that closes when the previous job for key is done
// (nil if there is none) and the func that releases this job's turn.
func (o *ordering) next(key string) (<-chan struct{}, func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	prev := o.tails[key]
	mine := make(chan struct{})
	o.tails[key] = mine

	release := func() {
		close(mine)
		o.mu.Lock()
		if o.tails[key] == mine {
			delete(o.tails, key)
		}
		o.mu.Unlock()
	}

	if prev == nil {
		return nil, release
	}
	return prev, release
}
