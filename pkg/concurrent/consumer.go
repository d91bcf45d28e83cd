package concurrent

import (
	"sync"
)

type ConsumerFunc func(interface{})

// Consume drains items through fn with at most concurrency workers and
// returns once every item has been processed. Order is not preserved.
func Consume(items []interface{}, fn ConsumerFunc, concurrency int) {
	if len(items) == 0 {
		return
	}

	if len(items) < concurrency {
		concurrency = len(items)
	}

	var wg sync.WaitGroup
	wg.Add(concurrency)
	itemCh := make(chan interface{})
	for i := 0; i < concurrency; i++ {
		go func() {
			for {
				item, more := <-itemCh
				if !more {
					wg.Done()
					return
				}

				fn(item)
			}
		}()
	}

	go func() {
		for _, item := range items {
			itemCh <- item
		}

		close(itemCh)
	}()

	wg.Wait()
}

func ConsumeStrings(items []string, fn func(string), concurrency int) {
	buf := make([]interface{}, len(items))
	for i := range items {
		buf[i] = items[i]
	}

	Consume(buf, func(i interface{}) {
		fn(i.(string))
	}, concurrency)
}
