// Package parallel contains the bounded-concurrency ForEach used to fan out
// independent per-learner work.
package parallel

import "sync"

// ForEach runs body(i) for i in [0, length) on at most limit concurrent
// goroutines and waits for all of them. Iterations must be independent; the
// caller performs any final reduction after ForEach returns.
func ForEach(length, limit int, body func(i int)) {
	if length <= 0 {
		return
	}
	if limit <= 0 {
		limit = 1
	}
	if limit == 1 {
		for i := 0; i < length; i++ {
			body(i)
		}
		return
	}

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	wg.Add(length)
	for i := 0; i < length; i++ {
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			body(i)
		}(i)
	}
	wg.Wait()
}
