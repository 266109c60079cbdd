package delaunay

import "sync"

// task splits data in contiguous chunks, one per worker, and calls fn on every
// element together with its index. It returns once every call has returned.
func task[T any](workersCount int, data []T, fn func(i int, data T)) {
	var wg sync.WaitGroup
	dataSize := len(data)
	workersCount = max(1, min(workersCount, dataSize))
	chunkSize := (dataSize + workersCount - 1) / workersCount

	for workerID := 0; workerID < workersCount; workerID++ {
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i, data[i])
			}
		}(workerID*chunkSize, min((workerID+1)*chunkSize, dataSize))
	}
	wg.Wait()
}
