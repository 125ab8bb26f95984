package queue

import (
	"fmt"
	"log"
	"sync"
)

type Job struct {
	Fn   func() error
	Errc chan error
}

// RequestQueueManager runs jobs on a fixed set of workers fed by a
// buffered channel. The HTTP surface and the chat engine each own one.
type RequestQueueManager struct {
	Name       string
	JobQueue   chan Job
	MaxWorkers int
	wg         sync.WaitGroup
	once       sync.Once
}

func NewRequestQueueManager(name string, queueSize int, maxWorkers int) *RequestQueueManager {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	manager := &RequestQueueManager{
		Name:       name,
		JobQueue:   make(chan Job, queueSize),
		MaxWorkers: maxWorkers,
	}
	manager.startWorkers()
	return manager
}

func (rqm *RequestQueueManager) startWorkers() {
	for i := 0; i < rqm.MaxWorkers; i++ {
		rqm.wg.Add(1)
		go func(workerID int) {
			defer rqm.wg.Done()
			for job := range rqm.JobQueue {
				err := rqm.run(job)
				if job.Errc != nil {
					job.Errc <- err
				}
			}
			log.Printf("[queue:%s] worker %d stopped", rqm.Name, workerID)
		}(i)
	}
	log.Printf("[queue:%s] started %d workers", rqm.Name, rqm.MaxWorkers)
}

func (rqm *RequestQueueManager) run(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[queue:%s] job panic: %v", rqm.Name, r)
			err = fmt.Errorf("queue %s: job panic: %v", rqm.Name, r)
		}
	}()
	return job.Fn()
}

// EnqueueJob blocks until the job fits in the queue.
func (rqm *RequestQueueManager) EnqueueJob(job Job) {
	rqm.JobQueue <- job
}

// TryEnqueue queues the job without blocking and reports whether it fit.
func (rqm *RequestQueueManager) TryEnqueue(job Job) bool {
	select {
	case rqm.JobQueue <- job:
		return true
	default:
		return false
	}
}

func (rqm *RequestQueueManager) Depth() int {
	return len(rqm.JobQueue)
}

func (rqm *RequestQueueManager) Shutdown() {
	rqm.once.Do(func() {
		close(rqm.JobQueue)
	})
	rqm.wg.Wait()
}
