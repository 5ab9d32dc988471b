package systems

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spaghettifunk/anima-buffers/engine/core"
)

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")
var ErrJobSystemClosed = errors.New("job system is shut down")

/**
 * @brief Describes a job. Run executes on a worker goroutine and must not
 * touch engine state; the callbacks run on the goroutine calling Update.
 */
type JobTask struct {
	Name string
	/** @brief Required. Its result is handed to OnSuccess. */
	Run func() (interface{}, error)
	/** @brief Optional. */
	OnSuccess func(result interface{})
	/** @brief Optional. */
	OnFailure func(err error)
}

type jobResult struct {
	task   JobTask
	result interface{}
	err    error
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup

	// guards closed and every send on jobQueue
	queueMutex sync.RWMutex
	closed     bool

	mutex   sync.Mutex
	results []jobResult
	pending int
}

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan JobTask, channelSize),
	}
	js.start()
	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				result, err := job.Run()
				if err != nil {
					core.LogError("job %s failed: %s", job.Name, err)
				}
				js.mutex.Lock()
				js.results = append(js.results, jobResult{task: job, result: result, err: err})
				js.mutex.Unlock()
			}
		}()
	}
}

/**
 * @brief Shuts the job system down. Queued jobs still run; results not
 * collected by Update are dropped.
 */
func (js *JobSystem) Shutdown() error {
	js.queueMutex.Lock()
	if js.closed {
		js.queueMutex.Unlock()
		return nil
	}
	js.closed = true
	close(js.jobQueue)
	js.queueMutex.Unlock()

	js.wg.Wait()
	if n := len(js.results); n > 0 {
		core.LogDebug("job system dropped %d uncollected results", n)
	}
	return nil
}

/**
 * @brief Runs the callbacks of the finished jobs on the calling goroutine.
 * Should happen once an update cycle. Returns how many jobs were collected.
 */
func (js *JobSystem) Update() int {
	js.mutex.Lock()
	done := js.results
	js.results = nil
	js.pending -= len(done)
	js.mutex.Unlock()

	for _, r := range done {
		if r.err != nil {
			if r.task.OnFailure != nil {
				r.task.OnFailure(r.err)
			}
			continue
		}
		if r.task.OnSuccess != nil {
			r.task.OnSuccess(r.result)
		}
	}
	return len(done)
}

// Pending counts the submitted jobs whose callbacks did not run yet.
func (js *JobSystem) Pending() int {
	js.mutex.Lock()
	defer js.mutex.Unlock()
	return js.pending
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while
 * the queue is full.
 */
func (js *JobSystem) Submit(jt JobTask) error {
	if jt.Run == nil {
		return fmt.Errorf("job %s has no Run function", jt.Name)
	}
	js.queueMutex.RLock()
	defer js.queueMutex.RUnlock()
	if js.closed {
		return ErrJobSystemClosed
	}
	js.mutex.Lock()
	js.pending++
	js.mutex.Unlock()

	js.jobQueue <- jt
	return nil
}
