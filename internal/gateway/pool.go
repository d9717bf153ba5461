package gateway

import (
	"github.com/rs/zerolog"
	tomb "gopkg.in/tomb.v2"
)

// taskChanSize bounds how many pending connections can queue for a
// worker before Accept blocks on addTask.
const taskChanSize = 100

type workerFunc = func(t *tomb.Tomb, task any) error

// workerPool is a fixed-size pool of tomb-supervised goroutines pulling
// tasks off a shared channel, the same shape as the teacher's
// worker pool.
type workerPool struct {
	n      int
	tasks  chan any
	logger zerolog.Logger
}

func newWorkerPool(size int, logger zerolog.Logger) *workerPool {
	return &workerPool{tasks: make(chan any, taskChanSize), n: size, logger: logger}
}

func (p *workerPool) addTask(task any) {
	p.tasks <- task
}

// setup keeps exactly n workers alive under t until t starts dying.
func (p *workerPool) setup(t *tomb.Tomb, work workerFunc) {
	active := 0
	for {
		select {
		case <-t.Dying():
			return
		default:
			if active < p.n {
				t.Go(func() error {
					err := p.worker(t, work)
					active--
					return err
				})
				active++
			}
		}
	}
}

func (p *workerPool) worker(t *tomb.Tomb, work workerFunc) error {
	select {
	case <-t.Dying():
		return nil
	case task := <-p.tasks:
		if err := work(t, task); err != nil {
			p.logger.Error().Err(err).Msg("gateway worker exiting")
			return err
		}
	}
	return nil
}
