package pool

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/headless-talk/pkg/logger"
)

// Task 在池中某个连接上执行的存储操作
type Task func(db *gorm.DB) error

type job struct {
	ctx  context.Context
	fn   Task
	tx   bool
	done chan error
}

// Pool 有界的存储任务池：调用方提交任务后阻塞等待结果，
// 实际的阻塞式数据库调用在固定数量的 worker 上执行
type Pool struct {
	db   *gorm.DB
	jobs chan job
	wg   sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func New(db *gorm.DB, workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 1024
	}
	p := &Pool{db: db, jobs: make(chan job, queueSize)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.loop()
	}
	return p
}

// DB 返回底层连接，仅供迁移、测试等不经过池的场景
func (p *Pool) DB() *gorm.DB { return p.db }

// Spawn 提交一个任务并等待其完成
func (p *Pool) Spawn(ctx context.Context, fn Task) error {
	return p.submit(ctx, fn, false)
}

// Transaction 提交一个原子任务：fn 内的所有语句在同一事务、同一连接上执行，任一失败则整体回滚
func (p *Pool) Transaction(ctx context.Context, fn Task) error {
	return p.submit(ctx, fn, true)
}

// Query 提交一个有返回值的任务
func Query[T any](ctx context.Context, p *Pool, fn func(db *gorm.DB) (T, error)) (T, error) {
	var out T
	err := p.Spawn(ctx, func(db *gorm.DB) error {
		v, err := fn(db)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func (p *Pool) submit(ctx context.Context, fn Task, tx bool) error {
	j := job{ctx: ctx, fn: fn, tx: tx, done: make(chan error, 1)}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return &StoreError{Err: ErrPoolClosed}
	}
	select {
	case p.jobs <- j:
	case <-ctx.Done():
		p.mu.RUnlock()
		return &StoreError{Err: ctx.Err()}
	}
	p.mu.RUnlock()

	return <-j.done
}

func (p *Pool) loop() {
	defer p.wg.Done()
	for j := range p.jobs {
		j.done <- p.run(j)
	}
}

func (p *Pool) run(j job) (err error) {
	if err := j.ctx.Err(); err != nil {
		return &StoreError{Err: err}
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("store task panicked", zap.Any("panic", r))
			err = &StoreError{Err: fmt.Errorf("task panicked: %v", r)}
		}
	}()

	db := p.db.WithContext(j.ctx)
	if j.tx {
		err = db.Transaction(func(tx *gorm.DB) error { return j.fn(tx) })
	} else {
		err = j.fn(db)
	}
	return wrap(err)
}

// Close 停止接收新任务，已入队的任务执行完后返回
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
