// pkg/util/conc/pool.go
package conc

import (
	"github.com/panjf2000/ants/v2"
)

// defaultPoolSize 默认任务池大小
const defaultPoolSize = 16

// result 任务结果
type result[T any] struct {
	value T
	err   error
}

// Future 异步任务结果
type Future[T any] struct {
	ch chan result[T]
}

// Wait 阻塞等待任务完成并返回结果
func (f *Future[T]) Wait() (T, error) {
	r := <-f.ch
	return r.value, r.err
}

// Pool 泛型任务池，基于 ants 实现 goroutine 复用
type Pool[T any] struct {
	inner *ants.Pool
}

// NewPool 创建任务池
func NewPool[T any](size int) *Pool[T] {
	if size <= 0 {
		size = defaultPoolSize
	}
	inner, err := ants.NewPool(size)
	if err != nil {
		// ants 仅在参数非法时返回错误，size 已兜底
		inner, _ = ants.NewPool(defaultPoolSize)
	}
	return &Pool[T]{inner: inner}
}

// Submit 提交任务并丢弃结果；池已关闭时返回错误
func (p *Pool[T]) Submit(task func() (T, error)) error {
	return p.inner.Submit(func() {
		_, _ = task()
	})
}

// Go 提交任务并返回 Future
func (p *Pool[T]) Go(task func() (T, error)) (*Future[T], error) {
	f := &Future[T]{ch: make(chan result[T], 1)}
	err := p.inner.Submit(func() {
		v, err := task()
		f.ch <- result[T]{value: v, err: err}
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Running 当前运行中的任务数
func (p *Pool[T]) Running() int {
	return p.inner.Running()
}

// Free 当前空闲的 worker 数
func (p *Pool[T]) Free() int {
	return p.inner.Free()
}

// Release 关闭任务池
func (p *Pool[T]) Release() {
	p.inner.Release()
}
