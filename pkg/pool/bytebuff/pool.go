// pkg/pool/bytebuff/pool.go
package bytebuff

import (
	"bytes"
	"sync"
	"sync/atomic"
)

// 分级容量: 256B, 4KB, 64KB, 1MB
// 超过最大分级的 buffer 不回池，交给 GC
var tierSizes = [...]int{
	1 << 8,  // 256B
	1 << 12, // 4KB
	1 << 16, // 64KB
	1 << 20, // 1MB
}

const maxPooled = 1 << 20

// Pool 分级的 bytes.Buffer 对象池
type Pool struct {
	tiers [len(tierSizes)]sync.Pool

	gets uint64
	puts uint64
}

// NewPool 创建分级 buffer pool
func NewPool() *Pool {
	p := &Pool{}
	for i := range p.tiers {
		p.tiers[i].New = func() interface{} {
			return &bytes.Buffer{}
		}
	}
	return p
}

// Get 从池中获取一个 Buffer
// sizeHint 是期望容量，用于选择分级
func (p *Pool) Get(sizeHint int) *bytes.Buffer {
	atomic.AddUint64(&p.gets, 1)

	buf := p.tiers[tierFor(sizeHint)].Get().(*bytes.Buffer)
	if buf.Cap() < sizeHint {
		buf.Grow(sizeHint - buf.Cap())
	}
	return buf
}

// Put 将 Buffer 归还到池中
func (p *Pool) Put(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > maxPooled {
		return
	}

	atomic.AddUint64(&p.puts, 1)

	idx := tierFor(buf.Cap())
	buf.Reset()
	p.tiers[idx].Put(buf)
}

// Stats 返回池的统计信息
func (p *Pool) Stats() (gets, puts uint64) {
	return atomic.LoadUint64(&p.gets), atomic.LoadUint64(&p.puts)
}

// tierFor 根据容量选择分级
func tierFor(size int) int {
	for i, tier := range tierSizes {
		if size <= tier {
			return i
		}
	}
	return len(tierSizes) - 1
}

// --- 全局便捷函数 ---

var defaultPool = NewPool()

// Get 从默认池中获取一个 Buffer
func Get(sizeHint int) *bytes.Buffer {
	return defaultPool.Get(sizeHint)
}

// Put 将 Buffer 归还到默认池中
func Put(buf *bytes.Buffer) {
	defaultPool.Put(buf)
}
