package bytebuff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetPut 测试获取与归还
func TestGetPut(t *testing.T) {
	p := NewPool()

	buf := p.Get(128)
	require.NotNil(t, buf)
	assert.GreaterOrEqual(t, buf.Cap(), 128)

	buf.WriteString("hello")
	p.Put(buf)

	// 归还后 buffer 应被重置
	buf2 := p.Get(128)
	assert.Equal(t, 0, buf2.Len())

	gets, puts := p.Stats()
	assert.Equal(t, uint64(2), gets)
	assert.Equal(t, uint64(1), puts)
}

// TestPutNil 测试归还 nil
func TestPutNil(t *testing.T) {
	p := NewPool()
	p.Put(nil) // 不应 panic

	_, puts := p.Stats()
	assert.Equal(t, uint64(0), puts)
}

// TestTierFor 测试分级选择
func TestTierFor(t *testing.T) {
	assert.Equal(t, 0, tierFor(0))
	assert.Equal(t, 0, tierFor(256))
	assert.Equal(t, 1, tierFor(257))
	assert.Equal(t, 1, tierFor(4096))
	assert.Equal(t, 2, tierFor(65536))
	assert.Equal(t, 3, tierFor(1<<20))
	assert.Equal(t, 3, tierFor(1<<22))
}

// TestOversizedNotPooled 测试超大 buffer 不回池
func TestOversizedNotPooled(t *testing.T) {
	p := NewPool()

	buf := p.Get(1 << 21) // 2MB
	p.Put(buf)

	_, puts := p.Stats()
	assert.Equal(t, uint64(0), puts)
}

// TestGlobalHelpers 测试全局便捷函数
func TestGlobalHelpers(t *testing.T) {
	buf := Get(64)
	require.NotNil(t, buf)
	Put(buf)
}
