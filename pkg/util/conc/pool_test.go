package conc

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSubmit 测试提交任务
func TestSubmit(t *testing.T) {
	p := NewPool[struct{}](4)
	defer p.Release()

	var wg sync.WaitGroup
	var mu sync.Mutex
	count := 0

	for i := 0; i < 10; i++ {
		wg.Add(1)
		err := p.Submit(func() (struct{}, error) {
			defer wg.Done()
			mu.Lock()
			count++
			mu.Unlock()
			return struct{}{}, nil
		})
		require.NoError(t, err)
	}

	wg.Wait()
	assert.Equal(t, 10, count)
}

// TestGo 测试带结果的任务
func TestGo(t *testing.T) {
	p := NewPool[int](2)
	defer p.Release()

	f, err := p.Go(func() (int, error) {
		return 42, nil
	})
	require.NoError(t, err)

	v, err := f.Wait()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

// TestGoError 测试任务返回错误
func TestGoError(t *testing.T) {
	p := NewPool[int](2)
	defer p.Release()

	boom := errors.New("boom")
	f, err := p.Go(func() (int, error) {
		return 0, boom
	})
	require.NoError(t, err)

	_, err = f.Wait()
	assert.ErrorIs(t, err, boom)
}

// TestSubmitAfterRelease 测试关闭后提交
func TestSubmitAfterRelease(t *testing.T) {
	p := NewPool[struct{}](2)
	p.Release()

	err := p.Submit(func() (struct{}, error) {
		return struct{}{}, nil
	})
	assert.Error(t, err)
}

// TestNewPoolInvalidSize 测试非法大小兜底
func TestNewPoolInvalidSize(t *testing.T) {
	p := NewPool[struct{}](-1)
	defer p.Release()

	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, p.Submit(func() (struct{}, error) {
		wg.Done()
		return struct{}{}, nil
	}))
	wg.Wait()
}
