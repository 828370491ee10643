package service

import "sync"

// keyedMutex 提供按 key（问题 ID）粒度的互斥锁，
// 用于串行化同一问题上的对话读-改-写，避免并发追加互相覆盖。
// 仅对本进程内的请求生效；跨实例部署时数据库侧仍是最后写入者获胜。
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock 锁住指定 key，返回对应的解锁函数。
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
