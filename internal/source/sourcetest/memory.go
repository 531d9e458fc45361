// Package sourcetest 内存数据源，供测试构造 aba 与失败场景。
package sourcetest

import (
	"context"
	"fmt"
	"sync"

	"importacao/internal/model"
	"importacao/internal/source"
)

// MemorySource 内存数据源，实现 source.Source
type MemorySource struct {
	mu       sync.RWMutex
	order    []string
	rows     map[string][][]string
	listErr  error
	fetchErr map[string]error
	fetches  []string
}

// NewMemorySource 创建内存数据源
func NewMemorySource() *MemorySource {
	return &MemorySource{
		rows:     make(map[string][][]string),
		fetchErr: make(map[string]error),
	}
}

// SetTab 设置 aba 内容（首行为表头）；新 aba 追加到末尾
func (s *MemorySource) SetTab(tab string, rows [][]string) *MemorySource {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[tab]; !ok {
		s.order = append(s.order, tab)
	}
	s.rows[tab] = rows
	return s
}

// FailList 让 ListTabs 返回指定错误
func (s *MemorySource) FailList(err error) *MemorySource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr = err
	return s
}

// FailFetch 让某个 aba 的 FetchRecords 返回指定错误
func (s *MemorySource) FailFetch(tab string, err error) *MemorySource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchErr[tab] = err
	return s
}

// Fetches 已读取的 aba（调用顺序）
func (s *MemorySource) Fetches() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.fetches...)
}

// ListTabs 返回全部 aba 名称
func (s *MemorySource) ListTabs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", source.ErrSourceUnavailable, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]string{}, s.order...), nil
}

// FetchRecords 读取一个 aba
func (s *MemorySource) FetchRecords(ctx context.Context, tab string) (model.Table, error) {
	if err := ctx.Err(); err != nil {
		return model.Table{}, fmt.Errorf("%w: %v", source.ErrSourceUnavailable, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fetches = append(s.fetches, tab)
	if err, ok := s.fetchErr[tab]; ok {
		return model.Table{}, err
	}
	rows, ok := s.rows[tab]
	if !ok {
		return model.Table{}, fmt.Errorf("%w: %q", source.ErrTabNotFound, tab)
	}
	return source.TableFromRows(tab, rows), nil
}
