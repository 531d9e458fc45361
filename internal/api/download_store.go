package api

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// downloadTTL 一次性下载链接有效期
const downloadTTL = 10 * time.Minute

type exportDownload struct {
	filePath  string
	filename  string
	expiresAt time.Time
}

type exportDownloadStore struct {
	mu    sync.Mutex
	items map[string]exportDownload
	now   func() time.Time
	after func(time.Duration, func()) // 到期清理的定时器
}

func newExportDownloadStore() *exportDownloadStore {
	return &exportDownloadStore{
		items: make(map[string]exportDownload),
		now:   time.Now,
		after: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// put 登记文件；未被下载的文件在 ttl 后删除
func (s *exportDownloadStore) put(filePath, filename string, ttl time.Duration) (token string) {
	s.mu.Lock()
	now := s.now()
	s.purgeExpiredLocked(now)

	token = uuid.NewString()
	s.items[token] = exportDownload{
		filePath:  filePath,
		filename:  filename,
		expiresAt: now.Add(ttl),
	}
	s.mu.Unlock()

	s.after(ttl, func() { s.expire(token) })
	return token
}

func (s *exportDownloadStore) expire(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.items[token]; ok {
		removeFile(v.filePath)
		delete(s.items, token)
	}
}

// take 取出并移除（一次性）
func (s *exportDownloadStore) take(token string) (exportDownload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeExpiredLocked(now)

	v, ok := s.items[token]
	if !ok {
		return exportDownload{}, false
	}
	delete(s.items, token)
	return v, true
}

func (s *exportDownloadStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *exportDownloadStore) purgeExpiredLocked(now time.Time) {
	for k, v := range s.items {
		if now.After(v.expiresAt) {
			removeFile(v.filePath)
			delete(s.items, k)
		}
	}
}
