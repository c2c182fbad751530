package utils

import (
	"fmt"
	"log"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CommentCacheKey 某个帖子下已通过评论列表的缓存键。
// 评论落库和审核状态写入的所有路径都要在写后删除这个键。
func CommentCacheKey(postID uint) string {
	return fmt.Sprintf("comments:post:%d", postID)
}

// CacheItem 包装缓存数据和过期时间
type CacheItem struct {
	Data      any
	ExpiresAt time.Time
}

// GlobalCache 进程内本地缓存，评论列表等读多写少的数据用它兜底。
// 审核 worker、调度器和请求线程都会访问，底层 LRU 自带锁。
type GlobalCache struct {
	lruCache *lru.Cache[string, CacheItem]
}

var (
	cacheInstance *GlobalCache
	cacheOnce     sync.Once
)

// GetCache 获取单例缓存实例
func GetCache() *GlobalCache {
	cacheOnce.Do(func() {
		l, err := lru.New[string, CacheItem](500)
		if err != nil {
			log.Fatalf("Failed to create LRU cache: %v", err)
		}
		cacheInstance = &GlobalCache{lruCache: l}
	})
	return cacheInstance
}

// Set 设置缓存，TTL 为过期时间
func (c *GlobalCache) Set(key string, data any, ttl time.Duration) {
	c.lruCache.Add(key, CacheItem{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
	})
}

// Get 获取缓存，若不存在或已过期则返回 nil
func (c *GlobalCache) Get(key string) any {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return nil
	}
	if time.Now().After(val.ExpiresAt) {
		c.lruCache.Remove(key)
		return nil
	}
	return val.Data
}

// Delete 删除指定缓存
func (c *GlobalCache) Delete(key string) {
	c.lruCache.Remove(key)
}
